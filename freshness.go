package netatmo

import "time"

// IsStale reports whether an entity last seen at lastSeen is stale relative
// to the reference time. An entity that never reported a timestamp counts as
// stale. Pure function, safe to call without any lock.
func IsStale(lastSeen time.Time, threshold time.Duration, ref time.Time) bool {
	if lastSeen.IsZero() {
		return true
	}
	return ref.Sub(lastSeen) > threshold
}

// Stale reports whether the module itself is stale.
func (m *Module) Stale(threshold time.Duration, ref time.Time) bool {
	return IsStale(m.LastSeen, threshold, ref)
}

// ListStale returns the ids of the home's stale modules. Stale gateways
// (top-level station/bridge modules) come first: a stale gateway means every
// report from the home is unreliable, which callers may want to surface
// distinctly from a single stale leaf sensor.
func ListStale(h *Home, threshold time.Duration, ref time.Time) []string {
	var gateways, leaves []string
	for _, m := range h.ModulesInOrder() {
		if !m.Stale(threshold, ref) {
			continue
		}
		if m.Bridge == "" {
			gateways = append(gateways, m.ID)
		} else {
			leaves = append(leaves, m.ID)
		}
	}
	return append(gateways, leaves...)
}

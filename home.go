package netatmo

import (
	"time"
)

// Home is a top-level account-owned location grouping rooms, modules,
// schedules and known persons.
type Home struct {
	ID   string
	Name string

	Rooms   map[string]*Room
	Modules map[string]*Module

	Schedules []*Schedule
	Persons   []*Person

	// moduleOrder preserves ingestion order for documented first-match
	// lookup semantics.
	moduleOrder []string
}

// Schedule is a named automation timetable attached to a home. At most one
// schedule per type is selected at a time.
type Schedule struct {
	ID       string
	Name     string
	Type     string // "therm", "cooling", "electricity", "event"
	Default  bool
	Selected bool

	// AwayTemp and FrostGuardTemp are only reported for thermostat
	// schedules; the Has* flags distinguish an unreported value from zero.
	AwayTemp          float64
	HasAwayTemp       bool
	FrostGuardTemp    float64
	HasFrostGuardTemp bool
}

// SelectedSchedule returns the home's currently selected schedule of the
// given type, or nil when none is selected. An empty type matches any.
func (h *Home) SelectedSchedule(scheduleType string) *Schedule {
	for _, s := range h.Schedules {
		if s.Selected && (scheduleType == "" || s.Type == scheduleType) {
			return s
		}
	}
	return nil
}

// HasSchedule reports whether the home carries a schedule with the given id.
func (h *Home) HasSchedule(scheduleID string) bool {
	for _, s := range h.Schedules {
		if s.ID == scheduleID {
			return true
		}
	}
	return false
}

// Person is an account member known to the home's cameras.
type Person struct {
	ID     string
	Pseudo string
	URL    string
}

// ModulesInOrder returns the home's modules in ingestion order.
func (h *Home) ModulesInOrder() []*Module {
	out := make([]*Module, 0, len(h.moduleOrder))
	for _, id := range h.moduleOrder {
		if m, ok := h.Modules[id]; ok {
			out = append(out, m)
		}
	}
	return out
}

// Gateways returns the home's top-level station/bridge modules: those that do
// not report through another module.
func (h *Home) Gateways() []*Module {
	var out []*Module
	for _, m := range h.ModulesInOrder() {
		if m.Bridge == "" {
			out = append(out, m)
		}
	}
	return out
}

// Room is a named grouping of modules within a home. The home reference is a
// back-reference only, not ownership.
type Room struct {
	ID     string
	Name   string
	Type   string
	HomeID string

	ModuleIDs []string

	// Attributes holds the room's dynamic state as last reported by the
	// homestatus endpoint, raw key names preserved. Nil until a status
	// refresh has been ingested.
	Attributes map[string]any
}

// MeasuredTemperature returns the room's measured temperature in degrees
// Celsius.
func (r *Room) MeasuredTemperature() (float64, bool) {
	return GetFloat(r.Attributes, "therm_measured_temperature")
}

// SetpointTemperature returns the room's target temperature.
func (r *Room) SetpointTemperature() (float64, bool) {
	return GetFloat(r.Attributes, "therm_setpoint_temperature")
}

// SetpointMode returns the room's thermostat mode, e.g. "schedule",
// "manual", "max", "off".
func (r *Room) SetpointMode() (string, bool) {
	return GetString(r.Attributes, "therm_setpoint_mode")
}

// Module is any physical device: station, sensor, camera, thermostat,
// switch, shutter. A Module belongs to exactly one Home. Its capability set
// is resolved once at ingestion and never changes.
type Module struct {
	ID     string
	Type   DeviceType
	Name   string
	HomeID string
	RoomID string

	// Bridge is the id of the gateway module this module reports through,
	// empty for top-level modules.
	Bridge string

	// Reachable is nil when the backend did not report reachability.
	Reachable *bool

	// LastSeen is the freshness timestamp last reported by the backend,
	// zero when not reported.
	LastSeen time.Time

	// Capabilities is the union of the tags implied by this module's type
	// and by its bridge's type.
	Capabilities []Capability

	// Attributes holds the raw attribute names and values exactly as last
	// reported by the backend. Absent attributes are absent, never zeroed:
	// use the typed accessors to distinguish "not reported" from "reported
	// as off/zero".
	Attributes map[string]any
}

// HasCapability reports whether the module's resolved capability set
// includes the given tag.
func (m *Module) HasCapability(c Capability) bool {
	for _, have := range m.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// IsReachable reports the backend's reachability flag. The second result is
// false when reachability was not reported.
func (m *Module) IsReachable() (bool, bool) {
	if m.Reachable == nil {
		return false, false
	}
	return *m.Reachable, true
}

// batteryStateLevels maps the backend's battery_state strings to a display
// percentage.
var batteryStateLevels = map[string]int{
	"max":      100,
	"full":     90,
	"high":     75,
	"medium":   50,
	"low":      25,
	"very_low": 10,
}

// BatteryPercent returns the battery level as a percentage. It prefers the
// numeric battery_percent attribute and falls back to the battery_state
// string. The second result is false when the module did not report battery
// data at all.
func (m *Module) BatteryPercent() (int, bool) {
	if pct, ok := GetInt(m.Attributes, "battery_percent"); ok {
		return pct, true
	}
	if state, ok := GetString(m.Attributes, "battery_state"); ok {
		if pct, ok := batteryStateLevels[state]; ok {
			return pct, true
		}
	}
	if level, ok := GetInt(m.Attributes, "battery_level"); ok {
		return level, true
	}
	return 0, false
}

// Temperature returns the measured temperature in degrees Celsius.
func (m *Module) Temperature() (float64, bool) {
	return GetFloat(m.Attributes, "temperature")
}

// Humidity returns the measured relative humidity in percent.
func (m *Module) Humidity() (int, bool) {
	return GetInt(m.Attributes, "humidity")
}

// CO2 returns the measured CO2 concentration in ppm.
func (m *Module) CO2() (int, bool) {
	return GetInt(m.Attributes, "co2")
}

// Noise returns the measured noise level in dB.
func (m *Module) Noise() (int, bool) {
	return GetInt(m.Attributes, "noise")
}

// Pressure returns the measured pressure in mbar.
func (m *Module) Pressure() (float64, bool) {
	return GetFloat(m.Attributes, "pressure")
}

// Rain returns the current rain measurement in mm.
func (m *Module) Rain() (float64, bool) {
	return GetFloat(m.Attributes, "rain")
}

// WindStrength returns the wind strength in km/h.
func (m *Module) WindStrength() (int, bool) {
	return GetInt(m.Attributes, "wind_strength")
}

// WindAngle returns the wind angle in degrees.
func (m *Module) WindAngle() (int, bool) {
	return GetInt(m.Attributes, "wind_angle")
}

// WindDirection returns the wind direction as a compass point.
func (m *Module) WindDirection() (string, bool) {
	angle, ok := m.WindAngle()
	if !ok {
		return "", false
	}
	return compassDirection(angle), true
}

// Power returns the instantaneous power draw in watts.
func (m *Module) Power() (int, bool) {
	return GetInt(m.Attributes, "power")
}

// SwitchedOn reports whether a switch module is on.
func (m *Module) SwitchedOn() (bool, bool) {
	return GetBool(m.Attributes, "on")
}

// Brightness returns a dimmer's brightness in percent.
func (m *Module) Brightness() (int, bool) {
	return GetInt(m.Attributes, "brightness")
}

// ShutterPosition returns a shutter's current position, 0 (closed) to 100
// (open).
func (m *Module) ShutterPosition() (int, bool) {
	return GetInt(m.Attributes, "current_position")
}

// TargetShutterPosition returns a shutter's commanded target position.
func (m *Module) TargetShutterPosition() (int, bool) {
	return GetInt(m.Attributes, "target_position")
}

// BoilerStatus reports whether the boiler is currently heating.
func (m *Module) BoilerStatus() (bool, bool) {
	return GetBool(m.Attributes, "boiler_status")
}

// FanSpeed returns a ventilation module's fan speed.
func (m *Module) FanSpeed() (int, bool) {
	return GetInt(m.Attributes, "fan_speed")
}

// FirmwareRevision returns the module's firmware revision.
func (m *Module) FirmwareRevision() (int, bool) {
	return GetInt(m.Attributes, "firmware_revision")
}

// WifiStrength returns the wifi signal strength.
func (m *Module) WifiStrength() (int, bool) {
	return GetInt(m.Attributes, "wifi_strength")
}

// RfStrength returns the radio signal strength.
func (m *Module) RfStrength() (int, bool) {
	return GetInt(m.Attributes, "rf_strength")
}

// MonitoringOn reports whether a camera's monitoring is enabled. The backend
// reports this as the string "on"/"off".
func (m *Module) MonitoringOn() (bool, bool) {
	if s, ok := GetString(m.Attributes, "monitoring"); ok {
		return s == "on", true
	}
	if b, ok := GetBool(m.Attributes, "monitoring"); ok {
		return b, true
	}
	return false, false
}

// compassDirection converts an angle in degrees to a compass point.
func compassDirection(angle int) string {
	switch {
	case angle >= 330:
		return "N"
	case angle >= 300:
		return "NW"
	case angle >= 240:
		return "W"
	case angle >= 210:
		return "SW"
	case angle >= 150:
		return "S"
	case angle >= 120:
		return "SE"
	case angle >= 60:
		return "E"
	case angle >= 30:
		return "NE"
	default:
		return "N"
	}
}

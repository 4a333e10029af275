package netatmo

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"time"
)

// RawHomesData is the catalog topology as returned by the homesdata
// endpoint. Key names are backend-defined and preserved verbatim.
type RawHomesData struct {
	Homes []RawHome `json:"homes"`
	User  RawUser   `json:"user"`
}

// RawUser identifies the account the catalog belongs to.
type RawUser struct {
	Email string `json:"email"`
}

// RawHome is one home entry of the catalog. Modules are kept as raw JSON so
// that every attribute the backend reports survives ingestion untouched.
type RawHome struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Rooms     []RawRoom         `json:"rooms"`
	Modules   []json.RawMessage `json:"modules"`
	Schedules []RawSchedule     `json:"schedules"`
	Persons   []RawPerson       `json:"persons"`
}

// RawSchedule is one schedule entry of the catalog.
type RawSchedule struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Default  bool     `json:"default"`
	Selected bool     `json:"selected"`
	AwayTemp *float64 `json:"away_temp"`
	HgTemp   *float64 `json:"hg_temp"`
}

// RawPerson is one person entry of the catalog.
type RawPerson struct {
	ID     string `json:"id"`
	Pseudo string `json:"pseudo"`
	URL    string `json:"url"`
}

// RawRoom is one room entry of the catalog.
type RawRoom struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	ModuleIDs []string `json:"module_ids"`
}

// RawHomeStatus is the dynamic module/room state as returned by the
// homestatus endpoint for a single home.
type RawHomeStatus struct {
	Home RawHomeState `json:"home"`
}

// RawHomeState carries per-module and per-room state payloads.
type RawHomeState struct {
	ID      string            `json:"id"`
	Modules []json.RawMessage `json:"modules"`
	Rooms   []json.RawMessage `json:"rooms"`
}

// CatalogSnapshot is the full home/room/module graph at a point in time.
// Snapshots are immutable once returned from ingestion: refreshes build a
// new snapshot and replace the old one wholesale, so readers holding an old
// snapshot never observe a half-built graph.
type CatalogSnapshot struct {
	Homes      []*Home
	UserEmail  string
	IngestedAt time.Time

	homesByID   map[string]*Home
	modulesByID map[string]*Module
	moduleOrder []string // global ingestion order, for first-match lookups
}

// freshnessKeys are the per-module timestamp attributes the backend uses,
// in preference order.
var freshnessKeys = []string{"last_seen", "last_status_store", "last_therm_seen", "last_message", "time_utc"}

// Ingest builds a catalog snapshot from raw homesdata. A home missing its id
// is dropped with a warning rather than failing the whole ingestion, so one
// bad home does not prevent access to the rest of the account's devices.
// The logger may be nil.
func Ingest(raw *RawHomesData, logger *slog.Logger) (*CatalogSnapshot, error) {
	if raw == nil {
		return nil, &MalformedCatalogError{Reason: "nil catalog"}
	}

	snap := &CatalogSnapshot{
		UserEmail:   raw.User.Email,
		IngestedAt:  time.Now(),
		homesByID:   make(map[string]*Home),
		modulesByID: make(map[string]*Module),
	}

	for _, rawHome := range raw.Homes {
		if rawHome.ID == "" {
			logWarn(logger, "dropping home with no id", slog.String("name", rawHome.Name))
			continue
		}

		home := &Home{
			ID:      rawHome.ID,
			Name:    rawHome.Name,
			Rooms:   make(map[string]*Room),
			Modules: make(map[string]*Module),
		}
		if home.Name == "" {
			home.Name = "Unknown " + home.ID
		}

		for _, rawRoom := range rawHome.Rooms {
			if rawRoom.ID == "" {
				logWarn(logger, "dropping room with no id", slog.String("home", home.ID))
				continue
			}
			home.Rooms[rawRoom.ID] = &Room{
				ID:        rawRoom.ID,
				Name:      rawRoom.Name,
				Type:      rawRoom.Type,
				HomeID:    home.ID,
				ModuleIDs: rawRoom.ModuleIDs,
			}
		}

		for _, rawSchedule := range rawHome.Schedules {
			if rawSchedule.ID == "" {
				logWarn(logger, "dropping schedule with no id", slog.String("home", home.ID))
				continue
			}
			sched := &Schedule{
				ID:       rawSchedule.ID,
				Name:     rawSchedule.Name,
				Type:     rawSchedule.Type,
				Default:  rawSchedule.Default,
				Selected: rawSchedule.Selected,
			}
			if sched.Type == "" {
				sched.Type = "therm"
			}
			if rawSchedule.AwayTemp != nil {
				sched.AwayTemp = *rawSchedule.AwayTemp
				sched.HasAwayTemp = true
			}
			if rawSchedule.HgTemp != nil {
				sched.FrostGuardTemp = *rawSchedule.HgTemp
				sched.HasFrostGuardTemp = true
			}
			home.Schedules = append(home.Schedules, sched)
		}

		for _, rawPerson := range rawHome.Persons {
			if rawPerson.ID == "" {
				logWarn(logger, "dropping person with no id", slog.String("home", home.ID))
				continue
			}
			home.Persons = append(home.Persons, &Person{
				ID:     rawPerson.ID,
				Pseudo: rawPerson.Pseudo,
				URL:    rawPerson.URL,
			})
		}

		for _, rawModule := range rawHome.Modules {
			mod, ok := parseModule(rawModule, home.ID, logger)
			if !ok {
				continue
			}
			home.Modules[mod.ID] = mod
			home.moduleOrder = append(home.moduleOrder, mod.ID)
		}

		// Capability resolution happens after all of the home's modules are
		// known so a module can inherit tags from its bridge's type.
		for _, id := range home.moduleOrder {
			mod := home.Modules[id]
			mod.Capabilities = resolveModuleCapabilities(mod, home, logger)
		}

		snap.Homes = append(snap.Homes, home)
		snap.homesByID[home.ID] = home
		for _, id := range home.moduleOrder {
			if _, dup := snap.modulesByID[id]; dup {
				continue
			}
			snap.modulesByID[id] = home.Modules[id]
			snap.moduleOrder = append(snap.moduleOrder, id)
		}
	}

	return snap, nil
}

// parseModule decodes one raw module entry. Attributes are the decoded JSON
// object verbatim; topology fields are additionally lifted into typed fields.
func parseModule(data json.RawMessage, homeID string, logger *slog.Logger) (*Module, bool) {
	var attrs map[string]any
	if err := json.Unmarshal(data, &attrs); err != nil {
		logWarn(logger, "dropping unparseable module entry",
			slog.String("home", homeID),
			slog.String("error", err.Error()))
		return nil, false
	}

	id, _ := GetString(attrs, "id")
	if id == "" {
		// Weather station payloads use "_id".
		id, _ = GetString(attrs, "_id")
	}
	if id == "" {
		logWarn(logger, "dropping module with no id", slog.String("home", homeID))
		return nil, false
	}

	typ, _ := GetString(attrs, "type")
	name, _ := GetString(attrs, "name")
	if name == "" {
		name = "Unknown " + id
	}
	bridge, _ := GetString(attrs, "bridge")
	roomID, _ := GetString(attrs, "room_id")

	mod := &Module{
		ID:         id,
		Type:       DeviceType(typ),
		Name:       name,
		HomeID:     homeID,
		RoomID:     roomID,
		Bridge:     bridge,
		Attributes: attrs,
	}
	if reachable, ok := GetBool(attrs, "reachable"); ok {
		mod.Reachable = &reachable
	}
	mod.LastSeen = extractLastSeen(attrs)
	return mod, true
}

// extractLastSeen picks the module's freshness timestamp from the backend's
// key variants. Returns the zero time when none is reported.
func extractLastSeen(attrs map[string]any) time.Time {
	for _, key := range freshnessKeys {
		if ts, ok := GetInt(attrs, key); ok && ts > 0 {
			return time.Unix(int64(ts), 0)
		}
	}
	return time.Time{}
}

// resolveModuleCapabilities computes the union of the module's own type tags
// and the tags implied by its bridge's type. Unknown device types resolve to
// an empty set and are logged for forward compatibility with new hardware.
func resolveModuleCapabilities(mod *Module, home *Home, logger *slog.Logger) []Capability {
	caps := ResolveCapabilities(mod.Type)
	if caps == nil && !KnownDeviceType(mod.Type) {
		logWarn(logger, "unknown device type",
			slog.String("module", mod.ID),
			slog.String("type", string(mod.Type)))
	}

	if mod.Bridge != "" {
		if bridge, ok := home.Modules[mod.Bridge]; ok {
			for _, c := range ResolveCapabilities(bridge.Type) {
				if !containsCapability(caps, c) {
					caps = append(caps, c)
				}
			}
		}
	}
	return caps
}

func containsCapability(caps []Capability, c Capability) bool {
	for _, have := range caps {
		if have == c {
			return true
		}
	}
	return false
}

// Home returns a home by id, or nil if not present.
func (s *CatalogSnapshot) Home(id string) *Home {
	return s.homesByID[id]
}

// FindModuleByID returns the module with the given id, searching all homes,
// or nil if not found. When home is non-empty only that home (by id or name)
// is searched.
func (s *CatalogSnapshot) FindModuleByID(id string, home ...string) *Module {
	if len(home) > 0 && home[0] != "" {
		h := s.findHome(home[0])
		if h == nil {
			return nil
		}
		return h.Modules[id]
	}
	return s.modulesByID[id]
}

// FindModuleByName returns the first module with the given display name in
// ingestion order. When home is non-empty the search is restricted to that
// home (matched by id or name), which disambiguates names shared across
// homes. With no home given and multiple matches, whichever home was
// ingested first wins; this is a documented ambiguity, not a guarantee.
func (s *CatalogSnapshot) FindModuleByName(name string, home ...string) *Module {
	if len(home) > 0 && home[0] != "" {
		h := s.findHome(home[0])
		if h == nil {
			return nil
		}
		for _, m := range h.ModulesInOrder() {
			if m.Name == name {
				return m
			}
		}
		return nil
	}
	for _, id := range s.moduleOrder {
		if m := s.modulesByID[id]; m.Name == name {
			return m
		}
	}
	return nil
}

// findHome resolves a home reference by id first, then by display name.
func (s *CatalogSnapshot) findHome(ref string) *Home {
	if h, ok := s.homesByID[ref]; ok {
		return h
	}
	for _, h := range s.Homes {
		if h.Name == ref {
			return h
		}
	}
	return nil
}

// AllModules returns every module in global ingestion order.
func (s *CatalogSnapshot) AllModules() []*Module {
	out := make([]*Module, 0, len(s.moduleOrder))
	for _, id := range s.moduleOrder {
		out = append(out, s.modulesByID[id])
	}
	return out
}

// RequireModules returns ErrNoDevice unless the snapshot contains at least
// one module of the given category.
func (s *CatalogSnapshot) RequireModules(category DeviceCategory) error {
	for _, id := range s.moduleOrder {
		if c, ok := CategoryOf(s.modulesByID[id].Type); ok && c == category {
			return nil
		}
	}
	return ErrNoDevice
}

// withStatus builds a new snapshot with the given home's module and room
// state overlaid. The receiver is left untouched; modules of the affected
// home are deep-copied before their attributes are merged.
func (s *CatalogSnapshot) withStatus(status *RawHomeStatus, logger *slog.Logger) *CatalogSnapshot {
	home := s.homesByID[status.Home.ID]
	if home == nil {
		// A status payload for a home we never saw in topology is dropped
		// rather than causing a downstream fault.
		logWarn(logger, "dropping status for unknown home", slog.String("home", status.Home.ID))
		return s
	}

	next := &CatalogSnapshot{
		UserEmail:   s.UserEmail,
		IngestedAt:  time.Now(),
		homesByID:   make(map[string]*Home, len(s.homesByID)),
		modulesByID: make(map[string]*Module, len(s.modulesByID)),
		moduleOrder: s.moduleOrder,
	}

	updated := &Home{
		ID:          home.ID,
		Name:        home.Name,
		Rooms:       make(map[string]*Room, len(home.Rooms)),
		Modules:     make(map[string]*Module, len(home.Modules)),
		Schedules:   home.Schedules,
		Persons:     home.Persons,
		moduleOrder: home.moduleOrder,
	}
	for id, room := range home.Rooms {
		updated.Rooms[id] = copyRoom(room)
	}
	for id, mod := range home.Modules {
		updated.Modules[id] = copyModule(mod)
	}

	for _, rawState := range status.Home.Modules {
		var state map[string]any
		if err := json.Unmarshal(rawState, &state); err != nil {
			logWarn(logger, "dropping unparseable module state",
				slog.String("home", home.ID),
				slog.String("error", err.Error()))
			continue
		}
		id, _ := GetString(state, "id")
		mod, ok := updated.Modules[id]
		if !ok {
			logWarn(logger, "dropping state for unknown module",
				slog.String("home", home.ID),
				slog.String("module", id))
			continue
		}
		for key, val := range state {
			mod.Attributes[key] = val
		}
		if reachable, ok := GetBool(state, "reachable"); ok {
			mod.Reachable = &reachable
		}
		if ls := extractLastSeen(state); !ls.IsZero() {
			mod.LastSeen = ls
		}
	}

	for _, rawState := range status.Home.Rooms {
		var state map[string]any
		if err := json.Unmarshal(rawState, &state); err != nil {
			continue
		}
		id, _ := GetString(state, "id")
		room, ok := updated.Rooms[id]
		if !ok {
			continue
		}
		if room.Attributes == nil {
			room.Attributes = make(map[string]any, len(state))
		}
		for key, val := range state {
			room.Attributes[key] = val
		}
	}

	for _, h := range s.Homes {
		if h.ID == home.ID {
			h = updated
		}
		next.Homes = append(next.Homes, h)
		next.homesByID[h.ID] = h
		for _, id := range h.moduleOrder {
			if _, dup := next.modulesByID[id]; dup {
				continue
			}
			next.modulesByID[id] = h.Modules[id]
		}
	}

	return next
}

// copyRoom deep-copies a room so an overlay cannot mutate the prior
// snapshot through the shared attribute map.
func copyRoom(r *Room) *Room {
	copied := *r
	if r.Attributes != nil {
		copied.Attributes = make(map[string]any, len(r.Attributes))
		for k, v := range r.Attributes {
			copied.Attributes[k] = v
		}
	}
	return &copied
}

// copyModule deep-copies a module so an overlay cannot mutate the prior
// snapshot.
func copyModule(m *Module) *Module {
	copied := *m
	copied.Attributes = make(map[string]any, len(m.Attributes))
	for k, v := range m.Attributes {
		copied.Attributes[k] = v
	}
	copied.Capabilities = make([]Capability, len(m.Capabilities))
	copy(copied.Capabilities, m.Capabilities)
	if m.Reachable != nil {
		reachable := *m.Reachable
		copied.Reachable = &reachable
	}
	return &copied
}

func logWarn(logger *slog.Logger, msg string, attrs ...slog.Attr) {
	if logger == nil {
		return
	}
	logger.LogAttrs(context.Background(), slog.LevelWarn, msg, attrs...)
}

// GetHomesData fetches the catalog topology from the homesdata endpoint.
func (c *Client) GetHomesData(ctx context.Context) (*RawHomesData, error) {
	data, err := c.postForm(ctx, homesDataEndpoint, url.Values{})
	if err != nil {
		return nil, err
	}
	body, err := extractBody(data)
	if err != nil {
		return nil, err
	}
	var raw RawHomesData
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &MalformedCatalogError{Reason: "homesdata body", Err: err}
	}
	return &raw, nil
}

// GetHomeStatus fetches dynamic module/room state for one home.
func (c *Client) GetHomeStatus(ctx context.Context, homeID string) (*RawHomeStatus, error) {
	if homeID == "" {
		return nil, ErrEmptyHomeID
	}
	params := url.Values{}
	params.Set("home_id", homeID)
	data, err := c.postForm(ctx, homeStatusEndpoint, params)
	if err != nil {
		return nil, err
	}
	body, err := extractBody(data)
	if err != nil {
		return nil, err
	}
	var raw RawHomeStatus
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &MalformedCatalogError{Reason: "homestatus body", Err: err}
	}
	return &raw, nil
}

package netatmo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Shutter command positions beyond the 0-100 range.
const (
	ShutterOpen      = 100
	ShutterClosed    = 0
	ShutterStop      = -1
	ShutterPreferred = -2
)

// attributeCapabilities maps a settable attribute to the capability a module
// must carry for the command to be valid. The gate is purely local
// validation: it cannot guarantee the backend accepts the value, but it
// eliminates a class of round-trips for obviously invalid device state.
var attributeCapabilities = map[string]Capability{
	"on":               CapabilitySwitch,
	"brightness":       CapabilityDimmer,
	"target_position":  CapabilityShutter,
	"current_position": CapabilityShutter,
	"shutter_position": CapabilityShutter,
	"fan_speed":        CapabilityFan,
	"floodlight":       CapabilityFloodlight,
	"monitoring":       CapabilityMonitoring,
	"siren_status":     CapabilitySiren,
	"contactor_mode":   CapabilityContactor,
	"offload":          CapabilityOffload,
}

// ModuleState is one module entry of a setstate payload. Key names go to the
// backend verbatim.
type ModuleState map[string]any

// SetStateRequest is a state-change command for one home, ready to be
// executed by the client. Building a request never mutates the local graph;
// the graph only changes on a subsequent catalog refresh.
type SetStateRequest struct {
	HomeID  string
	Modules []ModuleState
}

// payload is the wire shape posted to the setstate endpoint.
func (r *SetStateRequest) payload() map[string]any {
	return map[string]any{
		"home": map[string]any{
			"id":      r.HomeID,
			"modules": r.Modules,
		},
	}
}

// SetAttribute builds a state-change request setting one raw attribute on a
// module. It returns ErrUnsupportedCapability when the module's resolved
// capability set does not include the capability implied by the attribute,
// before any network call is attempted.
func (s *CatalogSnapshot) SetAttribute(moduleID, attribute string, value any) (*SetStateRequest, error) {
	if moduleID == "" {
		return nil, ErrEmptyModuleID
	}
	mod := s.FindModuleByID(moduleID)
	if mod == nil {
		return nil, fmt.Errorf("%w: module %q", ErrNotFound, moduleID)
	}

	required, known := attributeCapabilities[attribute]
	if !known || !mod.HasCapability(required) {
		return nil, fmt.Errorf("%w: attribute %q on module %q (type %s)",
			ErrUnsupportedCapability, attribute, moduleID, mod.Type)
	}

	// The wire attribute for shutter movement is target_position.
	if attribute == "shutter_position" || attribute == "current_position" {
		attribute = "target_position"
	}

	state := ModuleState{
		"id":      mod.ID,
		attribute: value,
	}
	if mod.Bridge != "" {
		state["bridge"] = mod.Bridge
	}

	return &SetStateRequest{
		HomeID:  mod.HomeID,
		Modules: []ModuleState{state},
	}, nil
}

// SetSwitch builds a request turning a switch module on or off.
func (s *CatalogSnapshot) SetSwitch(moduleID string, on bool) (*SetStateRequest, error) {
	return s.SetAttribute(moduleID, "on", on)
}

// SetBrightness builds a request setting a dimmer's brightness, clamped to
// 0-100.
func (s *CatalogSnapshot) SetBrightness(moduleID string, brightness int) (*SetStateRequest, error) {
	return s.SetAttribute(moduleID, "brightness", clamp(brightness, 0, 100))
}

// SetShutterPosition builds a request moving a shutter to the target
// position. Positions below ShutterPreferred default to ShutterStop; values
// above ShutterOpen are clamped.
func (s *CatalogSnapshot) SetShutterPosition(moduleID string, position int) (*SetStateRequest, error) {
	if position < ShutterPreferred {
		position = ShutterStop
	}
	if position > ShutterOpen {
		position = ShutterOpen
	}
	return s.SetAttribute(moduleID, "target_position", position)
}

// SetFanSpeed builds a request setting a ventilation module's fan speed,
// clamped to the supported 1-2 range.
func (s *CatalogSnapshot) SetFanSpeed(moduleID string, speed int) (*SetStateRequest, error) {
	return s.SetAttribute(moduleID, "fan_speed", clamp(speed, 1, 2))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SetState executes a state-change request against the setstate endpoint.
func (c *Client) SetState(ctx context.Context, req *SetStateRequest) error {
	if req == nil || req.HomeID == "" {
		return ErrEmptyHomeID
	}
	data, err := c.postJSON(ctx, setStateEndpoint, req.payload())
	if err != nil {
		return err
	}
	return checkAPIStatus(data)
}

// SwitchHomeSchedule makes the given schedule the home's active one.
func (c *Client) SwitchHomeSchedule(ctx context.Context, homeID, scheduleID string) error {
	if homeID == "" {
		return ErrEmptyHomeID
	}
	if scheduleID == "" {
		return ErrEmptyScheduleID
	}

	params := url.Values{}
	params.Set("home_id", homeID)
	params.Set("schedule_id", scheduleID)

	data, err := c.postForm(ctx, switchHomeScheduleEndpoint, params)
	if err != nil {
		return err
	}
	return checkAPIStatus(data)
}

// SetRoomThermPoint sets a room's thermostat setpoint. Mode is one of
// "manual", "max", "off" or "home"; temp is used with manual mode and
// endTime (unix seconds) optionally bounds it.
func (c *Client) SetRoomThermPoint(ctx context.Context, homeID, roomID, mode string, temp float64, endTime int64) error {
	if homeID == "" {
		return ErrEmptyHomeID
	}
	if roomID == "" {
		return ErrEmptyRoomID
	}

	params := url.Values{}
	params.Set("home_id", homeID)
	params.Set("room_id", roomID)
	params.Set("mode", mode)
	if mode == "manual" {
		params.Set("temp", strconv.FormatFloat(temp, 'f', -1, 64))
	}
	if endTime > 0 {
		params.Set("endtime", strconv.FormatInt(endTime, 10))
	}

	data, err := c.postForm(ctx, setRoomThermPointEndpoint, params)
	if err != nil {
		return err
	}
	return checkAPIStatus(data)
}

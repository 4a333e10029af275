package netatmo

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strconv"
)

// RawStationsData is the legacy weather station payload from the
// getstationsdata endpoint. Devices are kept raw for verbatim attribute
// preservation, like catalog modules.
type RawStationsData struct {
	Devices []json.RawMessage `json:"devices"`
}

// GetStationsData fetches the account's weather stations. When favorites is
// true, stations marked as favorites are included alongside owned ones.
func (c *Client) GetStationsData(ctx context.Context, favorites bool) (*RawStationsData, error) {
	params := url.Values{}
	params.Set("get_favorites", strconv.FormatBool(favorites))
	data, err := c.postForm(ctx, stationsDataEndpoint, params)
	if err != nil {
		return nil, err
	}
	body, err := extractBody(data)
	if err != nil {
		return nil, err
	}
	var raw RawStationsData
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &MalformedCatalogError{Reason: "stationsdata body", Err: err}
	}
	return &raw, nil
}

// dashboardKeys maps the station payload's measurement key spelling to the
// catalog attribute names the typed accessors read.
var dashboardKeys = map[string]string{
	"Temperature":      "temperature",
	"Humidity":         "humidity",
	"CO2":              "co2",
	"Noise":            "noise",
	"Pressure":         "pressure",
	"AbsolutePressure": "absolute_pressure",
	"Rain":             "rain",
	"WindStrength":     "wind_strength",
	"WindAngle":        "wind_angle",
	"GustStrength":     "gust_strength",
	"GustAngle":        "gust_angle",
}

// IngestStationsData builds a catalog snapshot from a weather station
// payload. Stations reporting the same home id are merged into one home
// (a second station in the same home is a normal account shape); each
// station's attached modules carry the station as their bridge. The logger
// may be nil.
func IngestStationsData(raw *RawStationsData, logger *slog.Logger) (*CatalogSnapshot, error) {
	if raw == nil {
		return nil, &MalformedCatalogError{Reason: "nil stations payload"}
	}

	homes := &RawHomesData{}
	homeIndex := make(map[string]int)
	for _, rawDevice := range raw.Devices {
		var device map[string]any
		if err := json.Unmarshal(rawDevice, &device); err != nil {
			logWarn(logger, "dropping unparseable station entry", slog.String("error", err.Error()))
			continue
		}
		stationID, _ := GetString(device, "_id")
		if stationID == "" {
			logWarn(logger, "dropping station with no id")
			continue
		}

		homeID, _ := GetString(device, "home_id")
		if homeID == "" {
			homeID = stationID
		}
		homeName, _ := GetString(device, "home_name")
		if homeName == "" {
			homeName, _ = GetString(device, "station_name")
		}

		modules := []json.RawMessage{stationModuleJSON(device, "")}
		if list, ok := device["modules"].([]any); ok {
			for _, entry := range list {
				sub, ok := entry.(map[string]any)
				if !ok {
					continue
				}
				modules = append(modules, stationModuleJSON(sub, stationID))
			}
		}

		if i, ok := homeIndex[homeID]; ok {
			home := &homes.Homes[i]
			home.Modules = append(home.Modules, modules...)
			continue
		}
		homeIndex[homeID] = len(homes.Homes)
		homes.Homes = append(homes.Homes, RawHome{
			ID:      homeID,
			Name:    homeName,
			Modules: modules,
		})
	}

	return Ingest(homes, logger)
}

// stationModuleJSON normalizes one station payload entry into catalog module
// shape: measurement keys from dashboard_data are folded in under their
// catalog names and the bridge reference is set for attached modules.
func stationModuleJSON(entry map[string]any, bridge string) json.RawMessage {
	attrs := make(map[string]any, len(entry)+4)
	for k, v := range entry {
		if k == "modules" || k == "dashboard_data" {
			continue
		}
		attrs[k] = v
	}
	if name, ok := GetString(entry, "module_name"); ok {
		attrs["name"] = name
	} else if name, ok := GetString(entry, "station_name"); ok {
		attrs["name"] = name
	}
	if bridge != "" {
		attrs["bridge"] = bridge
	}

	if dashboard, ok := entry["dashboard_data"].(map[string]any); ok {
		for k, v := range dashboard {
			if mapped, ok := dashboardKeys[k]; ok {
				attrs[mapped] = v
			} else {
				attrs[k] = v
			}
		}
	}

	data, err := json.Marshal(attrs)
	if err != nil {
		// Values came from json.Unmarshal, so this cannot happen in
		// practice; an empty object keeps ingestion moving regardless.
		return json.RawMessage("{}")
	}
	return data
}

package core

import (
	"errors"
	"fmt"
)

// ErrUnknownEndpoint is returned when a query names an endpoint that is not
// registered.
var ErrUnknownEndpoint = errors.New("no endpoint registered under provided name")

// Filter parameter names accepted by the API.
const (
	FilterStationCode        = "station_code"
	FilterPanelCode          = "panel_code"
	FilterAdvertiserName     = "advertiser_name"
	FilterBuyerName          = "buyer_name"
	FilterViewingStationCode = "viewing_station_code"
)

// Endpoint describes a single queryable API endpoint: its path, whether its
// results are delivered asynchronously, the filters it accepts and the
// declared column schema of its result table.
type Endpoint struct {
	Name string
	Path string
	// Async endpoints return a job reference immediately and deliver the
	// export through the job-results endpoint.
	Async bool
	// ResponseKey is the JSON object key holding the event array on sync
	// endpoints. Empty for endpoints that return a bare array.
	ResponseKey string
	Filters     []string
	Schema      Schema
}

// SupportsFilter reports whether the endpoint accepts the named filter.
func (e *Endpoint) SupportsFilter(name string) bool {
	for _, f := range e.Filters {
		if f == name {
			return true
		}
	}
	return false
}

// registeredEndpoints holds the known endpoints - the built-in set registers
// itself below, and callers may add their own through RegisterEndpoint.
var registeredEndpoints = make(map[string]*Endpoint)

// RegisterEndpoint adds an endpoint to the registry. Registering a name twice
// replaces the previous entry.
func RegisterEndpoint(endpoint *Endpoint) error {
	if endpoint.Name == "" || endpoint.Path == "" {
		return fmt.Errorf("endpoint requires a name and a path")
	}
	registeredEndpoints[endpoint.Name] = endpoint
	return nil
}

// GetEndpoint looks up a registered endpoint by name.
func GetEndpoint(name string) (*Endpoint, error) {
	endpoint, ok := registeredEndpoints[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEndpoint, name)
	}
	return endpoint, nil
}

// Endpoints returns the names of all registered endpoints.
func Endpoints() []string {
	names := make([]string, 0, len(registeredEndpoints))
	for name := range registeredEndpoints {
		names = append(names, name)
	}
	return names
}

func init() {
	for _, endpoint := range []*Endpoint{
		{
			Name:        "programme_ratings",
			Path:        "programme_ratings",
			ResponseKey: "events",
			Filters:     []string{FilterStationCode, FilterPanelCode},
			Schema: Schema{
				{Name: "panel_code", Type: TypeString},
				{Name: "panel_region", Type: TypeString},
				{Name: "is_macro_region", Type: TypeBool},
				{Name: "station_code", Type: TypeString},
				{Name: "station_name", Type: TypeString},
				{Name: "prog_name", Type: TypeString},
				{Name: "programme_type", Type: TypeString},
				{Name: "programme_start_datetime", Type: TypeDatetime},
				{Name: "programme_duration_minutes", Type: TypeInt},
				{Name: "live_status", Type: TypeString},
				{Name: "genre", Type: TypeString},
				{Name: "audience_size_hundreds", Type: TypeFloat},
			},
		},
		{
			Name:        "advertising_spots",
			Path:        "advertising_spots",
			ResponseKey: "events",
			Filters: []string{
				FilterStationCode, FilterPanelCode,
				FilterAdvertiserName, FilterBuyerName,
			},
			Schema: Schema{
				{Name: "panel_region", Type: TypeString},
				{Name: "panel_code", Type: TypeInt},
				{Name: "station_name", Type: TypeString},
				{Name: "station_code", Type: TypeInt},
				{Name: "spot_type", Type: TypeString},
				{Name: "spot_start_datetime", Type: TypeDatetime},
				{Name: "spot_duration", Type: TypeInt},
				{Name: "break_type", Type: TypeString},
				{Name: "position_in_break", Type: TypeString},
				{Name: "clearcast_commercial_title", Type: TypeString},
				{Name: "clearcast_buyer_name", Type: TypeString},
				{Name: "clearcast_advertiser_name", Type: TypeString},
				{Name: "sales_house_name", Type: TypeString},
				{Name: "audience_size_hundreds", Type: TypeFloat},
			},
		},
		{
			Name:        "audiences_by_time",
			Path:        "audiences_by_time",
			ResponseKey: "events",
			Filters:     []string{FilterStationCode, FilterPanelCode},
			Schema: Schema{
				{Name: "panel_code", Type: TypeInt},
				{Name: "panel_region", Type: TypeString},
				{Name: "station_code", Type: TypeInt},
				{Name: "station_name", Type: TypeString},
				{Name: "date_of_transmission", Type: TypeDate},
				{Name: "activity", Type: TypeString},
				{Name: "transmission_time_period_duration_mins", Type: TypeInt},
				{Name: "audience_size_hundreds", Type: TypeFloat},
			},
		},
		{
			Name:    "programme_schedule",
			Path:    "bulk/programme_schedule",
			Filters: []string{FilterStationCode},
			Schema: Schema{
				{Name: "station_code", Type: TypeInt},
				{Name: "station_name", Type: TypeString},
				{Name: "prog_name", Type: TypeString},
				{Name: "programme_start_datetime", Type: TypeDatetime},
				{Name: "programme_duration_minutes", Type: TypeInt},
				{Name: "genre", Type: TypeString},
			},
		},
		{
			Name:    "spot_schedule",
			Path:    "bulk/spot_schedule",
			Filters: []string{FilterStationCode},
			Schema: Schema{
				{Name: "station_code", Type: TypeInt},
				{Name: "station_name", Type: TypeString},
				{Name: "spot_start_datetime", Type: TypeDatetime},
				{Name: "spot_duration", Type: TypeInt},
				{Name: "break_type", Type: TypeString},
				{Name: "clearcast_commercial_title", Type: TypeString},
				{Name: "clearcast_advertiser_name", Type: TypeString},
			},
		},
		{
			Name:    "spot_audience",
			Path:    "bulk/spot_audience",
			Async:   true,
			Filters: []string{FilterPanelCode},
			Schema: Schema{
				{Name: "panel_code", Type: TypeInt},
				{Name: "station_code", Type: TypeInt},
				{Name: "spot_start_datetime", Type: TypeDatetime},
				{Name: "commercial_number", Type: TypeString},
				{Name: "household_number", Type: TypeInt},
				{Name: "person_number", Type: TypeInt},
				{Name: "audience_size_hundreds", Type: TypeFloat},
			},
		},
		{
			Name:    "programme_audience",
			Path:    "bulk/programme_audience",
			Async:   true,
			Filters: []string{FilterPanelCode},
			Schema: Schema{
				{Name: "panel_code", Type: TypeInt},
				{Name: "station_code", Type: TypeInt},
				{Name: "programme_start_datetime", Type: TypeDatetime},
				{Name: "household_number", Type: TypeInt},
				{Name: "person_number", Type: TypeInt},
				{Name: "audience_size_hundreds", Type: TypeFloat},
			},
		},
		{
			Name:    "viewing",
			Path:    "bulk/viewing",
			Async:   true,
			Filters: []string{FilterPanelCode, FilterViewingStationCode},
			Schema: Schema{
				{Name: "panel_code", Type: TypeInt},
				{Name: "household_number", Type: TypeInt},
				{Name: "person_number", Type: TypeInt},
				{Name: "viewing_station_code", Type: TypeInt},
				{Name: "session_start_datetime", Type: TypeDatetime},
				{Name: "session_end_datetime", Type: TypeDatetime},
				{Name: "activity_type", Type: TypeString},
			},
		},
	} {
		_ = RegisterEndpoint(endpoint)
	}
}

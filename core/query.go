package core

import (
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Params are the caller-facing query parameters. Dates use the YYYY-MM-DD
// layout the API expects. Filters left empty are simply not sent; a filter
// the endpoint does not support fails validation.
type Params struct {
	MinTransmissionDate string `validate:"required,datetime=2006-01-02"`
	MaxTransmissionDate string `validate:"required,datetime=2006-01-02"`

	StationCodes        []string
	PanelCodes          []string
	AdvertiserNames     []string
	BuyerNames          []string
	ViewingStationCodes []string

	// Limit caps the page size on sync endpoints. Zero means server default.
	Limit int `validate:"omitempty,gte=1,lte=5000"`

	// PollInterval and MaxWait tune the job poller on async endpoints.
	// Zero values fall back to the client defaults.
	PollInterval time.Duration `validate:"omitempty,gte=0"`
	MaxWait      time.Duration `validate:"omitempty,gte=0"`
}

// Query is a validated, immutable request against a single endpoint.
type Query struct {
	Endpoint *Endpoint
	Values   url.Values
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// BuildQuery validates params against the named endpoint and translates them
// into query-string values. It is a pure function of its inputs - params is
// never mutated. Failures carry the offending field names.
func BuildQuery(endpointName string, params Params) (*Query, error) {
	endpoint, err := GetEndpoint(endpointName)
	if err != nil {
		return nil, &ValidationError{Fields: []string{"endpoint"}}
	}

	var fields []string

	if err := validate.Struct(params); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		for _, verr := range verrs {
			fields = append(fields, snakeCase(verr.Field()))
		}
	}

	if params.MinTransmissionDate != "" && params.MaxTransmissionDate != "" {
		min, minErr := time.Parse(dateLayout, params.MinTransmissionDate)
		max, maxErr := time.Parse(dateLayout, params.MaxTransmissionDate)
		if minErr == nil && maxErr == nil && min.After(max) {
			fields = append(fields, "min_transmission_date")
		}
	}

	filters := []struct {
		name   string
		values []string
	}{
		{FilterStationCode, params.StationCodes},
		{FilterPanelCode, params.PanelCodes},
		{FilterAdvertiserName, params.AdvertiserNames},
		{FilterBuyerName, params.BuyerNames},
		{FilterViewingStationCode, params.ViewingStationCodes},
	}

	values := url.Values{}
	values.Set("min_transmission_date", params.MinTransmissionDate)
	values.Set("max_transmission_date", params.MaxTransmissionDate)

	for _, filter := range filters {
		if len(filter.values) == 0 {
			continue
		}
		if !endpoint.SupportsFilter(filter.name) {
			fields = append(fields, filter.name)
			continue
		}
		for _, v := range filter.values {
			values.Add(filter.name, v)
		}
	}

	if params.Limit > 0 {
		values.Set("limit", strconv.Itoa(params.Limit))
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	return &Query{Endpoint: endpoint, Values: values}, nil
}

// snakeCase converts an exported field name to its query-parameter spelling.
func snakeCase(field string) string {
	var out []byte
	for i := 0; i < len(field); i++ {
		c := field[i]
		if c >= 'A' && c <= 'Z' {
			if i > 0 {
				out = append(out, '_')
			}
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}

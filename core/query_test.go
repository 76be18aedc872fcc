package core_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/khaledserafy/gobarb/core"
)

func TestBuildQuery(t *testing.T) {
	r := require.New(t)

	query, err := core.BuildQuery("programme_ratings", core.Params{
		MinTransmissionDate: "2024-01-01",
		MaxTransmissionDate: "2024-01-07",
		StationCodes:        []string{"1", "2"},
		PanelCodes:          []string{"50"},
	})
	r.NoError(err)

	r.Equal("programme_ratings", query.Endpoint.Name)
	r.Equal("2024-01-01", query.Values.Get("min_transmission_date"))
	r.Equal("2024-01-07", query.Values.Get("max_transmission_date"))
	r.Equal([]string{"1", "2"}, query.Values["station_code"])
	r.Equal([]string{"50"}, query.Values["panel_code"])
}

func TestBuildQuery_PureFunction(t *testing.T) {
	r := require.New(t)

	params := core.Params{
		MinTransmissionDate: "2024-01-01",
		MaxTransmissionDate: "2024-01-07",
		StationCodes:        []string{"1"},
	}
	snapshot := core.Params{
		MinTransmissionDate: "2024-01-01",
		MaxTransmissionDate: "2024-01-07",
		StationCodes:        []string{"1"},
	}

	first, err := core.BuildQuery("programme_ratings", params)
	r.NoError(err)
	second, err := core.BuildQuery("programme_ratings", params)
	r.NoError(err)

	r.True(reflect.DeepEqual(params, snapshot), "params must not be mutated")
	r.Equal(first.Values, second.Values)
}

func TestBuildQuery_Validation(t *testing.T) {
	tests := []struct {
		name       string
		endpoint   string
		params     core.Params
		wantFields []string
	}{
		{
			name:       "unknown endpoint",
			endpoint:   "programme_feelings",
			params:     core.Params{MinTransmissionDate: "2024-01-01", MaxTransmissionDate: "2024-01-07"},
			wantFields: []string{"endpoint"},
		},
		{
			name:       "missing dates",
			endpoint:   "programme_ratings",
			params:     core.Params{},
			wantFields: []string{"min_transmission_date", "max_transmission_date"},
		},
		{
			name:       "bad date layout",
			endpoint:   "programme_ratings",
			params:     core.Params{MinTransmissionDate: "01/01/2024", MaxTransmissionDate: "2024-01-07"},
			wantFields: []string{"min_transmission_date"},
		},
		{
			name:       "reversed range",
			endpoint:   "programme_ratings",
			params:     core.Params{MinTransmissionDate: "2024-02-01", MaxTransmissionDate: "2024-01-07"},
			wantFields: []string{"min_transmission_date"},
		},
		{
			name:     "unsupported filter",
			endpoint: "programme_ratings",
			params: core.Params{
				MinTransmissionDate: "2024-01-01",
				MaxTransmissionDate: "2024-01-07",
				AdvertiserNames:     []string{"Acme"},
			},
			wantFields: []string{"advertiser_name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := require.New(t)

			_, err := core.BuildQuery(tt.endpoint, tt.params)
			r.Error(err)

			var verr *core.ValidationError
			r.ErrorAs(err, &verr)
			for _, field := range tt.wantFields {
				r.Contains(verr.Fields, field)
			}
		})
	}
}

func TestRegisterEndpoint(t *testing.T) {
	r := require.New(t)

	r.Error(core.RegisterEndpoint(&core.Endpoint{Name: "no_path"}))

	r.NoError(core.RegisterEndpoint(&core.Endpoint{
		Name: "custom_ratings",
		Path: "custom_ratings",
		Schema: core.Schema{
			{Name: "station_id", Type: core.TypeInt},
		},
	}))

	endpoint, err := core.GetEndpoint("custom_ratings")
	r.NoError(err)
	r.Equal("custom_ratings", endpoint.Path)
	r.Contains(core.Endpoints(), "custom_ratings")
}

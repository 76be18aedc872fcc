package client_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/require"

	"github.com/khaledserafy/gobarb/client"
	"github.com/khaledserafy/gobarb/core"
	"github.com/khaledserafy/gobarb/core/mock"
)

func TestFetch_Sync(t *testing.T) {
	r := require.New(t)

	server := mock.NewServer(
		mock.WithEvents("programme_ratings", "events",
			[]map[string]any{{
				"station_code":           "1",
				"station_name":           "BBC One",
				"prog_name":              "News",
				"audience_size_hundreds": 3.4,
			}},
		),
	)
	defer server.Close()

	c, err := client.New(server.URL)
	r.NoError(err)

	result, err := c.Fetch(context.Background(), "programme_ratings", core.Params{
		MinTransmissionDate: "2024-01-01",
		MaxTransmissionDate: "2024-01-07",
		StationCodes:        []string{"1"},
	})
	r.NoError(err)

	r.Equal(1, result.Len())
	r.Equal(result.Schema.Header(), result.Header)

	row := result.Rows[0]
	r.Equal("1", row[result.Schema.Index("station_code")])
	r.Equal("News", row[result.Schema.Index("prog_name")])
	r.Equal(3.4, row[result.Schema.Index("audience_size_hundreds")])

	// fields the response did not carry are null, never omitted
	r.Nil(row[result.Schema.Index("genre")])
}

func TestFetch_ValidationErrorBeforeAnyRequest(t *testing.T) {
	r := require.New(t)

	server := mock.NewServer()
	defer server.Close()

	c, err := client.New(server.URL)
	r.NoError(err)

	_, err = c.Fetch(context.Background(), "programme_ratings", core.Params{})

	var verr *core.ValidationError
	r.ErrorAs(err, &verr)
	r.Equal(0, server.Requests("programme_ratings"))
}

func TestFetch_AsyncGzippedTSV(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(
		"panel_code\thousehold_number\tperson_number\tviewing_station_code\tsession_start_datetime\tsession_end_datetime\tactivity_type\n" +
			"50\t1001\t1\t7\t2024-01-01 20:00:00\t2024-01-01 21:00:00\tlive\n" +
			"50\t1002\t2\t7\t2024-01-01 20:15:00\t2024-01-01 20:45:00\tplayback\n"))
	r.NoError(err)
	r.NoError(gz.Close())

	server := mock.NewServer(
		mock.WithJobStates("pending", "started", "successful"),
		mock.WithExportFile("viewing-part-0.csv.gz", buf.Bytes()),
	)
	defer server.Close()

	c, err := client.New(server.URL)
	r.NoError(err)

	result, err := c.Fetch(context.Background(), "viewing", core.Params{
		MinTransmissionDate: "2024-01-01",
		MaxTransmissionDate: "2024-01-07",
		PanelCodes:          []string{"50"},
		PollInterval:        5 * time.Millisecond,
		MaxWait:             time.Second,
	})
	r.NoError(err)

	r.Equal(2, result.Len())
	r.Equal(3, server.Polls())

	row := result.Rows[0]
	r.Equal(int64(50), row[result.Schema.Index("panel_code")])
	r.Equal(int64(1001), row[result.Schema.Index("household_number")])
	r.Equal("live", row[result.Schema.Index("activity_type")])
}

type spotAudienceRow struct {
	PanelCode            int64   `parquet:"panel_code"`
	StationCode          int64   `parquet:"station_code"`
	SpotStartDatetime    string  `parquet:"spot_start_datetime"`
	CommercialNumber     string  `parquet:"commercial_number"`
	HouseholdNumber      int64   `parquet:"household_number"`
	PersonNumber         int64   `parquet:"person_number"`
	AudienceSizeHundreds float64 `parquet:"audience_size_hundreds"`
}

func TestFetch_AsyncParquet_MultipleFiles(t *testing.T) {
	r := require.New(t)

	encode := func(rows []spotAudienceRow) []byte {
		var buf bytes.Buffer
		writer := parquet.NewGenericWriter[spotAudienceRow](&buf)
		_, err := writer.Write(rows)
		r.NoError(err)
		r.NoError(writer.Close())
		return buf.Bytes()
	}

	server := mock.NewServer(
		mock.WithJobStates("started", "successful"),
		mock.WithExportFile("part-0.parquet", encode([]spotAudienceRow{
			{PanelCode: 50, StationCode: 1, SpotStartDatetime: "2024-01-01 20:00:00", CommercialNumber: "C-1", HouseholdNumber: 1001, PersonNumber: 1, AudienceSizeHundreds: 1.5},
		})),
		mock.WithExportFile("part-1.parquet", encode([]spotAudienceRow{
			{PanelCode: 50, StationCode: 1, SpotStartDatetime: "2024-01-01 20:30:00", CommercialNumber: "C-2", HouseholdNumber: 1002, PersonNumber: 2, AudienceSizeHundreds: 2.5},
		})),
	)
	defer server.Close()

	c, err := client.New(server.URL)
	r.NoError(err)

	result, err := c.Fetch(context.Background(), "spot_audience", core.Params{
		MinTransmissionDate: "2024-01-01",
		MaxTransmissionDate: "2024-01-07",
		PanelCodes:          []string{"50"},
		PollInterval:        5 * time.Millisecond,
		MaxWait:             time.Second,
	})
	r.NoError(err)

	// export files are concatenated into one table
	r.Equal(2, result.Len())
	r.Equal("C-1", result.Rows[0][result.Schema.Index("commercial_number")])
	r.Equal("C-2", result.Rows[1][result.Schema.Index("commercial_number")])
}

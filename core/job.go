package core

import (
	"encoding/json"
	"time"
)

// Job is an asynchronous export job issued by the server. It is owned by a
// single fetch operation and mutated only by polling responses: the poller
// advances State and fills ResultURLs when the export is ready.
type Job struct {
	ID         string
	Endpoint   *Endpoint
	State      JobState
	ResultURLs []string
	Created    time.Time
}

// NewJob wraps a server-issued job identifier.
func NewJob(id string, endpoint *Endpoint) *Job {
	return &Job{
		ID:       id,
		Endpoint: endpoint,
		State:    JobStatePending,
		Created:  time.Now(),
	}
}

type jobPersistent struct {
	ID         string   `json:"id"`
	Endpoint   string   `json:"endpoint"`
	State      string   `json:"state"`
	ResultURLs []string `json:"result_urls,omitempty"`
	Created    int64    `json:"created_us"`
}

func (j *Job) MarshalJSON() ([]byte, error) {
	endpoint := ""
	if j.Endpoint != nil {
		endpoint = j.Endpoint.Name
	}
	return json.Marshal(&jobPersistent{
		ID:         j.ID,
		Endpoint:   endpoint,
		State:      j.State.String(),
		ResultURLs: j.ResultURLs,
		Created:    j.Created.UnixMicro(),
	})
}

func (j *Job) UnmarshalJSON(data []byte) error {
	var alias jobPersistent
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	endpoint, err := GetEndpoint(alias.Endpoint)
	if err != nil {
		endpoint = nil
	}

	*j = Job{
		ID:         alias.ID,
		Endpoint:   endpoint,
		State:      JobStateFromString(alias.State),
		ResultURLs: alias.ResultURLs,
		Created:    time.UnixMicro(alias.Created),
	}
	return nil
}

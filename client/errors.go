package client

import (
	"fmt"
	"time"

	"github.com/khaledserafy/gobarb/core"
)

// TransportError is an HTTP failure that survived the retry policy: a
// non-retryable 4xx, or a transient failure after retries are exhausted.
type TransportError struct {
	Status int
	Body   []byte
}

func (e *TransportError) Error() string {
	body := string(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("request failed with status %d: %s", e.Status, body)
}

// SubmissionError means an async submit response carried no job identifier.
type SubmissionError struct {
	Body []byte
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("no job id in submission response: %s", string(e.Body))
}

// TimeoutError means the poll deadline elapsed before the job reached a
// terminal state. The job is marked expired client-side.
type TimeoutError struct {
	Elapsed   time.Duration
	LastState core.JobState
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("job not ready after %s, last state %q", e.Elapsed.Round(time.Millisecond), e.LastState)
}

// JobFailedError carries the server-reported diagnostic of a failed job.
type JobFailedError struct {
	Reason string
}

func (e *JobFailedError) Error() string {
	return fmt.Sprintf("job failed: %s", e.Reason)
}

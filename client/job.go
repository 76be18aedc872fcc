package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/khaledserafy/gobarb/core"
)

// Submit posts an async query and returns the job the server opened for it.
func (c *Client) Submit(ctx context.Context, query *core.Query) (*core.Job, error) {
	body := make(map[string]any, len(query.Values))
	for key, values := range query.Values {
		if len(values) == 1 {
			body[key] = values[0]
		} else {
			body[key] = values
		}
	}

	resp, err := c.do(ctx, "POST", query.Endpoint.Path, nil, body, true)
	if err != nil {
		return nil, err
	}

	var submission struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(resp.body, &submission); err != nil || submission.JobID == "" {
		return nil, &SubmissionError{Body: resp.body}
	}

	c.log.Debug("job submitted",
		zap.String("endpoint", query.Endpoint.Name),
		zap.String("job_id", submission.JobID),
	)
	return core.NewJob(submission.JobID, query.Endpoint), nil
}

// jobStatus is one poll response from the job-results endpoint.
type jobStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  []struct {
		Data string `json:"data"`
	} `json:"result"`
}

// PollOption tunes a single AwaitReady call, overriding client defaults.
type PollOption func(*pollConfig)

type pollConfig struct {
	interval time.Duration
	maxWait  time.Duration
}

func WithInterval(interval time.Duration) PollOption {
	return func(cfg *pollConfig) {
		if interval > 0 {
			cfg.interval = interval
		}
	}
}

func WithDeadline(maxWait time.Duration) PollOption {
	return func(cfg *pollConfig) {
		if maxWait > 0 {
			cfg.maxWait = maxWait
		}
	}
}

// AwaitReady polls the job until it reaches a terminal state, mutating the
// job in place as responses arrive. The interval between polls grows with
// jitter up to a cap. The wall-clock deadline is mandatory - on expiry the
// job is marked expired and a TimeoutError returned.
func (c *Client) AwaitReady(ctx context.Context, job *core.Job, opts ...PollOption) error {
	cfg := &pollConfig{interval: c.pollInterval, maxWait: c.maxWait}
	for _, opt := range opts {
		opt(cfg)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.interval
	bo.RandomizationFactor = 0.2
	bo.Multiplier = 1.5
	bo.MaxInterval = 4 * cfg.interval
	bo.MaxElapsedTime = 0
	bo.Reset()

	start := time.Now()
	for {
		if err := c.pollOnce(ctx, job); err != nil {
			return err
		}

		if job.State == core.JobStateReady {
			c.log.Debug("job ready",
				zap.String("job_id", job.ID),
				zap.Int("files", len(job.ResultURLs)),
				zap.Duration("took", time.Since(start)),
			)
			return nil
		}

		if elapsed := time.Since(start); elapsed >= cfg.maxWait {
			lastState := job.State
			job.State = core.JobStateExpired
			return &TimeoutError{Elapsed: elapsed, LastState: lastState}
		}

		wait := bo.NextBackOff()
		if remaining := cfg.maxWait - time.Since(start); wait > remaining {
			wait = remaining
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// pollOnce queries the job-results endpoint and applies the response to the
// job. A server-reported failure is terminal and returned as JobFailedError.
func (c *Client) pollOnce(ctx context.Context, job *core.Job) error {
	var status jobStatus
	path := fmt.Sprintf("async-batch/results/%s", job.ID)
	if err := c.getJSON(ctx, path, nil, &status); err != nil {
		return err
	}

	switch status.Status {
	case "failed", "error":
		job.State = core.JobStateFailed
		reason := status.Message
		if reason == "" {
			reason = "no diagnostic supplied"
		}
		return &JobFailedError{Reason: reason}
	case "successful", "ready", "completed":
		// terminal even with zero export files - an empty export is a
		// legitimate outcome and must not be polled again
		markReady(job, &status)
		return nil
	}

	// a non-failed response carrying result files means the export is done
	if len(status.Result) > 0 {
		markReady(job, &status)
		return nil
	}

	if status.Status == "pending" || status.Status == "queued" {
		job.State = core.JobStatePending
	} else {
		job.State = core.JobStateRunning
	}
	return nil
}

func markReady(job *core.Job, status *jobStatus) {
	urls := make([]string, 0, len(status.Result))
	for _, file := range status.Result {
		urls = append(urls, file.Data)
	}
	job.State = core.JobStateReady
	job.ResultURLs = urls
}

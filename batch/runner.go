// Package batch drives bulk collection runs: a date range is split into
// fixed-size chunks and every endpoint/filter combination is fetched chunk by
// chunk, feeding each result table to a caller-supplied sink.
package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khaledserafy/gobarb/core"
	"github.com/khaledserafy/gobarb/output"
)

// Fetcher is the slice of the API client the runner needs.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint string, params core.Params) (*core.Result, error)
}

// Spec is one endpoint/filter combination to collect.
type Spec struct {
	Endpoint string
	Params   core.Params
}

// Chunk is one fetched date slice of a spec.
type Chunk struct {
	Spec    Spec
	MinDate string
	MaxDate string
	Result  *core.Result
}

// Sink receives fetched chunks. The runner serializes calls, so a sink may
// write to a shared export target without its own locking.
type Sink func(Chunk) error

// Runner fetches specs chunk by chunk with bounded concurrency. Independent
// fetches share no state, so they are safe to run in parallel.
type Runner struct {
	fetcher     Fetcher
	chunkDays   int
	concurrency int
	log         *zap.Logger
}

type RunnerOption func(*Runner)

// WithChunkDays sets the size of each date slice. Defaults to 7.
func WithChunkDays(days int) RunnerOption {
	return func(r *Runner) {
		if days > 0 {
			r.chunkDays = days
		}
	}
}

// WithConcurrency bounds parallel fetches. Defaults to 1 (sequential).
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(log *zap.Logger) RunnerOption {
	return func(r *Runner) {
		r.log = log
	}
}

func NewRunner(fetcher Fetcher, opts ...RunnerOption) *Runner {
	r := &Runner{
		fetcher:     fetcher,
		chunkDays:   7,
		concurrency: 1,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run fetches every spec, sliced into date chunks, and feeds each chunk to
// the sink. The first error cancels the remaining fetches.
func (r *Runner) Run(ctx context.Context, specs []Spec, sink Sink) error {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(r.concurrency)

	var sinkMu sync.Mutex

	for _, spec := range specs {
		chunks, err := splitRange(spec.Params.MinTransmissionDate, spec.Params.MaxTransmissionDate, r.chunkDays)
		if err != nil {
			return fmt.Errorf("spec %s: %w", spec.Endpoint, err)
		}

		for _, dates := range chunks {
			spec := spec
			dates := dates
			group.Go(func() error {
				params := spec.Params
				params.MinTransmissionDate = dates[0]
				params.MaxTransmissionDate = dates[1]

				result, err := r.fetcher.Fetch(ctx, spec.Endpoint, params)
				if err != nil {
					return fmt.Errorf("fetch %s %s..%s: %w", spec.Endpoint, dates[0], dates[1], err)
				}

				r.log.Debug("fetched chunk",
					zap.String("endpoint", spec.Endpoint),
					zap.String("min_date", dates[0]),
					zap.String("max_date", dates[1]),
					zap.Int("rows", result.Len()),
				)

				sinkMu.Lock()
				defer sinkMu.Unlock()
				return sink(Chunk{
					Spec:    spec,
					MinDate: dates[0],
					MaxDate: dates[1],
					Result:  result,
				})
			})
		}
	}

	return group.Wait()
}

// ExportSink writes every chunk through the output returned by the factory.
// Useful with appending file outputs or database outputs.
func ExportSink(factory func(Chunk) output.Output) Sink {
	return func(chunk Chunk) error {
		_, err := factory(chunk).Write(chunk.Result)
		return err
	}
}

// splitRange cuts [minDate, maxDate] into consecutive inclusive chunks of at
// most chunkDays days.
func splitRange(minDate, maxDate string, chunkDays int) ([][2]string, error) {
	const layout = "2006-01-02"

	start, err := time.Parse(layout, minDate)
	if err != nil {
		return nil, fmt.Errorf("parse min date: %w", err)
	}
	end, err := time.Parse(layout, maxDate)
	if err != nil {
		return nil, fmt.Errorf("parse max date: %w", err)
	}
	if start.After(end) {
		return nil, fmt.Errorf("min date %s after max date %s", minDate, maxDate)
	}

	var chunks [][2]string
	for !start.After(end) {
		chunkEnd := start.AddDate(0, 0, chunkDays-1)
		if chunkEnd.After(end) {
			chunkEnd = end
		}
		chunks = append(chunks, [2]string{start.Format(layout), chunkEnd.Format(layout)})
		start = chunkEnd.AddDate(0, 0, 1)
	}
	return chunks, nil
}

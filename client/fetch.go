package client

import (
	"bytes"
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/khaledserafy/gobarb/codec"
	"github.com/khaledserafy/gobarb/core"
)

// Fetch runs one complete query against an endpoint and returns its result
// table. Sync endpoints are paged and decoded inline; async endpoints go
// through submit, poll and export download. The caller owns the returned
// result - the client keeps nothing.
func (c *Client) Fetch(ctx context.Context, endpoint string, params core.Params) (*core.Result, error) {
	query, err := core.BuildQuery(endpoint, params)
	if err != nil {
		return nil, err
	}

	if query.Endpoint.Async {
		return c.fetchAsync(ctx, query, params)
	}
	return c.fetchSync(ctx, query)
}

func (c *Client) fetchSync(ctx context.Context, query *core.Query) (*core.Result, error) {
	records, err := c.getRecords(ctx, query.Endpoint.Path, query.Values, query.Endpoint.ResponseKey)
	if err != nil {
		return nil, err
	}

	result := codec.DecodeRecords(records, query.Endpoint.Schema)
	c.logResult(query.Endpoint.Name, result)
	return result, nil
}

func (c *Client) fetchAsync(ctx context.Context, query *core.Query, params core.Params) (*core.Result, error) {
	job, err := c.Submit(ctx, query)
	if err != nil {
		return nil, err
	}

	var opts []PollOption
	if params.PollInterval > 0 {
		opts = append(opts, WithInterval(params.PollInterval))
	}
	if params.MaxWait > 0 {
		opts = append(opts, WithDeadline(params.MaxWait))
	}
	if err := c.AwaitReady(ctx, job, opts...); err != nil {
		return nil, err
	}

	result := &core.Result{
		Schema: query.Endpoint.Schema,
		Header: query.Endpoint.Schema.Header(),
	}
	for _, fileURL := range job.ResultURLs {
		body, err := c.download(ctx, fileURL)
		if err != nil {
			return nil, err
		}

		chunk, err := codec.DecodeExport(fileURL, bytes.NewReader(body), query.Endpoint.Schema)
		if err != nil {
			return nil, err
		}
		if err := result.Append(chunk); err != nil {
			return nil, fmt.Errorf("concatenate export files: %w", err)
		}
	}

	c.logResult(query.Endpoint.Name, result)
	return result, nil
}

func (c *Client) logResult(endpoint string, result *core.Result) {
	c.log.Debug("fetched result",
		zap.String("endpoint", endpoint),
		zap.Int("rows", result.Len()),
		zap.Int("warnings", len(result.Warnings)),
	)
}

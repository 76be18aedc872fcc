package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

type response struct {
	status int
	body   []byte
	header http.Header
}

// do issues a single logical request with bounded retries. Connection
// errors, 5xx and 429 are transient; 429 honours a Retry-After hint. Any
// other 4xx is a permanent request error and is surfaced immediately.
func (c *Client) do(ctx context.Context, method, rawURL string, values url.Values, body any, authed bool) (*response, error) {
	target, err := c.resolve(rawURL, values)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 15 * time.Second

	var lastErr error
	for attempt := 1; ; attempt++ {
		resp, err := c.doOnce(ctx, method, target, payload, authed)
		if err == nil {
			switch {
			case resp.status < 300:
				return resp, nil
			case resp.status == http.StatusTooManyRequests || resp.status >= 500:
				lastErr = &TransportError{Status: resp.status, Body: resp.body}
			default:
				// permanent request error, retrying cannot help
				return nil, &TransportError{Status: resp.status, Body: resp.body}
			}
		} else {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = &TransportError{Body: []byte(err.Error())}
		}

		if attempt > c.retries {
			return nil, lastErr
		}

		wait := bo.NextBackOff()
		if resp != nil {
			if hint := retryAfter(resp.header); hint > 0 {
				wait = hint
			}
		}
		c.log.Debug("retrying request",
			zap.String("url", target),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (c *Client) doOnce(ctx context.Context, method, target string, payload []byte, authed bool) (*response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &response{status: resp.StatusCode, body: body, header: resp.Header}, nil
}

// resolve joins a path or absolute URL with the base URL and query values.
func (c *Client) resolve(rawURL string, values url.Values) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	resolved := c.baseURL.ResolveReference(parsed)
	if values != nil {
		resolved.RawQuery = values.Encode()
	}
	return resolved.String(), nil
}

func retryAfter(header http.Header) time.Duration {
	value := header.Get("Retry-After")
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		return time.Until(at)
	}
	return 0
}

func (c *Client) getJSON(ctx context.Context, path string, values url.Values, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, values, nil, true)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	resp, err := c.do(ctx, http.MethodPost, path, nil, body, true)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// getRecords follows X-Next pagination, accumulating every page's records.
// responseKey names the object key holding the record array; empty means the
// page body is a bare array.
func (c *Client) getRecords(ctx context.Context, path string, values url.Values, responseKey string) ([]map[string]any, error) {
	var records []map[string]any

	next := path
	pageValues := values
	for next != "" {
		resp, err := c.do(ctx, http.MethodGet, next, pageValues, nil, true)
		if err != nil {
			return nil, err
		}

		page, err := unmarshalRecords(resp.body, responseKey)
		if err != nil {
			return nil, err
		}
		records = append(records, page...)

		// X-Next carries the absolute URL of the next page
		next = resp.header.Get("X-Next")
		pageValues = nil
	}

	return records, nil
}

func unmarshalRecords(body []byte, responseKey string) ([]map[string]any, error) {
	if responseKey == "" {
		var records []map[string]any
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return records, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	raw, ok := envelope[responseKey]
	if !ok {
		return nil, fmt.Errorf("response has no %q key", responseKey)
	}

	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode %q: %w", responseKey, err)
	}
	return records, nil
}

// download fetches an export file by absolute URL. Export URLs are
// presigned, so no credential header is attached.
func (c *Client) download(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, rawURL, nil, nil, false)
	if err != nil {
		return nil, err
	}
	return resp.body, nil
}

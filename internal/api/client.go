// Package api provides the typed client for the remote summarization service.
package api

import (
	"bytes"
	"context"
	stderrors "errors"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tkwok/vidsum/core/internal/errors"
	"github.com/tkwok/vidsum/core/internal/models"
)

// Client talks to the summarization backend over JSON/HTTPS.
//
// Failures are classified so the orchestrator can decide between offline
// fallback and surfacing the error:
//   - transport failures   -> errors.ErrNetwork (recoverable, queue and retry)
//   - context cancellation -> errors.ErrCancelled (expected outcome, no retry)
//   - HTTP 404             -> errors.ErrNotFound
//   - other 4xx/5xx        -> errors.ErrAPI (application error, surfaced as-is)
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// apiError mirrors the backend's error body shape.
type apiError struct {
	Detail string `json:"detail"`
}

// CreateSummary requests generation of a new summary.
func (c *Client) CreateSummary(ctx context.Context, req models.SummaryRequest) (*models.Summary, error) {
	var out models.Summary
	if err := c.do(ctx, http.MethodPost, "/summaries/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSummaries returns stored summaries, newest first.
func (c *Client) ListSummaries(ctx context.Context, limit, offset int) ([]models.Summary, error) {
	path := "/summaries/"
	if limit > 0 || offset > 0 {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(limit))
		q.Set("offset", strconv.Itoa(offset))
		path += "?" + q.Encode()
	}

	var out []models.Summary
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSummary returns a single summary by ID.
func (c *Client) GetSummary(ctx context.Context, id string) (*models.Summary, error) {
	var out models.Summary
	if err := c.do(ctx, http.MethodGet, "/summaries/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSummary regenerates a summary with new parameters.
func (c *Client) UpdateSummary(ctx context.Context, id string, update models.SummaryUpdate) (*models.Summary, error) {
	var out models.Summary
	if err := c.do(ctx, http.MethodPut, "/summaries/"+url.PathEscape(id), update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetStarred stars or unstars a summary.
func (c *Client) SetStarred(ctx context.Context, id string, starred bool) (*models.Summary, error) {
	body := map[string]bool{"is_starred": starred}

	var out models.Summary
	if err := c.do(ctx, http.MethodPut, "/summaries/"+url.PathEscape(id)+"/star", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSummary deletes a summary.
func (c *Client) DeleteSummary(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/summaries/"+url.PathEscape(id), nil, nil)
}

// do performs a JSON request/response round trip with error classification.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(errors.ErrInternal, "failed to encode request body", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(errors.ErrInternal, "failed to build request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if stderrors.Is(err, context.Canceled) || ctx.Err() == context.Canceled {
			return errors.Wrap(errors.ErrCancelled, "request cancelled", err)
		}
		return errors.Wrap(errors.ErrNetwork, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail := readDetail(resp.Body)
		msg := fmt.Sprintf("%s %s returned %d", method, path, resp.StatusCode)
		if detail != "" {
			msg = fmt.Sprintf("%s: %s", msg, detail)
		}
		if resp.StatusCode == http.StatusNotFound {
			return errors.New(errors.ErrNotFound, msg)
		}
		return errors.New(errors.ErrAPI, msg)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(errors.ErrAPI, "failed to decode response", err)
	}
	return nil
}

// readDetail extracts the backend's error detail, best effort.
func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	var e apiError
	if json.Unmarshal(data, &e) == nil && e.Detail != "" {
		return e.Detail
	}
	return strings.TrimSpace(string(data))
}

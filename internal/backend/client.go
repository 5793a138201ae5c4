package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/sp-meter/circles/internal/logger"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return e.Summary()
	}
	return fmt.Sprintf("%s: %s", e.Summary(), e.Body)
}

// Summary is the error without the response body.
func (e *StatusError) Summary() string {
	return fmt.Sprintf("%s returned status %d", e.Endpoint, e.Code)
}

// Client implements API over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
	log     *zap.SugaredLogger
}

// NewClient creates a client for the backend rooted at baseURL, which
// already includes any path prefix (e.g. http://localhost:3000/p/p).
func NewClient(baseURL string, timeout time.Duration, log *zap.SugaredLogger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		log: logger.OrNop(log),
	}
}

// BaseURL returns the root the endpoints are resolved against.
func (c *Client) BaseURL() string { return c.baseURL }

// InfoURL returns the info request URL for unitID.
func (c *Client) InfoURL(unitID string) string {
	q := url.Values{}
	q.Set("t", unitID)
	return c.baseURL + "/info?" + q.Encode()
}

// ResultURL returns the conversion request URL.
func (c *Client) ResultURL(fromID, toID, value string) string {
	q := url.Values{}
	q.Set("f", fromID)
	q.Set("t", toID)
	q.Set("v", value)
	return c.baseURL + "/result?" + q.Encode()
}

// Info implements API.
func (c *Client) Info(ctx context.Context, unitID string) (*UnitInfo, error) {
	var info UnitInfo
	if err := c.get(ctx, "info", c.InfoURL(unitID), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Convert implements API.
func (c *Client) Convert(ctx context.Context, fromID, toID, value string) (*Conversion, error) {
	var conv Conversion
	if err := c.get(ctx, "result", c.ResultURL(fromID, toID, value), &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (c *Client) get(ctx context.Context, endpoint, rawURL string, out any) error {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return errors.Wrapf(err, "creating %s request", endpoint)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Debugw("backend request failed",
			logger.FieldURL, rawURL, "error", err)
		return errors.Wrapf(err, "%s request failed", endpoint)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return errors.Wrapf(err, "reading %s response", endpoint)
	}

	c.log.Debugw("backend request",
		logger.FieldURL, rawURL,
		logger.FieldStatus, resp.StatusCode,
		logger.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Endpoint: endpoint,
			Code:     resp.StatusCode,
			Body:     strings.TrimSpace(string(body)),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "decoding %s response", endpoint)
	}
	return nil
}

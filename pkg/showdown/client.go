package showdown

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	errs "replayfetch/pkg/errors"
	"replayfetch/pkg/logger"
	"replayfetch/pkg/metrics"
)

// DefaultBaseURL is the public replay server
const DefaultBaseURL = "https://replay.pokemonshowdown.com/"

// maxBodyPreview bounds the response excerpt attached to parse errors
const maxBodyPreview = 200

// Client talks to a replay server. A single Client is shared by every request
// of a run so connections are pooled.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	logger     logger.Logger
}

// NewClient creates a client for baseURL, which must end with a slash.
func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent": "replayfetch/1.0",
			"Accept":     "application/json",
		},
		baseURL: baseURL,
		logger:  log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SearchPage fetches one page of the listing for format.
func (c *Client) SearchPage(ctx context.Context, format string, page int) ([]BattleSummary, error) {
	url := SearchURL(c.baseURL, format, page)

	body, err := c.get(ctx, metrics.EndpointSearch, url)
	if err != nil {
		return nil, err
	}

	// Only the array itself must be well formed; records are decoded one by
	// one so a malformed record costs that record, not the page.
	var records []json.RawMessage
	if err := json.Unmarshal(body, &records); err != nil {
		c.logParseError(url, body, err)
		return nil, errs.New(errs.ErrorTypeParsing, err, "failed to parse listing page %d", page)
	}

	battles := make([]BattleSummary, len(records))
	for i, raw := range records {
		battles[i] = decodeSummary(raw)
	}

	c.logger.DebugWithFields("listing page fetched", map[string]interface{}{
		"format":  format,
		"page":    page,
		"battles": len(battles),
	})

	return battles, nil
}

// Replay fetches the replay document for battleID and returns it as compact
// JSON with the original key order.
func (c *Client) Replay(ctx context.Context, battleID string) ([]byte, error) {
	url := ReplayURL(c.baseURL, battleID)

	body, err := c.get(ctx, metrics.EndpointReplay, url)
	if err != nil {
		return nil, err
	}

	var doc bytes.Buffer
	if err := json.Compact(&doc, body); err != nil {
		c.logParseError(url, body, err)
		return nil, errs.New(errs.ErrorTypeParsing, err, "failed to parse replay %s", battleID)
	}

	return doc.Bytes(), nil
}

// get performs a GET and returns the body of a 2xx response
func (c *Client) get(ctx context.Context, endpoint, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeUnknown, err, "failed to create request: %v", err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveRequest(endpoint, time.Since(start))
		c.logger.DebugWithFields("HTTP request failed", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		return nil, errs.FromTransport(err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	duration := time.Since(start)
	metrics.ObserveRequest(endpoint, duration)
	logger.LogRequest(c.logger, req.Method, url, resp.StatusCode, duration)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errs.Status(resp.StatusCode, url)
	}
	if readErr != nil {
		return nil, errs.FromTransport(readErr)
	}

	return body, nil
}

func (c *Client) logParseError(url string, body []byte, err error) {
	preview := string(body)
	if len(preview) > maxBodyPreview {
		preview = preview[:maxBodyPreview] + "..."
	}
	c.logger.DebugWithFields("failed to parse JSON response", map[string]interface{}{
		"url":          url,
		"error":        err.Error(),
		"body_preview": preview,
	})
}

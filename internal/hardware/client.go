package hardware

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the hardware tracking system over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

func NewClient(config ClientConfig, logger *slog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) Lookup(ctx context.Context, serialNumber string) (*Record, error) {
	serial := NormalizeSerial(serialNumber)
	if serial == "" {
		return nil, ErrNotFound
	}

	endpoint := fmt.Sprintf("%s/hardware/%s", c.baseURL, url.PathEscape(serial))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("hardware lookup request failed", "serial_number", serial, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		c.logger.Warn("hardware lookup returned unexpected status",
			"serial_number", serial,
			"status_code", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var apiResponse struct {
		Data Record `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrUnavailable, err)
	}

	c.logger.Debug("hardware lookup succeeded",
		"serial_number", serial,
		"model", apiResponse.Data.Model)

	return &apiResponse.Data, nil
}

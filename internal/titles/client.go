// Package titles fetches candidate briefing document titles from an external
// HTTP source. The endpoint serves a JSON array of strings per source handle.
package titles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultTimeout = 10 * time.Second

// maxBodyBytes bounds the response size so a misbehaving source cannot
// exhaust memory.
const maxBodyBytes = 1 << 20

// Client lists briefing titles over HTTP. Callers bound each call with a
// context deadline; the client's own timeout is a backstop.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a title source client rooted at baseURL. The source
// handle is appended as a path segment: GET {baseURL}/{source}/titles.
func NewClient(baseURL string, client *http.Client) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("titles: base URL is empty")
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: baseURL, client: client}, nil
}

// ListTitles fetches the current candidate titles of a briefing source.
func (c *Client) ListTitles(ctx context.Context, source string) ([]string, error) {
	if source == "" {
		return nil, errors.New("titles: source handle is empty")
	}

	endpoint := fmt.Sprintf("%s/%s/titles", c.baseURL, url.PathEscape(source))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("titles: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("titles: fetch %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("titles: fetch %s: unexpected status %s", source, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("titles: read response: %w", err)
	}

	var titles []string
	if err := json.Unmarshal(body, &titles); err != nil {
		return nil, fmt.Errorf("titles: decode response: %w", err)
	}
	return titles, nil
}

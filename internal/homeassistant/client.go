// Package homeassistant talks to the Home Assistant REST API: token checks,
// template rendering, area and light discovery, and scene creation.
package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

var (
	ErrNoToken      = errors.New("home assistant access token not configured")
	ErrUnauthorized = errors.New("home assistant rejected the access token")
)

// StatusError is returned for any other non-2xx response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("home assistant status=%d body=%s", e.Status, e.Body)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     hclog.Logger
}

func NewClient(baseURL, token string, timeout time.Duration, logger hclog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
		log:     logger,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping checks that the API is reachable and the token is accepted.
func (c *Client) Ping(ctx context.Context) error {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/", nil, &out); err != nil {
		return err
	}
	if out.Message == "" {
		return errors.New("home assistant returned an unexpected api banner")
	}
	return nil
}

// RenderTemplate renders a Jinja template server side and returns the text.
func (c *Client) RenderTemplate(ctx context.Context, tmpl string) (string, error) {
	var out bytes.Buffer
	if err := c.do(ctx, http.MethodPost, "/api/template", map[string]string{"template": tmpl}, &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.String()), nil
}

func (c *Client) CallService(ctx context.Context, domain, service string, data interface{}) error {
	path := fmt.Sprintf("/api/services/%s/%s", domain, service)
	c.log.Debug("calling service", "domain", domain, "service", service)
	return c.do(ctx, http.MethodPost, path, data, nil)
}

// do sends an authenticated request. out may be nil, a *bytes.Buffer for the
// raw body, or any value to decode JSON into.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if strings.TrimSpace(c.token) == "" {
		return ErrNoToken
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("home assistant %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.log.Trace("request done", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	switch dst := out.(type) {
	case nil:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	case *bytes.Buffer:
		_, err := io.Copy(dst, resp.Body)
		return err
	default:
		return json.NewDecoder(resp.Body).Decode(dst)
	}
}

// Package client provides HTTP access to the caaluza map service:
// validation, map storage and the map generator.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/annel0/caaluza/internal/mapformat"
	"github.com/annel0/caaluza/internal/validation"
)

// DefaultTimeout bounds a single request when no http.Client is supplied.
const DefaultTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when the requested map does not exist.
	ErrNotFound = errors.New("map not found")
	// ErrRemote is returned for any other non-2xx response or an error body.
	ErrRemote = errors.New("map service error")
)

// Client talks to the map service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the service at baseURL (e.g. "http://localhost:5000").
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Validate submits the map to the validator.
func (c *Client) Validate(ctx context.Context, m mapformat.Map) (validation.Result, error) {
	var res validation.Result
	err := c.do(ctx, http.MethodPost, "/caaluza/validate", m, &res)
	return res, err
}

// SaveMap stores the map under name and returns the assigned map id.
func (c *Client) SaveMap(ctx context.Context, name string, m mapformat.Map) (string, error) {
	var res mapformat.SaveResponse
	if err := c.do(ctx, http.MethodPost, mapPath(name), m, &res); err != nil {
		return "", err
	}
	return res.MapID, nil
}

// mapEnvelope is the body of responses that carry a map.
// A missing or null "map" is treated as a failed request.
type mapEnvelope struct {
	Map *mapformat.Map `json:"map"`
}

func (e mapEnvelope) unwrap(method, path string) (mapformat.Map, error) {
	if e.Map == nil {
		return mapformat.Map{}, fmt.Errorf("%w: %s %s: response has no map", ErrRemote, method, path)
	}
	return *e.Map, nil
}

// LoadMap fetches a stored map.
func (c *Client) LoadMap(ctx context.Context, name string) (mapformat.Map, error) {
	var res mapEnvelope
	path := mapPath(name)
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return mapformat.Map{}, err
	}
	return res.unwrap(http.MethodGet, path)
}

// DeleteMap removes a stored map.
func (c *Client) DeleteMap(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, mapPath(name), nil, nil)
}

// ListMaps returns the names of all stored maps.
func (c *Client) ListMaps(ctx context.Context) ([]string, error) {
	var res mapformat.ListResponse
	if err := c.do(ctx, http.MethodGet, "/caaluza/maps", nil, &res); err != nil {
		return nil, err
	}
	return res.Maps, nil
}

// Generate asks the service for a random map.
func (c *Client) Generate(ctx context.Context, pieces, maxHeight int) (mapformat.Map, error) {
	return c.GenerateSeeded(ctx, pieces, maxHeight, 0)
}

// GenerateSeeded is Generate with a fixed seed; seed 0 lets the server choose.
func (c *Client) GenerateSeeded(ctx context.Context, pieces, maxHeight int, seed int64) (mapformat.Map, error) {
	q := url.Values{}
	q.Set("nrpieces", strconv.Itoa(pieces))
	q.Set("maxheight", strconv.Itoa(maxHeight))
	if seed != 0 {
		q.Set("seed", strconv.FormatInt(seed, 10))
	}

	var res mapEnvelope
	path := "/caaluza/generate?" + q.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return mapformat.Map{}, err
	}
	return res.unwrap(http.MethodGet, path)
}

func mapPath(name string) string {
	return "/caaluza/map/" + url.PathEscape(name)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(data)
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", ErrNotFound, msg)
		}
		return fmt.Errorf("%w: %s %s: status %d: %s", ErrRemote, method, path, resp.StatusCode, msg)
	}

	// The service may report an error with a 2xx status too.
	if msg, ok := bodyError(data); ok {
		if strings.Contains(msg, "not found") {
			return fmt.Errorf("%w: %s", ErrNotFound, msg)
		}
		return fmt.Errorf("%w: %s %s: %s", ErrRemote, method, path, msg)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// bodyError extracts the "error" field of a JSON object body.
func bodyError(data []byte) (string, bool) {
	var e mapformat.ErrorResponse
	if err := json.Unmarshal(data, &e); err != nil || e.Error == "" {
		return "", false
	}
	return e.Error, true
}

func errorMessage(data []byte) string {
	if msg, ok := bodyError(data); ok {
		return msg
	}
	return strings.TrimSpace(string(data))
}

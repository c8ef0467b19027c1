// Package node talks to the wallet host's core node over its REST API. It
// backs every collaborator the action pipelines need: account and name
// lookups, lists, transaction building, proof-of-work computation,
// processing and cross-chain wallets.
package node

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Error codes returned by the node.
const (
	CodeNoPublicKey = 102
)

// Config configures the node client.
type Config struct {
	URL     string        `json:"url" yaml:"url"`
	APIKey  string        `json:"apiKey,omitempty" yaml:"apiKey,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// DefaultConfig targets a local node.
func DefaultConfig() Config {
	return Config{URL: "http://127.0.0.1:12391", Timeout: 30 * time.Second}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.URL == "" {
		return errors.New("node url was empty")
	}
	if _, err := url.Parse(c.URL); err != nil {
		return fmt.Errorf("invalid node url %v: %w", c.URL, err)
	}
	return nil
}

// APIError is an error body returned by the node.
type APIError struct {
	Status  int    `json:"-"`
	Code    int    `json:"error"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("node error %d (status %d)", e.Code, e.Status)
}

// Client is a node REST client.
type Client struct {
	config     Config
	httpClient *http.Client
}

// New creates a client.
func New(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	return &Client{config: config, httpClient: &http.Client{Timeout: config.Timeout}}
}

// URL returns the node base URL.
func (c *Client) URL() string { return c.config.URL }

func (c *Client) endpoint(path string, query url.Values, withKey bool) string {
	if withKey && c.config.APIKey != "" {
		if query == nil {
			query = url.Values{}
		}
		query.Set("apiKey", c.config.APIKey)
	}
	ret := strings.TrimRight(c.config.URL, "/") + path
	if len(query) > 0 {
		ret += "?" + query.Encode()
	}
	return ret
}

// call performs a request and returns the raw body of a 2xx response. Error
// responses, including 2xx bodies shaped as node errors, become *APIError.
func (c *Client) call(ctx context.Context, method, URL string, body io.Reader, contentType string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, method, URL, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("failed to call node %v %v: %w", method, request.URL.Path, err)
	}
	defer response.Body.Close()
	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read node response: %w", err)
	}
	if apiErr := asAPIError(data); apiErr != nil {
		apiErr.Status = response.StatusCode
		return nil, apiErr
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, &APIError{Status: response.StatusCode, Message: strings.TrimSpace(string(data))}
	}
	return data, nil
}

func asAPIError(data []byte) *APIError {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	probe := map[string]json.RawMessage{}
	if json.Unmarshal(trimmed, &probe) != nil {
		return nil
	}
	if _, ok := probe["error"]; !ok {
		return nil
	}
	ret := &APIError{}
	if json.Unmarshal(trimmed, ret) != nil {
		return nil
	}
	return ret
}

func (c *Client) getText(ctx context.Context, path string, query url.Values, withKey bool) (string, error) {
	data, err := c.call(ctx, http.MethodGet, c.endpoint(path, query, withKey), nil, "")
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(string(data)), `"`), nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, withKey bool, dest interface{}) error {
	data, err := c.call(ctx, http.MethodGet, c.endpoint(path, query, withKey), nil, "")
	if err != nil {
		return err
	}
	if err = json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("invalid node response for %v: %w", path, err)
	}
	return nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, withKey bool, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return c.call(ctx, method, c.endpoint(path, nil, withKey), bytes.NewReader(body), "application/json")
}

func (c *Client) sendText(ctx context.Context, path string, query url.Values, withKey bool, text string) (string, error) {
	data, err := c.call(ctx, http.MethodPost, c.endpoint(path, query, withKey), strings.NewReader(text), "text/plain")
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(string(data)), `"`), nil
}

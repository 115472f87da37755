// ABOUTME: REST client for the speech synthesis API
// ABOUTME: Key auth, JSON and multipart helpers, error surfacing
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/charmbracelet/log"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.elevenlabs.io/v1"

// APIError is a non-2xx response. Body carries the response text, which
// the API uses for validation details.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Body)
}

// Client talks to the synthesis API on behalf of one account.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// Option adjusts a Client at construction.
type Option func(*Client)

// WithBaseURL points the client somewhere other than production.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New builds a client around an API key.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	if len(path) == 0 || path[0] != '/' {
		path = "/" + path
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("accept", "*/*")
	return req, nil
}

// do sends the request and returns the response, mapping any non-2xx
// status to an APIError with the drained body.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		log.Debug("request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"status", resp.StatusCode,
			"body", string(body))
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return resp, nil
}

// get fetches a path and returns the whole body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// getJSON fetches a path and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	body, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// postJSON posts a JSON payload and returns the whole response body.
func (c *Client) postJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	resp, err := c.postJSONResponse(ctx, path, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// postJSONResponse posts a JSON payload and hands back the open
// response, for callers that consume the body incrementally.
func (c *Client) postJSONResponse(ctx context.Context, path string, payload any) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", path, err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// del issues a DELETE and discards the body.
func (c *Client) del(ctx context.Context, path string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// postMultipart posts form fields plus optional file parts under the
// "files" field, as the voice edit endpoints expect.
func (c *Client) postMultipart(ctx context.Context, path string, fields map[string]string, files map[string][]byte) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("encode %s form: %w", path, err)
		}
	}
	for name, data := range files {
		part, err := w.CreateFormFile("files", name)
		if err != nil {
			return fmt.Errorf("encode %s form file: %w", path, err)
		}
		if _, err := part.Write(data); err != nil {
			return fmt.Errorf("encode %s form file: %w", path, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("encode %s form: %w", path, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

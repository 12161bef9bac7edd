// Package client wraps the devfolio project REST API.
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
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// APIError is any non-2xx answer, or a 2xx answer with success=false.
type APIError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string][]string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("devfolio api: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("devfolio api: %d: %s", e.Status, e.Message)
}

// IsCode reports whether err is an APIError carrying code.
func IsCode(err error, code string) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Code == code
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	cookie     string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithCookie sends the given Cookie header, typically the session cookie.
func WithCookie(cookie string) Option {
	return func(c *Client) { c.cookie = cookie }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields"`
}

// do sends payload as JSON and decodes the envelope's data into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var reqBody io.Reader
	if payload != nil {
		b, err := sonic.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if len(bytes.TrimSpace(body)) == 0 {
		if ok {
			return nil
		}
		return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	var env envelope
	if err := sonic.Unmarshal(body, &env); err != nil {
		if ok {
			return fmt.Errorf("unmarshal response: %w", err)
		}
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	if !ok || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: msg, Fields: env.Fields}
	}

	if out != nil && len(env.Data) > 0 {
		if err := sonic.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("unmarshal data: %w", err)
		}
	}
	return nil
}

// ListProjects lists dashboard projects, optionally filtered by visibility.
func (c *Client) ListProjects(ctx context.Context, visibilities ...string) ([]ProjectSummary, error) {
	path := "/api/projects"
	if len(visibilities) > 0 {
		q := url.Values{}
		for _, v := range visibilities {
			q.Add("visibility", v)
		}
		path += "?" + q.Encode()
	}

	out := []ProjectSummary{}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListPublicProjects(ctx context.Context) ([]ProjectSummary, error) {
	out := []ProjectSummary{}
	if err := c.do(ctx, http.MethodGet, "/api/public/projects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProject(ctx context.Context, id string) (*Project, error) {
	var out Project
	if err := c.do(ctx, http.MethodGet, "/api/projects/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProject returns the new project's id.
func (c *Client) CreateProject(ctx context.Context, in CreateProjectRequest) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/projects", in, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// UpdateProject sends every editable field of p. ID and CreatedAt are never sent.
func (c *Client) UpdateProject(ctx context.Context, p Project) error {
	if p.ID == "" {
		return errors.New("project id is empty")
	}
	return c.do(ctx, http.MethodPatch, "/api/projects/"+url.PathEscape(p.ID), p.updateBody(), nil)
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/projects/"+url.PathEscape(id), nil, nil)
}

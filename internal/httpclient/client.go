// Package httpclient is the single configured client every live API call goes
// through. It attaches the bearer token of the current session and hands
// authorization failures to the session owner.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-querystring/query"

	"losadmin/internal/obs"
	"losadmin/internal/utils/logger"
)

// Credentials is implemented by the session controller.
type Credentials interface {
	// AccessToken returns the stored access token, or "" when there is none.
	AccessToken(ctx context.Context) string
	// Unauthorized clears the session and redirects to the entry page.
	Unauthorized(ctx context.Context)
}

// Client issues JSON requests against the configured API base.
type Client struct {
	base    *url.URL
	http    *http.Client
	creds   Credentials
	metrics *obs.Metrics
	logger  *logger.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithMetrics(m *obs.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New parses baseURL and returns a client bound to creds. creds may be nil for
// anonymous use.
func New(baseURL string, timeout time.Duration, creds Credentials, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q: scheme and host are required", baseURL)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		base:   base,
		http:   &http.Client{Timeout: timeout},
		creds:  creds,
		logger: logger.New("http_client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured API base.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Response is a fully read HTTP response with a 2xx status.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v interface{}) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// Do sends one request. body is JSON-encoded when non-nil; params is a struct
// with `url` tags or a url.Values. A status of 401 tears the session down
// before the error is returned.
func (c *Client) Do(ctx context.Context, method, path string, body, params interface{}) (*Response, error) {
	req, err := c.newRequest(ctx, method, path, body, params)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(method, 0)
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	c.metrics.ObserveRequest(method, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		statusErr := &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: data}
		if resp.StatusCode == http.StatusUnauthorized {
			c.logger.Warn("%s %s answered 401, ending session", method, path)
			c.metrics.ObserveTeardown()
			if c.creds != nil {
				c.creds.Unauthorized(ctx)
			}
		}
		return nil, statusErr
	}

	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body, params interface{}) (*http.Request, error) {
	u, err := c.resolve(path, params)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds != nil {
		if token := c.creds.AccessToken(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

func (c *Client) resolve(path string, params interface{}) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid request path %q: %w", path, err)
	}
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")

	values := ref.Query()
	switch p := params.(type) {
	case nil:
	case url.Values:
		for k, vs := range p {
			for _, v := range vs {
				values.Add(k, v)
			}
		}
	default:
		encoded, err := query.Values(p)
		if err != nil {
			return "", fmt.Errorf("encode query parameters: %w", err)
		}
		for k, vs := range encoded {
			for _, v := range vs {
				values.Add(k, v)
			}
		}
	}
	u.RawQuery = values.Encode()
	return u.String(), nil
}

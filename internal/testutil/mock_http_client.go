package testutil

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/httpclient"
)

// MockHTTPClient implements a mock HTTP client for testing.
// Routes are keyed by method and path; query strings are ignored when matching.
type MockHTTPClient struct {
	mu       sync.RWMutex
	routes   map[string]MockResponse
	requests []*httpclient.Request
}

// MockResponse represents a mock HTTP response
type MockResponse struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
	// Err simulates a transport failure
	Err error
}

// NewMockHTTPClient creates a new mock HTTP client
func NewMockHTTPClient() *MockHTTPClient {
	return &MockHTTPClient{
		routes: make(map[string]MockResponse),
	}
}

func routeKey(method, path string) string {
	return method + " " + path
}

// RegisterResponse registers a mock response for a method and path
func (m *MockHTTPClient) RegisterResponse(method, path string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[routeKey(method, path)] = resp
}

// RegisterJSON is a helper to register a 200 JSON response
func (m *MockHTTPClient) RegisterJSON(method, path, body string) {
	m.RegisterResponse(method, path, MockResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(body),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	})
}

// Send implements the httpclient.Client interface
func (m *MockHTTPClient) Send(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := req.URL
	if u, err := url.Parse(req.URL); err == nil {
		path = u.Path
	}

	m.mu.RLock()
	var (
		resp  MockResponse
		found bool
	)
	for route, r := range m.routes {
		method, suffix, _ := strings.Cut(route, " ")
		if method == req.Method && strings.HasSuffix(path, suffix) {
			resp, found = r, true
			break
		}
	}
	m.mu.RUnlock()

	if !found {
		return nil, httpclient.NewError(http.StatusNotFound, []byte(`{"detail":"Not Found"}`))
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpclient.NewError(resp.StatusCode, resp.Body)
	}

	return &httpclient.Response{
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
		Headers:    resp.Headers,
	}, nil
}

// Requests returns the requests sent so far
func (m *MockHTTPClient) Requests() []*httpclient.Request {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*httpclient.Request(nil), m.requests...)
}

// Clear removes all registered responses and recorded requests
func (m *MockHTTPClient) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = make(map[string]MockResponse)
	m.requests = nil
}

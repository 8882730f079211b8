package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Request is the abstract inbound value the dispatch engine works on. It
// deliberately carries no transport state — an adapter at the edge fills it
// from whatever server library is in front (see framework/app).
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte

	ctx context.Context
}

// NewRequest builds a Request for the given method and path.
func NewRequest(method, path string) *Request {
	return &Request{
		Method: method,
		Path:   path,
		Header: make(http.Header),
		ctx:    context.Background(),
	}
}

// FromHTTP converts a transport-level request into the engine's abstract
// value, consuming the body.
func FromHTTP(r *http.Request, body []byte) *Request {
	return &Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   body,
		ctx:    r.Context(),
	}
}

// Context returns the request's context, never nil.
func (req *Request) Context() context.Context {
	if req.ctx == nil {
		return context.Background()
	}
	return req.ctx
}

// WithContext returns a shallow copy carrying ctx. Cancellation from the
// transport flows through here into middleware and handlers.
func (req *Request) WithContext(ctx context.Context) *Request {
	clone := *req
	clone.ctx = ctx
	return &clone
}

// ── Body binding ─────────────────────────────────────────────────────────────

// Bind decodes the JSON request body into v.
func (req *Request) Bind(v any) error {
	if len(req.Body) == 0 {
		return errors.New("empty request body")
	}
	return json.Unmarshal(req.Body, v)
}

// ── Header helpers ───────────────────────────────────────────────────────────

// Get returns a request header value.
func (req *Request) Get(key string) string {
	if req.Header == nil {
		return ""
	}
	return req.Header.Get(key)
}

// Set sets a request header and returns the request, for fluent test setup.
func (req *Request) Set(key, value string) *Request {
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	req.Header.Set(key, value)
	return req
}

// BearerToken extracts the token from Authorization: Bearer <token>.
func (req *Request) BearerToken() string {
	auth := req.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// ContentType returns the Content-Type header value.
func (req *Request) ContentType() string {
	return req.Get("Content-Type")
}

// WantsJSON reports whether the client prefers a JSON response — used for
// content negotiation on framework-generated error pages.
func (req *Request) WantsJSON() bool {
	return strings.Contains(req.Get("Accept"), "application/json") ||
		strings.Contains(req.ContentType(), "application/json")
}

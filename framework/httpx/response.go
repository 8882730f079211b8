package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Response is the abstract outbound value: status, headers and body. The
// dispatcher produces one per request; an edge adapter writes it to the wire.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// New creates an empty response with the given status.
func New(status int) *Response {
	return &Response{Status: status, Header: make(http.Header)}
}

// ── Constructors ─────────────────────────────────────────────────────────────

// JSON builds a JSON response. Marshal failures degrade to a 500 with the
// encoder error as plain text rather than propagating.
//
//	httpx.JSON(http.StatusOK, map[string]any{"message": "ok"})
func JSON(status int, data any) *Response {
	body, err := json.Marshal(data)
	if err != nil {
		return Text(http.StatusInternalServerError, fmt.Sprintf("json encode: %v", err))
	}
	res := New(status)
	res.Header.Set("Content-Type", "application/json")
	res.Body = body
	return res
}

// Text builds a plain-text response.
func Text(status int, body string) *Response {
	res := New(status)
	res.Header.Set("Content-Type", "text/plain; charset=utf-8")
	res.Body = []byte(body)
	return res
}

// HTML builds an HTML response.
func HTML(status int, body string) *Response {
	res := New(status)
	res.Header.Set("Content-Type", "text/html; charset=utf-8")
	res.Body = []byte(body)
	return res
}

// NoContent builds a 204 with no body.
func NoContent() *Response {
	return New(http.StatusNoContent)
}

// Error builds a JSON error envelope: {"message": ...}.
//
//	httpx.Error(http.StatusNotFound, "Resource not found")
func Error(status int, message string) *Response {
	return JSON(status, envelope{"message": message})
}

// Unauthorized builds a 401.
func Unauthorized(message ...string) *Response {
	return Error(http.StatusUnauthorized, first(message, "Unauthenticated."))
}

// Forbidden builds a 403.
func Forbidden(message ...string) *Response {
	return Error(http.StatusForbidden, first(message, "This action is unauthorized."))
}

// NotFound builds a 404.
func NotFound(message ...string) *Response {
	return Error(http.StatusNotFound, first(message, "Not found."))
}

// ServerError builds a 500.
func ServerError(message ...string) *Response {
	return Error(http.StatusInternalServerError, first(message, "Server Error."))
}

// ── Writing ──────────────────────────────────────────────────────────────────

// WriteTo flushes the response to a transport writer.
func (res *Response) WriteTo(w http.ResponseWriter) {
	for k, vs := range res.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(res.Status)
	if len(res.Body) > 0 {
		_, _ = w.Write(res.Body)
	}
}

// ── Helpers ──────────────────────────────────────────────────────────────────

type envelope map[string]any

func first(ss []string, fallback string) string {
	if len(ss) > 0 && ss[0] != "" {
		return ss[0]
	}
	return fallback
}

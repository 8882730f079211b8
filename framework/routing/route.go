package routing

import (
	"fmt"

	"github.com/strataframe/strata/framework/httpx"
	"github.com/strataframe/strata/framework/pipeline"
)

// HandlerFunc is a directly-registered route handler. Route parameters
// arrive positionally in match order.
type HandlerFunc func(req *httpx.Request, params ...string) any

// HandlerRef is a tagged handler reference: either a named
// "Controller@method" string, resolved through the container at dispatch
// time, or a direct callable. Only all-named tables can be cached —
// closures don't survive serialization (see cache.go).
type HandlerRef struct {
	name string
	fn   HandlerFunc
}

// Named references a controller action by "Controller@method".
func Named(name string) HandlerRef { return HandlerRef{name: name} }

// Callable wraps a direct handler function.
func Callable(fn HandlerFunc) HandlerRef { return HandlerRef{fn: fn} }

// IsNamed reports whether the reference is a controller action name.
func (h HandlerRef) IsNamed() bool { return h.name != "" }

// Name returns the "Controller@method" string for named references.
func (h HandlerRef) Name() string { return h.name }

// Func returns the callable for direct references, nil otherwise.
func (h HandlerRef) Func() HandlerFunc { return h.fn }

// IsZero reports an unset reference.
func (h HandlerRef) IsZero() bool { return h.name == "" && h.fn == nil }

func (h HandlerRef) String() string {
	if h.IsNamed() {
		return h.name
	}
	if h.fn != nil {
		return "closure"
	}
	return "<unset>"
}

// Route is one registered (method, pattern) → handler definition. Patterns
// may contain brace-delimited placeholders: /users/{id}.
type Route struct {
	Method  string
	Pattern string
	Handler HandlerRef

	middleware []pipeline.Entry
}

// Use attaches middleware to this route only. Returns the route for chaining:
//
//	r.Get("/admin", "AdminController@index").Use(pipeline.Use("auth"))
func (r *Route) Use(entries ...pipeline.Entry) *Route {
	r.middleware = append(r.middleware, entries...)
	return r
}

// Middleware returns the route-specific middleware chain.
func (r *Route) Middleware() []pipeline.Entry { return r.middleware }

func (r *Route) String() string {
	return fmt.Sprintf("%s %s -> %s", r.Method, r.Pattern, r.Handler)
}

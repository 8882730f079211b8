package routing

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/strataframe/strata/framework/httpx"
	"github.com/strataframe/strata/framework/pipeline"
)

// Router is the fluent registration surface over route definitions,
// with Laravel-style helpers. It only collects definitions; Compile turns
// them into the tiered match table.
type Router struct {
	set    *routeSet
	prefix string
	mw     []pipeline.Entry
}

// routeSet is shared between a router and its groups so registration order
// stays global across nesting.
type routeSet struct {
	defs []*Route
}

// New creates an empty Router.
func New() *Router {
	return &Router{set: &routeSet{}}
}

// Handle registers a route. The handler may be a "Controller@method" string,
// a HandlerFunc, or a prebuilt HandlerRef.
func (r *Router) Handle(method, pattern string, handler any) *Route {
	route := &Route{
		Method:     strings.ToUpper(method),
		Pattern:    r.prefix + pattern,
		Handler:    toHandlerRef(handler),
		middleware: slices.Clone(r.mw),
	}
	r.set.defs = append(r.set.defs, route)
	return route
}

func toHandlerRef(handler any) HandlerRef {
	switch h := handler.(type) {
	case HandlerRef:
		if h.IsZero() {
			panic("routing: empty handler reference")
		}
		return h
	case string:
		return Named(h)
	case HandlerFunc:
		return Callable(h)
	case func(req *httpx.Request, params ...string) any:
		return Callable(h)
	default:
		panic(fmt.Sprintf("routing: invalid handler type %T", handler))
	}
}

// ── HTTP verbs ───────────────────────────────────────────────────────────────

func (r *Router) Get(pattern string, h any) *Route    { return r.Handle("GET", pattern, h) }
func (r *Router) Post(pattern string, h any) *Route   { return r.Handle("POST", pattern, h) }
func (r *Router) Put(pattern string, h any) *Route    { return r.Handle("PUT", pattern, h) }
func (r *Router) Patch(pattern string, h any) *Route  { return r.Handle("PATCH", pattern, h) }
func (r *Router) Delete(pattern string, h any) *Route { return r.Handle("DELETE", pattern, h) }

// Any registers a handler for all common HTTP methods.
func (r *Router) Any(pattern string, h any) {
	for _, m := range []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"} {
		r.Handle(m, pattern, h)
	}
}

// ── Groups & Prefixes ────────────────────────────────────────────────────────

// Group creates an inline group — Laravel: Route::group([], fn).
// Middleware added inside the group applies only to its routes.
func (r *Router) Group(fn func(g *Router)) {
	fn(&Router{set: r.set, prefix: r.prefix, mw: slices.Clone(r.mw)})
}

// Prefix creates a sub-router with a URL prefix — Laravel: Route::prefix('/api').
func (r *Router) Prefix(pattern string, fn func(g *Router)) {
	fn(&Router{set: r.set, prefix: r.prefix + pattern, mw: slices.Clone(r.mw)})
}

// ── Middleware ───────────────────────────────────────────────────────────────

// Use attaches middleware to every route registered on this router (or
// group) afterwards.
func (r *Router) Use(entries ...pipeline.Entry) *Router {
	r.mw = append(r.mw, entries...)
	return r
}

// ── Resource routes ──────────────────────────────────────────────────────────

// Resource registers standard RESTful routes against a named controller.
//
//	GET    /photos           → PhotoController@Index
//	POST   /photos           → PhotoController@Store
//	GET    /photos/{id}      → PhotoController@Show
//	PUT    /photos/{id}      → PhotoController@Update
//	PATCH  /photos/{id}      → PhotoController@Update
//	DELETE /photos/{id}      → PhotoController@Destroy
func (r *Router) Resource(pattern, controller string) {
	r.Get(pattern, controller+"@Index")
	r.Post(pattern, controller+"@Store")
	r.Get(pattern+"/{id}", controller+"@Show")
	r.Put(pattern+"/{id}", controller+"@Update")
	r.Patch(pattern+"/{id}", controller+"@Update")
	r.Delete(pattern+"/{id}", controller+"@Destroy")
}

// ── Bulk registration ────────────────────────────────────────────────────────

// LoadMap registers routes from the external "METHOD /path" → handler
// mapping. Keys are registered in sorted order so an unordered map source
// yields a deterministic table.
func (r *Router) LoadMap(m map[string]string) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		method, pattern, ok := strings.Cut(strings.TrimSpace(key), " ")
		if !ok || pattern == "" {
			return fmt.Errorf("routing: malformed route key %q (want \"METHOD /path\")", key)
		}
		r.Handle(method, strings.TrimSpace(pattern), m[key])
	}
	return nil
}

// Routes returns the registered definitions in registration order.
func (r *Router) Routes() []*Route { return r.set.defs }

// Compile builds the tiered match table for the registered routes.
func (r *Router) Compile() *Table { return Compile(r.set.defs) }

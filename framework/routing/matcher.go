package routing

import (
	"errors"
	"strings"
)

// ErrRouteNotFound is returned by Match when no tier produces a hit.
var ErrRouteNotFound = errors.New("routing: no matching route")

// Match is a successful lookup: the winning route, its handler and the
// captured path parameters in declaration order.
type Match struct {
	Route   *Route
	Handler HandlerRef
	Params  []string
}

// Match finds the route for a concrete (method, path) pair.
//
// Tiers are consulted static → dynamic → regex, first hit wins, so a static
// /users/active always beats a registered /users/{id}. Within a tier,
// registration order decides. Paths are matched exactly: no trailing-slash
// normalization, no prefix matches.
//
// A final linear scan over the raw definitions backstops the tiering
// heuristics — a route that classification mishandled must still match.
func (t *Table) Match(method, path string) (*Match, error) {
	if byPath := t.static[method]; byPath != nil {
		if route, ok := byPath[path]; ok {
			return &Match{Route: route, Handler: route.Handler}, nil
		}
	}

	for _, c := range t.dynamic[method] {
		if m := c.re.FindStringSubmatch(path); m != nil {
			return &Match{Route: c.route, Handler: c.route.Handler, Params: m[1:]}, nil
		}
	}

	for _, c := range t.regex[method] {
		if m := c.re.FindStringSubmatch(path); m != nil {
			return &Match{Route: c.route, Handler: c.route.Handler, Params: m[1:]}, nil
		}
	}

	// Fallback: recompile each candidate from its raw pattern.
	for _, def := range t.defs {
		if def.Method != method {
			continue
		}
		if !strings.Contains(def.Pattern, "{") {
			if def.Pattern == path {
				return &Match{Route: def, Handler: def.Handler}, nil
			}
			continue
		}
		re, _ := compilePattern(def.Pattern)
		if m := re.FindStringSubmatch(path); m != nil {
			return &Match{Route: def, Handler: def.Handler, Params: m[1:]}, nil
		}
	}

	return nil, ErrRouteNotFound
}

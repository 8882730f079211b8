package routing

import (
	"regexp"
	"strings"
)

// Route tables are compiled once per process into three tiers keyed by
// pattern shape, so the hot path is a map hit for literal routes and a
// short regex scan for parameterized ones:
//
//   - static:  no placeholders — exact-path map lookup
//   - dynamic: exactly one placeholder between plain literals — the
//     single-parameter fast path
//   - regex:   everything else (multiple placeholders, irregular shapes)
//
// Every definition lands in exactly one tier; compilation never drops a
// route. Tier lists preserve registration order, which fixes match
// precedence among overlapping parameterized patterns.

// placeholderRe matches one {name} segment.
var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// dynamicShapeRe recognizes the fast-path shape: a single placeholder with
// plain literals (no further braces) on either side.
var dynamicShapeRe = regexp.MustCompile(`^[^{}]*\{[A-Za-z_][A-Za-z0-9_]*\}[^{}]*$`)

// compiledRoute is a parameterized route ready for matching.
type compiledRoute struct {
	route  *Route
	re     *regexp.Regexp
	params []string // placeholder names, left to right
}

// Table is the compiled three-tier route table. Built once at bootstrap
// and read-only afterwards — safe for concurrent Match calls.
type Table struct {
	static  map[string]map[string]*Route // method → exact path → route
	dynamic map[string][]*compiledRoute  // method → single-param routes
	regex   map[string][]*compiledRoute  // method → remaining param routes

	// defs keeps the original definitions in registration order for the
	// linear fallback scan.
	defs []*Route
}

// Compile builds the tiered table from route definitions.
func Compile(defs []*Route) *Table {
	t := &Table{
		static:  make(map[string]map[string]*Route),
		dynamic: make(map[string][]*compiledRoute),
		regex:   make(map[string][]*compiledRoute),
		defs:    defs,
	}

	for _, def := range defs {
		switch classify(def.Pattern) {
		case tierStatic:
			byPath := t.static[def.Method]
			if byPath == nil {
				byPath = make(map[string]*Route)
				t.static[def.Method] = byPath
			}
			// First registration wins, matching fallback-scan semantics.
			if _, taken := byPath[def.Pattern]; !taken {
				byPath[def.Pattern] = def
			}
		case tierDynamic:
			t.dynamic[def.Method] = append(t.dynamic[def.Method], compileRoute(def))
		case tierRegex:
			t.regex[def.Method] = append(t.regex[def.Method], compileRoute(def))
		}
	}
	return t
}

// Routes returns the definitions backing the table, in registration order.
func (t *Table) Routes() []*Route { return t.defs }

type tier int

const (
	tierStatic tier = iota
	tierDynamic
	tierRegex
)

func classify(pattern string) tier {
	if !strings.Contains(pattern, "{") {
		return tierStatic
	}
	if dynamicShapeRe.MatchString(pattern) {
		return tierDynamic
	}
	return tierRegex
}

func compileRoute(def *Route) *compiledRoute {
	re, params := compilePattern(def.Pattern)
	return &compiledRoute{route: def, re: re, params: params}
}

// compilePattern turns /users/{id}/posts/{post} into
// ^/users/([^/]+)/posts/([^/]+)$ plus the ordered placeholder names.
// Literal text is quoted, so brace fragments that are not well-formed
// placeholders match themselves.
func compilePattern(pattern string) (*regexp.Regexp, []string) {
	var (
		b      strings.Builder
		params []string
		last   int
	)
	b.WriteString("^")
	for _, loc := range placeholderRe.FindAllStringSubmatchIndex(pattern, -1) {
		b.WriteString(regexp.QuoteMeta(pattern[last:loc[0]]))
		b.WriteString(`([^/]+)`)
		params = append(params, pattern[loc[2]:loc[3]])
		last = loc[1]
	}
	b.WriteString(regexp.QuoteMeta(pattern[last:]))
	b.WriteString("$")
	return regexp.MustCompile(b.String()), params
}

// Package pipeline composes middleware around a terminal handler invocation,
// mirroring Laravel's Illuminate\Pipeline\Pipeline.
//
// Rather than building nested closures at runtime, the executor walks an
// explicit entry list with an index cursor. The continuation handed to each
// middleware advances the cursor, which keeps the chain inspectable and
// makes short-circuit behavior trivial to test.
package pipeline

import (
	"fmt"

	"github.com/strataframe/strata/framework/httpx"
)

// Next is the continuation passed to a middleware. Calling it runs the rest
// of the chain (ending in the terminal) and yields its result.
type Next func() any

// Middleware is the unit of cross-cutting behavior.
//
// A middleware short-circuits by returning a value other than nil or true
// WITHOUT calling next; the pipeline's result is then that value and no
// later middleware or terminal runs. Returning nil or true without calling
// next silently ends the chain — the terminal never runs.
//
//	// Laravel: public function handle($request, Closure $next, ...$params)
type Middleware interface {
	Handle(req *httpx.Request, next Next, params ...string) any
}

// Func adapts a plain function to the Middleware interface.
type Func func(req *httpx.Request, next Next, params ...string) any

func (f Func) Handle(req *httpx.Request, next Next, params ...string) any {
	return f(req, next, params...)
}

// Entry pairs a middleware reference with its registration parameters.
// Ref is either a Middleware value or a string key resolved through the
// container at execution time — the same split Laravel makes between
// middleware instances and 'throttle:60,1'-style class references.
type Entry struct {
	Ref    any
	Params []string
}

// Use builds an Entry.
//
//	pipeline.Use(authMW)
//	pipeline.Use("throttle", "60", "1")
func Use(ref any, params ...string) Entry {
	return Entry{Ref: ref, Params: params}
}

// Name returns a diagnostic label for the entry.
func (e Entry) Name() string {
	if s, ok := e.Ref.(string); ok {
		return s
	}
	return fmt.Sprintf("%T", e.Ref)
}

// Resolver produces middleware instances for string-keyed entries.
// *container.Container satisfies it directly.
type Resolver interface {
	Resolve(key string) (any, error)
}

// Observer receives notification hooks around each middleware invocation.
// Hooks carry no control-flow influence.
type Observer interface {
	Enter(e Entry)
	Exit(e Entry)
}

// Pipeline is an ordered middleware chain. Build one per dispatch; it is
// cheap and carries the per-run cursor state out of the struct.
type Pipeline struct {
	entries  []Entry
	resolver Resolver
	observer Observer
}

// New builds a pipeline over the given entries. resolver may be nil when
// every entry carries a Middleware value.
func New(resolver Resolver, entries ...Entry) *Pipeline {
	return &Pipeline{entries: entries, resolver: resolver}
}

// WithObserver attaches notification hooks and returns the pipeline.
func (p *Pipeline) WithObserver(o Observer) *Pipeline {
	p.observer = o
	return p
}

// Entries exposes the composed chain for inspection.
func (p *Pipeline) Entries() []Entry { return p.entries }

// Merge concatenates global and route-specific middleware, global first.
func Merge(global, route []Entry) []Entry {
	merged := make([]Entry, 0, len(global)+len(route))
	merged = append(merged, global...)
	merged = append(merged, route...)
	return merged
}

// Run executes the chain in registration order around the terminal.
//
// The returned error is reserved for middleware resolution failures — a
// short-circuit is not an error, and whatever the chain returns (including
// nil) comes back as the result.
func (p *Pipeline) Run(req *httpx.Request, terminal func() any) (any, error) {
	r := &runner{pipeline: p, req: req, terminal: terminal}
	result := r.next()
	if r.err != nil {
		return nil, r.err
	}
	return result, nil
}

// runner holds the cursor for a single execution.
type runner struct {
	pipeline *Pipeline
	req      *httpx.Request
	terminal func() any
	idx      int
	err      error
}

// next is the continuation: run the middleware at the cursor, or the
// terminal once the chain is exhausted.
func (r *runner) next() any {
	if r.err != nil {
		return nil
	}
	p := r.pipeline
	if r.idx >= len(p.entries) {
		return r.terminal()
	}

	entry := p.entries[r.idx]
	r.idx++

	mw, err := r.materialize(entry)
	if err != nil {
		r.err = err
		return nil
	}

	// Each continuation is single-shot: a middleware calling it twice gets
	// nil back instead of re-running downstream entries or the terminal.
	called := false
	proceed := func() any {
		if called {
			return nil
		}
		called = true
		return r.next()
	}

	if p.observer != nil {
		p.observer.Enter(entry)
	}
	result := mw.Handle(r.req, proceed, entry.Params...)
	if p.observer != nil {
		p.observer.Exit(entry)
	}
	return result
}

// materialize turns an entry into a runnable middleware.
func (r *runner) materialize(e Entry) (Middleware, error) {
	switch ref := e.Ref.(type) {
	case Middleware:
		return ref, nil
	case func(*httpx.Request, Next, ...string) any:
		return Func(ref), nil
	case string:
		if r.pipeline.resolver == nil {
			return nil, fmt.Errorf("pipeline: no resolver for middleware [%s]", ref)
		}
		inst, err := r.pipeline.resolver.Resolve(ref)
		if err != nil {
			return nil, fmt.Errorf("pipeline: resolve middleware [%s]: %w", ref, err)
		}
		mw, ok := inst.(Middleware)
		if !ok {
			return nil, fmt.Errorf("pipeline: [%s] resolved to %T, not a middleware", ref, inst)
		}
		return mw, nil
	default:
		return nil, fmt.Errorf("pipeline: invalid middleware reference %T", e.Ref)
	}
}

// Package dispatch orchestrates a request through the engine: match the
// route, resolve the handler through the container, wrap it in the
// middleware pipeline, run it, and normalize the result into a response.
//
// Per request the dispatcher walks Matching → Resolving → PipelineBuilding →
// Executing → Responding. Matching and resolution failures are converted to
// responses locally — they never propagate past Dispatch. Handler and
// middleware errors (including panics) are caught at the outermost pipeline
// invocation only.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/google/uuid"

	"github.com/strataframe/strata/framework/container"
	"github.com/strataframe/strata/framework/httpx"
	"github.com/strataframe/strata/framework/pipeline"
	"github.com/strataframe/strata/framework/routing"
)

// Dispatcher turns matched requests into responses. Build one per process;
// it is stateless per request and safe for concurrent use — the compiled
// table is read-only and the container handles its own locking.
type Dispatcher struct {
	app     *container.Container
	table   *routing.Table
	global  []pipeline.Entry
	tracker Tracker
	logger  *slog.Logger
	debug   bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithGlobalMiddleware sets middleware applied to every request, ahead of
// any route-specific middleware.
func WithGlobalMiddleware(entries ...pipeline.Entry) Option {
	return func(d *Dispatcher) { d.global = entries }
}

// WithTracker sets the telemetry collaborator.
func WithTracker(t Tracker) Option {
	return func(d *Dispatcher) { d.tracker = t }
}

// WithLogger sets the structured logger for dispatch failures.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithDebug controls whether error details reach the response body. They are
// always logged either way.
func WithDebug(debug bool) Option {
	return func(d *Dispatcher) { d.debug = debug }
}

// New creates a Dispatcher over a compiled route table.
func New(app *container.Container, table *routing.Table, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		app:     app,
		table:   table,
		tracker: NopTracker{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch handles one request. ctx flows into the terminal invocation via
// the request, so transport-level cancellation reaches handlers.
func (d *Dispatcher) Dispatch(ctx context.Context, req *httpx.Request) *httpx.Response {
	id := uuid.NewString()
	req = req.WithContext(ctx)

	// Matching
	m, err := d.table.Match(req.Method, req.Path)
	if err != nil {
		d.tracker.RouteMissed(id, req.Method, req.Path)
		return notFoundResponse(req)
	}
	d.tracker.RouteMatched(id, req.Method, req.Path, m.Handler.String())

	// Resolving
	terminal, err := d.terminal(id, m, req)
	if err != nil {
		return d.fail(id, req, err)
	}

	// PipelineBuilding: global middleware first, then the route's own.
	entries := pipeline.Merge(d.global, m.Route.Middleware())
	chain := pipeline.New(d.app, entries...).
		WithObserver(&trackObserver{id: id, tracker: d.tracker})

	// Executing
	result, err := d.execute(chain, req, terminal)
	if err != nil {
		return d.fail(id, req, err)
	}

	// Responding
	return normalize(result)
}

// execute runs the pipeline, catching panics and error results. This is the
// single recovery point for handler and middleware failures.
func (d *Dispatcher) execute(chain *pipeline.Pipeline, req *httpx.Request, terminal func() any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("dispatch: panic in handler chain: %v", r)
		}
	}()

	result, err = chain.Run(req, terminal)
	if err != nil {
		return nil, err
	}
	if e, ok := result.(error); ok {
		return nil, e
	}
	return result, nil
}

// ── Resolving ────────────────────────────────────────────────────────────────

// terminal builds the zero-argument continuation that invokes the matched
// handler: either the registered callable, or a container-resolved
// controller method.
func (d *Dispatcher) terminal(id string, m *routing.Match, req *httpx.Request) (func() any, error) {
	if !m.Handler.IsNamed() {
		fn := m.Handler.Func()
		if fn == nil {
			return nil, fmt.Errorf("dispatch: route %s has no handler", m.Route)
		}
		return func() any { return fn(req, m.Params...) }, nil
	}

	name := m.Handler.Name()
	ctrlName, methodName, ok := strings.Cut(name, "@")
	if !ok || ctrlName == "" || methodName == "" {
		return nil, fmt.Errorf("dispatch: malformed handler reference %q", name)
	}

	// Constructor injection happens here: the container builds the
	// controller and its transitive dependencies.
	ctrl, err := d.app.Resolve(ctrlName)
	if err != nil {
		return nil, err
	}
	d.tracker.ControllerResolved(id, ctrlName)

	method := reflect.ValueOf(ctrl).MethodByName(methodName)
	if !method.IsValid() {
		return nil, fmt.Errorf("dispatch: method [%s] not found on [%s] (%T)", methodName, ctrlName, ctrl)
	}

	args, err := buildArgs(name, method.Type(), req, m.Params)
	if err != nil {
		return nil, err
	}

	return func() any {
		out := method.Call(args)
		d.tracker.ControllerExecuted(id, name)
		return controllerResult(out)
	}, nil
}

var requestType = reflect.TypeOf((*httpx.Request)(nil))

// buildArgs assembles the call arguments: the request is prepended when the
// method's first parameter is *httpx.Request, then route parameters follow
// positionally as strings.
func buildArgs(name string, mt reflect.Type, req *httpx.Request, params []string) ([]reflect.Value, error) {
	args := make([]reflect.Value, 0, len(params)+1)
	offset := 0
	if mt.NumIn() > 0 && mt.In(0) == requestType {
		args = append(args, reflect.ValueOf(req))
		offset = 1
	}

	if mt.IsVariadic() {
		fixed := mt.NumIn() - 1 - offset
		if len(params) < fixed {
			return nil, fmt.Errorf("dispatch: [%s] needs at least %d route parameters, got %d", name, fixed, len(params))
		}
		if mt.In(mt.NumIn() - 1).Elem().Kind() != reflect.String {
			return nil, fmt.Errorf("dispatch: [%s] variadic parameter must be ...string", name)
		}
	} else if mt.NumIn()-offset != len(params) {
		return nil, fmt.Errorf("dispatch: [%s] takes %d route parameters, got %d", name, mt.NumIn()-offset, len(params))
	}

	for i, p := range params {
		argPos := offset + i
		if !mt.IsVariadic() || argPos < mt.NumIn()-1 {
			if mt.In(argPos).Kind() != reflect.String {
				return nil, fmt.Errorf("dispatch: [%s] parameter %d must be a string", name, argPos)
			}
		}
		args = append(args, reflect.ValueOf(p))
	}
	return args, nil
}

// controllerResult flattens reflect return values. A trailing non-nil error
// wins over the value; execute turns it into a 500.
func controllerResult(out []reflect.Value) any {
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0].Interface()
	default:
		if err, ok := out[len(out)-1].Interface().(error); ok && err != nil {
			return err
		}
		return out[0].Interface()
	}
}

// ── Responding ───────────────────────────────────────────────────────────────

// normalize converts whatever the chain returned into a response value.
func normalize(result any) *httpx.Response {
	switch v := result.(type) {
	case nil:
		return httpx.NoContent()
	case *httpx.Response:
		return v
	case string:
		return httpx.Text(http.StatusOK, v)
	case []byte:
		res := httpx.New(http.StatusOK)
		res.Body = v
		return res
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return httpx.Text(http.StatusOK, fmt.Sprint(v))
	default:
		// Maps, slices and structs serialize as JSON.
		return httpx.JSON(http.StatusOK, v)
	}
}

func notFoundResponse(req *httpx.Request) *httpx.Response {
	if req.WantsJSON() {
		return httpx.NotFound()
	}
	return httpx.HTML(http.StatusNotFound, "<!doctype html><html><head><title>404 Not Found</title></head><body><h1>404 | Not Found</h1></body></html>")
}

// fail logs the failure and produces a 500. Details stay out of the body
// unless debug is on; the log line always carries them.
func (d *Dispatcher) fail(id string, req *httpx.Request, err error) *httpx.Response {
	d.logger.Error("request dispatch failed",
		"dispatch_id", id,
		"method", req.Method,
		"path", req.Path,
		"error", err,
	)

	message := "Server Error."
	if d.debug {
		message = err.Error()
	}
	if req.WantsJSON() {
		return httpx.Error(http.StatusInternalServerError, message)
	}
	return httpx.HTML(http.StatusInternalServerError, "<!doctype html><html><head><title>500 Server Error</title></head><body><h1>500 | "+message+"</h1></body></html>")
}

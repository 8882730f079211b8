package dispatch_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strataframe/strata/framework/container"
	"github.com/strataframe/strata/framework/dispatch"
	"github.com/strataframe/strata/framework/httpx"
	"github.com/strataframe/strata/framework/pipeline"
	"github.com/strataframe/strata/framework/routing"
)

// ── fixtures ─────────────────────────────────────────────────────────────────

type UserController struct{}

func (c *UserController) Show(id string) any {
	return map[string]string{"id": id}
}

func (c *UserController) Ping(req *httpx.Request) any {
	return "pong:" + req.Path
}

func (c *UserController) Boom() any {
	panic("kaput")
}

func (c *UserController) Fallible() (any, error) {
	return nil, errors.New("db gone")
}

type GreetController struct{ Prefix string }

func (c *GreetController) Greet(name string) any {
	return c.Prefix + name
}

func newApp() *container.Container {
	c := container.New()
	c.RegisterValueType("UserController", func() any { return &UserController{} })
	return c
}

func dispatcher(t *testing.T, app *container.Container, register func(r *routing.Router), opts ...dispatch.Option) *dispatch.Dispatcher {
	t.Helper()
	r := routing.New()
	register(r)
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]dispatch.Option{dispatch.WithLogger(quiet)}, opts...)
	return dispatch.New(app, r.Compile(), opts...)
}

func get(path string) *httpx.Request {
	return httpx.NewRequest("GET", path).Set("Accept", "application/json")
}

// ── End-to-end controller dispatch ───────────────────────────────────────────

func TestDispatch_NamedHandlerEndToEnd(t *testing.T) {
	d := dispatcher(t, newApp(), func(r *routing.Router) {
		r.Get("/users/{id}", "UserController@Show")
	})

	res := d.Dispatch(context.Background(), get("/users/42"))

	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"id":"42"}`, string(res.Body))
}

func TestDispatch_RequestPrependedWhenDeclared(t *testing.T) {
	d := dispatcher(t, newApp(), func(r *routing.Router) {
		r.Get("/ping", "UserController@Ping")
	})

	res := d.Dispatch(context.Background(), get("/ping"))

	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "pong:/ping", string(res.Body))
}

func TestDispatch_ConstructorInjection(t *testing.T) {
	app := container.New()
	app.Instance("greeting.prefix", "hello, ")
	app.RegisterType("GreetController", []container.Param{
		{Name: "prefix", Type: "greeting.prefix"},
	}, func(args []any) (any, error) {
		return &GreetController{Prefix: args[0].(string)}, nil
	})

	d := dispatcher(t, app, func(r *routing.Router) {
		r.Get("/greet/{name}", "GreetController@Greet")
	})

	res := d.Dispatch(context.Background(), get("/greet/ada"))
	assert.Equal(t, "hello, ada", string(res.Body))
}

func TestDispatch_CallableHandler(t *testing.T) {
	app := container.New()
	d := dispatcher(t, app, func(r *routing.Router) {
		r.Get("/sum/{a}/{b}", func(req *httpx.Request, params ...string) any {
			return params[0] + "+" + params[1]
		})
	})

	res := d.Dispatch(context.Background(), get("/sum/1/2"))
	assert.Equal(t, "1+2", string(res.Body))
}

// ── 404 behavior ─────────────────────────────────────────────────────────────

func TestDispatch_NotFoundJSON(t *testing.T) {
	tracker := &recordingTracker{}
	app := container.New()
	constructed := false
	app.RegisterValueType("UserController", func() any {
		constructed = true
		return &UserController{}
	})
	mwRan := false
	d := dispatcher(t, app, func(r *routing.Router) {
		r.Get("/users/{id}", "UserController@Show").
			Use(pipeline.Use(pipeline.Func(func(req *httpx.Request, next pipeline.Next, params ...string) any {
				mwRan = true
				return next()
			})))
	}, dispatch.WithTracker(tracker))

	res := d.Dispatch(context.Background(), get("/orders/1"))

	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.JSONEq(t, `{"message":"Not found."}`, string(res.Body))
	assert.False(t, mwRan, "middleware must not run on unmatched routes")
	assert.False(t, constructed, "no controller may be instantiated")
	assert.Len(t, tracker.missed, 1)
}

func TestDispatch_NotFoundHTMLWhenNotJSON(t *testing.T) {
	d := dispatcher(t, newApp(), func(r *routing.Router) {})

	res := d.Dispatch(context.Background(), httpx.NewRequest("GET", "/nope"))

	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(res.Body), "404")
}

// ── Middleware integration ───────────────────────────────────────────────────

func TestDispatch_GlobalThenRouteMiddleware(t *testing.T) {
	var log []string
	tag := func(name string) pipeline.Entry {
		return pipeline.Use(pipeline.Func(func(req *httpx.Request, next pipeline.Next, params ...string) any {
			log = append(log, name)
			return next()
		}))
	}

	d := dispatcher(t, newApp(), func(r *routing.Router) {
		r.Get("/users/{id}", "UserController@Show").Use(tag("route"))
	}, dispatch.WithGlobalMiddleware(tag("global")))

	res := d.Dispatch(context.Background(), get("/users/1"))

	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, []string{"global", "route"}, log)
}

func TestDispatch_MiddlewareShortCircuit(t *testing.T) {
	deny := pipeline.Use(pipeline.Func(func(req *httpx.Request, next pipeline.Next, params ...string) any {
		return httpx.Unauthorized()
	}))

	app := newApp()
	d := dispatcher(t, app, func(r *routing.Router) {
		r.Get("/users/{id}", "UserController@Show")
	}, dispatch.WithGlobalMiddleware(deny))

	res := d.Dispatch(context.Background(), get("/users/1"))

	assert.Equal(t, http.StatusUnauthorized, res.Status)
}

func TestDispatch_ContainerNamedMiddleware(t *testing.T) {
	app := newApp()
	var seen []string
	app.Instance("audit", pipeline.Func(func(req *httpx.Request, next pipeline.Next, params ...string) any {
		seen = append(seen, params...)
		return next()
	}))

	d := dispatcher(t, app, func(r *routing.Router) {
		r.Get("/users/{id}", "UserController@Show").Use(pipeline.Use("audit", "level-3"))
	})

	res := d.Dispatch(context.Background(), get("/users/1"))

	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, []string{"level-3"}, seen)
}

// ── Failure modes ────────────────────────────────────────────────────────────

func TestDispatch_PanicBecomes500(t *testing.T) {
	d := dispatcher(t, newApp(), func(r *routing.Router) {
		r.Get("/boom", "UserController@Boom")
	})

	res := d.Dispatch(context.Background(), get("/boom"))

	assert.Equal(t, http.StatusInternalServerError, res.Status)
	assert.JSONEq(t, `{"message":"Server Error."}`, string(res.Body))
}

func TestDispatch_DebugExposesDetails(t *testing.T) {
	d := dispatcher(t, newApp(), func(r *routing.Router) {
		r.Get("/fail", "UserController@Fallible")
	}, dispatch.WithDebug(true))

	res := d.Dispatch(context.Background(), get("/fail"))

	assert.Equal(t, http.StatusInternalServerError, res.Status)
	assert.Contains(t, string(res.Body), "db gone")
}

func TestDispatch_UnresolvableControllerIs500(t *testing.T) {
	d := dispatcher(t, container.New(), func(r *routing.Router) {
		r.Get("/ghost", "GhostController@Show")
	})

	res := d.Dispatch(context.Background(), get("/ghost"))
	assert.Equal(t, http.StatusInternalServerError, res.Status)
}

func TestDispatch_UnknownMethodIs500(t *testing.T) {
	d := dispatcher(t, newApp(), func(r *routing.Router) {
		r.Get("/users", "UserController@Missing")
	})

	res := d.Dispatch(context.Background(), get("/users"))
	assert.Equal(t, http.StatusInternalServerError, res.Status)
}

func TestDispatch_ParamCountMismatchIs500(t *testing.T) {
	d := dispatcher(t, newApp(), func(r *routing.Router) {
		// Show takes one parameter; none will be captured.
		r.Get("/users", "UserController@Show")
	})

	res := d.Dispatch(context.Background(), get("/users"))
	assert.Equal(t, http.StatusInternalServerError, res.Status)
}

// ── Result normalization ─────────────────────────────────────────────────────

func TestDispatch_NormalizesResults(t *testing.T) {
	app := container.New()
	d := dispatcher(t, app, func(r *routing.Router) {
		r.Get("/nil", func(req *httpx.Request, params ...string) any { return nil })
		r.Get("/text", func(req *httpx.Request, params ...string) any { return "plain" })
		r.Get("/num", func(req *httpx.Request, params ...string) any { return 7 })
		r.Get("/map", func(req *httpx.Request, params ...string) any { return map[string]int{"n": 1} })
		r.Get("/resp", func(req *httpx.Request, params ...string) any { return httpx.Text(http.StatusTeapot, "short") })
	})

	ctx := context.Background()

	assert.Equal(t, http.StatusNoContent, d.Dispatch(ctx, get("/nil")).Status)

	text := d.Dispatch(ctx, get("/text"))
	assert.Equal(t, http.StatusOK, text.Status)
	assert.Equal(t, "plain", string(text.Body))

	assert.Equal(t, "7", string(d.Dispatch(ctx, get("/num")).Body))

	mp := d.Dispatch(ctx, get("/map"))
	assert.Equal(t, "application/json", mp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, string(mp.Body))

	assert.Equal(t, http.StatusTeapot, d.Dispatch(ctx, get("/resp")).Status)
}

// ── Context propagation ──────────────────────────────────────────────────────

func TestDispatch_ContextReachesHandler(t *testing.T) {
	type ctxKey struct{}
	var got any

	d := dispatcher(t, container.New(), func(r *routing.Router) {
		r.Get("/ctx", func(req *httpx.Request, params ...string) any {
			got = req.Context().Value(ctxKey{})
			return nil
		})
	})

	ctx := context.WithValue(context.Background(), ctxKey{}, "flows")
	d.Dispatch(ctx, get("/ctx"))

	assert.Equal(t, "flows", got)
}

// ── Telemetry ────────────────────────────────────────────────────────────────

type recordingTracker struct {
	matched, missed, mwStart, mwEnd, resolved, executed []string
}

func (r *recordingTracker) RouteMatched(id, method, path, handler string) {
	r.matched = append(r.matched, method+" "+path+" -> "+handler)
}
func (r *recordingTracker) RouteMissed(id, method, path string) {
	r.missed = append(r.missed, method+" "+path)
}
func (r *recordingTracker) MiddlewareStarted(id, name string)  { r.mwStart = append(r.mwStart, name) }
func (r *recordingTracker) MiddlewareFinished(id, name string) { r.mwEnd = append(r.mwEnd, name) }
func (r *recordingTracker) ControllerResolved(id, controller string) {
	r.resolved = append(r.resolved, controller)
}
func (r *recordingTracker) ControllerExecuted(id, handler string) {
	r.executed = append(r.executed, handler)
}

func TestDispatch_TrackerSeesLifecycle(t *testing.T) {
	tracker := &recordingTracker{}
	app := newApp()
	app.Instance("audit", pipeline.Func(func(req *httpx.Request, next pipeline.Next, params ...string) any {
		return next()
	}))

	d := dispatcher(t, app, func(r *routing.Router) {
		r.Get("/users/{id}", "UserController@Show").Use(pipeline.Use("audit"))
	}, dispatch.WithTracker(tracker))

	d.Dispatch(context.Background(), get("/users/9"))

	assert.Equal(t, []string{"GET /users/9 -> UserController@Show"}, tracker.matched)
	assert.Equal(t, []string{"audit"}, tracker.mwStart)
	assert.Equal(t, []string{"audit"}, tracker.mwEnd)
	assert.Equal(t, []string{"UserController"}, tracker.resolved)
	assert.Equal(t, []string{"UserController@Show"}, tracker.executed)
}

func TestDispatch_ErrorsAreLogged(t *testing.T) {
	var buf logBuffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := routing.New()
	r.Get("/fail", "UserController@Fallible")
	d := dispatch.New(newApp(), r.Compile(), dispatch.WithLogger(logger))

	d.Dispatch(context.Background(), get("/fail"))

	require.NotEmpty(t, buf.String())
	assert.Contains(t, buf.String(), "db gone")
	assert.Contains(t, buf.String(), "/fail")
}

type logBuffer struct{ data []byte }

func (b *logBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *logBuffer) String() string { return string(b.data) }

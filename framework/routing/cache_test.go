package routing_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strataframe/strata/framework/httpx"
	"github.com/strataframe/strata/framework/pipeline"
	"github.com/strataframe/strata/framework/routing"
)

func TestCache_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.cache.json")

	r := routing.New()
	r.Get("/users", "UserController@Index")
	r.Get("/users/{id}", "UserController@Show")

	require.NoError(t, routing.SaveCache(path, r.Routes()))

	defs, err := routing.LoadCache(path)
	require.NoError(t, err)
	require.Len(t, defs, 2)

	table := routing.Compile(defs)
	m, err := table.Match("GET", "/users/42")
	require.NoError(t, err)
	assert.Equal(t, "UserController@Show", m.Handler.Name())
	assert.Equal(t, []string{"42"}, m.Params)
}

func TestCache_PreservesRegistrationOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.cache.json")

	r := routing.New()
	r.Get("/posts/{slug}", "PostController@BySlug")
	r.Get("/posts/{id}", "PostController@ById")

	require.NoError(t, routing.SaveCache(path, r.Routes()))
	defs, err := routing.LoadCache(path)
	require.NoError(t, err)

	m, err := routing.Compile(defs).Match("GET", "/posts/first")
	require.NoError(t, err)
	assert.Equal(t, "PostController@BySlug", m.Handler.Name())
}

func TestCache_RefusesClosureHandlers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.cache.json")

	r := routing.New()
	r.Get("/users", "UserController@Index")
	r.Get("/ping", routing.Callable(func(req *httpx.Request, params ...string) any { return "pong" }))

	assert.False(t, routing.Cacheable(r.Routes()))
	assert.ErrorIs(t, routing.SaveCache(path, r.Routes()), routing.ErrNotCacheable)
}

func TestCache_LoadMissingFileFails(t *testing.T) {
	_, err := routing.LoadCache(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestAttachMiddleware_RestoresRouteMiddleware(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.cache.json")

	r := routing.New()
	r.Get("/secret", "VaultController@Show").Use(pipeline.Use("auth", "admin"))
	r.Get("/open", "PageController@Show")

	require.NoError(t, routing.SaveCache(path, r.Routes()))
	cached, err := routing.LoadCache(path)
	require.NoError(t, err)
	require.Len(t, cached, 2)
	assert.Empty(t, cached[0].Middleware(), "snapshots carry definitions only")

	restored := routing.AttachMiddleware(cached, r.Routes())

	require.Len(t, restored[0].Middleware(), 1)
	assert.Equal(t, "auth", restored[0].Middleware()[0].Ref)
	assert.Equal(t, []string{"admin"}, restored[0].Middleware()[0].Params)
	assert.Empty(t, restored[1].Middleware())
}

func TestAttachMiddleware_UnmatchedRouteKeepsNone(t *testing.T) {
	live := routing.New()
	live.Get("/a", "A@Show").Use(pipeline.Use("auth"))

	cached := []*routing.Route{
		{Method: "GET", Pattern: "/b", Handler: routing.Named("B@Show")},
	}

	restored := routing.AttachMiddleware(cached, live.Routes())
	assert.Empty(t, restored[0].Middleware())
}

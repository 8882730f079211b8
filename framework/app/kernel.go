package app

import (
	"log/slog"
	"net/http"

	"github.com/strataframe/strata/framework/config"
	"github.com/strataframe/strata/framework/container"
	"github.com/strataframe/strata/framework/dispatch"
	"github.com/strataframe/strata/framework/pipeline"
	"github.com/strataframe/strata/framework/providers"
	"github.com/strataframe/strata/framework/routing"
)

// Application is the top-level application container.
// It embeds the IoC Container and ProviderRegistry so user code can
// call app.Bind(), app.Singleton(), app.Register() directly —
// exactly like $app in Laravel's bootstrap/app.php.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
}

// New creates and bootstraps the application.
func New(envFiles ...string) *Application {
	c := container.New()
	registry := container.NewProviderRegistry(c)

	app := &Application{
		Container: c,
		Providers: registry,
	}

	// Register framework core providers (same order as Laravel)
	registry.Register(&providers.ConfigServiceProvider{EnvFiles: envFiles})
	registry.Register(&providers.LogServiceProvider{})
	registry.Register(&providers.RoutingServiceProvider{})
	registry.Register(&providers.DispatchServiceProvider{})

	return app
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) {
	a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot() {
	a.Providers.Boot()
}

// Use appends global middleware, applied to every request ahead of any
// route middleware. Call before the first request is dispatched.
func (a *Application) Use(entries ...pipeline.Entry) {
	var global []pipeline.Entry
	if a.Bound("middleware.global") {
		global = container.Resolve[[]pipeline.Entry](a.Container, "middleware.global")
	}
	a.Instance("middleware.global", append(global, entries...))
}

// Config resolves *config.Config from the container.
func (a *Application) Config() *config.Config {
	return container.Resolve[*config.Config](a.Container, "config")
}

// Router resolves *routing.Router from the container.
func (a *Application) Router() *routing.Router {
	return container.Resolve[*routing.Router](a.Container, "router")
}

// Logger resolves *slog.Logger from the container.
func (a *Application) Logger() *slog.Logger {
	return container.Resolve[*slog.Logger](a.Container, "logger")
}

// Dispatcher resolves *dispatch.Dispatcher from the container. Resolve it
// only after all routes are registered: the route table compiles on first
// resolution.
func (a *Application) Dispatcher() *dispatch.Dispatcher {
	return container.Resolve[*dispatch.Dispatcher](a.Container, "dispatcher")
}

// Run boots the application (if needed) and starts the HTTP server.
func (a *Application) Run() error {
	if !a.Providers.Booted() {
		a.Boot()
	}
	cfg := a.Config()
	addr := ":" + cfg.App.Port
	a.Logger().Info("server starting", "addr", addr, "env", cfg.App.Env)
	return http.ListenAndServe(addr, a.Handler())
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config().App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.Config().App.Debug }
func (a *Application) Version() string     { return "0.1.0" }

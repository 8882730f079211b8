package providers

import (
	"log/slog"
	"os"

	"github.com/strataframe/strata/framework/config"
	"github.com/strataframe/strata/framework/container"
	"github.com/strataframe/strata/framework/dispatch"
	"github.com/strataframe/strata/framework/pipeline"
	"github.com/strataframe/strata/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads the application configuration from .env and
// binds it into the container as "config".
//
// Bound abstracts:
//   - "config" → *config.Config
//
// Laravel equivalent:
//
//	// Illuminate\Foundation\Bootstrap\LoadConfiguration
//	$app->singleton('config', fn() => new Repository($items));
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	envFiles := p.EnvFiles
	app.Singleton("config", func(c *container.Container) (any, error) {
		return config.Load(envFiles...), nil
	})
	app.Alias("config", "configuration")
}

// ── LogServiceProvider ────────────────────────────────────────────────────────

// LogServiceProvider registers the structured logger.
//
// Bound abstracts:
//   - "logger" → *slog.Logger (text handler; debug level when APP_DEBUG)
type LogServiceProvider struct {
	container.BaseProvider
}

func (p *LogServiceProvider) Register(app *container.Container) {
	app.Singleton("logger", func(c *container.Container) (any, error) {
		cfg := container.Resolve[*config.Config](c, "config")
		level := slog.LevelInfo
		if cfg.App.Debug {
			level = slog.LevelDebug
		}
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		return slog.New(handler).With("app", cfg.App.Name), nil
	})
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the route collector and, when configured,
// loads the external YAML route map into it.
//
// Bound abstracts:
//   - "router" → *routing.Router
//
// Laravel equivalent:
//
//	// Illuminate\Routing\RoutingServiceProvider
//	$app->singleton('router', fn($app) => new Router($app['events'], $app));
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) {
	app.Singleton("router", func(c *container.Container) (any, error) {
		cfg := container.Resolve[*config.Config](c, "config")
		r := routing.New()
		if cfg.Routes.File != "" {
			m, err := config.LoadRouteMap(cfg.Routes.File)
			if err != nil {
				return nil, err
			}
			if err := r.LoadMap(m); err != nil {
				return nil, err
			}
		}
		return r, nil
	})
}

// ── DispatchServiceProvider ───────────────────────────────────────────────────

// DispatchServiceProvider registers the request dispatcher over the compiled
// route table. The dispatcher must be resolved after all routes are
// registered — in practice that means after Boot, which the kernel enforces
// by resolving it lazily on first request.
//
// Bound abstracts:
//   - "tracker"    → dispatch.Tracker (no-op unless rebound)
//   - "dispatcher" → *dispatch.Dispatcher
//
// When route caching is enabled and every handler is a named reference, the
// compiled definitions are snapshotted to cfg.Routes.CacheFile and loaded
// back on the next boot, with per-route middleware re-attached from the
// live registrations. Tables holding closures are recompiled per process.
type DispatchServiceProvider struct {
	container.BaseProvider
}

func (p *DispatchServiceProvider) Register(app *container.Container) {
	app.Singleton("tracker", func(c *container.Container) (any, error) {
		return dispatch.NopTracker{}, nil
	})

	app.Singleton("dispatcher", func(c *container.Container) (any, error) {
		cfg := container.Resolve[*config.Config](c, "config")
		router := container.Resolve[*routing.Router](c, "router")
		logger := container.Resolve[*slog.Logger](c, "logger")

		defs := router.Routes()
		if cfg.Routes.CacheEnabled && routing.Cacheable(defs) {
			if cached, err := routing.LoadCache(cfg.Routes.CacheFile); err == nil {
				// The snapshot holds definitions only; middleware lives in
				// the in-code registrations.
				defs = routing.AttachMiddleware(cached, defs)
			} else if err := routing.SaveCache(cfg.Routes.CacheFile, defs); err != nil {
				logger.Warn("route cache write failed", "file", cfg.Routes.CacheFile, "error", err)
			}
		}

		opts := []dispatch.Option{
			dispatch.WithLogger(logger),
			dispatch.WithTracker(container.Resolve[dispatch.Tracker](c, "tracker")),
			dispatch.WithDebug(cfg.App.Debug),
		}
		if c.Bound("middleware.global") {
			opts = append(opts, dispatch.WithGlobalMiddleware(
				container.Resolve[[]pipeline.Entry](c, "middleware.global")...))
		}

		return dispatch.New(c, routing.Compile(defs), opts...), nil
	})
}

// Package container provides a Laravel-compatible IoC (Inversion of Control)
// container and Service Provider system for Go.
//
// # Overview
//
// The container manages the instantiation and lifecycle of your application's
// dependencies. It supports transient bindings, singletons, pre-built instances,
// aliases, tags, contextual bindings, extension (decoration), and auto-wiring
// of unbound concretes.
//
// It mirrors the public API of Laravel's Illuminate\Container\Container as
// closely as Go's type system allows. Because Go has no runtime constructor
// reflection, reflective auto-wiring is replaced by an explicit constructor
// registry: each constructible type declares its parameter list and a build
// function (see RegisterType), and the container walks that declaration the
// way Laravel walks a constructor signature.
//
// # Container Lifecycle
//
//  1. Create: c := container.New()
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Boot: registry.Boot()        — safe to resolve everything after this
//  4. Serve requests
//
// # Bindings
//
//	// Transient — new instance every Resolve()
//	// Laravel: $app->bind(Foo::class, fn($app) => new Foo)
//	c.Bind("Foo", func(c *container.Container) (any, error) { return &Foo{}, nil })
//
//	// Concrete by name — built through the constructor registry
//	// Laravel: $app->bind(UserRepository::class, EloquentUserRepository::class)
//	c.Bind("UserRepository", "EloquentUserRepository")
//
//	// Singleton — created once, reused
//	// Laravel: $app->singleton(Cache::class, fn($app) => new RedisCache)
//	c.Singleton("cache", func(c *container.Container) (any, error) {
//	    cfg := container.Resolve[*Config](c, "config")
//	    return cache.NewRedis(cfg), nil
//	})
//
//	// Pre-built value
//	// Laravel: $app->instance(Config::class, $config)
//	c.Instance("config", myConfig)
//
//	// Alias
//	// Laravel: $app->alias(Cache::class, 'cache')
//	c.Alias("cache", "cacheManager")
//
// # Auto-wiring
//
//	c.RegisterType("UserController", []container.Param{
//	    {Name: "repo", Type: "UserRepository"},
//	    {Name: "pageSize", Default: 25, HasDefault: true},
//	}, func(args []any) (any, error) {
//	    return &UserController{Repo: args[0].(UserRepository), PageSize: args[1].(int)}, nil
//	})
//
//	// No Bind needed — the registry makes "UserController" resolvable:
//	ctrl, err := c.Resolve("UserController")
//
//	// Per-call overrides, matched by parameter name:
//	ctrl, err = c.ResolveWith("UserController", map[string]any{"pageSize": 100})
//
// # Resolving and failure modes
//
//	// Laravel: $app->make(Cache::class)
//	raw, err := c.Resolve("cache")
//
//	// Generic (preferred — no type assertion required; panics on failure)
//	cache := container.Resolve[*RedisCache](c, "cache")
//
// Resolution failures are typed: *UnresolvableError when a key has no
// binding, no constructor, or a constructor parameter cannot be satisfied;
// *CircularError (with the full cycle chain) when a concrete recurs in its
// own build stack. Each top-level Resolve call tree carries its own build
// stack, so concurrent resolutions never interfere.
//
// # Contextual Binding
//
//	// Laravel: $app->when(PhotoController::class)
//	//              ->needs(Filesystem::class)
//	//              ->give(fn() => new S3Filesystem)
//	c.When("PhotoController").
//	    Needs("Filesystem").
//	    Give(func(c *container.Container) (any, error) { return &S3Filesystem{}, nil })
//
// # Tags
//
//	// Laravel: $app->tag([CpuReport::class, MemReport::class], 'reports')
//	c.Tag([]string{"CpuReport", "MemReport"}, "reports")
//	reports, err := c.Tagged("reports")  // []any
//
// # Extend / Decorate
//
//	// Laravel: $app->extend(Logger::class, fn($logger, $app) => new TimestampLogger($logger))
//	c.Extend("logger", func(instance any, c *container.Container) any {
//	    return &TimestampLogger{Inner: instance.(*Logger)}
//	})
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) {
//	    app.Singleton("mailer", func(c *container.Container) (any, error) {
//	        cfg := container.Resolve[*config.Config](c, "config")
//	        return mail.NewSMTP(cfg.Mail), nil
//	    })
//	}
//
//	func (p *AppServiceProvider) Boot(app *container.Container) {
//	    // safe to resolve other bindings here
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
//
// # Deferred Providers
//
//	type HeavyProvider struct{ container.BaseProvider }
//
//	func (p *HeavyProvider) IsDeferred() bool   { return true }
//	func (p *HeavyProvider) Provides() []string { return []string{"heavy"} }
//	func (p *HeavyProvider) Register(app *container.Container) {
//	    app.Singleton("heavy", func(c *container.Container) (any, error) {
//	        return heavySetup(), nil // only called on first app.Resolve("heavy")
//	    })
//	}
package container

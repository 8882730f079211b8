package container

import (
	"fmt"
	"reflect"
	"sync"
)

// ── Binding types ─────────────────────────────────────────────────────────────

// Factory is a function that builds a concrete value from the container.
type Factory func(c *Container) (any, error)

// binding holds a registered concrete and whether it is a singleton. Exactly
// one of factory / concrete is set; both empty means the abstract builds
// itself through the constructor registry.
type binding struct {
	factory  Factory
	concrete string
	shared   bool
}

// extender wraps an already-resolved instance with decorator logic.
type extender func(instance any, c *Container) any

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the IoC container — mirrors Laravel's Illuminate\Container\Container.
//
// It supports:
//   - Bind / Singleton / Instance / Alias
//   - Resolve / ResolveWith / Make (generic Resolve[T])
//   - Auto-wiring of unbound concretes through the constructor registry
//   - Tags (group multiple abstractions under one tag)
//   - Extend (decorate / wrap resolved instances)
//   - Contextual binding (when A needs B, give it C)
//   - Rebound callbacks
//   - Resolved event callbacks
//
// Bindings and the singleton cache follow a single-writer, multiple-reader
// discipline: registration happens at bootstrap, resolution afterwards, and
// both sides take the appropriate lock so hot-rebinding stays race-free.
type Container struct {
	mu sync.RWMutex

	// abstract → binding
	bindings map[string]*binding

	// abstract → resolved singleton instance
	instances map[string]any

	// alias → abstract (canonical key)
	aliases map[string]string

	// concrete → constructor blueprint
	registry map[string]*blueprint

	// abstract → extender funcs
	extenders map[string][]extender

	// tag → []abstract
	tags map[string][]string

	// contextual: when[concrete][abstract] = factory
	contextual map[string]map[string]Factory

	// rebound callbacks: abstract → []func(any)
	reboundCallbacks map[string][]func(any)

	// resolved callbacks: []func(abstract, instance)
	afterResolving []func(string, any)
}

// New creates an empty container.
func New() *Container {
	c := &Container{
		bindings:         make(map[string]*binding),
		instances:        make(map[string]any),
		aliases:          make(map[string]string),
		registry:         make(map[string]*blueprint),
		extenders:        make(map[string][]extender),
		tags:             make(map[string][]string),
		contextual:       make(map[string]map[string]Factory),
		reboundCallbacks: make(map[string][]func(any)),
	}
	// Bind the container to itself — like Laravel's $app->instance()
	c.Instance("container", c)
	return c
}

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers a transient (new instance each resolve) concrete.
//
// The concrete may be a Factory, the string key of a registered constructor,
// or nil to bind the abstract to its own registered constructor.
//
//	// Laravel: $app->bind(UserRepository::class, EloquentUserRepository::class)
//	c.Bind("UserRepository", "EloquentUserRepository")
//
//	// Laravel: $app->bind(UserRepository::class, fn($app) => new EloquentUserRepository($app))
//	c.Bind("UserRepository", func(c *container.Container) (any, error) {
//	    return &EloquentUserRepository{}, nil
//	})
func (c *Container) Bind(abstract string, concrete any) {
	c.register(abstract, concrete, false)
}

// Singleton registers a concrete whose result is cached after first resolution.
//
//	// Laravel: $app->singleton(Cache::class, fn($app) => new RedisCache($app))
func (c *Container) Singleton(abstract string, concrete any) {
	c.register(abstract, concrete, true)
}

func (c *Container) register(abstract string, concrete any, shared bool) {
	b := &binding{shared: shared}
	switch v := concrete.(type) {
	case nil:
		// abstract builds itself via the registry
	case Factory:
		b.factory = v
	case func(*Container) (any, error):
		b.factory = v
	case string:
		b.concrete = v
	default:
		panic(fmt.Sprintf("container: invalid concrete for [%s]: %T", abstract, concrete))
	}

	c.mu.Lock()
	key := c.canonical(abstract)

	// Drop existing singleton instance so it's rebuilt with the new binding
	_, wasResolved := c.instances[key]
	delete(c.instances, key)
	c.bindings[key] = b
	c.mu.Unlock()

	if wasResolved {
		if inst, err := c.Resolve(abstract); err == nil {
			c.fireRebound(abstract, inst)
		}
	}
}

// Instance registers a pre-built value as a singleton.
//
//	// Laravel: $app->instance(Config::class, $config)
//	c.Instance("config", myConfig)
func (c *Container) Instance(abstract string, instance any) {
	c.mu.Lock()
	key := c.canonical(abstract)
	delete(c.bindings, key)
	c.instances[key] = instance
	c.mu.Unlock()
	c.fireRebound(abstract, instance)
}

// Alias registers an alternative name for an abstract.
//
//	// Laravel: $app->alias(Cache::class, 'cache')
//	c.Alias("cache", "cacheManager")
func (c *Container) Alias(abstract, alias string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if abstract == alias {
		panic(fmt.Sprintf("container: [%s] is aliased to itself", abstract))
	}
	c.aliases[alias] = abstract
}

// ── Contextual Binding ────────────────────────────────────────────────────────

// When starts a contextual binding chain.
//
//	// Laravel: $app->when(PhotoController::class)->needs(Filesystem::class)->give(fn() => new S3)
//	c.When("PhotoController").Needs("Filesystem").Give(func(c *container.Container) (any, error) {
//	    return filesystem.NewS3(...), nil
//	})
func (c *Container) When(concrete string) *ContextualBuilder {
	return &ContextualBuilder{container: c, concrete: concrete}
}

// getContextual returns the contextual factory for (concrete, abstract), or nil.
func (c *Container) getContextual(concrete, abstract string) Factory {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if m, ok := c.contextual[concrete]; ok {
		if f, ok := m[abstract]; ok {
			return f
		}
	}
	return nil
}

// ── Extend ────────────────────────────────────────────────────────────────────

// Extend decorates the resolved instance of an abstract.
//
//	// Laravel: $app->extend(Logger::class, fn($logger, $app) => new TimestampLogger($logger))
//	c.Extend("logger", func(instance any, c *container.Container) any {
//	    return logging.NewTimestampWrapper(instance.(*Logger))
//	})
func (c *Container) Extend(abstract string, fn extender) {
	c.mu.Lock()
	key := c.canonical(abstract)
	c.extenders[key] = append(c.extenders[key], fn)

	// If already resolved as singleton, re-apply the new extender and refire rebound
	inst, resolved := c.instances[key]
	var extended any
	if resolved {
		extended = fn(inst, c)
		c.instances[key] = extended
	}
	c.mu.Unlock()

	if resolved {
		c.fireRebound(abstract, extended)
	}
}

// ── Tags ──────────────────────────────────────────────────────────────────────

// Tag associates multiple abstracts under a named group.
//
//	// Laravel: $app->tag([CpuReport::class, MemoryReport::class], 'reports')
//	c.Tag([]string{"CpuReport", "MemoryReport"}, "reports")
func (c *Container) Tag(abstracts []string, tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tags[tag] = append(c.tags[tag], abstracts...)
}

// Tagged resolves all abstracts registered under a tag.
//
//	// Laravel: $app->tagged('reports')
//	reports, err := c.Tagged("reports")  // []any
func (c *Container) Tagged(tag string) ([]any, error) {
	c.mu.RLock()
	abstracts := c.tags[tag]
	c.mu.RUnlock()

	result := make([]any, 0, len(abstracts))
	for _, abs := range abstracts {
		inst, err := c.Resolve(abs)
		if err != nil {
			return nil, err
		}
		result = append(result, inst)
	}
	return result, nil
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Resolve produces an instance for an abstract key.
//
//	// Laravel: $app->make(UserRepository::class)
//	repo, err := c.Resolve("UserRepository")
func (c *Container) Resolve(abstract string) (any, error) {
	return c.resolve(abstract, nil, newBuildState())
}

// ResolveWith resolves an abstract with caller-supplied constructor parameter
// overrides, matched by parameter name. Overrides apply only to the resolved
// concrete itself, not to its transitive dependencies.
//
//	// Laravel: $app->makeWith(PhotoController::class, ['quality' => 90])
//	ctrl, err := c.ResolveWith("PhotoController", map[string]any{"quality": 90})
func (c *Container) ResolveWith(abstract string, overrides map[string]any) (any, error) {
	return c.resolve(abstract, overrides, newBuildState())
}

// Make resolves an abstract and panics on failure. Prefer Resolve in request
// paths; Make suits bootstrap code where a missing binding is fatal.
func (c *Container) Make(abstract string) any {
	inst, err := c.Resolve(abstract)
	if err != nil {
		panic(err)
	}
	return inst
}

// buildState is the per-call build stack. Each top-level Resolve call tree
// owns one, so concurrent resolutions never see each other's cycle state.
type buildState struct {
	stack  []string
	active map[string]struct{}
}

func newBuildState() *buildState {
	return &buildState{active: make(map[string]struct{})}
}

// push records a concrete key as under construction, failing if it already is.
func (s *buildState) push(key string) error {
	if _, ok := s.active[key]; ok {
		chain := make([]string, 0, len(s.stack)+1)
		chain = append(chain, s.stack...)
		chain = append(chain, key)
		return &CircularError{Chain: chain}
	}
	s.stack = append(s.stack, key)
	s.active[key] = struct{}{}
	return nil
}

// pop removes the top entry. Runs on every exit path so the stack only ever
// reflects the active call chain.
func (s *buildState) pop() {
	key := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	delete(s.active, key)
}

func (s *buildState) top() (string, bool) {
	if len(s.stack) == 0 {
		return "", false
	}
	return s.stack[len(s.stack)-1], true
}

// resolve is the internal resolver (no outer lock — individual ops lock as needed).
func (c *Container) resolve(abstract string, overrides map[string]any, st *buildState) (any, error) {
	c.mu.RLock()
	key := c.canonical(abstract)

	// Check singleton instance cache
	if inst, ok := c.instances[key]; ok {
		c.mu.RUnlock()
		return inst, nil
	}
	c.mu.RUnlock()

	// Check contextual binding (look at current build stack top)
	if caller, ok := st.top(); ok {
		if f := c.getContextual(caller, key); f != nil {
			return c.runFactory(key, f, false, st)
		}
	}

	c.mu.RLock()
	b := c.bindings[key]
	c.mu.RUnlock()

	if b != nil && b.factory != nil {
		return c.runFactory(key, b.factory, b.shared, st)
	}

	// Determine the concrete: the bound concrete, or the abstract itself —
	// unbound concretes auto-wire through the registry.
	concrete := key
	shared := false
	if b != nil {
		shared = b.shared
		if b.concrete != "" {
			concrete = b.concrete
		}
	}
	return c.construct(key, concrete, shared, overrides, st)
}

// runFactory executes a factory, optionally caching the result.
func (c *Container) runFactory(key string, f Factory, shared bool, st *buildState) (any, error) {
	if err := st.push(key); err != nil {
		return nil, err
	}
	instance, err := f(c)
	st.pop()
	if err != nil {
		return nil, &UnresolvableError{Key: key, Err: err}
	}
	return c.finish(key, instance, shared), nil
}

// construct builds a concrete through its registered constructor, resolving
// each parameter in turn: caller override, recursive resolve, default.
//
// Cycle detection keys on the concrete name, matching the upstream behavior:
// two abstracts sharing one concrete inside a single call tree will report a
// cycle even without mutual dependence.
func (c *Container) construct(key, concrete string, shared bool, overrides map[string]any, st *buildState) (any, error) {
	c.mu.RLock()
	bp := c.registry[concrete]
	c.mu.RUnlock()
	if bp == nil {
		return nil, &UnresolvableError{Key: concrete, Err: ErrNotBound}
	}

	if err := st.push(concrete); err != nil {
		return nil, err
	}
	defer st.pop()

	args := make([]any, 0, len(bp.params))
	for _, p := range bp.params {
		if v, ok := overrides[p.Name]; ok {
			args = append(args, v)
			continue
		}
		if p.Type != "" && c.resolvable(p.Type) {
			v, err := c.resolve(p.Type, nil, st)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
			continue
		}
		if p.HasDefault {
			args = append(args, p.Default)
			continue
		}
		return nil, &UnresolvableError{Key: concrete, Param: p.Name, Err: ErrNotBound}
	}

	instance, err := bp.build(args)
	if err != nil {
		return nil, &UnresolvableError{Key: concrete, Err: err}
	}
	return c.finish(key, instance, shared), nil
}

// resolvable reports whether a key can be produced at all: bound, already
// instantiated, or constructible via the registry.
func (c *Container) resolvable(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	k := c.canonical(key)
	_, hasBinding := c.bindings[k]
	_, hasInstance := c.instances[k]
	_, hasBlueprint := c.registry[k]
	return hasBinding || hasInstance || hasBlueprint
}

// finish applies extenders, caches shared instances and fires callbacks.
func (c *Container) finish(key string, instance any, shared bool) any {
	c.mu.RLock()
	exts := c.extenders[key]
	c.mu.RUnlock()
	for _, ext := range exts {
		instance = ext(instance, c)
	}

	if shared {
		c.mu.Lock()
		// Two goroutines may race the first construction; the first stored
		// instance wins and every caller converges on it.
		if existing, ok := c.instances[key]; ok {
			c.mu.Unlock()
			return existing
		}
		c.instances[key] = instance
		c.mu.Unlock()
	}

	c.fireAfterResolving(key, instance)
	return instance
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound returns true if an abstract has been registered.
//
//	// Laravel: $app->bound(UserRepository::class)
func (c *Container) Bound(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key := c.canonical(abstract)
	_, hasBinding := c.bindings[key]
	_, hasInstance := c.instances[key]
	return hasBinding || hasInstance
}

// Resolved returns true if the abstract has been resolved at least once.
//
//	// Laravel: $app->resolved(Cache::class)
func (c *Container) Resolved(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.instances[c.canonical(abstract)]
	return ok
}

// Forget removes all registrations for an abstract (binding + instance).
//
//	// Laravel: $app->forgetInstance(Cache::class)
func (c *Container) Forget(abstract string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(abstract)
	delete(c.bindings, key)
	delete(c.instances, key)
}

// Flush resets the entire container.
func (c *Container) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings = make(map[string]*binding)
	c.instances = make(map[string]any)
	c.aliases = make(map[string]string)
	c.registry = make(map[string]*blueprint)
	c.extenders = make(map[string][]extender)
	c.tags = make(map[string][]string)
	c.contextual = make(map[string]map[string]Factory)
}

// Bindings returns a copy of all registered abstract keys (for debugging).
func (c *Container) Bindings() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.bindings)+len(c.instances))
	for k := range c.bindings {
		out = append(out, k)
	}
	for k := range c.instances {
		if _, already := c.bindings[k]; !already {
			out = append(out, k)
		}
	}
	return out
}

// canonical follows the alias chain to the canonical key (caller holds mu).
func (c *Container) canonical(abstract string) string {
	hops := 0
	for {
		target, ok := c.aliases[abstract]
		if !ok {
			return abstract
		}
		abstract = target
		if hops++; hops > len(c.aliases) {
			// Alias loop; stop at the last hop rather than spinning.
			return abstract
		}
	}
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// Rebinding registers a callback to be called whenever an abstract is re-bound.
//
//	// Laravel: $app->rebinding(UserRepository::class, fn($app, $repo) => ...)
func (c *Container) Rebinding(abstract string, cb func(any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reboundCallbacks[abstract] = append(c.reboundCallbacks[abstract], cb)
}

// AfterResolving registers a callback fired after any abstract is resolved.
//
//	// Laravel: $app->afterResolving(fn($object, $app) => ...)
func (c *Container) AfterResolving(cb func(abstract string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

func (c *Container) fireRebound(abstract string, instance any) {
	c.mu.RLock()
	cbs := c.reboundCallbacks[abstract]
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(instance)
	}
}

func (c *Container) fireAfterResolving(abstract string, instance any) {
	c.mu.RLock()
	cbs := c.afterResolving
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(abstract, instance)
	}
}

// ── Reflect helpers ───────────────────────────────────────────────────────────

// TypeKey returns the package-qualified type name of v, useful as a stable
// abstract key when working with interfaces.
//
//	key := container.TypeKey((*UserRepository)(nil))  // "main.UserRepository"
//	c.Singleton(key, factory)
//	repo := container.Resolve[UserRepository](c, key)
func TypeKey(v any) string {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.PkgPath() + "." + t.Name()
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve is a generic helper that calls Make and type-asserts the result.
//
//	// Instead of: raw, _ := c.Resolve("db"); db := raw.(*sql.DB)
//	// Write:      db := container.Resolve[*sql.DB](c, "db")
func Resolve[T any](c *Container, abstract string) T {
	instance := c.Make(abstract)
	typed, ok := instance.(T)
	if !ok {
		panic(fmt.Sprintf("container: Resolve[%T]: [%s] resolved to %T", *new(T), abstract, instance))
	}
	return typed
}

// MustResolve is like Resolve but returns (T, bool) without panicking.
func MustResolve[T any](c *Container, abstract string) (T, bool) {
	instance, err := c.Resolve(abstract)
	if err != nil {
		var zero T
		return zero, false
	}
	typed, ok := instance.(T)
	return typed, ok
}

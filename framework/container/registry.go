package container

// ── Constructor registry ──────────────────────────────────────────────────────
//
// Go has no runtime constructor reflection, so auto-wiring works through an
// explicit registry: each constructible type declares its parameter list and
// a build function. Resolving an abstract with no binding falls through to
// the registry, which mirrors Laravel's reflective build of unbound concretes.

// Param describes one constructor parameter of a registered type.
type Param struct {
	// Name is the parameter name, matched against caller overrides.
	Name string

	// Type is the abstract key resolved from the container when no override
	// is supplied. Empty means the parameter is value-only (override or
	// default required).
	Type string

	// Default is used when the parameter is neither overridden nor
	// resolvable. Only consulted when HasDefault is true.
	Default    any
	HasDefault bool
}

// Builder constructs an instance from already-resolved arguments, in the
// same order as the declared params.
type Builder func(args []any) (any, error)

// blueprint is a registered constructor.
type blueprint struct {
	params []Param
	build  Builder
}

// RegisterType registers a constructor under a concrete key so the container
// can auto-wire it, with or without an explicit binding.
//
//	c.RegisterType("UserController", []container.Param{
//	    {Name: "repo", Type: "UserRepository"},
//	}, func(args []any) (any, error) {
//	    return &UserController{Repo: args[0].(*UserRepository)}, nil
//	})
func (c *Container) RegisterType(name string, params []Param, build Builder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registry[name] = &blueprint{params: params, build: build}
}

// RegisterValueType registers a dependency-free constructor.
func (c *Container) RegisterValueType(name string, build func() any) {
	c.RegisterType(name, nil, func([]any) (any, error) { return build(), nil })
}

// Registered returns true if a constructor exists for the concrete key.
func (c *Container) Registered(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.registry[name]
	return ok
}

// Package routing compiles route definitions into a tiered table and matches
// concrete (method, path) pairs against it.
//
// # Registration
//
//	r := routing.New()
//	r.Get("/users", "UserController@Index")
//	r.Get("/users/{id}", "UserController@Show")
//	r.Post("/users", routing.Callable(func(req *httpx.Request, params ...string) any {
//	    return httpx.JSON(201, map[string]any{"created": true})
//	}))
//
//	r.Prefix("/api/v1", func(api *routing.Router) {
//	    api.Resource("/photos", "PhotoController")
//	})
//
//	r.Group(func(admin *routing.Router) {
//	    admin.Use(pipeline.Use("auth"))
//	    admin.Get("/admin", "AdminController@Index")
//	})
//
// Routes can also be loaded from the external configuration map
// ("METHOD /path" → "Controller@method"), see Router.LoadMap.
//
// # Matching
//
//	table := r.Compile()
//	m, err := table.Match("GET", "/users/42")
//	// m.Handler → UserController@Show, m.Params → ["42"]
//
// Static routes always win over parameterized ones; parameterized routes
// match in registration order. Matching is exact — /users and /users/ are
// different routes, and patterns never prefix-match.
//
// # Caching
//
// A table whose handlers are all named references can be snapshotted to
// disk and reloaded at the next boot (SaveCache / LoadCache); tables
// containing closures are recompiled per process instead.
package routing

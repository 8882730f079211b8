package main

import (
	"log"
	"net/http"

	"github.com/strataframe/strata/framework/app"
	"github.com/strataframe/strata/framework/container"
	"github.com/strataframe/strata/framework/httpx"
	"github.com/strataframe/strata/framework/pipeline"
	"github.com/strataframe/strata/framework/routing"
)

// ── Demo domain ──────────────────────────────────────────────────────────────

// UserRepository is the kind of collaborator a controller receives through
// constructor injection.
type UserRepository struct {
	users map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: map[string]string{
		"1": "Alice",
		"2": "Bob",
	}}
}

func (r *UserRepository) Find(id string) (string, bool) {
	name, ok := r.users[id]
	return name, ok
}

type UserController struct {
	Repo *UserRepository
}

func (c *UserController) Index() any {
	out := make([]map[string]string, 0, len(c.Repo.users))
	for id, name := range c.Repo.users {
		out = append(out, map[string]string{"id": id, "name": name})
	}
	return map[string]any{"data": out}
}

func (c *UserController) Show(id string) any {
	name, ok := c.Repo.Find(id)
	if !ok {
		return httpx.NotFound("No such user.")
	}
	return map[string]string{"id": id, "name": name}
}

func (c *UserController) Store(req *httpx.Request) any {
	data, errs := req.Validate(httpx.RuleSet{
		"name":  "required|min:2|max:50",
		"email": "required|email",
	})
	if errs.Any() {
		return errs.Response()
	}
	return httpx.JSON(http.StatusCreated, map[string]string{
		"name":  data["name"],
		"email": data["email"],
	})
}

// ── Middleware ───────────────────────────────────────────────────────────────

// authMiddleware is an example bearer-token guard: it short-circuits with a
// 401 instead of calling its continuation.
var authMiddleware = pipeline.Func(func(req *httpx.Request, next pipeline.Next, params ...string) any {
	if req.BearerToken() == "" {
		return httpx.Unauthorized()
	}
	return next()
})

func main() {
	application := app.New() // loads .env automatically

	// Wire the demo types so the container can auto-build the controller.
	application.Singleton("UserRepository", func(c *container.Container) (any, error) {
		return NewUserRepository(), nil
	})
	application.RegisterType("UserController", []container.Param{
		{Name: "repo", Type: "UserRepository"},
	}, func(args []any) (any, error) {
		return &UserController{Repo: args[0].(*UserRepository)}, nil
	})

	r := application.Router()

	r.Get("/", func(req *httpx.Request, params ...string) any {
		return map[string]any{"message": "Welcome to Strata!"}
	})

	// ── Route prefix (like Route::prefix('api')) ─────────────────────────────

	r.Prefix("/api/v1", func(api *routing.Router) {
		api.Get("/users", "UserController@Index")
		api.Get("/users/{id}", "UserController@Show")
		api.Post("/users", "UserController@Store")
	})

	// ── Auth group with middleware ───────────────────────────────────────────

	r.Group(func(protected *routing.Router) {
		protected.Use(pipeline.Use(authMiddleware))
		protected.Get("/profile", func(req *httpx.Request, params ...string) any {
			return map[string]any{"user": "authenticated"}
		})
	})

	if err := application.Run(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

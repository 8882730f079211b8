package app

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/strataframe/strata/framework/httpx"
)

// maxRequestBody caps how much of an inbound body the adapter buffers.
const maxRequestBody = 32 << 20 // 32 MB

// Handler returns the transport-facing http.Handler: a chi mux carrying the
// stock edge middleware, with the dispatcher mounted as catch-all. Route
// matching itself happens inside the dispatcher, not in chi — the mux only
// fronts the engine.
func (a *Application) Handler() http.Handler {
	d := a.Dispatcher()

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(chimw.Recoverer)
	mux.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
		if err != nil {
			http.Error(w, "request body read failed", http.StatusBadRequest)
			return
		}

		res := d.Dispatch(r.Context(), httpx.FromHTTP(r, body))
		res.WriteTo(w)
	}))
	return mux
}

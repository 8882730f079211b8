package routing

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// ErrNotCacheable is returned when a table holds closure handlers, which
// cannot be serialized. The caller should skip caching and recompile per
// process instead of persisting unstable references.
var ErrNotCacheable = errors.New("routing: table contains closure handlers")

const snapshotVersion = 1

type snapshot struct {
	Version int             `json:"version"`
	Routes  []snapshotRoute `json:"routes"`
}

type snapshotRoute struct {
	Method  string `json:"method"`
	Pattern string `json:"pattern"`
	Handler string `json:"handler"`
}

// Cacheable reports whether every handler is a named reference.
func Cacheable(defs []*Route) bool {
	for _, def := range defs {
		if !def.Handler.IsNamed() {
			return false
		}
	}
	return true
}

// SaveCache writes a JSON snapshot of the definitions, preserving
// registration order. Refuses tables with closure handlers.
//
// Route middleware is not part of the snapshot; callers must re-attach it
// from the live in-code registrations via AttachMiddleware after loading.
func SaveCache(path string, defs []*Route) error {
	if !Cacheable(defs) {
		return ErrNotCacheable
	}

	snap := snapshot{Version: snapshotVersion}
	for _, def := range defs {
		snap.Routes = append(snap.Routes, snapshotRoute{
			Method:  def.Method,
			Pattern: def.Pattern,
			Handler: def.Handler.Name(),
		})
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("routing: encode cache: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("routing: cache dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadCache reads a snapshot back into route definitions.
func LoadCache(path string) ([]*Route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("routing: decode cache: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("routing: cache version %d, want %d", snap.Version, snapshotVersion)
	}

	defs := make([]*Route, 0, len(snap.Routes))
	for _, r := range snap.Routes {
		defs = append(defs, &Route{Method: r.Method, Pattern: r.Pattern, Handler: Named(r.Handler)})
	}
	return defs, nil
}

// AttachMiddleware copies per-route middleware from the live in-code
// definitions onto cache-loaded ones, matched by method and pattern.
// Snapshots carry definitions only, so a warm boot that skipped this step
// would serve every cached route without its middleware.
func AttachMiddleware(defs, live []*Route) []*Route {
	byKey := make(map[string]*Route, len(live))
	for _, r := range live {
		byKey[r.Method+" "+r.Pattern] = r
	}
	for _, r := range defs {
		if src, ok := byKey[r.Method+" "+r.Pattern]; ok {
			r.middleware = slices.Clone(src.middleware)
		}
	}
	return defs
}

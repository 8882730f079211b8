package dispatch

import "github.com/strataframe/strata/framework/pipeline"

// Tracker receives notification hooks at well-defined points of a dispatch.
// Hooks are fire-and-forget: nothing a tracker does influences control flow.
// Every hook carries the dispatch id, a per-request UUID.
type Tracker interface {
	RouteMatched(id, method, path, handler string)
	RouteMissed(id, method, path string)
	MiddlewareStarted(id, name string)
	MiddlewareFinished(id, name string)
	ControllerResolved(id, controller string)
	ControllerExecuted(id, handler string)
}

// NopTracker discards all notifications. It is the default.
type NopTracker struct{}

func (NopTracker) RouteMatched(id, method, path, handler string) {}
func (NopTracker) RouteMissed(id, method, path string)           {}
func (NopTracker) MiddlewareStarted(id, name string)             {}
func (NopTracker) MiddlewareFinished(id, name string)            {}
func (NopTracker) ControllerResolved(id, controller string)      {}
func (NopTracker) ControllerExecuted(id, handler string)         {}

// trackObserver bridges pipeline hooks onto the Tracker.
type trackObserver struct {
	id      string
	tracker Tracker
}

func (o *trackObserver) Enter(e pipeline.Entry) { o.tracker.MiddlewareStarted(o.id, e.Name()) }
func (o *trackObserver) Exit(e pipeline.Entry)  { o.tracker.MiddlewareFinished(o.id, e.Name()) }

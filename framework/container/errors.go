package container

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotBound is wrapped by UnresolvableError when an abstract has neither a
// binding nor a registered constructor.
var ErrNotBound = errors.New("not bound")

// UnresolvableError reports that the container could not produce a value for
// an abstract key. Param is set when the failure was a constructor parameter
// with no override, no resolvable type and no default.
type UnresolvableError struct {
	Key   string
	Param string
	Err   error
}

func (e *UnresolvableError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("container: unresolvable dependency [%s]: parameter [%s]: %v", e.Key, e.Param, e.Err)
	}
	return fmt.Sprintf("container: unresolvable dependency [%s]: %v", e.Key, e.Err)
}

func (e *UnresolvableError) Unwrap() error { return e.Err }

// CircularError reports a dependency cycle detected during resolution.
// Chain holds the concrete keys of the active build stack, outermost first,
// terminated by the key that closed the cycle.
type CircularError struct {
	Chain []string
}

func (e *CircularError) Error() string {
	return "container: circular dependency: " + strings.Join(e.Chain, " -> ")
}

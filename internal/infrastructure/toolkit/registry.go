// Package toolkit is the registration point for cheminformatics toolkit
// bindings.  The screening domain only speaks capability interfaces; a
// concrete binding (typically cgo against a chemistry library) registers a
// factory here from an init function, the way database/sql drivers do, and
// the serve command opens it by name.
package toolkit

import (
	"sort"
	"sync"

	"github.com/turtacn/molscreen/internal/domain/screen"
	"github.com/turtacn/molscreen/pkg/errors"
)

var (
	mu        sync.RWMutex
	factories = make(map[string]func() (screen.Toolkit, error))
)

// Register makes a toolkit binding available under name.  It panics if the
// name is already taken; bindings register from init, so a collision is a
// build mistake, not a runtime condition.
func Register(name string, factory func() (screen.Toolkit, error)) {
	mu.Lock()
	defer mu.Unlock()
	if factory == nil {
		panic("toolkit: Register called with nil factory")
	}
	if _, dup := factories[name]; dup {
		panic("toolkit: Register called twice for " + name)
	}
	factories[name] = factory
}

// Open instantiates the binding registered under name.
func Open(name string) (screen.Toolkit, error) {
	mu.RLock()
	factory, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeNotImplemented, "no toolkit binding registered").
			WithDetail("name=" + name + "; compile a binding into the binary and import it for side effects")
	}
	return factory()
}

// Names lists the registered bindings in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

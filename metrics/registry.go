package metrics

import (
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// DuplicateMetric is the error returned by Registry.Register when a metric
// already exists. If you mean to Register that metric you must first
// Unregister the existing metric.
type DuplicateMetric string

func (err DuplicateMetric) Error() string {
	return fmt.Sprintf("duplicate metric: %s", string(err))
}

// A Registry holds references to a set of metrics by name and can iterate
// over them, calling callback functions provided by the user.
type Registry interface {
	// Each calls the given function for each registered metric, in name order.
	Each(func(string, interface{}))

	// Get the metric by the given name or nil if none is registered.
	Get(string) interface{}

	// GetOrRegister gets an existing metric or registers the given one.
	// The interface can be the metric to register if not found in registry,
	// or a function returning the metric for lazy instantiation.
	GetOrRegister(string, interface{}) interface{}

	// Register the given metric under the given name.
	Register(string, interface{}) error

	// Unregister the metric with the given name.
	Unregister(string)
}

// StandardRegistry is the standard implementation of a Registry; it is safe
// for use by concurrent sessions.
type StandardRegistry struct {
	mu      sync.Mutex
	metrics map[string]interface{}
}

// NewRegistry creates a new registry.
func NewRegistry() Registry {
	return &StandardRegistry{metrics: make(map[string]interface{})}
}

// DefaultRegistry is where metrics registered with a nil registry end up.
var DefaultRegistry = NewRegistry()

// Each calls fn for every registered metric, sorted by name.
func (r *StandardRegistry) Each(fn func(string, interface{})) {
	r.mu.Lock()
	names := maps.Keys(r.metrics)
	slices.Sort(names)
	snapshot := make([]interface{}, len(names))
	for i, name := range names {
		snapshot[i] = r.metrics[name]
	}
	r.mu.Unlock()

	for i, name := range names {
		fn(name, snapshot[i])
	}
}

// Get the metric by the given name or nil if none is registered.
func (r *StandardRegistry) Get(name string) interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.metrics[name]
}

// GetOrRegister gets an existing metric or creates and registers a new one.
// If i is a function it is called to build the metric only when missing.
func (r *StandardRegistry) GetOrRegister(name string, i interface{}) interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if metric, ok := r.metrics[name]; ok {
		return metric
	}
	if v := reflect.ValueOf(i); v.Kind() == reflect.Func {
		i = v.Call(nil)[0].Interface()
	}
	r.metrics[name] = i
	return i
}

// Register the given metric under the given name. Returns a DuplicateMetric
// if a metric by the given name is already registered.
func (r *StandardRegistry) Register(name string, i interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.metrics[name]; ok {
		return DuplicateMetric(name)
	}
	if v := reflect.ValueOf(i); v.Kind() == reflect.Func {
		i = v.Call(nil)[0].Interface()
	}
	r.metrics[name] = i
	return nil
}

// Unregister the metric with the given name.
func (r *StandardRegistry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.metrics, name)
}

// getOrRegister is a typed wrapper around Registry.GetOrRegister.
func getOrRegister[T any](name string, ctor func() T, r Registry) T {
	if r == nil {
		r = DefaultRegistry
	}
	return r.GetOrRegister(name, func() T { return ctor() }).(T)
}

// Register the given metric under the given name in r, or DefaultRegistry if
// r is nil.
func Register(name string, i interface{}, r Registry) error {
	if r == nil {
		r = DefaultRegistry
	}
	return r.Register(name, i)
}

package filter

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Errors returned by registries and filters.
var (
	ErrInvalidName  = errors.New("invalid filter name")
	ErrNilFunc      = errors.New("filter function is nil")
	ErrDuplicate    = errors.New("filter already registered")
	ErrUnknown      = errors.New("unknown filter")
	ErrArgument     = errors.New("invalid argument")
	ErrValue        = errors.New("invalid value")
	ErrMissingField = errors.New("missing field")
)

// Func formats value. Filters must not modify value or anything reachable
// from it.
type Func func(value any, args Args) (any, error)

// Args holds the arguments of a filter call following the piped value.
type Args struct {
	Positional []any
	Keyword    map[string]any
}

// bind assigns positional arguments to params in order, then keyword
// arguments by name. Surplus positionals, unknown keywords, and parameters
// given twice are errors.
func (a Args) bind(params ...string) (map[string]any, error) {
	if len(a.Positional) > len(params) {
		return nil, fmt.Errorf("%w: takes at most %d arguments, got %d",
			ErrArgument, len(params), len(a.Positional))
	}

	bound := make(map[string]any, len(params))

	for i, v := range a.Positional {
		bound[params[i]] = v
	}

	for _, name := range slices.Sorted(maps.Keys(a.Keyword)) {
		if !slices.Contains(params, name) {
			return nil, fmt.Errorf("%w: unexpected keyword %q", ErrArgument, name)
		}

		if _, ok := bound[name]; ok {
			return nil, fmt.Errorf("%w: multiple values for %q", ErrArgument, name)
		}

		bound[name] = a.Keyword[name]
	}

	return bound, nil
}

// alias renames keyword from to to, unless to is already present.
func (a Args) alias(from, to string) Args {
	v, ok := a.Keyword[from]
	if !ok {
		return a
	}

	if _, taken := a.Keyword[to]; taken {
		return a
	}

	kw := maps.Clone(a.Keyword)
	delete(kw, from)
	kw[to] = v

	return Args{Positional: a.Positional, Keyword: kw}
}

// Registry maps filter names to functions. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// Default returns a new registry holding the built-in filters.
func Default() *Registry {
	r := NewRegistry()

	for name, fn := range map[string]Func{
		"wrt_t0":      WrtT0,
		"erange":      ERange,
		"plusminus":   PlusMinus,
		"latex_exp":   LatexExp,
		"preliminary": Preliminary,
	} {
		if err := r.Register(name, fn); err != nil {
			panic(err)
		}
	}

	return r
}

// Register adds fn under name. Names are identifiers and may not begin with
// two underscores, which are reserved.
func (r *Registry) Register(name string, fn Func) error {
	if !validName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	if fn == nil {
		return fmt.Errorf("%w: %q", ErrNilFunc, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.funcs == nil {
		r.funcs = make(map[string]Func)
	}

	if _, exists := r.funcs[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicate, name)
	}

	r.funcs[name] = fn

	return nil
}

// Lookup returns the filter registered under name.
func (r *Registry) Lookup(name string) (Func, bool) {
	if r == nil {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.funcs[name]

	return fn, ok
}

// Names returns the registered filter names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.funcs))
}

// Call applies the filter registered under name.
func (r *Registry) Call(name string, value any, args Args) (any, error) {
	fn, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}

	return fn(value, args)
}

// Clone returns a copy of r that can be extended independently.
func (r *Registry) Clone() *Registry {
	c := NewRegistry()
	if r == nil {
		return c
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	maps.Copy(c.funcs, r.funcs)

	return c
}

func validName(name string) bool {
	if name == "" || strings.HasPrefix(name, "__") {
		return false
	}

	for i, c := range name {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}

	return true
}

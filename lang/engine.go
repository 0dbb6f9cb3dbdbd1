package lang

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/ddpaper/data"
	"github.com/ardnew/ddpaper/filter"
	"github.com/ardnew/ddpaper/log"
)

// Fallback is the value of a key that could not be resolved.
const Fallback = "XXX"

// Result is the outcome of resolving one key.
type Result struct {
	Key   string
	Value string // formatted value, or Fallback if Err is set
	Err   error
}

// OK reports whether the key resolved.
func (r Result) OK() bool { return r.Err == nil }

// Engine resolves keys against an immutable snapshot of a store.
// It is safe for concurrent use.
type Engine struct {
	registry *filter.Registry
	logger   log.Logger
	env      map[string]any
	options  []expr.Option

	mu       sync.Mutex
	programs map[string]*vm.Program
}

// Option configures an [Engine].
type Option func(*Engine)

// WithRegistry sets the filters available to keys. The default is
// [filter.Default].
func WithRegistry(r *filter.Registry) Option {
	return func(e *Engine) {
		if r != nil {
			e.registry = r
		}
	}
}

// WithLogger sets the logger that receives resolution failures. The default
// is the package-level logger.
func WithLogger(logger log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New returns an engine resolving against a snapshot of store taken now.
// Later changes to store are not seen by the engine.
func New(store data.Store, opts ...Option) *Engine {
	e := &Engine{
		registry: filter.Default(),
		logger:   log.Default(),
		env:      store.Snapshot(),
		programs: make(map[string]*vm.Program),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.options = []expr.Option{
		expr.Env(map[string]any{}),
		expr.DisableAllBuiltins(),
		expr.Patch(&memberPatcher{logger: e.logger}),
		expr.Function(kwFunc, keyword),
		expr.Function(memberFunc, member),
	}

	for _, name := range e.registry.Names() {
		if fn, ok := e.registry.Lookup(name); ok {
			e.options = append(e.options, expr.Function(name, call(name, fn)))
		}
	}

	return e
}

// Registry returns the engine's filters.
func (e *Engine) Registry() *filter.Registry { return e.registry }

// Resolve evaluates key and formats the result. Failures are logged at
// warn level and reported in the Result with the value [Fallback].
func (e *Engine) Resolve(ctx context.Context, key string) Result {
	v, err := e.Evaluate(ctx, key)
	if err != nil {
		e.logger.WarnContext(ctx, "unable to render",
			slog.String("key", key),
			slog.Any("error", err))

		return Result{Key: key, Value: Fallback, Err: err}
	}

	return Result{Key: key, Value: filter.Str(v)}
}

// Evaluate returns the unformatted value of key. The value is a copy and
// may be modified by the caller.
func (e *Engine) Evaluate(ctx context.Context, key string) (out any, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	program, err := e.compile(ctx, key)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, ErrEvaluate.Wrap(fmt.Errorf("panic: %v", r)).
				With(slog.String("key", key))
		}
	}()

	out, err = expr.Run(program, e.env)
	if err != nil {
		var le *Error
		if errors.As(err, &le) {
			return nil, le.With(slog.String("key", key))
		}

		return nil, ErrEvaluate.Wrap(err).With(slog.String("key", key))
	}

	return data.Clone(out), nil
}

// compile returns the cached program for key, compiling it on first use.
func (e *Engine) compile(ctx context.Context, key string) (*vm.Program, error) {
	e.mu.Lock()
	program, ok := e.programs[key]
	e.mu.Unlock()

	if ok {
		return program, nil
	}

	pl, err := Parse(key)
	if err != nil {
		return nil, err
	}

	source, err := lower(pl, e.registry)
	if err != nil {
		var le *Error
		if errors.As(err, &le) {
			return nil, le.With(slog.String("key", key))
		}

		return nil, err
	}

	program, err = expr.Compile(source, e.options...)
	if err != nil {
		return nil, ErrCompile.Wrap(err).With(
			slog.String("key", key),
			slog.String("source", source))
	}

	e.logger.TraceContext(ctx, "compiled key",
		slog.String("key", key),
		slog.String("source", source))

	e.mu.Lock()
	e.programs[key] = program
	e.mu.Unlock()

	return program, nil
}

// kwarg is a keyword argument in a lowered filter call.
type kwarg struct {
	name  string
	value any
}

func keyword(params ...any) (any, error) {
	name, _ := params[0].(string)

	return kwarg{name: name, value: params[1]}, nil
}

// member looks up params[1] in params[0] and fails if it is absent.
// Mappings are indexed by key (integers are converted to their decimal
// form); lists are indexed by position, negative from the end.
func member(params ...any) (any, error) {
	obj, prop := params[0], params[1]
	path, _ := params[2].(string)

	switch o := obj.(type) {
	case map[string]any:
		key, ok := prop.(string)
		if n, isInt := prop.(int); isInt {
			key, ok = strconv.Itoa(n), true
		}

		if ok {
			if v, found := o[key]; found {
				return v, nil
			}
		}

	case []any:
		if n, ok := prop.(int); ok {
			if n < 0 {
				n += len(o)
			}

			if n >= 0 && n < len(o) {
				return o[n], nil
			}
		}
	}

	return nil, ErrUndefined.Wrap(errors.New(path))
}

// call adapts a filter to an expr-lang function. The piped value is
// copied so the filter cannot modify the snapshot.
func call(name string, fn filter.Func) func(params ...any) (any, error) {
	return func(params ...any) (out any, err error) {
		defer func() {
			if r := recover(); r != nil {
				out, err = nil, ErrFilter.Wrap(fmt.Errorf("%s: panic: %v", name, r)).
					With(slog.String("filter", name))
			}
		}()

		var args filter.Args

		for _, p := range params[1:] {
			if kw, ok := p.(kwarg); ok {
				if args.Keyword == nil {
					args.Keyword = make(map[string]any)
				}

				args.Keyword[kw.name] = kw.value

				continue
			}

			args.Positional = append(args.Positional, p)
		}

		if out, err = fn(data.Clone(params[0]), args); err != nil {
			return nil, ErrFilter.Wrap(fmt.Errorf("%s: %w", name, err)).
				With(slog.String("filter", name))
		}

		return out, nil
	}
}

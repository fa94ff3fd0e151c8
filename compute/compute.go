// Package compute implements the kernel registry and multimethod
// dispatch described in spec.md §4.1, "Kernel registry": each compute
// function (compare, filter, take, between, ...) owns a name and an
// ordered list of registered Kernel implementations, tried before the
// first argument's own ComputeFastPath method. No package in this module
// registers kernels; built-in encodings supply their fast paths through
// ComputeFastPath.
package compute

import (
	"errors"
	"fmt"
	"sync"

	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/dtype"
)

// ErrDeclined is returned by a Kernel (or surfaced through Invoke) to mean
// "I don't handle this input shape, try the next kernel" — never a real
// failure. The dispatcher treats it as a signal to fall through, not as
// an error to propagate to the caller (spec.md §4.1, "Invocation order").
var ErrDeclined = errors.New("compute: kernel declined")

// Kernel is one registered implementation of a compute function.
type Kernel interface {
	// Name returns the kernel's owning function name, e.g. "compare".
	Name() string
	// Invoke attempts the operation against args, returning ErrDeclined if
	// this kernel does not apply to the given encodings/dtypes.
	Invoke(args []any) (any, error)
}

// KernelFunc adapts a plain function to the Kernel interface.
type KernelFunc struct {
	FnName string
	Fn     func(args []any) (any, error)
}

func (k KernelFunc) Name() string                    { return k.FnName }
func (k KernelFunc) Invoke(args []any) (any, error) { return k.Fn(args) }

// Registry holds every function's registered kernels, keyed by function
// name, in registration order — the order the dispatcher tries them.
type Registry struct {
	mu      sync.RWMutex
	kernels map[string][]Kernel
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{kernels: make(map[string][]Kernel)}
}

// DefaultRegistry is a process-wide Registry for callers' own kernels;
// no package in this module registers into it.
var DefaultRegistry = NewRegistry()

// Register appends k to the ordered kernel list for its Name().
func (r *Registry) Register(k Kernel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kernels[k.Name()] = append(r.kernels[k.Name()], k)
}

// Kernels returns the registered kernels for fn, in registration order.
func (r *Registry) Kernels(fn string) []Kernel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Kernel, len(r.kernels[fn]))
	copy(out, r.kernels[fn])
	return out
}

// computeFastPath is the optional encoding-defined fast path consulted
// after the registered kernel list and before the canonicalization
// fallback (spec.md §4.1, invocation steps 3-4).
type computeFastPath interface {
	ComputeFastPath(fn string, args []any) (any, bool)
}

// Invoke runs fn against args following spec.md §4.1's invocation order:
// registered kernels in order, then the first argument's ComputeVTable
// fast path (if it implements one), then fallback must be supplied by the
// caller (canonicalization + re-dispatch), since only the caller knows
// how to canonicalize its own argument shape generically.
func Invoke(r *Registry, fn string, args []any) (any, error) {
	for _, k := range r.Kernels(fn) {
		result, err := k.Invoke(args)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, ErrDeclined) {
			return nil, err
		}
	}
	if len(args) > 0 {
		if a, ok := args[0].(array.Array); ok {
			if fp, ok := a.(computeFastPath); ok {
				if result, ok := fp.ComputeFastPath(fn, args); ok {
					return result, nil
				}
			}
		}
	}
	return nil, fmt.Errorf("%w: no kernel handled %q for argument shape %v", ErrDeclined, fn, describeArgs(args))
}

func describeArgs(args []any) []string {
	out := make([]string, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case array.Array:
			out[i] = fmt.Sprintf("%s(%s)", v.EncodingName(), v.DType())
		case dtype.DType:
			out[i] = v.String()
		default:
			out[i] = fmt.Sprintf("%T", v)
		}
	}
	return out
}

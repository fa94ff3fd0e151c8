package array

import (
	"fmt"
	"sync"

	"github.com/deepteams/vortex/dtype"
)

// Registry is the process-wide (or test-local) table mapping an
// EncodingID to the Builder that can reconstruct an array of that
// encoding from serialized parts. It is the registry half of the
// serialization pattern the teacher uses for image.RegisterFormat: a
// package's init() calls Register, the file reader later looks the code
// up by number alone (spec.md §4.1: "the numeric code is the sole
// identity used for serialization and hashing").
type Registry struct {
	mu       sync.RWMutex
	builders map[EncodingID]Builder
	names    map[EncodingID]Name
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[EncodingID]Builder),
		names:    make(map[EncodingID]Name),
	}
}

// DefaultRegistry is the registry built-in encodings register themselves
// into from their package init() functions. Callers that need an isolated
// registry (e.g. tests exercising a third-party encoding in the user
// range) should build their own with NewRegistry and copy in what they
// need via Register.
var DefaultRegistry = NewRegistry()

// Register associates id with a human-readable name and a Builder. It
// panics on a duplicate registration, since two encodings sharing a code
// would silently corrupt file reads — the same fail-fast posture the
// teacher's image.RegisterFormat takes on a duplicate format string.
func (r *Registry) Register(id EncodingID, name Name, b Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.builders[id]; exists {
		panic(fmt.Sprintf("array: encoding id %#04x already registered (name %s)", uint16(id), r.names[id]))
	}
	r.builders[id] = b
	r.names[id] = name
}

// Lookup returns the Builder registered for id, or ok=false.
func (r *Registry) Lookup(id EncodingID) (Builder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.builders[id]
	return b, ok
}

// Name returns the human-readable name registered for id, or "" if none.
func (r *Registry) Name(id EncodingID) Name {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.names[id]
}

// Build reconstructs an array of the given encoding, looking up its
// Builder in the registry. Used by the layout reader when materializing
// a Layout node (spec.md §4.4).
func (r *Registry) Build(id EncodingID, dt dtype.DType, length int, metadata []byte, segments [][]byte, children []Array) (Array, error) {
	b, ok := r.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("array: no encoding registered for id %#04x", uint16(id))
	}
	return b(dt, length, metadata, segments, children)
}

package array

import (
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
)

// ExtensionArray is the canonical form for dtype.Extension: a storage
// array of the extension's underlying canonical form, reinterpreted under
// application-defined semantics named by ExtDType.ID.
type ExtensionArray struct {
	dt      dtype.DType
	storage CanonicalArray
	st      *stats.StatsSet
}

// NewExtension constructs an ExtensionArray wrapping a canonical storage
// array. storage's dtype must equal dt.ExtDType().Storage.
func NewExtension(dt dtype.DType, storage CanonicalArray) *ExtensionArray {
	if dt.Kind() != dtype.KindExtension {
		panic("array: NewExtension requires an Extension dtype")
	}
	return &ExtensionArray{dt: dt, storage: storage, st: stats.New()}
}

func (a *ExtensionArray) isCanonical() {}

func (a *ExtensionArray) Len() int               { return a.storage.Len() }
func (a *ExtensionArray) DType() dtype.DType     { return a.dt }
func (a *ExtensionArray) Encoding() EncodingID   { return EncodingExtension }
func (a *ExtensionArray) EncodingName() Name     { return "extension" }
func (a *ExtensionArray) Stats() *stats.StatsSet { return a.st }

func (a *ExtensionArray) IsValid(i int) bool      { return a.storage.IsValid(i) }
func (a *ExtensionArray) AllValid() bool          { return a.storage.AllValid() }
func (a *ExtensionArray) AllInvalid() bool        { return a.storage.AllInvalid() }
func (a *ExtensionArray) ValidityMask() mask.Mask { return a.storage.ValidityMask() }

// Storage returns the underlying canonical array.
func (a *ExtensionArray) Storage() CanonicalArray { return a.storage }

func (a *ExtensionArray) Slice(start, stop int) Array {
	return NewExtension(a.dt, Slice(a.storage, start, stop).(CanonicalArray))
}

func (a *ExtensionArray) ScalarAt(i int) scalar.Scalar { return ScalarAt(a.storage, i) }

func (a *ExtensionArray) Canonicalize() CanonicalArray { return a }

func (a *ExtensionArray) VisitBuffers(v func(name string, bytes []byte))  {}
func (a *ExtensionArray) VisitChildren(v func(name string, child Array)) { v("storage", a.storage) }
func (a *ExtensionArray) WithChildren(children []Array) Array {
	return NewExtension(a.dt, children[0].(CanonicalArray))
}

func init() {
	DefaultRegistry.Register(EncodingExtension, "extension", func(dt dtype.DType, length int, metadata []byte, segments [][]byte, children []Array) (Array, error) {
		return NewExtension(dt, children[0].(CanonicalArray)), nil
	})
}

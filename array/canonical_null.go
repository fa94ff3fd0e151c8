package array

import (
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
)

// NullArray is the canonical form for dtype.Null: every position is null,
// by construction, and carries no storage at all.
type NullArray struct {
	length int
	st     *stats.StatsSet
}

// NewNull constructs a NullArray of the given length.
func NewNull(length int) *NullArray {
	return &NullArray{length: length, st: stats.New()}
}

func (a *NullArray) isCanonical() {}

func (a *NullArray) Len() int               { return a.length }
func (a *NullArray) DType() dtype.DType     { return dtype.Null }
func (a *NullArray) Encoding() EncodingID   { return EncodingNull }
func (a *NullArray) EncodingName() Name     { return "null" }
func (a *NullArray) Stats() *stats.StatsSet { return a.st }

func (a *NullArray) IsValid(i int) bool   { return false }
func (a *NullArray) AllValid() bool       { return a.length == 0 }
func (a *NullArray) AllInvalid() bool     { return true }
func (a *NullArray) ValidityMask() mask.Mask { return mask.AllFalse(a.length) }

func (a *NullArray) Slice(start, stop int) Array { return NewNull(stop - start) }
func (a *NullArray) ScalarAt(i int) scalar.Scalar { return scalar.Null(dtype.Null) }

func (a *NullArray) Canonicalize() CanonicalArray { return a }

func (a *NullArray) VisitBuffers(v func(name string, bytes []byte))  {}
func (a *NullArray) VisitChildren(v func(name string, child Array)) {}
func (a *NullArray) WithChildren(children []Array) Array            { return a }

func init() {
	DefaultRegistry.Register(EncodingNull, "null", func(dt dtype.DType, length int, metadata []byte, segments [][]byte, children []Array) (Array, error) {
		return NewNull(length), nil
	})
}

package array

import (
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
	"github.com/deepteams/vortex/validity"
)

// VarBinViewArray is the canonical form for dtype.Utf8 and dtype.Binary:
// a single contiguous data buffer plus n+1 uint32 offsets, the classic
// Arrow variable-binary layout. (A full German-style string-view with
// inlined short strings and multiple side buffers is not implemented —
// see DESIGN.md.)
type VarBinViewArray struct {
	dt      dtype.DType
	offsets []uint32
	data    []byte
	valid   validity.Validity
	st      *stats.StatsSet
}

// NewVarBinView constructs a VarBinViewArray. offsets must have length
// valid.Len()+1 and be non-decreasing.
func NewVarBinView(dt dtype.DType, offsets []uint32, data []byte, valid validity.Validity) *VarBinViewArray {
	if len(offsets) != valid.Len()+1 {
		panic("array: NewVarBinView offsets length must be len+1")
	}
	return &VarBinViewArray{dt: dt, offsets: offsets, data: data, valid: valid, st: stats.New()}
}

func (a *VarBinViewArray) isCanonical() {}

func (a *VarBinViewArray) Len() int               { return a.valid.Len() }
func (a *VarBinViewArray) DType() dtype.DType     { return a.dt }
func (a *VarBinViewArray) Encoding() EncodingID   { return EncodingVarBinView }
func (a *VarBinViewArray) EncodingName() Name     { return "varbinview" }
func (a *VarBinViewArray) Stats() *stats.StatsSet { return a.st }

func (a *VarBinViewArray) IsValid(i int) bool      { return a.valid.IsValid(i) }
func (a *VarBinViewArray) AllValid() bool          { return a.valid.AllValidBool() }
func (a *VarBinViewArray) AllInvalid() bool        { return a.valid.AllInvalidBool() }
func (a *VarBinViewArray) ValidityMask() mask.Mask { return a.valid.AsMask() }

// BytesAt returns the raw bytes of row i, regardless of validity.
func (a *VarBinViewArray) BytesAt(i int) []byte {
	return a.data[a.offsets[i]:a.offsets[i+1]]
}

func (a *VarBinViewArray) Slice(start, stop int) Array {
	return &VarBinViewArray{
		dt:      a.dt,
		offsets: a.offsets[start : stop+1],
		data:    a.data,
		valid:   a.valid.Slice(start, stop),
		st:      stats.New(),
	}
}

func (a *VarBinViewArray) ScalarAt(i int) scalar.Scalar {
	if !a.valid.IsValid(i) {
		return scalar.Null(a.dt)
	}
	return scalar.FromBuffer(a.dt, a.BytesAt(i))
}

func (a *VarBinViewArray) Canonicalize() CanonicalArray { return a }

func (a *VarBinViewArray) VisitBuffers(v func(name string, bytes []byte)) {
	v("data", a.data)
	off := make([]byte, len(a.offsets)*4)
	for i, o := range a.offsets {
		off[i*4] = byte(o)
		off[i*4+1] = byte(o >> 8)
		off[i*4+2] = byte(o >> 16)
		off[i*4+3] = byte(o >> 24)
	}
	v("offsets", off)
}
func (a *VarBinViewArray) VisitChildren(v func(name string, child Array)) {}
func (a *VarBinViewArray) WithChildren(children []Array) Array            { return a }

func decodeOffsets(raw []byte) []uint32 {
	n := len(raw) / 4
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		out[i] = uint32(raw[i*4]) | uint32(raw[i*4+1])<<8 | uint32(raw[i*4+2])<<16 | uint32(raw[i*4+3])<<24
	}
	return out
}

func init() {
	b := func(dt dtype.DType, length int, metadata []byte, segments [][]byte, children []Array) (Array, error) {
		var data, offRaw []byte
		if len(segments) > 0 {
			data = segments[0]
		}
		if len(segments) > 1 {
			offRaw = segments[1]
		}
		vv := validity.AllValid(length)
		if dt.Nullable() && len(segments) > 2 {
			bools := make([]bool, length)
			for i := range bools {
				bools[i] = segments[2][i/8]&(1<<uint(i%8)) != 0
			}
			vv = validity.FromMask(mask.FromBools(bools))
		}
		return NewVarBinView(dt, decodeOffsets(offRaw), data, vv), nil
	}
	DefaultRegistry.Register(EncodingVarBinView, "varbinview", b)
}

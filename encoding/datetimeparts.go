package encoding

import (
	"github.com/deepteams/vortex/array"
	"github.com/deepteams/vortex/dtype"
	"github.com/deepteams/vortex/mask"
	"github.com/deepteams/vortex/scalar"
	"github.com/deepteams/vortex/stats"
	"github.com/deepteams/vortex/validity"
)

// TimeUnit is the divisor DateTimeParts applies to its seconds/subseconds
// children when reassembling a timestamp (spec.md §4.2, "DateTimeParts").
type TimeUnit uint8

const (
	UnitSeconds TimeUnit = iota
	UnitMillis
	UnitMicros
	UnitNanos
)

func (u TimeUnit) divisor() int64 {
	switch u {
	case UnitMillis:
		return 1e3
	case UnitMicros:
		return 1e6
	case UnitNanos:
		return 1e9
	default:
		return 1
	}
}

// DateTimePartsArray splits a timestamp into separately-compressible
// `days`, `seconds`, and `subseconds` children (spec.md §4.2,
// "DateTimeParts"): decode(i) = days*86400*divisor + seconds*divisor +
// subseconds. NewDateTimeParts does not validate unit; a value outside
// the divisor switch decodes with divisor 1. Canonical form is
// Primitive(i64).
type DateTimePartsArray struct {
	dt         dtype.DType
	unit       TimeUnit
	days       array.Array
	seconds    array.Array
	subseconds array.Array
	valid      validity.Validity
	st         *stats.StatsSet
}

// NewDateTimeParts constructs a DateTimePartsArray. unit must not encode
// the rejected "day" granularity — callers needing day precision should
// use Primitive(i32) days directly, not DateTimeParts.
func NewDateTimeParts(unit TimeUnit, days, seconds, subseconds array.Array, valid validity.Validity) *DateTimePartsArray {
	return &DateTimePartsArray{
		dt: dtype.Primitive(dtype.I64, valid.Kind() != validity.KindNonNullable),
		unit: unit, days: days, seconds: seconds, subseconds: subseconds, valid: valid, st: stats.New(),
	}
}

func (a *DateTimePartsArray) Len() int                   { return a.valid.Len() }
func (a *DateTimePartsArray) DType() dtype.DType         { return a.dt }
func (a *DateTimePartsArray) Encoding() array.EncodingID { return array.EncodingDateTimeParts }
func (a *DateTimePartsArray) EncodingName() array.Name   { return "datetimeparts" }
func (a *DateTimePartsArray) Stats() *stats.StatsSet     { return a.st }

func (a *DateTimePartsArray) IsValid(i int) bool      { return a.valid.IsValid(i) }
func (a *DateTimePartsArray) AllValid() bool          { return a.valid.AllValidBool() }
func (a *DateTimePartsArray) AllInvalid() bool        { return a.valid.AllInvalidBool() }
func (a *DateTimePartsArray) ValidityMask() mask.Mask { return a.valid.AsMask() }

func (a *DateTimePartsArray) Slice(start, stop int) array.Array {
	return &DateTimePartsArray{
		dt: a.dt, unit: a.unit,
		days:       array.Slice(a.days, start, stop),
		seconds:    array.Slice(a.seconds, start, stop),
		subseconds: array.Slice(a.subseconds, start, stop),
		valid:      a.valid.Slice(start, stop),
		st:         stats.New(),
	}
}

// constOrAt returns child's constant value if child is a ConstantArray,
// else its value at row i (spec.md §4.2: "If seconds or subseconds is a
// Constant array, the decode short-circuits to a scalar addition").
func constOrAt(child array.Array, i int) int64 {
	if c, ok := child.(*array.ConstantArray); ok {
		return c.Value().AsInt()
	}
	return array.ScalarAt(child, i).AsInt()
}

func (a *DateTimePartsArray) ScalarAt(i int) scalar.Scalar {
	if !a.valid.IsValid(i) {
		return scalar.Null(a.dt)
	}
	divisor := a.unit.divisor()
	days := array.ScalarAt(a.days, i).AsInt()
	seconds := constOrAt(a.seconds, i)
	subseconds := constOrAt(a.subseconds, i)
	ts := days*86400*divisor + seconds*divisor + subseconds
	return scalar.FromInt(dtype.I64, ts, a.dt.Nullable())
}

func (a *DateTimePartsArray) Canonicalize() array.CanonicalArray {
	n := a.Len()
	values := make([]scalar.Scalar, n)
	for i := 0; i < n; i++ {
		values[i] = a.ScalarAt(i)
	}
	return array.FromScalars(a.dt, values)
}

func (a *DateTimePartsArray) VisitBuffers(v func(name string, bytes []byte)) {}
func (a *DateTimePartsArray) VisitChildren(v func(name string, child array.Array)) {
	v("days", a.days)
	v("seconds", a.seconds)
	v("subseconds", a.subseconds)
}
func (a *DateTimePartsArray) WithChildren(children []array.Array) array.Array {
	return &DateTimePartsArray{dt: a.dt, unit: a.unit, days: children[0], seconds: children[1], subseconds: children[2], valid: a.valid, st: stats.New()}
}

// Metadata implements array.Serde: a single byte holding the time unit.
func (a *DateTimePartsArray) Metadata() []byte { return []byte{byte(a.unit)} }

func init() {
	array.DefaultRegistry.Register(array.EncodingDateTimeParts, "datetimeparts", func(dt dtype.DType, length int, metadata []byte, segments [][]byte, children []array.Array) (array.Array, error) {
		unit := UnitSeconds
		if len(metadata) >= 1 {
			unit = TimeUnit(metadata[0])
		}
		vv := validity.AllValid(length)
		if dt.Nullable() && len(segments) > 0 {
			bools := make([]bool, length)
			for i := range bools {
				bools[i] = segments[0][i/8]&(1<<uint(i%8)) != 0
			}
			vv = validity.FromMask(mask.FromBools(bools))
		}
		return NewDateTimeParts(unit, children[0], children[1], children[2], vv), nil
	})
}

package encoding

import "github.com/deepteams/vortex/validity"

// allValidValidity is a small convenience shared by encodings that build
// a synthetic non-nullable child buffer (run ends, dictionary codes,
// bit-packed words) during a compute fast path.
func allValidValidity(n int) validity.Validity { return validity.NonNullable(n) }

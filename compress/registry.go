package compress

// DefaultCompressors returns every compressor this package implements, in
// the order the sampling search tries them. Relative order doesn't affect
// the outcome (the search scores every candidate whose CanCompress
// accepts), only how much redundant work CanCompress does before a cheap
// rejection.
func DefaultCompressors() []Compressor {
	return []Compressor{
		ConstantCompressor{},
		DictCompressor{},
		SparseCompressor{},
		RoaringBoolCompressor{},
		RoaringIntCompressor{},
		FoRCompressor{},
		ZigZagCompressor{},
		DeltaCompressor{},
		BitPackedCompressor{},
		ALPCompressor{},
		FSSTCompressor{},
	}
}

// DefaultBtrBlocks returns a BtrBlocks heuristic over the same compressor
// catalog, for callers that want the cheaper non-sampling path.
func DefaultBtrBlocks() *BtrBlocks {
	return NewBtrBlocks(DefaultCompressors())
}

// Package vortex implements the Vortex columnar file format: a
// self-describing, segment-addressed layout tree over a typed array
// model, designed so a reader can prune and project without decoding
// bytes it doesn't need (spec.md, "OVERVIEW").
//
// The package is organized the way its file format is: dtype and array
// describe what the data is, layout describes how it's arranged on
// disk and how to read it back (prune/filter/project, scan), and file
// implements the on-disk framing (segments, footer, postscript, EOF
// trailer) plus the Open/Writer entry points that produce and consume
// it. compress and encoding supply the per-segment codecs layout's
// Flat leaves delegate to.
//
// Basic usage for writing:
//
//	w := file.NewWriter(out, file.VortexWriteOptions{})
//	root, err := w.WriteArray(myArray)
//	err = w.Close(myArray.DType(), root)
//
// Basic usage for reading:
//
//	vf, err := vortex.Open(ctx, f, vortex.OpenOptions{})
//	results, err := vortex.Scan(ctx, vf, vortex.ScanOptions{Filter: pred})
package vortex

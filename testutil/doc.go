// Package testutil provides testing utilities for docarray.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Documents
//
//	rng := testutil.NewRNG(seed)
//	docs := rng.Docs(100, 16)          // ids d0..d99, text, tags, 16-dim embeddings
//	nested := rng.NestedDocs(10, 3, 8) // each root carries 3 chunks
//
// # Random Vectors
//
//	vec := make([]float32, 128)
//	rng.FillUniform(vec) // uniform [0, 1)
package testutil

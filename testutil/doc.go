// Package testutil provides testing utilities for typedjson.
//
// This package is intended for use in tests and benchmarks only.
// It generates deterministic random Value graphs for round-trip and
// property tests.
//
// # Random Documents
//
//	rng := testutil.NewRNG(seed)
//	doc := rng.Document(4, 6)   // object, up to 4 levels, up to 6 children
//	x := rng.Extended()         // a random decimal, temporal, blob or UUID
package testutil

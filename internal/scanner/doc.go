// Package scanner provides the streaming content-screening primitives used
// by the inspection pipeline: chunked SHA-256 hashing, executable magic-byte
// detection, fixed-signature scanning and heuristic anomaly scoring.
//
// Every primitive is bounded: hashing and signature scanning read the input
// in fixed-size chunks and never materialize the whole file, and the
// heuristic scorer only ever sees a caller-limited prefix. The signature and
// keyword sets are declarative values built at construction time so tests
// can substitute synthetic sets.
package scanner

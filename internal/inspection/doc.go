// Package inspection implements the per-file screening pipeline that decides
// whether untrusted content is admitted to the processing workspace.
//
// Checks run in strict, short-circuiting order, cheapest and most
// policy-certain first: naming policy, size policy, streaming SHA-256
// fingerprint, executable header verification, chunked deep signature scan,
// and heuristic anomaly scoring over a bounded prefix. Every inspection,
// pass or fail, records exactly one audit event.
package inspection

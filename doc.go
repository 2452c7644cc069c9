// Package air is the peer-local execution core of a distributed dataflow
// interpreter for AIR, an S-expression language used to orchestrate remote
// service calls across untrusted peers.
//
// A script is executed cooperatively by many peers; each peer, on receiving
// a particle, runs the same script against a merged execution trace derived
// from prior peers, performs only the calls it is authorized to perform
// locally, and emits an updated trace plus the set of peers that should run
// next. This package implements one such peer-local step: trace merging,
// instruction interpretation, the scoped variable environment, and the
// catchable/uncatchable/joinable error taxonomy. Networking, scheduling
// across peers, script parsing, and persistence durability are external
// concerns and are modeled here only as collaborator interfaces.
package air

// Package patch defines the core data model for stitch: named literal
// before/after substitutions and the ordered sets they are applied in.
//
// A Patch is a pure value. It carries no position information and implies
// no parse of the target text - matching is exact substring search, and
// the semantics of application (ordering, all-occurrences replacement,
// soft misses) live in the engine package.
package patch

// Package engine implements the stitch patch-application engine.
//
// The engine is a pure function from (content, patch set) to
// (final content, per-patch results). It performs no I/O: reading the
// artifact, reporting results, and writing the artifact back are the
// caller's concern (see the artifact, report, and cli packages).
//
// SEMANTICS:
//
// Patches apply strictly in set order, each against the content the
// previous patches produced. This is the intended composition model -
// a later patch's Before snippet may match text an earlier patch
// introduced, so swapping two interdependent patches changes the
// outcome.
//
// A patch whose Before snippet is present replaces EVERY non-overlapping
// occurrence, not just the first. Snippets denote a semantic unit that
// may legitimately recur; first-only replacement is not offered.
//
// A patch whose Before snippet is absent is a soft miss: the content is
// untouched, the result records StatusNotFound, and the run continues.
// The engine has no fatal path and always returns one result per input
// patch.
//
// Applying a set to its own output is a no-op: every already-applied
// patch reports StatusNotFound and the content survives byte-for-byte.
package engine

// Package compare implements the two interchangeable chunk-hash comparators.
//
// FlatSet collapses each document's hashes to a set and counts the
// intersection and symmetric difference. Tree builds a hash tree per document
// and skips all set work when the roots match; otherwise it falls back to the
// flat-set count over its leaves. Both report the same Counts for the same
// input, so difference percentages never depend on the method chosen.
package compare

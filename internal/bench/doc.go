// Package bench times the lite and tree comparators against each other over
// a grid of chunk sizes and hash algorithms.
//
// Every case of the grid compares the same pair of token streams through an
// engine.Engine, so timing covers chunking, hashing and comparison but not
// tokenization. Cases also cross-check that both methods report the same
// difference percentage.
package bench

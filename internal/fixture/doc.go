// Package fixture produces deterministic, pseudo-randomly mutated copies of
// HTML documents for tests and benchmarks.
//
// A document is parsed with golang.org/x/net/html, mutated in place and
// rendered back, so the output is always the parser's normalized form
// (html, head and body elements present). The same seed and options always
// yield the same output and mutation list.
package fixture

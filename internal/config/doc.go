// Package config loads domdrift configuration.
//
// Values are layered, later layers winning:
//
//  1. Built-in defaults (Default)
//  2. An optional YAML file
//  3. Environment variables prefixed with DOMDRIFT_
//  4. Explicit overrides, usually CLI flags
//
// Environment variables name a section and a key joined by an underscore:
//
//	DOMDRIFT_COMPARE_CHUNK_SIZE=4      -> compare.chunk_size
//	DOMDRIFT_LINE_DIFF_ENABLED=true    -> line_diff.enabled
//	DOMDRIFT_LOG_LEVEL=debug           -> log.level
//
// A YAML file uses the same keys:
//
//	compare:
//	  chunk_size: 4
//	  hash_algorithm: sha256
//	  method: tree
//	line_diff:
//	  enabled: true
//	  modify_distance: 1
package config

// Package output renders savevault command results.
//
// Results are written as an aligned text table, JSON or YAML. Values that
// know how to lay themselves out as rows implement Tabular; anything else
// falls back to YAML in table mode.
package output

// Package validation checks report output: the report directory before a
// run starts fetching, and each report file after its exporter finishes.
package validation

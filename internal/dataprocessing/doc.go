// Package dataprocessing turns fetched collection objects into a table.
//
// # Architecture
//
// The package has two steps:
//
// 1. Flattener: merges the items of repeated-group fields (constituents,
// measurements, tags) into the top level of each record
// 2. Tabulate: builds the column union of all records in first-seen order
//
// # Usage
//
//	f := dataprocessing.NewFlattener(nil)
//	if idx, err := f.FlattenAll(records); err != nil {
//	    return fmt.Errorf("record %d: %w", idx, err)
//	}
//	table, err := dataprocessing.Tabulate(records)
//
// # Data Flow
//
//	Object JSON → Record → Flattener → flat Record → Tabulate → Table → exporters
//
// # Error Handling
//
// Flattening fails with a TypeMismatch error when a group field is not a list
// of maps, and with MissingField in strict mode when a group is absent. The
// record is left unchanged when an item fails validation. Tabulate fails with
// EmptyInput for no records and InvalidRecord for a nil entry.
package dataprocessing

package dataprocessing

import (
	apperrors "museumreport/internal/errors"
	"museumreport/pkg/contracts/domain"
)

// Tabulate builds a table from flattened records.
//
// The columns are the union of every record's fields in first-seen order, so
// a field that only appears in a later record still gets a column; records
// without it read as null there. Records are shared with the table, not
// copied, and are not modified.
func Tabulate(records []*domain.Record) (*domain.Table, error) {
	if len(records) == 0 {
		return nil, apperrors.NewEmptyInputError()
	}

	seen := make(map[string]struct{})
	columns := make([]string, 0, records[0].Len())
	for i, record := range records {
		if record == nil {
			return nil, apperrors.NewInvalidRecordError(i, "not a mapping")
		}
		record.Each(func(key string, _ domain.Value) bool {
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				columns = append(columns, key)
			}
			return true
		})
	}

	rows := make([]*domain.Record, len(records))
	copy(rows, records)

	return &domain.Table{Columns: columns, Rows: rows}, nil
}

package dataprocessing

import (
	"log/slog"

	apperrors "museumreport/internal/errors"
	"museumreport/pkg/contracts/domain"
)

// DefaultRepeatedGroups are the list-valued fields of a collection object
// whose items are merged into the top-level record
var DefaultRepeatedGroups = []string{"constituents", "measurements", "tags"}

// Flattener merges repeated-group fields into the top level of a record
type Flattener struct {
	keys   []string
	strict bool
	logger *slog.Logger
}

// FlattenerOption configures a Flattener
type FlattenerOption func(*Flattener)

// WithStrict makes an absent repeated-group field a MissingField error
// instead of a no-op
func WithStrict(strict bool) FlattenerOption {
	return func(f *Flattener) { f.strict = strict }
}

// WithFlattenLogger sets the logger used for overwrite diagnostics
func WithFlattenLogger(logger *slog.Logger) FlattenerOption {
	return func(f *Flattener) { f.logger = logger }
}

// NewFlattener creates a flattener for the given repeated-group keys, which
// are processed in order. No keys means DefaultRepeatedGroups.
func NewFlattener(keys []string, opts ...FlattenerOption) *Flattener {
	if len(keys) == 0 {
		keys = DefaultRepeatedGroups
	}
	f := &Flattener{
		keys:   append([]string(nil), keys...),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Keys returns the repeated-group keys in processing order
func (f *Flattener) Keys() []string {
	return append([]string(nil), f.keys...)
}

// Flatten rewrites record in place and returns it.
//
// For every repeated-group key, each field of each item is written onto the
// record, later items overwriting earlier ones and existing top-level fields
// of the same name. The group field itself is then deleted, including when it
// is null or an empty list. A record that no longer has the field is left
// alone, which keeps Flatten idempotent.
func (f *Flattener) Flatten(record *domain.Record) (*domain.Record, error) {
	if record == nil {
		return nil, apperrors.NewTypeMismatchError("record", "map", "null")
	}

	for _, key := range f.keys {
		value, ok := record.Get(key)
		if !ok {
			if f.strict {
				return record, apperrors.NewMissingFieldError(key)
			}
			continue
		}

		var items []domain.Value
		switch value.Kind() {
		case domain.KindNull:
		case domain.KindList:
			items, _ = value.AsList()
		default:
			return record, apperrors.NewTypeMismatchError(key, "list", value.Kind().String())
		}

		// validate before writing so a bad item leaves the record untouched
		subs := make([]*domain.Record, 0, len(items))
		for i, item := range items {
			sub, ok := item.AsMap()
			if !ok {
				return record, apperrors.NewTypeMismatchError(key, "list of maps", item.Kind().String()).
					With("item", i)
			}
			subs = append(subs, sub)
		}

		overwritten := 0
		for _, sub := range subs {
			sub.Each(func(k string, v domain.Value) bool {
				if _, existed := record.Set(k, v); existed {
					overwritten++
				}
				return true
			})
		}
		record.Delete(key)

		if overwritten > 0 {
			f.logger.Debug("repeated group overwrote fields",
				slog.String("group", key),
				slog.Int("items", len(subs)),
				slog.Int("overwritten", overwritten))
		}
	}

	return record, nil
}

// FlattenAll flattens every record in order, stopping at the first failure.
// The returned index identifies the record that failed.
func (f *Flattener) FlattenAll(records []*domain.Record) (int, error) {
	for i, record := range records {
		if _, err := f.Flatten(record); err != nil {
			return i, err
		}
	}
	return -1, nil
}

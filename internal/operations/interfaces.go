package operations

import (
	"context"

	"museumreport/pkg/contracts/domain"
)

// RecordSource lists and fetches collection objects
type RecordSource interface {
	ListObjectIDs(ctx context.Context) ([]int, error)
	GetObject(ctx context.Context, id int) (*domain.Record, error)
}

// Notifier announces a finished run
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(ctx context.Context, n domain.Notification) error

// Notify calls f
func (f NotifierFunc) Notify(ctx context.Context, n domain.Notification) error {
	return f(ctx, n)
}

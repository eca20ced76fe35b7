package metrics

import "context"

// Recorder receives the events counted by the service.
type Recorder interface {
	ReportReceived(ctx context.Context)
	ReadingApplied(ctx context.Context, motor string)
	ReadingRejected(ctx context.Context, motor string)
	BatchPublished(ctx context.Context, markers int)
	SubscribersChanged(ctx context.Context, delta int64)
	Close() error
}

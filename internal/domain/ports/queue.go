package ports

import (
	"context"

	"docustream/internal/domain/model"
)

// QueuePublisher is the hex port for the durable work queue.
type QueuePublisher interface {
	// Initialize connects to the broker and declares the durable queue.
	// Idempotent; startup must abort if it fails.
	Initialize(ctx context.Context) error
	// Publish sends one descriptor with persistent delivery. Fails with
	// domain.ErrQueueNotReady before Initialize has succeeded.
	Publish(ctx context.Context, d model.JobDescriptor) error
	// Close drains and closes the broker connection.
	Close() error
}

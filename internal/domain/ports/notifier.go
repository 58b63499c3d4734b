package ports

import "docustream/internal/domain/model"

// StatusNotifier delivers one status frame to whatever connection is
// live for the file id at that instant. At-most-once: no buffering,
// no retry.
type StatusNotifier interface {
	// Deliver returns domain.ErrNoRecipient when no live connection
	// exists; callers implementing fire-and-forget treat that as success.
	Deliver(fileID string, status model.Status, metadata map[string]any) error
}

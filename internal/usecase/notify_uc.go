// File: internal/usecase/notify_uc.go
package usecase

import (
	"errors"

	"docustream/internal/domain"
	"docustream/internal/domain/model"
	"docustream/internal/domain/ports"
	"docustream/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ NotifyUseCase = (*notifyUC)(nil)

type NotifyUseCase interface {
	// Push forwards a worker status update to the live connection for
	// fileID. Fire-and-forget: a missing recipient or a failed write is
	// not an error for the caller. Only missing fields are.
	Push(fileID string, status model.Status, metadata map[string]any) error
}

type notifyUC struct {
	notifier ports.StatusNotifier
	log      *zerolog.Logger
}

func NewNotifyUseCase(notifier ports.StatusNotifier, logger *zerolog.Logger) *notifyUC {
	return &notifyUC{notifier: notifier, log: logger}
}

func (n *notifyUC) Push(fileID string, status model.Status, metadata map[string]any) error {
	if fileID == "" || status == "" {
		metrics.IncNotify("invalid")
		return domain.ErrInvalidArgument
	}

	// Status strings beyond the known set are passed through: the
	// worker is trusted once past the shared-secret check.
	err := n.notifier.Deliver(fileID, status, metadata)
	switch {
	case err == nil:
		metrics.IncNotify("delivered")
	case errors.Is(err, domain.ErrNoRecipient):
		metrics.IncNotify("dropped")
	default:
		// Write failure on a live handle: logged, still success for
		// the caller. The read pump reaps the dead transport.
		metrics.IncNotify("dropped")
		n.log.Error().Err(err).Str("file_id", fileID).Msg("status push error")
	}
	return nil
}

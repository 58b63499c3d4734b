// File: internal/usecase/intake_uc.go
package usecase

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"docustream/internal/config"
	"docustream/internal/domain"
	"docustream/internal/domain/model"
	"docustream/internal/domain/ports"
	"docustream/internal/infra/logging"
	"docustream/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ IntakeUseCase = (*intakeUC)(nil)

// Upload is the inbound file as seen at the HTTP boundary.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// IntakeResult mirrors the upload response body.
type IntakeResult struct {
	JobID        string `json:"jobId"`
	Message      string `json:"message"`
	OriginalName string `json:"originalName"`
}

type IntakeUseCase interface {
	// Accept validates the upload, stores it under a name derived from
	// a fresh job id, and publishes exactly one queue descriptor.
	// Validation failures leave no file and publish nothing. A publish
	// failure leaves the stored file in place.
	Accept(ctx context.Context, up Upload) (*IntakeResult, error)
}

type intakeUC struct {
	cfg   config.UploadConfig
	queue ports.QueuePublisher
	log   *zerolog.Logger
}

func NewIntakeUseCase(cfg config.UploadConfig, queue ports.QueuePublisher, logger *zerolog.Logger) *intakeUC {
	return &intakeUC{cfg: cfg, queue: queue, log: logger}
}

func (u *intakeUC) Accept(ctx context.Context, up Upload) (*IntakeResult, error) {
	defer logging.TraceDuration(u.log, "IntakeUC.Accept")()

	if up.Content == nil || up.Filename == "" {
		metrics.IncUpload("rejected")
		return nil, domain.ErrNoFile
	}
	if !u.typeAllowed(up.ContentType) {
		metrics.IncUpload("rejected")
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidFileType, up.ContentType)
	}
	if up.Size > u.cfg.MaxFileSize {
		metrics.IncUpload("rejected")
		return nil, domain.ErrFileTooLarge
	}

	job := model.NewJob(u.cfg.Dir, filepath.Base(up.Filename))
	log := u.log.With().Str("job_id", job.ID).Logger()

	written, err := u.store(job.StoredPath, up.Content)
	if err != nil {
		metrics.IncUpload("failed")
		return nil, err
	}
	log.Info().Str("path", job.StoredPath).Int64("bytes", written).Str("original_name", job.OriginalName).Msg("file stored")

	if err := u.queue.Publish(ctx, job.Descriptor()); err != nil {
		// The stored file is deliberately left behind; see DESIGN.md.
		metrics.IncUpload("failed")
		log.Error().Err(err).Msg("queue publish failed, stored file kept")
		return nil, fmt.Errorf("queue document %s: %w", job.ID, err)
	}

	metrics.IncUpload("accepted")
	metrics.ObserveUploadSize(written)
	return &IntakeResult{
		JobID:        job.ID,
		Message:      "File uploaded successfully and queued for processing",
		OriginalName: job.OriginalName,
	}, nil
}

func (u *intakeUC) typeAllowed(contentType string) bool {
	for _, t := range u.cfg.AllowedTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

// store writes the upload to disk. The declared size was checked
// before the write; the copy is still capped so a lying Content-Length
// cannot blow past the ceiling, and an over-limit partial is removed
// so rejections never leave a file behind.
func (u *intakeUC) store(path string, content io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create upload dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}
	written, err := io.Copy(f, io.LimitReader(content, u.cfg.MaxFileSize+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("write file: %w", err)
	}
	if written > u.cfg.MaxFileSize {
		_ = os.Remove(path)
		return 0, domain.ErrFileTooLarge
	}
	return written, nil
}

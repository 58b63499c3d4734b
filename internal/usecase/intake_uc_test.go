//go:build !integration

package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"docustream/internal/config"
	"docustream/internal/domain"
	"docustream/internal/domain/model"

	"github.com/rs/zerolog"
)

var uuidV4Re = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// --- Mock publisher ---

type mockPublisher struct {
	mu          sync.Mutex
	published   []model.JobDescriptor
	PublishErr  error
	Initialized bool
}

func (m *mockPublisher) Initialize(context.Context) error {
	m.Initialized = true
	return nil
}

func (m *mockPublisher) Publish(_ context.Context, d model.JobDescriptor) error {
	if m.PublishErr != nil {
		return m.PublishErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, d)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.published)
}

func newTestIntake(t *testing.T, pub *mockPublisher) (*intakeUC, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.UploadConfig{
		Dir:          dir,
		MaxFileSize:  1024,
		AllowedTypes: []string{"application/pdf"},
	}
	logger := zerolog.Nop()
	return NewIntakeUseCase(cfg, pub, &logger), dir
}

func filesIn(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestAcceptStoresFileAndPublishesOnce(t *testing.T) {
	pub := &mockPublisher{}
	uc, dir := newTestIntake(t, pub)

	res, err := uc.Accept(context.Background(), Upload{
		Filename:    "report.pdf",
		ContentType: "application/pdf",
		Size:        11,
		Content:     strings.NewReader("%PDF-sample"),
	})
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}

	if !uuidV4Re.MatchString(res.JobID) {
		t.Errorf("jobId %q is not a UUID v4", res.JobID)
	}
	if res.OriginalName != "report.pdf" {
		t.Errorf("originalName = %q", res.OriginalName)
	}
	if res.Message == "" {
		t.Error("message empty")
	}

	if pub.count() != 1 {
		t.Fatalf("publish count = %d, want 1", pub.count())
	}
	d := pub.published[0]
	if d.JobID != res.JobID {
		t.Errorf("descriptor jobId = %q, want %q", d.JobID, res.JobID)
	}
	if d.OriginalName != "report.pdf" || d.Timestamp == "" {
		t.Errorf("descriptor = %+v", d)
	}

	wantFile := res.JobID + ".pdf"
	names := filesIn(t, dir)
	if len(names) != 1 || names[0] != wantFile {
		t.Errorf("stored files = %v, want [%s]", names, wantFile)
	}
	if d.FilePath != filepath.Join(dir, wantFile) {
		t.Errorf("descriptor path = %q", d.FilePath)
	}
}

func TestAcceptRejectsDisallowedType(t *testing.T) {
	pub := &mockPublisher{}
	uc, dir := newTestIntake(t, pub)

	_, err := uc.Accept(context.Background(), Upload{
		Filename:    "cat.png",
		ContentType: "image/png",
		Size:        4,
		Content:     strings.NewReader("PNG!"),
	})
	if !errors.Is(err, domain.ErrInvalidFileType) {
		t.Fatalf("err = %v, want ErrInvalidFileType", err)
	}
	if pub.count() != 0 {
		t.Error("rejected upload reached the queue")
	}
	if len(filesIn(t, dir)) != 0 {
		t.Error("rejected upload left a stored file")
	}
}

func TestAcceptRejectsOversizedDeclaredUpload(t *testing.T) {
	pub := &mockPublisher{}
	uc, dir := newTestIntake(t, pub)

	_, err := uc.Accept(context.Background(), Upload{
		Filename:    "big.pdf",
		ContentType: "application/pdf",
		Size:        4096, // over the 1024 test ceiling
		Content:     strings.NewReader(strings.Repeat("x", 4096)),
	})
	if !errors.Is(err, domain.ErrFileTooLarge) {
		t.Fatalf("err = %v, want ErrFileTooLarge", err)
	}
	if pub.count() != 0 || len(filesIn(t, dir)) != 0 {
		t.Error("oversized upload produced side effects")
	}
}

func TestAcceptRemovesPartialWhenDeclaredSizeLies(t *testing.T) {
	pub := &mockPublisher{}
	uc, dir := newTestIntake(t, pub)

	_, err := uc.Accept(context.Background(), Upload{
		Filename:    "liar.pdf",
		ContentType: "application/pdf",
		Size:        10, // declared small, actually over the ceiling
		Content:     strings.NewReader(strings.Repeat("x", 2048)),
	})
	if !errors.Is(err, domain.ErrFileTooLarge) {
		t.Fatalf("err = %v, want ErrFileTooLarge", err)
	}
	if pub.count() != 0 || len(filesIn(t, dir)) != 0 {
		t.Error("over-limit upload produced side effects")
	}
}

func TestAcceptRejectsMissingFile(t *testing.T) {
	pub := &mockPublisher{}
	uc, _ := newTestIntake(t, pub)

	_, err := uc.Accept(context.Background(), Upload{})
	if !errors.Is(err, domain.ErrNoFile) {
		t.Fatalf("err = %v, want ErrNoFile", err)
	}
	if pub.count() != 0 {
		t.Error("missing file reached the queue")
	}
}

func TestAcceptKeepsStoredFileOnPublishFailure(t *testing.T) {
	pub := &mockPublisher{PublishErr: errors.New("broker gone")}
	uc, dir := newTestIntake(t, pub)

	_, err := uc.Accept(context.Background(), Upload{
		Filename:    "doc.pdf",
		ContentType: "application/pdf",
		Size:        5,
		Content:     strings.NewReader("%PDF-"),
	})
	if err == nil {
		t.Fatal("expected error when publish fails")
	}
	// The orphan is deliberately left in place.
	if len(filesIn(t, dir)) != 1 {
		t.Errorf("stored files = %v, want the orphan kept", filesIn(t, dir))
	}
}

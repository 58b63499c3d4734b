package model

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Job correlates an accepted upload with its queue message and later
// status updates. Immutable after intake; components downstream of the
// queue address it purely by ID.
type Job struct {
	ID           string // UUID v4
	OriginalName string
	StoredPath   string
	CreatedAt    time.Time
}

// NewJob assigns a fresh identifier and derives the stored filename
// as {id}{originalExtension} under dir.
func NewJob(dir, originalName string) Job {
	id := uuid.NewString()
	ext := filepath.Ext(originalName)
	return Job{
		ID:           id,
		OriginalName: originalName,
		StoredPath:   filepath.Join(dir, id+ext),
		CreatedAt:    time.Now(),
	}
}

// JobDescriptor is the queue message handed to the external worker.
// Timestamp is RFC3339 to keep the wire format language-neutral.
type JobDescriptor struct {
	JobID        string `json:"jobId"`
	FilePath     string `json:"filePath"`
	OriginalName string `json:"originalName"`
	Timestamp    string `json:"timestamp"`
}

// Descriptor builds the queue message for this job.
func (j Job) Descriptor() JobDescriptor {
	return JobDescriptor{
		JobID:        j.ID,
		FilePath:     j.StoredPath,
		OriginalName: j.OriginalName,
		Timestamp:    j.CreatedAt.UTC().Format(time.RFC3339),
	}
}

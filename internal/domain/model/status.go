package model

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"

	// StatusConnected is wire-only: the first frame pushed after a
	// successful upgrade, never produced by the worker.
	StatusConnected Status = "connected"
)

// StatusUpdate is transient: it is consumed by whatever connection is
// live at delivery time, or dropped. Never persisted.
type StatusUpdate struct {
	FileID    string         `json:"fileId"`
	Status    Status         `json:"status"`
	Metadata  map[string]any `json:"metadata"`
	Timestamp int64          `json:"timestamp"` // unix milliseconds
}

// StatusFrame is the JSON frame written to the live channel.
type StatusFrame struct {
	Type      string         `json:"type"`
	FileID    string         `json:"fileId"`
	Status    Status         `json:"status"`
	Metadata  map[string]any `json:"metadata"`
	Timestamp int64          `json:"timestamp"`
}

const FrameTypeStatusUpdate = "status_update"

// NewStatusFrame stamps the frame with the current wall clock.
func NewStatusFrame(fileID string, status Status, metadata map[string]any) StatusFrame {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return StatusFrame{
		Type:      FrameTypeStatusUpdate,
		FileID:    fileID,
		Status:    status,
		Metadata:  metadata,
		Timestamp: time.Now().UnixMilli(),
	}
}

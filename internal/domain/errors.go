package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")

	// Intake errors
	ErrNoFile          = errors.New("no file uploaded")
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
	ErrInvalidFileType = errors.New("invalid file type")

	// Queue errors
	ErrQueueNotReady = errors.New("queue channel not initialized")

	// Delivery errors
	ErrNoRecipient = errors.New("no live connection for file id")
)

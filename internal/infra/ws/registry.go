// File: internal/infra/ws/registry.go
package ws

import (
	"sync"
	"time"

	"docustream/internal/domain"
	"docustream/internal/domain/model"
	"docustream/internal/domain/ports"
	"docustream/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ ports.StatusNotifier = (*Registry)(nil)

type recordState int

const (
	stateOpen recordState = iota
	statePendingRemoval
)

// record unifies handle, state and removal timer per file id so they
// mutate together and cannot drift apart.
type record struct {
	handle  Handle
	state   recordState
	removal *time.Timer
	gen     uint64 // bumped on supersession; stale timers check it
}

// Registry holds at most one live connection per file id. A reconnect
// for the same id supersedes the previous record; a closed transport
// is retained for a grace period so a status push racing the close is
// not lost. Nothing is buffered: a push with no live record is dropped.
type Registry struct {
	mu    sync.Mutex
	conns map[string]*record
	grace time.Duration
	log   *zerolog.Logger
}

func NewRegistry(grace time.Duration, logger *zerolog.Logger) *Registry {
	if grace <= 0 {
		grace = time.Minute
	}
	return &Registry{
		conns: make(map[string]*record),
		grace: grace,
		log:   logger,
	}
}

// Register installs h as the live connection for fileID, superseding
// any existing record (its removal timer is canceled, its handle
// abandoned without an explicit close). The first frame on the new
// handle is always status "connected".
func (r *Registry) Register(fileID string, h Handle) {
	r.mu.Lock()
	rec, ok := r.conns[fileID]
	if ok {
		if rec.removal != nil {
			rec.removal.Stop()
			rec.removal = nil
		}
		rec.handle = h
		rec.state = stateOpen
		rec.gen++
	} else {
		r.conns[fileID] = &record{handle: h, state: stateOpen}
		metrics.WSConnInc()
	}
	n := len(r.conns)
	r.mu.Unlock()

	r.log.Info().Str("file_id", fileID).Int("connections", n).Msg("connection registered")

	frame := model.NewStatusFrame(fileID, model.StatusConnected, nil)
	if err := h.Send(frame); err != nil {
		r.log.Error().Err(err).Str("file_id", fileID).Msg("send connected frame")
	}
}

// ScheduleRemoval transitions the record for fileID to pending removal
// and arms the grace timer. Idempotent: a repeated close event replaces
// the previous timer instead of double-scheduling. Close events from a
// superseded handle are ignored.
func (r *Registry) ScheduleRemoval(fileID string, h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.conns[fileID]
	if !ok || rec.handle != h {
		return
	}
	rec.state = statePendingRemoval
	if rec.removal != nil {
		rec.removal.Stop()
	}
	gen := rec.gen
	rec.removal = time.AfterFunc(r.grace, func() {
		r.expire(fileID, gen)
	})
	r.log.Debug().Str("file_id", fileID).Dur("grace", r.grace).Msg("removal scheduled")
}

// expire deletes the record when the grace timer fires, unless a new
// connection superseded it in the meantime.
func (r *Registry) expire(fileID string, gen uint64) {
	r.mu.Lock()
	rec, ok := r.conns[fileID]
	if !ok || rec.gen != gen || rec.state != statePendingRemoval {
		r.mu.Unlock()
		return
	}
	delete(r.conns, fileID)
	metrics.WSConnDec()
	n := len(r.conns)
	r.mu.Unlock()

	r.log.Info().Str("file_id", fileID).Int("connections", n).Msg("stale connection removed")
}

// Deliver pushes one status frame to the connection live for fileID.
// No record: dropped, domain.ErrNoRecipient, nothing stored. Record
// with a dead transport: the record is dropped eagerly rather than
// waiting out the grace timer. A write failure on an apparently open
// handle is surfaced to the caller and the record is left as-is; the
// read pump notices the dead transport independently.
func (r *Registry) Deliver(fileID string, status model.Status, metadata map[string]any) error {
	r.mu.Lock()
	rec, ok := r.conns[fileID]
	if !ok {
		r.mu.Unlock()
		metrics.IncWSFrame("dropped")
		r.log.Info().Str("file_id", fileID).Str("status", string(status)).Msg("no connection for update, dropped")
		return domain.ErrNoRecipient
	}
	h := rec.handle
	if !h.Open() {
		if rec.removal != nil {
			rec.removal.Stop()
		}
		delete(r.conns, fileID)
		metrics.WSConnDec()
		r.mu.Unlock()
		metrics.IncWSFrame("dropped")
		r.log.Info().Str("file_id", fileID).Msg("connection transport dead, record dropped")
		return domain.ErrNoRecipient
	}
	r.mu.Unlock()

	frame := model.NewStatusFrame(fileID, status, metadata)
	if err := h.Send(frame); err != nil {
		metrics.IncWSFrame("error")
		r.log.Error().Err(err).Str("file_id", fileID).Str("status", string(status)).Msg("status push failed")
		return err
	}
	metrics.IncWSFrame("delivered")
	r.log.Debug().Str("file_id", fileID).Str("status", string(status)).Msg("status delivered")
	return nil
}

// Len reports the number of records currently held, live or pending.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// Shutdown cancels every outstanding removal timer and closes every
// handle. The registry is unusable afterwards.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	conns := r.conns
	r.conns = make(map[string]*record)
	r.mu.Unlock()

	for id, rec := range conns {
		if rec.removal != nil {
			rec.removal.Stop()
		}
		if err := rec.handle.Close(); err != nil {
			r.log.Debug().Err(err).Str("file_id", id).Msg("close on shutdown")
		}
		metrics.WSConnDec()
	}
}

// File: internal/infra/web/handlers.go
package web

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"docustream/internal/domain"
	"docustream/internal/domain/model"
	"docustream/internal/infra/logging"
	"docustream/internal/infra/metrics"
	redisinfra "docustream/internal/infra/redis"
	"docustream/internal/usecase"

	"github.com/go-chi/chi/v5"
)

// Slack above the configured ceiling for multipart framing overhead.
const multipartOverhead = 10 << 20

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	log := logging.With(r.Context(), s.log)

	allowed, err := s.limiter.Allow(r.Context(), redisinfra.UploadKey(clientIP(r)),
		s.cfg.Redis.RateLimit.Limit, s.cfg.Redis.RateLimit.Window.Std())
	if err != nil {
		// Fail open: intake availability beats throttling accuracy.
		log.Warn().Err(err).Msg("rate limiter unavailable")
		allowed = true
	}
	if !allowed {
		metrics.IncUpload("throttled")
		writeJSON(w, http.StatusTooManyRequests, map[string]any{"error": "Too many uploads"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		metrics.IncUpload("rejected")
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	res, err := s.intake.Accept(r.Context(), usecase.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoFile),
			errors.Is(err, domain.ErrInvalidFileType),
			errors.Is(err, domain.ErrFileTooLarge),
			errors.Is(err, domain.ErrInvalidArgument):
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		default:
			log.Error().Err(err).Msg("upload failed")
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"error":   "Failed to process upload",
				"message": err.Error(),
			})
		}
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// handleProgress and handleSummary are boundary stubs: job state lives
// with the external worker and reaches clients over the live channel.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	writeJSON(w, http.StatusOK, map[string]any{
		"jobId":  id,
		"status": string(model.StatusProcessing),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"message": "Document summary fetched successfully"})
}

type notifyRequest struct {
	FileID   string         `json:"fileId"`
	Status   model.Status   `json:"status"`
	Metadata map[string]any `json:"metadata"`
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.IncNotify("invalid")
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		return
	}
	if req.FileID == "" || req.Status == "" {
		metrics.IncNotify("invalid")
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Missing required fields"})
		return
	}

	// Fire-and-forget: success regardless of whether a live connection
	// consumed the update.
	if err := s.notify.Push(req.FileID, req.Status, req.Metadata); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Missing required fields"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// internalAuth guards worker-facing routes with the shared secret.
// Constant-time comparison; no detail leaked on mismatch.
func (s *Server) internalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("x-internal-api-key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(s.cfg.Internal.APIKey)) != 1 {
			metrics.IncNotify("unauthorized")
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

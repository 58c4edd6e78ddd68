package http

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	mediaapp "ytgrab/internal/application/media"
	mediadomain "ytgrab/internal/domain/media"
	"ytgrab/internal/infrastructure/filesystem"
)

const maxRequestBytes = 1 << 20

// Output types are fixed; the host mime table may not know them.
var outputTypes = map[string]string{
	".mp3": "audio/mpeg",
	".mp4": "video/mp4",
}

type mediaUseCases interface {
	Catalog(ctx context.Context, locator string) (mediadomain.Catalog, error)
	Download(ctx context.Context, raw mediadomain.RawRequest) mediadomain.Outcome
}

type outputPathStore interface {
	ResolvePublicPath(raw string) (string, error)
	FileExists(raw string) (string, error)
}

type Handler struct {
	media  mediaUseCases
	store  outputPathStore
	logger zerolog.Logger
}

// NewHandler wires HTTP handlers with application use cases.
func NewHandler(mediaService mediaUseCases, store outputPathStore, logger zerolog.Logger) *Handler {
	return &Handler{media: mediaService, store: store, logger: logger}
}

type videoInfo struct {
	Title         string                  `json:"title"`
	Author        string                  `json:"author,omitempty"`
	LengthSeconds int64                   `json:"lengthSeconds"`
	Formats       []mediadomain.Rendition `json:"formats"`
}

// VideoInfo handles GET /api/videos/info.
func (h *Handler) VideoInfo(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.media.Catalog(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		writeError(w, mediadomain.AsError(err))
		return
	}

	formats := catalog.Renditions
	if formats == nil {
		formats = []mediadomain.Rendition{}
	}
	writeJSON(w, http.StatusOK, videoInfo{
		Title:         catalog.Title,
		Author:        catalog.Author,
		LengthSeconds: int64(catalog.Duration.Seconds()),
		Formats:       formats,
	})
}

// Download handles POST /api/videos/download.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	var raw mediadomain.RawRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&raw); err != nil {
		writeError(w, mediadomain.Validation("invalid request body"))
		return
	}

	outcome := h.media.Download(r.Context(), raw)
	if !outcome.Succeeded() {
		h.logger.Warn().
			Str("error_code", string(outcome.Err.Code)).
			Str("reason", outcome.Err.Reason).
			Msg("download failed")
		writeError(w, outcome.Err)
		return
	}
	writeJSON(w, http.StatusCreated, mediaapp.Report(outcome))
}

// CheckDownload handles GET /download and reports whether an output exists.
func (h *Handler) CheckDownload(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("path")
	if strings.TrimSpace(raw) == "" {
		writeMessage(w, http.StatusBadRequest, "path is required")
		return
	}

	if _, err := h.store.FileExists(raw); err != nil {
		switch {
		case errors.Is(err, filesystem.ErrInvalidPath):
			writeMessage(w, http.StatusBadRequest, "invalid path")
		default:
			writeMessage(w, http.StatusNotFound, "File not found")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": raw})
}

// ServeOutput returns a handler for finished outputs under dir.
func (h *Handler) ServeOutput(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		full, err := h.store.ResolvePublicPath(dir + "/" + mux.Vars(r)["name"])
		if err != nil {
			writeMessage(w, http.StatusNotFound, "File not found")
			return
		}

		ext := strings.ToLower(filepath.Ext(full))
		contentType, ok := outputTypes[ext]
		if !ok {
			contentType = mime.TypeByExtension(ext)
		}
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		serveOutput(w, r, full, contentType)
	}
}

// statusFor maps an error code to its HTTP status.
func statusFor(code mediadomain.ErrorCode) int {
	switch code {
	case mediadomain.CodeValidation:
		return http.StatusBadRequest
	case mediadomain.CodeResolution:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err *mediadomain.Error) {
	writeJSON(w, statusFor(err.Code), mediaapp.Report(mediadomain.Failure(err)))
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

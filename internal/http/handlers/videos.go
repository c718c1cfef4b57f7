package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strconv"

	"github.com/go-chi/chi/v5"

	"padhai/internal/domain"
	"padhai/internal/domain/jsoncfg"
	"padhai/internal/middleware"
	"padhai/internal/providers/prompt"
	"padhai/internal/storage"
	"padhai/internal/videogen"
	"padhai/pkg/zip"
)

const maxRequestBody = 16 << 10

var videoIDPattern = regexp.MustCompile(`^[0-9]{13}-[a-z0-9-]{1,32}$`)

type videoResponse struct {
	Success           bool   `json:"success"`
	OriginalIdea      string `json:"originalIdea"`
	ExpandedPrompt    string `json:"expandedPrompt"`
	PromptProvider    string `json:"promptProvider"`
	VideoID           string `json:"videoId"`
	VideoDownloadLink string `json:"videoDownloadLink"`
	FileSize          int64  `json:"fileSize"`
	Message           string `json:"message"`
}

type expandResponse struct {
	Success        bool   `json:"success"`
	OriginalIdea   string `json:"originalIdea"`
	ExpandedPrompt string `json:"expandedPrompt"`
	PromptProvider string `json:"promptProvider"`
	FallbackReason string `json:"fallbackReason,omitempty"`
}

// decodeIdea reads and validates the idea payload. It writes the 400 itself
// and reports false on failure.
func (a *App) decodeIdea(w http.ResponseWriter, r *http.Request) (jsoncfg.IdeaJSON, bool) {
	var req jsoncfg.IdeaJSON
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid input", "Please provide a valid idea as a non-empty string")
		return req, false
	}
	req.Normalize(middleware.LocaleFromContext(r.Context()))
	if err := req.Validate(); err != nil {
		a.error(w, http.StatusBadRequest, "Invalid input", err.Error())
		return req, false
	}
	return req, true
}

func (a *App) expand(r *http.Request, idea jsoncfg.IdeaJSON) (*prompt.Expansion, error) {
	return a.Expander.Expand(r.Context(), prompt.ExpandRequest{Idea: idea.Idea, Locale: idea.Locale})
}

// VideoGenerate expands the idea and blocks until the video is stored.
func (a *App) VideoGenerate(w http.ResponseWriter, r *http.Request) {
	idea, ok := a.decodeIdea(w, r)
	if !ok {
		return
	}
	log := a.Logger.With().Str("request_id", middleware.RequestIDFromContext(r.Context())).Logger()

	expansion, err := a.expand(r, idea)
	if err != nil {
		log.Error().Err(err).Msg("video: idea expansion failed")
		a.error(w, http.StatusInternalServerError, "Video generation failed", "Could not expand the idea")
		return
	}
	log.Info().
		Str("idea", prompt.Title(idea.Idea)).
		Str("prompt_provider", expansion.Provider).
		Str("fallback_reason", expansion.FallbackReason).
		Msg("video: idea expanded")

	res, err := a.Videos.Generate(r.Context(), expansion.Prompt)
	if err != nil {
		status := a.generationError(w, err)
		log.Warn().Err(err).Int("status", status).Msg("video: generation failed")
		return
	}

	a.json(w, http.StatusOK, videoResponse{
		Success:           true,
		OriginalIdea:      idea.Idea,
		ExpandedPrompt:    expansion.Prompt,
		PromptProvider:    expansion.Provider,
		VideoID:           res.ID,
		VideoDownloadLink: res.URL,
		FileSize:          res.Record.FileSize,
		Message:           "Video generated successfully",
	})
}

// VideoExpand returns only the expanded prompt.
func (a *App) VideoExpand(w http.ResponseWriter, r *http.Request) {
	idea, ok := a.decodeIdea(w, r)
	if !ok {
		return
	}
	expansion, err := a.expand(r, idea)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "Expansion failed", "Could not expand the idea")
		return
	}
	a.json(w, http.StatusOK, expandResponse{
		Success:        true,
		OriginalIdea:   idea.Idea,
		ExpandedPrompt: expansion.Prompt,
		PromptProvider: expansion.Provider,
		FallbackReason: expansion.FallbackReason,
	})
}

// VideoRecord serves the metadata sidecar for a generated or failed video.
// Outcomes that leave no sidecar are answered from the ledger when one is
// configured.
func (a *App) VideoRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !videoIDPattern.MatchString(id) {
		a.error(w, http.StatusBadRequest, "Invalid input", "invalid video id")
		return
	}
	for _, key := range videogen.RecordKeys(id) {
		data, err := a.Store.Read(key)
		if errors.Is(err, storage.ErrNotExist) {
			continue
		}
		if err != nil {
			a.Logger.Error().Err(err).Str("key", key).Msg("video: read record failed")
			a.error(w, http.StatusInternalServerError, "Storage error", "could not read video record")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}
	if a.History == nil {
		a.error(w, http.StatusNotFound, "Not found", "video not found")
		return
	}
	entry, err := a.History.GetByID(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "Not found", "video not found")
	case err != nil:
		a.Logger.Error().Err(err).Str("id", id).Msg("video: read ledger entry failed")
		a.error(w, http.StatusInternalServerError, "Internal", "could not read video record")
	default:
		a.json(w, http.StatusOK, entry)
	}
}

// VideoBundle streams a zip holding the video and its metadata sidecar.
func (a *App) VideoBundle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !videoIDPattern.MatchString(id) {
		a.error(w, http.StatusBadRequest, "Invalid input", "invalid video id")
		return
	}
	videoKey, infoKey := videogen.BundleKeys(id)
	for _, key := range []string{videoKey, infoKey} {
		if _, err := a.Store.Size(key); err != nil {
			if errors.Is(err, storage.ErrNotExist) {
				a.error(w, http.StatusNotFound, "Not found", "video not found")
				return
			}
			a.Logger.Error().Err(err).Str("key", key).Msg("video: stat bundle file failed")
			a.error(w, http.StatusInternalServerError, "Storage error", "could not read video")
			return
		}
	}

	open := func(key string) func() (io.ReadCloser, error) {
		return func() (io.ReadCloser, error) { return a.Store.Open(key) }
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+id+`.zip"`)
	w.WriteHeader(http.StatusOK)
	err := zip.Write(w, []zip.Entry{
		{Filename: videoKey, Store: true, Open: open(videoKey)},
		{Filename: infoKey, Open: open(infoKey)},
	})
	if err != nil {
		// Headers are already sent; the client sees a truncated archive.
		a.Logger.Warn().Err(err).Str("id", id).Msg("video: bundle stream aborted")
	}
}

// VideoHistory lists recent generations from the ledger.
func (a *App) VideoHistory(w http.ResponseWriter, r *http.Request) {
	if a.History == nil {
		a.error(w, http.StatusServiceUnavailable, "Unavailable", "generation history requires a database")
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			a.error(w, http.StatusBadRequest, "Invalid input", "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	items, err := a.History.Recent(r.Context(), limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("video: list history failed")
		a.error(w, http.StatusInternalServerError, "Internal", "failed to list generations")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "items": items})
}

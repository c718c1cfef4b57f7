package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"padhai/internal/domain"
	"padhai/internal/infra"
	"padhai/internal/providers/prompt"
	"padhai/internal/storage"
	"padhai/internal/videogen"
)

// VideoGenerator runs one generation to completion.
type VideoGenerator interface {
	Generate(ctx context.Context, prompt string) (*videogen.Result, error)
}

// HistoryReader reads recorded generations.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]domain.GenerationEntry, error)
	GetByID(ctx context.Context, id string) (*domain.GenerationEntry, error)
}

type App struct {
	Videos   VideoGenerator
	Expander prompt.Expander
	Store    *storage.FileStore
	// History is nil when no database is configured.
	History HistoryReader
	Logger  infra.Logger
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errName, message string) {
	a.json(w, code, errorResponse{Error: errName, Message: message})
}

package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"padhai/internal/domain"
	"padhai/internal/infra"
	"padhai/internal/sqlinline"
)

const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 100
)

// GenerationRepositoryPG keeps one row per finished generation in
// video_generations.
type GenerationRepositoryPG struct {
	db infra.SQLExecutor
}

// NewGenerationRepository creates a repository backed by PostgreSQL.
func NewGenerationRepository(db infra.SQLExecutor) *GenerationRepositoryPG {
	return &GenerationRepositoryPG{db: db}
}

// EnsureSchema creates the table and index when missing.
func (r *GenerationRepositoryPG) EnsureSchema(ctx context.Context) error {
	for _, q := range []string{sqlinline.QEnsureVideoGenerationsTable, sqlinline.QEnsureVideoGenerationsIndex} {
		if _, err := r.db.Exec(ctx, q); err != nil {
			return fmt.Errorf("ensure video_generations: %w", err)
		}
	}
	return nil
}

// Record inserts entry. Replaying the same id is a no-op.
func (r *GenerationRepositoryPG) Record(ctx context.Context, entry domain.GenerationEntry) error {
	if strings.TrimSpace(entry.ID) == "" {
		return errors.New("generation entry has no id")
	}
	_, err := r.db.Exec(ctx, sqlinline.QInsertVideoGeneration,
		entry.ID,
		entry.Prompt,
		string(entry.State),
		entry.Status,
		entry.StorageKey,
		entry.FileSize,
		entry.OperationName,
		entry.Model,
		entry.ErrorMessage,
	)
	return err
}

// Recent lists the newest entries first. limit is clamped to
// [1, MaxRecentLimit]; zero means DefaultRecentLimit.
func (r *GenerationRepositoryPG) Recent(ctx context.Context, limit int) ([]domain.GenerationEntry, error) {
	switch {
	case limit <= 0:
		limit = DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}
	rows, err := r.db.Query(ctx, sqlinline.QSelectRecentVideoGenerations, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.GenerationEntry, 0, limit)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetByID fetches one entry.
func (r *GenerationRepositoryPG) GetByID(ctx context.Context, id string) (*domain.GenerationEntry, error) {
	entry, err := scanEntry(r.db.QueryRow(ctx, sqlinline.QSelectVideoGeneration, id))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (domain.GenerationEntry, error) {
	var (
		entry domain.GenerationEntry
		state string
	)
	if err := row.Scan(
		&entry.ID,
		&entry.Prompt,
		&state,
		&entry.Status,
		&entry.StorageKey,
		&entry.FileSize,
		&entry.OperationName,
		&entry.Model,
		&entry.ErrorMessage,
		&entry.CreatedAt,
	); err != nil {
		return domain.GenerationEntry{}, err
	}
	entry.State = domain.GenerationState(state)
	return entry, nil
}

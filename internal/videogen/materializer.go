package videogen

import (
	"context"
	"fmt"
	"io"
	"time"

	"padhai/internal/domain"
	"padhai/internal/infra"
	"padhai/internal/storage"
)

const (
	videoFormat = "MP4"
	videoType   = "ai_generated"
)

type materializer struct {
	provider      Provider
	store         *storage.FileStore
	logger        infra.Logger
	now           func() time.Time
	suffix        func() string
	publicBaseURL string
	model         string
	generatedBy   string
}

type materialized struct {
	record domain.ArtifactRecord
	key    string
	url    string
}

// writeTracker remembers the first local write error so download failures
// can be told apart from storage failures.
type writeTracker struct {
	w   io.Writer
	err error
}

func (t *writeTracker) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil && t.err == nil {
		t.err = err
	}
	return n, err
}

// materialize downloads ref into <id>.mp4, writes <id>-info.json and returns
// the public URL. On failure nothing is left in storage.
func (m *materializer) materialize(ctx context.Context, prompt, operationName string, ref VideoRef) (*materialized, error) {
	generatedAt := m.now().UTC()
	id := artifactID(generatedAt, m.suffix)
	key := videoKey(id)

	f, err := m.store.Create(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}
	tracker := &writeTracker{w: f}
	downloadErr := m.provider.Download(ctx, ref, tracker)
	closeErr := f.Close()

	switch {
	case tracker.err != nil:
		m.discard(key)
		return nil, fmt.Errorf("%w: write %s: %v", domain.ErrStorageWrite, key, tracker.err)
	case downloadErr != nil:
		m.discard(key)
		return nil, downloadErr
	case closeErr != nil:
		m.discard(key)
		return nil, fmt.Errorf("%w: close %s: %v", domain.ErrStorageWrite, key, closeErr)
	}

	size, err := m.store.Size(key)
	if err != nil {
		m.discard(key)
		return nil, fmt.Errorf("%w: stat %s: %v", domain.ErrStorageWrite, key, err)
	}
	if size == 0 {
		m.discard(key)
		return nil, fmt.Errorf("%w: downloaded video is empty", domain.ErrMissingArtifact)
	}
	filePath, err := m.store.Path(key)
	if err != nil {
		m.discard(key)
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}

	record := domain.ArtifactRecord{
		ID:             id,
		OriginalPrompt: prompt,
		GeneratedAt:    generatedAt,
		GeneratedBy:    m.generatedBy,
		Format:         videoFormat,
		Status:         domain.RecordStatusCompleted,
		Type:           videoType,
		FilePath:       filePath,
		FileSize:       size,
		OperationName:  operationName,
		Model:          m.model,
	}
	if _, err := m.store.WriteJSON(ctx, infoKey(id), record); err != nil {
		m.discard(key)
		return nil, fmt.Errorf("%w: sidecar: %v", domain.ErrStorageWrite, err)
	}

	m.logger.Info().
		Str("video_id", id).
		Str("file", filePath).
		Int64("bytes", size).
		Msg("videogen: video materialized")

	return &materialized{
		record: record,
		key:    key,
		url:    m.publicBaseURL + "/storage/" + key,
	}, nil
}

func (m *materializer) discard(key string) {
	if err := m.store.Remove(key); err != nil {
		m.logger.Warn().Err(err).Str("key", key).Msg("videogen: failed to remove partial video")
	}
}

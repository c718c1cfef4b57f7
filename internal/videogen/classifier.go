package videogen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"padhai/internal/domain"
	"padhai/internal/infra"
	"padhai/internal/storage"
)

const (
	quotaMessage = "Veo API integration successful but quota exceeded"
	quotaNote    = "The API connection and authentication are working correctly!"
)

var quotaNextSteps = []string{
	"Check billing at " + QuotaRemediationURL,
	"Upgrade your plan for Veo access",
	"Wait for quota reset if on free tier",
}

type classifier struct {
	store  *storage.FileStore
	logger infra.Logger
	now    func() time.Time
}

// classify maps an error from any stage to the error returned to the caller
// and the terminal state. A 429 from the provider writes one diagnostic record.
// cancelled reports whether the caller's context ended; a deadline hit inside
// the provider call while the caller is still waiting is a provider failure.
func (c *classifier) classify(ctx context.Context, prompt string, err error, cancelled bool) (domain.GenerationState, error) {
	var providerErr *ProviderError
	switch {
	case errors.As(err, &providerErr) && providerErr.IsQuota():
		return domain.StateFailedQuota, c.quotaExceeded(ctx, prompt, err)
	case cancelled:
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", context.Cause(ctx), err)
		}
		return domain.StateFailedOther, err
	case errors.Is(err, domain.ErrGenerationTimeout):
		return domain.StateTimedOut, err
	case errors.Is(err, domain.ErrMissingArtifact), errors.Is(err, domain.ErrStorageWrite):
		return domain.StateExtractionFailed, err
	case errors.Is(err, domain.ErrConfiguration),
		errors.Is(err, domain.ErrInvalidPrompt):
		return domain.StateFailedOther, err
	default:
		return domain.StateFailedOther, &GenerationFailedError{Cause: err}
	}
}

func (c *classifier) quotaExceeded(ctx context.Context, prompt string, cause error) error {
	now := c.now().UTC()
	id := quotaRecordID(now)
	record := domain.DiagnosticRecord{
		Status:         domain.RecordStatusQuotaExceeded,
		Message:        quotaMessage,
		OriginalPrompt: prompt,
		Timestamp:      now,
		NextSteps:      append([]string(nil), quotaNextSteps...),
		Note:           quotaNote,
	}
	qerr := &QuotaExceededError{
		RecordID:  id,
		NextSteps: record.NextSteps,
		Cause:     cause,
	}
	// The record is written even when the caller already went away.
	if _, err := c.store.WriteJSON(context.WithoutCancel(ctx), quotaInfoKey(id), record); err != nil {
		c.logger.Error().Err(err).Str("record_id", id).Msg("videogen: failed to write quota record")
		qerr.RecordID = ""
		return qerr
	}
	c.logger.Warn().
		Err(cause).
		Str("record_id", id).
		Str("billing", QuotaRemediationURL).
		Msg("videogen: provider quota exceeded")
	return qerr
}

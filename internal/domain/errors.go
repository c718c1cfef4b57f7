package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidPrompt     = errors.New("invalid prompt")
	ErrConfiguration     = errors.New("configuration error")
	ErrQuotaExceeded     = errors.New("quota exceeded")
	ErrProviderFailure   = errors.New("provider failure")
	ErrGenerationTimeout = errors.New("generation timed out")
	ErrMissingArtifact   = errors.New("generation finished without artifact")
	ErrStorageWrite      = errors.New("storage write failed")
	ErrLedgerDisabled    = errors.New("generation ledger disabled")
)

package domain

import "time"

// GenerationState enumerates the lifecycle of a single video generation run.
type GenerationState string

const (
	StateSubmitted        GenerationState = "SUBMITTED"
	StatePolling          GenerationState = "POLLING"
	StateCompleted        GenerationState = "COMPLETED"
	StateTimedOut         GenerationState = "TIMED_OUT"
	StateFailedQuota      GenerationState = "FAILED_QUOTA"
	StateFailedOther      GenerationState = "FAILED_OTHER"
	StateExtracting       GenerationState = "EXTRACTING"
	StateMaterialized     GenerationState = "MATERIALIZED"
	StateExtractionFailed GenerationState = "EXTRACTION_FAILED"
)

// IsTerminal reports whether no further transition can follow the state.
func (s GenerationState) IsTerminal() bool {
	switch s {
	case StateMaterialized, StateTimedOut, StateFailedQuota, StateFailedOther, StateExtractionFailed:
		return true
	default:
		return false
	}
}

// RecordStatus is the status persisted in sidecar records.
type RecordStatus string

const (
	RecordStatusCompleted     RecordStatus = "completed"
	RecordStatusQuotaExceeded RecordStatus = "quota_exceeded"
)

// ArtifactRecord describes a materialized video and is stored as <id>-info.json.
type ArtifactRecord struct {
	ID             string       `json:"id"`
	OriginalPrompt string       `json:"originalPrompt"`
	GeneratedAt    time.Time    `json:"generatedAt"`
	GeneratedBy    string       `json:"generatedBy"`
	Format         string       `json:"format"`
	Status         RecordStatus `json:"status"`
	Type           string       `json:"type"`
	FilePath       string       `json:"filePath,omitempty"`
	FileSize       int64        `json:"fileSize,omitempty"`
	OperationName  string       `json:"operationName,omitempty"`
	Model          string       `json:"model"`
}

// DiagnosticRecord replaces an ArtifactRecord when the provider rejected the
// job for quota reasons. Stored as <id>-quota-info.json.
type DiagnosticRecord struct {
	Status         RecordStatus `json:"status"`
	Message        string       `json:"message"`
	OriginalPrompt string       `json:"originalPrompt"`
	Timestamp      time.Time    `json:"timestamp"`
	NextSteps      []string     `json:"nextSteps"`
	Note           string       `json:"note"`
}

// GenerationEntry is one terminal outcome as kept in the generation ledger.
type GenerationEntry struct {
	ID            string          `json:"id"`
	Prompt        string          `json:"prompt"`
	State         GenerationState `json:"state"`
	Status        string          `json:"status,omitempty"`
	StorageKey    string          `json:"storageKey,omitempty"`
	FileSize      int64           `json:"fileSize,omitempty"`
	OperationName string          `json:"operationName,omitempty"`
	Model         string          `json:"model,omitempty"`
	ErrorMessage  string          `json:"errorMessage,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

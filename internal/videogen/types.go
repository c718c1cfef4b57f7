// Package videogen drives a long-running video generation operation from
// submission to a materialized file in storage.
//
// One call to Service.Generate runs the whole chain on the caller's goroutine:
// submit, poll at a fixed interval up to a bounded number of attempts, extract
// the generated video reference, download it next to a JSON sidecar and return
// the public URL. Provider errors are classified at the end of the chain; a
// rate/quota rejection (HTTP 429) leaves a diagnostic sidecar behind.
package videogen

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"padhai/internal/domain"
)

// VideoRef points at a generated video. Providers return either a download
// URI or the encoded bytes inline.
type VideoRef struct {
	URI      string
	MimeType string
	Data     []byte
	// InlineErr is set when the provider sent inline bytes that could not
	// be decoded.
	InlineErr error
}

// OperationResult is the payload of a finished operation.
type OperationResult struct {
	Videos []VideoRef
}

// Job is the provider's latest snapshot of one in-flight operation. Each
// refresh replaces it as a whole.
type Job struct {
	OperationName string
	Done          bool
	Result        *OperationResult
	// Err is set when the provider finished the operation with a failure.
	Err *ProviderError
}

// Provider is the video generation backend.
type Provider interface {
	HasCredential() bool
	Submit(ctx context.Context, model, prompt string) (*Job, error)
	Refresh(ctx context.Context, job *Job) (*Job, error)
	Download(ctx context.Context, ref VideoRef, w io.Writer) error
}

// Recorder receives one entry per terminal generation outcome.
type Recorder interface {
	Record(ctx context.Context, entry domain.GenerationEntry) error
}

// PollConfig bounds the wait for an operation to finish.
type PollConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

const (
	DefaultPollInterval    = 10 * time.Second
	DefaultMaxPollAttempts = 60
)

// DefaultPollConfig waits up to ten minutes in ten second steps.
func DefaultPollConfig() PollConfig {
	return PollConfig{Interval: DefaultPollInterval, MaxAttempts: DefaultMaxPollAttempts}
}

// ProviderError is the tagged error every provider call returns for a non-2xx
// answer or a failed operation.
type ProviderError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("provider status %d (%s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("provider status %d: %s", e.StatusCode, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return domain.ErrProviderFailure
}

// IsQuota reports whether the provider rejected the call for rate or quota reasons.
func (e *ProviderError) IsQuota() bool {
	return e != nil && e.StatusCode == http.StatusTooManyRequests
}

// QuotaRemediationURL is where users check billing and quota for the API key.
const QuotaRemediationURL = "https://aistudio.google.com/apikey"

// QuotaExceededError is returned when the provider answered 429. RecordID names
// the diagnostic sidecar written for the failure.
type QuotaExceededError struct {
	RecordID  string
	NextSteps []string
	Cause     error
}

func (e *QuotaExceededError) Error() string {
	return "Veo quota exceeded. API integration is working! Check billing at: " + QuotaRemediationURL
}

func (e *QuotaExceededError) Unwrap() []error {
	return []error{domain.ErrQuotaExceeded, e.Cause}
}

// GenerationFailedError wraps any provider or network failure that has no
// dedicated classification.
type GenerationFailedError struct {
	Cause error
}

func (e *GenerationFailedError) Error() string {
	return "video generation failed: " + e.Cause.Error()
}

func (e *GenerationFailedError) Unwrap() []error {
	return []error{domain.ErrProviderFailure, e.Cause}
}

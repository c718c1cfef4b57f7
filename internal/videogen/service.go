package videogen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"padhai/internal/domain"
	"padhai/internal/infra"
	"padhai/internal/storage"
)

const (
	DefaultModel       = "veo-3.0-generate-preview"
	DefaultGeneratedBy = "Veo 3 API"

	recordTimeout = 5 * time.Second
)

// Options configures a Service. Provider and Store are required.
type Options struct {
	Provider      Provider
	Store         *storage.FileStore
	Recorder      Recorder
	Logger        *infra.Logger
	Model         string
	GeneratedBy   string
	PublicBaseURL string
	Poll          PollConfig

	// Test hooks.
	Sleep  Sleeper
	Now    func() time.Time
	Suffix func() string
}

// Service generates videos for prompts. It holds no per-request state and is
// safe for concurrent use.
type Service struct {
	provider     Provider
	recorder     Recorder
	logger       infra.Logger
	model        string
	now          func() time.Time
	suffix       func() string
	poller       *poller
	materializer *materializer
	classifier   *classifier
}

// Result is what a successful generation hands back to the HTTP layer.
type Result struct {
	ID       string
	URL      string
	Record   domain.ArtifactRecord
	Attempts int
}

func NewService(opts Options) (*Service, error) {
	if opts.Provider == nil {
		return nil, errors.New("videogen: provider is required")
	}
	if opts.Store == nil {
		return nil, errors.New("videogen: store is required")
	}
	poll := opts.Poll
	if poll.Interval <= 0 {
		poll.Interval = DefaultPollInterval
	}
	if poll.MaxAttempts <= 0 {
		poll.MaxAttempts = DefaultMaxPollAttempts
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	generatedBy := opts.GeneratedBy
	if generatedBy == "" {
		generatedBy = DefaultGeneratedBy
	}
	logger := infra.NopLogger()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	suffix := opts.Suffix
	if suffix == nil {
		suffix = randomSuffix
	}
	baseURL := strings.TrimRight(opts.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}

	return &Service{
		provider: opts.Provider,
		recorder: opts.Recorder,
		logger:   logger,
		model:    model,
		now:      now,
		suffix:   suffix,
		poller: &poller{
			provider: opts.Provider,
			cfg:      poll,
			sleep:    sleep,
			logger:   logger,
		},
		materializer: &materializer{
			provider:      opts.Provider,
			store:         opts.Store,
			logger:        logger,
			now:           now,
			suffix:        suffix,
			publicBaseURL: baseURL,
			model:         model,
			generatedBy:   generatedBy,
		},
		classifier: &classifier{
			store:  opts.Store,
			logger: logger,
			now:    now,
		},
	}, nil
}

// Model returns the video model every job is submitted to.
func (s *Service) Model() string {
	return s.model
}

// Generate submits prompt, waits for the operation and materializes the video.
// The wait is bound to ctx; cancelling it abandons the operation and leaves
// nothing in storage.
func (s *Service) Generate(ctx context.Context, prompt string) (*Result, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is empty", domain.ErrInvalidPrompt)
	}
	if !s.provider.HasCredential() {
		return nil, fmt.Errorf("%w: gemini api key is not configured", domain.ErrConfiguration)
	}

	log := s.logger.With().Str("model", s.model).Logger()
	log.Info().Str("state", string(domain.StateSubmitted)).Int("prompt_len", len(prompt)).Msg("videogen: submitting")

	job, err := s.provider.Submit(ctx, s.model, prompt)
	if err != nil {
		return nil, s.fail(ctx, log, prompt, "", err)
	}
	if job == nil {
		return nil, s.fail(ctx, log, prompt, "", errors.New("provider returned no operation"))
	}
	log = log.With().Str("operation", job.OperationName).Logger()
	log.Info().Str("state", string(domain.StatePolling)).Bool("done", job.Done).Msg("videogen: operation started")

	job, attempts, err := s.poller.wait(ctx, job)
	if err != nil {
		return nil, s.fail(ctx, log, prompt, job.OperationName, err)
	}
	if job.Err != nil {
		return nil, s.fail(ctx, log, prompt, job.OperationName, job.Err)
	}
	log.Info().Str("state", string(domain.StateCompleted)).Int("attempts", attempts).Msg("videogen: operation finished")

	log.Debug().Str("state", string(domain.StateExtracting)).Msg("videogen: extracting artifact")
	ref, err := extractArtifact(job)
	if err != nil {
		return nil, s.fail(ctx, log, prompt, job.OperationName, err)
	}
	out, err := s.materializer.materialize(ctx, prompt, job.OperationName, ref)
	if err != nil {
		return nil, s.fail(ctx, log, prompt, job.OperationName, err)
	}

	log.Info().
		Str("state", string(domain.StateMaterialized)).
		Str("video_id", out.record.ID).
		Str("url", out.url).
		Msg("videogen: generation completed")

	s.record(ctx, log, domain.GenerationEntry{
		ID:            out.record.ID,
		Prompt:        prompt,
		State:         domain.StateMaterialized,
		Status:        string(out.record.Status),
		StorageKey:    out.key,
		FileSize:      out.record.FileSize,
		OperationName: job.OperationName,
		Model:         s.model,
	})

	return &Result{
		ID:       out.record.ID,
		URL:      out.url,
		Record:   out.record,
		Attempts: attempts,
	}, nil
}

func (s *Service) fail(ctx context.Context, log infra.Logger, prompt, operation string, cause error) error {
	cancelled := ctx.Err() != nil
	state, err := s.classifier.classify(ctx, prompt, cause, cancelled)
	log.Error().Err(cause).Str("state", string(state)).Bool("cancelled", cancelled).Msg("videogen: generation failed")

	var quotaErr *QuotaExceededError
	isQuota := errors.As(err, &quotaErr)
	if cancelled && !isQuota {
		return err
	}
	entry := domain.GenerationEntry{
		Prompt:        prompt,
		State:         state,
		OperationName: operation,
		Model:         s.model,
		ErrorMessage:  cause.Error(),
	}
	if isQuota && quotaErr.RecordID != "" {
		// Quota records share one sidecar per millisecond; ledger rows stay
		// distinct.
		entry.ID = quotaErr.RecordID + "-" + s.suffix()
		entry.Status = string(domain.RecordStatusQuotaExceeded)
		entry.StorageKey = quotaInfoKey(quotaErr.RecordID)
	} else {
		entry.ID = artifactID(s.now().UTC(), s.suffix)
	}
	s.record(ctx, log, entry)
	return err
}

func (s *Service) record(ctx context.Context, log infra.Logger, entry domain.GenerationEntry) {
	if s.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := s.recorder.Record(ctx, entry); err != nil {
		log.Warn().Err(err).Str("entry_id", entry.ID).Msg("videogen: failed to record generation")
	}
}

package prompt

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"padhai/internal/infra"
	"padhai/internal/providers/genai"
)

const (
	DefaultTextModel = "gemini-2.0-flash"
	maxPromptWords   = 250
)

type GeminiOptions struct {
	Client   *genai.Client
	Model    string
	Fallback Expander
	Logger   *infra.Logger
	// OnFallback is called with the reason whenever the static path answers.
	OnFallback func(reason string, err error)
}

// GeminiExpander asks a Gemini text model to expand ideas and falls back to
// another Expander when the model is unavailable.
type GeminiExpander struct {
	client     *genai.Client
	model      string
	fallback   Expander
	logger     infra.Logger
	onFallback func(reason string, err error)
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature    float64 `json:"temperature,omitempty"`
	CandidateCount int     `json:"candidateCount,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func NewGeminiExpander(opts GeminiOptions) (*GeminiExpander, error) {
	if opts.Client == nil {
		return nil, errors.New("prompt: gemini client is required")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultTextModel
	}
	fallback := opts.Fallback
	if fallback == nil {
		fallback = NewStaticExpander()
	}
	logger := infra.NopLogger()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &GeminiExpander{
		client:     opts.Client,
		model:      model,
		fallback:   fallback,
		logger:     logger,
		onFallback: opts.OnFallback,
	}, nil
}

func (g *GeminiExpander) Expand(ctx context.Context, req ExpandRequest) (*Expansion, error) {
	idea := normalizeIdea(req.Idea)
	if idea == "" {
		return nil, errors.New("prompt: idea is empty")
	}
	req.Idea = idea
	if !g.client.HasAPIKey() {
		return g.useFallback(ctx, req, "missing_api_key", nil)
	}

	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: buildExpandPrompt(req)}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:    0.8,
			CandidateCount: 1,
		},
	}
	var out geminiResponse
	path := fmt.Sprintf("models/%s:generateContent", url.PathEscape(g.model))
	if err := g.client.Post(ctx, path, payload, &out); err != nil {
		var apiErr *genai.APIError
		if errors.As(err, &apiErr) {
			return g.useFallback(ctx, req, "http_status", err)
		}
		return g.useFallback(ctx, req, "http_request", err)
	}
	text := cleanModelText(extractText(out))
	if text == "" {
		return g.useFallback(ctx, req, "empty_response", nil)
	}
	return &Expansion{
		Prompt:   truncateWords(text, maxPromptWords),
		Provider: geminiProviderName,
	}, nil
}

func (g *GeminiExpander) useFallback(ctx context.Context, req ExpandRequest, reason string, cause error) (*Expansion, error) {
	g.logger.Warn().Err(cause).Str("reason", reason).Str("model", g.model).Msg("prompt: gemini expansion unavailable, using fallback")
	if g.onFallback != nil {
		g.onFallback(reason, cause)
	}
	res, err := g.fallback.Expand(ctx, req)
	if res != nil {
		res.FallbackReason = reason
	}
	return res, err
}

func extractText(resp geminiResponse) string {
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text
			}
		}
	}
	return ""
}

const expandInstruction = `You are a creative director and cinematographer. Take this general idea: %[1]q and expand it into a rich, detailed cinematic video prompt that would be perfect for AI video generation.

The expanded prompt should include:
- Visual style and cinematography details (camera angles, lighting, composition)
- Atmosphere and mood
- Color palette suggestions
- Movement and action descriptions
- Audio/ambient elements that would enhance the scene
- Duration suggestions if relevant

Make it vivid, specific, and cinematic. Keep it under 200 words but pack it with creative details. Answer with the prompt text only, in English.%[2]s

Example transformation:
Input: "a beach"
Output: %[3]q

Now expand this idea: %[1]q`

func buildExpandPrompt(req ExpandRequest) string {
	var localeHint string
	if req.Locale != "" && req.Locale != "en" {
		localeHint = fmt.Sprintf(" The idea may be written in locale %q.", req.Locale)
	}
	return fmt.Sprintf(expandInstruction, req.Idea, localeHint, staticPrompts["a beach"])
}

var _ Expander = (*GeminiExpander)(nil)

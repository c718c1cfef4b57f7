package prompt

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	staticProviderName = "static"
	geminiProviderName = "gemini"
)

// ExpandRequest carries a short idea to turn into a cinematic video prompt.
type ExpandRequest struct {
	Idea   string
	Locale string
}

// Expansion is the prompt sent to the video model.
type Expansion struct {
	Prompt         string `json:"prompt"`
	Provider       string `json:"provider"`
	FallbackReason string `json:"fallbackReason,omitempty"`
}

type Expander interface {
	Expand(ctx context.Context, req ExpandRequest) (*Expansion, error)
}

// StaticExpander answers from built-in templates. It never fails for a
// non-empty idea.
type StaticExpander struct{}

func NewStaticExpander() *StaticExpander {
	return &StaticExpander{}
}

var staticPrompts = map[string]string{
	"a beach":       "A cinematic aerial shot of a pristine tropical beach at golden hour, crystal-clear turquoise waters gently lapping against white sand. Camera slowly pans from high above, revealing palm trees swaying in the warm breeze. Warm, golden sunlight creates dramatic shadows and highlights. A few surfers ride perfect waves in the distance. The scene transitions to a low-angle shot of waves crashing on the shore in slow motion, with particles of sand and water droplets catching the light. Ambient sounds of ocean waves, seabirds, and distant laughter. Color palette: warm golds, deep blues, and pristine whites. Duration: 10-15 seconds of pure tropical paradise.",
	"a sci-fi city": "A sweeping aerial view of a futuristic metropolis at dusk, with towering crystalline skyscrapers piercing through neon-lit clouds. Flying vehicles streak between buildings leaving trails of light. Holographic advertisements float in mid-air casting colorful reflections on glass surfaces. The camera glides through the urban canyon, revealing bustling walkways with people in sleek clothing. Atmospheric lighting shifts from cool blues to warm oranges as artificial suns set behind the skyline. Electronic ambient music pulses with the rhythm of the city. Ultra-modern architecture with impossible geometries defies gravity. Duration: 12-20 seconds of cyberpunk magnificence.",
}

const genericTemplate = "A cinematic view of %[1]s with dramatic lighting, professional camera work, and rich visual details. The scene unfolds with smooth camera movements, capturing the essence and beauty of %[1]s in stunning detail with atmospheric elements that enhance the overall mood and composition."

func (s *StaticExpander) Expand(ctx context.Context, req ExpandRequest) (*Expansion, error) {
	idea := normalizeIdea(req.Idea)
	if idea == "" {
		return nil, fmt.Errorf("prompt: idea is empty")
	}
	lower := cases.Lower(language.Und).String(idea)
	if p, ok := staticPrompts[lower]; ok {
		return &Expansion{Prompt: p, Provider: staticProviderName}, nil
	}
	return &Expansion{Prompt: fmt.Sprintf(genericTemplate, lower), Provider: staticProviderName}, nil
}

// Title renders an idea for display, e.g. "a beach" -> "A Beach".
func Title(idea string) string {
	return cases.Title(language.Und).String(normalizeIdea(idea))
}

func normalizeIdea(idea string) string {
	return strings.Join(strings.Fields(idea), " ")
}

var _ Expander = (*StaticExpander)(nil)

package jsoncfg

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// IdeaJSON is the request contract for video generation.
type IdeaJSON struct {
	Idea   string `json:"idea"`
	Locale string `json:"locale"`
}

const (
	// DefaultIdeaLocale is applied when neither the payload nor the request carries a locale.
	DefaultIdeaLocale = "en"
	// MaxIdeaLength bounds the idea text forwarded to the prompt model.
	MaxIdeaLength = 500
)

var supportedLocales = map[string]struct{}{
	"en": {},
	"id": {},
	"hi": {},
}

// Normalize trims the idea and fills the locale from the request preference.
func (p *IdeaJSON) Normalize(preferredLocale string) {
	if p == nil {
		return
	}
	p.Idea = strings.Join(strings.Fields(p.Idea), " ")
	p.Locale = strings.ToLower(strings.TrimSpace(p.Locale))
	if _, ok := supportedLocales[p.Locale]; !ok {
		p.Locale = ""
	}
	if p.Locale == "" {
		if _, ok := supportedLocales[preferredLocale]; ok {
			p.Locale = preferredLocale
		} else {
			p.Locale = DefaultIdeaLocale
		}
	}
}

// Validate ensures the idea can be expanded into a prompt.
func (p IdeaJSON) Validate() error {
	if strings.TrimSpace(p.Idea) == "" {
		return fmt.Errorf("idea is required")
	}
	if utf8.RuneCountInString(p.Idea) > MaxIdeaLength {
		return fmt.Errorf("idea must be at most %d characters", MaxIdeaLength)
	}
	return nil
}

func MustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("json marshal: %w", err))
	}
	return b
}

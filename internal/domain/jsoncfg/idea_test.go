package jsoncfg

import (
	"strings"
	"testing"
)

func TestIdeaJSONNormalizeDefaults(t *testing.T) {
	p := &IdeaJSON{Idea: "  a   beach \n"}
	p.Normalize("")

	if p.Idea != "a beach" {
		t.Fatalf("Idea = %q, want %q", p.Idea, "a beach")
	}
	if p.Locale != DefaultIdeaLocale {
		t.Fatalf("Locale = %q, want %q", p.Locale, DefaultIdeaLocale)
	}
}

func TestIdeaJSONNormalizePreferredLocale(t *testing.T) {
	p := &IdeaJSON{Idea: "a beach", Locale: "fr"}
	p.Normalize("id")
	if p.Locale != "id" {
		t.Fatalf("Locale = %q, want %q", p.Locale, "id")
	}

	explicit := &IdeaJSON{Idea: "a beach", Locale: " HI "}
	explicit.Normalize("id")
	if explicit.Locale != "hi" {
		t.Fatalf("explicit Locale = %q, want %q", explicit.Locale, "hi")
	}
}

func TestIdeaJSONValidate(t *testing.T) {
	tests := []struct {
		name    string
		idea    string
		wantErr bool
	}{
		{name: "valid", idea: "a sci-fi city"},
		{name: "blank", idea: "   ", wantErr: true},
		{name: "too long", idea: strings.Repeat("a", MaxIdeaLength+1), wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := IdeaJSON{Idea: tc.idea}.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

package prompt

import (
	"context"
	"strings"
	"testing"
)

func TestStaticExpander(t *testing.T) {
	s := NewStaticExpander()
	tests := []struct {
		idea string
		want string
	}{
		{idea: "a beach", want: staticPrompts["a beach"]},
		{idea: "  A Sci-Fi   City ", want: staticPrompts["a sci-fi city"]},
	}
	for _, tc := range tests {
		res, err := s.Expand(context.Background(), ExpandRequest{Idea: tc.idea})
		if err != nil {
			t.Fatalf("Expand(%q): %v", tc.idea, err)
		}
		if res.Prompt != tc.want || res.Provider != staticProviderName {
			t.Fatalf("Expand(%q) = %+v", tc.idea, res)
		}
	}

	res, err := s.Expand(context.Background(), ExpandRequest{Idea: "Mountain Sunrise"})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if !strings.HasPrefix(res.Prompt, "A cinematic view of mountain sunrise") || strings.Count(res.Prompt, "mountain sunrise") != 2 {
		t.Fatalf("generic prompt = %q", res.Prompt)
	}

	if _, err := s.Expand(context.Background(), ExpandRequest{Idea: " "}); err == nil {
		t.Fatal("expected error for empty idea")
	}
}

func TestTitle(t *testing.T) {
	if got := Title("a  beach   city"); got != "A Beach City" {
		t.Fatalf("Title = %q", got)
	}
}

func TestCleanModelText(t *testing.T) {
	tests := map[string]string{
		"plain":                  "plain",
		"```\nfenced\n```":       "fenced",
		"```text\nlabelled\n```": "labelled",
		"\"quoted prompt\"":      "quoted prompt",
		"  spaced out  ":         "spaced out",
	}
	for in, want := range tests {
		if got := cleanModelText(in); got != want {
			t.Errorf("cleanModelText(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTruncateWords(t *testing.T) {
	if got := truncateWords("one two three four", 2); got != "one two" {
		t.Fatalf("truncateWords = %q", got)
	}
	if got := truncateWords("short", 5); got != "short" {
		t.Fatalf("truncateWords = %q", got)
	}
}

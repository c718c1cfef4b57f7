package prompt

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"padhai/internal/providers/genai"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

type fakeExpander struct {
	expand func(context.Context, ExpandRequest) (*Expansion, error)
}

func (f fakeExpander) Expand(ctx context.Context, req ExpandRequest) (*Expansion, error) {
	if f.expand != nil {
		return f.expand(ctx, req)
	}
	return nil, errors.New("expand not implemented")
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newExpander(t *testing.T, key string, rt roundTripFunc, opts GeminiOptions) *GeminiExpander {
	t.Helper()
	client, err := genai.NewClient(genai.Options{APIKey: key, HTTPClient: &http.Client{Transport: rt}})
	if err != nil {
		t.Fatalf("genai.NewClient: %v", err)
	}
	opts.Client = client
	expander, err := NewGeminiExpander(opts)
	if err != nil {
		t.Fatalf("NewGeminiExpander: %v", err)
	}
	return expander
}

func TestGeminiExpanderSuccess(t *testing.T) {
	expander := newExpander(t, "dummy", func(r *http.Request) (*http.Response, error) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.0-flash:generateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if !strings.Contains(body.Contents[0].Parts[0].Text, `"a quiet forest"`) {
			t.Errorf("instruction does not quote the idea")
		}
		return jsonResponse(200, `{"candidates":[{"content":{"role":"model","parts":[{"text":"`+"```"+`\nA slow dolly through a misty forest.\n`+"```"+`"}]}}]}`), nil
	}, GeminiOptions{})

	res, err := expander.Expand(context.Background(), ExpandRequest{Idea: "  a quiet   forest "})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if res.Provider != geminiProviderName || res.FallbackReason != "" {
		t.Fatalf("res = %+v", res)
	}
	if res.Prompt != "A slow dolly through a misty forest." {
		t.Fatalf("Prompt = %q", res.Prompt)
	}
}

func TestGeminiExpanderFallbackReasons(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		rt     roundTripFunc
		reason string
	}{
		{
			name:   "transport",
			key:    "dummy",
			rt:     func(*http.Request) (*http.Response, error) { return nil, errors.New("boom") },
			reason: "http_request",
		},
		{
			name: "status",
			key:  "dummy",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(403, `{"error":{"message":"denied"}}`), nil
			},
			reason: "http_status",
		},
		{
			name:   "empty",
			key:    "dummy",
			rt:     func(*http.Request) (*http.Response, error) { return jsonResponse(200, `{"candidates":[]}`), nil },
			reason: "empty_response",
		},
		{
			name: "no key",
			rt: func(*http.Request) (*http.Response, error) {
				t.Error("no request expected without an api key")
				return nil, errors.New("unexpected")
			},
			reason: "missing_api_key",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured string
			expander := newExpander(t, tc.key, tc.rt, GeminiOptions{
				OnFallback: func(reason string, err error) { captured = reason },
			})
			res, err := expander.Expand(context.Background(), ExpandRequest{Idea: "A Beach"})
			if err != nil {
				t.Fatalf("Expand: %v", err)
			}
			if res.Provider != staticProviderName || res.FallbackReason != tc.reason || captured != tc.reason {
				t.Fatalf("res = %+v captured = %q, want reason %q", res, captured, tc.reason)
			}
			if res.Prompt != staticPrompts["a beach"] {
				t.Fatalf("Prompt = %q", res.Prompt)
			}
		})
	}
}

func TestGeminiExpanderChainedFallback(t *testing.T) {
	fallback := fakeExpander{expand: func(ctx context.Context, req ExpandRequest) (*Expansion, error) {
		return &Expansion{Prompt: "from chain", Provider: "chain"}, nil
	}}
	expander := newExpander(t, "dummy", func(*http.Request) (*http.Response, error) {
		return nil, errors.New("boom")
	}, GeminiOptions{Fallback: fallback})

	res, err := expander.Expand(context.Background(), ExpandRequest{Idea: "x"})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if res.Provider != "chain" || res.FallbackReason == "" {
		t.Fatalf("res = %+v", res)
	}
}

func TestGeminiExpanderRejectsEmptyIdea(t *testing.T) {
	expander := newExpander(t, "dummy", func(*http.Request) (*http.Response, error) {
		t.Error("no request expected")
		return nil, errors.New("unexpected")
	}, GeminiOptions{})
	if _, err := expander.Expand(context.Background(), ExpandRequest{Idea: "   "}); err == nil {
		t.Fatal("expected error for empty idea")
	}
}

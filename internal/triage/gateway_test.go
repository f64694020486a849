package triage

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/linnemanlabs/go-core/log"
)

// mockProvider returns a preconfigured response or error.
type mockProvider struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int
	last  *Request
}

func (m *mockProvider) Complete(_ context.Context, req *Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.last = req
	if m.err != nil {
		return nil, m.err
	}
	return &Response{
		Text:  m.text,
		Usage: Usage{InputTokens: 100, OutputTokens: 50},
	}, nil
}

func TestAnalyze_WellFormedOutput(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{
		text: `{"summary":"login broken","priority":"high","helpfulNotes":"check the session store","relatedSkills":["React","Node.js"]}`,
	}
	g := NewGateway(provider, log.Nop(), GatewayHooks{})

	got := g.Analyze(context.Background(), "Cannot log in", "The login page errors out")

	if got.Priority != "high" {
		t.Errorf("Priority = %q, want high", got.Priority)
	}
	if got.HelpfulNotes != "check the session store" {
		t.Errorf("HelpfulNotes = %q", got.HelpfulNotes)
	}
	if len(got.RelatedSkills) != 2 || got.RelatedSkills[0] != "React" {
		t.Errorf("RelatedSkills = %v, want [React Node.js]", got.RelatedSkills)
	}
}

func TestAnalyze_PromptContainsTicketText(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{text: `{"priority":"low"}`}
	g := NewGateway(provider, log.Nop(), GatewayHooks{})

	g.Analyze(context.Background(), "Payment fails", "Card declined on checkout")

	if provider.last == nil {
		t.Fatal("provider was not called")
	}
	for _, want := range []string{"Payment fails", "Card declined on checkout"} {
		if !strings.Contains(provider.last.Prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if provider.last.System == "" {
		t.Error("expected a system prompt")
	}
}

func TestAnalyze_ProviderErrorFallsBack(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{err: errors.New("connection refused")}
	g := NewGateway(provider, log.Nop(), GatewayHooks{})

	got := g.Analyze(context.Background(), "t", "a long description of the problem")

	if got.Priority != "medium" {
		t.Errorf("Priority = %q, want medium", got.Priority)
	}
	if got.HelpfulNotes != FallbackNotes {
		t.Errorf("HelpfulNotes = %q, want %q", got.HelpfulNotes, FallbackNotes)
	}
	if len(got.RelatedSkills) != 0 {
		t.Errorf("RelatedSkills = %v, want empty", got.RelatedSkills)
	}
	if got.Summary != "a long description of the problem" {
		t.Errorf("Summary = %q, want the description", got.Summary)
	}
}

func TestAnalyze_MalformedOutputFallsBack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{"markdown fence", "```json\n{\"priority\":\"high\"}\n```"},
		{"leading prose", `Sure! Here is the JSON: {"priority":"high"}`},
		{"trailing prose", `{"priority":"high"} Hope that helps!`},
		{"two objects", `{"priority":"high"}{"priority":"low"}`},
		{"bare string", `"high"`},
		{"array", `[{"priority":"high"}]`},
		{"truncated", `{"priority":"hi`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := NewGateway(&mockProvider{text: tt.text}, log.Nop(), GatewayHooks{})
			got := g.Analyze(context.Background(), "t", "desc")

			if got.HelpfulNotes != FallbackNotes {
				t.Errorf("HelpfulNotes = %q, want fallback for %q", got.HelpfulNotes, tt.text)
			}
			if got.Priority != "medium" {
				t.Errorf("Priority = %q, want medium", got.Priority)
			}
		})
	}
}

func TestAnalyze_HooksObserveOutcome(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var outcomes []string
	hooks := GatewayHooks{
		OnAnalyze: func(outcome string, _ float64, _, _ int) {
			mu.Lock()
			defer mu.Unlock()
			outcomes = append(outcomes, outcome)
		},
	}

	ok := NewGateway(&mockProvider{text: `{"priority":"low"}`}, log.Nop(), hooks)
	ok.Analyze(context.Background(), "t", "d")

	bad := NewGateway(&mockProvider{err: errors.New("boom")}, log.Nop(), hooks)
	bad.Analyze(context.Background(), "t", "d")

	mu.Lock()
	defer mu.Unlock()
	if len(outcomes) != 2 || outcomes[0] != "ok" || outcomes[1] != "fallback" {
		t.Errorf("outcomes = %v, want [ok fallback]", outcomes)
	}
}

func TestFallback_SummaryTruncation(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 500)
	got := Fallback(long)
	if len(got.Summary) != 140 {
		t.Errorf("Summary length = %d, want 140", len(got.Summary))
	}

	empty := Fallback("")
	if empty.Summary != "No summary available" {
		t.Errorf("Summary = %q, want placeholder", empty.Summary)
	}
}

func TestParseStrict_AcceptsSingleObject(t *testing.T) {
	t.Parallel()

	r, err := parseStrict(` {"summary":"s","priority":"low","helpfulNotes":"n","relatedSkills":["go"]} `)
	if err != nil {
		t.Fatalf("parseStrict: %v", err)
	}
	if r.Priority != "low" || r.Summary != "s" {
		t.Errorf("parsed = %+v", r)
	}

	// unknown fields from the model are tolerated
	if _, err := parseStrict(`{"priority":"low","confidence":0.9}`); err != nil {
		t.Errorf("unknown fields should parse, got %v", err)
	}
}

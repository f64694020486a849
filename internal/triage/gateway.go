package triage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/linnemanlabs/go-core/log"
)

const (
	// analyzeTimeout bounds the provider call so a stuck model backend
	// cannot hold a workflow run indefinitely.
	analyzeTimeout = 60 * time.Second

	responseTokens = 1024
)

// GatewayHooks are optional observation callbacks, wired to Prometheus by
// main. Outcome is "ok" or "fallback".
type GatewayHooks struct {
	OnAnalyze func(outcome string, seconds float64, tokensIn, tokensOut int)
}

// Gateway wraps the LLM provider behind the analyze contract: ticket text
// in, triage result out, never an error. Call failures and output that
// fails strict parsing both degrade to the canned fallback result.
type Gateway struct {
	provider Provider
	logger   log.Logger
	hooks    GatewayHooks
	timeout  time.Duration
}

// NewGateway creates an analysis gateway around the given provider.
func NewGateway(provider Provider, logger log.Logger, hooks GatewayHooks) *Gateway {
	if logger == nil {
		logger = log.Nop()
	}
	return &Gateway{
		provider: provider,
		logger:   logger,
		hooks:    hooks,
		timeout:  analyzeTimeout,
	}
}

// Analyze classifies a ticket. It always returns a usable result; the
// fallback path is taken on provider errors and on output that is not a
// single well-formed JSON object.
func (g *Gateway) Analyze(ctx context.Context, title, description string) *Result {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.provider.Complete(ctx, &Request{
		System:    systemPrompt,
		Prompt:    buildPrompt(title, description),
		MaxTokens: responseTokens,
	})
	if err != nil {
		g.logger.Error(ctx, err, "analysis call failed, using fallback")
		g.observe("fallback", start, 0, 0)
		return Fallback(description)
	}

	result, err := parseStrict(resp.Text)
	if err != nil {
		g.logger.Warn(ctx, "analysis output failed strict parsing, using fallback",
			"error", err.Error(),
			"output_len", len(resp.Text),
		)
		g.observe("fallback", start, resp.Usage.InputTokens, resp.Usage.OutputTokens)
		return Fallback(description)
	}

	g.logger.Info(ctx, "ticket analyzed",
		"priority", result.Priority,
		"skills", len(result.RelatedSkills),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)
	g.observe("ok", start, resp.Usage.InputTokens, resp.Usage.OutputTokens)
	return result
}

func (g *Gateway) observe(outcome string, start time.Time, tokensIn, tokensOut int) {
	if g.hooks.OnAnalyze != nil {
		g.hooks.OnAnalyze(outcome, time.Since(start).Seconds(), tokensIn, tokensOut)
	}
}

// parseStrict accepts exactly one well-formed JSON object with no
// surrounding text. Markdown fences, prose around the object, or a bare
// string are errors and send the caller down the fallback path.
func parseStrict(raw string) (*Result, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, fmt.Errorf("not a JSON object")
	}
	dec := json.NewDecoder(strings.NewReader(trimmed))

	var r Result
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after JSON object")
	}
	return &r, nil
}

const systemPrompt = `You are an expert assistant that processes technical support tickets.

Your job is to:
1. Summarize the issue.
2. Estimate its priority.
3. Provide helpful notes and resource links for human moderators.
4. List relevant technical skills required.

IMPORTANT:
- Respond with only valid raw JSON.
- Do NOT include markdown, code fences, comments, or extra formatting.
- The format must be a single raw JSON object.`

func buildPrompt(title, description string) string {
	return fmt.Sprintf(`Analyze this support ticket and return only a strict JSON object with no extra text or markdown.

- Title: %s
- Description: %s

Respond ONLY in this JSON format:

{
  "summary": "Short summary of the ticket",
  "priority": "high",
  "helpfulNotes": "Here are useful tips...",
  "relatedSkills": ["React", "Node.js"]
}`, title, description)
}

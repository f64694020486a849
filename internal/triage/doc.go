// Package triage turns ticket text into a routing decision input. It
// defines the Provider interface (LLM backend), the Gateway (analysis call
// with strict output parsing and a canned fallback), and the pure
// Normalizer that coerces raw results into canonical fields.
package triage

// Package workflow runs the ticket intake pipeline: fetch, analyze, persist
// triage fields, assign a handler, notify. Runs are step-wise and durable;
// every step persists before the next starts, so a retried run resumes from
// the persisted ticket instead of redoing completed work.
package workflow

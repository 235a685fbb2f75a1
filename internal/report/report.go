// Package report accumulates per-state build outcomes: tables written,
// tables dropped as empty, and tables skipped on error.
package report

import (
	"fmt"

	"github.com/google/uuid"
)

// StateResult holds one state's counts.
type StateResult struct {
	State   string
	Built   int
	Empty   int
	Skipped int
}

// Summary renders the state's one-line outcome.
func (s *StateResult) Summary() string {
	return fmt.Sprintf("%s tables: saved %d, dropped %d empty, skipped %d",
		s.State, s.Built, s.Empty, s.Skipped)
}

// Report aggregates results across all states of one run.
type Report struct {
	// RunID identifies this invocation in logs and sink metadata.
	RunID uuid.UUID

	order  []string
	states map[string]*StateResult
}

// New returns an empty report with a fresh run ID.
func New() *Report {
	return &Report{
		RunID:  uuid.New(),
		states: make(map[string]*StateResult),
	}
}

func (r *Report) state(name string) *StateResult {
	s, ok := r.states[name]
	if !ok {
		s = &StateResult{State: name}
		r.states[name] = s
		r.order = append(r.order, name)
	}
	return s
}

// Built records one written table for a state.
func (r *Report) Built(state string) { r.state(state).Built++ }

// Empty records one table dropped because every cell was missing.
func (r *Report) Empty(state string) { r.state(state).Empty++ }

// Skipped records one table abandoned on error.
func (r *Report) Skipped(state string) { r.state(state).Skipped++ }

// StateSkipped records a state that could not be processed at all; it
// appears in the report with zero built tables.
func (r *Report) StateSkipped(state string) { r.state(state) }

// Result returns a state's counts, or nil if the state was never touched.
func (r *Report) Result(state string) *StateResult {
	return r.states[state]
}

// Lines returns the per-state summary lines in processing order.
func (r *Report) Lines() []string {
	out := make([]string, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.states[name].Summary())
	}
	return out
}

// Failed reports whether any state produced zero built tables, the
// condition that turns into a non-zero exit status.
func (r *Report) Failed() bool {
	for _, s := range r.states {
		if s.Built == 0 {
			return true
		}
	}
	return false
}

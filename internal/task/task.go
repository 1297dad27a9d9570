// Package task holds the operation registry, the classifier that maps
// free-form task descriptions onto it, and the dispatcher that executes
// the matched operation inside the sandbox.
package task

import (
	"context"
	"time"

	"github.com/lumenops/taskd/internal/llm"
	"github.com/lumenops/taskd/internal/sandbox"
)

// Result is the small scalar summary an operation returns to the
// caller, rendered verbatim in the response envelope.
type Result map[string]any

// Env carries the per-process collaborators an operation may use. All
// filesystem effects go through Sandbox.
type Env struct {
	Sandbox     *sandbox.Root
	Completer   llm.Completer
	ExecTimeout time.Duration
}

// Operation is one registry entry: a stable identifier, a
// human-readable intent (shown to the fallback classifier), keyword
// patterns for deterministic matching, and the work itself.
type Operation struct {
	ID     string
	Intent string

	// Patterns is a set of keyword groups matched against the
	// lowercased description. A group matches when every keyword in it
	// appears; the operation matches when any group does.
	Patterns [][]string

	Run func(ctx context.Context, env Env, description string) (Result, error)
}

// Registry is the closed dispatch table, populated once at startup and
// read-only thereafter. Order is the classifier's priority order.
type Registry struct {
	ops  []*Operation
	byID map[string]*Operation
}

func NewRegistry(ops ...*Operation) *Registry {
	r := &Registry{byID: make(map[string]*Operation, len(ops))}
	for _, op := range ops {
		r.ops = append(r.ops, op)
		r.byID[op.ID] = op
	}
	return r
}

// Lookup returns the operation registered under id, or nil.
func (r *Registry) Lookup(id string) *Operation {
	return r.byID[id]
}

// Operations returns the entries in priority order.
func (r *Registry) Operations() []*Operation {
	return r.ops
}

// DefaultRegistry registers the fixed operation catalog.
func DefaultRegistry() *Registry {
	return NewRegistry(
		opSortContacts(),
		opRecentLogs(),
		opExtractHeaders(),
		opExtractEmail(),
		opExtractCard(),
		opTicketSales(),
		opFetchURL(),
		opGitOps(),
	)
}

package task

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/lumenops/taskd/internal/llm"
)

// Classifier maps a task description onto a registry entry. The
// deterministic keyword pass runs first, in registry order; only when
// it finds nothing does the completion service get a vote, and its
// answer is validated against the registry so an invented operation
// name can never execute.
type Classifier struct {
	registry  *Registry
	completer llm.Completer
}

func NewClassifier(registry *Registry, completer llm.Completer) *Classifier {
	return &Classifier{registry: registry, completer: completer}
}

func (c *Classifier) Classify(ctx context.Context, description string) (string, error) {
	lower := strings.ToLower(description)
	for _, op := range c.registry.Operations() {
		if matchPatterns(lower, op.Patterns) {
			return op.ID, nil
		}
	}

	if c.completer == nil {
		return "", fmt.Errorf("%w: %q", ErrUnrecognized, truncate(description, 80))
	}

	id, err := c.classifyByCompletion(ctx, description)
	if err != nil {
		return "", err
	}
	return id, nil
}

func matchPatterns(lower string, patterns [][]string) bool {
	for _, group := range patterns {
		all := true
		for _, kw := range group {
			if !strings.Contains(lower, kw) {
				all = false
				break
			}
		}
		if all && len(group) > 0 {
			return true
		}
	}
	return false
}

const classifyPrompt = `You are a task router. Pick the one operation that matches the task below.

Operations:
%s
Answer with exactly one operation id from the list, or the word none.

Task:
%s`

func (c *Classifier) classifyByCompletion(ctx context.Context, description string) (string, error) {
	var catalog strings.Builder
	for _, op := range c.registry.Operations() {
		fmt.Fprintf(&catalog, "- %s: %s\n", op.ID, op.Intent)
	}

	answer, err := c.completer.Complete(ctx, fmt.Sprintf(classifyPrompt, catalog.String(), description))
	if err != nil {
		return "", fmt.Errorf("fallback classification: %w", err)
	}

	id := strings.Trim(strings.TrimSpace(answer), "`\"'.")
	if id == "" || strings.EqualFold(id, "none") {
		return "", fmt.Errorf("%w: %q", ErrUnrecognized, truncate(description, 80))
	}
	if c.registry.Lookup(id) == nil {
		log.Printf("[classify] fallback proposed unknown operation %q, rejecting", id)
		return "", fmt.Errorf("%w: %q", ErrUnrecognized, truncate(description, 80))
	}
	return id, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

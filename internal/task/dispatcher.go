package task

import (
	"context"
	"log"

	"github.com/google/uuid"
)

// Dispatcher runs one request end to end: description guard, classify,
// execute, failure tagging. Requests are handled exactly once,
// synchronously, with no retry.
type Dispatcher struct {
	registry   *Registry
	classifier *Classifier
	env        Env
}

func NewDispatcher(env Env) *Dispatcher {
	return NewDispatcherWithRegistry(env, DefaultRegistry())
}

// NewDispatcherWithRegistry allows injecting a registry for testing.
func NewDispatcherWithRegistry(env Env, registry *Registry) *Dispatcher {
	return &Dispatcher{
		registry:   registry,
		classifier: NewClassifier(registry, env.Completer),
		env:        env,
	}
}

// Dispatch executes description and returns a request id, the
// operation's result, and any Failure. Every error coming out of here
// is a *Failure.
func (d *Dispatcher) Dispatch(ctx context.Context, description string) (string, Result, error) {
	reqID := uuid.NewString()
	log.Printf("[dispatch] %s received: %s", reqID, truncate(description, 80))

	if err := d.env.Sandbox.CheckDescription(description); err != nil {
		log.Printf("[dispatch] %s rejected by description guard: %v", reqID, err)
		return reqID, nil, AsFailure(err)
	}

	id, err := d.classifier.Classify(ctx, description)
	if err != nil {
		log.Printf("[dispatch] %s unclassified: %v", reqID, err)
		return reqID, nil, AsFailure(err)
	}
	log.Printf("[dispatch] %s classified as %s", reqID, id)

	op := d.registry.Lookup(id)
	if op == nil {
		return reqID, nil, AsFailure(ErrUnrecognized)
	}

	result, err := op.Run(ctx, d.env, description)
	if err != nil {
		log.Printf("[dispatch] %s operation %s failed: %v", reqID, id, err)
		return reqID, nil, AsFailure(err)
	}
	log.Printf("[dispatch] %s completed %s", reqID, id)
	return reqID, result, nil
}

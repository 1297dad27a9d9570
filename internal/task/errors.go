package task

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/lumenops/taskd/internal/llm"
	"github.com/lumenops/taskd/internal/sandbox"
)

// ErrUnrecognized is returned when no registered operation matches a
// task description.
var ErrUnrecognized = errors.New("no registered operation matches the task description")

// ErrBadParams marks parameters extracted from the task text that
// could not be parsed into an operation's input contract.
var ErrBadParams = errors.New("malformed task parameters")

// Kind tags an outcome crossing the dispatcher boundary. Nothing
// escapes Dispatch as an untagged fault.
type Kind string

const (
	KindSandbox      Kind = "sandbox_violation"
	KindUnrecognized Kind = "unrecognized_task"
	KindUpstream     Kind = "upstream_failure"
	KindBadParams    Kind = "bad_request"
	KindOperation    Kind = "operation_failure"
)

// HTTPStatus maps a failure kind to the status code the boundary
// reports.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindSandbox, KindUnrecognized, KindBadParams:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type Failure struct {
	Kind Kind
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// AsFailure tags err with the matching kind. Already-tagged failures
// pass through unchanged.
func AsFailure(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	switch {
	case errors.Is(err, sandbox.ErrEscape):
		return &Failure{Kind: KindSandbox, Err: err}
	case errors.Is(err, ErrUnrecognized):
		return &Failure{Kind: KindUnrecognized, Err: err}
	case errors.Is(err, ErrBadParams):
		return &Failure{Kind: KindBadParams, Err: err}
	case errors.Is(err, llm.ErrUpstream):
		return &Failure{Kind: KindUpstream, Err: err}
	default:
		return &Failure{Kind: KindOperation, Err: err}
	}
}

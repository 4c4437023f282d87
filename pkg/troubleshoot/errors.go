package troubleshoot

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is wrapped by every InputValidationError.
	ErrInvalidInput = errors.New("invalid troubleshoot input")
	// ErrStepLimitExceeded is returned when a traversal does not terminate within the step bound.
	ErrStepLimitExceeded = errors.New("decision graph step limit exceeded")
	// ErrCyclicGraph is returned when graph validation finds a node reachable from itself.
	ErrCyclicGraph = errors.New("decision graph contains a cycle")
	// ErrNoDiagnosis is returned when a traversal terminates without producing a report.
	ErrNoDiagnosis = errors.New("troubleshooting produced no diagnosis")
)

type InputValidationError struct {
	Field  string
	Reason string
}

func (e InputValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput.Error(), e.Field, e.Reason)
}

func (e InputValidationError) Unwrap() error { return ErrInvalidInput }

// StepError is a failure raised while running a node of the decision graph.
type StepError struct {
	Node string
	Err  error
}

func (e StepError) Error() string {
	return fmt.Sprintf("troubleshooting step %q failed: %s", e.Node, e.Err.Error())
}

func (e StepError) Unwrap() error { return e.Err }

type MalformedSnapshotError struct {
	Kind  string
	Index int
	Got   string
}

func (e MalformedSnapshotError) Error() string {
	return fmt.Sprintf("malformed %s snapshot at index %d: got %s", e.Kind, e.Index, e.Got)
}

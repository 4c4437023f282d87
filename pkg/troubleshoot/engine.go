package troubleshoot

import (
	"fmt"

	"go.uber.org/zap"
)

// DefaultMaxSteps bounds a traversal. The rule library is far shallower.
const DefaultMaxSteps = 64

// Engine walks a decision graph from a fixed entry node. It holds no per-run
// state and may be shared between concurrent runs.
type Engine struct {
	entry    Node
	maxSteps int
	logger   *zap.SugaredLogger
}

// Outcome describes a finished traversal.
type Outcome struct {
	// Terminal is the action that ended the traversal, nil if none ran.
	Terminal *Action
	// Path holds the description of every node visited, in order.
	Path []string
}

// NewEngine returns an engine starting at entry. A non-positive maxSteps uses DefaultMaxSteps.
func NewEngine(entry Node, maxSteps int, logger *zap.SugaredLogger) *Engine {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Engine{entry: entry, maxSteps: maxSteps, logger: logger}
}

// Run walks the graph until a step yields no successor. The first failing step
// stops the traversal; its error is logged and returned as a StepError.
func (e *Engine) Run(c *Context) (Outcome, error) {
	var out Outcome

	current := e.entry
	for !isNil(current) {
		if len(out.Path) >= e.maxSteps {
			return out, fmt.Errorf("%w: stopped before %s after %d steps", ErrStepLimitExceeded, current.Describe(), len(out.Path))
		}

		description := current.Describe()
		out.Path = append(out.Path, description)
		if c.Trace() {
			e.logger.Infof("step %d: %s", len(out.Path), description)
		} else {
			e.logger.Debugf("step %d: %s", len(out.Path), description)
		}

		if action, ok := current.(*Action); ok {
			out.Terminal = action
		}

		successor, err := next(current, c)
		if err != nil {
			e.logger.Errorf("step %s failed: %v", description, err)
			return out, StepError{Node: description, Err: err}
		}
		current = successor
	}

	return out, nil
}

func isNil(n Node) bool {
	switch v := n.(type) {
	case nil:
		return true
	case *Condition:
		return v == nil
	case *Action:
		return v == nil
	}
	return false
}

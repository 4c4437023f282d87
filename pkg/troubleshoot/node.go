package troubleshoot

import "fmt"

// Node is a step of the decision graph. It is either a *Condition or an *Action.
type Node interface {
	Describe() string
	isNode()
}

// Condition evaluates a predicate over the context and branches to one of two
// successors fixed when the graph is built. Decide may record findings as
// attributes for later steps but never appends reports. It returns an error
// only for unrecoverable problems such as a malformed snapshot; missing data
// must route to a branch instead.
type Condition struct {
	Name        string
	Description string
	Decide      func(c *Context) (bool, error)
	OnSuccess   Node
	OnFailure   Node
}

// Action is a terminal step. Process typically appends exactly one report.
type Action struct {
	Name        string
	Description string
	Process     func(c *Context) error
}

func (n *Condition) Describe() string { return describe("condition", n.Name, n.Description) }

func (n *Action) Describe() string { return describe("action", n.Name, n.Description) }

func (*Condition) isNode() {}

func (*Action) isNode() {}

func describe(variant, name, description string) string {
	if description == "" {
		return fmt.Sprintf("%s %s", variant, name)
	}
	return fmt.Sprintf("%s %s: %s", variant, name, description)
}

// next runs a single step and returns the successor, or nil once an action ran.
func next(n Node, c *Context) (Node, error) {
	switch n := n.(type) {
	case *Condition:
		if n.Decide == nil {
			return nil, fmt.Errorf("condition %s has no decision function", n.Name)
		}
		ok, err := n.Decide(c)
		if err != nil {
			return nil, err
		}
		if ok {
			return n.OnSuccess, nil
		}
		return n.OnFailure, nil
	case *Action:
		if n.Process == nil {
			return nil, fmt.Errorf("action %s has no process function", n.Name)
		}
		return nil, n.Process(c)
	default:
		return nil, fmt.Errorf("unsupported node type %T", n)
	}
}

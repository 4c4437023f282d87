package troubleshoot

import "fmt"

// Validate checks that every condition has both successors and that no node is
// reachable from itself. It returns the depth of the graph, counted in nodes
// along the longest path from entry.
func Validate(entry Node) (int, error) {
	if isNil(entry) {
		return 0, fmt.Errorf("decision graph has no entry node")
	}
	const (
		visiting = iota + 1
		done
	)
	state := map[Node]int{}
	depth := map[Node]int{}

	var visit func(n Node) error
	visit = func(n Node) error {
		switch state[n] {
		case visiting:
			return fmt.Errorf("%w: %s", ErrCyclicGraph, n.Describe())
		case done:
			return nil
		}
		state[n] = visiting

		d := 1
		if cond, ok := n.(*Condition); ok {
			for _, succ := range []Node{cond.OnSuccess, cond.OnFailure} {
				if isNil(succ) {
					return fmt.Errorf("%s is missing a successor", cond.Describe())
				}
				if err := visit(succ); err != nil {
					return err
				}
				d = max(d, depth[succ]+1)
			}
		}

		depth[n] = d
		state[n] = done
		return nil
	}

	if err := visit(entry); err != nil {
		return 0, err
	}
	return depth[entry], nil
}

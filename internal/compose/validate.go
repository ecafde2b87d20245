package compose

import (
	"fmt"
	"strings"

	"github.com/flow4ago/flow4ago/internal/flowerr"
)

type visitState int

const (
	white visitState = iota
	gray
	black
)

// validateAcyclic walks the precedence graph with a white/gray/black depth
// first search, reporting the offending cycle rather than just "a cycle
// exists". Closed-reference checking is implicit: connect only ever adds
// an edge between short names already present in jobs, so every successor
// is necessarily a key of jobs.
func validateAcyclic(jobs map[string]*JobNode) error {
	state := make(map[string]visitState, len(jobs))
	var path []string

	var visit func(short string) error
	visit = func(short string) error {
		switch state[short] {
		case black:
			return nil
		case gray:
			cycle := append(append([]string{}, path...), short)
			return flowerr.New(flowerr.ValidationError,
				fmt.Sprintf("cycle detected: %s", strings.Join(cycle, " -> ")))
		}
		state[short] = gray
		path = append(path, short)
		for _, succ := range jobs[short].Successors {
			if err := visit(succ); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[short] = black
		return nil
	}

	for short := range jobs {
		if state[short] == white {
			if err := visit(short); err != nil {
				return err
			}
		}
	}
	return nil
}

// Package compose converts a combinator tree of Leaf/Serial/Parallel nodes
// into a validated, immutable adjacency graph: the composition compiler
// and graph validator of the executor. Compilation walks the tree once to
// collect jobs and edges, validates the result, and normalises the
// composition's entries/exits into a single head and tail.
package compose

import (
	"fmt"
	"time"

	"github.com/flow4ago/flow4ago/internal/flowerr"
	"github.com/flow4ago/flow4ago/internal/job"
)

// JobNode is the compiled, graph-local metadata for one job: its
// successors and expected inputs (by short name), whether its output is
// captured into saved_results, and its per-job input timeout. This is the
// "JobNode holds metadata, Behaviour supplies run" split the redesign
// notes call for — Job itself carries no graph awareness.
type JobNode struct {
	ShortName      string
	Job            job.Job
	Successors     []string
	ExpectedInputs []string
	SaveResult     bool
	Timeout        time.Duration
}

// Graph is a compiled, validated collection of jobs with exactly one head
// and one tail, keyed by short name. It is immutable once Compile returns
// it; nothing mutates a Graph's JobNodes after compilation.
type Graph struct {
	Jobs     map[string]*JobNode
	Head     string
	Tail     string
	rootSeq  uint64
}

// RootSeq is the identity of the composition root this graph was compiled
// from, used by the manager for idempotent re-registration.
func (g *Graph) RootSeq() uint64 { return g.rootSeq }

// Config configures a single Compile call.
type Config struct {
	// DefaultTimeout is applied to any Leaf that didn't request one via
	// WithTimeout. Zero selects DefaultTimeout.
	DefaultTimeout time.Duration
}

// Compile lowers a combinator tree into a Graph: walk the tree collecting
// jobs and edges, validate the result, then insert synthetic __head__ /
// __tail__ nodes if the composition exposed more than one entry or exit.
func Compile(root Node, cfg Config) (*Graph, error) {
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = DefaultTimeout
	}
	g := &Graph{Jobs: map[string]*JobNode{}, rootSeq: RootIdentity(root)}

	entries, exits, err := g.walk(root, cfg)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 || len(exits) == 0 {
		return nil, flowerr.New(flowerr.CompileError, "composition contributes no entry/exit (malformed combinator)")
	}

	if err := validateAcyclic(g.Jobs); err != nil {
		return nil, err
	}

	g.normalize(entries, exits)

	head, tail, err := headAndTail(g.Jobs)
	if err != nil {
		return nil, err
	}
	g.Head, g.Tail = head, tail

	return g, nil
}

// walk recursively lowers a combinator subtree, returning the short names
// of its entries and exits: a leaf's entry/exit is itself; a Serial's
// entry/exit is its first/last child's; a Parallel's entries/exits are the
// union of its children's.
func (g *Graph) walk(n Node, cfg Config) (entries, exits []string, err error) {
	switch v := n.(type) {
	case Leaf:
		if _, exists := g.Jobs[v.ShortName]; exists {
			return nil, nil, flowerr.New(flowerr.CompileError,
				fmt.Sprintf("duplicate leaf %q in composition", v.ShortName))
		}
		timeout := v.Timeout
		if timeout <= 0 {
			timeout = cfg.DefaultTimeout
		}
		g.Jobs[v.ShortName] = &JobNode{
			ShortName:  v.ShortName,
			Job:        v.Job,
			SaveResult: v.SaveResult,
			Timeout:    timeout,
		}
		return []string{v.ShortName}, []string{v.ShortName}, nil

	case Serial:
		if len(v.Children) == 0 {
			return nil, nil, flowerr.New(flowerr.CompileError, "empty Serial composition")
		}
		var firstEntries, prevExits []string
		for i, child := range v.Children {
			ent, ex, err := g.walk(child, cfg)
			if err != nil {
				return nil, nil, err
			}
			if i == 0 {
				firstEntries = ent
			} else {
				g.connect(prevExits, ent)
			}
			prevExits = ex
		}
		return firstEntries, prevExits, nil

	case Parallel:
		if len(v.Children) == 0 {
			return nil, nil, flowerr.New(flowerr.CompileError, "empty Parallel composition")
		}
		var allEntries, allExits []string
		for _, child := range v.Children {
			ent, ex, err := g.walk(child, cfg)
			if err != nil {
				return nil, nil, err
			}
			allEntries = append(allEntries, ent...)
			allExits = append(allExits, ex...)
		}
		return allEntries, allExits, nil

	default:
		return nil, nil, flowerr.New(flowerr.CompileError, fmt.Sprintf("compose: unknown node type %T", n))
	}
}

// connect adds an edge from every element of from to every element of to,
// deduplicated, keeping each JobNode's Successors/ExpectedInputs in sync.
func (g *Graph) connect(from, to []string) {
	for _, f := range from {
		fromNode := g.Jobs[f]
		for _, t := range to {
			if !contains(fromNode.Successors, t) {
				fromNode.Successors = append(fromNode.Successors, t)
			}
			toNode := g.Jobs[t]
			if !contains(toNode.ExpectedInputs, f) {
				toNode.ExpectedInputs = append(toNode.ExpectedInputs, f)
			}
		}
	}
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// syntheticHead and syntheticTail are the reserved short names for the
// normaliser's inserted nodes.
const (
	syntheticHead = "__head__"
	syntheticTail = "__tail__"
)

// normalize inserts synthetic head/tail nodes when the composition exposed
// more than one entry or exit.
func (g *Graph) normalize(entries, exits []string) {
	if len(entries) > 1 {
		g.Jobs[syntheticHead] = &JobNode{ShortName: syntheticHead, Job: job.HeadPassthrough, Timeout: DefaultTimeout}
		g.connect([]string{syntheticHead}, entries)
	}
	if len(exits) > 1 {
		g.Jobs[syntheticTail] = &JobNode{ShortName: syntheticTail, Job: job.TailAggregate, Timeout: DefaultTimeout}
		g.connect(exits, []string{syntheticTail})
	}
}

// headAndTail locates the single job with no expected inputs and the
// single job with no successors. Compile always leaves exactly one of
// each after normalize runs.
func headAndTail(jobs map[string]*JobNode) (head, tail string, err error) {
	var heads, tails []string
	for short, node := range jobs {
		if len(node.ExpectedInputs) == 0 {
			heads = append(heads, short)
		}
		if len(node.Successors) == 0 {
			tails = append(tails, short)
		}
	}
	if len(heads) != 1 {
		return "", "", flowerr.New(flowerr.ValidationError, fmt.Sprintf("graph has %d heads after normalisation, want 1", len(heads)))
	}
	if len(tails) != 1 {
		return "", "", flowerr.New(flowerr.ValidationError, fmt.Sprintf("graph has %d tails after normalisation, want 1", len(tails)))
	}
	return heads[0], tails[0], nil
}

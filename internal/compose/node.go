package compose

import (
	"sync/atomic"
	"time"

	"github.com/flow4ago/flow4ago/internal/job"
)

// DefaultTimeout is the per-job input-wait deadline applied when a Leaf
// doesn't specify one.
const DefaultTimeout = 3000 * time.Second

var seqCounter atomic.Uint64

func nextSeq() uint64 { return seqCounter.Add(1) }

// Node is a combinator tree element: a Leaf, a Serial composition, or a
// Parallel composition. The node method is unexported so the tree can only
// be built with the constructors below — a sealed interface closing the
// set of node types to the three the compiler knows how to lower.
type Node interface {
	node()
	seq() uint64
}

// Leaf wraps a single job as a composition-tree node.
type Leaf struct {
	ShortName  string
	Job        job.Job
	Timeout    time.Duration
	SaveResult bool
	id         uint64
}

func (Leaf) node()         {}
func (l Leaf) seq() uint64 { return l.id }

// LeafOption configures a Leaf at construction time.
type LeafOption func(*Leaf)

// WithSaveResult marks the leaf's full output for capture into a task's
// saved_results map.
func WithSaveResult() LeafOption { return func(l *Leaf) { l.SaveResult = true } }

// WithTimeout overrides the leaf's per-job input-wait deadline.
func WithTimeout(d time.Duration) LeafOption {
	return func(l *Leaf) { l.Timeout = d }
}

// NewLeaf builds a composition-tree leaf around a job, identified within
// its graph by shortName.
func NewLeaf(shortName string, j job.Job, opts ...LeafOption) Node {
	l := Leaf{ShortName: shortName, Job: j, id: nextSeq()}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

// Serial executes its children in order, piping every exit of one into
// every entry of the next.
type Serial struct {
	Children []Node
	id       uint64
}

func (Serial) node()         {}
func (s Serial) seq() uint64 { return s.id }

// Seq builds a Serial composition of nodes.
func Seq(nodes ...Node) Node {
	return Serial{Children: nodes, id: nextSeq()}
}

// Parallel executes its children concurrently against the same upstream
// input; no edges are added between siblings.
type Parallel struct {
	Children []Node
	id       uint64
}

func (Parallel) node()         {}
func (p Parallel) seq() uint64 { return p.id }

// Par builds a Parallel composition of nodes.
func Par(nodes ...Node) Node {
	return Parallel{Children: nodes, id: nextSeq()}
}

// RootIdentity returns the stable identity of a composition root, used by
// the manager to detect re-registration of the exact same composition
// object; Serial/Parallel contain slices and are therefore not comparable
// with ==, so this sequence number stands in for identity instead.
func RootIdentity(n Node) uint64 { return n.seq() }

package behavior

import (
	"fmt"

	bt "github.com/joeycumines/go-behaviortree"
)

// Status is the result of a behavior tree node tick.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
	StatusRunning
)

// Valid reports whether s is one of the three legal statuses.
func (s Status) Valid() bool {
	return s >= StatusSuccess && s <= StatusRunning
}

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusRunning:
		return "running"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func (s Status) bt() bt.Status {
	switch s {
	case StatusSuccess:
		return bt.Success
	case StatusRunning:
		return bt.Running
	default:
		return bt.Failure
	}
}

func fromBT(s bt.Status) Status {
	switch s {
	case bt.Success:
		return StatusSuccess
	case bt.Running:
		return StatusRunning
	default:
		return StatusFailure
	}
}

// Action is a leaf behavior. Implementations keep whatever state they need
// across ticks in their own fields.
type Action[C any] interface {
	Tick(ctx C) Status
}

// ActionFunc adapts a plain function to Action.
type ActionFunc[C any] func(ctx C) Status

func (f ActionFunc[C]) Tick(ctx C) Status { return f(ctx) }

// Handle references a node in a Tree arena.
type Handle int

// NoHandle is the zero reference.
const NoHandle Handle = -1

type nodeKind uint8

const (
	leafNode nodeKind = iota
	sequenceNode
	selectorNode
	inverterNode
)

func (k nodeKind) String() string {
	switch k {
	case leafNode:
		return "leaf"
	case sequenceNode:
		return "sequence"
	case selectorNode:
		return "selector"
	case inverterNode:
		return "inverter"
	}
	return "unknown"
}

type node[C any] struct {
	kind     nodeKind
	action   Action[C]
	children []Handle
}

// Tree is an immutable arena of nodes ticked from a single entry node.
// Sequence and Selector keep no memory between ticks: every tick restarts
// from their first child.
type Tree[C any] struct {
	nodes   []node[C]
	entry   Handle
	root    bt.Node
	ctx     C
	ticking bool
}

// Tick evaluates the tree once against ctx. ctx is only held for the
// duration of the call.
func (t *Tree[C]) Tick(ctx C) Status {
	if t.ticking {
		panic("behavior: re-entrant tick")
	}
	t.ticking = true
	t.ctx = ctx
	defer func() {
		var zero C
		t.ctx = zero
		t.ticking = false
	}()

	status, err := t.root.Tick()
	if err != nil {
		panic(fmt.Sprintf("behavior: %v", err))
	}
	return fromBT(status)
}

// Entry returns the entry node handle.
func (t *Tree[C]) Entry() Handle { return t.entry }

// Len returns the number of nodes in the arena.
func (t *Tree[C]) Len() int { return len(t.nodes) }

// Action returns the action wrapped by the leaf at h.
func (t *Tree[C]) Action(h Handle) (Action[C], bool) {
	if h < 0 || int(h) >= len(t.nodes) || t.nodes[h].kind != leafNode {
		return nil, false
	}
	return t.nodes[h].action, true
}

func (t *Tree[C]) compile(h Handle) bt.Node {
	n := t.nodes[h]
	children := make([]bt.Node, len(n.children))
	for i, c := range n.children {
		children[i] = t.compile(c)
	}
	switch n.kind {
	case sequenceNode:
		return bt.New(bt.Sequence, children...)
	case selectorNode:
		return bt.New(bt.Selector, children...)
	case inverterNode:
		return bt.New(bt.Not(bt.Sequence), children...)
	default:
		action := n.action
		return bt.New(func([]bt.Node) (bt.Status, error) {
			s := action.Tick(t.ctx)
			if !s.Valid() {
				return bt.Failure, fmt.Errorf("leaf %d returned illegal %s", h, s)
			}
			return s.bt(), nil
		})
	}
}

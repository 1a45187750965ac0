package behavior

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidHandle  = errors.New("behavior: invalid node handle")
	ErrSharedNode     = errors.New("behavior: node has more than one parent")
	ErrEmptyComposite = errors.New("behavior: composite without children")
	ErrNilAction      = errors.New("behavior: leaf without action")
)

// Builder assembles a Tree bottom-up. Children must be created before the
// composite that holds them, which keeps every tree acyclic.
type Builder[C any] struct {
	nodes []node[C]
}

// NewBuilder returns an empty Builder.
func NewBuilder[C any]() *Builder[C] {
	return &Builder[C]{}
}

func (b *Builder[C]) add(n node[C]) Handle {
	b.nodes = append(b.nodes, n)
	return Handle(len(b.nodes) - 1)
}

// Leaf adds a node wrapping action.
func (b *Builder[C]) Leaf(action Action[C]) Handle {
	return b.add(node[C]{kind: leafNode, action: action})
}

// Sequence adds a node that succeeds when every child succeeds, stopping at
// the first Failure or Running.
func (b *Builder[C]) Sequence(children ...Handle) Handle {
	return b.add(node[C]{kind: sequenceNode, children: children})
}

// Selector adds a node that succeeds at the first succeeding child, stopping
// at the first Success or Running.
func (b *Builder[C]) Selector(children ...Handle) Handle {
	return b.add(node[C]{kind: selectorNode, children: children})
}

// Inverter adds a node that swaps Success and Failure of child.
func (b *Builder[C]) Inverter(child Handle) Handle {
	return b.add(node[C]{kind: inverterNode, children: []Handle{child}})
}

// Build validates the arena and compiles it into a Tree rooted at entry.
func (b *Builder[C]) Build(entry Handle) (*Tree[C], error) {
	if entry < 0 || int(entry) >= len(b.nodes) {
		return nil, fmt.Errorf("%w: entry %d", ErrInvalidHandle, entry)
	}
	parents := make([]int, len(b.nodes))
	for i, n := range b.nodes {
		switch n.kind {
		case leafNode:
			if n.action == nil {
				return nil, fmt.Errorf("%w: node %d", ErrNilAction, i)
			}
			continue
		}
		if len(n.children) == 0 {
			return nil, fmt.Errorf("%w: %s %d", ErrEmptyComposite, n.kind, i)
		}
		for _, c := range n.children {
			if c < 0 || int(c) >= i {
				return nil, fmt.Errorf("%w: child %d of %s %d", ErrInvalidHandle, c, n.kind, i)
			}
			parents[c]++
			if parents[c] > 1 {
				return nil, fmt.Errorf("%w: %d", ErrSharedNode, c)
			}
		}
	}
	if parents[entry] != 0 {
		return nil, fmt.Errorf("%w: entry %d is a child", ErrInvalidHandle, entry)
	}

	nodes := make([]node[C], len(b.nodes))
	copy(nodes, b.nodes)
	t := &Tree[C]{nodes: nodes, entry: entry}
	t.root = t.compile(entry)
	return t, nil
}

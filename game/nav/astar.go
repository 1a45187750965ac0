package nav

import (
	"container/heap"
)

type searchNode struct {
	pt     Point
	g, f   int
	parent *searchNode
}

type openSet []*searchNode

func (o openSet) Len() int            { return len(o) }
func (o openSet) Less(i, j int) bool  { return o[i].f < o[j].f }
func (o openSet) Swap(i, j int)       { o[i], o[j] = o[j], o[i] }
func (o *openSet) Push(x interface{}) { *o = append(*o, x.(*searchNode)) }
func (o *openSet) Pop() interface{} {
	old := *o
	n := old[len(old)-1]
	*o = old[:len(old)-1]
	return n
}

func manhattan(a, b Point) int {
	dx, dz := a.X-b.X, a.Z-b.Z
	if dx < 0 {
		dx = -dx
	}
	if dz < 0 {
		dz = -dz
	}
	return dx + dz
}

var neighbours = []Point{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}

// AStar finds the shortest 4-connected walkable path from `from` to `to`.
// The path excludes the start and includes the end. It returns nil when no
// path exists and an empty slice when from == to.
func AStar(g *Grid, from, to Point) []Point {
	if g == nil || !g.Walkable(to) {
		return nil
	}
	if from == to {
		return []Point{}
	}

	closed := make(map[Point]bool)
	gScore := map[Point]int{from: 0}
	open := &openSet{{pt: from, f: manhattan(from, to)}}

	for open.Len() > 0 {
		cur := heap.Pop(open).(*searchNode)
		if closed[cur.pt] {
			continue
		}
		closed[cur.pt] = true

		if cur.pt == to {
			var path []Point
			for n := cur; n.parent != nil; n = n.parent {
				path = append(path, n.pt)
			}
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path
		}

		for _, d := range neighbours {
			np := Point{cur.pt.X + d.X, cur.pt.Z + d.Z}
			if closed[np] || !g.Walkable(np) {
				continue
			}
			ng := cur.g + 1
			if prev, ok := gScore[np]; !ok || ng < prev {
				gScore[np] = ng
				heap.Push(open, &searchNode{pt: np, g: ng, f: ng + manhattan(np, to), parent: cur})
			}
		}
	}
	return nil
}

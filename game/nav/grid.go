// Package nav provides a grid navmesh, A* path search and a steering agent
// that follows the found paths.
package nav

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Point is a grid cell coordinate.
type Point struct {
	X, Z int
}

// Grid is a walkable grid on the XZ plane. Cell (0,0) starts at Origin.
type Grid struct {
	Width, Depth int
	CellSize     float64
	Origin       mgl64.Vec3
	blocked      []bool
}

// NewGrid returns a fully walkable grid.
func NewGrid(width, depth int, cellSize float64, origin mgl64.Vec3) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Grid{
		Width:    width,
		Depth:    depth,
		CellSize: cellSize,
		Origin:   origin,
		blocked:  make([]bool, width*depth),
	}
}

// InBounds reports whether p is on the grid.
func (g *Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.Z >= 0 && p.X < g.Width && p.Z < g.Depth
}

// SetBlocked marks a cell as not walkable.
func (g *Grid) SetBlocked(p Point, blocked bool) {
	if g.InBounds(p) {
		g.blocked[p.Z*g.Width+p.X] = blocked
	}
}

// Walkable reports whether p is on the grid and not blocked.
func (g *Grid) Walkable(p Point) bool {
	return g.InBounds(p) && !g.blocked[p.Z*g.Width+p.X]
}

// CellOf returns the cell containing the world position v, clamped to the
// grid.
func (g *Grid) CellOf(v mgl64.Vec3) Point {
	p := Point{
		X: int(math.Floor((v.X() - g.Origin.X()) / g.CellSize)),
		Z: int(math.Floor((v.Z() - g.Origin.Z()) / g.CellSize)),
	}
	p.X = max(0, min(p.X, g.Width-1))
	p.Z = max(0, min(p.Z, g.Depth-1))
	return p
}

// Center returns the world position of the middle of p at height y.
func (g *Grid) Center(p Point, y float64) mgl64.Vec3 {
	return mgl64.Vec3{
		g.Origin.X() + (float64(p.X)+0.5)*g.CellSize,
		y,
		g.Origin.Z() + (float64(p.Z)+0.5)*g.CellSize,
	}
}

package absm

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// ParameterKind tags the value held by a Parameter.
type ParameterKind uint8

const (
	KindRule ParameterKind = iota
	KindIndex
	KindWeight
	KindSamplingPoint
)

func (k ParameterKind) String() string {
	switch k {
	case KindRule:
		return "rule"
	case KindIndex:
		return "index"
	case KindWeight:
		return "weight"
	case KindSamplingPoint:
		return "sampling_point"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Parameter is a named machine input.
type Parameter struct {
	Kind  ParameterKind
	rule  bool
	index uint32
	w     float64
	point mgl64.Vec2
}

// Rule returns a boolean parameter that gates transitions.
func Rule(v bool) Parameter { return Parameter{Kind: KindRule, rule: v} }

// Index returns a parameter that selects a blend input.
func Index(v uint32) Parameter { return Parameter{Kind: KindIndex, index: v} }

// Weight returns a blend weight parameter.
func Weight(v float64) Parameter { return Parameter{Kind: KindWeight, w: v} }

// SamplingPoint returns a 2D blend-space coordinate.
func SamplingPoint(v mgl64.Vec2) Parameter { return Parameter{Kind: KindSamplingPoint, point: v} }

// RuleValue reports the boolean value; non-rule parameters are false.
func (p Parameter) RuleValue() bool { return p.Kind == KindRule && p.rule }

// IndexValue returns the index value, or 0 for other kinds.
func (p Parameter) IndexValue() uint32 {
	if p.Kind != KindIndex {
		return 0
	}
	return p.index
}

// WeightValue returns the weight, or 0 for other kinds.
func (p Parameter) WeightValue() float64 {
	if p.Kind != KindWeight {
		return 0
	}
	return p.w
}

// PointValue returns the sampling point, or the origin for other kinds.
func (p Parameter) PointValue() mgl64.Vec2 {
	if p.Kind != KindSamplingPoint {
		return mgl64.Vec2{}
	}
	return p.point
}

func (p Parameter) String() string {
	switch p.Kind {
	case KindRule:
		return fmt.Sprintf("rule(%t)", p.rule)
	case KindIndex:
		return fmt.Sprintf("index(%d)", p.index)
	case KindWeight:
		return fmt.Sprintf("weight(%g)", p.w)
	default:
		return fmt.Sprintf("point(%g, %g)", p.point.X(), p.point.Y())
	}
}

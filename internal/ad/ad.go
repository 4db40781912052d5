// Copyright 2026 The Penrose Evaluator Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ad is the evaluator's side of the autodiff primitive library
// boundary (spec §6, "sideways" collaborator). The optimizer's real
// automatic-differentiation engine lives outside this module; what the
// evaluator needs from it is a handle type that can be pushed through
// arithmetic without ever losing the graph it belongs to. This package
// plays that role, backed by an arena so that cloning a translation
// clones small integer indices rather than graph nodes (see Design
// Notes, "arena-backed autodiff").
package ad

import "math"

// Op identifies how a node's value was produced.
type Op int

// Node kinds recorded in the arena.
const (
	OpLeaf Op = iota
	OpConst
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpNeg
	OpSquared
	OpSqrt
	OpInverse
	OpAbsVal
	OpIfCond
)

type node struct {
	op   Op
	val  float64
	args [3]int
	nAgs int
}

// Arena owns the append-only tape of autodiff nodes produced during one
// optimization run. A *Scalar* is nothing more than a stable index into
// an Arena, so copying a Scalar (as happens whenever a translation is
// deep-cloned) never touches the tape itself.
type Arena struct {
	nodes []node
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Scalar is an opaque handle into a differentiable computation graph.
// The evaluator never inspects its internals; it only threads Scalars
// through the primitives below.
type Scalar struct {
	arena *Arena
	idx   int
}

// IsZero reports whether s is the zero Scalar (no arena attached).
func (s Scalar) IsZero() bool { return s.arena == nil }

func (a *Arena) push(n node) Scalar {
	a.nodes = append(a.nodes, n)
	return Scalar{arena: a, idx: len(a.nodes) - 1}
}

func (a *Arena) value(s Scalar) float64 {
	return a.nodes[s.idx].val
}

// ConstOf lifts a plain machine float into the graph as a constant leaf.
func ConstOf(a *Arena, x float64) Scalar {
	return a.push(node{op: OpConst, val: x})
}

// Leaf creates a differentiable variable leaf seeded with x (used for
// varying values inserted by the optimizer).
func Leaf(a *Arena, x float64) Scalar {
	return a.push(node{op: OpLeaf, val: x})
}

// Differentiable reports whether x is already a Scalar handle, as
// opposed to a plain machine float that still needs lifting.
func Differentiable(x any) bool {
	_, ok := x.(Scalar)
	return ok
}

// NumOf reads the current numeric value out of a Scalar. This is the
// only way the evaluator (or the shape projection step) observes a
// concrete number; it never walks the graph structure itself.
func NumOf(s Scalar) float64 {
	return s.arena.value(s)
}

func binary(op Op, x, y Scalar, f func(a, b float64) float64) Scalar {
	return x.arena.push(node{op: op, val: f(x.arena.value(x), y.arena.value(y)), args: [3]int{x.idx, y.idx}, nAgs: 2})
}

func unary(op Op, x Scalar, f func(a float64) float64) Scalar {
	return x.arena.push(node{op: op, val: f(x.arena.value(x)), args: [3]int{x.idx}, nAgs: 1})
}

// Add returns x + y.
func Add(x, y Scalar) Scalar { return binary(OpAdd, x, y, func(a, b float64) float64 { return a + b }) }

// Sub returns x - y.
func Sub(x, y Scalar) Scalar { return binary(OpSub, x, y, func(a, b float64) float64 { return a - b }) }

// Mul returns x * y.
func Mul(x, y Scalar) Scalar { return binary(OpMul, x, y, func(a, b float64) float64 { return a * b }) }

// Div returns x / y.
func Div(x, y Scalar) Scalar { return binary(OpDiv, x, y, func(a, b float64) float64 { return a / b }) }

// Neg returns -x.
func Neg(x Scalar) Scalar { return unary(OpNeg, x, func(a float64) float64 { return -a }) }

// Squared returns x * x.
func Squared(x Scalar) Scalar { return unary(OpSquared, x, func(a float64) float64 { return a * a }) }

// Sqrt returns the square root of x.
func Sqrt(x Scalar) Scalar { return unary(OpSqrt, x, math.Sqrt) }

// Inverse returns 1 / x.
func Inverse(x Scalar) Scalar {
	return unary(OpInverse, x, func(a float64) float64 { return 1 / a })
}

// AbsVal returns the absolute value of x.
func AbsVal(x Scalar) Scalar { return unary(OpAbsVal, x, math.Abs) }

// Gt reports whether x > y.
func Gt(x, y Scalar) bool { return NumOf(x) > NumOf(y) }

// Lt reports whether x < y.
func Lt(x, y Scalar) bool { return NumOf(x) < NumOf(y) }

// IfCond selects t when cond holds, f otherwise, recording the
// selection as a node so the choice remains traceable.
func IfCond(cond bool, t, f Scalar) Scalar {
	chosen := f
	if cond {
		chosen = t
	}
	return chosen.arena.push(node{op: OpIfCond, val: chosen.arena.value(chosen), args: [3]int{t.idx, f.idx}, nAgs: 2})
}

// VAdd adds two equal-length scalar sequences elementwise.
func VAdd(x, y []Scalar) []Scalar { return vzip(x, y, Add) }

// VSub subtracts two equal-length scalar sequences elementwise.
func VSub(x, y []Scalar) []Scalar { return vzip(x, y, Sub) }

// VMul multiplies two equal-length scalar sequences elementwise.
func VMul(x, y []Scalar) []Scalar { return vzip(x, y, Mul) }

// VDiv divides two equal-length scalar sequences elementwise.
func VDiv(x, y []Scalar) []Scalar { return vzip(x, y, Div) }

// VNeg negates a scalar sequence elementwise.
func VNeg(x []Scalar) []Scalar {
	out := make([]Scalar, len(x))
	for i, v := range x {
		out[i] = Neg(v)
	}
	return out
}

func vzip(x, y []Scalar, f func(a, b Scalar) Scalar) []Scalar {
	out := make([]Scalar, len(x))
	for i := range x {
		out[i] = f(x[i], y[i])
	}
	return out
}

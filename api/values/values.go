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

// Package values defines the tagged union of runtime values produced
// by the evaluator, and the ArgVal wrapper that distinguishes a plain
// value from a shape (GPI) at call boundaries.
package values

import "github.com/xiarush120220/penrose/internal/ad"

// Value is the closed set of runtime value variants the evaluator
// produces. Implementations are exhaustively matched by the Op
// Evaluator and Expression Evaluator; a type switch on an unhandled
// variant is a bug, not a recoverable input error.
type Value interface {
	// valueNode is unexported so Value is a closed set within this module.
	valueNode()
}

// FloatV is a differentiable scalar node.
type FloatV struct {
	X ad.Scalar
}

func (FloatV) valueNode() {}

// IntV is a machine integer. It exists to preserve integer arithmetic
// until promotion to FloatV is forced by a mixed-type operation.
type IntV struct {
	X int64
}

func (IntV) valueNode() {}

// BoolV is a boolean literal.
type BoolV struct {
	X bool
}

func (BoolV) valueNode() {}

// StrV is a string literal.
type StrV struct {
	X string
}

func (StrV) valueNode() {}

// VectorV is an ordered sequence of differentiable scalars.
type VectorV struct {
	Elems []ad.Scalar
}

func (VectorV) valueNode() {}

// Len returns the number of elements in the vector.
func (v VectorV) Len() int { return len(v.Elems) }

// MatrixV is an ordered sequence of vectors, all expected (but not
// enforced by the type) to share the same length.
type MatrixV struct {
	Rows []VectorV
}

func (MatrixV) valueNode() {}

// Len returns the number of rows in the matrix.
func (m MatrixV) Len() int { return len(m.Rows) }

// TupV is a pair of differentiable scalars.
type TupV struct {
	A, B ad.Scalar
}

func (TupV) valueNode() {}

// ListV is a homogeneous list of scalars.
type ListV struct {
	Elems []ad.Scalar
}

func (ListV) valueNode() {}

// LListV is a list whose elements are themselves vectors, distinct
// from MatrixV: it is the shape that List(es) takes when its first
// evaluated element is a VectorV, i.e. a list-of-vectors that was
// never declared as a matrix.
type LListV struct {
	Elems []VectorV
}

func (LListV) valueNode() {}

// OpaqueV carries a style-domain value (colors, paths, and similar
// variants) straight through evaluation without interpretation. Such
// values always arrive already evaluated, as the payload of a Done
// or Pending TagExpr; the evaluator never constructs one itself.
type OpaqueV struct {
	Tag     string
	Payload any
}

func (OpaqueV) valueNode() {}

// ArgVal is either a plain Value or a GPI (a shape with evaluated
// properties). Shape properties are always Values, never GPIs: a GPI
// can appear only as the top-level result of resolving a shape path.
type ArgVal interface {
	argValNode()
}

// Val wraps a plain evaluated value.
type Val struct {
	Contents Value
}

func (Val) argValNode() {}

// GPI is a Graphical Primitive Instance: a shape's type name together
// with its fully evaluated properties.
type GPI struct {
	Type  string
	Props map[string]Value
}

func (GPI) argValNode() {}

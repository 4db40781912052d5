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

// Package state implements the state adapter at the optimizer
// boundary (spec §4.7, §6): building the varying map, inserting
// varyings into a translation, and the decode/encode layer that is
// bit-exact with the optimizer backend's wire representation.
package state

import (
	"math/rand"

	"github.com/xiarush120220/penrose/build/ir"
	"github.com/xiarush120220/penrose/compdict"
	"github.com/xiarush120220/penrose/eval"
)

// Params bundles the most recent gradient vectors the optimizer
// carries across passes, keyed by the canonical path string a
// derivative/derivativePreconditioned call rewrites its accessor to.
type Params struct {
	Gradient        compdict.PathMap
	PrecondGradient compdict.PathMap
}

// DebugInfo adapts Params to the shape evalDerivative expects.
func (p Params) DebugInfo() compdict.DebugInfo {
	return compdict.DebugInfo{Gradient: p.Gradient, PrecondGradient: p.PrecondGradient}
}

// State is the in-memory shape of everything crossing the optimizer
// boundary: the live translation, an immutable snapshot of it as
// decoded (before any pass mutates a clone), the most recently
// materialized shapes, the gradient bundle, the fast varying/pending
// path maps, and the seeded generator backing this session.
type State struct {
	VaryingValues       []float64
	Translation         *ir.Translation
	OriginalTranslation *ir.Translation
	Shapes              []eval.Shape
	Params              Params
	VaryingMap          eval.PathMap
	PendingMap          eval.PathMap
	Rng                 *rand.Rand
	// Seed is the wire "rng" string Rng was seeded from, retained
	// verbatim so Encode can round-trip it: math/rand.Rand does not
	// expose the source it was built from.
	Seed string
}

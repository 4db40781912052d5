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

package state

import (
	"github.com/pkg/errors"

	"github.com/xiarush120220/penrose/api/values"
	"github.com/xiarush120220/penrose/build/ir"
	"github.com/xiarush120220/penrose/eval"
	"github.com/xiarush120220/penrose/internal/ad"
)

// BuildVaryingMap pairs paths with values and lifts each value to a
// differentiable leaf, keyed by ir.PathKey for O(1) lookups during a
// pass. A length mismatch is fatal; both empty or both nil succeeds
// with an empty map.
func BuildVaryingMap(arena *ad.Arena, paths []ir.Path, vals []float64) (eval.PathMap, error) {
	if len(paths) != len(vals) {
		return nil, errors.Errorf("varying paths/values length mismatch: %d paths, %d values", len(paths), len(vals))
	}
	m := make(eval.PathMap, len(paths))
	for i, p := range paths {
		m[ir.KeyOf(p)] = values.FloatV{X: ad.Leaf(arena, vals[i])}
	}
	return m, nil
}

// InsertVaryings writes Done(FloatV(value)) at each varying path in
// t, via the Path Store, establishing the translation invariant that
// every varying path names a Done FloatV after this step.
func InsertVaryings(t *ir.Translation, arena *ad.Arena, paths []ir.Path, vals []float64) error {
	if len(paths) != len(vals) {
		return errors.Errorf("varying paths/values length mismatch: %d paths, %d values", len(paths), len(vals))
	}
	for i, p := range paths {
		v := values.FloatV{X: ad.Leaf(arena, vals[i])}
		if err := eval.InsertExpr(t, p, v); err != nil {
			return err
		}
	}
	return nil
}

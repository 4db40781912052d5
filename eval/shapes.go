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

package eval

import (
	"github.com/xiarush120220/penrose/api/values"
	"github.com/xiarush120220/penrose/build/ir"
	"github.com/xiarush120220/penrose/internal/ad"
)

// Shape is a materialized shape, its autodiff-bearing properties
// projected down to plain Go numbers for the display layer.
type Shape struct {
	Name       string
	Type       string
	Properties map[string]any
}

// EvalShapes resolves every path in shapePaths to a shape, then
// reorders the result to match shapeOrdering element-for-element by
// name. shapeOrdering must not contain a duplicate name; this is
// checked before the match so a malformed ordering fails with a
// distinguishable error rather than silently picking the first
// duplicate.
func EvalShapes(env *Env, shapePaths []ir.Path, shapeOrdering []string) ([]Shape, error) {
	if err := checkNoDuplicateNames(shapeOrdering); err != nil {
		return nil, err
	}

	byName := make(map[string]Shape, len(shapePaths))
	for _, p := range shapePaths {
		shape, err := evalOneShape(env, p)
		if err != nil {
			return nil, err
		}
		byName[shape.Name] = shape
	}

	out := make([]Shape, len(shapeOrdering))
	for i, name := range shapeOrdering {
		shape, ok := byName[name]
		if !ok {
			return nil, ErrShapeOrderingUnmatched(name)
		}
		out[i] = shape
	}
	return out, nil
}

func checkNoDuplicateNames(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			return newErr(ShapeOrderingUnmatched, "duplicate shape name %q in shapeOrdering", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

func evalOneShape(env *Env, p ir.Path) (Shape, error) {
	arg, err := ResolvePath(env, p)
	if err != nil {
		return Shape{}, err
	}
	gpi, ok := arg.(values.GPI)
	if !ok {
		return Shape{}, ErrTypeMismatch(nil, "shape path %s did not resolve to a GPI", p.String())
	}
	name, ok := gpi.Props["name"].(values.StrV)
	if !ok {
		return Shape{}, ErrTypeMismatch(nil, "shape at %s has no string \"name\" property", p.String())
	}
	props := make(map[string]any, len(gpi.Props))
	for k, v := range gpi.Props {
		props[k] = projectValue(v)
	}
	return Shape{Name: name.X, Type: gpi.Type, Properties: props}, nil
}

// projectValue strips the autodiff graph from v's numeric leaves,
// producing the plain-number form the spec's display layer consumes.
// Non-numeric variants pass through unchanged.
func projectValue(v values.Value) any {
	switch x := v.(type) {
	case values.FloatV:
		return ad.NumOf(x.X)
	case values.IntV:
		return x.X
	case values.BoolV:
		return x.X
	case values.StrV:
		return x.X
	case values.VectorV:
		return projectScalars(x.Elems)
	case values.MatrixV:
		rows := make([][]float64, len(x.Rows))
		for i, row := range x.Rows {
			rows[i] = projectScalars(row.Elems)
		}
		return rows
	case values.TupV:
		return [2]float64{ad.NumOf(x.A), ad.NumOf(x.B)}
	case values.ListV:
		return projectScalars(x.Elems)
	case values.LListV:
		rows := make([][]float64, len(x.Elems))
		for i, v := range x.Elems {
			rows[i] = projectScalars(v.Elems)
		}
		return rows
	case values.OpaqueV:
		return x.Payload
	default:
		return nil
	}
}

func projectScalars(elems []ad.Scalar) []float64 {
	out := make([]float64, len(elems))
	for i, e := range elems {
		out[i] = ad.NumOf(e)
	}
	return out
}

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
	"encoding/json"
	"hash/fnv"
	"math/rand"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"

	"github.com/xiarush120220/penrose/api/values"
	"github.com/xiarush120220/penrose/build/ir"
	"github.com/xiarush120220/penrose/compdict"
	"github.com/xiarush120220/penrose/eval"
	"github.com/xiarush120220/penrose/internal/ad"
)

// wireState is the JSON shape of a State crossing the optimizer
// boundary (spec §6): the exact key set the backend expects on the
// wire, independent of the Go-side field names.
type wireState struct {
	RNG          string                    `json:"rng"`
	VaryingState []float64                 `json:"varyingState"`
	Transr       map[string]map[string]any `json:"transr"`
	Paramsr      wireParams                `json:"paramsr"`
	Shapesr      []wireShape               `json:"shapesr"`
}

type wireParams struct {
	Gradient        map[string]any `json:"gradient"`
	PrecondGradient map[string]any `json:"precondGradient"`
}

type wireShape struct {
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}

// Decode parses a wire snapshot into a State. varyingPaths is the
// Path slice aligned with the wire's varyingState array; it is an
// upstream input supplied alongside the translation (the style
// compiler's output), not itself part of the wire schema (spec §6
// lists varyingPaths as something the optimizer supplies to the
// evaluator, distinct from the serialized state). The freshly decoded
// translation is snapshotted as OriginalTranslation before any pass
// has a chance to clone and mutate it.
func Decode(data []byte, varyingPaths []ir.Path, arena *ad.Arena) (*State, error) {
	var w wireState
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errors.Wrap(err, "decode wire state")
	}

	translation, err := wireToTranslation(w.Transr, arena)
	if err != nil {
		return nil, errors.Wrap(err, "decode transr")
	}
	original, err := wireToTranslation(w.Transr, arena)
	if err != nil {
		return nil, errors.Wrap(err, "snapshot transr")
	}

	gradient, err := wireToGradientMap(w.Paramsr.Gradient, arena)
	if err != nil {
		return nil, errors.Wrap(err, "decode paramsr.gradient")
	}
	precond, err := wireToGradientMap(w.Paramsr.PrecondGradient, arena)
	if err != nil {
		return nil, errors.Wrap(err, "decode paramsr.precondGradient")
	}

	shapes := make([]eval.Shape, len(w.Shapesr))
	for i, ws := range w.Shapesr {
		shapes[i] = eval.Shape{Name: ws.Name, Type: ws.Type, Properties: ws.Properties}
	}

	varyingMap, err := BuildVaryingMap(arena, varyingPaths, w.VaryingState)
	if err != nil {
		return nil, errors.Wrap(err, "build varying map")
	}

	return &State{
		VaryingValues:       w.VaryingState,
		Translation:         translation,
		OriginalTranslation: original,
		Shapes:              shapes,
		Params:              Params{Gradient: gradient, PrecondGradient: precond},
		VaryingMap:          varyingMap,
		PendingMap:          eval.PathMap{},
		Rng:                 rand.New(rand.NewSource(seedFromString(w.RNG))),
		Seed:                w.RNG,
	}, nil
}

// Encode strips the derived fields (OriginalTranslation, VaryingMap,
// PendingMap) and serializes the rest back to the wire schema.
// Round-tripping through Decode then Encode is a no-op up to JSON key
// ordering (encoding/json sorts map keys alphabetically on marshal,
// so ordering is in fact stable too).
func (s *State) Encode() ([]byte, error) {
	transr, err := translationToWire(s.Translation)
	if err != nil {
		return nil, errors.Wrap(err, "encode translation")
	}
	gradient, err := gradientMapToWire(s.Params.Gradient)
	if err != nil {
		return nil, errors.Wrap(err, "encode params.gradient")
	}
	precond, err := gradientMapToWire(s.Params.PrecondGradient)
	if err != nil {
		return nil, errors.Wrap(err, "encode params.precondGradient")
	}
	shapesr := make([]wireShape, len(s.Shapes))
	for i, sh := range s.Shapes {
		shapesr[i] = wireShape{Name: sh.Name, Type: sh.Type, Properties: sh.Properties}
	}

	w := wireState{
		RNG:          s.Seed,
		VaryingState: s.VaryingValues,
		Transr:       transr,
		Paramsr:      wireParams{Gradient: gradient, PrecondGradient: precond},
		Shapesr:      shapesr,
	}
	return json.Marshal(w)
}

// DecodeExprs parses a JSON array of wire expressions, the format
// Evaluate Functions' caller uses to ship one objective's or
// constraint's argument list alongside a state snapshot.
func DecodeExprs(data []byte) ([]ir.Expr, error) {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decode argument expressions")
	}
	out := make([]ir.Expr, len(raw))
	for i, w := range raw {
		e, err := wireToExpr(w)
		if err != nil {
			return nil, errors.Wrapf(err, "argument %d", i)
		}
		out[i] = e
	}
	return out, nil
}

// EncodeValues serializes the result of Evaluate Functions back to a
// JSON array of wire values.
func EncodeValues(vals []values.Value) ([]byte, error) {
	out := make([]any, len(vals))
	for i, v := range vals {
		w, err := valueToWire(v)
		if err != nil {
			return nil, errors.Wrapf(err, "value %d", i)
		}
		out[i] = w
	}
	return json.Marshal(out)
}

func seedFromString(seed string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	return int64(h.Sum64())
}

// SortedSubstanceNames returns the translation's substance names in
// deterministic order; the CLI driver uses it to discover shape
// paths.
func SortedSubstanceNames(t *ir.Translation) []string {
	names := maps.Keys(t.Names)
	sort.Strings(names)
	return names
}

func wireToGradientMap(w map[string]any, arena *ad.Arena) (compdict.PathMap, error) {
	m := make(compdict.PathMap, len(w))
	for k, v := range w {
		val, err := wireToValue(v, arena)
		if err != nil {
			return nil, err
		}
		m[k] = val
	}
	return m, nil
}

func gradientMapToWire(m compdict.PathMap) (map[string]any, error) {
	w := make(map[string]any, len(m))
	for k, v := range m {
		wv, err := valueToWire(v)
		if err != nil {
			return nil, err
		}
		w[k] = wv
	}
	return w, nil
}

func translationToWire(t *ir.Translation) (map[string]map[string]any, error) {
	out := make(map[string]map[string]any, len(t.Names))
	for name, fields := range t.Names {
		wfields := make(map[string]any, len(fields))
		for field, entry := range fields {
			w, err := fieldEntryToWire(entry)
			if err != nil {
				return nil, err
			}
			wfields[field] = w
		}
		out[name] = wfields
	}
	return out, nil
}

func wireToTranslation(w map[string]map[string]any, arena *ad.Arena) (*ir.Translation, error) {
	t := ir.NewTranslation()
	for name, fields := range w {
		wfields := make(map[string]ir.FieldEntry, len(fields))
		for field, raw := range fields {
			entry, err := wireToFieldEntry(raw, arena)
			if err != nil {
				return nil, err
			}
			wfields[field] = entry
		}
		t.Names[name] = wfields
	}
	return t, nil
}

func fieldEntryToWire(e ir.FieldEntry) (any, error) {
	switch v := e.(type) {
	case ir.FExpr:
		tag, err := tagExprToWire(v.E)
		if err != nil {
			return nil, err
		}
		return map[string]any{"kind": "expr", "tag": tag}, nil
	case ir.FGPI:
		props := make(map[string]any, len(v.Props))
		for name, tag := range v.Props {
			w, err := tagExprToWire(tag)
			if err != nil {
				return nil, err
			}
			props[name] = w
		}
		return map[string]any{"kind": "gpi", "type": v.Type, "props": props}, nil
	default:
		return nil, errors.Errorf("unknown field entry type %T", e)
	}
}

func wireToFieldEntry(w any, arena *ad.Arena) (ir.FieldEntry, error) {
	m, err := asMap(w)
	if err != nil {
		return nil, err
	}
	kind, err := asString(m, "kind")
	if err != nil {
		return nil, err
	}
	switch kind {
	case "expr":
		tag, err := wireToTagExpr(m["tag"], arena)
		if err != nil {
			return nil, err
		}
		return ir.FExpr{E: tag}, nil
	case "gpi":
		typ, err := asString(m, "type")
		if err != nil {
			return nil, err
		}
		propsRaw, _ := m["props"].(map[string]any)
		props := make(map[string]ir.TagExpr, len(propsRaw))
		for name, raw := range propsRaw {
			tag, err := wireToTagExpr(raw, arena)
			if err != nil {
				return nil, err
			}
			props[name] = tag
		}
		return ir.FGPI{Type: typ, Props: props}, nil
	default:
		return nil, errors.Errorf("unknown field entry kind %q", kind)
	}
}

func tagExprToWire(t ir.TagExpr) (any, error) {
	switch v := t.(type) {
	case ir.OptEval:
		w, err := exprToWire(v.E)
		if err != nil {
			return nil, err
		}
		return map[string]any{"kind": "optEval", "expr": w}, nil
	case ir.Done:
		w, err := valueToWire(v.V)
		if err != nil {
			return nil, err
		}
		return map[string]any{"kind": "done", "value": w}, nil
	case ir.Pending:
		w, err := valueToWire(v.V)
		if err != nil {
			return nil, err
		}
		return map[string]any{"kind": "pending", "value": w}, nil
	default:
		return nil, errors.Errorf("unknown tag expression type %T", t)
	}
}

func wireToTagExpr(w any, arena *ad.Arena) (ir.TagExpr, error) {
	m, err := asMap(w)
	if err != nil {
		return nil, err
	}
	kind, err := asString(m, "kind")
	if err != nil {
		return nil, err
	}
	switch kind {
	case "optEval":
		e, err := wireToExpr(m["expr"])
		if err != nil {
			return nil, err
		}
		return ir.OptEval{E: e}, nil
	case "done":
		v, err := wireToValue(m["value"], arena)
		if err != nil {
			return nil, err
		}
		return ir.Done{V: v}, nil
	case "pending":
		v, err := wireToValue(m["value"], arena)
		if err != nil {
			return nil, err
		}
		return ir.Pending{V: v}, nil
	default:
		return nil, errors.Errorf("unknown tag expression kind %q", kind)
	}
}

func exprToWire(e ir.Expr) (any, error) {
	switch v := e.(type) {
	case ir.IntLit:
		return map[string]any{"kind": "intLit", "x": v.X}, nil
	case ir.StringLit:
		return map[string]any{"kind": "stringLit", "x": v.X}, nil
	case ir.BoolLit:
		return map[string]any{"kind": "boolLit", "x": v.X}, nil
	case ir.AFloat:
		switch fv := v.V.(type) {
		case ir.Vary:
			return map[string]any{"kind": "aFloat", "vary": true}, nil
		case ir.Fix:
			return map[string]any{"kind": "aFloat", "fix": fv.X}, nil
		default:
			return nil, errors.Errorf("unknown AFloat variant %T", v.V)
		}
	case ir.UOp:
		x, err := exprToWire(v.X)
		if err != nil {
			return nil, err
		}
		return map[string]any{"kind": "uop", "op": v.Op.String(), "x": x}, nil
	case ir.BinOp:
		x, err := exprToWire(v.X)
		if err != nil {
			return nil, err
		}
		y, err := exprToWire(v.Y)
		if err != nil {
			return nil, err
		}
		return map[string]any{"kind": "binop", "op": v.Op.String(), "x": x, "y": y}, nil
	case ir.Tuple:
		elems, err := exprsToWire(v.Elems[:])
		if err != nil {
			return nil, err
		}
		return map[string]any{"kind": "tuple", "elems": elems}, nil
	case ir.List:
		elems, err := exprsToWire(v.Elems)
		if err != nil {
			return nil, err
		}
		return map[string]any{"kind": "list", "elems": elems}, nil
	case ir.Vector:
		elems, err := exprsToWire(v.Elems)
		if err != nil {
			return nil, err
		}
		return map[string]any{"kind": "vector", "elems": elems}, nil
	case ir.VectorAccess:
		p, err := pathToWire(v.Path)
		if err != nil {
			return nil, err
		}
		idx, err := exprToWire(v.Index)
		if err != nil {
			return nil, err
		}
		return map[string]any{"kind": "vectorAccess", "path": p, "index": idx}, nil
	case ir.MatrixAccess:
		p, err := pathToWire(v.Path)
		if err != nil {
			return nil, err
		}
		i, err := exprToWire(v.I)
		if err != nil {
			return nil, err
		}
		j, err := exprToWire(v.J)
		if err != nil {
			return nil, err
		}
		return map[string]any{"kind": "matrixAccess", "path": p, "i": i, "j": j}, nil
	case ir.EPath:
		p, err := pathToWire(v.P)
		if err != nil {
			return nil, err
		}
		return map[string]any{"kind": "path", "path": p}, nil
	case ir.CompApp:
		args, err := exprsToWire(v.Args)
		if err != nil {
			return nil, err
		}
		return map[string]any{"kind": "compApp", "name": v.Name, "args": args}, nil
	default:
		return nil, errors.Errorf("expression type %T has no wire form", e)
	}
}

func exprsToWire(es []ir.Expr) ([]any, error) {
	out := make([]any, len(es))
	for i, e := range es {
		w, err := exprToWire(e)
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return out, nil
}

func wireToExpr(w any) (ir.Expr, error) {
	m, err := asMap(w)
	if err != nil {
		return nil, err
	}
	kind, err := asString(m, "kind")
	if err != nil {
		return nil, err
	}
	switch kind {
	case "intLit":
		x, err := asFloat(m, "x")
		if err != nil {
			return nil, err
		}
		return ir.IntLit{X: int64(x)}, nil
	case "stringLit":
		x, err := asString(m, "x")
		if err != nil {
			return nil, err
		}
		return ir.StringLit{X: x}, nil
	case "boolLit":
		x, _ := m["x"].(bool)
		return ir.BoolLit{X: x}, nil
	case "aFloat":
		if vary, _ := m["vary"].(bool); vary {
			return ir.AFloat{V: ir.Vary{}}, nil
		}
		x, err := asFloat(m, "fix")
		if err != nil {
			return nil, err
		}
		return ir.AFloat{V: ir.Fix{X: x}}, nil
	case "uop":
		op, err := wireToUnaryOp(m)
		if err != nil {
			return nil, err
		}
		x, err := wireToExpr(m["x"])
		if err != nil {
			return nil, err
		}
		return ir.UOp{Op: op, X: x}, nil
	case "binop":
		op, err := wireToBinaryOp(m)
		if err != nil {
			return nil, err
		}
		x, err := wireToExpr(m["x"])
		if err != nil {
			return nil, err
		}
		y, err := wireToExpr(m["y"])
		if err != nil {
			return nil, err
		}
		return ir.BinOp{Op: op, X: x, Y: y}, nil
	case "tuple":
		elems, err := wireToExprs(m["elems"])
		if err != nil {
			return nil, err
		}
		if len(elems) != 2 {
			return nil, errors.Errorf("tuple must have exactly two elements, got %d", len(elems))
		}
		return ir.Tuple{Elems: [2]ir.Expr{elems[0], elems[1]}}, nil
	case "list":
		elems, err := wireToExprs(m["elems"])
		if err != nil {
			return nil, err
		}
		return ir.List{Elems: elems}, nil
	case "vector":
		elems, err := wireToExprs(m["elems"])
		if err != nil {
			return nil, err
		}
		return ir.Vector{Elems: elems}, nil
	case "vectorAccess":
		p, err := wireToPath(m["path"])
		if err != nil {
			return nil, err
		}
		idx, err := wireToExpr(m["index"])
		if err != nil {
			return nil, err
		}
		return ir.VectorAccess{Path: p, Index: idx}, nil
	case "matrixAccess":
		p, err := wireToPath(m["path"])
		if err != nil {
			return nil, err
		}
		i, err := wireToExpr(m["i"])
		if err != nil {
			return nil, err
		}
		j, err := wireToExpr(m["j"])
		if err != nil {
			return nil, err
		}
		return ir.MatrixAccess{Path: p, I: i, J: j}, nil
	case "path":
		p, err := wireToPath(m["path"])
		if err != nil {
			return nil, err
		}
		return ir.EPath{P: p}, nil
	case "compApp":
		name, err := asString(m, "name")
		if err != nil {
			return nil, err
		}
		args, err := wireToExprs(m["args"])
		if err != nil {
			return nil, err
		}
		return ir.CompApp{Name: name, Args: args}, nil
	default:
		return nil, errors.Errorf("unknown expression kind %q", kind)
	}
}

func wireToExprs(w any) ([]ir.Expr, error) {
	items, ok := w.([]any)
	if !ok {
		return nil, errors.Errorf("expected an array of expressions, got %T", w)
	}
	out := make([]ir.Expr, len(items))
	for i, item := range items {
		e, err := wireToExpr(item)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func wireToUnaryOp(m map[string]any) (ir.UnaryOp, error) {
	op, err := asString(m, "op")
	if err != nil {
		return 0, err
	}
	switch op {
	case "+":
		return ir.UPlus, nil
	case "-":
		return ir.UMinus, nil
	default:
		return 0, errors.Errorf("unknown unary operator %q", op)
	}
}

func wireToBinaryOp(m map[string]any) (ir.BinaryOp, error) {
	op, err := asString(m, "op")
	if err != nil {
		return 0, err
	}
	switch op {
	case "+":
		return ir.BPlus, nil
	case "-":
		return ir.BMinus, nil
	case "*":
		return ir.Multiply, nil
	case "/":
		return ir.Divide, nil
	case "^":
		return ir.Exp, nil
	default:
		return 0, errors.Errorf("unknown binary operator %q", op)
	}
}

func pathToWire(p ir.Path) (any, error) {
	switch v := p.(type) {
	case ir.FieldPath:
		return map[string]any{"kind": "field", "name": v.Name, "field": v.Field}, nil
	case ir.PropertyPath:
		return map[string]any{"kind": "property", "name": v.Name, "field": v.Field, "prop": v.Prop}, nil
	case ir.AccessPath:
		inner, err := pathToWire(v.Inner)
		if err != nil {
			return nil, err
		}
		return map[string]any{"kind": "access", "inner": inner, "indices": v.Indices}, nil
	default:
		return nil, errors.Errorf("path type %T has no wire form", p)
	}
}

func wireToPath(w any) (ir.Path, error) {
	m, err := asMap(w)
	if err != nil {
		return nil, err
	}
	kind, err := asString(m, "kind")
	if err != nil {
		return nil, err
	}
	switch kind {
	case "field":
		name, err := asString(m, "name")
		if err != nil {
			return nil, err
		}
		field, err := asString(m, "field")
		if err != nil {
			return nil, err
		}
		return ir.FieldPath{Name: name, Field: field}, nil
	case "property":
		name, err := asString(m, "name")
		if err != nil {
			return nil, err
		}
		field, err := asString(m, "field")
		if err != nil {
			return nil, err
		}
		prop, err := asString(m, "prop")
		if err != nil {
			return nil, err
		}
		return ir.PropertyPath{Name: name, Field: field, Prop: prop}, nil
	case "access":
		inner, err := wireToPath(m["inner"])
		if err != nil {
			return nil, err
		}
		rawIdx, _ := m["indices"].([]any)
		indices := make([]int, len(rawIdx))
		for i, v := range rawIdx {
			f, ok := v.(float64)
			if !ok {
				return nil, errors.Errorf("access path index %d is not a number", i)
			}
			indices[i] = int(f)
		}
		return ir.AccessPath{Inner: inner, Indices: indices}, nil
	default:
		return nil, errors.Errorf("unknown path kind %q", kind)
	}
}

func valueToWire(v values.Value) (any, error) {
	switch x := v.(type) {
	case values.FloatV:
		return map[string]any{"kind": "float", "x": ad.NumOf(x.X)}, nil
	case values.IntV:
		return map[string]any{"kind": "int", "x": x.X}, nil
	case values.BoolV:
		return map[string]any{"kind": "bool", "x": x.X}, nil
	case values.StrV:
		return map[string]any{"kind": "str", "x": x.X}, nil
	case values.VectorV:
		return map[string]any{"kind": "vector", "elems": scalarsToWire(x.Elems)}, nil
	case values.MatrixV:
		rows := make([][]float64, len(x.Rows))
		for i, row := range x.Rows {
			rows[i] = scalarsToWire(row.Elems)
		}
		return map[string]any{"kind": "matrix", "rows": rows}, nil
	case values.TupV:
		return map[string]any{"kind": "tup", "a": ad.NumOf(x.A), "b": ad.NumOf(x.B)}, nil
	case values.ListV:
		return map[string]any{"kind": "list", "elems": scalarsToWire(x.Elems)}, nil
	case values.LListV:
		rows := make([][]float64, len(x.Elems))
		for i, row := range x.Elems {
			rows[i] = scalarsToWire(row.Elems)
		}
		return map[string]any{"kind": "llist", "elems": rows}, nil
	case values.OpaqueV:
		return map[string]any{"kind": "opaque", "tag": x.Tag, "payload": x.Payload}, nil
	default:
		return nil, errors.Errorf("value type %T has no wire form", v)
	}
}

func scalarsToWire(elems []ad.Scalar) []float64 {
	out := make([]float64, len(elems))
	for i, e := range elems {
		out[i] = ad.NumOf(e)
	}
	return out
}

func wireToValue(w any, arena *ad.Arena) (values.Value, error) {
	m, err := asMap(w)
	if err != nil {
		return nil, err
	}
	kind, err := asString(m, "kind")
	if err != nil {
		return nil, err
	}
	switch kind {
	case "float":
		x, err := asFloat(m, "x")
		if err != nil {
			return nil, err
		}
		return values.FloatV{X: ad.ConstOf(arena, x)}, nil
	case "int":
		x, err := asFloat(m, "x")
		if err != nil {
			return nil, err
		}
		return values.IntV{X: int64(x)}, nil
	case "bool":
		x, _ := m["x"].(bool)
		return values.BoolV{X: x}, nil
	case "str":
		x, err := asString(m, "x")
		if err != nil {
			return nil, err
		}
		return values.StrV{X: x}, nil
	case "vector":
		elems, err := wireToScalars(m["elems"], arena)
		if err != nil {
			return nil, err
		}
		return values.VectorV{Elems: elems}, nil
	case "matrix":
		rows, err := wireToScalarRows(m["rows"], arena)
		if err != nil {
			return nil, err
		}
		out := make([]values.VectorV, len(rows))
		for i, r := range rows {
			out[i] = values.VectorV{Elems: r}
		}
		return values.MatrixV{Rows: out}, nil
	case "tup":
		a, err := asFloat(m, "a")
		if err != nil {
			return nil, err
		}
		b, err := asFloat(m, "b")
		if err != nil {
			return nil, err
		}
		return values.TupV{A: ad.ConstOf(arena, a), B: ad.ConstOf(arena, b)}, nil
	case "list":
		elems, err := wireToScalars(m["elems"], arena)
		if err != nil {
			return nil, err
		}
		return values.ListV{Elems: elems}, nil
	case "llist":
		rows, err := wireToScalarRows(m["elems"], arena)
		if err != nil {
			return nil, err
		}
		out := make([]values.VectorV, len(rows))
		for i, r := range rows {
			out[i] = values.VectorV{Elems: r}
		}
		return values.LListV{Elems: out}, nil
	case "opaque":
		tag, _ := m["tag"].(string)
		return values.OpaqueV{Tag: tag, Payload: m["payload"]}, nil
	default:
		return nil, errors.Errorf("unknown value kind %q", kind)
	}
}

func wireToScalars(w any, arena *ad.Arena) ([]ad.Scalar, error) {
	items, ok := w.([]any)
	if !ok {
		return nil, errors.Errorf("expected an array of numbers, got %T", w)
	}
	out := make([]ad.Scalar, len(items))
	for i, item := range items {
		f, ok := item.(float64)
		if !ok {
			return nil, errors.Errorf("element %d is not a number", i)
		}
		out[i] = ad.ConstOf(arena, f)
	}
	return out, nil
}

func wireToScalarRows(w any, arena *ad.Arena) ([][]ad.Scalar, error) {
	items, ok := w.([]any)
	if !ok {
		return nil, errors.Errorf("expected an array of rows, got %T", w)
	}
	out := make([][]ad.Scalar, len(items))
	for i, item := range items {
		row, err := wireToScalars(item, arena)
		if err != nil {
			return nil, err
		}
		out[i] = row
	}
	return out, nil
}

func asMap(w any) (map[string]any, error) {
	m, ok := w.(map[string]any)
	if !ok {
		return nil, errors.Errorf("expected a JSON object, got %T", w)
	}
	return m, nil
}

func asString(m map[string]any, key string) (string, error) {
	s, ok := m[key].(string)
	if !ok {
		return "", errors.Errorf("expected field %q to be a string", key)
	}
	return s, nil
}

func asFloat(m map[string]any, key string) (float64, error) {
	f, ok := m[key].(float64)
	if !ok {
		return 0, errors.Errorf("expected field %q to be a number", key)
	}
	return f, nil
}

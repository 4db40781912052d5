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

// FindResult is the outcome of reading a path through the Path
// Store: a plain tagged expression, or — when the path names a shape
// — its raw FGPI entry.
type FindResult struct {
	Tag ir.TagExpr
	GPI *ir.FGPI
}

// FindExpr reads the entry addressed by p. AccessPath is not
// supported here: callers reach into a vector or matrix by composing
// EvalExpr over a VectorAccess/MatrixAccess expression instead.
func FindExpr(t *ir.Translation, p ir.Path) (FindResult, error) {
	switch v := p.(type) {
	case ir.FieldPath:
		entry, err := lookupField(t, v.Name, v.Field)
		if err != nil {
			return FindResult{}, err
		}
		switch fe := entry.(type) {
		case ir.FExpr:
			return FindResult{Tag: fe.E}, nil
		case ir.FGPI:
			gpi := fe
			return FindResult{GPI: &gpi}, nil
		}
		return FindResult{}, ErrUnresolvedPath(p)
	case ir.PropertyPath:
		entry, err := lookupField(t, v.Name, v.Field)
		if err != nil {
			return FindResult{}, err
		}
		fgpi, ok := entry.(ir.FGPI)
		if !ok {
			return FindResult{}, ErrUnresolvedPath(p)
		}
		tag, ok := fgpi.Props[v.Prop]
		if !ok {
			return FindResult{}, ErrUnresolvedPath(p)
		}
		return FindResult{Tag: tag}, nil
	case ir.AccessPath:
		return FindResult{}, ErrUnimplemented(nil, "reading an AccessPath through the path store")
	default:
		return FindResult{}, ErrUnresolvedPath(p)
	}
}

func lookupField(t *ir.Translation, name, field string) (ir.FieldEntry, error) {
	fields, ok := t.Names[name]
	if !ok {
		return nil, ErrUnresolvedPath(ir.FieldPath{Name: name, Field: field})
	}
	entry, ok := fields[field]
	if !ok {
		return nil, ErrUnresolvedPath(ir.FieldPath{Name: name, Field: field})
	}
	return entry, nil
}

// InsertExpr writes v at p, overwriting whatever was there.
//
//   - FieldPath replaces the field entry with FExpr(Done(v)).
//   - PropertyPath replaces the property entry inside the addressed
//     FGPI with Done(v); it fails if the field is an FExpr.
//   - AccessPath locates the vector addressed by its inner path
//     (either the Vector AST inside an OptEval, or the VectorV value
//     inside a Done) and overwrites element [i] in place. Two-index
//     writes and nested AccessPath are rejected (Unimplemented).
func InsertExpr(t *ir.Translation, p ir.Path, v values.Value) error {
	switch pp := p.(type) {
	case ir.FieldPath:
		fields, ok := t.Names[pp.Name]
		if !ok {
			return ErrUnresolvedPath(p)
		}
		fields[pp.Field] = ir.FExpr{E: ir.Done{V: v}}
		return nil
	case ir.PropertyPath:
		fields, ok := t.Names[pp.Name]
		if !ok {
			return ErrUnresolvedPath(p)
		}
		entry, ok := fields[pp.Field]
		if !ok {
			return ErrUnresolvedPath(p)
		}
		fgpi, ok := entry.(ir.FGPI)
		if !ok {
			return ErrTypeMismatch(nil, "cannot write property %s: field %s.%s is not a shape", pp.Prop, pp.Name, pp.Field)
		}
		fgpi.Props[pp.Prop] = ir.Done{V: v}
		return nil
	case ir.AccessPath:
		return insertAccess(t, pp, v)
	default:
		return ErrUnresolvedPath(p)
	}
}

func insertAccess(t *ir.Translation, p ir.AccessPath, v values.Value) error {
	if len(p.Indices) != 1 {
		return ErrUnimplemented(nil, "two-index AccessPath writes")
	}
	if _, nested := p.Inner.(ir.AccessPath); nested {
		return ErrUnimplemented(nil, "nested AccessPath writes")
	}
	idx := p.Indices[0]
	found, err := FindExpr(t, p.Inner)
	if err != nil {
		return err
	}
	if found.Tag == nil {
		return ErrTypeMismatch(nil, "AccessPath inner path %s does not address a vector cell", p.Inner.String())
	}
	switch tag := found.Tag.(type) {
	case ir.OptEval:
		vec, ok := tag.E.(ir.Vector)
		if !ok {
			return ErrTypeMismatch(nil, "AccessPath inner expression is not a Vector literal")
		}
		if idx < 0 || idx >= len(vec.Elems) {
			return ErrIndexOutOfBounds(nil, idx, len(vec.Elems))
		}
		elems := append([]ir.Expr(nil), vec.Elems...)
		elems[idx] = valueToLiteral(v)
		return InsertExprTag(t, p.Inner, ir.OptEval{E: ir.Vector{Elems: elems}})
	case ir.Done:
		vecV, ok := tag.V.(values.VectorV)
		if !ok {
			return ErrTypeMismatch(nil, "AccessPath inner value is not a VectorV")
		}
		if idx < 0 || idx >= len(vecV.Elems) {
			return ErrIndexOutOfBounds(nil, idx, len(vecV.Elems))
		}
		floatV, ok := v.(values.FloatV)
		if !ok {
			return ErrTypeMismatch(nil, "AccessPath write value must be a FloatV")
		}
		elems := append([]ad.Scalar(nil), vecV.Elems...)
		elems[idx] = floatV.X
		return InsertExprTag(t, p.Inner, ir.Done{V: values.VectorV{Elems: elems}})
	case ir.Pending:
		return ErrTypeMismatch(nil, "cannot AccessPath-write into a Pending cell")
	default:
		return ErrTypeMismatch(nil, "unsupported tagged expression in AccessPath write")
	}
}

// InsertExprTag writes a TagExpr verbatim at a FieldPath or
// PropertyPath, the primitive InsertExpr and insertAccess build on.
func InsertExprTag(t *ir.Translation, p ir.Path, tag ir.TagExpr) error {
	switch pp := p.(type) {
	case ir.FieldPath:
		fields, ok := t.Names[pp.Name]
		if !ok {
			return ErrUnresolvedPath(p)
		}
		fields[pp.Field] = ir.FExpr{E: tag}
		return nil
	case ir.PropertyPath:
		fields, ok := t.Names[pp.Name]
		if !ok {
			return ErrUnresolvedPath(p)
		}
		entry, ok := fields[pp.Field]
		if !ok {
			return ErrUnresolvedPath(p)
		}
		fgpi, ok := entry.(ir.FGPI)
		if !ok {
			return ErrTypeMismatch(nil, "cannot write property %s: field %s.%s is not a shape", pp.Prop, pp.Name, pp.Field)
		}
		fgpi.Props[pp.Prop] = tag
		return nil
	default:
		return ErrUnimplemented(nil, "InsertExprTag on a path other than Field/Property")
	}
}

func valueToLiteral(v values.Value) ir.Expr {
	switch x := v.(type) {
	case values.FloatV:
		return ir.AFloat{V: ir.Fix{X: ad.NumOf(x.X)}}
	case values.IntV:
		return ir.IntLit{X: x.X}
	case values.BoolV:
		return ir.BoolLit{X: x.X}
	case values.StrV:
		return ir.StringLit{X: x.X}
	default:
		return ir.AFloat{V: ir.Fix{X: 0}}
	}
}

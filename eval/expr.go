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
	"encoding/json"

	"github.com/xiarush120220/penrose/api/values"
	"github.com/xiarush120220/penrose/build/ir"
	"github.com/xiarush120220/penrose/compdict"
	"github.com/xiarush120220/penrose/internal/ad"
)

// EvalExpr recursively evaluates expr against env, dispatching on its
// concrete kind. Sub-expressions are evaluated left-to-right; because
// evaluation mutates the translation cache (through ResolvePath),
// this order is observable and must not be reordered.
func EvalExpr(env *Env, expr ir.Expr) (values.ArgVal, error) {
	switch e := expr.(type) {
	case ir.IntLit:
		return values.Val{Contents: values.IntV{X: e.X}}, nil
	case ir.StringLit:
		return values.Val{Contents: values.StrV{X: e.X}}, nil
	case ir.BoolLit:
		return values.Val{Contents: values.BoolV{X: e.X}}, nil
	case ir.AFloat:
		switch v := e.V.(type) {
		case ir.Vary:
			return nil, ErrUnsubstitutedVarying(expr)
		case ir.Fix:
			return values.Val{Contents: values.FloatV{X: env.lift(v.X)}}, nil
		default:
			return nil, ErrTypeMismatch(expr, "unknown AFloat variant %T", e.V)
		}
	case ir.UOp:
		x, err := evalToValue(env, e.X)
		if err != nil {
			return nil, err
		}
		res, err := evalUnary(env, &e, x)
		if err != nil {
			return nil, err
		}
		return values.Val{Contents: res}, nil
	case ir.BinOp:
		x, err := evalToValue(env, e.X)
		if err != nil {
			return nil, err
		}
		y, err := evalToValue(env, e.Y)
		if err != nil {
			return nil, err
		}
		res, err := evalBinary(env, &e, x, y)
		if err != nil {
			return nil, err
		}
		return values.Val{Contents: res}, nil
	case ir.Tuple:
		a, err := evalToValue(env, e.Elems[0])
		if err != nil {
			return nil, err
		}
		af, err := coerceFloat(env, a, e.Elems[0])
		if err != nil {
			return nil, err
		}
		b, err := evalToValue(env, e.Elems[1])
		if err != nil {
			return nil, err
		}
		bf, err := coerceFloat(env, b, e.Elems[1])
		if err != nil {
			return nil, err
		}
		return values.Val{Contents: values.TupV{A: af.X, B: bf.X}}, nil
	case ir.List:
		return evalList(env, e)
	case ir.Vector:
		return evalVector(env, e)
	case ir.VectorAccess:
		return evalVectorAccess(env, e)
	case ir.MatrixAccess:
		return evalMatrixAccess(env, e)
	case ir.EPath:
		return ResolvePath(env, e.P)
	case ir.CompApp:
		return evalCompApp(env, e)
	case ir.MatrixLit:
		return nil, ErrUnimplemented(expr, "Matrix literal")
	case ir.ListAccessExpr:
		return nil, ErrUnimplemented(expr, "ListAccess")
	default:
		return nil, ErrUnimplemented(expr, "unknown expression kind")
	}
}

func evalToValue(env *Env, expr ir.Expr) (values.Value, error) {
	arg, err := EvalExpr(env, expr)
	if err != nil {
		return nil, err
	}
	return asValue(arg, expr)
}

func asValue(arg values.ArgVal, expr ir.Expr) (values.Value, error) {
	v, ok := arg.(values.Val)
	if !ok {
		return nil, ErrTypeMismatch(expr, "expected a value, got a shape")
	}
	return v.Contents, nil
}

func coerceFloat(env *Env, v values.Value, expr ir.Expr) (values.FloatV, error) {
	switch x := v.(type) {
	case values.FloatV:
		return x, nil
	case values.IntV:
		return promoteIntToFloat(env, x), nil
	default:
		return values.FloatV{}, ErrTypeMismatch(expr, "expected a numeric scalar, got %T", v)
	}
}

func evalList(env *Env, e ir.List) (values.ArgVal, error) {
	if len(e.Elems) == 0 {
		return values.Val{Contents: values.ListV{}}, nil
	}
	vals := make([]values.Value, len(e.Elems))
	for i, sub := range e.Elems {
		v, err := evalToValue(env, sub)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	switch vals[0].(type) {
	case values.FloatV:
		elems := make([]ad.Scalar, len(vals))
		for i, v := range vals {
			fv, err := coerceFloat(env, v, e.Elems[i])
			if err != nil {
				return nil, err
			}
			elems[i] = fv.X
		}
		return values.Val{Contents: values.ListV{Elems: elems}}, nil
	case values.VectorV:
		rows := make([]values.VectorV, len(vals))
		for i, v := range vals {
			vv, ok := v.(values.VectorV)
			if !ok {
				return nil, ErrUnsupportedListElement(e.Elems[i], v)
			}
			rows[i] = vv
		}
		return values.Val{Contents: values.LListV{Elems: rows}}, nil
	default:
		return nil, ErrUnsupportedListElement(e.Elems[0], vals[0])
	}
}

func evalVector(env *Env, e ir.Vector) (values.ArgVal, error) {
	vals := make([]values.Value, len(e.Elems))
	for i, sub := range e.Elems {
		v, err := evalToValue(env, sub)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	if len(vals) > 0 {
		if _, ok := vals[0].(values.VectorV); ok {
			rows := make([]values.VectorV, len(vals))
			for i, v := range vals {
				vv, ok := v.(values.VectorV)
				if !ok {
					return nil, ErrTypeMismatch(e.Elems[i], "matrix rows must all be VectorV, got %T", v)
				}
				rows[i] = vv
			}
			return values.Val{Contents: values.MatrixV{Rows: rows}}, nil
		}
	}
	elems := make([]ad.Scalar, len(vals))
	for i, v := range vals {
		fv, err := coerceFloat(env, v, e.Elems[i])
		if err != nil {
			return nil, err
		}
		elems[i] = fv.X
	}
	return values.Val{Contents: values.VectorV{Elems: elems}}, nil
}

func evalVectorAccess(env *Env, e ir.VectorAccess) (values.ArgVal, error) {
	pathArg, err := ResolvePath(env, e.Path)
	if err != nil {
		return nil, err
	}
	pv, err := asValue(pathArg, ir.EPath{P: e.Path})
	if err != nil {
		return nil, err
	}
	i, err := evalIntIndex(env, e.Index)
	if err != nil {
		return nil, err
	}
	switch v := pv.(type) {
	case values.LListV:
		if i < 0 || i >= len(v.Elems) {
			return nil, ErrIndexOutOfBounds(e.Index, i, len(v.Elems))
		}
		return values.Val{Contents: v.Elems[i]}, nil
	case values.VectorV:
		if i < 0 || i >= len(v.Elems) {
			return nil, ErrIndexOutOfBounds(e.Index, i, len(v.Elems))
		}
		return values.Val{Contents: values.FloatV{X: v.Elems[i]}}, nil
	default:
		return nil, ErrTypeMismatch(e.Index, "VectorAccess target must be VectorV or LListV, got %T", pv)
	}
}

func evalMatrixAccess(env *Env, e ir.MatrixAccess) (values.ArgVal, error) {
	pathArg, err := ResolvePath(env, e.Path)
	if err != nil {
		return nil, err
	}
	pv, err := asValue(pathArg, ir.EPath{P: e.Path})
	if err != nil {
		return nil, err
	}
	mv, ok := pv.(values.MatrixV)
	if !ok {
		return nil, ErrTypeMismatch(e.I, "MatrixAccess target must be MatrixV, got %T", pv)
	}
	i, err := evalIntIndex(env, e.I)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(mv.Rows) {
		return nil, ErrIndexOutOfBounds(e.I, i, len(mv.Rows))
	}
	row := mv.Rows[i]
	j, err := evalIntIndex(env, e.J)
	if err != nil {
		return nil, err
	}
	if j < 0 || j >= len(row.Elems) {
		return nil, ErrIndexOutOfBounds(e.J, j, len(row.Elems))
	}
	return values.Val{Contents: values.FloatV{X: row.Elems[j]}}, nil
}

func evalIntIndex(env *Env, expr ir.Expr) (int, error) {
	v, err := evalToValue(env, expr)
	if err != nil {
		return 0, err
	}
	iv, ok := v.(values.IntV)
	if !ok {
		return 0, ErrTypeMismatch(expr, "index must be IntV, got %T", v)
	}
	return int(iv.X), nil
}

// evalCompApp implements the two reserved gradient-surfacing names
// specially, and otherwise evaluates every argument, strips its
// ArgVal wrapper, and calls the matching dictionary entry.
func evalCompApp(env *Env, e ir.CompApp) (values.ArgVal, error) {
	if e.Name == compdict.ReservedDerivative || e.Name == compdict.ReservedDerivativePreconditioned {
		return evalDerivative(env, e)
	}
	fn, ok := env.Dict.Lookup(e.Name)
	if !ok {
		return nil, ErrTypeMismatch(e, "no dictionary entry registered for %q", e.Name)
	}
	args := make([]compdict.Arg, len(e.Args))
	for i, sub := range e.Args {
		arg, err := EvalExpr(env, sub)
		if err != nil {
			return nil, err
		}
		args[i] = stripArgVal(arg)
	}
	result, err := fn(args)
	if err != nil {
		return nil, ErrTypeMismatch(e, "dictionary call %s failed: %v", e.Name, err)
	}
	return values.Val{Contents: result}, nil
}

func stripArgVal(arg values.ArgVal) compdict.Arg {
	switch v := arg.(type) {
	case values.Val:
		return v.Contents
	case values.GPI:
		return v
	default:
		return nil
	}
}

func evalDerivative(env *Env, e ir.CompApp) (values.ArgVal, error) {
	if len(e.Args) != 1 {
		return nil, ErrTypeMismatch(e, "%s takes exactly one argument", e.Name)
	}
	p, err := accessorToPath(e.Args[0])
	if err != nil {
		return nil, err
	}
	key, err := pathJSON(p)
	if err != nil {
		return nil, ErrTypeMismatch(e, "cannot serialize path for %s: %v", e.Name, err)
	}
	fn, ok := env.Dict.LookupDebug(e.Name)
	if !ok {
		return nil, ErrTypeMismatch(e, "no debug entry registered for %s", e.Name)
	}
	result, err := fn(env.Debug, key)
	if err != nil {
		return nil, ErrTypeMismatch(e, "%s failed: %v", e.Name, err)
	}
	return values.Val{Contents: result}, nil
}

// accessorToPath rewrites a derivative/derivativePreconditioned
// argument into the canonical AccessPath shape used as the
// dictionary lookup key.
func accessorToPath(arg ir.Expr) (ir.Path, error) {
	switch a := arg.(type) {
	case ir.EPath:
		return a.P, nil
	case ir.VectorAccess:
		i, err := constIntOf(a.Index)
		if err != nil {
			return nil, err
		}
		return ir.AccessPath{Inner: a.Path, Indices: []int{i}}, nil
	case ir.MatrixAccess:
		i, err := constIntOf(a.I)
		if err != nil {
			return nil, err
		}
		j, err := constIntOf(a.J)
		if err != nil {
			return nil, err
		}
		return ir.AccessPath{Inner: a.Path, Indices: []int{i, j}}, nil
	default:
		return nil, ErrTypeMismatch(arg, "derivative argument must be an EPath, VectorAccess, or MatrixAccess")
	}
}

func constIntOf(expr ir.Expr) (int, error) {
	lit, ok := expr.(ir.IntLit)
	if !ok {
		return 0, ErrTypeMismatch(expr, "derivative accessor indices must be integer literals")
	}
	return int(lit.X), nil
}

type pathWire struct {
	Name    string `json:"name"`
	Field   string `json:"field"`
	Prop    string `json:"prop,omitempty"`
	Indices []int  `json:"indices,omitempty"`
}

func pathJSON(p ir.Path) (string, error) {
	w := toPathWire(p)
	b, err := json.Marshal(w)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func toPathWire(p ir.Path) pathWire {
	switch v := p.(type) {
	case ir.FieldPath:
		return pathWire{Name: v.Name, Field: v.Field}
	case ir.PropertyPath:
		return pathWire{Name: v.Name, Field: v.Field, Prop: v.Prop}
	case ir.AccessPath:
		w := toPathWire(v.Inner)
		w.Indices = v.Indices
		return w
	default:
		return pathWire{}
	}
}

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
	"sort"

	"github.com/xiarush120220/penrose/api/values"
	"github.com/xiarush120220/penrose/build/ir"
)

// ResolvePath resolves p to an evaluated value or shape, consulting
// env.Varying before the translation and memoizing every Done write
// it performs along the way.
func ResolvePath(env *Env, p ir.Path) (values.ArgVal, error) {
	if _, ok := p.(ir.AccessPath); ok {
		return nil, ErrUnimplemented(nil, "AccessPath is not supported by the Path Resolver")
	}
	if v, ok := env.Varying[ir.KeyOf(p)]; ok {
		fv, ok := v.(values.FloatV)
		if !ok {
			return nil, ErrTypeMismatch(nil, "varying override at %s is not a FloatV", p.String())
		}
		return values.Val{Contents: fv}, nil
	}
	found, err := FindExpr(env.Translation, p)
	if err != nil {
		return nil, err
	}
	if found.GPI != nil {
		fp, ok := p.(ir.FieldPath)
		if !ok {
			return nil, ErrUnresolvedPath(p)
		}
		return resolveGPI(env, fp, found.GPI)
	}
	return resolveTag(env, p, found.Tag)
}

// resolveGPI evaluates every property of a shape, in sorted
// property-name order (the evaluator's choice of deterministic
// "property-enumeration order"), and packs the results into a GPI.
func resolveGPI(env *Env, fp ir.FieldPath, gpi *ir.FGPI) (values.ArgVal, error) {
	names := make([]string, 0, len(gpi.Props))
	for name := range gpi.Props {
		names = append(names, name)
	}
	sort.Strings(names)

	props := make(map[string]values.Value, len(gpi.Props))
	for _, name := range names {
		propPath := ir.PropertyPath{Name: fp.Name, Field: fp.Field, Prop: name}
		arg, err := ResolvePath(env, propPath)
		if err != nil {
			return nil, err
		}
		val, ok := arg.(values.Val)
		if !ok {
			return nil, ErrUnexpectedGPI(propPath)
		}
		props[name] = val.Contents
	}
	return values.GPI{Type: gpi.Type, Props: props}, nil
}

// resolveTag implements the generic behavior of a looked-up tagged
// expression: evaluate-and-cache for OptEval, pass through for
// Done/Pending.
func resolveTag(env *Env, p ir.Path, tag ir.TagExpr) (values.ArgVal, error) {
	switch t := tag.(type) {
	case ir.OptEval:
		arg, err := EvalExpr(env, t.E)
		if err != nil {
			return nil, err
		}
		val, ok := arg.(values.Val)
		if !ok {
			return nil, ErrUnexpectedGPI(p)
		}
		if err := InsertExpr(env.Translation, p, val.Contents); err != nil {
			return nil, err
		}
		return val, nil
	case ir.Done:
		return values.Val{Contents: t.V}, nil
	case ir.Pending:
		return values.Val{Contents: t.V}, nil
	default:
		return nil, ErrUnresolvedPath(p)
	}
}

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

package eval_test

import (
	"testing"

	"github.com/xiarush120220/penrose/api/values"
	"github.com/xiarush120220/penrose/build/ir"
	"github.com/xiarush120220/penrose/compdict"
	"github.com/xiarush120220/penrose/eval"
	"github.com/xiarush120220/penrose/internal/ad"
)

// newEnv wraps tr in an Env. NewEnv clones tr internally, so tr must
// already hold whatever fixture data a test needs before this is
// called: later mutations to tr are invisible to the returned Env,
// and later mutations performed through the Env are invisible to tr.
func newEnv(tr *ir.Translation, arena *ad.Arena) *eval.Env {
	return eval.NewEnv(tr, compdict.Default(), arena)
}

// S1: resolving a varying-overridden path returns the varying scalar,
// and the pass's own translation ends with Done at that path because
// of the insertion step (not because the resolver writes back
// overrides).
func TestScenarioS1VaryingOverride(t *testing.T) {
	arena := ad.NewArena()
	tr := ir.NewTranslation()
	tr.Names["A"] = map[string]ir.FieldEntry{
		"x": ir.FExpr{E: ir.OptEval{E: ir.AFloat{V: ir.Fix{X: 3}}}},
	}
	p := ir.FieldPath{Name: "A", Field: "x"}

	env := newEnv(tr, arena)
	env.Varying[ir.KeyOf(p)] = values.FloatV{X: ad.Leaf(arena, 7.0)}
	if err := eval.InsertExpr(env.Translation, p, values.FloatV{X: ad.Leaf(arena, 7.0)}); err != nil {
		t.Fatalf("insert varying: %v", err)
	}

	arg, err := eval.ResolvePath(env, p)
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	val, ok := arg.(values.Val)
	if !ok {
		t.Fatalf("expected Val, got %T", arg)
	}
	fv, ok := val.Contents.(values.FloatV)
	if !ok || ad.NumOf(fv.X) != 7.0 {
		t.Fatalf("expected FloatV(7.0), got %#v", val.Contents)
	}

	found, err := eval.FindExpr(env.Translation, p)
	if err != nil {
		t.Fatalf("FindExpr: %v", err)
	}
	done, ok := found.Tag.(ir.Done)
	if !ok {
		t.Fatalf("expected Done cell, got %T", found.Tag)
	}
	if ad.NumOf(done.V.(values.FloatV).X) != 7.0 {
		t.Fatalf("expected cached 7.0, got %v", ad.NumOf(done.V.(values.FloatV).X))
	}
}

// S2: BinOp(BPlus, IntLit 2, AFloat(Fix 1.5)) -> FloatV(3.5).
func TestScenarioS2IntPlusFloat(t *testing.T) {
	env := newEnv(ir.NewTranslation(), ad.NewArena())
	expr := ir.BinOp{Op: ir.BPlus, X: ir.IntLit{X: 2}, Y: ir.AFloat{V: ir.Fix{X: 1.5}}}
	arg, err := eval.EvalExpr(env, expr)
	if err != nil {
		t.Fatalf("EvalExpr: %v", err)
	}
	got := arg.(values.Val).Contents.(values.FloatV)
	if ad.NumOf(got.X) != 3.5 {
		t.Fatalf("got %v want 3.5", ad.NumOf(got.X))
	}
}

// S3: nested Vector literals produce a MatrixV.
func TestScenarioS3VectorOfVectorsIsMatrix(t *testing.T) {
	env := newEnv(ir.NewTranslation(), ad.NewArena())
	row := func(a, b int64) ir.Expr {
		return ir.Vector{Elems: []ir.Expr{ir.IntLit{X: a}, ir.IntLit{X: b}}}
	}
	expr := ir.Vector{Elems: []ir.Expr{row(1, 2), row(3, 4)}}
	arg, err := eval.EvalExpr(env, expr)
	if err != nil {
		t.Fatalf("EvalExpr: %v", err)
	}
	mv := arg.(values.Val).Contents.(values.MatrixV)
	want := [][]float64{{1, 2}, {3, 4}}
	for i, row := range mv.Rows {
		for j, e := range row.Elems {
			if ad.NumOf(e) != want[i][j] {
				t.Fatalf("element [%d][%d] = %v, want %v", i, j, ad.NumOf(e), want[i][j])
			}
		}
	}
}

// S4: MatrixAccess(p, [1, 0]) on the S3 matrix returns FloatV(3).
func TestScenarioS4MatrixAccess(t *testing.T) {
	arena := ad.NewArena()
	mat := values.MatrixV{Rows: []values.VectorV{
		{Elems: []ad.Scalar{ad.ConstOf(arena, 1), ad.ConstOf(arena, 2)}},
		{Elems: []ad.Scalar{ad.ConstOf(arena, 3), ad.ConstOf(arena, 4)}},
	}}
	tr := ir.NewTranslation()
	tr.Names["M"] = map[string]ir.FieldEntry{"shape": ir.FExpr{E: ir.Done{V: mat}}}
	p := ir.FieldPath{Name: "M", Field: "shape"}

	env := newEnv(tr, arena)
	expr := ir.MatrixAccess{Path: p, I: ir.IntLit{X: 1}, J: ir.IntLit{X: 0}}
	arg, err := eval.EvalExpr(env, expr)
	if err != nil {
		t.Fatalf("EvalExpr: %v", err)
	}
	got := arg.(values.Val).Contents.(values.FloatV)
	if ad.NumOf(got.X) != 3 {
		t.Fatalf("got %v want 3", ad.NumOf(got.X))
	}
}

// S5: a shape's OptEval property resolves to its evaluated numeric value.
func TestScenarioS5ShapeProperty(t *testing.T) {
	tr := ir.NewTranslation()
	tr.Names["c"] = map[string]ir.FieldEntry{
		"shape": ir.FGPI{Type: "Circle", Props: map[string]ir.TagExpr{
			"r":    ir.OptEval{E: ir.AFloat{V: ir.Fix{X: 5}}},
			"name": ir.Done{V: values.StrV{X: "c"}},
		}},
	}
	shapePath := ir.FieldPath{Name: "c", Field: "shape"}

	env := newEnv(tr, ad.NewArena())
	shapes, err := eval.EvalShapes(env, []ir.Path{shapePath}, []string{"c"})
	if err != nil {
		t.Fatalf("EvalShapes: %v", err)
	}
	if len(shapes) != 1 {
		t.Fatalf("got %d shapes, want 1", len(shapes))
	}
	r, ok := shapes[0].Properties["r"].(float64)
	if !ok || r != 5 {
		t.Fatalf("properties.r = %#v, want 5", shapes[0].Properties["r"])
	}
}

// S6: UOp(UMinus, Vector([1, -2])) -> VectorV([-1, 2]).
func TestScenarioS6UnaryMinusVector(t *testing.T) {
	env := newEnv(ir.NewTranslation(), ad.NewArena())
	expr := ir.UOp{Op: ir.UMinus, X: ir.Vector{Elems: []ir.Expr{ir.IntLit{X: 1}, ir.IntLit{X: -2}}}}
	arg, err := eval.EvalExpr(env, expr)
	if err != nil {
		t.Fatalf("EvalExpr: %v", err)
	}
	vv := arg.(values.Val).Contents.(values.VectorV)
	if ad.NumOf(vv.Elems[0]) != -1 || ad.NumOf(vv.Elems[1]) != 2 {
		t.Fatalf("got [%v, %v], want [-1, 2]", ad.NumOf(vv.Elems[0]), ad.NumOf(vv.Elems[1]))
	}
}

// Testable Property 1: purity of a pass. NewEnv clones the
// translation it's given, so a pass driven entirely through the
// returned Env (ResolvePath, memoization included) never mutates the
// caller's own copy.
func TestResolvePathDoesNotMutateCallerTranslation(t *testing.T) {
	arena := ad.NewArena()
	tr := ir.NewTranslation()
	tr.Names["A"] = map[string]ir.FieldEntry{
		"x": ir.FExpr{E: ir.OptEval{E: ir.AFloat{V: ir.Fix{X: 4}}}},
	}
	p := ir.FieldPath{Name: "A", Field: "x"}

	env := newEnv(tr, arena)
	if _, err := eval.ResolvePath(env, p); err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}

	found, err := eval.FindExpr(env.Translation, p)
	if err != nil {
		t.Fatalf("FindExpr(env.Translation): %v", err)
	}
	if _, ok := found.Tag.(ir.Done); !ok {
		t.Fatalf("expected the pass's own copy to be memoized, got %T", found.Tag)
	}

	orig, err := eval.FindExpr(tr, p)
	if err != nil {
		t.Fatalf("FindExpr(tr): %v", err)
	}
	if _, ok := orig.Tag.(ir.OptEval); !ok {
		t.Fatalf("caller's translation was mutated: got %T, want OptEval", orig.Tag)
	}
}

// Testable Property 1 (continued): EvalShapes is the real pass
// entrypoint a renderer drives; its property memoization must land in
// the pass's own translation, never the caller's.
func TestEvalShapesDoesNotMutateCallerTranslation(t *testing.T) {
	tr := ir.NewTranslation()
	tr.Names["c"] = map[string]ir.FieldEntry{
		"shape": ir.FGPI{Type: "Circle", Props: map[string]ir.TagExpr{
			"r":    ir.OptEval{E: ir.AFloat{V: ir.Fix{X: 5}}},
			"name": ir.Done{V: values.StrV{X: "c"}},
		}},
	}
	shapePath := ir.FieldPath{Name: "c", Field: "shape"}

	env := newEnv(tr, ad.NewArena())
	if _, err := eval.EvalShapes(env, []ir.Path{shapePath}, []string{"c"}); err != nil {
		t.Fatalf("EvalShapes: %v", err)
	}

	clonedEntry := env.Translation.Names["c"]["shape"].(ir.FGPI)
	if _, ok := clonedEntry.Props["r"].(ir.Done); !ok {
		t.Fatalf("expected the pass's own copy to memoize property r, got %T", clonedEntry.Props["r"])
	}

	origEntry := tr.Names["c"]["shape"].(ir.FGPI)
	if _, ok := origEntry.Props["r"].(ir.OptEval); !ok {
		t.Fatalf("caller's shape property was mutated: got %T, want OptEval", origEntry.Props["r"])
	}
}

// Testable Property 2: a varying override wins even when the
// translation holds a different Done(FloatV) at the same path.
func TestVaryingOverridePrecedence(t *testing.T) {
	arena := ad.NewArena()
	p := ir.FieldPath{Name: "A", Field: "x"}
	tr := ir.NewTranslation()
	tr.Names["A"] = map[string]ir.FieldEntry{"x": ir.FExpr{E: ir.Done{V: values.FloatV{X: ad.ConstOf(arena, 1)}}}}

	env := newEnv(tr, arena)
	env.Varying[ir.KeyOf(p)] = values.FloatV{X: ad.ConstOf(arena, 99)}

	arg, err := eval.ResolvePath(env, p)
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	got := arg.(values.Val).Contents.(values.FloatV)
	if ad.NumOf(got.X) != 99 {
		t.Fatalf("got %v, want the varying override 99", ad.NumOf(got.X))
	}
}

// Testable Property 3: resolving the same non-varying path twice
// returns equal values, and the cell becomes Done after the first
// resolution.
func TestMemoizationCorrectness(t *testing.T) {
	p := ir.FieldPath{Name: "A", Field: "x"}
	tr := ir.NewTranslation()
	tr.Names["A"] = map[string]ir.FieldEntry{"x": ir.FExpr{E: ir.OptEval{E: ir.AFloat{V: ir.Fix{X: 4}}}}}

	env := newEnv(tr, ad.NewArena())
	first, err := eval.ResolvePath(env, p)
	if err != nil {
		t.Fatalf("first ResolvePath: %v", err)
	}
	found, err := eval.FindExpr(env.Translation, p)
	if err != nil {
		t.Fatalf("FindExpr: %v", err)
	}
	if _, ok := found.Tag.(ir.Done); !ok {
		t.Fatalf("expected Done after first resolution, got %T", found.Tag)
	}

	second, err := eval.ResolvePath(env, p)
	if err != nil {
		t.Fatalf("second ResolvePath: %v", err)
	}
	a := ad.NumOf(first.(values.Val).Contents.(values.FloatV).X)
	b := ad.NumOf(second.(values.Val).Contents.(values.FloatV).X)
	if a != b {
		t.Fatalf("repeated resolution disagreed: %v vs %v", a, b)
	}
}

// Testable Property 4: EvalShapes reorders by shapeOrdering element
// for element by name.
func TestShapeOrdering(t *testing.T) {
	mk := func(name string) ir.FieldEntry {
		return ir.FGPI{Type: "Circle", Props: map[string]ir.TagExpr{
			"name": ir.Done{V: values.StrV{X: name}},
		}}
	}
	tr := ir.NewTranslation()
	tr.Names["a"] = map[string]ir.FieldEntry{"shape": mk("a")}
	tr.Names["b"] = map[string]ir.FieldEntry{"shape": mk("b")}
	paths := []ir.Path{
		ir.FieldPath{Name: "a", Field: "shape"},
		ir.FieldPath{Name: "b", Field: "shape"},
	}

	env := newEnv(tr, ad.NewArena())
	shapes, err := eval.EvalShapes(env, paths, []string{"b", "a"})
	if err != nil {
		t.Fatalf("EvalShapes: %v", err)
	}
	if shapes[0].Name != "b" || shapes[1].Name != "a" {
		t.Fatalf("got order [%s, %s], want [b, a]", shapes[0].Name, shapes[1].Name)
	}
}

// Testable Property 4 (continued): a missing declared name fails with
// ShapeOrderingUnmatched.
func TestShapeOrderingUnmatchedName(t *testing.T) {
	tr := ir.NewTranslation()
	tr.Names["a"] = map[string]ir.FieldEntry{"shape": ir.FGPI{Type: "Circle", Props: map[string]ir.TagExpr{
		"name": ir.Done{V: values.StrV{X: "a"}},
	}}}
	paths := []ir.Path{ir.FieldPath{Name: "a", Field: "shape"}}

	env := newEnv(tr, ad.NewArena())
	_, err := eval.EvalShapes(env, paths, []string{"missing"})
	if err == nil {
		t.Fatal("expected an error for an unmatched shape name")
	}
	var evalErr *eval.Error
	if !errorsAs(err, &evalErr) || evalErr.Kind != eval.ShapeOrderingUnmatched {
		t.Fatalf("got %v, want ShapeOrderingUnmatched", err)
	}
}

// Testable Property 5: a representative slice of the binary operator
// coverage matrix, including two declared holes.
func TestOperatorCoverageMatrix(t *testing.T) {
	env := newEnv(ir.NewTranslation(), ad.NewArena())
	floatExpr := func(x float64) ir.Expr { return ir.AFloat{V: ir.Fix{X: x}} }
	vectorExpr := func(xs ...float64) ir.Expr {
		elems := make([]ir.Expr, len(xs))
		for i, x := range xs {
			elems[i] = floatExpr(x)
		}
		return ir.Vector{Elems: elems}
	}

	cases := []struct {
		name    string
		op      ir.BinaryOp
		x, y    ir.Expr
		wantErr bool
	}{
		{"float+float", ir.BPlus, floatExpr(1), floatExpr(2), false},
		{"float*vector", ir.Multiply, floatExpr(2), vectorExpr(1), false},
		{"float/vector", ir.Divide, floatExpr(2), vectorExpr(1), true},
		{"vector/float", ir.Divide, vectorExpr(4), floatExpr(2), false},
		{"vector+vector", ir.BPlus, vectorExpr(1), vectorExpr(2), false},
		{"vector*vector", ir.Multiply, vectorExpr(1), vectorExpr(2), true},
		{"int*int", ir.Multiply, ir.IntLit{X: 3}, ir.IntLit{X: 4}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			expr := ir.BinOp{Op: c.op, X: c.x, Y: c.y}
			_, err := eval.EvalExpr(env, expr)
			if c.wantErr && err == nil {
				t.Fatalf("expected TypeMismatch, got a value")
			}
			if !c.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

// Testable Property 6: integer division always promotes to FloatV.
func TestIntegerDivisionPromotion(t *testing.T) {
	env := newEnv(ir.NewTranslation(), ad.NewArena())
	expr := ir.BinOp{Op: ir.Divide, X: ir.IntLit{X: 7}, Y: ir.IntLit{X: 2}}
	arg, err := eval.EvalExpr(env, expr)
	if err != nil {
		t.Fatalf("EvalExpr: %v", err)
	}
	got := arg.(values.Val).Contents.(values.FloatV)
	if ad.NumOf(got.X) != 3.5 {
		t.Fatalf("got %v, want 3.5", ad.NumOf(got.X))
	}
}

// Testable Property 7: vector access bounds.
func TestAccessBounds(t *testing.T) {
	arena := ad.NewArena()
	vec := values.VectorV{Elems: []ad.Scalar{ad.ConstOf(arena, 10), ad.ConstOf(arena, 20)}}
	tr := ir.NewTranslation()
	tr.Names["V"] = map[string]ir.FieldEntry{"xs": ir.FExpr{E: ir.Done{V: vec}}}
	p := ir.FieldPath{Name: "V", Field: "xs"}

	env := newEnv(tr, arena)
	for _, idx := range []int64{-1, 2} {
		_, err := eval.EvalExpr(env, ir.VectorAccess{Path: p, Index: ir.IntLit{X: idx}})
		if err == nil {
			t.Fatalf("index %d: expected IndexOutOfBounds", idx)
		}
	}
	for _, idx := range []int64{0, 1} {
		_, err := eval.EvalExpr(env, ir.VectorAccess{Path: p, Index: ir.IntLit{X: idx}})
		if err != nil {
			t.Fatalf("index %d: unexpected error %v", idx, err)
		}
	}
}

// EvalFunctions evaluates a tuple of argument expressions against the
// translation without requiring or consuming any debug gradient info.
func TestEvalFunctionsBuildsArgumentTuple(t *testing.T) {
	tr := ir.NewTranslation()
	tr.Names["A"] = map[string]ir.FieldEntry{"x": ir.FExpr{E: ir.Done{V: values.IntV{X: 5}}}}
	p := ir.FieldPath{Name: "A", Field: "x"}

	env := newEnv(tr, ad.NewArena())
	args, err := eval.EvalFunctions(env, []ir.Expr{
		ir.AFloat{V: ir.Fix{X: 2}},
		ir.EPath{P: p},
	})
	if err != nil {
		t.Fatalf("EvalFunctions: %v", err)
	}
	if len(args) != 2 {
		t.Fatalf("got %d args, want 2", len(args))
	}
	if ad.NumOf(args[0].(values.FloatV).X) != 2 {
		t.Fatalf("arg[0] = %v, want 2", args[0])
	}
	if args[1].(values.IntV).X != 5 {
		t.Fatalf("arg[1] = %v, want 5", args[1])
	}
}

func errorsAs(err error, target **eval.Error) bool {
	for err != nil {
		if e, ok := err.(*eval.Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

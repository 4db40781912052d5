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

package ad

import "testing"

func TestArithmetic(t *testing.T) {
	a := NewArena()
	x := ConstOf(a, 3)
	y := ConstOf(a, 4)
	if got := NumOf(Add(x, y)); got != 7 {
		t.Errorf("Add: got %v want 7", got)
	}
	if got := NumOf(Mul(x, y)); got != 12 {
		t.Errorf("Mul: got %v want 12", got)
	}
	if got := NumOf(Neg(x)); got != -3 {
		t.Errorf("Neg: got %v want -3", got)
	}
	if got := NumOf(Squared(y)); got != 16 {
		t.Errorf("Squared: got %v want 16", got)
	}
}

func TestDifferentiable(t *testing.T) {
	a := NewArena()
	x := ConstOf(a, 1)
	if !Differentiable(x) {
		t.Errorf("Scalar should be differentiable")
	}
	if Differentiable(1.0) {
		t.Errorf("plain float64 should not be differentiable")
	}
}

func TestComparisons(t *testing.T) {
	a := NewArena()
	x, y := ConstOf(a, 1), ConstOf(a, 2)
	if !Lt(x, y) || Gt(x, y) {
		t.Errorf("Lt/Gt disagree with 1 < 2")
	}
	chosen := IfCond(true, x, y)
	if NumOf(chosen) != 1 {
		t.Errorf("IfCond(true, ...) = %v want 1", NumOf(chosen))
	}
}

func TestVectorOps(t *testing.T) {
	a := NewArena()
	xs := []Scalar{ConstOf(a, 1), ConstOf(a, 2)}
	ys := []Scalar{ConstOf(a, 3), ConstOf(a, 4)}
	sum := VAdd(xs, ys)
	if NumOf(sum[0]) != 4 || NumOf(sum[1]) != 6 {
		t.Errorf("VAdd = %v, %v want 4, 6", NumOf(sum[0]), NumOf(sum[1]))
	}
}

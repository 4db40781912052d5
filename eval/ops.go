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
	"math"

	"github.com/xiarush120220/penrose/api/values"
	"github.com/xiarush120220/penrose/build/ir"
	"github.com/xiarush120220/penrose/internal/ad"
)

// evalUnary applies expr.Op to x, per the unary table in the spec's
// Op Evaluator section: UPlus is always rejected, UMinus negates a
// float, int, or vector pointwise.
func evalUnary(env *Env, expr *ir.UOp, x values.Value) (values.Value, error) {
	switch expr.Op {
	case ir.UPlus:
		return nil, ErrTypeMismatch(expr, "unary + is not a valid operand")
	case ir.UMinus:
		switch v := x.(type) {
		case values.FloatV:
			return values.FloatV{X: ad.Neg(v.X)}, nil
		case values.IntV:
			return values.IntV{X: -v.X}, nil
		case values.VectorV:
			return values.VectorV{Elems: ad.VNeg(v.Elems)}, nil
		default:
			return nil, ErrTypeMismatch(expr, "cannot negate %T", x)
		}
	default:
		return nil, ErrTypeMismatch(expr, "unknown unary operator %v", expr.Op)
	}
}

func promoteIntToFloat(env *Env, v values.IntV) values.FloatV {
	return values.FloatV{X: env.lift(float64(v.X))}
}

// evalBinary applies expr.Op to (x, y) in that order, implementing
// every cell of the Op Evaluator's binary table, including the
// integer<->float promotion rule: if exactly one operand is IntV and
// the other FloatV, the integer is promoted before dispatch; IntV /
// IntV is true division and always returns FloatV.
func evalBinary(env *Env, expr *ir.BinOp, x, y values.Value) (values.Value, error) {
	switch xv := x.(type) {
	case values.FloatV:
		switch yv := y.(type) {
		case values.FloatV:
			return floatBinary(env, expr, xv, yv)
		case values.IntV:
			return floatBinary(env, expr, xv, promoteIntToFloat(env, yv))
		case values.VectorV:
			if expr.Op != ir.Multiply {
				return nil, ErrTypeMismatch(expr, "cannot apply %v to FloatV and VectorV", expr.Op)
			}
			return values.VectorV{Elems: scaleVector(yv.Elems, xv.X)}, nil
		default:
			return nil, ErrTypeMismatch(expr, "cannot apply %v to FloatV and %T", expr.Op, y)
		}
	case values.IntV:
		switch yv := y.(type) {
		case values.FloatV:
			return floatBinary(env, expr, promoteIntToFloat(env, xv), yv)
		case values.IntV:
			return intBinary(env, expr, xv, yv)
		case values.VectorV:
			promoted := promoteIntToFloat(env, xv)
			if expr.Op != ir.Multiply {
				return nil, ErrTypeMismatch(expr, "cannot apply %v to IntV and VectorV", expr.Op)
			}
			return values.VectorV{Elems: scaleVector(yv.Elems, promoted.X)}, nil
		default:
			return nil, ErrTypeMismatch(expr, "cannot apply %v to IntV and %T", expr.Op, y)
		}
	case values.VectorV:
		switch yv := y.(type) {
		case values.FloatV:
			if expr.Op != ir.Divide {
				return nil, ErrTypeMismatch(expr, "cannot apply %v to VectorV and FloatV", expr.Op)
			}
			return values.VectorV{Elems: scaleVector(xv.Elems, ad.Inverse(yv.X))}, nil
		case values.IntV:
			promoted := promoteIntToFloat(env, yv)
			if expr.Op != ir.Divide {
				return nil, ErrTypeMismatch(expr, "cannot apply %v to VectorV and IntV", expr.Op)
			}
			return values.VectorV{Elems: scaleVector(xv.Elems, ad.Inverse(promoted.X))}, nil
		case values.VectorV:
			switch expr.Op {
			case ir.BPlus:
				return values.VectorV{Elems: ad.VAdd(xv.Elems, yv.Elems)}, nil
			case ir.BMinus:
				return values.VectorV{Elems: ad.VSub(xv.Elems, yv.Elems)}, nil
			default:
				return nil, ErrTypeMismatch(expr, "cannot apply %v to two VectorV", expr.Op)
			}
		default:
			return nil, ErrTypeMismatch(expr, "cannot apply %v to VectorV and %T", expr.Op, y)
		}
	default:
		return nil, ErrTypeMismatch(expr, "cannot apply %v to %T and %T", expr.Op, x, y)
	}
}

func scaleVector(elems []ad.Scalar, scale ad.Scalar) []ad.Scalar {
	out := make([]ad.Scalar, len(elems))
	for i, e := range elems {
		out[i] = ad.Mul(e, scale)
	}
	return out
}

func floatBinary(env *Env, expr *ir.BinOp, x, y values.FloatV) (values.Value, error) {
	switch expr.Op {
	case ir.BPlus:
		return values.FloatV{X: ad.Add(x.X, y.X)}, nil
	case ir.BMinus:
		return values.FloatV{X: ad.Sub(x.X, y.X)}, nil
	case ir.Multiply:
		return values.FloatV{X: ad.Mul(x.X, y.X)}, nil
	case ir.Divide:
		return values.FloatV{X: ad.Div(x.X, y.X)}, nil
	case ir.Exp:
		return nil, ErrUnimplemented(expr, "Exp on two floats")
	default:
		return nil, ErrTypeMismatch(expr, "unknown binary operator %v", expr.Op)
	}
}

func intBinary(env *Env, expr *ir.BinOp, x, y values.IntV) (values.Value, error) {
	switch expr.Op {
	case ir.BPlus:
		return values.IntV{X: x.X + y.X}, nil
	case ir.BMinus:
		return values.IntV{X: x.X - y.X}, nil
	case ir.Multiply:
		return values.IntV{X: x.X * y.X}, nil
	case ir.Divide:
		return values.FloatV{X: ad.Div(env.lift(float64(x.X)), env.lift(float64(y.X)))}, nil
	case ir.Exp:
		return values.IntV{X: intPow(x.X, y.X)}, nil
	default:
		return nil, ErrTypeMismatch(expr, "unknown binary operator %v", expr.Op)
	}
}

func intPow(base, exp int64) int64 {
	return int64(math.Round(math.Pow(float64(base), float64(exp))))
}

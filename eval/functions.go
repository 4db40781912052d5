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
	"github.com/xiarush120220/penrose/build/ir"
	"github.com/xiarush120220/penrose/compdict"
	"github.com/xiarush120220/penrose/api/values"
)

// EvalFunctions is the evaluator's second entry point: it evaluates
// one objective's or constraint's argument expressions against env's
// translation and varying map, producing the differentiable argument
// tuple the optimizer feeds to that function. It never inserts
// varyings (the caller's translation clone already carries whatever
// was inserted for the current pass) and always runs with an empty
// debug map, since gradient lookups have no meaning while building an
// argument list rather than resolving a shape.
func EvalFunctions(env *Env, argExprs []ir.Expr) ([]values.Value, error) {
	fnEnv := &Env{
		Translation: env.Translation,
		Varying:     env.Varying,
		Debug:       compdict.DebugInfo{},
		Dict:        env.Dict,
		Arena:       env.Arena,
	}
	args := make([]values.Value, len(argExprs))
	for i, expr := range argExprs {
		v, err := evalToValue(fnEnv, expr)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

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
	"github.com/xiarush120220/penrose/compdict"
	"github.com/xiarush120220/penrose/internal/ad"
)

// PathMap is the fast, struct-keyed path -> value map consulted by
// the Path Resolver before it ever looks at the translation. Per
// Design Notes, keying by ir.PathKey (rather than the canonical
// string form used at the wire boundary) keeps the override check a
// cheap comparable-map lookup on every resolution.
type PathMap map[ir.PathKey]values.Value

// Env is everything one call to EvalExpr/ResolvePath/EvalShapes needs:
// the pass-owned translation, the varying override map, the debug
// info available to derivative/derivativePreconditioned, the
// computation dictionary, and the arena backing every differentiable
// scalar produced during the pass.
type Env struct {
	Translation *ir.Translation
	Varying     PathMap
	Debug       compdict.DebugInfo
	Dict        *compdict.Dictionary
	Arena       *ad.Arena
}

// NewEnv returns an environment ready to evaluate against a clone of
// t. Cloning here, rather than leaving it to each caller, is what
// makes purity of a pass (the translation a caller passed in is never
// mutated) a guarantee of this package rather than an accident of
// whichever decode path happened to hand NewEnv its own private copy.
// A nil Varying is treated as empty; Debug defaults to the zero
// value, matching Evaluate Functions' "empty debug map" contract.
func NewEnv(t *ir.Translation, dict *compdict.Dictionary, arena *ad.Arena) *Env {
	return &Env{
		Translation: t.Clone(),
		Varying:     PathMap{},
		Dict:        dict,
		Arena:       arena,
	}
}

func (env *Env) lift(x float64) ad.Scalar {
	return ad.ConstOf(env.Arena, x)
}

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

package ir

import "github.com/xiarush120220/penrose/api/values"

// TagExpr is a cell value in a Translation: either a pending
// expression, a cached evaluated value, or a value awaiting an
// asynchronous side channel. Pending is treated exactly like Done by
// every reader in this package.
type TagExpr interface {
	tagExprNode()
}

// OptEval is an unevaluated style expression.
type OptEval struct{ E Expr }

func (OptEval) tagExprNode() {}

// Done is a cached evaluated value.
type Done struct{ V values.Value }

func (Done) tagExprNode() {}

// Pending is a value awaiting an asynchronous side channel (e.g. text
// metrics computed outside this module).
type Pending struct{ V values.Value }

func (Pending) tagExprNode() {}

// FieldEntry is the value of one (name, field) slot: either a plain
// expression field, or a GPI (shape).
type FieldEntry interface {
	fieldEntryNode()
}

// FExpr is a field entry holding a single tagged expression.
type FExpr struct{ E TagExpr }

func (FExpr) fieldEntryNode() {}

// FGPI is a field entry holding a shape: a type name and a map from
// property name to tagged expression.
type FGPI struct {
	Type  string
	Props map[string]TagExpr
}

func (FGPI) fieldEntryNode() {}

// Translation is the nested mapping the style compiler produces:
// substance name -> field name -> field entry. It is expected (but
// not verified) to be acyclic.
type Translation struct {
	Names map[string]map[string]FieldEntry
}

// NewTranslation returns an empty translation.
func NewTranslation() *Translation {
	return &Translation{Names: map[string]map[string]FieldEntry{}}
}

// Clone deep-clones the translation's map structure so that mutations
// performed during one pass (see InsertExpr) never become visible to
// the caller's original. The leaves reachable from each FieldEntry
// (TagExpr, Expr, Value, and the ad.Scalar handles they carry) are
// immutable by convention and so are shared by reference: a write
// always replaces a map entry wholesale rather than mutating one in
// place, except for AccessPath writes, which copy-on-write the one
// slice they touch (see eval.InsertExpr).
func (t *Translation) Clone() *Translation {
	out := &Translation{Names: make(map[string]map[string]FieldEntry, len(t.Names))}
	for name, fields := range t.Names {
		cloned := make(map[string]FieldEntry, len(fields))
		for field, entry := range fields {
			cloned[field] = cloneFieldEntry(entry)
		}
		out.Names[name] = cloned
	}
	return out
}

func cloneFieldEntry(e FieldEntry) FieldEntry {
	switch v := e.(type) {
	case FExpr:
		return FExpr{E: v.E}
	case FGPI:
		props := make(map[string]TagExpr, len(v.Props))
		for k, p := range v.Props {
			props[k] = p
		}
		return FGPI{Type: v.Type, Props: props}
	default:
		return e
	}
}

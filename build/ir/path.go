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

import "fmt"

// Path is a typed handle into a Translation: a field, a shape
// property, or an indexed element inside one of those.
type Path interface {
	pathNode()
	// String returns the canonical dot/bracket textual form used in
	// diagnostics (error messages). It is a pure function of the
	// path's tag and operands (see PathKey, which is the in-memory
	// analogue used for O(1) comparisons during a pass).
	String() string
}

// FieldPath addresses a field entry: substance name + field name.
type FieldPath struct {
	Name, Field string
}

func (FieldPath) pathNode() {}

func (p FieldPath) String() string {
	return fmt.Sprintf("%s.%s", p.Name, p.Field)
}

// PropertyPath addresses a shape property.
type PropertyPath struct {
	Name, Field, Prop string
}

func (PropertyPath) pathNode() {}

func (p PropertyPath) String() string {
	return fmt.Sprintf("%s.%s.%s", p.Name, p.Field, p.Prop)
}

// AccessPath addresses an indexed element inside the vector (one
// index) or matrix (two indices) stored at Inner. Inner must be a
// FieldPath or PropertyPath; nested AccessPath is rejected by every
// component that constructs or consumes one.
type AccessPath struct {
	Inner   Path
	Indices []int
}

func (AccessPath) pathNode() {}

func (p AccessPath) String() string {
	s := p.Inner.String()
	for _, i := range p.Indices {
		s += fmt.Sprintf("[%d]", i)
	}
	return s
}

// PathKey is a comparable, allocation-free stand-in for a Path,
// suitable as a map key. Per Design Notes ("Path keys"), string
// serialization is reserved for the wire boundary; everything that
// runs inside a pass (the varying map, the memoization checks) keys
// by PathKey instead.
type PathKey struct {
	Name, Field, Prop string
	HasProp           bool
	NumIdx            int
	Idx0, Idx1        int
}

// KeyOf computes the PathKey of p. AccessPath nesting deeper than one
// level is not representable and is expected never to occur (callers
// reject it before reaching here).
func KeyOf(p Path) PathKey {
	switch v := p.(type) {
	case FieldPath:
		return PathKey{Name: v.Name, Field: v.Field}
	case PropertyPath:
		return PathKey{Name: v.Name, Field: v.Field, Prop: v.Prop, HasProp: true}
	case AccessPath:
		k := KeyOf(v.Inner)
		k.NumIdx = len(v.Indices)
		if len(v.Indices) > 0 {
			k.Idx0 = v.Indices[0]
		}
		if len(v.Indices) > 1 {
			k.Idx1 = v.Indices[1]
		}
		return k
	default:
		return PathKey{}
	}
}

// String renders the canonical textual form of a key, given the inner
// field/property it was computed from. It is the inverse of KeyOf
// composed with Path.String for the shapes KeyOf can produce.
func (k PathKey) String() string {
	s := k.Name + "." + k.Field
	if k.HasProp {
		s += "." + k.Prop
	}
	if k.NumIdx >= 1 {
		s += fmt.Sprintf("[%d]", k.Idx0)
	}
	if k.NumIdx >= 2 {
		s += fmt.Sprintf("[%d]", k.Idx1)
	}
	return s
}

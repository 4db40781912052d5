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
	"fmt"

	"github.com/pkg/errors"
	"github.com/xiarush120220/penrose/build/ir"
)

// ErrorKind is the closed set of failure kinds a pass can raise. All
// are fatal to the current pass; none are caught internally.
type ErrorKind int

const (
	// UnresolvedPath means a name, field or property is missing.
	UnresolvedPath ErrorKind = iota
	// TypeMismatch means operand types do not match any rule in the
	// Op Evaluator or Expression Evaluator.
	TypeMismatch
	// IndexOutOfBounds means a vector/matrix index fell outside [0, len).
	IndexOutOfBounds
	// Unimplemented covers Exp on floats, Matrix literals, ListAccess,
	// AccessPath reached through the resolver, and two-index
	// AccessPath writes.
	Unimplemented
	// UnsubstitutedVarying means a Vary leaf was reached during
	// evaluation; varyings must be inserted before evaluation starts.
	UnsubstitutedVarying
	// UnsupportedListElement means a list's first element has a type
	// that makes the list ill-formed.
	UnsupportedListElement
	// ShapeOrderingUnmatched means a declared shape name has no
	// evaluated shape.
	ShapeOrderingUnmatched
	// UnexpectedGPI means a field expression evaluated to a shape.
	UnexpectedGPI
)

func (k ErrorKind) String() string {
	switch k {
	case UnresolvedPath:
		return "UnresolvedPath"
	case TypeMismatch:
		return "TypeMismatch"
	case IndexOutOfBounds:
		return "IndexOutOfBounds"
	case Unimplemented:
		return "Unimplemented"
	case UnsubstitutedVarying:
		return "UnsubstitutedVarying"
	case UnsupportedListElement:
		return "UnsupportedListElement"
	case ShapeOrderingUnmatched:
		return "ShapeOrderingUnmatched"
	case UnexpectedGPI:
		return "UnexpectedGPI"
	default:
		return "?errorkind?"
	}
}

// Error captures a failure together with the offending expression or
// path, for diagnostics. There is no retry, no partial-result return,
// and no resumption protocol: a failed pass leaves the caller's
// inputs unchanged (the Translation the caller holds was never
// mutated; only the pass-owned clone was).
type Error struct {
	Kind  ErrorKind
	Path  ir.Path
	Expr  ir.Expr
	cause error
}

func (e *Error) Error() string {
	loc := ""
	if e.Path != nil {
		loc = fmt.Sprintf(" at %s", e.Path.String())
	}
	if e.cause != nil {
		return fmt.Sprintf("%s%s: %s", e.Kind, loc, e.cause)
	}
	return fmt.Sprintf("%s%s", e.Kind, loc)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.cause }

func newErr(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, cause: errors.Errorf(format, args...)}
}

func newErrAt(kind ErrorKind, expr ir.Expr, format string, args ...any) *Error {
	e := newErr(kind, format, args...)
	e.Expr = expr
	return e
}

func newErrAtPath(kind ErrorKind, p ir.Path, format string, args ...any) *Error {
	e := newErr(kind, format, args...)
	e.Path = p
	return e
}

// ErrUnresolvedPath reports a missing name/field/property.
func ErrUnresolvedPath(p ir.Path) error {
	return newErrAtPath(UnresolvedPath, p, "unresolved path %s", p.String())
}

// ErrTypeMismatch reports operands that match no operator rule.
func ErrTypeMismatch(expr ir.Expr, format string, args ...any) error {
	return newErrAt(TypeMismatch, expr, format, args...)
}

// ErrIndexOutOfBounds reports an index outside [0, len).
func ErrIndexOutOfBounds(expr ir.Expr, idx, length int) error {
	return newErrAt(IndexOutOfBounds, expr, "index %d out of bounds for length %d", idx, length)
}

// ErrUnimplemented reports a deliberately unsupported construct.
func ErrUnimplemented(expr ir.Expr, what string) error {
	return newErrAt(Unimplemented, expr, "%s is not implemented", what)
}

// ErrUnsubstitutedVarying reports a Vary leaf reached during evaluation.
func ErrUnsubstitutedVarying(expr ir.Expr) error {
	return newErrAt(UnsubstitutedVarying, expr, "varying value has not been substituted")
}

// ErrUnsupportedListElement reports a list whose first element makes
// it ill-formed.
func ErrUnsupportedListElement(expr ir.Expr, elem any) error {
	return newErrAt(UnsupportedListElement, expr, "unsupported list element type %T", elem)
}

// ErrShapeOrderingUnmatched reports a declared shape with no
// evaluated counterpart.
func ErrShapeOrderingUnmatched(name string) error {
	return newErr(ShapeOrderingUnmatched, "no evaluated shape named %q", name)
}

// ErrUnexpectedGPI reports a field expression that evaluated to a shape.
func ErrUnexpectedGPI(p ir.Path) error {
	return newErrAtPath(UnexpectedGPI, p, "field %s evaluated to a shape", p.String())
}

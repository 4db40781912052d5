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

// Package compdict is the evaluator's side of the computation
// dictionary boundary (spec §6): the registered set of named style
// functions a CompApp node may call. The real dictionary is built by
// the style compiler and injected by the caller; this package only
// defines the shapes involved and ships a small default registry
// covering the two reserved gradient-surfacing names plus a handful
// of ordinary numeric helpers, grounded on the evaluator's own
// autodiff primitives.
package compdict

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"github.com/xiarush120220/penrose/api/values"
	"github.com/xiarush120220/penrose/internal/ad"
)

// Arg is an unwrapped dictionary argument: either a values.Value or a
// values.GPI, matching the "strip the ArgVal wrapper" rule in the
// Expression Evaluator's CompApp case.
type Arg = any

// Func is an ordinary dictionary entry: it receives every CompApp
// argument already evaluated and unwrapped.
type Func func(args []Arg) (values.Value, error)

// PathMap is the string-keyed map a debug-aware entry reads from: the
// gradient or preconditioned-gradient component at one canonical path.
type PathMap map[string]values.Value

// DebugInfo bundles the two path maps surfaced to derivative and
// derivativePreconditioned. An empty DebugInfo is valid and is what
// Evaluate Functions passes, since it never needs gradient lookups.
type DebugInfo struct {
	Gradient        PathMap
	PrecondGradient PathMap
}

// DebugFunc is a dictionary entry reserved for the two names that
// consume (debugInfo, path-as-string) rather than ordinary arguments.
type DebugFunc func(debug DebugInfo, pathJSON string) (values.Value, error)

// ReservedDerivative and ReservedDerivativePreconditioned are the two
// names CompApp treats specially: their sole argument must be a path
// accessor, rewritten to its canonical AccessPath form before being
// serialized as the lookup key.
const (
	ReservedDerivative               = "derivative"
	ReservedDerivativePreconditioned = "derivativePreconditioned"
)

// Dictionary is the registry of named style functions a translation's
// CompApp nodes may call.
type Dictionary struct {
	fns      map[string]Func
	debugFns map[string]DebugFunc
}

// New returns an empty dictionary.
func New() *Dictionary {
	return &Dictionary{fns: map[string]Func{}, debugFns: map[string]DebugFunc{}}
}

// Register adds an ordinary entry, failing if the name is already
// registered or collides with a reserved debug name.
func (d *Dictionary) Register(name string, fn Func) error {
	if name == ReservedDerivative || name == ReservedDerivativePreconditioned {
		return errors.Errorf("%q is reserved for gradient lookups", name)
	}
	if _, ok := d.fns[name]; ok {
		return errors.Errorf("function %q already registered", name)
	}
	d.fns[name] = fn
	return nil
}

// RegisterDebug adds a debug-aware entry under one of the two
// reserved names.
func (d *Dictionary) RegisterDebug(name string, fn DebugFunc) error {
	if name != ReservedDerivative && name != ReservedDerivativePreconditioned {
		return errors.Errorf("%q is not a reserved debug name", name)
	}
	d.debugFns[name] = fn
	return nil
}

// Lookup returns the ordinary entry registered under name.
func (d *Dictionary) Lookup(name string) (Func, bool) {
	fn, ok := d.fns[name]
	return fn, ok
}

// LookupDebug returns the debug-aware entry registered under name.
func (d *Dictionary) LookupDebug(name string) (DebugFunc, bool) {
	fn, ok := d.debugFns[name]
	return fn, ok
}

// Default returns a dictionary with the two reserved gradient lookups
// and a small set of ordinary numeric helpers wired in. Callers (in
// practice, the style compiler) are expected to register whatever
// else their translations call; an evaluator with zero registered
// functions cannot run any real translation, so the default registry
// exists to make the package usable standalone and in tests.
func Default() *Dictionary {
	d := New()
	mustRegisterDebug(d, ReservedDerivative, gradientLookup(func(i DebugInfo) PathMap { return i.Gradient }))
	mustRegisterDebug(d, ReservedDerivativePreconditioned, gradientLookup(func(i DebugInfo) PathMap { return i.PrecondGradient }))
	mustRegister(d, "sqrt", unaryNumeric(ad.Sqrt))
	mustRegister(d, "absVal", unaryNumeric(ad.AbsVal))
	mustRegister(d, "max", binaryNumeric(func(x, y ad.Scalar) ad.Scalar {
		return ad.IfCond(ad.Gt(x, y), x, y)
	}))
	mustRegister(d, "min", binaryNumeric(func(x, y ad.Scalar) ad.Scalar {
		return ad.IfCond(ad.Lt(x, y), x, y)
	}))
	return d
}

func mustRegister(d *Dictionary, name string, fn Func) {
	if err := d.Register(name, fn); err != nil {
		panic(err)
	}
}

func mustRegisterDebug(d *Dictionary, name string, fn DebugFunc) {
	if err := d.RegisterDebug(name, fn); err != nil {
		panic(err)
	}
}

func gradientLookup(pick func(DebugInfo) PathMap) DebugFunc {
	return func(debug DebugInfo, pathJSON string) (values.Value, error) {
		m := pick(debug)
		v, ok := m[pathJSON]
		if !ok {
			return nil, errors.Errorf("no gradient component registered for path %s", pathJSON)
		}
		return v, nil
	}
}

func unaryNumeric(f func(ad.Scalar) ad.Scalar) Func {
	return func(args []Arg) (values.Value, error) {
		if len(args) != 1 {
			return nil, errors.Errorf("expected 1 argument, got %d", len(args))
		}
		x, err := scalarArg(args[0])
		if err != nil {
			return nil, err
		}
		return values.FloatV{X: f(x)}, nil
	}
}

func binaryNumeric(f func(x, y ad.Scalar) ad.Scalar) Func {
	return func(args []Arg) (values.Value, error) {
		if len(args) != 2 {
			return nil, errors.Errorf("expected 2 arguments, got %d", len(args))
		}
		x, err := scalarArg(args[0])
		if err != nil {
			return nil, err
		}
		y, err := scalarArg(args[1])
		if err != nil {
			return nil, err
		}
		return values.FloatV{X: f(x, y)}, nil
	}
}

func scalarArg(a Arg) (ad.Scalar, error) {
	switch v := a.(type) {
	case values.FloatV:
		return v.X, nil
	default:
		return ad.Scalar{}, errors.Errorf("expected a numerical argument, got %T", a)
	}
}

// ValidateNames checks a batch of names against a dictionary in one
// shot, joining every unresolved name into a single error with
// multierr instead of failing on the first. Intended for setup-time
// validation of a translation's CompApp call sites before a pass
// begins, not for the hot evaluation path.
func (d *Dictionary) ValidateNames(names []string) error {
	var errs error
	for _, name := range names {
		if name == ReservedDerivative || name == ReservedDerivativePreconditioned {
			if _, ok := d.debugFns[name]; !ok {
				errs = multierr.Append(errs, fmt.Errorf("missing debug entry %q", name))
			}
			continue
		}
		if _, ok := d.fns[name]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("missing dictionary entry %q", name))
		}
	}
	return errs
}

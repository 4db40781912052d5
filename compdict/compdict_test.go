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

package compdict_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiarush120220/penrose/api/values"
	"github.com/xiarush120220/penrose/compdict"
	"github.com/xiarush120220/penrose/internal/ad"
)

func TestRegisterRejectsReservedNames(t *testing.T) {
	d := compdict.New()
	err := d.Register(compdict.ReservedDerivative, func([]compdict.Arg) (values.Value, error) {
		return nil, nil
	})
	require.Error(t, err)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	d := compdict.New()
	fn := func([]compdict.Arg) (values.Value, error) { return nil, nil }
	require.NoError(t, d.Register("double", fn))
	require.Error(t, d.Register("double", fn))
}

func TestDefaultSqrt(t *testing.T) {
	d := compdict.Default()
	arena := ad.NewArena()
	fn, ok := d.Lookup("sqrt")
	require.True(t, ok)

	result, err := fn([]compdict.Arg{values.FloatV{X: ad.ConstOf(arena, 9)}})
	require.NoError(t, err)

	fv, ok := result.(values.FloatV)
	require.True(t, ok)
	assert.Equal(t, 3.0, ad.NumOf(fv.X))
}

func TestDefaultDerivativeLookup(t *testing.T) {
	d := compdict.Default()
	fn, ok := d.LookupDebug(compdict.ReservedDerivative)
	require.True(t, ok)

	arena := ad.NewArena()
	grad := compdict.DebugInfo{Gradient: compdict.PathMap{
		`{"name":"A","field":"x"}`: values.FloatV{X: ad.ConstOf(arena, 2.5)},
	}}
	result, err := fn(grad, `{"name":"A","field":"x"}`)
	require.NoError(t, err)
	fv, ok := result.(values.FloatV)
	require.True(t, ok)
	assert.Equal(t, 2.5, ad.NumOf(fv.X))

	_, err = fn(grad, "missing")
	assert.Error(t, err)
}

func TestValidateNamesReportsEveryMissingName(t *testing.T) {
	d := compdict.Default()
	err := d.ValidateNames([]string{"sqrt", "notRegistered", compdict.ReservedDerivative, "alsoMissing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notRegistered")
	assert.Contains(t, err.Error(), "alsoMissing")
}

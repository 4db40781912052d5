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

package state_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/xiarush120220/penrose/build/ir"
	"github.com/xiarush120220/penrose/internal/ad"
	"github.com/xiarush120220/penrose/state"
)

const sampleSnapshot = `{
	"rng": "seed-one",
	"varyingState": [1.5],
	"transr": {
		"A": {
			"x": {"kind": "expr", "tag": {"kind": "optEval", "expr": {"kind": "aFloat", "fix": 3}}}
		}
	},
	"paramsr": {"gradient": {}, "precondGradient": {}},
	"shapesr": []
}`

// Testable Property 8: encode(decode(json)) is a no-op up to JSON key
// ordering.
func TestRoundTrip(t *testing.T) {
	arena := ad.NewArena()
	varyingPaths := []ir.Path{ir.FieldPath{Name: "A", Field: "x"}}

	st, err := state.Decode([]byte(sampleSnapshot), varyingPaths, arena)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	out, err := st.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var want, got map[string]any
	if err := json.Unmarshal([]byte(sampleSnapshot), &want); err != nil {
		t.Fatalf("unmarshal original: %v", err)
	}
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("unmarshal round-tripped: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip changed the snapshot (-want +got):\n%s", diff)
	}
}

func TestRoundTripPreservesSeed(t *testing.T) {
	arena := ad.NewArena()
	varyingPaths := []ir.Path{ir.FieldPath{Name: "A", Field: "x"}}
	st, err := state.Decode([]byte(sampleSnapshot), varyingPaths, arena)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if st.Seed != "seed-one" {
		t.Fatalf("Seed = %q, want %q", st.Seed, "seed-one")
	}
	out, err := st.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var w struct {
		RNG string `json:"rng"`
	}
	if err := json.Unmarshal(out, &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if w.RNG != "seed-one" {
		t.Fatalf("re-encoded rng = %q, want %q", w.RNG, "seed-one")
	}
}

// Testable Property 9: BuildVaryingMap enforces that paths and values
// have equal length, including the empty case.
func TestPathMapLengthLaw(t *testing.T) {
	arena := ad.NewArena()

	if _, err := state.BuildVaryingMap(arena, nil, []float64{1}); err == nil {
		t.Fatal("expected an error for mismatched lengths")
	}
	m, err := state.BuildVaryingMap(arena, nil, nil)
	if err != nil {
		t.Fatalf("BuildVaryingMap(nil, nil): %v", err)
	}
	if len(m) != 0 {
		t.Fatalf("got %d entries, want 0", len(m))
	}

	paths := []ir.Path{
		ir.FieldPath{Name: "A", Field: "x"},
		ir.FieldPath{Name: "A", Field: "y"},
	}
	m, err = state.BuildVaryingMap(arena, paths, []float64{1, 2})
	if err != nil {
		t.Fatalf("BuildVaryingMap: %v", err)
	}
	if len(m) != len(paths) {
		t.Fatalf("got %d entries, want %d", len(m), len(paths))
	}
}

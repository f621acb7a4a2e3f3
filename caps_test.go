// Copyright 2015 Matthew Holt and The Caddy Authors
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

package protosel

import "testing"

func TestLinearFuncApply(t *testing.T) {
	f := LinearFunc{C: 10, M: 2}
	if got := f.Apply(0); got != 10 {
		t.Errorf("Apply(0) = %v, want 10", got)
	}
	if got := f.Apply(5); got != 20 {
		t.Errorf("Apply(5) = %v, want 20", got)
	}
}

func TestLinearFuncIntersectParallel(t *testing.T) {
	a := LinearFunc{C: 10, M: 2}
	b := LinearFunc{C: 20, M: 2}
	if _, ok := a.Intersect(b); ok {
		t.Error("expected no intersection for parallel functions")
	}
}

func TestLinearFuncIntersect(t *testing.T) {
	a := LinearFunc{C: 100, M: 1}
	b := LinearFunc{C: 0, M: 2}
	x, ok := a.Intersect(b)
	if !ok {
		t.Fatal("expected an intersection")
	}
	if got := a.Apply(x); got != b.Apply(x) {
		t.Errorf("functions disagree at claimed intersection: %v vs %v", got, b.Apply(x))
	}
	if x != 100 {
		t.Errorf("intersection x = %v, want 100", x)
	}
}

func TestThresholdIsFinite(t *testing.T) {
	cases := []struct {
		t    Threshold
		want bool
	}{
		{ThreshAuto, false},
		{ThreshInf, false},
		{Threshold(0), true},
		{Threshold(4096), true},
	}
	for _, c := range cases {
		if got := c.t.IsFinite(); got != c.want {
			t.Errorf("Threshold(%d).IsFinite() = %v, want %v", c.t, got, c.want)
		}
	}
}

func TestProtoCapsRangeAt(t *testing.T) {
	caps := ProtoCaps{
		MinLength: 0,
		Ranges: []ProtoRange{
			{MaxLength: 100, Perf: LinearFunc{C: 1}},
			{MaxLength: 1000, Perf: LinearFunc{C: 2}},
		},
	}

	r, ok := caps.RangeAt(50)
	if !ok || r.MaxLength != 100 {
		t.Errorf("RangeAt(50) = %+v, %v; want first range", r, ok)
	}

	r, ok = caps.RangeAt(500)
	if !ok || r.MaxLength != 1000 {
		t.Errorf("RangeAt(500) = %+v, %v; want second range", r, ok)
	}

	if _, ok := caps.RangeAt(2000); ok {
		t.Error("RangeAt(2000) should not find a range")
	}

	if got := caps.MaxSupportedLength(); got != 1000 {
		t.Errorf("MaxSupportedLength() = %d, want 1000", got)
	}
}

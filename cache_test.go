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

import (
	"errors"
	"testing"
)

func TestSelectCacheLookupBuildsOnce(t *testing.T) {
	c := newSelectCache()
	param := SelectParam{OpID: OpPut, DTClass: DTContig, SGCount: 1, MemType: MemHost}

	builds := 0
	build := func() (*SelectElem, error) {
		builds++
		return &SelectElem{thresholds: []ThresholdElem{{MaxMsgLength: SizeMax}}}, nil
	}

	first, err := c.lookup(param, build)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	second, err := c.lookup(param, build)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	if builds != 1 {
		t.Errorf("build ran %d times, want 1", builds)
	}
	if first != second {
		t.Error("expected the same cached *SelectElem on both lookups")
	}
	if got := c.len(); got != 1 {
		t.Errorf("len() = %d, want 1", got)
	}
}

func TestSelectCacheFastPath(t *testing.T) {
	c := newSelectCache()
	paramA := SelectParam{OpID: OpPut}
	paramB := SelectParam{OpID: OpGet}

	elemA, err := c.lookup(paramA, func() (*SelectElem, error) {
		return &SelectElem{thresholds: []ThresholdElem{{MaxMsgLength: SizeMax}}}, nil
	})
	if err != nil {
		t.Fatalf("lookup A: %v", err)
	}

	if got, ok := c.fastLookup(paramA); !ok || got != elemA {
		t.Error("expected fast path to hit for the most recent key")
	}

	if _, err := c.lookup(paramB, func() (*SelectElem, error) {
		return &SelectElem{thresholds: []ThresholdElem{{MaxMsgLength: SizeMax}}}, nil
	}); err != nil {
		t.Fatalf("lookup B: %v", err)
	}

	if _, ok := c.fastLookup(paramA); ok {
		t.Error("fast path should have been evicted by the lookup for paramB")
	}
	if _, ok := c.fastLookup(paramB); !ok {
		t.Error("fast path should now hold paramB")
	}
}

func TestSelectCacheBuildFailureNotCached(t *testing.T) {
	c := newSelectCache()
	param := SelectParam{OpID: OpPut}
	wantErr := errors.New("boom")

	_, err := c.lookup(param, func() (*SelectElem, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("lookup err = %v, want %v", err, wantErr)
	}
	if got := c.len(); got != 0 {
		t.Errorf("len() after failed build = %d, want 0", got)
	}
	if _, ok := c.fastLookup(param); ok {
		t.Error("a failed build must not populate the fast path")
	}
}

func TestSelectCacheCleanup(t *testing.T) {
	c := newSelectCache()
	param := SelectParam{OpID: OpPut}
	_, err := c.lookup(param, func() (*SelectElem, error) {
		return &SelectElem{thresholds: []ThresholdElem{{MaxMsgLength: SizeMax}}}, nil
	})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	c.cleanup()
	if got := c.len(); got != 0 {
		t.Errorf("len() after cleanup = %d, want 0", got)
	}
	if _, ok := c.fastLookup(param); ok {
		t.Error("fast path should be invalidated after cleanup")
	}
}

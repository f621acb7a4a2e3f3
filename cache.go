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
	"time"

	"go.uber.org/zap"
)

// SelectCache maps packed SelectParam values to their SelectElem, for one
// (ep_cfg, rkey_cfg) pair. It also keeps a one-slot fast-path cache of the
// most recently used entry. Per the concurrency model (spec §5), a
// SelectCache is worker-private: all reads, inserts and cleanup happen
// under the owning Worker's exclusive context, so no locks are taken here.
type SelectCache struct {
	hash map[uint64]*SelectElem

	lastKeyValid bool
	lastKey      uint64
	lastValue    *SelectElem
}

func newSelectCache() *SelectCache {
	return &SelectCache{hash: make(map[uint64]*SelectElem)}
}

// resetFastPath invalidates the one-slot fast-path cache. It must be
// called before any structural mutation of the hash completes: an insert
// may (conceptually) reallocate the backing storage, so any previously
// cached pointer must not be trusted afterwards. Go's map implementation
// never relocates the *SelectElem values themselves (only the map's
// internal buckets), but the cache models the stronger guarantee the
// original C implementation relies on, so behavior stays correct even if
// the storage were swapped for something with real pointer instability.
func (c *SelectCache) resetFastPath() {
	c.lastKeyValid = false
	c.lastValue = nil
}

// fastLookup returns the cached element for param if it was the most
// recently looked-up key in this cache.
func (c *SelectCache) fastLookup(param SelectParam) (*SelectElem, bool) {
	key := param.Pack()
	if c.lastKeyValid && c.lastKey == key {
		return c.lastValue, true
	}
	return nil, false
}

func (c *SelectCache) memoize(key uint64, elem *SelectElem) {
	c.lastKey = key
	c.lastKeyValid = true
	c.lastValue = elem
}

// lookup returns the SelectElem for param, building it (via build) on
// first use. On build failure, nothing is cached and the error is
// returned; a subsequent identical lookup retries from scratch.
func (c *SelectCache) lookup(param SelectParam, build func() (*SelectElem, error)) (*SelectElem, error) {
	if elem, ok := c.fastLookup(param); ok {
		observeLookup(lookupResultFastHit)
		return elem, nil
	}

	key := param.Pack()
	if elem, ok := c.hash[key]; ok {
		observeLookup(lookupResultHit)
		c.memoize(key, elem)
		return elem, nil
	}

	start := time.Now()
	c.resetFastPath()

	elem, err := build()
	if err != nil {
		observeLookup(lookupResultFailed)
		logBuildFailure(param, err)
		return nil, err
	}

	c.hash[key] = elem
	cacheMetrics.elementsTotal.Inc()
	cacheMetrics.buildDurationS.WithLabelValues(cpuSIMDLabel).Observe(time.Since(start).Seconds())
	c.memoize(key, elem)
	observeLookup(lookupResultMiss)
	return elem, nil
}

// cleanup releases every cached SelectElem and resets the cache to empty.
func (c *SelectCache) cleanup() {
	cacheMetrics.elementsTotal.Sub(float64(len(c.hash)))
	c.hash = make(map[uint64]*SelectElem)
	c.resetFastPath()
}

// len reports how many elements are currently cached, for diagnostics.
func (c *SelectCache) len() int {
	return len(c.hash)
}

func logBuildFailure(param SelectParam, err error) {
	var unsupported *unsupportedLengthError
	switch {
	case errors.As(err, &unsupported):
		Log().Warn("no protocol for selection at message length",
			zap.String("select_param", param.String()),
			zap.Uint64("msg_length", unsupported.msgLength))
	case errors.Is(err, ErrNoElem):
		// already logged at debug level by the candidate initializer
	default:
		Log().Error("failed to build selection",
			zap.String("select_param", param.String()),
			zap.Error(err))
	}
}

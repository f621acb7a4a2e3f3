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
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// EpCfgIndex identifies one endpoint configuration. The endpoint
// configuration store itself is an external, read-only collaborator; the
// core only ever treats this as an opaque key.
type EpCfgIndex int

// RkeyCfgIndex identifies one remote-key configuration, or RkeyCfgIndexNone
// if a selection has no associated rkey configuration.
type RkeyCfgIndex int

// RkeyCfgIndexNone marks the absence of an rkey configuration.
const RkeyCfgIndexNone RkeyCfgIndex = -1

// RkeyConfig may optionally be implemented by the opaque value passed as
// rkeyConfigKey to Worker.Select. If it is, the engine asserts that the
// rkey configuration belongs to the same endpoint configuration as the
// selection, exactly as ucp_proto_select_init_protocols does in the
// original implementation.
type RkeyConfig interface {
	EpCfgIndex() EpCfgIndex
}

// Worker owns one SelectCache per (ep_cfg, rkey_cfg) pair it has been
// asked to select for. It models the "single-threaded per worker"
// scheduling assumption of spec §5: a Worker's caches take no locks, and
// callers must serialize all access to a given Worker themselves.
type Worker struct {
	config      Config
	caches      map[epRkeyKey]*SelectCache
	dumpLimiter *rate.Limiter
}

type epRkeyKey struct {
	ep   EpCfgIndex
	rkey RkeyCfgIndex
}

// NewWorker creates a Worker with the given configuration.
func NewWorker(cfg Config) *Worker {
	w := &Worker{
		config: cfg,
		caches: make(map[epRkeyKey]*SelectCache),
	}
	if cfg.DumpRateLimit > 0 {
		w.dumpLimiter = rate.NewLimiter(rate.Limit(cfg.DumpRateLimit), cfg.DumpBurst)
	}
	return w
}

func (w *Worker) cacheFor(ep EpCfgIndex, rkey RkeyCfgIndex) *SelectCache {
	key := epRkeyKey{ep, rkey}
	c, ok := w.caches[key]
	if !ok {
		c = newSelectCache()
		w.caches[key] = c
	}
	return c
}

// Select returns the SelectElem for (ep, rkey, param), building and
// caching it on first use. ep is required; rkey may be RkeyCfgIndexNone.
func (w *Worker) Select(ep EpCfgIndex, rkey RkeyCfgIndex, epConfigKey, rkeyConfigKey any, param SelectParam) (*SelectElem, error) {
	if rkey != RkeyCfgIndexNone {
		if rc, ok := rkeyConfigKey.(RkeyConfig); ok {
			if got := rc.EpCfgIndex(); got != ep {
				panic(fmt.Sprintf("protosel: rkey config ep_cfg_index=%d does not match ep_cfg_index=%d", got, ep))
			}
		}
	}

	cache := w.cacheFor(ep, rkey)
	return cache.lookup(param, func() (*SelectElem, error) {
		return buildSelectElem(w, epConfigKey, rkeyConfigKey, param)
	})
}

// SelectParallel is the opt-in counterpart to Select: it probes every
// registered protocol concurrently via InitProtocolsParallel instead of the
// default sequential walk, which is worthwhile when a host's Init
// implementations do real work (querying remote hardware capabilities, for
// instance) rather than just returning static caps. Results are cached
// under the same key as Select, so a selection built by either path is
// reused by the other.
func (w *Worker) SelectParallel(ctx context.Context, ep EpCfgIndex, rkey RkeyCfgIndex, epConfigKey, rkeyConfigKey any, param SelectParam) (*SelectElem, error) {
	if rkey != RkeyCfgIndexNone {
		if rc, ok := rkeyConfigKey.(RkeyConfig); ok {
			if got := rc.EpCfgIndex(); got != ep {
				panic(fmt.Sprintf("protosel: rkey config ep_cfg_index=%d does not match ep_cfg_index=%d", got, ep))
			}
		}
	}

	cache := w.cacheFor(ep, rkey)
	return cache.lookup(param, func() (*SelectElem, error) {
		return buildSelectElemParallel(ctx, w, epConfigKey, rkeyConfigKey, param)
	})
}

// SelectProtocol is the request-issue fast path: it resolves (or builds)
// the SelectElem for (ep, rkey, param), then searches its threshold table
// for msgLength.
func (w *Worker) SelectProtocol(ep EpCfgIndex, rkey RkeyCfgIndex, epConfigKey, rkeyConfigKey any, param SelectParam, msgLength uint64) (*ThresholdElem, error) {
	elem, err := w.Select(ep, rkey, epConfigKey, rkeyConfigKey, param)
	if err != nil {
		return nil, err
	}
	return elem.Search(msgLength), nil
}

// Cleanup releases every cached SelectElem across every (ep_cfg, rkey_cfg)
// pair this Worker has selected for.
func (w *Worker) Cleanup() {
	for _, c := range w.caches {
		c.cleanup()
	}
	w.caches = make(map[epRkeyKey]*SelectCache)
}

// CacheLen reports how many selections are cached for (ep, rkey),
// primarily for tests and diagnostics.
func (w *Worker) CacheLen(ep EpCfgIndex, rkey RkeyCfgIndex) int {
	key := epRkeyKey{ep, rkey}
	c, ok := w.caches[key]
	if !ok {
		return 0
	}
	return c.len()
}

// buildSelectElem runs the full candidate-initialization and
// envelope-building pipeline for one selection, producing a permanent
// SelectElem or failing with ErrNoElem or ErrUnsupported.
func buildSelectElem(w *Worker, epConfigKey, rkeyConfigKey any, param SelectParam) (*SelectElem, error) {
	pi, err := initProtocolsFor(w, epConfigKey, rkeyConfigKey, param)
	if err != nil {
		return nil, err
	}

	tmp, err := buildThresholds(pi.mask, &pi.caps)
	if err != nil {
		return nil, err
	}

	return newSelectElem(pi, tmp)
}

// buildSelectElemParallel is buildSelectElem's counterpart for
// Worker.SelectParallel: it substitutes InitProtocolsParallel for the
// sequential initProtocolsFor, otherwise running the identical
// envelope-building pipeline.
func buildSelectElemParallel(ctx context.Context, w *Worker, epConfigKey, rkeyConfigKey any, param SelectParam) (*SelectElem, error) {
	pi, err := InitProtocolsParallel(ctx, w, epConfigKey, rkeyConfigKey, param)
	if err != nil {
		return nil, err
	}

	tmp, err := buildThresholds(pi.mask, &pi.caps)
	if err != nil {
		return nil, err
	}

	return newSelectElem(pi, tmp)
}

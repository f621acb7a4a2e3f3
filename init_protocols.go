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

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// initProtocols is the transient result of probing every registered
// protocol for a single selection parameter tuple.
type initProtocols struct {
	selectParam SelectParam
	mask        ProtoIDMask
	caps        [MaxProtocols]ProtoCaps
	privBuf     []byte
	privOffsets [MaxProtocols]int
	privSizes   [MaxProtocols]int
}

// initProtocolsFor calls every registered protocol's Init, in stable
// registration order, and collects the subset that accepted. epConfigKey
// and rkeyConfigKey are forwarded to each protocol unchanged; rkeyConfigKey
// may be nil. Returns ErrNoElem if no protocol accepted.
func initProtocolsFor(w *Worker, epConfigKey, rkeyConfigKey any, selectParam SelectParam) (*initProtocols, error) {
	protocols := Protocols()

	out := &initProtocols{selectParam: selectParam}
	if len(protocols) == 0 {
		Log().Debug("no protocols found for selection", zap.String("select_param", selectParam.String()))
		return nil, ErrNoElem
	}

	buf := make([]byte, len(protocols)*PrivMax)
	offset := 0

	for i, p := range protocols {
		id := ProtoID(i)
		scratch := buf[offset : offset+PrivMax : offset+PrivMax]

		params := &InitParams{
			Worker:        w,
			SelectParam:   selectParam,
			EpConfigKey:   epConfigKey,
			RkeyConfigKey: rkeyConfigKey,
			ProtoName:     p.Name(),
		}

		privSize, caps, err := p.Init(params, scratch)
		if err != nil {
			continue
		}

		out.mask = out.mask.Set(id)
		out.caps[id] = caps
		out.privOffsets[id] = offset
		out.privSizes[id] = privSize
		offset += privSize
	}

	if out.mask.IsEmpty() {
		Log().Debug("no protocols found for selection", zap.String("select_param", selectParam.String()))
		return nil, ErrNoElem
	}

	out.privBuf = buf[:offset]
	return out, nil
}

// InitProtocolsParallel is an alternative candidate initializer which
// probes every registered protocol concurrently using an errgroup, rather
// than the default sequential walk. It exists for hosts that want to
// amortize expensive Init() implementations (e.g. ones that query remote
// hardware capabilities) across goroutines before the engine settles back
// into its normally single-threaded, lock-free per-worker model; the
// result is identical to initProtocolsFor, just computed with bounded
// fan-out. Each protocol still writes into its own private region of a
// pre-sized buffer, so no synchronization is needed between workers
// beyond the final sequential merge of masks/offsets. It is exported so a
// host can opt into it directly through Worker.SelectParallel, rather than
// only through the package's own tests.
func InitProtocolsParallel(ctx context.Context, w *Worker, epConfigKey, rkeyConfigKey any, selectParam SelectParam) (*initProtocols, error) {
	protocols := Protocols()
	if len(protocols) == 0 {
		Log().Debug("no protocols found for selection", zap.String("select_param", selectParam.String()))
		return nil, ErrNoElem
	}

	buf := make([]byte, len(protocols)*PrivMax)

	type probeResult struct {
		ok       bool
		privSize int
		caps     ProtoCaps
	}
	results := make([]probeResult, len(protocols))

	g, _ := errgroup.WithContext(ctx)
	for i, p := range protocols {
		i, p := i, p
		g.Go(func() error {
			offset := i * PrivMax
			scratch := buf[offset : offset+PrivMax : offset+PrivMax]
			params := &InitParams{
				Worker:        w,
				SelectParam:   selectParam,
				EpConfigKey:   epConfigKey,
				RkeyConfigKey: rkeyConfigKey,
				ProtoName:     p.Name(),
			}
			privSize, caps, err := p.Init(params, scratch)
			if err != nil {
				return nil // declining is not a failure
			}
			results[i] = probeResult{ok: true, privSize: privSize, caps: caps}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Sequential merge preserves registration-order offsets, exactly like
	// the default sequential path, so downstream tie-breaking is
	// unaffected by how many goroutines happened to run concurrently.
	out := &initProtocols{selectParam: selectParam}
	offset := 0
	packed := make([]byte, 0, len(buf))
	for i, r := range results {
		if !r.ok {
			continue
		}
		id := ProtoID(i)
		out.mask = out.mask.Set(id)
		out.caps[id] = r.caps
		out.privOffsets[id] = offset
		out.privSizes[id] = r.privSize
		srcOffset := i * PrivMax
		packed = append(packed, buf[srcOffset:srcOffset+r.privSize]...)
		offset += r.privSize
	}

	if out.mask.IsEmpty() {
		Log().Debug("no protocols found for selection", zap.String("select_param", selectParam.String()))
		return nil, ErrNoElem
	}

	out.privBuf = packed
	return out, nil
}

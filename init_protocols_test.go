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
	"testing"

	"github.com/stretchr/testify/require"
)

type decliningProtocol struct{ name string }

func (p *decliningProtocol) Name() string { return p.name }
func (p *decliningProtocol) Init(*InitParams, []byte) (int, ProtoCaps, error) {
	return 0, ProtoCaps{}, ErrNoElem
}
func (p *decliningProtocol) ConfigStr([]byte) string { return p.name }

func TestInitProtocolsForSkipsDecliningProtocols(t *testing.T) {
	withEmptyRegistry(t, func() {
		RegisterProtocol(&decliningProtocol{name: "test-init-decline"})
		RegisterProtocol(&fixedCapsProtocol{
			name: "test-init-accept",
			caps: ProtoCaps{
				Ranges:    []ProtoRange{{MaxLength: SizeMax, Perf: LinearFunc{C: 1, M: 1}}},
				CfgThresh: ThreshAuto,
			},
		})

		w := NewWorker(DefaultConfig())
		pi, err := initProtocolsFor(w, nil, nil, SelectParam{OpID: OpPut})
		require.NoError(t, err)

		require.Equal(t, 1, pi.mask.Count())
		require.True(t, pi.mask.Has(1))
		require.False(t, pi.mask.Has(0))
	})
}

func TestInitProtocolsParallelMatchesSequential(t *testing.T) {
	withEmptyRegistry(t, func() {
		RegisterProtocol(&fixedCapsProtocol{
			name: "test-init-par-a",
			caps: ProtoCaps{
				Ranges:    []ProtoRange{{MaxLength: 1000, Perf: LinearFunc{C: 1, M: 1}}},
				CfgThresh: ThreshAuto,
			},
		})
		RegisterProtocol(&fixedCapsProtocol{
			name: "test-init-par-b",
			caps: ProtoCaps{
				Ranges:    []ProtoRange{{MaxLength: SizeMax, Perf: LinearFunc{C: 100, M: 1}}},
				CfgThresh: ThreshAuto,
			},
		})

		w := NewWorker(DefaultConfig())
		param := SelectParam{OpID: OpGet}

		seq, err := initProtocolsFor(w, nil, nil, param)
		require.NoError(t, err)

		par, err := InitProtocolsParallel(context.Background(), w, nil, nil, param)
		require.NoError(t, err)

		require.Equal(t, seq.mask, par.mask)
		require.Equal(t, seq.caps, par.caps)
		require.Equal(t, seq.privOffsets, par.privOffsets)
		require.Equal(t, seq.privSizes, par.privSizes)
		require.Equal(t, seq.privBuf, par.privBuf)
	})
}

func TestInitProtocolsForNoAcceptorsReturnsNoElem(t *testing.T) {
	withEmptyRegistry(t, func() {
		RegisterProtocol(&decliningProtocol{name: "test-init-all-decline"})

		w := NewWorker(DefaultConfig())
		_, err := initProtocolsFor(w, nil, nil, SelectParam{OpID: OpPut})
		require.ErrorIs(t, err, ErrNoElem)
	})
}

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

import "fmt"

// ProtoConfig bundles the protocol chosen for one threshold range with its
// private region and a copy of the originating SelectParam.
type ProtoConfig struct {
	SelectParam SelectParam
	Proto       ProtoID
	Priv        []byte
}

// ThresholdElem asserts that ProtoConfig.Proto is the chosen protocol for
// every length up to and including MaxMsgLength (and after the previous
// element's MaxMsgLength, exclusive).
type ThresholdElem struct {
	MaxMsgLength uint64
	ProtoConfig  ProtoConfig
}

// SelectElem is the persistent, per-(ep_cfg, rkey_cfg, params) decision: it
// owns the private-area buffer and an ordered threshold array covering
// [0, SizeMax]. It is created once by the cache and never mutated
// afterwards.
type SelectElem struct {
	privBuf    []byte
	thresholds []ThresholdElem
}

// newSelectElem assembles a permanent SelectElem from the transient
// candidate-initialization result and the temporary threshold list
// produced by buildThresholds.
func newSelectElem(pi *initProtocols, tmp []thresholdTmpElem) (*SelectElem, error) {
	if len(tmp) == 0 {
		panic("protosel: internal invariant violated: empty threshold list")
	}
	if tmp[len(tmp)-1].maxLength != SizeMax {
		panic(fmt.Sprintf("protosel: internal invariant violated: last threshold max_length=%d, want SizeMax", tmp[len(tmp)-1].maxLength))
	}

	thresholds := make([]ThresholdElem, len(tmp))
	var prevMax uint64
	havePrev := false
	for i, e := range tmp {
		if havePrev && e.maxLength <= prevMax {
			panic(fmt.Sprintf("protosel: internal invariant violated: max_length=%d did not increase past previous=%d", e.maxLength, prevMax))
		}
		prevMax, havePrev = e.maxLength, true

		offset := pi.privOffsets[e.protoID]
		size := pi.privSizes[e.protoID]

		thresholds[i] = ThresholdElem{
			MaxMsgLength: e.maxLength,
			ProtoConfig: ProtoConfig{
				SelectParam: pi.selectParam,
				Proto:       e.protoID,
				Priv:        pi.privBuf[offset : offset+size : offset+size],
			},
		}
	}

	return &SelectElem{
		privBuf:    pi.privBuf,
		thresholds: thresholds,
	}, nil
}

// Search returns the threshold element whose range contains msgLength, by
// linear scan from index 0. The array is typically very short (a handful
// of entries), so a linear scan beats binary search here.
func (e *SelectElem) Search(msgLength uint64) *ThresholdElem {
	for i := range e.thresholds {
		if msgLength <= e.thresholds[i].MaxMsgLength {
			return &e.thresholds[i]
		}
	}
	// Unreachable: the last threshold always covers SizeMax.
	return &e.thresholds[len(e.thresholds)-1]
}

// Thresholds returns the full ordered threshold table, for diagnostics.
func (e *SelectElem) Thresholds() []ThresholdElem {
	return e.thresholds
}

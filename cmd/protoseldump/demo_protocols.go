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

package main

import (
	"fmt"

	"github.com/quicproto/protosel"
)

// eagerProtocol models a copy-and-send transport: cheap fixed overhead,
// but its marginal per-byte cost is high since the whole message is
// copied through a bounce buffer. It declines generic datatypes, and its
// single cost range ends at maxLength, so it is never chosen for larger
// messages.
type eagerProtocol struct {
	maxLength uint64
}

func (p *eagerProtocol) Name() string { return "eager" }

func (p *eagerProtocol) Init(params *protosel.InitParams, priv []byte) (int, protosel.ProtoCaps, error) {
	if params.SelectParam.DTClass == protosel.DTGeneric {
		return 0, protosel.ProtoCaps{}, fmt.Errorf("eager: generic datatypes unsupported")
	}

	caps := protosel.ProtoCaps{
		MinLength: 0,
		Ranges: []protosel.ProtoRange{
			{MaxLength: p.maxLength, Perf: protosel.LinearFunc{C: 200e-9, M: 2e-9}},
		},
		CfgThresh: protosel.ThreshAuto,
	}
	return 0, caps, nil
}

func (p *eagerProtocol) ConfigStr([]byte) string {
	return fmt.Sprintf("eager copy-and-send, up to %d bytes", p.maxLength)
}

// rendezvousProtocol models a zero-copy handshake transport: expensive
// fixed overhead (the handshake round trip), but near-zero marginal cost
// since the data moves directly between the two sides' registered memory.
type rendezvousProtocol struct{}

func (p *rendezvousProtocol) Name() string { return "rndv" }

func (p *rendezvousProtocol) Init(params *protosel.InitParams, priv []byte) (int, protosel.ProtoCaps, error) {
	caps := protosel.ProtoCaps{
		MinLength: 0,
		Ranges: []protosel.ProtoRange{
			{MaxLength: protosel.SizeMax, Perf: protosel.LinearFunc{C: 3000e-9, M: 0.05e-9}},
		},
		CfgThresh: protosel.ThreshAuto,
	}
	return 0, caps, nil
}

func (p *rendezvousProtocol) ConfigStr([]byte) string {
	return "rendezvous zero-copy"
}

func init() {
	protosel.RegisterProtocol(&eagerProtocol{maxLength: 16384})
	protosel.RegisterProtocol(&rendezvousProtocol{})
}

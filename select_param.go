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

// OpID identifies the kind of communication operation being selected for.
type OpID uint8

const (
	OpPut OpID = iota
	OpGet
	OpSend
	OpRecv
	OpAtomicPost
	OpAtomicFetch
)

var opIDNames = [...]string{
	OpPut:         "put",
	OpGet:         "get",
	OpSend:        "send",
	OpRecv:        "recv",
	OpAtomicPost:  "atomic_post",
	OpAtomicFetch: "atomic_fetch",
}

func (id OpID) String() string {
	if int(id) < len(opIDNames) && opIDNames[id] != "" {
		return opIDNames[id]
	}
	return fmt.Sprintf("op(%d)", id)
}

// OpFlags is a bitset of per-request operation attributes. Only a subset
// of the bits (see OpAttrMask) actually affect protocol selection; the
// rest may be used by request issuance for other purposes.
type OpFlags uint16

const (
	// OpFlagFastCmpl requests the fastest possible local completion
	// notification, even at the cost of weaker remote-completion
	// semantics.
	OpFlagFastCmpl OpFlags = 1 << iota
	// OpFlagForceImm forces immediate (eager) data transfer regardless
	// of what the cost model would otherwise pick.
	OpFlagForceImm
	// OpFlagMultiRecv hints that the receive side is prepared to match
	// multiple fragments of this operation.
	OpFlagMultiRecv
)

// opAttrSelectMask is the subset of OpFlags bits kept when deriving
// op_attr_mask (see OpAttrMask); other bits (reserved for the request-issue
// fast path) are masked away there. Pack and SelectParam equality still
// use the full OpFlags value.
const opAttrSelectMask = OpFlagFastCmpl | OpFlagForceImm

// OpAttrMask returns the subset of bits in flags that influence protocol
// selection.
func OpAttrMask(flags OpFlags) OpFlags {
	return flags & opAttrSelectMask
}

// DTClass identifies the shape of the datatype being transferred.
type DTClass uint8

const (
	DTContig DTClass = iota
	DTIOV
	DTGeneric
)

var dtClassNames = [...]string{
	DTContig:  "contiguous",
	DTIOV:     "iov",
	DTGeneric: "generic",
}

func (c DTClass) String() string {
	if int(c) < len(dtClassNames) && dtClassNames[c] != "" {
		return dtClassNames[c]
	}
	return fmt.Sprintf("dtclass(%d)", c)
}

// MemType identifies where the operation's buffer(s) live.
type MemType uint8

const (
	MemHost MemType = iota
	MemDevice
	MemManaged
)

var memTypeNames = [...]string{
	MemHost:    "host",
	MemDevice:  "device",
	MemManaged: "managed",
}

func (m MemType) String() string {
	if int(m) < len(memTypeNames) && memTypeNames[m] != "" {
		return memTypeNames[m]
	}
	return fmt.Sprintf("memtype(%d)", m)
}

// SelectParam is the selector key: the class of request a selection
// decision applies to. Two SelectParam values are equal exactly when all
// fields are equal.
type SelectParam struct {
	OpID    OpID
	OpFlags OpFlags
	DTClass DTClass
	SGCount uint8
	MemType MemType
}

// Pack encodes p into a single 64-bit word suitable as a hash key. Field
// widths are generous enough that no realistic value truncates: 8 bits for
// OpID, 16 for OpFlags, 8 for DTClass, 8 for SGCount, 8 for MemType.
func (p SelectParam) Pack() uint64 {
	return uint64(p.OpID) |
		uint64(p.OpFlags)<<8 |
		uint64(p.DTClass)<<24 |
		uint64(p.SGCount)<<32 |
		uint64(p.MemType)<<40
}

// String renders a human-readable description of p, e.g. "put() on a
// contiguous data-type with 4 scatter-gather entries in device memory and
// fast completion". This mirrors ucp_proto_select_param_str from the
// original implementation.
func (p SelectParam) String() string {
	s := fmt.Sprintf("%s() on a %s data-type", p.OpID, p.DTClass)
	if p.SGCount > 1 {
		s += fmt.Sprintf(" with %d scatter-gather entries", p.SGCount)
	}
	s += fmt.Sprintf(" in %s memory", p.MemType)
	if OpAttrMask(p.OpFlags)&OpFlagFastCmpl != 0 {
		s += " and fast completion"
	}
	return s
}

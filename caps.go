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

import "math"

// SizeMax is the largest representable message length, and the length
// every threshold table must ultimately cover up to.
const SizeMax uint64 = math.MaxUint64

// MsgLenEpsilon is added to an intersection point before evaluating which
// protocol is better immediately to its right, so that two linear
// functions which tie exactly at an integer boundary are broken in favor
// of the protocol that owns the next sub-range.
const MsgLenEpsilon = 0.5

// LinearFunc is a cost-versus-length model c + m*x.
type LinearFunc struct {
	C float64 // fixed (per-message) cost
	M float64 // marginal (per-byte) cost
}

// Apply evaluates the function at x.
func (f LinearFunc) Apply(x float64) float64 {
	return f.C + f.M*x
}

// Intersect returns the x at which f and other produce equal values. ok is
// false if the two functions are parallel (equal slopes), in which case
// they never cross (or are identical, which is treated the same way: no
// useful crossing point).
func (f LinearFunc) Intersect(other LinearFunc) (x float64, ok bool) {
	if f.M == other.M {
		return 0, false
	}
	return (other.C - f.C) / (f.M - other.M), true
}

// ProtoRange is one piece of a protocol's piecewise-linear cost curve: it
// applies to message lengths up to and including MaxLength.
type ProtoRange struct {
	MaxLength uint64
	Perf      LinearFunc
}

// Threshold encodes a protocol's user-configured threshold policy: either
// ThreshAuto, ThreshInf, or a finite byte count strictly less than
// ThreshInf. The zero value is the finite threshold 0 (the protocol is
// forced at every length), not ThreshAuto.
type Threshold uint64

const (
	// ThreshAuto means there is no user override: the engine chooses
	// based on cost alone.
	ThreshAuto Threshold = math.MaxUint64

	// ThreshInf means the protocol is disabled for every length.
	ThreshInf Threshold = math.MaxUint64 - 1
)

// IsFinite reports whether t is a concrete byte count rather than one of
// the AUTO/INF sentinels.
func (t Threshold) IsFinite() bool {
	return t != ThreshAuto && t != ThreshInf
}

// ProtoCaps describes one protocol's applicability and estimated
// performance, as reported by Protocol.Init.
type ProtoCaps struct {
	// MinLength is the smallest message length (inclusive) this protocol
	// supports.
	MinLength uint64

	// Ranges is the ordered, piecewise-linear cost curve. MaxLength values
	// must strictly increase; the final range should end at SizeMax
	// unless the protocol truly cannot serve any larger message.
	Ranges []ProtoRange

	// CfgThresh is the user-configured threshold policy for this
	// protocol under the current selection parameters.
	CfgThresh Threshold
}

// RangeAt returns the range covering length, and whether one was found.
func (c ProtoCaps) RangeAt(length uint64) (ProtoRange, bool) {
	for _, r := range c.Ranges {
		if length <= r.MaxLength {
			return r, true
		}
	}
	return ProtoRange{}, false
}

// MaxSupportedLength returns the MaxLength of the last range, or 0 if
// there are no ranges.
func (c ProtoCaps) MaxSupportedLength() uint64 {
	if len(c.Ranges) == 0 {
		return 0
	}
	return c.Ranges[len(c.Ranges)-1].MaxLength
}

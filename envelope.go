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
	"fmt"
	"math"
)

// unsupportedLengthError wraps ErrUnsupported with the offending message
// length, so callers can log exactly what spec §7 asks for.
type unsupportedLengthError struct {
	msgLength uint64
}

func (e *unsupportedLengthError) Error() string {
	return fmt.Sprintf("%s: msg_length %d", ErrUnsupported, e.msgLength)
}

func (e *unsupportedLengthError) Unwrap() error { return ErrUnsupported }

// thresholdTmpElem is a single entry of the temporary threshold list built
// while walking the length domain; it is later copied into a permanent,
// exact-length array inside a SelectElem.
type thresholdTmpElem struct {
	maxLength uint64
	protoID   ProtoID
}

// buildThresholds walks the full length domain [0, SizeMax] and returns an
// ordered list of (maxLength, protoID) tuples covering it exactly, with
// strictly increasing maxLength and no two adjacent entries sharing a
// protocol id. It returns ErrUnsupported if some length has no valid
// protocol.
func buildThresholds(mask ProtoIDMask, caps *[MaxProtocols]ProtoCaps) ([]thresholdTmpElem, error) {
	var list []thresholdTmpElem

	msgLength := uint64(0)
	for {
		maxLength, err := selectNext(mask, caps, &list, msgLength)
		if err != nil {
			return nil, &unsupportedLengthError{msgLength: msgLength}
		}
		if maxLength == SizeMax {
			break
		}
		msgLength = maxLength + 1
	}

	return list, nil
}

// selectNext picks a protocol envelope for the contiguous sub-range
// starting at msgLength during which the valid protocol set and every
// protocol's cost function are constant, appends its thresholds to list,
// and returns the last length that sub-range covers.
func selectNext(mask ProtoIDMask, caps *[MaxProtocols]ProtoCaps, list *[]thresholdTmpElem, msgLength uint64) (uint64, error) {
	var (
		validMask, forcedMask ProtoIDMask
		perf                  [MaxProtocols]LinearFunc
		maxLength             = SizeMax
	)

	mask.ForEach(func(id ProtoID) {
		c := caps[id]

		// Not yet valid at this length; it may become valid later, at a
		// window starting at or after MinLength. Narrow the window so it
		// ends exactly where this protocol activates, the same way a
		// cfg_thresh cutoff narrows it below.
		if msgLength < c.MinLength {
			if cut := c.MinLength - 1; cut < maxLength {
				maxLength = cut
			}
			return
		}

		// Locate the range (if any) covering msgLength, narrowing the
		// window so it never crosses a piecewise-linear boundary.
		if r, ok := c.RangeAt(msgLength); ok {
			validMask = validMask.Set(id)
			perf[id] = r.Perf
			if r.MaxLength < maxLength {
				maxLength = r.MaxLength
			}
		}

		switch {
		case c.CfgThresh == ThreshAuto:
			// no override
		case c.CfgThresh == ThreshInf:
			validMask = validMask.Clear(id)
		case uint64(c.CfgThresh) <= msgLength:
			forcedMask = forcedMask.Set(id)
		default:
			// Disabled below cfg_thresh; the next window starts exactly
			// where it activates.
			if cut := uint64(c.CfgThresh) - 1; cut < maxLength {
				maxLength = cut
			}
			validMask = validMask.Clear(id)
		}
	})

	if validMask.IsEmpty() {
		return 0, ErrUnsupported
	}

	// User forcing suppresses cost-based comparison entirely.
	forcedMask &= validMask
	if forcedMask != 0 {
		validMask = forcedMask
	}

	if err := selectBest(validMask, &perf, list, msgLength, maxLength); err != nil {
		return 0, err
	}
	return maxLength, nil
}

// selectBest computes the lower envelope of the candidates in mask over
// [start, end] and appends the resulting (maxLength, protoID) runs to
// list. mask must be non-empty.
func selectBest(mask ProtoIDMask, perf *[MaxProtocols]LinearFunc, list *[]thresholdTmpElem, start, end uint64) error {
	for {
		best := ProtoIDInvalid
		bestVal := math.Inf(1)
		mask.ForEach(func(id ProtoID) {
			v := perf[id].Apply(float64(start) + MsgLenEpsilon)
			if v < bestVal {
				bestVal = v
				best = id
			}
		})
		if best == ProtoIDInvalid {
			return ErrUnsupported
		}

		// Find the first (smallest) point, strictly after start, where
		// any other candidate overtakes best.
		midpoint := end
		rest := mask.Clear(best)
		rest.ForEach(func(id ProtoID) {
			x, ok := perf[id].Intersect(perf[best])
			if !ok || x <= float64(start) {
				return
			}
			if x >= float64(SizeMax) {
				return
			}
			if xi := uint64(x); xi < midpoint {
				midpoint = xi
			}
		})

		appendThreshold(list, midpoint, best)

		if midpoint >= end {
			return nil
		}
		start = midpoint + 1
	}
}

// appendThreshold appends (maxLength, id) to list, consolidating with the
// previous entry if it already names the same protocol.
func appendThreshold(list *[]thresholdTmpElem, maxLength uint64, id ProtoID) {
	if n := len(*list); n > 0 {
		last := &(*list)[n-1]
		if last.protoID == id {
			last.maxLength = maxLength
			return
		}
	}
	*list = append(*list, thresholdTmpElem{maxLength: maxLength, protoID: id})
}

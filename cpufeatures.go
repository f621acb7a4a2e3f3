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

import "github.com/klauspost/cpuid/v2"

// cpuSIMDLabel is recorded once at process start as an informational
// metric label on cacheMetrics.buildDurationS. A real transport-selection
// engine's reported cost curves are themselves a function of what the
// host CPU can do (e.g. vectorized checksum/copy paths change a
// protocol's marginal per-byte cost); this label lets operators split
// build-time histograms by that dimension without the engine pretending
// to model it numerically.
var cpuSIMDLabel = computeCPUSIMDLabel()

func computeCPUSIMDLabel() string {
	if cpuid.CPU.Supports(cpuid.AVX2) {
		return "avx2"
	}
	return "none"
}

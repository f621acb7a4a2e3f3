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
	"strings"

	"github.com/dustin/go-humanize"
)

// Dump renders every selection cached for (ep, rkey) as a human-readable
// report: for each distinct SelectParam, the chosen threshold table
// followed by the full candidate table, mirroring ucp_proto_select_dump.
// It is rate-limited by Config.DumpRateLimit/DumpBurst, since re-running
// the candidate probe for every cached selection can be expensive on a
// Worker with many entries.
func (w *Worker) Dump(ep EpCfgIndex, rkey RkeyCfgIndex, epConfigKey, rkeyConfigKey any) (string, error) {
	if w.dumpLimiter != nil && !w.dumpLimiter.Allow() {
		return "", ErrDumpRateLimited
	}

	key := epRkeyKey{ep, rkey}
	cache, ok := w.caches[key]
	if !ok {
		return fmt.Sprintf("# no selections cached for ep_cfg[%d]/rkey_cfg[%d]\n", ep, rkey), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# \n")
	fmt.Fprintf(&b, "# Protocol selection for ep_cfg[%d]/rkey_cfg[%d] (%d items)\n", ep, rkey, cache.len())
	fmt.Fprintf(&b, "# \n")

	for _, elem := range cache.hash {
		param := elem.thresholds[0].ProtoConfig.SelectParam
		dumpElem(&b, w, epConfigKey, rkeyConfigKey, param, elem)
	}

	return b.String(), nil
}

func dumpElem(b *strings.Builder, w *Worker, epConfigKey, rkeyConfigKey any, param SelectParam, elem *SelectElem) {
	fmt.Fprintf(b, "#\n")
	header := param.String()
	fmt.Fprintf(b, "# %s:\n", header)
	fmt.Fprintf(b, "# %s\n", strings.Repeat("=", len(header)))
	fmt.Fprintf(b, "#\n")
	fmt.Fprintf(b, "#   Selected protocols:\n")
	dumpThresholds(b, elem)
	fmt.Fprintf(b, "#\n")
	fmt.Fprintf(b, "#   Candidates:\n")
	dumpCandidates(b, w, epConfigKey, rkeyConfigKey, param)
}

const thresholdRowFmt = "#     %-20s %-24s %s\n"

func dumpThresholds(b *strings.Builder, elem *SelectElem) {
	fmt.Fprintf(b, thresholdRowFmt, "SIZE", "PROTOCOL", "CONFIGURATION")
	var rangeStart uint64
	for _, t := range elem.thresholds {
		proto := ProtocolByID(t.ProtoConfig.Proto)
		name, cfg := "<unknown>", ""
		if proto != nil {
			name = proto.Name()
			cfg = proto.ConfigStr(t.ProtoConfig.Priv)
		}
		fmt.Fprintf(b, thresholdRowFmt, rangeString(rangeStart, t.MaxMsgLength), name, cfg)
		rangeStart = t.MaxMsgLength + 1
	}
}

const candidateRowFmt = "#     %-18s %-14s %-22s %-18s %-14s %s\n"

// dumpCandidates re-probes every registered protocol for (param,
// epConfigKey, rkeyConfigKey) and lists each accepted candidate's
// performance ranges, mirroring ucp_proto_select_dump_all. Re-probing
// (rather than reusing cached data) matches the original tool's behavior
// of always reporting live capabilities.
func dumpCandidates(b *strings.Builder, w *Worker, epConfigKey, rkeyConfigKey any, param SelectParam) {
	pi, err := initProtocolsFor(w, epConfigKey, rkeyConfigKey, param)
	if err != nil {
		fmt.Fprintf(b, "#     <%s>\n", err)
		return
	}

	fmt.Fprintf(b, candidateRowFmt, "PROTOCOL", "SIZE", "TIME (nsec)", "BANDWIDTH (MiB/s)", "THRESHOLD", "CONFIGURATION")

	pi.mask.ForEach(func(id ProtoID) {
		proto := ProtocolByID(id)
		caps := &pi.caps[id]
		offset := pi.privOffsets[id]
		size := pi.privSizes[id]
		priv := pi.privBuf[offset : offset+size]

		cfg := ""
		if proto != nil {
			cfg = proto.ConfigStr(priv)
		}
		thresh := "auto"
		switch {
		case caps.CfgThresh == ThreshInf:
			thresh = "inf"
		case caps.CfgThresh != ThreshAuto:
			thresh = humanize.Bytes(uint64(caps.CfgThresh))
		}

		rangeStart := caps.MinLength
		for i, r := range caps.Ranges {
			if i > 0 && !w.config.DumpVerbose {
				break
			}
			name, th, c := "", "", ""
			if i == 0 {
				name, th, c = proto.Name(), thresh, cfg
			}
			fmt.Fprintf(b, candidateRowFmt,
				name,
				rangeString(rangeStart, r.MaxLength),
				fmt.Sprintf("%.0f + %.3f * N", r.Perf.C*1e9, r.Perf.M*1e9),
				bandwidthString(r.Perf.M),
				th, c)
			rangeStart = r.MaxLength + 1
		}
	})
	fmt.Fprintf(b, "#\n")
}

func rangeString(start, end uint64) string {
	if start == end {
		return humanize.Bytes(start)
	}
	if end == SizeMax {
		return fmt.Sprintf("%s..inf", humanize.Bytes(start))
	}
	return fmt.Sprintf("%s..%s", humanize.Bytes(start), humanize.Bytes(end))
}

func bandwidthString(m float64) string {
	if m <= 0 {
		return "inf"
	}
	bytesPerSec := 1.0 / m
	return humanize.IBytes(uint64(bytesPerSec)) + "/s"
}

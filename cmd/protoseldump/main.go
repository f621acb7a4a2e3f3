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

// Command protoseldump is a small diagnostic CLI that drives the protosel
// engine against a handful of built-in demo transports, so the dump
// surface can be inspected without embedding it in a real communication
// runtime.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"

	"github.com/quicproto/protosel"
)

var rootCmd = &cobra.Command{
	Use:   "protoseldump",
	Short: "Inspect protosel's protocol-selection decisions",
	Long: `protoseldump builds a protosel.Worker against a fixed set of demo
transports (eager and rendezvous), runs a selection for the requested
operation shape, and prints the resulting threshold table and candidate
table exactly as protosel.Worker.Dump would.`,
	SilenceUsage: true,
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Run one selection and print its dump report",
	RunE:  runDump,
}

var (
	flagOp       string
	flagDTClass  string
	flagMemType  string
	flagSGCount  uint8
	flagFastCmpl bool
	flagConfig   string
	flagVerbose  bool
)

func init() {
	dumpCmd.Flags().StringVar(&flagOp, "op", "put", "operation: put, get, send, recv, atomic_post, atomic_fetch")
	dumpCmd.Flags().StringVar(&flagDTClass, "dtclass", "contig", "datatype class: contig, iov, generic")
	dumpCmd.Flags().StringVar(&flagMemType, "memtype", "host", "memory type: host, device, managed")
	dumpCmd.Flags().Uint8Var(&flagSGCount, "sg-count", 1, "scatter-gather entry count")
	dumpCmd.Flags().BoolVar(&flagFastCmpl, "fast-cmpl", false, "request fast local completion")
	dumpCmd.Flags().StringVar(&flagConfig, "config", "", "path to a TOML config file (optional)")
	dumpCmd.Flags().BoolVar(&flagVerbose, "verbose", false, "show every piecewise range, not just the first")

	rootCmd.AddCommand(dumpCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDump(cmd *cobra.Command, args []string) error {
	opID, err := parseOpID(flagOp)
	if err != nil {
		return err
	}
	dtClass, err := parseDTClass(flagDTClass)
	if err != nil {
		return err
	}
	memType, err := parseMemType(flagMemType)
	if err != nil {
		return err
	}

	cfg, err := protosel.LoadConfig(flagConfig)
	if err != nil {
		return err
	}
	cfg.DumpVerbose = cfg.DumpVerbose || flagVerbose

	w := protosel.NewWorker(cfg)

	var flags protosel.OpFlags
	if flagFastCmpl {
		flags |= protosel.OpFlagFastCmpl
	}
	param := protosel.SelectParam{
		OpID:    opID,
		OpFlags: flags,
		DTClass: dtClass,
		SGCount: flagSGCount,
		MemType: memType,
	}

	// A synthetic, stable endpoint identity is enough for the demo
	// transports below, which ignore it entirely.
	epKey := uuid.New()

	if _, err := w.Select(0, protosel.RkeyCfgIndexNone, epKey, nil, param); err != nil {
		return fmt.Errorf("selection failed: %w", err)
	}

	report, err := w.Dump(0, protosel.RkeyCfgIndexNone, epKey, nil)
	if err != nil {
		return err
	}
	fmt.Print(report)
	return nil
}

func parseOpID(s string) (protosel.OpID, error) {
	switch s {
	case "put":
		return protosel.OpPut, nil
	case "get":
		return protosel.OpGet, nil
	case "send":
		return protosel.OpSend, nil
	case "recv":
		return protosel.OpRecv, nil
	case "atomic_post":
		return protosel.OpAtomicPost, nil
	case "atomic_fetch":
		return protosel.OpAtomicFetch, nil
	default:
		return 0, fmt.Errorf("unknown op %q", s)
	}
}

func parseDTClass(s string) (protosel.DTClass, error) {
	switch s {
	case "contig":
		return protosel.DTContig, nil
	case "iov":
		return protosel.DTIOV, nil
	case "generic":
		return protosel.DTGeneric, nil
	default:
		return 0, fmt.Errorf("unknown dtclass %q", s)
	}
}

func parseMemType(s string) (protosel.MemType, error) {
	switch s {
	case "host":
		return protosel.MemHost, nil
	case "device":
		return protosel.MemDevice, nil
	case "managed":
		return protosel.MemManaged, nil
	default:
		return 0, fmt.Errorf("unknown memtype %q", s)
	}
}

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
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds engine-wide tunables. It is read once, at Worker
// construction, and never mutated afterwards: decisions derived from it
// are cached for the lifetime of the Worker (spec's "decisions are stable
// once cached" non-goal on dynamic re-selection).
type Config struct {
	// DumpVerbose, if true, includes every piecewise range (not just the
	// first) in the candidates table of the dump surface.
	DumpVerbose bool `toml:"dump_verbose"`

	// DumpRateLimit bounds how often a single Worker may be asked to
	// redump all of its cached selections, in dumps per second. Zero
	// means unlimited.
	DumpRateLimit float64 `toml:"dump_rate_limit"`

	// DumpBurst is the burst size that goes with DumpRateLimit.
	DumpBurst int `toml:"dump_burst"`
}

// DefaultConfig returns the configuration used when no file is loaded.
func DefaultConfig() Config {
	return Config{
		DumpVerbose:   false,
		DumpRateLimit: 1,
		DumpBurst:     5,
	}
}

// LoadConfig reads and parses a TOML configuration file. A missing file is
// not an error; DefaultConfig is returned instead, since the engine is
// fully usable with no configuration at all.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %q: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %q: %w", path, err)
	}
	return cfg, nil
}

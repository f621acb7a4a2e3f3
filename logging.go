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
	"sync"

	"go.uber.org/zap"
)

// Log returns the engine's current structured logger. It is safe to call
// from any goroutine, though the engine itself only ever logs from the
// single worker goroutine that owns a given Cache, per the single-threaded
// per-worker model (see Worker).
func Log() *zap.Logger {
	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// SetLogger replaces the engine's default logger, e.g. so a host process
// can route protosel's debug/warn lines into its own sink. Passing nil
// restores a no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	defaultLoggerMu.Lock()
	defaultLogger = l
	defaultLoggerMu.Unlock()
}

var (
	defaultLogger, _ = newDefaultProductionLogger()
	defaultLoggerMu  sync.RWMutex
)

func newDefaultProductionLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}

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

// Package protosel implements the protocol-selection core of a
// high-performance communication runtime. For every combination of
// endpoint configuration, remote-key configuration and operation
// parameters, it decides which registered transport protocol should
// carry a message of a given length, and caches that decision so the
// request fast path only has to do a short, length-indexed lookup.
package protosel

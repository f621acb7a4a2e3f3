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

import "errors"

// ErrNoMemory indicates an allocation failure (private buffer, threshold
// array, or cache bucket). The caller should treat the selection attempt
// as failed; nothing partial is cached.
var ErrNoMemory = errors.New("protosel: allocation failed")

// ErrNoElem indicates that no registered protocol accepted the given
// select_param. This is a routine outcome, not a bug: it is logged at
// debug level and never cached, so the next identical lookup retries from
// scratch (e.g. after configuration changes).
var ErrNoElem = errors.New("protosel: no protocol accepted the selection parameters")

// ErrUnsupported indicates that the envelope builder could not find any
// valid protocol for some message length within [0, SizeMax]. This is
// logged as a warning naming the offending selection and length.
var ErrUnsupported = errors.New("protosel: no protocol supports some message length in range")

// ErrDumpRateLimited indicates that a Worker's diagnostic dump surface was
// called more often than Config.DumpRateLimit allows.
var ErrDumpRateLimited = errors.New("protosel: dump rate limit exceeded")

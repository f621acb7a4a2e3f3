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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// define and register the metrics used by the selection cache.
func init() {
	initCacheMetrics()
	prometheus.MustRegister(prometheus.NewBuildInfoCollector())
}

// cacheMetrics is the collection of metrics tracked across all Workers'
// caches. Call initCacheMetrics to initialize.
var cacheMetrics = struct {
	lookupTotal    *prometheus.CounterVec
	elementsTotal  prometheus.Gauge
	buildDurationS *prometheus.HistogramVec
}{}

func initCacheMetrics() {
	const ns = "protosel"
	const sub = "cache"

	cacheMetrics.lookupTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Subsystem: sub,
		Name:      "lookups_total",
		Help:      "Counter of selection cache lookups, by result.",
	}, []string{"result"})

	cacheMetrics.elementsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: ns,
		Subsystem: sub,
		Name:      "elements",
		Help:      "Number of cached selection elements across all workers.",
	})

	cacheMetrics.buildDurationS = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns,
		Subsystem: sub,
		Name:      "build_duration_seconds",
		Help:      "Time spent building a new selection element (candidate init + envelope construction).",
		Buckets:   prometheus.DefBuckets,
	}, []string{"cpu_simd"})
}

// lookupResult labels a cache lookup outcome for cacheMetrics.lookupTotal.
type lookupResult string

const (
	lookupResultFastHit lookupResult = "fast_hit"
	lookupResultHit     lookupResult = "hit"
	lookupResultMiss    lookupResult = "miss"
	lookupResultFailed  lookupResult = "failed"
)

func observeLookup(r lookupResult) {
	cacheMetrics.lookupTotal.WithLabelValues(string(r)).Inc()
}

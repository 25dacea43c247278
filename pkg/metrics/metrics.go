// Licensed to the GlacierDB project under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The GlacierDB project licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	glacierDBNamespace = "glacierdb"

	CommittedLabel = "committed"
	AbortedLabel   = "aborted"
	TotalLabel     = "total"
	SuccessLabel   = "success"
	FailLabel      = "fail"

	MetaGetLabel    = "get"
	MetaPutLabel    = "put"
	MetaRemoveLabel = "remove"
	MetaTxnLabel    = "txn"

	statusLabelName      = "status"
	warehouseIDLabelName = "warehouse_id"
	metaOpType           = "meta_op_type"
)

var (
	// buckets involves durations in milliseconds,
	// [1 2 4 8 16 32 64 128 256 512 1024 2048 4096 8192 16384 32768 65536 1.31072e+05]
	buckets = prometheus.ExponentialBuckets(1, 2, 18)

	// longTaskBuckets provides long task duration in milliseconds
	longTaskBuckets = []float64{
		1, 100, 500, 1000, 5000, 10000, 20000, 50000, 100000,
		250000, 500000, 1000000, 3600000, 5000000, 10000000,
	}
)

var (
	// MetaKvSize records the payload size of the catalog kv requests.
	MetaKvSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: glacierDBNamespace,
			Subsystem: "meta",
			Name:      "kv_size",
			Help:      "kv size stats",
			Buckets:   buckets,
		}, []string{metaOpType})

	// MetaRequestLatency records the latency of the catalog kv requests.
	MetaRequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: glacierDBNamespace,
			Subsystem: "meta",
			Name:      "request_latency",
			Help:      "request latency on the client side",
			Buckets:   buckets,
		}, []string{metaOpType})

	// MetaOpCounter counts the catalog kv requests by operation and outcome.
	MetaOpCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: glacierDBNamespace,
			Subsystem: "meta",
			Name:      "op_count",
			Help:      "count of meta operation",
		}, []string{metaOpType, statusLabelName})
)

// Register serves prometheus http service
func Register(r prometheus.Registerer) {
	r.MustRegister(BuildInfo)
	r.MustRegister(RuntimeInfo)
	r.MustRegister(ThreadNum)
}

// RegisterMetaMetrics registers the catalog kv metrics.
func RegisterMetaMetrics(registry *prometheus.Registry) {
	registry.MustRegister(MetaKvSize)
	registry.MustRegister(MetaRequestLatency)
	registry.MustRegister(MetaOpCounter)
}

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

	"github.com/glacierdb/glacierdb/pkg/util/typeutil"
)

var (
	// LakeCoordNumWarehouses records the num of warehouses registered.
	LakeCoordNumWarehouses = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: glacierDBNamespace,
			Subsystem: typeutil.LakeCoordRole,
			Name:      "warehouse_num",
			Help:      "number of warehouses",
		}, []string{})

	// LakeCoordNumComputeNodes records the num of compute nodes tracked by the cluster watcher.
	LakeCoordNumComputeNodes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: glacierDBNamespace,
			Subsystem: typeutil.LakeCoordRole,
			Name:      "computenode_num",
			Help:      "number of registered compute nodes",
		}, []string{})

	// LakeCoordWarehouseNodeNum records the num of alive compute nodes per warehouse.
	LakeCoordWarehouseNodeNum = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: glacierDBNamespace,
			Subsystem: typeutil.LakeCoordRole,
			Name:      "warehouse_node_num",
			Help:      "number of alive compute nodes in the warehouse",
		}, []string{
			warehouseIDLabelName,
		})

	LakeCoordCompactionRunningJobNum = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: glacierDBNamespace,
			Subsystem: typeutil.LakeCoordRole,
			Name:      "compaction_running_job_num",
			Help:      "number of compaction jobs currently executing",
		}, []string{})

	// LakeCoordCompactionJobCount counts finished compaction jobs by status,
	// begin failures land under the fail status.
	LakeCoordCompactionJobCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: glacierDBNamespace,
			Subsystem: typeutil.LakeCoordRole,
			Name:      "compaction_job_count",
			Help:      "count of compaction jobs by final status",
		}, []string{
			statusLabelName,
		})

	LakeCoordCompactionLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: glacierDBNamespace,
			Subsystem: typeutil.LakeCoordRole,
			Name:      "compaction_latency",
			Help:      "latency of one compaction job in milliseconds",
			Buckets:   longTaskBuckets,
		}, []string{
			statusLabelName,
		})

	LakeCoordScheduleRoundLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: glacierDBNamespace,
			Subsystem: typeutil.LakeCoordRole,
			Name:      "schedule_round_latency",
			Help:      "latency of one compaction scheduling round in milliseconds",
			Buckets:   buckets,
		}, []string{})

	LakeCoordCompactionCandidateNum = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: glacierDBNamespace,
			Subsystem: typeutil.LakeCoordRole,
			Name:      "compaction_candidate_num",
			Help:      "number of partitions eligible for compaction at the last round",
		}, []string{})

	LakeCoordDisabledTableNum = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: glacierDBNamespace,
			Subsystem: typeutil.LakeCoordRole,
			Name:      "compaction_disabled_table_num",
			Help:      "number of tables excluded from compaction scheduling",
		}, []string{})
)

// RegisterLakeCoord registers LakeCoord metrics
func RegisterLakeCoord(registry *prometheus.Registry) {
	registry.MustRegister(LakeCoordNumWarehouses)
	registry.MustRegister(LakeCoordNumComputeNodes)
	registry.MustRegister(LakeCoordWarehouseNodeNum)
	registry.MustRegister(LakeCoordCompactionRunningJobNum)
	registry.MustRegister(LakeCoordCompactionJobCount)
	registry.MustRegister(LakeCoordCompactionLatency)
	registry.MustRegister(LakeCoordScheduleRoundLatency)
	registry.MustRegister(LakeCoordCompactionCandidateNum)
	registry.MustRegister(LakeCoordDisabledTableNum)
}

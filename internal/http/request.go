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

package http

import (
	"github.com/glacierdb/glacierdb/pkg/util/metricsinfo"
)

// DisableCompactionReq replaces the whole compaction disable list with the
// tables named by the specifier, an empty specifier clears the list.
type DisableCompactionReq struct {
	TableIDs string `json:"tableIds"`
}

// TriggerCompactionReq admits a compaction job for one partition outside the
// periodic candidate selection.
type TriggerCompactionReq struct {
	DBID        int64 `json:"dbId"`
	TableID     int64 `json:"tableId"`
	PartitionID int64 `json:"partitionId"`
	ForceFull   bool  `json:"forceFull"`
}

type WarehouseDescription struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	WorkerGroupIDs []int64 `json:"workerGroupIds,omitempty"`
}

type NodeDescription struct {
	ID       int64  `json:"id"`
	Address  string `json:"address"`
	Hostname string `json:"hostname"`
	State    string `json:"state"`
	Version  string `json:"version,omitempty"`
}

type SystemInfoResponse struct {
	Hardware metricsinfo.HardwareMetrics `json:"hardware"`
	Deploy   metricsinfo.DeployMetrics   `json:"deploy"`
}

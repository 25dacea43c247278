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

package compaction

import (
	"fmt"
)

// PartitionIdentifier names one compaction unit. Two identifiers with the
// same triple denote the same logical partition, the struct is comparable
// and used directly as a map key.
type PartitionIdentifier struct {
	DBID        int64 `json:"db_id"`
	TableID     int64 `json:"table_id"`
	PartitionID int64 `json:"partition_id"`
}

func NewPartitionIdentifier(dbID, tableID, partitionID int64) PartitionIdentifier {
	return PartitionIdentifier{
		DBID:        dbID,
		TableID:     tableID,
		PartitionID: partitionID,
	}
}

func (id PartitionIdentifier) String() string {
	return fmt.Sprintf("%d.%d.%d", id.DBID, id.TableID, id.PartitionID)
}

// less orders identifiers by the triple, it only exists to make candidate
// ranking and history ties deterministic.
func (id PartitionIdentifier) less(other PartitionIdentifier) bool {
	if id.DBID != other.DBID {
		return id.DBID < other.DBID
	}
	if id.TableID != other.TableID {
		return id.TableID < other.TableID
	}
	return id.PartitionID < other.PartitionID
}

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
	"context"
	"fmt"
	"time"
)

// TxnSourceCompaction marks transactions opened by the background compaction
// path so the transaction manager can account for them separately from loads.
const TxnSourceCompaction = "lake_compaction"

// TxnRequest carries everything the transaction manager needs to open a
// transaction on behalf of a compaction job.
type TxnRequest struct {
	DBID           int64
	TableIDs       []int64
	Label          string
	Coordinator    string
	Source         string
	TimeoutSeconds int64
}

// TxnManager is the coordinator-side transaction service. Compaction only
// needs begin, commit and abort, the full transaction lifecycle lives with
// the implementation.
//
//go:generate mockery --name=TxnManager --structname=MockTxnManager --output=./  --filename=mock_txn_manager.go --with-expecter --inpackage
type TxnManager interface {
	// Begin opens a transaction and returns its id.
	Begin(ctx context.Context, req *TxnRequest) (int64, error)
	// Commit publishes the versions written under the transaction.
	Commit(ctx context.Context, txnID int64) error
	// Abort rolls the transaction back, the reason ends up in the
	// transaction manager's own bookkeeping.
	Abort(ctx context.Context, txnID int64, reason string) error
}

// compactionLabel builds the unique transaction label of one job. Labels name
// ids rather than names, renaming a table must not change the label scheme.
func compactionLabel(partition PartitionIdentifier) string {
	return fmt.Sprintf("COMPACTION_%d-%d-%d-%d",
		partition.DBID, partition.TableID, partition.PartitionID, time.Now().UnixMilli())
}

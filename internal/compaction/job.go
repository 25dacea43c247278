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
	"time"

	"go.uber.org/atomic"
)

// Outcome is the lifecycle tag of a compaction job. A job starts running and
// moves to exactly one terminal outcome.
type Outcome int32

const (
	OutcomeRunning Outcome = iota
	OutcomeCommitted
	OutcomeAborted
)

var outcomeNames = map[Outcome]string{
	OutcomeRunning:   "running",
	OutcomeCommitted: "committed",
	OutcomeAborted:   "aborted",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether the outcome ends the job.
func (o Outcome) Terminal() bool {
	return o == OutcomeCommitted || o == OutcomeAborted
}

// CompactionJob is the in-flight work for one partition. The scheduler owns
// the job for its whole lifetime, it exists only while an entry for the
// partition sits in the running-jobs map and is demoted to a CompactionRecord
// on commit or abort. Display names are resolved once at admission and may be
// empty when the catalog no longer knows the ids.
type CompactionJob struct {
	partition PartitionIdentifier
	dbName    string
	tableName string
	forceFull bool
	startTime time.Time

	txnID   *atomic.Int64
	nodeID  *atomic.Int64
	outcome *atomic.Int32
}

func NewCompactionJob(partition PartitionIdentifier, dbName, tableName string, forceFull bool) *CompactionJob {
	return &CompactionJob{
		partition: partition,
		dbName:    dbName,
		tableName: tableName,
		forceFull: forceFull,
		startTime: time.Now(),
		txnID:     atomic.NewInt64(0),
		nodeID:    atomic.NewInt64(0),
		outcome:   atomic.NewInt32(int32(OutcomeRunning)),
	}
}

func (job *CompactionJob) Partition() PartitionIdentifier {
	return job.partition
}

func (job *CompactionJob) DBName() string {
	return job.dbName
}

func (job *CompactionJob) TableName() string {
	return job.tableName
}

func (job *CompactionJob) ForceFull() bool {
	return job.forceFull
}

func (job *CompactionJob) StartTime() time.Time {
	return job.startTime
}

// TxnID returns the transaction id, zero until the transaction opened.
func (job *CompactionJob) TxnID() int64 {
	return job.txnID.Load()
}

// SetTxnID binds the job to its transaction. The id is written at most once,
// later calls are ignored.
func (job *CompactionJob) SetTxnID(id int64) {
	job.txnID.CompareAndSwap(0, id)
}

// NodeID returns the compute node executing the job, zero until dispatched.
func (job *CompactionJob) NodeID() int64 {
	return job.nodeID.Load()
}

// SetNodeID binds the job to the node it was dispatched to. The id is written
// at most once, later calls are ignored.
func (job *CompactionJob) SetNodeID(id int64) {
	job.nodeID.CompareAndSwap(0, id)
}

func (job *CompactionJob) Outcome() Outcome {
	return Outcome(job.outcome.Load())
}

// Finish moves the job from running to the given terminal outcome and reports
// whether this call performed the transition. A job never leaves a terminal
// outcome again.
func (job *CompactionJob) Finish(outcome Outcome) bool {
	if !outcome.Terminal() {
		return false
	}
	return job.outcome.CompareAndSwap(int32(OutcomeRunning), int32(outcome))
}

// Record projects the job into its post-mortem shape. Running jobs are
// projected with a zero finish time so the history query can show in-flight
// work next to completed records.
func (job *CompactionJob) Record(finishTime time.Time, reason string) *CompactionRecord {
	record := &CompactionRecord{
		Partition: job.partition,
		DBName:    job.dbName,
		TableName: job.tableName,
		TxnID:     job.TxnID(),
		NodeID:    job.NodeID(),
		ForceFull: job.forceFull,
		StartTime: job.startTime.UnixMilli(),
		Outcome:   job.Outcome().String(),
		Reason:    reason,
	}
	if !finishTime.IsZero() {
		record.FinishTime = finishTime.UnixMilli()
	}
	return record
}

// CompactionRecord is the immutable snapshot of one finished or in-flight
// compaction job. FinishTime is zero while the job is still running, NodeID
// is zero until the job was dispatched to a node.
type CompactionRecord struct {
	Partition  PartitionIdentifier `json:"partition"`
	DBName     string              `json:"db_name,omitempty"`
	TableName  string              `json:"table_name,omitempty"`
	TxnID      int64               `json:"txn_id"`
	NodeID     int64               `json:"node_id,omitempty"`
	ForceFull  bool                `json:"force_full"`
	StartTime  int64               `json:"start_time"`
	FinishTime int64               `json:"finish_time,omitempty"`
	Outcome    string              `json:"outcome"`
	Reason     string              `json:"reason,omitempty"`
}

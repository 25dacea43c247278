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
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/glacierdb/glacierdb/pkg/log"
	"github.com/glacierdb/glacierdb/pkg/util/paramtable"
	"github.com/glacierdb/glacierdb/pkg/util/typeutil"
)

// partitionStats is the mutable bookkeeping behind one partition. deltaVersions
// counts ingested versions not yet compacted, inflight is the share claimed by
// the currently running job and is zero while the partition is idle.
type partitionStats struct {
	mu            sync.Mutex
	deltaVersions int64
	inflight      int64
	lastWrite     time.Time
	lastSuccess   time.Time
}

// PartitionStats is a read-only snapshot for callers outside the tracker.
// Timestamps are unix milliseconds, zero means never.
type PartitionStats struct {
	Partition       PartitionIdentifier `json:"partition"`
	DeltaVersions   int64               `json:"delta_versions"`
	LastWriteTime   int64               `json:"last_write_time,omitempty"`
	LastSuccessTime int64               `json:"last_success_time,omitempty"`
}

// Tracker keeps per-partition compaction eligibility state, independent of any
// running job. The ingest path feeds it on every committed load, the scheduler
// drains it through Candidates and reports job results back through
// MarkScheduled and MarkFinished.
type Tracker struct {
	stats *typeutil.ConcurrentMap[PartitionIdentifier, *partitionStats]
}

func NewTracker() *Tracker {
	return &Tracker{
		stats: typeutil.NewConcurrentMap[PartitionIdentifier, *partitionStats](),
	}
}

// RecordWrite accumulates versions freshly ingested into the partition.
// Non-positive counts are ignored.
func (t *Tracker) RecordWrite(partition PartitionIdentifier, versions int64) {
	if versions <= 0 {
		return
	}
	stats, _ := t.stats.GetOrInsert(partition, &partitionStats{})
	stats.mu.Lock()
	defer stats.mu.Unlock()
	stats.deltaVersions += versions
	stats.lastWrite = time.Now()
}

type candidate struct {
	partition PartitionIdentifier
	versions  int64
}

// Candidates returns the partitions eligible for compaction, most accumulated
// versions first, ties broken by the identifier triple. The result is a
// point-in-time snapshot, updates made while the caller iterates it are not
// reflected. Partitions whose table the isDisabled callback rejects are
// skipped, as are partitions already claimed by a running job.
//
// A partition becomes eligible once it holds at least minVersions delta
// versions and its post-compaction cooldown has passed. Partitions at or
// above thresholdVersions ignore the cooldown.
func (t *Tracker) Candidates(isDisabled func(tableID int64) bool) []PartitionIdentifier {
	params := paramtable.Get()
	minVersions := params.LakeCoordCfg.MinVersionsToCompact.GetAsInt64()
	threshold := params.LakeCoordCfg.ThresholdVersions.GetAsInt64()
	cooldown := params.LakeCoordCfg.CompactionCooldown.GetAsDuration(time.Second)

	candidates := make([]candidate, 0, t.stats.Len())
	now := time.Now()
	t.stats.Range(func(partition PartitionIdentifier, stats *partitionStats) bool {
		if isDisabled != nil && isDisabled(partition.TableID) {
			return true
		}
		stats.mu.Lock()
		versions := stats.deltaVersions
		inflight := stats.inflight
		lastSuccess := stats.lastSuccess
		stats.mu.Unlock()

		if inflight > 0 || versions < minVersions {
			return true
		}
		if versions < threshold && now.Sub(lastSuccess) < cooldown {
			return true
		}
		candidates = append(candidates, candidate{partition: partition, versions: versions})
		return true
	})

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].versions != candidates[j].versions {
			return candidates[i].versions > candidates[j].versions
		}
		return candidates[i].partition.less(candidates[j].partition)
	})

	result := make([]PartitionIdentifier, 0, len(candidates))
	for _, c := range candidates {
		result = append(result, c.partition)
	}
	return result
}

// MarkScheduled claims the partition's current delta versions for the job
// being admitted. Unknown partitions are a no-op, admission may race with
// external partition deletion.
func (t *Tracker) MarkScheduled(partition PartitionIdentifier) {
	stats, ok := t.stats.Get(partition)
	if !ok {
		return
	}
	stats.mu.Lock()
	defer stats.mu.Unlock()
	stats.inflight = stats.deltaVersions
}

// MarkFinished releases the claim taken by MarkScheduled. A committed job
// consumes the claimed versions and stamps the success time, anything else
// just returns them to the pool. Unknown partitions are a no-op.
func (t *Tracker) MarkFinished(partition PartitionIdentifier, outcome Outcome) {
	stats, ok := t.stats.Get(partition)
	if !ok {
		return
	}
	stats.mu.Lock()
	defer stats.mu.Unlock()
	if outcome == OutcomeCommitted {
		stats.deltaVersions -= stats.inflight
		if stats.deltaVersions < 0 {
			stats.deltaVersions = 0
		}
		stats.lastSuccess = time.Now()
	}
	stats.inflight = 0
}

// Stats returns a snapshot of one partition's bookkeeping.
func (t *Tracker) Stats(partition PartitionIdentifier) (*PartitionStats, bool) {
	stats, ok := t.stats.Get(partition)
	if !ok {
		return nil, false
	}
	stats.mu.Lock()
	defer stats.mu.Unlock()
	snapshot := &PartitionStats{
		Partition:     partition,
		DeltaVersions: stats.deltaVersions,
	}
	if !stats.lastWrite.IsZero() {
		snapshot.LastWriteTime = stats.lastWrite.UnixMilli()
	}
	if !stats.lastSuccess.IsZero() {
		snapshot.LastSuccessTime = stats.lastSuccess.UnixMilli()
	}
	return snapshot, true
}

// RemovePartition drops the bookkeeping of a partition deleted upstream.
func (t *Tracker) RemovePartition(partition PartitionIdentifier) {
	t.stats.Remove(partition)
}

// RemoveTable drops the bookkeeping of every partition of a dropped table.
func (t *Tracker) RemoveTable(tableID int64) {
	removed := 0
	t.stats.Range(func(partition PartitionIdentifier, _ *partitionStats) bool {
		if partition.TableID == tableID {
			t.stats.Remove(partition)
			removed++
		}
		return true
	})
	if removed > 0 {
		log.Info("dropped partition compaction stats of removed table",
			zap.Int64("tableID", tableID),
			zap.Int("numPartitions", removed))
	}
}

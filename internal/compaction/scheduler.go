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

// Package compaction schedules background compaction of lake partitions.
// A periodic loop ranks partitions by accumulated delta versions, opens one
// transaction per admitted partition, dispatches the work to a compute node
// picked through the warehouse resolver and commits or aborts the transaction
// when the node reports back. At most one job per partition is in flight at
// any instant, the running-jobs map is the single source of truth for that.
package compaction

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/glacierdb/glacierdb/internal/cluster"
	"github.com/glacierdb/glacierdb/internal/kv"
	"github.com/glacierdb/glacierdb/internal/warehouse"
	"github.com/glacierdb/glacierdb/pkg/log"
	"github.com/glacierdb/glacierdb/pkg/metrics"
	"github.com/glacierdb/glacierdb/pkg/util/conc"
	"github.com/glacierdb/glacierdb/pkg/util/funcutil"
	"github.com/glacierdb/glacierdb/pkg/util/hardware"
	"github.com/glacierdb/glacierdb/pkg/util/logutil"
	"github.com/glacierdb/glacierdb/pkg/util/merr"
	"github.com/glacierdb/glacierdb/pkg/util/paramtable"
	"github.com/glacierdb/glacierdb/pkg/util/typeutil"
)

// disabledTablesKey stores the operator supplied disable specifier, it
// survives coordinator restarts and wins over the static config seed.
const disabledTablesKey = "lakecoord/compaction/disabled-tables"

// NameResolverFunc resolves the display names behind a partition's database
// and table ids. Unresolvable ids map to empty strings, ids stay the source
// of truth everywhere else.
type NameResolverFunc func(partition PartitionIdentifier) (dbName string, tableName string)

type Option func(*Scheduler)

// WithNameResolver makes history records carry database and table names next
// to the ids.
func WithNameResolver(fn NameResolverFunc) Option {
	return func(s *Scheduler) {
		s.nameResolver = fn
	}
}

// Scheduler drives the compaction state machine for every lake partition.
// The decision phase, candidate selection and admission, runs single threaded
// on the scheduling loop. Execution, transaction begin, remote dispatch and
// commit or abort, runs on a worker pool so a slow job never blocks admission
// of other partitions.
type Scheduler struct {
	txnMgr     TxnManager
	registry   *warehouse.Manager
	resolver   *warehouse.Resolver
	dispatcher cluster.Cluster
	metaKV     kv.TxnKV
	tracker    *Tracker

	runningJobs *typeutil.ConcurrentMap[PartitionIdentifier, *CompactionJob]
	history     *expirable.LRU[int64, *CompactionRecord]
	historySeq  *atomic.Int64
	disabledIDs atomic.Pointer[typeutil.UniqueSet]

	nameResolver NameResolverFunc

	pool      *conc.Pool[any]
	ctx       context.Context
	cancel    context.CancelFunc
	notifyCh  chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

func NewScheduler(txnMgr TxnManager,
	registry *warehouse.Manager,
	resolver *warehouse.Resolver,
	dispatcher cluster.Cluster,
	metaKV kv.TxnKV,
	opts ...Option,
) *Scheduler {
	params := paramtable.Get()
	poolSize := params.LakeCoordCfg.MaxParallelJobs.GetAsInt()
	if poolSize < 1 {
		// admission is gated separately, the pool still serves manual triggers
		poolSize = 1
	}
	retainCount := params.LakeCoordCfg.HistoryRetainCount.GetAsInt()
	retainDuration := params.LakeCoordCfg.HistoryRetainDuration.GetAsDuration(time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		txnMgr:      txnMgr,
		registry:    registry,
		resolver:    resolver,
		dispatcher:  dispatcher,
		metaKV:      metaKV,
		tracker:     NewTracker(),
		runningJobs: typeutil.NewConcurrentMap[PartitionIdentifier, *CompactionJob](),
		history:     expirable.NewLRU[int64, *CompactionRecord](retainCount, nil, retainDuration),
		historySeq:  atomic.NewInt64(0),
		pool:        conc.NewPool[any](poolSize),
		ctx:         ctx,
		cancel:      cancel,
		notifyCh:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.loadDisabledTables()
	return s
}

// Tracker returns the per-partition state tracker the ingest path feeds.
func (s *Scheduler) Tracker() *Tracker {
	return s.tracker
}

// Start launches the periodic scheduling loop. TriggerCompaction works
// without Start, only background candidate selection needs the loop.
func (s *Scheduler) Start() {
	s.startOnce.Do(func() {
		interval := paramtable.Get().LakeCoordCfg.ScheduleInterval.GetAsDuration(time.Second)
		s.wg.Add(1)
		go s.scheduleLoop(interval)
		log.Info("compaction scheduler started", zap.Duration("interval", interval))
	})
}

func (s *Scheduler) scheduleLoop(interval time.Duration) {
	defer logutil.LogPanic()
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			log.Info("compaction scheduler loop exit")
			return
		case <-ticker.C:
			s.schedule(s.ctx)
		case <-s.notifyCh:
			ticker.Stop()
			s.schedule(s.ctx)
			ticker.Reset(interval)
		}
	}
}

// Notify wakes the loop for an immediate scheduling round. The nudge is
// dropped when a round is already pending.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

// Stop cancels the loop and waits for it to exit. In-flight jobs observe the
// canceled context on their next transaction or dispatch call and abort.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		s.wg.Wait()
		s.pool.Release()
		log.Info("compaction scheduler stopped")
	})
}

// schedule runs one scheduling round, the decision phase of the state
// machine. Execution of admitted jobs is handed to the worker pool.
func (s *Scheduler) schedule(ctx context.Context) {
	start := time.Now()
	defer func() {
		metrics.LakeCoordScheduleRoundLatency.WithLabelValues().
			Observe(float64(time.Since(start).Milliseconds()))
	}()

	params := paramtable.Get()
	watermark := params.LakeCoordCfg.MemoryWatermark.GetAsFloat()
	if ratio := hardware.GetMemoryUseRatio(); ratio >= watermark {
		log.Warn("memory usage above watermark, skip compaction scheduling round",
			zap.Float64("usedRatio", ratio),
			zap.Float64("watermark", watermark))
		return
	}

	candidates := s.tracker.Candidates(s.IsTableDisabled)
	metrics.LakeCoordCompactionCandidateNum.WithLabelValues().Set(float64(len(candidates)))

	maxParallel := params.LakeCoordCfg.MaxParallelJobs.GetAsInt()
	for _, partition := range candidates {
		if s.runningJobs.Len() >= maxParallel {
			break
		}
		job, err := s.admit(partition, false)
		if err != nil {
			// the previous job for this partition is still in flight
			continue
		}
		s.submit(ctx, job)
	}
}

// admit reserves the partition's slot in the running-jobs map. The map's
// insert-if-absent is the only admission gate, two concurrent attempts for
// one partition cannot both succeed.
func (s *Scheduler) admit(partition PartitionIdentifier, forceFull bool) (*CompactionJob, error) {
	var dbName, tableName string
	if s.nameResolver != nil {
		dbName, tableName = s.nameResolver(partition)
	}
	job := NewCompactionJob(partition, dbName, tableName, forceFull)
	if _, loaded := s.runningJobs.GetOrInsert(partition, job); loaded {
		return nil, merr.WrapErrCompactionJobRunning(partition.String())
	}
	s.tracker.MarkScheduled(partition)
	metrics.LakeCoordCompactionRunningJobNum.WithLabelValues().Set(float64(s.runningJobs.Len()))
	return job, nil
}

func (s *Scheduler) submit(ctx context.Context, job *CompactionJob) {
	s.pool.Submit(func() (any, error) {
		s.executeJob(ctx, job)
		return nil, nil
	})
}

// TriggerCompaction admits a job for the partition right away, outside the
// periodic candidate selection. Disabled tables are refused, as is a
// partition whose previous job has not finished.
func (s *Scheduler) TriggerCompaction(partition PartitionIdentifier, forceFull bool) error {
	if s.IsTableDisabled(partition.TableID) {
		return merr.WrapErrCompactionTableDisabled(partition.TableID)
	}
	job, err := s.admit(partition, forceFull)
	if err != nil {
		return err
	}
	log.Info("compaction triggered",
		zap.String("partition", partition.String()),
		zap.Bool("forceFull", forceFull))
	s.submit(s.ctx, job)
	return nil
}

// executeJob walks one admitted job through begin, dispatch and commit. Every
// failure path releases the partition's slot so a later round can retry, none
// of them is fatal to the scheduler.
func (s *Scheduler) executeJob(ctx context.Context, job *CompactionJob) {
	partition := job.Partition()
	log := log.With(
		zap.Int64("dbID", partition.DBID),
		zap.Int64("tableID", partition.TableID),
		zap.Int64("partitionID", partition.PartitionID))

	txnID, err := s.beginTxn(ctx, job)
	if err != nil {
		log.Warn("failed to begin compaction transaction, release the partition for a later round",
			zap.Error(err))
		s.releaseJob(job)
		return
	}
	job.SetTxnID(txnID)
	log.Info("compaction transaction opened", zap.Int64("txnID", txnID))

	if err := s.dispatch(ctx, job); err != nil {
		log.Warn("failed to run compaction, abort the transaction",
			zap.Int64("txnID", txnID), zap.Error(err))
		s.abortJob(ctx, job, err.Error())
		return
	}

	if err := s.txnMgr.Commit(ctx, txnID); err != nil {
		log.Warn("failed to commit compaction transaction",
			zap.Int64("txnID", txnID), zap.Error(err))
		s.abortJob(ctx, job, fmt.Sprintf("commit failed: %v", err))
		return
	}
	s.finishJob(job, OutcomeCommitted, "")
	log.Info("compaction job committed",
		zap.Int64("txnID", txnID),
		zap.Duration("elapsed", time.Since(job.StartTime())))
}

func (s *Scheduler) beginTxn(ctx context.Context, job *CompactionJob) (int64, error) {
	partition := job.Partition()
	// Compaction transactions run under their own timeout,
	// ingest.maxLoadTimeout does not apply to them.
	timeout := paramtable.Get().LakeCoordCfg.TransactionTimeout.GetAsInt64()
	req := &TxnRequest{
		DBID:           partition.DBID,
		TableIDs:       []int64{partition.TableID},
		Label:          compactionLabel(partition),
		Coordinator:    funcutil.GetLocalIP(),
		Source:         TxnSourceCompaction,
		TimeoutSeconds: timeout,
	}
	txnID, err := s.txnMgr.Begin(ctx, req)
	if err != nil {
		return 0, merr.WrapErrCompactionTxnBegin(partition.String(), err)
	}
	return txnID, nil
}

// dispatch resolves the target compute node and runs the compaction there,
// blocking until the node reports the result.
func (s *Scheduler) dispatch(ctx context.Context, job *CompactionJob) error {
	partition := job.Partition()
	wh := s.registry.CompactionWarehouse()
	if wh == nil {
		return merr.WrapErrCompactionDispatch(partition.String(),
			merr.WrapErrWarehouseNotFound(warehouse.DefaultWarehouseID))
	}
	// The shard group of a lake partition is keyed by the partition id.
	nodeID, ok, err := s.resolver.ComputeNodeIDForShard(ctx, wh.ID, partition.PartitionID)
	if err != nil {
		return merr.WrapErrCompactionDispatch(partition.String(), err)
	}
	if !ok {
		return merr.WrapErrCompactionDispatch(partition.String(),
			merr.WrapErrNoAliveNodeInWarehouse(wh.Name))
	}
	job.SetNodeID(nodeID)
	req := &cluster.CompactionTaskRequest{
		TxnID:          job.TxnID(),
		DBID:           partition.DBID,
		TableID:        partition.TableID,
		PartitionID:    partition.PartitionID,
		ForceFull:      job.ForceFull(),
		TimeoutSeconds: paramtable.Get().LakeCoordCfg.TransactionTimeout.GetAsInt64(),
	}
	if err := s.dispatcher.CompactPartition(ctx, nodeID, req); err != nil {
		return merr.WrapErrCompactionDispatch(partition.String(), err, "node %d", nodeID)
	}
	return nil
}

// releaseJob frees the partition's slot after a failed transaction begin.
// The job never truly started, it leaves no history record.
func (s *Scheduler) releaseJob(job *CompactionJob) {
	s.runningJobs.GetAndRemove(job.Partition())
	s.tracker.MarkFinished(job.Partition(), OutcomeAborted)
	metrics.LakeCoordCompactionRunningJobNum.WithLabelValues().Set(float64(s.runningJobs.Len()))
	metrics.LakeCoordCompactionJobCount.WithLabelValues(metrics.FailLabel).Inc()
}

// abortJob rolls the transaction back and records the job as aborted. An
// abort that fails on the transaction manager side is only logged, the
// transaction expires there on its own.
func (s *Scheduler) abortJob(ctx context.Context, job *CompactionJob, reason string) {
	if err := s.txnMgr.Abort(ctx, job.TxnID(), reason); err != nil {
		log.Warn("failed to abort compaction transaction",
			zap.Int64("txnID", job.TxnID()), zap.Error(err))
	}
	s.finishJob(job, OutcomeAborted, reason)
}

// finishJob moves the job to its terminal outcome, frees the partition's
// slot and appends the post-mortem record. Repeated calls for one job are
// no-ops, the first terminal outcome wins.
func (s *Scheduler) finishJob(job *CompactionJob, outcome Outcome, reason string) {
	if !job.Finish(outcome) {
		return
	}
	finishTime := time.Now()
	s.runningJobs.GetAndRemove(job.Partition())
	metrics.LakeCoordCompactionRunningJobNum.WithLabelValues().Set(float64(s.runningJobs.Len()))

	s.history.Add(s.historySeq.Inc(), job.Record(finishTime, reason))
	s.tracker.MarkFinished(job.Partition(), outcome)

	metrics.LakeCoordCompactionJobCount.WithLabelValues(outcome.String()).Inc()
	metrics.LakeCoordCompactionLatency.WithLabelValues(outcome.String()).
		Observe(float64(finishTime.Sub(job.StartTime()).Milliseconds()))
}

// History returns the retained compaction records together with the running
// jobs projected into record shape, ordered by start time descending. Ties
// are broken by the partition triple so repeated calls agree on the order.
// The query never fails, at worst it returns an empty slice.
func (s *Scheduler) History() []*CompactionRecord {
	records := s.history.Values()
	s.runningJobs.Range(func(_ PartitionIdentifier, job *CompactionJob) bool {
		records = append(records, job.Record(time.Time{}, ""))
		return true
	})
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].StartTime != records[j].StartTime {
			return records[i].StartTime > records[j].StartTime
		}
		return records[i].Partition.less(records[j].Partition)
	})
	return records
}

// RunningJobCount reports how many jobs hold a slot right now.
func (s *Scheduler) RunningJobCount() int {
	return s.runningJobs.Len()
}

// DisableTables replaces the whole disable set with the tables named by the
// semicolon separated specifier, an empty specifier clears it. Malformed
// entries are skipped one by one, the command itself never rejects. Already
// running jobs keep running, the set only guards future admission.
func (s *Scheduler) DisableTables(specifier string) {
	ids := parseTableIDs(specifier)
	s.applyDisabledTables(ids)
	if err := s.metaKV.Save(disabledTablesKey, formatTableIDs(ids)); err != nil {
		log.Warn("failed to persist compaction disable list, the in-memory list is already in effect",
			zap.Error(err))
	}
	log.Info("compaction disable list replaced", zap.Int64s("tableIDs", ids))
}

// IsTableDisabled reports whether the table is excluded from compaction
// scheduling. It never fails.
func (s *Scheduler) IsTableDisabled(tableID int64) bool {
	set := s.disabledIDs.Load()
	if set == nil {
		return false
	}
	return set.Contain(tableID)
}

// DisabledTables returns the current disable set, sorted for stable output.
func (s *Scheduler) DisabledTables() []int64 {
	set := s.disabledIDs.Load()
	if set == nil {
		return nil
	}
	ids := set.Collect()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// loadDisabledTables seeds the disable set at construction. A specifier
// persisted by a previous DisableTables call wins over the config seed.
func (s *Scheduler) loadDisabledTables() {
	specifier := paramtable.Get().LakeCoordCfg.DisableTableIDs.GetValue()
	if persisted, err := s.metaKV.Load(disabledTablesKey); err == nil {
		specifier = persisted
	}
	s.applyDisabledTables(parseTableIDs(specifier))
}

func (s *Scheduler) applyDisabledTables(ids []int64) {
	set := typeutil.NewUniqueSet(ids...)
	s.disabledIDs.Store(&set)
	metrics.LakeCoordDisabledTableNum.WithLabelValues().Set(float64(set.Len()))
}

// parseTableIDs splits a semicolon separated id list, dropping malformed and
// duplicate entries individually instead of rejecting the whole specifier.
func parseTableIDs(specifier string) []int64 {
	ids := make([]int64, 0)
	seen := typeutil.NewUniqueSet()
	for _, token := range strings.Split(specifier, ";") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		id, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			log.Warn("ignore malformed table id in compaction disable specifier",
				zap.String("token", token))
			continue
		}
		if seen.Contain(id) {
			continue
		}
		seen.Insert(id)
		ids = append(ids, id)
	}
	return ids
}

func formatTableIDs(ids []int64) string {
	tokens := make([]string, 0, len(ids))
	for _, id := range ids {
		tokens = append(tokens, strconv.FormatInt(id, 10))
	}
	return strings.Join(tokens, ";")
}

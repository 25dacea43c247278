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

package cluster

import (
	"context"

	"go.uber.org/zap"

	"github.com/glacierdb/glacierdb/pkg/log"
	"github.com/glacierdb/glacierdb/pkg/util/lock"
	"github.com/glacierdb/glacierdb/pkg/util/merr"
	"github.com/glacierdb/glacierdb/pkg/util/typeutil"
)

// CompactionTaskRequest describes one compaction task sent to a compute node.
// The wire protocol behind it belongs to the worker client implementation.
type CompactionTaskRequest struct {
	TxnID          int64
	DBID           int64
	TableID        int64
	PartitionID    int64
	ForceFull      bool
	TimeoutSeconds int64
}

// Worker is one compute node's task-execution client.
type Worker interface {
	CompactPartition(ctx context.Context, req *CompactionTaskRequest) error
	Stop()
}

// WorkerCreatorFunc builds the task-execution client for one compute node.
type WorkerCreatorFunc func(ctx context.Context, addr string, nodeID int64) (Worker, error)

// Cluster sends compaction tasks to compute nodes and manages their clients.
type Cluster interface {
	CompactPartition(ctx context.Context, nodeID int64, req *CompactionTaskRequest) error
	RemoveNode(nodeID int64)
	Stop()
}

type ClusterImpl struct {
	nodeMgr Manager
	creator WorkerCreatorFunc

	workers    *typeutil.ConcurrentMap[int64, Worker]
	workerLock *lock.KeyLock[int64]
}

func NewClusterImpl(nodeMgr Manager, creator WorkerCreatorFunc) *ClusterImpl {
	return &ClusterImpl{
		nodeMgr:    nodeMgr,
		creator:    creator,
		workers:    typeutil.NewConcurrentMap[int64, Worker](),
		workerLock: lock.NewKeyLock[int64](),
	}
}

func (c *ClusterImpl) CompactPartition(ctx context.Context, nodeID int64, req *CompactionTaskRequest) error {
	worker, err := c.getOrCreateWorker(ctx, nodeID)
	if err != nil {
		return err
	}
	return worker.CompactPartition(ctx, req)
}

// RemoveNode drops the cached client of a node that left the cluster.
func (c *ClusterImpl) RemoveNode(nodeID int64) {
	c.workerLock.Lock(nodeID)
	defer c.workerLock.Unlock(nodeID)
	if worker, loaded := c.workers.GetAndRemove(nodeID); loaded {
		worker.Stop()
	}
}

func (c *ClusterImpl) Stop() {
	c.workers.Range(func(nodeID int64, worker Worker) bool {
		worker.Stop()
		c.workers.Remove(nodeID)
		return true
	})
}

func (c *ClusterImpl) getOrCreateWorker(ctx context.Context, nodeID int64) (Worker, error) {
	c.workerLock.Lock(nodeID)
	defer c.workerLock.Unlock(nodeID)
	if worker, ok := c.workers.Get(nodeID); ok {
		return worker, nil
	}

	node := c.nodeMgr.Get(nodeID)
	if node == nil {
		return nil, merr.WrapErrNodeOffline(nodeID, "failed to create worker client")
	}
	worker, err := c.creator(ctx, node.Addr(), nodeID)
	if err != nil {
		log.Warn("create worker client failed",
			zap.Int64("nodeID", nodeID),
			zap.String("address", node.Addr()),
			zap.Error(err))
		return nil, err
	}
	c.workers.Insert(nodeID, worker)
	return worker, nil
}

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

package warehouse

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/glacierdb/glacierdb/internal/cluster"
	"github.com/glacierdb/glacierdb/internal/placement"
	"github.com/glacierdb/glacierdb/pkg/log"
	"github.com/glacierdb/glacierdb/pkg/metrics"
	"github.com/glacierdb/glacierdb/pkg/util/merr"
	"github.com/glacierdb/glacierdb/pkg/util/typeutil"
)

// Resolver answers which compute nodes serve a shard for a warehouse. An
// unknown warehouse is always surfaced as an error; placement service
// failures degrade to an empty result, they are transient by policy and the
// caller retries on a later cycle.
type Resolver struct {
	registry *Manager
	agent    placement.Agent
	nodeMgr  cluster.Manager
}

func NewResolver(registry *Manager, agent placement.Agent, nodeMgr cluster.Manager) *Resolver {
	return &Resolver{
		registry: registry,
		agent:    agent,
		nodeMgr:  nodeMgr,
	}
}

// SelectWorkerGroupIfAlive resolves the warehouse's worker group and keeps
// it only when the group has at least one alive member. ok=false means the
// caller should fall back or skip, never abort.
func (r *Resolver) SelectWorkerGroupIfAlive(ctx context.Context, warehouseID int64) (int64, bool, error) {
	groupID, ok, err := r.registry.ResolveWorkerGroup(warehouseID)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, nil
	}
	if len(r.aliveNodesInGroup(ctx, groupID)) == 0 {
		wh := r.registry.PeekWarehouseByID(warehouseID)
		log.Warn("there is no alive workers in warehouse", zap.String("warehouseName", wh.Name))
		return 0, false, nil
	}
	return groupID, true, nil
}

// AllComputeNodeIDs lists every node id attached to the warehouse's worker
// group, falling back to the default group when none is configured. A
// placement failure yields an empty list.
func (r *Resolver) AllComputeNodeIDs(ctx context.Context, warehouseID int64) ([]int64, error) {
	groupID, ok, err := r.registry.ResolveWorkerGroup(warehouseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		groupID = placement.DefaultWorkerGroupID
	}
	ids, err := r.agent.WorkersByGroup(ctx, groupID)
	if err != nil {
		log.RatedWarn(60.0, "failed to get compute node ids from placement",
			zap.Int64("warehouseID", warehouseID),
			zap.Int64("workerGroupID", groupID),
			zap.Error(err))
		return []int64{}, nil
	}
	return ids, nil
}

// AliveComputeNodes lists the alive members of the warehouse's worker group.
// The result is empty, never nil, when the group is unresolved or dead.
func (r *Resolver) AliveComputeNodes(ctx context.Context, warehouseID int64) ([]*cluster.NodeInfo, error) {
	ids, err := r.AllComputeNodeIDs(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	nodes := make([]*cluster.NodeInfo, 0, len(ids))
	for _, id := range ids {
		if node := r.aliveNode(id); node != nil {
			nodes = append(nodes, node)
		}
	}
	metrics.LakeCoordWarehouseNodeNum.WithLabelValues(fmt.Sprint(warehouseID)).Set(float64(len(nodes)))
	return nodes, nil
}

// ComputeNodeIDForShard picks the node the shard's next compaction should
// run on, the first id placement returns, so repeated calls against an
// unchanged placement snapshot stay on the same node. ok=false when nothing
// is resolvable.
func (r *Resolver) ComputeNodeIDForShard(ctx context.Context, warehouseID int64, shardID int64) (int64, bool, error) {
	groupID, ok, err := r.SelectWorkerGroupIfAlive(ctx, warehouseID)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		groupID = placement.DefaultWorkerGroupID
	}

	info, err := r.agent.ShardInfo(ctx, shardID, groupID)
	if err != nil {
		log.RatedWarn(60.0, "failed to get shard info from placement",
			zap.Int64("shardID", shardID),
			zap.Int64("workerGroupID", groupID),
			zap.Error(err))
		return 0, false, nil
	}
	ids, err := r.agent.NodeIDsByShard(info, true)
	if err != nil {
		log.RatedWarn(60.0, "failed to get node ids of shard",
			zap.Int64("shardID", shardID),
			zap.Error(err))
		return 0, false, nil
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[0], true, nil
}

// AllNodeIDsForShard returns every node id assigned to the shard, dead ones
// included. Any resolution failure degrades to an empty set.
func (r *Resolver) AllNodeIDsForShard(ctx context.Context, warehouseID int64, shardID int64) (typeutil.UniqueSet, error) {
	groupID, ok, err := r.SelectWorkerGroupIfAlive(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		groupID = placement.DefaultWorkerGroupID
	}

	ret := typeutil.NewUniqueSet()
	info, err := r.agent.ShardInfo(ctx, shardID, groupID)
	if err != nil {
		log.RatedWarn(60.0, "failed to get shard info from placement",
			zap.Int64("shardID", shardID),
			zap.Int64("workerGroupID", groupID),
			zap.Error(err))
		return ret, nil
	}
	ids, err := r.agent.NodeIDsByShard(info, false)
	if err != nil {
		log.RatedWarn(60.0, "failed to get node ids of shard",
			zap.Int64("shardID", shardID),
			zap.Error(err))
		return ret, nil
	}
	ret.Insert(ids...)
	return ret, nil
}

// AssignedNodeForShard is the erroring variant for call sites that cannot
// proceed without a node. The error carries the warehouse name, operators
// know warehouses by name, not id.
func (r *Resolver) AssignedNodeForShard(ctx context.Context, warehouseID int64, shardID int64) (*cluster.NodeInfo, error) {
	nodeID, ok, err := r.ComputeNodeIDForShard(ctx, warehouseID, shardID)
	if err != nil {
		return nil, err
	}
	if !ok {
		wh := r.registry.PeekWarehouseByID(warehouseID)
		return nil, merr.WrapErrNoAliveNodeInWarehouse(wh.Name)
	}
	node := r.nodeMgr.Get(nodeID)
	if node == nil {
		return nil, merr.WrapErrNodeNotFound(nodeID, "assigned node already left the cluster")
	}
	return node, nil
}

func (r *Resolver) aliveNodesInGroup(ctx context.Context, groupID int64) []*cluster.NodeInfo {
	ids, err := r.agent.WorkersByGroup(ctx, groupID)
	if err != nil {
		log.RatedWarn(60.0, "failed to get compute node ids from placement",
			zap.Int64("workerGroupID", groupID),
			zap.Error(err))
		return nil
	}
	nodes := make([]*cluster.NodeInfo, 0, len(ids))
	for _, id := range ids {
		if node := r.aliveNode(id); node != nil {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

// aliveNode treats draining nodes as dead, they must not take new work.
func (r *Resolver) aliveNode(nodeID int64) *cluster.NodeInfo {
	node := r.nodeMgr.Get(nodeID)
	if node == nil || node.IsStoppingState() {
		return nil
	}
	return node
}

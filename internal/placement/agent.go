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

// Package placement defines the contract with the external shard placement
// service. The service owns the shard-to-node mapping; this module only
// consumes it through the Agent interface when assigning compaction work.
package placement

import (
	"context"
)

// DefaultWorkerGroupID is the worker group every warehouse falls back to
// when it has no explicit group bound.
const DefaultWorkerGroupID int64 = 0

// ShardInfo describes the placement of one storage shard inside a worker
// group at the time it was fetched.
type ShardInfo struct {
	ShardID       int64
	WorkerGroupID int64
	// NodeIDs are the replica holders, primary first.
	NodeIDs []int64
}

//go:generate mockery --name=Agent --structname=MockAgent --output=./  --filename=mock_agent.go --with-expecter --inpackage
type Agent interface {
	// ShardInfo fetches the current placement of the shard within the worker
	// group. Lookup misses surface merr.ErrShardNotFound, transport failures
	// merr.ErrShardPlacement.
	ShardInfo(ctx context.Context, shardID int64, workerGroupID int64) (*ShardInfo, error)
	// NodeIDsByShard lists the node ids serving an already-fetched shard.
	// With preferAlive set, replicas known to be dead are filtered out.
	NodeIDsByShard(info *ShardInfo, preferAlive bool) ([]int64, error)
	// WorkersByGroup lists every node id attached to the worker group.
	WorkersByGroup(ctx context.Context, workerGroupID int64) ([]int64, error)
}

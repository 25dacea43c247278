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
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/atomic"

	"github.com/glacierdb/glacierdb/pkg/util/merr"
)

type fakeWorker struct {
	mu      sync.Mutex
	reqs    []*CompactionTaskRequest
	err     error
	stopped bool
}

func (w *fakeWorker) CompactPartition(_ context.Context, req *CompactionTaskRequest) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reqs = append(w.reqs, req)
	return w.err
}

func (w *fakeWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
}

func (w *fakeWorker) numRequests() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.reqs)
}

func (w *fakeWorker) isStopped() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stopped
}

type ClusterSuite struct {
	suite.Suite

	nodeMgr *NodeManager
	worker  *fakeWorker
	created *atomic.Int32
	cluster *ClusterImpl
}

func (s *ClusterSuite) SetupTest() {
	s.nodeMgr = NewNodeManager()
	s.worker = &fakeWorker{}
	s.created = atomic.NewInt32(0)
	s.cluster = NewClusterImpl(s.nodeMgr, func(ctx context.Context, addr string, nodeID int64) (Worker, error) {
		s.created.Inc()
		return s.worker, nil
	})
	s.nodeMgr.Add(NewNodeInfo(ImmutableNodeInfo{NodeID: 1000, Address: "localhost:21124"}))
}

func (s *ClusterSuite) TestCompactPartition() {
	ctx := context.Background()
	req := &CompactionTaskRequest{
		TxnID:       7,
		DBID:        1,
		TableID:     2,
		PartitionID: 3,
	}

	s.Run("no node", func() {
		err := s.cluster.CompactPartition(ctx, 100, req)
		s.Error(err)
		s.ErrorIs(err, merr.ErrNodeOffline)
	})

	s.Run("normal", func() {
		err := s.cluster.CompactPartition(ctx, 1000, req)
		s.NoError(err)
		s.Equal(1, s.worker.numRequests())
		s.EqualValues(1, s.created.Load())
	})

	s.Run("client is cached", func() {
		err := s.cluster.CompactPartition(ctx, 1000, req)
		s.NoError(err)
		s.Equal(2, s.worker.numRequests())
		s.EqualValues(1, s.created.Load())
	})

	s.Run("worker fails", func() {
		s.worker.err = errors.New("mock")
		defer func() { s.worker.err = nil }()
		err := s.cluster.CompactPartition(ctx, 1000, req)
		s.Error(err)
	})
}

func (s *ClusterSuite) TestCreatorFailure() {
	cluster := NewClusterImpl(s.nodeMgr, func(ctx context.Context, addr string, nodeID int64) (Worker, error) {
		return nil, errors.New("mock dial failure")
	})
	err := cluster.CompactPartition(context.Background(), 1000, &CompactionTaskRequest{})
	s.Error(err)
}

func (s *ClusterSuite) TestRemoveNode() {
	ctx := context.Background()
	s.NoError(s.cluster.CompactPartition(ctx, 1000, &CompactionTaskRequest{}))

	s.cluster.RemoveNode(1000)
	s.True(s.worker.isStopped())

	// The node is still registered, the next dispatch redials.
	s.NoError(s.cluster.CompactPartition(ctx, 1000, &CompactionTaskRequest{}))
	s.EqualValues(2, s.created.Load())

	// Removing a node without a cached client is a no-op.
	s.cluster.RemoveNode(404)
}

func (s *ClusterSuite) TestStop() {
	ctx := context.Background()
	s.NoError(s.cluster.CompactPartition(ctx, 1000, &CompactionTaskRequest{}))

	s.cluster.Stop()
	s.True(s.worker.isStopped())
	s.Zero(s.cluster.workers.Len())
}

func TestClusterSuite(t *testing.T) {
	suite.Run(t, new(ClusterSuite))
}

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
	"fmt"
	"math/rand"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/glacierdb/glacierdb/internal/session"
	"github.com/glacierdb/glacierdb/pkg/util/etcd"
	"github.com/glacierdb/glacierdb/pkg/util/metricsinfo"
	"github.com/glacierdb/glacierdb/pkg/util/paramtable"
	"github.com/glacierdb/glacierdb/pkg/util/typeutil"
)

func TestMain(m *testing.M) {
	os.Setenv(metricsinfo.DeployModeEnvKey, metricsinfo.StandaloneDeployMode)
	os.Setenv("etcd.use.embed", "true")
	dir, err := os.MkdirTemp(os.TempDir(), "glacierdb_ut_cluster")
	if err != nil {
		panic(err)
	}
	os.Setenv("etcd.data.dir", dir)

	paramtable.Init()
	params := paramtable.Get()
	err = etcd.InitEtcdServer(
		params.EtcdCfg.UseEmbedEtcd.GetAsBool(),
		params.EtcdCfg.ConfigPath.GetValue(),
		params.EtcdCfg.DataDir.GetValue(),
		params.EtcdCfg.EtcdLogPath.GetValue(),
		params.EtcdCfg.EtcdLogLevel.GetValue())
	if err != nil {
		panic(err)
	}

	code := m.Run()

	etcd.StopEtcdServer()
	os.RemoveAll(dir)
	os.Exit(code)
}

func newEtcdClient(t *testing.T) *clientv3.Client {
	params := paramtable.Get()
	cli, err := etcd.GetEtcdClient(
		params.EtcdCfg.UseEmbedEtcd.GetAsBool(),
		params.EtcdCfg.EtcdUseSSL.GetAsBool(),
		params.EtcdCfg.Endpoints.GetAsStrings(),
		params.EtcdCfg.EtcdTLSCert.GetValue(),
		params.EtcdCfg.EtcdTLSKey.GetValue(),
		params.EtcdCfg.EtcdTLSCACert.GetValue(),
		params.EtcdCfg.EtcdTLSMinVersion.GetValue())
	require.NoError(t, err)
	return cli
}

// recordingCluster stands in for the dispatch plane, it only remembers
// which nodes the watcher evicted.
type recordingCluster struct {
	removed *typeutil.ConcurrentSet[int64]
}

func newRecordingCluster() *recordingCluster {
	return &recordingCluster{removed: typeutil.NewConcurrentSet[int64]()}
}

func (c *recordingCluster) CompactPartition(_ context.Context, _ int64, _ *CompactionTaskRequest) error {
	return nil
}

func (c *recordingCluster) RemoveNode(nodeID int64) {
	c.removed.Insert(nodeID)
}

func (c *recordingCluster) Stop() {}

func TestWatcherLifecycle(t *testing.T) {
	ctx := context.Background()
	cli := newEtcdClient(t)
	defer cli.Close()
	metaRoot := fmt.Sprintf("cluster-ut-%d", rand.Int31())

	// One node is already up before the watcher starts and is draining.
	node1 := session.NewSession(ctx, metaRoot, cli)
	node1.Init(typeutil.ComputeNodeRole, "localhost:21124", false, false)
	node1.Register()
	defer node1.Stop()
	require.NoError(t, node1.GoingStop())

	coordSession := session.NewSession(ctx, metaRoot, cli)
	nodeMgr := NewNodeManager()
	dispatch := newRecordingCluster()
	watcher := NewWatcher(coordSession, nodeMgr, dispatch)
	require.NoError(t, watcher.Start(ctx))
	defer watcher.Stop()

	// Bootstrap picked up the registered node together with its state.
	info := nodeMgr.Get(node1.NodeID)
	require.NotNil(t, info)
	assert.Equal(t, "localhost:21124", info.Addr())
	assert.True(t, info.IsStoppingState())
	assert.Len(t, watcher.Sessions(), 1)

	// A node joining later arrives through the watch stream.
	node2 := session.NewSession(ctx, metaRoot, cli)
	node2.Init(typeutil.ComputeNodeRole, "localhost:21125", false, false)
	node2.Register()
	assert.Eventually(t, func() bool {
		return nodeMgr.Get(node2.NodeID) != nil
	}, 10*time.Second, 10*time.Millisecond)
	assert.Equal(t, "localhost:21125", nodeMgr.Get(node2.NodeID).Addr())
	assert.Len(t, watcher.Sessions(), 2)

	// Draining flips the node to stopping without removing it.
	require.NoError(t, node2.GoingStop())
	assert.Eventually(t, func() bool {
		node := nodeMgr.Get(node2.NodeID)
		return node != nil && node.IsStoppingState()
	}, 10*time.Second, 10*time.Millisecond)

	// Losing the session removes the node and evicts its client.
	node2.Stop()
	assert.Eventually(t, func() bool {
		return nodeMgr.Get(node2.NodeID) == nil
	}, 10*time.Second, 10*time.Millisecond)
	assert.True(t, dispatch.removed.Contain(node2.NodeID))
	assert.Len(t, watcher.Sessions(), 1)
}

func TestWatcherStop(t *testing.T) {
	ctx := context.Background()
	cli := newEtcdClient(t)
	defer cli.Close()
	metaRoot := fmt.Sprintf("cluster-ut-%d", rand.Int31())

	coordSession := session.NewSession(ctx, metaRoot, cli)
	watcher := NewWatcher(coordSession, NewNodeManager(), nil)
	require.NoError(t, watcher.Start(ctx))

	done := make(chan struct{})
	go func() {
		watcher.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("watcher did not stop within 10s")
	}
}

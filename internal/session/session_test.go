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

package session_test

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
	dir, err := os.MkdirTemp(os.TempDir(), "glacierdb_ut_session")
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

func randomMetaRoot() string {
	return fmt.Sprintf("session-ut-%d", rand.Int31())
}

func nextEvent(t *testing.T, ch <-chan *session.SessionEvent) *session.SessionEvent {
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "event channel closed")
		require.NotNil(t, ev)
		return ev
	case <-time.After(10 * time.Second):
		t.Fatal("no session event within 10s")
	}
	return nil
}

func TestSessionRegister(t *testing.T) {
	ctx := context.Background()
	cli := newEtcdClient(t)
	defer cli.Close()
	metaRoot := randomMetaRoot()

	s := session.NewSession(ctx, metaRoot, cli)
	s.Init(typeutil.ComputeNodeRole, "localhost:21124", false, false)
	s.Register()
	defer s.Stop()

	assert.True(t, s.Registered())
	assert.Positive(t, s.NodeID)
	require.NotNil(t, s.LeaseID)

	sessions, _, err := s.GetSessions(typeutil.ComputeNodeRole)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	key := fmt.Sprintf("%s-%d", typeutil.ComputeNodeRole, s.NodeID)
	got, ok := sessions[key]
	require.True(t, ok)
	assert.Equal(t, s.NodeID, got.NodeID)
	assert.Equal(t, "localhost:21124", got.Address)
	assert.Equal(t, s.Version.String(), got.Version.String())
	assert.False(t, got.Stopping)
}

func TestSessionNodeIDAllocation(t *testing.T) {
	ctx := context.Background()
	cli := newEtcdClient(t)
	defer cli.Close()
	metaRoot := randomMetaRoot()

	s1 := session.NewSession(ctx, metaRoot, cli)
	s1.Init(typeutil.ComputeNodeRole, "localhost:21124", false, false)
	s2 := session.NewSession(ctx, metaRoot, cli)
	s2.Init(typeutil.ComputeNodeRole, "localhost:21125", false, false)

	assert.Equal(t, s1.NodeID+1, s2.NodeID)
}

func TestSessionExclusiveKey(t *testing.T) {
	ctx := context.Background()
	cli := newEtcdClient(t)
	defer cli.Close()
	metaRoot := randomMetaRoot()

	s := session.NewSession(ctx, metaRoot, cli)
	s.Init(typeutil.LakeCoordRole, "localhost:21121", true, false)
	s.Register()
	defer s.Stop()

	// An exclusive session registers under the bare server name, without
	// the node id suffix.
	sessions, _, err := s.GetSessions(typeutil.LakeCoordRole)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	_, ok := sessions[typeutil.LakeCoordRole]
	assert.True(t, ok)
}

func TestSessionJSON(t *testing.T) {
	ctx := context.Background()
	cli := newEtcdClient(t)
	defer cli.Close()

	s := session.NewSession(ctx, randomMetaRoot(), cli)
	s.ServerName = typeutil.ComputeNodeRole
	s.Address = "localhost:21124"
	s.NodeID = 7

	data, err := s.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Version":"`+s.Version.String()+`"`)

	restored := &session.Session{}
	require.NoError(t, restored.UnmarshalJSON(data))
	assert.Equal(t, s.NodeID, restored.NodeID)
	assert.Equal(t, s.ServerName, restored.ServerName)
	assert.Equal(t, s.Address, restored.Address)
	assert.Equal(t, s.Version.String(), restored.Version.String())
}

func TestWatchServices(t *testing.T) {
	ctx := context.Background()
	cli := newEtcdClient(t)
	defer cli.Close()
	metaRoot := randomMetaRoot()

	watcher := session.NewSession(ctx, metaRoot, cli)
	sessions, revision, err := watcher.GetSessions(typeutil.ComputeNodeRole)
	require.NoError(t, err)
	require.Empty(t, sessions)
	eventCh := watcher.WatchServices(typeutil.ComputeNodeRole, revision+1, nil)

	s := session.NewSession(ctx, metaRoot, cli)
	s.Init(typeutil.ComputeNodeRole, "localhost:21124", false, false)
	s.Register()

	ev := nextEvent(t, eventCh)
	assert.Equal(t, session.SessionAddEvent, ev.EventType)
	assert.Equal(t, s.NodeID, ev.Session.NodeID)
	assert.Equal(t, "localhost:21124", ev.Session.Address)

	require.NoError(t, s.GoingStop())
	ev = nextEvent(t, eventCh)
	assert.Equal(t, session.SessionUpdateEvent, ev.EventType)
	assert.Equal(t, s.NodeID, ev.Session.NodeID)
	assert.True(t, ev.Session.Stopping)

	s.Stop()
	ev = nextEvent(t, eventCh)
	assert.Equal(t, session.SessionDelEvent, ev.EventType)
	assert.Equal(t, s.NodeID, ev.Session.NodeID)
}

func TestSessionLivenessCheck(t *testing.T) {
	ctx := context.Background()
	cli := newEtcdClient(t)
	defer cli.Close()
	metaRoot := randomMetaRoot()

	s := session.NewSession(ctx, metaRoot, cli)
	s.Init(typeutil.ComputeNodeRole, "localhost:21124", false, false)
	s.Register()

	callbackCh := make(chan struct{})
	go s.LivenessCheck(ctx, func() {
		close(callbackCh)
	})

	// Revoke the lease behind the session's back, as if etcd expired it.
	_, err := cli.Revoke(ctx, *s.LeaseID)
	require.NoError(t, err)

	select {
	case <-callbackCh:
	case <-time.After(10 * time.Second):
		t.Fatal("liveness callback not fired within 10s")
	}
	assert.False(t, s.Registered())
}

func TestSessionLivenessCancel(t *testing.T) {
	ctx := context.Background()
	cli := newEtcdClient(t)
	defer cli.Close()
	metaRoot := randomMetaRoot()

	s := session.NewSession(ctx, metaRoot, cli)
	s.Init(typeutil.ComputeNodeRole, "localhost:21124", false, false)
	s.Register()
	defer s.Stop()

	checkCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		s.LivenessCheck(checkCtx, nil)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("liveness check did not exit after cancel")
	}
}

func TestGoingStopErrors(t *testing.T) {
	ctx := context.Background()
	cli := newEtcdClient(t)
	defer cli.Close()

	var nilSession *session.Session
	assert.Error(t, nilSession.GoingStop())

	s := session.NewSession(ctx, randomMetaRoot(), cli)
	s.Init(typeutil.ComputeNodeRole, "localhost:21124", false, false)
	// Not registered yet, no lease exists.
	assert.Error(t, s.GoingStop())
}

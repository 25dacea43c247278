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
	"time"

	"go.uber.org/zap"

	"github.com/glacierdb/glacierdb/internal/session"
	"github.com/glacierdb/glacierdb/pkg/common"
	"github.com/glacierdb/glacierdb/pkg/log"
	"github.com/glacierdb/glacierdb/pkg/util/logutil"
	"github.com/glacierdb/glacierdb/pkg/util/typeutil"
)

// Watcher lists the compute node sessions once and then follows the etcd
// watch stream, keeping the node manager and the dispatch cluster in sync
// with the live session set.
type Watcher struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	session *session.Session
	nodeMgr Manager
	cluster Cluster

	mu       sync.RWMutex
	sessions map[int64]*session.Session

	// onFailure runs when the watch stream is lost beyond recovery. The
	// embedding process decides whether to restart or exit.
	onFailure func()
}

type WatcherOption func(w *Watcher)

// WithWatchFailureHandler installs the callback invoked when the session
// watch channel closes and cannot be reestablished.
func WithWatchFailureHandler(fn func()) WatcherOption {
	return func(w *Watcher) {
		w.onFailure = fn
	}
}

// NewWatcher builds a watcher over the compute node role. The cluster may be
// nil when no dispatch plane is attached, the node manager may not.
func NewWatcher(sess *session.Session, nodeMgr Manager, cluster Cluster, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		session:  sess,
		nodeMgr:  nodeMgr,
		cluster:  cluster,
		sessions: make(map[int64]*session.Session),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start lists the current compute node sessions, feeds them to the node
// manager and spawns the watch loop from the list revision.
func (w *Watcher) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)

	sessions, revision, err := w.session.GetSessions(typeutil.ComputeNodeRole)
	if err != nil {
		return err
	}
	for _, node := range sessions {
		w.addNode(node)
		if node.Stopping {
			w.nodeMgr.Stopping(node.NodeID)
		}
	}
	log.Info("watcher bootstrapped from existing sessions",
		zap.Int("numNodes", len(sessions)),
		zap.Int64("revision", revision))

	w.wg.Add(1)
	go w.watchNodes(revision)
	return nil
}

func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

// Sessions returns a point-in-time copy of the raw session records by node id.
func (w *Watcher) Sessions() map[int64]*session.Session {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return common.CloneMap(w.sessions)
}

func (w *Watcher) addNode(node *session.Session) {
	w.mu.Lock()
	w.sessions[node.NodeID] = node
	w.mu.Unlock()

	info := NewNodeInfo(ImmutableNodeInfo{
		NodeID:   node.NodeID,
		Address:  node.Address,
		Hostname: node.Hostname,
		Version:  node.Version,
	})
	info.SetLastHeartbeat(time.Now())
	w.nodeMgr.Add(info)
}

func (w *Watcher) removeNode(nodeID int64) {
	w.mu.Lock()
	delete(w.sessions, nodeID)
	w.mu.Unlock()

	w.nodeMgr.Remove(nodeID)
	if w.cluster != nil {
		w.cluster.RemoveNode(nodeID)
	}
}

func (w *Watcher) watchNodes(revision int64) {
	defer logutil.LogPanic()
	defer w.wg.Done()
	eventChan := w.session.WatchServices(typeutil.ComputeNodeRole, revision+1, nil)
	for {
		select {
		case <-w.ctx.Done():
			log.Info("stop watching nodes, close node watcher")
			return
		case event, ok := <-eventChan:
			if !ok {
				// ErrCompacted is recovered inside the session watcher, a
				// closed channel means the stream is gone for good.
				log.Error("session watcher channel closed, stop watching nodes")
				if w.onFailure != nil {
					go w.onFailure()
				}
				return
			}
			w.handleEvent(event)
		}
	}
}

func (w *Watcher) handleEvent(event *session.SessionEvent) {
	switch event.EventType {
	case session.SessionAddEvent:
		log.Info("add node to node manager",
			zap.Int64("nodeID", event.Session.NodeID),
			zap.String("address", event.Session.Address),
			zap.String("version", event.Session.Version.String()))
		w.addNode(event.Session)
	case session.SessionUpdateEvent:
		log.Info("stopping the node",
			zap.Int64("nodeID", event.Session.NodeID),
			zap.String("address", event.Session.Address))
		w.mu.Lock()
		w.sessions[event.Session.NodeID] = event.Session
		w.mu.Unlock()
		w.nodeMgr.Stopping(event.Session.NodeID)
	case session.SessionDelEvent:
		log.Info("node down, remove it",
			zap.Int64("nodeID", event.Session.NodeID),
			zap.String("address", event.Session.Address))
		w.removeNode(event.Session.NodeID)
	}
}

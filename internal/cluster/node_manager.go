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

// Package cluster tracks the compute nodes known to the lake coordinator and
// dispatches compaction work to them. The node set is fed by the session
// watcher, membership in a warehouse is resolved elsewhere.
package cluster

import (
	"fmt"
	"sync"
	"time"

	"github.com/blang/semver/v4"
	"go.uber.org/atomic"

	"github.com/glacierdb/glacierdb/pkg/metrics"
)

// Manager maintains the set of compute nodes currently registered in etcd.
type Manager interface {
	Add(node *NodeInfo)
	Stopping(nodeID int64)
	Remove(nodeID int64)
	Get(nodeID int64) *NodeInfo
	GetAll() []*NodeInfo
}

type NodeManager struct {
	mu    sync.RWMutex
	nodes map[int64]*NodeInfo
}

func NewNodeManager() *NodeManager {
	return &NodeManager{
		nodes: make(map[int64]*NodeInfo),
	}
}

func (m *NodeManager) Add(node *NodeInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes[node.ID()] = node
	metrics.LakeCoordNumComputeNodes.WithLabelValues().Set(float64(len(m.nodes)))
}

func (m *NodeManager) Remove(nodeID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.nodes, nodeID)
	metrics.LakeCoordNumComputeNodes.WithLabelValues().Set(float64(len(m.nodes)))
}

func (m *NodeManager) Stopping(nodeID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if nodeInfo, ok := m.nodes[nodeID]; ok {
		nodeInfo.SetState(NodeStateStopping)
	}
}

func (m *NodeManager) IsStoppingNode(nodeID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node := m.nodes[nodeID]
	if node == nil {
		return false, fmt.Errorf("nodeID[%d] isn't existed", nodeID)
	}
	return node.IsStoppingState(), nil
}

func (m *NodeManager) Get(nodeID int64) *NodeInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nodes[nodeID]
}

func (m *NodeManager) GetAll() []*NodeInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ret := make([]*NodeInfo, 0, len(m.nodes))
	for _, n := range m.nodes {
		ret = append(ret, n)
	}
	return ret
}

type State int

const (
	NormalStateName   = "active"
	StoppingStateName = "stopping"
)

const (
	NodeStateNormal State = iota
	NodeStateStopping
)

var stateNameMap = map[State]string{
	NodeStateNormal:   NormalStateName,
	NodeStateStopping: StoppingStateName,
}

func (s State) String() string {
	return stateNameMap[s]
}

// ImmutableNodeInfo is the part of a node's description that never changes
// for the lifetime of its session.
type ImmutableNodeInfo struct {
	NodeID   int64
	Address  string
	Hostname string
	Version  semver.Version
}

type NodeInfo struct {
	mu            sync.RWMutex
	immutableInfo ImmutableNodeInfo
	state         State
	lastHeartbeat *atomic.Int64
}

func NewNodeInfo(info ImmutableNodeInfo) *NodeInfo {
	return &NodeInfo{
		immutableInfo: info,
		lastHeartbeat: atomic.NewInt64(0),
	}
}

func (n *NodeInfo) ID() int64 {
	return n.immutableInfo.NodeID
}

func (n *NodeInfo) Addr() string {
	return n.immutableInfo.Address
}

func (n *NodeInfo) Hostname() string {
	return n.immutableInfo.Hostname
}

func (n *NodeInfo) Version() semver.Version {
	return n.immutableInfo.Version
}

func (n *NodeInfo) SetLastHeartbeat(time time.Time) {
	n.lastHeartbeat.Store(time.UnixNano())
}

func (n *NodeInfo) LastHeartbeat() time.Time {
	return time.Unix(0, n.lastHeartbeat.Load())
}

func (n *NodeInfo) IsStoppingState() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state == NodeStateStopping
}

func (n *NodeInfo) SetState(s State) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.state = s
}

func (n *NodeInfo) GetState() State {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

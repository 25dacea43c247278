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

// Package session keeps the liveness records of glacierdb processes in etcd.
// Every process registers one JSON session record under a keep-alive lease;
// coordinators list and watch the records to learn which compute nodes are
// alive. The record disappears together with its lease, so a crashed process
// is observed as a delete event after at most one session TTL.
package session

import (
	"context"
	"fmt"
	"os"
	"path"
	"strconv"
	"sync"
	"time"

	"github.com/blang/semver/v4"
	"github.com/cockroachdb/errors"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/glacierdb/glacierdb/internal/json"
	"github.com/glacierdb/glacierdb/pkg/common"
	"github.com/glacierdb/glacierdb/pkg/log"
	"github.com/glacierdb/glacierdb/pkg/util/paramtable"
	"github.com/glacierdb/glacierdb/pkg/util/retry"
)

const (
	// DefaultServiceRoot is the root path of all session keys under the meta root.
	DefaultServiceRoot = "session/"
	// DefaultIDKey holds the cluster-wide node id counter.
	DefaultIDKey = "id"
)

// Session is one process's liveness record. The exported fields are the JSON
// payload stored in etcd; the rest drives registration and keep-alive.
type Session struct {
	ctx             context.Context
	keepAliveCancel context.CancelFunc

	NodeID      int64  `json:"NodeID,omitempty"`
	ServerName  string `json:"ServerName,omitempty"`
	Address     string `json:"Address,omitempty"`
	Hostname    string `json:"Hostname,omitempty"`
	Exclusive   bool   `json:"Exclusive,omitempty"`
	Stopping    bool   `json:"Stopping,omitempty"`
	TriggerKill bool   `json:"TriggerKill,omitempty"`
	Version     semver.Version

	LeaseID *clientv3.LeaseID `json:"LeaseID,omitempty"`

	metaRoot string
	etcdCli  *clientv3.Client

	liveCh     chan struct{}
	registered atomic.Bool
	closeOnce  sync.Once

	sessionTTL        int64
	sessionRetryTimes uint
}

type sessionJSON struct {
	NodeID      int64             `json:"NodeID,omitempty"`
	ServerName  string            `json:"ServerName,omitempty"`
	Address     string            `json:"Address,omitempty"`
	Hostname    string            `json:"Hostname,omitempty"`
	Exclusive   bool              `json:"Exclusive,omitempty"`
	Stopping    bool              `json:"Stopping,omitempty"`
	TriggerKill bool              `json:"TriggerKill,omitempty"`
	Version     string            `json:"Version"`
	LeaseID     *clientv3.LeaseID `json:"LeaseID,omitempty"`
}

// MarshalJSON serializes the version as a plain semver string.
func (s *Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(&sessionJSON{
		NodeID:      s.NodeID,
		ServerName:  s.ServerName,
		Address:     s.Address,
		Hostname:    s.Hostname,
		Exclusive:   s.Exclusive,
		Stopping:    s.Stopping,
		TriggerKill: s.TriggerKill,
		Version:     s.Version.String(),
		LeaseID:     s.LeaseID,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (s *Session) UnmarshalJSON(data []byte) error {
	var raw sessionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Version != "" {
		version, err := semver.Parse(raw.Version)
		if err != nil {
			return err
		}
		s.Version = version
	}
	s.NodeID = raw.NodeID
	s.ServerName = raw.ServerName
	s.Address = raw.Address
	s.Hostname = raw.Hostname
	s.Exclusive = raw.Exclusive
	s.Stopping = raw.Stopping
	s.TriggerKill = raw.TriggerKill
	s.LeaseID = raw.LeaseID
	return nil
}

// NewSession creates a session bound to the meta root of the given etcd client.
// The session is inert until Init and Register are called.
func NewSession(ctx context.Context, metaRoot string, client *clientv3.Client) *Session {
	params := paramtable.Get()
	hostname, err := os.Hostname()
	if err != nil {
		log.Warn("get hostname failed", zap.Error(err))
	}
	return &Session{
		ctx:               ctx,
		metaRoot:          metaRoot,
		etcdCli:           client,
		Hostname:          hostname,
		Version:           common.Version,
		liveCh:            make(chan struct{}),
		sessionTTL:        params.CommonCfg.SessionTTL.GetAsInt64(),
		sessionRetryTimes: params.CommonCfg.SessionRetryTimes.GetAsUint(),
	}
}

// Init sets the identity of the session and allocates its node id from the
// cluster-wide counter. It must be called exactly once before Register.
func (s *Session) Init(serverName, address string, exclusive bool, triggerKill bool) {
	s.ServerName = serverName
	s.Address = address
	s.Exclusive = exclusive
	s.TriggerKill = triggerKill
	s.checkIDExist()
	nodeID, err := s.getNodeIDWithKey(DefaultIDKey)
	if err != nil {
		panic(err)
	}
	s.NodeID = nodeID
	log.Info("start server",
		zap.String("name", serverName),
		zap.String("address", address),
		zap.Int64("id", s.NodeID))
}

// Register writes the session key under a fresh lease and starts the
// keep-alive. Registration failure is fatal to the caller.
func (s *Session) Register() {
	ch, err := s.registerService()
	if err != nil {
		log.Error("register session failed", zap.Error(err))
		panic(err)
	}
	s.processKeepAliveResponse(ch)
	s.registered.Store(true)
}

// Registered reports whether the session key is currently written.
func (s *Session) Registered() bool {
	return s.registered.Load()
}

func (s *Session) getSessionKey() string {
	key := s.ServerName
	if !s.Exclusive {
		key = fmt.Sprintf("%s-%d", key, s.NodeID)
	}
	return path.Join(s.metaRoot, DefaultServiceRoot, key)
}

// checkIDExist seeds the id counter so the compare-and-swap in
// getNodeIDWithKey always has a value to read.
func (s *Session) checkIDExist() {
	idKey := path.Join(s.metaRoot, DefaultServiceRoot, DefaultIDKey)
	_, err := s.etcdCli.Txn(s.ctx).If(
		clientv3.Compare(clientv3.Version(idKey), "=", 0)).
		Then(clientv3.OpPut(idKey, "0")).Commit()
	if err != nil {
		log.Warn("session check id exist failed", zap.Error(err))
	}
}

func (s *Session) getNodeIDWithKey(key string) (int64, error) {
	idKey := path.Join(s.metaRoot, DefaultServiceRoot, key)
	for {
		getResp, err := s.etcdCli.Get(s.ctx, idKey)
		if err != nil {
			log.Warn("session get id key failed", zap.String("key", idKey), zap.Error(err))
			return -1, err
		}
		if getResp.Count <= 0 {
			return -1, fmt.Errorf("there is no value on key = %s", idKey)
		}
		value := string(getResp.Kvs[0].Value)
		valueInt, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			log.Warn("session parse id value failed", zap.String("value", value), zap.Error(err))
			return -1, err
		}
		txnResp, err := s.etcdCli.Txn(s.ctx).If(
			clientv3.Compare(clientv3.Value(idKey), "=", value)).
			Then(clientv3.OpPut(idKey, strconv.FormatInt(valueInt+1, 10))).Commit()
		if err != nil {
			return -1, err
		}
		if !txnResp.Succeeded {
			// Another process won the swap, read again.
			continue
		}
		return valueInt + 1, nil
	}
}

func (s *Session) registerService() (<-chan *clientv3.LeaseKeepAliveResponse, error) {
	var ch <-chan *clientv3.LeaseKeepAliveResponse
	log.Debug("session register begin", zap.String("serverName", s.ServerName), zap.Int64("nodeID", s.NodeID))
	registerFn := func() error {
		resp, err := s.etcdCli.Grant(s.ctx, s.sessionTTL)
		if err != nil {
			log.Error("grant lease failed", zap.Error(err))
			return err
		}
		s.LeaseID = &resp.ID

		sessionJSON, err := json.Marshal(s)
		if err != nil {
			return err
		}
		key := s.getSessionKey()
		txnResp, err := s.etcdCli.Txn(s.ctx).If(
			clientv3.Compare(clientv3.Version(key), "=", 0)).
			Then(clientv3.OpPut(key, string(sessionJSON), clientv3.WithLease(resp.ID))).Commit()
		if err != nil {
			log.Warn("compare and swap error, maybe the key has been registered", zap.Error(err))
			return err
		}
		if !txnResp.Succeeded {
			return fmt.Errorf("function CompareAndSwap error for compare is false for key: %s", key)
		}
		log.Info("put session key into etcd", zap.String("key", key), zap.String("value", string(sessionJSON)))

		keepAliveCtx, cancel := context.WithCancel(context.Background())
		s.keepAliveCancel = cancel
		ch, err = s.etcdCli.KeepAlive(keepAliveCtx, resp.ID)
		if err != nil {
			log.Warn("keep alive lease failed", zap.Error(err))
			return err
		}
		log.Info("session registered successfully", zap.String("serverName", s.ServerName), zap.Int64("nodeID", s.NodeID))
		return nil
	}
	err := retry.Do(s.ctx, registerFn, retry.Attempts(s.sessionRetryTimes))
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// processKeepAliveResponse closes liveCh as soon as the keep-alive stream
// ends, which is how every liveness checker learns the session is gone.
func (s *Session) processKeepAliveResponse(ch <-chan *clientv3.LeaseKeepAliveResponse) {
	go func() {
		for {
			select {
			case <-s.ctx.Done():
				log.Warn("session keepalive exits since the context is done")
				if s.keepAliveCancel != nil {
					s.keepAliveCancel()
				}
				return
			case resp, ok := <-ch:
				if !ok || resp == nil {
					log.Warn("session keepalive channel closed", zap.Bool("channelOK", ok))
					s.safeCloseLiveCh()
					return
				}
			}
		}
	}()
}

func (s *Session) safeCloseLiveCh() {
	s.closeOnce.Do(func() {
		close(s.liveCh)
	})
}

// LivenessCheck blocks until the session lease is lost, then runs the
// callback. Canceling the context stops the keep-alive as well.
func (s *Session) LivenessCheck(ctx context.Context, callback func()) {
	for {
		select {
		case _, ok := <-s.liveCh:
			if !ok {
				log.Warn("session lease lost", zap.String("serverName", s.ServerName), zap.Int64("nodeID", s.NodeID))
				s.registered.Store(false)
				if callback != nil {
					go callback()
				}
				return
			}
		case <-ctx.Done():
			log.Info("liveness check exits since the context is done")
			if s.keepAliveCancel != nil {
				s.keepAliveCancel()
			}
			return
		}
	}
}

// GoingStop rewrites the session record with Stopping set so watchers can
// drain the node before it exits.
func (s *Session) GoingStop() error {
	if s == nil || s.etcdCli == nil || s.LeaseID == nil {
		return errors.New("the session hasn't been initialized")
	}
	if !s.Registered() {
		return errors.New("the session is not registered")
	}
	key := s.getSessionKey()
	resp, err := s.etcdCli.Get(s.ctx, key, clientv3.WithCountOnly())
	if err != nil {
		log.Error("get session key failed", zap.String("key", key), zap.Error(err))
		return err
	}
	if resp.Count == 0 {
		return fmt.Errorf("session key %s not found", key)
	}

	s.Stopping = true
	sessionJSON, err := json.Marshal(s)
	if err != nil {
		log.Error("marshal stopping session failed", zap.String("key", key), zap.Error(err))
		return err
	}
	_, err = s.etcdCli.Put(s.ctx, key, string(sessionJSON), clientv3.WithLease(*s.LeaseID))
	if err != nil {
		log.Error("update stopping session failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Revoke removes the session key by revoking its lease. The error is
// discarded, the lease expires on its own when etcd is unreachable.
func (s *Session) Revoke(timeout time.Duration) {
	if s == nil || s.etcdCli == nil || s.LeaseID == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.etcdCli.Revoke(ctx, *s.LeaseID)
	s.registered.Store(false)
}

// Stop revokes the session and halts its keep-alive.
func (s *Session) Stop() {
	s.Revoke(time.Second)
	if s.keepAliveCancel != nil {
		s.keepAliveCancel()
	}
	s.safeCloseLiveCh()
}

// String is used in logs only.
func (s *Session) String() string {
	return fmt.Sprintf("Session:<NodeID: %d, ServerName: %s, Version: %s>", s.NodeID, s.ServerName, s.Version.String())
}

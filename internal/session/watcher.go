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

package session

import (
	"path"

	"go.etcd.io/etcd/api/v3/mvccpb"
	v3rpc "go.etcd.io/etcd/api/v3/v3rpc/rpctypes"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"

	"github.com/glacierdb/glacierdb/internal/json"
	"github.com/glacierdb/glacierdb/pkg/log"
)

// SessionEventType is the type of a watched session change.
type SessionEventType int

const (
	// SessionNoneEvent is an unrecognized change.
	SessionNoneEvent SessionEventType = iota
	// SessionAddEvent means a new session registered.
	SessionAddEvent
	// SessionDelEvent means a session record disappeared.
	SessionDelEvent
	// SessionUpdateEvent means a session rewrote its record, today only to
	// mark itself stopping.
	SessionUpdateEvent
)

func (t SessionEventType) String() string {
	switch t {
	case SessionAddEvent:
		return "SessionAddEvent"
	case SessionDelEvent:
		return "SessionDelEvent"
	case SessionUpdateEvent:
		return "SessionUpdateEvent"
	}
	return "SessionNoneEvent"
}

// SessionEvent carries one watched session change.
type SessionEvent struct {
	EventType SessionEventType
	Session   *Session
}

// Rewatch is called with a fresh session snapshot when the watcher has to
// restart from a compacted revision, so the consumer can reconcile its state
// before events resume.
type Rewatch func(sessions map[string]*Session) error

// GetSessions returns all sessions registered under the prefix together with
// the etcd revision the snapshot was read at. The revision is the correct
// starting point for a subsequent WatchServices call.
func (s *Session) GetSessions(prefix string) (map[string]*Session, int64, error) {
	res := make(map[string]*Session)
	key := path.Join(s.metaRoot, DefaultServiceRoot, prefix)
	resp, err := s.etcdCli.Get(s.ctx, key, clientv3.WithPrefix(),
		clientv3.WithSort(clientv3.SortByKey, clientv3.SortAscend))
	if err != nil {
		return nil, 0, err
	}
	for _, kv := range resp.Kvs {
		session := &Session{}
		err = json.Unmarshal(kv.Value, session)
		if err != nil {
			return nil, 0, err
		}
		_, mapKey := path.Split(string(kv.Key))
		log.Debug("get sessions",
			zap.String("prefix", prefix),
			zap.String("key", mapKey),
			zap.String("address", session.Address))
		res[mapKey] = session
	}
	return res, resp.Header.Revision, nil
}

// WatchServices streams add, update and delete events of the sessions under
// the prefix, starting from the given revision. The returned channel closes
// on unrecoverable watch errors; a compacted revision is recovered
// internally through the rewatch callback.
func (s *Session) WatchServices(prefix string, revision int64, rewatch Rewatch) <-chan *SessionEvent {
	w := &sessionWatcher{
		s:       s,
		eventCh: make(chan *SessionEvent, 100),
		prefix:  prefix,
		rewatch: rewatch,
		rch: s.etcdCli.Watch(s.ctx, path.Join(s.metaRoot, DefaultServiceRoot, prefix),
			clientv3.WithPrefix(), clientv3.WithPrevKV(), clientv3.WithRev(revision)),
	}
	w.start()
	return w.eventCh
}

type sessionWatcher struct {
	s       *Session
	rch     clientv3.WatchChan
	eventCh chan *SessionEvent
	prefix  string
	rewatch Rewatch
}

func (w *sessionWatcher) start() {
	go func() {
		for {
			select {
			case <-w.s.ctx.Done():
				return
			case wresp, ok := <-w.rch:
				if !ok {
					log.Warn("session watch channel closed", zap.String("prefix", w.prefix))
					close(w.eventCh)
					return
				}
				if !w.handleWatchResponse(wresp) {
					return
				}
			}
		}
	}()
}

// handleWatchResponse translates one etcd watch response into session events.
// It returns false when the watcher cannot continue.
func (w *sessionWatcher) handleWatchResponse(wresp clientv3.WatchResponse) bool {
	if wresp.Err() != nil {
		err := w.handleWatchErr(wresp.Err())
		if err != nil {
			log.Error("failed to recover the session watcher", zap.String("prefix", w.prefix), zap.Error(err))
			return false
		}
		return true
	}
	for _, ev := range wresp.Events {
		session := &Session{}
		var eventType SessionEventType
		switch ev.Type {
		case mvccpb.PUT:
			if err := json.Unmarshal(ev.Kv.Value, session); err != nil {
				log.Error("watch services: unmarshal session failed",
					zap.String("key", string(ev.Kv.Key)), zap.Error(err))
				continue
			}
			if session.Stopping {
				eventType = SessionUpdateEvent
			} else {
				eventType = SessionAddEvent
			}
		case mvccpb.DELETE:
			if ev.PrevKv == nil {
				log.Warn("watch services: delete event without previous value",
					zap.String("key", string(ev.Kv.Key)))
				continue
			}
			if err := json.Unmarshal(ev.PrevKv.Value, session); err != nil {
				log.Error("watch services: unmarshal deleted session failed",
					zap.String("key", string(ev.PrevKv.Key)), zap.Error(err))
				continue
			}
			eventType = SessionDelEvent
		}
		log.Info("watch services",
			zap.String("event", eventType.String()),
			zap.Int64("nodeID", session.NodeID),
			zap.String("serverName", session.ServerName))
		w.eventCh <- &SessionEvent{
			EventType: eventType,
			Session:   session,
		}
	}
	return true
}

// handleWatchErr rebuilds the watch from a fresh snapshot once the watched
// revision has been compacted away. Any other error closes the channel.
func (w *sessionWatcher) handleWatchErr(err error) error {
	if err != v3rpc.ErrCompacted {
		close(w.eventCh)
		return err
	}
	sessions, revision, err := w.s.GetSessions(w.prefix)
	if err != nil {
		log.Warn("get sessions before rewatch failed", zap.String("prefix", w.prefix), zap.Error(err))
		close(w.eventCh)
		return err
	}
	if w.rewatch != nil {
		if err := w.rewatch(sessions); err != nil {
			log.Warn("rewatch callback failed", zap.String("prefix", w.prefix), zap.Error(err))
			close(w.eventCh)
			return err
		}
	}
	w.rch = w.s.etcdCli.Watch(w.s.ctx, path.Join(w.s.metaRoot, DefaultServiceRoot, w.prefix),
		clientv3.WithPrefix(), clientv3.WithPrevKV(), clientv3.WithRev(revision))
	return nil
}

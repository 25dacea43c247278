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

package config

import (
	"strings"
	"sync"
)

// EventDispatcher routes config change events to the handlers registered
// for the exact key or for a key prefix.
type EventDispatcher struct {
	mut      sync.RWMutex
	registry map[string][]EventHandler
}

func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{
		registry: make(map[string][]EventHandler),
	}
}

func (ed *EventDispatcher) Get(key string) []EventHandler {
	ed.mut.RLock()
	defer ed.mut.RUnlock()
	return ed.registry[formatKey(key)]
}

func (ed *EventDispatcher) Dispatch(event *Event) {
	if event == nil {
		return
	}
	realKey := formatKey(event.Key)

	ed.mut.RLock()
	defer ed.mut.RUnlock()
	var matched []EventHandler
	for key, handlers := range ed.registry {
		if prefix, ok := strings.CutSuffix(key, "*"); ok {
			if strings.HasPrefix(realKey, prefix) {
				matched = append(matched, handlers...)
			}
			continue
		}
		if key == realKey {
			matched = append(matched, handlers...)
		}
	}
	for _, handler := range matched {
		handler.OnEvent(event)
	}
}

// Register lets the handler watch changes of one config key.
func (ed *EventDispatcher) Register(key string, handler EventHandler) {
	ed.mut.Lock()
	defer ed.mut.Unlock()
	realKey := formatKey(key)
	ed.registry[realKey] = append(ed.registry[realKey], handler)
}

// RegisterForKeyPrefix lets the handler watch changes of every config key
// under the prefix.
func (ed *EventDispatcher) RegisterForKeyPrefix(keyPrefix string, handler EventHandler) {
	ed.mut.Lock()
	defer ed.mut.Unlock()
	realKey := formatKey(keyPrefix) + "*"
	ed.registry[realKey] = append(ed.registry[realKey], handler)
}

func (ed *EventDispatcher) Unregister(key string, handler EventHandler) {
	ed.mut.Lock()
	defer ed.mut.Unlock()
	realKey := formatKey(key)
	v, ok := ed.registry[realKey]
	if !ok {
		return
	}
	remaining := make([]EventHandler, 0, len(v))
	for _, h := range v {
		if h.GetIdentifier() == handler.GetIdentifier() {
			continue
		}
		remaining = append(remaining, h)
	}
	ed.registry[realKey] = remaining
}

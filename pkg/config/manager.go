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
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/glacierdb/glacierdb/pkg/log"
	"github.com/glacierdb/glacierdb/pkg/util/typeutil"
)

// TombValue marks a deleted key in the runtime overlays.
const TombValue = "TOMB_VALUE"

// Manager aggregates config sources by priority and serves merged values.
type Manager struct {
	Dispatcher *EventDispatcher

	sources *typeutil.ConcurrentMap[string, Source]
	// keySourceMap maps a formatted key to the name of the source serving it
	keySourceMap *typeutil.ConcurrentMap[string, string]
	// overlays stores the highest priority configs modified at runtime
	overlays *typeutil.ConcurrentMap[string, string]
	// forbiddenKeys ignores the update events of the frozen configs
	forbiddenKeys *typeutil.ConcurrentSet[string]

	cacheMutex  sync.RWMutex
	configCache map[string]any
}

func NewManager() *Manager {
	return &Manager{
		Dispatcher:    NewEventDispatcher(),
		sources:       typeutil.NewConcurrentMap[string, Source](),
		keySourceMap:  typeutil.NewConcurrentMap[string, string](),
		overlays:      typeutil.NewConcurrentMap[string, string](),
		forbiddenKeys: typeutil.NewConcurrentSet[string](),
		configCache:   make(map[string]any),
	}
}

// ForbidUpdate freezes the key, later source events for it are discarded.
func (m *Manager) ForbidUpdate(key string) {
	m.forbiddenKeys.Insert(formatKey(key))
}

func (m *Manager) GetCachedValue(key string) (any, bool) {
	m.cacheMutex.RLock()
	defer m.cacheMutex.RUnlock()
	value, ok := m.configCache[formatKey(key)]
	return value, ok
}

// CASCachedValue stores the parsed value only if the raw config still equals
// origin, so a concurrent update never leaves a stale parse in the cache.
func (m *Manager) CASCachedValue(key string, origin string, value any) bool {
	m.cacheMutex.Lock()
	defer m.cacheMutex.Unlock()
	current, err := m.GetConfig(key)
	if err != nil {
		return false
	}
	if current != origin {
		return false
	}
	m.configCache[formatKey(key)] = value
	return true
}

func (m *Manager) EvictCachedValue(key string) {
	m.cacheMutex.Lock()
	defer m.cacheMutex.Unlock()
	delete(m.configCache, formatKey(key))
}

func (m *Manager) EvictCacheValueByFormat(keys ...string) {
	m.cacheMutex.Lock()
	defer m.cacheMutex.Unlock()
	set := typeutil.NewSet(keys...)
	for key := range m.configCache {
		if set.Contain(key) {
			delete(m.configCache, key)
		}
	}
}

// GetConfig returns the value of the key from the highest priority source.
// Note: prefer ParamItem over calling this directly.
func (m *Manager) GetConfig(key string) (string, error) {
	realKey := formatKey(key)
	v, ok := m.overlays.Get(realKey)
	if ok {
		if v == TombValue {
			return "", errors.Wrap(ErrKeyNotFound, key)
		}
		return v, nil
	}
	sourceName, ok := m.keySourceMap.Get(realKey)
	if !ok {
		return "", errors.Wrap(ErrKeyNotFound, key)
	}
	return m.getConfigValueBySource(realKey, sourceName)
}

// GetConfigs returns all the merged key values.
func (m *Manager) GetConfigs() map[string]string {
	config := make(map[string]string)

	m.keySourceMap.Range(func(key, value string) bool {
		sValue, err := m.GetConfig(key)
		if err != nil {
			return true
		}
		config[key] = sValue
		return true
	})

	m.overlays.Range(func(key, value string) bool {
		if value == TombValue {
			delete(config, key)
			return true
		}
		config[key] = value
		return true
	})

	return config
}

// GetBy returns the configs whose keys pass all the filters, with the
// filters applied to the returned keys.
func (m *Manager) GetBy(filters ...Filter) map[string]string {
	matchedConfig := make(map[string]string)

	for key, value := range m.GetConfigs() {
		newKey, ok := filterate(key, filters...)
		if ok {
			matchedConfig[newKey] = value
		}
	}
	return matchedConfig
}

// FileConfigs returns the configs of the file source only, empty when no
// file source was added.
func (m *Manager) FileConfigs() map[string]string {
	config := make(map[string]string)
	m.sources.Range(func(key string, value Source) bool {
		if s, ok := value.(*FileSource); ok {
			config, _ = s.GetConfigurations()
			return false
		}
		return true
	})
	return config
}

func (m *Manager) Close() {
	m.sources.Range(func(key string, value Source) bool {
		value.Close()
		return true
	})
}

func (m *Manager) AddSource(source Source) error {
	sourceName := source.GetSourceName()
	_, ok := m.sources.Get(sourceName)
	if ok {
		err := errors.New("duplicate source supplied")
		log.Warn("can not add manager source", zap.String("source", sourceName), zap.Error(err))
		return err
	}

	source.SetManager(m)
	m.sources.Insert(sourceName, source)

	err := m.pullSourceConfigs(sourceName)
	if err != nil {
		err = fmt.Errorf("failed to load %v, err: %v", sourceName, err)
		log.Warn("can not load configs from source", zap.String("source", sourceName), zap.Error(err))
		return err
	}

	source.SetEventHandler(m)
	return nil
}

// UpdateSourceOptions updates the options of all the sources.
func (m *Manager) UpdateSourceOptions(opts ...Option) {
	var options Options
	for _, opt := range opts {
		opt(&options)
	}
	m.sources.Range(func(key string, value Source) bool {
		value.UpdateOptions(options)
		return true
	})
}

// Do not use it directly, only used when add source and unittests.
func (m *Manager) pullSourceConfigs(source string) error {
	configSource, ok := m.sources.Get(source)
	if !ok {
		return errors.New("invalid source or source not added")
	}

	configs, err := configSource.GetConfigurations()
	if err != nil {
		log.Info("get configurations by source failed", zap.String("source", source), zap.Error(err))
		return err
	}

	sourcePriority := configSource.GetPriority()
	for key := range configs {
		sourceName, ok := m.keySourceMap.Get(key)
		if !ok { // if key do not exist then add source
			m.keySourceMap.Insert(key, source)
			continue
		}

		currentSource, ok := m.sources.Get(sourceName)
		if !ok {
			m.keySourceMap.Insert(key, source)
			continue
		}

		currentSrcPriority := currentSource.GetPriority()
		if currentSrcPriority > sourcePriority { // lesser value has high priority
			m.keySourceMap.Insert(key, source)
		}
	}

	return nil
}

func (m *Manager) getConfigValueBySource(configKey, sourceName string) (string, error) {
	source, ok := m.sources.Get(sourceName)
	if !ok {
		return "", errors.Wrap(ErrKeyNotFound, configKey)
	}
	return source.GetConfigurationByKey(configKey)
}

func (m *Manager) updateEvent(e *Event) error {
	// refresh the key source map one event at a time
	if e.HasUpdated {
		return nil
	}
	switch e.EventType {
	case CreateType, UpdateType:
		sourceName, ok := m.keySourceMap.Get(e.Key)
		if !ok {
			m.keySourceMap.Insert(e.Key, e.EventSource)
			e.EventType = CreateType
		} else if sourceName == e.EventSource {
			e.EventType = UpdateType
		} else {
			es, ok := m.sources.Get(e.EventSource)
			if !ok {
				return errors.New("unknown source " + e.EventSource)
			}
			css, ok := m.sources.Get(sourceName)
			if !ok {
				return errors.New("unknown source " + sourceName)
			}
			if es.GetPriority() < css.GetPriority() {
				m.keySourceMap.Insert(e.Key, e.EventSource)
				e.EventType = UpdateType
			}
		}
	case DeleteType:
		sourceName, ok := m.keySourceMap.Get(e.Key)
		if ok && sourceName == e.EventSource {
			m.keySourceMap.Remove(e.Key)
		}
	}
	e.HasUpdated = true
	return nil
}

// OnEvent is triggered by the sources on configuration change.
func (m *Manager) OnEvent(event *Event) {
	if m.forbiddenKeys.Contain(formatKey(event.Key)) {
		log.RatedWarn(10.0, "ignore update of forbidden config", zap.String("key", event.Key))
		return
	}
	err := m.updateEvent(event)
	if err != nil {
		log.Warn("failed in updating event with error", zap.Error(err), zap.Any("event", event))
		return
	}
	m.EvictCachedValue(event.Key)
	m.Dispatcher.Dispatch(event)
}

func (m *Manager) GetIdentifier() string {
	return "Manager"
}

// SetConfig sets a runtime overlay that wins over every source.
func (m *Manager) SetConfig(key, value string) {
	m.overlays.Insert(formatKey(key), value)
	m.EvictCachedValue(key)
}

// DeleteConfig hides the key behind a tombstone overlay.
func (m *Manager) DeleteConfig(key string) {
	m.overlays.Insert(formatKey(key), TombValue)
	m.EvictCachedValue(key)
}

// ResetConfig removes the runtime overlay of the key.
func (m *Manager) ResetConfig(key string) {
	m.overlays.Remove(formatKey(key))
	m.EvictCachedValue(key)
}

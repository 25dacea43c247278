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

package typeutil

import (
	"sync"

	"go.uber.org/atomic"
)

// ConcurrentMap is a goroutine-safe map with typed keys and values.
// All operations that combine a lookup with a mutation (GetOrInsert,
// GetAndRemove) are atomic with respect to each other.
type ConcurrentMap[K comparable, V any] struct {
	inner sync.Map
	// Self-managed size. sync.Map does not expose one.
	size atomic.Uint64
}

func NewConcurrentMap[K comparable, V any]() *ConcurrentMap[K, V] {
	return &ConcurrentMap[K, V]{}
}

// Insert stores the key-value pair, overwriting any previous value.
func (m *ConcurrentMap[K, V]) Insert(key K, value V) {
	_, loaded := m.inner.LoadOrStore(key, value)
	if loaded {
		m.inner.Store(key, value)
	} else {
		m.size.Inc()
	}
}

func (m *ConcurrentMap[K, V]) Get(key K) (V, bool) {
	var zeroValue V
	value, ok := m.inner.Load(key)
	if !ok {
		return zeroValue, ok
	}
	return value.(V), true
}

// GetOrInsert returns the existing value for the key if present.
// Otherwise, it stores and returns the given value.
// The loaded result is true if the value was loaded, false if stored.
func (m *ConcurrentMap[K, V]) GetOrInsert(key K, value V) (V, bool) {
	stored, loaded := m.inner.LoadOrStore(key, value)
	if !loaded {
		m.size.Inc()
	}
	return stored.(V), loaded
}

// GetAndRemove atomically loads and deletes the value for a key,
// reporting whether the key was present.
func (m *ConcurrentMap[K, V]) GetAndRemove(key K) (V, bool) {
	var zeroValue V
	value, loaded := m.inner.LoadAndDelete(key)
	if !loaded {
		return zeroValue, false
	}
	m.size.Dec()
	return value.(V), true
}

func (m *ConcurrentMap[K, V]) Remove(key K) {
	m.GetAndRemove(key)
}

func (m *ConcurrentMap[K, V]) Contain(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// Range iterates over the map, stopping when fn returns false.
// It holds no lock while fn runs, so fn may mutate the map.
func (m *ConcurrentMap[K, V]) Range(fn func(key K, value V) bool) {
	m.inner.Range(func(key, value any) bool {
		return fn(key.(K), value.(V))
	})
}

func (m *ConcurrentMap[K, V]) Keys() []K {
	keys := make([]K, 0, m.Len())
	m.Range(func(key K, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

func (m *ConcurrentMap[K, V]) Values() []V {
	values := make([]V, 0, m.Len())
	m.Range(func(_ K, value V) bool {
		values = append(values, value)
		return true
	})
	return values
}

func (m *ConcurrentMap[K, V]) Len() int {
	return int(m.size.Load())
}

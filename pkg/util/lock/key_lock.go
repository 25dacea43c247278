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

package lock

import (
	"sync"

	"go.uber.org/zap"

	"github.com/glacierdb/glacierdb/pkg/log"
)

type refLock struct {
	mutex      sync.RWMutex
	refCounter int
}

func (m *refLock) ref() {
	m.refCounter++
}

func (m *refLock) unref() {
	m.refCounter--
}

func newRefLock() *refLock {
	return &refLock{}
}

// KeyLock provides a lock per key, the lock entry is released once no
// goroutine holds or waits for it.
type KeyLock[K comparable] struct {
	keyLocksMutex sync.Mutex
	refLocks      map[K]*refLock
}

func NewKeyLock[K comparable]() *KeyLock[K] {
	return &KeyLock[K]{
		refLocks: make(map[K]*refLock),
	}
}

func (k *KeyLock[K]) Lock(key K) {
	k.keyLocksMutex.Lock()
	if keyLock, ok := k.refLocks[key]; ok {
		keyLock.ref()

		k.keyLocksMutex.Unlock()
		keyLock.mutex.Lock()
	} else {
		newKLock := newRefLock()
		newKLock.mutex.Lock()
		k.refLocks[key] = newKLock
		newKLock.ref()

		k.keyLocksMutex.Unlock()
	}
}

func (k *KeyLock[K]) Unlock(lockedKey K) {
	k.keyLocksMutex.Lock()
	defer k.keyLocksMutex.Unlock()
	keyLock, ok := k.refLocks[lockedKey]
	if !ok {
		log.Warn("unlocking non-existing key", zap.Any("key", lockedKey))
		return
	}
	keyLock.unref()
	if keyLock.refCounter == 0 {
		delete(k.refLocks, lockedKey)
	}
	keyLock.mutex.Unlock()
}

func (k *KeyLock[K]) RLock(key K) {
	k.keyLocksMutex.Lock()
	if keyLock, ok := k.refLocks[key]; ok {
		keyLock.ref()

		k.keyLocksMutex.Unlock()
		keyLock.mutex.RLock()
	} else {
		newKLock := newRefLock()
		newKLock.mutex.RLock()
		k.refLocks[key] = newKLock
		newKLock.ref()

		k.keyLocksMutex.Unlock()
	}
}

func (k *KeyLock[K]) RUnlock(lockedKey K) {
	k.keyLocksMutex.Lock()
	defer k.keyLocksMutex.Unlock()
	keyLock, ok := k.refLocks[lockedKey]
	if !ok {
		log.Warn("runlocking non-existing key", zap.Any("key", lockedKey))
		return
	}
	keyLock.unref()
	if keyLock.refCounter == 0 {
		delete(k.refLocks, lockedKey)
	}
	keyLock.mutex.RUnlock()
}

func (k *KeyLock[K]) size() int {
	k.keyLocksMutex.Lock()
	defer k.keyLocksMutex.Unlock()
	return len(k.refLocks)
}

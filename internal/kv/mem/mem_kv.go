// Copyright (C) 2024-2026 GlacierDB, Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License
// is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express
// or implied. See the License for the specific language governing permissions and limitations under the License.

package memkv

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/btree"

	"github.com/glacierdb/glacierdb/internal/kv"
	"github.com/glacierdb/glacierdb/pkg/util/merr"
)

var _ kv.TxnKV = (*MemoryKV)(nil)

// MemoryKV implements TxnKV on an in-process btree. It backs unit tests and
// the embedded deployment where no external meta store is available.
type MemoryKV struct {
	sync.RWMutex
	tree *btree.BTree
}

// NewMemoryKV returns an in-memory kv.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		tree: btree.New(2),
	}
}

type memoryKVItem struct {
	key, value string
}

var _ btree.Item = (*memoryKVItem)(nil)

// Less returns true if the item is less than the given one.
func (s memoryKVItem) Less(than btree.Item) bool {
	return s.key < than.(memoryKVItem).key
}

// Load loads an object with @key.
func (kv *MemoryKV) Load(key string) (string, error) {
	kv.RLock()
	defer kv.RUnlock()
	item := kv.tree.Get(memoryKVItem{key: key})
	if item == nil {
		return "", merr.WrapErrIoKeyNotFound(key)
	}
	return item.(memoryKVItem).value, nil
}

// LoadWithDefault loads an object with @key. If the object does not exist,
// @defaultValue will be returned.
func (kv *MemoryKV) LoadWithDefault(key, defaultValue string) string {
	kv.RLock()
	defer kv.RUnlock()
	item := kv.tree.Get(memoryKVItem{key: key})
	if item == nil {
		return defaultValue
	}
	return item.(memoryKVItem).value
}

// LoadRange loads objects with range @startKey to @endKey with @limit number of objects.
func (kv *MemoryKV) LoadRange(key, endKey string, limit int) ([]string, []string, error) {
	kv.RLock()
	defer kv.RUnlock()
	keys := make([]string, 0, limit)
	values := make([]string, 0, limit)
	kv.tree.AscendRange(memoryKVItem{key: key}, memoryKVItem{key: endKey}, func(item btree.Item) bool {
		keys = append(keys, item.(memoryKVItem).key)
		values = append(values, item.(memoryKVItem).value)
		if limit > 0 {
			return len(keys) < limit
		}
		return true
	})
	return keys, values, nil
}

// LoadPartial loads the subrange [start, end) of the value of @key.
func (kv *MemoryKV) LoadPartial(key string, start, end int64) ([]byte, error) {
	value, err := kv.Load(key)
	if err != nil {
		return nil, err
	}
	switch {
	case 0 <= start && start < end && end <= int64(len(value)):
		return []byte(value[start:end]), nil
	default:
		return nil, fmt.Errorf("invalid range specified: start=%d end=%d", start, end)
	}
}

// Save object with @key to btree. Object value is @value.
func (kv *MemoryKV) Save(key, value string) error {
	kv.Lock()
	defer kv.Unlock()
	kv.tree.ReplaceOrInsert(memoryKVItem{key, value})
	return nil
}

// Remove deletes an object with @key.
func (kv *MemoryKV) Remove(key string) error {
	kv.Lock()
	defer kv.Unlock()
	kv.tree.Delete(memoryKVItem{key: key})
	return nil
}

// MultiLoad loads objects with multi @keys. Missing keys yield an empty
// placeholder value and are reported through the returned error.
func (kv *MemoryKV) MultiLoad(keys []string) ([]string, error) {
	kv.RLock()
	defer kv.RUnlock()
	result := make([]string, 0, len(keys))
	invalid := make([]string, 0, len(keys))
	for _, key := range keys {
		item := kv.tree.Get(memoryKVItem{key: key})
		if item == nil {
			invalid = append(invalid, key)
			result = append(result, "")
			continue
		}
		result = append(result, item.(memoryKVItem).value)
	}
	var err error
	if len(invalid) != 0 {
		err = fmt.Errorf("there are invalid keys: %s", invalid)
	}
	return result, err
}

// MultiSave saves given key-value pairs in MemoryKV atomically.
func (kv *MemoryKV) MultiSave(kvs map[string]string) error {
	kv.Lock()
	defer kv.Unlock()
	for key, value := range kvs {
		kv.tree.ReplaceOrInsert(memoryKVItem{key, value})
	}
	return nil
}

// MultiRemove removes given @keys in MemoryKV atomically.
func (kv *MemoryKV) MultiRemove(keys []string) error {
	kv.Lock()
	defer kv.Unlock()
	for _, key := range keys {
		kv.tree.Delete(memoryKVItem{key: key})
	}
	return nil
}

// MultiSaveAndRemove saves and removes given key-value pairs in MemoryKV atomically.
func (kv *MemoryKV) MultiSaveAndRemove(saves map[string]string, removals []string) error {
	kv.Lock()
	defer kv.Unlock()
	for key, value := range saves {
		kv.tree.ReplaceOrInsert(memoryKVItem{key, value})
	}
	for _, key := range removals {
		kv.tree.Delete(memoryKVItem{key: key})
	}
	return nil
}

// LoadWithPrefix returns all keys & values with the given prefix.
func (kv *MemoryKV) LoadWithPrefix(key string) ([]string, []string, error) {
	kv.RLock()
	defer kv.RUnlock()

	var keys []string
	var values []string

	kv.tree.AscendGreaterOrEqual(memoryKVItem{key: key}, func(item btree.Item) bool {
		if !strings.HasPrefix(item.(memoryKVItem).key, key) {
			return false
		}
		keys = append(keys, item.(memoryKVItem).key)
		values = append(values, item.(memoryKVItem).value)
		return true
	})
	return keys, values, nil
}

// RemoveWithPrefix remove key of given prefix in MemoryKV atomically.
func (kv *MemoryKV) RemoveWithPrefix(key string) error {
	kv.Lock()
	defer kv.Unlock()

	var matched []btree.Item
	kv.tree.AscendGreaterOrEqual(memoryKVItem{key: key}, func(item btree.Item) bool {
		if !strings.HasPrefix(item.(memoryKVItem).key, key) {
			return false
		}
		matched = append(matched, item)
		return true
	})
	for _, item := range matched {
		kv.tree.Delete(item)
	}
	return nil
}

// MultiRemoveWithPrefix removes the keys under every given prefix atomically.
func (kv *MemoryKV) MultiRemoveWithPrefix(prefixes []string) error {
	kv.Lock()
	defer kv.Unlock()
	kv.removeWithPrefixes(prefixes)
	return nil
}

// MultiSaveAndRemoveWithPrefix saves the key-value pairs and removes the
// given prefixes atomically.
func (kv *MemoryKV) MultiSaveAndRemoveWithPrefix(saves map[string]string, removals []string) error {
	kv.Lock()
	defer kv.Unlock()
	for key, value := range saves {
		kv.tree.ReplaceOrInsert(memoryKVItem{key, value})
	}
	kv.removeWithPrefixes(removals)
	return nil
}

// caller holds the write lock
func (kv *MemoryKV) removeWithPrefixes(prefixes []string) {
	var matched []btree.Item
	for _, prefix := range prefixes {
		kv.tree.AscendGreaterOrEqual(memoryKVItem{key: prefix}, func(item btree.Item) bool {
			if !strings.HasPrefix(item.(memoryKVItem).key, prefix) {
				return false
			}
			matched = append(matched, item)
			return true
		})
	}
	for _, item := range matched {
		kv.tree.Delete(item)
	}
}

// Has returns whether the given @key exists.
func (kv *MemoryKV) Has(key string) (bool, error) {
	kv.RLock()
	defer kv.RUnlock()
	return kv.tree.Has(memoryKVItem{key: key}), nil
}

// HasPrefix returns whether any key with the given prefix exists.
func (kv *MemoryKV) HasPrefix(prefix string) (bool, error) {
	kv.RLock()
	defer kv.RUnlock()

	var hasPrefix bool
	kv.tree.AscendGreaterOrEqual(memoryKVItem{key: prefix}, func(item btree.Item) bool {
		hasPrefix = strings.HasPrefix(item.(memoryKVItem).key, prefix)
		return false
	})
	return hasPrefix, nil
}

// Close does nothing, the tree is garbage collected with the kv.
func (kv *MemoryKV) Close() {
}

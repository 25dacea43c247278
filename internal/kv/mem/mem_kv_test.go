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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryKV_SaveAndLoad(t *testing.T) {
	memKV := NewMemoryKV()
	defer memKV.Close()

	err := memKV.Save("key_1", "value_1")
	assert.NoError(t, err)

	value, err := memKV.Load("key_1")
	assert.NoError(t, err)
	assert.Equal(t, "value_1", value)

	value, err = memKV.Load("key_not_exist")
	assert.Error(t, err)
	assert.Zero(t, value)

	value = memKV.LoadWithDefault("key_1", "default")
	assert.Equal(t, "value_1", value)

	value = memKV.LoadWithDefault("key_not_exist", "default")
	assert.Equal(t, "default", value)

	err = memKV.Remove("key_1")
	assert.NoError(t, err)

	_, err = memKV.Load("key_1")
	assert.Error(t, err)

	err = memKV.Remove("key_not_exist")
	assert.NoError(t, err)
}

func TestMemoryKV_HasAndHasPrefix(t *testing.T) {
	memKV := NewMemoryKV()
	defer memKV.Close()

	has, err := memKV.Has("a/1")
	assert.NoError(t, err)
	assert.False(t, has)

	err = memKV.Save("a/1", "v1")
	require.NoError(t, err)

	has, err = memKV.Has("a/1")
	assert.NoError(t, err)
	assert.True(t, has)

	has, err = memKV.HasPrefix("a")
	assert.NoError(t, err)
	assert.True(t, has)

	has, err = memKV.HasPrefix("b")
	assert.NoError(t, err)
	assert.False(t, has)

	// "a" sorts before "a/1" but does not exist as a key
	has, err = memKV.Has("a")
	assert.NoError(t, err)
	assert.False(t, has)
}

func TestMemoryKV_LoadRange(t *testing.T) {
	memKV := NewMemoryKV()
	defer memKV.Close()

	kvs := map[string]string{
		"a/1": "v1",
		"a/2": "v2",
		"b/1": "v3",
		"c/1": "v4",
	}
	err := memKV.MultiSave(kvs)
	require.NoError(t, err)

	keys, values, err := memKV.LoadRange("a", "c", 0)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a/1", "a/2", "b/1"}, keys)
	assert.Equal(t, []string{"v1", "v2", "v3"}, values)

	keys, values, err = memKV.LoadRange("a", "c", 2)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a/1", "a/2"}, keys)
	assert.Equal(t, []string{"v1", "v2"}, values)

	keys, values, err = memKV.LoadRange("d", "e", 0)
	assert.NoError(t, err)
	assert.Empty(t, keys)
	assert.Empty(t, values)
}

func TestMemoryKV_MultiSaveAndMultiLoad(t *testing.T) {
	memKV := NewMemoryKV()
	defer memKV.Close()

	kvs := map[string]string{
		"key_1":   "value_1",
		"key_2":   "value_2",
		"key_3/a": "value_3a",
	}
	err := memKV.MultiSave(kvs)
	assert.NoError(t, err)

	values, err := memKV.MultiLoad([]string{"key_1", "key_2", "key_3/a"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"value_1", "value_2", "value_3a"}, values)

	values, err = memKV.MultiLoad([]string{"key_1", "not_exist"})
	assert.Error(t, err)
	assert.Equal(t, []string{"value_1", ""}, values)

	err = memKV.MultiRemove([]string{"key_1", "key_2"})
	assert.NoError(t, err)

	_, err = memKV.Load("key_1")
	assert.Error(t, err)

	err = memKV.MultiSaveAndRemove(map[string]string{"key_4": "value_4"}, []string{"key_3/a"})
	assert.NoError(t, err)

	_, err = memKV.Load("key_3/a")
	assert.Error(t, err)

	value, err := memKV.Load("key_4")
	assert.NoError(t, err)
	assert.Equal(t, "value_4", value)
}

func TestMemoryKV_Prefix(t *testing.T) {
	memKV := NewMemoryKV()
	defer memKV.Close()

	kvs := map[string]string{
		"x/abc/1": "1",
		"x/abc/2": "2",
		"x/def/1": "10",
		"y/a":     "vvv",
	}
	err := memKV.MultiSave(kvs)
	require.NoError(t, err)

	keys, values, err := memKV.LoadWithPrefix("x/abc")
	assert.NoError(t, err)
	assert.Equal(t, []string{"x/abc/1", "x/abc/2"}, keys)
	assert.Equal(t, []string{"1", "2"}, values)

	keys, values, err = memKV.LoadWithPrefix("not_exist")
	assert.NoError(t, err)
	assert.Empty(t, keys)
	assert.Empty(t, values)

	err = memKV.RemoveWithPrefix("x/abc")
	assert.NoError(t, err)

	keys, _, err = memKV.LoadWithPrefix("x")
	assert.NoError(t, err)
	assert.Equal(t, []string{"x/def/1"}, keys)

	err = memKV.MultiRemoveWithPrefix([]string{"x", "y"})
	assert.NoError(t, err)

	keys, _, err = memKV.LoadWithPrefix("")
	assert.NoError(t, err)
	assert.Empty(t, keys)

	err = memKV.MultiSaveAndRemoveWithPrefix(map[string]string{"p/a": "vvv"}, []string{"q"})
	assert.NoError(t, err)

	value, err := memKV.Load("p/a")
	assert.NoError(t, err)
	assert.Equal(t, "vvv", value)

	err = memKV.MultiSaveAndRemoveWithPrefix(map[string]string{}, []string{"p"})
	assert.NoError(t, err)

	_, err = memKV.Load("p/a")
	assert.Error(t, err)
}

func TestMemoryKV_LoadPartial(t *testing.T) {
	memKV := NewMemoryKV()

	key := "TestMemoryKV_LoadPartial_key"
	value := "TestMemoryKV_LoadPartial_value"

	err := memKV.Save(key, value)
	assert.NoError(t, err)

	var start, end int64
	var partial []byte

	// case 0 <= start && start = end && end <= int64(len(value))

	start, end = 1, 2
	partial, err = memKV.LoadPartial(key, start, end)
	assert.NoError(t, err)
	assert.ElementsMatch(t, partial, []byte(value[start:end]))

	start, end = int64(len(value)-2), int64(len(value)-1)
	partial, err = memKV.LoadPartial(key, start, end)
	assert.NoError(t, err)
	assert.ElementsMatch(t, partial, []byte(value[start:end]))

	// error case
	start, end = 5, 3
	_, err = memKV.LoadPartial(key, start, end)
	assert.Error(t, err)

	start, end = 1, 1
	_, err = memKV.LoadPartial(key, start, end)
	assert.Error(t, err)

	err = memKV.Remove(key)
	assert.NoError(t, err)
	start, end = 1, 2
	_, err = memKV.LoadPartial(key, start, end)
	assert.Error(t, err)
}

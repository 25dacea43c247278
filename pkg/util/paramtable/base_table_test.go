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

package paramtable

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseTable(t *testing.T) {
	bt := NewBaseTable(SkipRemote(true), SkipEnv(true))

	_, err := bt.Load("not.exist")
	assert.Error(t, err)
	assert.Equal(t, "fallback", bt.GetWithDefault("not.exist", "fallback"))

	err = bt.Save("a.b", "1")
	assert.NoError(t, err)
	v, err := bt.Load("a.b")
	assert.NoError(t, err)
	assert.Equal(t, "1", v)

	err = bt.Remove("a.b")
	assert.NoError(t, err)
	_, err = bt.Load("a.b")
	assert.Error(t, err)

	err = bt.Save("a.b", "2")
	assert.NoError(t, err)
	err = bt.Reset("a.b")
	assert.NoError(t, err)
	_, err = bt.Load("a.b")
	assert.Error(t, err)
}

func TestBaseTableFromYamlOnly(t *testing.T) {
	dir := t.TempDir()
	file := path.Join(dir, "user.yaml")
	err := os.WriteFile(file, []byte("scheduler:\n  interval: 5\n"), 0o600)
	assert.NoError(t, err)

	bt := NewBaseTableFromYamlOnly(file)
	v, err := bt.Load("scheduler.interval")
	assert.NoError(t, err)
	assert.Equal(t, "5", v)
	assert.NotZero(t, len(bt.FileConfigs()))
}

func TestNilBaseTable(t *testing.T) {
	bt := &BaseTable{}
	assert.Equal(t, "byDefault", bt.GetWithDefault("any.key", "byDefault"))
	assert.Equal(t, "", bt.Get("any.key"))
}

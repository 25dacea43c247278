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
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/glacierdb/glacierdb/pkg/config"
)

func TestParamItem(t *testing.T) {
	mgr, _ := config.Init()

	t.Run("default value", func(t *testing.T) {
		item := ParamItem{
			Key:          "lakecoord.compaction.maxParallelJobs",
			DefaultValue: "16",
		}
		item.Init(mgr)
		assert.Equal(t, 16, item.GetAsInt())

		mgr.SetConfig(item.Key, "4")
		defer mgr.ResetConfig(item.Key)
		assert.Equal(t, 4, item.GetAsInt())
	})

	t.Run("fallback keys", func(t *testing.T) {
		item := ParamItem{
			Key:          "warehouse.idleTimeout",
			FallbackKeys: []string{"warehouse.timeout"},
			DefaultValue: "60",
		}
		item.Init(mgr)
		assert.Equal(t, "60", item.GetValue())

		mgr.SetConfig("warehouse.timeout", "120")
		defer mgr.ResetConfig("warehouse.timeout")
		assert.Equal(t, "120", item.GetValue())

		mgr.SetConfig(item.Key, "30")
		defer mgr.ResetConfig(item.Key)
		assert.Equal(t, "30", item.GetValue())
	})

	t.Run("formatter", func(t *testing.T) {
		item := ParamItem{
			Key:          "lakecoord.compaction.scheduleInterval",
			DefaultValue: "3",
			Formatter: func(v string) string {
				return v + "s"
			},
		}
		item.Init(mgr)
		assert.Equal(t, "3s", item.GetValue())
		assert.Equal(t, 3*time.Second, item.GetAsDurationByParse())
	})

	t.Run("sizes", func(t *testing.T) {
		item := ParamItem{
			Key:          "computenode.cache.diskCapacity",
			DefaultValue: "256m",
		}
		item.Init(mgr)
		assert.Equal(t, int64(256)<<20, item.GetAsSize())

		mgr.SetConfig(item.Key, "2gb")
		defer mgr.ResetConfig(item.Key)
		assert.Equal(t, int64(2)<<30, item.GetAsSize())

		mgr.SetConfig(item.Key, "1024")
		assert.Equal(t, int64(1024), item.GetAsSize())
	})

	t.Run("strings", func(t *testing.T) {
		item := ParamItem{
			Key:          "etcd.endpoints",
			DefaultValue: "localhost:2379,localhost:12379",
		}
		item.Init(mgr)
		assert.Equal(t, []string{"localhost:2379", "localhost:12379"}, item.GetAsStrings())
	})

	t.Run("json map", func(t *testing.T) {
		item := ParamItem{
			Key:          "common.locationLabels",
			DefaultValue: `{"region": "us-west", "zone": "a"}`,
		}
		item.Init(mgr)
		m := item.GetAsJSONMap()
		assert.Equal(t, "us-west", m["region"])
		assert.Equal(t, "a", m["zone"])
	})

	t.Run("panic if empty", func(t *testing.T) {
		item := ParamItem{
			Key:          "metastore.type",
			PanicIfEmpty: true,
		}
		item.Init(mgr)
		assert.Panics(t, func() { item.GetValue() })
	})

	t.Run("temp value", func(t *testing.T) {
		item := ParamItem{
			Key:          "lakecoord.compaction.cooldown",
			DefaultValue: "300",
		}
		item.Init(mgr)
		assert.Equal(t, "300", item.GetValue())

		item.SwapTempValue("0")
		assert.Equal(t, "0", item.GetValue())
		assert.Equal(t, 0*time.Second, item.GetAsDuration(time.Second))

		item.SwapTempValue("")
		assert.Equal(t, "300", item.GetValue())
	})
}

func TestCompositeParamItem(t *testing.T) {
	mgr, _ := config.Init()

	root := ParamItem{Key: "etcd.rootPath", DefaultValue: "glacierdb"}
	root.Init(mgr)
	sub := ParamItem{Key: "etcd.metaSubPath", DefaultValue: "meta"}
	sub.Init(mgr)

	composed := CompositeParamItem{
		Items: []*ParamItem{&root, &sub},
		Format: func(kvs map[string]string) string {
			return path.Join(kvs[root.Key], kvs[sub.Key])
		},
	}
	assert.Equal(t, "glacierdb/meta", composed.GetValue())

	mgr.SetConfig(root.Key, "cluster66")
	assert.Equal(t, "cluster66/meta", composed.GetValue())
}

func TestParamGroup(t *testing.T) {
	mgr, _ := config.Init()
	mgr.SetConfig("floe.ioThreads", "8")
	mgr.SetConfig("floe.enableVerify", "false")

	group := ParamGroup{KeyPrefix: "floe."}
	group.Init(mgr)

	values := group.GetValue()
	assert.Equal(t, 2, len(values))
	assert.Equal(t, "8", values["ioThreads"])
	assert.Equal(t, "false", values["enableVerify"])

	group.GetFunc = func() map[string]string {
		return map[string]string{"ioThreads": "16"}
	}
	assert.Equal(t, "16", group.GetValue()["ioThreads"])
}

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
	"strconv"
	"sync"

	"github.com/glacierdb/glacierdb/pkg/config"
)

const (
	DefaultGracefulStopTimeout = 30 // s

	DefaultSessionTTL        = 20 // s
	DefaultSessionRetryTimes = 30

	// DefaultCompactionTxnTimeout is the transaction timeout for background
	// compaction in seconds. It is never derived from the ingest load timeout.
	DefaultCompactionTxnTimeout = 86400

	// DefaultMaxLoadTimeout is the upper bound of an ingest transaction in seconds.
	DefaultMaxLoadTimeout = 64800
)

// ComponentParam is used to quickly and easily access all components' configurations.
type ComponentParam struct {
	ServiceParam
	once sync.Once

	CommonCfg    commonConfig
	LakeCoordCfg lakeCoordConfig
	IngestCfg    ingestConfig
	HTTPCfg      httpConfig
	LogCfg       logConfig
	FloeCfg      floeConfig
}

// Init initialize once
func (p *ComponentParam) Init(bt *BaseTable) {
	p.once.Do(func() {
		p.init(bt)
	})
}

// init initialize the global param table
func (p *ComponentParam) init(bt *BaseTable) {
	p.ServiceParam.init(bt)

	p.CommonCfg.init(bt)
	p.LakeCoordCfg.init(bt)
	p.IngestCfg.init(bt)
	p.HTTPCfg.init(bt)
	p.LogCfg.init(bt)
	p.FloeCfg.init(bt)
}

func (p *ComponentParam) GetComponentConfigurations(componentName string, sub string) map[string]string {
	allownPrefixs := append(globalConfigPrefixs(), componentName+".")
	return p.mgr.GetBy(config.WithSubstr(sub), config.WithOneOfPrefixs(allownPrefixs...))
}

func (p *ComponentParam) GetAll() map[string]string {
	return p.mgr.GetConfigs()
}

func (p *ComponentParam) Watch(key string, watcher config.EventHandler) {
	p.mgr.Dispatcher.Register(key, watcher)
}

func (p *ComponentParam) WatchKeyPrefix(keyPrefix string, watcher config.EventHandler) {
	p.mgr.Dispatcher.RegisterForKeyPrefix(keyPrefix, watcher)
}

func (p *ComponentParam) Unwatch(key string, watcher config.EventHandler) {
	p.mgr.Dispatcher.Unregister(key, watcher)
}

// /////////////////////////////////////////////////////////////////////////////
// --- common ---
type commonConfig struct {
	ClusterName ParamItem `refreshable:"false"`

	SessionTTL        ParamItem `refreshable:"false"`
	SessionRetryTimes ParamItem `refreshable:"false"`

	GracefulStopTimeout ParamItem `refreshable:"true"`
}

func (p *commonConfig) init(base *BaseTable) {
	p.ClusterName = ParamItem{
		Key:          "common.cluster.name",
		Version:      "1.0.0",
		DefaultValue: "glacierdb",
		Forbidden:    true,
		Doc:          "Cluster identity carried in transaction labels and metrics, immutable while the process runs.",
		Export:       true,
	}
	p.ClusterName.Init(base.mgr)

	p.SessionTTL = ParamItem{
		Key:          "common.session.ttl",
		Version:      "1.0.0",
		DefaultValue: strconv.Itoa(DefaultSessionTTL),
		Doc:          "ttl value when session granting a lease to register service",
		Export:       true,
	}
	p.SessionTTL.Init(base.mgr)

	p.SessionRetryTimes = ParamItem{
		Key:          "common.session.retryTimes",
		Version:      "1.0.0",
		DefaultValue: strconv.Itoa(DefaultSessionRetryTimes),
		Doc:          "retry times when session sending etcd requests",
		Export:       true,
	}
	p.SessionRetryTimes.Init(base.mgr)

	p.GracefulStopTimeout = ParamItem{
		Key:          "common.gracefulStopTimeout",
		Version:      "1.0.0",
		DefaultValue: strconv.Itoa(DefaultGracefulStopTimeout),
		Doc:          "seconds. force stop node without graceful stop",
		Export:       true,
	}
	p.GracefulStopTimeout.Init(base.mgr)
}

// /////////////////////////////////////////////////////////////////////////////
// --- lakecoord ---
type lakeCoordConfig struct {
	ScheduleInterval      ParamItem `refreshable:"false"`
	TransactionTimeout    ParamItem `refreshable:"true"`
	MaxParallelJobs       ParamItem `refreshable:"false"`
	MinVersionsToCompact  ParamItem `refreshable:"true"`
	ThresholdVersions     ParamItem `refreshable:"true"`
	CompactionCooldown    ParamItem `refreshable:"true"`
	HistoryRetainCount    ParamItem `refreshable:"false"`
	HistoryRetainDuration ParamItem `refreshable:"false"`
	DisableTableIDs       ParamItem `refreshable:"true"`
	MemoryWatermark       ParamItem `refreshable:"true"`
}

func (p *lakeCoordConfig) init(base *BaseTable) {
	p.ScheduleInterval = ParamItem{
		Key:          "lakecoord.compaction.scheduleInterval",
		Version:      "1.0.0",
		DefaultValue: "1",
		Doc:          "Interval in seconds between two scheduling rounds.",
		Export:       true,
	}
	p.ScheduleInterval.Init(base.mgr)

	p.TransactionTimeout = ParamItem{
		Key:          "lakecoord.compaction.transactionTimeout",
		Version:      "1.0.0",
		DefaultValue: strconv.Itoa(DefaultCompactionTxnTimeout),
		Doc: `Timeout in seconds of a compaction transaction.
Compaction transactions use this value only, ingest.maxLoadTimeout does not apply to them.`,
		Export: true,
	}
	p.TransactionTimeout.Init(base.mgr)

	p.MaxParallelJobs = ParamItem{
		Key:          "lakecoord.compaction.maxParallelJobs",
		Version:      "1.0.0",
		DefaultValue: "16",
		Doc:          "Maximum number of compaction jobs executing at the same time. 0 disables background compaction.",
		Export:       true,
	}
	p.MaxParallelJobs.Init(base.mgr)

	p.MinVersionsToCompact = ParamItem{
		Key:          "lakecoord.compaction.minVersions",
		Version:      "1.0.0",
		DefaultValue: "3",
		Doc:          "A partition becomes a candidate only after accumulating this many delta versions.",
		Export:       true,
	}
	p.MinVersionsToCompact.Init(base.mgr)

	p.ThresholdVersions = ParamItem{
		Key:          "lakecoord.compaction.thresholdVersions",
		Version:      "1.0.0",
		DefaultValue: "10",
		Doc:          "Partitions at or above this many delta versions are scheduled regardless of the cooldown.",
		Export:       true,
	}
	p.ThresholdVersions.Init(base.mgr)

	p.CompactionCooldown = ParamItem{
		Key:          "lakecoord.compaction.cooldown",
		Version:      "1.0.0",
		DefaultValue: "300",
		Doc:          "Seconds to wait after a finished compaction before the partition is eligible again.",
		Export:       true,
	}
	p.CompactionCooldown.Init(base.mgr)

	p.HistoryRetainCount = ParamItem{
		Key:          "lakecoord.compaction.historyRetainCount",
		Version:      "1.0.0",
		DefaultValue: "100",
		Doc:          "Number of finished compaction records kept for the history query.",
		Export:       true,
	}
	p.HistoryRetainCount.Init(base.mgr)

	p.HistoryRetainDuration = ParamItem{
		Key:          "lakecoord.compaction.historyRetainDuration",
		Version:      "1.0.0",
		DefaultValue: "86400",
		Doc:          "Seconds a finished compaction record stays visible in the history query.",
		Export:       true,
	}
	p.HistoryRetainDuration.Init(base.mgr)

	p.DisableTableIDs = ParamItem{
		Key:          "lakecoord.compaction.disableTableIDs",
		Version:      "1.0.0",
		DefaultValue: "",
		Doc:          `Semicolon separated table ids excluded from compaction scheduling, e.g. "23456;34567".`,
		Export:       true,
	}
	p.DisableTableIDs.Init(base.mgr)

	p.MemoryWatermark = ParamItem{
		Key:          "lakecoord.compaction.memoryWatermark",
		Version:      "1.1.0",
		DefaultValue: "0.9",
		Doc:          "Used-memory ratio above which no new compaction jobs are admitted.",
		Export:       true,
	}
	p.MemoryWatermark.Init(base.mgr)
}

// /////////////////////////////////////////////////////////////////////////////
// --- ingest ---
type ingestConfig struct {
	MaxLoadTimeout ParamItem `refreshable:"true"`
}

func (p *ingestConfig) init(base *BaseTable) {
	p.MaxLoadTimeout = ParamItem{
		Key:          "ingest.maxLoadTimeout",
		Version:      "1.0.0",
		DefaultValue: strconv.Itoa(DefaultMaxLoadTimeout),
		Doc:          "Upper bound in seconds of an ingest transaction. Compaction transactions ignore this knob.",
		Export:       true,
	}
	p.MaxLoadTimeout.Init(base.mgr)
}

// /////////////////////////////////////////////////////////////////////////////
// --- floe ---

// floeConfig mounts the knobs handed verbatim to the native storage engine.
// Keys under the floe. prefix are case sensitive and never rewritten.
type floeConfig struct {
	EngineArgs ParamGroup `refreshable:"true"`
}

func (p *floeConfig) init(base *BaseTable) {
	p.EngineArgs = ParamGroup{
		KeyPrefix: "floe.",
		Version:   "1.0.0",
		Doc:       "Tuning arguments passed through to the native storage engine.",
		Export:    true,
	}
	p.EngineArgs.Init(base.mgr)
}

// /////////////////////////////////////////////////////////////////////////////
// --- log ---
type logConfig struct {
	Level      ParamItem `refreshable:"false"`
	RootPath   ParamItem `refreshable:"false"`
	MaxSize    ParamItem `refreshable:"false"`
	MaxAge     ParamItem `refreshable:"false"`
	MaxBackups ParamItem `refreshable:"false"`
	Format     ParamItem `refreshable:"false"`
	Stdout     ParamItem `refreshable:"false"`
}

func (l *logConfig) init(base *BaseTable) {
	l.Level = ParamItem{
		Key:          "log.level",
		DefaultValue: "info",
		Version:      "1.0.0",
		Doc:          "Only supports debug, info, warn, error, panic, or fatal. Default 'info'.",
		Export:       true,
	}
	l.Level.Init(base.mgr)

	l.RootPath = ParamItem{
		Key:     "log.file.rootPath",
		Version: "1.0.0",
		Doc:     "root dir path to put logs, default \"\" means no log file will print. please adjust in embedded GlacierDB: /tmp/glacierdb/logs",
		Export:  true,
	}
	l.RootPath.Init(base.mgr)

	l.MaxSize = ParamItem{
		Key:          "log.file.maxSize",
		DefaultValue: "300",
		Version:      "1.0.0",
		Doc:          "MB",
		Export:       true,
	}
	l.MaxSize.Init(base.mgr)

	l.MaxAge = ParamItem{
		Key:          "log.file.maxAge",
		DefaultValue: "10",
		Version:      "1.0.0",
		Doc:          "Maximum time for log retention in day.",
		Export:       true,
	}
	l.MaxAge.Init(base.mgr)

	l.MaxBackups = ParamItem{
		Key:          "log.file.maxBackups",
		DefaultValue: "20",
		Version:      "1.0.0",
		Export:       true,
	}
	l.MaxBackups.Init(base.mgr)

	l.Format = ParamItem{
		Key:          "log.format",
		DefaultValue: "text",
		Version:      "1.0.0",
		Doc:          "text or json",
		Export:       true,
	}
	l.Format.Init(base.mgr)

	l.Stdout = ParamItem{
		Key:          "log.stdout",
		DefaultValue: "true",
		Version:      "1.0.0",
		Doc:          "Stdout enable or not",
		Export:       true,
	}
	l.Stdout.Init(base.mgr)
}

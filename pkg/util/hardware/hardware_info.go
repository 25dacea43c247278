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

package hardware

import (
	"runtime"
	"sync"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"go.uber.org/zap"

	"github.com/glacierdb/glacierdb/pkg/log"
)

var (
	icOnce sync.Once
	ic     bool
	icErr  error
)

// insideContainer caches the container detection, the answer can not change
// while the process is running.
func insideContainer() (bool, error) {
	icOnce.Do(func() {
		ic, icErr = inContainer()
	})
	return ic, icErr
}

// GetCPUNum returns the count of cpu cores visible to the process.
func GetCPUNum() int {
	cur := runtime.GOMAXPROCS(0)
	if cur <= 0 {
		cur = runtime.NumCPU()
	}
	return cur
}

// GetCPUUsage returns the cpu usage in percentage.
func GetCPUUsage() float64 {
	percents, err := cpu.Percent(0, false)
	if err != nil {
		log.Warn("failed to get cpu usage", zap.Error(err))
		return 0
	}
	if len(percents) != 1 {
		log.Warn("something wrong in cpu.Percent, len(percents) must be equal to 1",
			zap.Int("len(percents)", len(percents)))
		return 0
	}
	return percents[0]
}

// GetMemoryCount returns the total memory in bytes, the container limit wins
// over the host total when the process runs inside a container.
func GetMemoryCount() uint64 {
	stats, err := mem.VirtualMemory()
	if err != nil {
		log.Warn("failed to get memory count", zap.Error(err))
		return 0
	}

	icFlag, err := insideContainer()
	if err != nil {
		log.Warn("failed to check if the process is running inside a container", zap.Error(err))
		return stats.Total
	}
	if !icFlag {
		return stats.Total
	}

	limit, err := getContainerMemLimit()
	if err != nil {
		log.Warn("failed to get container memory limit", zap.Error(err))
		return stats.Total
	}
	if limit > 0 && limit < stats.Total {
		return limit
	}
	return stats.Total
}

// GetUsedMemoryCount returns the used memory in bytes.
func GetUsedMemoryCount() uint64 {
	icFlag, err := insideContainer()
	if err != nil {
		log.Warn("failed to check if the process is running inside a container", zap.Error(err))
		return 0
	}
	if icFlag {
		used, err := getContainerMemUsed()
		if err != nil {
			log.Warn("failed to get container memory used", zap.Error(err))
			return 0
		}
		return used
	}

	stats, err := mem.VirtualMemory()
	if err != nil {
		log.Warn("failed to get memory usage count", zap.Error(err))
		return 0
	}
	return stats.Used
}

// GetFreeMemoryCount returns the free memory in bytes.
func GetFreeMemoryCount() uint64 {
	return GetMemoryCount() - GetUsedMemoryCount()
}

// GetMemoryUseRatio returns the memory usage ratio of this process.
func GetMemoryUseRatio() float64 {
	usedMemory := GetUsedMemoryCount()
	totalMemory := GetMemoryCount()
	if usedMemory > 0 && totalMemory > 0 {
		return float64(usedMemory) / float64(totalMemory)
	}
	return 0
}

// GetDiskCount returns the disk size of the root volume in bytes.
func GetDiskCount() uint64 {
	stats, err := disk.Usage("/")
	if err != nil {
		log.Warn("failed to get disk count", zap.Error(err))
		return 0
	}
	return stats.Total
}

// GetDiskUsage returns the used disk space of the root volume in bytes.
func GetDiskUsage() uint64 {
	stats, err := disk.Usage("/")
	if err != nil {
		log.Warn("failed to get disk usage", zap.Error(err))
		return 0
	}
	return stats.Used
}

// GetIOWait returns the iowait fraction of the cpu time.
func GetIOWait() float64 {
	timeStats, err := cpu.Times(false)
	if err != nil {
		log.Warn("failed to get cpu times", zap.Error(err))
		return 0
	}
	if len(timeStats) != 1 {
		return 0
	}
	total := timeStats[0].User + timeStats[0].System + timeStats[0].Idle + timeStats[0].Iowait
	if total == 0 {
		return 0
	}
	return timeStats[0].Iowait / total
}

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

package metricsinfo

import (
	"os"

	"github.com/glacierdb/glacierdb/pkg/util/hardware"
)

const (
	// GitCommitEnvKey defines the key to retrieve the commit corresponding to the current glacierdb version
	// from the metrics information
	GitCommitEnvKey = "GLACIERDB_GIT_COMMIT"

	// DeployModeEnvKey defines the key to retrieve the current glacierdb deployment mode
	// from the metrics information
	DeployModeEnvKey = "DEPLOY_MODE"

	// ClusterDeployMode represents the cluster deployment mode
	ClusterDeployMode = "DISTRIBUTED"

	// StandaloneDeployMode represents the standalone deployment mode
	StandaloneDeployMode = "STANDALONE"

	// GitBuildTagsEnvKey build tag
	GitBuildTagsEnvKey = "GLACIERDB_GIT_BUILD_TAGS"

	// BuildTimeEnvKey build time
	BuildTimeEnvKey = "GLACIERDB_BUILD_TIME"

	// UsedGoVersionEnvKey used go version
	UsedGoVersionEnvKey = "GLACIERDB_USED_GO_VERSION"
)

// HardwareMetrics records the hardware information of nodes.
type HardwareMetrics struct {
	IP           string  `json:"ip"`
	CPUCoreCount int     `json:"cpu_core_count"`
	CPUCoreUsage float64 `json:"cpu_core_usage"`
	Memory       uint64  `json:"memory"`
	MemoryUsage  uint64  `json:"memory_usage"`
	Disk         uint64  `json:"disk"`
	DiskUsage    uint64  `json:"disk_usage"`
	IOWait       float64 `json:"io_wait"`
}

// NewHardwareMetrics samples the local hardware counters.
func NewHardwareMetrics(ip string) HardwareMetrics {
	return HardwareMetrics{
		IP:           ip,
		CPUCoreCount: hardware.GetCPUNum(),
		CPUCoreUsage: hardware.GetCPUUsage(),
		Memory:       hardware.GetMemoryCount(),
		MemoryUsage:  hardware.GetUsedMemoryCount(),
		Disk:         hardware.GetDiskCount(),
		DiskUsage:    hardware.GetDiskUsage(),
		IOWait:       hardware.GetIOWait(),
	}
}

// DeployMetrics records deployment information of nodes.
type DeployMetrics struct {
	SystemVersion string `json:"system_version"`
	DeployMode    string `json:"deploy_mode"`
	BuildVersion  string `json:"build_version"`
	BuildTime     string `json:"build_time"`
	UsedGoVersion string `json:"used_go_version"`
}

// FillDeployMetricsWithEnv fill deploy metrics with env.
func FillDeployMetricsWithEnv(m *DeployMetrics) {
	m.SystemVersion = os.Getenv(GitCommitEnvKey)
	m.DeployMode = os.Getenv(DeployModeEnvKey)
	m.BuildVersion = os.Getenv(GitBuildTagsEnvKey)
	m.BuildTime = os.Getenv(BuildTimeEnvKey)
	m.UsedGoVersion = os.Getenv(UsedGoVersionEnvKey)
}

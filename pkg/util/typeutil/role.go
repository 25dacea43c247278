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

const (
	// LakeCoordRole is the coordinator driving compaction scheduling and warehouse resolution.
	LakeCoordRole = "lakecoord"
	// ComputeNodeRole is a worker executing compaction and query tasks.
	ComputeNodeRole = "computenode"
	// StandaloneRole is all roles bundled in one process.
	StandaloneRole = "standalone"
	// EmbeddedRole is standalone running inside a host application.
	EmbeddedRole = "embedded"
)

// ServerTypeList returns the roles a process can be started as.
func ServerTypeList() []string {
	return []string{
		LakeCoordRole,
		ComputeNodeRole,
		StandaloneRole,
	}
}

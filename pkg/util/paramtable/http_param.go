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

type httpConfig struct {
	Enabled     ParamItem `refreshable:"false"`
	DebugMode   ParamItem `refreshable:"false"`
	Port        ParamItem `refreshable:"false"`
	EnablePprof ParamItem `refreshable:"false"`
}

func (p *httpConfig) init(base *BaseTable) {
	p.Enabled = ParamItem{
		Key:          "http.enabled",
		DefaultValue: "true",
		Version:      "1.0.0",
		Doc:          "Whether to enable the http admin server",
		Export:       true,
	}
	p.Enabled.Init(base.mgr)

	p.DebugMode = ParamItem{
		Key:          "http.debug_mode",
		DefaultValue: "false",
		Version:      "1.0.0",
		Doc:          "Whether to enable http server debug mode",
		Export:       true,
	}
	p.DebugMode.Init(base.mgr)

	p.Port = ParamItem{
		Key:          "http.port",
		DefaultValue: "8030",
		Version:      "1.0.0",
		Doc:          "Listen port of the http admin server",
		Export:       true,
	}
	p.Port.Init(base.mgr)

	p.EnablePprof = ParamItem{
		Key:          "http.enablePprof",
		DefaultValue: "true",
		Version:      "1.1.0",
		Doc:          "Whether to enable pprof endpoints on the http admin server",
		Export:       true,
	}
	p.EnablePprof.Init(base.mgr)
}

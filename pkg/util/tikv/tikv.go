// Licensed to the GlacierDB project under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
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

package tikv

import (
	"github.com/tikv/client-go/v2/config"
	"github.com/tikv/client-go/v2/txnkv"

	"github.com/glacierdb/glacierdb/pkg/util/paramtable"
)

// GetTiKVClient returns a tikv client connected to the pd endpoints of the
// given config. TLS settings are applied through the global tikv config.
func GetTiKVClient(cfg *paramtable.TiKVConfig) (*txnkv.Client, error) {
	if cfg.TiKVUseSSL.GetAsBool() {
		config.UpdateGlobal(func(conf *config.Config) {
			conf.Security = config.NewSecurity(
				cfg.TiKVTLSCACert.GetValue(),
				cfg.TiKVTLSCert.GetValue(),
				cfg.TiKVTLSKey.GetValue(),
				[]string{})
		})
	}
	return txnkv.NewClient(cfg.Endpoints.GetAsStrings())
}

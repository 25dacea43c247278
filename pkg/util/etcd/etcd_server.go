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

package etcd

import (
	"net/url"
	"sync"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/server/v3/embed"
	"go.etcd.io/etcd/server/v3/etcdserver/api/v3client"
	"go.uber.org/zap"

	"github.com/glacierdb/glacierdb/pkg/log"
)

var (
	initOnce  sync.Once
	closeOnce sync.Once

	etcdServer *embed.Etcd
)

// HasServer returns whether the embedded etcd server singleton is running.
func HasServer() bool {
	return etcdServer != nil
}

// GetEmbedEtcdClient returns an in-process client of the embedded etcd
// server.
func GetEmbedEtcdClient() (*clientv3.Client, error) {
	client := v3client.New(etcdServer.Server)
	return client, nil
}

// InitEtcdServer initializes the embedded etcd server singleton.
func InitEtcdServer(
	useEmbedEtcd bool,
	configPath string,
	dataDir string,
	logPath string,
	logLevel string,
) error {
	if useEmbedEtcd {
		var initError error
		initOnce.Do(func() {
			cfg, err := buildEmbedConfig(configPath)
			if err != nil {
				log.Warn("failed to build embedded etcd config", zap.Error(err))
				initError = err
				return
			}
			cfg.Dir = dataDir
			cfg.LogOutputs = []string{logPath}
			cfg.LogLevel = logLevel
			e, err := embed.StartEtcd(cfg)
			if err != nil {
				log.Warn("failed to start embedded etcd server", zap.Error(err))
				initError = err
				return
			}
			etcdServer = e
			log.Info("finish init embedded etcd server",
				zap.String("path", configPath),
				zap.String("data", dataDir))
		})
		return initError
	}
	return nil
}

func buildEmbedConfig(configPath string) (*embed.Config, error) {
	if len(configPath) > 0 {
		return embed.ConfigFromFile(configPath)
	}
	cfg := embed.NewConfig()
	// port 0 avoids collisions, clients go through v3client in-process
	lpurl, _ := url.Parse("http://localhost:0")
	lcurl, _ := url.Parse("http://localhost:0")
	cfg.ListenPeerUrls = []url.URL{*lpurl}
	cfg.ListenClientUrls = []url.URL{*lcurl}
	return cfg, nil
}

// StopEtcdServer stops the embedded etcd server singleton.
func StopEtcdServer() {
	if etcdServer != nil {
		closeOnce.Do(func() {
			etcdServer.Close()
		})
	}
}

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

package etcdkv

import (
	"net/url"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.etcd.io/etcd/server/v3/embed"
	"go.etcd.io/etcd/server/v3/etcdserver/api/v3client"
	"go.uber.org/zap"

	"github.com/glacierdb/glacierdb/internal/kv"
	"github.com/glacierdb/glacierdb/pkg/log"
	"github.com/glacierdb/glacierdb/pkg/util/etcd"
	"github.com/glacierdb/glacierdb/pkg/util/paramtable"
)

var _ kv.WatchKV = (*EmbedEtcdKV)(nil)

// EmbedEtcdKV runs its own embedded etcd server and talks to it through an
// in-process client. Each instance owns the server it starts and tears it
// down on Close.
type EmbedEtcdKV struct {
	*EtcdKV
	etcd      *embed.Etcd
	closeOnce sync.Once
}

// NewEmbeddedEtcdKV starts an embedded etcd server from cfg and returns a kv
// rooted at rootPath backed by it.
func NewEmbeddedEtcdKV(cfg *embed.Config, rootPath string) (*EmbedEtcdKV, error) {
	e, err := embed.StartEtcd(cfg)
	if err != nil {
		return nil, err
	}
	client := v3client.New(e.Server)
	kv := &EmbedEtcdKV{
		EtcdKV: NewEtcdKV(client, rootPath),
		etcd:   e,
	}

	select {
	case <-e.Server.ReadyNotify():
		log.Info("embedded etcd is ready", zap.String("dir", cfg.Dir))
	case <-time.After(60 * time.Second):
		e.Server.Stop()
		return nil, errors.New("embedded etcd took too long to start")
	}
	return kv, nil
}

// Close shuts down the in-process client and the owned etcd server.
func (kv *EmbedEtcdKV) Close() {
	kv.closeOnce.Do(func() {
		kv.client.Close()
		kv.etcd.Close()
	})
}

// NewMetaKvFactory returns a kv.MetaKv built from the etcd config. With
// UseEmbedEtcd set the kv runs its own embedded server, otherwise it connects
// to the configured endpoints.
func NewMetaKvFactory(rootPath string, etcdCfg *paramtable.EtcdConfig) (kv.MetaKv, error) {
	return NewWatchKVFactory(rootPath, etcdCfg)
}

// NewWatchKVFactory is NewMetaKvFactory with the watch methods exposed.
func NewWatchKVFactory(rootPath string, etcdCfg *paramtable.EtcdConfig) (kv.WatchKV, error) {
	log.Info("start etcd with rootPath",
		zap.String("rootpath", rootPath),
		zap.Bool("isEmbed", etcdCfg.UseEmbedEtcd.GetAsBool()))
	if etcdCfg.UseEmbedEtcd.GetAsBool() {
		cfg, err := buildEmbedConfig(etcdCfg)
		if err != nil {
			return nil, err
		}
		watchKv, err := NewEmbeddedEtcdKV(cfg, rootPath)
		if err != nil {
			return nil, err
		}
		return watchKv, err
	}
	client, err := etcd.GetEtcdClient(
		etcdCfg.UseEmbedEtcd.GetAsBool(),
		etcdCfg.EtcdUseSSL.GetAsBool(),
		etcdCfg.Endpoints.GetAsStrings(),
		etcdCfg.EtcdTLSCert.GetValue(),
		etcdCfg.EtcdTLSKey.GetValue(),
		etcdCfg.EtcdTLSCACert.GetValue(),
		etcdCfg.EtcdTLSMinVersion.GetValue())
	if err != nil {
		return nil, err
	}
	watchKv := NewEtcdKV(client, rootPath)
	return watchKv, err
}

func buildEmbedConfig(etcdCfg *paramtable.EtcdConfig) (*embed.Config, error) {
	var cfg *embed.Config
	if len(etcdCfg.ConfigPath.GetValue()) > 0 {
		cfgFromFile, err := embed.ConfigFromFile(etcdCfg.ConfigPath.GetValue())
		if err != nil {
			return nil, err
		}
		cfg = cfgFromFile
	} else {
		cfg = embed.NewConfig()
		// port 0 avoids collisions, clients go through v3client in-process
		lpurl, _ := url.Parse("http://localhost:0")
		lcurl, _ := url.Parse("http://localhost:0")
		cfg.ListenPeerUrls = []url.URL{*lpurl}
		cfg.ListenClientUrls = []url.URL{*lcurl}
	}
	cfg.Dir = etcdCfg.DataDir.GetValue()
	return cfg, nil
}

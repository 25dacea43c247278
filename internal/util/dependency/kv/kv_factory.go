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

package kvfactory

import (
	"github.com/tikv/client-go/v2/txnkv"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"

	"github.com/glacierdb/glacierdb/internal/kv"
	etcdkv "github.com/glacierdb/glacierdb/internal/kv/etcd"
	"github.com/glacierdb/glacierdb/internal/kv/tikv"
	"github.com/glacierdb/glacierdb/pkg/log"
	"github.com/glacierdb/glacierdb/pkg/util/etcd"
	"github.com/glacierdb/glacierdb/pkg/util/paramtable"
	tikv2 "github.com/glacierdb/glacierdb/pkg/util/tikv"
)

// Swappable constructors, replaced by unit tests.
var (
	createTiKV         = createTiKVClient
	createETCD         = createETCDClient
	fatalLogger        = defaultFatalLogFunc
	etcdRootPathParser = defaultEtcdRootPathParser
	tiKVRootPathParser = defaultTiKVRootPathParser
)

// Factory hands out kv connections that share one underlying client.
type Factory interface {
	NewMetaKv() kv.MetaKv
	NewTxnKV() kv.TxnKV
	CloseKV()
}

var (
	_ Factory = (*ETCDFactory)(nil)
	_ Factory = (*TiKVFactory)(nil)
)

// ETCDFactory builds kv instances on a shared etcd client.
type ETCDFactory struct {
	client   *clientv3.Client
	rootPath string
}

// TiKVFactory builds kv instances on a shared tikv client.
type TiKVFactory struct {
	client   *txnkv.Client
	rootPath string
}

// NewETCDFactory connects to etcd with the settings from the param table and
// returns nil if the client cannot be created.
func NewETCDFactory() *ETCDFactory {
	client, err := createETCD()
	if err != nil {
		fatalLogger("etcd", err)
		return nil
	}
	return &ETCDFactory{
		client:   client,
		rootPath: etcdRootPathParser(),
	}
}

// NewTiKVFactory connects to tikv with the settings from the param table and
// returns nil if the client cannot be created.
func NewTiKVFactory() *TiKVFactory {
	client, err := createTiKV()
	if err != nil {
		fatalLogger("tikv", err)
		return nil
	}
	return &TiKVFactory{
		client:   client,
		rootPath: tiKVRootPathParser(),
	}
}

func (f *ETCDFactory) NewMetaKv() kv.MetaKv {
	return etcdkv.NewEtcdKV(f.client, f.rootPath)
}

func (f *ETCDFactory) NewTxnKV() kv.TxnKV {
	return etcdkv.NewEtcdKV(f.client, f.rootPath)
}

// NewWatchKV is only served by etcd, tikv has no watch support.
func (f *ETCDFactory) NewWatchKV() kv.WatchKV {
	return etcdkv.NewEtcdKV(f.client, f.rootPath)
}

func (f *ETCDFactory) CloseKV() {
	f.client.Close()
}

func (f *TiKVFactory) NewMetaKv() kv.MetaKv {
	return tikv.NewTiKV(f.client, f.rootPath)
}

func (f *TiKVFactory) NewTxnKV() kv.TxnKV {
	return tikv.NewTiKV(f.client, f.rootPath)
}

func (f *TiKVFactory) CloseKV() {
	f.client.Close()
}

func defaultFatalLogFunc(store string, err error) {
	log.Fatal("failed to create client for the meta store",
		zap.String("store", store),
		zap.Error(err))
}

func defaultEtcdRootPathParser() string {
	return paramtable.Get().EtcdCfg.MetaRootPath.GetValue()
}

func defaultTiKVRootPathParser() string {
	return paramtable.Get().TiKVCfg.MetaRootPath.GetValue()
}

func createETCDClient() (*clientv3.Client, error) {
	cfg := &paramtable.Get().EtcdCfg
	return etcd.CreateEtcdClient(
		cfg.UseEmbedEtcd.GetAsBool(),
		cfg.EtcdEnableAuth.GetAsBool(),
		cfg.EtcdAuthUserName.GetValue(),
		cfg.EtcdAuthPassword.GetValue(),
		cfg.EtcdUseSSL.GetAsBool(),
		cfg.Endpoints.GetAsStrings(),
		cfg.EtcdTLSCert.GetValue(),
		cfg.EtcdTLSKey.GetValue(),
		cfg.EtcdTLSCACert.GetValue(),
		cfg.EtcdTLSMinVersion.GetValue())
}

func createTiKVClient() (*txnkv.Client, error) {
	return tikv2.GetTiKVClient(&paramtable.Get().TiKVCfg)
}

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
	"crypto/tls"
	"crypto/x509"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"

	"github.com/glacierdb/glacierdb/pkg/log"
)

// GetEtcdClient returns an etcd client for the given connection settings.
func GetEtcdClient(
	useEmbedEtcd bool,
	useSSL bool,
	endpoints []string,
	certFile string,
	keyFile string,
	caCertFile string,
	minVersion string,
) (*clientv3.Client, error) {
	log.Info("create etcd client",
		zap.Bool("useEmbedEtcd", useEmbedEtcd),
		zap.Bool("useSSL", useSSL),
		zap.Any("endpoints", endpoints),
		zap.String("minVersion", minVersion))
	if useEmbedEtcd {
		return GetEmbedEtcdClient()
	}
	if useSSL {
		return GetRemoteEtcdSSLClient(endpoints, certFile, keyFile, caCertFile, minVersion)
	}
	return GetRemoteEtcdClient(endpoints)
}

// CreateEtcdClient creates an etcd client, attaching the credentials when
// auth is enabled.
func CreateEtcdClient(
	useEmbedEtcd bool,
	enableAuth bool,
	userName string,
	password string,
	useSSL bool,
	endpoints []string,
	certFile string,
	keyFile string,
	caCertFile string,
	minVersion string,
) (*clientv3.Client, error) {
	if !enableAuth {
		return GetEtcdClient(useEmbedEtcd, useSSL, endpoints, certFile, keyFile, caCertFile, minVersion)
	}
	if useEmbedEtcd {
		return nil, errors.New("embedded etcd can not enable auth")
	}
	log.Info("create etcd client with auth",
		zap.Bool("useSSL", useSSL),
		zap.Any("endpoints", endpoints),
		zap.String("minVersion", minVersion))
	if useSSL {
		return GetRemoteEtcdSSLClientWithAuth(endpoints, certFile, keyFile, caCertFile, minVersion, userName, password)
	}
	return GetRemoteEtcdClientWithAuth(endpoints, userName, password)
}

// GetRemoteEtcdClient returns a client of remote etcd by given endpoints.
func GetRemoteEtcdClient(endpoints []string) (*clientv3.Client, error) {
	return clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: 5 * time.Second,
	})
}

func GetRemoteEtcdClientWithAuth(endpoints []string, userName, password string) (*clientv3.Client, error) {
	return clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: 5 * time.Second,
		Username:    userName,
		Password:    password,
	})
}

// GetRemoteEtcdSSLClient returns a TLS protected client of remote etcd.
func GetRemoteEtcdSSLClient(endpoints []string, certFile string, keyFile string, caCertFile string, minVersion string) (*clientv3.Client, error) {
	cfg, err := buildRemoteEtcdSSLConfig(endpoints, certFile, keyFile, caCertFile, minVersion)
	if err != nil {
		return nil, err
	}
	return clientv3.New(cfg)
}

func GetRemoteEtcdSSLClientWithAuth(endpoints []string, certFile string, keyFile string, caCertFile string, minVersion string, userName, password string) (*clientv3.Client, error) {
	cfg, err := buildRemoteEtcdSSLConfig(endpoints, certFile, keyFile, caCertFile, minVersion)
	if err != nil {
		return nil, err
	}
	cfg.Username = userName
	cfg.Password = password
	return clientv3.New(cfg)
}

func buildRemoteEtcdSSLConfig(endpoints []string, certFile string, keyFile string, caCertFile string, minVersion string) (clientv3.Config, error) {
	var cfg clientv3.Config
	cfg.Endpoints = endpoints
	cfg.DialTimeout = 5 * time.Second
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return cfg, errors.Wrap(err, "load etcd cert key pair error")
	}
	caCert, err := os.ReadFile(caCertFile)
	if err != nil {
		return cfg, errors.Wrapf(err, "load etcd CACert file error, filename = %s", caCertFile)
	}
	caCertPool := x509.NewCertPool()
	caCertPool.AppendCertsFromPEM(caCert)
	cfg.TLS = &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      caCertPool,
	}
	switch minVersion {
	case "1.0":
		cfg.TLS.MinVersion = tls.VersionTLS10
	case "1.1":
		cfg.TLS.MinVersion = tls.VersionTLS11
	case "1.2":
		cfg.TLS.MinVersion = tls.VersionTLS12
	case "1.3":
		cfg.TLS.MinVersion = tls.VersionTLS13
	default:
		cfg.TLS.MinVersion = 0
	}

	if cfg.TLS.MinVersion == 0 {
		return cfg, errors.Newf("unknown TLS version: %s", minVersion)
	}

	return cfg, nil
}

// SaveByBatchWithLimit saves kvs through op in batches of at most limit
// entries each.
func SaveByBatchWithLimit(kvs map[string]string, limit int, op func(partialKvs map[string]string) error) error {
	if len(kvs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(kvs))
	values := make([]string, 0, len(kvs))
	for k, v := range kvs {
		keys = append(keys, k)
		values = append(values, v)
	}

	for i := 0; i < len(kvs); i += limit {
		end := min(i+limit, len(keys))
		batch, err := buildKvGroup(keys[i:end], values[i:end])
		if err != nil {
			return err
		}
		if err := op(batch); err != nil {
			return err
		}
	}
	return nil
}

// RemoveByBatchWithLimit removes keys through op in batches of at most limit
// entries each.
func RemoveByBatchWithLimit(removals []string, limit int, op func(partialKeys []string) error) error {
	if len(removals) == 0 {
		return nil
	}
	for i := 0; i < len(removals); i += limit {
		end := min(i+limit, len(removals))
		batch := removals[i:end]
		if err := op(batch); err != nil {
			return err
		}
	}
	return nil
}

func buildKvGroup(keys, values []string) (map[string]string, error) {
	if len(keys) != len(values) {
		return nil, errors.Newf("length of keys (%d) and values (%d) are not equal", len(keys), len(values))
	}
	ret := make(map[string]string, len(keys))
	for i, k := range keys {
		_, ok := ret[k]
		if ok {
			return nil, errors.Newf("duplicated key was found: %s", k)
		}
		ret[k] = values[i]
	}
	return ret, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

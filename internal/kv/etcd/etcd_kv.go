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
	"context"
	"encoding/binary"
	"fmt"
	"path"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"

	"github.com/glacierdb/glacierdb/internal/kv"
	"github.com/glacierdb/glacierdb/pkg/log"
	"github.com/glacierdb/glacierdb/pkg/metrics"
	"github.com/glacierdb/glacierdb/pkg/util/merr"
	"github.com/glacierdb/glacierdb/pkg/util/timerecord"
)

const (
	// RequestTimeout is the default timeout for the etcd request.
	RequestTimeout = 10 * time.Second
)

// implementation assertion
var _ kv.WatchKV = (*EtcdKV)(nil)

// EtcdKV implements WatchKV interface, it supports processing multiple kvs
// within one transaction.
type EtcdKV struct {
	client   *clientv3.Client
	rootPath string
}

// NewEtcdKV creates a new etcd kv rooted at rootPath.
func NewEtcdKV(client *clientv3.Client, rootPath string) *EtcdKV {
	kv := &EtcdKV{
		client:   client,
		rootPath: rootPath,
	}
	return kv
}

// Close only logs, the etcd client is shared and stays with its owner.
func (kv *EtcdKV) Close() {
	log.Debug("etcd kv closed", zap.String("path", kv.rootPath))
}

// GetPath returns the path of the key.
func (kv *EtcdKV) GetPath(key string) string {
	return path.Join(kv.rootPath, key)
}

// Has returns true if the key exists.
func (kv *EtcdKV) Has(key string) (bool, error) {
	start := time.Now()
	key = path.Join(kv.rootPath, key)

	resp, err := kv.getEtcdMeta(context.Background(), key, clientv3.WithCountOnly())
	if err != nil {
		return false, merr.WrapErrIoFailed(key, err)
	}
	CheckElapseAndWarn(start, "Slow etcd operation has", zap.String("key", key))
	return resp.Count != 0, nil
}

// HasPrefix returns true if any key under the prefix exists.
func (kv *EtcdKV) HasPrefix(prefix string) (bool, error) {
	start := time.Now()
	prefix = path.Join(kv.rootPath, prefix)

	resp, err := kv.getEtcdMeta(context.Background(), prefix,
		clientv3.WithPrefix(),
		clientv3.WithCountOnly(),
		clientv3.WithLimit(1))
	if err != nil {
		return false, merr.WrapErrIoFailed(prefix, err)
	}
	CheckElapseAndWarn(start, "Slow etcd operation has prefix", zap.String("prefix", prefix))
	return resp.Count != 0, nil
}

// Load returns value of the key.
func (kv *EtcdKV) Load(key string) (string, error) {
	start := time.Now()
	key = path.Join(kv.rootPath, key)

	resp, err := kv.getEtcdMeta(context.Background(), key)
	if err != nil {
		return "", err
	}
	if resp.Count <= 0 {
		return "", merr.WrapErrIoKeyNotFound(key)
	}
	CheckElapseAndWarn(start, "Slow etcd operation load", zap.String("key", key))
	return string(resp.Kvs[0].Value), nil
}

// LoadBytes returns value of the key.
func (kv *EtcdKV) LoadBytes(key string) ([]byte, error) {
	start := time.Now()
	key = path.Join(kv.rootPath, key)

	resp, err := kv.getEtcdMeta(context.Background(), key)
	if err != nil {
		return nil, err
	}
	if resp.Count <= 0 {
		return nil, merr.WrapErrIoKeyNotFound(key)
	}
	CheckElapseAndWarn(start, "Slow etcd operation load bytes", zap.String("key", key))
	return resp.Kvs[0].Value, nil
}

// MultiLoad gets the values of the keys in a transaction. Missing keys yield
// an empty placeholder value and are reported through the returned error.
func (kv *EtcdKV) MultiLoad(keys []string) ([]string, error) {
	start := time.Now()
	ops := make([]clientv3.Op, 0, len(keys))
	for _, keyLoad := range keys {
		ops = append(ops, clientv3.OpGet(path.Join(kv.rootPath, keyLoad)))
	}

	resp, err := kv.executeTxn(context.Background(), ops...)
	if err != nil {
		return nil, err
	}

	result := make([]string, 0, len(keys))
	invalid := make([]string, 0, len(keys))
	for index, rp := range resp.Responses {
		if rp.GetResponseRange() != nil && len(rp.GetResponseRange().Kvs) == 0 {
			invalid = append(invalid, keys[index])
			result = append(result, "")
		}
		for _, ev := range rp.GetResponseRange().Kvs {
			result = append(result, string(ev.Value))
		}
	}
	if len(invalid) != 0 {
		err = fmt.Errorf("there are invalid keys: %s", invalid)
	}
	CheckElapseAndWarn(start, "Slow etcd operation multi load", zap.Any("keys", keys))
	return result, err
}

// MultiLoadBytes is the bytes version of MultiLoad.
func (kv *EtcdKV) MultiLoadBytes(keys []string) ([][]byte, error) {
	start := time.Now()
	ops := make([]clientv3.Op, 0, len(keys))
	for _, keyLoad := range keys {
		ops = append(ops, clientv3.OpGet(path.Join(kv.rootPath, keyLoad)))
	}

	resp, err := kv.executeTxn(context.Background(), ops...)
	if err != nil {
		return nil, err
	}

	result := make([][]byte, 0, len(keys))
	invalid := make([]string, 0, len(keys))
	for index, rp := range resp.Responses {
		if rp.GetResponseRange() != nil && len(rp.GetResponseRange().Kvs) == 0 {
			invalid = append(invalid, keys[index])
			result = append(result, []byte{})
		}
		for _, ev := range rp.GetResponseRange().Kvs {
			result = append(result, ev.Value)
		}
	}
	if len(invalid) != 0 {
		err = fmt.Errorf("there are invalid keys: %s", invalid)
	}
	CheckElapseAndWarn(start, "Slow etcd operation multi load bytes", zap.Any("keys", keys))
	return result, err
}

// LoadWithPrefix returns all the keys and values under the key prefix.
func (kv *EtcdKV) LoadWithPrefix(key string) ([]string, []string, error) {
	start := time.Now()
	key = path.Join(kv.rootPath, key)

	resp, err := kv.getEtcdMeta(context.Background(), key,
		clientv3.WithPrefix(),
		clientv3.WithSort(clientv3.SortByKey, clientv3.SortAscend))
	if err != nil {
		return nil, nil, err
	}
	keys := make([]string, 0, resp.Count)
	values := make([]string, 0, resp.Count)
	for _, kvpair := range resp.Kvs {
		keys = append(keys, string(kvpair.Key))
		values = append(values, string(kvpair.Value))
	}
	CheckElapseAndWarn(start, "Slow etcd operation load with prefix", zap.String("prefix", key))
	return keys, values, nil
}

// LoadBytesWithPrefix returns all the keys and values under the key prefix.
func (kv *EtcdKV) LoadBytesWithPrefix(key string) ([]string, [][]byte, error) {
	start := time.Now()
	key = path.Join(kv.rootPath, key)

	resp, err := kv.getEtcdMeta(context.Background(), key,
		clientv3.WithPrefix(),
		clientv3.WithSort(clientv3.SortByKey, clientv3.SortAscend))
	if err != nil {
		return nil, nil, err
	}
	keys := make([]string, 0, resp.Count)
	values := make([][]byte, 0, resp.Count)
	for _, kvpair := range resp.Kvs {
		keys = append(keys, string(kvpair.Key))
		values = append(values, kvpair.Value)
	}
	CheckElapseAndWarn(start, "Slow etcd operation load bytes with prefix", zap.String("prefix", key))
	return keys, values, nil
}

// LoadBytesWithPrefix2 returns all the keys, values and key versions under
// the key prefix.
func (kv *EtcdKV) LoadBytesWithPrefix2(key string) ([]string, [][]byte, []int64, error) {
	start := time.Now()
	key = path.Join(kv.rootPath, key)

	resp, err := kv.getEtcdMeta(context.Background(), key,
		clientv3.WithPrefix(),
		clientv3.WithSort(clientv3.SortByKey, clientv3.SortAscend))
	if err != nil {
		return nil, nil, nil, err
	}
	keys := make([]string, 0, resp.Count)
	values := make([][]byte, 0, resp.Count)
	versions := make([]int64, 0, resp.Count)
	for _, kvpair := range resp.Kvs {
		keys = append(keys, string(kvpair.Key))
		values = append(values, kvpair.Value)
		versions = append(versions, kvpair.Version)
	}
	CheckElapseAndWarn(start, "Slow etcd operation load bytes with prefix2", zap.String("prefix", key))
	return keys, values, versions, nil
}

// LoadBytesWithRevision returns keys and values under the key prefix along
// with the store revision the read was served at.
func (kv *EtcdKV) LoadBytesWithRevision(key string) ([]string, [][]byte, int64, error) {
	start := time.Now()
	key = path.Join(kv.rootPath, key)

	resp, err := kv.getEtcdMeta(context.Background(), key,
		clientv3.WithPrefix(),
		clientv3.WithSort(clientv3.SortByKey, clientv3.SortAscend))
	if err != nil {
		return nil, nil, 0, err
	}
	keys := make([]string, 0, resp.Count)
	values := make([][]byte, 0, resp.Count)
	for _, kvpair := range resp.Kvs {
		keys = append(keys, string(kvpair.Key))
		values = append(values, kvpair.Value)
	}
	CheckElapseAndWarn(start, "Slow etcd operation load bytes with revision", zap.String("prefix", key))
	return keys, values, resp.Header.Revision, nil
}

// Save saves the key-value pair.
func (kv *EtcdKV) Save(key, value string) error {
	start := time.Now()
	rawKey := path.Join(kv.rootPath, key)

	CheckValueSizeAndWarn(rawKey, value)
	_, err := kv.putEtcdMeta(context.Background(), rawKey, value)
	CheckElapseAndWarn(start, "Slow etcd operation save", zap.String("key", key))
	return err
}

// SaveBytes saves the key-value pair.
func (kv *EtcdKV) SaveBytes(key string, value []byte) error {
	start := time.Now()
	rawKey := path.Join(kv.rootPath, key)

	CheckValueSizeAndWarn(rawKey, value)
	_, err := kv.putEtcdMeta(context.Background(), rawKey, string(value))
	CheckElapseAndWarn(start, "Slow etcd operation save bytes", zap.String("key", key))
	return err
}

// MultiSave saves the key-value pairs in a transaction.
func (kv *EtcdKV) MultiSave(kvs map[string]string) error {
	start := time.Now()

	CheckTnxStringValueSizeAndWarn(kvs)
	ops := make([]clientv3.Op, 0, len(kvs))
	for key, value := range kvs {
		ops = append(ops, clientv3.OpPut(path.Join(kv.rootPath, key), value))
	}

	_, err := kv.executeTxn(context.Background(), ops...)
	if err != nil {
		log.Warn("etcd kv MultiSave error", zap.Any("kvs", kvs), zap.Int("len", len(kvs)), zap.Error(err))
	}
	CheckElapseAndWarn(start, "Slow etcd operation multi save", zap.Any("kvs", kvs))
	return err
}

// MultiSaveBytes saves the key-value pairs in a transaction.
func (kv *EtcdKV) MultiSaveBytes(kvs map[string][]byte) error {
	start := time.Now()

	CheckTnxBytesValueSizeAndWarn(kvs)
	ops := make([]clientv3.Op, 0, len(kvs))
	for key, value := range kvs {
		ops = append(ops, clientv3.OpPut(path.Join(kv.rootPath, key), string(value)))
	}

	_, err := kv.executeTxn(context.Background(), ops...)
	if err != nil {
		log.Warn("etcd kv MultiSaveBytes error", zap.Any("kvs", kvs), zap.Int("len", len(kvs)), zap.Error(err))
	}
	CheckElapseAndWarn(start, "Slow etcd operation multi save bytes", zap.Any("kvs", kvs))
	return err
}

// Remove removes the key.
func (kv *EtcdKV) Remove(key string) error {
	start := time.Now()
	key = path.Join(kv.rootPath, key)

	_, err := kv.removeEtcdMeta(context.Background(), key)
	CheckElapseAndWarn(start, "Slow etcd operation remove", zap.String("key", key))
	return err
}

// MultiRemove removes the keys in a transaction.
func (kv *EtcdKV) MultiRemove(keys []string) error {
	start := time.Now()
	ops := make([]clientv3.Op, 0, len(keys))
	for _, key := range keys {
		ops = append(ops, clientv3.OpDelete(path.Join(kv.rootPath, key)))
	}

	_, err := kv.executeTxn(context.Background(), ops...)
	if err != nil {
		log.Warn("etcd kv MultiRemove error", zap.Strings("keys", keys), zap.Int("len", len(keys)), zap.Error(err))
	}
	CheckElapseAndWarn(start, "Slow etcd operation multi remove", zap.Strings("keys", keys))
	return err
}

// RemoveWithPrefix removes the keys under the prefix.
func (kv *EtcdKV) RemoveWithPrefix(prefix string) error {
	start := time.Now()
	key := path.Join(kv.rootPath, prefix)

	_, err := kv.removeEtcdMeta(context.Background(), key, clientv3.WithPrefix())
	CheckElapseAndWarn(start, "Slow etcd operation remove with prefix", zap.String("prefix", prefix))
	return err
}

// MultiRemoveWithPrefix removes the keys under every given prefix in a
// transaction.
func (kv *EtcdKV) MultiRemoveWithPrefix(prefixes []string) error {
	start := time.Now()
	ops := make([]clientv3.Op, 0, len(prefixes))
	for _, prefix := range prefixes {
		ops = append(ops, clientv3.OpDelete(path.Join(kv.rootPath, prefix), clientv3.WithPrefix()))
	}

	_, err := kv.executeTxn(context.Background(), ops...)
	if err != nil {
		log.Warn("etcd kv MultiRemoveWithPrefix error", zap.Strings("keys", prefixes), zap.Int("len", len(prefixes)), zap.Error(err))
	}
	CheckElapseAndWarn(start, "Slow etcd operation multi remove with prefix", zap.Strings("keys", prefixes))
	return err
}

// MultiSaveAndRemove saves the key-value pairs and removes the keys in a
// transaction.
func (kv *EtcdKV) MultiSaveAndRemove(saves map[string]string, removals []string) error {
	start := time.Now()

	CheckTnxStringValueSizeAndWarn(saves)
	ops := make([]clientv3.Op, 0, len(saves)+len(removals))
	for key, value := range saves {
		ops = append(ops, clientv3.OpPut(path.Join(kv.rootPath, key), value))
	}
	for _, key := range removals {
		ops = append(ops, clientv3.OpDelete(path.Join(kv.rootPath, key)))
	}

	_, err := kv.executeTxn(context.Background(), ops...)
	if err != nil {
		log.Warn("etcd kv MultiSaveAndRemove error",
			zap.Any("saves", saves),
			zap.Strings("removes", removals),
			zap.Int("saveLength", len(saves)),
			zap.Int("removeLength", len(removals)),
			zap.Error(err))
	}
	CheckElapseAndWarn(start, "Slow etcd operation multi save and remove", zap.Any("saves", saves), zap.Strings("removals", removals))
	return err
}

// MultiSaveBytesAndRemove saves the key-value pairs and removes the keys in
// a transaction.
func (kv *EtcdKV) MultiSaveBytesAndRemove(saves map[string][]byte, removals []string) error {
	start := time.Now()

	CheckTnxBytesValueSizeAndWarn(saves)
	ops := make([]clientv3.Op, 0, len(saves)+len(removals))
	for key, value := range saves {
		ops = append(ops, clientv3.OpPut(path.Join(kv.rootPath, key), string(value)))
	}
	for _, key := range removals {
		ops = append(ops, clientv3.OpDelete(path.Join(kv.rootPath, key)))
	}

	_, err := kv.executeTxn(context.Background(), ops...)
	if err != nil {
		log.Warn("etcd kv MultiSaveBytesAndRemove error",
			zap.Any("saves", saves),
			zap.Strings("removes", removals),
			zap.Int("saveLength", len(saves)),
			zap.Int("removeLength", len(removals)),
			zap.Error(err))
	}
	CheckElapseAndWarn(start, "Slow etcd operation multi save bytes and remove", zap.Any("saves", saves), zap.Strings("removals", removals))
	return err
}

// MultiSaveAndRemoveWithPrefix saves the key-value pairs and removes the
// given prefixes in a transaction.
func (kv *EtcdKV) MultiSaveAndRemoveWithPrefix(saves map[string]string, removals []string) error {
	start := time.Now()

	CheckTnxStringValueSizeAndWarn(saves)
	ops := make([]clientv3.Op, 0, len(saves)+len(removals))
	for key, value := range saves {
		ops = append(ops, clientv3.OpPut(path.Join(kv.rootPath, key), value))
	}
	for _, keyDelete := range removals {
		ops = append(ops, clientv3.OpDelete(path.Join(kv.rootPath, keyDelete), clientv3.WithPrefix()))
	}

	_, err := kv.executeTxn(context.Background(), ops...)
	if err != nil {
		log.Warn("etcd kv MultiSaveAndRemoveWithPrefix error",
			zap.Any("saves", saves),
			zap.Strings("removes", removals),
			zap.Int("saveLength", len(saves)),
			zap.Int("removeLength", len(removals)),
			zap.Error(err))
	}
	CheckElapseAndWarn(start, "Slow etcd operation multi save and remove with prefix", zap.Any("saves", saves), zap.Strings("removals", removals))
	return err
}

// MultiSaveBytesAndRemoveWithPrefix saves the key-value pairs and removes the
// given prefixes in a transaction.
func (kv *EtcdKV) MultiSaveBytesAndRemoveWithPrefix(saves map[string][]byte, removals []string) error {
	start := time.Now()

	CheckTnxBytesValueSizeAndWarn(saves)
	ops := make([]clientv3.Op, 0, len(saves)+len(removals))
	for key, value := range saves {
		ops = append(ops, clientv3.OpPut(path.Join(kv.rootPath, key), string(value)))
	}
	for _, keyDelete := range removals {
		ops = append(ops, clientv3.OpDelete(path.Join(kv.rootPath, keyDelete), clientv3.WithPrefix()))
	}

	_, err := kv.executeTxn(context.Background(), ops...)
	if err != nil {
		log.Warn("etcd kv MultiSaveBytesAndRemoveWithPrefix error",
			zap.Any("saves", saves),
			zap.Strings("removes", removals),
			zap.Int("saveLength", len(saves)),
			zap.Int("removeLength", len(removals)),
			zap.Error(err))
	}
	CheckElapseAndWarn(start, "Slow etcd operation multi save bytes and remove with prefix", zap.Any("saves", saves), zap.Strings("removals", removals))
	return err
}

// WalkWithPrefix visits each kv under the prefix in key order and applies fn
// to it, reading paginationSize entries per request. A non-positive
// paginationSize reads everything in one request.
func (kv *EtcdKV) WalkWithPrefix(prefix string, paginationSize int, fn func([]byte, []byte) error) error {
	start := time.Now()
	prefix = path.Join(kv.rootPath, prefix)

	batch := int64(paginationSize)
	if batch < 0 {
		batch = 0
	}
	opts := []clientv3.OpOption{
		clientv3.WithSort(clientv3.SortByKey, clientv3.SortAscend),
		clientv3.WithLimit(batch),
		clientv3.WithRange(clientv3.GetPrefixRangeEnd(prefix)),
	}

	key := prefix
	for {
		resp, err := kv.getEtcdMeta(context.Background(), key, opts...)
		if err != nil {
			return err
		}

		for _, kvpair := range resp.Kvs {
			if err = fn(kvpair.Key, kvpair.Value); err != nil {
				return err
			}
		}

		if !resp.More {
			break
		}
		// move to the next key
		key = string(append(resp.Kvs[len(resp.Kvs)-1].Key, 0))
	}

	CheckElapseAndWarn(start, "Slow etcd operation(WalkWithPagination)", zap.String("prefix", prefix))
	return nil
}

// CompareVersionAndSwap writes target only if the current version of the key
// matches. Version 0 matches a key that does not exist yet.
func (kv *EtcdKV) CompareVersionAndSwap(key string, version int64, target string) (bool, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), RequestTimeout)
	defer cancel()

	resp, err := kv.commitTxn(kv.client.Txn(ctx).If(
		clientv3.Compare(
			clientv3.Version(path.Join(kv.rootPath, key)),
			"=",
			version)).
		Then(clientv3.OpPut(path.Join(kv.rootPath, key), target)))
	if err != nil {
		return false, err
	}
	CheckElapseAndWarn(start, "Slow etcd operation compare version and swap", zap.String("key", key))
	return resp.Succeeded, nil
}

// CompareVersionAndSwapBytes is the bytes version of CompareVersionAndSwap.
func (kv *EtcdKV) CompareVersionAndSwapBytes(key string, version int64, target []byte, opts ...clientv3.OpOption) (bool, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), RequestTimeout)
	defer cancel()

	resp, err := kv.commitTxn(kv.client.Txn(ctx).If(
		clientv3.Compare(
			clientv3.Version(path.Join(kv.rootPath, key)),
			"=",
			version)).
		Then(clientv3.OpPut(path.Join(kv.rootPath, key), string(target), opts...)))
	if err != nil {
		return false, err
	}
	CheckElapseAndWarn(start, "Slow etcd operation compare version and swap bytes", zap.String("key", key))
	return resp.Succeeded, nil
}

// Watch starts watching the key and returns the event channel. The first
// response on the channel acknowledges the watch creation.
func (kv *EtcdKV) Watch(key string) clientv3.WatchChan {
	key = path.Join(kv.rootPath, key)
	rch := kv.client.Watch(context.Background(), key, clientv3.WithCreatedNotify())
	return rch
}

// WatchWithPrefix starts watching every key under the prefix.
func (kv *EtcdKV) WatchWithPrefix(key string) clientv3.WatchChan {
	key = path.Join(kv.rootPath, key)
	rch := kv.client.Watch(context.Background(), key, clientv3.WithPrefix(), clientv3.WithCreatedNotify())
	return rch
}

// WatchWithRevision starts watching every key under the prefix from the
// given store revision.
func (kv *EtcdKV) WatchWithRevision(key string, revision int64) clientv3.WatchChan {
	key = path.Join(kv.rootPath, key)
	rch := kv.client.Watch(context.Background(), key, clientv3.WithPrefix(), clientv3.WithRev(revision))
	return rch
}

func (kv *EtcdKV) getEtcdMeta(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error) {
	ctx1, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	start := timerecord.NewTimeRecorder("getEtcdMeta")
	resp, err := kv.client.Get(ctx1, key, opts...)
	elapsed := start.ElapseSpan()
	metrics.MetaOpCounter.WithLabelValues(metrics.MetaGetLabel, metrics.TotalLabel).Inc()

	if err == nil && resp != nil {
		totalSize := 0
		for _, v := range resp.Kvs {
			totalSize += binary.Size(v.Value)
		}
		metrics.MetaKvSize.WithLabelValues(metrics.MetaGetLabel).Observe(float64(totalSize))
		metrics.MetaRequestLatency.WithLabelValues(metrics.MetaGetLabel).Observe(float64(elapsed.Milliseconds()))
		metrics.MetaOpCounter.WithLabelValues(metrics.MetaGetLabel, metrics.SuccessLabel).Inc()
	} else {
		metrics.MetaOpCounter.WithLabelValues(metrics.MetaGetLabel, metrics.FailLabel).Inc()
	}
	return resp, err
}

func (kv *EtcdKV) putEtcdMeta(ctx context.Context, key, val string, opts ...clientv3.OpOption) (*clientv3.PutResponse, error) {
	ctx1, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	start := timerecord.NewTimeRecorder("putEtcdMeta")
	resp, err := kv.client.Put(ctx1, key, val, opts...)
	elapsed := start.ElapseSpan()
	metrics.MetaOpCounter.WithLabelValues(metrics.MetaPutLabel, metrics.TotalLabel).Inc()

	if err == nil {
		metrics.MetaKvSize.WithLabelValues(metrics.MetaPutLabel).Observe(float64(len(val)))
		metrics.MetaRequestLatency.WithLabelValues(metrics.MetaPutLabel).Observe(float64(elapsed.Milliseconds()))
		metrics.MetaOpCounter.WithLabelValues(metrics.MetaPutLabel, metrics.SuccessLabel).Inc()
	} else {
		metrics.MetaOpCounter.WithLabelValues(metrics.MetaPutLabel, metrics.FailLabel).Inc()
	}
	return resp, err
}

func (kv *EtcdKV) removeEtcdMeta(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.DeleteResponse, error) {
	ctx1, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	start := timerecord.NewTimeRecorder("removeEtcdMeta")
	resp, err := kv.client.Delete(ctx1, key, opts...)
	elapsed := start.ElapseSpan()
	metrics.MetaOpCounter.WithLabelValues(metrics.MetaRemoveLabel, metrics.TotalLabel).Inc()

	if err == nil {
		metrics.MetaRequestLatency.WithLabelValues(metrics.MetaRemoveLabel).Observe(float64(elapsed.Milliseconds()))
		metrics.MetaOpCounter.WithLabelValues(metrics.MetaRemoveLabel, metrics.SuccessLabel).Inc()
	} else {
		metrics.MetaOpCounter.WithLabelValues(metrics.MetaRemoveLabel, metrics.FailLabel).Inc()
	}
	return resp, err
}

func (kv *EtcdKV) executeTxn(ctx context.Context, ops ...clientv3.Op) (*clientv3.TxnResponse, error) {
	ctx1, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()
	return kv.commitTxn(kv.client.Txn(ctx1).Then(ops...))
}

func (kv *EtcdKV) commitTxn(tx clientv3.Txn) (*clientv3.TxnResponse, error) {
	start := timerecord.NewTimeRecorder("commitTxn")
	metrics.MetaOpCounter.WithLabelValues(metrics.MetaTxnLabel, metrics.TotalLabel).Inc()

	resp, err := tx.Commit()
	if err == nil && resp.Succeeded {
		metrics.MetaRequestLatency.WithLabelValues(metrics.MetaTxnLabel).Observe(float64(start.ElapseSpan().Milliseconds()))
		metrics.MetaOpCounter.WithLabelValues(metrics.MetaTxnLabel, metrics.SuccessLabel).Inc()
	} else {
		metrics.MetaOpCounter.WithLabelValues(metrics.MetaTxnLabel, metrics.FailLabel).Inc()
	}
	return resp, err
}

// CheckElapseAndWarn checks the elapsed time and warns if it is too long.
func CheckElapseAndWarn(start time.Time, message string, fields ...zap.Field) bool {
	elapsed := time.Since(start)
	if elapsed.Milliseconds() > 2000 {
		log.Warn(message, append([]zap.Field{zap.String("time spent", elapsed.String())}, fields...)...)
		return true
	}
	return false
}

// CheckValueSizeAndWarn warns when a single value is larger than 100kb.
func CheckValueSizeAndWarn(key string, value interface{}) bool {
	size := binary.Size(value)
	if size > 100*1024 {
		log.Warn("value size large than 100kb", zap.String("key", key), zap.Int("value_size(kb)", size/1024))
		return true
	}
	return false
}

// CheckTnxBytesValueSizeAndWarn warns when any value of the transaction is
// larger than 100kb.
func CheckTnxBytesValueSizeAndWarn(kvs map[string][]byte) bool {
	var hasWarn bool
	for key, value := range kvs {
		if CheckValueSizeAndWarn(key, value) {
			hasWarn = true
		}
	}
	return hasWarn
}

// CheckTnxStringValueSizeAndWarn warns when any value of the transaction is
// larger than 100kb.
func CheckTnxStringValueSizeAndWarn(kvs map[string]string) bool {
	newKvs := make(map[string][]byte, len(kvs))
	for key, value := range kvs {
		newKvs[key] = []byte(value)
	}
	return CheckTnxBytesValueSizeAndWarn(newKvs)
}

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

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/atomic"

	"github.com/glacierdb/glacierdb/pkg/config"
	"github.com/glacierdb/glacierdb/pkg/util/funcutil"
)

type ParamItem struct {
	Key          string // which should be named as "x.y.z"
	Version      string
	Doc          string
	DefaultValue string
	FallbackKeys []string
	PanicIfEmpty bool
	Export       bool

	Formatter func(originValue string) string
	Forbidden bool

	manager *config.Manager

	// for unittest
	tempValue atomic.Pointer[string]
}

func (pi *ParamItem) Init(manager *config.Manager) {
	pi.manager = manager
	if pi.Forbidden {
		pi.manager.ForbidUpdate(pi.Key)
	}
}

// get returns the raw value after fallbacks and formatting.
func (pi *ParamItem) get() (string, error) {
	// for unittest
	if s := pi.tempValue.Load(); s != nil {
		return *s, nil
	}

	if pi.manager == nil {
		panic(fmt.Sprintf("manager is nil %s", pi.Key))
	}
	ret, err := pi.manager.GetConfig(pi.Key)
	if err != nil {
		for _, key := range pi.FallbackKeys {
			ret, err = pi.manager.GetConfig(key)
			if err == nil {
				break
			}
		}
	}
	if err != nil {
		ret = pi.DefaultValue
	}
	if pi.Formatter != nil {
		ret = pi.Formatter(ret)
	}
	if ret == "" && pi.PanicIfEmpty {
		panic(fmt.Sprintf("%s is empty", pi.Key))
	}
	return ret, err
}

// SwapTempValue swaps the value of this ParamItem for unittest.
// Once set, ParamItem returns it instead of consulting the config manager,
// swapping an empty string removes the override.
func (pi *ParamItem) SwapTempValue(s string) *string {
	if s == "" {
		return pi.tempValue.Swap(nil)
	}
	pi.manager.EvictCachedValue(pi.Key)
	return pi.tempValue.Swap(&s)
}

func (pi *ParamItem) GetValue() string {
	v, _ := pi.get()
	return v
}

func (pi *ParamItem) GetAsStrings() []string {
	if val, exist := pi.manager.GetCachedValue(pi.Key); exist {
		if strs, ok := val.([]string); ok {
			return strs
		}
	}
	realStrs := getAsStrings(pi.GetValue())
	pi.manager.CASCachedValue(pi.Key, pi.GetValue(), realStrs)
	return realStrs
}

func (pi *ParamItem) GetAsBool() bool {
	if val, exist := pi.manager.GetCachedValue(pi.Key); exist {
		if boolVal, ok := val.(bool); ok {
			return boolVal
		}
	}
	boolVal := getAsBool(pi.GetValue())
	pi.manager.CASCachedValue(pi.Key, pi.GetValue(), boolVal)
	return boolVal
}

func (pi *ParamItem) GetAsInt() int {
	if val, exist := pi.manager.GetCachedValue(pi.Key); exist {
		if intVal, ok := val.(int); ok {
			return intVal
		}
	}
	intVal := getAsInt(pi.GetValue())
	pi.manager.CASCachedValue(pi.Key, pi.GetValue(), intVal)
	return intVal
}

func (pi *ParamItem) GetAsInt32() int32 {
	if val, exist := pi.manager.GetCachedValue(pi.Key); exist {
		if int32Val, ok := val.(int32); ok {
			return int32Val
		}
	}
	int32Val := int32(getAsInt64(pi.GetValue()))
	pi.manager.CASCachedValue(pi.Key, pi.GetValue(), int32Val)
	return int32Val
}

func (pi *ParamItem) GetAsInt64() int64 {
	if val, exist := pi.manager.GetCachedValue(pi.Key); exist {
		if int64Val, ok := val.(int64); ok {
			return int64Val
		}
	}
	int64Val := getAsInt64(pi.GetValue())
	pi.manager.CASCachedValue(pi.Key, pi.GetValue(), int64Val)
	return int64Val
}

func (pi *ParamItem) GetAsUint() uint {
	if val, exist := pi.manager.GetCachedValue(pi.Key); exist {
		if uintVal, ok := val.(uint); ok {
			return uintVal
		}
	}
	uintVal := uint(getAsUint64(pi.GetValue()))
	pi.manager.CASCachedValue(pi.Key, pi.GetValue(), uintVal)
	return uintVal
}

func (pi *ParamItem) GetAsUint64() uint64 {
	if val, exist := pi.manager.GetCachedValue(pi.Key); exist {
		if uint64Val, ok := val.(uint64); ok {
			return uint64Val
		}
	}
	uint64Val := getAsUint64(pi.GetValue())
	pi.manager.CASCachedValue(pi.Key, pi.GetValue(), uint64Val)
	return uint64Val
}

func (pi *ParamItem) GetAsFloat() float64 {
	if val, exist := pi.manager.GetCachedValue(pi.Key); exist {
		if floatVal, ok := val.(float64); ok {
			return floatVal
		}
	}
	floatVal := getAsFloat(pi.GetValue())
	pi.manager.CASCachedValue(pi.Key, pi.GetValue(), floatVal)
	return floatVal
}

// GetAsDuration returns the value as a duration, a plain number is read in
// the given unit.
func (pi *ParamItem) GetAsDuration(unit time.Duration) time.Duration {
	if val, exist := pi.manager.GetCachedValue(pi.Key); exist {
		if durationVal, ok := val.(time.Duration); ok {
			return durationVal
		}
	}
	v := pi.GetValue()
	durationVal := getAsDuration(v, unit)
	pi.manager.CASCachedValue(pi.Key, v, durationVal)
	return durationVal
}

// GetAsDurationByParse only accepts duration strings like "3s" or "1h30m".
func (pi *ParamItem) GetAsDurationByParse() time.Duration {
	if val, exist := pi.manager.GetCachedValue(pi.Key); exist {
		if durationVal, ok := val.(time.Duration); ok {
			return durationVal
		}
	}
	v := pi.GetValue()
	durationVal, err := time.ParseDuration(v)
	if err != nil {
		durationVal = 0
	}
	pi.manager.CASCachedValue(pi.Key, v, durationVal)
	return durationVal
}

// GetAsSize returns the value in bytes, numeric suffixes like kb, mb and gb
// are supported.
func (pi *ParamItem) GetAsSize() int64 {
	if val, exist := pi.manager.GetCachedValue(pi.Key); exist {
		if sizeVal, ok := val.(int64); ok {
			return sizeVal
		}
	}
	v := pi.GetValue()
	sizeVal := getAsSize(v)
	pi.manager.CASCachedValue(pi.Key, v, sizeVal)
	return sizeVal
}

func (pi *ParamItem) GetAsJSONMap() map[string]string {
	m, err := funcutil.JSONToMap(pi.GetValue())
	if err != nil {
		return nil
	}
	return m
}

func getAsStrings(v string) []string {
	if v == "" {
		return []string{}
	}
	items := strings.Split(v, ",")
	ret := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			ret = append(ret, trimmed)
		}
	}
	return ret
}

func getAsBool(v string) bool {
	boolVal, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return boolVal
}

func getAsInt(v string) int {
	intVal, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return intVal
}

func getAsInt64(v string) int64 {
	int64Val, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return int64Val
}

func getAsUint64(v string) uint64 {
	uint64Val, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0
	}
	return uint64Val
}

func getAsFloat(v string) float64 {
	floatVal, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return floatVal
}

func getAsDuration(v string, unit time.Duration) time.Duration {
	value, err := strconv.ParseFloat(v, 64)
	if err != nil {
		duration, err := time.ParseDuration(v)
		if err != nil {
			return 0
		}
		return duration
	}
	return time.Duration(value * float64(unit))
}

var sizeUnits = []struct {
	suffix string
	factor int64
}{
	{"tb", 1 << 40}, {"t", 1 << 40},
	{"gb", 1 << 30}, {"g", 1 << 30},
	{"mb", 1 << 20}, {"m", 1 << 20},
	{"kb", 1 << 10}, {"k", 1 << 10},
	{"b", 1},
}

func getAsSize(v string) int64 {
	sizeStr := strings.ToLower(strings.TrimSpace(v))
	for _, unit := range sizeUnits {
		if num, ok := strings.CutSuffix(sizeStr, unit.suffix); ok {
			value, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
			if err != nil {
				return 0
			}
			return int64(value * float64(unit.factor))
		}
	}
	return getAsInt64(sizeStr)
}

// CompositeParamItem is a compositions of multiple ParamItem
type CompositeParamItem struct {
	Items  []*ParamItem
	Format func(map[string]string) string
}

func (cpi *CompositeParamItem) GetValue() string {
	kvs := make(map[string]string, len(cpi.Items))
	for _, v := range cpi.Items {
		kvs[v.Key] = v.GetValue()
	}
	return cpi.Format(kvs)
}

// ParamGroup mounts a prefix of related configs, the whole subtree is
// returned as a map.
type ParamGroup struct {
	KeyPrefix string // which should be named as "x.y."
	Version   string
	Doc       string
	Export    bool

	GetFunc func() map[string]string

	manager *config.Manager
}

func (pg *ParamGroup) Init(manager *config.Manager) {
	pg.manager = manager
}

func (pg *ParamGroup) GetValue() map[string]string {
	if pg.GetFunc != nil {
		return pg.GetFunc()
	}
	values := pg.manager.GetBy(config.WithPrefix(strings.ToLower(pg.KeyPrefix)), config.RemovePrefix(strings.ToLower(pg.KeyPrefix)))
	return values
}

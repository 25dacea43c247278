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

package logutil

import (
	"sync"

	"go.uber.org/zap"

	"github.com/glacierdb/glacierdb/pkg/log"
)

var once sync.Once

// SetupLogger initializes the global logger with config. Repeated calls are
// no-ops, reconfiguration goes through log.ReplaceGlobals.
func SetupLogger(cfg *log.Config) {
	once.Do(func() {
		logger, p, err := log.InitLogger(cfg, zap.AddStacktrace(zap.ErrorLevel))
		if err == nil {
			log.ReplaceGlobals(logger, p)
		} else {
			log.Fatal("initialize logger error", zap.Error(err))
		}
	})
}

// LogPanic logs the panic reason and rethrows. Use as a deferred call on
// goroutine entry points.
func LogPanic() {
	if e := recover(); e != nil {
		log.Error("panic", zap.Reflect("recover", e))
		panic(e)
	}
}

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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/glacierdb/glacierdb/pkg/log"
)

func TestSetupLogger(t *testing.T) {
	SetupLogger(&log.Config{Level: "info", DisableTimestamp: true})
	assert.NotPanics(t, func() {
		log.Info("logger ready")
	})
	// repeated setup is a no-op
	SetupLogger(&log.Config{Level: "debug"})
}

func TestLogPanicRethrows(t *testing.T) {
	defer func() {
		assert.NotNil(t, recover())
	}()
	defer LogPanic()
	panic("boom")
}

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

package healthz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeIndicator struct {
	name string
	code StateCode
}

func (in *fakeIndicator) GetName() string {
	return in.name
}

func (in *fakeIndicator) Health(_ context.Context) StateCode {
	return in.code
}

func TestHealthzHandler(t *testing.T) {
	coord := &fakeIndicator{name: "lakecoord", code: StateCodeHealthy}
	Register(coord)
	defer UnRegister(coord.name)

	t.Run("text ok", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		w := httptest.NewRecorder()
		Handler().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "OK", w.Body.String())
	})

	t.Run("json ok", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set(ContentTypeHeader, ContentTypeJSON)
		w := httptest.NewRecorder()
		Handler().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, ContentTypeJSON, w.Header().Get(ContentTypeHeader))
		assert.Contains(t, w.Body.String(), `"state":"OK"`)
		assert.Contains(t, w.Body.String(), `"lakecoord"`)
	})

	t.Run("standby counts as healthy", func(t *testing.T) {
		standby := &fakeIndicator{name: "standby-coord", code: StateCodeStandBy}
		Register(standby)
		defer UnRegister(standby.name)

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		w := httptest.NewRecorder()
		Handler().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("abnormal component degrades state", func(t *testing.T) {
		sick := &fakeIndicator{name: "computenode-7", code: StateCodeAbnormal}
		Register(sick)
		defer UnRegister(sick.name)

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set(ContentTypeHeader, ContentTypeJSON)
		w := httptest.NewRecorder()
		Handler().ServeHTTP(w, req)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "Not all components are healthy, 1/2")
	})

	t.Run("unregister unknown is tolerated", func(t *testing.T) {
		UnRegister("never-registered")
	})
}

func TestStateCodeString(t *testing.T) {
	assert.Equal(t, "Healthy", StateCodeHealthy.String())
	assert.Equal(t, "Abnormal", StateCodeAbnormal.String())
	assert.Equal(t, "StateCode(42)", StateCode(42).String())
}

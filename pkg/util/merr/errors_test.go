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

package merr

import (
	"context"
	"os"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/suite"
)

type ErrSuite struct {
	suite.Suite
}

func (s *ErrSuite) TestCode() {
	err := WrapErrWarehouseNotFound("wh_test")
	errors.Wrap(err, "failed to get warehouse")
	s.ErrorIs(err, ErrWarehouseNotFound)
	s.Equal(Code(ErrWarehouseNotFound), Code(err))
	s.Equal(TimeoutCode, Code(context.DeadlineExceeded))
	s.Equal(CanceledCode, Code(context.Canceled))
	s.Equal(errUnexpected.errCode, Code(errUnexpected))

	sameCodeErr := newGlacierError("new error", ErrWarehouseNotFound.errCode, false)
	s.True(sameCodeErr.Is(ErrWarehouseNotFound))
}

func (s *ErrSuite) TestRetryable() {
	s.True(IsRetryableErr(ErrServiceNotReady))
	s.True(IsRetryableErr(WrapErrNoAliveNodeInWarehouse("default_warehouse")))
	s.True(IsRetryableErr(WrapErrCompactionTxnBegin("p1", os.ErrClosed)))
	s.False(IsRetryableErr(ErrWarehouseNotFound))
	s.False(IsRetryableErr(WrapErrParameterInvalid("positive", "-1")))
}

func (s *ErrSuite) TestWrap() {
	// Service related
	s.ErrorIs(WrapErrServiceNotReady("lakecoord", "init", "test init..."), ErrServiceNotReady)
	s.ErrorIs(WrapErrServiceUnavailable("test", "test init"), ErrServiceUnavailable)
	s.ErrorIs(WrapErrServiceInternal("never throw out"), ErrServiceInternal)

	// Catalog related
	s.ErrorIs(WrapErrDatabaseNotFound(1, "failed to get database"), ErrDatabaseNotFound)
	s.ErrorIs(WrapErrTableNotFound(2, "failed to get table"), ErrTableNotFound)
	s.ErrorIs(WrapErrPartitionNotFound(3, "failed to get partition"), ErrPartitionNotFound)

	// Warehouse related
	s.ErrorIs(WrapErrWarehouseNotFound("wh_a", "failed to get warehouse"), ErrWarehouseNotFound)
	s.ErrorIs(WrapErrWarehouseNotFound(int64(17), "failed to get warehouse by id"), ErrWarehouseNotFound)
	s.ErrorIs(WrapErrWarehouseAlreadyExist("wh_a", "failed to create"), ErrWarehouseAlreadyExist)
	s.ErrorIs(WrapErrWarehouseReserved("default_warehouse"), ErrWarehouseReserved)
	s.ErrorIs(WrapErrNoAliveNodeInWarehouse("wh_a", "failed to pick node"), ErrNoAliveNodeInWarehouse)
	s.ErrorIs(WrapErrWorkerGroupNotFound(int64(0), "failed to resolve group"), ErrWorkerGroupNotFound)

	// Node related
	s.ErrorIs(WrapErrNodeNotFound(1, "failed to get node"), ErrNodeNotFound)
	s.ErrorIs(WrapErrNodeOffline(1, "failed to access node"), ErrNodeOffline)

	// Shard placement related
	s.ErrorIs(WrapErrShardPlacement(100, os.ErrClosed, "failed to resolve shard"), ErrShardPlacement)
	s.ErrorIs(WrapErrShardNotFound(100, "failed to get shard"), ErrShardNotFound)

	// Compaction related
	s.ErrorIs(WrapErrCompactionTxnBegin("1.2.3", os.ErrClosed), ErrCompactionTxnBegin)
	s.ErrorIs(WrapErrCompactionDispatch("1.2.3", os.ErrClosed, "node %d", 7), ErrCompactionDispatch)
	s.ErrorIs(WrapErrCompactionJobRunning("1.2.3"), ErrCompactionJobRunning)
	s.ErrorIs(WrapErrCompactionTableDisabled(23456), ErrCompactionTableDisabled)

	// IO related
	s.ErrorIs(WrapErrIoKeyNotFound("test_key", "failed to read"), ErrIoKeyNotFound)
	s.ErrorIs(WrapErrIoFailed("test_key", os.ErrClosed), ErrIoFailed)

	// Parameter related
	s.ErrorIs(WrapErrParameterInvalid(8, 1, "failed to create"), ErrParameterInvalid)
	s.ErrorIs(WrapErrParameterInvalidMsg("table id %q is not a number", "abc"), ErrParameterInvalid)

	// Metrics related
	s.ErrorIs(WrapErrMetricNotFound("unknown", "failed to get metric"), ErrMetricNotFound)
}

func (s *ErrSuite) TestCombine() {
	var (
		errFirst  = errors.New("first")
		errSecond = errors.New("second")
		errThird  = errors.New("third")
	)

	err := Combine(errFirst, errSecond)
	s.True(errors.Is(err, errFirst))
	s.True(errors.Is(err, errSecond))
	s.False(errors.Is(err, errThird))

	s.Equal("first: second", err.Error())
}

func (s *ErrSuite) TestCombineWithNil() {
	err := errors.New("non-nil")

	err = Combine(nil, err)
	s.NotNil(err)
}

func (s *ErrSuite) TestCombineOnlyNil() {
	err := Combine(nil, nil)
	s.Nil(err)
}

func (s *ErrSuite) TestCombineCode() {
	err := Combine(WrapErrPartitionNotFound(10), WrapErrWarehouseNotFound("wh"))
	s.Equal(Code(ErrWarehouseNotFound), Code(err))
}

func TestErrors(t *testing.T) {
	suite.Run(t, new(ErrSuite))
}

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
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

const (
	retryableFlag       = 1 << 16
	CanceledCode  int32 = 10000
	TimeoutCode   int32 = 10001
)

// Define leaf errors here,
// WARN: take care to add new error,
// check whether you can use the errors below before adding a new one.
// Name: Err + related prefix + error name
var (
	// Service related
	ErrServiceNotReady      = newGlacierError("service not ready", 1, true) // This indicates the service is still in init
	ErrServiceUnavailable   = newGlacierError("service unavailable", 2, true)
	ErrServiceInternal      = newGlacierError("service internal error", 3, false) // Never return this error out of GlacierDB
	ErrServiceUnimplemented = newGlacierError("service unimplemented", 4, false)

	// Database related
	ErrDatabaseNotFound = newGlacierError("database not found", 100, false)

	// Table related
	ErrTableNotFound = newGlacierError("table not found", 200, false)

	// Partition related
	ErrPartitionNotFound = newGlacierError("partition not found", 300, false)

	// Warehouse related
	ErrWarehouseNotFound      = newGlacierError("warehouse not found", 400, false)
	ErrWarehouseAlreadyExist  = newGlacierError("warehouse already exist", 401, false)
	ErrWarehouseReserved      = newGlacierError("warehouse is reserved", 402, false)
	ErrNoAliveNodeInWarehouse = newGlacierError("no alive node in warehouse", 403, true)
	ErrWorkerGroupNotFound    = newGlacierError("worker group not found", 404, false)

	// Node related
	ErrNodeNotFound = newGlacierError("node not found", 500, false)
	ErrNodeOffline  = newGlacierError("node offline", 501, false)

	// Shard placement related
	ErrShardPlacement = newGlacierError("shard placement failed", 600, true)
	ErrShardNotFound  = newGlacierError("shard not found", 601, false)

	// Compaction related
	ErrCompactionTxnBegin      = newGlacierError("begin compaction transaction failed", 700, true)
	ErrCompactionDispatch      = newGlacierError("dispatch compaction task failed", 701, true)
	ErrCompactionJobRunning    = newGlacierError("compaction job already running", 702, false)
	ErrCompactionTableDisabled = newGlacierError("compaction disabled for table", 703, false)

	// IO related
	ErrIoKeyNotFound = newGlacierError("key not found", 1000, false)
	ErrIoFailed      = newGlacierError("IO failed", 1001, false)

	// Parameter related
	ErrParameterInvalid = newGlacierError("invalid parameter", 1100, false)

	// Metrics related
	ErrMetricNotFound = newGlacierError("metric not found", 1200, false)

	// Do NOT export this,
	// never allow programmer using this, keep only for converting unknown error to glacierError
	errUnexpected = newGlacierError("unexpected error", (1<<16)-1, false)
)

type glacierError struct {
	msg     string
	errCode int32
}

func newGlacierError(msg string, code int32, retriable bool) glacierError {
	if retriable {
		code |= retryableFlag
	}
	return glacierError{
		msg:     msg,
		errCode: code,
	}
}

func (e glacierError) code() int32 {
	return e.errCode
}

func (e glacierError) Error() string {
	return e.msg
}

func (e glacierError) Is(err error) bool {
	cause := errors.Cause(err)
	if cause, ok := cause.(glacierError); ok {
		return e.errCode == cause.errCode
	}
	return false
}

type multiErrors struct {
	errs []error
}

func (e multiErrors) Unwrap() error {
	if len(e.errs) <= 1 {
		return nil
	}
	// To make merr work for multi errors,
	// we need cause of multi errors, which defined as the last error
	if len(e.errs) == 2 {
		return e.errs[1]
	}

	return multiErrors{
		errs: e.errs[1:],
	}
}

func (e multiErrors) Error() string {
	final := e.errs[0]
	for i := 1; i < len(e.errs); i++ {
		final = errors.Wrap(e.errs[i], final.Error())
	}
	return final.Error()
}

func (e multiErrors) Is(err error) bool {
	for _, item := range e.errs {
		if errors.Is(item, err) {
			return true
		}
	}
	return false
}

func Combine(errs ...error) error {
	errs = lo.Filter(errs, func(err error, _ int) bool { return err != nil })
	if len(errs) == 0 {
		return nil
	}
	return multiErrors{
		errs,
	}
}

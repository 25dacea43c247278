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
	"fmt"

	"github.com/cockroachdb/errors"
)

// Code returns the error code of the given error,
// WARN: DO NOT use this for now
func Code(err error) int32 {
	if err == nil {
		return 0
	}

	cause := errors.Cause(err)
	switch cause := cause.(type) {
	case glacierError:
		return cause.code()

	default:
		if errors.Is(cause, context.Canceled) {
			return CanceledCode
		} else if errors.Is(cause, context.DeadlineExceeded) {
			return TimeoutCode
		} else {
			return errUnexpected.code()
		}
	}
}

func IsRetryableErr(err error) bool {
	return Code(err)&retryableFlag != 0
}

func IsCanceledOrTimeout(err error) bool {
	return errors.IsAny(err, context.Canceled, context.DeadlineExceeded)
}

type errorField interface {
	String() string
}

type valueField struct {
	name  string
	value any
}

func value(name string, value any) valueField {
	return valueField{name, value}
}

func (f valueField) String() string {
	return fmt.Sprintf("%s=%v", f.name, f.value)
}

func wrapFields(err glacierError, fields ...errorField) glacierError {
	for i := range fields {
		err.msg += fmt.Sprintf("[%s]", fields[i].String())
	}
	return err
}

// appendMsg wraps the error with an extra message,
// the first element of msgAndArgs is treated as a format string when more follow.
func appendMsg(err error, msgAndArgs ...any) error {
	if len(msgAndArgs) == 0 {
		return err
	}
	msg, ok := msgAndArgs[0].(string)
	if !ok {
		return errors.Wrapf(err, "%v", msgAndArgs[0])
	}
	if len(msgAndArgs) == 1 {
		return errors.Wrap(err, msg)
	}
	return errors.Wrapf(err, msg, msgAndArgs[1:]...)
}

// Service related

func WrapErrServiceNotReady(role string, stage string, msgAndArgs ...any) error {
	err := wrapFields(ErrServiceNotReady,
		value("role", role),
		value("stage", stage),
	)
	return appendMsg(error(err), msgAndArgs...)
}

func WrapErrServiceUnavailable(reason string, msgAndArgs ...any) error {
	err := wrapFields(ErrServiceUnavailable, value("reason", reason))
	return appendMsg(error(err), msgAndArgs...)
}

func WrapErrServiceInternal(msg string, msgAndArgs ...any) error {
	msg = fmt.Sprintf("%s[%v]", ErrServiceInternal.msg, msg)
	err := glacierError{msg: msg, errCode: ErrServiceInternal.errCode}
	return appendMsg(error(err), msgAndArgs...)
}

// Database related

func WrapErrDatabaseNotFound(database any, msgAndArgs ...any) error {
	err := wrapFields(ErrDatabaseNotFound, value("database", database))
	return appendMsg(error(err), msgAndArgs...)
}

// Table related

func WrapErrTableNotFound(table any, msgAndArgs ...any) error {
	err := wrapFields(ErrTableNotFound, value("table", table))
	return appendMsg(error(err), msgAndArgs...)
}

// Partition related

func WrapErrPartitionNotFound(partition any, msgAndArgs ...any) error {
	err := wrapFields(ErrPartitionNotFound, value("partition", partition))
	return appendMsg(error(err), msgAndArgs...)
}

// Warehouse related

func WrapErrWarehouseNotFound(warehouse any, msgAndArgs ...any) error {
	err := wrapFields(ErrWarehouseNotFound, value("warehouse", warehouse))
	return appendMsg(error(err), msgAndArgs...)
}

func WrapErrWarehouseAlreadyExist(warehouse any, msgAndArgs ...any) error {
	err := wrapFields(ErrWarehouseAlreadyExist, value("warehouse", warehouse))
	return appendMsg(error(err), msgAndArgs...)
}

func WrapErrWarehouseReserved(warehouse any, msgAndArgs ...any) error {
	err := wrapFields(ErrWarehouseReserved, value("warehouse", warehouse))
	return appendMsg(error(err), msgAndArgs...)
}

func WrapErrNoAliveNodeInWarehouse(warehouseName string, msgAndArgs ...any) error {
	err := wrapFields(ErrNoAliveNodeInWarehouse, value("warehouse", warehouseName))
	return appendMsg(error(err), msgAndArgs...)
}

func WrapErrWorkerGroupNotFound(group any, msgAndArgs ...any) error {
	err := wrapFields(ErrWorkerGroupNotFound, value("group", group))
	return appendMsg(error(err), msgAndArgs...)
}

// Node related

func WrapErrNodeNotFound(id int64, msgAndArgs ...any) error {
	err := wrapFields(ErrNodeNotFound, value("node", id))
	return appendMsg(error(err), msgAndArgs...)
}

func WrapErrNodeOffline(id int64, msgAndArgs ...any) error {
	err := wrapFields(ErrNodeOffline, value("node", id))
	return appendMsg(error(err), msgAndArgs...)
}

// Shard placement related

func WrapErrShardPlacement(shardID int64, err error, msgAndArgs ...any) error {
	wrapped := wrapFields(ErrShardPlacement, value("shard", shardID))
	if err != nil {
		return appendMsg(errors.Wrap(error(wrapped), err.Error()), msgAndArgs...)
	}
	return appendMsg(error(wrapped), msgAndArgs...)
}

func WrapErrShardNotFound(shardID int64, msgAndArgs ...any) error {
	err := wrapFields(ErrShardNotFound, value("shard", shardID))
	return appendMsg(error(err), msgAndArgs...)
}

// Compaction related

func WrapErrCompactionTxnBegin(partition any, err error, msgAndArgs ...any) error {
	wrapped := wrapFields(ErrCompactionTxnBegin, value("partition", partition))
	if err != nil {
		return appendMsg(errors.Wrap(error(wrapped), err.Error()), msgAndArgs...)
	}
	return appendMsg(error(wrapped), msgAndArgs...)
}

func WrapErrCompactionDispatch(partition any, err error, msgAndArgs ...any) error {
	wrapped := wrapFields(ErrCompactionDispatch, value("partition", partition))
	if err != nil {
		return appendMsg(errors.Wrap(error(wrapped), err.Error()), msgAndArgs...)
	}
	return appendMsg(error(wrapped), msgAndArgs...)
}

func WrapErrCompactionJobRunning(partition any, msgAndArgs ...any) error {
	err := wrapFields(ErrCompactionJobRunning, value("partition", partition))
	return appendMsg(error(err), msgAndArgs...)
}

func WrapErrCompactionTableDisabled(tableID int64, msgAndArgs ...any) error {
	err := wrapFields(ErrCompactionTableDisabled, value("table", tableID))
	return appendMsg(error(err), msgAndArgs...)
}

// IO related

func WrapErrIoKeyNotFound(key string, msgAndArgs ...any) error {
	err := wrapFields(ErrIoKeyNotFound, value("key", key))
	return appendMsg(error(err), msgAndArgs...)
}

func WrapErrIoFailed(key string, err error, msgAndArgs ...any) error {
	wrapped := wrapFields(ErrIoFailed, value("key", key))
	if err != nil {
		return appendMsg(errors.Wrap(error(wrapped), err.Error()), msgAndArgs...)
	}
	return appendMsg(error(wrapped), msgAndArgs...)
}

// Parameter related

func WrapErrParameterInvalid[T any](expected, actual T, msgAndArgs ...any) error {
	err := wrapFields(ErrParameterInvalid,
		value("expected", expected),
		value("actual", actual),
	)
	return appendMsg(error(err), msgAndArgs...)
}

func WrapErrParameterInvalidMsg(fmtStr string, args ...any) error {
	return errors.Wrapf(ErrParameterInvalid, fmtStr, args...)
}

// Metrics related

func WrapErrMetricNotFound(name string, msgAndArgs ...any) error {
	err := wrapFields(ErrMetricNotFound, value("metric", name))
	return appendMsg(error(err), msgAndArgs...)
}

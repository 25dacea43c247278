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

package timerecord

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/glacierdb/glacierdb/pkg/log"
)

// TimeRecorder provides methods to record time duration
type TimeRecorder struct {
	header string
	start  time.Time
	last   time.Time
}

// NewTimeRecorder creates a new TimeRecorder
func NewTimeRecorder(header string) *TimeRecorder {
	now := time.Now()
	return &TimeRecorder{
		header: header,
		start:  now,
		last:   now,
	}
}

// RecordSpan returns the duration from last record
func (tr *TimeRecorder) RecordSpan() time.Duration {
	curr := time.Now()
	span := curr.Sub(tr.last)
	tr.last = curr
	return span
}

// ElapseSpan returns the duration from the beginning
func (tr *TimeRecorder) ElapseSpan() time.Duration {
	curr := time.Now()
	span := curr.Sub(tr.start)
	tr.last = curr
	return span
}

// Record calculates the time span from previous Record call and prints it
func (tr *TimeRecorder) Record(msg string) time.Duration {
	span := tr.RecordSpan()
	tr.printTimeRecord(context.TODO(), msg, span)
	return span
}

// CtxRecord is Record with the context-bound logger
func (tr *TimeRecorder) CtxRecord(ctx context.Context, msg string) time.Duration {
	span := tr.RecordSpan()
	tr.printTimeRecord(ctx, msg, span)
	return span
}

// Elapse calculates the time span from the beginning of this TimeRecorder and prints it
func (tr *TimeRecorder) Elapse(msg string) time.Duration {
	span := tr.ElapseSpan()
	tr.printTimeRecord(context.TODO(), msg, span)
	return span
}

// CtxElapse is Elapse with the context-bound logger
func (tr *TimeRecorder) CtxElapse(ctx context.Context, msg string) time.Duration {
	span := tr.ElapseSpan()
	tr.printTimeRecord(ctx, msg, span)
	return span
}

func (tr *TimeRecorder) printTimeRecord(ctx context.Context, msg string, span time.Duration) {
	log.Ctx(ctx).WithOptions(zap.AddCallerSkip(2)).
		Debug(fmt.Sprintf("tr/%s", tr.header),
			zap.String("msg", msg),
			zap.Duration("duration", span))
}

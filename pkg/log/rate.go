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

package log

import (
	"sync"
	"time"
)

// RateLimiter is a token bucket shared by the rated log helpers. A rated call
// spends its cost from the balance and is dropped when the balance cannot
// cover it. With the default 1 credit per second, a call with cost N is
// emitted at most once every N seconds.
type RateLimiter struct {
	mu sync.Mutex

	creditsPerSecond float64
	balance          float64
	maxBalance       float64
	lastTick         time.Time
}

// NewRateLimiter creates a RateLimiter refilled at creditsPerSecond and
// capped at maxBalance. The bucket starts full.
func NewRateLimiter(creditsPerSecond, maxBalance float64) *RateLimiter {
	return &RateLimiter{
		creditsPerSecond: creditsPerSecond,
		balance:          maxBalance,
		maxBalance:       maxBalance,
		lastTick:         time.Now(),
	}
}

// CheckCredit spends cost credits and reports whether the balance covered it.
func (r *RateLimiter) CheckCredit(cost float64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	elapsed := now.Sub(r.lastTick).Seconds()
	r.lastTick = now
	r.balance += elapsed * r.creditsPerSecond
	if r.balance > r.maxBalance {
		r.balance = r.maxBalance
	}
	if r.balance >= cost {
		r.balance -= cost
		return true
	}
	return false
}

// Update changes the fill rate and the cap of the bucket. The current balance
// is scaled to keep the same fraction of the cap.
func (r *RateLimiter) Update(creditsPerSecond, maxBalance float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ratio := 1.0
	if r.maxBalance > 0 {
		ratio = r.balance / r.maxBalance
	}
	r.creditsPerSecond = creditsPerSecond
	r.maxBalance = maxBalance
	r.balance = maxBalance * ratio
}

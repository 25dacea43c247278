//go:build test
// +build test

package lock

import "github.com/sasha-s/go-deadlock"

// RWMutex wraps deadlock.RWMutex under the test build tag to detect
// potential deadlocks while running tests.
type RWMutex = deadlock.RWMutex

// Mutex wraps deadlock.Mutex under the test build tag to detect potential
// deadlocks while running tests.
type Mutex = deadlock.Mutex

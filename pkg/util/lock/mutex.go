//go:build !test
// +build !test

package lock

import "sync"

// RWMutex is a sync.RWMutex in regular builds, use `-tags test` to swap in
// deadlock detection.
type RWMutex = sync.RWMutex

// Mutex is a sync.Mutex in regular builds, use `-tags test` to swap in
// deadlock detection.
type Mutex = sync.Mutex

// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

//go:build !deadlock

// Package syncutil provides the locks shared by the TUI and its
// background workers. Build with -tags=deadlock to swap in
// github.com/sasha-s/go-deadlock.
package syncutil

import "sync"

// Mutex wraps sync.Mutex.
//
//nolint:gocritic // embedded to expose Lock/Unlock
type Mutex struct {
	sync.Mutex
}

// RWMutex wraps sync.RWMutex.
//
//nolint:gocritic // embedded to expose Lock/Unlock/RLock/RUnlock
type RWMutex struct {
	sync.RWMutex
}

// DeadlockDetection reports whether the deadlock detector is compiled in
const DeadlockDetection = false

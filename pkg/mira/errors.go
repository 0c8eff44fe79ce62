// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mira

import "errors"

// Codec errors. Returned errors wrap one of these with context, so
// callers test with errors.Is.
var (
	// ErrInvalidArgument reports a topic, direction or value outside the
	// protocol contract.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMalformedFrame reports a status frame shorter than StatusFrameSize.
	ErrMalformedFrame = errors.New("malformed status frame")
	// ErrMalformedVersion reports a version block too short for the
	// fixed-offset fields.
	ErrMalformedVersion = errors.New("malformed version block")
	// ErrNoResponse is returned by Simulator.Read when no status frame
	// has been requested.
	ErrNoResponse = errors.New("no pending response")
)

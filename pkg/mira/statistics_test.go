// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mira

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestStatistics_Counters(t *testing.T) {
	s := NewStatistics()

	s.RecordCommand(nil)
	s.RecordCommand(nil)
	s.RecordCommand(errors.New("pipe closed"))
	s.RecordStatus(nil, nil, nil)
	s.RecordStatus(errors.New("timeout"), nil, nil)
	s.RecordStatus(nil, fmt.Errorf("%w: short", ErrMalformedFrame), nil)
	s.RecordStatus(nil, fmt.Errorf("%w: short", ErrMalformedVersion), nil)
	s.RecordStatus(nil, nil, []ValidationError{{Type: AnomalySpeed}})

	if s.CommandsSent != 2 {
		t.Errorf("CommandsSent = %d, want 2", s.CommandsSent)
	}
	if s.WriteErrors != 1 {
		t.Errorf("WriteErrors = %d, want 1", s.WriteErrors)
	}
	if s.StatusReads != 4 {
		t.Errorf("StatusReads = %d, want 4", s.StatusReads)
	}
	if s.ReadErrors != 1 {
		t.Errorf("ReadErrors = %d, want 1", s.ReadErrors)
	}
	if s.ValidStatus != 1 || s.MalformedFrames != 1 || s.MalformedVersions != 1 || s.AnomalousStatus != 1 {
		t.Errorf("unexpected status counters: %+v", s)
	}
	if s.TotalFrames() != 6 {
		t.Errorf("TotalFrames = %d, want 6", s.TotalFrames())
	}
	if s.TotalErrors() != 5 {
		t.Errorf("TotalErrors = %d, want 5", s.TotalErrors())
	}
}

func TestStatistics_StringAndReset(t *testing.T) {
	s := NewStatistics()
	s.RecordCommand(nil)
	s.RecordStatus(nil, fmt.Errorf("%w", ErrMalformedFrame), nil)

	out := s.String()
	for _, want := range []string{"Commands Sent:", "Malformed Frames:", "Frame Rate:"} {
		if !strings.Contains(out, want) {
			t.Errorf("String() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Write Errors:") {
		t.Error("zero counters should be omitted")
	}

	s.Reset()
	if s.TotalFrames() != 0 || s.TotalErrors() != 0 {
		t.Errorf("Reset left counters: %+v", s)
	}
	if s.StartTime.IsZero() {
		t.Error("Reset should restart the clock")
	}
}

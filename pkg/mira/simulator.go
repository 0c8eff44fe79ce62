// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mira

import (
	"encoding/binary"
	"fmt"
	"sync"
)

// DefaultVersionText is the version block the simulator reports
const DefaultVersionText = "Ver:b@03:6@08:a@05-1af2fdf"

// Simulator is an in-memory Mira that answers command frames the way the
// device does: submit frames update the status bytes at their documented
// offsets, and a read-all queues the current status frame for Read.
// It is safe for concurrent use.
type Simulator struct {
	mu        sync.Mutex
	status    [StatusFrameSize]byte
	pending   []byte
	refreshes int
	received  [][]byte
}

// NewSimulator creates a simulator with factory-like settings
func NewSimulator() *Simulator {
	s := &Simulator{}
	s.status[statusRefreshModeOffset] = 2
	s.status[statusSpeedOffset] = 7
	s.status[statusContrastOffset] = 7
	s.status[statusVersionOffset] = 1
	s.status[statusVersionOffset+1] = 2
	s.setVersionText(DefaultVersionText)
	return s
}

// NewSimulatorWithStatus creates a simulator that starts from a captured
// status frame
func NewSimulatorWithStatus(frame []byte) (*Simulator, error) {
	if len(frame) < StatusFrameSize {
		return nil, fmt.Errorf("%w: got %d bytes, need %d", ErrMalformedFrame, len(frame), StatusFrameSize)
	}
	s := &Simulator{}
	copy(s.status[:], frame)
	return s, nil
}

// SetVersionText replaces the version block, NUL padded to 32 bytes
func (s *Simulator) SetVersionText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setVersionText(text)
}

func (s *Simulator) setVersionText(text string) {
	block := s.status[VersionBlockOffset : VersionBlockOffset+VersionBlockSize]
	for i := range block {
		block[i] = 0
	}
	copy(block, text)
}

// Write accepts one complete command frame
func (s *Simulator) Write(p []byte) (int, error) {
	if len(p) != CommandFrameSize {
		return 0, fmt.Errorf("%w: frame is %d bytes, want %d", ErrInvalidArgument, len(p), CommandFrameSize)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cmd, err := ParseCommand(p)
	if err != nil {
		return 0, err
	}

	frame := make([]byte, len(p))
	copy(frame, p)
	s.received = append(s.received, frame)
	topic := cmd.Topic
	var value byte
	if cmd.Value != nil {
		value = byte(*cmd.Value)
	}

	if cmd.Direction == Receive {
		if topic == TopicAll {
			s.pending = make([]byte, StatusFrameSize)
			copy(s.pending, s.status[:])
		}
		return len(p), nil
	}

	switch topic {
	case TopicFullRefresh:
		s.refreshes++
	case TopicSWMode:
		s.status[statusRefreshModeOffset] = value
	case TopicRefreshTime:
		binary.BigEndian.PutUint16(s.status[statusAutoTimeOffset:], uint16(value))
	case TopicA2Freq:
		s.status[statusSpeedOffset] = value
	case TopicContrast:
		s.status[statusContrastOffset] = value
	case TopicColdLight:
		s.status[statusColdLightOffset] = value
	case TopicWarmLight:
		s.status[statusWarmLightOffset] = value
	case TopicVCOM:
		s.status[statusVCOMOffset] = value
	}

	return len(p), nil
}

// Read returns the pending status frame. It fails with ErrNoResponse when
// no read-all command has been written.
func (s *Simulator) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return 0, ErrNoResponse
	}
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

// Close implements io.Closer
func (s *Simulator) Close() error {
	return nil
}

// Status returns a copy of the current status frame
func (s *Simulator) Status() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, StatusFrameSize)
	copy(out, s.status[:])
	return out
}

// FullRefreshes returns how many full refresh commands were received
func (s *Simulator) FullRefreshes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshes
}

// Received returns copies of every frame written so far
func (s *Simulator) Received() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.received))
	for i, f := range s.received {
		out[i] = append([]byte(nil), f...)
	}
	return out
}

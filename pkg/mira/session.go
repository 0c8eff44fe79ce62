// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mira

import (
	"fmt"
	"io"
	"time"
)

// DefaultApplyDelay is the pause between consecutive setting writes.
// The device drops writes that arrive back to back.
const DefaultApplyDelay = 10 * time.Millisecond

// Session exchanges frames with a device over a report-oriented
// transport: every Write is one command frame and the status frame of a
// read-all arrives as one 64-byte report. Session never retries; transport
// timeouts and reconnection belong to the transport.
//
// A Session is not safe for concurrent use.
type Session struct {
	rw io.ReadWriter

	// Stats is updated on every exchange. May be nil.
	Stats *Statistics
	// ApplyDelay is the pause between the commands of Apply.
	ApplyDelay time.Duration
	// Trace, if set, sees every frame written ("tx") and read ("rx").
	Trace func(label string, frame []byte)
}

// NewSession creates a session over rw
func NewSession(rw io.ReadWriter) *Session {
	return &Session{
		rw:         rw,
		Stats:      NewStatistics(),
		ApplyDelay: DefaultApplyDelay,
	}
}

// Submit writes one submit command
func (s *Session) Submit(cmd Command) error {
	if cmd.Direction != Submit {
		return fmt.Errorf("%w: %s is not a submit command", ErrInvalidArgument, FormatCommand(cmd))
	}
	frame, err := cmd.Frame()
	if err != nil {
		return err
	}
	return s.write(frame)
}

// Apply submits the commands in order, pausing ApplyDelay between them.
// It stops at the first error.
func (s *Session) Apply(cmds []Command) error {
	for i, cmd := range cmds {
		if i > 0 && s.ApplyDelay > 0 {
			time.Sleep(s.ApplyDelay)
		}
		if err := s.Submit(cmd); err != nil {
			return fmt.Errorf("apply %s: %w", FormatTopic(cmd.Topic), err)
		}
	}
	return nil
}

// ReadAll requests and decodes the device's status frame
func (s *Session) ReadAll() (*Snapshot, error) {
	frame, err := NewReadAll().Frame()
	if err != nil {
		return nil, err
	}
	if err := s.write(frame); err != nil {
		return nil, err
	}

	buf := make([]byte, StatusFrameSize)
	if _, err := io.ReadFull(s.rw, buf); err != nil {
		s.recordStatus(err, nil, nil)
		return nil, fmt.Errorf("read status frame: %w", err)
	}
	if s.Trace != nil {
		s.Trace("rx", buf)
	}

	snap, err := ParseStatus(buf)
	if err != nil {
		s.recordStatus(nil, err, nil)
		return nil, err
	}
	s.recordStatus(nil, nil, ValidateSnapshot(snap))
	return snap, nil
}

func (s *Session) write(frame CommandFrame) error {
	if s.Trace != nil {
		s.Trace("tx", frame.Bytes())
	}
	n, err := s.rw.Write(frame.Bytes())
	if err == nil && n != CommandFrameSize {
		err = fmt.Errorf("short write: %d of %d bytes", n, CommandFrameSize)
	}
	if s.Stats != nil {
		s.Stats.RecordCommand(err)
	}
	if err != nil {
		return fmt.Errorf("write %s frame: %w", FormatTopic(Topic(frame[cmdTopicOffset]&^receiveFlag)), err)
	}
	return nil
}

func (s *Session) recordStatus(readErr, decodeErr error, validationErrors []ValidationError) {
	if s.Stats != nil {
		s.Stats.RecordStatus(readErr, decodeErr, validationErrors)
	}
}

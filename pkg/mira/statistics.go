// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mira

import (
	"errors"
	"fmt"
	"time"
)

// Statistics tracks session traffic and error rates
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	CommandsSent      uint64
	StatusReads       uint64
	ValidStatus       uint64
	WriteErrors       uint64
	ReadErrors        uint64
	MalformedFrames   uint64
	MalformedVersions uint64
	AnomalousStatus   uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec, both directions
	ErrorRate float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// RecordCommand counts a command write and its outcome
func (s *Statistics) RecordCommand(err error) {
	if err != nil {
		s.WriteErrors++
	} else {
		s.CommandsSent++
	}
	s.LastUpdateTime = time.Now()
}

// RecordStatus counts a status read, its decode error and validation results.
// readErr is a transport failure; decodeErr is a ParseStatus failure.
func (s *Statistics) RecordStatus(readErr, decodeErr error, validationErrors []ValidationError) {
	s.LastUpdateTime = time.Now()

	if readErr != nil {
		s.ReadErrors++
		return
	}
	s.StatusReads++

	if decodeErr != nil {
		switch {
		case errors.Is(decodeErr, ErrMalformedVersion):
			s.MalformedVersions++
		default:
			s.MalformedFrames++
		}
		return
	}

	if len(validationErrors) > 0 {
		s.AnomalousStatus++
		return
	}
	s.ValidStatus++
}

// TotalFrames returns the number of frames moved in both directions
func (s *Statistics) TotalFrames() uint64 {
	return s.CommandsSent + s.StatusReads
}

// TotalErrors returns the number of failed or anomalous exchanges
func (s *Statistics) TotalErrors() uint64 {
	return s.WriteErrors + s.ReadErrors + s.MalformedFrames + s.MalformedVersions + s.AnomalousStatus
}

// CalculateRates calculates frame and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.TotalFrames()) / elapsed
		s.ErrorRate = float64(s.TotalErrors()) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	var validPercent float64
	if s.StatusReads > 0 {
		validPercent = float64(s.ValidStatus) * 100.0 / float64(s.StatusReads)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Commands Sent:   %8d\n", s.CommandsSent)
	result += fmt.Sprintf("Status Reads:    %8d\n", s.StatusReads)
	result += fmt.Sprintf("Valid Status:    %8d (%.1f%%)\n", s.ValidStatus, validPercent)

	if s.WriteErrors > 0 {
		result += fmt.Sprintf("Write Errors:    %8d\n", s.WriteErrors)
	}
	if s.ReadErrors > 0 {
		result += fmt.Sprintf("Read Errors:     %8d\n", s.ReadErrors)
	}
	if s.MalformedFrames > 0 {
		result += fmt.Sprintf("Malformed Frames:%8d\n", s.MalformedFrames)
	}
	if s.MalformedVersions > 0 {
		result += fmt.Sprintf("Bad Versions:    %8d\n", s.MalformedVersions)
	}
	if s.AnomalousStatus > 0 {
		result += fmt.Sprintf("Anomalous:       %8d\n", s.AnomalousStatus)
	}

	result += fmt.Sprintf("Frame Rate:      %8.1f frames/sec\n", s.FrameRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}

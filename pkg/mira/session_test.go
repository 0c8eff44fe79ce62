// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mira

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func newTestSession(rw io.ReadWriter) *Session {
	s := NewSession(rw)
	s.ApplyDelay = 0
	return s
}

// TestRoundTrip writes each echoed setting to a simulated device and
// checks the status frame reports the same value.
func TestRoundTrip(t *testing.T) {
	for _, setting := range Settings() {
		if _, ok := setting.Read(&Snapshot{}); !ok {
			continue
		}
		for _, v := range []int{setting.Min, (setting.Min + setting.Max) / 2, setting.Max} {
			sim := NewSimulator()
			session := newTestSession(sim)

			cmd, err := setting.Command(v)
			if err != nil {
				t.Fatalf("%s Command(%d) error: %v", setting.Name, v, err)
			}
			if err := session.Submit(cmd); err != nil {
				t.Fatalf("%s Submit error: %v", setting.Name, err)
			}

			snap, err := session.ReadAll()
			if err != nil {
				t.Fatalf("%s ReadAll error: %v", setting.Name, err)
			}
			got, _ := setting.Read(snap)
			if got != v {
				t.Errorf("%s round trip = %d, want %d", setting.Name, got, v)
			}
		}
	}
}

func TestSession_ReadAllDefaults(t *testing.T) {
	session := newTestSession(NewSimulator())
	snap, err := session.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
	if snap.RefreshMode != 2 || snap.Speed != 7 || snap.Contrast != 7 {
		t.Errorf("unexpected defaults: %+v", snap)
	}
	if snap.VersionDetail.FPGASV != "05" {
		t.Errorf("FPGASV = %q, want 05", snap.VersionDetail.FPGASV)
	}
	if session.Stats.ValidStatus != 1 || session.Stats.CommandsSent != 1 {
		t.Errorf("stats = %+v, want 1 valid status and 1 command", session.Stats)
	}
}

func TestSession_ApplySnapshot(t *testing.T) {
	source := NewSimulator()
	src := newTestSession(source)
	if err := src.Apply([]Command{NewColdLight(90), NewWarmLight(180), NewContrast(3), NewSpeed(10), NewRefreshMode(1)}); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	snap, err := src.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}

	target := NewSimulator()
	dst := newTestSession(target)
	if err := dst.Apply(snap.Commands()); err != nil {
		t.Fatalf("Apply(snapshot) error: %v", err)
	}
	restored, err := dst.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}

	if restored.ColdLight != 90 || restored.WarmLight != 180 || restored.Contrast != 3 ||
		restored.Speed != 10 || restored.RefreshMode != 1 {
		t.Errorf("restored snapshot = %+v", restored)
	}
}

func TestSession_SubmitRejectsReceive(t *testing.T) {
	sim := NewSimulator()
	err := newTestSession(sim).Submit(NewReadAll())
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
	if len(sim.Received()) != 0 {
		t.Error("nothing should be written for a rejected command")
	}
}

func TestSession_ApplyStopsAtFirstError(t *testing.T) {
	sim := NewSimulator()
	err := newTestSession(sim).Apply([]Command{
		NewColdLight(1),
		NewWarmLight(999),
		NewContrast(2),
	})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("error = %v, want ErrInvalidArgument", err)
	}
	if n := len(sim.Received()); n != 1 {
		t.Errorf("device received %d frames, want 1", n)
	}
}

func TestSession_ReadAllNoResponse(t *testing.T) {
	session := newTestSession(&scriptedDevice{})
	_, err := session.ReadAll()
	if !errors.Is(err, io.EOF) {
		t.Errorf("error = %v, want io.EOF", err)
	}
	if session.Stats.ReadErrors != 1 {
		t.Errorf("ReadErrors = %d, want 1", session.Stats.ReadErrors)
	}
}

func TestSession_ReadAllShortResponse(t *testing.T) {
	session := newTestSession(&scriptedDevice{response: make([]byte, 20)})
	_, err := session.ReadAll()
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestSession_ReadAllMalformedVersion(t *testing.T) {
	session := newTestSession(&scriptedDevice{response: make([]byte, StatusFrameSize)})
	_, err := session.ReadAll()
	if !errors.Is(err, ErrMalformedVersion) {
		t.Errorf("error = %v, want ErrMalformedVersion", err)
	}
	if session.Stats.MalformedVersions != 1 {
		t.Errorf("MalformedVersions = %d, want 1", session.Stats.MalformedVersions)
	}
}

func TestSession_ShortWrite(t *testing.T) {
	session := newTestSession(&scriptedDevice{writeLimit: 10})
	err := session.Submit(NewContrast(4))
	if err == nil {
		t.Fatal("expected short write error")
	}
	if session.Stats.WriteErrors != 1 {
		t.Errorf("WriteErrors = %d, want 1", session.Stats.WriteErrors)
	}
}

func TestSession_Trace(t *testing.T) {
	var labels []string
	var sizes []int
	session := newTestSession(NewSimulator())
	session.Trace = func(label string, frame []byte) {
		labels = append(labels, label)
		sizes = append(sizes, len(frame))
	}
	if _, err := session.ReadAll(); err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
	if len(labels) != 2 || labels[0] != "tx" || labels[1] != "rx" {
		t.Fatalf("trace labels = %v, want [tx rx]", labels)
	}
	if sizes[0] != CommandFrameSize || sizes[1] != StatusFrameSize {
		t.Errorf("trace sizes = %v", sizes)
	}
}

func TestSession_NilStats(t *testing.T) {
	session := newTestSession(NewSimulator())
	session.Stats = nil
	if err := session.Submit(NewFullRefresh()); err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if _, err := session.ReadAll(); err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
}

// ============================================================
// Simulator Tests
// ============================================================

func TestSimulator_RejectsWrongFrameSize(t *testing.T) {
	sim := NewSimulator()
	if _, err := sim.Write(make([]byte, 64)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
}

func TestSimulator_RejectedFrameNotRecorded(t *testing.T) {
	sim := NewSimulator()

	frame := make([]byte, CommandFrameSize)
	frame[1] = 0x7F // unknown topic
	if _, err := sim.Write(frame); !errors.Is(err, ErrMalformedFrame) {
		t.Fatalf("error = %v, want ErrMalformedFrame", err)
	}
	if n := len(sim.Received()); n != 0 {
		t.Errorf("Received() has %d frames after a rejected write, want 0", n)
	}

	if _, err := sim.Write(MustCompose(Submit, TopicFullRefresh, nil).Bytes()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if n := len(sim.Received()); n != 1 {
		t.Errorf("Received() has %d frames, want 1", n)
	}
}

func TestSimulator_ReadWithoutRequest(t *testing.T) {
	sim := NewSimulator()
	if _, err := sim.Read(make([]byte, 64)); !errors.Is(err, ErrNoResponse) {
		t.Errorf("error = %v, want ErrNoResponse", err)
	}
}

func TestSimulator_FullRefreshAndRefreshTime(t *testing.T) {
	sim := NewSimulator()
	session := newTestSession(sim)
	if err := session.Apply([]Command{NewFullRefresh(), NewRefreshTime(200), NewFullRefresh()}); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if sim.FullRefreshes() != 2 {
		t.Errorf("FullRefreshes = %d, want 2", sim.FullRefreshes())
	}
	snap, err := session.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
	if snap.AutoTime != 200 {
		t.Errorf("AutoTime = %d, want 200", snap.AutoTime)
	}
}

func TestSimulator_WithStatus(t *testing.T) {
	frame := buildStatusFrame(map[int]byte{1: 1, 6: 33}, sampleVersionBlock)
	sim, err := NewSimulatorWithStatus(frame)
	if err != nil {
		t.Fatalf("NewSimulatorWithStatus error: %v", err)
	}
	if !bytes.Equal(sim.Status(), frame) {
		t.Error("Status() should equal the captured frame")
	}
	if _, err := NewSimulatorWithStatus(frame[:10]); !errors.Is(err, ErrMalformedFrame) {
		t.Errorf("error = %v, want ErrMalformedFrame", err)
	}

	sim.SetVersionText("Ver:c@04:7@09:b@06-0000000")
	snap, err := newTestSession(sim).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
	if snap.VersionDetail.MCUHV != "c" || snap.ColdLight != 33 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

// scriptedDevice answers every read-all with a fixed response and can
// truncate writes
type scriptedDevice struct {
	response   []byte
	pending    []byte
	writeLimit int
}

func (d *scriptedDevice) Write(p []byte) (int, error) {
	if d.writeLimit > 0 && len(p) > d.writeLimit {
		return d.writeLimit, nil
	}
	d.pending = append([]byte(nil), d.response...)
	return len(p), nil
}

func (d *scriptedDevice) Read(p []byte) (int, error) {
	if len(d.pending) == 0 {
		return 0, io.EOF
	}
	n := copy(p, d.pending)
	d.pending = d.pending[n:]
	return n, nil
}

package model

import (
	"testing"
	"time"
)

func TestSessionModel_RunLifecycle(t *testing.T) {
	m := NewSessionModel()
	base := time.Unix(0, 0)

	m.OnTick(true, base)
	m.OnTick(true, base.Add(4*time.Second))
	run, total := m.Values()
	if run != 4*time.Second || total != 4*time.Second {
		t.Fatalf("ongoing run: run=%v total=%v", run, total)
	}

	m.OnTick(false, base.Add(5*time.Second))
	run, total = m.Values()
	if run != 5*time.Second || total != 5*time.Second {
		t.Fatalf("finished run: run=%v total=%v", run, total)
	}

	m.OnTick(false, base.Add(9*time.Second))
	if r2, t2 := m.Values(); r2 != run || t2 != total {
		t.Fatalf("idle tick changed durations: run=%v total=%v", r2, t2)
	}

	m.OnTick(true, base.Add(10*time.Second))
	m.OnTick(true, base.Add(12*time.Second))
	run, total = m.Values()
	if run != 2*time.Second || total != 7*time.Second {
		t.Fatalf("second run: run=%v total=%v", run, total)
	}
	if m.Runs() != 2 {
		t.Fatalf("expected 2 runs, got %d", m.Runs())
	}
}

func TestSessionModel_NilSafe(t *testing.T) {
	var m *SessionModel
	m.OnTick(true, time.Now())
	if r, tot := m.Values(); r != 0 || tot != 0 || m.Runs() != 0 {
		t.Fatalf("nil model must report zero values")
	}
}

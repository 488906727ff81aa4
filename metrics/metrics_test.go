package metrics

import (
	"testing"
	"time"
)

func TestRecorder_NilSafe(t *testing.T) {
	var r *Recorder
	r.Tick("stage1")
	r.PausedTick()
	r.TickError("stage1")
	r.Transition("stage2")
	r.OCRResult("sms", "hit")
	r.CaptureFailed()
	r.ObserveCapture(time.Millisecond)
	r.Run("succeeded")
	if r.Registry() != nil {
		t.Fatalf("nil recorder must have nil registry")
	}
	if len(r.Summary()) != 0 {
		t.Fatalf("nil recorder summary must be empty")
	}
}

func TestRecorder_Summary(t *testing.T) {
	r := New()
	r.Tick("stage1")
	r.Tick("stage1")
	r.Transition("stage2")
	r.OCRResult("sms", "hit")
	r.ObserveCapture(3 * time.Millisecond)
	r.Run("cancelled")

	s := r.Summary()
	checks := map[string]float64{
		"autologin_ticks_total{stage=stage1}":                2,
		"autologin_stage_transitions_total{to=stage2}":       1,
		"autologin_ocr_results_total{region=sms,result=hit}": 1,
		"autologin_capture_duration_seconds_count":           1,
		"autologin_runs_total{outcome=cancelled}":            1,
		"autologin_paused_ticks_total":                       0,
	}
	for k, want := range checks {
		if got, ok := s[k]; !ok || got != want {
			t.Fatalf("%s: want %v, got %v (present=%v)", k, want, got, ok)
		}
	}
	for k := range s {
		if k == "go_goroutines" {
			t.Fatalf("summary must only include autologin metrics")
		}
	}
}

package model

import "testing"

func TestStepTransitions(t *testing.T) {
	tests := []struct {
		from    StepStatus
		to      StepStatus
		allowed bool
	}{
		{StepStatusPending, StepStatusRunning, true},
		{StepStatusPending, StepStatusCached, true},
		{StepStatusPending, StepStatusSkipped, true},
		{StepStatusPending, StepStatusFailed, true},
		{StepStatusPending, StepStatusCompleted, false},
		{StepStatusRunning, StepStatusCompleted, true},
		{StepStatusRunning, StepStatusFailed, true},
		{StepStatusRunning, StepStatusCached, false},
		{StepStatusCompleted, StepStatusRunning, false},
		{StepStatusFailed, StepStatusRunning, false},
		{StepStatusCached, StepStatusRunning, false},
	}

	for _, tt := range tests {
		got, err := tt.from.Transition(tt.to)
		if tt.allowed {
			if err != nil {
				t.Errorf("%s -> %s: expected allowed, got %v", tt.from, tt.to, err)
			}
			if got != tt.to {
				t.Errorf("%s -> %s: expected new status %s, got %s", tt.from, tt.to, tt.to, got)
			}
		} else {
			if err == nil {
				t.Errorf("%s -> %s: expected rejection", tt.from, tt.to)
			}
			if got != tt.from {
				t.Errorf("%s -> %s: status must not change on rejection, got %s", tt.from, tt.to, got)
			}
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range []StepStatus{StepStatusCompleted, StepStatusFailed, StepStatusCached, StepStatusSkipped} {
		if !s.IsTerminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}
	for _, s := range []StepStatus{StepStatusPending, StepStatusRunning} {
		if s.IsTerminal() {
			t.Errorf("expected %s not to be terminal", s)
		}
	}
}

func TestStepOrderCoversAllKinds(t *testing.T) {
	if len(StepOrder) != 6 {
		t.Fatalf("expected 6 pipeline steps, got %d", len(StepOrder))
	}
	if StepOrder[0] != StepBase || StepOrder[len(StepOrder)-1] != StepLaunch {
		t.Errorf("unexpected step order: %v", StepOrder)
	}
}

func TestBuildCacheHits(t *testing.T) {
	b := &Build{
		Steps: []StepRecord{
			{Kind: StepBase, CacheHit: true},
			{Kind: StepEnv, CacheHit: true},
			{Kind: StepSystemDeps},
		},
	}
	if got := b.CacheHits(); got != 2 {
		t.Errorf("expected 2 cache hits, got %d", got)
	}
}

func TestStepByKind(t *testing.T) {
	b := &Build{Steps: []StepRecord{{Kind: StepAppDeps, Digest: "abc"}}}

	if s := b.StepByKind(StepAppDeps); s == nil || s.Digest != "abc" {
		t.Errorf("expected to find app_deps step, got %+v", s)
	}
	if s := b.StepByKind(StepSource); s != nil {
		t.Errorf("expected nil for missing step, got %+v", s)
	}
}

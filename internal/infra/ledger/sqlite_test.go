package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"envforge/internal/domain/model"
)

func openTestLedger(t *testing.T) *sqliteLedger {
	t.Helper()

	l, err := NewSQLiteLedger(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("NewSQLiteLedger: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l.(*sqliteLedger)
}

func newTestBuild(id, recipe string) *model.Build {
	return &model.Build{
		ID:         id,
		RecipeName: recipe,
		Digest:     "abc123def456",
		Status:     model.BuildStatusRunning,
		StartedAt:  time.Now(),
	}
}

func TestRecordAndGetBuild(t *testing.T) {
	l := openTestLedger(t)

	build := newTestBuild("b1", "fastapi-app")
	if err := l.RecordBuild(build); err != nil {
		t.Fatalf("RecordBuild: %v", err)
	}

	if err := l.RecordStep("b1", model.StepRecord{
		Kind:     model.StepBase,
		Status:   model.StepStatusCached,
		Digest:   "d-base",
		LayerTag: "envforge/layer:d-base",
		CacheHit: true,
	}); err != nil {
		t.Fatalf("RecordStep: %v", err)
	}
	if err := l.RecordStep("b1", model.StepRecord{
		Kind:     model.StepEnv,
		Status:   model.StepStatusCompleted,
		Digest:   "d-env",
		LayerTag: "envforge/layer:d-env",
		Duration: 1500 * time.Millisecond,
	}); err != nil {
		t.Fatalf("RecordStep: %v", err)
	}

	got, err := l.GetBuild("b1")
	if err != nil {
		t.Fatalf("GetBuild: %v", err)
	}
	if got == nil {
		t.Fatal("GetBuild returned nil for existing build")
	}
	if got.RecipeName != "fastapi-app" {
		t.Errorf("RecipeName = %q, want %q", got.RecipeName, "fastapi-app")
	}
	if len(got.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(got.Steps))
	}
	if got.Steps[0].Kind != model.StepBase || !got.Steps[0].CacheHit {
		t.Errorf("first step = %+v, want cached base step", got.Steps[0])
	}
	if got.Steps[1].Duration != 1500*time.Millisecond {
		t.Errorf("step duration = %v, want 1.5s", got.Steps[1].Duration)
	}
	if got.CacheHits() != 1 {
		t.Errorf("CacheHits = %d, want 1", got.CacheHits())
	}
}

func TestGetBuildNotFound(t *testing.T) {
	l := openTestLedger(t)

	got, err := l.GetBuild("missing")
	if err != nil {
		t.Fatalf("GetBuild: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing build, got %+v", got)
	}
}

func TestFinishBuild(t *testing.T) {
	l := openTestLedger(t)

	build := newTestBuild("b1", "fastapi-app")
	if err := l.RecordBuild(build); err != nil {
		t.Fatalf("RecordBuild: %v", err)
	}

	build.Status = model.BuildStatusCompleted
	build.ImageTag = "fastapi-app:abc123def456"
	build.FinishedAt = time.Now()
	if err := l.FinishBuild(build); err != nil {
		t.Fatalf("FinishBuild: %v", err)
	}

	got, err := l.GetBuild("b1")
	if err != nil {
		t.Fatalf("GetBuild: %v", err)
	}
	if got.Status != model.BuildStatusCompleted {
		t.Errorf("Status = %q, want completed", got.Status)
	}
	if got.ImageTag != "fastapi-app:abc123def456" {
		t.Errorf("ImageTag = %q", got.ImageTag)
	}
	if got.FinishedAt.IsZero() {
		t.Error("FinishedAt not persisted")
	}
}

func TestLatestBuildSkipsFailures(t *testing.T) {
	l := openTestLedger(t)

	ok := newTestBuild("b1", "fastapi-app")
	ok.StartedAt = time.Now().Add(-time.Minute)
	if err := l.RecordBuild(ok); err != nil {
		t.Fatalf("RecordBuild: %v", err)
	}
	ok.Status = model.BuildStatusCompleted
	ok.ImageTag = "fastapi-app:aaa"
	if err := l.FinishBuild(ok); err != nil {
		t.Fatalf("FinishBuild: %v", err)
	}

	failed := newTestBuild("b2", "fastapi-app")
	if err := l.RecordBuild(failed); err != nil {
		t.Fatalf("RecordBuild: %v", err)
	}
	failed.Status = model.BuildStatusFailed
	failed.Error = "pip install failed"
	if err := l.FinishBuild(failed); err != nil {
		t.Fatalf("FinishBuild: %v", err)
	}

	latest, err := l.LatestBuild("fastapi-app")
	if err != nil {
		t.Fatalf("LatestBuild: %v", err)
	}
	if latest == nil {
		t.Fatal("LatestBuild returned nil")
	}
	if latest.ID != "b1" {
		t.Errorf("LatestBuild ID = %q, want b1 (the completed one)", latest.ID)
	}
}

func TestLatestBuildNone(t *testing.T) {
	l := openTestLedger(t)

	latest, err := l.LatestBuild("unknown")
	if err != nil {
		t.Fatalf("LatestBuild: %v", err)
	}
	if latest != nil {
		t.Errorf("expected nil, got %+v", latest)
	}
}

func TestListBuilds(t *testing.T) {
	l := openTestLedger(t)

	for i, id := range []string{"b1", "b2", "b3"} {
		b := newTestBuild(id, "fastapi-app")
		b.StartedAt = time.Now().Add(time.Duration(i) * time.Second)
		if err := l.RecordBuild(b); err != nil {
			t.Fatalf("RecordBuild: %v", err)
		}
	}
	other := newTestBuild("x1", "other-app")
	if err := l.RecordBuild(other); err != nil {
		t.Fatalf("RecordBuild: %v", err)
	}

	builds, err := l.ListBuilds("fastapi-app", 2)
	if err != nil {
		t.Fatalf("ListBuilds: %v", err)
	}
	if len(builds) != 2 {
		t.Fatalf("expected 2 builds, got %d", len(builds))
	}
	if builds[0].ID != "b3" {
		t.Errorf("newest build = %q, want b3", builds[0].ID)
	}

	all, err := l.ListBuilds("", 10)
	if err != nil {
		t.Fatalf("ListBuilds: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("expected 4 builds across recipes, got %d", len(all))
	}
}

package build

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"envforge/internal/domain/model"
	"envforge/internal/domain/repository"
)

// fakeBuilder records every layer build and can be told to fail on a
// Dockerfile marker.
type fakeBuilder struct {
	images     *fakeImages
	built      []string
	failMarker string
}

func (f *fakeBuilder) BuildLayer(_ context.Context, req repository.BuildLayerRequest) (string, error) {
	if f.failMarker != "" && strings.Contains(req.Dockerfile, f.failMarker) {
		return "ERROR: no matching distribution found for fastapi\n", os.ErrPermission
	}
	f.built = append(f.built, req.Tag)
	f.images.tags[req.Tag] = true
	return "ok", nil
}

// fakeImages is an in-memory image store.
type fakeImages struct {
	tags      map[string]bool
	tagged    map[string]string // target -> source
	existsErr error
}

func newFakeImages() *fakeImages {
	return &fakeImages{tags: make(map[string]bool), tagged: make(map[string]string)}
}

func (f *fakeImages) ImageExists(_ context.Context, tag string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.tags[tag], nil
}

func (f *fakeImages) TagImage(_ context.Context, source, target string) error {
	f.tags[target] = true
	f.tagged[target] = source
	return nil
}

func (f *fakeImages) ListImages(_ context.Context, _ string) ([]repository.ImageSummary, error) {
	return nil, nil
}

func (f *fakeImages) RemoveImage(_ context.Context, tag string) error {
	delete(f.tags, tag)
	return nil
}

func testRecipe() *model.Recipe {
	r := &model.Recipe{
		Name:    "project-api",
		Runtime: model.RuntimeSpec{Image: "python", Version: "3.11-slim"},
		Env: map[string]string{
			"PYTHONDONTWRITEBYTECODE": "1",
			"PYTHONUNBUFFERED":        "1",
		},
		SystemPackages: []string{"gcc", "libpq-dev"},
		Manifest:       "requirements.txt",
		Launch: model.LaunchSpec{
			Command: "uvicorn",
			Args:    []string{"app.main:app"},
			Port:    8000,
			Reload:  true,
		},
	}
	r.ApplyDefaults()
	return r
}

func testSourceDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	write("requirements.txt", "fastapi==0.110.0\npsycopg2==2.9.9\nuvicorn==0.29.0\n")
	write("app/main.py", "app = object()\n")
	return dir
}

func newTestPipeline(t *testing.T, images *fakeImages, builder *fakeBuilder) *Pipeline {
	t.Helper()
	return NewPipeline(builder, images, nil, t.TempDir(), true)
}

func TestRunBuildsAllSixLayers(t *testing.T) {
	images := newFakeImages()
	builder := &fakeBuilder{images: images}
	p := newTestPipeline(t, images, builder)

	src := testSourceDir(t)
	b, err := p.Run(context.Background(), testRecipe(), src)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(builder.built) != 6 {
		t.Errorf("expected 6 layer builds, got %d", len(builder.built))
	}
	if b.Status != model.BuildStatusCompleted {
		t.Errorf("expected completed build, got %s", b.Status)
	}
	if b.ImageTag == "" || !strings.HasPrefix(b.ImageTag, "project-api:") {
		t.Errorf("unexpected final image tag %q", b.ImageTag)
	}
	if source, ok := images.tagged[b.ImageTag]; !ok || !strings.HasPrefix(source, LayerRepository+":") {
		t.Errorf("final tag should point at the launch layer, got %q", source)
	}
	if len(b.Steps) != 6 {
		t.Fatalf("expected 6 step records, got %d", len(b.Steps))
	}
	for i, kind := range model.StepOrder {
		if b.Steps[i].Kind != kind {
			t.Errorf("step %d: expected %s, got %s", i, kind, b.Steps[i].Kind)
		}
		if b.Steps[i].Status != model.StepStatusCompleted {
			t.Errorf("step %s: expected completed, got %s", kind, b.Steps[i].Status)
		}
	}
}

func TestRunUnchangedInputsFullyCached(t *testing.T) {
	images := newFakeImages()
	p := newTestPipeline(t, images, &fakeBuilder{images: images})
	src := testSourceDir(t)

	first, err := p.Run(context.Background(), testRecipe(), src)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	rebuildBuilder := &fakeBuilder{images: images}
	p2 := NewPipeline(rebuildBuilder, images, nil, t.TempDir(), true)

	second, err := p2.Run(context.Background(), testRecipe(), src)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if len(rebuildBuilder.built) != 0 {
		t.Errorf("expected no rebuilds, got %v", rebuildBuilder.built)
	}
	if second.CacheHits() != 6 {
		t.Errorf("expected 6 cache hits, got %d", second.CacheHits())
	}
	if first.Digest != second.Digest {
		t.Error("unchanged inputs must produce the same build digest")
	}
	if first.ImageTag != second.ImageTag {
		t.Errorf("unchanged inputs must produce the same image tag: %q vs %q", first.ImageTag, second.ImageTag)
	}
}

func TestRunSourceChangeKeepsDependencyLayer(t *testing.T) {
	images := newFakeImages()
	p := newTestPipeline(t, images, &fakeBuilder{images: images})
	src := testSourceDir(t)

	if _, err := p.Run(context.Background(), testRecipe(), src); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	// Touch application source only.
	if err := os.WriteFile(filepath.Join(src, "app", "main.py"), []byte("app = object()  # edited\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	rebuildBuilder := &fakeBuilder{images: images}
	p2 := NewPipeline(rebuildBuilder, images, nil, t.TempDir(), true)

	b, err := p2.Run(context.Background(), testRecipe(), src)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	for _, kind := range []model.StepKind{model.StepBase, model.StepEnv, model.StepSystemDeps, model.StepAppDeps} {
		if step := b.StepByKind(kind); !step.CacheHit {
			t.Errorf("step %s: expected cache hit after source-only change", kind)
		}
	}
	for _, kind := range []model.StepKind{model.StepSource, model.StepLaunch} {
		if step := b.StepByKind(kind); step.CacheHit {
			t.Errorf("step %s: expected rebuild after source change", kind)
		}
	}
	if len(rebuildBuilder.built) != 2 {
		t.Errorf("expected exactly 2 rebuilt layers, got %v", rebuildBuilder.built)
	}
}

func TestRunManifestChangeInvalidatesDependencyLayer(t *testing.T) {
	images := newFakeImages()
	p := newTestPipeline(t, images, &fakeBuilder{images: images})
	src := testSourceDir(t)

	if _, err := p.Run(context.Background(), testRecipe(), src); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(src, "requirements.txt"), []byte("fastapi==0.111.0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	rebuildBuilder := &fakeBuilder{images: images}
	p2 := NewPipeline(rebuildBuilder, images, nil, t.TempDir(), true)

	b, err := p2.Run(context.Background(), testRecipe(), src)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	for _, kind := range []model.StepKind{model.StepBase, model.StepEnv, model.StepSystemDeps} {
		if step := b.StepByKind(kind); !step.CacheHit {
			t.Errorf("step %s: expected cache hit after manifest change", kind)
		}
	}
	if step := b.StepByKind(model.StepAppDeps); step.CacheHit {
		t.Error("app_deps must re-run when the manifest changes")
	}
}

func TestRunFailureAbortsAndPromotesNothing(t *testing.T) {
	images := newFakeImages()
	builder := &fakeBuilder{images: images, failMarker: "pip install"}
	p := newTestPipeline(t, images, builder)

	b, err := p.Run(context.Background(), testRecipe(), testSourceDir(t))
	if err == nil {
		t.Fatal("expected build error")
	}

	if b.Status != model.BuildStatusFailed {
		t.Errorf("expected failed build, got %s", b.Status)
	}
	if b.ImageTag != "" {
		t.Errorf("failed build must not promote an image, got %q", b.ImageTag)
	}
	if len(images.tagged) != 0 {
		t.Errorf("no final tag may be applied on failure, got %v", images.tagged)
	}
	if step := b.StepByKind(model.StepAppDeps); step.Status != model.StepStatusFailed {
		t.Errorf("expected app_deps to be failed, got %s", step.Status)
	}
	for _, kind := range []model.StepKind{model.StepSource, model.StepLaunch} {
		if step := b.StepByKind(kind); step.Status != model.StepStatusSkipped {
			t.Errorf("step %s: expected skipped after failure, got %s", kind, step.Status)
		}
	}
}

func TestRunCacheDisabledRebuildsEverything(t *testing.T) {
	images := newFakeImages()
	p := newTestPipeline(t, images, &fakeBuilder{images: images})
	src := testSourceDir(t)

	if _, err := p.Run(context.Background(), testRecipe(), src); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	rebuildBuilder := &fakeBuilder{images: images}
	noCache := NewPipeline(rebuildBuilder, images, nil, t.TempDir(), false)

	b, err := noCache.Run(context.Background(), testRecipe(), src)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if len(rebuildBuilder.built) != 6 {
		t.Errorf("expected all 6 layers rebuilt without cache, got %d", len(rebuildBuilder.built))
	}
	if b.CacheHits() != 0 {
		t.Errorf("expected no cache hits, got %d", b.CacheHits())
	}
}

func TestRunMissingManifestFails(t *testing.T) {
	images := newFakeImages()
	p := newTestPipeline(t, images, &fakeBuilder{images: images})

	src := t.TempDir() // no requirements.txt
	if _, err := p.Run(context.Background(), testRecipe(), src); err == nil {
		t.Fatal("expected error for missing manifest")
	}
}

func TestRunDataDirInsideSourceTree(t *testing.T) {
	images := newFakeImages()
	builder := &fakeBuilder{images: images}

	src := testSourceDir(t)
	dataDir := filepath.Join(src, "state")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, "ledger.db"), []byte("build-1"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	p := NewPipeline(builder, images, nil, filepath.Join(dataDir, "staging"), true)
	first, err := p.Run(context.Background(), testRecipe(), src)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	// The ledger mutates on every build; it must not affect the source digest.
	if err := os.WriteFile(filepath.Join(dataDir, "ledger.db"), []byte("build-1\nbuild-2"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	rebuildBuilder := &fakeBuilder{images: images}
	p2 := NewPipeline(rebuildBuilder, images, nil, filepath.Join(dataDir, "staging"), true)

	second, err := p2.Run(context.Background(), testRecipe(), src)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if len(rebuildBuilder.built) != 0 {
		t.Errorf("expected no rebuilds after data dir mutation, got %v", rebuildBuilder.built)
	}
	if first.Digest != second.Digest {
		t.Error("data dir content must not affect the build digest")
	}
}

func TestRunIgnoresDefaultDataDir(t *testing.T) {
	images := newFakeImages()
	p := newTestPipeline(t, images, &fakeBuilder{images: images})

	src := testSourceDir(t)
	forgeDir := filepath.Join(src, ".envforge")
	if err := os.MkdirAll(forgeDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(forgeDir, "ledger.db"), []byte("build-1"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	first, err := p.Run(context.Background(), testRecipe(), src)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(forgeDir, "ledger.db"), []byte("build-2"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	second, err := p.Run(context.Background(), testRecipe(), src)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if first.Digest != second.Digest {
		t.Error(".envforge content must not affect the build digest")
	}
}

func TestDataDirGlobs(t *testing.T) {
	tests := []struct {
		sourceDir string
		dataDir   string
		want      []string
	}{
		{".", ".envforge", []string{".envforge", ".envforge/**"}},
		{"/home/dev/app", "/home/dev/app/state", []string{"state", "state/**"}},
		{"/home/dev/app", "/home/dev/state", nil},
		{"/home/dev/app", "/home/dev/app", nil},
		{".", "..", nil},
	}

	for _, tt := range tests {
		got := DataDirGlobs(tt.sourceDir, tt.dataDir)
		if len(got) != len(tt.want) {
			t.Errorf("DataDirGlobs(%q, %q) = %v, want %v", tt.sourceDir, tt.dataDir, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("DataDirGlobs(%q, %q) = %v, want %v", tt.sourceDir, tt.dataDir, got, tt.want)
				break
			}
		}
	}
}

func TestRunFailureRecordsBuilderOutput(t *testing.T) {
	images := newFakeImages()
	builder := &fakeBuilder{images: images, failMarker: "pip install"}
	p := newTestPipeline(t, images, builder)

	b, err := p.Run(context.Background(), testRecipe(), testSourceDir(t))
	if err == nil {
		t.Fatal("expected build error")
	}

	step := b.StepByKind(model.StepAppDeps)
	if step == nil {
		t.Fatal("missing app_deps step record")
	}
	if !strings.Contains(step.Output, "no matching distribution found") {
		t.Errorf("failed step must carry the builder output, got %q", step.Output)
	}
	if strings.HasSuffix(step.Output, "\n") {
		t.Errorf("step output must be trimmed, got %q", step.Output)
	}
}

func TestRunCacheLookupFailureMarksStepFailed(t *testing.T) {
	images := newFakeImages()
	images.existsErr = os.ErrDeadlineExceeded
	p := newTestPipeline(t, images, &fakeBuilder{images: images})

	b, err := p.Run(context.Background(), testRecipe(), testSourceDir(t))
	if err == nil {
		t.Fatal("expected build error")
	}

	if b.Status != model.BuildStatusFailed {
		t.Errorf("expected failed build, got %s", b.Status)
	}
	if step := b.StepByKind(model.StepBase); step.Status != model.StepStatusFailed {
		t.Errorf("expected base step failed, got %s", step.Status)
	}
}

func TestRunStagingFailureMarksStepFailed(t *testing.T) {
	images := newFakeImages()

	// A regular file where the staging directory should be makes context
	// staging impossible.
	staging := filepath.Join(t.TempDir(), "staging")
	if err := os.WriteFile(staging, []byte("not a directory"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	p := NewPipeline(&fakeBuilder{images: images}, images, nil, staging, true)

	b, err := p.Run(context.Background(), testRecipe(), testSourceDir(t))
	if err == nil {
		t.Fatal("expected build error")
	}

	if b.Status != model.BuildStatusFailed {
		t.Errorf("expected failed build, got %s", b.Status)
	}
	if step := b.StepByKind(model.StepBase); step.Status != model.StepStatusFailed {
		t.Errorf("expected base step failed, got %s", step.Status)
	}
}

func TestRunSystemPackageOrderDoesNotChangeDigest(t *testing.T) {
	images := newFakeImages()
	p := newTestPipeline(t, images, &fakeBuilder{images: images})
	src := testSourceDir(t)

	a := testRecipe()
	a.SystemPackages = []string{"gcc", "libpq-dev"}
	first, err := p.Run(context.Background(), a, src)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	b := testRecipe()
	b.SystemPackages = []string{"libpq-dev", "gcc"}
	second, err := p.Run(context.Background(), b, src)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if first.Digest != second.Digest {
		t.Error("package order must not affect the digest chain")
	}
}

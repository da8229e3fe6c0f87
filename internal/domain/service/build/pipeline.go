package build

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"envforge/internal/domain/model"
	"envforge/internal/domain/repository"
	"envforge/pkg/digest"
	"envforge/pkg/files"
	"envforge/pkg/log"
)

// LayerRepository is the repository prefix under which intermediate layers
// are tagged.
const LayerRepository = "envforge/layer"

// Pipeline executes the six provisioning steps strictly in order:
// base, env, system_deps, app_deps, source, launch. Each step produces a
// content-addressed image layer; the final environment tag is applied only
// after the last step succeeds, so a failed build never promotes an image.
type Pipeline struct {
	builder    repository.ImageBuilder
	images     repository.ImageRepository
	ledger     repository.BuildLedger
	stagingDir string
	useCache   bool
}

// NewPipeline creates a Pipeline. The ledger may be nil when build history
// recording is disabled; stagingDir holds the per-step build contexts.
func NewPipeline(builder repository.ImageBuilder, images repository.ImageRepository, ledger repository.BuildLedger, stagingDir string, useCache bool) *Pipeline {
	return &Pipeline{
		builder:    builder,
		images:     images,
		ledger:     ledger,
		stagingDir: stagingDir,
		useCache:   useCache,
	}
}

// plannedStep is one step with its digest resolved up front. Digests chain:
// each one covers the previous step's digest plus the step's own inputs, so
// a change anywhere invalidates every later layer but none of the earlier
// ones.
type plannedStep struct {
	kind   model.StepKind
	digest string
	stage  func(dir string) error // nil when the step needs no context files
}

// DataDirGlobs returns ignore globs covering dataDir when it lies inside
// sourceDir, and nil otherwise. The ledger and staged build contexts live
// there and mutate during a build; digesting or copying them would change the
// source layer on every run and make the source stage copy its own
// destination.
func DataDirGlobs(sourceDir, dataDir string) []string {
	rel, err := filepath.Rel(sourceDir, dataDir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	rel = filepath.ToSlash(rel)
	return []string{rel, rel + "/**"}
}

// plan resolves the digest chain for every step of the recipe.
func (p *Pipeline) plan(r *model.Recipe, sourceDir string, manifest *model.Manifest) ([]plannedStep, error) {
	ignore := append(r.IgnoreGlobs(), DataDirGlobs(sourceDir, filepath.Dir(p.stagingDir))...)

	sourceDigest, err := digest.Directory(sourceDir, ignore)
	if err != nil {
		return nil, fmt.Errorf("failed to digest source tree: %w", err)
	}

	base := digest.New().String(string(model.StepBase)).String(r.Runtime.Ref()).Sum()

	env := digest.New().String(string(model.StepEnv)).String(base).
		String(r.Workdir).SortedPairs(r.Env).Sum()

	system := digest.New().String(string(model.StepSystemDeps)).String(env).
		Strings(sortedCopy(r.SystemPackages)).Sum()

	appDeps := digest.New().String(string(model.StepAppDeps)).String(system).
		String(manifest.Path).String(installCommand(r, manifest)).Field(manifest.Content).Sum()

	source := digest.New().String(string(model.StepSource)).String(appDeps).
		String(sourceDigest).Sum()

	launch := digest.New().String(string(model.StepLaunch)).String(source).
		Strings(r.Launch.CommandLine()).String(strconv.Itoa(r.Launch.Port)).Sum()

	return []plannedStep{
		{kind: model.StepBase, digest: base},
		{kind: model.StepEnv, digest: env},
		{kind: model.StepSystemDeps, digest: system},
		{kind: model.StepAppDeps, digest: appDeps, stage: func(dir string) error {
			return files.CopyFile(manifestSourcePath(sourceDir, manifest), stagedManifestPath(dir, manifest))
		}},
		{kind: model.StepSource, digest: source, stage: func(dir string) error {
			return files.CopyDirectory(sourceDir, dir, ignore)
		}},
		{kind: model.StepLaunch, digest: launch},
	}, nil
}

// Run executes the pipeline for the recipe and returns the build record.
// The record is returned even on failure so callers can inspect which step
// failed and what it printed.
func (p *Pipeline) Run(ctx context.Context, r *model.Recipe, sourceDir string) (*model.Build, error) {
	manifest, err := model.LoadManifest(sourceDir, r.Manifest)
	if err != nil {
		return nil, err
	}

	steps, err := p.plan(r, sourceDir, manifest)
	if err != nil {
		return nil, err
	}

	b := &model.Build{
		ID:         uuid.NewString(),
		RecipeName: r.Name,
		Digest:     steps[len(steps)-1].digest,
		Status:     model.BuildStatusRunning,
		StartedAt:  time.Now(),
	}
	p.recordBuild(b)

	log.Info("[Build] pipeline started", "build_id", b.ID, "recipe", r.Name, "digest", digest.Short(b.Digest))

	var (
		parentTag string
		runErr    error
	)
	for _, step := range steps {
		layerTag := fmt.Sprintf("%s:%s", LayerRepository, digest.Short(step.digest))
		rec := model.StepRecord{
			Kind:     step.kind,
			Status:   model.StepStatusPending,
			Digest:   step.digest,
			LayerTag: layerTag,
		}

		if runErr != nil {
			// A previous step failed; the rest of the chain never runs.
			rec.Status, _ = rec.Status.Transition(model.StepStatusSkipped)
			p.appendStep(b, rec)
			continue
		}

		started := time.Now()
		var output string
		rec.Status, output, rec.CacheHit, runErr = p.executeStep(ctx, step, rec, parentTag, r, manifest)
		rec.Duration = time.Since(started)
		if runErr != nil {
			rec.Output = strings.TrimSpace(output)
			if rec.Output == "" {
				rec.Output = runErr.Error()
			}
			b.Status = model.BuildStatusFailed
			b.Error = fmt.Sprintf("step %s failed: %v", step.kind, runErr)
			log.Error("[Build] step failed", "build_id", b.ID, "step", step.kind, "error", runErr)
		} else {
			parentTag = layerTag
			log.Debug("[Build] step finished", "build_id", b.ID, "step", step.kind, "status", rec.Status, "layer", layerTag)
		}
		p.appendStep(b, rec)
	}

	if runErr == nil {
		finalTag := fmt.Sprintf("%s:%s", r.Name, digest.Short(b.Digest))
		if err := p.images.TagImage(ctx, parentTag, finalTag); err != nil {
			b.Status = model.BuildStatusFailed
			b.Error = fmt.Sprintf("failed to tag final image: %v", err)
			runErr = fmt.Errorf("failed to tag final image %s: %w", finalTag, err)
		} else {
			b.ImageTag = finalTag
			b.Status = model.BuildStatusCompleted
			log.Info("[Build] pipeline completed", "build_id", b.ID, "image", finalTag, "cache_hits", b.CacheHits())
		}
	}

	b.FinishedAt = time.Now()
	p.finishBuild(b)

	if runErr != nil {
		return b, fmt.Errorf("build %s failed: %w", b.ID, runErr)
	}
	return b, nil
}

// executeStep runs one step: cache lookup first, then a real layer build.
// The returned output is what the underlying build printed, empty for cached
// steps and non-build failures.
func (p *Pipeline) executeStep(ctx context.Context, step plannedStep, rec model.StepRecord, parentTag string, r *model.Recipe, manifest *model.Manifest) (model.StepStatus, string, bool, error) {
	if p.useCache {
		exists, err := p.images.ImageExists(ctx, rec.LayerTag)
		if err != nil {
			failed, _ := rec.Status.Transition(model.StepStatusFailed)
			return failed, "", false, fmt.Errorf("layer cache lookup failed: %w", err)
		}
		if exists {
			status, _ := rec.Status.Transition(model.StepStatusCached)
			return status, "", true, nil
		}
	}

	status, err := rec.Status.Transition(model.StepStatusRunning)
	if err != nil {
		return rec.Status, "", false, err
	}

	contextDir, cleanup, err := p.stageContext(step)
	if err != nil {
		failed, _ := status.Transition(model.StepStatusFailed)
		return failed, "", false, err
	}
	defer cleanup()

	dockerfile := generateDockerfile(step.kind, parentTag, r, manifest)
	output, err := p.builder.BuildLayer(ctx, repository.BuildLayerRequest{
		Tag:        rec.LayerTag,
		Dockerfile: dockerfile,
		ContextDir: contextDir,
	})
	if err != nil {
		failed, _ := status.Transition(model.StepStatusFailed)
		return failed, output, false, err
	}

	completed, _ := status.Transition(model.StepStatusCompleted)
	return completed, "", false, nil
}

// stageContext prepares the build context directory for a step. Steps
// without host files get an empty directory.
func (p *Pipeline) stageContext(step plannedStep) (string, func(), error) {
	if err := os.MkdirAll(p.stagingDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	dir, err := os.MkdirTemp(p.stagingDir, string(step.kind)+"-")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create build context: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	if step.stage != nil {
		if err := step.stage(dir); err != nil {
			cleanup()
			return "", nil, fmt.Errorf("failed to stage build context: %w", err)
		}
	}
	return dir, cleanup, nil
}

func (p *Pipeline) recordBuild(b *model.Build) {
	if p.ledger == nil {
		return
	}
	if err := p.ledger.RecordBuild(b); err != nil {
		log.Warn("[Build] failed to record build", "build_id", b.ID, "error", err)
	}
}

func (p *Pipeline) appendStep(b *model.Build, rec model.StepRecord) {
	b.Steps = append(b.Steps, rec)
	if p.ledger == nil {
		return
	}
	if err := p.ledger.RecordStep(b.ID, rec); err != nil {
		log.Warn("[Build] failed to record step", "build_id", b.ID, "step", rec.Kind, "error", err)
	}
}

func (p *Pipeline) finishBuild(b *model.Build) {
	if p.ledger == nil {
		return
	}
	if err := p.ledger.FinishBuild(b); err != nil {
		log.Warn("[Build] failed to finish build record", "build_id", b.ID, "error", err)
	}
}

// sortedCopy sorts a copy of the slice. Package order in the recipe is
// presentation, not semantics; sorting keeps the digest stable under
// reordering.
func sortedCopy(values []string) []string {
	out := append([]string(nil), values...)
	sort.Strings(out)
	return out
}

// manifestSourcePath is the manifest's location in the source tree.
func manifestSourcePath(sourceDir string, m *model.Manifest) string {
	return filepath.Join(sourceDir, filepath.FromSlash(m.Path))
}

// stagedManifestPath is where the manifest lands inside a staged context.
// Only the base name is staged; the COPY instruction refers to it directly.
func stagedManifestPath(contextDir string, m *model.Manifest) string {
	return filepath.Join(contextDir, path.Base(m.Path))
}

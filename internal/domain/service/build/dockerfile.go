package build

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"envforge/internal/domain/model"
)

// generateDockerfile renders the Dockerfile for a single pipeline step.
// Every step except the first builds FROM the parent layer tag, so each
// declarative concern lands in its own cacheable image layer.
func generateDockerfile(kind model.StepKind, parentTag string, r *model.Recipe, manifest *model.Manifest) string {
	var sb strings.Builder

	switch kind {
	case model.StepBase:
		fmt.Fprintf(&sb, "FROM %s\n", r.Runtime.Ref())

	case model.StepEnv:
		fmt.Fprintf(&sb, "FROM %s\n", parentTag)
		fmt.Fprintf(&sb, "WORKDIR %s\n", r.Workdir)
		for _, k := range sortedKeys(r.Env) {
			fmt.Fprintf(&sb, "ENV %s=%q\n", k, r.Env[k])
		}

	case model.StepSystemDeps:
		fmt.Fprintf(&sb, "FROM %s\n", parentTag)
		if len(r.SystemPackages) > 0 {
			pkgs := append([]string(nil), r.SystemPackages...)
			sort.Strings(pkgs)
			// Install and index cleanup share one instruction so stale
			// package lists never bloat the layer.
			fmt.Fprintf(&sb, "RUN apt-get update \\\n    && apt-get install -y --no-install-recommends %s \\\n    && rm -rf /var/lib/apt/lists/*\n",
				strings.Join(pkgs, " "))
		}

	case model.StepAppDeps:
		fmt.Fprintf(&sb, "FROM %s\n", parentTag)
		fmt.Fprintf(&sb, "COPY %s ./%s\n", path.Base(manifest.Path), path.Base(manifest.Path))
		fmt.Fprintf(&sb, "RUN %s\n", installCommand(r, manifest))

	case model.StepSource:
		fmt.Fprintf(&sb, "FROM %s\n", parentTag)
		fmt.Fprintf(&sb, "COPY . %s/\n", r.Workdir)

	case model.StepLaunch:
		fmt.Fprintf(&sb, "FROM %s\n", parentTag)
		fmt.Fprintf(&sb, "EXPOSE %d\n", r.Launch.Port)
		fmt.Fprintf(&sb, "CMD %s\n", execForm(r.Launch.CommandLine()))
	}

	return sb.String()
}

// installCommand returns the dependency installation command, defaulting to
// pip against the staged manifest.
func installCommand(r *model.Recipe, manifest *model.Manifest) string {
	if r.Install != "" {
		return r.Install
	}
	return fmt.Sprintf("pip install --no-cache-dir -r %s", path.Base(manifest.Path))
}

// execForm renders an argv as a Dockerfile exec-form JSON array so the
// process runs as PID 1 without a shell in between.
func execForm(argv []string) string {
	quoted := make([]string, 0, len(argv))
	for _, a := range argv {
		quoted = append(quoted, fmt.Sprintf("%q", a))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

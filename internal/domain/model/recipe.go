package model

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultHost binds the launched process to all interfaces.
	DefaultHost = "0.0.0.0"
	// DefaultWorkdir is the working directory inside the environment when the
	// recipe does not set one.
	DefaultWorkdir = "/app"
)

// DefaultIgnore lists path patterns that are never part of the source layer:
// VCS metadata, the tool's own data directory, interpreter caches and editor
// noise. Recipe-level ignores are merged on top.
var DefaultIgnore = []string{
	".git",
	".git/**",
	".envforge",
	".envforge/**",
	"**/__pycache__/**",
	"**/*.pyc",
	"**/*.swp",
	"**/.DS_Store",
}

var namePattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// Recipe is the declarative build and launch description of one environment.
// It materializes the environment descriptor (runtime, workdir, env,
// system packages), the dependency manifest reference, and the launch
// specification.
type Recipe struct {
	Name           string            `yaml:"name"`
	Runtime        RuntimeSpec       `yaml:"runtime"`
	Workdir        string            `yaml:"workdir,omitempty"`
	Env            map[string]string `yaml:"env,omitempty"`
	SystemPackages []string          `yaml:"system_packages,omitempty"`
	Manifest       string            `yaml:"manifest"`
	Install        string            `yaml:"install,omitempty"`
	Source         string            `yaml:"source,omitempty"`
	Ignore         []string          `yaml:"ignore,omitempty"`
	Launch         LaunchSpec        `yaml:"launch"`
}

// RuntimeSpec pins the base runtime image. Floating tags are rejected so two
// builds of the same recipe always start from the same base.
type RuntimeSpec struct {
	Image   string `yaml:"image"`
	Version string `yaml:"version"`
}

// Ref returns the full image reference, e.g. "python:3.11-slim".
func (r RuntimeSpec) Ref() string {
	return r.Image + ":" + r.Version
}

// Validate checks that the runtime is pinned to a fixed version.
func (r RuntimeSpec) Validate() error {
	if r.Image == "" {
		return fmt.Errorf("runtime image is required")
	}
	v := strings.ToLower(strings.TrimSpace(r.Version))
	switch {
	case v == "":
		return fmt.Errorf("runtime version is required: floating base images are not reproducible")
	case v == "latest", v == "stable", v == "edge":
		return fmt.Errorf("runtime version %q is a floating tag: pin an exact version", r.Version)
	case strings.HasSuffix(v, "*"):
		return fmt.Errorf("runtime version %q contains a wildcard: pin an exact version", r.Version)
	}
	return nil
}

// LaunchSpec describes the single foreground process started in the
// environment. It is evaluated once per container start.
type LaunchSpec struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
	Host    string   `yaml:"host,omitempty"`
	Port    int      `yaml:"port"`
	Reload  bool     `yaml:"reload,omitempty"`
}

// CommandLine renders the full argv for the launched process, including the
// host, port and reload flags.
func (l LaunchSpec) CommandLine() []string {
	argv := append([]string{l.Command}, l.Args...)
	argv = append(argv, "--host", l.Host, "--port", strconv.Itoa(l.Port))
	if l.Reload {
		argv = append(argv, "--reload")
	}
	return argv
}

// ApplyDefaults fills optional fields that were omitted from the recipe.
func (r *Recipe) ApplyDefaults() {
	if r.Workdir == "" {
		r.Workdir = DefaultWorkdir
	}
	if r.Source == "" {
		r.Source = "."
	}
	if r.Launch.Host == "" {
		r.Launch.Host = DefaultHost
	}
}

// Validate checks the recipe for contradictions before any build step runs.
func (r *Recipe) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("recipe name is required")
	}
	if !namePattern.MatchString(r.Name) {
		return fmt.Errorf("recipe name %q is invalid: lowercase letters, digits and dashes only", r.Name)
	}
	if err := r.Runtime.Validate(); err != nil {
		return err
	}
	if !path.IsAbs(r.Workdir) {
		return fmt.Errorf("workdir %q must be an absolute path", r.Workdir)
	}
	for key := range r.Env {
		if key == "" {
			return fmt.Errorf("environment variable with empty name")
		}
	}
	for _, pkg := range r.SystemPackages {
		if strings.TrimSpace(pkg) == "" {
			return fmt.Errorf("system package list contains an empty entry")
		}
	}
	if r.Manifest == "" {
		return fmt.Errorf("dependency manifest path is required")
	}
	if r.Launch.Command == "" {
		return fmt.Errorf("launch command is required")
	}
	if r.Launch.Port < 1 || r.Launch.Port > 65535 {
		return fmt.Errorf("launch port %d is out of range 1-65535", r.Launch.Port)
	}
	return nil
}

// IgnoreGlobs returns the recipe ignores merged with the built-in defaults.
func (r *Recipe) IgnoreGlobs() []string {
	globs := make([]string, 0, len(DefaultIgnore)+len(r.Ignore))
	globs = append(globs, DefaultIgnore...)
	globs = append(globs, r.Ignore...)
	return globs
}

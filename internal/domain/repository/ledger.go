package repository

import (
	"envforge/internal/domain/model"
)

// BuildLedger persists build records and their step outcomes so that cache
// behaviour and failures stay inspectable after the fact. Lookup methods
// return (nil, nil) when no record exists.
type BuildLedger interface {
	// RecordBuild inserts a new build in its initial state.
	RecordBuild(build *model.Build) error

	// RecordStep appends one step outcome to an existing build.
	RecordStep(buildID string, step model.StepRecord) error

	// FinishBuild updates the build's terminal status, image tag and error.
	FinishBuild(build *model.Build) error

	// GetBuild returns the build with the given ID.
	GetBuild(id string) (*model.Build, error)

	// LatestBuild returns the most recent successful build for the recipe.
	LatestBuild(recipeName string) (*model.Build, error)

	// ListBuilds returns up to limit builds for the recipe, newest first.
	// An empty recipeName lists builds across all recipes.
	ListBuilds(recipeName string, limit int) ([]*model.Build, error)

	// Close releases the underlying store.
	Close() error
}

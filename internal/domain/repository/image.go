package repository

import (
	"context"
	"time"
)

// ImageSummary describes one locally stored image.
type ImageSummary struct {
	ID      string
	Tags    []string
	Size    int64
	Created time.Time
}

// ImageRepository manages locally stored environment and layer images.
type ImageRepository interface {
	// ImageExists reports whether an image with the given tag is present.
	ImageExists(ctx context.Context, tag string) (bool, error)

	// TagImage applies an additional tag to an existing image.
	TagImage(ctx context.Context, source, target string) error

	// ListImages returns images whose repository matches the given reference
	// pattern (e.g. "envforge/layer").
	ListImages(ctx context.Context, reference string) ([]ImageSummary, error)

	// RemoveImage deletes the image with the given tag.
	RemoveImage(ctx context.Context, tag string) error
}

package repository

import "context"

// BuildLayerRequest describes one image layer to build on top of its parent.
type BuildLayerRequest struct {
	// Tag is the target tag of the layer image.
	Tag string
	// Dockerfile is the full Dockerfile content for this layer.
	Dockerfile string
	// ContextDir is the build context directory. Empty means the layer needs
	// no files from the host.
	ContextDir string
}

// ImageBuilder builds a single image layer. A non-zero exit of the underlying
// build aborts the pipeline; there is no retry.
type ImageBuilder interface {
	BuildLayer(ctx context.Context, req BuildLayerRequest) (output string, err error)
}

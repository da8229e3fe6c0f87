// Package image implements the image repository over the Docker API client.
package image

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/docker/docker/api/types/filters"
	imagetypes "github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"

	"envforge/internal/domain/repository"
	"envforge/pkg/log"
)

// dockerImageRepository provides thread-safe image queries and mutations
// using a Docker client.
type dockerImageRepository struct {
	client *client.Client
	mu     sync.RWMutex
}

// Compile-time assertion that *dockerImageRepository implements the interface.
var _ repository.ImageRepository = (*dockerImageRepository)(nil)

// NewDockerImageRepository creates a new ImageRepository using the provided
// Docker client. Logs a fatal error and exits if the client is nil.
func NewDockerImageRepository(dockerClient *client.Client) repository.ImageRepository {
	if dockerClient == nil {
		log.Fatal("[Image] docker client is nil – repository cannot be created")
	}
	return &dockerImageRepository{client: dockerClient}
}

func (r *dockerImageRepository) ImageExists(ctx context.Context, tag string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	images, err := r.client.ImageList(ctx, imagetypes.ListOptions{
		Filters: filters.NewArgs(filters.Arg("reference", tag)),
	})
	if err != nil {
		log.Error("[Image] failed to list images", "reference", tag, "error", err)
		return false, fmt.Errorf("list images: %w", err)
	}

	return len(images) > 0, nil
}

func (r *dockerImageRepository) TagImage(ctx context.Context, source, target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.client.ImageTag(ctx, source, target); err != nil {
		log.Error("[Image] failed to tag image", "source", source, "target", target, "error", err)
		return fmt.Errorf("tag image: %w", err)
	}

	log.Debug("[Image] image tagged", "source", source, "target", target)
	return nil
}

func (r *dockerImageRepository) ListImages(ctx context.Context, reference string) ([]repository.ImageSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	images, err := r.client.ImageList(ctx, imagetypes.ListOptions{
		Filters: filters.NewArgs(filters.Arg("reference", reference)),
	})
	if err != nil {
		log.Error("[Image] failed to list images", "reference", reference, "error", err)
		return nil, fmt.Errorf("list images: %w", err)
	}

	summaries := make([]repository.ImageSummary, 0, len(images))
	for _, img := range images {
		summaries = append(summaries, repository.ImageSummary{
			ID:      img.ID,
			Tags:    img.RepoTags,
			Size:    img.Size,
			Created: time.Unix(img.Created, 0),
		})
	}

	return summaries, nil
}

func (r *dockerImageRepository) RemoveImage(ctx context.Context, tag string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.client.ImageRemove(ctx, tag, imagetypes.RemoveOptions{PruneChildren: true}); err != nil {
		log.Error("[Image] failed to remove image", "tag", tag, "error", err)
		return fmt.Errorf("remove image: %w", err)
	}

	log.Info("[Image] image removed", "tag", tag)
	return nil
}

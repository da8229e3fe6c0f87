package environment

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"

	"envforge/internal/domain/model"
	"envforge/internal/infra/docker"
	"envforge/pkg/log"
)

// GetLogs collects stdout and stderr of every container in the environment,
// ordered by timestamp.
func (r *dockerEnvironmentRepository) GetLogs(ctx context.Context, environmentName string, since, until int64, tail int) (model.Logs, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	containers, err := r.listContainers(ctx, environmentName)
	if err != nil {
		return model.Logs{}, err
	}

	result := model.Logs{
		Logs:       make([]model.LogEntry, 0),
		Containers: make([]model.Container, 0, len(containers)),
	}

	for _, c := range containers {
		name := strings.TrimPrefix(c.Names[0], "/")
		result.Containers = append(result.Containers, model.Container{
			ID:         c.ID,
			Name:       name,
			StatusCode: docker.MapDockerStateToContainerStatus(c.State),
		})

		stdout, err := r.collectContainerLogs(ctx, c.ID, model.LogChannelStdout, since, until, tail)
		if err != nil {
			log.Warn("[Environment] failed to read stdout", "container", name, "error", err)
		}
		result.Logs = append(result.Logs, stdout...)

		stderr, err := r.collectContainerLogs(ctx, c.ID, model.LogChannelStderr, since, until, tail)
		if err != nil {
			log.Warn("[Environment] failed to read stderr", "container", name, "error", err)
		}
		result.Logs = append(result.Logs, stderr...)
	}

	sort.Slice(result.Logs, func(i, j int) bool {
		return result.Logs[i].Timestamp < result.Logs[j].Timestamp
	})

	return result, nil
}

// collectContainerLogs reads one output channel of a container. Channels are
// requested separately so each entry carries its origin.
func (r *dockerEnvironmentRepository) collectContainerLogs(ctx context.Context, containerID string, channel model.LogChannel, since, until int64, tail int) ([]model.LogEntry, error) {
	opts := container.LogsOptions{
		ShowStdout: channel == model.LogChannelStdout,
		ShowStderr: channel == model.LogChannelStderr,
		Timestamps: true,
	}
	if since > 0 {
		opts.Since = strconv.FormatInt(since, 10)
	}
	if until > 0 {
		opts.Until = strconv.FormatInt(until, 10)
	}
	if tail > 0 {
		opts.Tail = strconv.Itoa(tail)
	}

	reader, err := r.client.ContainerLogs(ctx, containerID, opts)
	if err != nil {
		return nil, fmt.Errorf("read container logs: %w", err)
	}
	defer reader.Close()

	return parseLogStream(reader, containerID, channel), nil
}

// parseLogStream splits a log stream into timestamped entries. Lines whose
// timestamp cannot be parsed are kept with a zero timestamp rather than
// dropped. The leading 8-byte multiplexing header added by non-TTY containers
// is stripped from each line.
func parseLogStream(reader io.Reader, containerID string, channel model.LogChannel) []model.LogEntry {
	entries := make([]model.LogEntry, 0)

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := stripStreamHeader(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		entry := model.LogEntry{
			ContainerID: containerID,
			Channel:     channel,
			Message:     string(line),
		}

		sp := strings.SplitN(string(line), " ", 2)
		if len(sp) == 2 {
			if ts, err := time.Parse(time.RFC3339Nano, sp[0]); err == nil {
				entry.Timestamp = ts.UnixMilli()
				entry.Message = sp[1]
			}
		}

		entries = append(entries, entry)
	}

	return entries
}

// stripStreamHeader removes the Docker stream multiplexing header when
// present. The header starts with the stream byte (0, 1 or 2) followed by
// three zero bytes.
func stripStreamHeader(line []byte) []byte {
	if len(line) >= 8 && line[0] <= 2 && line[1] == 0 && line[2] == 0 && line[3] == 0 {
		return line[8:]
	}
	return line
}

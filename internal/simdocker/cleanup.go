package simdocker

import (
	"context"
	"fmt"
	"time"

	docker "github.com/fsouza/go-dockerclient"
)

// Container labels set on every simulator container.
const (
	LabelImage   = "simclient.image"
	LabelCreated = "simclient.created" // RFC3339
)

func containerLabels(image string, now time.Time) map[string]string {
	return map[string]string{
		LabelImage:   image,
		LabelCreated: now.UTC().Format(time.RFC3339),
	}
}

// Cleanup removes simulator containers of the configured image that were
// left behind by earlier runs, e.g. after a crash. Only containers created
// more than olderThan ago are removed. It returns the number of containers
// removed.
func (l *Launcher) Cleanup(ctx context.Context, olderThan time.Duration) (int, error) {
	containers, err := l.client.ListContainers(docker.ListContainersOptions{
		Context: ctx,
		All:     true,
		Filters: map[string][]string{"label": {LabelImage + "=" + l.config.Image}},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list containers: %v", err)
	}
	var removed int
	for _, c := range stale(containers, time.Now(), olderThan) {
		if err := l.remove(c.ID); err == nil {
			removed++
		}
	}
	if removed > 0 {
		l.logger.Info("removed stale simulator containers", "count", removed)
	}
	return removed, nil
}

// stale returns the containers created before now-olderThan. Containers
// without a valid creation label are kept.
func stale(containers []docker.APIContainers, now time.Time, olderThan time.Duration) []docker.APIContainers {
	var result []docker.APIContainers
	for _, c := range containers {
		created, err := time.Parse(time.RFC3339, c.Labels[LabelCreated])
		if err != nil || now.Sub(created) < olderThan {
			continue
		}
		result = append(result, c)
	}
	return result
}

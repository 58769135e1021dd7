package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rbarros/podcast-hub/app/catalog"
)

// MaintainCatalogTask re-runs title derivation over the stored catalog,
// correcting entries whose derived fields drifted from their titles.
type MaintainCatalogTask struct {
	Task
	maintainer *catalog.Maintainer
}

func NewMaintainCatalogTask(maintainer *catalog.Maintainer) *MaintainCatalogTask {
	return &MaintainCatalogTask{
		Task:       NewTask(TaskTypeMaintainCatalog, "catalog"),
		maintainer: maintainer,
	}
}

func (t *MaintainCatalogTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	numbers, err := t.maintainer.RederiveNumbers()
	if err != nil {
		return fmt.Errorf("episode-number maintenance failed: %w", err)
	}

	names, err := t.maintainer.RederiveNames()
	if err != nil {
		return fmt.Errorf("base-name maintenance failed: %w", err)
	}

	slog.Info("Task completed",
		"type", "MaintainCatalog",
		"duration", t.GetDuration(),
		"numbers_updated", numbers.UpdatedCount,
		"names_updated", names.UpdatedCount,
		"total", numbers.TotalCount,
		"errors", len(numbers.Errors)+len(names.Errors))

	return nil
}

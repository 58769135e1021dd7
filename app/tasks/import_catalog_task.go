package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rbarros/podcast-hub/app/catalog"
)

// ImportCatalogTask imports a curated missing-episode metadata file into the
// catalog. Import is idempotent, so re-running it after a restart is safe.
type ImportCatalogTask struct {
	Task
	importer *catalog.Importer
	filePath string
}

func NewImportCatalogTask(importer *catalog.Importer, filePath string) *ImportCatalogTask {
	return &ImportCatalogTask{
		Task:     NewTask(TaskTypeImportCatalog, filePath),
		importer: importer,
		filePath: filePath,
	}
}

func (t *ImportCatalogTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	summary, err := t.importer.RunFile(t.filePath)
	if err != nil {
		return fmt.Errorf("failed to import catalog file: %w", err)
	}

	slog.Info("Task completed",
		"type", "ImportCatalog",
		"file", t.filePath,
		"duration", t.GetDuration(),
		"imported", summary.ImportedCount,
		"skipped", summary.SkippedCount,
		"total", summary.TotalCount,
		"errors", len(summary.Errors))

	return nil
}

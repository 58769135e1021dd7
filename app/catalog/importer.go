package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rbarros/podcast-hub/app/database"
	"github.com/rbarros/podcast-hub/app/feed"
)

// Importer loads curated missing-episode records into the catalog. Import is
// idempotent: records whose title is already present are skipped, and a
// title-uniqueness violation raised by a concurrent import counts as a skip.
type Importer struct {
	repo database.MissingEpisodeRepository
}

func NewImporter(repo database.MissingEpisodeRepository) *Importer {
	return &Importer{repo: repo}
}

func (i *Importer) Run(records []ImportRecord) *ImportSummary {
	summary := &ImportSummary{
		TotalCount: len(records),
		Errors:     []RecordError{},
	}

	for _, record := range records {
		imported, err := i.importRecord(record)
		switch {
		case err != nil:
			summary.Errors = append(summary.Errors, RecordError{
				Title: record.Title,
				Error: err.Error(),
			})
		case imported:
			summary.ImportedCount++
		default:
			summary.SkippedCount++
		}
	}

	slog.Info("Catalog import finished",
		"imported", summary.ImportedCount,
		"skipped", summary.SkippedCount,
		"total", summary.TotalCount,
		"errors", len(summary.Errors))

	return summary
}

// RunFile imports records from a .json or .yml/.yaml metadata file.
func (i *Importer) RunFile(path string) (*ImportSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}

	var records []ImportRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("invalid YAML in metadata file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("invalid JSON in metadata file: %w", err)
		}
	}

	return i.Run(records), nil
}

func (i *Importer) importRecord(record ImportRecord) (bool, error) {
	if record.Title == "" {
		return false, errors.New("missing title")
	}
	if record.AudioURL == "" {
		return false, errors.New("missing audio_url")
	}

	existing, err := i.repo.GetByTitle(record.Title)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	info := feed.ParseTitle(record.Title)

	ep := database.MissingEpisode{
		Title:           record.Title,
		URL:             record.URL,
		AudioURL:        record.AudioURL,
		ImageURL:        record.ImageURL,
		Description:     record.Description,
		PublishDate:     parsePublishDate(record.PublishDate),
		EpisodeNumber:   info.EpisodeNumber,
		PodcastName:     info.PodcastName,
		BasePodcastName: info.BasePodcastName,
	}

	if _, err := i.repo.Insert(ep); err != nil {
		// Lost a check-then-insert race; the record is present either way.
		if errors.Is(err, database.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

var publishDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

func parsePublishDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range publishDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

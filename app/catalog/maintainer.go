package catalog

import (
	"fmt"
	"log/slog"

	"github.com/rbarros/podcast-hub/app/database"
	"github.com/rbarros/podcast-hub/app/feed"
)

// Maintainer re-runs title derivation over stored catalog entries, updating
// rows whose derived values drifted from the stored ones. Used to backfill
// after parsing changes; per-entry failures never abort a pass.
type Maintainer struct {
	repo database.MissingEpisodeRepository
}

func NewMaintainer(repo database.MissingEpisodeRepository) *Maintainer {
	return &Maintainer{repo: repo}
}

// RederiveNumbers re-derives episode numbers (and the podcast name alongside
// them) for all stored entries and updates those that disagree.
func (m *Maintainer) RederiveNumbers() (*MaintenanceSummary, error) {
	return m.run("episode-numbers", func(ep database.MissingEpisode) (database.MissingEpisode, bool) {
		info := feed.ParseTitle(ep.Title)

		changed := false
		if info.EpisodeNumber != nil && !intPtrEqual(ep.EpisodeNumber, info.EpisodeNumber) {
			ep.EpisodeNumber = info.EpisodeNumber
			changed = true
		}
		if info.PodcastName != "" && ep.PodcastName != info.PodcastName {
			ep.PodcastName = info.PodcastName
			changed = true
		}

		return ep, changed
	})
}

// RederiveNames backfills podcast and base names for entries missing them.
func (m *Maintainer) RederiveNames() (*MaintenanceSummary, error) {
	return m.run("base-names", func(ep database.MissingEpisode) (database.MissingEpisode, bool) {
		changed := false

		if ep.BasePodcastName == "" && ep.PodcastName != "" {
			ep.BasePodcastName = feed.BaseName(ep.PodcastName)
			changed = true
		}

		if ep.PodcastName == "" {
			info := feed.ParseTitle(ep.Title)
			if info.PodcastName != "" {
				ep.PodcastName = info.PodcastName
				ep.BasePodcastName = info.BasePodcastName
				changed = true
			}
		}

		return ep, changed
	})
}

func (m *Maintainer) run(pass string, derive func(database.MissingEpisode) (database.MissingEpisode, bool)) (*MaintenanceSummary, error) {
	episodes, err := m.repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog entries: %w", err)
	}

	summary := &MaintenanceSummary{
		TotalCount: len(episodes),
		Errors:     []RecordError{},
	}

	for _, ep := range episodes {
		updated, changed := derive(ep)
		if !changed {
			continue
		}

		err := m.repo.UpdateDerived(updated.ID, updated.EpisodeNumber, updated.PodcastName, updated.BasePodcastName)
		if err != nil {
			summary.Errors = append(summary.Errors, RecordError{
				Title: ep.Title,
				Error: err.Error(),
			})
			continue
		}
		summary.UpdatedCount++
	}

	slog.Info("Catalog maintenance pass finished",
		"pass", pass,
		"updated", summary.UpdatedCount,
		"total", summary.TotalCount,
		"errors", len(summary.Errors))

	return summary, nil
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

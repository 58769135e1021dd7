package feed

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/rbarros/podcast-hub/app/database"
)

// CatalogLookup is the read capability of the missing-episode catalog
// consumed by the reconciler.
type CatalogLookup interface {
	FindCandidates(podcastName, baseName string) ([]database.MissingEpisode, error)
}

// Reconciler merges a freshly fetched feed with catalog-sourced missing
// episodes: live feed items are mapped to episode records, catalog entries
// already covered by the feed (same title-derived episode number) are
// dropped, and the combined list is sorted newest first.
type Reconciler struct {
	catalog CatalogLookup
}

func NewReconciler(catalog CatalogLookup) *Reconciler {
	return &Reconciler{catalog: catalog}
}

func (r *Reconciler) Run(f *Feed) []Episode {
	episodes := make([]Episode, 0, len(f.Items))
	feedNumbers := make(map[int]bool)

	for _, item := range f.Items {
		ep := episodeFromItem(f, item)
		if ep.EpisodeNumber != nil {
			feedNumbers[*ep.EpisodeNumber] = true
		}
		episodes = append(episodes, ep)
	}

	episodes = append(episodes, r.catalogEpisodes(f, feedNumbers)...)

	sortEpisodes(episodes)

	return episodes
}

// catalogEpisodes returns catalog entries for the feed's podcast that the
// live feed does not already cover. A catalog failure degrades to an empty
// result; the feed remains servable on its own.
func (r *Reconciler) catalogEpisodes(f *Feed, feedNumbers map[int]bool) []Episode {
	title := f.Title
	if idx := strings.Index(title, "|"); idx >= 0 {
		title = strings.TrimSpace(title[:idx])
	}

	info := ParseTitle(title)
	if info.BasePodcastName == "" {
		// Feed titles rarely follow the "Name Number - Title" convention;
		// fall back to the first token of the title.
		info.PodcastName = title
		info.BasePodcastName = BaseName(title)
	}
	if info.BasePodcastName == "" {
		return nil
	}

	entries, err := r.catalog.FindCandidates(info.PodcastName, info.BasePodcastName)
	if err != nil {
		slog.Warn("Missing-episode catalog unavailable, serving feed-only episodes",
			"podcast", info.BasePodcastName, "error", err)
		return nil
	}

	episodes := make([]Episode, 0, len(entries))
	for _, entry := range entries {
		// The live feed is authoritative for numbers it contains.
		if entry.EpisodeNumber != nil && feedNumbers[*entry.EpisodeNumber] {
			continue
		}
		episodes = append(episodes, episodeFromCatalog(f, entry))
	}

	return episodes
}

// episodeFromItem builds an episode record from a live feed item. The episode
// number is derived from the title, overriding any extension-supplied value,
// so that feed and catalog episodes share one derivation rule.
func episodeFromItem(f *Feed, item Item) Episode {
	podcastImage := item.ImageURL
	if podcastImage == "" {
		podcastImage = f.Image()
	}

	return Episode{
		Title:         item.Title,
		Link:          item.Link,
		AudioURL:      item.AudioURL,
		Description:   item.Description,
		ImageURL:      item.ImageURL,
		PublishedAt:   item.PublishedAt,
		EpisodeNumber: ParseTitle(item.Title).EpisodeNumber,
		Duration:      item.Duration,
		PodcastTitle:  f.Title,
		PodcastImage:  podcastImage,
		Source:        SourceFeed,
	}
}

func episodeFromCatalog(f *Feed, entry database.MissingEpisode) Episode {
	imageURL := entry.ImageURL
	if imageURL == "" {
		imageURL = f.Image()
	}

	return Episode{
		Title:         entry.Title,
		Link:          entry.URL,
		AudioURL:      entry.AudioURL,
		Description:   entry.Description,
		ImageURL:      imageURL,
		PublishedAt:   entry.PublishDate,
		EpisodeNumber: entry.EpisodeNumber,
		PodcastTitle:  f.Title,
		PodcastImage:  f.Image(),
		Source:        SourceCatalog,
	}
}

// sortEpisodes orders episodes descending by publish date. Records without a
// date sort after dated ones and keep their input order.
func sortEpisodes(episodes []Episode) {
	sort.SliceStable(episodes, func(i, j int) bool {
		a, b := episodes[i].PublishedAt, episodes[j].PublishedAt
		switch {
		case a != nil && b != nil:
			return a.After(*b)
		case a != nil:
			return true
		default:
			return false
		}
	})
}

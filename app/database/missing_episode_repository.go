package database

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// PgMissingEpisodeRepository handles database operations for the
// missing-episode catalog.
type PgMissingEpisodeRepository struct {
	db *DB
}

var _ MissingEpisodeRepository = (*PgMissingEpisodeRepository)(nil)

func NewMissingEpisodeRepository(db *DB) *PgMissingEpisodeRepository {
	return &PgMissingEpisodeRepository{db: db}
}

const missingEpisodeColumns = `
	id, title, COALESCE(url, ''), audio_url, COALESCE(image_url, ''),
	COALESCE(description, ''), publish_date, episode_number,
	COALESCE(podcast_name, ''), COALESCE(base_podcast_name, ''),
	created_at, updated_at`

// FindCandidates returns catalog entries loosely matching the given podcast
// identity. The catalog is small and hand-curated, so the three-way match is
// applied here rather than in SQL, which keeps it accent-insensitive.
// False positives are resolved downstream by episode-number deduplication.
func (r *PgMissingEpisodeRepository) FindCandidates(podcastName, baseName string) ([]MissingEpisode, error) {
	episodes, err := r.GetAll()
	if err != nil {
		return nil, err
	}

	candidates := make([]MissingEpisode, 0, len(episodes))
	for _, ep := range episodes {
		if candidateMatch(ep, podcastName, baseName) {
			candidates = append(candidates, ep)
		}
	}

	return candidates, nil
}

// candidateMatch reports whether a catalog entry matches a podcast identity:
// stored podcast name contains podcastName, stored base name contains
// baseName, or the title itself contains baseName.
func candidateMatch(ep MissingEpisode, podcastName, baseName string) bool {
	return foldContains(ep.PodcastName, podcastName) ||
		foldContains(ep.BasePodcastName, baseName) ||
		foldContains(ep.Title, baseName)
}

// FindByPodcast returns entries whose podcast name contains the given name,
// optionally restricted to specific episode numbers.
func (r *PgMissingEpisodeRepository) FindByPodcast(podcastName string, numbers []int) ([]MissingEpisode, error) {
	var rows *sql.Rows
	var err error

	if len(numbers) > 0 {
		rows, err = r.db.Query(`
			SELECT `+missingEpisodeColumns+`
			FROM missing_episodes
			WHERE podcast_name ILIKE '%' || $1 || '%'
			  AND episode_number = ANY($2)
			ORDER BY episode_number ASC NULLS FIRST, title ASC
		`, podcastName, pq.Array(numbers))
	} else {
		rows, err = r.db.Query(`
			SELECT `+missingEpisodeColumns+`
			FROM missing_episodes
			WHERE podcast_name ILIKE '%' || $1 || '%'
			ORDER BY episode_number ASC NULLS FIRST, title ASC
		`, podcastName)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find missing episodes: %w", err)
	}
	defer rows.Close()

	return scanMissingEpisodes(rows)
}

func (r *PgMissingEpisodeRepository) GetAll() ([]MissingEpisode, error) {
	rows, err := r.db.Query(`
		SELECT ` + missingEpisodeColumns + `
		FROM missing_episodes
		ORDER BY episode_number ASC NULLS FIRST, title ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get missing episodes: %w", err)
	}
	defer rows.Close()

	return scanMissingEpisodes(rows)
}

func (r *PgMissingEpisodeRepository) GetByTitle(title string) (*MissingEpisode, error) {
	row := r.db.QueryRow(`
		SELECT `+missingEpisodeColumns+`
		FROM missing_episodes
		WHERE title = $1
	`, title)

	ep, err := scanMissingEpisode(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get missing episode by title: %w", err)
	}

	return ep, nil
}

func (r *PgMissingEpisodeRepository) GetCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM missing_episodes").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get missing episode count: %w", err)
	}
	return count, nil
}

func (r *PgMissingEpisodeRepository) GetStatsByPodcast() ([]PodcastStats, error) {
	rows, err := r.db.Query(`
		SELECT COALESCE(NULLIF(podcast_name, ''), 'Unknown'), COUNT(*)
		FROM missing_episodes
		GROUP BY 1
		ORDER BY 1 ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog stats: %w", err)
	}
	defer rows.Close()

	var stats []PodcastStats
	for rows.Next() {
		var s PodcastStats
		if err := rows.Scan(&s.PodcastName, &s.EpisodeCount); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stats rows: %w", err)
	}

	return stats, nil
}

// Insert stores a new catalog entry. Returns ErrDuplicate when an entry with
// the same title already exists, so concurrent imports of the same record
// surface as a skip rather than a silent duplicate.
func (r *PgMissingEpisodeRepository) Insert(ep MissingEpisode) (string, error) {
	var id string
	err := r.db.QueryRow(`
		INSERT INTO missing_episodes (
			title, url, audio_url, image_url, description,
			publish_date, episode_number, podcast_name, base_podcast_name
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, ep.Title, ep.URL, ep.AudioURL, ep.ImageURL, ep.Description,
		ep.PublishDate, ep.EpisodeNumber, ep.PodcastName, ep.BasePodcastName).Scan(&id)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return "", ErrDuplicate
		}
		return "", fmt.Errorf("failed to insert missing episode: %w", err)
	}

	return id, nil
}

// UpdateDerived replaces the title-derived fields of a catalog entry.
func (r *PgMissingEpisodeRepository) UpdateDerived(id string, episodeNumber *int, podcastName, basePodcastName string) error {
	_, err := r.db.Exec(`
		UPDATE missing_episodes
		SET episode_number = $2, podcast_name = $3, base_podcast_name = $4, updated_at = NOW()
		WHERE id = $1
	`, id, episodeNumber, podcastName, basePodcastName)

	if err != nil {
		return fmt.Errorf("failed to update missing episode: %w", err)
	}

	return nil
}

func scanMissingEpisodes(rows *sql.Rows) ([]MissingEpisode, error) {
	var episodes []MissingEpisode
	for rows.Next() {
		var ep MissingEpisode
		var publishDate sql.NullTime
		var episodeNumber sql.NullInt64

		err := rows.Scan(
			&ep.ID, &ep.Title, &ep.URL, &ep.AudioURL, &ep.ImageURL,
			&ep.Description, &publishDate, &episodeNumber,
			&ep.PodcastName, &ep.BasePodcastName,
			&ep.CreatedAt, &ep.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan missing episode row: %w", err)
		}

		if publishDate.Valid {
			t := publishDate.Time
			ep.PublishDate = &t
		}
		if episodeNumber.Valid {
			n := int(episodeNumber.Int64)
			ep.EpisodeNumber = &n
		}

		episodes = append(episodes, ep)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating missing episode rows: %w", err)
	}

	return episodes, nil
}

func scanMissingEpisode(row *sql.Row) (*MissingEpisode, error) {
	var ep MissingEpisode
	var publishDate sql.NullTime
	var episodeNumber sql.NullInt64

	err := row.Scan(
		&ep.ID, &ep.Title, &ep.URL, &ep.AudioURL, &ep.ImageURL,
		&ep.Description, &publishDate, &episodeNumber,
		&ep.PodcastName, &ep.BasePodcastName,
		&ep.CreatedAt, &ep.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if publishDate.Valid {
		t := publishDate.Time
		ep.PublishDate = &t
	}
	if episodeNumber.Valid {
		n := int(episodeNumber.Int64)
		ep.EpisodeNumber = &n
	}

	return &ep, nil
}

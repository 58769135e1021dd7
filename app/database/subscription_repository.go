package database

import (
	"fmt"

	"github.com/lib/pq"
)

// PgSubscriptionRepository handles database operations for per-user podcast
// subscriptions.
type PgSubscriptionRepository struct {
	db *DB
}

var _ SubscriptionRepository = (*PgSubscriptionRepository)(nil)

func NewSubscriptionRepository(db *DB) *PgSubscriptionRepository {
	return &PgSubscriptionRepository{db: db}
}

func (r *PgSubscriptionRepository) GetForUser(userID string) ([]Subscription, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, url, title, COALESCE(author, ''),
		       COALESCE(description, ''), COALESCE(image_url, ''), added_at
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY added_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []Subscription
	for rows.Next() {
		var sub Subscription
		err := rows.Scan(&sub.ID, &sub.UserID, &sub.URL, &sub.Title,
			&sub.Author, &sub.Description, &sub.ImageURL, &sub.AddedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription row: %w", err)
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscription rows: %w", err)
	}

	return subs, nil
}

// Insert stores a new subscription. The (user_id, url) uniqueness constraint
// is the authoritative guard against double subscribes; a violation surfaces
// as ErrDuplicate.
func (r *PgSubscriptionRepository) Insert(sub Subscription) (*Subscription, error) {
	err := r.db.QueryRow(`
		INSERT INTO subscriptions (user_id, url, title, author, description, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, added_at
	`, sub.UserID, sub.URL, sub.Title, sub.Author, sub.Description, sub.ImageURL).
		Scan(&sub.ID, &sub.AddedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert subscription: %w", err)
	}

	return &sub, nil
}

// DeleteByID removes a subscription owned by the given user. Returns false
// when no matching subscription exists.
func (r *PgSubscriptionRepository) DeleteByID(id, userID string) (bool, error) {
	result, err := r.db.Exec(`
		DELETE FROM subscriptions WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete subscription: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected > 0, nil
}

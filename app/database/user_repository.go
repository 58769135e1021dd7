package database

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

type PgUserRepository struct {
	db *DB
}

var _ UserRepository = (*PgUserRepository)(nil)

func NewUserRepository(db *DB) *PgUserRepository {
	return &PgUserRepository{db: db}
}

func (r *PgUserRepository) GetByID(id string) (*User, error) {
	var user User
	err := r.db.QueryRow(`
		SELECT id, username, email, password_hash, created_at
		FROM users WHERE id = $1
	`, id).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *PgUserRepository) GetByEmail(email string) (*User, error) {
	var user User
	err := r.db.QueryRow(`
		SELECT id, username, email, password_hash, created_at
		FROM users WHERE email = $1
	`, email).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

func (r *PgUserRepository) Insert(user User) (*User, error) {
	err := r.db.QueryRow(`
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, user.Username, user.Email, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return &user, nil
}

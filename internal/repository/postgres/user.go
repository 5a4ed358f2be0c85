package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"wordtrainer/internal/domain"

	"github.com/lib/pq"
)

// UserRepo implements repository.UserStore with one JSONB row per user
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Load reads every user record
func (r *UserRepo) Load() (domain.Users, error) {
	query := `SELECT user_id, data FROM users`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := domain.Users{}
	for rows.Next() {
		var userID int64
		var data []byte
		if err := rows.Scan(&userID, &data); err != nil {
			return nil, err
		}

		u := &domain.UserRecord{}
		if err := json.Unmarshal(data, u); err != nil {
			return nil, fmt.Errorf("failed to decode user %d: %w", userID, err)
		}
		users[userID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	users.Normalize()
	return users, nil
}

// Save replaces the stored document with users in a single transaction
func (r *UserRepo) Save(users domain.Users) error {
	ids := make([]int64, 0, len(users))
	for id := range users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	upsert := `
		INSERT INTO users (user_id, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`
	for _, id := range ids {
		u := users[id]
		if u == nil {
			u = domain.NewUserRecord()
		}
		data, err := json.Marshal(u)
		if err != nil {
			return fmt.Errorf("failed to encode user %d: %w", id, err)
		}
		if _, err := tx.Exec(upsert, id, string(data)); err != nil {
			return fmt.Errorf("failed to save user %d: %w", id, err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM users WHERE user_id <> ALL($1)`, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to prune users: %w", err)
	}

	return tx.Commit()
}

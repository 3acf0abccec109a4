package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/orbitflows/orbit/pkg/models"
	"github.com/orbitflows/orbit/pkg/persistence"
)

// UserRepository implements account storage on PostgreSQL.
type UserRepository struct {
	db *sql.DB
}

const userColumns = "id, email, name, tier, credits, google_access_token, google_refresh_token, notion_access_token, created_at, updated_at"

func (r *UserRepository) ByID(ctx context.Context, id string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = $1"

	var (
		user         models.User
		name         sql.NullString
		tier         sql.NullString
		googleAccess sql.NullString
		googleRefr   sql.NullString
		notionAccess sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Email, &name, &tier,
		&user.Credits, &googleAccess, &googleRefr, &notionAccess, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("ByID", "user", id, persistence.ErrUserNotFound)
		}

		return nil, persistence.NewStoreError("ByID", "user", id, err)
	}

	user.Name = name.String
	user.Tier = tier.String
	user.GoogleAccessToken = googleAccess.String
	user.GoogleRefreshToken = googleRefr.String
	user.NotionAccessToken = notionAccess.String

	return &user, nil
}

func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}

	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, tier, credits, google_access_token, google_refresh_token, notion_access_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			tier = EXCLUDED.tier,
			credits = EXCLUDED.credits,
			google_access_token = EXCLUDED.google_access_token,
			google_refresh_token = EXCLUDED.google_refresh_token,
			notion_access_token = EXCLUDED.notion_access_token,
			updated_at = EXCLUDED.updated_at
	`, user.ID, user.Email, user.Name, user.Tier, user.Credits,
		user.GoogleAccessToken, user.GoogleRefreshToken, user.NotionAccessToken, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return persistence.NewStoreError("Save", "user", user.ID, err)
	}

	return nil
}

// AdjustCredits applies delta in a single statement so concurrent runs by one
// user cannot lose updates. The WHERE clause refuses adjustments that would
// drop the balance below zero.
func (r *UserRepository) AdjustCredits(ctx context.Context, id string, delta int) (int, error) {
	var balance int

	err := r.db.QueryRowContext(ctx, `
		UPDATE users SET credits = credits + $2, updated_at = NOW()
		WHERE id = $1 AND credits + $2 >= 0
		RETURNING credits
	`, id, delta).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Either the user is missing or the balance would go negative.
			if _, lookupErr := r.ByID(ctx, id); lookupErr != nil {
				return 0, lookupErr
			}

			return 0, persistence.NewStoreError("AdjustCredits", "user", id, persistence.ErrInsufficientCredits)
		}

		return 0, persistence.NewStoreError("AdjustCredits", "user", id, err)
	}

	return balance, nil
}

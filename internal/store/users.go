package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetUser(ctx context.Context, id string) (*UserProfile, error) {
	if id == "" {
		return nil, errors.New("user id is required")
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id,
			weighted_interests,
			interest_embedding,
			latitude,
			longitude,
			recommended_event_ids,
			updated_at
		FROM matchmaker.users
		WHERE id = $1
	`, id)

	profile, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return profile, nil
}

// ListUsersWithEmbedding returns every profile whose interest embedding is
// present, ordered by id so clustering input is stable across calls.
func (s *UserStore) ListUsersWithEmbedding(ctx context.Context) ([]UserProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id,
			weighted_interests,
			interest_embedding,
			latitude,
			longitude,
			recommended_event_ids,
			updated_at
		FROM matchmaker.users
		WHERE interest_embedding IS NOT NULL
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var profiles []UserProfile
	for rows.Next() {
		profile, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		profiles = append(profiles, *profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return profiles, nil
}

// UpdateInterestEmbedding stores a freshly generated embedding together with
// the summary text it was derived from.
func (s *UserStore) UpdateInterestEmbedding(ctx context.Context, id string, embedding []float32, summary string) error {
	if id == "" {
		return errors.New("user id is required")
	}
	if len(embedding) == 0 {
		return errors.New("embedding is required")
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE matchmaker.users
		SET interest_embedding = $2,
			weighted_interests = $3,
			updated_at = NOW()
		WHERE id = $1
	`, id, vectorOrNil(embedding), summary)
	if err != nil {
		return fmt.Errorf("update interest embedding: %w", err)
	}
	return checkUpdated(result, id)
}

func (s *UserStore) UpdateRecommendedEvents(ctx context.Context, id string, eventIDs []string) error {
	if id == "" {
		return errors.New("user id is required")
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE matchmaker.users
		SET recommended_event_ids = $2,
			updated_at = NOW()
		WHERE id = $1
	`, id, pq.Array(eventIDs))
	if err != nil {
		return fmt.Errorf("update recommended events: %w", err)
	}
	return checkUpdated(result, id)
}

func checkUpdated(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*UserProfile, error) {
	var profile UserProfile
	var embedding nullVector
	var lat, lng sql.NullFloat64
	var recommended pq.StringArray

	if err := row.Scan(
		&profile.ID,
		&profile.WeightedInterests,
		&embedding,
		&lat,
		&lng,
		&recommended,
		&profile.UpdatedAt,
	); err != nil {
		return nil, err
	}

	profile.InterestEmbedding = embedding.vec
	if lat.Valid && lng.Valid {
		profile.Location = &LatLng{Lat: lat.Float64, Lng: lng.Float64}
	}
	profile.RecommendedEventIDs = recommended
	return &profile, nil
}

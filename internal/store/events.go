package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

func (s *EventStore) GetEvent(ctx context.Context, id string) (*EventRecord, error) {
	if id == "" {
		return nil, errors.New("event id is required")
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id,
			title,
			description,
			categories,
			embedding,
			latitude,
			longitude,
			venue_name,
			venue_type,
			attendees_count,
			interested_count,
			created_at
		FROM matchmaker.events
		WHERE id = $1
	`, id)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// ListEventsWithEmbedding returns every scorable event, newest first so
// ranking ties resolved by recency follow the query order.
func (s *EventStore) ListEventsWithEmbedding(ctx context.Context) ([]EventRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id,
			title,
			description,
			categories,
			embedding,
			latitude,
			longitude,
			venue_name,
			venue_type,
			attendees_count,
			interested_count,
			created_at
		FROM matchmaker.events
		WHERE embedding IS NOT NULL
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []EventRecord
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// GetEventsByIDs resolves a cached recommendation list, preserving the order
// of ids. Missing events are skipped rather than erroring so a stale cache
// entry cannot break rendering.
func (s *EventStore) GetEventsByIDs(ctx context.Context, ids []string) ([]EventRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id,
			title,
			description,
			categories,
			embedding,
			latitude,
			longitude,
			venue_name,
			venue_type,
			attendees_count,
			interested_count,
			created_at
		FROM matchmaker.events
		WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get events by ids: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]EventRecord, len(ids))
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		byID[event.ID] = *event
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	events := make([]EventRecord, 0, len(ids))
	for _, id := range ids {
		if event, ok := byID[id]; ok {
			events = append(events, event)
		}
	}
	return events, nil
}

func (s *EventStore) InsertEvent(ctx context.Context, event *EventRecord) error {
	if event.Title == "" {
		return errors.New("event title is required")
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	var lat, lng sql.NullFloat64
	if event.Location != nil {
		lat = sql.NullFloat64{Float64: event.Location.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: event.Location.Lng, Valid: true}
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO matchmaker.events (
			id,
			title,
			description,
			categories,
			embedding,
			latitude,
			longitude,
			venue_name,
			venue_type,
			attendees_count,
			interested_count,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
	`,
		event.ID,
		event.Title,
		event.Description,
		pq.Array(event.Categories),
		vectorOrNil(event.Embedding),
		lat,
		lng,
		event.VenueName,
		event.VenueType,
		event.AttendeesCount,
		event.InterestedCount,
	); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// UpdateEmbedding regenerates an event's embedding after a content change.
func (s *EventStore) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	if id == "" {
		return errors.New("event id is required")
	}
	if len(embedding) == 0 {
		return errors.New("embedding is required")
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE matchmaker.events
		SET embedding = $2
		WHERE id = $1
	`, id, vectorOrNil(embedding))
	if err != nil {
		return fmt.Errorf("update event embedding: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanEvent(row rowScanner) (*EventRecord, error) {
	var event EventRecord
	var embedding nullVector
	var lat, lng sql.NullFloat64
	var categories pq.StringArray

	if err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&categories,
		&embedding,
		&lat,
		&lng,
		&event.VenueName,
		&event.VenueType,
		&event.AttendeesCount,
		&event.InterestedCount,
		&event.CreatedAt,
	); err != nil {
		return nil, err
	}

	event.Categories = categories
	event.Embedding = embedding.vec
	if lat.Valid && lng.Valid {
		event.Location = &LatLng{Lat: lat.Float64, Lng: lng.Float64}
	}
	return &event, nil
}

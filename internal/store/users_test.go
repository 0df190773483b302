package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var userColumns = []string{
	"id",
	"weighted_interests",
	"interest_embedding",
	"latitude",
	"longitude",
	"recommended_event_ids",
	"updated_at",
}

func TestGetUser(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows(userColumns).AddRow(
		"user-1",
		"rock climbing (0.81)",
		"[0.1,0.2,0.3]",
		30.2672,
		-97.7431,
		"{event-1,event-2}",
		time.Now(),
	)
	mock.ExpectQuery("SELECT id").WithArgs("user-1").WillReturnRows(rows)

	store := NewUserStore(db)
	profile, err := store.GetUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if len(profile.InterestEmbedding) != 3 {
		t.Fatalf("expected 3-dim embedding, got %d", len(profile.InterestEmbedding))
	}
	if profile.Location == nil || profile.Location.Lat != 30.2672 {
		t.Fatalf("unexpected location: %+v", profile.Location)
	}
	if len(profile.RecommendedEventIDs) != 2 {
		t.Fatalf("expected 2 cached events, got %v", profile.RecommendedEventIDs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetUserAbsentFields(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows(userColumns).AddRow(
		"user-2",
		"",
		nil,
		nil,
		nil,
		nil,
		time.Now(),
	)
	mock.ExpectQuery("SELECT id").WithArgs("user-2").WillReturnRows(rows)

	store := NewUserStore(db)
	profile, err := store.GetUser(context.Background(), "user-2")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if profile.InterestEmbedding != nil {
		t.Fatalf("expected nil embedding, got %v", profile.InterestEmbedding)
	}
	if profile.Location != nil {
		t.Fatalf("expected nil location, got %+v", profile.Location)
	}
}

func TestGetUserNotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id").WithArgs("missing").WillReturnRows(sqlmock.NewRows(userColumns))

	store := NewUserStore(db)
	_, err = store.GetUser(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListUsersWithEmbedding(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows(userColumns).
		AddRow("user-1", "hiking (0.50)", "[1,0]", nil, nil, nil, time.Now()).
		AddRow("user-2", "jazz (0.70)", "[0,1]", nil, nil, nil, time.Now())
	mock.ExpectQuery("SELECT id").WillReturnRows(rows)

	store := NewUserStore(db)
	profiles, err := store.ListUsersWithEmbedding(context.Background())
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}
	if profiles[0].ID != "user-1" || profiles[1].ID != "user-2" {
		t.Fatalf("unexpected order: %s, %s", profiles[0].ID, profiles[1].ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateRecommendedEvents(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE matchmaker.users").
		WithArgs("user-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewUserStore(db)
	if err := store.UpdateRecommendedEvents(context.Background(), "user-1", []string{"event-1"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateInterestEmbeddingNotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE matchmaker.users").
		WithArgs("missing", sqlmock.AnyArg(), "jazz (0.70)").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewUserStore(db)
	err = store.UpdateInterestEmbedding(context.Background(), "missing", []float32{0.1}, "jazz (0.70)")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

package interests

import (
	"context"
	"errors"
	"fmt"

	"github.com/BrooksFlannery/who-all2-sub001/internal/store"
	"github.com/BrooksFlannery/who-all2-sub001/pkg/llm"
	"github.com/BrooksFlannery/who-all2-sub001/pkg/logging"
)

type SignalStore interface {
	InsertSignals(ctx context.Context, signals []store.InterestSignal) error
	ListSignals(ctx context.Context, userID string) ([]store.InterestSignal, error)
}

type UserStore interface {
	UpdateInterestEmbedding(ctx context.Context, id string, embedding []float32, summary string) error
}

// Updater appends extracted interest signals and regenerates the user's
// interest embedding from the rebuilt weighted summary. The embedding is
// always of the summary text, never an average of per-signal embeddings.
type Updater struct {
	signals  SignalStore
	users    UserStore
	embedder llm.EmbeddingClient
	logger   logging.Logger
}

func NewUpdater(signals SignalStore, users UserStore, embedder llm.EmbeddingClient, logger logging.Logger) *Updater {
	return &Updater{signals: signals, users: users, embedder: embedder, logger: logger}
}

// Ingest appends the given signals and refreshes the profile's summary and
// embedding. Returns the new summary.
func (u *Updater) Ingest(ctx context.Context, userID string, signals []store.InterestSignal) (string, error) {
	if userID == "" {
		return "", errors.New("user id is required")
	}
	if len(signals) == 0 {
		return "", errors.New("signals are required")
	}
	for i := range signals {
		signals[i].UserID = userID
	}

	if err := u.signals.InsertSignals(ctx, signals); err != nil {
		return "", fmt.Errorf("insert signals: %w", err)
	}

	all, err := u.signals.ListSignals(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("list signals: %w", err)
	}

	summary := store.BuildWeightedSummary(all)
	if summary == "" {
		return "", errors.New("no usable signals for summary")
	}

	vectors, err := u.embedder.Embed(ctx, []string{summary})
	if err != nil {
		return "", fmt.Errorf("embed summary: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return "", errors.New("embedder returned no vector")
	}

	if err := u.users.UpdateInterestEmbedding(ctx, userID, vectors[0], summary); err != nil {
		return "", fmt.Errorf("update profile: %w", err)
	}

	u.logger.WithFields(logging.Fields{
		"user_id": userID,
		"signals": len(signals),
	}).Info("Refreshed interest embedding")
	return summary, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

type SignalStore struct {
	db *sql.DB
}

func NewSignalStore(db *sql.DB) *SignalStore {
	return &SignalStore{db: db}
}

// InsertSignals appends extracted interest signals. Signals are immutable
// once written.
func (s *SignalStore) InsertSignals(ctx context.Context, signals []InterestSignal) error {
	if len(signals) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO matchmaker.interest_signals (
			id,
			user_id,
			keyword,
			confidence,
			specificity,
			source_message_id,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, signal := range signals {
		if signal.UserID == "" {
			return errors.New("user id is required for signal")
		}
		if signal.Keyword == "" {
			return errors.New("keyword is required for signal")
		}
		id := signal.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := stmt.ExecContext(
			ctx,
			id,
			signal.UserID,
			signal.Keyword,
			signal.Confidence,
			signal.Specificity,
			signal.SourceMessageID,
		); err != nil {
			return fmt.Errorf("insert signal: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *SignalStore) ListSignals(ctx context.Context, userID string) ([]InterestSignal, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id,
			user_id,
			keyword,
			confidence,
			specificity,
			source_message_id,
			created_at
		FROM matchmaker.interest_signals
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list signals: %w", err)
	}
	defer rows.Close()

	var signals []InterestSignal
	for rows.Next() {
		var signal InterestSignal
		if err := rows.Scan(
			&signal.ID,
			&signal.UserID,
			&signal.Keyword,
			&signal.Confidence,
			&signal.Specificity,
			&signal.SourceMessageID,
			&signal.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		signals = append(signals, signal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signals: %w", err)
	}
	return signals, nil
}

// BuildWeightedSummary turns accumulated signals into the human-readable
// weighted-interest string that gets embedded. Weight is confidence times
// specificity; duplicate keywords keep their highest weight. The output lists
// keywords by descending weight, e.g.
// "rock climbing (0.81), live music (0.64)".
func BuildWeightedSummary(signals []InterestSignal) string {
	if len(signals) == 0 {
		return ""
	}

	weights := make(map[string]float64)
	order := make([]string, 0, len(signals))
	for _, signal := range signals {
		keyword := strings.ToLower(strings.TrimSpace(signal.Keyword))
		if keyword == "" {
			continue
		}
		weight := signal.Confidence * signal.Specificity
		if existing, ok := weights[keyword]; ok {
			if weight > existing {
				weights[keyword] = weight
			}
			continue
		}
		weights[keyword] = weight
		order = append(order, keyword)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return weights[order[i]] > weights[order[j]]
	})

	parts := make([]string, 0, len(order))
	for _, keyword := range order {
		parts = append(parts, fmt.Sprintf("%s (%.2f)", keyword, weights[keyword]))
	}
	return strings.Join(parts, ", ")
}

// SummaryKeywords parses the keyword terms back out of a weighted summary.
func SummaryKeywords(summary string) []string {
	if summary == "" {
		return nil
	}
	var keywords []string
	for _, part := range strings.Split(summary, ",") {
		part = strings.TrimSpace(part)
		if idx := strings.LastIndex(part, " ("); idx > 0 {
			part = part[:idx]
		}
		part = strings.TrimSpace(part)
		if part != "" {
			keywords = append(keywords, part)
		}
	}
	return keywords
}

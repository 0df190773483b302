package store

import (
	"database/sql/driver"
	"errors"
	"time"

	"github.com/pgvector/pgvector-go"
)

// ErrNotFound is returned when a requested profile or event does not exist.
var ErrNotFound = errors.New("entity not found")

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// UserProfile holds a user's inferred interests. InterestEmbedding is nil
// until the user has talked enough for an embedding to be generated; Location
// is nil when the user has not shared one.
type UserProfile struct {
	ID                  string
	WeightedInterests   string
	InterestEmbedding   []float32
	Location            *LatLng
	RecommendedEventIDs []string
	UpdatedAt           time.Time
}

type EventRecord struct {
	ID              string
	Title           string
	Description     string
	Categories      []string
	Embedding       []float32
	Location        *LatLng
	VenueName       string
	VenueType       string
	AttendeesCount  int
	InterestedCount int
	CreatedAt       time.Time
}

// InterestSignal is one extracted keyword with its extraction scores.
// Signals are append-only; they accumulate per user over time.
type InterestSignal struct {
	ID              string
	UserID          string
	Keyword         string
	Confidence      float64
	Specificity     float64
	SourceMessageID string
	CreatedAt       time.Time
}

// nullVector scans a nullable vector column into a []float32, leaving the
// slice nil on NULL.
type nullVector struct {
	vec []float32
}

func (n *nullVector) Scan(src any) error {
	if src == nil {
		n.vec = nil
		return nil
	}
	var v pgvector.Vector
	if err := v.Scan(src); err != nil {
		return err
	}
	n.vec = v.Slice()
	return nil
}

// vectorOrNil converts an optional embedding to a driver value, writing NULL
// for absent embeddings.
func vectorOrNil(vec []float32) driver.Valuer {
	if vec == nil {
		return nilValuer{}
	}
	return pgvector.NewVector(vec)
}

type nilValuer struct{}

func (nilValuer) Value() (driver.Value, error) { return nil, nil }

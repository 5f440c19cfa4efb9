package store

import (
	"context"
	"time"

	"github.com/nhle/offercal/internal/model"
)

// TimestampLayout is ISO 8601 with a numeric UTC offset and optional
// fractional seconds, e.g. "2023-06-02T14:05:30+02:00".
const TimestampLayout = "2006-01-02T15:04:05.999999999-07:00"

// OfferStore persists a whole collection of offers so later runs can skip
// the mail server.
type OfferStore interface {
	// Exists reports whether a previously saved collection is available.
	Exists(ctx context.Context) (bool, error)

	// Load returns the saved collection in the order it was saved.
	Load(ctx context.Context) ([]model.Offer, error)

	// Save replaces any saved collection with offers.
	Save(ctx context.Context, offers []model.Offer) error
}

// formatTimestamp renders t in TimestampLayout, keeping its offset.
func formatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// parseTimestamp accepts RFC 3339 timestamps, including the "Z" suffix.
func parseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, &model.ParseError{Field: "timestamp", Value: value, Err: err}
	}
	return t, nil
}

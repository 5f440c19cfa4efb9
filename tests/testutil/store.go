package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/offercal/internal/model"
	"github.com/nhle/offercal/internal/store"
)

// NewTestStore creates a SQLiteStore in a temporary file with all
// migrations applied. It automatically closes the store when the test
// completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "offers.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// Offer builds an offer at the given wall-clock time in a fixed zone
// offsetHours east of UTC.
func Offer(
	year int, month time.Month, day, hour, minute int, offsetHours int, subject string,
) model.Offer {
	zone := time.FixedZone("", offsetHours*60*60)
	return model.Offer{
		Timestamp: time.Date(year, month, day, hour, minute, 0, 0, zone),
		Subject:   subject,
	}
}

// RawMessage renders a minimal RFC 5322 message for an offer, suitable for
// email.Parse. Days are not zero padded, as many servers send them.
func RawMessage(o model.Offer) []byte {
	return []byte("From: " + model.DefaultSender + "\r\n" +
		"Subject: " + o.Subject + "\r\n" +
		"Date: " + o.Timestamp.Format("Mon, 2 Jan 2006 15:04:05 -0700") + "\r\n" +
		"\r\n" +
		"Book now.\r\n")
}

// AssertOffersEqual fails the test unless got and want hold the same
// offers, offsets included, in the same order.
func AssertOffersEqual(t *testing.T, want, got []model.Offer) {
	t.Helper()

	if len(want) != len(got) {
		t.Fatalf("got %d offers, want %d", len(got), len(want))
	}
	for i := range want {
		if !want[i].Equal(got[i]) {
			t.Errorf("offer %d: got %v %q, want %v %q",
				i, got[i].Timestamp, got[i].Subject, want[i].Timestamp, want[i].Subject)
		}
	}
}

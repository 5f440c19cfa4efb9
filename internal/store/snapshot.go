package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nhle/offercal/internal/model"
)

// snapshotEntry is one element of the snapshot JSON array.
type snapshotEntry struct {
	Timestamp *string `json:"timestamp"`
	Subject   *string `json:"subject"`
}

// Snapshot is an OfferStore backed by a single JSON file.
type Snapshot struct {
	path   string
	logger zerolog.Logger
}

// NewSnapshot returns a snapshot store for the JSON file at path.
func NewSnapshot(path string, logger zerolog.Logger) *Snapshot {
	return &Snapshot{path: path, logger: logger}
}

// Path returns the snapshot file location.
func (s *Snapshot) Path() string {
	return s.path
}

// Exists reports whether the snapshot file is present.
func (s *Snapshot) Exists(_ context.Context) (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, &model.FileSystemError{Op: "checking snapshot", Path: s.path, Err: err}
}

// Load decodes the snapshot file.
func (s *Snapshot) Load(_ context.Context) ([]model.Offer, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &model.FileSystemError{Op: "reading snapshot", Path: s.path, Err: err}
	}

	offers, err := DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %s: %w", s.path, err)
	}

	s.logger.Info().Str("path", s.path).Int("offers", len(offers)).Msg("loaded offers from snapshot")

	return offers, nil
}

// Save writes offers to a temporary file next to the snapshot and renames
// it into place, so readers never observe a partial document.
func (s *Snapshot) Save(_ context.Context, offers []model.Offer) error {
	data, err := EncodeSnapshot(offers)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(s.path), uuid.NewString()))

	if err := writeFileSync(tmp, data); err != nil {
		_ = os.Remove(tmp)
		return &model.FileSystemError{Op: "writing snapshot", Path: tmp, Err: err}
	}

	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return &model.FileSystemError{Op: "replacing snapshot", Path: s.path, Err: err}
	}

	s.logger.Info().Str("path", s.path).Int("offers", len(offers)).Msg("saved offers to snapshot")

	return nil
}

// EncodeSnapshot renders offers as a 2-space indented JSON array of
// {"timestamp", "subject"} objects without escaping non-ASCII or HTML
// characters.
func EncodeSnapshot(offers []model.Offer) ([]byte, error) {
	entries := make([]snapshotEntry, 0, len(offers))
	for _, o := range offers {
		ts := formatTimestamp(o.Timestamp)
		subject := o.Subject
		entries = append(entries, snapshotEntry{Timestamp: &ts, Subject: &subject})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entries); err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}

	return buf.Bytes(), nil
}

// DecodeSnapshot parses a snapshot document.
func DecodeSnapshot(data []byte) ([]model.Offer, error) {
	var entries []snapshotEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &model.ParseError{Field: "snapshot JSON", Err: err}
	}

	offers := make([]model.Offer, 0, len(entries))
	for i, e := range entries {
		if e.Timestamp == nil || e.Subject == nil {
			return nil, &model.ParseError{
				Field: fmt.Sprintf("snapshot entry %d", i),
				Err:   errors.New("timestamp and subject are required"),
			}
		}

		ts, err := parseTimestamp(*e.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("snapshot entry %d: %w", i, err)
		}

		offers = append(offers, model.Offer{Timestamp: ts, Subject: *e.Subject})
	}

	return offers, nil
}

// writeFileSync creates path exclusively, writes data and flushes it to
// disk before closing.
func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

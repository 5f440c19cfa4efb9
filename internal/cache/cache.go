package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nhle/offercal/internal/model"
	"github.com/nhle/offercal/internal/source"
)

// DirStore keeps raw message bytes in one file per message id under a
// directory. Entries never expire.
type DirStore struct {
	dir    string
	logger zerolog.Logger
}

// NewDirStore returns a store rooted at dir. The directory is created on
// the first Put.
func NewDirStore(dir string, logger zerolog.Logger) *DirStore {
	return &DirStore{dir: dir, logger: logger}
}

// Dir returns the cache root.
func (d *DirStore) Dir() string {
	return d.dir
}

// path maps a message id to its file, refusing ids that would escape the
// cache directory.
func (d *DirStore) path(id source.MessageID) (string, error) {
	name := string(id)
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", &model.FileSystemError{
			Op:   "resolving cache entry",
			Path: filepath.Join(d.dir, name),
			Err:  fmt.Errorf("invalid message id %q", name),
		}
	}
	return filepath.Join(d.dir, name), nil
}

// Get returns the cached bytes for id. A missing entry is reported as
// ok == false with a nil error.
func (d *DirStore) Get(id source.MessageID) ([]byte, bool, error) {
	p, err := d.path(id)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, &model.FileSystemError{Op: "reading cache entry", Path: p, Err: err}
	}

	d.logger.Debug().Str("id", string(id)).Msg("cache hit")

	return data, true, nil
}

// Put writes raw under id, creating the cache directory and replacing any
// existing entry.
func (d *DirStore) Put(id source.MessageID, raw []byte) error {
	p, err := d.path(id)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return &model.FileSystemError{Op: "creating cache directory", Path: d.dir, Err: err}
	}

	if err := os.WriteFile(p, raw, 0o644); err != nil {
		return &model.FileSystemError{Op: "writing cache entry", Path: p, Err: err}
	}

	d.logger.Debug().Str("id", string(id)).Int("bytes", len(raw)).Msg("cached message")

	return nil
}

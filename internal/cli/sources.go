package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/offercal/internal/cache"
	"github.com/nhle/offercal/internal/collect"
	"github.com/nhle/offercal/internal/source"
	"github.com/nhle/offercal/internal/source/email"
	"github.com/nhle/offercal/internal/store"
)

// lazyDialer defers credential resolution until the mail server is
// actually needed, so runs served from a snapshot never prompt.
type lazyDialer struct {
	a *app
}

func (d lazyDialer) Dial(ctx context.Context) (source.Session, error) {
	dialer, err := d.a.newIMAPClient()
	if err != nil {
		return nil, err
	}
	return dialer.Dial(ctx)
}

// newIMAPClient builds an IMAP client from the loaded configuration.
func (a *app) newIMAPClient() (*email.IMAPClient, error) {
	imapCfg := a.cfg.IMAP
	if imapCfg.Username == "" {
		return nil, errors.New("--username is required to query the mail server")
	}

	host, port, err := email.ParseHostPort(imapCfg.Host)
	if err != nil {
		return nil, fmt.Errorf("parsing --host: %w", err)
	}

	password, err := a.resolvePassword(imapCfg.Username)
	if err != nil {
		return nil, err
	}

	return email.NewIMAPClient(host, port, imapCfg.Username, password, a.logger), nil
}

// newCollector returns a collector over the configured mailbox. An empty
// cacheDir disables the message cache.
func (a *app) newCollector(cacheDir string, headersOnly bool) *collect.Collector {
	opts := []collect.Option{
		collect.WithSender(a.cfg.IMAP.Sender),
		collect.WithLogger(a.logger),
	}
	if cacheDir != "" {
		dir := cache.NewDirStore(cacheDir, a.logger)
		a.logger.Debug().Str("cache", dir.Dir()).Msg("using message cache")
		opts = append(opts, collect.WithCache(dir))
	}
	if headersOnly {
		opts = append(opts, collect.WithHeadersOnly())
	}
	return collect.NewCollector(lazyDialer{a: a}, opts...)
}

// storeLocation returns the file behind an offer store, or "" for none.
func storeLocation(s store.OfferStore) string {
	if located, ok := s.(interface{ Path() string }); ok {
		return located.Path()
	}
	return ""
}

// openOfferStore returns the JSON or SQLite store selected by the flags,
// or a nil store when neither is set. The returned close func is never nil.
func (a *app) openOfferStore(jsonPath, dbPath string) (store.OfferStore, func(), error) {
	noop := func() {}

	switch {
	case jsonPath != "" && dbPath != "":
		return nil, noop, errors.New("--json and --db are mutually exclusive")
	case jsonPath != "":
		return store.NewSnapshot(jsonPath, a.logger), noop, nil
	case dbPath != "":
		db, err := store.NewSQLiteStore(dbPath, a.logger)
		if err != nil {
			return nil, noop, err
		}
		return db, func() {
			if err := db.Close(); err != nil {
				a.logger.Warn().Err(err).Str("path", dbPath).Msg("closing database")
			}
		}, nil
	default:
		return nil, noop, nil
	}
}

// Package collect turns a mailbox or a saved offer collection into a list
// of offers.
package collect

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nhle/offercal/internal/model"
	"github.com/nhle/offercal/internal/source"
	"github.com/nhle/offercal/internal/source/email"
	"github.com/nhle/offercal/internal/store"
)

// ByteStore is a write-through store of raw messages keyed by id.
type ByteStore interface {
	// Get returns the stored bytes, or ok == false when id is absent.
	Get(id source.MessageID) (data []byte, ok bool, err error)

	// Put stores raw under id, replacing any previous entry.
	Put(id source.MessageID, raw []byte) error
}

// Collector gathers offers from a mail source, consulting an optional
// message cache first.
type Collector struct {
	dialer source.Dialer
	cache  ByteStore
	sender string

	// headersOnly fetches just the header block when no cache is set;
	// cached entries always hold the full message.
	headersOnly bool

	logger zerolog.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithCache enables the per-message cache.
func WithCache(cache ByteStore) Option {
	return func(c *Collector) { c.cache = cache }
}

// WithSender overrides model.DefaultSender.
func WithSender(sender string) Option {
	return func(c *Collector) { c.sender = sender }
}

// WithHeadersOnly fetches only message headers when no cache is configured.
func WithHeadersOnly() Option {
	return func(c *Collector) { c.headersOnly = true }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Collector) { c.logger = logger }
}

// NewCollector creates a Collector reading from dialer.
func NewCollector(dialer source.Dialer, opts ...Option) *Collector {
	c := &Collector{
		dialer: dialer,
		sender: model.DefaultSender,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromMail connects, searches for the sender's messages and parses each
// one, reading from the cache when it holds the message and writing every
// fetched message through to it. Offers come back in search order, which
// is not guaranteed to be chronological. The session is closed on every
// path; the first error aborts the run.
func (c *Collector) FromMail(ctx context.Context) (offers []model.Offer, err error) {
	sess, err := c.dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := sess.Close(); closeErr != nil {
			if err == nil {
				err = closeErr
			} else {
				c.logger.Warn().Err(closeErr).Msg("closing mail session")
			}
		}
	}()

	ids, err := sess.Search(ctx, c.sender)
	if err != nil {
		return nil, err
	}
	c.logger.Info().Str("sender", c.sender).Int("count", len(ids)).Msg("found emails, fetching")

	offers = make([]model.Offer, 0, len(ids))
	fetched := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, hit, err := c.lookup(id)
		if err != nil {
			return nil, err
		}
		if !hit {
			raw, err = sess.Fetch(ctx, id, c.headersOnly && c.cache == nil)
			if err != nil {
				return nil, err
			}
			fetched++
		}

		offer, err := email.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("message %s: %w", id, err)
		}

		if !hit && c.cache != nil {
			if err := c.cache.Put(id, raw); err != nil {
				return nil, fmt.Errorf("caching message %s: %w", id, err)
			}
		}

		offers = append(offers, offer)
	}

	c.logger.Info().
		Int("offers", len(offers)).
		Int("fetched", fetched).
		Int("cached", len(ids)-fetched).
		Msg("collected offers from mail")

	return offers, nil
}

// lookup consults the cache, if any.
func (c *Collector) lookup(id source.MessageID) ([]byte, bool, error) {
	if c.cache == nil {
		return nil, false, nil
	}
	raw, ok, err := c.cache.Get(id)
	if err != nil {
		return nil, false, fmt.Errorf("reading cached message %s: %w", id, err)
	}
	return raw, ok, nil
}

// Acquire returns the saved collection when offers holds one and skips the
// mail server entirely. Otherwise it collects from mail and, when offers
// is not nil, saves the result once at the end.
func Acquire(
	ctx context.Context, offers store.OfferStore, collector *Collector,
) ([]model.Offer, error) {
	if offers != nil {
		exists, err := offers.Exists(ctx)
		if err != nil {
			return nil, err
		}
		if exists {
			return offers.Load(ctx)
		}
	}

	if collector == nil {
		return nil, fmt.Errorf("no saved offers and no mail source configured")
	}

	collected, err := collector.FromMail(ctx)
	if err != nil {
		return nil, err
	}

	if offers != nil {
		if err := offers.Save(ctx, collected); err != nil {
			return nil, err
		}
	}

	return collected, nil
}

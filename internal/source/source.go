package source

import "context"

// MessageID identifies a message within the mailbox. It is the text form
// of the server-assigned identifier and doubles as the cache file name.
type MessageID string

// Dialer opens authenticated sessions against a mail source.
type Dialer interface {
	// Dial connects and authenticates. Failures are reported as
	// *model.ConnectionError or *model.AuthError.
	Dial(ctx context.Context) (Session, error)
}

// Session is a live, authenticated connection to a mailbox. Sessions are
// used sequentially by a single caller and must be closed on every path.
type Session interface {
	// Search returns the ids of every INBOX message whose From header
	// matches sender, in the order the server reports them.
	Search(ctx context.Context, sender string) ([]MessageID, error)

	// Fetch returns the raw bytes of one message: only the header block
	// when headersOnly is set, the full RFC 5322 message otherwise.
	// A missing message yields *model.FetchError.
	Fetch(ctx context.Context, id MessageID, headersOnly bool) ([]byte, error)

	// Close logs out and releases the connection.
	Close() error
}

package email

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/rs/zerolog"

	"github.com/nhle/offercal/internal/model"
	"github.com/nhle/offercal/internal/source"
)

// DefaultPort is the IMAPS port used when the host carries none.
const DefaultPort = "993"

// IMAPClient wraps go-imap v2 for connecting to an IMAP server over TLS.
// It implements source.Dialer.
type IMAPClient struct {
	host     string
	port     string
	username string
	password string
	logger   zerolog.Logger
}

// NewIMAPClient creates a new IMAP client configuration.
func NewIMAPClient(
	host, port, username, password string, logger zerolog.Logger,
) *IMAPClient {
	return &IMAPClient{
		host:     host,
		port:     port,
		username: username,
		password: password,
		logger:   logger,
	}
}

// ParseHostPort splits "hostname[:port]" into its parts, defaulting the
// port to 993.
func ParseHostPort(hostport string) (string, string, error) {
	hostport = strings.TrimSpace(hostport)
	if hostport == "" {
		return "", "", errors.New("empty IMAP host")
	}

	host, port := hostport, ""
	if strings.Count(hostport, ":") == 1 || strings.HasPrefix(hostport, "[") {
		h, p, err := net.SplitHostPort(hostport)
		if err != nil {
			// "[::1]" without a port.
			h = strings.Trim(hostport, "[]")
		}
		host, port = h, p
	}

	if host == "" {
		return "", "", fmt.Errorf("missing hostname in %q", hostport)
	}
	if port == "" {
		return host, DefaultPort, nil
	}
	if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
		return "", "", fmt.Errorf("invalid port in %q", hostport)
	}

	return host, port, nil
}

// Dial establishes a TLS connection to the IMAP server and authenticates.
// The returned session must be closed by the caller.
func (c *IMAPClient) Dial(_ context.Context) (source.Session, error) {
	addr := net.JoinHostPort(c.host, c.port)

	client, err := imapclient.DialTLS(addr, nil)
	if err != nil {
		return nil, &model.ConnectionError{Addr: addr, Err: err}
	}

	if err := client.Login(c.username, c.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		_ = client.Close()
		return nil, &model.AuthError{
			Username: c.username,
			Message:  fmt.Sprintf("login to %s failed: %v", addr, err),
		}
	}

	c.logger.Debug().Str("addr", addr).Str("username", c.username).Msg("logged in")

	return &session{client: client, logger: c.logger}, nil
}

// session is a logged-in IMAP connection with INBOX selected lazily.
type session struct {
	client   *imapclient.Client
	selected bool
	logger   zerolog.Logger
}

// selectInbox opens INBOX read-only once per session.
func (s *session) selectInbox() error {
	if s.selected {
		return nil
	}
	if _, err := s.client.Select("INBOX", &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		return fmt.Errorf("selecting INBOX: %w", err)
	}
	s.selected = true
	return nil
}

// Search runs UID SEARCH FROM sender against INBOX.
func (s *session) Search(
	_ context.Context, sender string,
) ([]source.MessageID, error) {
	if err := s.selectInbox(); err != nil {
		return nil, err
	}

	criteria := &imap.SearchCriteria{
		Header: []imap.SearchCriteriaHeaderField{
			{Key: "From", Value: sender},
		},
	}

	searchData, err := s.client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching messages from %s: %w", sender, err)
	}

	uids := searchData.AllUIDs()
	ids := make([]source.MessageID, 0, len(uids))
	for _, uid := range uids {
		ids = append(ids, source.MessageID(strconv.FormatUint(uint64(uid), 10)))
	}

	s.logger.Debug().Str("sender", sender).Int("count", len(ids)).Msg("search complete")

	return ids, nil
}

// Fetch retrieves BODY.PEEK[HEADER] or BODY.PEEK[] for one UID, leaving
// the \Seen flag untouched.
func (s *session) Fetch(
	_ context.Context, id source.MessageID, headersOnly bool,
) ([]byte, error) {
	if err := s.selectInbox(); err != nil {
		return nil, err
	}

	uid, err := strconv.ParseUint(string(id), 10, 32)
	if err != nil || uid == 0 {
		return nil, &model.FetchError{
			MessageID: string(id),
			Err:       fmt.Errorf("invalid UID %q", id),
		}
	}

	bodySection := &imap.FetchItemBodySection{
		Peek: true,
	}
	if headersOnly {
		bodySection.Specifier = imap.PartSpecifierHeader
	}

	fetchOpts := &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	uidSet := imap.UIDSetNum(imap.UID(uid))

	msgs, err := s.client.Fetch(uidSet, fetchOpts).Collect()
	if err != nil {
		return nil, &model.FetchError{MessageID: string(id), Err: err}
	}
	if len(msgs) == 0 {
		return nil, &model.FetchError{MessageID: string(id)}
	}

	raw := msgs[0].FindBodySection(bodySection)
	if raw == nil {
		return nil, &model.FetchError{
			MessageID: string(id),
			Err:       errors.New("server returned no body section"),
		}
	}

	return raw, nil
}

// Close logs out and closes the underlying connection.
func (s *session) Close() error {
	err := s.client.Logout().Wait()
	_ = s.client.Close()
	if err != nil {
		return fmt.Errorf("logging out: %w", err)
	}
	return nil
}

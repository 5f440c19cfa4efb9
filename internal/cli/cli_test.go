package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/offercal/internal/credential"
	"github.com/nhle/offercal/internal/model"
	"github.com/nhle/offercal/internal/store"
	"github.com/nhle/offercal/tests/testutil"
)

type testApp struct {
	*app
	ring    *credential.Store
	out     *bytes.Buffer
	errOut  *bytes.Buffer
	prompts int

	configPath string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	t.Setenv("OFFERCAL_IMAP_PASSWORD", "")
	t.Setenv("OFFERCAL_IMAP_USERNAME", "")

	ta := &testApp{
		ring:   credential.New(keyring.NewArrayKeyring(nil)),
		out:    &bytes.Buffer{},
		errOut: &bytes.Buffer{},
	}
	a := newApp()
	a.stdout = ta.out
	a.stderr = ta.errOut
	a.cfgPath = filepath.Join(t.TempDir(), "config.yaml")
	a.openKeyring = func() (*credential.Store, error) { return ta.ring, nil }
	a.prompt = func(string) (string, error) {
		ta.prompts++
		return "from-prompt", nil
	}
	a.isTerminal = func() bool { return false }
	ta.app = a
	ta.configPath = a.cfgPath
	return ta
}

// prepare builds the command tree so flags are bound, then loads the
// configuration without executing a subcommand.
func (ta *testApp) prepare(t *testing.T, setFlags func(*cobra.Command)) {
	t.Helper()
	cfgPath := ta.configPath
	root := newRootCommand(ta.app)
	if setFlags != nil {
		setFlags(root)
	}
	ta.cfgPath = cfgPath
	require.NoError(t, ta.load())
}

func (ta *testApp) run(args ...string) error {
	root := newRootCommand(ta.app)
	root.SetArgs(append([]string{"--config", ta.configPath}, args...))
	return root.ExecuteContext(context.Background())
}

func writeSnapshot(t *testing.T, path string, offers ...model.Offer) {
	t.Helper()
	require.NoError(t, store.NewSnapshot(path, zerolog.Nop()).Save(context.Background(), offers))
}

func TestCalendarFromSnapshot(t *testing.T) {
	ta := newTestApp(t)
	dir := t.TempDir()
	snap := filepath.Join(dir, "offers.json")
	out := filepath.Join(dir, "offers.html")

	writeSnapshot(t, snap,
		testutil.Offer(2023, time.June, 2, 9, 0, 2, "Rome deal"),
		testutil.Offer(2023, time.June, 14, 9, 0, 2, "Paris deal"),
	)

	require.NoError(t, ta.run("calendar", "--json", snap, "--output", out))

	html, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<table>")
	assert.Contains(t, string(html), `title="Rome deal"`)
	assert.Contains(t, string(html), `title="Paris deal"`)
	assert.Contains(t, ta.errOut.String(), "offers.html")
	assert.Zero(t, ta.prompts)
}

func TestCalendarSortsSnapshotOffers(t *testing.T) {
	ta := newTestApp(t)
	dir := t.TempDir()
	snap := filepath.Join(dir, "offers.json")
	out := filepath.Join(dir, "offers.html")

	writeSnapshot(t, snap,
		testutil.Offer(2023, time.June, 14, 9, 0, 0, "later"),
		testutil.Offer(2023, time.June, 2, 9, 0, 0, "earlier"),
	)

	require.NoError(t, ta.run("calendar", "--json", snap, "--output", out))

	html, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(html), `title="earlier"`)
	assert.Contains(t, string(html), `title="later"`)
}

func TestCalendarRequiresOutput(t *testing.T) {
	ta := newTestApp(t)

	err := ta.run("calendar", "--json", filepath.Join(t.TempDir(), "offers.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output")
}

func TestCalendarRejectsBothStores(t *testing.T) {
	ta := newTestApp(t)
	dir := t.TempDir()

	err := ta.run("calendar",
		"--json", filepath.Join(dir, "offers.json"),
		"--db", filepath.Join(dir, "offers.db"),
		"--output", filepath.Join(dir, "offers.html"),
	)
	require.Error(t, err)
}

func TestCalendarEmptySnapshot(t *testing.T) {
	ta := newTestApp(t)
	dir := t.TempDir()
	snap := filepath.Join(dir, "offers.json")
	out := filepath.Join(dir, "offers.html")
	writeSnapshot(t, snap)

	err := ta.run("calendar", "--json", snap, "--output", out)
	require.ErrorIs(t, err, model.ErrEmptyInput)
	assert.NoFileExists(t, out)
}

func TestSnapshotWithoutUsernameFails(t *testing.T) {
	ta := newTestApp(t)
	snap := filepath.Join(t.TempDir(), "offers.json")

	err := ta.run("snapshot", "--json", snap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--username")
	assert.NoFileExists(t, snap)
}

func TestSnapshotExistingDatabase(t *testing.T) {
	ta := newTestApp(t)
	dbPath := filepath.Join(t.TempDir(), "offers.db")

	db, err := store.NewSQLiteStore(dbPath, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, db.Save(context.Background(), []model.Offer{
		testutil.Offer(2023, time.June, 2, 9, 0, 2, "Rome deal"),
	}))
	require.NoError(t, db.Close())

	require.NoError(t, ta.run("snapshot", "--db", dbPath))
	assert.Contains(t, ta.errOut.String(), "offers.db")
}

func TestSnapshotExistingJSONReportsPath(t *testing.T) {
	ta := newTestApp(t)
	snap := filepath.Join(t.TempDir(), "saved-offers.json")
	writeSnapshot(t, snap, testutil.Offer(2023, time.June, 2, 9, 0, 2, "Rome deal"))

	require.NoError(t, ta.run("snapshot", "--json", snap))
	assert.Contains(t, ta.errOut.String(), snap)
}

func TestStoreLocation(t *testing.T) {
	snap := store.NewSnapshot("/tmp/offers.json", zerolog.Nop())
	assert.Equal(t, "/tmp/offers.json", storeLocation(snap))
	assert.Empty(t, storeLocation(nil))
}

func TestLoginStoresPassword(t *testing.T) {
	ta := newTestApp(t)

	require.NoError(t, ta.run("--username", "me@example.com", "--password", "s3cret-pass", "login"))

	got, err := ta.ring.Get(credential.IMAPKey("me@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret-pass", got)

	data, err := os.ReadFile(ta.configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "me@example.com")
	assert.NotContains(t, string(data), "s3cret-pass")
}

func TestLoginForget(t *testing.T) {
	ta := newTestApp(t)
	key := credential.IMAPKey("me@example.com")
	require.NoError(t, ta.ring.Set(key, "old"))

	require.NoError(t, ta.run("--username", "me@example.com", "login", "--forget"))

	_, err := ta.ring.Get(key)
	assert.True(t, credential.IsNotFound(err))
	assert.NoFileExists(t, ta.configPath)
}

func TestLoginWithoutTerminalNeedsPassword(t *testing.T) {
	ta := newTestApp(t)

	err := ta.run("--username", "me@example.com", "login")
	require.Error(t, err)
	assert.Zero(t, ta.prompts)
}

func TestResolvePassword(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		env      string
		keyring  string
		terminal bool
		want     string
		wantErr  bool
	}{
		{name: "flag wins", flag: "from-flag", env: "from-env", keyring: "from-ring", want: "from-flag"},
		{name: "environment", env: "from-env", keyring: "from-ring", want: "from-env"},
		{name: "keyring", keyring: "from-ring", terminal: true, want: "from-ring"},
		{name: "prompt", terminal: true, want: "from-prompt"},
		{name: "nothing available", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t)
			if tt.env != "" {
				t.Setenv("OFFERCAL_IMAP_PASSWORD", tt.env)
			}
			if tt.keyring != "" {
				require.NoError(t, ta.ring.Set(credential.IMAPKey("me@example.com"), tt.keyring))
			}
			ta.isTerminal = func() bool { return tt.terminal }

			ta.prepare(t, func(root *cobra.Command) {
				if tt.flag != "" {
					require.NoError(t, root.PersistentFlags().Set("password", tt.flag))
				}
			})

			got, err := ta.resolvePassword("me@example.com")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolvePasswordKeyringUnavailable(t *testing.T) {
	ta := newTestApp(t)
	ta.openKeyring = func() (*credential.Store, error) { return nil, errors.New("no backend") }
	ta.isTerminal = func() bool { return true }
	ta.prepare(t, nil)

	got, err := ta.resolvePassword("me@example.com")
	require.NoError(t, err)
	assert.Equal(t, "from-prompt", got)
	assert.Equal(t, 1, ta.prompts)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := newLogger(&buf, "warn", false)
	require.NoError(t, err)
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)

	_, err = newLogger(&buf, "loud", false)
	require.Error(t, err)
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, errors.New("boom"))
	assert.Contains(t, buf.String(), "boom")
}

// Package cli wires configuration, credentials, the mail source, the offer
// stores and the calendar renderer into the offercal command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nhle/offercal/internal/credential"
	"github.com/nhle/offercal/internal/model"
	"github.com/nhle/offercal/internal/theme"
)

// Version is injected at build time via ldflags.
var Version = "dev"

// app holds the state shared by every subcommand for one invocation.
type app struct {
	v       *viper.Viper
	cfgPath string
	cfg     *model.AppConfig
	logger  zerolog.Logger

	stdout io.Writer
	stderr io.Writer

	// Replaceable in tests.
	openKeyring func() (*credential.Store, error)
	prompt      func(username string) (string, error)
	isTerminal  func() bool
}

func newApp() *app {
	return &app{
		v:           viper.New(),
		logger:      zerolog.Nop(),
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		openKeyring: credential.Open,
		prompt:      promptPassword,
		isTerminal:  stdinIsTerminal,
	}
}

// NewRootCommand builds the offercal command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(newApp())
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "offercal",
		Short: "Calendar of promotional emails",
		Long: theme.BrandStyle.Render("offercal") + ` - calendar of promotional emails

Collects offers from an IMAP mailbox, optionally keeps them in a JSON or
SQLite snapshot, and renders them as an HTML calendar with one row per week.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", model.DefaultConfigPath(), "Config file")
	pf.String("host", model.DefaultHost, "IMAP server as hostname[:port]")
	pf.String("username", "", "IMAP username")
	pf.String("password", "", "IMAP password (also OFFERCAL_IMAP_PASSWORD or the keyring)")
	pf.String("sender", model.DefaultSender, "Sender address to collect offers from")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.Bool("pretty-logs", false, "Human-readable console logs")

	a.bindFlags(pf, map[string]string{
		"imap.host":     "host",
		"imap.username": "username",
		"imap.password": "password",
		"imap.sender":   "sender",
		"log.level":     "log-level",
		"log.pretty":    "pretty-logs",
	})

	root.AddCommand(newSnapshotCommand(a))
	root.AddCommand(newCalendarCommand(a))
	root.AddCommand(newLoginCommand(a))

	return root
}

// bindFlags binds config keys to the named flags in fs.
func (a *app) bindFlags(fs *pflag.FlagSet, bindings map[string]string) {
	for key, name := range bindings {
		// BindPFlag only fails for a nil flag.
		_ = a.v.BindPFlag(key, fs.Lookup(name))
	}
}

// load reads the configuration and builds the logger.
func (a *app) load() error {
	cfg, err := model.LoadConfig(a.v, a.cfgPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := newLogger(a.stderr, cfg.Log.Level, cfg.Log.Pretty)
	if err != nil {
		return err
	}
	a.logger = logger

	return nil
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCommand().ExecuteContext(context.Background())
}

// PrintError writes a fatal error to w.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", theme.ErrorStyle.Render("error:"), err)
}

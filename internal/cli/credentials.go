package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/nhle/offercal/internal/credential"
)

// resolvePassword finds the IMAP password for username: flag, environment
// or config first, then the keyring, then an interactive prompt.
func (a *app) resolvePassword(username string) (string, error) {
	if a.cfg.IMAP.Password != "" {
		return a.cfg.IMAP.Password, nil
	}

	ring, err := a.openKeyring()
	if err != nil {
		a.logger.Debug().Err(err).Msg("keyring unavailable")
	} else {
		password, err := ring.Get(credential.IMAPKey(username))
		switch {
		case err == nil:
			a.logger.Debug().Str("username", username).Msg("using password from keyring")
			return password, nil
		case !credential.IsNotFound(err):
			a.logger.Warn().Err(err).Msg("reading keyring")
		}
	}

	if !a.isTerminal() {
		return "", errors.New("no IMAP password: pass --password, set OFFERCAL_IMAP_PASSWORD or run `offercal login`")
	}

	password, err := a.prompt(username)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return password, nil
}

// promptPassword asks for the IMAP password on the terminal.
func promptPassword(username string) (string, error) {
	var password string
	err := huh.NewInput().
		Title("IMAP password").
		Description("Password for " + username).
		EchoMode(huh.EchoModePassword).
		Value(&password).
		Validate(validateRequired("Password")).
		Run()
	if err != nil {
		return "", err
	}
	return password, nil
}

// validateRequired returns a huh validator rejecting blank input.
func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

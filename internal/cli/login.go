package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/offercal/internal/credential"
	"github.com/nhle/offercal/internal/model"
	"github.com/nhle/offercal/internal/source/email"
	"github.com/nhle/offercal/internal/theme"
)

func newLoginCommand(a *app) *cobra.Command {
	var forget bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the IMAP password in the system keyring",
		Long: `Store the IMAP password for --username in the system keyring and save the
host, username and sender to the config file, so later runs need no
credentials on the command line. With --forget the stored password is
removed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			username := a.cfg.IMAP.Username
			if username == "" {
				return errors.New("--username is required")
			}
			if forget {
				return a.forgetPassword(cmd, username)
			}
			if _, _, err := email.ParseHostPort(a.cfg.IMAP.Host); err != nil {
				return fmt.Errorf("parsing --host: %w", err)
			}

			password := a.cfg.IMAP.Password
			if password == "" {
				if !a.isTerminal() {
					return errors.New("no terminal to prompt on: pass --password")
				}
				var err error
				if password, err = a.prompt(username); err != nil {
					return err
				}
			}

			ring, err := a.openKeyring()
			if err != nil {
				return err
			}
			if err := ring.Set(credential.IMAPKey(username), password); err != nil {
				return err
			}

			saved := *a.cfg
			saved.IMAP.Password = ""
			if err := model.SaveConfig(a.cfgPath, &saved); err != nil {
				return err
			}

			a.logger.Info().Str("username", username).Str("config", a.cfgPath).Msg("stored credentials")
			cmd.Printf("%s saved credentials for %s\n",
				theme.SuccessStyle.Render("✓"), theme.PathStyle.Render(username))
			return nil
		},
	}

	cmd.Flags().BoolVar(&forget, "forget", false, "Remove the stored password instead")

	return cmd
}

func (a *app) forgetPassword(cmd *cobra.Command, username string) error {
	ring, err := a.openKeyring()
	if err != nil {
		return err
	}
	if err := ring.Delete(credential.IMAPKey(username)); err != nil && !credential.IsNotFound(err) {
		return err
	}

	a.logger.Info().Str("username", username).Msg("removed stored password")
	cmd.Printf("%s removed credentials for %s\n",
		theme.SuccessStyle.Render("✓"), theme.PathStyle.Render(username))
	return nil
}

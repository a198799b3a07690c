package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in with an emailed magic link",
		Long: "Starts the email login handshake and waits until the link sent to the\n" +
			"account inbox is opened. Tokens live only for the life of the process,\n" +
			"so this command is mainly a check that the account and network work.",
		Example: `  tgtg login --email me@example.com
  TGTG_EMAIL=me@example.com tgtg login`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(promptEmail(os.Stdin, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sc, err := a.login(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			snap := sc.Session().Snapshot()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Logged in as %s\n", snap.Email)
			if snap.UserID != "" {
				fmt.Fprintf(out, "User ID:  %s\n", snap.UserID)
			}
			fmt.Fprintf(out, "Expires:  %s\n", sc.ExpiresAt().Local().Format(time.DateTime))
			return nil
		},
	}
}

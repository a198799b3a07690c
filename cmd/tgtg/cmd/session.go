package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/tgtg-watcher/internal/api/client"
)

func sessionCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "session",
		Short: "Inspect the watcher server's login session",
	}

	root.AddCommand(
		&cobra.Command{
			Use:     "status",
			Short:   "Show the server's session state",
			Example: "  tgtg session status --server http://watcher:8080",
			RunE: func(cmd *cobra.Command, _ []string) error {
				s, err := newClient().Session(context.Background())
				if err != nil {
					return err
				}
				return printSession(cmd.OutOrStdout(), s)
			},
		},
		&cobra.Command{
			Use:   "login",
			Short: "Make the server log in again, e.g. after its refresh token was rejected",
			RunE: func(cmd *cobra.Command, _ []string) error {
				msg, err := newClient().Login(context.Background())
				if apiclient.IsConflict(err) {
					return errors.New("the server is already waiting for a login confirmation")
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			},
		},
		&cobra.Command{
			Use:   "refresh",
			Short: "Renew the server's access token if it is due",
			RunE: func(cmd *cobra.Command, _ []string) error {
				s, err := newClient().RefreshSession(context.Background())
				if err != nil {
					return err
				}
				return printSession(cmd.OutOrStdout(), s)
			},
		},
	)

	return root
}

func printSession(w io.Writer, s *apiclient.SessionStatus) error {
	if jsonOutput() {
		return outputJSON(s)
	}

	fmt.Fprintf(w, "Email:          %s\n", s.Email)
	fmt.Fprintf(w, "Authenticated:  %t\n", s.Authenticated)
	if s.UserID != "" {
		fmt.Fprintf(w, "User ID:        %s\n", s.UserID)
	}
	fmt.Fprintf(w, "Token issued:   %s\n", formatOptionalTime(s.TokenIssuedAt))
	fmt.Fprintf(w, "Expires:        %s\n", formatOptionalTime(s.ExpiresAt))
	return nil
}

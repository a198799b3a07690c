package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply snapshot store migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			st, err := a.openStore(ctx)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			defer st.Close()

			a.log.Info("running migrations", "driver", a.cfg.Database.Driver)
			if err := st.Migrate(ctx); err != nil {
				return fmt.Errorf("running migrations: %w", err)
			}

			a.log.Info("migrations complete")
			return nil
		},
	}
}

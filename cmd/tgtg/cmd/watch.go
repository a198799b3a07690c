package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/tgtg-watcher/internal/api/client"
	"github.com/donaldgifford/tgtg-watcher/internal/watch"
)

func watchCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "watch",
		Short: "Run watch cycles",
	}
	root.AddCommand(watchRunCmd())
	return root
}

func watchRunCmd() *cobra.Command {
	var local bool

	c := &cobra.Command{
		Use:   "run",
		Short: "Run one watch cycle now",
		Long: "Asks the watcher server to run every saved search once and waits for\n" +
			"the result. With --local the cycle runs in this process against the\n" +
			"configured store and notifier instead.",
		Example: `  tgtg watch run
  tgtg watch run --local --config config.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				res *watch.CycleResult
				err error
			)
			if local {
				res, err = runLocalCycle(cmd)
			} else {
				res, err = newClient().RunWatch(context.Background())
				if apiclient.IsConflict(err) {
					return fmt.Errorf("a watch cycle is already running on the server")
				}
			}
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(res)
			}
			printCycle(cmd.OutOrStdout(), res)
			return nil
		},
	}

	c.Flags().BoolVar(&local, "local", false, "run the cycle in this process")
	return c
}

func runLocalCycle(cmd *cobra.Command) (*watch.CycleResult, error) {
	a, err := newApp(promptEmail(os.Stdin, cmd.ErrOrStderr()))
	if err != nil {
		return nil, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := a.openStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	sc, err := a.login(ctx, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	return a.newWatcher(sc, st).RunOnce(ctx)
}

func printCycle(w io.Writer, res *watch.CycleResult) {
	fmt.Fprintf(w, "Searches run:  %d\n", res.SearchesRun)
	fmt.Fprintf(w, "Items seen:    %d\n", res.ItemsSeen)
	fmt.Fprintf(w, "Restocks:      %d\n", res.Restocks)
	if len(res.Failed) > 0 {
		fmt.Fprintf(w, "Failed:        %s\n", strings.Join(res.Failed, ", "))
	}
}

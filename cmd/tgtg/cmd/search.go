package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/donaldgifford/tgtg-watcher/internal/tgtg"
)

type searchFlags struct {
	lat, lng   float64
	radius     int
	pageSize   int
	page       int
	phrase     string
	withStock  bool
	favorites  bool
	categories []string
	all        bool
	maxPages   int
}

func searchCmd() *cobra.Command {
	var f searchFlags

	c := &cobra.Command{
		Use:   "search",
		Short: "Search for surprise bags",
		Long: "Logs in and runs an item search. Flags override the search section of\n" +
			"the config file. With --all, pages are fetched until the results run out\n" +
			"or --max-pages is reached.",
		Example: `  tgtg search --lat 51.5072 --lng -0.1276 --radius 3
  tgtg search --phrase bakery --with-stock
  tgtg search --all --max-pages 3 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(promptEmail(os.Stdin, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			criteria := a.cfg.Search.Criteria()
			f.apply(cmd.Flags(), &criteria)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sc, err := a.login(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			var items []tgtg.Item
			if f.all {
				maxPages := a.cfg.Search.MaxPages
				if cmd.Flags().Changed("max-pages") {
					maxPages = f.maxPages
				}
				p := tgtg.NewPaginator(sc,
					tgtg.WithMaxPages(maxPages),
					tgtg.WithPaginatorLogger(a.log),
				)
				res, err := p.Paginate(ctx, criteria)
				if err != nil {
					return fmt.Errorf("searching items: %w", err)
				}
				items = res.Items
			} else {
				page, err := sc.SearchItems(ctx, &criteria)
				if err != nil {
					return fmt.Errorf("searching items: %w", err)
				}
				items = page.Items
			}

			if jsonOutput() {
				return outputJSON(items)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No bags found.")
				return nil
			}
			return printItemTable(cmd.OutOrStdout(), items)
		},
	}

	fl := c.Flags()
	fl.Float64Var(&f.lat, "lat", 0, "search origin latitude")
	fl.Float64Var(&f.lng, "lng", 0, "search origin longitude")
	fl.IntVar(&f.radius, "radius", 0, "search radius in km")
	fl.IntVar(&f.pageSize, "page-size", 0, "results per page")
	fl.IntVar(&f.page, "page", 1, "page number to fetch")
	fl.StringVar(&f.phrase, "phrase", "", "free-text search phrase")
	fl.BoolVar(&f.withStock, "with-stock", false, "only bags with stock left")
	fl.BoolVar(&f.favorites, "favorites", false, "only favorited stores")
	fl.StringSliceVar(&f.categories, "category", nil, "item category filter (repeatable)")
	fl.BoolVar(&f.all, "all", false, "fetch every page up to --max-pages")
	fl.IntVar(&f.maxPages, "max-pages", 0, "page cap for --all")

	return c
}

// apply copies the flags the user set onto criteria.
func (f *searchFlags) apply(fs *pflag.FlagSet, c *tgtg.Criteria) {
	if fs.Changed("lat") {
		c.Origin.Latitude = f.lat
	}
	if fs.Changed("lng") {
		c.Origin.Longitude = f.lng
	}
	if fs.Changed("radius") {
		c.Radius = f.radius
	}
	if fs.Changed("page-size") {
		c.PageSize = f.pageSize
	}
	if fs.Changed("page") {
		c.PageNumber = f.page
	}
	if fs.Changed("phrase") {
		c.SearchPhrase = f.phrase
	}
	if fs.Changed("with-stock") {
		c.WithStockOnly = f.withStock
	}
	if fs.Changed("favorites") {
		c.FavoritesOnly = f.favorites
	}
	if fs.Changed("category") {
		c.ItemCategories = f.categories
	}
}

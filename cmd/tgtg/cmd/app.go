package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/donaldgifford/tgtg-watcher/internal/config"
	"github.com/donaldgifford/tgtg-watcher/internal/notify"
	"github.com/donaldgifford/tgtg-watcher/internal/store"
	"github.com/donaldgifford/tgtg-watcher/internal/tgtg"
	"github.com/donaldgifford/tgtg-watcher/internal/watch"
	"github.com/donaldgifford/tgtg-watcher/pkg/logger"
)

const (
	retryWaitMin = 500 * time.Millisecond
	retryWaitMax = 2 * time.Second
)

// app bundles the loaded config and logger shared by the commands that talk
// to the marketplace directly.
type app struct {
	cfg *config.Config
	log *slog.Logger
}

func newApp(extra ...config.Override) (*app, error) {
	overrides := append([]config.Override{flagOverrides}, extra...)

	cfg, err := config.Load(viper.GetString("config"), overrides...)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	return &app{
		cfg: cfg,
		log: logger.New(cfg.Logging.Level, cfg.Logging.Format),
	}, nil
}

// promptEmail asks for the account email when none is configured and stdin
// is an interactive terminal.
func promptEmail(in *os.File, out io.Writer) config.Override {
	return func(c *config.Config) {
		if c.TGTG.Email != "" || !term.IsTerminal(int(in.Fd())) {
			return
		}
		fmt.Fprint(out, "Account email: ")
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			return
		}
		c.TGTG.Email = strings.TrimSpace(line)
	}
}

func (a *app) gateway() *tgtg.HTTPGateway {
	t := a.cfg.TGTG
	return tgtg.NewHTTPGateway(
		tgtg.WithBaseURL(t.BaseURL),
		tgtg.WithLanguage(t.Language),
		tgtg.WithUserAgent(t.UserAgent),
		tgtg.WithRequestTimeout(t.Timeout),
		tgtg.WithRetry(t.Retries(), retryWaitMin, retryWaitMax),
		tgtg.WithGatewayLogger(a.log),
	)
}

// sessionClient builds an unauthenticated session bound to a client.
func (a *app) sessionClient(observer func(tgtg.HandshakeState)) *tgtg.SessionClient {
	t := a.cfg.TGTG
	opts := []tgtg.Option{
		tgtg.WithLogger(a.log),
		tgtg.WithPollInterval(t.PollInterval),
		tgtg.WithMaxPollAttempts(t.MaxPollAttempts),
		tgtg.WithRefreshMargin(t.RefreshMargin),
	}
	if observer != nil {
		opts = append(opts, tgtg.WithHandshakeObserver(observer))
	}

	sess := tgtg.NewSession(t.Email,
		tgtg.WithDeviceType(t.DeviceType),
		tgtg.WithAccessTokenLifetime(t.AccessTokenLifetime),
	)
	return tgtg.NewClient(a.gateway(), opts...).Bind(sess)
}

// login runs the email handshake, telling the user on out to confirm the
// emailed link once polling starts.
func (a *app) login(ctx context.Context, out io.Writer) (*tgtg.SessionClient, error) {
	email := a.cfg.TGTG.Email
	sc := a.sessionClient(func(s tgtg.HandshakeState) {
		if s == tgtg.StatePolling {
			fmt.Fprintf(out, "Check the inbox of %s and open the login link.\n", email)
		}
	})

	a.log.Info("logging in", "email", email)
	if err := sc.Authenticate(ctx); err != nil {
		return nil, fmt.Errorf("logging in as %s: %w", email, err)
	}
	return sc, nil
}

// openStore connects to the configured snapshot store. The caller closes it.
func (a *app) openStore(ctx context.Context) (store.Store, error) {
	db := a.cfg.Database
	switch db.Driver {
	case config.DriverPostgres:
		a.log.Info("opening snapshot store", "driver", db.Driver, "host", db.Host, "name", db.Name)
		s, err := store.NewPostgresStore(ctx, db.DSN(), store.WithPoolSize(db.PoolSize))
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		a.log.Info("opening snapshot store", "driver", db.Driver, "path", db.Path)
		s, err := store.NewSQLiteStore(ctx, db.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

func (a *app) notifier() notify.Notifier {
	d := a.cfg.Notifications.Discord
	if d.Enabled {
		return notify.NewDiscordNotifier(d.WebhookURL)
	}
	return notify.NewNoOpNotifier(a.log)
}

func (a *app) watchSearches() []watch.Search {
	searches := make([]watch.Search, 0, len(a.cfg.Watch.Searches))
	for i := range a.cfg.Watch.Searches {
		s := &a.cfg.Watch.Searches[i]
		searches = append(searches, watch.Search{
			Name:     s.Name,
			Criteria: s.Criteria(),
			MaxPages: s.MaxPages,
		})
	}
	return searches
}

func (a *app) newWatcher(sc *tgtg.SessionClient, st store.Store) *watch.Watcher {
	return watch.NewWatcher(sc, st, a.notifier(), a.watchSearches(),
		watch.WithLogger(a.log),
		watch.WithNotifyNew(a.cfg.Watch.NotifiesNew()),
	)
}

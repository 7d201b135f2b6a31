package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/fintrack/internal/client/cli"
	"github.com/dmitrijs2005/fintrack/internal/client/config"
	"github.com/dmitrijs2005/fintrack/internal/client/credentials"
	"github.com/dmitrijs2005/fintrack/internal/client/guard"
	"github.com/dmitrijs2005/fintrack/internal/client/nav"
	"github.com/dmitrijs2005/fintrack/internal/client/notify"
	"github.com/dmitrijs2005/fintrack/internal/client/profile"
	"github.com/dmitrijs2005/fintrack/internal/client/session"
	"github.com/dmitrijs2005/fintrack/internal/client/transport"
	"github.com/dmitrijs2005/fintrack/internal/filex"
	"github.com/dmitrijs2005/fintrack/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, os.Stderr)

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer closeStore()

	gw := transport.New(cfg.ServerURL, store,
		transport.WithTimeout(cfg.RequestTimeout),
		transport.WithLogger(logger.With("component", "transport")))

	profiles := profile.New(gw, store, profile.WithLogger(logger.With("component", "profile")))
	router := nav.NewRouter(nav.DefaultRoutes)
	notifier := notify.Multi{&notify.Snackbar{}, notify.NewPrinter(os.Stdout)}

	sessions := session.New(gw, store, profiles, router, notifier,
		session.WithLogger(logger.With("component", "session")),
		session.WithRefreshLeeway(cfg.RefreshLeeway))

	router.SetGuard(guard.New(sessions, profiles, guard.WithLogger(logger.With("component", "guard"))))

	app := cli.NewApp(sessions, profiles, router, logger)
	app.Run(ctx)
}

// openStore picks the credential store: SQLite on disk unless the run is
// ephemeral.
func openStore(ctx context.Context, cfg *config.Config) (credentials.Store, func(), error) {
	if cfg.Ephemeral {
		return credentials.NewMemoryStore(), func() {}, nil
	}

	path, err := filex.EnsureParentDir(cfg.CredentialsDB)
	if err != nil {
		return nil, nil, err
	}
	store, err := credentials.OpenSQLite(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

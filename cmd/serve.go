package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nicolasrp432/PlaywrongIa/internal/repositories"
	"github.com/nicolasrp432/PlaywrongIa/internal/server"
	"github.com/nicolasrp432/PlaywrongIa/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the catalog server until interrupted.
//
// Login routes are registered only when the [auth] section is configured.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	sessions := repositories.NewSessionRepository(db)
	opts := server.Options{
		Store:     r.store,
		Service:   r.svc,
		Sessions:  sessions,
		Favorites: repositories.NewFavoriteRepository(db),
		Logger:    r.logger,
	}

	if r.config.Auth.Enabled() {
		auth, err := server.NewAuthenticator(
			r.config.Auth, r.config.Server,
			repositories.NewOAuthStateRepository(db), sessions,
			r.httpClient, r.logger,
		)
		if err != nil {
			return err
		}
		opts.Auth = auth
	} else {
		r.logger.Warn("login disabled: set auth.domain and auth.client_id to enable it")
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}
	open := cmd.Bool("open")

	return server.New(opts).ListenAndServe(ctx, addr, func(addr string) {
		url := "http://" + addr + "/"
		r.logger.Info("catalog server ready", "url", url)
		if open {
			if err := shared.OpenBrowser(url); err != nil {
				r.logger.Warn("could not open browser", "error", err)
			}
		}
	})
}

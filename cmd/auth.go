package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nicolasrp432/PlaywrongIa/internal/repositories"
	"github.com/nicolasrp432/PlaywrongIa/internal/server"
	"github.com/nicolasrp432/PlaywrongIa/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthStatus verifies the movie API key and reports whether login is configured.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if r.api == nil || r.config.TMDB.APIKey == "" {
		return fmt.Errorf("%w: set tmdb.api_key in %s or TMDB_API_KEY", shared.ErrMissingCredentials, r.configFile())
	}

	resp, err := r.api.Get(ctx, "/authentication")
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.writePlainHeader("Credenciales")
	switch resp.StatusCode {
	case http.StatusOK:
		r.writePlain("Movie API:  valid key\n")
	case http.StatusUnauthorized:
		r.writePlain("Movie API:  invalid key\n")
	default:
		r.writePlain("Movie API:  unexpected status %d\n", resp.StatusCode)
	}

	if r.config.Auth.Enabled() {
		r.writePlain("Login:      %s (client %s)\n", r.config.Auth.Issuer(), r.config.Auth.ClientID)
		r.writePlain("Callback:   %s\n", r.config.Auth.RedirectURI)
	} else {
		r.writePlain("Login:      disabled\n")
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: movie API answered %d", shared.ErrAuthFailed, resp.StatusCode)
	}
	return nil
}

// AuthPrune deletes expired sessions and abandoned login states.
func (r *Runner) AuthPrune(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	sessions, err := repositories.NewSessionRepository(db).DeleteExpired()
	if err != nil {
		return err
	}
	states, err := repositories.NewOAuthStateRepository(db).DeleteOlderThan(server.StateMaxAge)
	if err != nil {
		return err
	}

	r.logger.Info("pruned auth records", "sessions", sessions, "states", states)
	return r.writePlain("Deleted %d sessions and %d login states\n", sessions, states)
}

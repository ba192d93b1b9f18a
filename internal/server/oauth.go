package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nicolasrp432/PlaywrongIa/internal/models"
	"github.com/nicolasrp432/PlaywrongIa/internal/repositories"
	"github.com/nicolasrp432/PlaywrongIa/internal/shared"
	"golang.org/x/oauth2"
)

// StateMaxAge bounds how long a login attempt may take.
const StateMaxAge = 10 * time.Minute

var defaultScopes = []string{"openid", "profile", "email"}

// UserInfo is the subset of the provider's userinfo response kept in a session.
type UserInfo struct {
	Subject string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

// Authenticator runs the OAuth2 authorization code flow against the configured identity provider
// and turns a successful login into a session cookie.
//
// Implements [Handler] for registration with a [Router].
type Authenticator struct {
	config      *oauth2.Config
	audience    string
	userInfoURL string
	states      *repositories.OAuthStateRepository
	sessions    *repositories.SessionRepository
	ttl         time.Duration
	secure      bool
	client      *http.Client
	logger      *log.Logger
}

// NewAuthenticator creates an authenticator for the provider described by cfg.
//
// The provider is expected to expose "/authorize", "/oauth/token" and "/userinfo" under its issuer URL.
func NewAuthenticator(
	cfg shared.AuthConfig,
	srv shared.ServerConfig,
	states *repositories.OAuthStateRepository,
	sessions *repositories.SessionRepository,
	client *http.Client,
	logger *log.Logger,
) (*Authenticator, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("%w: auth.domain and auth.client_id are required", shared.ErrMissingCredentials)
	}
	if states == nil || sessions == nil {
		return nil, fmt.Errorf("%w: login requires a database", shared.ErrInvalidConfig)
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = defaultScopes
	}

	issuer := cfg.Issuer()
	return &Authenticator{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  issuer + "/authorize",
				TokenURL: issuer + "/oauth/token",
			},
		},
		audience:    cfg.Audience,
		userInfoURL: issuer + "/userinfo",
		states:      states,
		sessions:    sessions,
		ttl:         srv.SessionTTL(),
		secure:      srv.CookieSecure,
		client:      client,
		logger:      logger.WithPrefix("auth"),
	}, nil
}

// Routes returns the HTTP routes this handler serves.
func (a *Authenticator) Routes() []string {
	return []string{"GET /login", "GET /callback", "GET /logout"}
}

// ServeHTTP dispatches to the login, callback and logout steps.
func (a *Authenticator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/login":
		a.Login(w, r)
	case "/callback":
		a.Callback(w, r)
	case "/logout":
		a.Logout(w, r)
	default:
		http.NotFound(w, r)
	}
}

// AuthCodeURL returns the provider URL a browser is sent to for state.
func (a *Authenticator) AuthCodeURL(state string) string {
	var opts []oauth2.AuthCodeOption
	if a.audience != "" {
		opts = append(opts, oauth2.SetAuthURLParam("audience", a.audience))
	}
	return a.config.AuthCodeURL(state, opts...)
}

// Login records a fresh state with the page to come back to and redirects to the provider.
func (a *Authenticator) Login(w http.ResponseWriter, r *http.Request) {
	returnTo := SafeReturnTo(r.URL.Query().Get("returnTo"))
	state := shared.GenerateID()

	if err := a.states.Save(state, returnTo); err != nil {
		a.logger.Error("failed to save login state", "error", err)
		writeError(w, http.StatusInternalServerError, "No se pudo iniciar sesión")
		return
	}

	http.Redirect(w, r, a.AuthCodeURL(state), http.StatusFound)
}

// Callback validates the state, exchanges the code, creates a session and redirects to the
// page recorded at login.
func (a *Authenticator) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	returnTo, err := a.states.Consume(query.Get("state"), StateMaxAge)
	if err != nil {
		a.logger.Warn("rejected callback", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid state parameter")
		return
	}

	code := query.Get("code")
	if code == "" {
		a.logger.Warn("authorization failed", "error", query.Get("error"), "description", query.Get("error_description"))
		writeError(w, http.StatusBadRequest, "Authorization failed")
		return
	}

	ctx := context.WithValue(r.Context(), oauth2.HTTPClient, a.client)
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		a.logger.Error("token exchange failed", "error", err)
		writeError(w, http.StatusBadGateway, "Token exchange failed")
		return
	}

	info, err := a.fetchUserInfo(ctx, token)
	if err != nil {
		a.logger.Error("failed to fetch user info", "error", err)
		writeError(w, http.StatusBadGateway, "Could not read user profile")
		return
	}

	session := models.NewSession(info.Subject, info.Name, info.Email, a.ttl)
	if err := a.sessions.Create(session); err != nil {
		a.logger.Error("failed to create session", "error", err)
		writeError(w, http.StatusInternalServerError, "No se pudo iniciar sesión")
		return
	}

	a.logger.Info("login", "subject", info.Subject)
	setSessionCookie(w, session, a.secure)
	http.Redirect(w, r, returnTo, http.StatusFound)
}

// Logout deletes the current session and returns to the home page.
func (a *Authenticator) Logout(w http.ResponseWriter, r *http.Request) {
	if session, ok := SessionFrom(r.Context()); ok {
		if err := a.sessions.Delete(session.ID()); err != nil && !errors.Is(err, shared.ErrSessionNotFound) {
			a.logger.Error("failed to delete session", "error", err)
		}
	}
	clearSessionCookie(w, a.secure)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Sweep removes expired sessions and abandoned login states.
func (a *Authenticator) Sweep() {
	if n, err := a.sessions.DeleteExpired(); err != nil {
		a.logger.Error("failed to delete expired sessions", "error", err)
	} else if n > 0 {
		a.logger.Debug("deleted expired sessions", "count", n)
	}

	if n, err := a.states.DeleteOlderThan(StateMaxAge); err != nil {
		a.logger.Error("failed to delete stale login states", "error", err)
	} else if n > 0 {
		a.logger.Debug("deleted stale login states", "count", n)
	}
}

func (a *Authenticator) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	resp, err := a.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo status %d", shared.ErrAuthFailed, resp.StatusCode)
	}

	var info UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: failed to decode userinfo: %v", shared.ErrAuthFailed, err)
	}
	if info.Subject == "" {
		return nil, fmt.Errorf("%w: userinfo has no subject", shared.ErrAuthFailed)
	}

	return &info, nil
}

// SafeReturnTo keeps only local absolute paths, defaulting to "/".
func SafeReturnTo(returnTo string) string {
	if returnTo == "" || !strings.HasPrefix(returnTo, "/") || strings.HasPrefix(returnTo, "//") || strings.HasPrefix(returnTo, "/\\") {
		return "/"
	}
	u, err := url.Parse(returnTo)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return "/"
	}
	return returnTo
}

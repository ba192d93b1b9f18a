package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nicolasrp432/PlaywrongIa/internal/models"
	"github.com/nicolasrp432/PlaywrongIa/internal/repositories"
	"github.com/nicolasrp432/PlaywrongIa/internal/shared"
	"github.com/nicolasrp432/PlaywrongIa/internal/store"
	tu "github.com/nicolasrp432/PlaywrongIa/internal/testing"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	shared.ConfigureDatabase(db, 1, 1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

type fixture struct {
	srv       *Server
	mock      *tu.MockMovieService
	store     *store.Store
	sessions  *repositories.SessionRepository
	favorites *repositories.FavoriteRepository
	states    *repositories.OAuthStateRepository
}

func newFixture(t *testing.T, auth func(f *fixture) *Authenticator) *fixture {
	t.Helper()

	mock := tu.NewMockMovieService()
	mock.TrendingMovies = []models.Movie{
		{ID: 1, Title: "Uno", BackdropPath: "/b1.jpg", VoteAverage: 8.4},
		{ID: 2, Title: "Dos", BackdropPath: "/b2.jpg"},
		{ID: 3, Title: "Tres", BackdropPath: "/b3.jpg"},
	}
	mock.GenreMovies[models.GenreAction] = []models.Movie{{ID: 10, Title: "Acción 1"}}
	mock.GenreMovies[models.GenreComedy] = []models.Movie{{ID: 20, Title: "Comedia 1"}}
	mock.GenreMovies[models.GenreDrama] = []models.Movie{{ID: 30, Title: "Drama 1"}}
	mock.GenreList = []models.Genre{{ID: 28, Name: "Acción"}, {ID: 35, Name: "Comedia"}, {ID: 18, Name: "Drama"}}
	mock.Details[42] = &models.MovieDetail{
		Movie:   models.Movie{ID: 42, Title: "La respuesta", PosterPath: "/42.jpg", ReleaseDate: "2025-01-15"},
		Runtime: 135,
	}

	db := setupTestDB(t)
	logger := log.New(io.Discard)

	f := &fixture{
		mock:      mock,
		store:     store.New(mock, logger),
		sessions:  repositories.NewSessionRepository(db),
		favorites: repositories.NewFavoriteRepository(db),
		states:    repositories.NewOAuthStateRepository(db),
	}

	var authenticator *Authenticator
	if auth != nil {
		authenticator = auth(f)
	}

	f.srv = New(Options{
		Store:     f.store,
		Service:   mock,
		Sessions:  f.sessions,
		Favorites: f.favorites,
		Auth:      authenticator,
		Logger:    logger,
	})
	return f
}

// login stores a session directly and returns its cookie.
func (f *fixture) login(t *testing.T, subject, name string) *http.Cookie {
	t.Helper()
	session := models.NewSession(subject, name, "", time.Hour)
	if err := f.sessions.Create(session); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return &http.Cookie{Name: SessionCookie, Value: session.ID()}
}

func do(t *testing.T, h http.Handler, method, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestBasicRouter(t *testing.T) {
	t.Run("MiddlewareOrder", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mw("first"), mw("second"))
		r.HandleFunc(http.MethodGet, "/x", func(w http.ResponseWriter, _ *http.Request) {
			order = append(order, "handler")
		})

		do(t, r, http.MethodGet, "/x")

		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected order: %v", order)
		}
	})

	t.Run("MethodMismatch", func(t *testing.T) {
		r := NewBasicRouter()
		r.HandleFunc(http.MethodGet, "/x", func(w http.ResponseWriter, _ *http.Request) {})

		if rec := do(t, r, http.MethodPost, "/x"); rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})
}

func TestHome(t *testing.T) {
	t.Run("LoadsOnce", func(t *testing.T) {
		f := newFixture(t, nil)

		rec := do(t, f.srv, http.MethodGet, "/")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		view := decode[HomeView](t, rec)
		if len(view.Trending) != 3 || view.TrendingStatus != store.StatusLoaded {
			t.Errorf("unexpected trending: %d %s", len(view.Trending), view.TrendingStatus)
		}
		if len(view.Featured) != 3 {
			t.Errorf("expected 3 featured movies, got %d", len(view.Featured))
		}
		if len(view.Genres) != 3 {
			t.Fatalf("expected 3 genre rows, got %d", len(view.Genres))
		}
		if view.Genres[0].Title != "Películas de Acción" || view.Genres[2].Title != "Películas de Drama" {
			t.Errorf("unexpected titles: %q, %q", view.Genres[0].Title, view.Genres[2].Title)
		}
		if view.Genres[1].Movies[0].Href != "/movie/20" {
			t.Errorf("unexpected href: %s", view.Genres[1].Movies[0].Href)
		}
		if view.Authenticated || view.Loading {
			t.Errorf("expected anonymous settled view, got %+v", view)
		}

		do(t, f.srv, http.MethodGet, "/")
		if n := f.mock.Calls("Trending"); n != 1 {
			t.Errorf("expected trending to be fetched once, got %d", n)
		}

		do(t, f.srv, http.MethodGet, "/?refresh=1")
		if n := f.mock.Calls("Trending"); n != 2 {
			t.Errorf("expected refresh to fetch again, got %d", n)
		}
	})

	t.Run("GenreFailure", func(t *testing.T) {
		f := newFixture(t, nil)
		f.mock.GenreErr[models.GenreComedy] = errors.New("boom")

		view := decode[HomeView](t, do(t, f.srv, http.MethodGet, "/"))

		for _, row := range view.Genres {
			if row.Status != store.StatusError || row.Error != "Failed to fetch genre movies" {
				t.Errorf("genre %d: expected error row, got %s %q", row.ID, row.Status, row.Error)
			}
			if len(row.Movies) != 0 {
				t.Errorf("genre %d: expected no movies, got %d", row.ID, len(row.Movies))
			}
		}
		if view.TrendingStatus != store.StatusLoaded {
			t.Errorf("trending should load independently, got %s", view.TrendingStatus)
		}
	})

	t.Run("UnknownGenreName", func(t *testing.T) {
		f := newFixture(t, nil)
		f.mock.GenresErr = errors.New("boom")

		view := decode[HomeView](t, do(t, f.srv, http.MethodGet, "/"))
		if view.Genres[0].Title != "Películas de Género" {
			t.Errorf("expected fallback title, got %q", view.Genres[0].Title)
		}
	})

	t.Run("Authenticated", func(t *testing.T) {
		f := newFixture(t, nil)
		cookie := f.login(t, "auth0|1", "Ada")

		view := decode[HomeView](t, do(t, f.srv, http.MethodGet, "/", cookie))
		if !view.Authenticated || view.User != "Ada" {
			t.Errorf("expected authenticated view for Ada, got %v %q", view.Authenticated, view.User)
		}
	})
}

func TestMovie(t *testing.T) {
	f := newFixture(t, nil)

	t.Run("Found", func(t *testing.T) {
		rec := do(t, f.srv, http.MethodGet, "/movie/42")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		body := decode[map[string]any](t, rec)
		if body["title"] != "La respuesta" {
			t.Errorf("unexpected title: %v", body["title"])
		}
		if body["runtime"] != "2h 15m" {
			t.Errorf("unexpected runtime: %v", body["runtime"])
		}
	})

	t.Run("Unavailable", func(t *testing.T) {
		rec := do(t, f.srv, http.MethodGet, "/movie/99")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}

		body := decode[map[string]any](t, rec)
		if body["error"] != true {
			t.Errorf("expected error flag, got %v", body["error"])
		}
		if body["message"] != "No se pudieron cargar los detalles de la película (ID: 99)" {
			t.Errorf("unexpected message: %v", body["message"])
		}
		if body["id"] != float64(99) {
			t.Errorf("unexpected id: %v", body["id"])
		}
		if f.store.Error() != "" {
			t.Errorf("sentinel should not set the shared error, got %q", f.store.Error())
		}
	})

	t.Run("InvalidID", func(t *testing.T) {
		rec := do(t, f.srv, http.MethodGet, "/movie/abc")
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/404" {
			t.Errorf("expected redirect to /404, got %d %s", rec.Code, rec.Header().Get("Location"))
		}
	})
}

func TestSearch(t *testing.T) {
	t.Run("EmptyQuery", func(t *testing.T) {
		f := newFixture(t, nil)

		view := decode[SearchView](t, do(t, f.srv, http.MethodGet, "/search?q=%20%20"))
		if len(view.Results) != 0 || view.TotalResults != 0 {
			t.Errorf("expected empty results, got %+v", view)
		}
		if n := f.mock.Calls("SearchMovies"); n != 0 {
			t.Errorf("expected no remote call, got %d", n)
		}
	})

	t.Run("Results", func(t *testing.T) {
		f := newFixture(t, nil)
		f.mock.SearchResults["dune"] = &models.MoviePage{
			Page:         1,
			Results:      []models.Movie{{ID: 438631, Title: "Dune"}},
			TotalResults: 12,
		}

		view := decode[SearchView](t, do(t, f.srv, http.MethodGet, "/search?q=dune"))
		if view.Query != "dune" || len(view.Results) != 1 || view.TotalResults != 12 {
			t.Errorf("unexpected view: %+v", view)
		}
	})

	t.Run("Failure", func(t *testing.T) {
		f := newFixture(t, nil)
		f.mock.SearchErr = errors.New("boom")

		rec := do(t, f.srv, http.MethodGet, "/search?q=dune")
		if rec.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", rec.Code)
		}
		if body := decode[ErrorBody](t, rec); body.Message != "Failed to search movies" {
			t.Errorf("unexpected message: %q", body.Message)
		}
	})
}

func TestGenres(t *testing.T) {
	f := newFixture(t, nil)

	genres := decode[[]models.Genre](t, do(t, f.srv, http.MethodGet, "/genres"))
	if len(genres) != 3 {
		t.Errorf("expected 3 genres, got %d", len(genres))
	}

	do(t, f.srv, http.MethodGet, "/genres")
	if n := f.mock.Calls("Genres"); n != 1 {
		t.Errorf("expected catalog to be fetched once, got %d", n)
	}
}

func TestNotFound(t *testing.T) {
	f := newFixture(t, nil)

	t.Run("UnknownPath", func(t *testing.T) {
		for _, path := range []string{"/nope", "/movie", "/movie/1/extra"} {
			rec := do(t, f.srv, http.MethodGet, path)
			if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/404" {
				t.Errorf("%s: expected redirect to /404, got %d %s", path, rec.Code, rec.Header().Get("Location"))
			}
		}
	})

	t.Run("Page", func(t *testing.T) {
		rec := do(t, f.srv, http.MethodGet, "/404")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		if page := decode[NotFoundPage](t, rec); page.Title != "Página no encontrada" {
			t.Errorf("unexpected title: %q", page.Title)
		}
	})
}

func TestFavorites(t *testing.T) {
	t.Run("RequiresSession", func(t *testing.T) {
		f := newFixture(t, nil)

		for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
			target := "/favorites/42"
			if method == http.MethodGet {
				target = "/favorites"
			}
			rec := do(t, f.srv, method, target)
			if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/" {
				t.Errorf("%s %s: expected redirect to /, got %d %s", method, target, rec.Code, rec.Header().Get("Location"))
			}
		}
	})

	t.Run("HandlersWithoutSession", func(t *testing.T) {
		f := newFixture(t, nil)

		for name, h := range map[string]http.HandlerFunc{
			"list":   f.srv.handleListFavorites,
			"add":    f.srv.handleAddFavorite,
			"remove": f.srv.handleRemoveFavorite,
		} {
			req := httptest.NewRequest(http.MethodPost, "/favorites/42", nil)
			req.SetPathValue("id", "42")
			rec := httptest.NewRecorder()
			h(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("%s: expected 401, got %d", name, rec.Code)
			}
		}
		if ok, _ := f.favorites.Exists("", 42); ok {
			t.Error("nothing should be saved without a session")
		}
	})

	t.Run("CurrentSession", func(t *testing.T) {
		if _, err := CurrentSession(context.Background()); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("ExpiredSession", func(t *testing.T) {
		f := newFixture(t, nil)

		rec := do(t, f.srv, http.MethodGet, "/favorites", &http.Cookie{Name: SessionCookie, Value: "missing"})
		if rec.Code != http.StatusFound {
			t.Fatalf("expected redirect, got %d", rec.Code)
		}
		if !strings.Contains(rec.Header().Get("Set-Cookie"), SessionCookie+"=;") {
			t.Errorf("expected session cookie to be cleared, got %q", rec.Header().Get("Set-Cookie"))
		}
	})

	t.Run("AddListRemove", func(t *testing.T) {
		f := newFixture(t, nil)
		cookie := f.login(t, "auth0|1", "Ada")

		rec := do(t, f.srv, http.MethodPost, "/favorites/42", cookie)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if added := decode[FavoriteView](t, rec); added.Title != "La respuesta" || added.Href != "/movie/42" {
			t.Errorf("unexpected favorite: %+v", added)
		}

		list := decode[[]FavoriteView](t, do(t, f.srv, http.MethodGet, "/favorites", cookie))
		if len(list) != 1 || list[0].ID != 42 {
			t.Fatalf("expected one favorite for movie 42, got %+v", list)
		}

		other := f.login(t, "auth0|2", "Bob")
		if list := decode[[]FavoriteView](t, do(t, f.srv, http.MethodGet, "/favorites", other)); len(list) != 0 {
			t.Errorf("favorites should be per user, got %d", len(list))
		}

		if rec := do(t, f.srv, http.MethodDelete, "/favorites/42", cookie); rec.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", rec.Code)
		}
		if rec := do(t, f.srv, http.MethodDelete, "/favorites/42", cookie); rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 on second delete, got %d", rec.Code)
		}
	})

	t.Run("UnknownMovie", func(t *testing.T) {
		f := newFixture(t, nil)
		cookie := f.login(t, "auth0|1", "Ada")

		rec := do(t, f.srv, http.MethodPost, "/favorites/99", cookie)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
		if ok, _ := f.favorites.Exists("auth0|1", 99); ok {
			t.Error("unavailable movie should not be saved")
		}
	})
}

func TestListenAndServe(t *testing.T) {
	f := newFixture(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	addrs := make(chan string, 1)
	done := make(chan error, 1)

	go func() {
		done <- f.srv.ListenAndServe(ctx, "127.0.0.1:0", func(addr string) { addrs <- addr })
	}()

	var addr string
	select {
	case addr = <-addrs:
	case err := <-done:
		t.Fatalf("server exited early: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + addr + "/404")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(6 * time.Second):
		t.Fatal("server did not stop")
	}
}

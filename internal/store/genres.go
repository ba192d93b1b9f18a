package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/nicolasrp432/PlaywrongIa/internal/models"
	"github.com/nicolasrp432/PlaywrongIa/internal/shared"
)

// UnknownGenreName labels genres missing from the catalog.
const UnknownGenreName = "Género"

// GenreName returns the catalog name for id, or [UnknownGenreName].
func (s *Store) GenreName(id int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.state.Catalog.Data {
		if g.ID == id {
			return g.Name
		}
	}
	return UnknownGenreName
}

// LookupGenre resolves a numeric id or a genre name to a genre.
//
// Names are matched case-insensitively and accent-insensitively, closest match first. The catalog
// is fetched when it has not been loaded yet. A numeric id missing from the catalog still
// resolves, named [UnknownGenreName].
func (s *Store) LookupGenre(ctx context.Context, query string) (models.Genre, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.Genre{}, fmt.Errorf("%w: genre", shared.ErrMissingArgument)
	}

	catalog := s.Snapshot().Catalog
	if catalog.Status != StatusLoaded {
		if _, err := s.FetchGenres(ctx); err != nil {
			if id, convErr := strconv.Atoi(query); convErr == nil {
				return models.Genre{ID: id, Name: UnknownGenreName}, nil
			}
			return models.Genre{}, err
		}
		catalog = s.Snapshot().Catalog
	}

	if id, err := strconv.Atoi(query); err == nil {
		for _, g := range catalog.Data {
			if g.ID == id {
				return g, nil
			}
		}
		return models.Genre{ID: id, Name: UnknownGenreName}, nil
	}

	return MatchGenre(query, catalog.Data)
}

// MatchGenre finds the genre whose name best matches query.
func MatchGenre(query string, genres []models.Genre) (models.Genre, error) {
	names := make([]string, len(genres))
	for i, g := range genres {
		names[i] = g.Name
		if strings.EqualFold(g.Name, query) {
			return g, nil
		}
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	if len(ranks) == 0 {
		return models.Genre{}, fmt.Errorf("%w: %q", shared.ErrGenreNotFound, query)
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})
	return genres[ranks[0].OriginalIndex], nil
}

package services

import (
	"context"
	"fmt"

	"github.com/nicolasrp432/PlaywrongIa/internal/models"
)

const unavailableFormat = "No se pudieron cargar los detalles de la película (ID: %d)"

// DetailOutcome holds either a loaded movie detail or the sentinel describing why it is missing.
type DetailOutcome struct {
	Detail      *models.MovieDetail       `json:"detail,omitempty"`
	Unavailable *models.DetailUnavailable `json:"unavailable,omitempty"`
}

// OK reports whether the outcome carries a detail.
func (o DetailOutcome) OK() bool {
	return o.Detail != nil && o.Unavailable == nil
}

// NewUnavailable builds the sentinel for id.
func NewUnavailable(id int) *models.DetailUnavailable {
	return &models.DetailUnavailable{
		Error:   true,
		Message: fmt.Sprintf(unavailableFormat, id),
		ID:      id,
	}
}

// DetailsOrUnavailable fetches a movie detail and converts any failure into the sentinel.
//
// It never returns an error; the cause is dropped.
func DetailsOrUnavailable(ctx context.Context, svc MovieService, id int) DetailOutcome {
	detail, err := svc.MovieDetails(ctx, id)
	if err != nil || detail == nil {
		return DetailOutcome{Unavailable: NewUnavailable(id)}
	}
	return DetailOutcome{Detail: detail}
}

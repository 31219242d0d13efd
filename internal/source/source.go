package source

import (
	"context"
	"errors"

	"github.com/global-trade-alert/ms-teams-push/internal/model"
)

// ErrFetch wraps transport and decode failures from a source.
var ErrFetch = errors.New("fetch interventions")

type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]model.Intervention, error)
}

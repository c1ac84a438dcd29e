package repository

import (
	"context"
	"errors"
	"sort"

	"giveaway-offers-backend/internal/features/participation/models"
)

var ErrNotFound = errors.New("participation not found")

// SortBySubmission orders items by submission time, ties broken by token, the
// order ListByPrize returns.
func SortBySubmission(items []*models.Participation) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].SubmittedAt.Equal(items[j].SubmittedAt) {
			return items[i].SubmittedAt.Before(items[j].SubmittedAt)
		}
		return items[i].Token < items[j].Token
	})
}

// ParticipationRepository stores participation records keyed by token.
// Put is create-or-replace; the store applies last-write-wins per document.
type ParticipationRepository interface {
	Put(ctx context.Context, token string, p *models.Participation) error
	Get(ctx context.Context, token string) (*models.Participation, error)
	// ListByPrize returns the prize's records ordered by SortBySubmission.
	ListByPrize(ctx context.Context, prizeID string) ([]*models.Participation, error)
	Ping(ctx context.Context) error
	Close() error
}

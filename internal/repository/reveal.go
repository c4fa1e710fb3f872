package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ittop-club/secret-santa-bot/internal/domain"
	"github.com/ittop-club/secret-santa-bot/internal/repository/dao"
)

var (
	ErrAlreadyRevealed = dao.ErrAlreadyRevealed
)

type RevealDAO interface {
	Insert(ctx context.Context, r dao.Reveal) (dao.Reveal, error)
	Exists(ctx context.Context, recipientID int64, year int) (bool, error)
	CountForYear(ctx context.Context, year int) (int64, error)
}

// RevealRepository owns the reveal records; they are insert-only.
type RevealRepository struct {
	dao RevealDAO
}

func NewRevealRepository(dao RevealDAO) *RevealRepository {
	return &RevealRepository{
		dao: dao,
	}
}

func (r *RevealRepository) Create(ctx context.Context, reveal domain.Reveal) (domain.Reveal, error) {
	revealedAt := reveal.RevealedAt
	if revealedAt.IsZero() {
		revealedAt = time.Now()
	}

	created, err := r.dao.Insert(ctx, dao.Reveal{
		SantaID:     reveal.SantaID,
		RecipientID: reveal.RecipientID,
		Year:        reveal.Year,
		RevealedAt:  revealedAt,
		ByAdmin:     reveal.ByAdmin,
	})
	if err != nil {
		if errors.Is(err, dao.ErrAlreadyRevealed) {
			return domain.Reveal{}, ErrAlreadyRevealed
		}

		return domain.Reveal{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return domain.Reveal{
		ID:          created.ID,
		SantaID:     created.SantaID,
		RecipientID: created.RecipientID,
		Year:        created.Year,
		RevealedAt:  created.RevealedAt,
		ByAdmin:     created.ByAdmin,
	}, nil
}

func (r *RevealRepository) Exists(ctx context.Context, recipientID int64, year int) (bool, error) {
	exists, err := r.dao.Exists(ctx, recipientID, year)
	if err != nil {
		return false, fmt.Errorf("r.dao.Exists -> %w", err)
	}

	return exists, nil
}

func (r *RevealRepository) CountForYear(ctx context.Context, year int) (int64, error) {
	count, err := r.dao.CountForYear(ctx, year)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountForYear -> %w", err)
	}

	return count, nil
}

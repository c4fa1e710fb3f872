package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ittop-club/secret-santa-bot/internal/domain"
	"github.com/ittop-club/secret-santa-bot/internal/repository/dao"
)

var (
	ErrSantaAlreadyAssigned = dao.ErrSantaAlreadyAssigned
	ErrPairNotFound         = dao.ErrAssignmentNotFound
)

type AssignmentDAO interface {
	InsertBatch(ctx context.Context, assignments []dao.Assignment) error
	CountForYear(ctx context.Context, year int) (int64, error)
	FindBySanta(ctx context.Context, santaID int64, year int) (dao.Assignment, error)
	FindByRecipient(ctx context.Context, recipientID int64, year int) (dao.Assignment, error)
	ListForYear(ctx context.Context, year int) ([]dao.Assignment, error)
	ListUnnotified(ctx context.Context, year int) ([]dao.Assignment, error)
	ListUnrevealed(ctx context.Context, year int) ([]dao.Assignment, error)
	MarkNotified(ctx context.Context, santaID int64, year int) error
	ListPairsForYear(ctx context.Context, year int) ([]dao.PairRow, error)
	DeleteYear(ctx context.Context, year int) error
}

// PairingRepository owns the assignment records produced by a draw.
type PairingRepository struct {
	dao AssignmentDAO
}

func NewPairingRepository(dao AssignmentDAO) *PairingRepository {
	return &PairingRepository{
		dao: dao,
	}
}

func (r *PairingRepository) CreateBatch(ctx context.Context, assignments []domain.Assignment) error {
	rows := make([]dao.Assignment, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, dao.Assignment{
			SantaID:     a.SantaID,
			RecipientID: a.RecipientID,
			Year:        a.Year,
		})
	}

	if err := r.dao.InsertBatch(ctx, rows); err != nil {
		if errors.Is(err, dao.ErrSantaAlreadyAssigned) {
			return ErrSantaAlreadyAssigned
		}

		return fmt.Errorf("r.dao.InsertBatch -> %w", err)
	}

	return nil
}

func (r *PairingRepository) CountForYear(ctx context.Context, year int) (int64, error) {
	count, err := r.dao.CountForYear(ctx, year)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountForYear -> %w", err)
	}

	return count, nil
}

func (r *PairingRepository) FindBySanta(ctx context.Context, santaID int64, year int) (domain.Assignment, error) {
	found, err := r.dao.FindBySanta(ctx, santaID, year)
	if err != nil {
		return domain.Assignment{}, fmt.Errorf("r.dao.FindBySanta -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *PairingRepository) FindByRecipient(ctx context.Context, recipientID int64, year int) (domain.Assignment, error) {
	found, err := r.dao.FindByRecipient(ctx, recipientID, year)
	if err != nil {
		return domain.Assignment{}, fmt.Errorf("r.dao.FindByRecipient -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *PairingRepository) ListForYear(ctx context.Context, year int) ([]domain.Assignment, error) {
	found, err := r.dao.ListForYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListForYear -> %w", err)
	}

	return r.daoToDomainList(found), nil
}

func (r *PairingRepository) ListUnnotified(ctx context.Context, year int) ([]domain.Assignment, error) {
	found, err := r.dao.ListUnnotified(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListUnnotified -> %w", err)
	}

	return r.daoToDomainList(found), nil
}

func (r *PairingRepository) ListUnrevealed(ctx context.Context, year int) ([]domain.Assignment, error) {
	found, err := r.dao.ListUnrevealed(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListUnrevealed -> %w", err)
	}

	return r.daoToDomainList(found), nil
}

func (r *PairingRepository) MarkNotified(ctx context.Context, santaID int64, year int) error {
	if err := r.dao.MarkNotified(ctx, santaID, year); err != nil {
		return fmt.Errorf("r.dao.MarkNotified -> %w", err)
	}

	return nil
}

func (r *PairingRepository) ListPairs(ctx context.Context, year int) ([]domain.AssignmentPair, error) {
	rows, err := r.dao.ListPairsForYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListPairsForYear -> %w", err)
	}

	pairs := make([]domain.AssignmentPair, 0, len(rows))
	for _, row := range rows {
		pairs = append(pairs, domain.AssignmentPair{
			SantaID:       row.SantaID,
			RecipientID:   row.RecipientID,
			SantaName:     row.SantaName,
			RecipientName: row.RecipientName,
			RecipientWish: row.RecipientWish,
			Notified:      row.Notified,
			Revealed:      row.Revealed,
		})
	}

	return pairs, nil
}

func (r *PairingRepository) ClearYear(ctx context.Context, year int) error {
	if err := r.dao.DeleteYear(ctx, year); err != nil {
		return fmt.Errorf("r.dao.DeleteYear -> %w", err)
	}

	return nil
}

func (r *PairingRepository) daoToDomain(a dao.Assignment) domain.Assignment {
	return domain.Assignment{
		ID:          a.ID,
		SantaID:     a.SantaID,
		RecipientID: a.RecipientID,
		Year:        a.Year,
		Notified:    a.Notified,
		CreatedAt:   a.CreatedAt,
	}
}

func (r *PairingRepository) daoToDomainList(assignments []dao.Assignment) []domain.Assignment {
	out := make([]domain.Assignment, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, r.daoToDomain(a))
	}

	return out
}

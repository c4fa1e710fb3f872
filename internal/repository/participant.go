package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ittop-club/secret-santa-bot/internal/domain"
	"github.com/ittop-club/secret-santa-bot/internal/repository/dao"
)

var (
	ErrParticipantNotFound = dao.ErrParticipantNotFound
)

type ParticipantDAO interface {
	Upsert(ctx context.Context, p dao.Participant) (dao.Participant, error)
	FindByUserID(ctx context.Context, userID int64) (dao.Participant, error)
	FindByDisplayName(ctx context.Context, name string) (dao.Participant, error)
	ListActive(ctx context.Context) ([]dao.Participant, error)
	UpdateWishText(ctx context.Context, userID int64, wishText string) error
	Deactivate(ctx context.Context, userID int64) error
	CountAll(ctx context.Context) (int64, error)
	CountActive(ctx context.Context) (int64, error)
}

type ParticipantRepository struct {
	dao ParticipantDAO
}

func NewParticipantRepository(dao ParticipantDAO) *ParticipantRepository {
	return &ParticipantRepository{
		dao: dao,
	}
}

func (r *ParticipantRepository) Upsert(ctx context.Context, p domain.Participant) (domain.Participant, error) {
	registeredAt := p.RegisteredAt
	if registeredAt.IsZero() {
		registeredAt = time.Now()
	}

	saved, err := r.dao.Upsert(ctx, dao.Participant{
		UserID:       p.UserID,
		Handle:       p.Handle,
		DisplayName:  p.DisplayName,
		PlatformName: p.PlatformName,
		WishText:     p.WishText,
		RegisteredAt: registeredAt,
		Active:       true,
	})
	if err != nil {
		return domain.Participant{}, fmt.Errorf("r.dao.Upsert -> %w", err)
	}

	return r.daoToDomain(saved), nil
}

func (r *ParticipantRepository) FindByUserID(ctx context.Context, userID int64) (domain.Participant, error) {
	found, err := r.dao.FindByUserID(ctx, userID)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *ParticipantRepository) FindByDisplayName(ctx context.Context, name string) (domain.Participant, error) {
	found, err := r.dao.FindByDisplayName(ctx, name)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("r.dao.FindByDisplayName -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *ParticipantRepository) ListActive(ctx context.Context) ([]domain.Participant, error) {
	found, err := r.dao.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListActive -> %w", err)
	}

	participants := make([]domain.Participant, 0, len(found))
	for _, p := range found {
		participants = append(participants, r.daoToDomain(p))
	}

	return participants, nil
}

func (r *ParticipantRepository) UpdateWishText(ctx context.Context, userID int64, wishText string) error {
	if err := r.dao.UpdateWishText(ctx, userID, wishText); err != nil {
		return fmt.Errorf("r.dao.UpdateWishText -> %w", err)
	}

	return nil
}

func (r *ParticipantRepository) Deactivate(ctx context.Context, userID int64) error {
	if err := r.dao.Deactivate(ctx, userID); err != nil {
		return fmt.Errorf("r.dao.Deactivate -> %w", err)
	}

	return nil
}

func (r *ParticipantRepository) CountAll(ctx context.Context) (int64, error) {
	count, err := r.dao.CountAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountAll -> %w", err)
	}

	return count, nil
}

func (r *ParticipantRepository) CountActive(ctx context.Context) (int64, error) {
	count, err := r.dao.CountActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountActive -> %w", err)
	}

	return count, nil
}

func (r *ParticipantRepository) daoToDomain(p dao.Participant) domain.Participant {
	return domain.Participant{
		ID:           p.ID,
		UserID:       p.UserID,
		Handle:       p.Handle,
		DisplayName:  p.DisplayName,
		PlatformName: p.PlatformName,
		WishText:     p.WishText,
		RegisteredAt: p.RegisteredAt,
		Active:       p.Active,
	}
}

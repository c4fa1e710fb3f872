package service

import (
	"context"
	"fmt"

	"github.com/ittop-club/secret-santa-bot/internal/domain"
	"github.com/ittop-club/secret-santa-bot/internal/repository"
)

var (
	ErrParticipantNotFound = repository.ErrParticipantNotFound
)

type ParticipantRepository interface {
	Upsert(ctx context.Context, p domain.Participant) (domain.Participant, error)
	FindByUserID(ctx context.Context, userID int64) (domain.Participant, error)
	FindByDisplayName(ctx context.Context, name string) (domain.Participant, error)
	ListActive(ctx context.Context) ([]domain.Participant, error)
	UpdateWishText(ctx context.Context, userID int64, wishText string) error
	Deactivate(ctx context.Context, userID int64) error
	CountAll(ctx context.Context) (int64, error)
	CountActive(ctx context.Context) (int64, error)
}

type StatsRepository interface {
	CountForYear(ctx context.Context, year int) (int64, error)
}

// RegistryService manages the participant roster and wish lists.
type RegistryService struct {
	repo    ParticipantRepository
	pairs   StatsRepository
	reveals StatsRepository
}

func NewRegistryService(repo ParticipantRepository, pairs, reveals StatsRepository) *RegistryService {
	return &RegistryService{
		repo:    repo,
		pairs:   pairs,
		reveals: reveals,
	}
}

// Register creates a participant on first contact or refreshes and
// reactivates an existing one. Registration is an upsert so that a player
// who restarts the flow does not end up duplicated.
func (s *RegistryService) Register(ctx context.Context, p domain.Participant) (domain.Participant, error) {
	registered, err := s.repo.Upsert(ctx, p)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("s.repo.Upsert -> %w", err)
	}

	return registered, nil
}

func (s *RegistryService) Get(ctx context.Context, userID int64) (domain.Participant, error) {
	p, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("s.repo.FindByUserID -> %w", err)
	}

	return p, nil
}

func (s *RegistryService) GetByDisplayName(ctx context.Context, name string) (domain.Participant, error) {
	p, err := s.repo.FindByDisplayName(ctx, name)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("s.repo.FindByDisplayName -> %w", err)
	}

	return p, nil
}

func (s *RegistryService) ListActive(ctx context.Context) ([]domain.Participant, error) {
	participants, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListActive -> %w", err)
	}

	return participants, nil
}

func (s *RegistryService) UpdateWish(ctx context.Context, userID int64, wishText string) error {
	if err := s.repo.UpdateWishText(ctx, userID, wishText); err != nil {
		return fmt.Errorf("s.repo.UpdateWishText -> %w", err)
	}

	return nil
}

func (s *RegistryService) Leave(ctx context.Context, userID int64) error {
	if err := s.repo.Deactivate(ctx, userID); err != nil {
		return fmt.Errorf("s.repo.Deactivate -> %w", err)
	}

	return nil
}

func (s *RegistryService) Stats(ctx context.Context, year int) (domain.Stats, error) {
	total, err := s.repo.CountAll(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("s.repo.CountAll -> %w", err)
	}

	active, err := s.repo.CountActive(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("s.repo.CountActive -> %w", err)
	}

	pairs, err := s.pairs.CountForYear(ctx, year)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("s.pairs.CountForYear -> %w", err)
	}

	revealed, err := s.reveals.CountForYear(ctx, year)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("s.reveals.CountForYear -> %w", err)
	}

	return domain.Stats{
		TotalParticipants:  total,
		ActiveParticipants: active,
		TotalPairs:         pairs,
		TotalRevealed:      revealed,
	}, nil
}

// AddTestParticipants seeds a handful of fake players so an admin can
// exercise the draw before the real roster fills up.
func (s *RegistryService) AddTestParticipants(ctx context.Context) (int, error) {
	testParticipants := []domain.Participant{
		{UserID: 1001, Handle: "test_user1", DisplayName: "Ivan Ivanov", PlatformName: "Ivan"},
		{UserID: 1002, Handle: "test_user2", DisplayName: "Maria Petrova", PlatformName: "Maria"},
		{UserID: 1003, Handle: "test_user3", DisplayName: "Alexey Sidorov", PlatformName: "Alexey"},
		{UserID: 1004, Handle: "test_user4", DisplayName: "Ekaterina Volkova", PlatformName: "Ekaterina"},
		{UserID: 1005, Handle: "test_user5", DisplayName: "Dmitry Kozlov", PlatformName: "Dmitry"},
	}

	added := 0
	for _, p := range testParticipants {
		if _, err := s.repo.Upsert(ctx, p); err != nil {
			return added, fmt.Errorf("s.repo.Upsert -> %w", err)
		}
		added++
	}

	return added, nil
}

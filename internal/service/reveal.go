package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ittop-club/secret-santa-bot/internal/domain"
	"github.com/ittop-club/secret-santa-bot/internal/repository"
)

var (
	ErrPairNotFound   = repository.ErrPairNotFound
	ErrNotYetRevealed = errors.New("santa not revealed yet for this recipient")
)

type RevealPairingRepository interface {
	FindByRecipient(ctx context.Context, recipientID int64, year int) (domain.Assignment, error)
	ListUnrevealed(ctx context.Context, year int) ([]domain.Assignment, error)
}

type RevealRepository interface {
	Create(ctx context.Context, reveal domain.Reveal) (domain.Reveal, error)
	Exists(ctx context.Context, recipientID int64, year int) (bool, error)
	CountForYear(ctx context.Context, year int) (int64, error)
}

type ParticipantFinder interface {
	FindByUserID(ctx context.Context, userID int64) (domain.Participant, error)
}

// RevealService discloses who a recipient's santa was, once per recipient
// per year. A pair moves from assigned to revealed exactly once, whether the
// trigger is an admin action or the scheduled date; revealed is terminal.
type RevealService struct {
	pairs        RevealPairingRepository
	reveals      RevealRepository
	participants ParticipantFinder
}

func NewRevealService(pairs RevealPairingRepository, reveals RevealRepository, participants ParticipantFinder) *RevealService {
	return &RevealService{
		pairs:        pairs,
		reveals:      reveals,
		participants: participants,
	}
}

// RevealOne discloses the santa for one recipient and returns the santa's
// display name. Calling it again for an already-revealed pair is not an
// error: the existing disclosure is returned and newly is false.
func (s *RevealService) RevealOne(ctx context.Context, recipientID int64, year int, byAdmin bool) (string, bool, error) {
	assignment, err := s.pairs.FindByRecipient(ctx, recipientID, year)
	if err != nil {
		return "", false, fmt.Errorf("s.pairs.FindByRecipient -> %w", err)
	}

	santa, err := s.participants.FindByUserID(ctx, assignment.SantaID)
	if err != nil {
		return "", false, fmt.Errorf("s.participants.FindByUserID -> %w", err)
	}

	_, err = s.reveals.Create(ctx, domain.Reveal{
		SantaID:     assignment.SantaID,
		RecipientID: assignment.RecipientID,
		Year:        year,
		ByAdmin:     byAdmin,
	})
	if err != nil {
		// Lost the race against another reveal trigger, or the pair was
		// already revealed earlier. Same disclosure either way.
		if errors.Is(err, repository.ErrAlreadyRevealed) {
			return santa.DisplayName, false, nil
		}

		return "", false, fmt.Errorf("s.reveals.Create -> %w", err)
	}

	return santa.DisplayName, true, nil
}

// RevealAll discloses every assignment for the year that has no reveal
// record yet and returns how many were newly revealed. Each insert rechecks
// against a concurrent trigger through the (recipient, year) uniqueness, so
// an admin action racing the scheduled reveal never doubles a record.
func (s *RevealService) RevealAll(ctx context.Context, year int, byAdmin bool) (int, error) {
	pending, err := s.pairs.ListUnrevealed(ctx, year)
	if err != nil {
		return 0, fmt.Errorf("s.pairs.ListUnrevealed -> %w", err)
	}

	revealed := 0
	for _, assignment := range pending {
		_, err := s.reveals.Create(ctx, domain.Reveal{
			SantaID:     assignment.SantaID,
			RecipientID: assignment.RecipientID,
			Year:        year,
			ByAdmin:     byAdmin,
		})
		if err != nil {
			if errors.Is(err, repository.ErrAlreadyRevealed) {
				continue
			}

			return revealed, fmt.Errorf("s.reveals.Create -> %w", err)
		}

		revealed++
	}

	if revealed > 0 {
		zap.L().Info("pairs revealed",
			zap.Int("year", year),
			zap.Int("count", revealed),
			zap.Bool("by_admin", byAdmin),
		)
	}

	return revealed, nil
}

// RevealedSanta returns the santa's display name for a recipient whose pair
// has already been revealed. Before the reveal it returns ErrNotYetRevealed
// so command handlers can keep the secret.
func (s *RevealService) RevealedSanta(ctx context.Context, recipientID int64, year int) (string, error) {
	revealed, err := s.reveals.Exists(ctx, recipientID, year)
	if err != nil {
		return "", fmt.Errorf("s.reveals.Exists -> %w", err)
	}

	assignment, err := s.pairs.FindByRecipient(ctx, recipientID, year)
	if err != nil {
		return "", fmt.Errorf("s.pairs.FindByRecipient -> %w", err)
	}

	if !revealed {
		return "", ErrNotYetRevealed
	}

	santa, err := s.participants.FindByUserID(ctx, assignment.SantaID)
	if err != nil {
		return "", fmt.Errorf("s.participants.FindByUserID -> %w", err)
	}

	return santa.DisplayName, nil
}

// IsRevealed reports whether the recipient's pair has been revealed.
func (s *RevealService) IsRevealed(ctx context.Context, recipientID int64, year int) (bool, error) {
	revealed, err := s.reveals.Exists(ctx, recipientID, year)
	if err != nil {
		return false, fmt.Errorf("s.reveals.Exists -> %w", err)
	}

	return revealed, nil
}

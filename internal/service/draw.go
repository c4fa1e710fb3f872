package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/ittop-club/secret-santa-bot/internal/domain"
	"github.com/ittop-club/secret-santa-bot/internal/repository"
)

var (
	ErrAlreadyDrawn          = errors.New("draw already performed for this year")
	ErrNotEnoughParticipants = errors.New("not enough active participants for a draw")
	ErrDerangementNotFound   = errors.New("no valid derangement found within the attempt limit")
)

// maxShuffleAttempts bounds the rejection sampling. For any realistic roster
// the first few shuffles succeed; the cap only matters for tiny rosters.
const maxShuffleAttempts = 100

type DrawPairingRepository interface {
	CreateBatch(ctx context.Context, assignments []domain.Assignment) error
	CountForYear(ctx context.Context, year int) (int64, error)
	ListPairs(ctx context.Context, year int) ([]domain.AssignmentPair, error)
	ClearYear(ctx context.Context, year int) error
}

type ActiveLister interface {
	ListActive(ctx context.Context) ([]domain.Participant, error)
}

// DrawService computes the yearly derangement: a random one-to-one mapping
// of santas to recipients with nobody assigned to themselves.
type DrawService struct {
	participants ActiveLister
	pairs        DrawPairingRepository

	// mu makes the exists-check and the batch insert a single unit so a
	// racing admin command and scheduler tick cannot both pass the check.
	// The unique constraint on (santa, year) is the cross-process backstop.
	mu sync.Mutex

	// shuffle is swappable in tests to force fixed points.
	shuffle func(ids []int64)
}

func NewDrawService(participants ActiveLister, pairs DrawPairingRepository) *DrawService {
	return &DrawService{
		participants: participants,
		pairs:        pairs,
		shuffle: func(ids []int64) {
			rand.Shuffle(len(ids), func(i, j int) {
				ids[i], ids[j] = ids[j], ids[i]
			})
		},
	}
}

// PerformDraw assigns every active participant a recipient for the given
// year and persists the whole set atomically. It returns the number of
// assignments created. Nothing is written when any precondition fails or
// when no derangement is found within the attempt cap.
func (s *DrawService) PerformDraw(ctx context.Context, year int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.pairs.CountForYear(ctx, year)
	if err != nil {
		return 0, fmt.Errorf("s.pairs.CountForYear -> %w", err)
	}
	if count > 0 {
		return 0, ErrAlreadyDrawn
	}

	active, err := s.participants.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("s.participants.ListActive -> %w", err)
	}
	if len(active) < 2 {
		return 0, ErrNotEnoughParticipants
	}

	santaIDs := make([]int64, 0, len(active))
	for _, p := range active {
		santaIDs = append(santaIDs, p.UserID)
	}

	recipientIDs, err := s.derange(santaIDs)
	if err != nil {
		return 0, err
	}

	assignments := make([]domain.Assignment, 0, len(santaIDs))
	for i, santaID := range santaIDs {
		assignments = append(assignments, domain.Assignment{
			SantaID:     santaID,
			RecipientID: recipientIDs[i],
			Year:        year,
		})
	}

	if err := s.pairs.CreateBatch(ctx, assignments); err != nil {
		// A concurrent draw from another process won the race; its batch
		// is complete, so report the same outcome as the up-front check.
		if errors.Is(err, repository.ErrSantaAlreadyAssigned) {
			return 0, ErrAlreadyDrawn
		}

		return 0, fmt.Errorf("s.pairs.CreateBatch -> %w", err)
	}

	zap.L().Info("draw performed",
		zap.Int("year", year),
		zap.Int("pairs", len(assignments)),
	)

	return len(assignments), nil
}

// ListPairs returns the joined santa/recipient view for admin inspection.
func (s *DrawService) ListPairs(ctx context.Context, year int) ([]domain.AssignmentPair, error) {
	pairs, err := s.pairs.ListPairs(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("s.pairs.ListPairs -> %w", err)
	}

	return pairs, nil
}

// ClearPairs removes the year's assignments and reveals so the draw can be
// redone. Admin-only; there is no undo.
func (s *DrawService) ClearPairs(ctx context.Context, year int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.pairs.ClearYear(ctx, year); err != nil {
		return fmt.Errorf("s.pairs.ClearYear -> %w", err)
	}

	zap.L().Warn("pairs cleared", zap.Int("year", year))

	return nil
}

// derange returns a random permutation of ids with no fixed point, by
// re-shuffling until none remains. Rejection sampling is not uniform over
// all derangements but is guaranteed correct, and the cap makes failure
// deterministic instead of a spin.
func (s *DrawService) derange(ids []int64) ([]int64, error) {
	recipients := make([]int64, len(ids))
	copy(recipients, ids)

	for attempt := 0; attempt < maxShuffleAttempts; attempt++ {
		s.shuffle(recipients)
		if !hasFixedPoint(ids, recipients) {
			return recipients, nil
		}
	}

	return nil, ErrDerangementNotFound
}

func hasFixedPoint(santas, recipients []int64) bool {
	for i := range santas {
		if santas[i] == recipients[i] {
			return true
		}
	}

	return false
}

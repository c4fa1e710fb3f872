package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ittop-club/secret-santa-bot/internal/domain"
	"github.com/ittop-club/secret-santa-bot/internal/messages"
	"github.com/ittop-club/secret-santa-bot/internal/repository"
)

// sendTimeout bounds one outbound message; a slow chat API must not stall
// the whole fan-out.
const sendTimeout = 10 * time.Second

// Messenger is the outbound side of the chat transport.
type Messenger interface {
	Send(ctx context.Context, userID int64, text string) error
}

type NotifyPairingRepository interface {
	ListUnnotified(ctx context.Context, year int) ([]domain.Assignment, error)
	MarkNotified(ctx context.Context, santaID int64, year int) error
	FindByRecipient(ctx context.Context, recipientID int64, year int) (domain.Assignment, error)
}

// Notifier fans assignment and reveal messages out to participants.
// Delivery is best-effort: one failed send is logged and skipped, never
// aborting the rest of the batch, and the record stays unnotified so the
// next notify-all run retries it.
type Notifier struct {
	pairs        NotifyPairingRepository
	participants ParticipantRepository
	messenger    Messenger
	info         func() messages.GameInfo
	limiter      *rate.Limiter
}

func NewNotifier(pairs NotifyPairingRepository, participants ParticipantRepository, messenger Messenger, info func() messages.GameInfo) *Notifier {
	return &Notifier{
		pairs:        pairs,
		participants: participants,
		messenger:    messenger,
		info:         info,
		// One message every half second keeps us inside the chat API's
		// per-bot send limits.
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}
}

// NotifyAssignments delivers the post-draw message to every santa whose
// assignment has not been notified yet. A record is marked notified only
// after its send succeeded. Returns how many messages went out.
func (n *Notifier) NotifyAssignments(ctx context.Context, year int) (int, error) {
	pending, err := n.pairs.ListUnnotified(ctx, year)
	if err != nil {
		return 0, fmt.Errorf("n.pairs.ListUnnotified -> %w", err)
	}

	sent := 0
	for _, assignment := range pending {
		santa, err := n.participants.FindByUserID(ctx, assignment.SantaID)
		if err != nil {
			zap.L().Error("assignment notification skipped: santa lookup failed",
				zap.Int64("santa_id", assignment.SantaID),
				zap.Int("year", year),
				zap.Error(err),
			)
			continue
		}

		recipient, err := n.participants.FindByUserID(ctx, assignment.RecipientID)
		if err != nil {
			zap.L().Error("assignment notification skipped: recipient lookup failed",
				zap.Int64("recipient_id", assignment.RecipientID),
				zap.Int("year", year),
				zap.Error(err),
			)
			continue
		}

		text := messages.Assignment(santa.DisplayName, recipient.DisplayName, recipient.WishText, n.info())
		if err := n.send(ctx, assignment.SantaID, text); err != nil {
			zap.L().Error("assignment notification failed",
				zap.Int64("santa_id", assignment.SantaID),
				zap.Int("year", year),
				zap.Error(err),
			)
			continue
		}

		if err := n.pairs.MarkNotified(ctx, assignment.SantaID, year); err != nil {
			return sent, fmt.Errorf("n.pairs.MarkNotified -> %w", err)
		}

		sent++
	}

	return sent, nil
}

// NotifyReveals tells every participant with an assignment who their santa
// was. Used after a bulk reveal, scheduled or admin-forced.
func (n *Notifier) NotifyReveals(ctx context.Context, year int, byAdmin bool) (int, error) {
	active, err := n.participants.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("n.participants.ListActive -> %w", err)
	}

	sent := 0
	for _, p := range active {
		assignment, err := n.pairs.FindByRecipient(ctx, p.UserID, year)
		if err != nil {
			if errors.Is(err, repository.ErrPairNotFound) {
				continue
			}

			return sent, fmt.Errorf("n.pairs.FindByRecipient -> %w", err)
		}

		santa, err := n.participants.FindByUserID(ctx, assignment.SantaID)
		if err != nil {
			zap.L().Error("reveal notification skipped: santa lookup failed",
				zap.Int64("santa_id", assignment.SantaID),
				zap.Int("year", year),
				zap.Error(err),
			)
			continue
		}

		text := messages.ScheduledReveal(santa.DisplayName, n.info())
		if byAdmin {
			text = messages.AdminRevealAll(santa.DisplayName)
		}

		if err := n.send(ctx, p.UserID, text); err != nil {
			zap.L().Error("reveal notification failed",
				zap.Int64("recipient_id", p.UserID),
				zap.Int("year", year),
				zap.Error(err),
			)
			continue
		}

		sent++
	}

	return sent, nil
}

func (n *Notifier) send(ctx context.Context, userID int64, text string) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	return n.messenger.Send(sendCtx, userID, text)
}

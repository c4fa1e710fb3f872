// Package bot is the Telegram transport: it turns chat commands and inline
// keyboard callbacks into service calls and renders the replies. All game
// logic stays in the service layer.
package bot

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ittop-club/secret-santa-bot/internal/config"
	"github.com/ittop-club/secret-santa-bot/internal/domain"
)

type Registry interface {
	Register(ctx context.Context, p domain.Participant) (domain.Participant, error)
	Get(ctx context.Context, userID int64) (domain.Participant, error)
	GetByDisplayName(ctx context.Context, name string) (domain.Participant, error)
	ListActive(ctx context.Context) ([]domain.Participant, error)
	UpdateWish(ctx context.Context, userID int64, wishText string) error
	Stats(ctx context.Context, year int) (domain.Stats, error)
	AddTestParticipants(ctx context.Context) (int, error)
}

type Drawer interface {
	PerformDraw(ctx context.Context, year int) (int, error)
	ListPairs(ctx context.Context, year int) ([]domain.AssignmentPair, error)
	ClearPairs(ctx context.Context, year int) error
}

type Revealer interface {
	RevealOne(ctx context.Context, recipientID int64, year int, byAdmin bool) (string, bool, error)
	RevealAll(ctx context.Context, year int, byAdmin bool) (int, error)
	RevealedSanta(ctx context.Context, recipientID int64, year int) (string, error)
	IsRevealed(ctx context.Context, recipientID int64, year int) (bool, error)
}

type Dispatcher interface {
	NotifyAssignments(ctx context.Context, year int) (int, error)
	NotifyReveals(ctx context.Context, year int, byAdmin bool) (int, error)
}

// pendingInput is the per-chat conversational state: which free-text reply
// we are waiting for from that user.
type pendingInput int

const (
	pendingNone pendingInput = iota
	pendingName
	pendingWish
	pendingRevealTarget
)

type Bot struct {
	api        *tgbotapi.BotAPI
	registry   Registry
	draw       Drawer
	reveal     Revealer
	dispatcher Dispatcher
	game       func() config.GameConfig

	mu      sync.Mutex
	pending map[int64]pendingInput
}

func NewBot(token string, debug bool, registry Registry, draw Drawer, reveal Revealer, game func() config.GameConfig) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("tgbotapi.NewBotAPI -> %w", err)
	}

	api.Debug = debug

	return &Bot{
		api:      api,
		registry: registry,
		draw:     draw,
		reveal:   reveal,
		game:     game,
		pending:  make(map[int64]pendingInput),
	}, nil
}

// SetDispatcher injects the notifier after construction: the dispatcher
// sends through this bot, so the two cannot be built in one step.
func (b *Bot) SetDispatcher(d Dispatcher) {
	b.dispatcher = d
}

// Send implements service.Messenger. The client library has no context
// support, so cancellation is honored before the call goes out.
func (b *Bot) Send(ctx context.Context, userID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(userID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("b.api.Send -> %w", err)
	}

	return nil
}

// Run consumes long-poll updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 60

	updates := b.api.GetUpdatesChan(cfg)

	zap.L().Info("bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			zap.L().Info("bot stopped")

			return
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("update handler panicked", zap.Any("panic", r))
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || !msg.Chat.IsPrivate() {
		return
	}

	if msg.IsCommand() {
		b.setPending(msg.From.ID, pendingNone)
		b.handleCommand(ctx, msg)

		return
	}

	switch b.takePending(msg.From.ID) {
	case pendingName:
		b.handleNameInput(ctx, msg)
	case pendingWish:
		b.handleWishInput(ctx, msg)
	case pendingRevealTarget:
		b.handleRevealTargetInput(ctx, msg)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.cmdStart(ctx, msg)
	case "status":
		b.cmdStatus(ctx, msg)
	case "reveal":
		b.cmdReveal(ctx, msg)
	case "mywish":
		b.cmdMyWish(ctx, msg)
	case "addwish":
		b.cmdAddWish(ctx, msg)
	case "myid":
		b.reply(msg.Chat.ID, fmt.Sprintf("Your Telegram ID: <code>%d</code>", msg.From.ID))
	case "help":
		b.cmdHelp(msg)
	case "admin":
		b.cmdAdmin(ctx, msg)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// Always acknowledge so the client stops its spinner, even when the
	// handler below fails.
	defer func() {
		if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			zap.L().Warn("callback ack failed", zap.Error(err))
		}
	}()

	if cb.Message == nil || cb.From == nil {
		return
	}

	if handled := b.handleParticipantCallback(ctx, cb); handled {
		return
	}

	b.handleAdminCallback(ctx, cb)
}

func (b *Bot) setPending(userID int64, state pendingInput) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if state == pendingNone {
		delete(b.pending, userID)

		return
	}

	b.pending[userID] = state
}

func (b *Bot) takePending(userID int64) pendingInput {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := b.pending[userID]
	delete(b.pending, userID)

	return state
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		zap.L().Error("reply failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) replyWithKeyboard(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	if _, err := b.api.Send(msg); err != nil {
		zap.L().Error("reply failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

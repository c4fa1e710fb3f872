package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ittop-club/secret-santa-bot/internal/messages"
	"github.com/ittop-club/secret-santa-bot/internal/service"
)

func (b *Bot) cmdAdmin(ctx context.Context, msg *tgbotapi.Message) {
	if !b.game().IsAdmin(msg.From.ID) {
		return
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔮 Run the draw", "admin_draw"),
			tgbotapi.NewInlineKeyboardButtonData("📊 Stats", "admin_stats"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📨 Notify everyone", "admin_notify"),
			tgbotapi.NewInlineKeyboardButtonData("👁️ Reveal all", "admin_reveal_all"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👤 Reveal one", "admin_reveal_one"),
			tgbotapi.NewInlineKeyboardButtonData("🗃️ View storage", "admin_view_db"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧪 Test players", "admin_add_test"),
			tgbotapi.NewInlineKeyboardButtonData("🗑️ Clear pairs", "admin_clear_pairs"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎅 Created pairs", "admin_view_pairs"),
		),
	)
	b.replyWithKeyboard(msg.Chat.ID, "🛠️ <b>Admin panel</b>\n\nPick an action:", markup)
}

func (b *Bot) handleAdminCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if !strings.HasPrefix(cb.Data, "admin_") || !b.game().IsAdmin(cb.From.ID) {
		return
	}

	chatID := cb.Message.Chat.ID
	year := b.game().Year()

	switch cb.Data {
	case "admin_draw":
		b.adminDraw(ctx, chatID, year)
	case "admin_stats":
		b.adminStats(ctx, chatID, year)
	case "admin_notify":
		sent, err := b.dispatcher.NotifyAssignments(ctx, year)
		if err != nil {
			b.adminError(chatID, "notify", err)

			return
		}
		b.reply(chatID, fmt.Sprintf("✅ Notifications sent to %d players!", sent))
	case "admin_reveal_all":
		b.replyWithKeyboard(chatID,
			"⚠️ <b>Warning!</b>\n\nYou are about to reveal ALL Secret Santas early.\nAfter this, players will know who gifted them.\n\nConfirm the action:",
			confirmKeyboard("admin_confirm_reveal_all"))
	case "admin_confirm_reveal_all":
		b.adminRevealAll(ctx, chatID, year)
	case "admin_reveal_one":
		b.setPending(cb.From.ID, pendingRevealTarget)
		b.reply(chatID, "🔍 <b>Reveal the Santa of one player</b>\n\nEnter the user ID whose Santa should be revealed:")
	case "admin_view_db":
		b.adminViewDB(ctx, chatID, year)
	case "admin_add_test":
		added, err := b.registry.AddTestParticipants(ctx)
		if err != nil {
			b.adminError(chatID, "add test players", err)

			return
		}
		b.reply(chatID, fmt.Sprintf("✅ Added %d test players!\n\nNow use '🔮 Run the draw'", added))
	case "admin_clear_pairs":
		b.replyWithKeyboard(chatID,
			"⚠️ <b>Warning!</b>\n\nYou are about to clear ALL santa-recipient pairs.\nThis cannot be undone!\n\nConfirm:",
			confirmKeyboard("admin_confirm_clear_pairs"))
	case "admin_confirm_clear_pairs":
		if err := b.draw.ClearPairs(ctx, year); err != nil {
			b.adminError(chatID, "clear pairs", err)

			return
		}
		b.reply(chatID, "🗑️ Pairs cleared. The draw can be run again.")
	case "admin_view_pairs":
		b.adminViewPairs(ctx, chatID, year)
	case "admin_cancel":
		b.reply(chatID, "❌ Action cancelled.")
	}
}

func confirmKeyboard(confirmData string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Yes", confirmData),
			tgbotapi.NewInlineKeyboardButtonData("❌ No, cancel", "admin_cancel"),
		),
	)
}

func (b *Bot) adminDraw(ctx context.Context, chatID int64, year int) {
	n, err := b.draw.PerformDraw(ctx, year)
	switch {
	case errors.Is(err, service.ErrAlreadyDrawn):
		b.reply(chatID, "ℹ️ The draw for this year has already been performed.")

		return
	case errors.Is(err, service.ErrNotEnoughParticipants):
		b.reply(chatID, "❌ Not enough active players for a draw (need at least 2).")

		return
	case err != nil:
		b.adminError(chatID, "draw", err)

		return
	}

	b.reply(chatID, fmt.Sprintf("✅ Draw performed successfully! %d pairs created.", n))

	sent, err := b.dispatcher.NotifyAssignments(ctx, year)
	if err != nil {
		b.adminError(chatID, "notify", err)

		return
	}
	b.reply(chatID, fmt.Sprintf("📨 Notifications sent to %d players!", sent))
}

func (b *Bot) adminStats(ctx context.Context, chatID int64, year int) {
	stats, err := b.registry.Stats(ctx, year)
	if err != nil {
		b.adminError(chatID, "stats", err)

		return
	}

	players, err := b.registry.ListActive(ctx)
	if err != nil {
		b.adminError(chatID, "stats", err)

		return
	}

	var sb strings.Builder
	sb.WriteString("<b>📊 Game stats:</b>\n\n")
	fmt.Fprintf(&sb, "• <b>Total players:</b> %d\n", stats.TotalParticipants)
	fmt.Fprintf(&sb, "• <b>Pairs created:</b> %d\n", stats.TotalPairs)
	fmt.Fprintf(&sb, "• <b>Pairs revealed:</b> %d\n\n", stats.TotalRevealed)

	if len(players) == 0 {
		sb.WriteString("No registered players")
		b.reply(chatID, sb.String())

		return
	}

	sb.WriteString("<b>Players:</b>\n")
	for i, p := range players {
		handle := "no username"
		if p.Handle != "" {
			handle = "@" + p.Handle
		}
		wishMark := "❌"
		if p.WishText != "" {
			wishMark = "✅"
		}
		fmt.Fprintf(&sb, "%d. %s (%s) %s\n", i+1, messages.Escape(p.DisplayName), messages.Escape(handle), wishMark)
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) adminRevealAll(ctx context.Context, chatID int64, year int) {
	revealed, err := b.reveal.RevealAll(ctx, year, true)
	if err != nil {
		b.adminError(chatID, "reveal all", err)

		return
	}
	if revealed == 0 {
		b.reply(chatID, "❌ No pairs to reveal, or they are already revealed.")

		return
	}

	notified, err := b.dispatcher.NotifyReveals(ctx, year, true)
	if err != nil {
		b.adminError(chatID, "reveal notifications", err)

		return
	}

	b.reply(chatID, fmt.Sprintf("✅ Revealed %d pairs!\nNotified %d players.", revealed, notified))
}

func (b *Bot) adminViewDB(ctx context.Context, chatID int64, year int) {
	stats, err := b.registry.Stats(ctx, year)
	if err != nil {
		b.adminError(chatID, "view storage", err)

		return
	}

	var sb strings.Builder
	sb.WriteString("<b>📊 Storage:</b>\n\n")
	fmt.Fprintf(&sb, "• <b>participants:</b> %d records (%d active)\n", stats.TotalParticipants, stats.ActiveParticipants)
	fmt.Fprintf(&sb, "• <b>assignments:</b> %d records\n", stats.TotalPairs)
	fmt.Fprintf(&sb, "• <b>reveals:</b> %d records\n", stats.TotalRevealed)

	players, err := b.registry.ListActive(ctx)
	if err != nil {
		b.adminError(chatID, "view storage", err)

		return
	}

	if len(players) > 0 {
		sb.WriteString("\n<i>Latest players:</i>\n")
		for i, p := range players {
			if i == 5 {
				break
			}
			handle := "none"
			if p.Handle != "" {
				handle = "@" + p.Handle
			}
			wishMark := "❌"
			if p.WishText != "" {
				wishMark = "🎁"
			}
			fmt.Fprintf(&sb, "  - %s (%s) %s\n", messages.Escape(p.DisplayName), messages.Escape(handle), wishMark)
		}
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) adminViewPairs(ctx context.Context, chatID int64, year int) {
	pairs, err := b.draw.ListPairs(ctx, year)
	if err != nil {
		b.adminError(chatID, "view pairs", err)

		return
	}
	if len(pairs) == 0 {
		b.reply(chatID, "⚠️ No pairs created yet")

		return
	}

	var sb strings.Builder
	sb.WriteString("<b>🎅 Created pairs:</b>\n\n")
	for _, pair := range pairs {
		revealedMark := "❌"
		if pair.Revealed {
			revealedMark = "✅"
		}
		wishMark := "❌"
		if pair.RecipientWish != "" {
			wishMark = "🎁"
		}
		fmt.Fprintf(&sb, "• <b>%s</b> → <b>%s</b> %s %s\n",
			messages.Escape(pair.SantaName), messages.Escape(pair.RecipientName), revealedMark, wishMark)
		fmt.Fprintf(&sb, "  (ID: %d → %d)\n\n", pair.SantaID, pair.RecipientID)
	}
	fmt.Fprintf(&sb, "\n<b>Total pairs:</b> %d", len(pairs))
	b.reply(chatID, sb.String())
}

// handleRevealTargetInput finishes the "reveal one" admin flow: the reply is
// the recipient's user ID.
func (b *Bot) handleRevealTargetInput(ctx context.Context, msg *tgbotapi.Message) {
	if !b.game().IsAdmin(msg.From.ID) {
		return
	}

	year := b.game().Year()

	userID, err := strconv.ParseInt(strings.TrimSpace(msg.Text), 10, 64)
	if err != nil {
		b.reply(msg.Chat.ID, "❌ Invalid ID format. Enter a numeric ID.")

		return
	}

	recipient, err := b.registry.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrParticipantNotFound) {
			b.reply(msg.Chat.ID, fmt.Sprintf("❌ Player with ID %d not found.", userID))

			return
		}
		b.adminError(msg.Chat.ID, "reveal one", err)

		return
	}

	santaName, newly, err := b.reveal.RevealOne(ctx, userID, year, true)
	if err != nil {
		if errors.Is(err, service.ErrPairNotFound) {
			b.reply(msg.Chat.ID, fmt.Sprintf(
				"❌ Could not reveal the Santa for <b>%s</b>.\nThe pair may not exist.", messages.Escape(recipient.DisplayName)))

			return
		}
		b.adminError(msg.Chat.ID, "reveal one", err)

		return
	}

	if !newly {
		b.reply(msg.Chat.ID, fmt.Sprintf(
			"ℹ️ The pair for <b>%s</b> is already revealed.\nSanta: <b>%s</b>",
			messages.Escape(recipient.DisplayName), messages.Escape(santaName)))

		return
	}

	if err := b.Send(ctx, userID, messages.AdminReveal(santaName)); err != nil {
		zap.L().Error("recipient reveal notification failed", zap.Int64("recipient_id", userID), zap.Error(err))
	}

	santa, err := b.registry.GetByDisplayName(ctx, santaName)
	if err != nil {
		zap.L().Error("santa lookup failed", zap.String("santa_name", santaName), zap.Error(err))
	} else if err := b.Send(ctx, santa.UserID, messages.SantaExposed(recipient.DisplayName)); err != nil {
		zap.L().Error("santa exposed notification failed", zap.Int64("santa_id", santa.UserID), zap.Error(err))
	}

	b.reply(msg.Chat.ID, fmt.Sprintf(
		"✅ Santa for <b>%s</b> revealed!\nSanta: <b>%s</b>\n\nBoth players have been notified.",
		messages.Escape(recipient.DisplayName), messages.Escape(santaName)))
}

func (b *Bot) adminError(chatID int64, action string, err error) {
	zap.L().Error("admin action failed", zap.String("action", action), zap.Error(err))
	b.reply(chatID, fmt.Sprintf("❌ Error while handling the action: %s", messages.Escape(err.Error())))
}

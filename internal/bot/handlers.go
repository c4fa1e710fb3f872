package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ittop-club/secret-santa-bot/internal/domain"
	"github.com/ittop-club/secret-santa-bot/internal/messages"
	"github.com/ittop-club/secret-santa-bot/internal/service"
)

// nameRe accepts a first and last name in any alphabet, with optional
// hyphenated or apostrophed parts. Lookahead needs regexp2; stdlib RE2 has
// no way to express it.
var nameRe = regexp2.MustCompile(`^(?=.{3,60}$)\p{L}+(?:['-]\p{L}+)*(?:\s+\p{L}+(?:['-]\p{L}+)*)+$`, regexp2.None)

func validDisplayName(name string) bool {
	ok, err := nameRe.MatchString(name)
	if err != nil {
		return false
	}

	return ok
}

func (b *Bot) cmdStart(ctx context.Context, msg *tgbotapi.Message) {
	p, err := b.registry.Get(ctx, msg.From.ID)
	if err == nil {
		b.reply(msg.Chat.ID, welcomeBackText(p, msg.From.FirstName))

		return
	}
	if !errors.Is(err, service.ErrParticipantNotFound) {
		zap.L().Error("participant lookup failed", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		b.reply(msg.Chat.ID, "Something went wrong, please try again later.")

		return
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Read the game rules 📋", "rules"),
		),
	)
	b.replyWithKeyboard(msg.Chat.ID,
		fmt.Sprintf("Hi, %s! Welcome to the Secret Santa game 🎅🎄 Before we start, please read the rules!",
			messages.Escape(msg.From.FirstName)),
		markup)
}

func welcomeBackText(p domain.Participant, firstName string) string {
	handle := "not set"
	if p.Handle != "" {
		handle = "@" + p.Handle
	}

	wish := "not added yet"
	if p.WishText != "" {
		wish = messages.Escape(p.WishText)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎅 <b>Welcome back, %s!</b> 🎄\n\n", messages.Escape(firstName))
	b.WriteString("You are already registered.\n\n")
	b.WriteString("📋 <b>Your profile:</b>\n")
	fmt.Fprintf(&b, "• Name: <b>%s</b>\n", messages.Escape(p.DisplayName))
	fmt.Fprintf(&b, "• Username: %s\n", messages.Escape(handle))
	fmt.Fprintf(&b, "• ID: <code>%d</code>\n", p.UserID)
	fmt.Fprintf(&b, "• Registered: %s\n", p.RegisteredAt.Format("02.01.2006"))
	fmt.Fprintf(&b, "• Wish list: %s\n\n", wish)
	b.WriteString("Commands:\n")
	b.WriteString("/status — check your status\n")
	b.WriteString("/reveal — find out your Secret Santa (after the reveal date)\n")
	b.WriteString("/mywish — view or update your wish list\n")
	b.WriteString("/help — get help\n")
	b.WriteString("/myid — show your ID")

	return b.String()
}

// handleParticipantCallback covers the registration and wish-list buttons.
// It reports whether the callback was one of them.
func (b *Bot) handleParticipantCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) bool {
	chatID := cb.Message.Chat.ID

	switch cb.Data {
	case "rules":
		markup := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Yes ✅", "join"),
				tgbotapi.NewInlineKeyboardButtonData("No ❌", "decline"),
			),
		)
		b.replyWithKeyboard(chatID, messages.Rules(b.game().Info()), markup)
	case "join":
		b.setPending(cb.From.ID, pendingName)
		b.reply(chatID, "Great, let's begin! 🎅🎄\nPlease use your real name so other players can recognize you.\n\nEnter your first and last name:")
	case "decline":
		b.reply(chatID, "Sorry you're not ready. Come back any time! 🎅")
	case "add_wish", "update_wish":
		b.setPending(cb.From.ID, pendingWish)
		b.reply(chatID, wishPromptText())
	case "skip_wish":
		b.reply(chatID, fmt.Sprintf(
			"All right, your Santa will get creative! 🎅\n\n<b>Draw:</b> %s\n<b>Santa reveal:</b> %s\n\nYou can add a wish list later with /addwish",
			b.game().DrawDate.Time().Format("02.01.2006"),
			b.game().RevealDate.Time().Format("02.01.2006")))
	case "later_wish":
		b.reply(chatID, fmt.Sprintf(
			"All right! Add a wish list later with /addwish\n\n<b>Draw:</b> %s\n<b>Santa reveal:</b> %s\n\nOn draw day you'll learn who you're gifting!",
			b.game().DrawDate.Time().Format("02.01.2006"),
			b.game().RevealDate.Time().Format("02.01.2006")))
	case "cancel_wish":
		b.reply(chatID, "❌ Update cancelled.")
	default:
		return false
	}

	return true
}

func wishPromptText() string {
	return "🎁 <b>Write your gift wishes:</b>\n\n" +
		"• Favorite colors, hobbies\n" +
		"• Clothing size (if relevant)\n" +
		"• Things you dislike\n" +
		"• Gift ideas\n\n" +
		"The more detail, the better!"
}

func (b *Bot) handleNameInput(ctx context.Context, msg *tgbotapi.Message) {
	name := strings.TrimSpace(msg.Text)
	if !validDisplayName(name) {
		b.setPending(msg.From.ID, pendingName)
		b.reply(msg.Chat.ID, "Please enter a first and last name, letters only. For example: Ivan Ivanov")

		return
	}

	_, err := b.registry.Register(ctx, domain.Participant{
		UserID:       msg.From.ID,
		Handle:       msg.From.UserName,
		DisplayName:  name,
		PlatformName: msg.From.FirstName,
	})
	if err != nil {
		zap.L().Error("registration failed", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		b.reply(msg.Chat.ID, fmt.Sprintf("Thanks, %s! But the registration failed, please try again.", messages.Escape(name)))

		return
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Yes, add wishes", "add_wish")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("No, skip", "skip_wish")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Later, via command", "later_wish")),
	)
	b.replyWithKeyboard(msg.Chat.ID, fmt.Sprintf(
		"✅ <b>Great, %s! You're in the game!</b>\n\n"+
			"Want to add a wish list for your Secret Santa?\n"+
			"It helps them pick the perfect gift! 🎁\n\n"+
			"<i>You can also add it later with /addwish</i>",
		messages.Escape(name)), markup)
}

func (b *Bot) handleWishInput(ctx context.Context, msg *tgbotapi.Message) {
	if err := b.registry.UpdateWish(ctx, msg.From.ID, strings.TrimSpace(msg.Text)); err != nil {
		if errors.Is(err, service.ErrParticipantNotFound) {
			b.reply(msg.Chat.ID, "You are not registered yet. Start with /start")

			return
		}

		zap.L().Error("wish update failed", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		b.reply(msg.Chat.ID, "Could not save the wish list, please try again.")

		return
	}

	b.reply(msg.Chat.ID, fmt.Sprintf(
		"✅ <b>Wish list saved!</b>\n\nYour Santa will appreciate the hints! 🎁\n\nNow wait for the draw on %s!",
		b.game().DrawDate.Time().Format("02.01.2006")))
}

func (b *Bot) cmdStatus(ctx context.Context, msg *tgbotapi.Message) {
	p, err := b.registry.Get(ctx, msg.From.ID)
	if err != nil {
		if errors.Is(err, service.ErrParticipantNotFound) {
			b.reply(msg.Chat.ID, "You are not registered yet. Start with /start 🎅")

			return
		}

		zap.L().Error("participant lookup failed", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		b.reply(msg.Chat.ID, "Something went wrong, please try again later.")

		return
	}

	game := b.game()

	wishMark := "❌ not added (use /addwish)"
	if p.WishText != "" {
		wishMark = "✅ added"
	}

	var sb strings.Builder
	sb.WriteString("📋 <b>Your status:</b>\n\n")
	fmt.Fprintf(&sb, "• Name: <b>%s</b>\n", messages.Escape(p.DisplayName))
	fmt.Fprintf(&sb, "• Wish list: %s\n\n", wishMark)
	fmt.Fprintf(&sb, "📅 Draw: %s\n", game.DrawDate.Time().Format("02.01.2006"))
	fmt.Fprintf(&sb, "📅 Santa reveal: %s", game.RevealDate.Time().Format("02.01.2006"))
	b.reply(msg.Chat.ID, sb.String())
}

func (b *Bot) cmdReveal(ctx context.Context, msg *tgbotapi.Message) {
	game := b.game()

	santaName, err := b.reveal.RevealedSanta(ctx, msg.From.ID, game.Year())
	switch {
	case err == nil:
		b.reply(msg.Chat.ID, fmt.Sprintf(
			"🎉 Your Secret Santa was: <b>%s</b>\n\nThanks for playing! 🎁", messages.Escape(santaName)))
	case errors.Is(err, service.ErrNotYetRevealed):
		b.reply(msg.Chat.ID, fmt.Sprintf(
			"🤫 The secret is still safe! Santas are revealed on %s.",
			game.RevealDate.Time().Format("02.01.2006")))
	case errors.Is(err, service.ErrPairNotFound):
		b.reply(msg.Chat.ID, "No Santa has been assigned to you yet. Wait for the draw! 🎲")
	default:
		zap.L().Error("reveal lookup failed", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		b.reply(msg.Chat.ID, "Something went wrong, please try again later.")
	}
}

func (b *Bot) cmdMyWish(ctx context.Context, msg *tgbotapi.Message) {
	p, err := b.registry.Get(ctx, msg.From.ID)
	if err != nil {
		if errors.Is(err, service.ErrParticipantNotFound) {
			b.reply(msg.Chat.ID, "You are not registered yet. Start with /start 🎅")

			return
		}

		zap.L().Error("participant lookup failed", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		b.reply(msg.Chat.ID, "Something went wrong, please try again later.")

		return
	}

	text := "🎁 <b>Your wish list is empty.</b>\n\nWant to add one?"
	if p.WishText != "" {
		text = fmt.Sprintf("🎁 <b>Your wish list:</b>\n\n%s\n\nWant to update it?", messages.Escape(p.WishText))
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Update", "update_wish"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "cancel_wish"),
		),
	)
	b.replyWithKeyboard(msg.Chat.ID, text, markup)
}

func (b *Bot) cmdAddWish(ctx context.Context, msg *tgbotapi.Message) {
	if _, err := b.registry.Get(ctx, msg.From.ID); err != nil {
		if errors.Is(err, service.ErrParticipantNotFound) {
			b.reply(msg.Chat.ID, "You are not registered yet. Start with /start 🎅")

			return
		}

		zap.L().Error("participant lookup failed", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		b.reply(msg.Chat.ID, "Something went wrong, please try again later.")

		return
	}

	b.setPending(msg.From.ID, pendingWish)
	b.reply(msg.Chat.ID, wishPromptText())
}

func (b *Bot) cmdHelp(msg *tgbotapi.Message) {
	b.reply(msg.Chat.ID,
		"🎅 <b>Secret Santa commands:</b>\n\n"+
			"/start — register in the game\n"+
			"/status — check your status\n"+
			"/mywish — view or update your wish list\n"+
			"/addwish — add a wish list\n"+
			"/reveal — find out your Secret Santa (after the reveal date)\n"+
			"/myid — show your Telegram ID\n"+
			"/help — this message")
}

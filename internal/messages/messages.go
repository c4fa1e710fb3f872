// Package messages builds the user-facing texts the bot sends. All texts use
// Telegram HTML parse mode; anything user-controlled goes through Escape.
package messages

import (
	"fmt"
	"strings"
	"time"
)

// GameInfo carries the dates and gift rules the texts mention.
type GameInfo struct {
	DrawDate     time.Time
	RevealDate   time.Time
	GiftDeadline time.Time
	GiftBudget   string
}

// Escape neutralizes HTML metacharacters in user-provided strings.
func Escape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")

	return s
}

func formatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// Assignment is the post-draw message telling a santa who they give to.
func Assignment(santaName, recipientName, wishText string, info GameInfo) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🎅 Dear %s!\n\n", Escape(santaName))
	fmt.Fprintf(&b, "Your giftee is: <b>%s</b>\n\n", Escape(recipientName))

	if wishText != "" {
		b.WriteString("🎁 <b>Their wish list:</b>\n")
		fmt.Fprintf(&b, "%s\n\n", Escape(wishText))
	} else {
		b.WriteString("🎁 They left no wish list. Get creative!\n\n")
	}

	b.WriteString("Your mission now:\n")
	fmt.Fprintf(&b, "1. Come up with a creative gift (%s)\n", Escape(info.GiftBudget))
	b.WriteString("2. Find out what they like (friends may help)\n")
	fmt.Fprintf(&b, "3. Have the gift ready by %s\n", formatDate(info.GiftDeadline))
	b.WriteString("4. Stay anonymous!\n")
	fmt.Fprintf(&b, "5. Santas are revealed on %s\n\n", formatDate(info.RevealDate))
	b.WriteString("Good luck with the surprise! 🎁")

	return b.String()
}

// ScheduledReveal is sent to every recipient on the reveal date.
func ScheduledReveal(santaName string, info GameInfo) string {
	var b strings.Builder

	b.WriteString("🎉 <b>The secret is out!</b>\n\n")
	fmt.Fprintf(&b, "Today, %s, is Secret Santa reveal day!\n\n", formatDate(info.RevealDate))
	fmt.Fprintf(&b, "Your Secret Santa was: <b>%s</b>\n\n", Escape(santaName))
	b.WriteString("We hope you liked your gift. Thanks for playing! 🎁❤️")

	return b.String()
}

// AdminReveal is sent to a recipient when an admin forces their reveal early.
func AdminReveal(santaName string) string {
	var b strings.Builder

	b.WriteString("🎉 <b>Announcement from the organizer!</b>\n\n")
	b.WriteString("The secret has been revealed early!\n\n")
	fmt.Fprintf(&b, "Your Secret Santa was: <b>%s</b>\n\n", Escape(santaName))
	b.WriteString("We hope you liked your gift! 🎁")

	return b.String()
}

// AdminRevealAll is the broadcast used when an admin reveals everyone at once.
func AdminRevealAll(santaName string) string {
	var b strings.Builder

	b.WriteString("🎉 <b>Big announcement!</b>\n\n")
	b.WriteString("The organizer has revealed all Secret Santas!\n\n")
	fmt.Fprintf(&b, "Your Santa was: <b>%s</b>\n\n", Escape(santaName))
	b.WriteString("Thanks for playing! 🎁")

	return b.String()
}

// SantaExposed warns a santa that their recipient now knows who they are.
func SantaExposed(recipientName string) string {
	var b strings.Builder

	b.WriteString("🎅 <b>Heads up!</b>\n\n")
	b.WriteString("The organizer revealed your secret early!\n\n")
	fmt.Fprintf(&b, "Your giftee <b>%s</b> now knows you were their Santa.\n\n", Escape(recipientName))
	b.WriteString("Thanks for playing! 🎁")

	return b.String()
}

// Rules is the long-form game description shown before registration.
func Rules(info GameInfo) string {
	var b strings.Builder

	b.WriteString("🎄 The Secret Santa magic begins! 🎄\n")
	b.WriteString("You become the Secret Santa of one player and receive a gift from another. ")
	b.WriteString("Your mission: surprise your giftee while staying in the shadows until reveal day.\n\n")
	b.WriteString("📅 <b>Key dates:</b>\n")
	fmt.Fprintf(&b, "Draw: %s\n", formatDate(info.DrawDate))
	fmt.Fprintf(&b, "Santa reveal: %s\n", formatDate(info.RevealDate))
	fmt.Fprintf(&b, "Gift deadline: %s\n\n", formatDate(info.GiftDeadline))
	b.WriteString("🎁 <b>Gifting rules:</b>\n")
	fmt.Fprintf(&b, "Budget: %s. Creativity and attention beat price!\n", Escape(info.GiftBudget))
	b.WriteString("🤫 Anonymity is the whole magic: never tell who you are gifting.\n")
	b.WriteString("❌ No last-minute gifts, no hurtful jokes, no living creatures.\n\n")
	b.WriteString("Ready to start?")

	return b.String()
}

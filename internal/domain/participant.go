package domain

import "time"

// Participant is one registered player, identified by their Telegram account ID.
// Participants are never hard-deleted; leaving the game only flips Active off so
// that pairings from earlier years keep resolving.
type Participant struct {
	ID           uint      `json:"id"`
	UserID       int64     `json:"user_id"`
	Handle       string    `json:"handle"`
	DisplayName  string    `json:"display_name"`
	PlatformName string    `json:"platform_name"`
	WishText     string    `json:"wish_text"`
	RegisteredAt time.Time `json:"registered_at"`
	Active       bool      `json:"active"`
}

package domain

import "time"

// Reveal records that a recipient has been told who their santa was.
// At most one reveal exists per (recipient, year); it is never updated
// or deleted once written.
type Reveal struct {
	ID          uint      `json:"id"`
	SantaID     int64     `json:"santa_id"`
	RecipientID int64     `json:"recipient_id"`
	Year        int       `json:"year"`
	RevealedAt  time.Time `json:"revealed_at"`
	ByAdmin     bool      `json:"by_admin"`
}

// Stats are the counters shown on the admin panel.
type Stats struct {
	TotalParticipants  int64 `json:"total_participants"`
	ActiveParticipants int64 `json:"active_participants"`
	TotalPairs         int64 `json:"total_pairs"`
	TotalRevealed      int64 `json:"total_revealed"`
}

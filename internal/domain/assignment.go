package domain

import "time"

// Assignment maps one santa to the recipient they give to in a given year.
// The full assignment set for a year is a derangement over the active
// participants at draw time: every participant appears exactly once as santa
// and exactly once as recipient, and never as their own recipient.
type Assignment struct {
	ID          uint      `json:"id"`
	SantaID     int64     `json:"santa_id"`
	RecipientID int64     `json:"recipient_id"`
	Year        int       `json:"year"`
	Notified    bool      `json:"notified"`
	CreatedAt   time.Time `json:"created_at"`
}

// AssignmentPair is an assignment joined with both participants, used by the
// admin views and the notification dispatcher.
type AssignmentPair struct {
	SantaID       int64  `json:"santa_id"`
	RecipientID   int64  `json:"recipient_id"`
	SantaName     string `json:"santa_name"`
	RecipientName string `json:"recipient_name"`
	RecipientWish string `json:"recipient_wish"`
	Notified      bool   `json:"notified"`
	Revealed      bool   `json:"revealed"`
}

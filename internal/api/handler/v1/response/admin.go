package response

type DrawResponse struct {
	Year         int `json:"year"`
	PairsCreated int `json:"pairs_created"`
}

type NotifyResponse struct {
	Year int `json:"year"`
	Sent int `json:"sent"`
}

type RevealOneResponse struct {
	RecipientID   int64  `json:"recipient_id"`
	SantaName     string `json:"santa_name"`
	NewlyRevealed bool   `json:"newly_revealed"`
}

type RevealAllResponse struct {
	Year     int `json:"year"`
	Revealed int `json:"revealed"`
	Notified int `json:"notified"`
}

package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type RevealOneRequest struct {
	RecipientID int64 `json:"recipient_id"`
}

func (req *RevealOneRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.RecipientID, validation.Required, validation.Min(int64(1))),
	)
}

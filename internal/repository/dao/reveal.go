package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrAlreadyRevealed = errors.New("pair already revealed for this recipient")
)

type Reveal struct {
	ID uint `gorm:"primaryKey"`

	SantaID     int64     `gorm:"not null"`
	RecipientID int64     `gorm:"not null;uniqueIndex:idx_recipient_year"`
	Year        int       `gorm:"not null;uniqueIndex:idx_recipient_year"`
	RevealedAt  time.Time `gorm:"not null"`
	ByAdmin     bool      `gorm:"not null;default:false"`
}

type RevealDAO struct {
	db *gorm.DB
}

func NewRevealDAO(db *gorm.DB) *RevealDAO {
	return &RevealDAO{
		db: db,
	}
}

// Insert writes a reveal record. The unique index on (recipient, year) is the
// source of truth against concurrent reveal triggers: a duplicate insert from
// a racing admin action or scheduler run maps to ErrAlreadyRevealed rather
// than surfacing as a storage failure.
func (d *RevealDAO) Insert(ctx context.Context, r Reveal) (Reveal, error) {
	result := d.db.WithContext(ctx).Create(&r)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return Reveal{}, ErrAlreadyRevealed
		}

		return Reveal{}, result.Error
	}

	return r, nil
}

func (d *RevealDAO) Exists(ctx context.Context, recipientID int64, year int) (bool, error) {
	var count int64

	result := d.db.WithContext(ctx).
		Model(&Reveal{}).
		Where("recipient_id = ? AND year = ?", recipientID, year).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

func (d *RevealDAO) CountForYear(ctx context.Context, year int) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Reveal{}).Where("year = ?", year).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

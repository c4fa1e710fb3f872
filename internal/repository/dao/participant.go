package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrParticipantNotFound = errors.New("participant not found")
)

type Participant struct {
	ID uint `gorm:"primaryKey"`

	UserID       int64  `gorm:"uniqueIndex;not null"`
	Handle       string
	DisplayName  string `gorm:"not null"`
	PlatformName string
	WishText     string
	RegisteredAt time.Time `gorm:"not null"`
	Active       bool      `gorm:"not null;default:true"`
}

type ParticipantDAO struct {
	db *gorm.DB
}

func NewParticipantDAO(db *gorm.DB) *ParticipantDAO {
	return &ParticipantDAO{
		db: db,
	}
}

// Upsert inserts a participant or, when the Telegram user is already known,
// refreshes their profile and reactivates them. Wish text is preserved across
// re-registration unless a new one is supplied.
func (d *ParticipantDAO) Upsert(ctx context.Context, p Participant) (Participant, error) {
	assignments := map[string]interface{}{
		"handle":        p.Handle,
		"display_name":  p.DisplayName,
		"platform_name": p.PlatformName,
		"active":        true,
	}
	if p.WishText != "" {
		assignments["wish_text"] = p.WishText
	}

	result := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&p)
	if result.Error != nil {
		return Participant{}, result.Error
	}

	return d.FindByUserID(ctx, p.UserID)
}

func (d *ParticipantDAO) FindByUserID(ctx context.Context, userID int64) (Participant, error) {
	var p Participant

	result := d.db.WithContext(ctx).First(&p, "user_id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Participant{}, ErrParticipantNotFound
		}

		return Participant{}, result.Error
	}

	return p, nil
}

func (d *ParticipantDAO) FindByDisplayName(ctx context.Context, name string) (Participant, error) {
	var p Participant

	result := d.db.WithContext(ctx).First(&p, "display_name = ?", name)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Participant{}, ErrParticipantNotFound
		}

		return Participant{}, result.Error
	}

	return p, nil
}

func (d *ParticipantDAO) ListActive(ctx context.Context) ([]Participant, error) {
	var participants []Participant

	result := d.db.WithContext(ctx).Where("active = ?", true).Order("registered_at").Find(&participants)
	if result.Error != nil {
		return nil, result.Error
	}

	return participants, nil
}

func (d *ParticipantDAO) UpdateWishText(ctx context.Context, userID int64, wishText string) error {
	result := d.db.WithContext(ctx).
		Model(&Participant{}).
		Where("user_id = ?", userID).
		Update("wish_text", wishText)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrParticipantNotFound
	}

	return nil
}

func (d *ParticipantDAO) Deactivate(ctx context.Context, userID int64) error {
	result := d.db.WithContext(ctx).
		Model(&Participant{}).
		Where("user_id = ?", userID).
		Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrParticipantNotFound
	}

	return nil
}

func (d *ParticipantDAO) CountAll(ctx context.Context) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Participant{}).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

func (d *ParticipantDAO) CountActive(ctx context.Context) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Participant{}).Where("active = ?", true).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrSantaAlreadyAssigned = errors.New("santa already has an assignment for this year")
	ErrAssignmentNotFound   = errors.New("assignment not found")
)

type Assignment struct {
	ID uint `gorm:"primaryKey"`

	SantaID     int64 `gorm:"not null;uniqueIndex:idx_santa_year"`
	RecipientID int64 `gorm:"not null"`
	Year        int   `gorm:"not null;uniqueIndex:idx_santa_year"`
	Notified    bool  `gorm:"not null;default:false"`
	CreatedAt   time.Time
}

// PairRow is the joined admin view of an assignment: both display names, the
// recipient's wish text and whether the pair has been revealed.
type PairRow struct {
	SantaID       int64
	RecipientID   int64
	SantaName     string
	RecipientName string
	RecipientWish string
	Notified      bool
	Revealed      bool
}

type AssignmentDAO struct {
	db *gorm.DB
}

func NewAssignmentDAO(db *gorm.DB) *AssignmentDAO {
	return &AssignmentDAO{
		db: db,
	}
}

// InsertBatch writes a complete assignment set in one transaction. Either
// every row is persisted or none are; a unique violation on (santa, year)
// aborts the whole batch and surfaces as ErrSantaAlreadyAssigned.
func (d *AssignmentDAO) InsertBatch(ctx context.Context, assignments []Assignment) error {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range assignments {
			if result := tx.Create(&assignments[i]); result.Error != nil {
				return result.Error
			}
		}

		return nil
	})
	if err != nil {
		if isDuplicateKey(err) {
			return ErrSantaAlreadyAssigned
		}

		return err
	}

	return nil
}

func (d *AssignmentDAO) CountForYear(ctx context.Context, year int) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Assignment{}).Where("year = ?", year).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

func (d *AssignmentDAO) FindBySanta(ctx context.Context, santaID int64, year int) (Assignment, error) {
	var a Assignment

	result := d.db.WithContext(ctx).First(&a, "santa_id = ? AND year = ?", santaID, year)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Assignment{}, ErrAssignmentNotFound
		}

		return Assignment{}, result.Error
	}

	return a, nil
}

func (d *AssignmentDAO) FindByRecipient(ctx context.Context, recipientID int64, year int) (Assignment, error) {
	var a Assignment

	result := d.db.WithContext(ctx).First(&a, "recipient_id = ? AND year = ?", recipientID, year)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Assignment{}, ErrAssignmentNotFound
		}

		return Assignment{}, result.Error
	}

	return a, nil
}

func (d *AssignmentDAO) ListForYear(ctx context.Context, year int) ([]Assignment, error) {
	var assignments []Assignment

	result := d.db.WithContext(ctx).Where("year = ?", year).Order("id").Find(&assignments)
	if result.Error != nil {
		return nil, result.Error
	}

	return assignments, nil
}

func (d *AssignmentDAO) ListUnnotified(ctx context.Context, year int) ([]Assignment, error) {
	var assignments []Assignment

	result := d.db.WithContext(ctx).
		Where("year = ? AND notified = ?", year, false).
		Order("id").
		Find(&assignments)
	if result.Error != nil {
		return nil, result.Error
	}

	return assignments, nil
}

// ListUnrevealed returns the assignments for a year that have no matching
// reveal record yet (the anti-join the bulk reveal is built on).
func (d *AssignmentDAO) ListUnrevealed(ctx context.Context, year int) ([]Assignment, error) {
	var assignments []Assignment

	result := d.db.WithContext(ctx).
		Where("year = ?", year).
		Where("NOT EXISTS (SELECT 1 FROM reveals r WHERE r.recipient_id = assignments.recipient_id AND r.year = assignments.year)").
		Order("id").
		Find(&assignments)
	if result.Error != nil {
		return nil, result.Error
	}

	return assignments, nil
}

func (d *AssignmentDAO) MarkNotified(ctx context.Context, santaID int64, year int) error {
	result := d.db.WithContext(ctx).
		Model(&Assignment{}).
		Where("santa_id = ? AND year = ?", santaID, year).
		Update("notified", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAssignmentNotFound
	}

	return nil
}

func (d *AssignmentDAO) ListPairsForYear(ctx context.Context, year int) ([]PairRow, error) {
	var rows []PairRow

	result := d.db.WithContext(ctx).
		Table("assignments").
		Select(`assignments.santa_id,
			assignments.recipient_id,
			santa.display_name AS santa_name,
			recipient.display_name AS recipient_name,
			recipient.wish_text AS recipient_wish,
			assignments.notified,
			CASE WHEN reveals.id IS NOT NULL THEN true ELSE false END AS revealed`).
		Joins("JOIN participants santa ON santa.user_id = assignments.santa_id").
		Joins("JOIN participants recipient ON recipient.user_id = assignments.recipient_id").
		Joins("LEFT JOIN reveals ON reveals.recipient_id = assignments.recipient_id AND reveals.year = assignments.year").
		Where("assignments.year = ?", year).
		Order("assignments.id").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}

// DeleteYear removes every assignment and reveal for a year in one
// transaction. Admin-only escape hatch for re-running a draw.
func (d *AssignmentDAO) DeleteYear(ctx context.Context, year int) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if result := tx.Where("year = ?", year).Delete(&Assignment{}); result.Error != nil {
			return result.Error
		}
		if result := tx.Where("year = ?", year).Delete(&Reveal{}); result.Error != nil {
			return result.Error
		}

		return nil
	})
}

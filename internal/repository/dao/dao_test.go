package dao

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB gives each test its own file-backed SQLite database with the
// schema migrated, exercising the same dialector the local deployment runs on.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, InitTables(db))

	return db
}

func testParticipant(userID int64, name string) Participant {
	return Participant{
		UserID:       userID,
		DisplayName:  name,
		RegisteredAt: time.Now(),
		Active:       true,
	}
}

func TestParticipantDAO(t *testing.T) {
	ctx := context.Background()

	t.Run("upsert inserts and refreshes", func(t *testing.T) {
		d := NewParticipantDAO(openTestDB(t))

		created, err := d.Upsert(ctx, testParticipant(1, "Anna Frost"))
		require.NoError(t, err)
		assert.Equal(t, "Anna Frost", created.DisplayName)

		p := testParticipant(1, "Anna F.")
		p.Handle = "anna"
		updated, err := d.Upsert(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID, "same row, not a duplicate")
		assert.Equal(t, "Anna F.", updated.DisplayName)
		assert.Equal(t, "anna", updated.Handle)

		count, err := d.CountAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("upsert keeps the wish unless a new one comes in", func(t *testing.T) {
		d := NewParticipantDAO(openTestDB(t))

		_, err := d.Upsert(ctx, testParticipant(1, "Anna Frost"))
		require.NoError(t, err)
		require.NoError(t, d.UpdateWishText(ctx, 1, "warm socks"))

		kept, err := d.Upsert(ctx, testParticipant(1, "Anna Frost"))
		require.NoError(t, err)
		assert.Equal(t, "warm socks", kept.WishText)

		p := testParticipant(1, "Anna Frost")
		p.WishText = "a book"
		replaced, err := d.Upsert(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, "a book", replaced.WishText)
	})

	t.Run("upsert reactivates a deactivated participant", func(t *testing.T) {
		d := NewParticipantDAO(openTestDB(t))

		_, err := d.Upsert(ctx, testParticipant(1, "Anna Frost"))
		require.NoError(t, err)
		require.NoError(t, d.Deactivate(ctx, 1))

		active, err := d.CountActive(ctx)
		require.NoError(t, err)
		assert.Zero(t, active)

		back, err := d.Upsert(ctx, testParticipant(1, "Anna Frost"))
		require.NoError(t, err)
		assert.True(t, back.Active)
	})

	t.Run("lookups and sentinels", func(t *testing.T) {
		d := NewParticipantDAO(openTestDB(t))

		_, err := d.FindByUserID(ctx, 404)
		assert.ErrorIs(t, err, ErrParticipantNotFound)

		_, err = d.FindByDisplayName(ctx, "Nobody")
		assert.ErrorIs(t, err, ErrParticipantNotFound)

		err = d.UpdateWishText(ctx, 404, "anything")
		assert.ErrorIs(t, err, ErrParticipantNotFound)

		err = d.Deactivate(ctx, 404)
		assert.ErrorIs(t, err, ErrParticipantNotFound)
	})

	t.Run("list active preserves registration order", func(t *testing.T) {
		d := NewParticipantDAO(openTestDB(t))

		base := time.Now()
		for i, name := range []string{"First Player", "Second Player", "Third Player"} {
			p := testParticipant(int64(i+1), name)
			p.RegisteredAt = base.Add(time.Duration(i) * time.Minute)
			_, err := d.Upsert(ctx, p)
			require.NoError(t, err)
		}
		require.NoError(t, d.Deactivate(ctx, 2))

		active, err := d.ListActive(ctx)
		require.NoError(t, err)
		require.Len(t, active, 2)
		assert.Equal(t, "First Player", active[0].DisplayName)
		assert.Equal(t, "Third Player", active[1].DisplayName)
	})
}

func seedRoster(t *testing.T, db *gorm.DB, n int) {
	t.Helper()

	d := NewParticipantDAO(db)
	names := []string{"Anna Frost", "Boris Snow", "Clara Pine", "Dmitry Birch", "Elena Holly"}
	for i := 0; i < n; i++ {
		_, err := d.Upsert(context.Background(), testParticipant(int64(i+1), names[i%len(names)]))
		require.NoError(t, err)
	}
}

func TestAssignmentDAO(t *testing.T) {
	ctx := context.Background()

	t.Run("insert batch is atomic on unique violation", func(t *testing.T) {
		db := openTestDB(t)
		d := NewAssignmentDAO(db)

		err := d.InsertBatch(ctx, []Assignment{{SantaID: 1, RecipientID: 2, Year: 2025}})
		require.NoError(t, err)

		err = d.InsertBatch(ctx, []Assignment{
			{SantaID: 2, RecipientID: 3, Year: 2025},
			{SantaID: 1, RecipientID: 3, Year: 2025}, // duplicate santa+year
		})
		assert.ErrorIs(t, err, ErrSantaAlreadyAssigned)

		count, err := d.CountForYear(ctx, 2025)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count, "the failed batch must roll back completely")
	})

	t.Run("same santa in different years is allowed", func(t *testing.T) {
		d := NewAssignmentDAO(openTestDB(t))

		require.NoError(t, d.InsertBatch(ctx, []Assignment{{SantaID: 1, RecipientID: 2, Year: 2024}}))
		require.NoError(t, d.InsertBatch(ctx, []Assignment{{SantaID: 1, RecipientID: 3, Year: 2025}}))
	})

	t.Run("find by santa and by recipient", func(t *testing.T) {
		d := NewAssignmentDAO(openTestDB(t))

		require.NoError(t, d.InsertBatch(ctx, []Assignment{{SantaID: 1, RecipientID: 2, Year: 2025}}))

		bySanta, err := d.FindBySanta(ctx, 1, 2025)
		require.NoError(t, err)
		assert.Equal(t, int64(2), bySanta.RecipientID)

		byRecipient, err := d.FindByRecipient(ctx, 2, 2025)
		require.NoError(t, err)
		assert.Equal(t, int64(1), byRecipient.SantaID)

		_, err = d.FindBySanta(ctx, 1, 2024)
		assert.ErrorIs(t, err, ErrAssignmentNotFound)
	})

	t.Run("mark notified and list unnotified", func(t *testing.T) {
		d := NewAssignmentDAO(openTestDB(t))

		require.NoError(t, d.InsertBatch(ctx, []Assignment{
			{SantaID: 1, RecipientID: 2, Year: 2025},
			{SantaID: 2, RecipientID: 1, Year: 2025},
		}))

		require.NoError(t, d.MarkNotified(ctx, 1, 2025))

		pending, err := d.ListUnnotified(ctx, 2025)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, int64(2), pending[0].SantaID)

		err = d.MarkNotified(ctx, 404, 2025)
		assert.ErrorIs(t, err, ErrAssignmentNotFound)
	})

	t.Run("list unrevealed anti-join", func(t *testing.T) {
		db := openTestDB(t)
		assignments := NewAssignmentDAO(db)
		reveals := NewRevealDAO(db)

		require.NoError(t, assignments.InsertBatch(ctx, []Assignment{
			{SantaID: 1, RecipientID: 2, Year: 2025},
			{SantaID: 2, RecipientID: 3, Year: 2025},
			{SantaID: 3, RecipientID: 1, Year: 2025},
		}))

		_, err := reveals.Insert(ctx, Reveal{SantaID: 1, RecipientID: 2, Year: 2025, RevealedAt: time.Now()})
		require.NoError(t, err)

		pending, err := assignments.ListUnrevealed(ctx, 2025)
		require.NoError(t, err)
		require.Len(t, pending, 2)
		for _, a := range pending {
			assert.NotEqual(t, int64(2), a.RecipientID, "revealed recipient must be filtered out")
		}
	})

	t.Run("joined pair view", func(t *testing.T) {
		db := openTestDB(t)
		seedRoster(t, db, 3)
		assignments := NewAssignmentDAO(db)
		reveals := NewRevealDAO(db)

		participantDAO := NewParticipantDAO(db)
		require.NoError(t, participantDAO.UpdateWishText(ctx, 3, "a sketchbook"))

		require.NoError(t, assignments.InsertBatch(ctx, []Assignment{
			{SantaID: 1, RecipientID: 2, Year: 2025},
			{SantaID: 2, RecipientID: 3, Year: 2025},
			{SantaID: 3, RecipientID: 1, Year: 2025},
		}))
		_, err := reveals.Insert(ctx, Reveal{SantaID: 2, RecipientID: 3, Year: 2025, RevealedAt: time.Now()})
		require.NoError(t, err)

		rows, err := assignments.ListPairsForYear(ctx, 2025)
		require.NoError(t, err)
		require.Len(t, rows, 3)

		assert.Equal(t, "Anna Frost", rows[0].SantaName)
		assert.Equal(t, "Boris Snow", rows[0].RecipientName)
		assert.False(t, rows[0].Revealed)

		assert.Equal(t, "Clara Pine", rows[1].RecipientName)
		assert.Equal(t, "a sketchbook", rows[1].RecipientWish)
		assert.True(t, rows[1].Revealed)
	})

	t.Run("delete year removes assignments and reveals", func(t *testing.T) {
		db := openTestDB(t)
		assignments := NewAssignmentDAO(db)
		reveals := NewRevealDAO(db)

		require.NoError(t, assignments.InsertBatch(ctx, []Assignment{
			{SantaID: 1, RecipientID: 2, Year: 2025},
			{SantaID: 5, RecipientID: 6, Year: 2024},
		}))
		_, err := reveals.Insert(ctx, Reveal{SantaID: 1, RecipientID: 2, Year: 2025, RevealedAt: time.Now()})
		require.NoError(t, err)

		require.NoError(t, assignments.DeleteYear(ctx, 2025))

		count, err := assignments.CountForYear(ctx, 2025)
		require.NoError(t, err)
		assert.Zero(t, count)

		revealCount, err := reveals.CountForYear(ctx, 2025)
		require.NoError(t, err)
		assert.Zero(t, revealCount)

		// The other year is untouched.
		kept, err := assignments.CountForYear(ctx, 2024)
		require.NoError(t, err)
		assert.Equal(t, int64(1), kept)
	})
}

func TestRevealDAO(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate reveal maps to the sentinel", func(t *testing.T) {
		d := NewRevealDAO(openTestDB(t))

		_, err := d.Insert(ctx, Reveal{SantaID: 1, RecipientID: 2, Year: 2025, RevealedAt: time.Now()})
		require.NoError(t, err)

		_, err = d.Insert(ctx, Reveal{SantaID: 3, RecipientID: 2, Year: 2025, RevealedAt: time.Now()})
		assert.ErrorIs(t, err, ErrAlreadyRevealed)

		count, err := d.CountForYear(ctx, 2025)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("same recipient in another year", func(t *testing.T) {
		d := NewRevealDAO(openTestDB(t))

		_, err := d.Insert(ctx, Reveal{SantaID: 1, RecipientID: 2, Year: 2024, RevealedAt: time.Now()})
		require.NoError(t, err)

		_, err = d.Insert(ctx, Reveal{SantaID: 3, RecipientID: 2, Year: 2025, RevealedAt: time.Now()})
		require.NoError(t, err)
	})

	t.Run("exists", func(t *testing.T) {
		d := NewRevealDAO(openTestDB(t))

		found, err := d.Exists(ctx, 2, 2025)
		require.NoError(t, err)
		assert.False(t, found)

		_, err = d.Insert(ctx, Reveal{SantaID: 1, RecipientID: 2, Year: 2025, RevealedAt: time.Now()})
		require.NoError(t, err)

		found, err = d.Exists(ctx, 2, 2025)
		require.NoError(t, err)
		assert.True(t, found)
	})
}

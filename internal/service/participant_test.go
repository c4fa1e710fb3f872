package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ittop-club/secret-santa-bot/internal/domain"
)

func registryFixture() (*fakeParticipants, *fakePairings, *fakeReveals, *RegistryService) {
	participants := newFakeParticipants()
	reveals := newFakeReveals()
	pairings := newFakePairings(reveals, participants)

	return participants, pairings, reveals, NewRegistryService(participants, pairings, reveals)
}

func TestRegistryService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("registers a new participant", func(t *testing.T) {
		_, _, _, svc := registryFixture()

		p, err := svc.Register(ctx, domain.Participant{
			UserID:      10,
			Handle:      "anna",
			DisplayName: "Anna Frost",
		})
		require.NoError(t, err)
		assert.True(t, p.Active)

		found, err := svc.Get(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, "Anna Frost", found.DisplayName)
	})

	t.Run("re-registration updates the profile, keeps the wish", func(t *testing.T) {
		_, _, _, svc := registryFixture()

		_, err := svc.Register(ctx, domain.Participant{UserID: 10, DisplayName: "Anna Frost"})
		require.NoError(t, err)
		require.NoError(t, svc.UpdateWish(ctx, 10, "warm socks"))

		p, err := svc.Register(ctx, domain.Participant{UserID: 10, DisplayName: "Anna F."})
		require.NoError(t, err)
		assert.Equal(t, "Anna F.", p.DisplayName)
		assert.Equal(t, "warm socks", p.WishText, "re-registering must not wipe the wish list")
	})

	t.Run("re-registration reactivates after leaving", func(t *testing.T) {
		_, _, _, svc := registryFixture()

		_, err := svc.Register(ctx, domain.Participant{UserID: 10, DisplayName: "Anna Frost"})
		require.NoError(t, err)
		require.NoError(t, svc.Leave(ctx, 10))

		p, err := svc.Register(ctx, domain.Participant{UserID: 10, DisplayName: "Anna Frost"})
		require.NoError(t, err)
		assert.True(t, p.Active)
	})
}

func TestRegistryService_Lookups(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown user", func(t *testing.T) {
		_, _, _, svc := registryFixture()

		_, err := svc.Get(ctx, 404)
		assert.ErrorIs(t, err, ErrParticipantNotFound)
	})

	t.Run("lookup by display name", func(t *testing.T) {
		_, _, _, svc := registryFixture()

		_, err := svc.Register(ctx, domain.Participant{UserID: 10, DisplayName: "Anna Frost"})
		require.NoError(t, err)

		p, err := svc.GetByDisplayName(ctx, "Anna Frost")
		require.NoError(t, err)
		assert.Equal(t, int64(10), p.UserID)
	})

	t.Run("wish update for unknown user", func(t *testing.T) {
		_, _, _, svc := registryFixture()

		err := svc.UpdateWish(ctx, 404, "anything")
		assert.ErrorIs(t, err, ErrParticipantNotFound)
	})
}

func TestRegistryService_Stats(t *testing.T) {
	ctx := context.Background()

	participants, pairings, reveals, svc := registryFixture()

	for _, p := range seedParticipants(4) {
		_, err := svc.Register(ctx, p)
		require.NoError(t, err)
	}
	require.NoError(t, participants.Deactivate(ctx, 103))

	err := pairings.CreateBatch(ctx, []domain.Assignment{
		{SantaID: 100, RecipientID: 101, Year: 2025},
		{SantaID: 101, RecipientID: 100, Year: 2025},
	})
	require.NoError(t, err)

	_, err = reveals.Create(ctx, domain.Reveal{SantaID: 100, RecipientID: 101, Year: 2025})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{
		TotalParticipants:  4,
		ActiveParticipants: 3,
		TotalPairs:         2,
		TotalRevealed:      1,
	}, stats)
}

func TestRegistryService_AddTestParticipants(t *testing.T) {
	ctx := context.Background()

	_, _, _, svc := registryFixture()

	added, err := svc.AddTestParticipants(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, added)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 5)

	// Seeding twice must not duplicate anyone.
	added, err = svc.AddTestParticipants(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, added)

	active, err = svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 5)
}

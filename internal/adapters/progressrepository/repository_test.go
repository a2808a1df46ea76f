package progressrepository_test

import (
	"context"
	"testing"

	"github.com/anki0476/rigveda-explorer/internal/domain"
	"github.com/anki0476/rigveda-explorer/internal/domaintest"
	"github.com/stretchr/testify/require"
)

type repository interface {
	LoadProgress(ctx context.Context, playerID string) (domain.ProgressRecord, error)
	SaveProgress(ctx context.Context, playerID string, record domain.ProgressRecord) error
	DeleteProgress(ctx context.Context, playerID string) error
}

// runRepositoryTests checks the behaviour shared by every backend
func runRepositoryTests(t *testing.T, newRepo func(t *testing.T) repository) {
	t.Helper()

	t.Run("missing record", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t)
		_, err := repo.LoadProgress(t.Context(), domaintest.NewUUID(t))
		require.ErrorIs(t, err, domain.ErrProgressNotFound)
	})

	t.Run("save then load", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		repo := newRepo(t)
		playerID := domaintest.NewUUID(t)

		record := domaintest.NewProgressBuilder().
			WithLevel(3).
			WithXP(42).
			WithDeities("agni", "indra").
			WithAchievements("first_offering").
			WithStoryPath("indra-battle", "soma-pressing").
			Build()

		require.NoError(t, repo.SaveProgress(ctx, playerID, record))

		loaded, err := repo.LoadProgress(ctx, playerID)
		require.NoError(t, err)
		require.Equal(t, record, loaded)
	})

	t.Run("save overwrites", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		repo := newRepo(t)
		playerID := domaintest.NewUUID(t)

		require.NoError(t, repo.SaveProgress(ctx, playerID, domaintest.NewProgressBuilder().WithXP(10).Build()))
		updated := domaintest.NewProgressBuilder().WithXP(20).WithBadges("quiz").Build()
		require.NoError(t, repo.SaveProgress(ctx, playerID, updated))

		loaded, err := repo.LoadProgress(ctx, playerID)
		require.NoError(t, err)
		require.Equal(t, updated, loaded)
	})

	t.Run("players are isolated", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		repo := newRepo(t)
		first := domaintest.NewUUID(t)
		second := domaintest.NewUUID(t)

		require.NoError(t, repo.SaveProgress(ctx, first, domaintest.NewProgressBuilder().WithDeities("soma").Build()))

		_, err := repo.LoadProgress(ctx, second)
		require.ErrorIs(t, err, domain.ErrProgressNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		ctx := t.Context()
		repo := newRepo(t)
		playerID := domaintest.NewUUID(t)

		require.NoError(t, repo.SaveProgress(ctx, playerID, domain.NewProgressRecord()))
		require.NoError(t, repo.DeleteProgress(ctx, playerID))

		_, err := repo.LoadProgress(ctx, playerID)
		require.ErrorIs(t, err, domain.ErrProgressNotFound)

		// Deleting a missing record is fine
		require.NoError(t, repo.DeleteProgress(ctx, playerID))
	})
}

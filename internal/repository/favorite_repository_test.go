package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	favoriteDomain "github.com/stayloop/service-booking/internal/domain/favorite"
)

func TestFavoriteRepository_AddListRemove(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormFavoriteRepository(db)
	ctx := context.Background()
	base := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)

	for i, pid := range []int64{10, 11, 12} {
		added, err := repo.Add(ctx, favoriteDomain.Reconstruct(int64(i+1), 7, pid, base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
		assert.True(t, added)
	}
	added, err := repo.Add(ctx, favoriteDomain.Reconstruct(4, 8, 10, base))
	require.NoError(t, err)
	assert.True(t, added, "another traveler may save the same property")

	added, err = repo.Add(ctx, favoriteDomain.Reconstruct(5, 7, 11, base))
	require.NoError(t, err)
	assert.False(t, added, "duplicate pair is ignored")

	favs, err := repo.ListByTraveler(ctx, 7)
	require.NoError(t, err)
	require.Len(t, favs, 3)
	assert.Equal(t, []int64{12, 11, 10}, []int64{favs[0].PropertyID(), favs[1].PropertyID(), favs[2].PropertyID()})

	removed, err := repo.Remove(ctx, 7, 11)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.Remove(ctx, 7, 11)
	require.NoError(t, err)
	assert.False(t, removed)

	favs, err = repo.ListByTraveler(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, favs, 2)

	other, err := repo.ListByTraveler(ctx, 8)
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

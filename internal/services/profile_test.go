package services

import (
	"context"
	"testing"

	"photo-exchange-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileService(t *testing.T) {
	ctx := context.Background()

	t.Run("hydrate loads fields and photos", func(t *testing.T) {
		store := newMemStore()
		store.photos = []string{"A", "B"}
		store.fields[models.FieldLookingFor] = "someone kind"

		p := NewProfileService(store)
		require.NoError(t, p.Hydrate(ctx))

		snap := p.Snapshot()
		assert.Equal(t, []string{"A", "B"}, snap.Photos)
		assert.Equal(t, "someone kind", snap.LookingFor)
		assert.Equal(t, 2, p.PhotoCount())
	})

	t.Run("snapshot is a copy", func(t *testing.T) {
		store := newMemStore()
		store.photos = []string{"A"}
		p := NewProfileService(store)
		require.NoError(t, p.Hydrate(ctx))

		snap := p.Snapshot()
		snap.Photos[0] = "changed"
		assert.Equal(t, []string{"A"}, p.Photos())
	})

	t.Run("add photo deduplicates", func(t *testing.T) {
		store := newMemStore()
		p := NewProfileService(store)

		assert.True(t, p.AddPhoto(ctx, "A"))
		assert.False(t, p.AddPhoto(ctx, "A"))
		assert.Equal(t, []string{"A"}, p.Photos())
		assert.Equal(t, []string{"A"}, store.photos)
	})

	t.Run("store failure keeps memory authoritative", func(t *testing.T) {
		store := newMemStore()
		store.fail = true
		p := NewProfileService(store)

		assert.True(t, p.AddPhoto(ctx, "A"))
		require.NoError(t, p.SetField(ctx, models.FieldAbout, "hello"))

		assert.Equal(t, []string{"A"}, p.Photos())
		assert.Equal(t, "hello", p.Field(models.FieldAbout))
		assert.Empty(t, store.photos)
	})

	t.Run("unknown field", func(t *testing.T) {
		p := NewProfileService(newMemStore())
		assert.Error(t, p.SetField(ctx, models.OwnerField("age"), "30"))
		assert.Error(t, p.ClearField(ctx, models.OwnerField("age")))
	})

	t.Run("round trip through a reload", func(t *testing.T) {
		store := newMemStore()
		p := NewProfileService(store)
		require.NoError(t, p.SetField(ctx, models.FieldInterests, "chess"))
		p.AddPhoto(ctx, "A")

		reloaded := NewProfileService(store)
		require.NoError(t, reloaded.Hydrate(ctx))
		assert.Equal(t, p.Snapshot(), reloaded.Snapshot())
	})
}

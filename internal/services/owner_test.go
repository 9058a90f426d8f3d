package services

import (
	"context"
	"testing"

	"photo-exchange-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOwnerFixture(t *testing.T, photos ...string) (*OwnerService, *ProfileService, *memStore, *recordingMessenger) {
	t.Helper()
	store := newMemStore()
	store.photos = photos
	profile := NewProfileService(store)
	require.NoError(t, profile.Hydrate(context.Background()))
	m := newRecordingMessenger()
	return NewOwnerService(profile, m, 10), profile, store, m
}

func ownerSays(t *testing.T, s *OwnerService, in Inbound) {
	t.Helper()
	in.SenderID, in.ChatID = ownerChat, ownerChat
	require.NoError(t, s.Handle(context.Background(), in))
}

func TestOwnerClearPhotos(t *testing.T) {
	ctx := context.Background()

	t.Run("yes empties memory and store", func(t *testing.T) {
		svc, profile, store, _ := newOwnerFixture(t, "A", "B")

		ownerSays(t, svc, Inbound{Text: LabelOwnerClearPhotos})
		assert.Equal(t, models.OwnerConfirmClearPhotos, svc.State())
		ownerSays(t, svc, Inbound{Text: LabelYes})

		assert.Equal(t, models.OwnerIdle, svc.State())
		assert.Empty(t, profile.Photos())
		stored, err := store.ListOwnerPhotos(ctx)
		require.NoError(t, err)
		assert.Empty(t, stored)
	})

	t.Run("no leaves both unchanged", func(t *testing.T) {
		svc, profile, store, m := newOwnerFixture(t, "A", "B")

		ownerSays(t, svc, Inbound{Text: LabelOwnerClearPhotos})
		ownerSays(t, svc, Inbound{Text: LabelNo})

		assert.Equal(t, models.OwnerIdle, svc.State())
		assert.Equal(t, []string{"A", "B"}, profile.Photos())
		stored, err := store.ListOwnerPhotos(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B"}, stored)
		assert.True(t, m.sawText(ownerChat, "cancelled"))
	})

	t.Run("view button re-prompts", func(t *testing.T) {
		svc, profile, _, m := newOwnerFixture(t, "A")

		ownerSays(t, svc, Inbound{Text: LabelOwnerClearPhotos})
		ownerSays(t, svc, Inbound{Text: LabelOwnerViewPhotos})

		assert.Equal(t, models.OwnerConfirmClearPhotos, svc.State())
		assert.Empty(t, m.groups)
		assert.Empty(t, m.photosTo(ownerChat))
		assert.Equal(t, []string{"A"}, profile.Photos())
		assert.Contains(t, m.lastText(ownerChat), "Please answer")
	})

	t.Run("anything else re-prompts", func(t *testing.T) {
		svc, profile, _, m := newOwnerFixture(t, "A")

		ownerSays(t, svc, Inbound{Text: LabelOwnerClearPhotos})
		ownerSays(t, svc, Inbound{Text: "hmm"})

		assert.Equal(t, models.OwnerConfirmClearPhotos, svc.State())
		assert.Equal(t, []string{"A"}, profile.Photos())
		assert.Contains(t, m.lastText(ownerChat), "Please answer")
	})
}

func TestOwnerSetFlows(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path - add photo", func(t *testing.T) {
		svc, profile, store, m := newOwnerFixture(t)

		ownerSays(t, svc, Inbound{Text: LabelOwnerSetPhoto})
		ownerSays(t, svc, Inbound{PhotoID: "p1"})

		assert.Equal(t, models.OwnerIdle, svc.State())
		assert.Equal(t, []string{"p1"}, profile.Photos())
		assert.Equal(t, []string{"p1"}, store.photos)
		assert.True(t, m.sawText(ownerChat, "Total photos: 1"))
		assert.Equal(t, "Owner menu:", m.lastText(ownerChat))
	})

	t.Run("duplicate photo is a no-op", func(t *testing.T) {
		svc, profile, _, m := newOwnerFixture(t, "p1")

		ownerSays(t, svc, Inbound{Text: LabelOwnerSetPhoto})
		ownerSays(t, svc, Inbound{PhotoID: "p1"})

		assert.Equal(t, []string{"p1"}, profile.Photos())
		assert.True(t, m.sawText(ownerChat, "already in your profile"))
	})

	t.Run("set then clear a text field", func(t *testing.T) {
		svc, profile, store, _ := newOwnerFixture(t)

		ownerSays(t, svc, Inbound{Text: LabelOwnerSetInterests})
		ownerSays(t, svc, Inbound{Text: "chess"})
		assert.Equal(t, "chess", profile.Field(models.FieldInterests))
		stored, err := store.GetOwnerProfile(ctx)
		require.NoError(t, err)
		assert.Equal(t, "chess", stored.Interests)

		ownerSays(t, svc, Inbound{Text: LabelOwnerClearInterests})
		ownerSays(t, svc, Inbound{Text: LabelYes})
		assert.Empty(t, profile.Field(models.FieldInterests))
		stored, err = store.GetOwnerProfile(ctx)
		require.NoError(t, err)
		assert.Empty(t, stored.Interests)
	})

	t.Run("main menu abandons the edit", func(t *testing.T) {
		svc, profile, _, _ := newOwnerFixture(t)

		ownerSays(t, svc, Inbound{Text: LabelOwnerSetAbout})
		ownerSays(t, svc, Inbound{Text: LabelMainMenu})
		ownerSays(t, svc, Inbound{Text: "not an about text"})

		assert.Equal(t, models.OwnerIdle, svc.State())
		assert.Empty(t, profile.Field(models.FieldAbout))
	})
}

func TestOwnerView(t *testing.T) {
	svc, _, _, m := newOwnerFixture(t, "A", "B", "C")

	ownerSays(t, svc, Inbound{Text: LabelOwnerViewPhotos})
	require.Len(t, m.groups, 1)
	assert.Equal(t, []string{"A", "B", "C"}, m.groups[0].photoIDs)

	ownerSays(t, svc, Inbound{Text: LabelOwnerViewAbout})
	assert.Equal(t, "No about set.", m.lastText(ownerChat))
	assert.Equal(t, models.OwnerIdle, svc.State())
}

package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func photoIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("p%d", i+1)
	}
	return ids
}

func TestSendPhotosInGroups(t *testing.T) {
	ctx := context.Background()

	t.Run("23 photos split into 10, 10 and 3", func(t *testing.T) {
		m := newRecordingMessenger()
		require.NoError(t, SendPhotosInGroups(ctx, m, 1, photoIDs(23), 10, "Photo"))

		require.Len(t, m.groups, 3)
		assert.Len(t, m.groups[0].photoIDs, 10)
		assert.Len(t, m.groups[1].photoIDs, 10)
		assert.Equal(t, []string{"p21", "p22", "p23"}, m.groups[2].photoIDs)
		assert.Equal(t, "Photo #1", m.groups[0].caption)
		assert.Equal(t, "Photo #11", m.groups[1].caption)
		assert.Equal(t, "Photo #21", m.groups[2].caption)
	})

	t.Run("trailing single photo is sent on its own", func(t *testing.T) {
		m := newRecordingMessenger()
		require.NoError(t, SendPhotosInGroups(ctx, m, 1, photoIDs(11), 10, "Photo"))

		assert.Len(t, m.groups, 1)
		assert.Equal(t, []string{"p11"}, m.photosTo(1))
	})

	t.Run("failed album falls back to single photos", func(t *testing.T) {
		m := newRecordingMessenger()
		m.failGroups = true
		require.NoError(t, SendPhotosInGroups(ctx, m, 1, photoIDs(3), 10, "Photo"))

		assert.Empty(t, m.groups)
		assert.Equal(t, []string{"p1", "p2", "p3"}, m.photosTo(1))
		assert.Equal(t, "Photo #3", m.photos[2].caption)
	})

	t.Run("unrecoverable failure is returned", func(t *testing.T) {
		m := newRecordingMessenger()
		m.failChats[1] = true
		assert.ErrorIs(t, SendPhotosInGroups(ctx, m, 1, photoIDs(3), 10, "Photo"), errBoom)
	})

	t.Run("nothing to send", func(t *testing.T) {
		m := newRecordingMessenger()
		require.NoError(t, SendPhotosInGroups(ctx, m, 1, nil, 10, "Photo"))
		assert.Empty(t, m.groups)
		assert.Empty(t, m.photos)
	})
}

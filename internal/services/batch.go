package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// SendPhotosInGroups sends photos as albums of at most size photos.
// A failed album is retried one photo at a time. The first error that
// could not be recovered is returned after every photo was attempted.
func SendPhotosInGroups(ctx context.Context, m Messenger, chatID int64, photoIDs []string, size int, captionPrefix string) error {
	if size < 1 {
		size = 1
	}

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for i := 0; i < len(photoIDs); i += size {
		group := photoIDs[i:min(i+size, len(photoIDs))]
		caption := fmt.Sprintf("%s #%d", captionPrefix, i+1)

		if len(group) == 1 {
			record(m.SendPhoto(ctx, chatID, group[0], caption))
			continue
		}

		if err := m.SendPhotoGroup(ctx, chatID, group, caption); err != nil {
			log.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to send photo group, sending one by one")
			for j, photoID := range group {
				record(m.SendPhoto(ctx, chatID, photoID, fmt.Sprintf("%s #%d", captionPrefix, i+j+1)))
			}
		}
	}

	return firstErr
}

package bot

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"photo-exchange-bot/internal/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

// gatedHandler records texts per sender and can hold one text until released
type gatedHandler struct {
	mu      sync.Mutex
	got     map[int64][]string
	holdOn  string
	release chan struct{}
	handled chan services.Inbound
}

func newGatedHandler() *gatedHandler {
	return &gatedHandler{
		got:     make(map[int64][]string),
		release: make(chan struct{}),
		handled: make(chan services.Inbound, 100),
	}
}

func (h *gatedHandler) Handle(_ context.Context, in services.Inbound) error {
	if in.Text == h.holdOn {
		<-h.release
	}
	h.mu.Lock()
	h.got[in.SenderID] = append(h.got[in.SenderID], in.Text)
	h.mu.Unlock()
	h.handled <- in
	return nil
}

func (h *gatedHandler) texts(senderID int64) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.got[senderID]...)
}

func TestShardedWorkers(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path - one sender keeps arrival order", func(t *testing.T) {
		h := newGatedHandler()
		close(h.release)
		d := NewDispatcher(99, h, h)
		w := newShardedWorkers(ctx, 4, 8, d.Dispatch)

		want := make([]string, 50)
		for i := range want {
			want[i] = fmt.Sprintf("m%d", i)
			w.Submit(tgbotapi.Update{UpdateID: i, Message: message(7, want[i])})
		}
		w.Stop()

		assert.Equal(t, want, h.texts(7))
	})

	t.Run("menu button then its text stay in order", func(t *testing.T) {
		h := newGatedHandler()
		h.holdOn = services.LabelEditAboutMe
		d := NewDispatcher(99, h, h)
		w := newShardedWorkers(ctx, 16, 8, d.Dispatch)

		about := "I like long walks and taking photos of old buildings"
		w.Submit(tgbotapi.Update{Message: message(5, services.LabelEditAboutMe)})
		w.Submit(tgbotapi.Update{Message: message(5, about)})

		// the text must not overtake the held button press
		select {
		case in := <-h.handled:
			t.Fatalf("handled %q before the button was released", in.Text)
		case <-time.After(50 * time.Millisecond):
		}

		close(h.release)
		w.Stop()
		assert.Equal(t, []string{services.LabelEditAboutMe, about}, h.texts(5))
	})

	t.Run("other senders are not blocked", func(t *testing.T) {
		h := newGatedHandler()
		h.holdOn = "slow"
		d := NewDispatcher(99, h, h)
		w := newShardedWorkers(ctx, 2, 8, d.Dispatch)

		w.Submit(tgbotapi.Update{Message: message(1, "slow")})
		w.Submit(tgbotapi.Update{Message: message(1, "after slow")})
		w.Submit(tgbotapi.Update{Message: message(2, "fast")})

		select {
		case in := <-h.handled:
			assert.Equal(t, int64(2), in.SenderID)
		case <-time.After(2 * time.Second):
			t.Fatal("sender 2 was blocked by sender 1")
		}

		close(h.release)
		w.Stop()
		assert.Equal(t, []string{"slow", "after slow"}, h.texts(1))
		assert.Equal(t, []string{"fast"}, h.texts(2))
	})

	t.Run("updates without a sender are still handled", func(t *testing.T) {
		assert.Equal(t, 0, shardOf(tgbotapi.Update{}, 4))
		assert.Equal(t, 3, shardOf(tgbotapi.Update{Message: message(7, "x")}, 4))

		var calls int
		w := newShardedWorkers(ctx, 2, 1, func(context.Context, tgbotapi.Update) { calls++ })
		w.Submit(tgbotapi.Update{})
		w.Stop()
		assert.Equal(t, 1, calls)
	})
}

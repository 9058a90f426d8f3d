package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// updateHandler handles one update to completion
type updateHandler func(ctx context.Context, update tgbotapi.Update)

// shardedWorkers runs updates on a fixed set of goroutines. Every update from
// one sender lands on the same worker, so a sender's messages are handled
// one after another in arrival order while different senders run in parallel.
type shardedWorkers struct {
	queues []chan tgbotapi.Update
	wg     sync.WaitGroup
}

func newShardedWorkers(ctx context.Context, workers, depth int, handle updateHandler) *shardedWorkers {
	w := &shardedWorkers{queues: make([]chan tgbotapi.Update, workers)}
	for i := range w.queues {
		q := make(chan tgbotapi.Update, depth)
		w.queues[i] = q
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for update := range q {
				handle(ctx, update)
			}
		}()
	}
	return w
}

// Submit queues an update on its sender's worker. It blocks while that
// worker's queue is full.
func (w *shardedWorkers) Submit(update tgbotapi.Update) {
	w.queues[shardOf(update, len(w.queues))] <- update
}

// Stop drains the queued updates and waits for the workers to exit.
// Submit must not be called afterwards.
func (w *shardedWorkers) Stop() {
	for _, q := range w.queues {
		close(q)
	}
	w.wg.Wait()
}

func shardOf(update tgbotapi.Update, n int) int {
	if update.Message == nil || update.Message.From == nil {
		return 0
	}
	return int(uint64(update.Message.From.ID) % uint64(n))
}

package bot

import (
	"context"
	"fmt"

	"photo-exchange-bot/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

const (
	// pollWorkers bounds concurrently handled updates in polling mode
	pollWorkers      = 16
	workerQueueDepth = 32
)

// Connect logs in to the Bot API
func Connect(cfg config.BotConfig) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to bot api: %w", err)
	}
	api.Debug = cfg.Debug

	log.Info().Str("username", api.Self.UserName).Msg("Bot authorized")
	return api, nil
}

// SetWebhook registers the webhook url with its secret token
func SetWebhook(api *tgbotapi.BotAPI, url, secret string) error {
	params := tgbotapi.Params{"url": url}
	params.AddNonEmpty("secret_token", secret)

	if _, err := api.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	log.Info().Str("url", url).Msg("Webhook registered")
	return nil
}

// DeleteWebhook switches the bot back to long polling
func DeleteWebhook(api *tgbotapi.BotAPI) error {
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	return nil
}

// Poll receives updates until ctx is cancelled. Updates from one sender are
// handled in arrival order; different senders are handled concurrently.
func Poll(ctx context.Context, api *tgbotapi.BotAPI, d *Dispatcher) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	workers := newShardedWorkers(context.WithoutCancel(ctx), pollWorkers, workerQueueDepth, d.Dispatch)

	log.Info().Int("workers", pollWorkers).Msg("Polling for updates")
	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			workers.Stop()
			log.Info().Msg("Polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				workers.Stop()
				return
			}
			workers.Submit(update)
		}
	}
}

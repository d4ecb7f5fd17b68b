package telegram

import (
	"context"

	"fivesec_bot/internal/modules/config"
	journal "fivesec_bot/internal/modules/journal/service"
	"fivesec_bot/internal/modules/telegram_bot/service"
	"fivesec_bot/internal/runner"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Result struct {
	fx.Out

	Notifier runner.ServiceNotifier
	Bot      *service.Telegram
	API      *tgbot.BotAPI
}

// NewNotifier falls back to logging when no token is configured.
func NewNotifier(cfg *config.Config, l *zap.Logger) (Result, error) {
	if cfg.Telegram.Token == "" {
		l.Info("telegram token not set, notifications go to the log")
		return Result{Notifier: service.NewLogNotifier(l)}, nil
	}

	api, err := tgbot.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return Result{}, err
	}
	t := service.NewTelegram(api, cfg.Telegram.ChatID, l)
	return Result{Notifier: t, Bot: t, API: api}, nil
}

func Module() fx.Option {
	return fx.Module("telegram",
		fx.Provide(NewNotifier),
		fx.Invoke(func(lc fx.Lifecycle, t *service.Telegram, api *tgbot.BotAPI, s *runner.Scheduler, rec *journal.Recorder) {
			if t == nil {
				return
			}
			t.Attach(s, rec)

			var cancel context.CancelFunc
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					var ctx context.Context
					ctx, cancel = context.WithCancel(context.Background())

					u := tgbot.NewUpdate(0)
					u.Timeout = 30
					go t.RunOutbox(ctx)
					go t.Listen(ctx, api.GetUpdatesChan(u))
					t.SendService(ctx, "🚀 bot started")
					return nil
				},
				OnStop: func(context.Context) error {
					api.StopReceivingUpdates()
					cancel()
					return nil
				},
			})
		}),
	)
}

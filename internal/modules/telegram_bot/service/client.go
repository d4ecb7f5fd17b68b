package service

import (
	"context"
	"fmt"
	"sync"

	"fivesec_bot/internal/models"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const outboxSize = 64

// Sender is the part of *tgbot.BotAPI used for outgoing messages.
type Sender interface {
	Send(c tgbot.Chattable) (tgbot.Message, error)
}

type StatusProvider interface {
	Status() models.SessionStatus
}

type StatsProvider interface {
	Stats(ctx context.Context) (models.Stats, error)
}

// Telegram pushes service messages to one chat and answers report commands.
// SendService never blocks: messages go through a bounded outbox.
type Telegram struct {
	bot    Sender
	chatID int64
	l      *zap.Logger
	outbox chan string

	mu     sync.RWMutex
	status StatusProvider
	stats  StatsProvider
}

func NewTelegram(bot Sender, chatID int64, l *zap.Logger) *Telegram {
	return &Telegram{
		bot:    bot,
		chatID: chatID,
		l:      l.Named("telegram"),
		outbox: make(chan string, outboxSize),
	}
}

// Attach hands over the report sources once the runner exists.
func (t *Telegram) Attach(status StatusProvider, stats StatsProvider) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status, t.stats = status, stats
}

func (t *Telegram) Send(_ context.Context, chatID int64, msg string) (tgbot.Message, error) {
	return t.bot.Send(tgbot.NewMessage(chatID, msg))
}

func (t *Telegram) SendService(_ context.Context, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	select {
	case t.outbox <- msg:
	default:
		t.l.Warn("outbox full, message dropped", zap.String("msg", msg))
	}
}

// RunOutbox delivers queued service messages until ctx is done.
func (t *Telegram) RunOutbox(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-t.outbox:
			if t.chatID == 0 {
				continue
			}
			if _, err := t.Send(ctx, t.chatID, msg); err != nil {
				t.l.Error("send failed", zap.Error(err))
			}
		}
	}
}

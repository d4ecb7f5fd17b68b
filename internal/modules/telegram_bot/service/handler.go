package service

import (
	"context"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const statsTimeout = 3 * time.Second

// Listen consumes bot updates until ctx is done or the channel closes.
func (t *Telegram) Listen(ctx context.Context, updates tgbot.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			t.handleUpdate(ctx, update)
		}
	}
}

func (t *Telegram) handleUpdate(ctx context.Context, update tgbot.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || !msg.IsCommand() {
		return
	}
	chatID := msg.Chat.ID
	if t.chatID != 0 && chatID != t.chatID {
		t.l.Debug("command from foreign chat ignored", zap.Int64("chat_id", chatID))
		return
	}

	var reply string
	switch msg.Command() {
	case "start", "help":
		reply = helpText
	case "status":
		reply = t.statusText()
	case "stats":
		reply = t.statsText(ctx)
	default:
		reply = "unknown command, try /help"
	}

	out := tgbot.NewMessage(chatID, reply)
	out.ParseMode = tgbot.ModeMarkdown
	if _, err := t.bot.Send(out); err != nil {
		t.l.Error("reply failed", zap.String("command", msg.Command()), zap.Error(err))
	}
}

func (t *Telegram) statusText() string {
	t.mu.RLock()
	status := t.status
	t.mu.RUnlock()
	if status == nil {
		return "⏳ runner is not started yet"
	}
	return formatStatus(status.Status())
}

func (t *Telegram) statsText(ctx context.Context) string {
	t.mu.RLock()
	stats := t.stats
	t.mu.RUnlock()
	if stats == nil {
		return "⏳ journal is not ready yet"
	}

	ctx, cancel := context.WithTimeout(ctx, statsTimeout)
	defer cancel()
	s, err := stats.Stats(ctx)
	if err != nil {
		t.l.Error("stats", zap.Error(err))
		return "❗️ stats unavailable: " + err.Error()
	}
	return formatStats(s)
}

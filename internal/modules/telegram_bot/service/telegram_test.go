package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fivesec_bot/internal/models"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type fakeBot struct {
	mu   sync.Mutex
	sent []tgbot.MessageConfig
}

func (b *fakeBot) Send(c tgbot.Chattable) (tgbot.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if m, ok := c.(tgbot.MessageConfig); ok {
		b.sent = append(b.sent, m)
	}
	return tgbot.Message{}, nil
}

func (b *fakeBot) texts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.sent))
	for _, m := range b.sent {
		out = append(out, m.Text)
	}
	return out
}

type fixedStatus models.SessionStatus

func (f fixedStatus) Status() models.SessionStatus { return models.SessionStatus(f) }

type fixedStats struct {
	s   models.Stats
	err error
}

func (f fixedStats) Stats(context.Context) (models.Stats, error) { return f.s, f.err }

func command(chatID int64, cmd string) tgbot.Update {
	return tgbot.Update{Message: &tgbot.Message{
		Text:     "/" + cmd,
		Chat:     &tgbot.Chat{ID: chatID},
		Entities: []tgbot.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd) + 1}},
	}}
}

func TestCommands(t *testing.T) {
	bot := &fakeBot{}
	tg := NewTelegram(bot, 42, zaptest.NewLogger(t))
	ctx := context.Background()

	tg.handleUpdate(ctx, command(42, "status"))
	tg.Attach(
		fixedStatus{State: "IDLE", Trades: 2, MaxTrades: 20, Stake: 4, Step: 2, Cycles: 9, Skipped: 7},
		fixedStats{s: models.NewStats(2, 1)},
	)
	tg.handleUpdate(ctx, command(42, "status"))
	tg.handleUpdate(ctx, command(42, "stats"))
	tg.handleUpdate(ctx, command(7, "stats"))
	tg.handleUpdate(ctx, command(42, "nope"))

	texts := bot.texts()
	require.Len(t, texts, 4)
	assert.Contains(t, texts[0], "not started")
	assert.Contains(t, texts[1], "Trades: `2/20`")
	assert.Contains(t, texts[1], "Stake: `4.00` (step 2)")
	assert.Contains(t, texts[2], "Win rate: `66.67%`")
	assert.Contains(t, texts[3], "unknown command")
}

func TestStatsError(t *testing.T) {
	bot := &fakeBot{}
	tg := NewTelegram(bot, 0, zaptest.NewLogger(t))
	tg.Attach(fixedStatus{}, fixedStats{err: errors.New("redis down")})

	tg.handleUpdate(context.Background(), command(5, "stats"))
	assert.Contains(t, bot.texts()[0], "redis down")
}

func TestOutbox(t *testing.T) {
	bot := &fakeBot{}
	core, logs := observer.New(zap.WarnLevel)
	tg := NewTelegram(bot, 42, zap.New(core))

	for i := 0; i < outboxSize+1; i++ {
		tg.SendService(context.Background(), "msg %d", i)
	}
	assert.Equal(t, 1, logs.FilterMessage("outbox full, message dropped").Len())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tg.RunOutbox(ctx)

	require.Eventually(t, func() bool { return len(bot.texts()) == outboxSize }, time.Second, time.Millisecond)
	assert.Equal(t, "msg 0", bot.texts()[0])
}

func TestFormatStatusLastWindow(t *testing.T) {
	s := models.SessionStatus{
		State: "IDLE",
		LastWindow: models.DecisionWindow{
			CloseAt: time.Date(2024, 1, 1, 12, 0, 10, 0, time.UTC),
			Reason:  "deadline_exceeded",
		},
	}
	out := formatStatus(s)
	assert.Contains(t, out, "12:00:10 skipped (deadline_exceeded)")
	assert.Contains(t, out, "/∞")
}

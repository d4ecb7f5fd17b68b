package service

import (
	"context"
	"time"

	"fivesec_bot/internal/models"
	"fivesec_bot/pkg/clock"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WSConfig struct {
	URL            string
	Subscribe      string
	Symbol         string
	ReconnectDelay time.Duration
	PingInterval   time.Duration
}

// WSFeed reads price frames from a websocket and reconnects until cancelled.
// Ticks are stamped with the local clock at receipt.
type WSFeed struct {
	cfg    WSConfig
	dialer *websocket.Dialer
	clk    clock.Clock
	status Status
	l      *zap.Logger
}

func NewWSFeed(cfg WSConfig, clk clock.Clock, status Status, l *zap.Logger) *WSFeed {
	if status == nil {
		status = nopStatus{}
	}
	return &WSFeed{
		cfg:    cfg,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		clk:    clk,
		status: status,
		l:      l.Named("ws_feed"),
	}
}

func (f *WSFeed) Name() string { return "ws" }

func (f *WSFeed) Run(ctx context.Context, q *Queue) error {
	for {
		err := f.session(ctx, q)
		f.status.SetWSConnected(false)
		if ctx.Err() != nil {
			return nil
		}
		f.l.Warn("stream interrupted, reconnecting",
			zap.Error(err), zap.Duration("delay", f.cfg.ReconnectDelay))
		if !sleepCtx(ctx, f.cfg.ReconnectDelay) {
			return nil
		}
	}
}

func (f *WSFeed) session(ctx context.Context, q *Queue) error {
	conn, _, err := f.dialer.DialContext(ctx, f.cfg.URL, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close()
	}()

	if f.cfg.Subscribe != "" {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(f.cfg.Subscribe)); err != nil {
			return err
		}
	}

	f.status.SetWSConnected(true)
	f.l.Info("connected", zap.String("url", f.cfg.URL), zap.String("symbol", f.cfg.Symbol))

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	if f.cfg.PingInterval > 0 {
		go f.keepalive(conn, done)
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		f.handle(msg, q)
	}
}

func (f *WSFeed) keepalive(conn *websocket.Conn, done <-chan struct{}) {
	t := time.NewTicker(f.cfg.PingInterval)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)); err != nil {
				f.l.Debug("ping failed", zap.Error(err))
			}
		}
	}
}

func (f *WSFeed) handle(msg []byte, q *Queue) {
	price, symbol, ok := DecodeFrame(msg)
	if !ok {
		return
	}
	if f.cfg.Symbol != "" && symbol != "" && symbol != f.cfg.Symbol {
		return
	}
	if !validPrice(price) {
		f.l.Debug("dropping invalid price", zap.Float64("price", price))
		return
	}

	now := f.clk.Now()
	if symbol == "" {
		symbol = f.cfg.Symbol
	}
	f.status.TouchTick(now)
	if !q.Offer(models.Tick{Symbol: symbol, Price: price, At: now}) {
		f.l.Debug("tick queue full, dropped", zap.Uint64("dropped", q.Dropped()))
	}
}

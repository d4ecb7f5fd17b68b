package service

import (
	"context"
	"math/rand"
	"time"

	"fivesec_bot/internal/models"
	"fivesec_bot/pkg/clock"

	"go.uber.org/zap"
)

type SimConfig struct {
	Symbol     string
	StartPrice float64
	// Volatility is the per-tick standard deviation in percent of price.
	Volatility float64
	Interval   time.Duration
	Seed       int64
}

// SimFeed is a seeded random walk, used offline and in tests.
type SimFeed struct {
	cfg    SimConfig
	clk    clock.Clock
	status Status
	l      *zap.Logger
}

func NewSimFeed(cfg SimConfig, clk clock.Clock, status Status, l *zap.Logger) *SimFeed {
	if status == nil {
		status = nopStatus{}
	}
	return &SimFeed{cfg: cfg, clk: clk, status: status, l: l.Named("sim_feed")}
}

func (f *SimFeed) Name() string { return "sim" }

func (f *SimFeed) Run(ctx context.Context, q *Queue) error {
	rng := rand.New(rand.NewSource(f.cfg.Seed))
	price := f.cfg.StartPrice

	t := time.NewTicker(f.cfg.Interval)
	defer t.Stop()

	f.l.Info("started", zap.Float64("start_price", price), zap.Duration("interval", f.cfg.Interval))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			next := price * (1 + rng.NormFloat64()*f.cfg.Volatility/100)
			if validPrice(next) {
				price = next
			}
			now := f.clk.Now()
			f.status.TouchTick(now)
			q.Offer(models.Tick{Symbol: f.cfg.Symbol, Price: price, At: now})
		}
	}
}

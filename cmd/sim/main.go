package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"fivesec_bot/internal/app"
	"fivesec_bot/internal/modules/config"
	journal "fivesec_bot/internal/modules/journal/service"
	market "fivesec_bot/internal/modules/market/service"
	notify "fivesec_bot/internal/modules/telegram_bot/service"
	"fivesec_bot/internal/runner"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type nopStatus struct{}

func (nopStatus) SetWSConnected(bool) {}
func (nopStatus) TouchTick(time.Time) {}

// sim runs the pipeline against the random-walk feed for a fixed time and prints the report.
func main() {
	var (
		duration = flag.Duration("duration", time.Minute, "how long to run")
		seed     = flag.Int64("seed", 1, "seed for the feed and the mock executor")
		winProb  = flag.Float64("win", 0.5, "mock win probability; negative keeps paper settlement")
	)
	flag.Parse()

	var (
		sched *runner.Scheduler
		rec   *journal.Recorder
	)
	a := fx.New(
		app.Core(),
		fx.Decorate(func(cfg *config.Config) *config.Config {
			cfg.Market.Source = "sim"
			cfg.Market.Sim.Seed = *seed
			cfg.Journal.Backend = "memory"
			cfg.Executor.Seed = *seed
			if *winProb >= 0 {
				cfg.Executor.Mode = "random"
				cfg.Executor.WinProbability = *winProb
			}
			return cfg
		}),
		fx.Provide(
			func() prometheus.Registerer { return prometheus.NewRegistry() },
			func() market.Status { return nopStatus{} },
			func(l *zap.Logger) runner.ServiceNotifier { return notify.NewLogNotifier(l) },
		),
		fx.Populate(&sched, &rec),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := a.Start(startCtx); err != nil {
		log.Fatal(err)
	}

	select {
	case <-time.After(*duration):
	case <-a.Done():
	}

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStop()
	if err := a.Stop(stopCtx); err != nil {
		log.Printf("[SIM] stop: %v", err)
	}

	stats, err := rec.Stats(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	report, err := sonic.ConfigStd.MarshalIndent(map[string]any{
		"session": sched.Status(),
		"stats":   stats,
	}, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Fprintln(os.Stdout, string(report))
}

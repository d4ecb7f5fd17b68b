package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix        = "BOT"
	tokenTelegramENV = "TELEGRAM_TOKEN"
	databaseDSN      = "DATABASE_DSN"
)

// applyEnv overrides file values from the environment: BOT_STAKING_MAX_STEPS=5 etc.
// TELEGRAM_TOKEN and DATABASE_DSN are kept without prefix.
func applyEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("telegram.token", tokenTelegramENV)
	_ = v.BindEnv("db_dsn", databaseDSN)

	str(v, "log.level", &cfg.Log.Level)
	str(v, "log.format", &cfg.Log.Format)
	str(v, "service.health_addr", &cfg.Service.HealthAddr)

	str(v, "market.source", &cfg.Market.Source)
	str(v, "market.ws_url", &cfg.Market.WSURL)
	str(v, "market.subscribe", &cfg.Market.Subscribe)
	str(v, "market.symbol", &cfg.Market.Symbol)
	integer(v, "market.queue_size", &cfg.Market.QueueSize)
	integer64(v, "market.sim.seed", &cfg.Market.Sim.Seed)

	float(v, "strategy.doji_body_ratio", &cfg.Strategy.DojiBodyRatio)
	float(v, "strategy.parallel_max_range", &cfg.Strategy.ParallelMaxRange)

	duration(v, "scheduler.decision_budget", &cfg.Scheduler.DecisionBudget)
	duration(v, "scheduler.third_wait", &cfg.Scheduler.ThirdWait)

	float(v, "staking.base_amount", &cfg.Staking.BaseAmount)
	float(v, "staking.martingale_step", &cfg.Staking.Factor)
	integer(v, "staking.max_steps", &cfg.Staking.MaxSteps)
	boolean(v, "staking.continue_after_loss", &cfg.Staking.ContinueAfterLoss)

	integer(v, "session.max_trades", &cfg.Session.MaxTrades)
	integer(v, "session.expiry_seconds", &cfg.Session.ExpirySeconds)

	str(v, "executor.mode", &cfg.Executor.Mode)
	str(v, "journal.backend", &cfg.Journal.Backend)
	str(v, "db_dsn", &cfg.DB)
	str(v, "redis.addr", &cfg.Redis.Addr)
	str(v, "redis.password", &cfg.Redis.Password)

	str(v, "telegram.token", &cfg.Telegram.Token)
	integer64(v, "telegram.chat_id", &cfg.Telegram.ChatID)
	boolean(v, "tracing.enabled", &cfg.Tracing.Enabled)
	str(v, "tracing.host", &cfg.Tracing.Host)
}

func str(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}

func integer(v *viper.Viper, key string, dst *int) {
	if v.IsSet(key) {
		*dst = v.GetInt(key)
	}
}

func integer64(v *viper.Viper, key string, dst *int64) {
	if v.IsSet(key) {
		*dst = v.GetInt64(key)
	}
}

func float(v *viper.Viper, key string, dst *float64) {
	if v.IsSet(key) {
		*dst = v.GetFloat64(key)
	}
}

func boolean(v *viper.Viper, key string, dst *bool) {
	if v.IsSet(key) {
		*dst = v.GetBool(key)
	}
}

func duration(v *viper.Viper, key string, dst *time.Duration) {
	if v.IsSet(key) {
		*dst = v.GetDuration(key)
	}
}

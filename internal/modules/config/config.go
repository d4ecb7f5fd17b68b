package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fivesec_bot/pkg/logger"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	configDir         = "configs"
	defaultConfigFile = "values_local.yaml"

	// Period is fixed: one symbol, one 5-second timeframe.
	Period = 5 * time.Second
)

// Config ...
type Config struct {
	Service struct {
		Name       string `yaml:"name" default:"fivesec_bot"`
		HealthAddr string `yaml:"health_addr" default:":8080"`
	} `yaml:"service"`

	Log logger.Config `yaml:"log"`

	Market    Market    `yaml:"market"`
	Candles   Candles   `yaml:"candles"`
	Strategy  Strategy  `yaml:"strategy"`
	Scheduler Scheduler `yaml:"scheduler"`
	Staking   Staking   `yaml:"staking"`
	Session   Session   `yaml:"session"`
	Executor  Executor  `yaml:"executor"`
	Journal   Journal   `yaml:"journal"`

	DB    string `yaml:"db_dsn"`
	Redis Redis  `yaml:"redis"`

	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`

	Tracing struct {
		Enabled bool   `yaml:"enabled"`
		Host    string `yaml:"host" default:"localhost"`
		Port    int    `yaml:"port" default:"6831"`
	} `yaml:"tracing"`
}

type Market struct {
	Source string `yaml:"source" default:"sim" validate:"oneof=ws sim"`
	WSURL  string `yaml:"ws_url" validate:"required_if=Source ws"`
	// raw JSON frame sent after connect, e.g. a subscribe op
	Subscribe      string        `yaml:"subscribe"`
	Symbol         string        `yaml:"symbol"`
	QueueSize      int           `yaml:"queue_size" default:"1024" validate:"gt=0"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"1s"`
	PingInterval   time.Duration `yaml:"ping_interval" default:"20s"`
	Sim            Sim           `yaml:"sim"`
}

type Sim struct {
	StartPrice float64       `yaml:"start_price" default:"100" validate:"gt=0"`
	Volatility float64       `yaml:"volatility" default:"0.05" validate:"gte=0"`
	Interval   time.Duration `yaml:"interval" default:"250ms" validate:"gt=0"`
	Seed       int64         `yaml:"seed" default:"1"`
}

type Candles struct {
	Period  time.Duration `yaml:"period" default:"5s"`
	History int           `yaml:"history" default:"20" validate:"gte=2"`
}

type Strategy struct {
	DojiBodyRatio    float64 `yaml:"doji_body_ratio" default:"0.1" validate:"gte=0,lte=1"`
	ParallelMaxRange float64 `yaml:"parallel_max_range" default:"0.0005" validate:"gte=0"`
}

type Scheduler struct {
	// DecisionBudget is measured from the close of the second candle.
	DecisionBudget time.Duration `yaml:"decision_budget" default:"15ms" validate:"gt=0"`
	SpinLead       time.Duration `yaml:"spin_lead" default:"2ms" validate:"gte=0"`
	// ThirdWait bounds how long a clock-closed candle waits for the next window's first tick.
	ThirdWait time.Duration `yaml:"third_wait" default:"10ms" validate:"gte=0"`
}

type Staking struct {
	BaseAmount        float64 `yaml:"base_amount" default:"1"`
	Factor            float64 `yaml:"martingale_step" default:"2"`
	MaxSteps          int     `yaml:"max_steps" default:"3"`
	ContinueAfterLoss bool    `yaml:"continue_after_loss" default:"true"`
}

type Session struct {
	MaxTrades     int `yaml:"max_trades" default:"20" validate:"gte=0"`
	ExpirySeconds int `yaml:"expiry_seconds" default:"5" validate:"gt=0"`
}

type Executor struct {
	Mode           string  `yaml:"mode" default:"paper" validate:"oneof=paper random"`
	Seed           int64   `yaml:"seed" default:"1"`
	WinProbability float64 `yaml:"win_probability" default:"0.5" validate:"gte=0,lte=1"`
}

type Journal struct {
	Backend string `yaml:"backend" default:"memory" validate:"oneof=memory postgres redis"`
	Buffer  int    `yaml:"buffer" default:"256" validate:"gt=0"`
}

type Redis struct {
	Addr     string `yaml:"addr" default:"localhost:6379"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix" default:"fivesec"`
}

func NewConfig() (*Config, error) {
	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = defaultConfigFile
	}
	return Load(filepath.Join(configDir, configFileName))
}

// Load reads path (a missing file means "defaults only"), applies env overrides and validates.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.Wrap(err, "set config defaults")
	}

	file, err := os.Open(path)
	switch {
	case err == nil:
		defer func() {
			_ = file.Close()
		}()
		if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
			return nil, errors.Wrapf(err, "decode config file %s", path)
		}
	case os.IsNotExist(err):
	default:
		return nil, errors.Wrapf(err, "open config file %s", path)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate rejects configurations the bot must not start with.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	if c.Candles.Period != Period {
		return fmt.Errorf("invalid config: candles.period must be %s, got %s", Period, c.Candles.Period)
	}
	if c.Scheduler.ThirdWait >= c.Scheduler.DecisionBudget {
		return fmt.Errorf("invalid config: scheduler.third_wait %s must be below decision_budget %s",
			c.Scheduler.ThirdWait, c.Scheduler.DecisionBudget)
	}
	if !(c.Staking.BaseAmount > 0) {
		return fmt.Errorf("invalid config: staking.base_amount must be positive, got %v", c.Staking.BaseAmount)
	}
	if !(c.Staking.Factor > 1) {
		return fmt.Errorf("invalid config: staking.martingale_step must be > 1, got %v", c.Staking.Factor)
	}
	if c.Staking.MaxSteps < 0 {
		return fmt.Errorf("invalid config: staking.max_steps must be >= 0, got %d", c.Staking.MaxSteps)
	}
	if c.Journal.Backend == "postgres" && c.DB == "" {
		return fmt.Errorf("invalid config: journal backend postgres needs db_dsn")
	}
	return nil
}

package service

import (
	"fivesec_bot/internal/modules/config"
)

func NewEngine(cfg *config.Config) Engine {
	return NewPatternEngine(cfg.Strategy.DojiBodyRatio, cfg.Strategy.ParallelMaxRange)
}

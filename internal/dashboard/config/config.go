package config

import (
	"golang-stock-dashboard/pkg/config"
)

// Config holds the full configuration for the dashboard service.
type Config struct {
	App        config.App        `mapstructure:"app"`
	Logger     config.Logger     `mapstructure:"logger"`
	API        config.API        `mapstructure:"api"`
	MarketData config.MarketData `mapstructure:"market_data"`
	Telegram   config.Telegram   `mapstructure:"telegram"`
}

// Load loads the dashboard configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.MarketData.MaxRequestPerMinute <= 0 {
		cfg.MarketData.MaxRequestPerMinute = 120
	}
	if cfg.MarketData.ScanResultLimit <= 0 {
		cfg.MarketData.ScanResultLimit = 1000
	}
	return &cfg, nil
}

package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Universe     []string `yaml:"universe"`
	LookbackDays int      `yaml:"lookback_days"`

	Providers struct {
		// Order lists providers tried in sequence: "nse", "yahoo", "kite".
		Order []string `yaml:"order"`
		NSE   struct {
			RateLimitMs int `yaml:"rate_limit_ms"`
		} `yaml:"nse"`
		Kite struct {
			// Instrument tokens per trading symbol, from the Kite
			// instruments dump.
			Tokens map[string]int `yaml:"tokens"`
		} `yaml:"kite"`
	} `yaml:"providers"`

	Indicators struct {
		SMAWindows      []int   `yaml:"sma_windows"`
		EMAWindows      []int   `yaml:"ema_windows"`
		RSIPeriod       int     `yaml:"rsi_period"`
		ATRPeriod       int     `yaml:"atr_period"`
		AvgVolumeWindow int     `yaml:"avg_volume_window"`
		VolumeSpikeMult float64 `yaml:"volume_spike_mult"`
	} `yaml:"indicators"`

	Supertrend struct {
		Period     int     `yaml:"period"`
		Multiplier float64 `yaml:"multiplier"`
	} `yaml:"supertrend"`

	WeeklySupertrend struct {
		Period     int     `yaml:"period"`
		Multiplier float64 `yaml:"multiplier"`
	} `yaml:"weekly_supertrend"`

	StopLoss struct {
		BreakevenR float64 `yaml:"breakeven_r"`
		TrailingR  float64 `yaml:"trailing_r"`
	} `yaml:"stop_loss"`

	Store struct {
		Driver      string `yaml:"driver"` // MEMORY or POSTGRES
		PostgresDSN string `yaml:"postgres_dsn"`
	} `yaml:"store"`

	Alerts struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"alerts"`

	CorporateActions struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"corporate_actions"`
}

func (c *Config) Validate() error {
	if len(c.Universe) == 0 {
		return errors.New("universe cannot be empty")
	}
	if c.Store.Driver != "MEMORY" && c.Store.Driver != "POSTGRES" {
		return fmt.Errorf("store.driver must be 'MEMORY' or 'POSTGRES', got '%s'", c.Store.Driver)
	}
	if c.Store.Driver == "POSTGRES" && c.Store.PostgresDSN == "" && os.Getenv("POSTGRES_DSN") == "" {
		return errors.New("store.postgres_dsn (or POSTGRES_DSN env) required for POSTGRES driver")
	}
	for _, p := range c.Providers.Order {
		if p != "nse" && p != "yahoo" && p != "kite" {
			return fmt.Errorf("unknown provider '%s' in providers.order", p)
		}
	}
	if c.Supertrend.Period <= 0 || c.Supertrend.Multiplier <= 0 {
		return fmt.Errorf("supertrend period/multiplier must be positive, got %d/%.2f",
			c.Supertrend.Period, c.Supertrend.Multiplier)
	}
	if c.StopLoss.BreakevenR >= c.StopLoss.TrailingR {
		return fmt.Errorf("stop_loss.breakeven_r (%.2f) must be below trailing_r (%.2f)",
			c.StopLoss.BreakevenR, c.StopLoss.TrailingR)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if len(c.Providers.Order) == 0 {
		c.Providers.Order = []string{"nse", "yahoo"}
	}
	if c.Providers.NSE.RateLimitMs == 0 {
		c.Providers.NSE.RateLimitMs = 500
	}
	if c.LookbackDays == 0 {
		c.LookbackDays = 400
	}
	if len(c.Indicators.SMAWindows) == 0 {
		c.Indicators.SMAWindows = []int{20, 50, 100, 200}
	}
	if len(c.Indicators.EMAWindows) == 0 {
		c.Indicators.EMAWindows = []int{9, 21, 50}
	}
	if c.Indicators.RSIPeriod == 0 {
		c.Indicators.RSIPeriod = 14
	}
	if c.Indicators.ATRPeriod == 0 {
		c.Indicators.ATRPeriod = 14
	}
	if c.Indicators.AvgVolumeWindow == 0 {
		c.Indicators.AvgVolumeWindow = 20
	}
	if c.Indicators.VolumeSpikeMult == 0 {
		c.Indicators.VolumeSpikeMult = 1.5
	}
	if c.Supertrend.Period == 0 {
		c.Supertrend.Period = 10
	}
	if c.Supertrend.Multiplier == 0 {
		c.Supertrend.Multiplier = 3.0
	}
	if c.WeeklySupertrend.Period == 0 {
		c.WeeklySupertrend.Period = 10
	}
	if c.WeeklySupertrend.Multiplier == 0 {
		c.WeeklySupertrend.Multiplier = 3.0
	}
	if c.StopLoss.BreakevenR == 0 {
		c.StopLoss.BreakevenR = 1.5
	}
	if c.StopLoss.TrailingR == 0 {
		c.StopLoss.TrailingR = 2.0
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "MEMORY"
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"quantsim/pkg/common"
	"quantsim/pkg/utility/fixed"
)

type rawConfig struct {
	DataSourceName string   `mapstructure:"data_source_name"`
	Tickers        []string `mapstructure:"tickers"`
	SessionStart   string   `mapstructure:"session_start"`
	SessionEnd     string   `mapstructure:"session_end"`
	LeadInDays     int      `mapstructure:"lead_in_days"`
	InitialCash    string   `mapstructure:"initial_cash"`
	SlippageRate   string   `mapstructure:"slippage_rate"`
	CommissionBps  string   `mapstructure:"commission_bps"`
	SecurityType   string   `mapstructure:"security_type"`
	Exchange       string   `mapstructure:"exchange"`
	Development    bool     `mapstructure:"development"`
}

type Config struct {
	DataSourceName string
	Tickers        []common.Ticker
	SessionStart   time.Time
	SessionEnd     time.Time
	// LeadInDays extends the preloaded window before the session start so
	// historical lookbacks at the first triggers have data to serve.
	LeadInDays    int
	InitialCash   fixed.Point
	SlippageRate  fixed.Point
	CommissionBps fixed.Point
	SecurityType  string
	Exchange      string
	Development   bool
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("lead_in_days", 30)
	v.SetDefault("initial_cash", "1000000")
	v.SetDefault("slippage_rate", "0")
	v.SetDefault("commission_bps", "0")
	v.SetDefault("security_type", "STK")
	v.SetDefault("exchange", "SIM")
	v.SetDefault("development", true)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file failed: %w", err)
	}

	var raw rawConfig
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	return parseConfig(raw)
}

func parseConfig(raw rawConfig) (*Config, error) {
	if raw.DataSourceName == "" {
		return nil, fmt.Errorf("data_source_name is required")
	}
	if len(raw.Tickers) == 0 {
		return nil, fmt.Errorf("at least one ticker is required")
	}

	start, err := time.Parse(time.DateOnly, raw.SessionStart)
	if err != nil {
		return nil, fmt.Errorf("invalid session_start: %w", err)
	}
	end, err := time.Parse(time.DateOnly, raw.SessionEnd)
	if err != nil {
		return nil, fmt.Errorf("invalid session_end: %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("session_end precedes session_start")
	}

	initialCash, err := fixed.FromString(raw.InitialCash)
	if err != nil {
		return nil, fmt.Errorf("invalid initial_cash: %w", err)
	}
	slippageRate, err := fixed.FromString(raw.SlippageRate)
	if err != nil {
		return nil, fmt.Errorf("invalid slippage_rate: %w", err)
	}
	commissionBps, err := fixed.FromString(raw.CommissionBps)
	if err != nil {
		return nil, fmt.Errorf("invalid commission_bps: %w", err)
	}

	tickers := make([]common.Ticker, len(raw.Tickers))
	for i, t := range raw.Tickers {
		tickers[i] = common.Ticker(t)
	}

	return &Config{
		DataSourceName: raw.DataSourceName,
		Tickers:        tickers,
		SessionStart:   start,
		SessionEnd:     end,
		LeadInDays:     raw.LeadInDays,
		InitialCash:    initialCash,
		SlippageRate:   slippageRate,
		CommissionBps:  commissionBps,
		SecurityType:   raw.SecurityType,
		Exchange:       raw.Exchange,
		Development:    raw.Development,
	}, nil
}

package config

import "go.uber.org/zap"

// NewLogger builds a development logger for LOG_LEVEL=debug and a
// production logger otherwise.
func (c *Config) NewLogger() (*zap.Logger, error) {
	if c.LogLevel == "debug" {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, err
	}
	return cfg.Build()
}

package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/todolist/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// either "15m" style strings or integer nanoseconds.
type JsonConfig struct {
	HTTPAddr             string         `json:"http_addr"`
	GRPCAddr             string         `json:"grpc_addr"`
	DatabaseDSN          string         `json:"database_dsn"`
	SessionSecret        string         `json:"session_secret"`
	SessionTTL           timex.Duration `json:"session_ttl"`
	SessionSweepInterval timex.Duration `json:"session_sweep_interval"`
	GoogleClientID       string         `json:"google_client_id"`
	GoogleClientSecret   string         `json:"google_client_secret"`
	GoogleCallbackURL    string         `json:"google_callback_url"`
	FrontendURL          string         `json:"frontend_url"`
	FrontendOrigins      []string       `json:"frontend_origins"`
	Production           *bool          `json:"production"`
	LogLevel             string         `json:"log_level"`
}

// parseJson overlays the non-empty values of the file at path onto config.
// An empty path is a no-op.
func parseJson(config *Config, path string) error {
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SessionSecret, c.SessionSecret)
	setString(&config.GoogleClientID, c.GoogleClientID)
	setString(&config.GoogleClientSecret, c.GoogleClientSecret)
	setString(&config.GoogleCallbackURL, c.GoogleCallbackURL)
	setString(&config.FrontendURL, c.FrontendURL)
	setString(&config.LogLevel, c.LogLevel)

	if !c.SessionTTL.IsZero() {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if !c.SessionSweepInterval.IsZero() {
		config.SessionSweepInterval = c.SessionSweepInterval.Duration
	}
	if c.FrontendOrigins != nil {
		config.FrontendOrigins = c.FrontendOrigins
	}
	if c.Production != nil {
		config.Production = *c.Production
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

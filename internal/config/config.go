package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything parkdash needs to poll and render.
type Config struct {
	APIBase           string
	Stations          []string
	RefreshInterval   time.Duration
	RequestTimeout    time.Duration
	ThresholdCritical int
	ThresholdWarning  int
	StaleAfter        time.Duration
	FreshnessMonths   int
	ShowTimestamp     bool
	UseStandardName   bool
	Origin            string
	Listen            string
	LogPath           string
	LogLevel          string
	Timezone          string
}

const (
	defaultConfigPath      = "~/.config/parkdash/config.toml"
	defaultLogPath         = "~/.local/share/parkdash/parkdash.log"
	defaultAPIBase         = "https://mobility.api.opendatahub.com"
	defaultStations        = "103,104,105,106"
	defaultRefreshInterval = 60 * time.Second
	defaultRequestTimeout  = 10 * time.Second
	defaultThresholdRed    = 80
	defaultThresholdOrange = 50
	defaultStaleAfter      = 15 * time.Minute
	defaultFreshnessMonths = 1
	defaultOrigin          = "webcomp-parking-dashboard"
	defaultListen          = "127.0.0.1:8080"
	defaultLogLevel        = "info"
)

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		APIBase:           defaultAPIBase,
		Stations:          DefaultStations(),
		RefreshInterval:   defaultRefreshInterval,
		RequestTimeout:    defaultRequestTimeout,
		ThresholdCritical: defaultThresholdRed,
		ThresholdWarning:  defaultThresholdOrange,
		StaleAfter:        defaultStaleAfter,
		FreshnessMonths:   defaultFreshnessMonths,
		Origin:            defaultOrigin,
		Listen:            defaultListen,
		LogPath:           mustExpand(defaultLogPath),
		LogLevel:          defaultLogLevel,
	}
}

// DefaultStations returns a fresh copy of the default station codes.
func DefaultStations() []string {
	return strings.Split(defaultStations, ",")
}

// ParseStations splits a comma-separated station list. Blank entries are
// dropped; an empty result falls back to the default list.
func ParseStations(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if code := strings.TrimSpace(part); code != "" {
			out = append(out, code)
		}
	}
	if len(out) == 0 {
		return DefaultStations()
	}
	return out
}

type rawConfig struct {
	APIBase         string `toml:"api_base"`
	Stations        string `toml:"stations"`
	RefreshSeconds  int    `toml:"refresh_seconds"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
	ThresholdRed    *int   `toml:"threshold_red"`
	ThresholdOrange *int   `toml:"threshold_orange"`
	GrayMinutes     int    `toml:"threshold_gray_minutes"`
	FreshnessMonths int    `toml:"freshness_months"`
	ShowTimestamp   bool   `toml:"show_timestamp"`
	UseStandardName bool   `toml:"use_standard_name"`
	Origin          string `toml:"origin"`
	Listen          string `toml:"listen"`
	LogPath         string `toml:"log_path"`
	LogLevel        string `toml:"log_level"`
	Timezone        string `toml:"timezone"`
}

// Load locates and parses the parkdash config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIBase); v != "" {
		cfg.APIBase = strings.TrimRight(v, "/")
	}
	cfg.Stations = ParseStations(raw.Stations)
	if raw.RefreshSeconds > 0 {
		cfg.RefreshInterval = time.Duration(raw.RefreshSeconds) * time.Second
	}
	if raw.TimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(raw.TimeoutSeconds) * time.Second
	}
	if raw.ThresholdRed != nil {
		cfg.ThresholdCritical = *raw.ThresholdRed
	}
	if raw.ThresholdOrange != nil {
		cfg.ThresholdWarning = *raw.ThresholdOrange
	}
	if raw.GrayMinutes > 0 {
		cfg.StaleAfter = time.Duration(raw.GrayMinutes) * time.Minute
	}
	if raw.FreshnessMonths > 0 {
		cfg.FreshnessMonths = raw.FreshnessMonths
	}
	cfg.ShowTimestamp = raw.ShowTimestamp
	cfg.UseStandardName = raw.UseStandardName
	if v := strings.TrimSpace(raw.Origin); v != "" {
		cfg.Origin = v
	}
	if v := strings.TrimSpace(raw.Listen); v != "" {
		cfg.Listen = v
	}
	if v := strings.TrimSpace(raw.LogPath); v != "" {
		cfg.LogPath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	cfg.Timezone = strings.TrimSpace(raw.Timezone)

	return cfg, nil
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.APIBase)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("api_base: %w", err))
	case (u.Scheme != "http" && u.Scheme != "https") || u.Host == "":
		errs = append(errs, fmt.Errorf("api_base %q must be an absolute http(s) url", c.APIBase))
	}
	if len(c.Stations) == 0 {
		errs = append(errs, errors.New("stations must not be empty"))
	}
	if c.RefreshInterval <= 0 {
		errs = append(errs, errors.New("refresh interval must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.StaleAfter <= 0 {
		errs = append(errs, errors.New("gray threshold must be positive"))
	}
	if c.FreshnessMonths <= 0 {
		errs = append(errs, errors.New("freshness horizon must be positive"))
	}
	if c.ThresholdWarning < 0 || c.ThresholdCritical > 100 || c.ThresholdWarning > c.ThresholdCritical {
		errs = append(errs, fmt.Errorf("thresholds must satisfy 0 <= orange (%d) <= red (%d) <= 100",
			c.ThresholdWarning, c.ThresholdCritical))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location resolves the configured display timezone; empty means local time.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

package config

import (
	"strconv"

	"github.com/spf13/viper"
)

const (
	defaultUserAgent    = "pinpoint/1.0 (https://github.com/UnknownOlympus/pinpoint)"
	defaultTargetHeight = 224
	defaultTargetWidth  = 224
	defaultHistoryLimit = 10
)

// Config holds the configuration settings for the evaluation pipeline.
//
// Fields:
// - Env: The current environment (e.g., local, dev, prod).
// - ProviderType: The reverse geocoding provider to use (nominatim, google).
// - APIKey: The API key for the geocoding provider (required for Google).
// - UserAgent: The User-Agent header sent to Nominatim.
// - ClassifierType: The classifier implementation to use (chroma, remote).
// - ModelEndpoint: The inference service URL (required for remote).
// - TargetHeight, TargetWidth: The classifier input dimensions.
// - MetricsPort: The monitoring server port; zero disables the server.
// - HistoryLimit: How many runs the history command lists.
// - Database: Configuration settings for the optional run history store.
type Config struct {
	Env            string
	ProviderType   string
	APIKey         string
	UserAgent      string
	ClassifierType string
	ModelEndpoint  string
	TargetHeight   int
	TargetWidth    int
	MetricsPort    int
	HistoryLimit   int
	Database       PostgresConfig
}

// PostgresConfig holds the connection details for the run history
// database. An empty host leaves the history store disabled.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Enabled reports whether a history database has been configured.
func (pc PostgresConfig) Enabled() bool {
	return pc.Host != ""
}

// MustLoad reads the configuration from PINPOINT_* environment
// variables and panics on values it cannot interpret.
func MustLoad() *Config {
	vpr := viper.New()
	vpr.SetEnvPrefix("pinpoint")
	vpr.AutomaticEnv()

	vpr.SetDefault("env", "production")
	vpr.SetDefault("provider_type", "nominatim")
	vpr.SetDefault("user_agent", defaultUserAgent)
	vpr.SetDefault("classifier_type", "chroma")
	vpr.SetDefault("model_endpoint", "")
	vpr.SetDefault("target_height", defaultTargetHeight)
	vpr.SetDefault("target_width", defaultTargetWidth)
	vpr.SetDefault("metrics_port", 0)
	vpr.SetDefault("history_limit", defaultHistoryLimit)

	// The database variables follow the usual unprefixed convention.
	_ = vpr.BindEnv("db_host", "DB_HOST")
	_ = vpr.BindEnv("db_port", "DB_PORT")
	_ = vpr.BindEnv("db_username", "DB_USERNAME")
	_ = vpr.BindEnv("db_password", "DB_PASSWORD")
	_ = vpr.BindEnv("db_name", "DB_NAME")
	vpr.SetDefault("db_port", "5432")

	targetHeight := mustPositiveInt(vpr, "target_height", "failed to parse target height from configuration")
	targetWidth := mustPositiveInt(vpr, "target_width", "failed to parse target width from configuration")

	metricsPort, err := strconv.Atoi(vpr.GetString("metrics_port"))
	if err != nil || metricsPort < 0 {
		panic("failed to parse port for monitoring server from configuration")
	}

	historyLimit := mustPositiveInt(vpr, "history_limit", "failed to parse history limit from configuration")

	return &Config{
		Env:            vpr.GetString("env"),
		ProviderType:   vpr.GetString("provider_type"),
		APIKey:         vpr.GetString("provider_key"),
		UserAgent:      vpr.GetString("user_agent"),
		ClassifierType: vpr.GetString("classifier_type"),
		ModelEndpoint:  vpr.GetString("model_endpoint"),
		TargetHeight:   targetHeight,
		TargetWidth:    targetWidth,
		MetricsPort:    metricsPort,
		HistoryLimit:   historyLimit,
		Database: PostgresConfig{
			Host:     vpr.GetString("db_host"),
			Port:     vpr.GetString("db_port"),
			User:     vpr.GetString("db_username"),
			Password: vpr.GetString("db_password"),
			Name:     vpr.GetString("db_name"),
		},
	}
}

func mustPositiveInt(vpr *viper.Viper, key, message string) int {
	value, err := strconv.Atoi(vpr.GetString(key))
	if err != nil || value <= 0 {
		panic(message)
	}

	return value
}

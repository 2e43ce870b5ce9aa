package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	ParkID     string
	TargetZone string
	Timezone   string
	Location   *time.Location

	// Weather agency (AEMET-style CAP feed). Predictive warnings are
	// feature-flagged: no API key means the service runs on the
	// authoritative status alone.
	AEMETAPIKey  string
	AEMETAreaURL string
	AEMETEnabled bool

	MunicipalStatusURL string

	FetchTimeout    time.Duration
	RefreshInterval time.Duration
	ShutdownTimeout time.Duration

	HTTPAddr  string
	LogLevel  string
	LogFormat string

	// Kafka evaluation publishing, disabled when no brokers are configured.
	KafkaBrokers   []string
	KafkaSinkTopic string
	KafkaEnabled   bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	fetchTimeout, err := durationEnv("FETCH_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	refreshInterval, err := durationEnv("REFRESH_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	tz := envOrDefault("TIMEZONE", "Europe/Madrid")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}

	apiKey := os.Getenv("AEMET_API_KEY")
	aemetEnabled := apiKey != ""
	if v := os.Getenv("AEMET_ENABLED"); v != "" {
		aemetEnabled = v == "true"
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))

	cfg := &Config{
		ParkID:     envOrDefault("PARK_ID", "parque-grande"),
		TargetZone: envOrDefault("TARGET_ZONE", "722802"),
		Timezone:   tz,
		Location:   loc,

		AEMETAPIKey:  apiKey,
		AEMETAreaURL: envOrDefault("AEMET_AREA_URL", "https://opendata.aemet.es/opendata/api/avisos_cap/ultimoelaborado/area/esp"),
		AEMETEnabled: aemetEnabled,

		MunicipalStatusURL: envOrDefault("MUNICIPAL_STATUS_URL", "http://localhost:9000/park/status"),

		FetchTimeout:    fetchTimeout,
		RefreshInterval: refreshInterval,
		ShutdownTimeout: shutdownTimeout,

		HTTPAddr:  envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "json"),

		KafkaBrokers:   brokers,
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "park-status-evaluations"),
		KafkaEnabled:   len(brokers) > 0,
	}

	if cfg.TargetZone == "" {
		return nil, errors.New("TARGET_ZONE is required")
	}
	if cfg.MunicipalStatusURL == "" {
		return nil, errors.New("MUNICIPAL_STATUS_URL is required")
	}
	if cfg.AEMETEnabled && cfg.AEMETAPIKey == "" {
		return nil, errors.New("AEMET_ENABLED is true but AEMET_API_KEY is not set")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

// parseBrokers splits a comma-separated broker list, dropping empty entries.
func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

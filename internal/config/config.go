// Package config loads the process-wide configuration once at startup.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the service reads from the environment. It is
// built once in main and passed to components at construction; nothing reads
// the environment after startup.
type Config struct {
	ProjectID          string
	Region             string
	BigQueryProjectID  string
	MapsAPIKey         string
	ModelName          string
	GeocodingBaseURL   string
	GeocodingTimeout   time.Duration
	ComparablesTableID string
	LogLevel           string
	Port               string
}

const (
	defaultRegion           = "us-central1"
	defaultModelName        = "gemini-2.5-flash"
	defaultGeocodingBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"
	defaultGeocodingTimeout = 10 * time.Second
	comparablesTable        = "cre_data.commercial_comparables"
)

// Load reads the configuration from the environment, applying a .env file if
// one is present. GCP_PROJECT is the only hard requirement here; the maps key
// is optional and its absence only degrades the maps tools.
func Load() (*Config, error) {
	// Best effort; deployed environments set real env vars.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("GCP_REGION", defaultRegion)
	v.SetDefault("VERTEX_AI_MODEL", defaultModelName)
	v.SetDefault("GEOCODING_BASE_URL", defaultGeocodingBaseURL)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PORT", "8080")

	cfg := &Config{
		ProjectID:         v.GetString("GCP_PROJECT"),
		Region:            v.GetString("GCP_REGION"),
		BigQueryProjectID: v.GetString("BIGQUERY_PROJECT_ID"),
		MapsAPIKey:        v.GetString("MAPS_API_KEY"),
		ModelName:         v.GetString("VERTEX_AI_MODEL"),
		GeocodingBaseURL:  v.GetString("GEOCODING_BASE_URL"),
		GeocodingTimeout:  defaultGeocodingTimeout,
		LogLevel:          v.GetString("LOG_LEVEL"),
		Port:              v.GetString("PORT"),
	}

	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("GCP_PROJECT environment variable is required")
	}
	if cfg.BigQueryProjectID == "" {
		cfg.BigQueryProjectID = cfg.ProjectID
	}
	cfg.ComparablesTableID = fmt.Sprintf("%s.%s", cfg.BigQueryProjectID, comparablesTable)

	return cfg, nil
}

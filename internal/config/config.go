// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// MigrateOnStart applies pending goose migrations before serving.
	MigrateOnStart bool

	// AMQPURL is the RabbitMQ URL booking events are published to.
	// Empty disables publishing.
	AMQPURL string

	// AMQPQueue is the durable queue booking events are delivered to.
	AMQPQueue string

	// MinRequestSeats is the smallest seat_count the HTTP layer accepts.
	// The booking engine itself always requires at least one seat.
	MinRequestSeats int

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, and one
// naming each variable whose value cannot be parsed.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		AMQPURL:     os.Getenv("AMQP_URL"),
		AMQPQueue:   getEnv("AMQP_QUEUE", "booking.events"),
	}

	var errs []error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		errs = append(errs, errors.New("required environment variables not set: DATABASE_URL"))
	}

	var err error
	if cfg.MigrateOnStart, err = strconv.ParseBool(getEnv("MIGRATE_ON_START", "false")); err != nil {
		errs = append(errs, fmt.Errorf("MIGRATE_ON_START: %q is not a boolean", os.Getenv("MIGRATE_ON_START")))
	}

	if cfg.MinRequestSeats, err = strconv.Atoi(getEnv("MIN_REQUEST_SEATS", "1")); err != nil || cfg.MinRequestSeats < 1 {
		errs = append(errs, fmt.Errorf("MIN_REQUEST_SEATS: %q must be a whole number of at least 1", os.Getenv("MIN_REQUEST_SEATS")))
	}

	if cfg.MaxBodyBytes, err = strconv.ParseInt(getEnv("MAX_BODY_BYTES", "1048576"), 10, 64); err != nil || cfg.MaxBodyBytes < 1 {
		errs = append(errs, fmt.Errorf("MAX_BODY_BYTES: %q must be a positive number of bytes", os.Getenv("MAX_BODY_BYTES")))
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

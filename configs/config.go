package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

var loadOnce sync.Once

// Config reads a configuration value, preferring a local .env file over the
// process environment. The .env load happens once per process.
func Config(key string) string {
	loadOnce.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("No .env file found, reading from system environment variables")
		}
	})
	return os.Getenv(key)
}

// ConfigOr reads a configuration value with a fallback for optional settings.
func ConfigOr(key, fallback string) string {
	if v := Config(key); v != "" {
		return v
	}
	return fallback
}

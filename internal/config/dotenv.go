package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotenvIfPresent reads ./.env for local development. Existing
// environment variables win, and a missing file is a no-op.
func LoadDotenvIfPresent() {
	if strings.EqualFold(os.Getenv("PHONEBOOK_ENV"), "production") {
		return
	}

	if _, err := os.Stat(".env"); err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("dotenv stat", "err", err)
		}
		return
	}

	if err := godotenv.Load(".env"); err != nil {
		slog.Warn("dotenv load", "err", err)
	}
}

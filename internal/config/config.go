package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultAvatarBaseURL = "https://api.dicebear.com/7.x/avataaars/svg"
)

// defaultRooms is the room set seeded at every startup. It is re-created on
// restart because no coordinator state survives the process.
var defaultRooms = []string{"General", "Random", "Tech Talk"}

// Config holds all configuration for the application.
type Config struct {
	Port          string
	Env           string
	DefaultRooms  []string
	AvatarBaseURL string
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "3001"),
		Env:           getEnv("ENV", "development"),
		DefaultRooms:  defaultRooms,
		AvatarBaseURL: getEnv("AVATAR_BASE_URL", defaultAvatarBaseURL),
	}

	// Override the seeded room set (comma-separated names)
	if rooms := os.Getenv("DEFAULT_ROOMS"); rooms != "" {
		cfg.DefaultRooms = nil
		for _, entry := range strings.Split(rooms, ",") {
			entry = strings.TrimSpace(entry)
			if entry != "" {
				cfg.DefaultRooms = append(cfg.DefaultRooms, entry)
			}
		}
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

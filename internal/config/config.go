package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// Discord OAuth application
	DiscordClientID     string `env:"DISCORD_CLIENT_ID,required"`
	DiscordClientSecret string `env:"DISCORD_CLIENT_SECRET,required"`

	// Guild and role used for admin access
	DiscordGuildID     string `env:"DISCORD_GUILD_ID,required"`
	DiscordAdminRoleID string `env:"DISCORD_ADMIN_ROLE_ID,required"`

	// Postgres connection string
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Secret used to sign session tokens
	SessionSecret string `env:"SESSION_SECRET,required"`

	// Bearer key the ticket bot uses to upload transcripts.
	// Uploads are refused when this is empty.
	TranscriptAPIKey string `env:"TRANSCRIPT_API_KEY"`

	// Public base URL of the site, used for OAuth redirects and
	// canonical transcript links.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from the environment, after loading a local
// .env file if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return cfg, nil
}

// CallbackURL is the OAuth redirect URI registered with Discord.
func (c *Config) CallbackURL() string {
	return c.PublicBaseURL + "/auth/callback"
}

// TranscriptURL is the canonical view URL for a ticket's transcript.
func (c *Config) TranscriptURL(ticketID string) string {
	return c.PublicBaseURL + "/transcript/" + ticketID
}

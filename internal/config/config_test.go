package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_CLIENT_ID", "client-id")
	t.Setenv("DISCORD_CLIENT_SECRET", "client-secret")
	t.Setenv("DISCORD_GUILD_ID", "guild-1")
	t.Setenv("DISCORD_ADMIN_ROLE_ID", "role-admin")
	t.Setenv("DATABASE_URL", "postgres://localhost/transcripts")
	t.Setenv("SESSION_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "http://localhost:8080", cfg.PublicBaseURL)
	assert.Empty(t, cfg.TranscriptAPIKey)
}

func TestLoadRequiresDiscordCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DISCORD_CLIENT_ID", "") // registers cleanup to restore the value
	os.Unsetenv("DISCORD_CLIENT_ID")

	_, err := Load()
	assert.Error(t, err)
}

func TestURLHelpersTrimTrailingSlash(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PUBLIC_BASE_URL", "https://tickets.example.com/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://tickets.example.com/auth/callback", cfg.CallbackURL())
	assert.Equal(t, "https://tickets.example.com/transcript/T-1", cfg.TranscriptURL("T-1"))
}

package auth

import (
	"crypto/rand"
	"encoding/hex"

	"golang.org/x/oauth2"

	"github.com/ticketwatch/transcripts/internal/config"
)

var discordEndpoint = oauth2.Endpoint{
	AuthURL:  "https://discord.com/oauth2/authorize",
	TokenURL: "https://discord.com/api/oauth2/token",
}

// NewDiscordOAuthConfig builds the authorization-code flow configuration.
// guilds.members.read is needed so the role resolver can look up the
// user's roles in the configured guild.
func NewDiscordOAuthConfig(cfg *config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.DiscordClientID,
		ClientSecret: cfg.DiscordClientSecret,
		RedirectURL:  cfg.CallbackURL(),
		Scopes:       []string{"identify", "guilds.members.read"},
		Endpoint:     discordEndpoint,
	}
}

// NewStateToken returns a random value used to pin the OAuth roundtrip to
// the browser that started it.
func NewStateToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

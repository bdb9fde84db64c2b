package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const apiBaseURL = "https://discord.com/api/v10"

// Client talks to the Discord REST API with a user's OAuth access token.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	guildID     string
	adminRoleID string
	log         zerolog.Logger
}

func NewClient(guildID, adminRoleID string, log zerolog.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		baseURL:     apiBaseURL,
		guildID:     guildID,
		adminRoleID: adminRoleID,
		log:         log,
	}
}

// User is the subset of the Discord user object the session needs.
type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name"`
}

// DisplayName prefers the global display name over the account username.
func (u *User) DisplayName() string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// FetchIdentity returns the identity of the user the access token belongs to.
func (c *Client) FetchIdentity(ctx context.Context, accessToken string) (*User, error) {
	var user User
	if err := c.get(ctx, "/users/@me", accessToken, &user); err != nil {
		return nil, fmt.Errorf("fetch identity: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("fetch identity: response missing user id")
	}
	return &user, nil
}

// ResolveAdminRole reports whether the token's user holds the admin role
// in the configured guild. Any failure resolves to false: an uncertain
// role lookup must never grant elevated access.
func (c *Client) ResolveAdminRole(ctx context.Context, accessToken string) bool {
	var member struct {
		Roles []string `json:"roles"`
	}
	path := "/users/@me/guilds/" + c.guildID + "/member"
	if err := c.get(ctx, path, accessToken, &member); err != nil {
		c.log.Error().Err(err).Str("guild_id", c.guildID).Msg("admin role lookup failed, treating as non-admin")
		return false
	}

	for _, role := range member.Roles {
		if role == c.adminRoleID {
			return true
		}
	}
	return false
}

func (c *Client) get(ctx context.Context, path, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call discord api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("discord api returned %s for %s", resp.Status, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode discord response: %w", err)
	}
	return nil
}

package twitch

import (
	"fmt"

	"github.com/nicklaw5/helix/v2"
)

type APIClient struct {
	*helix.Client
}

func NewAPIClient(clientID, clientSecret, accessToken, refreshToken string) (*APIClient, error) {
	client, err := helix.NewClient(&helix.Options{
		ClientID:        clientID,
		ClientSecret:    clientSecret,
		UserAccessToken: accessToken,
		RefreshToken:    refreshToken,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating API client: %w", err)
	}

	return &APIClient{Client: client}, nil
}

// IsLive reports whether the channel has an active stream.
func (c *APIClient) IsLive(channel string) (bool, error) {
	resp, err := c.GetStreams(&helix.StreamsParams{UserLogins: []string{channel}})
	if err != nil {
		return false, fmt.Errorf("error getting streams info: %w", err)
	}

	return len(resp.Data.Streams) > 0, nil
}

func (c *APIClient) GetUsersInfo(names ...string) ([]helix.User, error) {
	resp, err := c.GetUsers(&helix.UsersParams{Logins: names})
	if err != nil {
		return nil, fmt.Errorf("error getting users info: %w", err)
	}

	return resp.Data.Users, nil
}

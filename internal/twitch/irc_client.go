package twitch

import (
	"fmt"

	twitchIRC "github.com/gempir/go-twitch-irc/v4"
)

type IRCClient struct {
	*twitchIRC.Client
}

// NewIRCClient creates an IRC client authenticated with a valid access
// token from the token manager. The membership capability is requested
// so chatter userlists are available.
func NewIRCClient(username string, tokenManager *TokenManager) (*IRCClient, error) {
	accessToken, _, err := tokenManager.EnsureValidTokens(username)
	if err != nil {
		return nil, fmt.Errorf("error getting valid access token: %w", err)
	}

	client := twitchIRC.NewClient(username, fmt.Sprintf("oauth:%s", accessToken))
	client.Capabilities = append(client.Capabilities, twitchIRC.MembershipCapability)

	return &IRCClient{Client: client}, nil
}

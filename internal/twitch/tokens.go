package twitch

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/eitchugo/happyfool-bot/internal/crypto"
	"github.com/eitchugo/happyfool-bot/internal/db"
)

type TokensData struct {
	AccessToken  string   `json:"access_token"`
	ExpiresIn    int      `json:"expires_in"`
	RefreshToken string   `json:"refresh_token"`
	Scope        []string `json:"scope"`
	TokenType    string   `json:"token_type"`
}

type tokens struct {
	accessToken  string
	refreshToken string
}

// TokenManager keeps per-login OAuth tokens cached in memory and
// encrypted at rest in the channels table. Tokens are validated before
// use and refreshed through the refresh grant when expired.
type TokenManager struct {
	mu           sync.Mutex
	cache        map[string]tokens
	store        *db.DB
	cipher       crypto.Cipher
	clientID     string
	clientSecret string
}

func NewTokenManager(store *db.DB, cipher crypto.Cipher, clientID, clientSecret string) *TokenManager {
	return &TokenManager{
		cache:        make(map[string]tokens),
		store:        store,
		cipher:       cipher,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// EnsureValidTokens returns a currently valid access/refresh token
// pair for login, refreshing and persisting a new pair when the stored
// one has expired.
func (tm *TokenManager) EnsureValidTokens(login string) (string, string, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	pair, cached := tm.cache[login]
	if !cached {
		var err error
		pair.accessToken, pair.refreshToken, err = tm.readFromStore(login)
		if err != nil {
			return "", "", fmt.Errorf("error reading tokens: %w", err)
		}
	}

	valid, err := validateToken(pair.accessToken)
	if err != nil {
		return "", "", fmt.Errorf("error validating token: %w", err)
	}
	if valid {
		tm.cache[login] = pair
		return pair.accessToken, pair.refreshToken, nil
	}

	pair.accessToken, pair.refreshToken, err = tm.refreshTokens(pair.refreshToken)
	if err != nil {
		return "", "", fmt.Errorf("error refreshing token: %w", err)
	}

	tm.cache[login] = pair
	if err := tm.updateStoreRecord(login, pair.accessToken, pair.refreshToken); err != nil {
		return "", "", err
	}

	return pair.accessToken, pair.refreshToken, nil
}

// HasRecord reports whether tokens for login exist in the store.
func (tm *TokenManager) HasRecord(login string) (bool, error) {
	var exists bool
	err := tm.store.QueryRow("SELECT EXISTS (SELECT 1 FROM channels WHERE login = ?)", login).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking token record: %w", err)
	}
	return exists, nil
}

// CreateOrUpdateStoreRecord encrypts and upserts a token pair.
func (tm *TokenManager) CreateOrUpdateStoreRecord(id, login, accessToken, refreshToken string) error {
	encryptedAccess, err := tm.cipher.Encrypt(accessToken)
	if err != nil {
		return fmt.Errorf("error encrypting access token: %w", err)
	}

	encryptedRefresh, err := tm.cipher.Encrypt(refreshToken)
	if err != nil {
		return fmt.Errorf("error encrypting refresh token: %w", err)
	}

	var exists bool
	err = tm.store.QueryRow("SELECT EXISTS (SELECT 1 FROM channels WHERE id = ?)", id).Scan(&exists)
	if err != nil {
		return err
	}

	if exists {
		_, err = tm.store.Exec(
			"UPDATE channels SET login = ?, access_token = ?, refresh_token = ? WHERE id = ?",
			login, encryptedAccess, encryptedRefresh, id,
		)
	} else {
		_, err = tm.store.Exec(
			"INSERT INTO channels (id, login, access_token, refresh_token) VALUES (?, ?, ?, ?)",
			id, login, encryptedAccess, encryptedRefresh,
		)
	}
	if err != nil {
		return fmt.Errorf("error writing token record: %w", err)
	}

	tm.mu.Lock()
	tm.cache[login] = tokens{accessToken, refreshToken}
	tm.mu.Unlock()

	return nil
}

func (tm *TokenManager) readFromStore(login string) (string, string, error) {
	var accessToken, refreshToken string

	err := tm.store.QueryRow(
		"SELECT access_token, refresh_token FROM channels WHERE login = ?", login,
	).Scan(&accessToken, &refreshToken)
	if err != nil {
		return "", "", err
	}

	accessToken, err = tm.cipher.Decrypt(accessToken)
	if err != nil {
		return "", "", err
	}

	refreshToken, err = tm.cipher.Decrypt(refreshToken)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (tm *TokenManager) updateStoreRecord(login, accessToken, refreshToken string) error {
	accessToken, err := tm.cipher.Encrypt(accessToken)
	if err != nil {
		return fmt.Errorf("error encrypting access token: %w", err)
	}

	refreshToken, err = tm.cipher.Encrypt(refreshToken)
	if err != nil {
		return fmt.Errorf("error encrypting refresh token: %w", err)
	}

	res, err := tm.store.Exec(
		"UPDATE channels SET access_token = ?, refresh_token = ? WHERE login = ?",
		accessToken, refreshToken, login,
	)
	if err != nil {
		return fmt.Errorf("error updating token store: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("no token record for %s", login)
	}

	log.Infof("Updated tokens for %s", login)
	return nil
}

func (tm *TokenManager) refreshTokens(refreshToken string) (string, string, error) {
	resp, err := http.PostForm("https://id.twitch.tv/oauth2/token", url.Values{
		"client_id":     {tm.clientID},
		"client_secret": {tm.clientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	})
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	var data TokensData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", "", err
	}

	return data.AccessToken, data.RefreshToken, nil
}

// ExchangeCodeForTokens runs the authorization-code grant.
func (tm *TokenManager) ExchangeCodeForTokens(code, redirectURI string) (*TokensData, error) {
	resp, err := http.PostForm("https://id.twitch.tv/oauth2/token", url.Values{
		"client_id":     {tm.clientID},
		"client_secret": {tm.clientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {redirectURI},
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var data TokensData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}

	return &data, nil
}

func validateToken(accessToken string) (bool, error) {
	req, err := http.NewRequest(http.MethodHead, "https://id.twitch.tv/oauth2/validate", nil)
	if err != nil {
		return false, err
	}

	req.Header.Set("Authorization", fmt.Sprintf("OAuth %s", accessToken))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}

// Package web runs the localhost OAuth helper used to authorize the
// bot account and hand its tokens to the token manager.
package web

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/gorilla/sessions"
	log "github.com/sirupsen/logrus"

	"github.com/eitchugo/happyfool-bot/internal/config"
	"github.com/eitchugo/happyfool-bot/internal/twitch"
)

const authScopes = "chat:read chat:edit moderation:read moderator:read:chatters"

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<body>
<a href="https://id.twitch.tv/oauth2/authorize?{{.Encode}}">Authorize happyfool-bot</a>
</body>
</html>
`))

func generateSecret() string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	return base64.URLEncoding.EncodeToString(bytes)
}

func authQueryParams(cfg *config.Config) url.Values {
	params := url.Values{}
	params.Add("client_id", cfg.ClientID)
	params.Add("redirect_uri", cfg.RedirectURI)
	params.Add("response_type", "code")
	params.Add("scope", authScopes)
	params.Add("state", generateSecret())
	return params
}

// StartAuthServer serves the authorization page in the background.
func StartAuthServer(cfg *config.Config, tokenManager *twitch.TokenManager) {
	cookieStore := sessions.NewCookieStore([]byte(cfg.SessionKey))

	mux := http.NewServeMux()

	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		session, err := cookieStore.Get(r, "hf_session")
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		params := authQueryParams(cfg)
		session.Values["state"] = params.Get("state")
		if err := session.Save(r, w); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		indexTemplate.Execute(w, params)
	})

	mux.HandleFunc("GET /auth", func(w http.ResponseWriter, r *http.Request) {
		session, err := cookieStore.Get(r, "hf_session")
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		if r.URL.Query().Get("state") != session.Values["state"] {
			http.Error(w, "Invalid state", http.StatusBadRequest)
			return
		}

		if errParam := r.URL.Query().Get("error"); errParam != "" {
			http.Error(w, r.URL.Query().Get("error_description"), http.StatusBadRequest)
			return
		}

		tokens, err := tokenManager.ExchangeCodeForTokens(r.URL.Query().Get("code"), cfg.RedirectURI)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		// Resolve the authorizing account so tokens land on the
		// right record.
		apiClient, err := twitch.NewAPIClient(cfg.ClientID, cfg.ClientSecret, tokens.AccessToken, tokens.RefreshToken)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		users, err := apiClient.GetUsersInfo()
		if err != nil || len(users) == 0 {
			http.Error(w, "error resolving authorized user", http.StatusBadGateway)
			return
		}

		err = tokenManager.CreateOrUpdateStoreRecord(users[0].ID, users[0].Login, tokens.AccessToken, tokens.RefreshToken)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		log.Infof("Stored tokens for %s", users[0].Login)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.AuthServerPort)
		log.Infof("Auth server is listening on %s", addr)
		log.Error(http.ListenAndServe(addr, mux))
	}()
}

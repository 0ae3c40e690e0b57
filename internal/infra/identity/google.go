package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs-labo46/inventory-tracker/internal/domain/model"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// 外部OAuthプロバイダの設定。AuthURL/TokenURL/UserInfoURLが空ならGoogleの値
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
}

// Googleの認可コードフロー（PKCE）
type GoogleProvider struct {
	oauth       *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

func NewGoogleProvider(cfg ProviderConfig) *GoogleProvider {
	endpoint := endpoints.Google
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}
	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = googleUserInfoURL
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"openid", "email", "profile"}
	}

	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		userInfoURL: userInfoURL,
		httpClient:  http.DefaultClient,
	}
}

// テストなどでHTTPクライアントを差し替える
func (p *GoogleProvider) WithHTTPClient(c *http.Client) *GoogleProvider {
	p.httpClient = c
	return p
}

func (p *GoogleProvider) NewVerifier() string {
	return oauth2.GenerateVerifier()
}

// 同意画面（ポップアップ相当）のURL
func (p *GoogleProvider) AuthCodeURL(state string, verifier string) string {
	return p.oauth.AuthCodeURL(state,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// 認可コードをトークンに交換してユーザー情報を取る
func (p *GoogleProvider) Exchange(ctx context.Context, code string, verifier string) (model.UserIdentity, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	tok, err := p.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return model.UserIdentity{}, fmt.Errorf("token exchange: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return model.UserIdentity{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return model.UserIdentity{}, fmt.Errorf("userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return model.UserIdentity{}, fmt.Errorf("userinfo: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Sub     string `json:"sub"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return model.UserIdentity{}, fmt.Errorf("decode userinfo: %w", err)
	}
	if payload.Sub == "" {
		return model.UserIdentity{}, errors.New("missing provider user id")
	}

	return model.UserIdentity{
		Subject: payload.Sub,
		Email:   payload.Email,
		Name:    firstNonEmpty(payload.Name, payload.Email, payload.Sub),
		Picture: payload.Picture,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

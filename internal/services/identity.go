package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

type Provider string

const (
	ProviderGitHub  Provider = "github"
	ProviderBangumi Provider = "bangumi"
	ProviderOIDC    Provider = "oidc"
)

// IdentityClaims is what the core learns about a user from an identity
// provider: a stable subject plus display fields. The core never inspects
// the subject beyond equality.
type IdentityClaims struct {
	Provider  Provider
	Subject   string
	Username  string
	AvatarURL string
	Email     string
}

// OAuthProvider exchanges an authorization code for identity claims.
type OAuthProvider interface {
	Provider() Provider
	Exchange(ctx context.Context, code string) (IdentityClaims, error)
}

type OAuthProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

var errMissingOAuthConfig = errors.New("client id, secret, and redirect url are required")

func (c OAuthProviderConfig) validate() error {
	if strings.TrimSpace(c.ClientID) == "" ||
		strings.TrimSpace(c.ClientSecret) == "" ||
		strings.TrimSpace(c.RedirectURL) == "" {
		return errMissingOAuthConfig
	}
	return nil
}

// GitHubProvider resolves GitHub OAuth codes to identity claims.
type GitHubProvider struct {
	oauthConfig oauth2.Config
	apiBaseURL  string
	httpClient  *http.Client
}

func NewGitHubProvider(cfg OAuthProviderConfig) (*GitHubProvider, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &GitHubProvider{
		oauthConfig: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     github.Endpoint,
		},
		apiBaseURL: "https://api.github.com",
		httpClient: http.DefaultClient,
	}, nil
}

func (p *GitHubProvider) Provider() Provider {
	return ProviderGitHub
}

func (p *GitHubProvider) Exchange(ctx context.Context, code string) (IdentityClaims, error) {
	token, err := p.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return IdentityClaims{}, fmt.Errorf("exchanging oauth code: %w", err)
	}

	var user struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		AvatarURL string `json:"avatar_url"`
		Email     string `json:"email"`
	}
	if err := fetchJSON(ctx, p.httpClient, p.apiBaseURL+"/user", token.AccessToken, &user); err != nil {
		return IdentityClaims{}, fmt.Errorf("fetching github user: %w", err)
	}
	if user.ID == 0 {
		return IdentityClaims{}, errors.New("github user response missing id")
	}

	return IdentityClaims{
		Provider:  ProviderGitHub,
		Subject:   strconv.FormatInt(user.ID, 10),
		Username:  user.Login,
		AvatarURL: user.AvatarURL,
		Email:     user.Email,
	}, nil
}

// BangumiProvider resolves Bangumi OAuth codes to identity claims.
type BangumiProvider struct {
	oauthConfig oauth2.Config
	apiBaseURL  string
	httpClient  *http.Client
}

func NewBangumiProvider(cfg OAuthProviderConfig) (*BangumiProvider, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &BangumiProvider{
		oauthConfig: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://bgm.tv/oauth/authorize",
				TokenURL: "https://bgm.tv/oauth/access_token",
			},
		},
		apiBaseURL: "https://api.bgm.tv",
		httpClient: http.DefaultClient,
	}, nil
}

func (p *BangumiProvider) Provider() Provider {
	return ProviderBangumi
}

func (p *BangumiProvider) Exchange(ctx context.Context, code string) (IdentityClaims, error) {
	token, err := p.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return IdentityClaims{}, fmt.Errorf("exchanging oauth code: %w", err)
	}

	var user struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		Avatar   struct {
			Large string `json:"large"`
		} `json:"avatar"`
		Email *string `json:"email"`
	}
	if err := fetchJSON(ctx, p.httpClient, p.apiBaseURL+"/v0/me", token.AccessToken, &user); err != nil {
		return IdentityClaims{}, fmt.Errorf("fetching bangumi user: %w", err)
	}
	if user.ID == 0 {
		return IdentityClaims{}, errors.New("bangumi user response missing id")
	}

	email := ""
	if user.Email != nil {
		email = *user.Email
	}

	return IdentityClaims{
		Provider:  ProviderBangumi,
		Subject:   strconv.FormatInt(user.ID, 10),
		Username:  user.Username,
		AvatarURL: user.Avatar.Large,
		Email:     email,
	}, nil
}

func fetchJSON(ctx context.Context, client *http.Client, url, accessToken string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "drawwat/1.0 (https://drawwat.com)")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

package google

// Package google provides the OIDC adapter for Google sign-in.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/syaquiii/innoventum-sub001/internal/ports"
)

const defaultIssuer = "https://accounts.google.com"

// Provider implements ports.OAuthExchanger using OIDC/OAuth2 against Google.
type Provider struct {
	config   *oauth2.Config
	verifier *gooidc.IDTokenVerifier
}

var _ ports.OAuthExchanger = (*Provider)(nil)

// ProviderConfig holds configuration for the Google provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// IssuerURL overrides the Google issuer (useful for tests against a stub IdP).
	IssuerURL string
	// HTTPClient is optional; a 30s-timeout client is used when nil.
	HTTPClient *http.Client
}

// NewProvider creates a Google OIDC provider. It performs a single discovery
// fetch against the issuer.
func NewProvider(ctx context.Context, cfg ProviderConfig) (*Provider, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if cfg.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	issuer := strings.TrimSuffix(cfg.IssuerURL, "/")
	if issuer == "" {
		issuer = defaultIssuer
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{gooidc.ScopeOpenID, "profile", "email"},
			Endpoint:     op.Endpoint(),
		},
		verifier: op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

// Begin returns the provider auth URL with cryptographically secure state and nonce.
func (p *Provider) Begin(_ context.Context) (string, string, string, error) {
	state, err := randomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	authURL := p.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
	return authURL, state, nonce, nil
}

// Exchange swaps the callback code for tokens, verifies the ID token and
// nonce, and returns the asserted profile.
func (p *Provider) Exchange(ctx context.Context, code, nonce string) (ports.OAuthProfile, error) {
	if code == "" {
		return ports.OAuthProfile{}, errors.New("authorization code is required")
	}

	tok, err := p.config.Exchange(ctx, code)
	if err != nil {
		return ports.OAuthProfile{}, fmt.Errorf("exchange code for token: %w", err)
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return ports.OAuthProfile{}, errors.New("token response missing id_token")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return ports.OAuthProfile{}, fmt.Errorf("verify id_token: %w", err)
	}
	if nonce != "" && idToken.Nonce != nonce {
		return ports.OAuthProfile{}, errors.New("id_token nonce mismatch")
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return ports.OAuthProfile{}, fmt.Errorf("parse id_token claims: %w", err)
	}
	if claims.Email == "" {
		return ports.OAuthProfile{}, errors.New("id_token missing email claim")
	}
	if !claims.EmailVerified {
		return ports.OAuthProfile{}, errors.New("email is not verified by provider")
	}

	return ports.OAuthProfile{
		Email:     claims.Email,
		Name:      claims.Name,
		AvatarURL: claims.Picture,
	}, nil
}

// randomString returns n URL-safe random characters.
func randomString(n int) (string, error) {
	b := make([]byte, (n*3+3)/4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) > n {
		s = s[:n]
	}
	return s, nil
}

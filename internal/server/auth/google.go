package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/dmitrijs2005/todolist/internal/server/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleIssuer = "https://accounts.google.com"

// OAuthProvider drives the authorization code flow of a delegated
// identity provider.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	// Exchange trades the callback code for a verified profile.
	Exchange(ctx context.Context, code string) (*models.OAuthCredential, error)
}

type GoogleProvider struct {
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
}

// NewGoogleProvider discovers Google's OIDC configuration and returns a
// provider requesting the profile and email scopes.
func NewGoogleProvider(ctx context.Context, clientID, clientSecret, callbackURL string) (*GoogleProvider, error) {
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	cfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  callbackURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}
	return newGoogleProvider(cfg, provider.Verifier(&oidc.Config{ClientID: clientID})), nil
}

func newGoogleProvider(cfg *oauth2.Config, verifier *oidc.IDTokenVerifier) *GoogleProvider {
	return &GoogleProvider{oauth2Config: cfg, verifier: verifier}
}

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.oauth2Config.AuthCodeURL(state)
}

func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*models.OAuthCredential, error) {
	token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange: %v", common.ErrorUpstream, err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("%w: no id_token in token response", common.ErrorUpstream)
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to verify ID token: %v", common.ErrorUpstream, err)
	}

	var claims struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: failed to parse claims: %v", common.ErrorUpstream, err)
	}
	if claims.Email == "" || !claims.EmailVerified {
		return nil, errors.Join(common.ErrorValidation, errors.New("google account has no verified email"))
	}

	return &models.OAuthCredential{
		Email:   claims.Email,
		Subject: claims.Sub,
		Name:    claims.Name,
	}, nil
}

// ABOUTME: OAuth configuration for the username-password login flow
// ABOUTME: Builds the token endpoint from the login URL and extracts session URLs from the token
package salesforce

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

const (
	DefaultLoginURL   = "https://login.salesforce.com"
	DefaultAPIVersion = "v59.0"
)

// NewOAuthConfig creates the OAuth2 config for the connected app.
func NewOAuthConfig(loginURL, clientID, clientSecret string) *oauth2.Config {
	if loginURL == "" {
		loginURL = DefaultLoginURL
	}
	base := strings.TrimRight(loginURL, "/")

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   base + "/services/oauth2/authorize",
			TokenURL:  base + "/services/oauth2/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// session is what a successful login leaves behind.
type session struct {
	instanceURL string
	identityURL string
	http        *http.Client
}

// passwordLogin exchanges username and password for a token and returns an
// HTTP client that signs every request with it.
func passwordLogin(ctx context.Context, conf *oauth2.Config, base *http.Client, username, password string) (*session, error) {
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}

	tok, err := conf.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		return nil, err
	}

	instance, _ := tok.Extra("instance_url").(string)
	if instance == "" {
		return nil, fmt.Errorf("token response has no instance_url")
	}
	identity, _ := tok.Extra("id").(string)

	// The session client must outlive the login request context.
	clientCtx := context.Background()
	if base != nil {
		clientCtx = context.WithValue(clientCtx, oauth2.HTTPClient, base)
	}

	return &session{
		instanceURL: strings.TrimRight(instance, "/"),
		identityURL: identity,
		http:        conf.Client(clientCtx, tok),
	}, nil
}

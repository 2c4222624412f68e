package auth

import (
	"fmt"
	"strings"

	"golang.org/x/oauth2"
)

const (
	// intervals.icu OAuth endpoints
	AuthURL  = "https://intervals.icu/oauth/authorize"
	TokenURL = "https://intervals.icu/api/oauth/token"
)

// Scopes required to read thresholds and activities and to write the calendar.
// intervals.icu expects them comma-separated in a single parameter.
var Scopes = []string{
	strings.Join([]string{"ACTIVITY:READ", "WELLNESS:READ", "CALENDAR:WRITE", "SETTINGS:READ"}, ","),
}

// Config holds the OAuth client credentials
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "http://localhost:8089/callback"
}

// NewOAuthConfig creates an oauth2.Config for intervals.icu
func NewOAuthConfig(cfg Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   AuthURL,
			TokenURL:  TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: cfg.RedirectURL,
		Scopes:      Scopes,
	}
}

// AuthResult contains the token and athlete info from a successful auth
type AuthResult struct {
	Token       *oauth2.Token
	AthleteID   string
	AthleteName string
}

// ExtractAthlete reads the athlete intervals.icu embeds in the token response
func ExtractAthlete(token *oauth2.Token) (id, name string) {
	athlete, ok := token.Extra("athlete").(map[string]interface{})
	if !ok {
		return "", ""
	}
	switch v := athlete["id"].(type) {
	case string:
		id = v
	case float64:
		id = fmt.Sprintf("i%d", int64(v))
	}
	name, _ = athlete["name"].(string)
	return id, name
}

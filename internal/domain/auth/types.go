package auth

import "time"

// Config drives API token behavior. An empty Secret disables auth.
type Config struct {
	Secret   string
	TokenTTL time.Duration
}

// Token is a signed bearer token.
type Token struct {
	Token     string    `json:"token"`
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Claims are extracted from a validated token.
type Claims struct {
	Subject   string
	TokenID   string
	ExpiresAt time.Time
}

package dto

import (
	"github.com/golang-jwt/jwt/v5"
)

// GitHubUser holds the fields read from the GitHub /user endpoint.
type GitHubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// GitHubEmail is one entry from the GitHub /user/emails endpoint.
type GitHubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// GoogleUserInfo holds the identity claims read from a verified Google ID
// token.
type GoogleUserInfo struct {
	Subject   string
	Email     string
	Name      string
	Picture   string
}

// AuthClaims defines the custom claims for the session JWT.
type AuthClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// UserProfileResponse is the body of GET /api/auth/me.
type UserProfileResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// MessageResponse represents a generic message response.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error in the API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

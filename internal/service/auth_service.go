package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"hiraya/internal/cache"
	"hiraya/internal/config"
	"hiraya/internal/domain"
	"hiraya/internal/dto"
	"hiraya/internal/logger"
	"hiraya/internal/repository"
	"hiraya/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	gh "golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

const (
	githubUserURL   = "https://api.github.com/user"
	githubEmailsURL = "https://api.github.com/user/emails"
)

var (
	ErrInvalidAuthState      = errors.New("invalid oauth state")
	ErrFailedToExchangeToken = errors.New("failed to exchange oauth token")
	ErrFailedToGetUserInfo   = errors.New("failed to get user info from provider")
	ErrNonceMismatch         = errors.New("oauth nonce mismatch")
	ErrInvalidJWTToken       = errors.New("invalid jwt token")
)

// IDTokenVerifier verifies a Google ID token against the expected audience
// and returns its claims. It exists as a type so tests can substitute the
// network call.
type IDTokenVerifier func(ctx context.Context, token, audience string) (map[string]interface{}, error)

// AuthService defines the interface for authentication operations.
// The Begin methods return the authorize URL together with the state the
// handler must also set as a browser cookie; the callbacks take both the
// state echoed by the provider and the expected state read back from that
// cookie, so a state minted in one browser cannot complete a login in
// another.
type AuthService interface {
	BeginGitHubLogin(ctx context.Context) (url string, state string, err error)
	BeginGoogleLogin(ctx context.Context) (url string, state string, err error)
	HandleGitHubCallback(ctx context.Context, code, state, expectedState string) (string, error)
	HandleGoogleCallback(ctx context.Context, code, state, expectedState string) (string, error)
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
	CreateJWT(user *domain.User) (string, error)
	GetUserProfile(ctx context.Context, userID string) (*domain.User, error)
}

type authServiceImpl struct {
	userRepo     repository.UserRepository
	stateStore   cache.StateStore
	githubConfig *oauth2.Config
	googleConfig *oauth2.Config
	verifyIDTok  IDTokenVerifier
	appConfig    *config.Config
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(userRepo repository.UserRepository, stateStore cache.StateStore, appConfig *config.Config) (AuthService, error) {
	if appConfig.Auth.JWT.SecretKey == "" {
		return nil, errors.New("jwt secret key is not configured")
	}

	return &authServiceImpl{
		userRepo:   userRepo,
		stateStore: stateStore,
		githubConfig: &oauth2.Config{
			ClientID:     appConfig.Auth.GitHub.ClientID,
			ClientSecret: appConfig.Auth.GitHub.ClientSecret,
			RedirectURL:  appConfig.Auth.GitHub.RedirectURL,
			Scopes:       []string{"user:email"},
			Endpoint:     gh.Endpoint,
		},
		googleConfig: &oauth2.Config{
			ClientID:     appConfig.Auth.Google.ClientID,
			ClientSecret: appConfig.Auth.Google.ClientSecret,
			RedirectURL:  appConfig.Auth.Google.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		verifyIDTok: defaultIDTokenVerifier,
		appConfig:   appConfig,
	}, nil
}

func defaultIDTokenVerifier(ctx context.Context, token, audience string) (map[string]interface{}, error) {
	payload, err := idtoken.Validate(ctx, token, audience)
	if err != nil {
		return nil, err
	}
	return payload.Claims, nil
}

func newOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// BeginGitHubLogin stores a one-time state and returns the GitHub authorize
// URL carrying it, along with the state itself for the cookie.
func (s *authServiceImpl) BeginGitHubLogin(ctx context.Context) (string, string, error) {
	state, err := newOpaqueToken()
	if err != nil {
		return "", "", err
	}
	if err := s.stateStore.SaveState(ctx, state, "", s.appConfig.Auth.StateTTL); err != nil {
		return "", "", err
	}
	return s.githubConfig.AuthCodeURL(state), state, nil
}

// BeginGoogleLogin stores a one-time state together with a nonce that must
// come back inside the ID token.
func (s *authServiceImpl) BeginGoogleLogin(ctx context.Context) (string, string, error) {
	state, err := newOpaqueToken()
	if err != nil {
		return "", "", err
	}
	nonce, err := newOpaqueToken()
	if err != nil {
		return "", "", err
	}
	if err := s.stateStore.SaveState(ctx, state, nonce, s.appConfig.Auth.StateTTL); err != nil {
		return "", "", err
	}
	return s.googleConfig.AuthCodeURL(state, oauth2.SetAuthURLParam("nonce", nonce)), state, nil
}

// consumeState checks the provider-echoed state against the browser-bound
// one before spending the server-side copy, so an attacker's own state token
// cannot complete a callback in a victim's session.
func (s *authServiceImpl) consumeState(ctx context.Context, state, expectedState string) (string, error) {
	if state == "" || expectedState == "" || state != expectedState {
		return "", ErrInvalidAuthState
	}
	nonce, found, err := s.stateStore.ConsumeState(ctx, state)
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrInvalidAuthState
	}
	return nonce, nil
}

// HandleGitHubCallback completes the GitHub flow: state check, code exchange,
// profile and primary-email lookup, user resolution, session token.
func (s *authServiceImpl) HandleGitHubCallback(ctx context.Context, code, state, expectedState string) (string, error) {
	appLogger := logger.Get()

	if _, err := s.consumeState(ctx, state, expectedState); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.appConfig.Auth.OAuthTimeout)
	defer cancel()

	token, err := s.githubConfig.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToExchangeToken, err)
	}

	client := s.githubConfig.Client(ctx, token)

	var profile dto.GitHubUser
	if err := getJSON(client, githubUserURL, &profile); err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToGetUserInfo, err)
	}
	if profile.ID == 0 {
		return "", fmt.Errorf("%w: github profile is incomplete", ErrFailedToGetUserInfo)
	}

	var emails []dto.GitHubEmail
	primaryEmail := ""
	if err := getJSON(client, githubEmailsURL, &emails); err != nil {
		appLogger.Warn("Failed to fetch GitHub emails", zap.Error(err), zap.String("login", profile.Login))
	} else {
		for _, e := range emails {
			if e.Primary {
				primaryEmail = e.Email
				break
			}
		}
	}
	if primaryEmail == "" {
		appLogger.Warn("No primary email found for GitHub user", zap.String("login", profile.Login))
	}

	user, err := s.resolveGitHubUser(ctx, &profile, primaryEmail)
	if err != nil {
		return "", err
	}
	return s.CreateJWT(user)
}

func (s *authServiceImpl) resolveGitHubUser(ctx context.Context, profile *dto.GitHubUser, email string) (*domain.User, error) {
	appLogger := logger.Get()
	githubID := strconv.FormatInt(profile.ID, 10)

	user, err := s.userRepo.GetUserByGitHubID(ctx, githubID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user by github id: %w", err)
	}

	if user == nil {
		user = &domain.User{
			ID:        util.NewULID(),
			GitHubID:  githubID,
			Username:  profile.Login,
			Name:      profile.Name,
			Email:     email,
			AvatarURL: profile.AvatarURL,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.userRepo.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		appLogger.Info("New user created via GitHub OAuth", zap.String("userID", user.ID), zap.String("login", profile.Login))
		return user, nil
	}

	user.Username = profile.Login
	user.Name = profile.Name
	if email != "" {
		user.Email = email
	}
	user.AvatarURL = profile.AvatarURL
	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user profile: %w", err)
	}
	appLogger.Info("User logged in via GitHub OAuth", zap.String("userID", user.ID))
	return user, nil
}

// HandleGoogleCallback completes the Google flow: state check, code exchange,
// ID token verification including the stored nonce, user resolution, session
// token.
func (s *authServiceImpl) HandleGoogleCallback(ctx context.Context, code, state, expectedState string) (string, error) {
	appLogger := logger.Get()

	expectedNonce, err := s.consumeState(ctx, state, expectedState)
	if err != nil {
		return "", err
	}
	if expectedNonce == "" {
		// A state without a nonce did not come from BeginGoogleLogin.
		return "", ErrInvalidAuthState
	}

	ctx, cancel := context.WithTimeout(ctx, s.appConfig.Auth.OAuthTimeout)
	defer cancel()

	token, err := s.googleConfig.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToExchangeToken, err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", fmt.Errorf("%w: no id_token in token response", ErrFailedToGetUserInfo)
	}

	claims, err := s.verifyIDTok(ctx, rawIDToken, s.googleConfig.ClientID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToGetUserInfo, err)
	}

	if nonce, _ := claims["nonce"].(string); nonce != expectedNonce {
		return "", ErrNonceMismatch
	}

	info := dto.GoogleUserInfo{}
	info.Subject, _ = claims["sub"].(string)
	info.Email, _ = claims["email"].(string)
	info.Name, _ = claims["name"].(string)
	info.Picture, _ = claims["picture"].(string)
	if info.Subject == "" {
		return "", fmt.Errorf("%w: google id token is incomplete", ErrFailedToGetUserInfo)
	}

	user, err := s.resolveGoogleUser(ctx, &info)
	if err != nil {
		return "", err
	}
	appLogger.Info("User logged in via Google OAuth", zap.String("userID", user.ID))
	return s.CreateJWT(user)
}

func (s *authServiceImpl) resolveGoogleUser(ctx context.Context, info *dto.GoogleUserInfo) (*domain.User, error) {
	appLogger := logger.Get()

	user, err := s.userRepo.GetUserByGoogleID(ctx, info.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user by google id: %w", err)
	}

	if user == nil {
		user = &domain.User{
			ID:        util.NewULID(),
			GoogleID:  info.Subject,
			Username:  info.Email,
			Name:      info.Name,
			Email:     info.Email,
			AvatarURL: info.Picture,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.userRepo.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		appLogger.Info("New user created via Google OAuth", zap.String("userID", user.ID))
		return user, nil
	}

	user.Name = info.Name
	if info.Email != "" {
		user.Email = info.Email
	}
	user.AvatarURL = info.Picture
	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user profile: %w", err)
	}
	return user, nil
}

// CreateJWT issues the HS256 session token carrying the user id.
func (s *authServiceImpl) CreateJWT(user *domain.User) (string, error) {
	now := time.Now()
	claims := dto.AuthClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.appConfig.Auth.JWT.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   user.ID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.appConfig.Auth.JWT.SecretKey))
}

func (s *authServiceImpl) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	appLogger := logger.Get()
	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.appConfig.Auth.JWT.SecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			appLogger.Warn("JWT token expired", zap.Error(err))
		} else {
			appLogger.Warn("JWT validation failed", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}

	if claims, ok := token.Claims.(*dto.AuthClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidJWTToken
}

// GetUserProfile resolves a token's user id to the stored user record.
// Returns a not-found domain error when the row no longer exists.
func (s *authServiceImpl) GetUserProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	if user == nil {
		return nil, domain.NewUserNotFoundError(userID)
	}
	return user, nil
}

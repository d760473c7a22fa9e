package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"hiraya/internal/config"
	"hiraya/internal/domain"
	"hiraya/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/oauth2"
	gh "golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

func newTestAuthService(userRepo *MockUserRepository, stateStore *MockStateStore) *authServiceImpl {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWT: config.JWTConfig{
				SecretKey:      "test-secret-key",
				AccessTokenTTL: 24 * time.Hour,
			},
			GitHub:       config.OAuthClientConfig{ClientID: "gh-client", ClientSecret: "gh-secret"},
			Google:       config.OAuthClientConfig{ClientID: "goog-client", ClientSecret: "goog-secret"},
			StateTTL:     10 * time.Minute,
			OAuthTimeout: 10 * time.Second,
		},
	}
	return &authServiceImpl{
		userRepo:   userRepo,
		stateStore: stateStore,
		githubConfig: &oauth2.Config{
			ClientID: cfg.Auth.GitHub.ClientID,
			Scopes:   []string{"user:email"},
			Endpoint: gh.Endpoint,
		},
		googleConfig: &oauth2.Config{
			ClientID: cfg.Auth.Google.ClientID,
			Scopes:   []string{"openid", "email", "profile"},
			Endpoint: google.Endpoint,
		},
		verifyIDTok: defaultIDTokenVerifier,
		appConfig:   cfg,
	}
}

func TestCreateAndValidateJWT(t *testing.T) {
	svc := newTestAuthService(new(MockUserRepository), new(MockStateStore))

	token, err := svc.CreateJWT(&domain.User{ID: "01HTESTUSER"})
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.ValidateJWT(context.Background(), token)
	assert.NoError(t, err)
	assert.Equal(t, "01HTESTUSER", claims.UserID)
	assert.Equal(t, "01HTESTUSER", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestValidateJWTExpired(t *testing.T) {
	svc := newTestAuthService(new(MockUserRepository), new(MockStateStore))
	svc.appConfig.Auth.JWT.AccessTokenTTL = -time.Hour

	token, err := svc.CreateJWT(&domain.User{ID: "01HTESTUSER"})
	assert.NoError(t, err)

	_, err = svc.ValidateJWT(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidJWTToken)
}

func TestValidateJWTWrongSecret(t *testing.T) {
	svc := newTestAuthService(new(MockUserRepository), new(MockStateStore))
	token, err := svc.CreateJWT(&domain.User{ID: "01HTESTUSER"})
	assert.NoError(t, err)

	other := newTestAuthService(new(MockUserRepository), new(MockStateStore))
	other.appConfig.Auth.JWT.SecretKey = "different-secret"

	_, err = other.ValidateJWT(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidJWTToken)
}

func TestValidateJWTGarbage(t *testing.T) {
	svc := newTestAuthService(new(MockUserRepository), new(MockStateStore))

	_, err := svc.ValidateJWT(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidJWTToken)
}

func TestBeginGitHubLoginStoresState(t *testing.T) {
	stateStore := new(MockStateStore)
	svc := newTestAuthService(new(MockUserRepository), stateStore)

	var savedState string
	stateStore.On("SaveState", mock.Anything, mock.AnythingOfType("string"), "", 10*time.Minute).
		Run(func(args mock.Arguments) { savedState = args.String(1) }).
		Return(nil)

	url, state, err := svc.BeginGitHubLogin(context.Background())
	assert.NoError(t, err)
	assert.NotEmpty(t, savedState)
	assert.Equal(t, savedState, state)
	assert.Contains(t, url, "github.com/login/oauth/authorize")
	assert.Contains(t, url, "state="+savedState)
	stateStore.AssertExpectations(t)
}

func TestBeginGoogleLoginStoresNonce(t *testing.T) {
	stateStore := new(MockStateStore)
	svc := newTestAuthService(new(MockUserRepository), stateStore)

	var savedState, savedNonce string
	stateStore.On("SaveState", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("string"), 10*time.Minute).
		Run(func(args mock.Arguments) {
			savedState = args.String(1)
			savedNonce = args.String(2)
		}).
		Return(nil)

	url, state, err := svc.BeginGoogleLogin(context.Background())
	assert.NoError(t, err)
	assert.NotEmpty(t, savedNonce)
	assert.Equal(t, savedState, state)
	assert.NotEqual(t, state, savedNonce)
	assert.Contains(t, url, "nonce="+savedNonce)
}

func TestHandleCallbackRejectsUnknownState(t *testing.T) {
	stateStore := new(MockStateStore)
	svc := newTestAuthService(new(MockUserRepository), stateStore)

	stateStore.On("ConsumeState", mock.Anything, "forged").Return("", false, nil)

	_, err := svc.HandleGitHubCallback(context.Background(), "code", "forged", "forged")
	assert.ErrorIs(t, err, ErrInvalidAuthState)
}

func TestHandleCallbackRejectsEmptyState(t *testing.T) {
	stateStore := new(MockStateStore)
	svc := newTestAuthService(new(MockUserRepository), stateStore)

	_, err := svc.HandleGitHubCallback(context.Background(), "code", "", "")
	assert.ErrorIs(t, err, ErrInvalidAuthState)
	stateStore.AssertNotCalled(t, "ConsumeState", mock.Anything, mock.Anything)
}

// A state minted by starting a separate login must not complete a callback
// in a browser that carries a different (or no) state cookie.
func TestHandleCallbackRejectsForeignState(t *testing.T) {
	stateStore := new(MockStateStore)
	svc := newTestAuthService(new(MockUserRepository), stateStore)

	_, err := svc.HandleGitHubCallback(context.Background(), "code", "attacker-state", "victim-state")
	assert.ErrorIs(t, err, ErrInvalidAuthState)

	_, err = svc.HandleGitHubCallback(context.Background(), "code", "attacker-state", "")
	assert.ErrorIs(t, err, ErrInvalidAuthState)

	stateStore.AssertNotCalled(t, "ConsumeState", mock.Anything, mock.Anything)
}

// A stored state carrying no nonce did not come from the Google login flow
// and must not pass its callback, even with a matching cookie.
func TestHandleGoogleCallbackRequiresNonce(t *testing.T) {
	stateStore := new(MockStateStore)
	svc := newTestAuthService(new(MockUserRepository), stateStore)

	stateStore.On("ConsumeState", mock.Anything, "gh-state").Return("", true, nil)

	_, err := svc.HandleGoogleCallback(context.Background(), "code", "gh-state", "gh-state")
	assert.ErrorIs(t, err, ErrInvalidAuthState)
	stateStore.AssertExpectations(t)
}

func TestResolveGitHubUserCreatesNewUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newTestAuthService(userRepo, new(MockStateStore))

	userRepo.On("GetUserByGitHubID", mock.Anything, "12345").Return(nil, nil)
	userRepo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.GitHubID == "12345" && u.Username == "octocat" && u.Email == "octo@example.com" && u.ID != ""
	})).Return(nil)

	user, err := svc.resolveGitHubUser(context.Background(), &dto.GitHubUser{
		ID:        12345,
		Login:     "octocat",
		Name:      "The Octocat",
		AvatarURL: "https://example.com/a.png",
	}, "octo@example.com")
	assert.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	userRepo.AssertExpectations(t)
}

func TestResolveGitHubUserKeepsExistingID(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newTestAuthService(userRepo, new(MockStateStore))

	existing := &domain.User{
		ID:       "01HEXISTING",
		GitHubID: "12345",
		Username: "oldname",
		Email:    "old@example.com",
	}
	userRepo.On("GetUserByGitHubID", mock.Anything, "12345").Return(existing, nil)
	userRepo.On("UpdateProfile", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.ID == "01HEXISTING" && u.Username == "octocat" && u.Email == "new@example.com"
	})).Return(nil)

	user, err := svc.resolveGitHubUser(context.Background(), &dto.GitHubUser{
		ID:    12345,
		Login: "octocat",
	}, "new@example.com")
	assert.NoError(t, err)
	assert.Equal(t, "01HEXISTING", user.ID)
	userRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestResolveGitHubUserKeepsEmailWhenNoneReturned(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newTestAuthService(userRepo, new(MockStateStore))

	existing := &domain.User{ID: "01HEXISTING", GitHubID: "12345", Email: "kept@example.com"}
	userRepo.On("GetUserByGitHubID", mock.Anything, "12345").Return(existing, nil)
	userRepo.On("UpdateProfile", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "kept@example.com"
	})).Return(nil)

	_, err := svc.resolveGitHubUser(context.Background(), &dto.GitHubUser{ID: 12345, Login: "octocat"}, "")
	assert.NoError(t, err)
	userRepo.AssertExpectations(t)
}

func TestResolveGoogleUserCreatesNewUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newTestAuthService(userRepo, new(MockStateStore))

	userRepo.On("GetUserByGoogleID", mock.Anything, "goog-sub-1").Return(nil, nil)
	userRepo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.GoogleID == "goog-sub-1" && u.Username == "user@gmail.com" && u.ID != ""
	})).Return(nil)

	user, err := svc.resolveGoogleUser(context.Background(), &dto.GoogleUserInfo{
		Subject: "goog-sub-1",
		Email:   "user@gmail.com",
		Name:    "Some User",
	})
	assert.NoError(t, err)
	assert.Equal(t, "user@gmail.com", user.Email)
}

func TestGetUserProfileNotFound(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newTestAuthService(userRepo, new(MockStateStore))

	userRepo.On("GetUserByID", mock.Anything, "gone").Return(nil, nil)

	_, err := svc.GetUserProfile(context.Background(), "gone")
	var domainErr *domain.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeUserNotFound, domainErr.Code)
}

func TestNewOpaqueTokenIsURLSafe(t *testing.T) {
	token, err := newOpaqueToken()
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.False(t, strings.ContainsAny(token, "+/="))

	other, err := newOpaqueToken()
	assert.NoError(t, err)
	assert.NotEqual(t, token, other)
}

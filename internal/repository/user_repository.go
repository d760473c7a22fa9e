package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hiraya/internal/domain"
	"hiraya/internal/repository/models"
	"hiraya/internal/util"

	"github.com/jmoiron/sqlx"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	GetUserByGitHubID(ctx context.Context, githubID string) (*domain.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
}

type sqlxUserRepository struct {
	db *sqlx.DB
}

// NewSQLXUserRepository creates a new instance of sqlxUserRepository.
func NewSQLXUserRepository(db *sqlx.DB) UserRepository {
	return &sqlxUserRepository{db: db}
}

func toDomainUser(m *models.User) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		ID:        m.ID,
		GitHubID:  util.NullStringToString(m.GitHubID),
		GoogleID:  util.NullStringToString(m.GoogleID),
		Username:  util.NullStringToString(m.Username),
		Name:      util.NullStringToString(m.Name),
		Email:     util.NullStringToString(m.Email),
		AvatarURL: util.NullStringToString(m.AvatarURL),
		CreatedAt: m.CreatedAt,
	}
}

func fromDomainUser(u *domain.User) *models.User {
	if u == nil {
		return nil
	}
	return &models.User{
		ID:        u.ID,
		GitHubID:  util.StringToNullString(u.GitHubID),
		GoogleID:  util.StringToNullString(u.GoogleID),
		Username:  util.StringToNullString(u.Username),
		Name:      util.StringToNullString(u.Name),
		Email:     util.StringToNullString(u.Email),
		AvatarURL: util.StringToNullString(u.AvatarURL),
		CreatedAt: u.CreatedAt,
	}
}

// CreateUser inserts a new user row.
func (r *sqlxUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	model := fromDomainUser(user)
	query := `INSERT INTO users (id, github_id, google_id, username, name, email, avatar_url, created_at)
	          VALUES (:id, :github_id, :google_id, :username, :name, :email, :avatar_url, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, model); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *sqlxUserRepository) getUserBy(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // not found is not an error, services decide
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return toDomainUser(&user), nil
}

// GetUserByID retrieves a user by their internal ID.
func (r *sqlxUserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return r.getUserBy(ctx, `SELECT * FROM users WHERE id = $1`, userID)
}

// GetUserByGitHubID retrieves a user by their GitHub account id.
func (r *sqlxUserRepository) GetUserByGitHubID(ctx context.Context, githubID string) (*domain.User, error) {
	return r.getUserBy(ctx, `SELECT * FROM users WHERE github_id = $1`, githubID)
}

// GetUserByGoogleID retrieves a user by their Google account id.
func (r *sqlxUserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	return r.getUserBy(ctx, `SELECT * FROM users WHERE google_id = $1`, googleID)
}

// UpdateProfile refreshes the mutable display fields from a fresh OAuth
// profile. Identity columns are never touched here.
func (r *sqlxUserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	model := fromDomainUser(user)
	query := `UPDATE users SET
	            username = :username,
	            name = :name,
	            email = :email,
	            avatar_url = :avatar_url
	          WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, model)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

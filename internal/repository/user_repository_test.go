package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"hiraya/internal/domain"
	"hiraya/internal/repository/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

// setupTestDB creates a new sqlx.DB instance backed by sqlmock for repository
// testing.
func setupTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	return sqlxDB, mock
}

var userColumns = []string{"id", "github_id", "google_id", "username", "name", "email", "avatar_url", "created_at"}

func TestToDomainUser(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	modelUser := &models.User{
		ID:        "01HUSER",
		GitHubID:  sql.NullString{String: "12345", Valid: true},
		Username:  sql.NullString{String: "octocat", Valid: true},
		Name:      sql.NullString{String: "The Octocat", Valid: true},
		Email:     sql.NullString{String: "octo@example.com", Valid: true},
		AvatarURL: sql.NullString{String: "http://example.com/a.png", Valid: true},
		CreatedAt: now,
	}

	domainUser := toDomainUser(modelUser)
	assert.NotNil(t, domainUser)
	assert.Equal(t, "01HUSER", domainUser.ID)
	assert.Equal(t, "12345", domainUser.GitHubID)
	assert.Equal(t, "", domainUser.GoogleID)
	assert.Equal(t, "octocat", domainUser.Username)
	assert.Equal(t, "octo@example.com", domainUser.Email)
	assert.True(t, now.Equal(domainUser.CreatedAt))

	// NullString invalid collapses to empty
	modelUser.Email.Valid = false
	domainUser = toDomainUser(modelUser)
	assert.Equal(t, "", domainUser.Email)

	assert.Nil(t, toDomainUser(nil))
}

func TestFromDomainUser(t *testing.T) {
	domainUser := &domain.User{
		ID:       "01HUSER",
		GoogleID: "goog-sub-1",
		Username: "user@gmail.com",
	}

	modelUser := fromDomainUser(domainUser)
	assert.NotNil(t, modelUser)
	assert.True(t, modelUser.GoogleID.Valid)
	assert.Equal(t, "goog-sub-1", modelUser.GoogleID.String)
	assert.False(t, modelUser.GitHubID.Valid)
	assert.False(t, modelUser.Email.Valid)

	assert.Nil(t, fromDomainUser(nil))
}

func TestSQLXUserRepository_GetUserByGitHubID_Success(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXUserRepository(db)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(userColumns).
		AddRow("01HUSER", "12345", nil, "octocat", "The Octocat", "octo@example.com", nil, now)

	mock.ExpectQuery(`SELECT \* FROM users WHERE github_id = \$1`).
		WithArgs("12345").
		WillReturnRows(rows)

	user, err := repo.GetUserByGitHubID(context.Background(), "12345")
	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, "01HUSER", user.ID)
	assert.Equal(t, "12345", user.GitHubID)
	assert.Equal(t, "", user.GoogleID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXUserRepository_GetUserByGitHubID_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXUserRepository(db)
	defer db.Close()

	mock.ExpectQuery(`SELECT \* FROM users WHERE github_id = \$1`).
		WithArgs("99999").
		WillReturnError(sql.ErrNoRows)

	user, err := repo.GetUserByGitHubID(context.Background(), "99999")
	assert.NoError(t, err, "not found is not an error at the repository level")
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXUserRepository_GetUserByID_QueryError(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXUserRepository(db)
	defer db.Close()

	dbErr := errors.New("connection reset")
	mock.ExpectQuery(`SELECT \* FROM users WHERE id = \$1`).
		WithArgs("01HUSER").
		WillReturnError(dbErr)

	user, err := repo.GetUserByID(context.Background(), "01HUSER")
	assert.ErrorIs(t, err, dbErr)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXUserRepository_CreateUser_Success(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXUserRepository(db)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.CreateUser(context.Background(), &domain.User{
		ID:        "01HNEWUSER",
		GitHubID:  "12345",
		Username:  "octocat",
		CreatedAt: time.Now().UTC(),
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXUserRepository_UpdateProfile(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXUserRepository(db)
	defer db.Close()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET`)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateProfile(context.Background(), &domain.User{ID: "01HUSER", Username: "octocat"})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NoRowMatched", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET`)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateProfile(context.Background(), &domain.User{ID: "gone"})
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

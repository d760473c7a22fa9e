package service

import (
	"context"
	"os"
	"testing"
	"time"

	"hiraya/internal/config"
	"hiraya/internal/domain"
	"hiraya/internal/logger"
	"hiraya/internal/repository"

	"github.com/stretchr/testify/mock"
)

// TestMain initializes the global logger for all tests in this package.
func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{Level: "debug"}); err != nil {
		panic("Failed to initialize logger for tests: " + err.Error())
	}
	exitVal := m.Run()
	_ = logger.Sync()
	os.Exit(exitVal)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetUserByGitHubID(ctx context.Context, githubID string) (*domain.User, error) {
	args := m.Called(ctx, githubID)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	args := m.Called(ctx, googleID)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type MockStateStore struct {
	mock.Mock
}

func (m *MockStateStore) SaveState(ctx context.Context, state, nonce string, ttl time.Duration) error {
	args := m.Called(ctx, state, nonce, ttl)
	return args.Error(0)
}

func (m *MockStateStore) ConsumeState(ctx context.Context, state string) (string, bool, error) {
	args := m.Called(ctx, state)
	return args.String(0), args.Bool(1), args.Error(2)
}

type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) UpsertAnswer(ctx context.Context, answer *domain.UserAnswer) error {
	args := m.Called(ctx, answer)
	return args.Error(0)
}

func (m *MockProgressRepository) ListAnswersByExam(ctx context.Context, userID, examID string) ([]domain.UserAnswer, error) {
	args := m.Called(ctx, userID, examID)
	if a := args.Get(0); a != nil {
		return a.([]domain.UserAnswer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProgressRepository) CountAnswersByExam(ctx context.Context, userID, examID string) (int, error) {
	args := m.Called(ctx, userID, examID)
	return args.Int(0), args.Error(1)
}

func (m *MockProgressRepository) ToggleFavorite(ctx context.Context, fav *domain.FavoriteQuestion) (bool, error) {
	args := m.Called(ctx, fav)
	return args.Bool(0), args.Error(1)
}

func (m *MockProgressRepository) ListFavoritesByExam(ctx context.Context, userID, examID string) ([]domain.FavoriteQuestion, error) {
	args := m.Called(ctx, userID, examID)
	if f := args.Get(0); f != nil {
		return f.([]domain.FavoriteQuestion), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProgressRepository) UpsertVisit(ctx context.Context, userID, examID string, at time.Time) error {
	args := m.Called(ctx, userID, examID, at)
	return args.Error(0)
}

func (m *MockProgressRepository) GetVisit(ctx context.Context, userID, examID string) (*domain.ExamVisit, error) {
	args := m.Called(ctx, userID, examID)
	if v := args.Get(0); v != nil {
		return v.(*domain.ExamVisit), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProgressRepository) GetPreference(ctx context.Context, userID string) (*domain.UserPreference, error) {
	args := m.Called(ctx, userID)
	if p := args.Get(0); p != nil {
		return p.(*domain.UserPreference), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProgressRepository) SetLastVisitedExam(ctx context.Context, userID, examID string) error {
	args := m.Called(ctx, userID, examID)
	return args.Error(0)
}

func (m *MockProgressRepository) SetSidebarCollapsed(ctx context.Context, userID string, collapsed bool) error {
	args := m.Called(ctx, userID, collapsed)
	return args.Error(0)
}

func (m *MockProgressRepository) ListTouchedExams(ctx context.Context, userID string) ([]repository.TouchedExam, error) {
	args := m.Called(ctx, userID)
	if e := args.Get(0); e != nil {
		return e.([]repository.TouchedExam), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProgressRepository) DeleteProgressByExamIDs(ctx context.Context, userID string, examIDs []string) error {
	args := m.Called(ctx, userID, examIDs)
	return args.Error(0)
}

func (m *MockProgressRepository) DeleteAllProgress(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) CreateAttempt(ctx context.Context, attempt *domain.ExamAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) ListAttemptsByExam(ctx context.Context, userID, examID string) ([]domain.ExamAttempt, error) {
	args := m.Called(ctx, userID, examID)
	if a := args.Get(0); a != nil {
		return a.([]domain.ExamAttempt), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAttemptRepository) GetLatestAttempt(ctx context.Context, userID, examID string) (*domain.ExamAttempt, error) {
	args := m.Called(ctx, userID, examID)
	if a := args.Get(0); a != nil {
		return a.(*domain.ExamAttempt), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockContentRepository struct {
	mock.Mock
}

func (m *MockContentRepository) ListProviders(ctx context.Context) ([]domain.Provider, error) {
	args := m.Called(ctx)
	if p := args.Get(0); p != nil {
		return p.([]domain.Provider), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockContentRepository) ListProvidersPage(ctx context.Context, page, perPage int) ([]domain.Provider, int, error) {
	args := m.Called(ctx, page, perPage)
	if p := args.Get(0); p != nil {
		return p.([]domain.Provider), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *MockContentRepository) GetProviderByName(ctx context.Context, name string) (*domain.Provider, error) {
	args := m.Called(ctx, name)
	if p := args.Get(0); p != nil {
		return p.(*domain.Provider), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockContentRepository) ListExamsByProvider(ctx context.Context, providerID int64) ([]domain.Exam, error) {
	args := m.Called(ctx, providerID)
	if e := args.Get(0); e != nil {
		return e.([]domain.Exam), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockContentRepository) GetProviderCounts(ctx context.Context) (map[int64]repository.ProviderExamCounts, error) {
	args := m.Called(ctx)
	if c := args.Get(0); c != nil {
		return c.(map[int64]repository.ProviderExamCounts), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockContentRepository) GetExamByID(ctx context.Context, examID string) (*domain.Exam, error) {
	args := m.Called(ctx, examID)
	if e := args.Get(0); e != nil {
		return e.(*domain.Exam), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockContentRepository) FindExamByProviderAndTitle(ctx context.Context, providerID int64, title string) (*domain.Exam, error) {
	args := m.Called(ctx, providerID, title)
	if e := args.Get(0); e != nil {
		return e.(*domain.Exam), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockContentRepository) FindExamByIDPrefix(ctx context.Context, providerID int64, idPrefix string) (*domain.Exam, error) {
	args := m.Called(ctx, providerID, idPrefix)
	if e := args.Get(0); e != nil {
		return e.(*domain.Exam), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockContentRepository) FindExamByTitlePattern(ctx context.Context, providerName, titlePattern string) (*domain.Exam, error) {
	args := m.Called(ctx, providerName, titlePattern)
	if e := args.Get(0); e != nil {
		return e.(*domain.Exam), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockContentRepository) GetTopicsByExamID(ctx context.Context, examID string) ([]domain.Topic, error) {
	args := m.Called(ctx, examID)
	if t := args.Get(0); t != nil {
		return t.([]domain.Topic), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockContentRepository) GetExamIDsByProviderNames(ctx context.Context, names []string) ([]string, error) {
	args := m.Called(ctx, names)
	if ids := args.Get(0); ids != nil {
		return ids.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockContentRepository) UpsertProvider(ctx context.Context, name string, isPopular bool) (*domain.Provider, error) {
	args := m.Called(ctx, name, isPopular)
	if p := args.Get(0); p != nil {
		return p.(*domain.Provider), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockContentRepository) UpsertExam(ctx context.Context, exam *domain.Exam) error {
	args := m.Called(ctx, exam)
	return args.Error(0)
}

func (m *MockContentRepository) UpsertTopic(ctx context.Context, examID string, number int, questions []domain.Question) error {
	args := m.Called(ctx, examID, number, questions)
	return args.Error(0)
}

type MockExamResolver struct {
	mock.Mock
}

func (m *MockExamResolver) ResolveExam(ctx context.Context, examID string) (*domain.Exam, error) {
	args := m.Called(ctx, examID)
	if e := args.Get(0); e != nil {
		return e.(*domain.Exam), args.Error(1)
	}
	return nil, args.Error(1)
}

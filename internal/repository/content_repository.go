package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"hiraya/internal/domain"
	"hiraya/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// ProviderExamCounts aggregates exam/question totals for one provider.
type ProviderExamCounts struct {
	TotalExams     int
	TotalQuestions int
}

// ContentRepository defines read and load operations over the read-mostly
// provider/exam/topic content store.
type ContentRepository interface {
	ListProviders(ctx context.Context) ([]domain.Provider, error)
	ListProvidersPage(ctx context.Context, page, perPage int) ([]domain.Provider, int, error)
	GetProviderByName(ctx context.Context, name string) (*domain.Provider, error)
	ListExamsByProvider(ctx context.Context, providerID int64) ([]domain.Exam, error)
	GetProviderCounts(ctx context.Context) (map[int64]ProviderExamCounts, error)
	GetExamByID(ctx context.Context, examID string) (*domain.Exam, error)
	FindExamByProviderAndTitle(ctx context.Context, providerID int64, title string) (*domain.Exam, error)
	FindExamByIDPrefix(ctx context.Context, providerID int64, idPrefix string) (*domain.Exam, error)
	FindExamByTitlePattern(ctx context.Context, providerName, titlePattern string) (*domain.Exam, error)
	GetTopicsByExamID(ctx context.Context, examID string) ([]domain.Topic, error)
	GetExamIDsByProviderNames(ctx context.Context, names []string) ([]string, error)

	UpsertProvider(ctx context.Context, name string, isPopular bool) (*domain.Provider, error)
	UpsertExam(ctx context.Context, exam *domain.Exam) error
	UpsertTopic(ctx context.Context, examID string, number int, questions []domain.Question) error
}

type sqlxContentRepository struct {
	db *sqlx.DB
}

// NewSQLXContentRepository creates a new instance of sqlxContentRepository.
func NewSQLXContentRepository(db *sqlx.DB) ContentRepository {
	return &sqlxContentRepository{db: db}
}

func toDomainProvider(m *models.Provider) *domain.Provider {
	if m == nil {
		return nil
	}
	return &domain.Provider{ID: m.ID, Name: m.Name, IsPopular: m.IsPopular}
}

func toDomainExam(m *models.Exam) *domain.Exam {
	if m == nil {
		return nil
	}
	return &domain.Exam{
		ID:             m.ID,
		Title:          m.Title,
		TotalQuestions: m.TotalQuestions,
		ProviderID:     m.ProviderID,
	}
}

func toDomainTopic(m *models.Topic) (*domain.Topic, error) {
	if m == nil {
		return nil, nil
	}
	var questions []domain.Question
	if len(m.Data) > 0 {
		if err := json.Unmarshal(m.Data, &questions); err != nil {
			return nil, fmt.Errorf("failed to decode topic %d data: %w", m.Number, err)
		}
	}
	return &domain.Topic{
		ID:        m.ID,
		Number:    m.Number,
		ExamID:    m.ExamID,
		Questions: questions,
	}, nil
}

func (r *sqlxContentRepository) ListProviders(ctx context.Context) ([]domain.Provider, error) {
	var rows []models.Provider
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM provider ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	providers := make([]domain.Provider, len(rows))
	for i := range rows {
		providers[i] = *toDomainProvider(&rows[i])
	}
	return providers, nil
}

func (r *sqlxContentRepository) ListProvidersPage(ctx context.Context, page, perPage int) ([]domain.Provider, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM provider`); err != nil {
		return nil, 0, fmt.Errorf("failed to count providers: %w", err)
	}

	var rows []models.Provider
	query := `SELECT * FROM provider ORDER BY name LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &rows, query, perPage, (page-1)*perPage); err != nil {
		return nil, 0, fmt.Errorf("failed to list providers page: %w", err)
	}

	providers := make([]domain.Provider, len(rows))
	for i := range rows {
		providers[i] = *toDomainProvider(&rows[i])
	}
	return providers, total, nil
}

func (r *sqlxContentRepository) GetProviderByName(ctx context.Context, name string) (*domain.Provider, error) {
	var provider models.Provider
	if err := r.db.GetContext(ctx, &provider, `SELECT * FROM provider WHERE name = $1`, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get provider by name: %w", err)
	}
	return toDomainProvider(&provider), nil
}

func (r *sqlxContentRepository) ListExamsByProvider(ctx context.Context, providerID int64) ([]domain.Exam, error) {
	var rows []models.Exam
	query := `SELECT * FROM exam WHERE provider_id = $1`
	if err := r.db.SelectContext(ctx, &rows, query, providerID); err != nil {
		return nil, fmt.Errorf("failed to list exams for provider %d: %w", providerID, err)
	}
	exams := make([]domain.Exam, len(rows))
	for i := range rows {
		exams[i] = *toDomainExam(&rows[i])
	}
	return exams, nil
}

// GetProviderCounts returns per-provider exam and question totals via a
// single grouped outer join, keyed by provider id.
func (r *sqlxContentRepository) GetProviderCounts(ctx context.Context) (map[int64]ProviderExamCounts, error) {
	var rows []models.ProviderStat
	query := `SELECT p.id AS provider_id,
	                 COUNT(e.id) AS total_exams,
	                 COALESCE(SUM(e.total_questions), 0) AS total_questions
	          FROM provider p
	          LEFT JOIN exam e ON e.provider_id = p.id
	          GROUP BY p.id`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to aggregate provider counts: %w", err)
	}

	counts := make(map[int64]ProviderExamCounts, len(rows))
	for _, row := range rows {
		counts[row.ProviderID] = ProviderExamCounts{
			TotalExams:     row.TotalExams,
			TotalQuestions: row.TotalQuestions,
		}
	}
	return counts, nil
}

func (r *sqlxContentRepository) GetExamByID(ctx context.Context, examID string) (*domain.Exam, error) {
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, `SELECT * FROM exam WHERE id = $1`, examID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get exam by id: %w", err)
	}
	return toDomainExam(&exam), nil
}

func (r *sqlxContentRepository) FindExamByProviderAndTitle(ctx context.Context, providerID int64, title string) (*domain.Exam, error) {
	var exam models.Exam
	query := `SELECT * FROM exam WHERE provider_id = $1 AND title = $2`
	if err := r.db.GetContext(ctx, &exam, query, providerID, title); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find exam by title: %w", err)
	}
	return toDomainExam(&exam), nil
}

func (r *sqlxContentRepository) FindExamByIDPrefix(ctx context.Context, providerID int64, idPrefix string) (*domain.Exam, error) {
	var exam models.Exam
	query := `SELECT * FROM exam WHERE provider_id = $1 AND id ILIKE $2 LIMIT 1`
	if err := r.db.GetContext(ctx, &exam, query, providerID, idPrefix+"%"); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find exam by id prefix: %w", err)
	}
	return toDomainExam(&exam), nil
}

// FindExamByTitlePattern is the loose fallback used when a client sends a
// stale or partially encoded exam id: match any exam of the named provider
// whose title contains the pattern.
func (r *sqlxContentRepository) FindExamByTitlePattern(ctx context.Context, providerName, titlePattern string) (*domain.Exam, error) {
	var exam models.Exam
	query := `SELECT * FROM exam WHERE id ILIKE $1 AND title ILIKE $2 LIMIT 1`
	if err := r.db.GetContext(ctx, &exam, query, providerName+"-%", "%"+titlePattern+"%"); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find exam by title pattern: %w", err)
	}
	return toDomainExam(&exam), nil
}

func (r *sqlxContentRepository) GetTopicsByExamID(ctx context.Context, examID string) ([]domain.Topic, error) {
	var rows []models.Topic
	query := `SELECT * FROM topic WHERE exam_id = $1 ORDER BY number`
	if err := r.db.SelectContext(ctx, &rows, query, examID); err != nil {
		return nil, fmt.Errorf("failed to list topics for exam %s: %w", examID, err)
	}

	topics := make([]domain.Topic, 0, len(rows))
	for i := range rows {
		topic, err := toDomainTopic(&rows[i])
		if err != nil {
			return nil, err
		}
		topics = append(topics, *topic)
	}
	return topics, nil
}

func (r *sqlxContentRepository) GetExamIDsByProviderNames(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		`SELECT e.id FROM exam e JOIN provider p ON p.id = e.provider_id WHERE p.name IN (?)`, names)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider exam query: %w", err)
	}

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list exam ids for providers: %w", err)
	}
	return ids, nil
}

// UpsertProvider inserts the provider if new and returns the stored row
// either way.
func (r *sqlxContentRepository) UpsertProvider(ctx context.Context, name string, isPopular bool) (*domain.Provider, error) {
	var provider models.Provider
	query := `INSERT INTO provider (name, is_popular) VALUES ($1, $2)
	          ON CONFLICT (name) DO UPDATE SET is_popular = EXCLUDED.is_popular
	          RETURNING id, name, is_popular`
	if err := r.db.GetContext(ctx, &provider, query, name, isPopular); err != nil {
		return nil, fmt.Errorf("failed to upsert provider %s: %w", name, err)
	}
	return toDomainProvider(&provider), nil
}

func (r *sqlxContentRepository) UpsertExam(ctx context.Context, exam *domain.Exam) error {
	query := `INSERT INTO exam (id, title, total_questions, provider_id)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (id) DO UPDATE SET
	            title = EXCLUDED.title,
	            total_questions = EXCLUDED.total_questions`
	if _, err := r.db.ExecContext(ctx, query, exam.ID, exam.Title, exam.TotalQuestions, exam.ProviderID); err != nil {
		return fmt.Errorf("failed to upsert exam %s: %w", exam.ID, err)
	}
	return nil
}

// UpsertTopic replaces the topic's question payload on re-runs of the loader.
func (r *sqlxContentRepository) UpsertTopic(ctx context.Context, examID string, number int, questions []domain.Question) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("failed to encode topic %d data: %w", number, err)
	}

	query := `INSERT INTO topic (exam_id, number, data) VALUES ($1, $2, $3)
	          ON CONFLICT (exam_id, number) DO UPDATE SET data = EXCLUDED.data`
	if _, err := r.db.ExecContext(ctx, query, examID, number, data); err != nil {
		return fmt.Errorf("failed to upsert topic %d for exam %s: %w", number, examID, err)
	}
	return nil
}

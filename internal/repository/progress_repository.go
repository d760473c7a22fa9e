package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hiraya/internal/domain"
	"hiraya/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// TouchedExam is one exam a user has interacted with in any form, carrying
// the content fields the progress aggregator needs alongside the id.
type TouchedExam struct {
	ExamID         string
	Title          string
	TotalQuestions int
	ProviderName   string
	IsPopular      bool
}

// ProgressRepository covers per-user mutable study state: saved answers,
// favorites, visits and UI preferences.
type ProgressRepository interface {
	UpsertAnswer(ctx context.Context, answer *domain.UserAnswer) error
	ListAnswersByExam(ctx context.Context, userID, examID string) ([]domain.UserAnswer, error)
	CountAnswersByExam(ctx context.Context, userID, examID string) (int, error)

	ToggleFavorite(ctx context.Context, fav *domain.FavoriteQuestion) (bool, error)
	ListFavoritesByExam(ctx context.Context, userID, examID string) ([]domain.FavoriteQuestion, error)

	UpsertVisit(ctx context.Context, userID, examID string, at time.Time) error
	GetVisit(ctx context.Context, userID, examID string) (*domain.ExamVisit, error)

	GetPreference(ctx context.Context, userID string) (*domain.UserPreference, error)
	SetLastVisitedExam(ctx context.Context, userID, examID string) error
	SetSidebarCollapsed(ctx context.Context, userID string, collapsed bool) error

	ListTouchedExams(ctx context.Context, userID string) ([]TouchedExam, error)
	DeleteProgressByExamIDs(ctx context.Context, userID string, examIDs []string) error
	DeleteAllProgress(ctx context.Context, userID string) error
}

type sqlxProgressRepository struct {
	db *sqlx.DB
}

// NewSQLXProgressRepository creates a new instance of sqlxProgressRepository.
func NewSQLXProgressRepository(db *sqlx.DB) ProgressRepository {
	return &sqlxProgressRepository{db: db}
}

func toDomainAnswer(m *models.UserAnswer) *domain.UserAnswer {
	if m == nil {
		return nil
	}
	return &domain.UserAnswer{
		UserID:          m.UserID,
		ExamID:          m.ExamID,
		TopicNumber:     m.TopicNumber,
		QuestionIndex:   m.QuestionIndex,
		SelectedOptions: []int(m.SelectedOptions),
	}
}

func toDomainFavorite(m *models.FavoriteQuestion) *domain.FavoriteQuestion {
	if m == nil {
		return nil
	}
	return &domain.FavoriteQuestion{
		UserID:        m.UserID,
		ExamID:        m.ExamID,
		TopicNumber:   m.TopicNumber,
		QuestionIndex: m.QuestionIndex,
	}
}

func toDomainVisit(m *models.ExamVisit) *domain.ExamVisit {
	if m == nil {
		return nil
	}
	return &domain.ExamVisit{
		UserID:         m.UserID,
		ExamID:         m.ExamID,
		FirstVisitDate: m.FirstVisitDate,
		LastVisitDate:  m.LastVisitDate,
	}
}

func toDomainPreference(m *models.UserPreference) *domain.UserPreference {
	if m == nil {
		return nil
	}
	pref := &domain.UserPreference{
		UserID:             m.UserID,
		IsSidebarCollapsed: m.IsSidebarCollapsed,
	}
	if m.LastVisitedExam.Valid {
		pref.LastVisitedExam = m.LastVisitedExam.String
	}
	return pref
}

// UpsertAnswer stores the selection for one question, replacing any earlier
// selection for the same question atomically.
func (r *sqlxProgressRepository) UpsertAnswer(ctx context.Context, answer *domain.UserAnswer) error {
	query := `INSERT INTO user_answer (user_id, exam_id, topic_number, question_index, selected_options)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (user_id, exam_id, topic_number, question_index)
	          DO UPDATE SET selected_options = EXCLUDED.selected_options`
	_, err := r.db.ExecContext(ctx, query,
		answer.UserID, answer.ExamID, answer.TopicNumber, answer.QuestionIndex,
		models.IntSlice(answer.SelectedOptions))
	if err != nil {
		return fmt.Errorf("failed to upsert answer: %w", err)
	}
	return nil
}

func (r *sqlxProgressRepository) ListAnswersByExam(ctx context.Context, userID, examID string) ([]domain.UserAnswer, error) {
	var rows []models.UserAnswer
	query := `SELECT * FROM user_answer WHERE user_id = $1 AND exam_id = $2
	          ORDER BY topic_number, question_index`
	if err := r.db.SelectContext(ctx, &rows, query, userID, examID); err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	answers := make([]domain.UserAnswer, len(rows))
	for i := range rows {
		answers[i] = *toDomainAnswer(&rows[i])
	}
	return answers, nil
}

func (r *sqlxProgressRepository) CountAnswersByExam(ctx context.Context, userID, examID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM user_answer WHERE user_id = $1 AND exam_id = $2`
	if err := r.db.GetContext(ctx, &count, query, userID, examID); err != nil {
		return 0, fmt.Errorf("failed to count answers: %w", err)
	}
	return count, nil
}

// ToggleFavorite removes the row if present, otherwise inserts it. Returns
// true when the question ends up favorited. The delete-first shape keeps the
// toggle atomic without an explicit existence check.
func (r *sqlxProgressRepository) ToggleFavorite(ctx context.Context, fav *domain.FavoriteQuestion) (bool, error) {
	delQuery := `DELETE FROM favorite_question
	             WHERE user_id = $1 AND exam_id = $2 AND topic_number = $3 AND question_index = $4
	             RETURNING id`
	var deletedID int64
	err := r.db.GetContext(ctx, &deletedID, delQuery,
		fav.UserID, fav.ExamID, fav.TopicNumber, fav.QuestionIndex)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("failed to toggle favorite: %w", err)
	}

	insQuery := `INSERT INTO favorite_question (user_id, exam_id, topic_number, question_index)
	             VALUES ($1, $2, $3, $4)
	             ON CONFLICT (user_id, exam_id, topic_number, question_index) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, insQuery,
		fav.UserID, fav.ExamID, fav.TopicNumber, fav.QuestionIndex); err != nil {
		return false, fmt.Errorf("failed to add favorite: %w", err)
	}
	return true, nil
}

func (r *sqlxProgressRepository) ListFavoritesByExam(ctx context.Context, userID, examID string) ([]domain.FavoriteQuestion, error) {
	var rows []models.FavoriteQuestion
	query := `SELECT * FROM favorite_question WHERE user_id = $1 AND exam_id = $2
	          ORDER BY topic_number, question_index`
	if err := r.db.SelectContext(ctx, &rows, query, userID, examID); err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	favorites := make([]domain.FavoriteQuestion, len(rows))
	for i := range rows {
		favorites[i] = *toDomainFavorite(&rows[i])
	}
	return favorites, nil
}

// UpsertVisit records a visit, preserving the first visit date and advancing
// the last one.
func (r *sqlxProgressRepository) UpsertVisit(ctx context.Context, userID, examID string, at time.Time) error {
	query := `INSERT INTO exam_visit (user_id, exam_id, first_visit_date, last_visit_date)
	          VALUES ($1, $2, $3, $3)
	          ON CONFLICT (user_id, exam_id) DO UPDATE SET last_visit_date = EXCLUDED.last_visit_date`
	if _, err := r.db.ExecContext(ctx, query, userID, examID, at); err != nil {
		return fmt.Errorf("failed to upsert visit: %w", err)
	}
	return nil
}

func (r *sqlxProgressRepository) GetVisit(ctx context.Context, userID, examID string) (*domain.ExamVisit, error) {
	var visit models.ExamVisit
	query := `SELECT * FROM exam_visit WHERE user_id = $1 AND exam_id = $2`
	if err := r.db.GetContext(ctx, &visit, query, userID, examID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get visit: %w", err)
	}
	return toDomainVisit(&visit), nil
}

func (r *sqlxProgressRepository) GetPreference(ctx context.Context, userID string) (*domain.UserPreference, error) {
	var pref models.UserPreference
	query := `SELECT * FROM user_preference WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &pref, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get preference: %w", err)
	}
	return toDomainPreference(&pref), nil
}

func (r *sqlxProgressRepository) SetLastVisitedExam(ctx context.Context, userID, examID string) error {
	query := `INSERT INTO user_preference (user_id, last_visited_exam)
	          VALUES ($1, $2)
	          ON CONFLICT (user_id) DO UPDATE SET last_visited_exam = EXCLUDED.last_visited_exam`
	if _, err := r.db.ExecContext(ctx, query, userID, examID); err != nil {
		return fmt.Errorf("failed to set last visited exam: %w", err)
	}
	return nil
}

func (r *sqlxProgressRepository) SetSidebarCollapsed(ctx context.Context, userID string, collapsed bool) error {
	query := `INSERT INTO user_preference (user_id, is_sidebar_collapsed)
	          VALUES ($1, $2)
	          ON CONFLICT (user_id) DO UPDATE SET is_sidebar_collapsed = EXCLUDED.is_sidebar_collapsed`
	if _, err := r.db.ExecContext(ctx, query, userID, collapsed); err != nil {
		return fmt.Errorf("failed to set sidebar preference: %w", err)
	}
	return nil
}

// ListTouchedExams returns the distinct exams the user has answered, attempted,
// visited, or last viewed, joined to the content rows the dashboard needs.
func (r *sqlxProgressRepository) ListTouchedExams(ctx context.Context, userID string) ([]TouchedExam, error) {
	var rows []models.TouchedExam
	query := `SELECT e.id AS exam_id, e.title, e.total_questions, p.name AS provider_name, p.is_popular
	          FROM exam e
	          JOIN provider p ON p.id = e.provider_id
	          WHERE e.id IN (
	              SELECT exam_id FROM user_answer WHERE user_id = $1
	              UNION
	              SELECT exam_id FROM exam_attempt WHERE user_id = $1
	              UNION
	              SELECT exam_id FROM exam_visit WHERE user_id = $1
	              UNION
	              SELECT last_visited_exam FROM user_preference
	              WHERE user_id = $1 AND last_visited_exam IS NOT NULL
	          )`
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list touched exams: %w", err)
	}

	touched := make([]TouchedExam, len(rows))
	for i, row := range rows {
		touched[i] = TouchedExam{
			ExamID:         row.ExamID,
			Title:          row.Title,
			TotalQuestions: row.TotalQuestions,
			ProviderName:   row.ProviderName,
			IsPopular:      row.IsPopular,
		}
	}
	return touched, nil
}

// DeleteProgressByExamIDs wipes answers, attempts, favorites and visits for
// the given exams in one transaction, and clears the last visited pointer if
// it referenced one of them.
func (r *sqlxProgressRepository) DeleteProgressByExamIDs(ctx context.Context, userID string, examIDs []string) error {
	if len(examIDs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin progress delete: %w", err)
	}
	defer tx.Rollback()

	tables := []string{"user_answer", "exam_attempt", "favorite_question", "exam_visit"}
	for _, table := range tables {
		query, args, err := sqlx.In(
			fmt.Sprintf(`DELETE FROM %s WHERE user_id = ? AND exam_id IN (?)`, table), userID, examIDs)
		if err != nil {
			return fmt.Errorf("failed to build delete for %s: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}

	query, args, err := sqlx.In(
		`UPDATE user_preference SET last_visited_exam = NULL
		 WHERE user_id = ? AND last_visited_exam IN (?)`, userID, examIDs)
	if err != nil {
		return fmt.Errorf("failed to build preference reset: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to reset last visited exam: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit progress delete: %w", err)
	}
	return nil
}

// DeleteAllProgress wipes every piece of study state the user owns.
func (r *sqlxProgressRepository) DeleteAllProgress(ctx context.Context, userID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin progress reset: %w", err)
	}
	defer tx.Rollback()

	tables := []string{"user_answer", "exam_attempt", "favorite_question", "exam_visit"}
	for _, table := range tables {
		query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, table)
		if _, err := tx.ExecContext(ctx, query, userID); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE user_preference SET last_visited_exam = NULL WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to reset last visited exam: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit progress reset: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hiraya/internal/domain"
	"hiraya/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// AttemptRepository persists graded exam attempts.
type AttemptRepository interface {
	CreateAttempt(ctx context.Context, attempt *domain.ExamAttempt) error
	ListAttemptsByExam(ctx context.Context, userID, examID string) ([]domain.ExamAttempt, error)
	GetLatestAttempt(ctx context.Context, userID, examID string) (*domain.ExamAttempt, error)
}

type sqlxAttemptRepository struct {
	db *sqlx.DB
}

// NewSQLXAttemptRepository creates a new instance of sqlxAttemptRepository.
func NewSQLXAttemptRepository(db *sqlx.DB) AttemptRepository {
	return &sqlxAttemptRepository{db: db}
}

func toDomainAttempt(m *models.ExamAttempt) *domain.ExamAttempt {
	if m == nil {
		return nil
	}
	return &domain.ExamAttempt{
		ID:                 m.ID,
		UserID:             m.UserID,
		ExamID:             m.ExamID,
		Score:              m.Score,
		TotalQuestions:     m.TotalQuestions,
		CorrectAnswers:     m.CorrectAnswers,
		IncorrectQuestions: []string(m.IncorrectQuestions),
		AttemptDate:        m.AttemptDate,
	}
}

// CreateAttempt appends a graded attempt. Attempts are never rewritten, each
// submission gets its own row.
func (r *sqlxAttemptRepository) CreateAttempt(ctx context.Context, attempt *domain.ExamAttempt) error {
	query := `INSERT INTO exam_attempt
	            (user_id, exam_id, score, total_questions, correct_answers, incorrect_questions, attempt_date)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		attempt.UserID, attempt.ExamID, attempt.Score, attempt.TotalQuestions,
		attempt.CorrectAnswers, models.StringSlice(attempt.IncorrectQuestions), attempt.AttemptDate)
	if err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	return nil
}

func (r *sqlxAttemptRepository) ListAttemptsByExam(ctx context.Context, userID, examID string) ([]domain.ExamAttempt, error) {
	var rows []models.ExamAttempt
	query := `SELECT * FROM exam_attempt WHERE user_id = $1 AND exam_id = $2
	          ORDER BY attempt_date DESC`
	if err := r.db.SelectContext(ctx, &rows, query, userID, examID); err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	attempts := make([]domain.ExamAttempt, len(rows))
	for i := range rows {
		attempts[i] = *toDomainAttempt(&rows[i])
	}
	return attempts, nil
}

func (r *sqlxAttemptRepository) GetLatestAttempt(ctx context.Context, userID, examID string) (*domain.ExamAttempt, error) {
	var attempt models.ExamAttempt
	query := `SELECT * FROM exam_attempt WHERE user_id = $1 AND exam_id = $2
	          ORDER BY attempt_date DESC LIMIT 1`
	if err := r.db.GetContext(ctx, &attempt, query, userID, examID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest attempt: %w", err)
	}
	return toDomainAttempt(&attempt), nil
}

package models

import (
	"database/sql"
	"time"
)

// UserPreference represents a row of the user_preference table.
type UserPreference struct {
	ID                 int64          `db:"id"`
	UserID             string         `db:"user_id"`
	LastVisitedExam    sql.NullString `db:"last_visited_exam"`
	IsSidebarCollapsed bool           `db:"is_sidebar_collapsed"`
}

// FavoriteQuestion represents a row of the favorite_question table.
type FavoriteQuestion struct {
	ID            int64  `db:"id"`
	UserID        string `db:"user_id"`
	ExamID        string `db:"exam_id"`
	TopicNumber   int    `db:"topic_number"`
	QuestionIndex int    `db:"question_index"`
}

// UserAnswer represents a row of the user_answer table.
type UserAnswer struct {
	ID              int64    `db:"id"`
	UserID          string   `db:"user_id"`
	ExamID          string   `db:"exam_id"`
	TopicNumber     int      `db:"topic_number"`
	QuestionIndex   int      `db:"question_index"`
	SelectedOptions IntSlice `db:"selected_options"`
}

// ExamAttempt represents a row of the append-only exam_attempt table.
type ExamAttempt struct {
	ID                 int64       `db:"id"`
	UserID             string      `db:"user_id"`
	ExamID             string      `db:"exam_id"`
	Score              float64     `db:"score"`
	TotalQuestions     int         `db:"total_questions"`
	CorrectAnswers     int         `db:"correct_answers"`
	IncorrectQuestions StringSlice `db:"incorrect_questions"`
	AttemptDate        time.Time   `db:"attempt_date"`
}

// ExamVisit represents a row of the exam_visit table.
type ExamVisit struct {
	ID             int64     `db:"id"`
	UserID         string    `db:"user_id"`
	ExamID         string    `db:"exam_id"`
	FirstVisitDate time.Time `db:"first_visit_date"`
	LastVisitDate  time.Time `db:"last_visit_date"`
}

// TouchedExam is one row of the "every exam this user has touched" union
// query feeding the progress aggregator.
type TouchedExam struct {
	ExamID         string `db:"exam_id"`
	Title          string `db:"title"`
	TotalQuestions int    `db:"total_questions"`
	ProviderName   string `db:"provider_name"`
	IsPopular      bool   `db:"is_popular"`
}

package domain

import "time"

// UserPreference is the single per-user UI preference row.
type UserPreference struct {
	UserID             string
	LastVisitedExam    string
	IsSidebarCollapsed bool
}

// FavoriteQuestion marks one question of one exam topic as favorited,
// unique per (user, exam, topic, question).
type FavoriteQuestion struct {
	UserID        string
	ExamID        string
	TopicNumber   int
	QuestionIndex int
}

// UserAnswer is the saved answer for one question, overwritten on resave.
type UserAnswer struct {
	UserID          string
	ExamID          string
	TopicNumber     int
	QuestionIndex   int
	SelectedOptions []int
}

// ExamAttempt is one immutable scored submission. Rows are only ever
// inserted; the aggregator reads the full history to compute trends.
type ExamAttempt struct {
	ID                 int64
	UserID             string
	ExamID             string
	Score              float64
	TotalQuestions     int
	CorrectAnswers     int
	IncorrectQuestions []string
	AttemptDate        time.Time
}

// ExamVisit records that a user opened an exam; the last visit timestamp is
// refreshed on every visit.
type ExamVisit struct {
	UserID         string
	ExamID         string
	FirstVisitDate time.Time
	LastVisitDate  time.Time
}

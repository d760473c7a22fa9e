package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"hiraya/internal/domain"
	"hiraya/internal/dto"
	"hiraya/internal/logger"
	"hiraya/internal/repository"

	"go.uber.org/zap"
)

const passThreshold = 75.0

// ExamResolver maps a client-supplied exam id to the stored exam row.
type ExamResolver interface {
	ResolveExam(ctx context.Context, examID string) (*domain.Exam, error)
}

// ScoreResult is the outcome of grading one full submission.
type ScoreResult struct {
	TotalQuestions     int
	CorrectAnswers     int
	Score              float64
	Passed             bool
	IncorrectQuestions []string
}

// QuestionID composes the identifier a submission uses for one question:
// topic number and 1-based question position.
func QuestionID(topicNumber, questionIndex int) string {
	return fmt.Sprintf("T%d Q%d", topicNumber, questionIndex+1)
}

// letterIndices converts answer letters ("A", "b") to a set of 0-based
// option indices.
func letterIndices(letters []string) map[int]bool {
	indices := make(map[int]bool, len(letters))
	for _, letter := range letters {
		if letter == "" {
			continue
		}
		c := letter[0]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		indices[int(c-'A')] = true
	}
	return indices
}

func sameIndexSet(a, b map[int]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// ScoreSubmission grades a submission against the exam's topics. Every
// stored question counts toward the total; a question is correct only when
// the submitted index set equals the answer-key set exactly. Submitted ids
// that match no stored question are ignored. The returned score is a 0-100
// percentage rounded to 2 decimals; an empty exam scores 0 and does not pass.
func ScoreSubmission(topics []domain.Topic, submissions map[string][]int) ScoreResult {
	sorted := make([]domain.Topic, len(topics))
	copy(sorted, topics)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	result := ScoreResult{IncorrectQuestions: []string{}}
	for _, topic := range sorted {
		for questionIndex, question := range topic.Questions {
			result.TotalQuestions++
			questionID := QuestionID(topic.Number, questionIndex)

			correct := letterIndices(question.Answer)
			submitted := make(map[int]bool, len(submissions[questionID]))
			for _, idx := range submissions[questionID] {
				submitted[idx] = true
			}

			if sameIndexSet(correct, submitted) {
				result.CorrectAnswers++
			} else {
				result.IncorrectQuestions = append(result.IncorrectQuestions, questionID)
			}
		}
	}

	if result.TotalQuestions > 0 {
		raw := float64(result.CorrectAnswers) / float64(result.TotalQuestions) * 100
		result.Passed = raw >= passThreshold
		result.Score = math.Round(raw*100) / 100
	}
	return result
}

// ScoringService grades submissions and persists the resulting attempts.
type ScoringService interface {
	SubmitAnswers(ctx context.Context, userID string, req *dto.SubmitAnswersRequest) (*dto.SubmitAnswersResponse, error)
}

type scoringServiceImpl struct {
	resolver    ExamResolver
	contentRepo repository.ContentRepository
	attemptRepo repository.AttemptRepository
}

// NewScoringService creates a new instance of ScoringService.
func NewScoringService(resolver ExamResolver, contentRepo repository.ContentRepository, attemptRepo repository.AttemptRepository) ScoringService {
	return &scoringServiceImpl{
		resolver:    resolver,
		contentRepo: contentRepo,
		attemptRepo: attemptRepo,
	}
}

// SubmitAnswers resolves the exam, grades the submission and records one
// immutable attempt row.
func (s *scoringServiceImpl) SubmitAnswers(ctx context.Context, userID string, req *dto.SubmitAnswersRequest) (*dto.SubmitAnswersResponse, error) {
	exam, err := s.resolver.ResolveExam(ctx, req.ExamID)
	if err != nil {
		return nil, err
	}

	topics, err := s.contentRepo.GetTopicsByExamID(ctx, exam.ID)
	if err != nil {
		return nil, err
	}

	result := ScoreSubmission(topics, req.UserAnswers)

	attempt := &domain.ExamAttempt{
		UserID:             userID,
		ExamID:             exam.ID,
		Score:              result.Score,
		TotalQuestions:     result.TotalQuestions,
		CorrectAnswers:     result.CorrectAnswers,
		IncorrectQuestions: result.IncorrectQuestions,
		AttemptDate:        time.Now().UTC(),
	}
	if err := s.attemptRepo.CreateAttempt(ctx, attempt); err != nil {
		return nil, err
	}

	logger.Get().Info("Exam submission scored",
		zap.String("userID", userID),
		zap.String("examID", exam.ID),
		zap.Float64("score", result.Score),
		zap.Bool("passed", result.Passed))

	return &dto.SubmitAnswersResponse{
		TotalQuestions:     result.TotalQuestions,
		CorrectAnswers:     result.CorrectAnswers,
		Score:              result.Score,
		Passed:             result.Passed,
		IncorrectQuestions: result.IncorrectQuestions,
	}, nil
}

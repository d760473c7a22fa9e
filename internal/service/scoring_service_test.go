package service

import (
	"testing"

	"hiraya/internal/domain"

	"github.com/stretchr/testify/assert"
)

func singleTopic(number int, questions ...domain.Question) []domain.Topic {
	return []domain.Topic{{Number: number, Questions: questions}}
}

func q(answers ...string) domain.Question {
	return domain.Question{
		Text:    "placeholder",
		Options: []string{"opt a", "opt b", "opt c", "opt d"},
		Answer:  answers,
	}
}

func TestScoreSubmissionAllCorrect(t *testing.T) {
	topics := singleTopic(1, q("A"), q("B", "C"))
	result := ScoreSubmission(topics, map[string][]int{
		"T1 Q1": {0},
		"T1 Q2": {2, 1},
	})

	assert.Equal(t, 2, result.TotalQuestions)
	assert.Equal(t, 2, result.CorrectAnswers)
	assert.Equal(t, 100.0, result.Score)
	assert.True(t, result.Passed)
	assert.Empty(t, result.IncorrectQuestions)
}

func TestScoreSubmissionCountsAreConsistent(t *testing.T) {
	topics := []domain.Topic{
		{Number: 1, Questions: []domain.Question{q("A"), q("B")}},
		{Number: 2, Questions: []domain.Question{q("C"), q("D")}},
	}
	result := ScoreSubmission(topics, map[string][]int{
		"T1 Q1": {0},
		"T1 Q2": {0}, // wrong
		"T2 Q1": {2},
		// T2 Q2 unanswered
	})

	assert.Equal(t, 4, result.TotalQuestions)
	assert.Equal(t, 2, result.CorrectAnswers)
	assert.Equal(t, result.TotalQuestions-result.CorrectAnswers, len(result.IncorrectQuestions))
	assert.Equal(t, []string{"T1 Q2", "T2 Q2"}, result.IncorrectQuestions)
	assert.Equal(t, 50.0, result.Score)
	assert.False(t, result.Passed)
}

func TestScoreSubmissionPassThreshold(t *testing.T) {
	// 3 of 4 correct is exactly 75 and passes.
	topics := singleTopic(1, q("A"), q("A"), q("A"), q("A"))
	result := ScoreSubmission(topics, map[string][]int{
		"T1 Q1": {0},
		"T1 Q2": {0},
		"T1 Q3": {0},
		"T1 Q4": {1},
	})
	assert.Equal(t, 75.0, result.Score)
	assert.True(t, result.Passed)

	// 2 of 3 correct is 66.67 and fails.
	topics = singleTopic(1, q("A"), q("A"), q("A"))
	result = ScoreSubmission(topics, map[string][]int{
		"T1 Q1": {0},
		"T1 Q2": {0},
		"T1 Q3": {1},
	})
	assert.Equal(t, 66.67, result.Score)
	assert.False(t, result.Passed)
}

func TestScoreSubmissionNoPartialCredit(t *testing.T) {
	topics := singleTopic(1, q("A", "B"))

	for name, submitted := range map[string][]int{
		"subset":   {0},
		"superset": {0, 1, 2},
		"disjoint": {2, 3},
	} {
		result := ScoreSubmission(topics, map[string][]int{"T1 Q1": submitted})
		assert.Equal(t, 0, result.CorrectAnswers, "case %s", name)
		assert.Equal(t, []string{"T1 Q1"}, result.IncorrectQuestions, "case %s", name)
	}
}

func TestScoreSubmissionOrderInsensitive(t *testing.T) {
	topics := singleTopic(3, q("B", "D"))
	result := ScoreSubmission(topics, map[string][]int{"T3 Q1": {3, 1}})
	assert.Equal(t, 1, result.CorrectAnswers)
}

func TestScoreSubmissionLowercaseAnswerKey(t *testing.T) {
	topics := singleTopic(1, q("b"))
	result := ScoreSubmission(topics, map[string][]int{"T1 Q1": {1}})
	assert.Equal(t, 1, result.CorrectAnswers)
}

func TestScoreSubmissionUnknownIDsIgnored(t *testing.T) {
	topics := singleTopic(1, q("A"))
	result := ScoreSubmission(topics, map[string][]int{
		"T1 Q1":  {0},
		"T9 Q99": {1, 2, 3},
	})

	assert.Equal(t, 1, result.TotalQuestions)
	assert.Equal(t, 1, result.CorrectAnswers)
	assert.Equal(t, 100.0, result.Score)
}

func TestScoreSubmissionEmptyExam(t *testing.T) {
	result := ScoreSubmission(nil, map[string][]int{"T1 Q1": {0}})

	assert.Equal(t, 0, result.TotalQuestions)
	assert.Equal(t, 0.0, result.Score)
	assert.False(t, result.Passed)
	assert.Empty(t, result.IncorrectQuestions)
}

func TestScoreSubmissionEmptySubmission(t *testing.T) {
	topics := singleTopic(1, q("A"), q("B"))
	result := ScoreSubmission(topics, map[string][]int{})

	assert.Equal(t, 2, result.TotalQuestions)
	assert.Equal(t, 0, result.CorrectAnswers)
	assert.Equal(t, []string{"T1 Q1", "T1 Q2"}, result.IncorrectQuestions)
}

func TestQuestionIDIsOneBased(t *testing.T) {
	assert.Equal(t, "T2 Q1", QuestionID(2, 0))
	assert.Equal(t, "T1 Q10", QuestionID(1, 9))
}

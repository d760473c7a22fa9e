package validation

import (
	"testing"

	"hiraya/internal/dto"

	"github.com/stretchr/testify/assert"
)

func TestValidateExamID(t *testing.T) {
	v := NewValidator()

	t.Run("Valid", func(t *testing.T) {
		assert.Empty(t, v.ValidateExamID("amazon-Solutions Architect-code-SAA-C03"))
	})

	t.Run("Empty", func(t *testing.T) {
		errs := v.ValidateExamID("")
		assert.Len(t, errs, 1)
		assert.Equal(t, "exam_id", errs[0].Field)
	})

	t.Run("Whitespace", func(t *testing.T) {
		assert.Len(t, v.ValidateExamID("   "), 1)
	})

	t.Run("LiteralUndefined", func(t *testing.T) {
		// frontends serialize a missing value as the string "undefined"
		assert.Len(t, v.ValidateExamID("undefined"), 1)
	})

	t.Run("NoProviderSeparator", func(t *testing.T) {
		errs := v.ValidateExamID("justatitle")
		assert.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, "invalid format")
	})
}

func TestValidateSaveAnswerRequest(t *testing.T) {
	v := NewValidator()

	t.Run("Valid", func(t *testing.T) {
		errs := v.ValidateSaveAnswerRequest(&dto.SaveAnswerRequest{
			ExamID:          "amazon-A-code-1",
			TopicNumber:     1,
			QuestionIndex:   0,
			SelectedOptions: []int{0, 3},
		})
		assert.Empty(t, errs)
	})

	t.Run("BadCoordinates", func(t *testing.T) {
		errs := v.ValidateSaveAnswerRequest(&dto.SaveAnswerRequest{
			ExamID:        "amazon-A-code-1",
			TopicNumber:   0,
			QuestionIndex: -1,
		})
		assert.Len(t, errs, 2)
	})

	t.Run("OptionOutOfRange", func(t *testing.T) {
		errs := v.ValidateSaveAnswerRequest(&dto.SaveAnswerRequest{
			ExamID:          "amazon-A-code-1",
			TopicNumber:     1,
			QuestionIndex:   0,
			SelectedOptions: []int{26},
		})
		assert.Len(t, errs, 1)
		assert.Equal(t, "selected_options", errs[0].Field)
	})
}

func TestValidateSubmitAnswersRequest(t *testing.T) {
	v := NewValidator()

	t.Run("Valid", func(t *testing.T) {
		errs := v.ValidateSubmitAnswersRequest(&dto.SubmitAnswersRequest{
			ExamID: "amazon-A-code-1",
			UserAnswers: map[string][]int{
				"T1 Q1": {0},
				"T1 Q2": {1, 2},
			},
		})
		assert.Empty(t, errs)
	})

	t.Run("EmptyAnswersMapIsValid", func(t *testing.T) {
		errs := v.ValidateSubmitAnswersRequest(&dto.SubmitAnswersRequest{
			ExamID:      "amazon-A-code-1",
			UserAnswers: map[string][]int{},
		})
		assert.Empty(t, errs)
	})

	t.Run("NilAnswersMap", func(t *testing.T) {
		errs := v.ValidateSubmitAnswersRequest(&dto.SubmitAnswersRequest{
			ExamID: "amazon-A-code-1",
		})
		assert.Len(t, errs, 1)
		assert.Equal(t, "user_answers", errs[0].Field)
	})

	t.Run("BlankQuestionID", func(t *testing.T) {
		errs := v.ValidateSubmitAnswersRequest(&dto.SubmitAnswersRequest{
			ExamID:      "amazon-A-code-1",
			UserAnswers: map[string][]int{" ": {0}},
		})
		assert.Len(t, errs, 1)
	})

	t.Run("OptionOutOfRange", func(t *testing.T) {
		errs := v.ValidateSubmitAnswersRequest(&dto.SubmitAnswersRequest{
			ExamID:      "amazon-A-code-1",
			UserAnswers: map[string][]int{"T1 Q1": {-1}},
		})
		assert.Len(t, errs, 1)
	})
}

func TestValidateDeleteRequests(t *testing.T) {
	v := NewValidator()

	assert.Empty(t, v.ValidateDeleteExamsRequest(&dto.DeleteExamsRequest{ExamIDs: []string{"amazon-A-code-1"}}))
	assert.Len(t, v.ValidateDeleteExamsRequest(&dto.DeleteExamsRequest{}), 1)

	assert.Empty(t, v.ValidateDeleteProviderExamsRequest(&dto.DeleteProviderExamsRequest{ProviderNames: []string{"amazon"}}))
	assert.Len(t, v.ValidateDeleteProviderExamsRequest(&dto.DeleteProviderExamsRequest{}), 1)
}

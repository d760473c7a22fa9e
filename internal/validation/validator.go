package validation

import (
	"strings"

	"hiraya/internal/domain"
	"hiraya/internal/dto"
)

const maxOptionIndex = 25

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateExamID checks a path or body exam id.
func (v *Validator) ValidateExamID(examID string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(examID) == "" || examID == "undefined" {
		errors = append(errors, domain.NewMissingFieldError("exam_id"))
	} else if !strings.Contains(examID, "-") {
		errors = append(errors, domain.NewInvalidFormatError("exam_id", examID))
	}

	return errors
}

// ValidateSaveAnswerRequest validates the save-answer request body.
func (v *Validator) ValidateSaveAnswerRequest(req *dto.SaveAnswerRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	errors = append(errors, v.ValidateExamID(req.ExamID)...)

	if req.TopicNumber < 1 {
		errors = append(errors, domain.NewOutOfRangeError("topic_number", req.TopicNumber, 1, 1000))
	}
	if req.QuestionIndex < 0 {
		errors = append(errors, domain.NewOutOfRangeError("question_index", req.QuestionIndex, 0, 10000))
	}
	for _, opt := range req.SelectedOptions {
		if opt < 0 || opt > maxOptionIndex {
			errors = append(errors, domain.NewOutOfRangeError("selected_options", opt, 0, maxOptionIndex))
			break
		}
	}

	return errors
}

// ValidateFavoriteRequest validates the favorite toggle request body.
func (v *Validator) ValidateFavoriteRequest(req *dto.FavoriteRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	errors = append(errors, v.ValidateExamID(req.ExamID)...)

	if req.TopicNumber < 1 {
		errors = append(errors, domain.NewOutOfRangeError("topic_number", req.TopicNumber, 1, 1000))
	}
	if req.QuestionIndex < 0 {
		errors = append(errors, domain.NewOutOfRangeError("question_index", req.QuestionIndex, 0, 10000))
	}

	return errors
}

// ValidateSubmitAnswersRequest validates the submission shape before any
// scoring happens: a present exam id, a non-nil answers map, and option
// indices within the representable letter range.
func (v *Validator) ValidateSubmitAnswersRequest(req *dto.SubmitAnswersRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	errors = append(errors, v.ValidateExamID(req.ExamID)...)

	if req.UserAnswers == nil {
		errors = append(errors, domain.NewMissingFieldError("user_answers"))
		return errors
	}

	for questionID, selections := range req.UserAnswers {
		if strings.TrimSpace(questionID) == "" {
			errors = append(errors, domain.NewInvalidFormatError("user_answers", questionID))
			return errors
		}
		for _, opt := range selections {
			if opt < 0 || opt > maxOptionIndex {
				errors = append(errors, domain.NewOutOfRangeError("user_answers", opt, 0, maxOptionIndex))
				return errors
			}
		}
	}

	return errors
}

// ValidateDeleteExamsRequest requires at least one exam id.
func (v *Validator) ValidateDeleteExamsRequest(req *dto.DeleteExamsRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if len(req.ExamIDs) == 0 {
		errors = append(errors, domain.NewMissingFieldError("exam_ids"))
	}

	return errors
}

// ValidateDeleteProviderExamsRequest requires at least one provider name.
func (v *Validator) ValidateDeleteProviderExamsRequest(req *dto.DeleteProviderExamsRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if len(req.ProviderNames) == 0 {
		errors = append(errors, domain.NewMissingFieldError("provider_names"))
	}

	return errors
}

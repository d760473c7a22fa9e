package handler

import (
	"net/url"

	"hiraya/internal/domain"
	"hiraya/internal/dto"
	"hiraya/internal/middleware"
	"hiraya/internal/service"
	"hiraya/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ProgressHandler serves every per-user study-state route.
type ProgressHandler struct {
	progressService service.ProgressService
	scoringService  service.ScoringService
	validator       *validation.Validator
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService service.ProgressService, scoringService service.ScoringService, validator *validation.Validator) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
		scoringService:  scoringService,
		validator:       validator,
	}
}

func examIDParam(c *fiber.Ctx) string {
	examID := c.Params("examId")
	if decoded, err := url.PathUnescape(examID); err == nil {
		examID = decoded
	}
	return examID
}

// GetUserPreference returns the last-visited-exam preference.
func (h *ProgressHandler) GetUserPreference(c *fiber.Ctx) error {
	resp, err := h.progressService.GetPreference(c.Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SetUserPreference stores the last-visited-exam preference.
func (h *ProgressHandler) SetUserPreference(c *fiber.Ctx) error {
	var req dto.PreferenceRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	if err := h.progressService.SetLastVisitedExam(c.Context(), middleware.UserID(c), req.LastVisitedExam); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Preference updated successfully"})
}

// ToggleFavorite flips the favorite flag for a question. Responds 201 when
// the question was favorited and 200 when it was unfavorited.
func (h *ProgressHandler) ToggleFavorite(c *fiber.Ctx) error {
	var req dto.FavoriteRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if decoded, err := url.QueryUnescape(req.ExamID); err == nil {
		req.ExamID = decoded
	}
	if errs := h.validator.ValidateFavoriteRequest(&req); len(errs) > 0 {
		return errs
	}

	resp, err := h.progressService.ToggleFavorite(c.Context(), middleware.UserID(c), &req)
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if resp.IsFavorite {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(resp)
}

// GetFavorites lists favorited question coordinates for an exam.
func (h *ProgressHandler) GetFavorites(c *fiber.Ctx) error {
	resp, err := h.progressService.ListFavorites(c.Context(), middleware.UserID(c), examIDParam(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SaveAnswer upserts the selected options for one question.
func (h *ProgressHandler) SaveAnswer(c *fiber.Ctx) error {
	var req dto.SaveAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if errs := h.validator.ValidateSaveAnswerRequest(&req); len(errs) > 0 {
		return errs
	}

	if err := h.progressService.SaveAnswer(c.Context(), middleware.UserID(c), &req); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Answer saved successfully"})
}

// GetAnswers lists the saved selections for an exam.
func (h *ProgressHandler) GetAnswers(c *fiber.Ctx) error {
	resp, err := h.progressService.GetAnswers(c.Context(), middleware.UserID(c), examIDParam(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SubmitAnswers grades a full submission and records the attempt.
func (h *ProgressHandler) SubmitAnswers(c *fiber.Ctx) error {
	var req dto.SubmitAnswersRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if decoded, err := url.QueryUnescape(req.ExamID); err == nil {
		req.ExamID = decoded
	}
	if errs := h.validator.ValidateSubmitAnswersRequest(&req); len(errs) > 0 {
		return errs
	}

	resp, err := h.scoringService.SubmitAnswers(c.Context(), middleware.UserID(c), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetIncorrectQuestions returns the incorrect ids from the latest attempt.
func (h *ProgressHandler) GetIncorrectQuestions(c *fiber.Ctx) error {
	resp, err := h.progressService.GetIncorrectQuestions(c.Context(), middleware.UserID(c), examIDParam(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetExamProgress returns the per-provider dashboard.
func (h *ProgressHandler) GetExamProgress(c *fiber.Ctx) error {
	resp, err := h.progressService.GetExamProgress(c.Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// TrackExamVisit records or refreshes a visit timestamp.
func (h *ProgressHandler) TrackExamVisit(c *fiber.Ctx) error {
	var req dto.TrackVisitRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if req.ExamID == "" {
		return domain.NewInvalidInputError("Exam ID is required")
	}

	if err := h.progressService.TrackVisit(c.Context(), middleware.UserID(c), req.ExamID); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Visit tracked successfully"})
}

// DeleteExams wipes progress rows for the listed exams.
func (h *ProgressHandler) DeleteExams(c *fiber.Ctx) error {
	var req dto.DeleteExamsRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if errs := h.validator.ValidateDeleteExamsRequest(&req); len(errs) > 0 {
		return errs
	}

	if err := h.progressService.DeleteExams(c.Context(), middleware.UserID(c), req.ExamIDs); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Exams deleted successfully"})
}

// DeleteProviderExams wipes progress rows for every exam of the listed
// providers.
func (h *ProgressHandler) DeleteProviderExams(c *fiber.Ctx) error {
	var req dto.DeleteProviderExamsRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if errs := h.validator.ValidateDeleteProviderExamsRequest(&req); len(errs) > 0 {
		return errs
	}

	found, err := h.progressService.DeleteProviderExams(c.Context(), middleware.UserID(c), req.ProviderNames)
	if err != nil {
		return err
	}
	if !found {
		return c.JSON(dto.MessageResponse{Message: "No exams found for the specified providers"})
	}
	return c.JSON(dto.MessageResponse{Message: "Provider exams deleted successfully"})
}

// DeleteAllProgress wipes every progress row the user owns.
func (h *ProgressHandler) DeleteAllProgress(c *fiber.Ctx) error {
	if err := h.progressService.DeleteAllProgress(c.Context(), middleware.UserID(c)); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "All progress deleted successfully"})
}

// GetSidebarState returns the sidebar-collapsed preference.
func (h *ProgressHandler) GetSidebarState(c *fiber.Ctx) error {
	resp, err := h.progressService.GetSidebarState(c.Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SetSidebarState stores the sidebar-collapsed preference.
func (h *ProgressHandler) SetSidebarState(c *fiber.Ctx) error {
	var req dto.SidebarStateRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	if err := h.progressService.SetSidebarState(c.Context(), middleware.UserID(c), req.IsCollapsed); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Sidebar state updated successfully"})
}

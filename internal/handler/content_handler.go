package handler

import (
	"net/url"

	"hiraya/internal/dto"
	"hiraya/internal/middleware"
	"hiraya/internal/service"
	"hiraya/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
)

// ContentHandler serves the provider/exam catalog routes and the health
// probe.
type ContentHandler struct {
	contentService service.ContentService
	validator      *validation.Validator
	db             *sqlx.DB
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(contentService service.ContentService, validator *validation.Validator, db *sqlx.DB) *ContentHandler {
	return &ContentHandler{contentService: contentService, validator: validator, db: db}
}

// GetProviders lists all providers with their exams. Pagination applies only
// when both page and per_page are present.
func (h *ContentHandler) GetProviders(c *fiber.Ctx) error {
	page := c.QueryInt("page", 0)
	perPage := c.QueryInt("per_page", 0)

	resp, err := h.contentService.ListProviders(c.Context(), page, perPage)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetExam returns the exam detail with the full topic payload.
func (h *ContentHandler) GetExam(c *fiber.Ctx) error {
	examID := c.Params("examId")
	if decoded, err := url.PathUnescape(examID); err == nil {
		examID = decoded
	}

	if errs := h.validator.ValidateExamID(examID); len(errs) > 0 {
		return errs
	}

	resp, err := h.contentService.GetExamDetail(c.Context(), middleware.UserID(c), examID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetProviderStatistics returns the category catalog with live counts.
func (h *ContentHandler) GetProviderStatistics(c *fiber.Ctx) error {
	resp, err := h.contentService.GetProviderStatistics(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Health reports process liveness and database connectivity.
func (h *ContentHandler) Health(c *fiber.Ctx) error {
	var one int
	if err := h.db.GetContext(c.Context(), &one, "SELECT 1"); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.HealthResponse{
			Status:   "unhealthy",
			Database: err.Error(),
		})
	}
	return c.JSON(dto.HealthResponse{
		Status:   "healthy",
		Database: "connected",
	})
}

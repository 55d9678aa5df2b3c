package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/marktrack-api/internal/dto"
	"github.com/noah-isme/marktrack-api/internal/middleware"
	"github.com/noah-isme/marktrack-api/internal/service"
	"github.com/noah-isme/marktrack-api/internal/utils"
)

// ReportHandler serves student and class reports.
type ReportHandler struct {
	service   service.ReportService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewReportHandler constructs a report handler.
func NewReportHandler(service service.ReportService, validate *validator.Validate, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "report_handler").Logger(),
	}
}

// Register wires report routes. Students may only read their own report
// card; class reports and analytics are restricted to teachers.
func (h *ReportHandler) Register(router fiber.Router) {
	router.Get("/my-report", middleware.WithAuth(h.myReport, middleware.AuthOptions{Role: middleware.AuthRoleStudent}))
	router.Get("/student/:id", middleware.WithAuth(h.studentReport, middleware.AuthOptions{}))
	router.Get("/student/:id/html", middleware.WithAuth(h.studentReportHTML, middleware.AuthOptions{}))
	router.Get("/class/:className", middleware.WithAuth(h.classReport, middleware.AuthOptions{Role: middleware.AuthRoleTeacher}))
	router.Get("/analytics", middleware.WithAuth(h.analytics, middleware.AuthOptions{Role: middleware.AuthRoleTeacher}))
}

func (h *ReportHandler) myReport(c *fiber.Ctx) error {
	report, err := h.service.StudentReportForUser(withRequestContext(c), userIDFromContext(c), c.Query("exam_type"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to build report")
	}
	return utils.SendSuccess(c, "report generated", report)
}

func (h *ReportHandler) studentReport(c *fiber.Ctx) error {
	id, err := h.authorizedStudentID(c)
	if err != nil {
		return err
	}
	if id == 0 {
		return nil
	}

	report, err := h.service.StudentReport(withRequestContext(c), id, c.Query("exam_type"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to build report")
	}
	return utils.SendSuccess(c, "report generated", report)
}

func (h *ReportHandler) studentReportHTML(c *fiber.Ctx) error {
	id, err := h.authorizedStudentID(c)
	if err != nil {
		return err
	}
	if id == 0 {
		return nil
	}

	html, err := h.service.StudentReportHTML(withRequestContext(c), id, c.Query("exam_type"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to render report")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(html)
}

func (h *ReportHandler) classReport(c *fiber.Ctx) error {
	report, err := h.service.ClassReport(withRequestContext(c), c.Params("className"), c.Query("section"), c.Query("exam_type"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to build class report")
	}
	return utils.SendSuccess(c, "class report generated", report)
}

func (h *ReportHandler) analytics(c *fiber.Ctx) error {
	var query dto.AnalyticsRequest
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	if err := h.validator.Struct(query); err != nil {
		return respondError(c, h.logger, err, "failed to build analytics")
	}

	summary, err := h.service.Analytics(withRequestContext(c), query)
	if err != nil {
		return respondError(c, h.logger, err, "failed to build analytics")
	}
	return utils.SendSuccess(c, "analytics generated", summary)
}

// authorizedStudentID resolves the :id parameter. A zero id with a nil error
// means a response has already been written.
func (h *ReportHandler) authorizedStudentID(c *fiber.Ctx) (uint, error) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return 0, utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	switch userRoleFromContext(c) {
	case middleware.AuthRoleTeacher, middleware.AuthRoleAdmin:
		return id, nil
	case middleware.AuthRoleStudent:
		own, err := h.service.StudentIDForUser(withRequestContext(c), userIDFromContext(c))
		if err != nil {
			return 0, respondError(c, h.logger, err, "failed to resolve student profile")
		}
		if own != id {
			return 0, utils.SendError(c, fiber.StatusForbidden, "students may only view their own report")
		}
		return id, nil
	default:
		return 0, utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	}
}

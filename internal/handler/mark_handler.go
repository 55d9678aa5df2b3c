package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/marktrack-api/internal/dto"
	"github.com/noah-isme/marktrack-api/internal/grading"
	"github.com/noah-isme/marktrack-api/internal/service"
	"github.com/noah-isme/marktrack-api/internal/utils"
)

// MarkHandler exposes mark entry and listing for teachers.
type MarkHandler struct {
	marks     service.MarkService
	reports   service.ReportService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewMarkHandler constructs a mark handler.
func NewMarkHandler(marks service.MarkService, reports service.ReportService, validate *validator.Validate, logger zerolog.Logger) *MarkHandler {
	return &MarkHandler{
		marks:     marks,
		reports:   reports,
		validator: validate,
		logger:    logger.With().Str("component", "mark_handler").Logger(),
	}
}

// Register wires mark routes.
func (h *MarkHandler) Register(router fiber.Router) {
	router.Post("/", h.create)
	router.Post("/bulk", h.bulk)
	router.Get("/", h.list)
	router.Get("/failed", h.failed)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *MarkHandler) create(c *fiber.Ctx) error {
	var payload dto.MarkCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	mark, err := h.marks.Create(withRequestContext(c), payload, userIDFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to record mark")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "mark recorded", mark)
}

func (h *MarkHandler) bulk(c *fiber.Ctx) error {
	var payload dto.MarkBulkRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.marks.BulkCreate(withRequestContext(c), payload, userIDFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to record marks")
	}

	status := fiber.StatusCreated
	message := "marks recorded"
	switch {
	case result.Accepted == 0:
		status = fiber.StatusUnprocessableEntity
		message = "no marks recorded"
	case result.Rejected > 0:
		status = fiber.StatusMultiStatus
		message = "marks partially recorded"
	}
	return utils.SendSuccessWithStatus(c, status, message, result)
}

func (h *MarkHandler) list(c *fiber.Ctx) error {
	var query dto.MarkListRequest
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	result, err := h.marks.List(withRequestContext(c), query)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list marks")
	}
	return utils.OK(c, result.Items, "marks retrieved", result.Pagination)
}

func (h *MarkHandler) failed(c *fiber.Ctx) error {
	var query dto.FailedMarksRequest
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	if err := h.validator.Struct(query); err != nil {
		return respondError(c, h.logger, err, "failed to list failed students")
	}

	filter := grading.FailureFilter{}
	if query.ClassName != "" {
		filter.ClassName = &query.ClassName
	}
	if query.SubjectID > 0 {
		filter.SubjectID = &query.SubjectID
	}
	if query.ExamType != "" {
		filter.ExamType = &query.ExamType
	}

	notices, err := h.reports.Failures(withRequestContext(c), filter)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list failed students")
	}
	return utils.SendSuccess(c, "failed students retrieved", notices)
}

func (h *MarkHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.MarkUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	mark, err := h.marks.Update(withRequestContext(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update mark")
	}
	return utils.SendSuccess(c, "mark updated", mark)
}

func (h *MarkHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.marks.Delete(withRequestContext(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete mark")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

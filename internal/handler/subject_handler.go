package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/marktrack-api/internal/dto"
	"github.com/noah-isme/marktrack-api/internal/middleware"
	"github.com/noah-isme/marktrack-api/internal/service"
	"github.com/noah-isme/marktrack-api/internal/utils"
)

// SubjectHandler exposes subject management endpoints.
type SubjectHandler struct {
	service service.SubjectService
	logger  zerolog.Logger
}

// NewSubjectHandler constructs a subject handler.
func NewSubjectHandler(service service.SubjectService, logger zerolog.Logger) *SubjectHandler {
	return &SubjectHandler{
		service: service,
		logger:  logger.With().Str("component", "subject_handler").Logger(),
	}
}

// Register wires subject routes. Reading is open to any authenticated user.
func (h *SubjectHandler) Register(router fiber.Router) {
	teacherOnly := middleware.AuthOptions{Role: middleware.AuthRoleTeacher}

	anyRole := middleware.AuthOptions{Role: middleware.AuthRoleAny}

	router.Get("/", middleware.WithAuth(h.list, anyRole))
	router.Get("/:id", middleware.WithAuth(h.get, anyRole))
	router.Post("/", middleware.WithAuth(h.create, teacherOnly))
	router.Put("/:id", middleware.WithAuth(h.update, teacherOnly))
	router.Delete("/:id", middleware.WithAuth(h.delete, teacherOnly))
}

func (h *SubjectHandler) list(c *fiber.Ctx) error {
	subjects, err := h.service.List(withRequestContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list subjects")
	}
	return utils.SendSuccess(c, "subjects retrieved", subjects)
}

func (h *SubjectHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	subject, err := h.service.Get(withRequestContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load subject")
	}
	return utils.SendSuccess(c, "subject retrieved", subject)
}

func (h *SubjectHandler) create(c *fiber.Ctx) error {
	var payload dto.SubjectCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	subject, err := h.service.Create(withRequestContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create subject")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "subject created", subject)
}

func (h *SubjectHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubjectUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	subject, err := h.service.Update(withRequestContext(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update subject")
	}
	return utils.SendSuccess(c, "subject updated", subject)
}

func (h *SubjectHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(withRequestContext(c), id); err != nil {
		return respondError(c, h.logger, err, "failed to delete subject")
	}
	return utils.SendSuccess(c, "subject deleted", nil)
}

package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/marktrack-api/internal/dto"
	"github.com/noah-isme/marktrack-api/internal/models"
	"github.com/noah-isme/marktrack-api/internal/service"
	"github.com/noah-isme/marktrack-api/internal/utils"
)

// NotificationHandler triggers and audits parent notifications.
type NotificationHandler struct {
	service   service.NotificationService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewNotificationHandler constructs a notification handler.
func NewNotificationHandler(service service.NotificationService, validate *validator.Validate, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "notification_handler").Logger(),
	}
}

// Register wires notification routes.
func (h *NotificationHandler) Register(router fiber.Router) {
	router.Post("/failures/dispatch", h.dispatchFailures)
	router.Post("/report-card/:studentId", h.sendReportCard)
	router.Post("/report-cards", h.sendReportCards)
	router.Get("/history", h.history)
}

func (h *NotificationHandler) dispatchFailures(c *fiber.Ctx) error {
	var payload dto.DispatchFailuresRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		}
	}
	if err := h.validator.Struct(payload); err != nil {
		return respondError(c, h.logger, err, "failed to dispatch failure notices")
	}

	summary, err := h.service.DispatchFailures(withRequestContext(c), payload.Filter())
	if err != nil {
		return respondError(c, h.logger, err, "failed to dispatch failure notices")
	}

	requestLogger(h.logger, c).Info().
		Str("batch_id", summary.BatchID).
		Int("sent", summary.Sent).
		Uint("requested_by", userIDFromContext(c)).
		Msg("failure notices dispatched")

	return utils.SendSuccess(c, "failure notices processed", summary)
}

func (h *NotificationHandler) sendReportCard(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	outcome, err := h.service.SendReportCard(withRequestContext(c), id, c.Query("exam_type"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to send report card")
	}
	if outcome.Status == models.NotificationStatusFailed {
		return utils.Fail(c, fiber.StatusBadGateway, "report card delivery failed", outcome)
	}
	return utils.SendSuccess(c, "report card sent", outcome)
}

func (h *NotificationHandler) sendReportCards(c *fiber.Ctx) error {
	var payload dto.BulkReportCardRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		}
	}
	if err := h.validator.Struct(payload); err != nil {
		return respondError(c, h.logger, err, "failed to send report cards")
	}

	summary, err := h.service.SendReportCards(withRequestContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to send report cards")
	}

	requestLogger(h.logger, c).Info().
		Str("batch_id", summary.BatchID).
		Int("sent", summary.Sent).
		Uint("requested_by", userIDFromContext(c)).
		Msg("report cards dispatched")

	return utils.SendSuccess(c, "report cards processed", summary)
}

func (h *NotificationHandler) history(c *fiber.Ctx) error {
	var query dto.NotificationHistoryRequest
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	if err := h.validator.Struct(query); err != nil {
		return respondError(c, h.logger, err, "failed to load notification history")
	}

	entries, err := h.service.History(withRequestContext(c), query)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load notification history")
	}
	return utils.SendSuccess(c, "notification history retrieved", entries)
}

package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/marktrack-api/internal/handler"
	"github.com/noah-isme/marktrack-api/internal/mailer"
	"github.com/noah-isme/marktrack-api/internal/models"
	"github.com/noah-isme/marktrack-api/internal/repository"
	"github.com/noah-isme/marktrack-api/internal/service"
)

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Details json.RawMessage `json:"details"`
	Message string          `json:"message"`
}

type harness struct {
	app      *fiber.App
	db       *gorm.DB
	asha     models.Student
	ben      models.Student
	maths    models.Subject
	english  models.Subject
	students repository.StudentRepository
	marks    repository.MarkRepository
}

// newHarness wires the real services over an in-memory database. Requests
// authenticate through the X-User-ID and X-User-Role headers.
func newHarness(t *testing.T) *harness {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AutoMigrateModels()...))

	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())

	studentRepo := repository.NewStudentRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	markRepo := repository.NewMarkRepository(db)
	logRepo := repository.NewNotificationLogRepository(db)

	userID := uint(900)
	h := &harness{
		db:       db,
		students: studentRepo,
		marks:    markRepo,
		asha:     models.Student{UserID: &userID, Name: "Asha Verma", RollNo: "10A-01", ClassName: "10A", Section: "A", ParentEmail: "verma@example.com"},
		ben:      models.Student{Name: "Ben Ortiz", RollNo: "10A-02", ClassName: "10A", Section: "A"},
		maths:    models.Subject{Name: "Mathematics", Code: "MATH", MaxMarks: 100, PassMarks: 35},
		english:  models.Subject{Name: "English", Code: "ENG", MaxMarks: 100, PassMarks: 35},
	}

	ctx := context.Background()
	require.NoError(t, studentRepo.Create(ctx, &h.asha))
	require.NoError(t, studentRepo.Create(ctx, &h.ben))
	require.NoError(t, subjectRepo.Create(ctx, &h.maths))
	require.NoError(t, subjectRepo.Create(ctx, &h.english))

	reports := service.NewReportService(studentRepo, subjectRepo, markRepo, "Final", "Springfield High", logger)
	notifications := service.NewNotificationService(reports, studentRepo, logRepo, mailer.NewLogMailer(logger), nil, nil, service.NotificationConfig{AppName: "Springfield High"}, logger)
	markService := service.NewMarkService(markRepo, studentRepo, subjectRepo, notifications, validate, "Final", logger)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if raw := c.Get("X-User-ID"); raw != "" {
			id, _ := strconv.ParseUint(raw, 10, 64)
			c.Locals("user_id", uint(id))
		}
		if role := c.Get("X-User-Role"); role != "" {
			c.Locals("user_role", role)
		}
		return c.Next()
	})

	handler.NewSubjectHandler(service.NewSubjectService(subjectRepo, markRepo, validate, logger), logger).Register(app.Group("/subjects"))
	handler.NewStudentHandler(service.NewStudentService(studentRepo, validate, logger), logger).Register(app.Group("/students"))
	handler.NewMarkHandler(markService, reports, validate, logger).Register(app.Group("/marks"))
	handler.NewReportHandler(reports, validate, logger).Register(app.Group("/reports"))
	handler.NewNotificationHandler(notifications, validate, logger).Register(app.Group("/notifications"))

	h.app = app
	return h
}

func (h *harness) seedMark(t *testing.T, student models.Student, subject models.Subject, marks int) models.Mark {
	t.Helper()
	mark := models.Mark{StudentID: student.ID, SubjectID: subject.ID, ExamType: "Final", MarksObtained: marks, EnteredBy: 1}
	require.NoError(t, h.marks.Create(context.Background(), &mark))
	return mark
}

func (h *harness) do(t *testing.T, method, path string, body interface{}, userID uint, role string) (*http.Response, apiEnvelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		req.Header.Set("X-User-ID", strconv.FormatUint(uint64(userID), 10))
	}
	if role != "" {
		req.Header.Set("X-User-Role", role)
	}

	resp, err := h.app.Test(req)
	require.NoError(t, err)

	var envelope apiEnvelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &envelope))
	}
	return resp, envelope
}

const teacherID = uint(7)

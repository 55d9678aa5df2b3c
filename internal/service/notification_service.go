package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/noah-isme/marktrack-api/internal/dto"
	"github.com/noah-isme/marktrack-api/internal/grading"
	"github.com/noah-isme/marktrack-api/internal/mailer"
	"github.com/noah-isme/marktrack-api/internal/models"
	"github.com/noah-isme/marktrack-api/internal/observability"
	"github.com/noah-isme/marktrack-api/internal/repository"
)

// EventPublisher is the subset of a NATS connection used for failure events.
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

// FailureAlerter notifies a parent about a single failing mark.
type FailureAlerter interface {
	AlertMark(ctx context.Context, notice grading.FailureNotice) dto.DispatchOutcome
}

// NotificationService delivers failure alerts and report cards to parents.
type NotificationService interface {
	FailureAlerter
	DispatchFailures(ctx context.Context, filter grading.FailureFilter) (dto.DispatchSummary, error)
	SendReportCard(ctx context.Context, studentID uint, examType string) (dto.DispatchOutcome, error)
	SendReportCards(ctx context.Context, req dto.BulkReportCardRequest) (dto.DispatchSummary, error)
	History(ctx context.Context, req dto.NotificationHistoryRequest) ([]dto.NotificationLogResponse, error)
}

// NotificationConfig tunes delivery behaviour.
type NotificationConfig struct {
	AppName       string
	DedupeTTL     time.Duration
	SubjectPrefix string
}

type notificationService struct {
	reports   ReportService
	students  repository.StudentRepository
	logs      repository.NotificationLogRepository
	mail      mailer.Mailer
	cache     *redis.Client
	events    EventPublisher
	subject   string
	appName   string
	dedupeTTL time.Duration
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

type failureEvent struct {
	BatchID string                `json:"batch_id,omitempty"`
	Status  string                `json:"status"`
	Notice  grading.FailureNotice `json:"notice"`
	SentAt  time.Time             `json:"sent_at"`
}

// NewNotificationService constructs the notification service. cache and
// events are optional.
func NewNotificationService(reports ReportService, students repository.StudentRepository, logs repository.NotificationLogRepository, mail mailer.Mailer, cache *redis.Client, events EventPublisher, cfg NotificationConfig, logger zerolog.Logger) NotificationService {
	ttl := cfg.DedupeTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	subject := ""
	if prefix := strings.Trim(cfg.SubjectPrefix, "."); prefix != "" {
		subject = prefix + ".failures"
	}

	return &notificationService{
		reports:   reports,
		students:  students,
		logs:      logs,
		mail:      mail,
		cache:     cache,
		events:    events,
		subject:   subject,
		appName:   cfg.AppName,
		dedupeTTL: ttl,
		logger:    logger.With().Str("component", "notification_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/marktrack-api/internal/service/notification"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *notificationService) DispatchFailures(ctx context.Context, filter grading.FailureFilter) (dto.DispatchSummary, error) {
	ctx, span := s.tracer.Start(ctx, "notifications.dispatch_failures")
	defer span.End()

	notices, err := s.reports.Failures(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failure detection failed")
		return dto.DispatchSummary{}, err
	}

	summary := dto.DispatchSummary{
		BatchID:  uuid.NewString(),
		Outcomes: make([]dto.DispatchOutcome, 0, len(notices)),
	}
	span.SetAttributes(
		attribute.String("dispatch.batch_id", summary.BatchID),
		attribute.Int("dispatch.notices", len(notices)),
	)

	for _, notice := range notices {
		summary.Count(s.deliver(ctx, summary.BatchID, notice))
	}

	s.logger.Info().
		Str("batch_id", summary.BatchID).
		Int("sent", summary.Sent).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Int("duplicate", summary.Duplicate).
		Msg("failure notices dispatched")

	return summary, nil
}

func (s *notificationService) AlertMark(ctx context.Context, notice grading.FailureNotice) dto.DispatchOutcome {
	ctx, span := s.tracer.Start(ctx, "notifications.alert_mark", trace.WithAttributes(
		attribute.Int64("student.id", int64(notice.StudentID)),
		attribute.Int64("subject.id", int64(notice.SubjectID)),
	))
	defer span.End()

	return s.deliver(ctx, "", notice)
}

func (s *notificationService) deliver(ctx context.Context, batchID string, notice grading.FailureNotice) dto.DispatchOutcome {
	outcome := dto.DispatchOutcome{Notice: notice}
	logger := s.logger.With().
		Str("batch_id", batchID).
		Uint("student_id", notice.StudentID).
		Uint("subject_id", notice.SubjectID).
		Str("exam_type", notice.ExamType).
		Logger()

	switch {
	case notice.ParentEmail == nil:
		outcome.Status = models.NotificationStatusSkipped
		outcome.Error = ErrNoParentEmail.Error()
	case !s.claim(ctx, notice, logger):
		outcome.Status = models.NotificationStatusDuplicate
	default:
		if err := s.sendAlert(ctx, notice); err != nil {
			outcome.Status = models.NotificationStatusFailed
			outcome.Error = err.Error()
			s.release(ctx, notice)
			logger.Warn().Err(err).Str("recipient", maskEmailAddress(*notice.ParentEmail)).Msg("failure alert delivery failed")
		} else {
			outcome.Status = models.NotificationStatusSent
			outcome.Notice.EmailSent = true
			logger.Info().Str("recipient", maskEmailAddress(*notice.ParentEmail)).Msg("failure alert sent")
		}
	}

	s.record(ctx, batchID, outcome, logger)
	s.publish(batchID, outcome, logger)
	observability.FailureNotices().WithLabelValues(outcome.Status).Inc()

	return outcome
}

func (s *notificationService) sendAlert(ctx context.Context, notice grading.FailureNotice) error {
	msg, err := mailer.RenderFailureAlert(notice, s.appName)
	if err != nil {
		return err
	}
	return s.mail.Send(ctx, msg)
}

// claim reserves the dedupe key for a notice. Redis errors fail open so a
// cache outage never suppresses an alert.
func (s *notificationService) claim(ctx context.Context, notice grading.FailureNotice, logger zerolog.Logger) bool {
	if s.cache == nil {
		return true
	}
	ok, err := s.cache.SetNX(ctx, dedupeKey(notice), s.now().Format(time.RFC3339), s.dedupeTTL).Result()
	if err != nil {
		logger.Warn().Err(err).Msg("failure alert dedupe unavailable")
		return true
	}
	return ok
}

func (s *notificationService) release(ctx context.Context, notice grading.FailureNotice) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, dedupeKey(notice)).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to release failure alert dedupe key")
	}
}

func dedupeKey(notice grading.FailureNotice) string {
	return fmt.Sprintf("failure-alert:%d:%d:%s", notice.StudentID, notice.SubjectID, notice.ExamType)
}

func (s *notificationService) record(ctx context.Context, batchID string, outcome dto.DispatchOutcome, logger zerolog.Logger) {
	subjectID := outcome.Notice.SubjectID
	entry := models.NotificationLog{
		BatchID:   batchID,
		Kind:      models.NotificationKindFailureAlert,
		StudentID: outcome.Notice.StudentID,
		SubjectID: &subjectID,
		ExamType:  outcome.Notice.ExamType,
		Status:    outcome.Status,
		Error:     outcome.Error,
		Metadata: datatypes.JSONMap{
			"subject":        outcome.Notice.SubjectName,
			"marks_obtained": outcome.Notice.MarksObtained,
			"max_marks":      outcome.Notice.MaxMarks,
			"pass_marks":     outcome.Notice.PassMarks,
		},
	}
	if outcome.Notice.ParentEmail != nil {
		entry.Recipient = *outcome.Notice.ParentEmail
	}

	if err := s.logs.Create(ctx, &entry); err != nil {
		logger.Error().Err(err).Msg("failed to persist notification log")
	}
}

func (s *notificationService) publish(batchID string, outcome dto.DispatchOutcome, logger zerolog.Logger) {
	if s.events == nil || s.subject == "" {
		return
	}

	payload, err := json.Marshal(failureEvent{
		BatchID: batchID,
		Status:  outcome.Status,
		Notice:  outcome.Notice,
		SentAt:  s.now(),
	})
	if err != nil {
		logger.Warn().Err(err).Msg("failed to encode failure event")
		return
	}

	if err := s.events.Publish(s.subject, payload); err != nil {
		logger.Warn().Err(err).Msg("failed to publish failure event")
	}
}

func (s *notificationService) SendReportCard(ctx context.Context, studentID uint, examType string) (dto.DispatchOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "notifications.report_card", trace.WithAttributes(
		attribute.Int64("student.id", int64(studentID)),
	))
	defer span.End()

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		err = notFound(err, "student", studentID)
		span.RecordError(err)
		return dto.DispatchOutcome{}, err
	}
	if strings.TrimSpace(student.ParentEmail) == "" {
		span.SetStatus(codes.Error, "no parent email")
		return dto.DispatchOutcome{}, ErrNoParentEmail
	}

	report, err := s.reports.StudentReport(ctx, studentID, examType)
	if err != nil {
		span.RecordError(err)
		return dto.DispatchOutcome{}, err
	}

	outcome := s.deliverReportCard(ctx, "", student, report)
	if outcome.Status == models.NotificationStatusFailed {
		span.SetStatus(codes.Error, "delivery failed")
	}
	return outcome, nil
}

// SendReportCards mails report cards to every student of the selected roster
// whose overall result matches the filter. Students without marks for the
// exam are left out.
func (s *notificationService) SendReportCards(ctx context.Context, req dto.BulkReportCardRequest) (dto.DispatchSummary, error) {
	filter := req.ResultFilter()
	ctx, span := s.tracer.Start(ctx, "notifications.report_cards", trace.WithAttributes(
		attribute.String("class.name", req.ClassName),
		attribute.String("report.filter", filter),
	))
	defer span.End()

	students, _, err := s.students.List(ctx, repository.StudentFilter{
		ClassName: strings.TrimSpace(req.ClassName),
		Section:   strings.ToUpper(strings.TrimSpace(req.Section)),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load students failed")
		return dto.DispatchSummary{}, fmt.Errorf("load students: %w", err)
	}

	summary := dto.DispatchSummary{
		BatchID:  uuid.NewString(),
		Outcomes: make([]dto.DispatchOutcome, 0, len(students)),
	}
	span.SetAttributes(attribute.String("dispatch.batch_id", summary.BatchID))

	for _, student := range students {
		report, err := s.reports.StudentReport(ctx, student.ID, req.ExamType)
		switch {
		case errors.Is(err, ErrReportUnavailable):
			continue
		case err != nil:
			outcome := dto.DispatchOutcome{
				Notice: reportCardNotice(student, examOrDefault(req.ExamType, "")),
				Status: models.NotificationStatusFailed,
				Error:  err.Error(),
			}
			s.recordReportCard(ctx, summary.BatchID, outcome, nil)
			summary.Count(outcome)
			continue
		}

		if !dto.ResultMatches(filter, report.Result) {
			continue
		}
		summary.Count(s.deliverReportCard(ctx, summary.BatchID, student, report))
	}

	s.logger.Info().
		Str("batch_id", summary.BatchID).
		Str("filter", filter).
		Int("sent", summary.Sent).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Msg("report cards dispatched")

	return summary, nil
}

func reportCardNotice(student models.Student, examType string) grading.FailureNotice {
	notice := grading.FailureNotice{
		StudentID:   student.ID,
		StudentName: student.Name,
		RollNo:      student.RollNo,
		ClassName:   student.ClassName,
		Section:     student.Section,
		ExamType:    examType,
		ParentName:  student.ParentName,
	}
	if email := strings.TrimSpace(student.ParentEmail); email != "" {
		notice.ParentEmail = &email
	}
	return notice
}

func (s *notificationService) deliverReportCard(ctx context.Context, batchID string, student models.Student, report grading.StudentReport) dto.DispatchOutcome {
	outcome := dto.DispatchOutcome{Notice: reportCardNotice(student, report.ExamType)}
	logger := s.logger.With().Str("batch_id", batchID).Uint("student_id", student.ID).Logger()

	if outcome.Notice.ParentEmail == nil {
		outcome.Status = models.NotificationStatusSkipped
		outcome.Error = ErrNoParentEmail.Error()
		s.recordReportCard(ctx, batchID, outcome, &report)
		return outcome
	}

	msg, err := mailer.RenderReportCard(report, student.ParentName, *outcome.Notice.ParentEmail, s.appName)
	if err == nil {
		err = s.mail.Send(ctx, msg)
	}
	if err != nil {
		outcome.Status = models.NotificationStatusFailed
		outcome.Error = err.Error()
		logger.Warn().Err(err).Str("recipient", maskEmailAddress(*outcome.Notice.ParentEmail)).Msg("report card delivery failed")
	} else {
		outcome.Status = models.NotificationStatusSent
		outcome.Notice.EmailSent = true
		logger.Info().Str("recipient", maskEmailAddress(*outcome.Notice.ParentEmail)).Msg("report card sent")
	}

	s.recordReportCard(ctx, batchID, outcome, &report)
	return outcome
}

func (s *notificationService) recordReportCard(ctx context.Context, batchID string, outcome dto.DispatchOutcome, report *grading.StudentReport) {
	entry := models.NotificationLog{
		BatchID:   batchID,
		Kind:      models.NotificationKindReportCard,
		StudentID: outcome.Notice.StudentID,
		ExamType:  outcome.Notice.ExamType,
		Status:    outcome.Status,
		Error:     outcome.Error,
	}
	if outcome.Notice.ParentEmail != nil {
		entry.Recipient = *outcome.Notice.ParentEmail
	}
	if report != nil {
		entry.Metadata = datatypes.JSONMap{
			"percentage": report.Percentage,
			"grade":      string(report.OverallGrade),
			"result":     string(report.Result),
		}
	}

	if err := s.logs.Create(ctx, &entry); err != nil {
		s.logger.Error().Err(err).Uint("student_id", entry.StudentID).Msg("failed to persist report card log")
	}
}

func (s *notificationService) History(ctx context.Context, req dto.NotificationHistoryRequest) ([]dto.NotificationLogResponse, error) {
	entries, err := s.logs.List(ctx, repository.NotificationLogFilter{
		StudentID: req.StudentID,
		Status:    req.Status,
		BatchID:   req.BatchID,
		Limit:     req.Limit,
	})
	if err != nil {
		return nil, err
	}
	return dto.NewNotificationLogResponseSlice(entries), nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/marktrack-api/internal/dto"
	"github.com/noah-isme/marktrack-api/internal/grading"
	"github.com/noah-isme/marktrack-api/internal/mailer"
	"github.com/noah-isme/marktrack-api/internal/observability"
	"github.com/noah-isme/marktrack-api/internal/repository"
)

// ReportService loads mark snapshots and turns them into reports.
type ReportService interface {
	StudentReport(ctx context.Context, studentID uint, examType string) (grading.StudentReport, error)
	StudentReportForUser(ctx context.Context, userID uint, examType string) (grading.StudentReport, error)
	StudentReportHTML(ctx context.Context, studentID uint, examType string) (string, error)
	StudentIDForUser(ctx context.Context, userID uint) (uint, error)
	ClassReport(ctx context.Context, className, section, examType string) (grading.ClassReport, error)
	Failures(ctx context.Context, filter grading.FailureFilter) ([]grading.FailureNotice, error)
	Analytics(ctx context.Context, req dto.AnalyticsRequest) (grading.AnalyticsSummary, error)
}

type reportService struct {
	students    repository.StudentRepository
	subjects    repository.SubjectRepository
	marks       repository.MarkRepository
	defaultExam string
	appName     string
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewReportService constructs the report service.
func NewReportService(students repository.StudentRepository, subjects repository.SubjectRepository, marks repository.MarkRepository, defaultExam, appName string, logger zerolog.Logger) ReportService {
	return &reportService{
		students:    students,
		subjects:    subjects,
		marks:       marks,
		defaultExam: defaultExam,
		appName:     appName,
		logger:      logger.With().Str("component", "report_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/marktrack-api/internal/service/report"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *reportService) StudentReport(ctx context.Context, studentID uint, examType string) (grading.StudentReport, error) {
	examType = examOrDefault(examType, s.defaultExam)
	ctx, span := s.tracer.Start(ctx, "reports.student", trace.WithAttributes(
		attribute.Int64("student.id", int64(studentID)),
		attribute.String("exam.type", examType),
	))
	defer span.End()

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return grading.StudentReport{}, s.fail(span, "student", notFound(err, "student", studentID))
	}

	return s.buildStudentReport(ctx, span, toGradingStudent(student), examType)
}

func (s *reportService) StudentReportForUser(ctx context.Context, userID uint, examType string) (grading.StudentReport, error) {
	studentID, err := s.StudentIDForUser(ctx, userID)
	if err != nil {
		return grading.StudentReport{}, err
	}
	return s.StudentReport(ctx, studentID, examType)
}

func (s *reportService) StudentIDForUser(ctx context.Context, userID uint) (uint, error) {
	if userID == 0 {
		return 0, ErrNoStudentProfile
	}
	student, err := s.students.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNoStudentProfile
		}
		return 0, err
	}
	return student.ID, nil
}

func (s *reportService) StudentReportHTML(ctx context.Context, studentID uint, examType string) (string, error) {
	report, err := s.StudentReport(ctx, studentID, examType)
	if err != nil {
		return "", err
	}
	return mailer.RenderReportCardHTML(report, s.appName)
}

func (s *reportService) buildStudentReport(ctx context.Context, span trace.Span, student grading.Student, examType string) (grading.StudentReport, error) {
	marks, _, err := s.marks.List(ctx, repository.MarkFilter{StudentID: student.ID, ExamType: examType})
	if err != nil {
		return grading.StudentReport{}, s.fail(span, "student", fmt.Errorf("load marks: %w", err))
	}

	subjects, err := loadSubjectsFor(ctx, s.subjects, marks)
	if err != nil {
		return grading.StudentReport{}, s.fail(span, "student", err)
	}

	report, err := grading.BuildStudentReport(student, examType, toMarkRecords(marks), subjects, s.now())
	if err != nil {
		return grading.StudentReport{}, s.fail(span, "student", err)
	}

	span.SetAttributes(attribute.String("report.result", string(report.Result)))
	observability.ReportsGenerated().WithLabelValues("student", "success").Inc()
	return report, nil
}

func (s *reportService) ClassReport(ctx context.Context, className, section, examType string) (grading.ClassReport, error) {
	className = strings.TrimSpace(className)
	if className == "" {
		return grading.ClassReport{}, fmt.Errorf("%w: class name is required", ErrInvalidInput)
	}
	section = strings.TrimSpace(section)
	if section == "" {
		section = "A"
	}
	examType = examOrDefault(examType, s.defaultExam)

	ctx, span := s.tracer.Start(ctx, "reports.class", trace.WithAttributes(
		attribute.String("class.name", className),
		attribute.String("class.section", section),
		attribute.String("exam.type", examType),
	))
	defer span.End()

	students, err := s.students.ListByClass(ctx, className, section)
	if err != nil {
		return grading.ClassReport{}, s.fail(span, "class", fmt.Errorf("load students: %w", err))
	}

	roster := make([]grading.Student, 0, len(students))
	ids := make([]uint, 0, len(students))
	for _, student := range students {
		roster = append(roster, toGradingStudent(student))
		ids = append(ids, student.ID)
	}

	var records []grading.MarkRecord
	subjects := map[uint]grading.Subject{}
	if len(ids) > 0 {
		marks, _, err := s.marks.List(ctx, repository.MarkFilter{StudentIDs: ids, ExamType: examType})
		if err != nil {
			return grading.ClassReport{}, s.fail(span, "class", fmt.Errorf("load marks: %w", err))
		}
		subjects, err = loadSubjectsFor(ctx, s.subjects, marks)
		if err != nil {
			return grading.ClassReport{}, s.fail(span, "class", err)
		}
		records = toMarkRecords(marks)
	}

	report, err := grading.BuildClassReport(className, section, examType, roster, records, subjects, s.now())
	if err != nil {
		return grading.ClassReport{}, s.fail(span, "class", err)
	}

	span.SetAttributes(attribute.Int("class.evaluated_students", report.TotalStudents))
	observability.ReportsGenerated().WithLabelValues("class", "success").Inc()
	return report, nil
}

func (s *reportService) Failures(ctx context.Context, filter grading.FailureFilter) ([]grading.FailureNotice, error) {
	ctx, span := s.tracer.Start(ctx, "reports.failures")
	defer span.End()

	query := repository.MarkFilter{}
	if filter.ClassName != nil {
		query.ClassName = *filter.ClassName
	}
	if filter.SubjectID != nil {
		query.SubjectID = *filter.SubjectID
	}
	if filter.ExamType != nil {
		query.ExamType = *filter.ExamType
	}

	marks, _, err := s.marks.List(ctx, query)
	if err != nil {
		return nil, s.fail(span, "failures", fmt.Errorf("load marks: %w", err))
	}

	subjects, err := loadSubjectsFor(ctx, s.subjects, marks)
	if err != nil {
		return nil, s.fail(span, "failures", err)
	}

	students, err := s.students.ListByIDs(ctx, distinctStudentIDs(marks))
	if err != nil {
		return nil, s.fail(span, "failures", fmt.Errorf("load students: %w", err))
	}

	notices, err := grading.DetectFailures(toMarkRecords(marks), subjects, studentIndex(students), filter)
	if err != nil {
		return nil, s.fail(span, "failures", err)
	}

	span.SetAttributes(attribute.Int("failures.count", len(notices)))
	observability.ReportsGenerated().WithLabelValues("failures", "success").Inc()
	return notices, nil
}

// Analytics summarises every stored mark matching the request across exam
// types unless one is given.
func (s *reportService) Analytics(ctx context.Context, req dto.AnalyticsRequest) (grading.AnalyticsSummary, error) {
	filter := repository.MarkFilter{
		ClassName: strings.TrimSpace(req.ClassName),
		Section:   strings.ToUpper(strings.TrimSpace(req.Section)),
		SubjectID: req.SubjectID,
		ExamType:  strings.TrimSpace(req.ExamType),
	}

	ctx, span := s.tracer.Start(ctx, "reports.analytics", trace.WithAttributes(
		attribute.String("class.name", filter.ClassName),
		attribute.String("exam.type", filter.ExamType),
	))
	defer span.End()

	marks, _, err := s.marks.List(ctx, filter)
	if err != nil {
		return grading.AnalyticsSummary{}, s.fail(span, "analytics", fmt.Errorf("load marks: %w", err))
	}

	subjects, err := loadSubjectsFor(ctx, s.subjects, marks)
	if err != nil {
		return grading.AnalyticsSummary{}, s.fail(span, "analytics", err)
	}

	summary, err := grading.Summarize(toMarkRecords(marks), subjects)
	if err != nil {
		return grading.AnalyticsSummary{}, s.fail(span, "analytics", err)
	}

	span.SetAttributes(attribute.Int("analytics.assessments", summary.TotalAssessments))
	observability.ReportsGenerated().WithLabelValues("analytics", "success").Inc()
	return summary, nil
}

func (s *reportService) fail(span trace.Span, kind string, err error) error {
	outcome := "error"
	switch {
	case errors.Is(err, ErrReportUnavailable):
		outcome = "no_data"
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, ErrInvalidInput):
		outcome = "invalid"
		s.logger.Warn().Err(err).Str("kind", kind).Msg("stored marks violate subject thresholds")
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, outcome)
	observability.ReportsGenerated().WithLabelValues(kind, outcome).Inc()
	return err
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/marktrack-api/internal/dto"
	"github.com/noah-isme/marktrack-api/internal/grading"
	"github.com/noah-isme/marktrack-api/internal/models"
	"github.com/noah-isme/marktrack-api/internal/observability"
	"github.com/noah-isme/marktrack-api/internal/repository"
)

// MarkService manages teacher-entered marks.
type MarkService interface {
	Create(ctx context.Context, req dto.MarkCreateRequest, enteredBy uint) (dto.MarkResponse, error)
	BulkCreate(ctx context.Context, req dto.MarkBulkRequest, enteredBy uint) (grading.BulkResult, error)
	Update(ctx context.Context, id uint, req dto.MarkUpdateRequest) (dto.MarkResponse, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, req dto.MarkListRequest) (dto.MarkListResponse, error)
}

type markService struct {
	marks       repository.MarkRepository
	students    repository.StudentRepository
	subjects    repository.SubjectRepository
	alerter     FailureAlerter
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	defaultExam string
	logger      zerolog.Logger
}

// NewMarkService constructs the mark service. alerter may be nil to disable
// automatic failure alerts.
func NewMarkService(marks repository.MarkRepository, students repository.StudentRepository, subjects repository.SubjectRepository, alerter FailureAlerter, validate *validator.Validate, defaultExam string, logger zerolog.Logger) MarkService {
	return &markService{
		marks:       marks,
		students:    students,
		subjects:    subjects,
		alerter:     alerter,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		defaultExam: defaultExam,
		logger:      logger.With().Str("component", "mark_service").Logger(),
	}
}

func (s *markService) Create(ctx context.Context, req dto.MarkCreateRequest, enteredBy uint) (dto.MarkResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.MarkResponse{}, err
	}

	student, err := s.students.GetByID(ctx, req.StudentID)
	if err != nil {
		return dto.MarkResponse{}, notFound(err, "student", req.StudentID)
	}
	subject, err := s.subjects.GetByID(ctx, req.SubjectID)
	if err != nil {
		return dto.MarkResponse{}, notFound(err, "subject", req.SubjectID)
	}

	mark := models.Mark{
		StudentID:     student.ID,
		SubjectID:     subject.ID,
		ExamType:      examOrDefault(strings.TrimSpace(req.ExamType), s.defaultExam),
		MarksObtained: *req.MarksObtained,
		Remarks:       s.cleanRemarks(req.Remarks),
		EnteredBy:     enteredBy,
	}

	evaluation, err := grading.Evaluate(toMarkRecord(mark), toGradingSubject(subject))
	if err != nil {
		return dto.MarkResponse{}, err
	}

	if err := s.insert(ctx, &mark); err != nil {
		return dto.MarkResponse{}, err
	}
	observability.MarksIngested().WithLabelValues("accepted").Inc()

	s.logger.Info().
		Uint("mark_id", mark.ID).
		Uint("student_id", mark.StudentID).
		Uint("subject_id", mark.SubjectID).
		Str("status", string(evaluation.Status)).
		Msg("mark recorded")

	if evaluation.Status == grading.StatusFail {
		s.alert(ctx, student, evaluation, mark.ExamType)
	}

	return dto.NewMarkResponse(mark, evaluation), nil
}

func (s *markService) BulkCreate(ctx context.Context, req dto.MarkBulkRequest, enteredBy uint) (grading.BulkResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return grading.BulkResult{}, err
	}

	subject, err := s.subjects.GetByID(ctx, req.SubjectID)
	if err != nil {
		return grading.BulkResult{}, notFound(err, "subject", req.SubjectID)
	}
	examType := examOrDefault(strings.TrimSpace(req.ExamType), s.defaultExam)

	ids := make([]uint, 0, len(req.Rows))
	for _, row := range req.Rows {
		if row.StudentID != 0 {
			ids = append(ids, row.StudentID)
		}
	}
	roster, err := s.students.ListByIDs(ctx, ids)
	if err != nil {
		return grading.BulkResult{}, fmt.Errorf("load students: %w", err)
	}
	known := studentIndex(roster)
	byID := make(map[uint]models.Student, len(roster))
	for _, student := range roster {
		byID[student.ID] = student
	}

	result, err := grading.ValidateBulk(toGradingSubject(subject), examType, req.Rows, known)
	if err != nil {
		return grading.BulkResult{}, err
	}

	for i := range result.Rows {
		row := result.Rows[i]
		if !row.Accepted {
			continue
		}

		mark := models.Mark{
			StudentID:     row.StudentID,
			SubjectID:     subject.ID,
			ExamType:      examType,
			MarksObtained: req.Rows[i].MarksObtained,
			EnteredBy:     enteredBy,
		}
		if err := s.insert(ctx, &mark); err != nil {
			if !errors.Is(err, ErrDuplicateMark) {
				s.logger.Error().Err(err).Int("row", row.Row).Uint("student_id", row.StudentID).Msg("failed to store bulk mark")
				err = errors.New("failed to store mark")
			}
			result.Reject(i, err)
			continue
		}

		if row.Evaluation != nil && row.Evaluation.Status == grading.StatusFail {
			s.alert(ctx, byID[row.StudentID], *row.Evaluation, examType)
		}
	}

	observability.MarksIngested().WithLabelValues("accepted").Add(float64(result.Accepted))
	observability.MarksIngested().WithLabelValues("rejected").Add(float64(result.Rejected))
	s.logger.Info().
		Uint("subject_id", subject.ID).
		Str("exam_type", examType).
		Int("accepted", result.Accepted).
		Int("rejected", result.Rejected).
		Msg("bulk marks processed")

	return result, nil
}

func (s *markService) Update(ctx context.Context, id uint, req dto.MarkUpdateRequest) (dto.MarkResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.MarkResponse{}, err
	}

	mark, err := s.marks.GetByID(ctx, id)
	if err != nil {
		return dto.MarkResponse{}, notFound(err, "mark", id)
	}
	subject, err := s.subjects.GetByID(ctx, mark.SubjectID)
	if err != nil {
		return dto.MarkResponse{}, notFound(err, "subject", mark.SubjectID)
	}
	gradingSubject := toGradingSubject(subject)

	before, err := grading.Evaluate(toMarkRecord(mark), gradingSubject)
	if err != nil {
		// Stored marks outside the subject range count as failing.
		before = grading.SubjectEvaluation{Status: grading.StatusFail}
	}

	if req.MarksObtained != nil {
		mark.MarksObtained = *req.MarksObtained
	}
	if req.Remarks != nil {
		mark.Remarks = s.cleanRemarks(*req.Remarks)
	}

	after, err := grading.Evaluate(toMarkRecord(mark), gradingSubject)
	if err != nil {
		return dto.MarkResponse{}, err
	}

	if err := s.marks.Update(ctx, &mark); err != nil {
		return dto.MarkResponse{}, err
	}

	if before.Status == grading.StatusPass && after.Status == grading.StatusFail {
		student, err := s.students.GetByID(ctx, mark.StudentID)
		if err != nil {
			s.logger.Warn().Err(err).Uint("mark_id", mark.ID).Msg("failure alert skipped, student lookup failed")
		} else {
			s.alert(ctx, student, after, mark.ExamType)
		}
	}

	return dto.NewMarkResponse(mark, after), nil
}

func (s *markService) Delete(ctx context.Context, id uint) error {
	if err := s.marks.Delete(ctx, id); err != nil {
		return notFound(err, "mark", id)
	}
	s.logger.Info().Uint("mark_id", id).Msg("mark deleted")
	return nil
}

func (s *markService) List(ctx context.Context, req dto.MarkListRequest) (dto.MarkListResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.MarkListResponse{}, err
	}

	page := req.Page
	if page <= 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	marks, total, err := s.marks.List(ctx, repository.MarkFilter{
		StudentID: req.StudentID,
		SubjectID: req.SubjectID,
		ExamType:  strings.TrimSpace(req.ExamType),
		ClassName: strings.TrimSpace(req.ClassName),
		Section:   strings.TrimSpace(req.Section),
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		return dto.MarkListResponse{}, err
	}

	subjects, err := loadSubjectsFor(ctx, s.subjects, marks)
	if err != nil {
		return dto.MarkListResponse{}, err
	}

	items := make([]dto.MarkResponse, 0, len(marks))
	for _, mark := range marks {
		subject, ok := subjects[mark.SubjectID]
		if !ok {
			return dto.MarkListResponse{}, fmt.Errorf("%w: subject %d", ErrNotFound, mark.SubjectID)
		}
		evaluation, err := grading.Evaluate(toMarkRecord(mark), subject)
		if err != nil {
			s.logger.Warn().Err(err).Uint("mark_id", mark.ID).Msg("stored mark outside subject range")
			evaluation = grading.SubjectEvaluation{
				SubjectName: subject.Name,
				SubjectCode: subject.Code,
				MaxMarks:    subject.MaxMarks,
				PassMarks:   subject.PassMarks,
				Status:      grading.StatusFail,
				Grade:       grading.GradeF,
			}
		}
		items = append(items, dto.NewMarkResponse(mark, evaluation))
	}

	return dto.MarkListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(page, pageSize, total),
	}, nil
}

func (s *markService) insert(ctx context.Context, mark *models.Mark) error {
	exists, err := s.marks.Exists(ctx, mark.StudentID, mark.SubjectID, mark.ExamType)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateMark
	}

	if err := s.marks.Create(ctx, mark); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateMark
		}
		return err
	}
	return nil
}

func (s *markService) alert(ctx context.Context, student models.Student, evaluation grading.SubjectEvaluation, examType string) {
	if s.alerter == nil {
		return
	}

	notice := grading.FailureNotice{
		StudentID:     student.ID,
		StudentName:   student.Name,
		RollNo:        student.RollNo,
		ClassName:     student.ClassName,
		Section:       student.Section,
		SubjectID:     evaluation.SubjectID,
		SubjectName:   evaluation.SubjectName,
		ExamType:      examType,
		MarksObtained: evaluation.MarksObtained,
		MaxMarks:      evaluation.MaxMarks,
		PassMarks:     evaluation.PassMarks,
		ParentName:    student.ParentName,
	}
	if email := strings.TrimSpace(student.ParentEmail); email != "" {
		notice.ParentEmail = &email
	}

	outcome := s.alerter.AlertMark(ctx, notice)
	if outcome.Status == models.NotificationStatusFailed {
		s.logger.Warn().Str("error", outcome.Error).Uint("student_id", student.ID).Msg("automatic failure alert not delivered")
	}
}

func (s *markService) cleanRemarks(remarks string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(remarks))
}

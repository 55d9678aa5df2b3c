package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/marktrack-api/internal/dto"
	"github.com/noah-isme/marktrack-api/internal/grading"
	"github.com/noah-isme/marktrack-api/internal/models"
	"github.com/noah-isme/marktrack-api/internal/repository"
)

// SubjectService manages subjects and their thresholds.
type SubjectService interface {
	List(ctx context.Context) ([]dto.SubjectResponse, error)
	Get(ctx context.Context, id uint) (dto.SubjectResponse, error)
	Create(ctx context.Context, req dto.SubjectCreateRequest) (dto.SubjectResponse, error)
	Update(ctx context.Context, id uint, req dto.SubjectUpdateRequest) (dto.SubjectResponse, error)
	Delete(ctx context.Context, id uint) error
}

type subjectService struct {
	subjects  repository.SubjectRepository
	marks     repository.MarkRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSubjectService constructs the subject service.
func NewSubjectService(subjects repository.SubjectRepository, marks repository.MarkRepository, validate *validator.Validate, logger zerolog.Logger) SubjectService {
	return &subjectService{
		subjects:  subjects,
		marks:     marks,
		validator: validate,
		logger:    logger.With().Str("component", "subject_service").Logger(),
	}
}

func (s *subjectService) List(ctx context.Context) ([]dto.SubjectResponse, error) {
	subjects, err := s.subjects.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewSubjectResponseSlice(subjects), nil
}

func (s *subjectService) Get(ctx context.Context, id uint) (dto.SubjectResponse, error) {
	subject, err := s.subjects.GetByID(ctx, id)
	if err != nil {
		return dto.SubjectResponse{}, notFound(err, "subject", id)
	}
	return dto.NewSubjectResponse(subject), nil
}

func (s *subjectService) Create(ctx context.Context, req dto.SubjectCreateRequest) (dto.SubjectResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SubjectResponse{}, err
	}

	subject := models.Subject{
		Name:      strings.TrimSpace(req.Name),
		Code:      strings.ToUpper(strings.TrimSpace(req.Code)),
		MaxMarks:  req.MaxMarks,
		PassMarks: req.PassMarks,
		TeacherID: req.TeacherID,
	}
	if err := grading.ValidateSubject(toGradingSubject(subject)); err != nil {
		return dto.SubjectResponse{}, err
	}

	if err := s.subjects.Create(ctx, &subject); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.SubjectResponse{}, ErrDuplicateSubject
		}
		return dto.SubjectResponse{}, err
	}

	s.logger.Info().Uint("subject_id", subject.ID).Str("code", subject.Code).Msg("subject created")
	return dto.NewSubjectResponse(subject), nil
}

func (s *subjectService) Update(ctx context.Context, id uint, req dto.SubjectUpdateRequest) (dto.SubjectResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SubjectResponse{}, err
	}

	subject, err := s.subjects.GetByID(ctx, id)
	if err != nil {
		return dto.SubjectResponse{}, notFound(err, "subject", id)
	}

	if req.Name != nil {
		subject.Name = strings.TrimSpace(*req.Name)
	}
	lowered := req.MaxMarks != nil && *req.MaxMarks < subject.MaxMarks
	if req.MaxMarks != nil {
		subject.MaxMarks = *req.MaxMarks
	}
	if req.PassMarks != nil {
		subject.PassMarks = *req.PassMarks
	}
	if req.TeacherID != nil {
		subject.TeacherID = req.TeacherID
	}

	if err := grading.ValidateSubject(toGradingSubject(subject)); err != nil {
		return dto.SubjectResponse{}, err
	}

	// Stored marks must stay within [0, max] for reports to remain buildable.
	if lowered {
		highest, err := s.marks.HighestForSubject(ctx, subject.ID)
		if err != nil {
			return dto.SubjectResponse{}, err
		}
		if highest > subject.MaxMarks {
			return dto.SubjectResponse{}, fmt.Errorf("%w: stored marks up to %d exceed new max marks %d", ErrSubjectInUse, highest, subject.MaxMarks)
		}
	}

	if err := s.subjects.Update(ctx, &subject); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.SubjectResponse{}, ErrDuplicateSubject
		}
		return dto.SubjectResponse{}, err
	}

	return dto.NewSubjectResponse(subject), nil
}

func (s *subjectService) Delete(ctx context.Context, id uint) error {
	_, total, err := s.marks.List(ctx, repository.MarkFilter{SubjectID: id, PageSize: 1})
	if err != nil {
		return err
	}
	if total > 0 {
		return fmt.Errorf("%w: %d marks", ErrSubjectInUse, total)
	}

	if err := s.subjects.Delete(ctx, id); err != nil {
		return notFound(err, "subject", id)
	}

	s.logger.Info().Uint("subject_id", id).Msg("subject deleted")
	return nil
}

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
	"github.com/noah-isme/marktrack-api/internal/models"
	"github.com/noah-isme/marktrack-api/internal/repository"
)

// StudentService manages the student roster.
type StudentService interface {
	Create(ctx context.Context, req dto.StudentCreateRequest) (dto.StudentResponse, error)
	Get(ctx context.Context, id uint) (dto.StudentResponse, error)
	List(ctx context.Context, req dto.StudentListRequest) (dto.StudentListResponse, error)
	Update(ctx context.Context, id uint, req dto.StudentUpdateRequest) (dto.StudentResponse, error)
	Delete(ctx context.Context, id uint) error
}

type studentService struct {
	students  repository.StudentRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(students repository.StudentRepository, validate *validator.Validate, logger zerolog.Logger) StudentService {
	return &studentService{
		students:  students,
		validator: validate,
		logger:    logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) Create(ctx context.Context, req dto.StudentCreateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentResponse{}, err
	}

	section := strings.ToUpper(strings.TrimSpace(req.Section))
	if section == "" {
		section = "A"
	}

	student := models.Student{
		UserID:      req.UserID,
		Name:        strings.TrimSpace(req.Name),
		RollNo:      strings.TrimSpace(req.RollNo),
		ClassName:   strings.TrimSpace(req.ClassName),
		Section:     section,
		ParentName:  strings.TrimSpace(req.ParentName),
		ParentEmail: strings.ToLower(strings.TrimSpace(req.ParentEmail)),
		ParentPhone: strings.TrimSpace(req.ParentPhone),
	}

	if err := s.students.Create(ctx, &student); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.StudentResponse{}, ErrDuplicateStudent
		}
		return dto.StudentResponse{}, err
	}

	s.logger.Info().Uint("student_id", student.ID).Str("class", student.ClassName).Msg("student enrolled")
	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Get(ctx context.Context, id uint) (dto.StudentResponse, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return dto.StudentResponse{}, notFound(err, "student", id)
	}
	return dto.NewStudentResponse(student), nil
}

func (s *studentService) List(ctx context.Context, req dto.StudentListRequest) (dto.StudentListResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentListResponse{}, err
	}

	page := req.Page
	if page <= 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	students, total, err := s.students.List(ctx, repository.StudentFilter{
		ClassName: strings.TrimSpace(req.ClassName),
		Section:   strings.ToUpper(strings.TrimSpace(req.Section)),
		Search:    req.Search,
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		return dto.StudentListResponse{}, err
	}

	items := make([]dto.StudentResponse, 0, len(students))
	for _, student := range students {
		items = append(items, dto.NewStudentResponse(student))
	}

	return dto.StudentListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(page, pageSize, total),
	}, nil
}

func (s *studentService) Update(ctx context.Context, id uint, req dto.StudentUpdateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return dto.StudentResponse{}, notFound(err, "student", id)
	}

	if req.Name != nil {
		student.Name = strings.TrimSpace(*req.Name)
	}
	if req.RollNo != nil {
		student.RollNo = strings.TrimSpace(*req.RollNo)
	}
	if req.ClassName != nil {
		student.ClassName = strings.TrimSpace(*req.ClassName)
	}
	if req.Section != nil {
		student.Section = strings.ToUpper(strings.TrimSpace(*req.Section))
		if student.Section == "" {
			student.Section = "A"
		}
	}
	if req.ParentName != nil {
		student.ParentName = strings.TrimSpace(*req.ParentName)
	}
	if req.ParentEmail != nil {
		email := strings.ToLower(strings.TrimSpace(*req.ParentEmail))
		if email != "" {
			if err := s.validator.Var(email, "email"); err != nil {
				return dto.StudentResponse{}, fmt.Errorf("%w: parent email is not a valid address", ErrInvalidInput)
			}
		}
		student.ParentEmail = email
	}
	if req.ParentPhone != nil {
		student.ParentPhone = strings.TrimSpace(*req.ParentPhone)
	}

	if student.Name == "" || student.RollNo == "" || student.ClassName == "" {
		return dto.StudentResponse{}, fmt.Errorf("%w: name, roll number and class are required", ErrInvalidInput)
	}

	if err := s.students.Update(ctx, &student); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.StudentResponse{}, ErrDuplicateStudent
		}
		return dto.StudentResponse{}, err
	}

	s.logger.Info().Uint("student_id", student.ID).Msg("student updated")
	return dto.NewStudentResponse(student), nil
}

// Delete removes a student and every mark recorded for them.
func (s *studentService) Delete(ctx context.Context, id uint) error {
	if err := s.students.Delete(ctx, id); err != nil {
		return notFound(err, "student", id)
	}

	s.logger.Info().Uint("student_id", id).Msg("student removed")
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/marktrack-api/internal/dto"
	"github.com/noah-isme/marktrack-api/internal/grading"
	"github.com/noah-isme/marktrack-api/internal/mailer"
	"github.com/noah-isme/marktrack-api/internal/models"
	"github.com/noah-isme/marktrack-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

type fixture struct {
	db       *gorm.DB
	students repository.StudentRepository
	subjects repository.SubjectRepository
	marks    repository.MarkRepository
	logs     repository.NotificationLogRepository

	asha, ben, cara models.Student
	maths, english  models.Subject
}

// newFixture seeds class 10A/A with Asha (parent email, user 501) and Ben
// (no parent email), plus Cara in 10B. Maths and English are out of 100
// with a pass mark of 35.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AutoMigrateModels()...))

	userID := uint(501)
	f := &fixture{
		db:       db,
		students: repository.NewStudentRepository(db),
		subjects: repository.NewSubjectRepository(db),
		marks:    repository.NewMarkRepository(db),
		logs:     repository.NewNotificationLogRepository(db),
		asha:     models.Student{UserID: &userID, Name: "Asha Verma", RollNo: "10A-01", ClassName: "10A", Section: "A", ParentName: "Mrs Verma", ParentEmail: "verma@example.com"},
		ben:      models.Student{Name: "Ben Ortiz", RollNo: "10A-02", ClassName: "10A", Section: "A"},
		cara:     models.Student{Name: "Cara Lim", RollNo: "10B-01", ClassName: "10B", Section: "A", ParentEmail: "lim@example.com"},
		maths:    models.Subject{Name: "Mathematics", Code: "MATH", MaxMarks: 100, PassMarks: 35},
		english:  models.Subject{Name: "English", Code: "ENG", MaxMarks: 100, PassMarks: 35},
	}

	ctx := context.Background()
	for _, student := range []*models.Student{&f.asha, &f.ben, &f.cara} {
		require.NoError(t, f.students.Create(ctx, student))
	}
	for _, subject := range []*models.Subject{&f.maths, &f.english} {
		require.NoError(t, f.subjects.Create(ctx, subject))
	}

	return f
}

func (f *fixture) mark(t *testing.T, student models.Student, subject models.Subject, examType string, marks int) models.Mark {
	t.Helper()
	mark := models.Mark{StudentID: student.ID, SubjectID: subject.ID, ExamType: examType, MarksObtained: marks, EnteredBy: 1}
	require.NoError(t, f.marks.Create(context.Background(), &mark))
	return mark
}

func (f *fixture) reportService() ReportService {
	return NewReportService(f.students, f.subjects, f.marks, "Final", "Springfield High", testLogger())
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type recordingPublisher struct {
	subjects []string
	payloads [][]byte
}

func (p *recordingPublisher) Publish(subject string, data []byte) error {
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

type recordingAlerter struct {
	notices []grading.FailureNotice
}

func (a *recordingAlerter) AlertMark(_ context.Context, notice grading.FailureNotice) dto.DispatchOutcome {
	a.notices = append(a.notices, notice)
	return dto.DispatchOutcome{Notice: notice, Status: models.NotificationStatusSent}
}

var errMailDown = errors.New("smtp relay unavailable")

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func markFilterForSubject(subjectID uint) repository.MarkFilter {
	return repository.MarkFilter{SubjectID: subjectID}
}

package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/marktrack-api/internal/dto"
)

func TestSubjectServiceCreateAndList(t *testing.T) {
	f := newFixture(t)
	svc := NewSubjectService(f.subjects, f.marks, newValidator(), testLogger())
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.SubjectCreateRequest{Name: "Physics Practical", Code: "phyp", MaxMarks: 50, PassMarks: 17})
	require.NoError(t, err)
	require.Equal(t, "PHYP", created.Code)

	subjects, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, subjects, 3)
	require.Equal(t, "ENG", subjects[0].Code)

	_, err = svc.Create(ctx, dto.SubjectCreateRequest{Name: "Broken", Code: "BRK", MaxMarks: 10, PassMarks: 20})
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
}

func TestSubjectServiceUpdateValidatesThresholds(t *testing.T) {
	f := newFixture(t)
	svc := NewSubjectService(f.subjects, f.marks, newValidator(), testLogger())
	ctx := context.Background()

	updated, err := svc.Update(ctx, f.maths.ID, dto.SubjectUpdateRequest{PassMarks: intPtr(40)})
	require.NoError(t, err)
	require.Equal(t, 40, updated.PassMarks)

	_, err = svc.Update(ctx, f.maths.ID, dto.SubjectUpdateRequest{MaxMarks: intPtr(30)})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Update(ctx, 404, dto.SubjectUpdateRequest{PassMarks: intPtr(1)})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSubjectServiceDeleteGuardsRecordedMarks(t *testing.T) {
	f := newFixture(t)
	f.mark(t, f.asha, f.maths, "Final", 60)
	svc := NewSubjectService(f.subjects, f.marks, newValidator(), testLogger())
	ctx := context.Background()

	require.ErrorIs(t, svc.Delete(ctx, f.maths.ID), ErrSubjectInUse)
	require.NoError(t, svc.Delete(ctx, f.english.ID))
	require.ErrorIs(t, svc.Delete(ctx, f.english.ID), ErrNotFound)
}

func TestSubjectServiceUpdateKeepsStoredMarksInRange(t *testing.T) {
	f := newFixture(t)
	f.mark(t, f.asha, f.maths, "Final", 90)
	f.mark(t, f.ben, f.maths, "Final", 40)
	svc := NewSubjectService(f.subjects, f.marks, newValidator(), testLogger())
	ctx := context.Background()

	_, err := svc.Update(ctx, f.maths.ID, dto.SubjectUpdateRequest{MaxMarks: intPtr(50), PassMarks: intPtr(17)})
	require.ErrorIs(t, err, ErrSubjectInUse)

	stored, err := svc.Get(ctx, f.maths.ID)
	require.NoError(t, err)
	require.Equal(t, 100, stored.MaxMarks)
	require.Equal(t, 35, stored.PassMarks)

	report, err := f.reportService().ClassReport(ctx, "10A", "A", "Final")
	require.NoError(t, err)
	require.Equal(t, 2, report.TotalStudents)

	updated, err := svc.Update(ctx, f.maths.ID, dto.SubjectUpdateRequest{MaxMarks: intPtr(90), PassMarks: intPtr(30)})
	require.NoError(t, err)
	require.Equal(t, 90, updated.MaxMarks)

	raised, err := svc.Update(ctx, f.english.ID, dto.SubjectUpdateRequest{MaxMarks: intPtr(20), PassMarks: intPtr(7)})
	require.NoError(t, err, "subjects without marks may shrink freely")
	require.Equal(t, 20, raised.MaxMarks)
}

func TestSubjectServiceGet(t *testing.T) {
	f := newFixture(t)
	svc := NewSubjectService(f.subjects, f.marks, newValidator(), testLogger())

	subject, err := svc.Get(context.Background(), f.english.ID)
	require.NoError(t, err)
	require.Equal(t, "ENG", subject.Code)

	_, err = svc.Get(context.Background(), 404)
	require.ErrorIs(t, err, ErrNotFound)
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/marktrack-api/internal/dto"
	"github.com/noah-isme/marktrack-api/internal/grading"
)

func TestReportServiceStudentReport(t *testing.T) {
	f := newFixture(t)
	f.mark(t, f.asha, f.maths, "Final", 90)
	f.mark(t, f.asha, f.english, "Final", 20)
	f.mark(t, f.asha, f.english, "Midterm", 80)
	f.mark(t, f.ben, f.maths, "Final", 99)

	report, err := f.reportService().StudentReport(context.Background(), f.asha.ID, "")
	require.NoError(t, err)
	require.Equal(t, "Final", report.ExamType)
	require.Equal(t, "10A-01", report.RollNo)
	require.Len(t, report.Subjects, 2)
	require.Equal(t, "ENG", report.Subjects[0].SubjectCode)
	require.Equal(t, 110, report.TotalMarks)
	require.Equal(t, 55.0, report.Percentage)
	require.Equal(t, grading.GradeCPlus, report.OverallGrade)
	require.Equal(t, grading.StatusFail, report.Result)
}

func TestReportServiceStudentReportErrors(t *testing.T) {
	f := newFixture(t)
	f.mark(t, f.asha, f.maths, "Midterm", 70)
	svc := f.reportService()

	_, err := svc.StudentReport(context.Background(), f.asha.ID, "Final")
	require.ErrorIs(t, err, ErrReportUnavailable)

	_, err = svc.StudentReport(context.Background(), 999, "Final")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReportServiceStudentReportForUser(t *testing.T) {
	f := newFixture(t)
	f.mark(t, f.asha, f.maths, "Final", 70)
	svc := f.reportService()

	report, err := svc.StudentReportForUser(context.Background(), 501, "Final")
	require.NoError(t, err)
	require.Equal(t, f.asha.ID, report.StudentID)
	require.Equal(t, grading.StatusPass, report.Result)

	_, err = svc.StudentReportForUser(context.Background(), 777, "Final")
	require.ErrorIs(t, err, ErrNoStudentProfile)

	studentID, err := svc.StudentIDForUser(context.Background(), 501)
	require.NoError(t, err)
	require.Equal(t, f.asha.ID, studentID)
}

func TestReportServiceStudentReportHTML(t *testing.T) {
	f := newFixture(t)
	f.mark(t, f.asha, f.maths, "Final", 70)

	html, err := f.reportService().StudentReportHTML(context.Background(), f.asha.ID, "Final")
	require.NoError(t, err)
	require.Contains(t, html, "Asha Verma")
	require.Contains(t, html, "Springfield High")
	require.Contains(t, html, "70.00%")
}

func TestReportServiceClassReport(t *testing.T) {
	f := newFixture(t)
	f.mark(t, f.asha, f.maths, "Final", 80)
	f.mark(t, f.asha, f.english, "Final", 70)
	f.mark(t, f.ben, f.maths, "Final", 60)
	f.mark(t, f.ben, f.english, "Final", 20)
	f.mark(t, f.cara, f.maths, "Final", 100)

	report, err := f.reportService().ClassReport(context.Background(), "10A", "", "Final")
	require.NoError(t, err)
	require.Equal(t, "A", report.Section)
	require.Equal(t, 2, report.TotalStudents)
	require.Equal(t, 1, report.PassedStudents)
	require.Equal(t, 50.0, report.PassPercentage)
	require.Len(t, report.SubjectWiseStats, 2)
	require.Equal(t, "ENG", report.SubjectWiseStats[0].SubjectCode)
	require.Equal(t, 45.0, report.SubjectWiseStats[0].Average)
	require.Equal(t, 70.0, report.SubjectWiseStats[1].Average)
	require.Len(t, report.TopPerformers, 2)
	require.Equal(t, "10A-01", report.TopPerformers[0].RollNo)
}

func TestReportServiceClassReportEmptyClass(t *testing.T) {
	f := newFixture(t)
	svc := f.reportService()

	report, err := svc.ClassReport(context.Background(), "12C", "B", "Final")
	require.NoError(t, err)
	require.Zero(t, report.TotalStudents)
	require.Empty(t, report.TopPerformers)

	_, err = svc.ClassReport(context.Background(), " ", "A", "Final")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestReportServiceFailures(t *testing.T) {
	f := newFixture(t)
	f.mark(t, f.asha, f.english, "Final", 20)
	f.mark(t, f.ben, f.maths, "Final", 10)
	f.mark(t, f.ben, f.english, "Final", 50)
	f.mark(t, f.cara, f.maths, "Final", 5)

	notices, err := f.reportService().Failures(context.Background(), grading.FailureFilter{ClassName: strPtr("10A")})
	require.NoError(t, err)
	require.Len(t, notices, 2)
	require.Equal(t, f.asha.ID, notices[0].StudentID)
	require.NotNil(t, notices[0].ParentEmail)
	require.Equal(t, f.ben.ID, notices[1].StudentID)
	require.Nil(t, notices[1].ParentEmail)

	subjectID := f.maths.ID
	notices, err = f.reportService().Failures(context.Background(), grading.FailureFilter{SubjectID: &subjectID})
	require.NoError(t, err)
	require.Len(t, notices, 2)
}

func TestReportServiceAnalytics(t *testing.T) {
	f := newFixture(t)
	f.mark(t, f.asha, f.maths, "Final", 88)
	f.mark(t, f.asha, f.english, "Final", 20)
	f.mark(t, f.ben, f.maths, "Midterm", 50)
	f.mark(t, f.cara, f.maths, "Final", 70)
	svc := f.reportService()
	ctx := context.Background()

	all, err := svc.Analytics(ctx, dto.AnalyticsRequest{})
	require.NoError(t, err)
	require.Equal(t, 3, all.TotalStudents)
	require.Equal(t, 4, all.TotalAssessments)
	require.Equal(t, 88, all.HighestMarks)
	require.Equal(t, 20, all.LowestMarks)
	require.Equal(t, 3, all.PassCount)
	require.Equal(t, 75.0, all.PassPercentage)
	require.Len(t, all.SubjectPerformance, 2)

	classFinal, err := svc.Analytics(ctx, dto.AnalyticsRequest{ClassName: "10A", Section: "a", ExamType: "Final"})
	require.NoError(t, err)
	require.Equal(t, 1, classFinal.TotalStudents)
	require.Equal(t, 2, classFinal.TotalAssessments)
	require.Equal(t, 54.0, classFinal.AverageMarks)
	require.Equal(t, 50.0, classFinal.PassPercentage)

	maths, err := svc.Analytics(ctx, dto.AnalyticsRequest{SubjectID: f.maths.ID})
	require.NoError(t, err)
	require.Equal(t, 3, maths.TotalAssessments)
	require.Len(t, maths.SubjectPerformance, 1)
	require.Equal(t, 69.33, maths.SubjectPerformance[0].AverageMarks)

	none, err := svc.Analytics(ctx, dto.AnalyticsRequest{ExamType: "Quiz"})
	require.NoError(t, err)
	require.Zero(t, none.TotalAssessments)
	require.Empty(t, none.SubjectPerformance)
}

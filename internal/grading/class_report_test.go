package grading

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildClassReportPassPercentage(t *testing.T) {
	students := []Student{
		{ID: 1, Name: "Asha", RollNo: "01", ClassName: "10A", Section: "A"},
		{ID: 2, Name: "Ben", RollNo: "02", ClassName: "10A", Section: "A"},
		{ID: 3, Name: "Cara", RollNo: "03", ClassName: "10A", Section: "A"},
	}
	marks := []MarkRecord{
		{StudentID: 1, SubjectID: 1, MarksObtained: 80, ExamType: "Final"},
		{StudentID: 1, SubjectID: 2, MarksObtained: 70, ExamType: "Final"},
		{StudentID: 2, SubjectID: 1, MarksObtained: 60, ExamType: "Final"},
		{StudentID: 2, SubjectID: 2, MarksObtained: 50, ExamType: "Final"},
		{StudentID: 3, SubjectID: 1, MarksObtained: 90, ExamType: "Final"},
		{StudentID: 3, SubjectID: 2, MarksObtained: 20, ExamType: "Final"},
	}

	report, err := BuildClassReport("10A", "A", "Final", students, marks, testSubjects(), fixedNow)
	require.NoError(t, err)
	require.Equal(t, 3, report.TotalStudents)
	require.Equal(t, 2, report.PassedStudents)
	require.Equal(t, 1, report.FailedStudents)
	require.Equal(t, 66.67, report.PassPercentage)

	require.Len(t, report.SubjectWiseStats, 2)
	english := report.SubjectWiseStats[0]
	require.Equal(t, "ENG", english.SubjectCode)
	require.Equal(t, "English", english.Subject)
	require.Equal(t, 46.67, english.Average)
	require.Equal(t, 2, english.Passed)
	require.Equal(t, 1, english.Failed)
	require.Equal(t, 66.67, english.PassRate)

	maths := report.SubjectWiseStats[1]
	require.Equal(t, "MATH", maths.SubjectCode)
	require.Equal(t, 76.67, maths.Average)
	require.Equal(t, 100.0, maths.PassRate)
	require.Equal(t, 100, maths.MaxMarks)

	require.Len(t, report.TopPerformers, 3)
	require.Equal(t, "01", report.TopPerformers[0].RollNo)
	require.Equal(t, 75.0, report.TopPerformers[0].Percentage)
	require.Equal(t, GradeBPlus, report.TopPerformers[0].Grade)
	// 02 and 03 tie on percentage and total, roll number decides.
	require.Equal(t, "02", report.TopPerformers[1].RollNo)
	require.Equal(t, "03", report.TopPerformers[2].RollNo)
}

func TestBuildClassReportExcludesStudentsWithoutMarks(t *testing.T) {
	students := []Student{
		{ID: 1, Name: "Asha", RollNo: "01"},
		{ID: 2, Name: "Ben", RollNo: "02"},
	}
	marks := []MarkRecord{
		{StudentID: 1, SubjectID: 1, MarksObtained: 50, ExamType: "Final"},
		{StudentID: 2, SubjectID: 1, MarksObtained: 10, ExamType: "Midterm"},
	}

	report, err := BuildClassReport("10A", "A", "Final", students, marks, testSubjects(), fixedNow)
	require.NoError(t, err)
	require.Equal(t, 1, report.TotalStudents)
	require.Equal(t, 1, report.PassedStudents)
	require.Equal(t, 0, report.FailedStudents)
	require.Equal(t, 100.0, report.PassPercentage)
}

func TestBuildClassReportEmpty(t *testing.T) {
	report, err := BuildClassReport("10A", "B", "Final", []Student{{ID: 1}}, nil, testSubjects(), fixedNow)
	require.NoError(t, err)
	require.Zero(t, report.TotalStudents)
	require.Zero(t, report.PassPercentage)
	require.NotNil(t, report.SubjectWiseStats)
	require.Empty(t, report.SubjectWiseStats)
	require.NotNil(t, report.TopPerformers)
	require.Empty(t, report.TopPerformers)
}

func TestBuildClassReportSubjectAverageOverEnteredMarksOnly(t *testing.T) {
	students := []Student{{ID: 1, RollNo: "01"}, {ID: 2, RollNo: "02"}, {ID: 3, RollNo: "03"}}
	marks := []MarkRecord{
		{StudentID: 1, SubjectID: 1, MarksObtained: 40, ExamType: "Final"},
		{StudentID: 2, SubjectID: 1, MarksObtained: 60, ExamType: "Final"},
		{StudentID: 1, SubjectID: 3, MarksObtained: 90, ExamType: "Final"},
		{StudentID: 3, SubjectID: 1, MarksObtained: 80, ExamType: "Final"},
	}

	report, err := BuildClassReport("10A", "A", "Final", students, marks, testSubjects(), fixedNow)
	require.NoError(t, err)
	require.Len(t, report.SubjectWiseStats, 2)
	require.Equal(t, "MATH", report.SubjectWiseStats[0].SubjectCode)
	require.Equal(t, 60.0, report.SubjectWiseStats[0].Average)
	require.Equal(t, "SCI", report.SubjectWiseStats[1].SubjectCode)
	require.Equal(t, 90.0, report.SubjectWiseStats[1].Average)
	require.Equal(t, 1, report.SubjectWiseStats[1].Passed)
}

func TestBuildClassReportTopPerformersTieBreaks(t *testing.T) {
	subjects := map[uint]Subject{
		1: {ID: 1, Name: "Mathematics", Code: "MATH", MaxMarks: 100, PassMarks: 35},
		2: {ID: 2, Name: "Drawing", Code: "DRW", MaxMarks: 50, PassMarks: 10},
	}

	students := []Student{
		{ID: 1, Name: "Late Roll", RollNo: "09"},
		{ID: 2, Name: "Early Roll", RollNo: "03"},
		{ID: 3, Name: "More Total", RollNo: "05"},
		{ID: 4, Name: "Fourth", RollNo: "01"},
		{ID: 5, Name: "Fifth", RollNo: "02"},
		{ID: 6, Name: "Sixth", RollNo: "04"},
		{ID: 7, Name: "Best", RollNo: "07"},
	}
	marks := []MarkRecord{
		// 80% with 80 marks
		{StudentID: 1, SubjectID: 1, MarksObtained: 80, ExamType: "Final"},
		{StudentID: 2, SubjectID: 1, MarksObtained: 80, ExamType: "Final"},
		// 80% with 120 marks beats the 80-mark students on total
		{StudentID: 3, SubjectID: 1, MarksObtained: 80, ExamType: "Final"},
		{StudentID: 3, SubjectID: 2, MarksObtained: 40, ExamType: "Final"},
		{StudentID: 4, SubjectID: 1, MarksObtained: 50, ExamType: "Final"},
		{StudentID: 5, SubjectID: 1, MarksObtained: 45, ExamType: "Final"},
		{StudentID: 6, SubjectID: 1, MarksObtained: 44, ExamType: "Final"},
		{StudentID: 7, SubjectID: 1, MarksObtained: 95, ExamType: "Final"},
	}

	report, err := BuildClassReport("10A", "A", "Final", students, marks, subjects, fixedNow)
	require.NoError(t, err)
	require.Len(t, report.TopPerformers, TopPerformerLimit)

	rolls := make([]string, 0, len(report.TopPerformers))
	for _, performer := range report.TopPerformers {
		rolls = append(rolls, performer.RollNo)
	}
	require.Equal(t, []string{"07", "05", "03", "09", "01"}, rolls)
}

func TestBuildClassReportIsDeterministic(t *testing.T) {
	students := make([]Student, 0, 20)
	marks := make([]MarkRecord, 0, 60)
	for i := 1; i <= 20; i++ {
		students = append(students, Student{ID: uint(i), Name: fmt.Sprintf("Student %02d", i), RollNo: fmt.Sprintf("%02d", i)})
		for subject := uint(1); subject <= 3; subject++ {
			marks = append(marks, MarkRecord{StudentID: uint(i), SubjectID: subject, MarksObtained: (i * int(subject) * 7) % 101, ExamType: "Final"})
		}
	}
	reversed := make([]Student, len(students))
	for i := range students {
		reversed[len(students)-1-i] = students[i]
	}

	first, err := BuildClassReport("10A", "A", "Final", students, marks, testSubjects(), fixedNow)
	require.NoError(t, err)
	second, err := BuildClassReport("10A", "A", "Final", reversed, marks, testSubjects(), fixedNow)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	require.Equal(t, string(firstJSON), string(secondJSON))
}

func TestBuildClassReportPropagatesInvalidMarks(t *testing.T) {
	students := []Student{{ID: 1}}
	marks := []MarkRecord{{StudentID: 1, SubjectID: 1, MarksObtained: -5, ExamType: "Final"}}
	_, err := BuildClassReport("10A", "A", "Final", students, marks, testSubjects(), fixedNow)
	require.ErrorIs(t, err, ErrInvalidInput)
}

package grading

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func strPtr(v string) *string { return &v }

func uintPtr(v uint) *uint { return &v }

func failureSnapshot() ([]MarkRecord, map[uint]Student) {
	students := map[uint]Student{
		1: {ID: 1, Name: "Xavier", RollNo: "01", ClassName: "10A", ParentEmail: ""},
		2: {ID: 2, Name: "Yara", RollNo: "02", ClassName: "10A", ParentEmail: "yara.parent@example.com"},
		3: {ID: 3, Name: "Zed", RollNo: "03", ClassName: "10A", ParentEmail: "zed.parent@example.com"},
		4: {ID: 4, Name: "Wendy", RollNo: "04", ClassName: "10A"},
		5: {ID: 5, Name: "Victor", RollNo: "05", ClassName: "10B", ParentEmail: "victor.parent@example.com"},
	}
	marks := []MarkRecord{
		{StudentID: 1, SubjectID: 1, MarksObtained: 12, ExamType: "Final"},
		{StudentID: 1, SubjectID: 2, MarksObtained: 60, ExamType: "Final"},
		{StudentID: 1, SubjectID: 3, MarksObtained: 30, ExamType: "Final"},
		{StudentID: 2, SubjectID: 1, MarksObtained: 88, ExamType: "Final"},
		{StudentID: 3, SubjectID: 1, MarksObtained: 35, ExamType: "Final"},
		{StudentID: 4, SubjectID: 2, MarksObtained: 10, ExamType: "Midterm"},
		{StudentID: 5, SubjectID: 1, MarksObtained: 5, ExamType: "Final"},
	}
	return marks, students
}

func TestDetectFailuresOneNoticePerFailingSubject(t *testing.T) {
	marks, students := failureSnapshot()

	notices, err := DetectFailures(marks, testSubjects(), students, FailureFilter{ClassName: strPtr("10A"), ExamType: strPtr("Final")})
	require.NoError(t, err)
	require.Len(t, notices, 2)

	for _, notice := range notices {
		require.Equal(t, uint(1), notice.StudentID)
		require.Equal(t, "Xavier", notice.StudentName)
		require.Nil(t, notice.ParentEmail, "missing parent email must still yield a notice")
		require.False(t, notice.EmailSent)
	}
	require.Equal(t, "Mathematics", notices[0].SubjectName)
	require.Equal(t, 12, notices[0].MarksObtained)
	require.Equal(t, 35, notices[0].PassMarks)
	require.Equal(t, "Science", notices[1].SubjectName)
}

func TestDetectFailuresWithoutFilters(t *testing.T) {
	marks, students := failureSnapshot()

	notices, err := DetectFailures(marks, testSubjects(), students, FailureFilter{})
	require.NoError(t, err)
	require.Len(t, notices, 4)
	require.Equal(t, "Midterm", notices[2].ExamType)
	require.Equal(t, uint(5), notices[3].StudentID)
	require.NotNil(t, notices[3].ParentEmail)
	require.Equal(t, "victor.parent@example.com", *notices[3].ParentEmail)
}

func TestDetectFailuresSubjectFilter(t *testing.T) {
	marks, students := failureSnapshot()

	notices, err := DetectFailures(marks, testSubjects(), students, FailureFilter{SubjectID: uintPtr(1)})
	require.NoError(t, err)
	require.Len(t, notices, 2)
	require.Equal(t, uint(1), notices[0].StudentID)
	require.Equal(t, uint(5), notices[1].StudentID)
}

func TestDetectFailuresCollapsesDuplicates(t *testing.T) {
	_, students := failureSnapshot()
	marks := []MarkRecord{
		{StudentID: 1, SubjectID: 1, MarksObtained: 12, ExamType: "Final"},
		{StudentID: 1, SubjectID: 1, MarksObtained: 20, ExamType: "Final"},
		{StudentID: 1, SubjectID: 1, MarksObtained: 20, ExamType: "Midterm"},
	}

	notices, err := DetectFailures(marks, testSubjects(), students, FailureFilter{})
	require.NoError(t, err)
	require.Len(t, notices, 2)
	require.Equal(t, 12, notices[0].MarksObtained)
}

func TestDetectFailuresUnknownReferences(t *testing.T) {
	_, students := failureSnapshot()

	_, err := DetectFailures([]MarkRecord{{StudentID: 42, SubjectID: 1, ExamType: "Final"}}, testSubjects(), students, FailureFilter{})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = DetectFailures([]MarkRecord{{StudentID: 1, SubjectID: 42, ExamType: "Final"}}, testSubjects(), students, FailureFilter{})
	require.ErrorIs(t, err, ErrNotFound)
}

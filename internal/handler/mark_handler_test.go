package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/marktrack-api/internal/dto"
	"github.com/noah-isme/marktrack-api/internal/grading"
)

func TestMarkHandlerCreateReturnsDerivedStatus(t *testing.T) {
	h := newHarness(t)
	marks := 34

	resp, body := h.do(t, http.MethodPost, "/marks", dto.MarkCreateRequest{
		StudentID:     h.asha.ID,
		SubjectID:     h.maths.ID,
		MarksObtained: &marks,
	}, teacherID, "teacher")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created dto.MarkResponse
	require.NoError(t, json.Unmarshal(body.Data, &created))
	require.Equal(t, grading.StatusFail, created.Status)
	require.Equal(t, grading.GradeD, created.Grade)
	require.Equal(t, "Final", created.ExamType)
	require.Equal(t, teacherID, created.EnteredBy)

	resp, _ = h.do(t, http.MethodPost, "/marks", dto.MarkCreateRequest{
		StudentID:     h.asha.ID,
		SubjectID:     h.maths.ID,
		MarksObtained: &marks,
	}, teacherID, "teacher")
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestMarkHandlerCreateRejectsOutOfRange(t *testing.T) {
	h := newHarness(t)
	marks := 101

	resp, body := h.do(t, http.MethodPost, "/marks", dto.MarkCreateRequest{
		StudentID:     h.asha.ID,
		SubjectID:     h.maths.ID,
		MarksObtained: &marks,
	}, teacherID, "teacher")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.False(t, body.Success)

	resp, _ = h.do(t, http.MethodPost, "/marks", map[string]uint{"student_id": h.asha.ID, "subject_id": h.maths.ID}, teacherID, "teacher")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMarkHandlerBulkReportsPartialSuccess(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(t, http.MethodPost, "/marks/bulk", dto.MarkBulkRequest{
		SubjectID: h.english.ID,
		Rows: []grading.BulkRow{
			{StudentID: h.asha.ID, MarksObtained: 80},
			{StudentID: h.ben.ID, MarksObtained: 20},
			{StudentID: 999, MarksObtained: 50},
		},
	}, teacherID, "teacher")
	require.Equal(t, http.StatusMultiStatus, resp.StatusCode)

	var result grading.BulkResult
	require.NoError(t, json.Unmarshal(body.Data, &result))
	require.Equal(t, 2, result.Accepted)
	require.Equal(t, 1, result.Rejected)
	require.Len(t, result.Rows, 3)
	require.False(t, result.Rows[2].Accepted)
	require.NotEmpty(t, result.Rows[2].Reason)
}

func TestMarkHandlerBulkAllRejected(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.do(t, http.MethodPost, "/marks/bulk", dto.MarkBulkRequest{
		SubjectID: h.english.ID,
		Rows:      []grading.BulkRow{{StudentID: h.asha.ID, MarksObtained: 300}},
	}, teacherID, "teacher")
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestMarkHandlerListAndFailed(t *testing.T) {
	h := newHarness(t)
	h.seedMark(t, h.asha, h.maths, 88)
	h.seedMark(t, h.ben, h.maths, 12)

	resp, body := h.do(t, http.MethodGet, fmt.Sprintf("/marks?subject_id=%d", h.maths.ID), nil, teacherID, "teacher")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var items []dto.MarkResponse
	require.NoError(t, json.Unmarshal(body.Data, &items))
	require.Len(t, items, 2)

	resp, body = h.do(t, http.MethodGet, "/marks/failed?class_name=10A", nil, teacherID, "teacher")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var notices []grading.FailureNotice
	require.NoError(t, json.Unmarshal(body.Data, &notices))
	require.Len(t, notices, 1)
	require.Equal(t, h.ben.ID, notices[0].StudentID)
	require.Nil(t, notices[0].ParentEmail)
}

func TestMarkHandlerUpdateAndDelete(t *testing.T) {
	h := newHarness(t)
	mark := h.seedMark(t, h.asha, h.maths, 50)
	corrected := 30

	resp, body := h.do(t, http.MethodPut, fmt.Sprintf("/marks/%d", mark.ID), dto.MarkUpdateRequest{MarksObtained: &corrected}, teacherID, "teacher")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated dto.MarkResponse
	require.NoError(t, json.Unmarshal(body.Data, &updated))
	require.Equal(t, 30, updated.MarksObtained)
	require.Equal(t, grading.StatusFail, updated.Status)

	resp, _ = h.do(t, http.MethodDelete, fmt.Sprintf("/marks/%d", mark.ID), nil, teacherID, "teacher")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = h.do(t, http.MethodDelete, fmt.Sprintf("/marks/%d", mark.ID), nil, teacherID, "teacher")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMarkHandlerFailedValidatesQuery(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(t, http.MethodGet, "/marks/failed?class_name="+strings.Repeat("x", 51), nil, teacherID, "teacher")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "validation failed", body.Message)

	resp, _ = h.do(t, http.MethodGet, "/marks/failed?exam_type=Final", nil, teacherID, "teacher")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

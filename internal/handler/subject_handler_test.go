package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/marktrack-api/internal/dto"
)

func TestSubjectHandlerListIsOpenToStudents(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(t, http.MethodGet, "/subjects", nil, 900, "student")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var subjects []dto.SubjectResponse
	require.NoError(t, json.Unmarshal(body.Data, &subjects))
	require.Len(t, subjects, 2)
	require.Equal(t, "ENG", subjects[0].Code)
}

func TestSubjectHandlerCreateRequiresTeacher(t *testing.T) {
	h := newHarness(t)
	payload := dto.SubjectCreateRequest{Name: "Science", Code: "sci", MaxMarks: 50, PassMarks: 17}

	resp, _ := h.do(t, http.MethodPost, "/subjects", payload, 900, "student")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := h.do(t, http.MethodPost, "/subjects", payload, teacherID, "teacher")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created dto.SubjectResponse
	require.NoError(t, json.Unmarshal(body.Data, &created))
	require.Equal(t, "SCI", created.Code)
	require.Equal(t, 17, created.PassMarks)
}

func TestSubjectHandlerRejectsPassAboveMax(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(t, http.MethodPost, "/subjects", dto.SubjectCreateRequest{Name: "Art", Code: "ART", MaxMarks: 50, PassMarks: 60}, teacherID, "teacher")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.False(t, body.Success)
}

func TestSubjectHandlerDeleteBlockedWhileMarksExist(t *testing.T) {
	h := newHarness(t)
	h.seedMark(t, h.asha, h.maths, 60)

	resp, _ := h.do(t, http.MethodDelete, fmt.Sprintf("/subjects/%d", h.maths.ID), nil, teacherID, "teacher")
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = h.do(t, http.MethodDelete, fmt.Sprintf("/subjects/%d", h.english.ID), nil, teacherID, "admin")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = h.do(t, http.MethodDelete, fmt.Sprintf("/subjects/%d", h.english.ID), nil, teacherID, "teacher")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubjectHandlerUpdateInvalidID(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.do(t, http.MethodPut, "/subjects/abc", map[string]int{"pass_marks": 40}, teacherID, "teacher")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubjectHandlerGet(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(t, http.MethodGet, fmt.Sprintf("/subjects/%d", h.maths.ID), nil, 900, "student")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var subject dto.SubjectResponse
	require.NoError(t, json.Unmarshal(body.Data, &subject))
	require.Equal(t, "MATH", subject.Code)

	resp, _ = h.do(t, http.MethodGet, "/subjects/999", nil, 900, "student")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubjectHandlerUpdateConflictsWithStoredMarks(t *testing.T) {
	h := newHarness(t)
	h.seedMark(t, h.asha, h.maths, 90)

	resp, body := h.do(t, http.MethodPut, fmt.Sprintf("/subjects/%d", h.maths.ID), map[string]int{"max_marks": 50, "pass_marks": 17}, teacherID, "teacher")
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.False(t, body.Success)

	resp, _ = h.do(t, http.MethodGet, "/reports/class/10A", nil, teacherID, "teacher")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

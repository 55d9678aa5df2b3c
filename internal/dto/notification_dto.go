package dto

import (
	"time"

	"github.com/noah-isme/marktrack-api/internal/grading"
	"github.com/noah-isme/marktrack-api/internal/models"
)

// DispatchFailuresRequest selects which failing marks should notify parents.
// An omitted field places no constraint.
type DispatchFailuresRequest struct {
	ClassName *string `json:"class_name" validate:"omitempty,max=50"`
	SubjectID *uint   `json:"subject_id"`
	ExamType  *string `json:"exam_type" validate:"omitempty,max=50"`
}

// Filter converts the request into an engine filter.
func (r DispatchFailuresRequest) Filter() grading.FailureFilter {
	return grading.FailureFilter{
		ClassName: r.ClassName,
		SubjectID: r.SubjectID,
		ExamType:  r.ExamType,
	}
}

// Report card result filters.
const (
	ReportFilterAll    = "all"
	ReportFilterFailed = "failed"
	ReportFilterPassed = "passed"
)

// BulkReportCardRequest selects the students whose parents receive a report
// card. Empty class and section cover the whole school.
type BulkReportCardRequest struct {
	ClassName string `json:"class_name" validate:"omitempty,max=50"`
	Section   string `json:"section" validate:"omitempty,max=10"`
	ExamType  string `json:"exam_type" validate:"omitempty,max=50"`
	Filter    string `json:"filter" validate:"omitempty,oneof=all failed passed"`
}

// ResultFilter returns the requested filter, defaulting to all.
func (r BulkReportCardRequest) ResultFilter() string {
	if r.Filter == "" {
		return ReportFilterAll
	}
	return r.Filter
}

// ResultMatches reports whether an overall result is selected by filter.
func ResultMatches(filter string, result grading.Status) bool {
	switch filter {
	case ReportFilterFailed:
		return result == grading.StatusFail
	case ReportFilterPassed:
		return result == grading.StatusPass
	default:
		return true
	}
}

// DispatchOutcome reports what happened to one failure notice.
type DispatchOutcome struct {
	Notice grading.FailureNotice `json:"notice"`
	Status string                `json:"status"`
	Error  string                `json:"error,omitempty"`
}

// DispatchSummary aggregates the outcomes of one dispatch run.
type DispatchSummary struct {
	BatchID   string            `json:"batch_id"`
	Sent      int               `json:"sent"`
	Failed    int               `json:"failed"`
	Skipped   int               `json:"skipped"`
	Duplicate int               `json:"duplicate"`
	Outcomes  []DispatchOutcome `json:"outcomes"`
}

// Count tallies an outcome into the summary.
func (s *DispatchSummary) Count(outcome DispatchOutcome) {
	switch outcome.Status {
	case models.NotificationStatusSent:
		s.Sent++
	case models.NotificationStatusFailed:
		s.Failed++
	case models.NotificationStatusSkipped:
		s.Skipped++
	case models.NotificationStatusDuplicate:
		s.Duplicate++
	}
	s.Outcomes = append(s.Outcomes, outcome)
}

// NotificationHistoryRequest filters the dispatch audit trail.
type NotificationHistoryRequest struct {
	StudentID uint   `query:"student_id"`
	Status    string `query:"status" validate:"omitempty,oneof=sent failed skipped duplicate"`
	BatchID   string `query:"batch_id" validate:"omitempty,max=64"`
	Limit     int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

// NotificationLogResponse is one dispatch attempt as shown to teachers.
type NotificationLogResponse struct {
	ID        uint                   `json:"id"`
	BatchID   string                 `json:"batch_id,omitempty"`
	Kind      string                 `json:"kind"`
	StudentID uint                   `json:"student_id"`
	SubjectID *uint                  `json:"subject_id,omitempty"`
	ExamType  string                 `json:"exam_type"`
	Recipient string                 `json:"recipient,omitempty"`
	Status    string                 `json:"status"`
	Error     string                 `json:"error,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewNotificationLogResponse converts a log model to DTO.
func NewNotificationLogResponse(entry models.NotificationLog) NotificationLogResponse {
	var metadata map[string]interface{}
	if len(entry.Metadata) > 0 {
		metadata = map[string]interface{}(entry.Metadata)
	}
	return NotificationLogResponse{
		ID:        entry.ID,
		BatchID:   entry.BatchID,
		Kind:      entry.Kind,
		StudentID: entry.StudentID,
		SubjectID: entry.SubjectID,
		ExamType:  entry.ExamType,
		Recipient: entry.Recipient,
		Status:    entry.Status,
		Error:     entry.Error,
		Metadata:  metadata,
		CreatedAt: entry.CreatedAt,
	}
}

// NewNotificationLogResponseSlice converts log models into DTOs.
func NewNotificationLogResponseSlice(entries []models.NotificationLog) []NotificationLogResponse {
	out := make([]NotificationLogResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, NewNotificationLogResponse(entry))
	}
	return out
}

package dto

// AnalyticsRequest narrows the marks included in an analytics summary. Empty
// fields place no constraint, so an empty request covers every mark.
type AnalyticsRequest struct {
	ClassName string `query:"class_name" validate:"omitempty,max=50"`
	Section   string `query:"section" validate:"omitempty,max=10"`
	SubjectID uint   `query:"subject_id"`
	ExamType  string `query:"exam_type" validate:"omitempty,max=50"`
}

package grading

import (
	"fmt"
	"sort"
)

// GradeCount is the number of marks that fall into one grade band.
type GradeCount struct {
	Grade Grade `json:"grade"`
	Count int   `json:"count"`
}

// SubjectPerformance summarises every recorded mark of one subject.
type SubjectPerformance struct {
	SubjectID      uint    `json:"subject_id"`
	Subject        string  `json:"subject"`
	SubjectCode    string  `json:"subject_code"`
	MaxMarks       int     `json:"max_marks"`
	Assessments    int     `json:"assessments"`
	AverageMarks   float64 `json:"average_marks"`
	HighestMarks   int     `json:"highest_marks"`
	LowestMarks    int     `json:"lowest_marks"`
	PassCount      int     `json:"pass_count"`
	FailCount      int     `json:"fail_count"`
	PassPercentage float64 `json:"pass_percentage"`
}

// AnalyticsSummary aggregates a set of marks regardless of exam type or
// subject. Raw mark averages mix subjects with different maxima; the grade
// distribution is computed per mark against its own subject.
type AnalyticsSummary struct {
	TotalStudents      int                  `json:"total_students"`
	TotalAssessments   int                  `json:"total_assessments"`
	AverageMarks       float64              `json:"average_marks"`
	HighestMarks       int                  `json:"highest_marks"`
	LowestMarks        int                  `json:"lowest_marks"`
	PassCount          int                  `json:"pass_count"`
	FailCount          int                  `json:"fail_count"`
	PassPercentage     float64              `json:"pass_percentage"`
	GradeDistribution  []GradeCount         `json:"grade_distribution"`
	SubjectPerformance []SubjectPerformance `json:"subject_performance"`
}

type markTally struct {
	count, sum      int
	highest, lowest int
	passed, failed  int
}

func (t *markTally) add(evaluation SubjectEvaluation) {
	if t.count == 0 || evaluation.MarksObtained > t.highest {
		t.highest = evaluation.MarksObtained
	}
	if t.count == 0 || evaluation.MarksObtained < t.lowest {
		t.lowest = evaluation.MarksObtained
	}
	t.count++
	t.sum += evaluation.MarksObtained
	if evaluation.Status == StatusPass {
		t.passed++
	} else {
		t.failed++
	}
}

// Summarize evaluates every mark and aggregates the results. An empty input
// yields a zero summary with every grade band present.
func Summarize(marks []MarkRecord, subjects map[uint]Subject) (AnalyticsSummary, error) {
	overall := markTally{}
	perSubject := map[uint]*markTally{}
	students := map[uint]struct{}{}
	bands := make(map[Grade]int, len(thresholds)+1)

	for _, mark := range marks {
		subject, ok := subjects[mark.SubjectID]
		if !ok {
			return AnalyticsSummary{}, fmt.Errorf("%w: subject %d", ErrNotFound, mark.SubjectID)
		}
		evaluation, err := Evaluate(mark, subject)
		if err != nil {
			return AnalyticsSummary{}, err
		}

		overall.add(evaluation)
		tally, ok := perSubject[subject.ID]
		if !ok {
			tally = &markTally{}
			perSubject[subject.ID] = tally
		}
		tally.add(evaluation)
		students[mark.StudentID] = struct{}{}
		bands[evaluation.Grade]++
	}

	summary := AnalyticsSummary{
		TotalStudents:      len(students),
		TotalAssessments:   overall.count,
		AverageMarks:       mean(overall.sum, overall.count),
		HighestMarks:       overall.highest,
		LowestMarks:        overall.lowest,
		PassCount:          overall.passed,
		FailCount:          overall.failed,
		GradeDistribution:  gradeDistribution(bands),
		SubjectPerformance: make([]SubjectPerformance, 0, len(perSubject)),
	}
	_, summary.PassPercentage = ratio(overall.passed, overall.count)

	for id, tally := range perSubject {
		subject := subjects[id]
		_, passRate := ratio(tally.passed, tally.count)
		summary.SubjectPerformance = append(summary.SubjectPerformance, SubjectPerformance{
			SubjectID:      subject.ID,
			Subject:        subject.Name,
			SubjectCode:    subject.Code,
			MaxMarks:       subject.MaxMarks,
			Assessments:    tally.count,
			AverageMarks:   mean(tally.sum, tally.count),
			HighestMarks:   tally.highest,
			LowestMarks:    tally.lowest,
			PassCount:      tally.passed,
			FailCount:      tally.failed,
			PassPercentage: passRate,
		})
	}
	sort.Slice(summary.SubjectPerformance, func(i, j int) bool {
		a, b := summary.SubjectPerformance[i], summary.SubjectPerformance[j]
		if a.SubjectCode != b.SubjectCode {
			return a.SubjectCode < b.SubjectCode
		}
		return a.SubjectID < b.SubjectID
	})

	return summary, nil
}

// gradeDistribution lists every band from A+ down to F.
func gradeDistribution(bands map[Grade]int) []GradeCount {
	out := make([]GradeCount, 0, len(thresholds)+1)
	for _, t := range thresholds {
		out = append(out, GradeCount{Grade: t.grade, Count: bands[t.grade]})
	}
	return append(out, GradeCount{Grade: GradeF, Count: bands[GradeF]})
}

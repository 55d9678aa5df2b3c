package grading

import (
	"errors"
	"sort"
	"time"
)

// TopPerformerLimit caps the ranking in a class report.
const TopPerformerLimit = 5

type subjectTally struct {
	subject Subject
	sum     int
	passed  int
	failed  int
}

// BuildClassReport builds a report per student and aggregates them. Students
// without marks for examType are left out of every count.
func BuildClassReport(className, section, examType string, students []Student, marks []MarkRecord, subjects map[uint]Subject, now time.Time) (ClassReport, error) {
	byStudent := make(map[uint][]MarkRecord, len(students))
	for _, mark := range marks {
		if mark.ExamType == examType {
			byStudent[mark.StudentID] = append(byStudent[mark.StudentID], mark)
		}
	}

	ordered := append([]Student(nil), students...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	report := ClassReport{
		ClassName:        className,
		Section:          section,
		ExamType:         examType,
		SubjectWiseStats: []SubjectStats{},
		TopPerformers:    []TopPerformer{},
		GeneratedAt:      now,
	}

	tallies := map[uint]*subjectTally{}
	reports := make([]StudentReport, 0, len(ordered))
	seen := make(map[uint]struct{}, len(ordered))

	for _, student := range ordered {
		if _, dup := seen[student.ID]; dup {
			continue
		}
		seen[student.ID] = struct{}{}

		studentMarks := byStudent[student.ID]
		if len(studentMarks) == 0 {
			continue
		}

		studentReport, err := BuildStudentReport(student, examType, studentMarks, subjects, now)
		if err != nil {
			if errors.Is(err, ErrNoDataForExam) {
				continue
			}
			return ClassReport{}, err
		}
		reports = append(reports, studentReport)

		if studentReport.Result == StatusPass {
			report.PassedStudents++
		} else {
			report.FailedStudents++
		}

		for _, evaluation := range studentReport.Subjects {
			tally, ok := tallies[evaluation.SubjectID]
			if !ok {
				tally = &subjectTally{subject: subjects[evaluation.SubjectID]}
				tallies[evaluation.SubjectID] = tally
			}
			tally.sum += evaluation.MarksObtained
			if evaluation.Status == StatusPass {
				tally.passed++
			} else {
				tally.failed++
			}
		}
	}

	report.TotalStudents = len(reports)
	_, report.PassPercentage = ratio(report.PassedStudents, report.TotalStudents)
	report.SubjectWiseStats = subjectStats(tallies)
	report.TopPerformers = topPerformers(reports, TopPerformerLimit)

	return report, nil
}

func subjectStats(tallies map[uint]*subjectTally) []SubjectStats {
	list := make([]*subjectTally, 0, len(tallies))
	for _, tally := range tallies {
		list = append(list, tally)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].subject.Code != list[j].subject.Code {
			return list[i].subject.Code < list[j].subject.Code
		}
		return list[i].subject.ID < list[j].subject.ID
	})

	stats := make([]SubjectStats, 0, len(list))
	for _, tally := range list {
		count := tally.passed + tally.failed
		_, passRate := ratio(tally.passed, count)
		stats = append(stats, SubjectStats{
			Subject:     tally.subject.Name,
			SubjectCode: tally.subject.Code,
			Average:     mean(tally.sum, count),
			MaxMarks:    tally.subject.MaxMarks,
			Passed:      tally.passed,
			Failed:      tally.failed,
			PassRate:    passRate,
		})
	}
	return stats
}

// topPerformers ranks by percentage desc, total desc, roll number asc and
// finally student id, then truncates to limit.
func topPerformers(reports []StudentReport, limit int) []TopPerformer {
	ranked := append([]StudentReport(nil), reports...)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.exact != b.exact {
			return a.exact > b.exact
		}
		if a.TotalMarks != b.TotalMarks {
			return a.TotalMarks > b.TotalMarks
		}
		if a.RollNo != b.RollNo {
			return a.RollNo < b.RollNo
		}
		return a.StudentID < b.StudentID
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	performers := make([]TopPerformer, 0, len(ranked))
	for _, r := range ranked {
		performers = append(performers, TopPerformer{
			StudentID:  r.StudentID,
			Name:       r.StudentName,
			RollNo:     r.RollNo,
			Total:      r.TotalMarks,
			Percentage: r.Percentage,
			Grade:      r.OverallGrade,
		})
	}
	return performers
}

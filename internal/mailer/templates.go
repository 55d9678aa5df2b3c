package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/noah-isme/marktrack-api/internal/grading"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("mail").Funcs(template.FuncMap{
	"gradeClass":  GradeClass,
	"statusClass": statusClass,
}).ParseFS(templateFS, "templates/*.html"))

// DefaultAppName signs rendered messages when no name is configured.
const DefaultAppName = "Student Mark Tracker"

// GradeClass maps a letter grade to the CSS class used by the report card.
func GradeClass(grade grading.Grade) string {
	switch {
	case strings.HasPrefix(string(grade), "A"):
		return "grade-a"
	case strings.HasPrefix(string(grade), "B"):
		return "grade-b"
	case strings.HasPrefix(string(grade), "C"):
		return "grade-c"
	case grade == grading.GradeD:
		return "grade-d"
	default:
		return "grade-f"
	}
}

func statusClass(status grading.Status) string {
	if status == grading.StatusPass {
		return "status-pass"
	}
	return "status-fail"
}

type failureAlertView struct {
	grading.FailureNotice
	ParentName string
	AppName    string
}

type reportCardView struct {
	Report  grading.StudentReport
	AppName string
}

// RenderFailureAlert builds the parent email for one failing subject.
func RenderFailureAlert(notice grading.FailureNotice, appName string) (Message, error) {
	if appName == "" {
		appName = DefaultAppName
	}
	parentName := notice.ParentName
	if parentName == "" {
		parentName = "Parent/Guardian"
	}

	var html bytes.Buffer
	if err := templates.ExecuteTemplate(&html, "failure_alert.html", failureAlertView{
		FailureNotice: notice,
		ParentName:    parentName,
		AppName:       appName,
	}); err != nil {
		return Message{}, fmt.Errorf("render failure alert: %w", err)
	}

	msg := Message{
		ToName:  parentName,
		Subject: fmt.Sprintf("Important: %s - performance alert in %s", notice.StudentName, notice.SubjectName),
		HTML:    html.String(),
		Text: fmt.Sprintf("Dear %s,\n\n%s (roll %s, class %s) scored %d/%d in %s for the %s examination. The pass mark is %d.\n\n%s",
			parentName, notice.StudentName, notice.RollNo, notice.ClassName, notice.MarksObtained, notice.MaxMarks,
			notice.SubjectName, notice.ExamType, notice.PassMarks, appName),
	}
	if notice.ParentEmail != nil {
		msg.ToEmail = *notice.ParentEmail
	}

	return msg, nil
}

// RenderReportCardHTML renders the printable report card page.
func RenderReportCardHTML(report grading.StudentReport, appName string) (string, error) {
	if appName == "" {
		appName = DefaultAppName
	}

	var html bytes.Buffer
	if err := templates.ExecuteTemplate(&html, "report_card.html", reportCardView{Report: report, AppName: appName}); err != nil {
		return "", fmt.Errorf("render report card: %w", err)
	}
	return html.String(), nil
}

// RenderReportCard builds the report card email addressed to the parent.
func RenderReportCard(report grading.StudentReport, parentName, parentEmail, appName string) (Message, error) {
	html, err := RenderReportCardHTML(report, appName)
	if err != nil {
		return Message{}, err
	}
	if parentName == "" {
		parentName = "Parent/Guardian"
	}

	return Message{
		ToName:  parentName,
		ToEmail: parentEmail,
		Subject: fmt.Sprintf("Report card: %s (%s)", report.StudentName, report.ExamType),
		HTML:    html,
		Text: fmt.Sprintf("%s scored %d/%d (%.2f%%), grade %s, result %s in the %s examination.",
			report.StudentName, report.TotalMarks, report.TotalMaxMarks, report.Percentage,
			report.OverallGrade, report.Result, report.ExamType),
	}, nil
}

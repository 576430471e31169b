// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/amckenna/college-planner/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 10
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintProfile outputs a human-readable summary of the student profile.
func (p *Printer) PrintProfile(profile *types.StudentProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder

	name := strings.TrimSpace(profile.GeneralInfo.FirstName + " " + profile.GeneralInfo.LastName)
	if name != "" {
		sb.WriteString(fmt.Sprintf("Student:  %s\n", name))
	}
	if profile.GeneralInfo.Grade > 0 {
		sb.WriteString(fmt.Sprintf("Grade:    %d\n", profile.GeneralInfo.Grade))
	}
	if profile.HighSchoolProfile.GPA > 0 {
		sb.WriteString(fmt.Sprintf("GPA:      %.2f\n", profile.HighSchoolProfile.GPA))
	}
	if len(profile.HighSchoolProfile.PlannedTests) > 0 {
		sb.WriteString(fmt.Sprintf("Tests:    %s\n", strings.Join(profile.HighSchoolProfile.PlannedTests, ", ")))
	}

	targets := profile.CollegePreferences.TargetSchools
	if len(targets) > 0 {
		sb.WriteString("\nTarget Schools:\n")
		for _, school := range targets {
			sb.WriteString(fmt.Sprintf("  • %s\n", school))
		}
	}

	p.printBox("STUDENT PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSchools outputs the resolved school records and their deadlines.
func (p *Printer) PrintSchools(records []types.SchoolRecord) {
	if len(records) == 0 {
		return
	}

	var sb strings.Builder
	for i, record := range records {
		deadline := record.RegularDecisionDeadline
		if deadline == "" {
			deadline = "unknown"
		}
		sb.WriteString(fmt.Sprintf("%s\n", record.Name))
		sb.WriteString(fmt.Sprintf("  Regular decision: %s\n", deadline))
		if record.City != "" && record.State != "" {
			sb.WriteString(fmt.Sprintf("  Location: %s, %s\n", record.City, record.State))
		}
		if i < len(records)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("TARGET SCHOOL DEADLINES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRoadmap outputs the generated task list and recommendations.
func (p *Printer) PrintRoadmap(roadmap *types.Roadmap) {
	if roadmap == nil || len(roadmap.Tasks) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total tasks: %d\n\n", len(roadmap.Tasks)))

	count := min(len(roadmap.Tasks), maxItemsToShow)
	for i := 0; i < count; i++ {
		task := roadmap.Tasks[i]
		title := task.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		sb.WriteString(fmt.Sprintf("%-10s  %s\n", task.DueDate, title))
		sb.WriteString(fmt.Sprintf("            %s / %s / %s\n", task.Category, task.Priority, task.School))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(roadmap.Tasks) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more tasks", len(roadmap.Tasks)-maxItemsToShow))
	}

	p.printBox("ROADMAP", sb.String())

	if len(roadmap.Recommendations) == 0 {
		return
	}

	sb.Reset()
	for i, rec := range roadmap.Recommendations {
		text := rec.Text
		if len(text) > 50 {
			text = text[:47] + "..."
		}
		sb.WriteString(fmt.Sprintf("[%s] %s\n", rec.Priority, text))
		if i < len(roadmap.Recommendations)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("RECOMMENDATIONS", strings.TrimSuffix(sb.String(), "\n"))
}

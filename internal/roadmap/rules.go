package roadmap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amckenna/college-planner/internal/dates"
	"github.com/amckenna/college-planner/internal/types"
)

// Relative offsets for tasks anchored on the generation date.
const (
	resumeOffset      = 30 * 24 * time.Hour
	recLettersOffset  = 45 * 24 * time.Hour
	testPrepOffset    = 60 * 24 * time.Hour
	testPlanOffset    = 30 * 24 * time.Hour
	researchOffset    = 45 * 24 * time.Hour
	syntheticDeadline = 90 * 24 * time.Hour
)

// Offsets back from a school's application deadline.
const (
	submissionLead = 7 * 24 * time.Hour
	essayLead      = 30 * 24 * time.Hour
	fafsaLead      = 14 * 24 * time.Hour
)

const dueDateLayout = "2006-01-02"

// RuleStrategy drafts a roadmap from fixed scheduling rules. Deterministic
// and offline; also the fallback when the generated strategy is unavailable.
type RuleStrategy struct{}

// NewRuleStrategy returns the rule-based strategy.
func NewRuleStrategy() *RuleStrategy {
	return &RuleStrategy{}
}

// Name identifies the strategy in logs and configuration.
func (s *RuleStrategy) Name() string { return "rules" }

// Generate drafts tasks for every target school plus the shared preparation
// tasks, with recommendations tailored to the student's tests and study style.
func (s *RuleStrategy) Generate(_ context.Context, req Request) (*Draft, error) {
	if len(req.TargetSchools) == 0 {
		return nil, &MissingTargetSchoolsError{UserID: req.UserID}
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var tasks []types.Task

	tasks = append(tasks, newTask(
		"Update your resume",
		"Refresh your resume or brag sheet with this year's activities, awards and coursework.",
		today.Add(resumeOffset),
		types.CategoryApplication, types.PriorityMedium, types.AllSchools,
	))

	tasks = append(tasks, newTask(
		"Request recommendation letters",
		"Ask two teachers and your counselor for recommendation letters, sharing your resume and target school list.",
		today.Add(recLettersOffset),
		types.CategoryApplication, types.PriorityHigh, types.AllSchools,
	))

	tasks = append(tasks, testTasks(req.Profile, today)...)

	for _, name := range req.TargetSchools {
		deadline, known := schoolDeadline(req.Schools, name, today)

		submission := fmt.Sprintf("Submit application to %s", name)
		submissionDesc := fmt.Sprintf("Complete and submit your application to %s ahead of the deadline.", name)
		if !known {
			submissionDesc = fmt.Sprintf("Confirm %s's application deadline, then complete and submit your application.", name)
		}

		tasks = append(tasks,
			newTask(submission, submissionDesc,
				clampToDeadline(deadline.Add(-submissionLead), today, deadline),
				types.CategoryApplication, types.PriorityHigh, name),
			newTask(fmt.Sprintf("Finalize essays for %s", name),
				fmt.Sprintf("Finish and proofread your personal statement and supplemental essays for %s.", name),
				clampToDeadline(deadline.Add(-essayLead), today, deadline),
				types.CategoryEssay, types.PriorityHigh, name),
			newTask(fmt.Sprintf("Complete FAFSA for %s", name),
				fmt.Sprintf("Submit the FAFSA and any school-specific financial aid forms for %s.", name),
				clampToDeadline(deadline.Add(-fafsaLead), today, deadline),
				types.CategoryFinancialAid, types.PriorityHigh, name),
			newTask(fmt.Sprintf("Research %s", name),
				fmt.Sprintf("Research %s's programs, campus culture and application requirements in depth.", name),
				clampToDeadline(today.Add(researchOffset), today, deadline),
				types.CategoryResearch, types.PriorityMedium, name),
		)
	}

	return &Draft{
		Tasks:           tasks,
		Recommendations: recommendations(req.Profile),
	}, nil
}

func newTask(title, description string, due time.Time, category types.Category, priority types.Priority, school string) types.Task {
	return types.Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		DueDate:     due.Format(dueDateLayout),
		Category:    category,
		Priority:    priority,
		School:      school,
	}
}

// schoolDeadline resolves a school's regular decision deadline, reporting
// whether a real deadline was found. Missing or unparsable deadlines fall
// back to a synthetic date 90 days out so the school still gets a schedule.
func schoolDeadline(records []types.SchoolRecord, name string, today time.Time) (time.Time, bool) {
	record := types.FindSchool(records, name)
	if record == nil || record.RegularDecisionDeadline == "" {
		return today.Add(syntheticDeadline), false
	}
	deadline, err := dates.ParseDeadline(record.RegularDecisionDeadline, today.Year())
	if err != nil {
		return today.Add(syntheticDeadline), false
	}
	return deadline, true
}

// clampToDeadline keeps a due date between today and the school's deadline.
// A near deadline can push lead-time offsets into the past; those collapse to
// today rather than scheduling work retroactively.
func clampToDeadline(due, today, deadline time.Time) time.Time {
	if due.After(deadline) {
		due = deadline
	}
	if due.Before(today) {
		due = today
	}
	return due
}

func testTasks(profile *types.StudentProfile, today time.Time) []types.Task {
	var planned []string
	if profile != nil {
		planned = profile.HighSchoolProfile.PlannedTests
	}

	if len(planned) == 0 {
		return []types.Task{newTask(
			"Plan for standardized tests",
			"Decide which standardized tests to take and register for upcoming test dates.",
			today.Add(testPlanOffset),
			types.CategoryTestPrep, types.PriorityMedium, types.AllSchools,
		)}
	}

	tasks := make([]types.Task, 0, len(planned))
	for _, test := range planned {
		tasks = append(tasks, newTask(
			fmt.Sprintf("Prepare for the %s", test),
			fmt.Sprintf("Build a study schedule for the %s and take at least two full-length practice tests.", test),
			today.Add(testPrepOffset),
			types.CategoryTestPrep, types.PriorityHigh, types.AllSchools,
		))
	}
	return tasks
}

// recommendations returns the three baseline tips plus test-specific and
// study-style-specific advice when the profile carries those fields.
func recommendations(profile *types.StudentProfile) []types.Recommendation {
	recs := []types.Recommendation{
		{Text: "Balance your school list across reach, match and safety schools so every outcome leaves you with options.", Priority: types.PriorityHigh},
		{Text: "Keep your GPA steady while preparing for standardized tests; colleges weigh senior-year grades more than students expect.", Priority: types.PriorityMedium},
		{Text: "Go deep on a few extracurriculars that match your interests rather than spreading thin across many.", Priority: types.PriorityMedium},
	}

	if profile == nil {
		return recs
	}

	for _, test := range profile.HighSchoolProfile.PlannedTests {
		switch strings.ToUpper(strings.TrimSpace(test)) {
		case "SAT":
			recs = append(recs, types.Recommendation{
				Text:     "For the SAT, drill the reading section under time pressure and review every missed math question until you can re-derive it.",
				Priority: types.PriorityHigh,
			})
		case "ACT":
			recs = append(recs, types.Recommendation{
				Text:     "For the ACT, pacing is the main challenge; practice the science section with a strict timer from day one.",
				Priority: types.PriorityHigh,
			})
		}
	}

	for _, style := range profile.HighSchoolProfile.StudyStylePreference {
		switch strings.ToLower(strings.TrimSpace(style)) {
		case "visual":
			recs = append(recs, types.Recommendation{
				Text:     "As a visual learner, turn application timelines and essay outlines into diagrams and color-coded calendars.",
				Priority: types.PriorityLow,
			})
		case "auditory":
			recs = append(recs, types.Recommendation{
				Text:     "As an auditory learner, read your essay drafts aloud and talk through application plans with a friend or counselor.",
				Priority: types.PriorityLow,
			})
		case "kinesthetic":
			recs = append(recs, types.Recommendation{
				Text:     "As a kinesthetic learner, study in short active bursts and use campus visits to make each school concrete.",
				Priority: types.PriorityLow,
			})
		}
	}

	return recs
}

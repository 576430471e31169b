package roadmap

import (
	"time"

	"github.com/amckenna/college-planner/internal/dates"
	"github.com/amckenna/college-planner/internal/types"
)

// ValidateTask checks a single task: required fields, a parsable due date,
// and, for school-specific tasks, a due date on or before the school's
// deadline. Schools without a parsable deadline impose no ceiling.
func ValidateTask(task types.Task, records []types.SchoolRecord, defaultYear int) error {
	var missing []string
	if task.Title == "" {
		missing = append(missing, "title")
	}
	if task.Description == "" {
		missing = append(missing, "description")
	}
	if task.DueDate == "" {
		missing = append(missing, "dueDate")
	}
	if task.Category == "" {
		missing = append(missing, "category")
	}
	if task.Priority == "" {
		missing = append(missing, "priority")
	}
	if task.School == "" {
		missing = append(missing, "school")
	}
	if len(missing) > 0 {
		return &IncompleteTaskError{Title: task.Title, Missing: missing}
	}

	due, err := dates.ParseDeadline(task.DueDate, defaultYear)
	if err != nil {
		return err
	}

	if task.School == types.AllSchools {
		return nil
	}

	record := types.FindSchool(records, task.School)
	if record == nil || record.RegularDecisionDeadline == "" {
		return nil
	}
	deadline, err := dates.ParseDeadline(record.RegularDecisionDeadline, defaultYear)
	if err != nil {
		return nil
	}

	if due.After(deadline) {
		return &DeadlineViolationError{
			TaskTitle: task.Title,
			School:    task.School,
			DueDate:   task.DueDate,
			Deadline:  record.RegularDecisionDeadline,
		}
	}
	return nil
}

// ValidateBatch validates every task and fails closed on the first error:
// one malformed task rejects the whole batch, since it means the upstream
// generation step drifted from the contract.
func ValidateBatch(tasks []types.Task, records []types.SchoolRecord, now time.Time) error {
	year := now.Year()
	if now.IsZero() {
		year = time.Now().Year()
	}
	for _, task := range tasks {
		if err := ValidateTask(task, records, year); err != nil {
			return err
		}
	}
	return nil
}

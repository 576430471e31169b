package types

import "time"

// Category classifies a roadmap task.
type Category string

// Task categories. The generated strategy is constrained to this taxonomy
// by schema validation; the rule-based strategy emits these directly.
const (
	CategoryTestPrep        Category = "Test Prep"
	CategoryApplication     Category = "Application"
	CategoryFinancialAid    Category = "Financial Aid"
	CategoryEssay           Category = "Essay"
	CategoryResearch        Category = "Research"
	CategoryExtracurricular Category = "Extracurricular"
)

// Priority ranks the urgency of a task or recommendation.
type Priority string

// Priority levels.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// AllSchools is the school value for tasks that apply to every target school.
// Such tasks have no deadline ceiling.
const AllSchools = "All Schools"

// Task is a single roadmap item. DueDate is a calendar-date string in one of
// the accepted deadline formats (see the dates package). When School names a
// specific school, DueDate must be on or before that school's regular decision
// deadline. After creation only IsCompleted and UpdatedAt may change.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     string    `json:"dueDate"`
	Category    Category  `json:"category"`
	Priority    Priority  `json:"priority"`
	School      string    `json:"school"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// Recommendation is advisory text attached to a roadmap. Text must be non-empty.
type Recommendation struct {
	Text      string    `json:"text"`
	Priority  Priority  `json:"priority"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Roadmap is the transient aggregate produced by a generation run. It is never
// persisted as its own entity; it is flattened into the user document's tasks,
// totalTasks, recommendations and lastTaskGeneratedAt fields. Each generation
// supersedes the previous roadmap wholesale.
type Roadmap struct {
	Tasks           []Task           `json:"tasks"`
	Recommendations []Recommendation `json:"recommendations"`
}

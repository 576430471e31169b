// Package types provides type definitions for structured data used throughout the college-planner system.
package types

// GeneralInfo holds basic identity and schooling information for a student.
type GeneralInfo struct {
	CurrentSchool string `json:"currentSchool,omitempty"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	SchoolType    string `json:"schoolType,omitempty"`
	Grade         int    `json:"grade"`
	Gender        string `json:"gender,omitempty"`
}

// HighSchoolProfile holds academic details used for roadmap personalization.
type HighSchoolProfile struct {
	CurrentClasses       []string `json:"currentClasses,omitempty"`
	Extracurriculars     []string `json:"extracurriculars,omitempty"`
	GPA                  float64  `json:"gpa"`
	WeightedGPA          float64  `json:"weightedGpa"`
	PlannedTests         []string `json:"plannedTests,omitempty"`
	StudyStylePreference []string `json:"studyStylePreference,omitempty"`
}

// CollegePreferences holds the student's application targets and preferences.
// TargetSchools must be non-empty before a roadmap can be generated.
type CollegePreferences struct {
	SchoolCategories []string `json:"schoolCategories,omitempty"`
	TargetSchools    []string `json:"targetSchools"`
	EarlyDecision    string   `json:"earlyDecision,omitempty"`
}

// StudentProfile is the semantic profile stored inside a user document under
// the studentProfile key. It is mutated only through the profile merge writer,
// field by field; it is never deleted wholesale.
type StudentProfile struct {
	GeneralInfo        GeneralInfo        `json:"generalInfo"`
	HighSchoolProfile  HighSchoolProfile  `json:"highSchoolProfile"`
	CollegePreferences CollegePreferences `json:"collegePreferences"`
	Interests          []string           `json:"interests,omitempty"`
}

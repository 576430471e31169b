package roadmap

import (
	"context"
	"time"

	"github.com/amckenna/college-planner/internal/types"
)

// Request carries everything a strategy needs to draft a roadmap. Strategies
// are pure functions of the request; persistence happens elsewhere.
type Request struct {
	UserID        string
	Profile       *types.StudentProfile
	TargetSchools []string
	Schools       []types.SchoolRecord
	Now           time.Time
}

// Draft is a strategy's raw output before validation and assembly.
type Draft struct {
	Tasks           []types.Task
	Recommendations []types.Recommendation
}

// Strategy drafts a roadmap from a student's profile and target schools.
// Implementations must fail with *MissingTargetSchoolsError when the request
// names no target schools.
type Strategy interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Draft, error)
}

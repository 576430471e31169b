package roadmap

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/amckenna/college-planner/internal/dates"
	"github.com/amckenna/college-planner/internal/types"
)

// Assemble orders a draft into a final roadmap: tasks sorted by due date
// (stable, so equal dates keep generation order), every task stamped with
// server-side timestamps and reset to incomplete. Generator-proposed
// timestamps are never kept.
func Assemble(draft *Draft, now time.Time) *types.Roadmap {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	tasks := make([]types.Task, len(draft.Tasks))
	copy(tasks, draft.Tasks)

	sort.SliceStable(tasks, func(i, j int) bool {
		di, ierr := dates.ParseDeadline(tasks[i].DueDate, now.Year())
		dj, jerr := dates.ParseDeadline(tasks[j].DueDate, now.Year())
		if ierr != nil || jerr != nil {
			return false
		}
		return di.Before(dj)
	})

	for i := range tasks {
		if tasks[i].ID == "" {
			tasks[i].ID = uuid.NewString()
		}
		tasks[i].IsCompleted = false
		tasks[i].CreatedAt = now
		tasks[i].UpdatedAt = now
	}

	recs := make([]types.Recommendation, len(draft.Recommendations))
	copy(recs, draft.Recommendations)
	for i := range recs {
		recs[i].CreatedAt = now
	}

	return &types.Roadmap{Tasks: tasks, Recommendations: recs}
}

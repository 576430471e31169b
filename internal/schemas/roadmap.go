// Package schemas - roadmap.go validates generated roadmap drafts before they
// are parsed.
package schemas

import (
	_ "embed"
)

//go:embed roadmap_draft.json
var roadmapDraftSchema string

// ValidateRoadmapDraft validates a model-produced roadmap JSON string against
// the draft schema. The schema enforces structure only; semantic checks
// (deadline ceilings, date formats against multiple layouts) happen later.
func ValidateRoadmapDraft(jsonContent string) error {
	return ValidateJSONString(roadmapDraftSchema, jsonContent)
}

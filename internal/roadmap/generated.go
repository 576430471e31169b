package roadmap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amckenna/college-planner/internal/dates"
	"github.com/amckenna/college-planner/internal/llm"
	"github.com/amckenna/college-planner/internal/prompts"
	"github.com/amckenna/college-planner/internal/schemas"
	"github.com/amckenna/college-planner/internal/types"
)

// DefaultCompletionTimeout bounds the outbound completion call. Generation
// regularly takes multiple seconds; anything past this is treated as a
// timeout rather than left hanging.
const DefaultCompletionTimeout = 60 * time.Second

// Completer is the completion service the generated strategy drafts with.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// LLMCompleter adapts an llm.Client to the Completer contract.
type LLMCompleter struct {
	Client llm.Client
	Tier   llm.ModelTier
}

// Complete sends the prompt to the configured model tier.
func (c *LLMCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	tier := c.Tier
	if tier == "" {
		tier = llm.TierStandard
	}
	return c.Client.GenerateContent(ctx, prompt, tier)
}

// GeneratedStrategy drafts a roadmap through an external completion service.
// Its output is never trusted: callers must run the full task validation
// before accepting the draft.
type GeneratedStrategy struct {
	completer Completer
	timeout   time.Duration
}

// NewGeneratedStrategy returns the completion-backed strategy. A zero timeout
// uses DefaultCompletionTimeout.
func NewGeneratedStrategy(completer Completer, timeout time.Duration) *GeneratedStrategy {
	if timeout <= 0 {
		timeout = DefaultCompletionTimeout
	}
	return &GeneratedStrategy{completer: completer, timeout: timeout}
}

// Name identifies the strategy in logs and configuration.
func (s *GeneratedStrategy) Name() string { return "generated" }

// rawDraft is the wire shape the completion service is asked for.
type rawDraft struct {
	Tasks           []types.Task `json:"tasks"`
	Recommendations []string     `json:"recommendations"`
}

// Generate prompts the completion service and parses its output into a draft.
// Fails with *GenerationTimeoutError when the completion call exceeds the
// timeout, *CompletionError when the service itself fails, and
// *GenerationFailedError when the output cannot be parsed as a roadmap.
func (s *GeneratedStrategy) Generate(ctx context.Context, req Request) (*Draft, error) {
	if len(req.TargetSchools) == 0 {
		return nil, &MissingTargetSchoolsError{UserID: req.UserID}
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	prompt, err := s.buildPrompt(req, now)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	output, err := s.completer.Complete(callCtx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() == context.DeadlineExceeded {
			return nil, &GenerationTimeoutError{Cause: err}
		}
		return nil, &CompletionError{Cause: err}
	}

	cleaned := llm.CleanJSONBlock(output)

	if err := schemas.ValidateRoadmapDraft(cleaned); err != nil {
		return nil, &GenerationFailedError{Cause: err}
	}

	var raw rawDraft
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, &GenerationFailedError{Cause: fmt.Errorf("failed to parse roadmap JSON: %w", err)}
	}

	draft := &Draft{Tasks: raw.Tasks}
	for i := range draft.Tasks {
		if draft.Tasks[i].ID == "" {
			draft.Tasks[i].ID = uuid.NewString()
		}
	}
	for _, text := range raw.Recommendations {
		draft.Recommendations = append(draft.Recommendations, types.Recommendation{
			Text:     text,
			Priority: types.PriorityMedium,
		})
	}
	return draft, nil
}

func (s *GeneratedStrategy) buildPrompt(req Request, now time.Time) (string, error) {
	profileJSON := "{}"
	if req.Profile != nil {
		raw, err := json.MarshalIndent(req.Profile, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode profile: %w", err)
		}
		profileJSON = string(raw)
	}

	var timeContext strings.Builder
	for _, name := range req.TargetSchools {
		record := types.FindSchool(req.Schools, name)
		if record == nil || record.RegularDecisionDeadline == "" {
			timeContext.WriteString(fmt.Sprintf("- %s: no known deadline, assume about 90 days from today\n", name))
			continue
		}
		line := fmt.Sprintf("- %s: deadline %s", name, record.RegularDecisionDeadline)
		if days, ok := dates.DaysUntil(record.RegularDecisionDeadline, now); ok {
			line += fmt.Sprintf(" (%s days remaining)", strconv.Itoa(days))
		}
		timeContext.WriteString(line + "\n")
	}

	template := prompts.MustGet("roadmap.json", "generate_roadmap")
	return prompts.Format(template, map[string]string{
		"Today":       now.Format(dueDateLayout),
		"Profile":     profileJSON,
		"TimeContext": timeContext.String(),
	}), nil
}

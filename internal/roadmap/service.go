package roadmap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/amckenna/college-planner/internal/docstore"
	"github.com/amckenna/college-planner/internal/profile"
	"github.com/amckenna/college-planner/internal/schools"
	"github.com/amckenna/college-planner/internal/types"
)

// SchoolResolver resolves target school names to records, typically the
// schools catalog.
type SchoolResolver interface {
	ForTargets(ctx context.Context, names []string) ([]types.SchoolRecord, error)
}

var _ SchoolResolver = (*schools.Catalog)(nil)

// Service orchestrates a roadmap generation run: load inputs, draft, validate,
// assemble, persist. One generation per user may run at a time.
type Service struct {
	store    docstore.Store
	writer   *profile.Writer
	resolver SchoolResolver
	strategy Strategy
	fallback Strategy

	// Now supplies the generation clock; tests override it.
	Now func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewService wires a Service. fallback may be nil to disable falling back
// when the primary strategy's completion service is unavailable.
func NewService(store docstore.Store, writer *profile.Writer, resolver SchoolResolver, strategy, fallback Strategy) *Service {
	return &Service{
		store:    store,
		writer:   writer,
		resolver: resolver,
		strategy: strategy,
		fallback: fallback,
		Now:      func() time.Time { return time.Now().UTC() },
		inFlight: make(map[string]struct{}),
	}
}

// Generate runs the full roadmap flow for a user. schoolInfo, when non-empty,
// overrides catalog lookup with caller-supplied records.
//
// The returned roadmap is non-nil even when the error is a *PersistenceError:
// generation succeeded and the caller should not lose the result.
func (s *Service) Generate(ctx context.Context, userID string, targetSchools []string, schoolInfo []types.SchoolRecord) (*types.Roadmap, error) {
	if len(targetSchools) == 0 {
		return nil, &MissingTargetSchoolsError{UserID: userID}
	}

	if !s.acquire(userID) {
		return nil, &ConcurrentModificationError{UserID: userID}
	}
	defer s.release(userID)

	var (
		studentProfile *types.StudentProfile
		records        []types.SchoolRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		doc, err := s.store.Get(gctx, profile.UsersCollection, userID)
		if err != nil {
			return err
		}
		studentProfile, err = decodeProfile(doc)
		return err
	})
	g.Go(func() error {
		if len(schoolInfo) > 0 {
			records = schoolInfo
			return nil
		}
		var err error
		records, err = s.resolver.ForTargets(gctx, targetSchools)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.Now()
	req := Request{
		UserID:        userID,
		Profile:       studentProfile,
		TargetSchools: targetSchools,
		Schools:       records,
		Now:           now,
	}

	draft, err := s.draft(ctx, req)
	if err != nil {
		return nil, err
	}

	// Generated output is never trusted; one bad task rejects the batch.
	if err := ValidateBatch(draft.Tasks, records, now); err != nil {
		log.Printf("[ROADMAP] validation rejected batch for user %s (schools %v): %v", userID, targetSchools, err)
		return nil, err
	}

	result := Assemble(draft, now)

	if err := s.persist(ctx, userID, result); err != nil {
		log.Printf("[ROADMAP] persistence failed for user %s: %v", userID, err)
		return result, &PersistenceError{UserID: userID, Cause: err}
	}

	return result, nil
}

// draft runs the primary strategy, falling back to the secondary when the
// completion service is unavailable or times out. Malformed output does not
// trigger fallback: it signals contract drift that should surface.
func (s *Service) draft(ctx context.Context, req Request) (*Draft, error) {
	draft, err := s.strategy.Generate(ctx, req)
	if err == nil {
		return draft, nil
	}

	var completionErr *CompletionError
	var timeoutErr *GenerationTimeoutError
	if s.fallback != nil && (errors.As(err, &completionErr) || errors.As(err, &timeoutErr)) {
		log.Printf("[ROADMAP] %s strategy unavailable for user %s, falling back to %s: %v",
			s.strategy.Name(), req.UserID, s.fallback.Name(), err)
		return s.fallback.Generate(ctx, req)
	}
	return nil, err
}

// persist flattens the roadmap into the user document. Timestamps are left to
// the store's clock via the sentinel; the merge writer restamps every task.
func (s *Service) persist(ctx context.Context, userID string, result *types.Roadmap) error {
	tasks, err := toDocuments(result.Tasks)
	if err != nil {
		return err
	}
	recs, err := toDocuments(result.Recommendations)
	if err != nil {
		return err
	}

	return s.writer.Merge(ctx, userID, docstore.Document{
		"tasks":               tasks,
		"totalTasks":          len(result.Tasks),
		"recommendations":     recs,
		"lastTaskGeneratedAt": docstore.ServerTimestamp,
		"updatedAt":           docstore.ServerTimestamp,
	})
}

func (s *Service) acquire(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[userID]; busy {
		return false
	}
	s.inFlight[userID] = struct{}{}
	return true
}

func (s *Service) release(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, userID)
}

func decodeProfile(doc docstore.Document) (*types.StudentProfile, error) {
	raw, ok := doc["studentProfile"]
	if !ok {
		return nil, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode stored profile: %w", err)
	}
	var p types.StudentProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode stored profile: %w", err)
	}
	return &p, nil
}

func toDocuments(v any) ([]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode roadmap payload: %w", err)
	}
	var out []any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode roadmap payload: %w", err)
	}
	return out, nil
}

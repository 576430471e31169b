package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amckenna/college-planner/internal/docstore"
	"github.com/amckenna/college-planner/internal/roadmap"
	"github.com/amckenna/college-planner/internal/types"
)

// stubStrategy returns a fixed error, for exercising failure paths end to end.
type stubStrategy struct {
	err error
}

func (s *stubStrategy) Name() string { return "stub" }

func (s *stubStrategy) Generate(context.Context, roadmap.Request) (*roadmap.Draft, error) {
	return nil, s.err
}

func newTestServer(t *testing.T, strategy, fallback roadmap.Strategy) (*Server, *docstore.Memory) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("BCRYPT_COST", "10")

	store := docstore.NewMemory()
	srv, err := assemble(Config{Port: 8080}, store, strategy, fallback, nil)
	require.NoError(t, err)
	t.Cleanup(srv.rateLimiter.Stop)
	return srv, store
}

func seedTestUser(store *docstore.Memory, uid string) {
	store.Seed("users", uid, docstore.Document{
		"uid":         uid,
		"displayName": "Jordan",
		"email":       uid + "@example.com",
		"isOnboarded": false,
		"tasks":       []any{},
		"totalTasks":  0,
		"studentProfile": map[string]any{
			"highSchoolProfile": map[string]any{
				"plannedTests": []any{"SAT"},
			},
		},
	})
}

func seedTestSchool(store *docstore.Memory) {
	store.Seed("US-Colleges", "state-u", docstore.Document{
		"schoolName":      "State U",
		"regularDeadline": "2099-12-01",
		"city":            "Springfield",
		"state":           "IL",
	})
}

func doRequest(srv *Server, method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t, roadmap.NewRuleStrategy(), nil)

	rec := doRequest(srv, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestServer_CORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, roadmap.NewRuleStrategy(), nil)

	rec := doRequest(srv, http.MethodOptions, "/roadmap", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_GenerateRoadmap(t *testing.T) {
	srv, store := newTestServer(t, roadmap.NewRuleStrategy(), nil)
	seedTestUser(store, "u1")
	seedTestSchool(store)

	rec := doRequest(srv, http.MethodPost, "/roadmap", map[string]any{
		"userId":        "u1",
		"targetSchools": []string{"State U"},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	tasks := data["tasks"].([]any)
	require.NotEmpty(t, tasks)
	assert.NotEmpty(t, data["recommendations"])

	// Chronological order survives serialization.
	var prev string
	for _, raw := range tasks {
		task := raw.(map[string]any)
		due := task["dueDate"].(string)
		if prev != "" {
			assert.GreaterOrEqual(t, due, prev)
		}
		prev = due
	}

	doc, err := store.Get(context.Background(), "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, float64(len(tasks)), doc["totalTasks"], "roadmap was persisted")
}

func TestServer_GenerateRoadmap_SchoolInfoOverride(t *testing.T) {
	srv, store := newTestServer(t, roadmap.NewRuleStrategy(), nil)
	seedTestUser(store, "u1")
	// No seeded school: deadlines come from the request payload.

	rec := doRequest(srv, http.MethodPost, "/roadmap", map[string]any{
		"userId":        "u1",
		"targetSchools": []string{"Private College"},
		"schoolInfo": []map[string]any{
			{"schoolName": "Private College", "regularDeadline": "2099-11-15"},
		},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestServer_GenerateRoadmap_UnknownUser(t *testing.T) {
	srv, _ := newTestServer(t, roadmap.NewRuleStrategy(), nil)

	rec := doRequest(srv, http.MethodPost, "/roadmap", map[string]any{
		"userId":        "ghost",
		"targetSchools": []string{"State U"},
	}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["detail"], "ghost")
}

func TestServer_GenerateRoadmap_MissingTargets(t *testing.T) {
	srv, store := newTestServer(t, roadmap.NewRuleStrategy(), nil)
	seedTestUser(store, "u1")

	rec := doRequest(srv, http.MethodPost, "/roadmap", map[string]any{"userId": "u1"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["detail"])
}

func TestServer_GenerateRoadmap_MissingUserID(t *testing.T) {
	srv, _ := newTestServer(t, roadmap.NewRuleStrategy(), nil)

	rec := doRequest(srv, http.MethodPost, "/roadmap", map[string]any{
		"targetSchools": []string{"State U"},
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_GenerateRoadmap_CompletionOutage(t *testing.T) {
	srv, store := newTestServer(t,
		&stubStrategy{err: &roadmap.CompletionError{Cause: errors.New("upstream 502")}}, nil)
	seedTestUser(store, "u1")
	seedTestSchool(store)

	rec := doRequest(srv, http.MethodPost, "/roadmap", map[string]any{
		"userId":        "u1",
		"targetSchools": []string{"State U"},
	}, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_GenerateRoadmap_Timeout(t *testing.T) {
	srv, store := newTestServer(t,
		&stubStrategy{err: &roadmap.GenerationTimeoutError{Cause: context.DeadlineExceeded}}, nil)
	seedTestUser(store, "u1")
	seedTestSchool(store)

	rec := doRequest(srv, http.MethodPost, "/roadmap", map[string]any{
		"userId":        "u1",
		"targetSchools": []string{"State U"},
	}, "")
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestServer_GenerateRoadmap_FallbackRescues(t *testing.T) {
	srv, store := newTestServer(t,
		&stubStrategy{err: &roadmap.CompletionError{Cause: errors.New("upstream 502")}},
		roadmap.NewRuleStrategy())
	seedTestUser(store, "u1")
	seedTestSchool(store)

	rec := doRequest(srv, http.MethodPost, "/roadmap", map[string]any{
		"userId":        "u1",
		"targetSchools": []string{"State U"},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decodeBody(t, rec)["success"])
}

func TestServer_Onboarding(t *testing.T) {
	srv, store := newTestServer(t, roadmap.NewRuleStrategy(), nil)
	seedTestUser(store, "u1")
	seedTestSchool(store)

	profile := types.StudentProfile{
		GeneralInfo: types.GeneralInfo{FirstName: "Jordan", LastName: "Lee", Grade: 12},
		HighSchoolProfile: types.HighSchoolProfile{
			GPA:          3.8,
			PlannedTests: []string{"SAT"},
		},
		CollegePreferences: types.CollegePreferences{TargetSchools: []string{"State U"}},
	}

	rec := doRequest(srv, http.MethodPost, "/onboarding", map[string]any{
		"userId":  "u1",
		"profile": profile,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	require.NotNil(t, body["roadmap"], "target schools trigger generation")

	doc, err := store.Get(context.Background(), "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, true, doc["isOnboarded"])

	sp := doc["studentProfile"].(map[string]any)
	general := sp["generalInfo"].(map[string]any)
	assert.Equal(t, "Jordan", general["firstName"])
	hs := sp["highSchoolProfile"].(map[string]any)
	assert.Equal(t, []any{"SAT"}, hs["plannedTests"])
}

func TestServer_Onboarding_GenerationFailureIsNotFatal(t *testing.T) {
	srv, store := newTestServer(t,
		&stubStrategy{err: &roadmap.GenerationFailedError{Cause: errors.New("bad output")}}, nil)
	seedTestUser(store, "u1")

	profile := types.StudentProfile{
		CollegePreferences: types.CollegePreferences{TargetSchools: []string{"State U"}},
	}
	rec := doRequest(srv, http.MethodPost, "/onboarding", map[string]any{
		"userId":  "u1",
		"profile": profile,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Nil(t, body["roadmap"])

	doc, err := store.Get(context.Background(), "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, true, doc["isOnboarded"], "profile write survives the failed generation")
}

func TestServer_AuthFlow(t *testing.T) {
	srv, _ := newTestServer(t, roadmap.NewRuleStrategy(), nil)

	rec := doRequest(srv, http.MethodPost, "/auth/register", map[string]any{
		"displayName": "Jordan",
		"email":       "jordan@example.com",
		"password":    "password123",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	registered := decodeBody(t, rec)
	token := registered["token"].(string)
	require.NotEmpty(t, token)
	uid := registered["user"].(map[string]any)["uid"].(string)

	// The token opens /users/me.
	rec = doRequest(srv, http.MethodGet, "/users/me", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uid, decodeBody(t, rec)["uid"])

	// No token, no entry.
	rec = doRequest(srv, http.MethodGet, "/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Login works with the registered credentials.
	rec = doRequest(srv, http.MethodPost, "/auth/login", map[string]any{
		"email":    "jordan@example.com",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	// Password update through the protected route.
	rec = doRequest(srv, http.MethodPut, "/auth/password", map[string]any{
		"currentPassword": "password123",
		"newPassword":     "even-better-secret",
	}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doRequest(srv, http.MethodPost, "/auth/login", map[string]any{
		"email":    "jordan@example.com",
		"password": "even-better-secret",
	}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_RegisterDuplicateEmail(t *testing.T) {
	srv, _ := newTestServer(t, roadmap.NewRuleStrategy(), nil)

	payload := map[string]any{
		"displayName": "Jordan",
		"email":       "jordan@example.com",
		"password":    "password123",
	}
	rec := doRequest(srv, http.MethodPost, "/auth/register", payload, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(srv, http.MethodPost, "/auth/register", payload, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["detail"], "jordan@example.com")
}

func TestServer_CreateAndGetUser(t *testing.T) {
	srv, _ := newTestServer(t, roadmap.NewRuleStrategy(), nil)

	rec := doRequest(srv, http.MethodPost, "/users", map[string]any{
		"displayName": "Jordan",
		"email":       "jordan@example.com",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	uid := decodeBody(t, rec)["uid"].(string)

	rec = doRequest(srv, http.MethodGet, "/users/"+uid, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Jordan", decodeBody(t, rec)["displayName"])

	rec = doRequest(srv, http.MethodGet, "/users/ghost", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_UpdateProfile(t *testing.T) {
	srv, store := newTestServer(t, roadmap.NewRuleStrategy(), nil)
	seedTestUser(store, "u1")

	rec := doRequest(srv, http.MethodPut, "/users/u1/profile", map[string]any{
		"interests": []string{"engineering"},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	doc, err := store.Get(context.Background(), "users", "u1")
	require.NoError(t, err)
	sp := doc["studentProfile"].(map[string]any)
	assert.Equal(t, []any{"engineering"}, sp["interests"])

	hs := sp["highSchoolProfile"].(map[string]any)
	assert.Equal(t, []any{"SAT"}, hs["plannedTests"], "untouched profile fields survive")
}

func TestServer_AddTask(t *testing.T) {
	srv, store := newTestServer(t, roadmap.NewRuleStrategy(), nil)
	seedTestUser(store, "u1")

	rec := doRequest(srv, http.MethodPost, "/users/u1/tasks", map[string]any{
		"title":       "Visit campus",
		"description": "Schedule a tour of State U.",
		"dueDate":     "2099-10-01",
		"category":    "Research",
		"priority":    "medium",
		"school":      "State U",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decodeBody(t, rec)["id"].(string)
	require.NotEmpty(t, id)

	taskDoc, err := store.Get(context.Background(), "tasks", id)
	require.NoError(t, err)
	assert.Equal(t, "Visit campus", taskDoc["title"])
	assert.NotEmpty(t, taskDoc["createdAt"], "timestamps are store-assigned")

	userDoc, err := store.Get(context.Background(), "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, float64(1), userDoc["totalTasks"])
	assert.Contains(t, userDoc["tasks"], "tasks/"+id)
}

func TestServer_AddTask_Invalid(t *testing.T) {
	srv, store := newTestServer(t, roadmap.NewRuleStrategy(), nil)
	seedTestUser(store, "u1")

	// Missing category and an unparsable date each earn a 400.
	rec := doRequest(srv, http.MethodPost, "/users/u1/tasks", map[string]any{
		"title":       "Visit campus",
		"description": "Schedule a tour.",
		"dueDate":     "2099-10-01",
		"priority":    "medium",
		"school":      "State U",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(srv, http.MethodPost, "/users/u1/tasks", map[string]any{
		"title":       "Visit campus",
		"description": "Schedule a tour.",
		"dueDate":     "whenever",
		"category":    "Research",
		"priority":    "medium",
		"school":      "State U",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_AddTask_UnknownUser(t *testing.T) {
	srv, _ := newTestServer(t, roadmap.NewRuleStrategy(), nil)

	rec := doRequest(srv, http.MethodPost, "/users/ghost/tasks", map[string]any{
		"title":       "Visit campus",
		"description": "Schedule a tour.",
		"dueDate":     "2099-10-01",
		"category":    "Research",
		"priority":    "medium",
		"school":      "State U",
	}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Schools(t *testing.T) {
	srv, store := newTestServer(t, roadmap.NewRuleStrategy(), nil)
	seedTestSchool(store)

	rec := doRequest(srv, http.MethodGet, "/schools", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["count"])

	rec = doRequest(srv, http.MethodGet, "/schools/by-name?name=State+U", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2099-12-01", decodeBody(t, rec)["regularDeadline"])

	rec = doRequest(srv, http.MethodGet, "/schools/by-name?name=Nowhere+U", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/schools/by-name", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_ErrorEnvelopeShape(t *testing.T) {
	srv, _ := newTestServer(t, roadmap.NewRuleStrategy(), nil)

	rec := doRequest(srv, http.MethodGet, "/users/ghost", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decodeBody(t, rec)
	require.Len(t, body, 1, "errors carry a single detail field")
	detail, ok := body["detail"].(string)
	require.True(t, ok)
	assert.Equal(t, fmt.Sprintf("document users/%s not found", "ghost"), detail)
}

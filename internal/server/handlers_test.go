package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/claude/fittrack/internal/calorie"
	"github.com/claude/fittrack/internal/catalog"
	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/plan"
	"github.com/claude/fittrack/internal/progress"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
)

// memStore is an in-memory storage.Store.
type memStore struct {
	mu        sync.Mutex
	users     map[string]int
	workouts  []models.WorkoutRecord
	insertErr error
}

func newMemStore() *memStore {
	return &memStore{users: map[string]int{"local": 1}}
}

func (m *memStore) GetOrCreateUser(_ context.Context, login, _, _ string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.users[login]; ok {
		return id, nil
	}
	id := len(m.users) + 1
	m.users[login] = id
	return id, nil
}

func (m *memStore) InsertWorkout(_ context.Context, w models.NewWorkout) (models.WorkoutRecord, error) {
	if err := w.Validate(); err != nil {
		return models.WorkoutRecord{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return models.WorkoutRecord{}, m.insertErr
	}
	rec := models.WorkoutRecord{
		ID:               uuid.New(),
		UserID:           w.UserID,
		Date:             time.Now().UTC(),
		MuscleGroupLabel: w.MuscleGroupLabel,
		EquipmentLabel:   w.EquipmentLabel,
		DurationMinutes:  w.DurationMinutes,
		Notes:            w.Notes,
	}
	m.workouts = append(m.workouts, rec)
	return rec, nil
}

func (m *memStore) ListWorkouts(_ context.Context, userID int) ([]models.WorkoutRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.WorkoutRecord{}
	for i := len(m.workouts) - 1; i >= 0; i-- {
		if m.workouts[i].UserID == userID {
			out = append(out, m.workouts[i])
		}
	}
	return out, nil
}

func (m *memStore) Ping(context.Context) error { return nil }
func (m *memStore) Close() error               { return nil }

func newTestServer(t *testing.T, store *memStore, opts Options) *Server {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	return New(store, cat, slog.New(slog.NewTextHandler(io.Discard, nil)), opts)
}

func do(t *testing.T, h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return v
}

// TestHealth verifies the liveness endpoint.
func TestHealth(t *testing.T) {
	s := newTestServer(t, newMemStore(), Options{})
	rec := do(t, s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

// TestHandleMeDefault verifies the /api/v1/me endpoint returns the dev user
// identity when no Tailscale lookup is configured.
func TestHandleMeDefault(t *testing.T) {
	s := newTestServer(t, newMemStore(), Options{})
	rec := do(t, s, http.MethodGet, "/api/v1/me", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	got := decode[models.User](t, rec)
	if diff := cmp.Diff(devUser, got); diff != "" {
		t.Errorf("me mismatch (-want +got):\n%s", diff)
	}
}

// TestHandleMeAnonymous verifies a request without identity gets 401.
func TestHandleMeAnonymous(t *testing.T) {
	s := &Server{}
	rec := httptest.NewRecorder()
	s.handleMe(rec, httptest.NewRequest(http.MethodGet, "/api/v1/me?lang=tr", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	body := decode[map[string]string](t, rec)
	if body["error"] != "Lütfen önce giriş yapın!" {
		t.Errorf("error = %q", body["error"])
	}
}

// TestHandleCatalogLanguage verifies labels follow Accept-Language.
func TestHandleCatalogLanguage(t *testing.T) {
	s := newTestServer(t, newMemStore(), Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
	req.Header.Set("Accept-Language", "tr-TR,tr;q=0.9,en;q=0.5")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	got := decode[CatalogView](t, rec)
	want := []catalog.LabeledOption{
		{ID: "fullbody", Label: "Tüm Vücut"},
		{ID: "chest", Label: "Göğüs"},
		{ID: "back", Label: "Sırt"},
		{ID: "legs", Label: "Bacak"},
		{ID: "arms", Label: "Kol"},
	}
	if diff := cmp.Diff(want, got.Muscles); diff != "" {
		t.Errorf("muscles mismatch (-want +got):\n%s", diff)
	}
	if len(got.ActivityLevels) != 5 {
		t.Errorf("activity levels = %d, want 5", len(got.ActivityLevels))
	}
}

// TestHandlePlan covers the exact, fallback, empty and invalid cases.
func TestHandlePlan(t *testing.T) {
	s := newTestServer(t, newMemStore(), Options{})

	rec := do(t, s, http.MethodGet, "/api/v1/plan?muscle=chest&equipment=gym&difficulty=intermediate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	v := decode[plan.View](t, rec)
	if len(v.Exercises) == 0 || v.Exercises[0].Name != "Bench Press" || v.Exercises[0].Sets != 4 {
		t.Errorf("exercises = %+v", v.Exercises)
	}
	if v.MuscleGroupLabel != "Chest" || v.EquipmentLabel != "Gym" || v.Fallback {
		t.Errorf("plan view = %+v", v)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/plan?muscle=fullbody&equipment=home&difficulty=advanced", nil)
	v = decode[plan.View](t, rec)
	if !v.Fallback || v.MatchedDifficulty != catalog.Intermediate || v.Exercises[0].Sets != 5 {
		t.Errorf("fallback plan = %+v", v)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/plan?muscle=neck&equipment=gym&difficulty=beginner&lang=en", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	v = decode[plan.View](t, rec)
	if len(v.Exercises) != 0 || v.Message != "No exercises found for this selection." {
		t.Errorf("empty plan = %+v", v)
	}

	for _, target := range []string{
		"/api/v1/plan?muscle=chest&equipment=gym",
		"/api/v1/plan?muscle=chest&equipment=gym&difficulty=elite",
	} {
		if rec := do(t, s, http.MethodGet, target, nil); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

// TestCreateAndListWorkouts verifies a saved workout is returned by the list
// and progress endpoints.
func TestCreateAndListWorkouts(t *testing.T) {
	store := newMemStore()
	s := newTestServer(t, store, Options{})

	payload := `{"muscle_group_label":"Legs","equipment_label":"Gym","duration_minutes":45,"notes":"2/4 exercises completed (50%): Squat, Lunge"}`
	rec := do(t, s, http.MethodPost, "/api/v1/workouts", strings.NewReader(payload))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}
	created := decode[models.WorkoutRecord](t, rec)
	if created.UserID != 1 {
		t.Errorf("user id = %d, want 1", created.UserID)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/workouts", nil)
	list := decode[[]models.WorkoutRecord](t, rec)
	if diff := cmp.Diff([]models.WorkoutRecord{created}, list, cmpopts.EquateApproxTime(time.Millisecond)); diff != "" {
		t.Errorf("list mismatch (-want +got):\n%s", diff)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/progress?range=week", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("progress status = %d", rec.Code)
	}
	report := decode[progress.Report](t, rec)
	if report.Stats.TotalWorkouts != 1 || report.Stats.TotalMinutes != 45 || report.Streak != 1 {
		t.Errorf("report = %+v", report)
	}

	if rec := do(t, s, http.MethodGet, "/api/v1/progress?range=decade", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad range status = %d, want 400", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/progress?range=all&tz=Europe/Istanbul", nil); rec.Code != http.StatusOK {
		t.Errorf("tz status = %d, want 200", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/progress?tz=Mars/Olympus_Mons", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad tz status = %d, want 400", rec.Code)
	}
}

// TestCreateWorkoutErrors verifies the status mapping for invalid payloads
// and store failures.
func TestCreateWorkoutErrors(t *testing.T) {
	store := newMemStore()
	s := newTestServer(t, store, Options{})

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed", `{"muscle_group_label":`, http.StatusBadRequest},
		{"empty label", `{"muscle_group_label":"","equipment_label":"Gym","duration_minutes":45,"notes":"n"}`, http.StatusUnprocessableEntity},
		{"zero duration", `{"muscle_group_label":"Legs","equipment_label":"Gym","duration_minutes":0,"notes":"n"}`, http.StatusUnprocessableEntity},
		{"no notes", `{"muscle_group_label":"Legs","equipment_label":"Gym","duration_minutes":30}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, s, http.MethodPost, "/api/v1/workouts", strings.NewReader(tt.body)); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	store.insertErr = errors.New("pq: connection reset by peer")
	rec := do(t, s, http.MethodPost, "/api/v1/workouts",
		strings.NewReader(`{"muscle_group_label":"Legs","equipment_label":"Gym","duration_minutes":30,"notes":"n"}`))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := decode[map[string]string](t, rec)
	if strings.Contains(body["error"], "pq:") {
		t.Errorf("store error leaked to client: %q", body["error"])
	}
}

// TestCreateWorkoutAnonymous verifies saving without identity is rejected
// before the store is touched.
func TestCreateWorkoutAnonymous(t *testing.T) {
	store := newMemStore()
	s := newTestServer(t, store, Options{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/workouts",
		strings.NewReader(`{"muscle_group_label":"Legs","equipment_label":"Gym","duration_minutes":30,"notes":"n"}`))
	rec := httptest.NewRecorder()
	s.handleCreateWorkout(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if len(store.workouts) != 0 {
		t.Errorf("store has %d workouts, want 0", len(store.workouts))
	}
}

// TestHandleCalories verifies query, form and invalid submissions.
func TestHandleCalories(t *testing.T) {
	s := newTestServer(t, newMemStore(), Options{})

	rec := do(t, s, http.MethodGet, "/api/v1/calories?sex=male&age=25&height=180&weight=75&activity=1.55", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	want := calorie.Result{BMR: 1815, TDEE: 2813, Lose: 2313, Maintain: 2813, Gain: 3313}
	if diff := cmp.Diff(want, decode[calorie.Result](t, rec)); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}

	form := url.Values{"sex": {"female"}, "age": {"30"}, "height": {"165"}, "weight": {"60"}, "activity": {"sedentary"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/calories", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if got := decode[calorie.Result](t, rec); got.BMR != 1384 {
		t.Errorf("form BMR = %d, want 1384", got.BMR)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/calories?sex=male&age=-1&height=180&weight=75&activity=1.55&lang=tr", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	body := decode[map[string]string](t, rec)
	if body["message"] != "Yaş, boy ve kilo pozitif sayı olmalıdır." {
		t.Errorf("message = %q", body["message"])
	}
}

// TestAPIKeyProtectsAPI verifies the configured key guards /api but not /healthz.
func TestAPIKeyProtectsAPI(t *testing.T) {
	s := newTestServer(t, newMemStore(), Options{APIKey: "secret"})

	if rec := do(t, s, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/catalog", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("catalog without key status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("catalog with key status = %d, want 200", rec.Code)
	}
}

// TestServerRateLimitsSaves verifies the limiter is wired to workout saves only.
func TestServerRateLimitsSaves(t *testing.T) {
	limiter := &testRequestRateLimiter{allowed: 0}
	s := newTestServer(t, newMemStore(), Options{RateLimiter: limiter, SavesPerMinute: 3})

	rec := do(t, s, http.MethodPost, "/api/v1/workouts",
		strings.NewReader(`{"muscle_group_label":"Legs","equipment_label":"Gym","duration_minutes":30,"notes":"n"}`))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/workouts", nil); rec.Code != http.StatusOK {
		t.Errorf("list status = %d, want 200", rec.Code)
	}
}

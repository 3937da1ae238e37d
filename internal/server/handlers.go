package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/fittrack/internal/calorie"
	"github.com/claude/fittrack/internal/catalog"
	"github.com/claude/fittrack/internal/i18n"
	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/plan"
	"github.com/claude/fittrack/internal/progress"
)

// CatalogView lists the choices offered at each wizard step and the
// calorie calculator's activity levels.
type CatalogView struct {
	catalog.View
	ActivityLevels []calorie.Level `json:"activity_levels"`
}

func requestLanguage(r *http.Request) i18n.Language {
	return i18n.Negotiate(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
}

// requireUser writes a 401 and returns nil when the request has no identity.
func requireUser(w http.ResponseWriter, r *http.Request) *models.User {
	u := userFromContext(r.Context())
	if u == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error": i18n.Translate(requestLanguage(r), "workout.auth_required"),
		})
	}
	return u
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.log.ErrorContext(r.Context(), "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u := requireUser(w, r)
	if u == nil {
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	lang := requestLanguage(r)
	writeJSON(w, http.StatusOK, CatalogView{
		View:           s.catalog.View(lang),
		ActivityLevels: calorie.Levels(),
	})
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sel := plan.Selection{
		MuscleGroup: q.Get("muscle"),
		Equipment:   q.Get("equipment"),
		Difficulty:  q.Get("difficulty"),
	}
	if !sel.Complete() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "muscle, equipment and difficulty parameters required"})
		return
	}

	v, err := plan.BuildView(s.catalog, sel, requestLanguage(r))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if s.opts.Metrics != nil {
		s.opts.Metrics.CounterPlansBuilt.WithLabelValues(sel.Difficulty, strconv.FormatBool(v.Fallback)).Inc()
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	u := requireUser(w, r)
	if u == nil {
		return
	}

	var payload models.NewWorkout
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	payload.UserID = u.ID

	rec, err := s.store.InsertWorkout(r.Context(), payload)
	switch {
	case errors.Is(err, models.ErrInvalidWorkout):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	case err != nil:
		s.log.ErrorContext(r.Context(), "saving workout", "error", err)
		if s.opts.Metrics != nil {
			s.opts.Metrics.CounterWorkoutFailures.Inc()
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": i18n.Translate(requestLanguage(r), "workout.error"),
		})
		return
	}

	if s.opts.Metrics != nil {
		s.opts.Metrics.CounterWorkoutsSaved.Inc()
	}
	s.log.InfoContext(r.Context(), "workout saved", "id", rec.ID, "muscle_group", rec.MuscleGroupLabel)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	u := requireUser(w, r)
	if u == nil {
		return
	}
	records, err := s.store.ListWorkouts(r.Context(), u.ID)
	if err != nil {
		s.log.ErrorContext(r.Context(), "listing workouts", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not load workouts"})
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	u := requireUser(w, r)
	if u == nil {
		return
	}
	rng, err := progress.ParseRange(r.URL.Query().Get("range"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	loc, err := progress.Location(r.URL.Query().Get("tz"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	records, err := s.store.ListWorkouts(r.Context(), u.ID)
	if err != nil {
		s.log.ErrorContext(r.Context(), "listing workouts", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not load workouts"})
		return
	}
	writeJSON(w, http.StatusOK, progress.Summarize(records, rng, time.Now().In(loc)))
}

func (s *Server) handleCalories(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form: " + err.Error()})
		return
	}
	in, err := calorie.ParseInput(r.Form.Get("sex"), r.Form.Get("age"), r.Form.Get("height"),
		r.Form.Get("weight"), r.Form.Get("activity"))
	if err == nil {
		var res calorie.Result
		if res, err = calorie.Estimate(in); err == nil {
			writeJSON(w, http.StatusOK, res)
			return
		}
	}
	writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
		"error":   err.Error(),
		"message": i18n.Translate(requestLanguage(r), "calorie.invalid"),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

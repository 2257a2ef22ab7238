package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evolvix-software/course-economics/internal/application/query"
	"github.com/evolvix-software/course-economics/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleHealth reports every registered dependency check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	if status.Version == "" {
		status.Version = s.config.Version
	}
	if !status.Healthy {
		writeJSON(w, r, http.StatusServiceUnavailable, status)
		return
	}
	writeJSON(w, r, http.StatusOK, status)
}

// handleReady handles the readiness probe endpoint.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	if !status.Ready {
		writeJSONError(w, r, http.StatusServiceUnavailable, "not_ready", status.Message, "")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

// ══════════════════════════════════════════════════════════════════════════════
// CALCULATOR HANDLERS
// Pure computations: nothing is read from or written to storage unless a
// course_id is supplied.
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleParseDuration(w http.ResponseWriter, r *http.Request) {
	var req durationRequest
	if err := decodeAndValidate(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, query.ParseDuration(req.DurationText))
}

func (s *Server) handleClassifyCourse(w http.ResponseWriter, r *http.Request) {
	var req durationRequest
	if err := decodeAndValidate(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, query.ClassifyCourse(req.DurationText))
}

func (s *Server) handleListTiers(w http.ResponseWriter, r *http.Request) {
	tiers := query.ListTiers()
	writeJSONList(w, r, tiers, len(tiers))
}

func (s *Server) handleDescribeTier(w http.ResponseWriter, r *http.Request) {
	tier, err := query.DescribeTier(chi.URLParam(r, "tier"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, tier)
}

func (s *Server) handleValidateCourse(w http.ResponseWriter, r *http.Request) {
	var req courseRequest
	if err := decodeAndValidate(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	result, err := query.ValidateCourse(req.toDraft())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleMentorReputation(w http.ResponseWriter, r *http.Request) {
	var req reputationRequest
	if err := decodeAndValidate(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	rep, err := query.GetMentorReputation(query.GetMentorReputationQuery{
		MentorID:        req.MentorID,
		AverageRating:   req.AverageRating,
		VerifiedCourses: req.VerifiedCourses,
		CompletionRate:  req.CompletionRate,
		TotalStudents:   req.TotalStudents,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rep)
}

func (s *Server) handlePreviewSplit(w http.ResponseWriter, r *http.Request) {
	if s.deps.PreviewSplit == nil {
		unavailable(w, r)
		return
	}
	var req splitPreviewRequest
	if err := decodeAndValidate(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	split, err := s.deps.PreviewSplit.Handle(r.Context(), query.PreviewSplitQuery{
		Amount:   *req.Amount,
		CourseID: req.CourseID,
		Split:    req.Commission.toSplit(),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, split)
}

func (s *Server) handlePreviewSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := decodeAndValidate(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	start := s.deps.Clock.Now()
	if req.StartDate != nil {
		start = req.StartDate.UTC()
	}
	schedule, err := query.PreviewInstallments(*req.Total, req.Count, start)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, schedule)
}

// pathID reads a required path parameter.
func pathID(r *http.Request, name string) (string, error) {
	id := chi.URLParam(r, name)
	if id == "" {
		return "", shared.NewDomainError("http", "PathParam", shared.ErrInvalidID, name+" is required")
	}
	return id, nil
}

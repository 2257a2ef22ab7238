package http

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/evolvix-software/course-economics/internal/application/command"
	"github.com/evolvix-software/course-economics/internal/domain/certificate"
	"github.com/evolvix-software/course-economics/internal/domain/course"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE HANDLERS
// A draft that fails the validation gate is answered with 422 and the full
// list of messages in data; nothing is stored.
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) writeCourseResult(w http.ResponseWriter, r *http.Request, status int, res *command.CourseResult) {
	if !res.Accepted() {
		writeEnvelope(w, r, http.StatusUnprocessableEntity, JSONResponse{
			Data:  res.Validation,
			Error: &APIError{Code: "validation_failed", Message: "course failed validation"},
		})
		return
	}
	writeJSON(w, r, status, res.Course)
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	if s.deps.CreateCourse == nil {
		unavailable(w, r)
		return
	}
	var req courseRequest
	if err := decodeAndValidate(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	res, err := s.deps.CreateCourse.Handle(r.Context(), command.CreateCourseCommand{
		Draft:         req.toDraft(),
		CorrelationID: middleware.GetReqID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeCourseResult(w, r, http.StatusCreated, res)
}

func (s *Server) handleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	if s.deps.UpdateCourse == nil {
		unavailable(w, r)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	var req coursePatchRequest
	if err := decodeAndValidate(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if req.ClearCommission && req.Commission != nil {
		writeJSONError(w, r, http.StatusBadRequest, "invalid_input", "commission_split and clear_commission are mutually exclusive", "")
		return
	}

	res, err := s.deps.UpdateCourse.Handle(r.Context(), command.UpdateCourseCommand{
		CourseID: id,
		Patch: command.CoursePatch{
			Title:           req.Title,
			Description:     req.Description,
			Price:           req.Price,
			DurationText:    req.DurationText,
			VacancyID:       req.VacancyID,
			Commission:      req.Commission.toSplit(),
			ClearCommission: req.ClearCommission,
		},
		CorrelationID: middleware.GetReqID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeCourseResult(w, r, http.StatusOK, res)
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	if s.deps.Lookups == nil {
		unavailable(w, r)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	dto, err := s.deps.Lookups.GetCourse(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto)
}

func (s *Server) handleListMentorCourses(w http.ResponseWriter, r *http.Request) {
	if s.deps.Lookups == nil {
		unavailable(w, r)
		return
	}
	mentorID, err := pathID(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	courses, err := s.deps.Lookups.ListMentorCourses(r.Context(), mentorID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if courses == nil {
		courses = []*course.Course{}
	}
	writeJSONList(w, r, courses, len(courses))
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS & CERTIFICATE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// issueResponse reports an issuance attempt. Changed is false when the
// record was already issued, below threshold, or being issued elsewhere.
type issueResponse struct {
	Changed  bool                  `json:"changed"`
	Reason   string                `json:"reason,omitempty"`
	Progress *certificate.Progress `json:"progress"`
}

func enrollmentIDs(r *http.Request) (string, string, error) {
	courseID, err := pathID(r, "courseId")
	if err != nil {
		return "", "", err
	}
	studentID, err := pathID(r, "studentId")
	if err != nil {
		return "", "", err
	}
	return courseID, studentID, nil
}

func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	if s.deps.UpdateProgress == nil {
		unavailable(w, r)
		return
	}
	courseID, studentID, err := enrollmentIDs(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	var req progressRequest
	if err := decodeAndValidate(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	p, err := s.deps.UpdateProgress.Handle(r.Context(), command.UpdateProgressCommand{
		CourseID:   courseID,
		StudentID:  studentID,
		Percentage: *req.Percentage,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	if s.deps.Lookups == nil {
		unavailable(w, r)
		return
	}
	courseID, studentID, err := enrollmentIDs(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	p, err := s.deps.Lookups.GetProgress(r.Context(), courseID, studentID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (s *Server) handleIssueCertificate(w http.ResponseWriter, r *http.Request) {
	if s.deps.IssueCertificate == nil {
		unavailable(w, r)
		return
	}
	courseID, studentID, err := enrollmentIDs(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	var req issueCertificateRequest
	if r.ContentLength != 0 {
		if err := decodeAndValidate(r, &req); err != nil {
			s.writeDomainError(w, r, err)
			return
		}
	}

	res, err := s.deps.IssueCertificate.Handle(r.Context(), command.IssueCertificateCommand{
		CourseID:      courseID,
		StudentID:     studentID,
		Threshold:     req.Threshold,
		CorrelationID: middleware.GetReqID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, issueResponse{
		Changed:  res.Changed,
		Reason:   res.Reason,
		Progress: res.Progress,
	})
}

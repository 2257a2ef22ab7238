package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/evolvix-software/course-economics/internal/application/command"
	"github.com/evolvix-software/course-economics/internal/application/query"
	"github.com/evolvix-software/course-economics/internal/domain/payment"
)

// ══════════════════════════════════════════════════════════════════════════════
// PAYMENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	if s.deps.RecordPayment == nil {
		unavailable(w, r)
		return
	}
	var req paymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	d, err := s.deps.RecordPayment.Handle(r.Context(), command.RecordPaymentCommand{
		CourseID:          req.CourseID,
		StudentID:         req.StudentID,
		Amount:            *req.Amount,
		Method:            payment.Method(req.Method),
		InstallmentNumber: req.InstallmentNumber,
		TotalInstallments: req.TotalInstallments,
		CorrelationID:     middleware.GetReqID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, d)
}

type transitionKind int

const (
	transitionProcessing transitionKind = iota
	transitionSettle
	transitionFail
)

func (k transitionKind) target() payment.Status {
	switch k {
	case transitionProcessing:
		return payment.StatusProcessing
	case transitionSettle:
		return payment.StatusCompleted
	default:
		return payment.StatusFailed
	}
}

// transitionResponse reports a status change. A terminal distribution is
// returned untouched with changed=false.
type transitionResponse struct {
	Changed        bool                  `json:"changed"`
	PreviousStatus payment.Status        `json:"previous_status"`
	Distribution   *payment.Distribution `json:"distribution"`
}

func (s *Server) handleTransitionPayment(kind transitionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.TransitionPayment == nil {
			unavailable(w, r)
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}

		var req transitionRequest
		if r.ContentLength != 0 {
			if err := decodeAndValidate(r, &req); err != nil {
				s.writeDomainError(w, r, err)
				return
			}
		}

		res, err := s.deps.TransitionPayment.Handle(r.Context(), command.TransitionPaymentCommand{
			DistributionID: id,
			Target:         kind.target(),
			Reason:         req.Reason,
			CorrelationID:  middleware.GetReqID(r.Context()),
		})
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, transitionResponse{
			Changed:        res.Changed,
			PreviousStatus: res.PreviousStatus,
			Distribution:   res.Distribution,
		})
	}
}

// handleMentorEarnings serves the cached summary; ?fresh=true bypasses it.
func (s *Server) handleMentorEarnings(w http.ResponseWriter, r *http.Request) {
	if s.deps.MentorEarnings == nil {
		unavailable(w, r)
		return
	}
	mentorID, err := pathID(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	fresh, _ := strconv.ParseBool(r.URL.Query().Get("fresh"))

	earnings, err := s.deps.MentorEarnings.Handle(r.Context(), query.GetMentorEarningsQuery{
		MentorID:  mentorID,
		SkipCache: fresh,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, earnings)
}

// ══════════════════════════════════════════════════════════════════════════════
// INSTALLMENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handlePlanInstallments(w http.ResponseWriter, r *http.Request) {
	if s.deps.PlanInstallments == nil {
		unavailable(w, r)
		return
	}
	courseID, err := pathID(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	var req planInstallmentsRequest
	if err := decodeAndValidate(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	planned, err := s.deps.PlanInstallments.Handle(r.Context(), command.PlanInstallmentsCommand{
		CourseID:      courseID,
		StudentID:     req.StudentID,
		Count:         req.Count,
		StartDate:     req.StartDate,
		CorrelationID: middleware.GetReqID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeEnvelope(w, r, http.StatusCreated, JSONResponse{
		Data: planned,
		Meta: &ResponseMeta{TotalCount: len(planned)},
	})
}

func (s *Server) handleListInstallments(w http.ResponseWriter, r *http.Request) {
	if s.deps.Lookups == nil {
		unavailable(w, r)
		return
	}
	courseID, err := pathID(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	studentID, err := pathID(r, "studentId")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	items, err := s.deps.Lookups.GetInstallments(r.Context(), courseID, studentID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if items == nil {
		items = []*payment.Installment{}
	}
	writeJSONList(w, r, items, len(items))
}

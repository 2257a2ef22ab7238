package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/evolvix-software/course-economics/internal/domain/course"
	"github.com/evolvix-software/course-economics/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALIDATION
// Request shape is checked here. Business rules stay in the domain gate.
// ══════════════════════════════════════════════════════════════════════════════

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// decodeAndValidate reads a JSON body into dst and validates its shape.
// Every failure is reported as shared.ErrInvalidInput.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return shared.NewDomainError("http", "Decode", shared.ErrInvalidInput, "request body is required")
		}
		return shared.WrapError("http", "Decode", shared.ErrInvalidInput, "malformed request body", err)
	}
	if dec.More() {
		return shared.NewDomainError("http", "Decode", shared.ErrInvalidInput, "request body must contain a single JSON object")
	}
	return validateStruct(dst)
}

func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return shared.WrapError("http", "Validate", shared.ErrInvalidInput, "invalid request", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return shared.NewDomainError("http", "Validate", shared.ErrInvalidInput, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fe.Field() + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST DTOs
// ══════════════════════════════════════════════════════════════════════════════

type durationRequest struct {
	DurationText string `json:"duration_text"`
}

type commissionRequest struct {
	Platform *decimal.Decimal `json:"platform" validate:"required"`
	Mentor   *decimal.Decimal `json:"mentor" validate:"required"`
}

func (c *commissionRequest) toSplit() *course.CommissionSplit {
	if c == nil {
		return nil
	}
	return &course.CommissionSplit{Platform: *c.Platform, Mentor: *c.Mentor}
}

// courseRequest is a draft as submitted by the course editor. Completeness
// is left to the validation gate so the caller gets the full message list.
type courseRequest struct {
	MentorID     string             `json:"mentor_id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Price        *decimal.Decimal   `json:"price"`
	DurationText string             `json:"duration_text"`
	Commission   *commissionRequest `json:"commission_split" validate:"omitempty"`
	VacancyID    string             `json:"vacancy_id"`
}

func (c courseRequest) toDraft() course.Draft {
	return course.Draft{
		MentorID:     strings.TrimSpace(c.MentorID),
		Title:        c.Title,
		Description:  c.Description,
		Price:        c.Price,
		DurationText: c.DurationText,
		Commission:   c.Commission.toSplit(),
		VacancyID:    strings.TrimSpace(c.VacancyID),
	}
}

type coursePatchRequest struct {
	Title           *string            `json:"title"`
	Description     *string            `json:"description"`
	Price           *decimal.Decimal   `json:"price"`
	DurationText    *string            `json:"duration_text"`
	VacancyID       *string            `json:"vacancy_id"`
	Commission      *commissionRequest `json:"commission_split" validate:"omitempty"`
	ClearCommission bool               `json:"clear_commission"`
}

type reputationRequest struct {
	AverageRating   float64 `json:"average_rating" validate:"gte=0,lte=5"`
	VerifiedCourses int     `json:"verified_courses" validate:"gte=0"`
	CompletionRate  float64 `json:"completion_rate" validate:"gte=0,lte=100"`
	TotalStudents   int     `json:"total_students" validate:"gte=0"`
	MentorID        string  `json:"mentor_id"`
}

type splitPreviewRequest struct {
	Amount     *decimal.Decimal   `json:"amount" validate:"required"`
	CourseID   string             `json:"course_id"`
	Commission *commissionRequest `json:"commission_split" validate:"omitempty"`
}

type scheduleRequest struct {
	Total     *decimal.Decimal `json:"total" validate:"required"`
	Count     int              `json:"count"`
	StartDate *time.Time       `json:"start_date"`
}

type progressRequest struct {
	Percentage *float64 `json:"progress_percentage" validate:"required"`
}

type issueCertificateRequest struct {
	Threshold *float64 `json:"threshold" validate:"omitempty,gte=0,lte=100"`
}

type paymentRequest struct {
	CourseID          string           `json:"course_id" validate:"notblank"`
	StudentID         string           `json:"student_id" validate:"notblank"`
	Amount            *decimal.Decimal `json:"amount" validate:"required"`
	Method            string           `json:"payment_method" validate:"required,oneof=full installment"`
	InstallmentNumber int              `json:"installment_number"`
	TotalInstallments int              `json:"total_installments"`
}

type transitionRequest struct {
	Reason string `json:"reason"`
}

type planInstallmentsRequest struct {
	StudentID string     `json:"student_id" validate:"notblank"`
	Count     int        `json:"count"`
	StartDate *time.Time `json:"start_date"`
}

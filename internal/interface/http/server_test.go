package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evolvix-software/course-economics/internal/application/command"
	"github.com/evolvix-software/course-economics/internal/application/query"
	"github.com/evolvix-software/course-economics/internal/domain/certificate"
	"github.com/evolvix-software/course-economics/internal/domain/payment"
	"github.com/evolvix-software/course-economics/internal/domain/shared"
	"github.com/evolvix-software/course-economics/internal/infrastructure/persistence/memory"
	"github.com/evolvix-software/course-economics/internal/interface/http/handlers"
	"github.com/evolvix-software/course-economics/pkg/logger"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func sequentialIDs(prefix string) shared.IDGenerator {
	var mu sync.Mutex
	n := 0
	return shared.IDGeneratorFunc(func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	})
}

func newTestServer(t *testing.T, health handlers.HealthChecker) http.Handler {
	t.Helper()
	return newConfiguredServer(t, DefaultConfig(), health)
}

func newConfiguredServer(t *testing.T, config Config, health handlers.HealthChecker) http.Handler {
	t.Helper()

	clock := shared.FixedClock(testNow)
	log := logger.Nop()

	courses := memory.NewCourseRepository()
	progress := memory.NewProgressRepository()
	distributions := memory.NewDistributionRepository()
	installments := memory.NewInstallmentRepository()
	cache := memory.NewEarningsCache()

	distributor, err := payment.NewDistributor(payment.DefaultDistributorConfig(), clock, sequentialIDs("dist"))
	require.NoError(t, err)
	issuer := certificate.NewIssuer(certificate.IssuerConfig{URLPrefix: "https://certs.example.org"}, clock)

	deps := Dependencies{
		CreateCourse:      command.NewCreateCourseHandler(courses, nil, clock, sequentialIDs("course"), log),
		UpdateCourse:      command.NewUpdateCourseHandler(courses, nil, clock, log),
		UpdateProgress:    command.NewUpdateProgressHandler(courses, progress, clock, log),
		IssueCertificate:  command.NewIssueCertificateHandler(courses, progress, issuer, memory.NewIssuanceLock(), nil, log),
		RecordPayment:     command.NewRecordPaymentHandler(courses, distributions, distributor, cache, nil, log),
		TransitionPayment: command.NewTransitionPaymentHandler(distributions, installments, distributor, cache, nil, log),
		PlanInstallments:  command.NewPlanInstallmentsHandler(courses, installments, nil, clock, sequentialIDs("inst"), log),
		MentorEarnings:    query.NewGetMentorEarningsHandler(distributions, cache, log),
		PreviewSplit:      query.NewPreviewSplitHandler(courses, distributor),
		Lookups:           query.NewLookups(courses, progress, installments, distributor),
		Clock:             clock,
		Logger:            log,
		HealthChecker:     health,
	}
	srv := NewServer(config, deps)
	t.Cleanup(func() {
		if srv.rateLimiter != nil {
			srv.rateLimiter.Stop()
		}
	})
	return srv.Handler()
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *ResponseMeta   `json:"meta"`
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	return rec.Code, env
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func bundleCourse() map[string]interface{} {
	return map[string]interface{}{
		"mentor_id":     "mentor-1",
		"title":         "Full-stack Go",
		"description":   "From zero to production",
		"price":         "100000",
		"duration_text": "5 months",
		"vacancy_id":    "vac-1",
	}
}

func createCourse(t *testing.T, h http.Handler, body map[string]interface{}) string {
	t.Helper()
	code, env := do(t, h, http.MethodPost, "/api/v1/courses", body)
	require.Equal(t, http.StatusCreated, code, "error: %+v", env.Error)
	var c struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &c)
	require.NotEmpty(t, c.ID)
	return c.ID
}

// ─────────────────────────────────────────────────────────────────────────────
// Health
// ─────────────────────────────────────────────────────────────────────────────

type stubDependency struct {
	name string
	err  error
}

func (d stubDependency) Name() string                    { return d.name }
func (d stubDependency) Check(ctx context.Context) error { return d.err }

func TestHealth(t *testing.T) {
	checker := handlers.NewCompositeHealthChecker("test")
	checker.AddDependency(stubDependency{name: "postgres"})
	h := newTestServer(t, checker)

	code, env := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	code, _ = do(t, h, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestReady_FailingDependency(t *testing.T) {
	checker := handlers.NewCompositeHealthChecker("test")
	checker.AddDependency(stubDependency{name: "redis", err: errors.New("connection refused")})
	h := newTestServer(t, checker)

	code, env := do(t, h, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Message, "redis")
}

// ─────────────────────────────────────────────────────────────────────────────
// Calculators
// ─────────────────────────────────────────────────────────────────────────────

func TestClassifyAndParse(t *testing.T) {
	h := newTestServer(t, nil)

	tests := []struct {
		text            string
		tier            string
		requiresVacancy bool
	}{
		{"3 hours", "crash", false},
		{"2 days", "skill-focused", false},
		{"1 week", "bootcamp", true},
		{"4 months", "bundle", true},
		{"whenever", "skill-focused", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			code, env := do(t, h, http.MethodPost, "/api/v1/courses/classify", map[string]string{"duration_text": tt.text})
			require.Equal(t, http.StatusOK, code)

			var got query.ClassificationDTO
			decodeData(t, env, &got)
			assert.Equal(t, tt.tier, got.Tier)
			assert.Equal(t, tt.requiresVacancy, got.RequiresVacancy)
		})
	}

	code, env := do(t, h, http.MethodPost, "/api/v1/durations/parse", map[string]string{"duration_text": "2 months"})
	require.Equal(t, http.StatusOK, code)
	var d query.DurationDTO
	decodeData(t, env, &d)
	assert.Equal(t, 2.0, d.Months)
	assert.Equal(t, 320.0, d.Hours)
}

func TestTiers(t *testing.T) {
	h := newTestServer(t, nil)

	code, env := do(t, h, http.MethodGet, "/api/v1/tiers", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 4, env.Meta.TotalCount)

	code, env = do(t, h, http.MethodGet, "/api/v1/tiers/crash", nil)
	require.Equal(t, http.StatusOK, code)
	var tier query.TierDTO
	decodeData(t, env, &tier)
	assert.False(t, tier.AllowsScholarship)
	assert.False(t, tier.RequiresVacancy)

	code, env = do(t, h, http.MethodGet, "/api/v1/tiers/bootcamp", nil)
	require.Equal(t, http.StatusOK, code)
	decodeData(t, env, &tier)
	assert.True(t, tier.AllowsScholarship)
	assert.True(t, tier.RequiresVacancy)

	code, _ = do(t, h, http.MethodGet, "/api/v1/tiers/semester", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestValidateCourse(t *testing.T) {
	h := newTestServer(t, nil)

	code, env := do(t, h, http.MethodPost, "/api/v1/courses/validate", map[string]interface{}{
		"duration_text": "1 week",
		"price":         "-1",
	})
	require.Equal(t, http.StatusOK, code)

	var got query.ValidateCourseDTO
	decodeData(t, env, &got)
	assert.False(t, got.Valid)
	assert.Len(t, got.Errors, 4)
	assert.Equal(t, "bootcamp", got.Tier)
}

func TestMentorReputation(t *testing.T) {
	h := newTestServer(t, nil)

	code, env := do(t, h, http.MethodPost, "/api/v1/mentors/reputation", map[string]interface{}{
		"average_rating":   5,
		"verified_courses": 15,
		"completion_rate":  100,
		"total_students":   1000,
	})
	require.Equal(t, http.StatusOK, code)
	var rep query.ReputationDTO
	decodeData(t, env, &rep)
	assert.Equal(t, 100, rep.Score)

	code, env = do(t, h, http.MethodPost, "/api/v1/mentors/reputation", map[string]interface{}{"average_rating": 7})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error.Message, "average_rating")
}

func TestPreviewSplit(t *testing.T) {
	h := newTestServer(t, nil)

	code, env := do(t, h, http.MethodPost, "/api/v1/splits/preview", map[string]interface{}{"amount": "1000"})
	require.Equal(t, http.StatusOK, code)
	var split query.SplitDTO
	decodeData(t, env, &split)
	assert.True(t, split.PlatformCut.Equal(decimal.NewFromInt(300)))
	assert.True(t, split.MentorCut.Equal(decimal.NewFromInt(700)))

	code, env = do(t, h, http.MethodPost, "/api/v1/splits/preview", map[string]interface{}{
		"amount":           "1000",
		"commission_split": map[string]string{"platform": "40", "mentor": "50"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "invalid_configuration", env.Error.Code)
}

func TestPreviewSchedule(t *testing.T) {
	h := newTestServer(t, nil)

	code, env := do(t, h, http.MethodPost, "/api/v1/installments/schedule", map[string]interface{}{
		"total":      "100",
		"count":      3,
		"start_date": "2026-01-01T00:00:00Z",
	})
	require.Equal(t, http.StatusOK, code)
	var schedule query.ScheduleDTO
	decodeData(t, env, &schedule)
	require.Len(t, schedule.Entries, 3)
	assert.Equal(t, 30, schedule.CadenceDays)
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), schedule.Entries[1].DueDate.UTC())

	code, _ = do(t, h, http.MethodPost, "/api/v1/installments/schedule", map[string]interface{}{"total": "100", "count": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestMalformedBody(t *testing.T) {
	h := newTestServer(t, nil)

	code, env := do(t, h, http.MethodPost, "/api/v1/courses", "{not json")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_input", env.Error.Code)

	code, _ = do(t, h, http.MethodPost, "/api/v1/durations/parse", `{"duration_text":"1 hour","extra":true}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Courses
// ─────────────────────────────────────────────────────────────────────────────

func TestCourseLifecycle(t *testing.T) {
	h := newTestServer(t, nil)
	id := createCourse(t, h, bundleCourse())

	code, env := do(t, h, http.MethodGet, "/api/v1/courses/"+id, nil)
	require.Equal(t, http.StatusOK, code)
	var dto struct {
		Course struct {
			Category string `json:"course_category"`
		} `json:"course"`
		UsesDefaultSplit bool `json:"uses_default_split"`
	}
	decodeData(t, env, &dto)
	assert.Equal(t, "bundle", dto.Course.Category)
	assert.True(t, dto.UsesDefaultSplit)

	code, env = do(t, h, http.MethodPut, "/api/v1/courses/"+id, map[string]interface{}{"duration_text": "3 hours"})
	require.Equal(t, http.StatusOK, code)
	var updated struct {
		Category string `json:"course_category"`
	}
	decodeData(t, env, &updated)
	assert.Equal(t, "crash", updated.Category)

	code, env = do(t, h, http.MethodGet, "/api/v1/mentors/mentor-1/courses", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, env.Meta.TotalCount)

	code, _ = do(t, h, http.MethodGet, "/api/v1/courses/missing", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCreateCourse_Rejected(t *testing.T) {
	h := newTestServer(t, nil)

	body := bundleCourse()
	delete(body, "vacancy_id")
	body["title"] = "  "

	code, env := do(t, h, http.MethodPost, "/api/v1/courses", body)
	require.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "validation_failed", env.Error.Code)

	var result struct {
		Valid  bool     `json:"valid"`
		Errors []string `json:"errors"`
	}
	decodeData(t, env, &result)
	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 2)

	code, env = do(t, h, http.MethodGet, "/api/v1/mentors/mentor-1/courses", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "[]", strings.TrimSpace(string(env.Data)))
}

func TestUpdateCourse_ConflictingCommissionFlags(t *testing.T) {
	h := newTestServer(t, nil)
	id := createCourse(t, h, bundleCourse())

	code, _ := do(t, h, http.MethodPut, "/api/v1/courses/"+id, map[string]interface{}{
		"commission_split": map[string]string{"platform": "20", "mentor": "80"},
		"clear_commission": true,
	})
	assert.Equal(t, http.StatusBadRequest, code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Certificates
// ─────────────────────────────────────────────────────────────────────────────

func TestCertificateIssuance(t *testing.T) {
	h := newTestServer(t, nil)
	id := createCourse(t, h, bundleCourse())
	progressPath := "/api/v1/progress/" + id + "/student-1"

	code, _ := do(t, h, http.MethodPost, progressPath+"/certificate", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, h, http.MethodPut, progressPath, map[string]float64{"progress_percentage": 85})
	require.Equal(t, http.StatusOK, code)

	code, env := do(t, h, http.MethodPost, progressPath+"/certificate", nil)
	require.Equal(t, http.StatusOK, code)
	var first issueResponse
	decodeData(t, env, &first)
	require.True(t, first.Changed)
	assert.True(t, strings.HasPrefix(first.Progress.CertificateID, certificate.IDPrefix))
	assert.True(t, first.Progress.MentorSigned)

	code, env = do(t, h, http.MethodPost, progressPath+"/certificate", nil)
	require.Equal(t, http.StatusOK, code)
	var second issueResponse
	decodeData(t, env, &second)
	assert.False(t, second.Changed)
	assert.Equal(t, command.ReasonAlreadyIssued, second.Reason)
	assert.Equal(t, first.Progress.CertificateID, second.Progress.CertificateID)

	code, env = do(t, h, http.MethodGet, progressPath, nil)
	require.Equal(t, http.StatusOK, code)
	var stored certificate.Progress
	decodeData(t, env, &stored)
	assert.True(t, stored.CertificateIssued)
}

func TestCertificateIssuance_ThresholdOverride(t *testing.T) {
	h := newTestServer(t, nil)
	id := createCourse(t, h, bundleCourse())
	progressPath := "/api/v1/progress/" + id + "/student-2"

	code, _ := do(t, h, http.MethodPut, progressPath, map[string]float64{"progress_percentage": 60})
	require.Equal(t, http.StatusOK, code)

	code, env := do(t, h, http.MethodPost, progressPath+"/certificate", nil)
	require.Equal(t, http.StatusOK, code)
	var res issueResponse
	decodeData(t, env, &res)
	assert.False(t, res.Changed)
	assert.Equal(t, command.ReasonBelowThreshold, res.Reason)

	code, env = do(t, h, http.MethodPost, progressPath+"/certificate", map[string]float64{"threshold": 50})
	require.Equal(t, http.StatusOK, code)
	decodeData(t, env, &res)
	assert.True(t, res.Changed)

	code, _ = do(t, h, http.MethodPost, progressPath+"/certificate", map[string]float64{"threshold": 150})
	assert.Equal(t, http.StatusBadRequest, code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Payments
// ─────────────────────────────────────────────────────────────────────────────

type distributionBody struct {
	ID          string          `json:"id"`
	Status      string          `json:"status"`
	PlatformCut decimal.Decimal `json:"platform_cut"`
	MentorCut   decimal.Decimal `json:"mentor_cut"`
}

func TestPaymentLifecycle(t *testing.T) {
	h := newTestServer(t, nil)
	id := createCourse(t, h, bundleCourse())

	code, env := do(t, h, http.MethodPost, "/api/v1/payments", map[string]interface{}{
		"course_id":      id,
		"student_id":     "student-1",
		"amount":         "100000",
		"payment_method": "full",
	})
	require.Equal(t, http.StatusCreated, code, "error: %+v", env.Error)
	var d distributionBody
	decodeData(t, env, &d)
	assert.Equal(t, "pending", d.Status)
	assert.True(t, d.PlatformCut.Equal(decimal.NewFromInt(30000)))
	assert.True(t, d.MentorCut.Equal(decimal.NewFromInt(70000)))

	code, env = do(t, h, http.MethodGet, "/api/v1/mentors/mentor-1/earnings", nil)
	require.Equal(t, http.StatusOK, code)
	var earnings struct {
		Total   decimal.Decimal `json:"total_earnings"`
		Pending decimal.Decimal `json:"pending_earnings"`
	}
	decodeData(t, env, &earnings)
	assert.True(t, earnings.Pending.Equal(decimal.NewFromInt(70000)))

	code, env = do(t, h, http.MethodPost, "/api/v1/payments/"+d.ID+"/settle", nil)
	require.Equal(t, http.StatusOK, code)
	var tr struct {
		Changed        bool             `json:"changed"`
		PreviousStatus string           `json:"previous_status"`
		Distribution   distributionBody `json:"distribution"`
	}
	decodeData(t, env, &tr)
	assert.True(t, tr.Changed)
	assert.Equal(t, "pending", tr.PreviousStatus)
	assert.Equal(t, "completed", tr.Distribution.Status)

	code, env = do(t, h, http.MethodPost, "/api/v1/payments/"+d.ID+"/fail", map[string]string{"reason": "chargeback"})
	require.Equal(t, http.StatusOK, code)
	decodeData(t, env, &tr)
	assert.False(t, tr.Changed)
	assert.Equal(t, "completed", tr.Distribution.Status)

	code, env = do(t, h, http.MethodGet, "/api/v1/mentors/mentor-1/earnings?fresh=true", nil)
	require.Equal(t, http.StatusOK, code)
	var after struct {
		Completed decimal.Decimal `json:"completed_earnings"`
	}
	decodeData(t, env, &after)
	assert.True(t, after.Completed.Equal(decimal.NewFromInt(70000)))

	code, _ = do(t, h, http.MethodPost, "/api/v1/payments/missing/settle", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRecordPayment_Errors(t *testing.T) {
	h := newTestServer(t, nil)
	id := createCourse(t, h, bundleCourse())

	tests := []struct {
		name string
		body map[string]interface{}
		code int
	}{
		{"zero amount", map[string]interface{}{"course_id": id, "student_id": "s", "amount": "0", "payment_method": "full"}, http.StatusUnprocessableEntity},
		{"bad numbering", map[string]interface{}{"course_id": id, "student_id": "s", "amount": "10", "payment_method": "installment", "installment_number": 4, "total_installments": 3}, http.StatusUnprocessableEntity},
		{"unknown method", map[string]interface{}{"course_id": id, "student_id": "s", "amount": "10", "payment_method": "crypto"}, http.StatusBadRequest},
		{"missing student", map[string]interface{}{"course_id": id, "amount": "10", "payment_method": "full"}, http.StatusBadRequest},
		{"unknown course", map[string]interface{}{"course_id": "nope", "student_id": "s", "amount": "10", "payment_method": "full"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := do(t, h, http.MethodPost, "/api/v1/payments", tt.body)
			assert.Equal(t, tt.code, code, "error: %+v", env.Error)
			assert.False(t, env.Success)
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Installments
// ─────────────────────────────────────────────────────────────────────────────

func TestPlanInstallments(t *testing.T) {
	h := newTestServer(t, nil)
	id := createCourse(t, h, bundleCourse())

	code, env := do(t, h, http.MethodPost, "/api/v1/courses/"+id+"/installments", map[string]interface{}{
		"student_id": "student-1",
		"count":      3,
	})
	require.Equal(t, http.StatusCreated, code, "error: %+v", env.Error)
	assert.Equal(t, 3, env.Meta.TotalCount)

	code, env = do(t, h, http.MethodGet, "/api/v1/courses/"+id+"/installments/student-1", nil)
	require.Equal(t, http.StatusOK, code)
	var items []struct {
		Number  int             `json:"installment_number"`
		Amount  decimal.Decimal `json:"amount"`
		DueDate time.Time       `json:"due_date"`
	}
	decodeData(t, env, &items)
	require.Len(t, items, 3)
	assert.Equal(t, 1, items[0].Number)
	assert.True(t, items[0].DueDate.Equal(testNow))

	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
	}
	assert.True(t, total.Equal(decimal.NewFromInt(100000)), "installments sum to the course price, got %s", total)

	code, _ = do(t, h, http.MethodPost, "/api/v1/courses/"+id+"/installments", map[string]interface{}{
		"student_id": "student-1",
		"count":      3,
	})
	assert.Equal(t, http.StatusConflict, code)
}

func TestUnknownRoute(t *testing.T) {
	h := newTestServer(t, nil)
	code, env := do(t, h, http.MethodGet, "/api/v1/nothing", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", env.Error.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────────────────────────────────────

func TestRateLimit_KeyedByClientIP(t *testing.T) {
	config := DefaultConfig()
	config.RateLimitPerMinute = 1
	h := newConfiguredServer(t, config, nil)

	statusFrom := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	var statuses []int
	for _, port := range []string{"40001", "40001", "40002", "40003"} {
		statuses = append(statuses, statusFrom("203.0.113.7:"+port))
	}
	assert.Equal(t, []int{200, 429, 429, 429}, statuses)

	assert.Equal(t, http.StatusOK, statusFrom("198.51.100.4:40001"))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	req.RemoteAddr = "203.0.113.7:40001"
	assert.Equal(t, "203.0.113.7", clientIP(req))

	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", clientIP(req))

	req.RemoteAddr = "203.0.113.7"
	assert.Equal(t, "203.0.113.7", clientIP(req))
}

func TestCORS(t *testing.T) {
	config := DefaultConfig()
	config.AllowedOrigins = []string{"https://app.evolvix.example"}
	h := newConfiguredServer(t, config, nil)

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/courses", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	allowed := preflight("https://app.evolvix.example")
	assert.Equal(t, "https://app.evolvix.example", allowed.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, allowed.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)

	denied := preflight("https://evil.example")
	assert.Empty(t, denied.Header().Get("Access-Control-Allow-Origin"))

	code, _ := do(t, h, http.MethodGet, "/api/v1/tiers", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestPreviewSchedule_CountOutOfRange(t *testing.T) {
	h := newTestServer(t, nil)

	for _, count := range []int{0, payment.MaxInstallments + 1, 2000000000} {
		code, env := do(t, h, http.MethodPost, "/api/v1/installments/schedule", map[string]interface{}{
			"total": "1",
			"count": count,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, code, "count %d", count)
		assert.Equal(t, "invalid_configuration", env.Error.Code)
	}
}

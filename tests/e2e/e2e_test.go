package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/niranjan-aware/resonance-system/internal/config"
	"github.com/niranjan-aware/resonance-system/internal/database"
	"github.com/niranjan-aware/resonance-system/internal/domain"
	"github.com/niranjan-aware/resonance-system/internal/middleware"
	"github.com/niranjan-aware/resonance-system/internal/modules/booking"
	"github.com/niranjan-aware/resonance-system/internal/modules/catalog"
	"github.com/niranjan-aware/resonance-system/internal/modules/notification"
	jwtsvc "github.com/niranjan-aware/resonance-system/internal/pkg/jwt"
	"github.com/niranjan-aware/resonance-system/internal/repository"
)

type testSuite struct {
	router     *gin.Engine
	db         *gorm.DB
	jwtService *jwtsvc.Service
	studioID   int64
}

type apiResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *errorDetail           `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var e2eCounter int

func setupSuite(t *testing.T) *testSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	e2eCounter++
	db, err := database.Connect(fmt.Sprintf("file:e2e_%d?mode=memory&cache=shared", e2eCounter))
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))

	reservations := repository.NewReservationRepository(db)
	studios := repository.NewStudioRepository(db)
	customers := repository.NewCustomerRepository(db)
	attempts := repository.NewNotificationLogRepository(db)

	studio := &domain.Studio{
		Name:       "Studio A - Resonance Sinhgad Road",
		Size:       domain.StudioSmall,
		HourlyRate: 600,
		OpenTime:   "08:00",
		CloseTime:  "22:00",
		IsActive:   true,
	}
	require.NoError(t, studios.Create(t.Context(), studio))

	// External channels stay nil: the dispatcher runs but reaches nothing.
	dispatcher := notification.NewDispatcher(
		nil, nil, nil, attempts, reservations,
		config.TemplateSet{}, time.Second,
	)

	loc := time.FixedZone("IST", 5*3600+1800)
	bookingService := booking.NewService(
		reservations, studios, customers, dispatcher,
		loc, 0.18,
		booking.PenaltyRules{LateCutoffHours: 24, LateAmount: 100, NoShowAmount: 300},
	)
	catalogService := catalog.NewService(studios)

	jwtService := jwtsvc.New("e2e-test-secret", time.Hour)

	bookingHandler := booking.NewHandler(bookingService)
	catalogHandler := catalog.NewHandler(catalogService)

	router := gin.New()
	api := router.Group("/api/v1")
	bookingHandler.RegisterRoutes(api)
	catalogHandler.RegisterRoutes(api)
	admin := api.Group("/admin", middleware.AdminAuth(jwtService))
	bookingHandler.RegisterAdminRoutes(admin)

	return &testSuite{router: router, db: db, jwtService: jwtService, studioID: studio.ID}
}

func (s *testSuite) request(t *testing.T, method, path string, body any, token string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var parsed apiResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

// futureDate returns a date comfortably past the late-cancel cutoff.
func futureDate() string {
	return time.Now().AddDate(0, 0, 3).Format("2006-01-02")
}

func createPayload(studioID int64, date, start, end, phone string) map[string]any {
	return map[string]any{
		"studio_id":    studioID,
		"date":         date,
		"start_time":   start,
		"end_time":     end,
		"session_kind": "band",
		"phone":        phone,
		"name":         "Asha",
	}
}

func bookingID(t *testing.T, resp apiResponse) int64 {
	t.Helper()
	b, ok := resp.Data["booking"].(map[string]interface{})
	require.True(t, ok, "response has no booking object")
	id, ok := b["id"].(float64)
	require.True(t, ok, "booking has no id")
	return int64(id)
}

func TestBookingLifecycle(t *testing.T) {
	s := setupSuite(t)
	date := futureDate()

	w, resp := s.request(t, http.MethodPost, "/api/v1/bookings",
		createPayload(s.studioID, date, "10:00", "13:00", "9876543210"), "")
	require.Equal(t, http.StatusCreated, w.Code, resp.Message)
	require.True(t, resp.Success)

	b := resp.Data["booking"].(map[string]interface{})
	assert.Equal(t, "confirmed", b["status"])
	pricing := b["pricing"].(map[string]interface{})
	assert.Equal(t, float64(1800), pricing["base_amount"])
	assert.Equal(t, float64(324), pricing["tax_amount"])
	assert.Equal(t, float64(2124), pricing["total_amount"])
	assert.Regexp(t, `^RES-[0-9]{8}-[0-9]{4}$`, b["reference_code"])
	id := bookingID(t, resp)

	t.Run("overlapping booking conflicts", func(t *testing.T) {
		w, resp := s.request(t, http.MethodPost, "/api/v1/bookings",
			createPayload(s.studioID, date, "12:00", "14:00", "9123456789"), "")
		assert.Equal(t, http.StatusConflict, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "BOOKING_CONFLICT", resp.Error.Code)
	})

	t.Run("availability reflects the booking", func(t *testing.T) {
		_, resp := s.request(t, http.MethodPost, "/api/v1/bookings/availability", map[string]any{
			"studio_id":  s.studioID,
			"date":       date,
			"start_time": "11:00",
			"end_time":   "12:00",
		}, "")
		assert.Equal(t, false, resp.Data["available"])

		_, resp = s.request(t, http.MethodPost, "/api/v1/bookings/availability", map[string]any{
			"studio_id":  s.studioID,
			"date":       date,
			"start_time": "13:00",
			"end_time":   "15:00",
		}, "")
		assert.Equal(t, true, resp.Data["available"])
	})

	t.Run("bookings listed by phone", func(t *testing.T) {
		w, resp := s.request(t, http.MethodPost, "/api/v1/bookings/by-phone",
			map[string]any{"phone": "9876543210"}, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), resp.Data["count"])
		assert.Equal(t, "Asha", resp.Data["customer_name"])
	})

	t.Run("reschedule keeps duration and frees old slot", func(t *testing.T) {
		newDate := time.Now().AddDate(0, 0, 4).Format("2006-01-02")
		w, resp := s.request(t, http.MethodPut, fmt.Sprintf("/api/v1/bookings/%d/reschedule", id), map[string]any{
			"phone":      "9876543210",
			"date":       newDate,
			"start_time": "14:00",
			"end_time":   "17:00",
		}, "")
		require.Equal(t, http.StatusOK, w.Code, resp.Message)

		_, avail := s.request(t, http.MethodPost, "/api/v1/bookings/availability", map[string]any{
			"studio_id":  s.studioID,
			"date":       date,
			"start_time": "10:00",
			"end_time":   "13:00",
		}, "")
		assert.Equal(t, true, avail.Data["available"])
	})

	t.Run("wrong phone cannot cancel", func(t *testing.T) {
		w, resp := s.request(t, http.MethodPut, fmt.Sprintf("/api/v1/bookings/%d/cancel", id),
			map[string]any{"phone": "9999999999"}, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "PHONE_MISMATCH", resp.Error.Code)
	})

	t.Run("owner cancels without penalty outside cutoff", func(t *testing.T) {
		w, resp := s.request(t, http.MethodPut, fmt.Sprintf("/api/v1/bookings/%d/cancel", id),
			map[string]any{"phone": "9876543210", "reason": "Plans changed"}, "")
		require.Equal(t, http.StatusOK, w.Code)
		b := resp.Data["booking"].(map[string]interface{})
		assert.Equal(t, "cancelled", b["status"])
		cancellation := b["cancellation"].(map[string]interface{})
		assert.Equal(t, float64(0), cancellation["penalty_amount"])
	})

	t.Run("cancelling twice fails", func(t *testing.T) {
		w, resp := s.request(t, http.MethodPut, fmt.Sprintf("/api/v1/bookings/%d/cancel", id),
			map[string]any{"phone": "9876543210"}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "ALREADY_CANCELLED", resp.Error.Code)
	})
}

func TestAdminEndpoints(t *testing.T) {
	s := setupSuite(t)
	date := futureDate()

	_, created := s.request(t, http.MethodPost, "/api/v1/bookings",
		createPayload(s.studioID, date, "18:00", "20:00", "9876543210"), "")
	id := bookingID(t, created)

	t.Run("no token is rejected", func(t *testing.T) {
		w, _ := s.request(t, http.MethodPut, fmt.Sprintf("/api/v1/admin/bookings/%d/complete", id), nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("non-admin token is rejected", func(t *testing.T) {
		token, err := s.jwtService.GenerateToken("someone", "user")
		require.NoError(t, err)
		w, _ := s.request(t, http.MethodPut, fmt.Sprintf("/api/v1/admin/bookings/%d/complete", id), nil, token)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin marks no-show with fixed penalty", func(t *testing.T) {
		token, err := s.jwtService.GenerateToken("ops", "admin")
		require.NoError(t, err)
		w, resp := s.request(t, http.MethodPut, fmt.Sprintf("/api/v1/admin/bookings/%d/no-show", id), nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		b := resp.Data["booking"].(map[string]interface{})
		assert.Equal(t, "no-show", b["status"])
		cancellation := b["cancellation"].(map[string]interface{})
		assert.Equal(t, float64(300), cancellation["penalty_amount"])
	})

	t.Run("completed transition needs confirmed status", func(t *testing.T) {
		token, err := s.jwtService.GenerateToken("ops", "admin")
		require.NoError(t, err)
		w, resp := s.request(t, http.MethodPut, fmt.Sprintf("/api/v1/admin/bookings/%d/complete", id), nil, token)
		assert.Equal(t, http.StatusConflict, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "INVALID_STATUS", resp.Error.Code)
	})
}

func TestStudioCatalog(t *testing.T) {
	s := setupSuite(t)

	w, resp := s.request(t, http.MethodGet, "/api/v1/studios", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), resp.Data["count"])

	w, resp = s.request(t, http.MethodGet, fmt.Sprintf("/api/v1/studios/%d", s.studioID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	studio := resp.Data["studio"].(map[string]interface{})
	assert.Equal(t, "Studio A - Resonance Sinhgad Road", studio["name"])

	w, _ = s.request(t, http.MethodGet, "/api/v1/studios/999", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTimetable(t *testing.T) {
	s := setupSuite(t)
	date := futureDate()

	_, _ = s.request(t, http.MethodPost, "/api/v1/bookings",
		createPayload(s.studioID, date, "10:00", "12:00", "9876543210"), "")

	w, resp := s.request(t, http.MethodGet,
		fmt.Sprintf("/api/v1/timetable?start_date=%s&end_date=%s", date, date), nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	tt := resp.Data["timetable"].(map[string]interface{})
	entries := tt["bookings"].([]interface{})
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]interface{})
	assert.Equal(t, date, entry["date"])
	assert.Equal(t, "10:00", entry["start_time"])

	slots := tt["time_slots"].([]interface{})
	assert.Equal(t, 14, len(slots))
	assert.Equal(t, "08:00", slots[0])
	assert.Equal(t, "21:00", slots[len(slots)-1])
}

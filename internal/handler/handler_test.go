package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycinema/screening-engine/internal/config"
	"github.com/mycinema/screening-engine/internal/engine"
	"github.com/mycinema/screening-engine/internal/handler"
	"github.com/mycinema/screening-engine/internal/metrics"
	"github.com/mycinema/screening-engine/internal/router"
	"github.com/mycinema/screening-engine/internal/storage"
)

const testSecret = "test-secret"

// newTestServer wires a full Echo instance over the in-memory store.
// Redis is absent, so rate limiting and response caching pass through.
func newTestServer(t *testing.T) (*echo.Echo, *engine.Engine) {
	t.Helper()
	mem := storage.NewMemory()
	eng := engine.New(mem, mem, mem, mem)

	e := echo.New()
	router.Register(e, handler.New(eng), router.Options{
		JWTSecret: testSecret,
		Metrics:   metrics.NewWithRegistry(prometheus.NewRegistry()),
		RateLimit: config.RateLimitConfig{},
		Cache:     config.CacheConfig{},
	})
	return e, eng
}

func token(t *testing.T, userID uint64, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doJSON(e *echo.Echo, method, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestHealth(t *testing.T) {
	e, _ := newTestServer(t)
	rec := doJSON(e, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestAdminSurfaceRequiresAdminRole(t *testing.T) {
	e, _ := newTestServer(t)
	body := `{"name":"Hall A","total_seats":50}`

	rec := doJSON(e, http.MethodPost, "/v1/admin/halls", body, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(e, http.MethodPost, "/v1/admin/halls", body, token(t, 1, "CUSTOMER"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(e, http.MethodPost, "/v1/admin/halls", body, token(t, 1, "ADMIN"))
	assert.Equal(t, http.StatusCreated, rec.Code)
	got := decode(t, rec)
	assert.Equal(t, "Hall A", got["name"])
	assert.EqualValues(t, 50, got["total_seats"])
}

func TestScheduleAndPurchaseFlow(t *testing.T) {
	e, _ := newTestServer(t)
	admin := token(t, 1, "ADMIN")
	customer := token(t, 7, "CUSTOMER")

	day1 := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	day2 := time.Now().AddDate(0, 0, 8).Format("2006-01-02")

	rec := doJSON(e, http.MethodPost, "/v1/admin/halls", `{"name":"Hall A","total_seats":2}`, admin)
	require.Equal(t, http.StatusCreated, rec.Code)
	hallID := decode(t, rec)["id"].(float64)

	rec = doJSON(e, http.MethodPost, "/v1/admin/films",
		`{"title":"Heat","release_date":"1995-12-15","duration_min":170}`, admin)
	require.Equal(t, http.StatusCreated, rec.Code)
	filmID := decode(t, rec)["id"].(float64)

	screeningBody := fmt.Sprintf(
		`{"hall_id":%d,"film_id":%d,"start_time":"20:00","date_start":%q,"date_end":%q,"price_cents":1500}`,
		int(hallID), int(filmID), day1, day2)
	rec = doJSON(e, http.MethodPost, "/v1/admin/screenings", screeningBody, admin)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode(t, rec)
	screeningID := int(created["id"].(float64))
	// finish_time defaulted from the film's duration: 20:00 + 170min.
	assert.Equal(t, "22:50", created["finish_time"])

	// Overlapping slot in the same hall is rejected with the culprit named.
	rec = doJSON(e, http.MethodPost, "/v1/admin/screenings", screeningBody, admin)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.EqualValues(t, screeningID, decode(t, rec)["conflicting_screening"])

	// Public availability.
	rec = doJSON(e, http.MethodGet, fmt.Sprintf("/v1/screenings/%d/availability?date=%s", screeningID, day1), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decode(t, rec)["available_seats"])

	// Purchase needs authentication.
	purchase := fmt.Sprintf(`{"date":%q,"quantity":2}`, day1)
	rec = doJSON(e, http.MethodPost, fmt.Sprintf("/v1/screenings/%d/purchase", screeningID), purchase, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(e, http.MethodPost, fmt.Sprintf("/v1/screenings/%d/purchase", screeningID), purchase, customer)
	require.Equal(t, http.StatusCreated, rec.Code)
	bought := decode(t, rec)
	assert.NotEmpty(t, bought["ref"])
	assert.EqualValues(t, 3000, bought["total_cents"])

	// The occurrence is now sold out; the response names what is left.
	rec = doJSON(e, http.MethodPost, fmt.Sprintf("/v1/screenings/%d/purchase", screeningID),
		fmt.Sprintf(`{"date":%q,"quantity":1}`, day1), customer)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.EqualValues(t, 0, decode(t, rec)["available"])

	// The next day's occurrence is untouched.
	rec = doJSON(e, http.MethodPost, fmt.Sprintf("/v1/screenings/%d/purchase", screeningID),
		fmt.Sprintf(`{"date":%q,"quantity":1}`, day2), customer)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Screening is locked by its sales.
	rec = doJSON(e, http.MethodPatch, fmt.Sprintf("/v1/admin/screenings/%d", screeningID),
		`{"price_cents":2000}`, admin)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Purchase history.
	rec = doJSON(e, http.MethodGet, "/v1/me/purchases", "", customer)
	require.Equal(t, http.StatusOK, rec.Code)
	hist := decode(t, rec)
	assert.EqualValues(t, 4500, hist["total_spent_cents"])
	assert.Len(t, hist["purchases"], 2)

	// The ref handed out at purchase time dereferences the purchase.
	ref := bought["ref"].(string)
	rec = doJSON(e, http.MethodGet, "/v1/me/purchases/"+ref, "", customer)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode(t, rec)
	assert.Equal(t, ref, detail["ref"])
	assert.EqualValues(t, 2, detail["quantity"])
	assert.EqualValues(t, 3000, detail["total_cents"])

	// Another customer cannot see it; the ref reads as unknown.
	rec = doJSON(e, http.MethodGet, "/v1/me/purchases/"+ref, "", token(t, 8, "CUSTOMER"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// A malformed ref never hits the ledger.
	rec = doJSON(e, http.MethodGet, "/v1/me/purchases/receipt-42", "", customer)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidationAndNotFoundMapping(t *testing.T) {
	e, _ := newTestServer(t)
	admin := token(t, 1, "ADMIN")

	rec := doJSON(e, http.MethodPost, "/v1/admin/halls", `{"name":"","total_seats":0}`, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodGet, "/v1/screenings/999", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(e, http.MethodGet, "/v1/screenings/999/availability?date=nope", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodGet, "/v1/screenings/abc", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListScreeningsFilters(t *testing.T) {
	e, _ := newTestServer(t)
	admin := token(t, 1, "ADMIN")

	day := time.Now().AddDate(0, 0, 7).Format("2006-01-02")

	rec := doJSON(e, http.MethodPost, "/v1/admin/halls", `{"name":"Hall A","total_seats":50}`, admin)
	require.Equal(t, http.StatusCreated, rec.Code)
	hallID := int(decode(t, rec)["id"].(float64))
	rec = doJSON(e, http.MethodPost, "/v1/admin/films",
		`{"title":"Heat","release_date":"1995-12-15","duration_min":120}`, admin)
	require.Equal(t, http.StatusCreated, rec.Code)
	filmID := int(decode(t, rec)["id"].(float64))

	for _, start := range []string{"10:00", "14:00"} {
		body := fmt.Sprintf(
			`{"hall_id":%d,"film_id":%d,"start_time":%q,"date_start":%q,"date_end":%q,"price_cents":1000}`,
			hallID, filmID, start, day, day)
		rec = doJSON(e, http.MethodPost, "/v1/admin/screenings", body, admin)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec = doJSON(e, http.MethodGet, fmt.Sprintf("/v1/screenings?hall_id=%d&date=%s&sort=start_time&dir=desc", hallID, day), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "14:00", list[0]["start_time"])

	rec = doJSON(e, http.MethodGet, "/v1/screenings?sort=director", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

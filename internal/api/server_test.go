package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"photostudio-bot/internal/booking"
	"photostudio-bot/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type fakeSchedule struct {
	day   time.Time
	slots []booking.HourSlot
	err   error
}

func (f *fakeSchedule) Availability(_ context.Context, day time.Time) ([]booking.HourSlot, error) {
	f.day = day
	return f.slots, f.err
}

func (f *fakeSchedule) Location() *time.Location { return time.UTC }

type fakeLister struct{ bookings []models.Booking }

func (f fakeLister) ListBetween(_ context.Context, from, to time.Time) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if !b.StartTS.Before(from) && b.StartTS.Before(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func newTestServer(t *testing.T, db Pinger, schedule ScheduleSource, token string) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "photostudio_test_total", Help: "test"}))
	lister := fakeLister{bookings: []models.Booking{
		{ID: 1, Username: "anna", StartTS: time.Date(2025, time.March, 8, 10, 0, 0, 0, time.UTC), Status: models.BookingStatusActive, Category: "Портрет"},
		{ID: 2, Username: "ivan", StartTS: time.Date(2025, time.March, 9, 12, 0, 0, 0, time.UTC), Status: models.BookingStatusActive},
	}}
	s := NewServer(zaptest.NewLogger(t), ":0", db, schedule, lister, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), token)
	return s.Router()
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t, fakePinger{}, &fakeSchedule{}, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	h = newTestServer(t, fakePinger{err: errors.New("connection refused")}, &fakeSchedule{}, "")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, fakePinger{}, &fakeSchedule{}, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "photostudio_test_total")
}

func TestScheduleReturnsHoursAndBookings(t *testing.T) {
	schedule := &fakeSchedule{slots: []booking.HourSlot{{Hour: 10, Taken: true}, {Hour: 11, Taken: true}, {Hour: 12}}}
	h := newTestServer(t, fakePinger{}, schedule, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/schedule?date=2025-03-08", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp scheduleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2025-03-08", resp.Date)
	assert.Equal(t, "UTC", resp.Timezone)
	assert.Equal(t, schedule.slots, resp.Hours)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, int64(1), resp.Bookings[0].ID)
	assert.Equal(t, "2025-03-08T10:00:00Z", resp.Bookings[0].Start)
	assert.Equal(t, time.Date(2025, time.March, 8, 0, 0, 0, 0, time.UTC), schedule.day)
}

func TestScheduleValidatesDate(t *testing.T) {
	h := newTestServer(t, fakePinger{}, &fakeSchedule{}, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/schedule?date=08.03.2025", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScheduleStorageFailure(t *testing.T) {
	h := newTestServer(t, fakePinger{}, &fakeSchedule{err: booking.ErrStorageUnavailable}, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/schedule?date=2025-03-08", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestScheduleRequiresAdminToken(t *testing.T) {
	h := newTestServer(t, fakePinger{}, &fakeSchedule{}, "s3cret")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/schedule?date=2025-03-08", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/schedule?date=2025-03-08", nil)
	req.Header.Set("X-Admin-Token", "s3cret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/schedule?date=2025-03-08", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "health stays public")
}

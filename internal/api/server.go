package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"photostudio-bot/internal/booking"
	"photostudio-bot/internal/models"
	"photostudio-bot/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Pinger - проверка доступности базы
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ScheduleSource - сетка часов дня из менеджера записи
type ScheduleSource interface {
	Availability(ctx context.Context, day time.Time) ([]booking.HourSlot, error)
	Location() *time.Location
}

// BookingLister - записи дня для расписания сотрудников
type BookingLister interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Booking, error)
}

// Server - служебный HTTP-сервер: проверка здоровья, метрики и расписание дня
type Server struct {
	logger     *zap.Logger
	db         Pinger
	schedule   ScheduleSource
	bookings   BookingLister
	metrics    http.Handler
	adminToken string
	httpServer *http.Server
}

// NewServer создает служебный сервер; metrics может быть nil
func NewServer(
	logger *zap.Logger,
	addr string,
	db Pinger,
	schedule ScheduleSource,
	bookings BookingLister,
	metrics http.Handler,
	adminToken string,
) *Server {
	s := &Server{
		logger:     logger,
		db:         db,
		schedule:   schedule,
		bookings:   bookings,
		metrics:    metrics,
		adminToken: adminToken,
	}

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Router собирает маршруты сервера
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(s.adminOnly)
		r.Get("/schedule", s.handleSchedule)
	})
	return r
}

// Start запускает HTTP-сервер в отдельной горутине
func (s *Server) Start() {
	go func() {
		s.logger.Info("Запуск HTTP-сервера", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Ошибка запуска HTTP-сервера", zap.Error(err))
		}
	}()
}

// Shutdown останавливает сервер, дожидаясь текущих запросов
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("HTTP-запрос",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// adminOnly пропускает запросы с токеном в X-Admin-Token или Authorization: Bearer.
// Пустой токен в конфигурации отключает проверку.
func (s *Server) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.adminToken == "" {
			next.ServeHTTP(w, r)
			return
		}
		token := r.Header.Get("X-Admin-Token")
		if token == "" {
			token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn("база недоступна", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type scheduleBooking struct {
	ID       int64                `json:"id"`
	Start    string               `json:"start"`
	Username string               `json:"username"`
	Category string               `json:"category"`
	Status   models.BookingStatus `json:"status"`
	Location *models.Location     `json:"location,omitempty"`
}

type scheduleResponse struct {
	Date     string             `json:"date"`
	Timezone string             `json:"timezone"`
	Hours    []booking.HourSlot `json:"hours"`
	Bookings []scheduleBooking  `json:"bookings"`
}

// handleSchedule - сетка часов и записи на дату ?date=YYYY-MM-DD
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	loc := s.schedule.Location()

	raw := r.URL.Query().Get("date")
	day, err := time.ParseInLocation(utils.DateLayout, raw, loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	hours, err := s.schedule.Availability(r.Context(), day)
	if err != nil {
		s.logger.Error("ошибка при расчёте расписания", zap.Error(err), zap.String("date", raw))
		writeError(w, http.StatusInternalServerError, "schedule unavailable")
		return
	}

	list, err := s.bookings.ListBetween(r.Context(), day, day.AddDate(0, 0, 1))
	if err != nil {
		s.logger.Error("ошибка при получении записей дня", zap.Error(err), zap.String("date", raw))
		writeError(w, http.StatusInternalServerError, "schedule unavailable")
		return
	}

	resp := scheduleResponse{
		Date:     raw,
		Timezone: loc.String(),
		Hours:    hours,
		Bookings: make([]scheduleBooking, 0, len(list)),
	}
	for _, b := range list {
		resp.Bookings = append(resp.Bookings, scheduleBooking{
			ID:       b.ID,
			Start:    b.StartTS.In(loc).Format(time.RFC3339),
			Username: b.Username,
			Category: b.Category,
			Status:   b.Status,
			Location: b.Location,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName - имя сервиса в ответах grpc.health.v1
const ServiceName = "photostudio.Bot"

// Pinger - проверка доступности базы
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthServer отдаёт статус бота по протоколу grpc.health.v1.
// SERVING, пока база отвечает на ping, иначе NOT_SERVING.
type HealthServer struct {
	logger   *zap.Logger
	db       Pinger
	interval time.Duration
	health   *health.Server
	server   *grpc.Server
}

// NewHealthServer создает gRPC-сервер проверки здоровья
func NewHealthServer(logger *zap.Logger, db Pinger, interval time.Duration) *HealthServer {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	hs := health.NewServer()
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	// До первой проверки базы статус неизвестен
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &HealthServer{
		logger:   logger,
		db:       db,
		interval: interval,
		health:   hs,
		server:   srv,
	}
}

// Serve слушает addr и периодически проверяет базу до отмены ctx
func (s *HealthServer) Serve(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("ошибка запуска gRPC health сервера: %w", err)
	}
	return s.ServeListener(ctx, lis)
}

// ServeListener - то же, что Serve, на готовом listener
func (s *HealthServer) ServeListener(ctx context.Context, lis net.Listener) error {
	go s.watch(ctx)
	go func() {
		<-ctx.Done()
		s.health.Shutdown()
		s.server.GracefulStop()
	}()

	s.logger.Info("Запуск gRPC health сервера", zap.String("addr", lis.Addr().String()))
	if err := s.server.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}

func (s *HealthServer) watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

// check пингует базу и выставляет статус
func (s *HealthServer) check(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.db.PingContext(pingCtx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn("база не отвечает, gRPC health NOT_SERVING", zap.Error(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

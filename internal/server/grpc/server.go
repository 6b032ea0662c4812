// Package grpc runs the operational gRPC listener. It only serves the
// standard health service, reporting whether the database answers.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/todolist/internal/logging"
	"github.com/thejerf/abtime"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is reported next to the overall "" status.
const ServiceName = "todolist"

// HealthTickID identifies the database ping ticker on a manual clock.
const HealthTickID = 2

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthServer struct {
	address  string
	db       Pinger
	clock    abtime.AbstractTime
	interval time.Duration
	health   *health.Server
	logger   logging.Logger
}

// NewHealthServer returns a listener for address. A nil db always reports
// SERVING, which is the in-memory mode.
func NewHealthServer(address string, db Pinger, clock abtime.AbstractTime, interval time.Duration, l logging.Logger) *HealthServer {
	if clock == nil {
		clock = abtime.NewRealTime()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &HealthServer{
		address:  address,
		db:       db,
		clock:    clock,
		interval: interval,
		health:   health.NewServer(),
		logger:   l.With("module", "grpc_server"),
	}
}

func (s *HealthServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled.
func (s *HealthServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.check(ctx)
	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}

func (s *HealthServer) watch(ctx context.Context) {
	if s.db == nil {
		return
	}
	tick := s.clock.Tick(s.interval, HealthTickID)
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			s.check(ctx)
		}
	}
}

// check pings the database once and publishes the result.
func (s *HealthServer) check(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := s.db.PingContext(pingCtx)
		cancel()
		if err != nil {
			s.logger.Warn(ctx, "database ping failed", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

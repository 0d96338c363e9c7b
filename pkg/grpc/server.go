// Package grpc serves the standard grpc.health.v1.Health service next to the
// HTTP API so orchestrators can probe SupplyDesk over gRPC. Readiness follows
// a caller-supplied check (normally a database ping) that is re-run on a
// fixed interval.
//
//	srv := grpc.New(app.Ping)
//	go srv.Serve(ctx, ln)
package grpc

import (
	"context"
	"errors"
	"net"
	"runtime/debug"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shashiranjanraj/supplydesk/pkg/logger"
	"github.com/shashiranjanraj/supplydesk/pkg/metrics"
)

// Service is the name probes use for the request desk itself. The empty
// name reports the same status for the whole server.
const Service = "supplydesk.Requests"

const defaultInterval = 10 * time.Second

var (
	handledTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "supplydesk",
		Subsystem: "grpc",
		Name:      "handled_total",
		Help:      "gRPC calls completed by method and code.",
	}, []string{"method", "code"})

	handlingSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "supplydesk",
		Subsystem: "grpc",
		Name:      "handling_seconds",
		Help:      "gRPC response latency in seconds.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"method"})
)

func init() {
	metrics.MustRegister(handledTotal, handlingSeconds)
}

// Checker reports whether the service can take traffic.
type Checker func(ctx context.Context) error

// Server wraps a grpc.Server that only exposes health and reflection.
type Server struct {
	srv      *grpc.Server
	health   *health.Server
	check    Checker
	interval time.Duration
}

// New builds a server whose readiness follows check. A nil check always
// reports SERVING.
func New(check Checker) *Server {
	if check == nil {
		check = func(context.Context) error { return nil }
	}

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(recoveryInterceptor, loggingInterceptor, metricsInterceptor),
		grpc.MaxRecvMsgSize(1<<20),
	)
	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	return &Server{srv: srv, health: hs, check: check, interval: defaultInterval}
}

// Refresh runs the check once and publishes the result.
func (s *Server) Refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	st := grpc_health_v1.HealthCheckResponse_SERVING
	if err := s.check(ctx); err != nil {
		st = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		logger.Warn("grpc: readiness check failed", "error", err)
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(Service, st)
}

// Serve accepts connections on ln until ctx is cancelled, then drains
// in-flight calls. It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.Refresh(ctx)

	done := make(chan struct{})
	go func() {
		t := time.NewTicker(s.interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				s.health.Shutdown()
				s.srv.GracefulStop()
				close(done)
				return
			case <-t.C:
				s.Refresh(ctx)
			}
		}
	}()

	logger.Info("gRPC health server listening", "addr", ln.Addr().String())
	err := s.srv.Serve(ln)
	if ctx.Err() != nil {
		<-done
		logger.Info("gRPC health server stopped")
		return nil
	}
	if errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return err
}

func recoveryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("grpc: panic recovered",
				"method", info.FullMethod,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			err = status.Error(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}

func loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	logger.Debug("grpc: request",
		"method", info.FullMethod,
		"duration_ms", time.Since(start).Milliseconds(),
		"code", status.Code(err).String(),
	)
	return resp, err
}

func metricsInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	handledTotal.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
	handlingSeconds.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
	return resp, err
}

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/opdqueue/api"
	"github.com/Domenick1991/opdqueue/config"
	queueapi "github.com/Domenick1991/opdqueue/internal/api/queue_service_api"
	"github.com/Domenick1991/opdqueue/internal/auth"
	"github.com/Domenick1991/opdqueue/internal/metrics"
	"github.com/Domenick1991/opdqueue/internal/service/booking"
	"github.com/Domenick1991/opdqueue/internal/service/calendar"
	"github.com/Domenick1991/opdqueue/internal/service/directory"
	"github.com/Domenick1991/opdqueue/internal/service/queue"
	"github.com/gin-gonic/gin"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const swaggerSpecURL = "/swagger/opdqueue.swagger.json"

// Services bundles the use cases every transport serves.
type Services struct {
	Directory directory.DirectoryUseCase
	Bookings  booking.BookingUseCase
	Queue     queue.QueueUseCase
	Calendar  calendar.CalendarUseCase
}

type Servers struct {
	grpcServer  *grpc.Server
	health      *health.Server
	httpServer  *http.Server
	gatewayConn *grpc.ClientConn
}

// Run starts the gRPC server and the HTTP server (REST, gateway, metrics,
// swagger) and blocks until ctx is canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, log zerolog.Logger, svc Services, m *metrics.Metrics, authenticator *auth.Authenticator) error {
	s, err := newServers(cfg, log, svc, m, authenticator)
	if err != nil {
		return err
	}
	defer s.gatewayConn.Close()

	errCh := make(chan error, 2)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	go func() { errCh <- s.grpcServer.Serve(lis) }()
	log.Info().Str("address", cfg.GRPC.Address).Msg("grpc server listening")

	go func() {
		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Info().Str("address", cfg.HTTP.Address).Msg("http server listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down servers")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServers(cfg *config.Config, log zerolog.Logger, svc Services, m *metrics.Metrics, authenticator *auth.Authenticator) (*Servers, error) {
	grpcSrv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		queueapi.LoggingInterceptor(log),
		queueapi.AuthInterceptor(authenticator, svc.Directory),
	))
	queueapi.RegisterQueueServiceServer(grpcSrv, queueapi.NewServer(svc.Directory, svc.Bookings, svc.Queue, svc.Calendar))

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	healthSrv.SetServingStatus(queueapi.ServiceName, healthpb.HealthCheckResponse_SERVING)

	conn, err := grpc.NewClient(cfg.GRPC.Address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial gRPC for gateway: %w", err)
	}
	gateway := runtime.NewServeMux()
	if err := queueapi.RegisterGatewayRoutes(gateway, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &Servers{
		grpcServer:  grpcSrv,
		health:      healthSrv,
		gatewayConn: conn,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           NewHTTPHandler(cfg.HTTP, log, svc, m, authenticator, gateway),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// NewHTTPHandler mounts the REST API under /api, the gateway under /v1, and
// the operational endpoints next to them.
func NewHTTPHandler(cfg config.HTTPConfig, log zerolog.Logger, svc Services, m *metrics.Metrics, authenticator *auth.Authenticator, gateway http.Handler) http.Handler {
	handler := http.NewServeMux()
	handler.Handle("/api/", NewRouter(log, svc, m, authenticator))
	handler.Handle("/v1/", gateway)
	handler.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry}))

	if cfg.SwaggerDir != "" {
		fs := http.FileServer(http.Dir(cfg.SwaggerDir))
		handler.Handle("/swagger/", http.StripPrefix("/swagger/", fs))
		handler.Handle("/docs/", httpSwagger.Handler(httpSwagger.URL(swaggerSpecURL)))
	}
	return handler
}

func NewRouter(log zerolog.Logger, svc Services, m *metrics.Metrics, authenticator *auth.Authenticator) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(log), m.GinMiddleware())

	root := router.Group("/api")
	bookings := api.NewBookingHandler(svc.Bookings)
	api.NewDoctorHandler(svc.Directory).Register(root.Group("/doctors"))
	bookings.Register(root.Group("/bookings"))

	doctor := root.Group("/doctor", api.DoctorAuth(authenticator, svc.Directory))
	bookings.RegisterDoctor(doctor)
	api.NewQueueHandler(svc.Queue).Register(doctor)
	api.NewCalendarHandler(svc.Calendar).Register(doctor)

	return router
}

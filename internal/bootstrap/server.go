package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/skyconnect/api"
	"github.com/Domenick1991/skyconnect/config"
	"github.com/Domenick1991/skyconnect/internal/service/booking"
	"github.com/Domenick1991/skyconnect/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	httpSwagger "github.com/swaggo/http-swagger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const swaggerDoc = "skyconnect.swagger.json"

type Servers struct {
	grpcServer *grpc.Server
	health     *health.Server
	conn       *grpc.ClientConn
	httpServer *http.Server
}

// Run starts the gRPC health server and the HTTP API, and blocks until ctx
// is canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase) error {
	s, err := newServers(cfg, flightSvc, bookingSvc)
	if err != nil {
		return err
	}
	defer s.conn.Close()

	errCh := make(chan error, 2)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	go func() { errCh <- s.grpcServer.Serve(lis) }()

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Printf("http listening on %s, grpc on %s", cfg.HTTP.Address, cfg.GRPC.Address)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.health.Shutdown()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		s.grpcServer.GracefulStop()
		return nil
	}
}

func newServers(cfg *config.Config, flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase) (*Servers, error) {
	grpcSrv := grpc.NewServer()
	healthSrv := NewHealthServer(grpcSrv)

	conn, err := grpc.NewClient(cfg.GRPC.Address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial gRPC %s: %w", cfg.GRPC.Address, err)
	}

	router := NewRouter(cfg.HTTP, NewGateway(conn), flightSvc, bookingSvc)

	return &Servers{
		grpcServer: grpcSrv,
		health:     healthSrv,
		conn:       conn,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// NewHealthServer registers the standard gRPC health service on srv and
// marks the whole server as serving.
func NewHealthServer(srv *grpc.Server) *health.Server {
	healthSrv := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, healthSrv)
	healthSrv.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	return healthSrv
}

// NewGateway answers GET /healthz by asking the gRPC health service over conn.
func NewGateway(conn *grpc.ClientConn) *runtime.ServeMux {
	return runtime.NewServeMux(
		runtime.WithHealthzEndpoint(grpc_health_v1.NewHealthClient(conn)),
	)
}

func NewRouter(cfg config.HTTPConfig, gateway http.Handler, flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	v1 := router.Group("/api/v1")
	api.NewSessionHandler(bookingSvc).Register(v1.Group("/sessions"))
	api.NewBookingHandler(bookingSvc).Register(v1.Group("/bookings"))
	api.NewFlightHandler(flightSvc).Register(v1.Group("/flights"))

	router.GET("/healthz", gin.WrapH(gateway))

	if cfg.SwaggerDir != "" {
		router.Static("/swagger", cfg.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.URL("/swagger/"+swaggerDoc),
		)))
	}

	return router
}

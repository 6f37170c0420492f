package echoapi

import (
	"context"
	"net/http"
	"os"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/belleza/salon/core"
	"github.com/belleza/salon/core/analytics"
	"github.com/belleza/salon/core/appointment"
	"github.com/belleza/salon/core/cart"
	"github.com/belleza/salon/core/customer"
	"github.com/belleza/salon/core/product"
	"github.com/belleza/salon/core/risk"
	"github.com/belleza/salon/core/staff"
	"github.com/belleza/salon/core/user"
	"github.com/belleza/salon/services/filestore"
)

type (
	Deps struct {
		Conf           *core.Config
		Logger         core.Logger
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool

		UserSvc        *user.Service
		CustomerSvc    *customer.Service
		StaffSvc       *staff.Service
		ProductSvc     *product.Service
		AppointmentSvc *appointment.Service
		CartSvc        *cart.Service
		RiskSvc        *risk.Service
		AnalyticsSvc   *analytics.Service
		FileStore      filestore.Store
	}

	Server struct {
		app      *echo.Echo
		addr     string
		deps     *Deps
		metrics  *metrics
		shutdown chan os.Signal
		errors   chan error
	}
)

func NewServer(addr string, shutdown chan os.Signal, deps *Deps) *Server {
	s := &Server{
		app:      echo.New(),
		addr:     addr,
		deps:     deps,
		metrics:  newMetrics(),
		shutdown: shutdown,
		errors:   make(chan error, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(s.metrics.middleware())

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home(conf))
	s.app.GET("/metrics", s.metrics.handler())
	if local, ok := s.deps.FileStore.(*filestore.LocalStore); ok {
		s.app.Static(conf.Upload.BaseURL, local.Dir())
	}

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(newJWTConfig(conf))
	limiter := newIPRateLimiter(conf.Server.RateLimit, conf.Server.RateBurst)

	registerUserAPI(v1, jwt, limiter, s.deps)
	registerCustomerAPI(v1, jwt, s.deps)
	registerStaffAPI(v1, jwt, s.deps)
	registerProductAPI(v1, jwt, s.deps)
	registerAppointmentAPI(v1, jwt, s.deps)
	registerCartAPI(v1, jwt, s.deps)
	registerRiskAPI(v1, jwt, s.metrics, s.deps)
	registerAnalyticsAPI(v1, jwt, s.deps)
	registerUploadAPI(v1, jwt, s.deps)
}

// Start blocks until the server stops. Errors other than a graceful close are sent to Errors().
func (s *Server) Start() {
	if err := s.app.Start(s.addr); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) signalShutdown() {
	if s.shutdown == nil {
		return
	}
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func home(conf *core.Config) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		return ctx.String(http.StatusOK, "Welcome to "+conf.AppName+" API!")
	}
}

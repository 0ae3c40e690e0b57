package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs-labo46/inventory-tracker/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const shutdownTimeout = 10 * time.Second

type Config struct {
	Addr        string
	ServiceName string
	LogLevel    log.Lvl
}

type Server struct {
	echo *echo.Echo
	http *http.Server
}

func New(cfg Config, auth middleware.SessionAuthenticator, renderer echo.Renderer, routes ...RouteRegistrar) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(cfg.LogLevel)
	e.Renderer = renderer

	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error != nil {
				c.Logger().Errorf("%s %s %d %s: %v", v.Method, v.URI, v.Status, v.Latency, v.Error)
				return nil
			}
			c.Logger().Infof("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	e.Use(middleware.SessionAuth(auth))

	RegisterRoutes(e, routes...)

	return &Server{
		echo: e,
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           otelhttp.NewHandler(e, cfg.ServiceName),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ctxが終わるまで待ち受け、終わったらgraceful shutdown
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		//SSEの接続はアイドルにならないので、待ちきれなければ切る
		if errors.Is(err, context.DeadlineExceeded) {
			return s.http.Close()
		}
		return err
	}
	return nil
}

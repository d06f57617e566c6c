package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type Deps struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Ping    func(context.Context) error
	// 空ならCORSヘッダは付けない
	AllowOrigins []string
	Guards       handler.Guards
	Handlers     Handlers
}

// New はミドルウェアとルートを載せたechoを返す。
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	// RequestID -> metrics -> ログ -> Recover の順
	e.Use(echomw.RequestID())
	e.Use(d.Metrics.Middleware())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomw.Recover())
	if len(d.AllowOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: d.AllowOrigins,
			AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		}))
	}

	e.GET("/healthz", healthz(d.Ping))
	e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))

	RegisterRoutes(e, d.Handlers, d.Guards)
	return e
}

// Run はctxがキャンセルされるまでサーバーを動かし、その後graceful shutdownする。
func Run(ctx context.Context, e *echo.Echo, addr string, log *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

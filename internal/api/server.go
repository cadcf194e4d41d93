package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/prosperfactory/paygate/internal/catalog"
	"github.com/prosperfactory/paygate/internal/gateway"
	"github.com/prosperfactory/paygate/internal/verify"
)

// Server represents the download gateway HTTP server
type Server struct {
	echo *echo.Echo
	port int
}

// NewServer creates a new download gateway server
func NewServer(port int, gw *gateway.Gateway, verifier *verify.Verifier, registry catalog.Registry) *Server {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Recover())

	server := &Server{
		echo: e,
		port: port,
	}

	server.setupRoutes(gw, verifier, registry)

	return server
}

// setupRoutes configures all endpoints
func (s *Server) setupRoutes(gw *gateway.Gateway, verifier *verify.Verifier, registry catalog.Registry) {
	// Health check endpoint
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "healthy",
		})
	})

	download := &DownloadHandler{gateway: gw}
	s.echo.Any("/download", download.Redirect)

	thankYou := NewThankYouHandler(verifier, registry)
	s.echo.Any("/thankyou/de", thankYou.Page)
}

// Start begins the server and blocks until an interrupt, then shuts
// down gracefully.
func (s *Server) Start() error {
	go func() {
		if err := s.echo.Start(fmt.Sprintf(":%d", s.port)); err != nil && err != http.ErrServerClosed {
			s.echo.Logger.Fatal("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying HTTP handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// setProtectedHeaders marks a response as uncacheable and unindexable.
// Every gated response carries these: the transaction is one-time.
func setProtectedHeaders(c echo.Context) {
	h := c.Response().Header()
	h.Set("Cache-Control", "no-store")
	h.Set("X-Robots-Tag", "noindex, nofollow, noarchive")
}

// requireGetOrHead rejects every method except GET and HEAD. Returns
// false when the response has already been written.
func requireGetOrHead(c echo.Context) (bool, error) {
	method := c.Request().Method
	if method == http.MethodGet || method == http.MethodHead {
		return true, nil
	}
	c.Response().Header().Set("Allow", "GET, HEAD")
	return false, c.String(http.StatusMethodNotAllowed, "Method Not Allowed")
}

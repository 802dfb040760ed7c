// Package httpapi serves the public verification endpoints over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/docverify/internal/common"
	"github.com/dmitrijs2005/docverify/internal/logging"
	"github.com/dmitrijs2005/docverify/internal/server/models"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

type lookupService interface {
	Lookup(ctx context.Context, code string) (*models.LookupResult, error)
}

type qrRenderer interface {
	RenderQRSVG(code string) string
}

type HTTPServer struct {
	address string
	lookup  lookupService
	qr      qrRenderer
	logger  logging.Logger
	router  *gin.Engine
}

func NewHTTPServer(a string, l logging.Logger, lookup lookupService, qr qrRenderer) *HTTPServer {
	s := &HTTPServer{
		address: a,
		lookup:  lookup,
		qr:      qr,
		logger:  l.With("module", "http_server"),
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.logRequest())

	router.GET("/health", s.handleHealth)

	verify := router.Group(common.VerificationPathPrefix)
	{
		verify.GET("/:code", s.handleLookup)
		verify.GET("/:code/qr.svg", s.handleQR)
	}

	s.router = router
	return s
}

// Handler exposes the router, mostly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

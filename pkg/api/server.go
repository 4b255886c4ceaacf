// Package api exposes the driver operations over HTTP with gin.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ridetracker/pkg/logger"
	"ridetracker/pkg/secure"
	"ridetracker/service"
)

type Server struct {
	svc    service.IServiceManager
	signer *secure.Signer
	log    logger.ILogger
	loc    *time.Location
	now    func() time.Time
	engine *gin.Engine
}

func New(svc service.IServiceManager, signer *secure.Signer, log logger.ILogger, loc *time.Location) *Server {
	if loc == nil {
		loc = time.Local
	}
	s := &Server{
		svc:    svc,
		signer: signer,
		log:    log,
		loc:    loc,
		now:    time.Now,
	}
	s.engine = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on port until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP API listening", logger.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// The OAuth provider redirects here without our bearer token; the
	// signed state identifies the driver.
	r.GET("/api/platforms/uber/callback", s.uberCallback)

	api := r.Group("/api", s.auth())
	{
		api.GET("/summary", s.getSummary)

		api.GET("/rides", s.listRides)
		api.POST("/rides", s.addRide)

		api.GET("/expenses", s.listExpenses)
		api.GET("/expenses/:date", s.getExpense)
		api.PUT("/expenses/:date", s.putExpense)

		api.GET("/online", s.getOnline)
		api.POST("/online/toggle", s.toggleOnline)
		api.POST("/online/:id/end", s.endSession)

		api.GET("/ranking", s.getRanking)

		api.GET("/platforms", s.platformStatus)
		api.POST("/platforms/:platform/connect", s.connectPlatform)
		api.POST("/platforms/:platform/sync", s.syncPlatform)
		api.POST("/platforms/sync", s.syncAll)
		api.DELETE("/platforms/:platform", s.disconnectPlatform)

		api.GET("/export/rides.csv", s.exportRidesCSV)
		api.GET("/export/summary.csv", s.exportSummaryCSV)
		api.GET("/export/report.csv", s.exportReportCSV)
		api.GET("/export/report.xlsx", s.exportReportXLSX)
	}

	return r
}

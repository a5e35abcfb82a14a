// Package server exposes the shipment service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tournevent/ratebridge/internal/telemetry"
	"github.com/tournevent/ratebridge/pkg/shipment"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const requestIDHeader = "X-Request-Id"

// ShipmentService is the service the HTTP layer calls into.
type ShipmentService interface {
	FetchRates(ctx context.Context, payload *shipment.FetchRatesPayload) (*shipment.Shipment, error)
	FindShipment(ctx context.Context, id string) (*shipment.Shipment, error)
}

// Config holds server configuration.
type Config struct {
	Port int
}

// Server is the HTTP server for the rate bridge.
type Server struct {
	port     int
	service  ShipmentService
	logger   *otelzap.Logger
	metrics  *telemetry.Metrics
	validate *validatorv10.Validate
	engine   *gin.Engine
}

// New creates a new server instance. Metrics are exposed from gatherer;
// a nil gatherer serves the default registry.
func New(cfg Config, svc ShipmentService, logger *otelzap.Logger, metrics *telemetry.Metrics, gatherer prometheus.Gatherer) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		port:     cfg.Port,
		service:  svc,
		logger:   logger,
		metrics:  metrics,
		validate: newValidator(),
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestID(), s.observe())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	r.POST("/rates", s.handleFetchRates)
	r.GET("/shipments/:id", s.handleFindShipment)

	s.engine = r
	return s
}

// Engine returns the gin engine serving all routes.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) handleFetchRates(c *gin.Context) {
	var req fetchRatesRequest
	if err := bindAndValidate(c, &req, s.validate); err != nil {
		return
	}

	result, err := s.service.FetchRates(c.Request.Context(), req.toPayload())
	if err != nil {
		s.serviceError(c, err)
		return
	}
	// A nil result encodes as JSON null.
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleFindShipment(c *gin.Context) {
	id := c.Param("id")
	if strings.TrimSpace(id) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid_shipment_id",
			"msg":   fmt.Sprintf("Invalid shipment id: %s provided", id),
		})
		return
	}

	found, err := s.service.FindShipment(c.Request.Context(), id)
	if err != nil {
		s.serviceError(c, err)
		return
	}
	if found == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "not_found",
			"msg":   fmt.Sprintf("Shipment with id: %s - not found.", id),
		})
		return
	}
	c.JSON(http.StatusOK, found)
}

func (s *Server) serviceError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": strings.ToLower(string(shipment.KindOf(err))),
		"msg":   err.Error(),
	})
}

// requestID propagates X-Request-Id, generating one when the caller sent none.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// observe logs and counts every request.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		if s.metrics != nil {
			s.metrics.RecordHTTP(c.Request.Method, route, strconv.Itoa(status))
		}
		s.logger.Ctx(c.Request.Context()).Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", c.GetString("request_id")),
		)
	}
}

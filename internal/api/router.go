// Package api is the dev attendance API: the backend the client talks to when
// no school deployment is available.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dailyattendance/internal/attendance"
	"dailyattendance/internal/auth"
	"dailyattendance/internal/httpmiddleware"
	"dailyattendance/internal/logger"
	"dailyattendance/internal/metrics"
	"dailyattendance/internal/records"
)

// SubmittedMessage is the body message of an accepted submission.
const SubmittedMessage = "Attendance submitted."

// HealthChecker is an optional dependency reported by /health.
type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

// Deps are the router's collaborators. Redis and Limiter may be nil.
type Deps struct {
	Records *records.Service
	Redis   HealthChecker
	Limiter httpmiddleware.Limiter
	Metrics *metrics.Metrics
	Log     logger.Logger
}

type handler struct {
	records *records.Service
	redis   HealthChecker
	metrics *metrics.Metrics
	log     logger.Logger
}

// NewRouter wires middleware and routes.
func NewRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = logger.Discard()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	h := &handler{records: d.Records, redis: d.Redis, metrics: d.Metrics, log: d.Log.WithComponent("api")}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestID())
	r.Use(httpmiddleware.RequestLogger(h.log, "/health", "/metrics"))
	r.Use(d.Metrics.Middleware())
	r.Use(httpmiddleware.CORS())
	r.Use(httpmiddleware.SecurityHeaders())
	if d.Limiter != nil {
		r.Use(httpmiddleware.RateLimit(d.Limiter))
	}

	r.GET("/metrics", d.Metrics.Handler())
	r.GET("/health", h.health)

	g := r.Group("/attendance", auth.Bearer())
	g.GET("", h.list)
	g.POST("", h.submit)
	return r
}

func (h *handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbHealthy := h.records.Healthy(ctx)
	redisHealthy := h.redis != nil && h.redis.Healthy(ctx)
	if !dbHealthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "db": false, "redis": redisHealthy})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "db": true, "redis": redisHealthy})
}

func (h *handler) list(c *gin.Context) {
	entries, err := h.records.List(c.Request.Context(), auth.Username(c))
	if err != nil {
		h.log.Errorf("list attendance: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not load attendance"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *handler) submit(c *gin.Context) {
	var sub attendance.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Request body must be {\"date\": \"YYYY-MM-DD\", \"status\": \"...\"}"})
		return
	}

	user := auth.Username(c)
	entry, err := h.records.Submit(c.Request.Context(), user, sub)
	var ve *records.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"detail": ve.Detail})
		return
	case err != nil:
		h.log.Errorf("submit attendance for %s: %v", user, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not save attendance"})
		return
	}

	h.metrics.Submissions.WithLabelValues(string(entry.Status)).Inc()
	h.log.WithFields(map[string]interface{}{"user": user, "date": entry.Date, "status": entry.Status}).Infof("attendance recorded")
	c.JSON(http.StatusOK, gin.H{"message": SubmittedMessage})
}

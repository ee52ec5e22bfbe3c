package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agrotrack/feedengine/internal/domain/models"
	"github.com/agrotrack/feedengine/internal/service/consumption"
)

// actorHeader carries the identity resolved by the gateway in front of this
// service. Execution is refused without it.
const actorHeader = "X-Actor-Id"

// Executor defines the consumption service operations used over HTTP.
type Executor interface {
	ExecuteManual(ctx context.Context, actor string, day time.Time) (models.ExecutionReport, error)
	ExecuteAuto(ctx context.Context, actor string) (models.ExecutionReport, error)
	MonthlyPlan(ctx context.Context, month time.Time) (models.ConsumptionPlan, error)
}

// Reporter defines the reporting operations used over HTTP.
type Reporter interface {
	Summary(ctx context.Context, start, end time.Time) (models.ConsumptionSummary, error)
}

// ConsumptionHandler handles feed consumption execution and reporting endpoints.
type ConsumptionHandler struct {
	svc       Executor
	reporting Reporter
	logger    *zap.Logger
}

// NewConsumptionHandler constructs the HTTP handler adapter.
func NewConsumptionHandler(svc Executor, reporting Reporter, logger *zap.Logger) *ConsumptionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsumptionHandler{svc: svc, reporting: reporting, logger: logger}
}

// Execute triggers feed consumption execution: one explicit day (default
// today) or, with auto set, every outstanding day in the lookback window.
func (h *ConsumptionHandler) Execute(c *gin.Context) {
	actor := c.GetHeader(actorHeader)
	if actor == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "actor identity required"})
		return
	}

	var req models.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("invalid execute payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Auto {
		report, err := h.svc.ExecuteAuto(c.Request.Context(), actor)
		if err != nil {
			h.logger.Error("auto execution failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "execution failed"})
			return
		}
		c.JSON(http.StatusOK, report)
		return
	}

	day := models.DayStart(time.Now())
	if req.Date != "" {
		parsed, err := time.Parse(models.DayLayout, req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted as YYYY-MM-DD"})
			return
		}
		day = models.DayStart(parsed)
	}
	if day.After(models.DayStart(time.Now())) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot execute a future day"})
		return
	}

	report, err := h.svc.ExecuteManual(c.Request.Context(), actor, day)
	if err != nil {
		var shortageErr *consumption.ShortageError
		switch {
		case errors.As(err, &shortageErr):
			c.JSON(http.StatusConflict, report)
		case errors.Is(err, consumption.ErrNoActor):
			c.JSON(http.StatusForbidden, gin.H{"error": "actor identity required"})
		default:
			h.logger.Error("manual execution failed", zap.String("day", models.DayKey(day)), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "execution failed"})
		}
		return
	}

	c.JSON(http.StatusOK, report)
}

// Summary returns aggregated consumption per feed type for a date range,
// defaulting to the last 30 days.
func (h *ConsumptionHandler) Summary(c *gin.Context) {
	end := models.DayStart(time.Now())
	start := end.AddDate(0, 0, -30)

	var err error
	if v := c.Query("start"); v != "" {
		if start, err = time.Parse(models.DayLayout, v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start must be formatted as YYYY-MM-DD"})
			return
		}
	}
	if v := c.Query("end"); v != "" {
		if end, err = time.Parse(models.DayLayout, v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end must be formatted as YYYY-MM-DD"})
			return
		}
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must not precede start"})
		return
	}

	summary, err := h.reporting.Summary(c.Request.Context(), start, end)
	if err != nil {
		h.logger.Error("failed building consumption summary", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "summary failed"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Plan returns the speculative requirement projection for a month
// (?month=YYYY-MM, default the current month).
func (h *ConsumptionHandler) Plan(c *gin.Context) {
	month := time.Now().UTC()
	if v := c.Query("month"); v != "" {
		parsed, err := time.Parse("2006-01", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "month must be formatted as YYYY-MM"})
			return
		}
		month = parsed
	}

	plan, err := h.svc.MonthlyPlan(c.Request.Context(), month)
	if err != nil {
		h.logger.Error("failed building monthly plan", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "plan failed"})
		return
	}

	c.JSON(http.StatusOK, plan)
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agrotrack/feedengine/internal/domain/models"
	"github.com/agrotrack/feedengine/internal/service/consumption"
)

type fakeExecutor struct {
	manualReport models.ExecutionReport
	manualErr    error
	autoReport   models.ExecutionReport
	lastDay      time.Time
	lastActor    string
}

func (f *fakeExecutor) ExecuteManual(ctx context.Context, actor string, day time.Time) (models.ExecutionReport, error) {
	f.lastActor = actor
	f.lastDay = day
	return f.manualReport, f.manualErr
}

func (f *fakeExecutor) ExecuteAuto(ctx context.Context, actor string) (models.ExecutionReport, error) {
	f.lastActor = actor
	return f.autoReport, nil
}

func (f *fakeExecutor) MonthlyPlan(ctx context.Context, month time.Time) (models.ConsumptionPlan, error) {
	return models.ConsumptionPlan{Month: month.Format("2006-01")}, nil
}

type fakeReporter struct{}

func (f *fakeReporter) Summary(ctx context.Context, start, end time.Time) (models.ConsumptionSummary, error) {
	return models.ConsumptionSummary{Start: start.Format(models.DayLayout), End: end.Format(models.DayLayout)}, nil
}

func newTestRouter(executor *fakeExecutor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewConsumptionHandler(executor, &fakeReporter{}, nil)

	r := gin.New()
	r.POST("/execute", handler.Execute)
	r.GET("/summary", handler.Summary)
	r.GET("/plan", handler.Plan)
	return r
}

func TestExecuteEndpoint(t *testing.T) {
	t.Run("refuses requests without actor identity", func(t *testing.T) {
		r := newTestRouter(&fakeExecutor{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/execute", strings.NewReader(`{"date":"2026-03-05"}`))
		r.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
	})

	t.Run("executes the requested day", func(t *testing.T) {
		executor := &fakeExecutor{manualReport: models.ExecutionReport{Success: true, ExecutedDates: []string{"2026-03-05"}}}
		r := newTestRouter(executor)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/execute", strings.NewReader(`{"date":"2026-03-05"}`))
		req.Header.Set(actorHeader, "worker-1")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if executor.lastActor != "worker-1" || models.DayKey(executor.lastDay) != "2026-03-05" {
			t.Errorf("unexpected call: actor=%s day=%s", executor.lastActor, models.DayKey(executor.lastDay))
		}

		var report models.ExecutionReport
		if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if !report.Success || len(report.ExecutedDates) != 1 {
			t.Errorf("unexpected report: %+v", report)
		}
	})

	t.Run("shortage returns conflict with full detail", func(t *testing.T) {
		shortages := []models.Shortage{{FeedTypeID: "hay", Required: 10, Available: 4}}
		executor := &fakeExecutor{
			manualReport: models.ExecutionReport{
				SkippedDates: []models.SkippedDay{{Date: "2026-03-05", Shortages: shortages}},
			},
			manualErr: &consumption.ShortageError{Date: "2026-03-05", Shortages: shortages},
		}
		r := newTestRouter(executor)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/execute", strings.NewReader(`{"date":"2026-03-05"}`))
		req.Header.Set(actorHeader, "worker-1")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}

		var report models.ExecutionReport
		if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(report.SkippedDates) != 1 || report.SkippedDates[0].Shortages[0].Available != 4 {
			t.Errorf("expected shortage detail in payload, got %+v", report)
		}
	})

	t.Run("rejects malformed and future dates", func(t *testing.T) {
		r := newTestRouter(&fakeExecutor{})

		for _, body := range []string{`{"date":"03/05/2026"}`, `{"date":"2999-01-01"}`} {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/execute", strings.NewReader(body))
			req.Header.Set(actorHeader, "worker-1")
			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("body %s: expected 400, got %d", body, w.Code)
			}
		}
	})

	t.Run("auto mode returns the catch-up report", func(t *testing.T) {
		executor := &fakeExecutor{autoReport: models.ExecutionReport{Success: true, Message: "executed 3 day(s)"}}
		r := newTestRouter(executor)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/execute", strings.NewReader(`{"auto":true}`))
		req.Header.Set(actorHeader, "cron")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if executor.lastActor != "cron" {
			t.Errorf("expected actor cron, got %s", executor.lastActor)
		}
	})
}

func TestSummaryEndpoint(t *testing.T) {
	r := newTestRouter(&fakeExecutor{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/summary?start=2026-03-01&end=2026-03-31", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/summary?start=2026-03-31&end=2026-03-01", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for inverted range, got %d", w.Code)
	}
}

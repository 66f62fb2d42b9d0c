package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/scholaris-erp/scholaris-erp/internal/reporting"
)

// ReportWarmer precomputes the common reports so the first dashboard
// request after a cache bump does not pay the aggregation cost.
type ReportWarmer struct {
	service *reporting.Service
	logger  *slog.Logger
	now     func() time.Time
}

// NewReportWarmer constructs the warmer.
func NewReportWarmer(service *reporting.Service, logger *slog.Logger) *ReportWarmer {
	return &ReportWarmer{service: service, logger: logger, now: time.Now}
}

// Handle processes TaskReportWarmup tasks. An empty payload warms the
// current financial year to date.
func (w *ReportWarmer) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ReportWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	end := w.now().Truncate(24 * time.Hour)
	start := time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	if payload.Start != "" {
		if parsed, err := time.Parse("2006-01-02", payload.Start); err == nil {
			start = parsed
		}
	}
	if payload.End != "" {
		if parsed, err := time.Parse("2006-01-02", payload.End); err == nil {
			end = parsed
		}
	}

	if _, err := w.service.Overview(ctx, start, end); err != nil {
		return err
	}
	if _, err := w.service.Depreciation(ctx, start, end); err != nil {
		return err
	}
	if _, err := w.service.Shareholder(ctx, end); err != nil {
		return err
	}
	w.logger.Info("report cache warmed",
		slog.Time("start", start),
		slog.Time("end", end),
	)
	return nil
}

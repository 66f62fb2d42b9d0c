package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/scholaris-erp/scholaris-erp/internal/accrual"
)

// OverdueScanner reports on obligations past their due date. Read-only:
// it logs and never touches a balance.
type OverdueScanner struct {
	service *accrual.Service
	logger  *slog.Logger
	now     func() time.Time
}

// NewOverdueScanner constructs the scanner.
func NewOverdueScanner(service *accrual.Service, logger *slog.Logger) *OverdueScanner {
	return &OverdueScanner{service: service, logger: logger, now: time.Now}
}

// Handle processes TaskOverdueScan tasks.
func (s *OverdueScanner) Handle(ctx context.Context, t *asynq.Task) error {
	var payload OverdueScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	kinds := []accrual.ObligationKind{accrual.Receivable, accrual.Payable}
	if payload.Kind != "" {
		kinds = []accrual.ObligationKind{accrual.ObligationKind(payload.Kind)}
	}

	asOf := s.now()
	for _, kind := range kinds {
		bucket, err := s.service.CalculateAging(ctx, kind, asOf)
		if err != nil {
			return err
		}
		overdue := bucket.Bucket30.Add(bucket.Bucket60).Add(bucket.Bucket90).Add(bucket.Bucket120)
		if overdue.IsZero() {
			continue
		}
		s.logger.Warn("overdue obligations",
			slog.String("kind", string(kind)),
			slog.String("current", bucket.Current.String()),
			slog.String("30d", bucket.Bucket30.String()),
			slog.String("60d", bucket.Bucket60.String()),
			slog.String("90d", bucket.Bucket90.String()),
			slog.String("120d", bucket.Bucket120.String()),
		)
	}
	return nil
}

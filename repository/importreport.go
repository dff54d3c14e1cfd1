package repository

import (
	"context"
	"time"

	"github.com/buyerdesk/backend/domain"
)

type ImportReportRepository interface {
	Save(ctx context.Context, report *domain.ImportReport) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.ImportReport, error)
	// DeleteOlderThan prunes reports created before the cutoff and returns
	// how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

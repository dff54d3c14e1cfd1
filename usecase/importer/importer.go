package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/buyerdesk/backend/domain"
	"github.com/buyerdesk/backend/repository"
)

// MaxRows is the hard cap on data rows per import. Files over the cap are
// rejected wholesale before any row is processed.
const MaxRows = 200

// Result reports the outcome of one import: how many rows were committed and
// a row-numbered message for every rejected row. Partial success is the
// normal case, not an error.
type Result struct {
	InsertedCount int                     `json:"insertedCount"`
	Errors        []domain.ImportRowError `json:"errors"`
}

type UseCase struct {
	buyers  repository.BuyerRepository
	reports repository.ImportReportRepository
	logger  *zap.Logger
}

func New(buyers repository.BuyerRepository, reports repository.ImportReportRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		buyers:  buyers,
		reports: reports,
		logger:  logger,
	}
}

// Import runs the CSV pipeline: parse, cap check, per-row loose validation,
// normalization, strict validation, then a single transaction inserting every
// valid row with its created-history entry. A failing row is recorded and
// skipped; it never blocks its siblings. Row numbers are file line numbers
// (header is line 1, first data row is 2).
func (uc *UseCase) Import(ctx context.Context, actorID, fileName string, data io.Reader) (*Result, error) {
	if actorID == "" {
		return nil, domain.ErrUnauthorized
	}

	reader := csv.NewReader(data)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "failed to parse CSV", err)
	}
	if len(records) < 1 {
		return nil, domain.NewError(domain.ErrCodeInvalid, "file is empty")
	}

	header := records[0]
	dataRows := records[1:]
	if len(dataRows) > MaxRows {
		return nil, domain.NewError(domain.ErrCodeOverflow, fmt.Sprintf("import exceeds the %d row limit", MaxRows))
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	rowErrors := []domain.ImportRowError{}
	var valid []*domain.Buyer

	for i, record := range dataRows {
		rowNumber := i + 2

		row := make(map[string]string, len(columns))
		for col, name := range columns {
			if col < len(record) {
				row[name] = strings.TrimSpace(record[col])
			}
		}

		if err := domain.ValidateCSVRow(row); err != nil {
			rowErrors = append(rowErrors, domain.ImportRowError{Row: rowNumber, Message: err.Error()})
			continue
		}

		buyer, err := domain.ValidateBuyer(domain.BuyerInputFromCSVRow(row))
		if err != nil {
			rowErrors = append(rowErrors, domain.ImportRowError{Row: rowNumber, Message: err.Error()})
			continue
		}

		buyer.ID = uuid.NewString()
		buyer.OwnerID = actorID
		valid = append(valid, buyer)
	}

	if len(valid) > 0 {
		if err := uc.buyers.BulkCreateWithHistory(ctx, valid, actorID); err != nil {
			return nil, err
		}
	}

	result := &Result{
		InsertedCount: len(valid),
		Errors:        rowErrors,
	}

	uc.saveReport(ctx, actorID, fileName, len(dataRows), result)

	uc.logger.Info("csv import finished",
		zap.String("actor_id", actorID),
		zap.String("file", fileName),
		zap.Int("inserted", result.InsertedCount),
		zap.Int("failed", len(result.Errors)),
	)
	return result, nil
}

// Reports lists the caller's recent import reports, newest first.
func (uc *UseCase) Reports(ctx context.Context, userID string, limit int) ([]domain.ImportReport, error) {
	if uc.reports == nil {
		return []domain.ImportReport{}, nil
	}
	reports, err := uc.reports.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if reports == nil {
		reports = []domain.ImportReport{}
	}
	return reports, nil
}

// saveReport is best-effort: a report store outage must not fail an import
// that already committed.
func (uc *UseCase) saveReport(ctx context.Context, actorID, fileName string, totalRows int, result *Result) {
	if uc.reports == nil {
		return
	}
	report := &domain.ImportReport{
		ID:            uuid.NewString(),
		UserID:        actorID,
		FileName:      fileName,
		TotalRows:     totalRows,
		InsertedCount: result.InsertedCount,
		Errors:        result.Errors,
	}
	if err := uc.reports.Save(ctx, report); err != nil {
		uc.logger.Warn("failed to save import report", zap.Error(err))
	}
}

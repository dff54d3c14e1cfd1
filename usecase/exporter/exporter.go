package exporter

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/buyerdesk/backend/domain"
	"github.com/buyerdesk/backend/repository"
)

type UseCase struct {
	buyers repository.BuyerRepository
	logger *zap.Logger
}

func New(buyers repository.BuyerRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		buyers: buyers,
		logger: logger,
	}
}

// Query carries the same filters as the list endpoint. Export ignores
// pagination and streams the entire filtered set.
type Query struct {
	City         string
	PropertyType string
	Status       string
	Timeline     string
	Search       string
}

// Export writes the filtered buyers as CSV, newest update first. Absent
// optional fields render as empty cells, never as a "null" literal, so the
// output round-trips through the import pipeline.
func (uc *UseCase) Export(ctx context.Context, query Query, out io.Writer) error {
	filter := repository.BuyerFilter{
		City:         query.City,
		PropertyType: query.PropertyType,
		Status:       query.Status,
		Timeline:     query.Timeline,
		Search:       query.Search,
	}

	buyers, err := uc.buyers.List(ctx, filter)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(out)
	if err := writer.Write(domain.CSVColumns()); err != nil {
		return err
	}
	for i := range buyers {
		if err := writer.Write(csvRecord(&buyers[i])); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	uc.logger.Info("buyers exported", zap.Int("count", len(buyers)))
	return nil
}

func csvRecord(b *domain.Buyer) []string {
	return []string{
		b.FullName,
		strPtrCell(b.Email),
		b.Phone,
		string(b.City),
		string(b.PropertyType),
		bhkCell(b.BHK),
		string(b.Purpose),
		intPtrCell(b.BudgetMin),
		intPtrCell(b.BudgetMax),
		string(b.Timeline),
		string(b.Source),
		strPtrCell(b.Notes),
		strings.Join(b.Tags, ","),
		string(b.Status),
	}
}

func strPtrCell(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func intPtrCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func bhkCell(v *domain.BHK) string {
	if v == nil {
		return ""
	}
	return string(*v)
}

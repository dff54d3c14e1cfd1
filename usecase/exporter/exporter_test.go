package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/buyerdesk/backend/domain"
	"github.com/buyerdesk/backend/repository"
)

type stubBuyerRepo struct {
	buyers     []domain.Buyer
	lastFilter repository.BuyerFilter
}

func (r *stubBuyerRepo) GetByID(context.Context, string) (*domain.Buyer, error) {
	return nil, domain.ErrBuyerNotFound
}

func (r *stubBuyerRepo) List(_ context.Context, filter repository.BuyerFilter) ([]domain.Buyer, error) {
	r.lastFilter = filter
	return r.buyers, nil
}

func (r *stubBuyerRepo) Count(context.Context, repository.BuyerFilter) (int, error) {
	return len(r.buyers), nil
}

func (r *stubBuyerRepo) CreateWithHistory(_ context.Context, b *domain.Buyer, _ string) (*domain.Buyer, error) {
	return b, nil
}

func (r *stubBuyerRepo) UpdateWithHistory(context.Context, *domain.Buyer, domain.FieldChanges, string) (*domain.Buyer, error) {
	return nil, domain.ErrBuyerNotFound
}

func (r *stubBuyerRepo) BulkCreateWithHistory(context.Context, []*domain.Buyer, string) error {
	return nil
}

func (r *stubBuyerRepo) Delete(context.Context, string) error { return nil }

func (r *stubBuyerRepo) ListHistory(context.Context, string, int) ([]domain.HistoryEntry, error) {
	return nil, nil
}

func TestExportColumnOrderAndEmptyCells(t *testing.T) {
	bhk := domain.BHKThree
	budgetMax := 7500000
	notes := "prefers corner unit"
	repo := &stubBuyerRepo{buyers: []domain.Buyer{
		{
			FullName:     "Asha Verma",
			Phone:        "9876543210",
			City:         domain.CityChandigarh,
			PropertyType: domain.PropertyVilla,
			BHK:          &bhk,
			Purpose:      domain.PurposeBuy,
			BudgetMax:    &budgetMax,
			Timeline:     domain.Timeline3To6M,
			Source:       domain.SourceReferral,
			Notes:        &notes,
			Tags:         []string{"hot", "nri"},
			Status:       domain.StatusQualified,
		},
		{
			FullName:     "Ravi Kumar",
			Phone:        "9876543211",
			City:         domain.CityMohali,
			PropertyType: domain.PropertyPlot,
			Purpose:      domain.PurposeBuy,
			Timeline:     domain.TimelineExploring,
			Source:       domain.SourceWalkIn,
			Status:       domain.StatusNew,
		},
	}}

	var buf bytes.Buffer
	uc := New(repo, nil)
	if err := uc.Export(context.Background(), Query{}, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}

	header := strings.Join(records[0], ",")
	want := "fullName,email,phone,city,propertyType,bhk,purpose,budgetMin,budgetMax,timeline,source,notes,tags,status"
	if header != want {
		t.Fatalf("unexpected header: %s", header)
	}

	first := records[1]
	if first[0] != "Asha Verma" || first[5] != "3" || first[8] != "7500000" || first[12] != "hot,nri" {
		t.Fatalf("unexpected first row: %v", first)
	}
	if first[1] != "" || first[7] != "" {
		t.Fatalf("absent optionals must be empty cells: %v", first)
	}

	second := records[2]
	for i, cell := range second {
		if cell == "null" {
			t.Fatalf("column %d rendered literal null", i)
		}
	}
	if second[5] != "" || second[11] != "" || second[12] != "" {
		t.Fatalf("absent optionals must be empty cells: %v", second)
	}
}

func TestExportIgnoresPagination(t *testing.T) {
	repo := &stubBuyerRepo{}
	uc := New(repo, nil)

	var buf bytes.Buffer
	if err := uc.Export(context.Background(), Query{City: "Mohali", Status: "New"}, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastFilter.Limit != 0 || repo.lastFilter.Offset != 0 {
		t.Fatalf("export must not paginate: %+v", repo.lastFilter)
	}
	if repo.lastFilter.City != "Mohali" || repo.lastFilter.Status != "New" {
		t.Fatalf("filters not forwarded: %+v", repo.lastFilter)
	}
}

func TestExportEmptySetStillWritesHeader(t *testing.T) {
	uc := New(&stubBuyerRepo{}, nil)
	var buf bytes.Buffer
	if err := uc.Export(context.Background(), Query{}, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "fullName,") {
		t.Fatalf("expected header-only output, got %q", buf.String())
	}
}

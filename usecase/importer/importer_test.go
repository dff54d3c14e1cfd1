package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/buyerdesk/backend/domain"
	"github.com/buyerdesk/backend/repository"
)

type stubBuyerRepo struct {
	inserted  []*domain.Buyer
	bulkCalls int
}

func (r *stubBuyerRepo) GetByID(context.Context, string) (*domain.Buyer, error) {
	return nil, domain.ErrBuyerNotFound
}

func (r *stubBuyerRepo) List(context.Context, repository.BuyerFilter) ([]domain.Buyer, error) {
	return nil, nil
}

func (r *stubBuyerRepo) Count(context.Context, repository.BuyerFilter) (int, error) {
	return 0, nil
}

func (r *stubBuyerRepo) CreateWithHistory(_ context.Context, buyer *domain.Buyer, _ string) (*domain.Buyer, error) {
	r.inserted = append(r.inserted, buyer)
	return buyer, nil
}

func (r *stubBuyerRepo) UpdateWithHistory(context.Context, *domain.Buyer, domain.FieldChanges, string) (*domain.Buyer, error) {
	return nil, domain.ErrBuyerNotFound
}

func (r *stubBuyerRepo) BulkCreateWithHistory(_ context.Context, buyers []*domain.Buyer, _ string) error {
	r.bulkCalls++
	r.inserted = append(r.inserted, buyers...)
	return nil
}

func (r *stubBuyerRepo) Delete(context.Context, string) error { return nil }

func (r *stubBuyerRepo) ListHistory(context.Context, string, int) ([]domain.HistoryEntry, error) {
	return nil, nil
}

type stubReportRepo struct {
	saved []*domain.ImportReport
}

func (r *stubReportRepo) Save(_ context.Context, report *domain.ImportReport) error {
	r.saved = append(r.saved, report)
	return nil
}

func (r *stubReportRepo) ListByUser(context.Context, string, int) ([]domain.ImportReport, error) {
	return nil, nil
}

func (r *stubReportRepo) DeleteOlderThan(context.Context, time.Time) (int, error) {
	return 0, nil
}

const csvHeader = "fullName,email,phone,city,propertyType,bhk,purpose,budgetMin,budgetMax,timeline,source,notes,tags,status"

func TestImportPartialSuccess(t *testing.T) {
	file := strings.Join([]string{
		csvHeader,
		`Asha Verma,asha@example.com,9876543210,Chandigarh,Apartment,2,Buy,3000000,5000000,0-3m,Website,,"hot,nri",New`,
		`Bad Phone,,12345,Mohali,Plot,,Buy,,,>6m,Referral,,,`,
		`Ravi Kumar,,9876543211,Mohali,Plot,,Buy,,,Exploring,Walk_in,,,Qualified`,
	}, "\n")

	buyers := &stubBuyerRepo{}
	reports := &stubReportRepo{}
	uc := New(buyers, reports, nil)

	result, err := uc.Import(context.Background(), "u-1", "leads.csv", strings.NewReader(file))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.InsertedCount != 2 {
		t.Fatalf("expected 2 inserted, got %d", result.InsertedCount)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 row error, got %v", result.Errors)
	}
	// Header is file line 1, so the failing second data row reports line 3.
	if result.Errors[0].Row != 3 {
		t.Fatalf("expected row 3, got %d", result.Errors[0].Row)
	}
	if !strings.Contains(result.Errors[0].Message, "phone") {
		t.Fatalf("expected phone attribution: %s", result.Errors[0].Message)
	}

	if buyers.bulkCalls != 1 {
		t.Fatalf("expected one bulk insert, got %d", buyers.bulkCalls)
	}
	for _, b := range buyers.inserted {
		if b.ID == "" || b.OwnerID != "u-1" {
			t.Fatalf("inserted buyer missing identity: %+v", b)
		}
	}
	if buyers.inserted[0].Tags == nil || buyers.inserted[0].Tags[0] != "hot" {
		t.Fatalf("tags not split: %v", buyers.inserted[0].Tags)
	}

	if len(reports.saved) != 1 {
		t.Fatalf("expected one saved report")
	}
	report := reports.saved[0]
	if report.TotalRows != 3 || report.InsertedCount != 2 || len(report.Errors) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestImportAllRowsInvalid(t *testing.T) {
	file := strings.Join([]string{
		csvHeader,
		`,,9876543210,Chandigarh,Plot,,Buy,,,0-3m,Website,,,`,
		`Asha,,9876543210,Atlantis,Plot,,Buy,,,0-3m,Website,,,`,
	}, "\n")

	buyers := &stubBuyerRepo{}
	uc := New(buyers, &stubReportRepo{}, nil)

	result, err := uc.Import(context.Background(), "u-1", "leads.csv", strings.NewReader(file))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.InsertedCount != 0 {
		t.Fatalf("expected nothing inserted")
	}
	if len(result.Errors) != 2 || result.Errors[0].Row != 2 || result.Errors[1].Row != 3 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if buyers.bulkCalls != 0 {
		t.Fatalf("empty batch must not hit the repository")
	}
}

func TestImportRowCapRejectsWholesale(t *testing.T) {
	rows := []string{csvHeader}
	for i := 0; i < MaxRows+1; i++ {
		rows = append(rows, `Asha Verma,,9876543210,Mohali,Plot,,Buy,,,>6m,Referral,,,`)
	}

	buyers := &stubBuyerRepo{}
	uc := New(buyers, &stubReportRepo{}, nil)

	_, err := uc.Import(context.Background(), "u-1", "big.csv", strings.NewReader(strings.Join(rows, "\n")))
	if !domain.IsDomainError(err, domain.ErrCodeOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	if buyers.bulkCalls != 0 || len(buyers.inserted) != 0 {
		t.Fatalf("over-cap import must not insert anything")
	}
}

func TestImportExactlyAtCap(t *testing.T) {
	rows := []string{csvHeader}
	for i := 0; i < MaxRows; i++ {
		rows = append(rows, `Asha Verma,,9876543210,Mohali,Plot,,Buy,,,>6m,Referral,,,`)
	}

	buyers := &stubBuyerRepo{}
	uc := New(buyers, &stubReportRepo{}, nil)

	result, err := uc.Import(context.Background(), "u-1", "cap.csv", strings.NewReader(strings.Join(rows, "\n")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.InsertedCount != MaxRows {
		t.Fatalf("expected %d inserted, got %d", MaxRows, result.InsertedCount)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", result.Errors)
	}
}

func TestImportEmptyFile(t *testing.T) {
	uc := New(&stubBuyerRepo{}, &stubReportRepo{}, nil)
	_, err := uc.Import(context.Background(), "u-1", "empty.csv", strings.NewReader(""))
	if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("expected invalid, got %v", err)
	}
}

func TestImportRequiresActor(t *testing.T) {
	uc := New(&stubBuyerRepo{}, &stubReportRepo{}, nil)
	_, err := uc.Import(context.Background(), "", "leads.csv", strings.NewReader(csvHeader))
	if !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestImportHeaderOnly(t *testing.T) {
	uc := New(&stubBuyerRepo{}, &stubReportRepo{}, nil)
	result, err := uc.Import(context.Background(), "u-1", "leads.csv", strings.NewReader(csvHeader))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.InsertedCount != 0 || len(result.Errors) != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

package buyer

import (
	"context"
	"testing"
	"time"

	"github.com/buyerdesk/backend/domain"
	"github.com/buyerdesk/backend/repository"
)

type stubBuyerRepo struct {
	buyers  map[string]*domain.Buyer
	history []domain.HistoryEntry

	updates int
	deletes int
}

func newStubBuyerRepo(buyers ...*domain.Buyer) *stubBuyerRepo {
	repo := &stubBuyerRepo{buyers: map[string]*domain.Buyer{}}
	for _, b := range buyers {
		repo.buyers[b.ID] = b
	}
	return repo
}

func (r *stubBuyerRepo) GetByID(_ context.Context, id string) (*domain.Buyer, error) {
	b, ok := r.buyers[id]
	if !ok {
		return nil, domain.ErrBuyerNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *stubBuyerRepo) List(_ context.Context, _ repository.BuyerFilter) ([]domain.Buyer, error) {
	var out []domain.Buyer
	for _, b := range r.buyers {
		out = append(out, *b)
	}
	return out, nil
}

func (r *stubBuyerRepo) Count(_ context.Context, _ repository.BuyerFilter) (int, error) {
	return len(r.buyers), nil
}

func (r *stubBuyerRepo) CreateWithHistory(_ context.Context, buyer *domain.Buyer, changedBy string) (*domain.Buyer, error) {
	now := time.Now()
	buyer.CreatedAt = now
	buyer.UpdatedAt = now
	r.buyers[buyer.ID] = buyer
	r.history = append(r.history, domain.HistoryEntry{
		BuyerID:   buyer.ID,
		ChangedBy: changedBy,
		ChangedAt: now,
		Diff:      domain.NewCreatedDiff(buyer),
	})
	return buyer, nil
}

func (r *stubBuyerRepo) UpdateWithHistory(_ context.Context, merged *domain.Buyer, changes domain.FieldChanges, changedBy string) (*domain.Buyer, error) {
	stored, ok := r.buyers[merged.ID]
	if !ok {
		return nil, domain.ErrBuyerNotFound
	}
	if !stored.UpdatedAt.Equal(merged.UpdatedAt) {
		return nil, domain.ErrStaleRecord
	}
	r.updates++
	merged.UpdatedAt = time.Now()
	r.buyers[merged.ID] = merged
	r.history = append(r.history, domain.HistoryEntry{
		BuyerID:   merged.ID,
		ChangedBy: changedBy,
		ChangedAt: merged.UpdatedAt,
		Diff:      domain.NewFieldDiff(changes),
	})
	return merged, nil
}

func (r *stubBuyerRepo) BulkCreateWithHistory(ctx context.Context, buyers []*domain.Buyer, changedBy string) error {
	for _, b := range buyers {
		if _, err := r.CreateWithHistory(ctx, b, changedBy); err != nil {
			return err
		}
	}
	return nil
}

func (r *stubBuyerRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.buyers[id]; !ok {
		return domain.ErrBuyerNotFound
	}
	r.deletes++
	delete(r.buyers, id)
	return nil
}

func (r *stubBuyerRepo) ListHistory(_ context.Context, buyerID string, limit int) ([]domain.HistoryEntry, error) {
	var out []domain.HistoryEntry
	for i := len(r.history) - 1; i >= 0 && len(out) < limit; i-- {
		if r.history[i].BuyerID == buyerID {
			out = append(out, r.history[i])
		}
	}
	return out, nil
}

func storedBuyer() *domain.Buyer {
	bhk := domain.BHKTwo
	return &domain.Buyer{
		ID:           "b-1",
		OwnerID:      "u-1",
		FullName:     "Asha Verma",
		Phone:        "9876543210",
		City:         domain.CityChandigarh,
		PropertyType: domain.PropertyApartment,
		BHK:          &bhk,
		Purpose:      domain.PurposeBuy,
		Timeline:     domain.TimelineUnder3M,
		Source:       domain.SourceWebsite,
		Tags:         []string{"hot"},
		Status:       domain.StatusNew,
		CreatedAt:    time.Now().Add(-time.Hour),
		UpdatedAt:    time.Now().Add(-time.Minute).Truncate(time.Millisecond),
	}
}

func strPtr(s string) *string { return &s }

func TestCreateRecordsHistory(t *testing.T) {
	repo := newStubBuyerRepo()
	uc := New(repo, nil)

	in := domain.BuyerInput{
		FullName: "Asha Verma", Phone: "9876543210", City: "Mohali",
		PropertyType: "Plot", Purpose: "Buy", Timeline: ">6m", Source: "Referral",
	}
	created, err := uc.Create(context.Background(), "u-1", in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == "" || created.OwnerID != "u-1" {
		t.Fatalf("identity not assigned: %+v", created)
	}
	if len(repo.history) != 1 || repo.history[0].Diff.Created == nil {
		t.Fatalf("expected one created-history entry, got %v", repo.history)
	}
}

func TestCreateRequiresActor(t *testing.T) {
	uc := New(newStubBuyerRepo(), nil)
	_, err := uc.Create(context.Background(), "", domain.BuyerInput{})
	if !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestUpdateWritesDiffHistory(t *testing.T) {
	existing := storedBuyer()
	repo := newStubBuyerRepo(existing)
	uc := New(repo, nil)

	token := existing.UpdatedAt
	patch := domain.BuyerPatch{
		Status:    strPtr("Qualified"),
		City:      strPtr("Mohali"),
		UpdatedAt: &token,
	}
	updated, err := uc.Update(context.Background(), "u-2", "b-1", patch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != domain.StatusQualified {
		t.Fatalf("status not updated: %s", updated.Status)
	}
	if !updated.UpdatedAt.After(token) {
		t.Fatalf("updatedAt token not refreshed")
	}
	if repo.updates != 1 || len(repo.history) != 1 {
		t.Fatalf("expected one write and one history entry")
	}
	fields := repo.history[0].Diff.Fields
	if len(fields) != 2 {
		t.Fatalf("expected 2 changed fields, got %v", fields)
	}
	if _, ok := fields["status"]; !ok {
		t.Fatalf("status missing from diff: %v", fields)
	}
	if _, ok := fields["city"]; !ok {
		t.Fatalf("city missing from diff: %v", fields)
	}
	if repo.history[0].ChangedBy != "u-2" {
		t.Fatalf("actor not recorded: %s", repo.history[0].ChangedBy)
	}
}

func TestUpdateStaleTokenConflicts(t *testing.T) {
	existing := storedBuyer()
	repo := newStubBuyerRepo(existing)
	uc := New(repo, nil)

	stale := existing.UpdatedAt.Add(-time.Hour)
	_, err := uc.Update(context.Background(), "u-1", "b-1", domain.BuyerPatch{
		Status:    strPtr("Qualified"),
		UpdatedAt: &stale,
	})
	if !domain.IsDomainError(err, domain.ErrCodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if repo.updates != 0 || len(repo.history) != 0 {
		t.Fatalf("stale update must not write")
	}
}

func TestUpdateNoOpSkipsWrite(t *testing.T) {
	existing := storedBuyer()
	repo := newStubBuyerRepo(existing)
	uc := New(repo, nil)

	result, err := uc.Update(context.Background(), "u-1", "b-1", domain.BuyerPatch{
		Status: strPtr("New"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.UpdatedAt.Equal(existing.UpdatedAt) {
		t.Fatalf("no-op must not touch updatedAt")
	}
	if repo.updates != 0 || len(repo.history) != 0 {
		t.Fatalf("no-op must not write or append history")
	}
}

func TestUpdateUnknownBuyer(t *testing.T) {
	uc := New(newStubBuyerRepo(), nil)
	_, err := uc.Update(context.Background(), "u-1", "missing", domain.BuyerPatch{Status: strPtr("Qualified")})
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateStatusValidatesInput(t *testing.T) {
	existing := storedBuyer()
	uc := New(newStubBuyerRepo(existing), nil)

	_, err := uc.UpdateStatus(context.Background(), "u-1", "b-1", "")
	if verr, ok := domain.AsValidationError(err); !ok || verr.Field != "status" {
		t.Fatalf("expected status validation error, got %v", err)
	}

	_, err = uc.UpdateStatus(context.Background(), "u-1", "b-1", "Archived")
	if verr, ok := domain.AsValidationError(err); !ok || verr.Field != "status" {
		t.Fatalf("expected status validation error, got %v", err)
	}

	updated, err := uc.UpdateStatus(context.Background(), "u-1", "b-1", "Contacted")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != domain.StatusContacted {
		t.Fatalf("status not updated: %s", updated.Status)
	}
}

func TestDeleteOwnerOnly(t *testing.T) {
	existing := storedBuyer()
	repo := newStubBuyerRepo(existing)
	uc := New(repo, nil)

	err := uc.Delete(context.Background(), "u-2", "b-1")
	if !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if repo.deletes != 0 {
		t.Fatalf("non-owner delete must not remove the record")
	}

	if err := uc.Delete(context.Background(), "u-1", "b-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.deletes != 1 {
		t.Fatalf("expected delete to go through")
	}
}

func TestHistoryUnknownBuyer(t *testing.T) {
	uc := New(newStubBuyerRepo(), nil)
	_, err := uc.History(context.Background(), "missing")
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateThenStatusChangeYieldsTwoEntries(t *testing.T) {
	repo := newStubBuyerRepo()
	uc := New(repo, nil)

	in := domain.BuyerInput{
		FullName: "Asha Verma", Phone: "9876543210", City: "Mohali",
		PropertyType: "Plot", Purpose: "Buy", Timeline: ">6m", Source: "Referral",
	}
	created, err := uc.Create(context.Background(), "u-1", in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uc.UpdateStatus(context.Background(), "u-1", created.ID, "Qualified"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := uc.History(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(entries))
	}
	// Newest first: the status change precedes the creation snapshot.
	if entries[0].Diff.Fields == nil || entries[1].Diff.Created == nil {
		t.Fatalf("unexpected history order: %+v", entries)
	}
}

func TestListClampsPage(t *testing.T) {
	repo := newStubBuyerRepo(storedBuyer())
	uc := New(repo, nil)

	result, err := uc.List(context.Background(), ListQuery{Page: -3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Page != 1 || result.PageSize != PageSize {
		t.Fatalf("unexpected paging: %+v", result)
	}
	if result.Total != 1 || len(result.Data) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

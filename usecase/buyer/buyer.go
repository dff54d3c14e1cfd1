package buyer

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/buyerdesk/backend/domain"
	"github.com/buyerdesk/backend/repository"
)

// PageSize is the fixed page size for buyer listings.
const PageSize = 10

// HistoryLimit caps how many audit entries a single history request returns.
const HistoryLimit = 10

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

// ListQuery carries the list filters plus the 1-indexed page.
type ListQuery struct {
	Page         int
	City         string
	PropertyType string
	Status       string
	Timeline     string
	Search       string
}

// ListResult is one page of buyers plus the total match count so clients can
// compute the page count.
type ListResult struct {
	Data     []domain.Buyer `json:"data"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

func (uc *UseCase) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}

	filter := repository.BuyerFilter{
		City:         query.City,
		PropertyType: query.PropertyType,
		Status:       query.Status,
		Timeline:     query.Timeline,
		Search:       query.Search,
		Limit:        PageSize,
		Offset:       (page - 1) * PageSize,
	}

	total, err := uc.buyers.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	buyers, err := uc.buyers.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if buyers == nil {
		buyers = []domain.Buyer{}
	}

	return &ListResult{
		Data:     buyers,
		Total:    total,
		Page:     page,
		PageSize: PageSize,
	}, nil
}

func (uc *UseCase) Get(ctx context.Context, id string) (*domain.Buyer, error) {
	return uc.buyers.GetByID(ctx, id)
}

// Create validates the candidate record and persists it together with its
// created-history entry in one transaction. The caller becomes the owner.
func (uc *UseCase) Create(ctx context.Context, ownerID string, in domain.BuyerInput) (*domain.Buyer, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}

	buyer, err := domain.ValidateBuyer(in)
	if err != nil {
		return nil, err
	}
	buyer.ID = uuid.NewString()
	buyer.OwnerID = ownerID

	created, err := uc.buyers.CreateWithHistory(ctx, buyer, ownerID)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("buyer created", zap.String("buyer_id", created.ID), zap.String("owner_id", ownerID))
	return created, nil
}

// Update runs the optimistic-concurrency update protocol: load the record,
// compare the caller's last-observed updatedAt token against the stored one,
// validate the merged candidate, compute the effective field diff, and
// persist the changed fields plus one history entry atomically. A patch that
// changes nothing returns the existing record untouched, with no write and
// no history entry. Stale tokens fail with a conflict; the caller must
// re-fetch and resubmit.
func (uc *UseCase) Update(ctx context.Context, actorID, id string, patch domain.BuyerPatch) (*domain.Buyer, error) {
	if actorID == "" {
		return nil, domain.ErrUnauthorized
	}

	existing, err := uc.buyers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.UpdatedAt != nil && !patch.UpdatedAt.Equal(existing.UpdatedAt) {
		return nil, domain.ErrStaleRecord
	}

	merged, err := existing.ApplyPatch(patch)
	if err != nil {
		return nil, err
	}

	changes := domain.DiffBuyers(existing, merged, patch)
	if len(changes) == 0 {
		return existing, nil
	}

	updated, err := uc.buyers.UpdateWithHistory(ctx, merged, changes, actorID)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("buyer updated",
		zap.String("buyer_id", id),
		zap.String("actor_id", actorID),
		zap.Int("changed_fields", len(changes)),
	)
	return updated, nil
}

// UpdateStatus moves a buyer through the funnel. It rides the full update
// protocol so the change lands in the audit trail, but carries no
// concurrency token.
func (uc *UseCase) UpdateStatus(ctx context.Context, actorID, id, status string) (*domain.Buyer, error) {
	if status == "" {
		return nil, domain.NewValidationError("status", "is required")
	}
	return uc.Update(ctx, actorID, id, domain.BuyerPatch{Status: &status})
}

// Delete removes a buyer. Only the owner may delete; history rows go with
// the record.
func (uc *UseCase) Delete(ctx context.Context, actorID, id string) error {
	if actorID == "" {
		return domain.ErrUnauthorized
	}

	existing, err := uc.buyers.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !existing.IsOwnedBy(actorID) {
		return domain.ErrNotOwner
	}

	if err := uc.buyers.Delete(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("buyer deleted", zap.String("buyer_id", id), zap.String("actor_id", actorID))
	return nil
}

// History returns the buyer's most recent audit entries, newest first.
func (uc *UseCase) History(ctx context.Context, id string) ([]domain.HistoryEntry, error) {
	if _, err := uc.buyers.GetByID(ctx, id); err != nil {
		return nil, err
	}
	entries, err := uc.buyers.ListHistory(ctx, id, HistoryLimit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	return entries, nil
}

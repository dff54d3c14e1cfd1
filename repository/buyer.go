package repository

import (
	"context"

	"github.com/buyerdesk/backend/domain"
)

// BuyerFilter narrows list, count and export queries. Exact-match criteria
// are ANDed; Search is ORed across fullName, phone and email. A Limit of
// zero or less disables pagination (the export path).
type BuyerFilter struct {
	City         string
	PropertyType string
	Status       string
	Timeline     string
	Search       string
	Limit        int
	Offset       int
}

type BuyerRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Buyer, error)
	List(ctx context.Context, filter BuyerFilter) ([]domain.Buyer, error)
	Count(ctx context.Context, filter BuyerFilter) (int, error)
	// CreateWithHistory inserts the buyer and its created-history entry in
	// one transaction.
	CreateWithHistory(ctx context.Context, buyer *domain.Buyer, changedBy string) (*domain.Buyer, error)
	// UpdateWithHistory writes exactly the changed fields and appends one
	// history entry carrying their [old, new] pairs, atomically.
	UpdateWithHistory(ctx context.Context, merged *domain.Buyer, changes domain.FieldChanges, changedBy string) (*domain.Buyer, error)
	// BulkCreateWithHistory inserts every buyer plus its created-history
	// entry inside a single transaction; a failure rolls back the whole
	// batch.
	BulkCreateWithHistory(ctx context.Context, buyers []*domain.Buyer, changedBy string) error
	Delete(ctx context.Context, id string) error
	ListHistory(ctx context.Context, buyerID string, limit int) ([]domain.HistoryEntry, error)
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buyerdesk/backend/domain"
	"github.com/buyerdesk/backend/repository"
)

type buyerRepository struct {
	pool *pgxpool.Pool
}

// NewBuyerRepository returns a Postgres-backed implementation of BuyerRepository.
func NewBuyerRepository(pool *pgxpool.Pool) repository.BuyerRepository {
	return &buyerRepository{pool: pool}
}

const buyerSelectColumns = `
	id, owner_id, full_name, email, phone, city, property_type, bhk, purpose,
	budget_min, budget_max, timeline, source, notes, tags, status, created_at, updated_at
`

const buyerFilterClause = `
	($1 = '' OR city = $1)
	AND ($2 = '' OR property_type = $2)
	AND ($3 = '' OR status = $3)
	AND ($4 = '' OR timeline = $4)
	AND ($5 = '' OR full_name ILIKE '%' || $5 || '%'
		OR phone LIKE '%' || $5 || '%'
		OR email ILIKE '%' || $5 || '%')
`

// buyerColumns maps API field names onto table columns for partial updates.
var buyerColumns = map[string]string{
	"fullName":     "full_name",
	"email":        "email",
	"phone":        "phone",
	"city":         "city",
	"propertyType": "property_type",
	"bhk":          "bhk",
	"purpose":      "purpose",
	"budgetMin":    "budget_min",
	"budgetMax":    "budget_max",
	"timeline":     "timeline",
	"source":       "source",
	"notes":        "notes",
	"tags":         "tags",
	"status":       "status",
}

func (r *buyerRepository) GetByID(ctx context.Context, id string) (*domain.Buyer, error) {
	query := `SELECT ` + buyerSelectColumns + ` FROM buyers WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanBuyer(row)
}

func (r *buyerRepository) List(ctx context.Context, filter repository.BuyerFilter) ([]domain.Buyer, error) {
	query := `SELECT ` + buyerSelectColumns + ` FROM buyers WHERE ` + buyerFilterClause + ` ORDER BY updated_at DESC`
	args := []interface{}{filter.City, filter.PropertyType, filter.Status, filter.Timeline, escapeLike(filter.Search)}

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filter.Limit, max(filter.Offset, 0))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buyers []domain.Buyer
	for rows.Next() {
		buyer, err := scanBuyer(rows)
		if err != nil {
			return nil, err
		}
		buyers = append(buyers, *buyer)
	}
	return buyers, rows.Err()
}

func (r *buyerRepository) Count(ctx context.Context, filter repository.BuyerFilter) (int, error) {
	query := `SELECT COUNT(*) FROM buyers WHERE ` + buyerFilterClause
	var total int
	err := r.pool.QueryRow(ctx, query,
		filter.City, filter.PropertyType, filter.Status, filter.Timeline, escapeLike(filter.Search),
	).Scan(&total)
	return total, err
}

func (r *buyerRepository) CreateWithHistory(ctx context.Context, buyer *domain.Buyer, changedBy string) (*domain.Buyer, error) {
	if buyer == nil {
		return nil, domain.ErrInvalidPayload
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := insertBuyer(ctx, tx, buyer); err != nil {
		return nil, err
	}
	if err := insertCreatedHistory(ctx, tx, buyer, changedBy); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return buyer, nil
}

func (r *buyerRepository) UpdateWithHistory(ctx context.Context, merged *domain.Buyer, changes domain.FieldChanges, changedBy string) (*domain.Buyer, error) {
	if merged == nil || len(changes) == 0 {
		return nil, domain.ErrInvalidPayload
	}

	fields := make([]string, 0, len(changes))
	for field := range changes {
		if _, ok := buyerColumns[field]; !ok {
			return nil, domain.WrapError(domain.ErrCodeInternal, "unknown buyer field", fmt.Errorf("field %q", field))
		}
		fields = append(fields, field)
	}
	sort.Strings(fields)

	// Touch exactly the changed columns. The updated_at guard re-checks the
	// concurrency token inside the transaction so a racing writer cannot slip
	// in between the service's check and this write.
	set := ""
	args := []interface{}{merged.ID, merged.UpdatedAt}
	for _, field := range fields {
		args = append(args, buyerFieldValue(merged, field))
		set += fmt.Sprintf("%s = $%d, ", buyerColumns[field], len(args))
	}
	query := fmt.Sprintf(
		`UPDATE buyers SET %supdated_at = NOW() WHERE id = $1 AND updated_at = $2 RETURNING updated_at`,
		set,
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, query, args...).Scan(&merged.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStaleRecord
		}
		return nil, err
	}

	diff, err := json.Marshal(domain.NewFieldDiff(changes))
	if err != nil {
		return nil, err
	}
	if err := insertHistory(ctx, tx, merged.ID, changedBy, diff); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return merged, nil
}

func (r *buyerRepository) BulkCreateWithHistory(ctx context.Context, buyers []*domain.Buyer, changedBy string) error {
	if len(buyers) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, buyer := range buyers {
		if err := insertBuyer(ctx, tx, buyer); err != nil {
			return err
		}
		if err := insertCreatedHistory(ctx, tx, buyer, changedBy); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *buyerRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM buyers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBuyerNotFound
	}
	return nil
}

func (r *buyerRepository) ListHistory(ctx context.Context, buyerID string, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
	SELECT id, buyer_id, changed_by, changed_at, diff
	FROM buyer_history
	WHERE buyer_id = $1
	ORDER BY changed_at DESC
	LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, buyerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var entry domain.HistoryEntry
		var diff []byte
		if err := rows.Scan(&entry.ID, &entry.BuyerID, &entry.ChangedBy, &entry.ChangedAt, &diff); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(diff, &entry.Diff); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func insertBuyer(ctx context.Context, tx pgx.Tx, buyer *domain.Buyer) error {
	if buyer.ID == "" {
		buyer.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO buyers (
		id, owner_id, full_name, email, phone, city, property_type, bhk, purpose,
		budget_min, budget_max, timeline, source, notes, tags, status
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	RETURNING created_at, updated_at
	`

	var bhk *string
	if buyer.BHK != nil {
		v := string(*buyer.BHK)
		bhk = &v
	}

	return tx.QueryRow(ctx, query,
		buyer.ID,
		buyer.OwnerID,
		buyer.FullName,
		buyer.Email,
		buyer.Phone,
		string(buyer.City),
		string(buyer.PropertyType),
		bhk,
		string(buyer.Purpose),
		buyer.BudgetMin,
		buyer.BudgetMax,
		string(buyer.Timeline),
		string(buyer.Source),
		buyer.Notes,
		marshalTags(buyer.Tags),
		string(buyer.Status),
	).Scan(&buyer.CreatedAt, &buyer.UpdatedAt)
}

func insertCreatedHistory(ctx context.Context, tx pgx.Tx, buyer *domain.Buyer, changedBy string) error {
	diff, err := json.Marshal(domain.NewCreatedDiff(buyer))
	if err != nil {
		return err
	}
	return insertHistory(ctx, tx, buyer.ID, changedBy, diff)
}

func insertHistory(ctx context.Context, tx pgx.Tx, buyerID, changedBy string, diff []byte) error {
	const query = `
	INSERT INTO buyer_history (id, buyer_id, changed_by, diff)
	VALUES ($1, $2, $3, $4)
	`
	_, err := tx.Exec(ctx, query, uuid.NewString(), buyerID, changedBy, diff)
	return err
}

// buyerFieldValue extracts the column value for one changed field from the
// merged record.
func buyerFieldValue(b *domain.Buyer, field string) interface{} {
	switch field {
	case "fullName":
		return b.FullName
	case "email":
		return b.Email
	case "phone":
		return b.Phone
	case "city":
		return string(b.City)
	case "propertyType":
		return string(b.PropertyType)
	case "bhk":
		if b.BHK == nil {
			return nil
		}
		return string(*b.BHK)
	case "purpose":
		return string(b.Purpose)
	case "budgetMin":
		return b.BudgetMin
	case "budgetMax":
		return b.BudgetMax
	case "timeline":
		return string(b.Timeline)
	case "source":
		return string(b.Source)
	case "notes":
		return b.Notes
	case "tags":
		return marshalTags(b.Tags)
	case "status":
		return string(b.Status)
	default:
		return nil
	}
}

func scanBuyer(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Buyer, error) {
	var buyer domain.Buyer
	var (
		city, propertyType, purpose, timeline, source, status string
		bhk                                                   *string
		tags                                                  []byte
	)

	if err := row.Scan(
		&buyer.ID,
		&buyer.OwnerID,
		&buyer.FullName,
		&buyer.Email,
		&buyer.Phone,
		&city,
		&propertyType,
		&bhk,
		&purpose,
		&buyer.BudgetMin,
		&buyer.BudgetMax,
		&timeline,
		&source,
		&buyer.Notes,
		&tags,
		&status,
		&buyer.CreatedAt,
		&buyer.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBuyerNotFound
		}
		return nil, err
	}

	buyer.City = domain.City(city)
	buyer.PropertyType = domain.PropertyType(propertyType)
	buyer.Purpose = domain.Purpose(purpose)
	buyer.Timeline = domain.Timeline(timeline)
	buyer.Source = domain.Source(source)
	buyer.Status = domain.Status(status)
	if bhk != nil {
		v := domain.BHK(*bhk)
		buyer.BHK = &v
	}
	buyer.Tags = unmarshalTags(tags)

	return &buyer, nil
}

package transport

import (
	"encoding/json"
	"strings"
)

type DemoLoginRequest struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// BuyerCreateRequest carries a candidate buyer. Budgets accept both JSON
// numbers and numeric strings; tags accept an array or a comma-joined string.
type BuyerCreateRequest struct {
	FullName     string          `json:"fullName"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	City         string          `json:"city"`
	PropertyType string          `json:"propertyType"`
	BHK          string          `json:"bhk"`
	Purpose      string          `json:"purpose"`
	BudgetMin    json.Number     `json:"budgetMin"`
	BudgetMax    json.Number     `json:"budgetMax"`
	Timeline     string          `json:"timeline"`
	Source       string          `json:"source"`
	Notes        string          `json:"notes"`
	Tags         json.RawMessage `json:"tags"`
	Status       string          `json:"status"`
}

// BuyerUpdateRequest is a partial update. Absent fields leave the record
// untouched; present-but-empty optional fields clear their value. UpdatedAt
// is the concurrency token the client last observed.
type BuyerUpdateRequest struct {
	FullName     *string         `json:"fullName"`
	Email        *string         `json:"email"`
	Phone        *string         `json:"phone"`
	City         *string         `json:"city"`
	PropertyType *string         `json:"propertyType"`
	BHK          *string         `json:"bhk"`
	Purpose      *string         `json:"purpose"`
	BudgetMin    *json.Number    `json:"budgetMin"`
	BudgetMax    *json.Number    `json:"budgetMax"`
	Timeline     *string         `json:"timeline"`
	Source       *string         `json:"source"`
	Notes        *string         `json:"notes"`
	Tags         json.RawMessage `json:"tags"`
	Status       *string         `json:"status"`
	UpdatedAt    *string         `json:"updatedAt"`
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// ParseTags accepts either a JSON string array or a single comma-joined
// string and returns the split values. A nil return means the field was
// absent.
func ParseTags(raw json.RawMessage) ([]string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, false
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, true
	}
	var joined string
	if err := json.Unmarshal(raw, &joined); err == nil {
		parts := strings.Split(joined, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				out = append(out, t)
			}
		}
		return out, true
	}
	return nil, false
}

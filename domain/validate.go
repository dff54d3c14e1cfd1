package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	fullNameMinLen = 2
	fullNameMaxLen = 80
	notesMaxLen    = 1000
)

var (
	phoneRegex = regexp.MustCompile(`^\d{10,15}$`)
	emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// BuyerInput is the untyped field bag handed to the validator. Every value
// arrives as text: JSON bodies, HTML forms and CSV rows all funnel through
// this shape before any typed Buyer exists. Tags may be supplied either as an
// already-split sequence or as a single comma-joined string in RawTags.
type BuyerInput struct {
	FullName     string
	Email        string
	Phone        string
	City         string
	PropertyType string
	BHK          string
	Purpose      string
	BudgetMin    string
	BudgetMax    string
	Timeline     string
	Source       string
	Notes        string
	Tags         []string
	RawTags      string
	Status       string
}

// SplitTags turns a comma-joined tag string into a cleaned slice. Entries are
// trimmed and empty entries dropped.
func SplitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

// ValidateBuyer normalizes the field bag into a typed Buyer or fails with a
// ValidationError naming the first offending field. The returned record
// carries no identity or timestamps; callers assign those.
func ValidateBuyer(in BuyerInput) (*Buyer, error) {
	fullName := strings.TrimSpace(in.FullName)
	if n := utf8.RuneCountInString(fullName); n < fullNameMinLen || n > fullNameMaxLen {
		return nil, NewValidationError("fullName", fmt.Sprintf("must be between %d and %d characters", fullNameMinLen, fullNameMaxLen))
	}

	phone := strings.TrimSpace(in.Phone)
	if !phoneRegex.MatchString(phone) {
		return nil, NewValidationError("phone", "must be 10 to 15 digits")
	}

	var email *string
	if v := strings.TrimSpace(in.Email); v != "" {
		if !emailRegex.MatchString(v) {
			return nil, NewValidationError("email", "is not a valid email address")
		}
		email = &v
	}

	var notes *string
	if v := strings.TrimSpace(in.Notes); v != "" {
		if utf8.RuneCountInString(v) > notesMaxLen {
			return nil, NewValidationError("notes", fmt.Sprintf("must be at most %d characters", notesMaxLen))
		}
		notes = &v
	}

	city := City(strings.TrimSpace(in.City))
	if !cities[city] {
		return nil, NewValidationError("city", fmt.Sprintf("%q is not a recognized city", in.City))
	}

	propertyType := PropertyType(strings.TrimSpace(in.PropertyType))
	if !propertyTypes[propertyType] {
		return nil, NewValidationError("propertyType", fmt.Sprintf("%q is not a recognized property type", in.PropertyType))
	}

	var bhk *BHK
	if v := strings.TrimSpace(in.BHK); v != "" {
		candidate := BHK(v)
		if !bhks[candidate] {
			return nil, NewValidationError("bhk", fmt.Sprintf("%q is not a recognized bhk value", in.BHK))
		}
		bhk = &candidate
	}

	purpose := Purpose(strings.TrimSpace(in.Purpose))
	if !purposes[purpose] {
		return nil, NewValidationError("purpose", fmt.Sprintf("%q is not a recognized purpose", in.Purpose))
	}

	timeline := Timeline(strings.TrimSpace(in.Timeline))
	if !timelines[timeline] {
		return nil, NewValidationError("timeline", fmt.Sprintf("%q is not a recognized timeline", in.Timeline))
	}

	source := Source(strings.TrimSpace(in.Source))
	if !sources[source] {
		return nil, NewValidationError("source", fmt.Sprintf("%q is not a recognized source", in.Source))
	}

	status := StatusNew
	if v := strings.TrimSpace(in.Status); v != "" {
		status = Status(v)
		if !statuses[status] {
			return nil, NewValidationError("status", fmt.Sprintf("%q is not a recognized status", in.Status))
		}
	}

	budgetMin, err := parseBudget("budgetMin", in.BudgetMin)
	if err != nil {
		return nil, err
	}
	budgetMax, err := parseBudget("budgetMax", in.BudgetMax)
	if err != nil {
		return nil, err
	}
	if budgetMin != nil && budgetMax != nil && *budgetMax < *budgetMin {
		return nil, NewValidationError("budgetMax", "must be greater than or equal to budgetMin")
	}

	tags := in.Tags
	if tags == nil && in.RawTags != "" {
		tags = SplitTags(in.RawTags)
	}
	tags = cleanTags(tags)

	buyer := &Buyer{
		FullName:     fullName,
		Email:        email,
		Phone:        phone,
		City:         city,
		PropertyType: propertyType,
		BHK:          bhk,
		Purpose:      purpose,
		BudgetMin:    budgetMin,
		BudgetMax:    budgetMax,
		Timeline:     timeline,
		Source:       source,
		Notes:        notes,
		Tags:         tags,
		Status:       status,
	}

	if buyer.NeedsBHK() && buyer.BHK == nil {
		return nil, NewValidationError("bhk", "is required for Apartment and Villa listings")
	}

	return buyer, nil
}

// parseBudget coerces a raw budget string. Empty means absent; anything else
// must parse to a positive integer.
func parseBudget(field, raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, NewValidationError(field, "must be an integer")
	}
	if value <= 0 {
		return nil, NewValidationError(field, "must be a positive integer")
	}
	return &value, nil
}

func cleanTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if v := strings.TrimSpace(t); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// csvColumns is the canonical column order shared by import and export.
var csvColumns = []string{
	"fullName", "email", "phone", "city", "propertyType", "bhk", "purpose",
	"budgetMin", "budgetMax", "timeline", "source", "notes", "tags", "status",
}

// CSVColumns returns the canonical CSV column order.
func CSVColumns() []string {
	out := make([]string, len(csvColumns))
	copy(out, csvColumns)
	return out
}

// csvRequired are the columns a CSV row must fill before normalization is
// attempted. The strict validator re-checks everything afterwards; this pass
// only rejects rows that are obviously incomplete as text.
var csvRequired = []string{
	"fullName", "phone", "city", "propertyType", "purpose", "timeline", "source",
}

// ValidateCSVRow is the loose, string-shape-only pass applied to raw CSV rows.
// It defers numeric and enum coercion to ValidateBuyer.
func ValidateCSVRow(row map[string]string) error {
	for _, col := range csvRequired {
		if strings.TrimSpace(row[col]) == "" {
			return NewValidationError(col, "is required")
		}
	}
	return nil
}

// BuyerInputFromCSVRow maps a header-keyed CSV row onto the validator's
// field bag. Tags stay as the raw comma-joined cell.
func BuyerInputFromCSVRow(row map[string]string) BuyerInput {
	return BuyerInput{
		FullName:     row["fullName"],
		Email:        row["email"],
		Phone:        row["phone"],
		City:         row["city"],
		PropertyType: row["propertyType"],
		BHK:          row["bhk"],
		Purpose:      row["purpose"],
		BudgetMin:    row["budgetMin"],
		BudgetMax:    row["budgetMax"],
		Timeline:     row["timeline"],
		Source:       row["source"],
		Notes:        row["notes"],
		RawTags:      row["tags"],
		Status:       row["status"],
	}
}

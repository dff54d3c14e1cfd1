package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// BuyerPatch is a partial update as submitted by a client. Nil pointers mean
// "no change requested"; pointed-to empty strings clear optional fields. All
// values are raw text so the patch can be merged and re-validated through the
// same rules as a create. UpdatedAt carries the concurrency token the caller
// last observed and is never treated as a field change.
type BuyerPatch struct {
	FullName     *string
	Email        *string
	Phone        *string
	City         *string
	PropertyType *string
	BHK          *string
	Purpose      *string
	BudgetMin    *string
	BudgetMax    *string
	Timeline     *string
	Source       *string
	Notes        *string
	Tags         []string
	Status       *string
	UpdatedAt    *time.Time
}

// IsZero reports whether the patch requests no field changes at all.
func (p BuyerPatch) IsZero() bool {
	return p.FullName == nil && p.Email == nil && p.Phone == nil &&
		p.City == nil && p.PropertyType == nil && p.BHK == nil &&
		p.Purpose == nil && p.BudgetMin == nil && p.BudgetMax == nil &&
		p.Timeline == nil && p.Source == nil && p.Notes == nil &&
		p.Tags == nil && p.Status == nil
}

// Input converts a typed record back into the validator's field bag, so a
// patch can be overlaid and the merged candidate re-validated in full.
func (b *Buyer) Input() BuyerInput {
	in := BuyerInput{
		FullName:     b.FullName,
		Phone:        b.Phone,
		City:         string(b.City),
		PropertyType: string(b.PropertyType),
		Purpose:      string(b.Purpose),
		Timeline:     string(b.Timeline),
		Source:       string(b.Source),
		Status:       string(b.Status),
		Tags:         b.Tags,
	}
	if b.Email != nil {
		in.Email = *b.Email
	}
	if b.BHK != nil {
		in.BHK = string(*b.BHK)
	}
	if b.Notes != nil {
		in.Notes = *b.Notes
	}
	if b.BudgetMin != nil {
		in.BudgetMin = fmt.Sprintf("%d", *b.BudgetMin)
	}
	if b.BudgetMax != nil {
		in.BudgetMax = fmt.Sprintf("%d", *b.BudgetMax)
	}
	return in
}

// ApplyPatch overlays the provided fields onto the record and validates the
// merged candidate with the full rule set, cross-field rules included.
// Identity and timestamps are carried over from the existing record.
func (b *Buyer) ApplyPatch(p BuyerPatch) (*Buyer, error) {
	in := b.Input()
	if p.FullName != nil {
		in.FullName = *p.FullName
	}
	if p.Email != nil {
		in.Email = *p.Email
	}
	if p.Phone != nil {
		in.Phone = *p.Phone
	}
	if p.City != nil {
		in.City = *p.City
	}
	if p.PropertyType != nil {
		in.PropertyType = *p.PropertyType
	}
	if p.BHK != nil {
		in.BHK = *p.BHK
	}
	if p.Purpose != nil {
		in.Purpose = *p.Purpose
	}
	if p.BudgetMin != nil {
		in.BudgetMin = *p.BudgetMin
	}
	if p.BudgetMax != nil {
		in.BudgetMax = *p.BudgetMax
	}
	if p.Timeline != nil {
		in.Timeline = *p.Timeline
	}
	if p.Source != nil {
		in.Source = *p.Source
	}
	if p.Notes != nil {
		in.Notes = *p.Notes
	}
	if p.Tags != nil {
		in.Tags = p.Tags
		in.RawTags = ""
	}
	if p.Status != nil {
		in.Status = *p.Status
	}

	merged, err := ValidateBuyer(in)
	if err != nil {
		return nil, err
	}
	merged.ID = b.ID
	merged.OwnerID = b.OwnerID
	merged.CreatedAt = b.CreatedAt
	merged.UpdatedAt = b.UpdatedAt
	return merged, nil
}

// FieldChange is an [old, new] value pair for one changed field.
type FieldChange struct {
	Old any
	New any
}

// MarshalJSON serializes the pair as a two-element array.
func (c FieldChange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{c.Old, c.New})
}

// UnmarshalJSON restores the pair from its array form.
func (c *FieldChange) UnmarshalJSON(data []byte) error {
	var pair [2]any
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	c.Old = pair[0]
	c.New = pair[1]
	return nil
}

// FieldChanges maps a changed field name to its [old, new] pair.
type FieldChanges map[string]FieldChange

// DiffBuyers computes the effective field-level delta between the existing
// record and the merged result of a patch. Only fields the patch actually
// provided are compared; id and updatedAt never participate. An empty result
// signals a no-op: callers must skip the write and the history append.
func DiffBuyers(existing, merged *Buyer, patch BuyerPatch) FieldChanges {
	changes := FieldChanges{}

	if patch.FullName != nil && existing.FullName != merged.FullName {
		changes["fullName"] = FieldChange{Old: existing.FullName, New: merged.FullName}
	}
	if patch.Email != nil && !equalStrPtr(existing.Email, merged.Email) {
		changes["email"] = FieldChange{Old: strPtrValue(existing.Email), New: strPtrValue(merged.Email)}
	}
	if patch.Phone != nil && existing.Phone != merged.Phone {
		changes["phone"] = FieldChange{Old: existing.Phone, New: merged.Phone}
	}
	if patch.City != nil && existing.City != merged.City {
		changes["city"] = FieldChange{Old: string(existing.City), New: string(merged.City)}
	}
	if patch.PropertyType != nil && existing.PropertyType != merged.PropertyType {
		changes["propertyType"] = FieldChange{Old: string(existing.PropertyType), New: string(merged.PropertyType)}
	}
	if patch.BHK != nil && !equalBHKPtr(existing.BHK, merged.BHK) {
		changes["bhk"] = FieldChange{Old: bhkPtrValue(existing.BHK), New: bhkPtrValue(merged.BHK)}
	}
	if patch.Purpose != nil && existing.Purpose != merged.Purpose {
		changes["purpose"] = FieldChange{Old: string(existing.Purpose), New: string(merged.Purpose)}
	}
	if patch.BudgetMin != nil && !equalIntPtr(existing.BudgetMin, merged.BudgetMin) {
		changes["budgetMin"] = FieldChange{Old: intPtrValue(existing.BudgetMin), New: intPtrValue(merged.BudgetMin)}
	}
	if patch.BudgetMax != nil && !equalIntPtr(existing.BudgetMax, merged.BudgetMax) {
		changes["budgetMax"] = FieldChange{Old: intPtrValue(existing.BudgetMax), New: intPtrValue(merged.BudgetMax)}
	}
	if patch.Timeline != nil && existing.Timeline != merged.Timeline {
		changes["timeline"] = FieldChange{Old: string(existing.Timeline), New: string(merged.Timeline)}
	}
	if patch.Source != nil && existing.Source != merged.Source {
		changes["source"] = FieldChange{Old: string(existing.Source), New: string(merged.Source)}
	}
	if patch.Notes != nil && !equalStrPtr(existing.Notes, merged.Notes) {
		changes["notes"] = FieldChange{Old: strPtrValue(existing.Notes), New: strPtrValue(merged.Notes)}
	}
	if patch.Tags != nil && !equalTags(existing.Tags, merged.Tags) {
		changes["tags"] = FieldChange{Old: tagsValue(existing.Tags), New: tagsValue(merged.Tags)}
	}
	if patch.Status != nil && existing.Status != merged.Status {
		changes["status"] = FieldChange{Old: string(existing.Status), New: string(merged.Status)}
	}

	return changes
}

func equalStrPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalBHKPtr(a, b *BHK) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func strPtrValue(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func intPtrValue(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func bhkPtrValue(p *BHK) any {
	if p == nil {
		return nil
	}
	return string(*p)
}

func tagsValue(tags []string) any {
	if tags == nil {
		return nil
	}
	return tags
}

package domain

import "time"

// City is the catchment area a lead is looking in.
type City string

const (
	CityChandigarh City = "Chandigarh"
	CityMohali     City = "Mohali"
	CityZirakpur   City = "Zirakpur"
	CityPanchkula  City = "Panchkula"
	CityOther      City = "Other"
)

// PropertyType classifies the property a lead is interested in.
type PropertyType string

const (
	PropertyApartment PropertyType = "Apartment"
	PropertyVilla     PropertyType = "Villa"
	PropertyPlot      PropertyType = "Plot"
	PropertyOffice    PropertyType = "Office"
	PropertyRetail    PropertyType = "Retail"
)

// BHK is the bedroom-count category for residential property types.
type BHK string

const (
	BHKOne    BHK = "1"
	BHKTwo    BHK = "2"
	BHKThree  BHK = "3"
	BHKFour   BHK = "4"
	BHKStudio BHK = "Studio"
)

// Purpose distinguishes buy from rent leads.
type Purpose string

const (
	PurposeBuy  Purpose = "Buy"
	PurposeRent Purpose = "Rent"
)

// Timeline is the lead's purchase horizon.
type Timeline string

const (
	TimelineUnder3M   Timeline = "0-3m"
	Timeline3To6M     Timeline = "3-6m"
	TimelineOver6M    Timeline = ">6m"
	TimelineExploring Timeline = "Exploring"
)

// Source records how the lead reached us.
type Source string

const (
	SourceWebsite  Source = "Website"
	SourceReferral Source = "Referral"
	SourceWalkIn   Source = "Walk_in"
	SourceCall     Source = "Call"
	SourceOther    Source = "Other"
)

// Status is the lead's position in the sales funnel.
type Status string

const (
	StatusNew         Status = "New"
	StatusQualified   Status = "Qualified"
	StatusContacted   Status = "Contacted"
	StatusVisited     Status = "Visited"
	StatusNegotiation Status = "Negotiation"
	StatusConverted   Status = "Converted"
	StatusDropped     Status = "Dropped"
)

// Buyer represents a real-estate lead owned by the user who captured it.
// UpdatedAt doubles as the optimistic-concurrency token: clients must echo
// the value they last observed when submitting an update.
type Buyer struct {
	ID           string       `json:"id"`
	OwnerID      string       `json:"ownerId"`
	FullName     string       `json:"fullName"`
	Email        *string      `json:"email,omitempty"`
	Phone        string       `json:"phone"`
	City         City         `json:"city"`
	PropertyType PropertyType `json:"propertyType"`
	BHK          *BHK         `json:"bhk,omitempty"`
	Purpose      Purpose      `json:"purpose"`
	BudgetMin    *int         `json:"budgetMin,omitempty"`
	BudgetMax    *int         `json:"budgetMax,omitempty"`
	Timeline     Timeline     `json:"timeline"`
	Source       Source       `json:"source"`
	Notes        *string      `json:"notes,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	Status       Status       `json:"status"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// NeedsBHK reports whether the bedroom-count category is mandatory for the
// buyer's property type.
func (b *Buyer) NeedsBHK() bool {
	return b != nil && (b.PropertyType == PropertyApartment || b.PropertyType == PropertyVilla)
}

func (b *Buyer) IsOwnedBy(userID string) bool {
	return b != nil && userID != "" && b.OwnerID == userID
}

var (
	cities = map[City]bool{
		CityChandigarh: true, CityMohali: true, CityZirakpur: true,
		CityPanchkula: true, CityOther: true,
	}
	propertyTypes = map[PropertyType]bool{
		PropertyApartment: true, PropertyVilla: true, PropertyPlot: true,
		PropertyOffice: true, PropertyRetail: true,
	}
	bhks = map[BHK]bool{
		BHKOne: true, BHKTwo: true, BHKThree: true, BHKFour: true, BHKStudio: true,
	}
	purposes = map[Purpose]bool{
		PurposeBuy: true, PurposeRent: true,
	}
	timelines = map[Timeline]bool{
		TimelineUnder3M: true, Timeline3To6M: true, TimelineOver6M: true,
		TimelineExploring: true,
	}
	sources = map[Source]bool{
		SourceWebsite: true, SourceReferral: true, SourceWalkIn: true,
		SourceCall: true, SourceOther: true,
	}
	statuses = map[Status]bool{
		StatusNew: true, StatusQualified: true, StatusContacted: true,
		StatusVisited: true, StatusNegotiation: true, StatusConverted: true,
		StatusDropped: true,
	}
)

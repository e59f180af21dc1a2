package model

import "github.com/shopspring/decimal"

// PriceType describes how the unit price applies to travellers.
type PriceType string

const (
	PriceTypePerPerson PriceType = "per_person"
	PriceTypePerCouple PriceType = "per_couple"
)

// Label maps a price type to its display unit.
func (p PriceType) Label() UnitLabel {
	if p == PriceTypePerCouple {
		return UnitLabelPerCouple
	}
	return UnitLabelPerPerson
}

// Pricing is the authoritative price of a product as reported by the content backend.
type Pricing struct {
	ProductID   string
	Slug        string
	Title       string
	Destination string
	Price       decimal.Decimal
	PriceType   PriceType
	// DepartureDate is set when a scheduled batch was selected.
	DepartureDate string
}

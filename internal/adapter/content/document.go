package content

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Product is a package or departure in the shape the pricing resolver reads.
type Product struct {
	ID          string
	Slug        string
	Title       string
	Destination string
	Price       decimal.Decimal
	PriceType   string
}

// Batch is one scheduled date of a departure.
type Batch struct {
	Date   string
	Status string
	Price  decimal.Decimal
}

// Departure is a scheduled departure with its batches.
type Departure struct {
	Product
	Batches []Batch
}

func productFrom(doc map[string]any) Product {
	return Product{
		ID:          stringField(doc, "_id", "id"),
		Slug:        stringField(doc, "slug"),
		Title:       stringField(doc, "title", "name"),
		Destination: stringField(doc, "destination", "location"),
		Price:       priceField(doc, "price", "basePrice", "startingPrice"),
		PriceType:   stringField(doc, "priceType", "pricingType", "pricePer"),
	}
}

func productsFrom(docs []map[string]any) []Product {
	out := make([]Product, 0, len(docs))
	for _, doc := range docs {
		out = append(out, productFrom(doc))
	}
	return out
}

func departureFrom(doc map[string]any) *Departure {
	d := &Departure{Product: productFrom(doc)}
	for _, key := range []string{"batches", "departures", "dates"} {
		items, ok := doc[key].([]any)
		if !ok {
			continue
		}
		for _, item := range items {
			b, ok := item.(map[string]any)
			if !ok {
				continue
			}
			d.Batches = append(d.Batches, Batch{
				Date:   stringField(b, "date", "departureDate", "startDate"),
				Status: stringField(b, "status", "availability"),
				Price:  priceField(b, "price", "overridePrice", "specialPrice"),
			})
		}
		break
	}
	return d
}

// unwrapItem returns the first object found under one of keys, or raw itself.
func unwrapItem(raw any, keys ...string) (map[string]any, bool) {
	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, false
	}
	for _, key := range keys {
		if inner, ok := doc[key].(map[string]any); ok {
			return inner, true
		}
	}
	return doc, true
}

// unwrapList accepts a bare array or an object wrapping one.
func unwrapList(raw any) []map[string]any {
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case map[string]any:
		for _, key := range []string{"data", "packages", "items", "results"} {
			switch inner := v[key].(type) {
			case []any:
				items = inner
			case map[string]any:
				return unwrapList(inner)
			}
			if items != nil {
				break
			}
		}
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if doc, ok := item.(map[string]any); ok {
			out = append(out, doc)
		}
	}
	return out
}

func stringField(doc map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := doc[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}

// priceField reads the first positive number among keys. Strings may carry thousands
// separators and a currency prefix.
func priceField(doc map[string]any, keys ...string) decimal.Decimal {
	for _, key := range keys {
		var d decimal.Decimal
		switch v := doc[key].(type) {
		case json.Number:
			parsed, ok := parseAmount(v.String())
			if !ok {
				continue
			}
			d = parsed
		case string:
			parsed, ok := parseAmount(v)
			if !ok {
				continue
			}
			d = parsed
		case float64:
			d = decimal.NewFromFloat(v)
		default:
			continue
		}
		if d.IsPositive() {
			return d
		}
	}
	return decimal.Zero
}

func parseAmount(raw string) (decimal.Decimal, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, raw)
	cleaned = strings.TrimLeft(cleaned, ".")
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

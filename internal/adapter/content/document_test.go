package content

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := map[string]string{
		"45,000":     "45000",
		"₹ 1,20,000": "120000",
		"Rs. 5000":   "5000",
		"12.50":      "12.5",
		"INR 999.99": "999.99",
	}
	for in, want := range cases {
		got, ok := parseAmount(in)
		if !ok {
			t.Errorf("parseAmount(%q) failed", in)
			continue
		}
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("parseAmount(%q) = %s, want %s", in, got, want)
		}
	}

	for _, in := range []string{"", "on request", "1.2.3"} {
		if _, ok := parseAmount(in); ok {
			t.Errorf("expected parseAmount(%q) to fail", in)
		}
	}
}

func TestUnwrapList(t *testing.T) {
	nested := map[string]any{"data": map[string]any{"packages": []any{map[string]any{"slug": "a"}, "skip"}}}
	if got := unwrapList(nested); len(got) != 1 || got[0]["slug"] != "a" {
		t.Fatalf("unexpected nested unwrap %v", got)
	}
	if got := unwrapList("text"); len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}
}

func TestStringFieldPrefersFirstNonEmpty(t *testing.T) {
	doc := map[string]any{"title": "  ", "name": "Goa"}
	if got := stringField(doc, "title", "name"); got != "Goa" {
		t.Fatalf("expected fallback to name, got %q", got)
	}
}

func TestPriceFieldSkipsNonPositiveVariants(t *testing.T) {
	cases := []struct {
		name string
		doc  map[string]any
		want string
	}{
		{"zero price falls back", map[string]any{"price": float64(0), "basePrice": float64(5000)}, "5000"},
		{"empty string falls back", map[string]any{"price": "", "startingPrice": "12,500"}, "12500"},
		{"negative falls back", map[string]any{"price": "-1", "basePrice": "4500"}, "4500"},
		{"first positive wins", map[string]any{"price": "3000", "basePrice": "5000"}, "3000"},
		{"nothing positive", map[string]any{"price": float64(0), "basePrice": "0"}, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := productFrom(tc.doc).Price
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}

	batch := map[string]any{"price": float64(0), "overridePrice": "7000"}
	if got := priceField(batch, "price", "overridePrice", "specialPrice"); !got.Equal(decimal.NewFromInt(7000)) {
		t.Fatalf("expected batch override price, got %s", got)
	}
}

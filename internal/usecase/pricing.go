package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/polkiloo/travelpay/internal/adapter/content"
	domainErrors "github.com/polkiloo/travelpay/internal/domain/errors"
	"github.com/polkiloo/travelpay/internal/domain/model"
)

// Catalog reads authoritative product data from the content backend.
type Catalog interface {
	Departure(ctx context.Context, slug string) (*content.Departure, error)
	PackageCatalog(ctx context.Context) ([]content.Product, error)
	PackagesBySlug(ctx context.Context, slug string) ([]content.Product, error)
	PackageBySlug(ctx context.Context, slug string) (*content.Product, error)
}

// PriceSource is one strategy for locating a package price.
type PriceSource interface {
	Name() string
	Lookup(ctx context.Context, slug string) (*content.Product, error)
}

// PricingQuery identifies the product being purchased.
type PricingQuery struct {
	CheckoutType  model.CheckoutType
	Slug          string
	DepartureDate string
}

// PricingUseCase resolves server-side prices. Client supplied prices are never read.
type PricingUseCase struct {
	catalog Catalog
	sources []PriceSource
	logger  *slog.Logger
}

// NewPricingUseCase builds a resolver. Packages are looked up in the aggregate listing,
// then the filtered listing, then by slug.
func NewPricingUseCase(catalog Catalog, logger *slog.Logger) *PricingUseCase {
	return &PricingUseCase{
		catalog: catalog,
		sources: []PriceSource{
			aggregateSource{catalog: catalog},
			listingSource{catalog: catalog},
			slugSource{catalog: catalog},
		},
		logger: logger,
	}
}

// Resolve returns the price for q or ErrPricingNotFound.
func (u *PricingUseCase) Resolve(ctx context.Context, q PricingQuery) (*model.Pricing, error) {
	slug := strings.TrimSpace(q.Slug)
	if slug == "" {
		return nil, domainErrors.Invalid("packageSlug", "is required")
	}
	if q.CheckoutType == model.CheckoutTypeFixedDeparture {
		return u.resolveDeparture(ctx, slug, q.DepartureDate)
	}
	return u.resolvePackage(ctx, slug)
}

func (u *PricingUseCase) resolveDeparture(ctx context.Context, slug, date string) (*model.Pricing, error) {
	dep, err := u.catalog.Departure(ctx, slug)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrPricingNotFound
		}
		return nil, fmt.Errorf("%w: departure lookup: %v", domainErrors.ErrUpstream, err)
	}

	pricing := toPricing(dep.Product, slug)
	if date = datePrefix(date); date != "" {
		for _, b := range dep.Batches {
			if datePrefix(b.Date) != date || soldOut(b.Status) || !b.Price.IsPositive() {
				continue
			}
			pricing.Price = b.Price
			pricing.DepartureDate = date
			break
		}
	}
	if !pricing.Price.IsPositive() {
		return nil, domainErrors.ErrPricingNotFound
	}
	return pricing, nil
}

func (u *PricingUseCase) resolvePackage(ctx context.Context, slug string) (*model.Pricing, error) {
	var failures int
	var lastErr error
	for _, src := range u.sources {
		product, err := src.Lookup(ctx, slug)
		if err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				continue
			}
			failures++
			lastErr = err
			u.logger.Warn("pricing source failed", slog.String("source", src.Name()), slog.String("slug", slug), slog.String("error", err.Error()))
			continue
		}
		if product == nil || !product.Price.IsPositive() {
			continue
		}
		return toPricing(*product, slug), nil
	}
	if failures == len(u.sources) {
		return nil, fmt.Errorf("%w: pricing sources: %v", domainErrors.ErrUpstream, lastErr)
	}
	return nil, domainErrors.ErrPricingNotFound
}

func toPricing(p content.Product, slug string) *model.Pricing {
	if p.Slug != "" {
		slug = p.Slug
	}
	return &model.Pricing{
		ProductID:   p.ID,
		Slug:        slug,
		Title:       p.Title,
		Destination: p.Destination,
		Price:       p.Price,
		PriceType:   normalizePriceType(p.PriceType),
	}
}

// normalizePriceType accepts spellings such as "Per Couple", "per-couple" and "couple".
func normalizePriceType(raw string) model.PriceType {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = strings.NewReplacer(" ", "_", "-", "_").Replace(v)
	switch v {
	case "per_couple", "couple", "percouple":
		return model.PriceTypePerCouple
	default:
		return model.PriceTypePerPerson
	}
}

func soldOut(status string) bool {
	v := strings.ToLower(status)
	v = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(v)
	return v == "soldout" || v == "full" || v == "closed"
}

func datePrefix(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) < 10 {
		return raw
	}
	return raw[:10]
}

func findBySlug(items []content.Product, slug string) *content.Product {
	for i := range items {
		if strings.EqualFold(items[i].Slug, slug) {
			return &items[i]
		}
	}
	return nil
}

type aggregateSource struct{ catalog Catalog }

func (aggregateSource) Name() string { return "aggregate" }

func (s aggregateSource) Lookup(ctx context.Context, slug string) (*content.Product, error) {
	items, err := s.catalog.PackageCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if p := findBySlug(items, slug); p != nil {
		return p, nil
	}
	return nil, domainErrors.ErrNotFound
}

type listingSource struct{ catalog Catalog }

func (listingSource) Name() string { return "listing" }

func (s listingSource) Lookup(ctx context.Context, slug string) (*content.Product, error) {
	items, err := s.catalog.PackagesBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if p := findBySlug(items, slug); p != nil {
		return p, nil
	}
	if len(items) == 1 && items[0].Slug == "" {
		return &items[0], nil
	}
	return nil, domainErrors.ErrNotFound
}

type slugSource struct{ catalog Catalog }

func (slugSource) Name() string { return "slug" }

func (s slugSource) Lookup(ctx context.Context, slug string) (*content.Product, error) {
	return s.catalog.PackageBySlug(ctx, slug)
}

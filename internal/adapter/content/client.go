package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	domainErrors "github.com/polkiloo/travelpay/internal/domain/errors"
	"github.com/polkiloo/travelpay/internal/domain/model"
)

// ErrUnauthorized indicates the backend rejected the user's bearer token.
var ErrUnauthorized = errors.New("unauthorized")

// UpstreamError represents an unexpected backend response or a transport failure.
type UpstreamError struct {
	Path       string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("content backend %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("content backend %s: status %d", e.Path, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Client talks to the content backend. Every call carries the internal service token.
type Client struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a backend client with the given timeout.
func NewClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse content backend url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("content backend url must be absolute")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: parsed,
		token:   token,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Departure fetches a scheduled departure by slug.
func (c *Client) Departure(ctx context.Context, slug string) (*Departure, error) {
	var raw any
	if err := c.getJSON(ctx, path.Join("/api/fixed-departures/slug", url.PathEscape(slug)), nil, "", &raw); err != nil {
		return nil, err
	}
	doc, ok := unwrapItem(raw, "data", "departure", "fixedDeparture")
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return departureFrom(doc), nil
}

// PackageCatalog fetches the aggregate package listing.
func (c *Client) PackageCatalog(ctx context.Context) ([]Product, error) {
	var raw any
	if err := c.getJSON(ctx, "/api/packages/all", nil, "", &raw); err != nil {
		return nil, err
	}
	return productsFrom(unwrapList(raw)), nil
}

// PackagesBySlug fetches the package listing filtered by slug.
func (c *Client) PackagesBySlug(ctx context.Context, slug string) ([]Product, error) {
	var raw any
	if err := c.getJSON(ctx, "/api/packages", url.Values{"slug": {slug}}, "", &raw); err != nil {
		return nil, err
	}
	return productsFrom(unwrapList(raw)), nil
}

// PackageBySlug fetches a single package document.
func (c *Client) PackageBySlug(ctx context.Context, slug string) (*Product, error) {
	var raw any
	if err := c.getJSON(ctx, path.Join("/api/packages/slug", url.PathEscape(slug)), nil, "", &raw); err != nil {
		return nil, err
	}
	doc, ok := unwrapItem(raw, "data", "package")
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	p := productFrom(doc)
	return &p, nil
}

// Profile resolves the owner of a bearer token.
func (c *Client) Profile(ctx context.Context, bearer string) (*model.Profile, error) {
	if bearer == "" {
		return nil, ErrUnauthorized
	}
	var raw any
	if err := c.getJSON(ctx, "/api/auth/me", nil, bearer, &raw); err != nil {
		return nil, err
	}
	doc, ok := unwrapItem(raw, "user", "data", "profile")
	if !ok {
		return nil, ErrUnauthorized
	}
	profile := &model.Profile{
		ID:    stringField(doc, "_id", "id"),
		Email: stringField(doc, "email"),
		Name:  stringField(doc, "name", "fullName"),
		Role:  stringField(doc, "role"),
	}
	if profile.ID == "" && profile.Email == "" {
		return nil, ErrUnauthorized
	}
	return profile, nil
}

func (c *Client) getJSON(ctx context.Context, p string, query url.Values, bearer string, dst any) error {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, p)
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("x-internal-token", c.token)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UpstreamError{Path: p, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return &UpstreamError{Path: p, Err: err}
		}
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(dst); err != nil {
			return &UpstreamError{Path: p, StatusCode: resp.StatusCode, Err: err}
		}
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return domainErrors.ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	default:
		c.logger.Error("content backend request failed", slog.String("path", p), slog.Int("status", resp.StatusCode))
		return &UpstreamError{Path: p, StatusCode: resp.StatusCode}
	}
}

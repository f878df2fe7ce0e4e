package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"

	"github.com/CreativeUnicorns/shopstate"
)

const defaultHTTPTimeout = 10 * time.Second

// APIError is returned for a non-2xx response from the catalog API.
type APIError struct {
	Status  int
	Message string
	Code    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("catalog api: %d %s (%s)", e.Status, e.Message, e.Code)
	}
	return fmt.Sprintf("catalog api: %d %s", e.Status, e.Message)
}

// Is makes a 404 match ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		if c != nil {
			s.client = c
		}
	}
}

// WithLogger sets the logger for request failures.
func WithLogger(l shopstate.Logger) HTTPOption {
	return func(s *HTTPSource) {
		if l != nil {
			s.logger = l
		}
	}
}

// HTTPSource reads the catalog from the remote API. Concurrent identical
// GET requests share one round trip. Requests are traced through the global
// OpenTelemetry provider.
type HTTPSource struct {
	baseURL *url.URL
	client  *http.Client
	logger  shopstate.Logger
	group   singleflight.Group

	mu    sync.RWMutex
	token string
}

// NewHTTPSource creates a client for the API at baseURL, or DefaultAPIURL when empty.
func NewHTTPSource(baseURL string, opts ...HTTPOption) (*HTTPSource, error) {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: catalog url %q", shopstate.ErrInvalidInput, baseURL)
	}

	client := &http.Client{
		Timeout:   defaultHTTPTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	s := &HTTPSource{
		baseURL: u,
		client:  client,
		logger:  shopstate.NewDefaultLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SetAuthToken sends token as a bearer credential on subsequent requests.
func (s *HTTPSource) SetAuthToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// ClearAuthToken stops sending a bearer credential.
func (s *HTTPSource) ClearAuthToken() {
	s.SetAuthToken("")
}

// Products returns one page of the product listing.
func (s *HTTPSource) Products(ctx context.Context, q ProductQuery) (ProductPage, error) {
	params := url.Values{}
	setInt(params, "page", q.Page)
	setInt(params, "limit", q.Limit)
	setInt64(params, "categoryId", q.CategoryID)
	setInt64(params, "brandId", q.BrandID)
	if q.SortBy != "" {
		params.Set("sortBy", string(q.SortBy))
	}

	var page paginatedDTO[productDTO]
	if err := s.get(ctx, "/api/products", params, &page); err != nil {
		return ProductPage{}, err
	}
	return toProductPage(page), nil
}

// Product returns the product with id.
func (s *HTTPSource) Product(ctx context.Context, id int64) (shopstate.Product, error) {
	var dto productDTO
	if err := s.get(ctx, "/api/products/"+strconv.FormatInt(id, 10), nil, &dto); err != nil {
		return shopstate.Product{}, err
	}
	return mapProduct(dto), nil
}

// ProductBySlug returns the product with slug.
func (s *HTTPSource) ProductBySlug(ctx context.Context, slug string) (shopstate.Product, error) {
	var dto productDTO
	if err := s.get(ctx, "/api/products/slug/"+url.PathEscape(slug), nil, &dto); err != nil {
		return shopstate.Product{}, err
	}
	return mapProduct(dto), nil
}

// Search runs a server-side product search.
func (s *HTTPSource) Search(ctx context.Context, query string, q SearchQuery) (ProductPage, error) {
	params := url.Values{}
	params.Set("q", query)
	setInt(params, "page", q.Page)
	setInt(params, "limit", q.Limit)

	var page paginatedDTO[productDTO]
	if err := s.get(ctx, "/api/products/search", params, &page); err != nil {
		return ProductPage{}, err
	}
	return toProductPage(page), nil
}

// Categories returns the category tree.
func (s *HTTPSource) Categories(ctx context.Context) ([]shopstate.Category, error) {
	params := url.Values{}
	params.Set("hasTree", "true")

	var dtos []categoryDTO
	if err := s.get(ctx, "/api/categories", params, &dtos); err != nil {
		return nil, err
	}
	out := make([]shopstate.Category, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, mapCategory(dto))
	}
	return out, nil
}

// Category returns the category with id.
func (s *HTTPSource) Category(ctx context.Context, id int64) (shopstate.Category, error) {
	var dto categoryDTO
	if err := s.get(ctx, "/api/categories/"+strconv.FormatInt(id, 10), nil, &dto); err != nil {
		return shopstate.Category{}, err
	}
	return mapCategory(dto), nil
}

// CategoryBySlug returns the category with slug.
func (s *HTTPSource) CategoryBySlug(ctx context.Context, slug string) (shopstate.Category, error) {
	var dto categoryDTO
	if err := s.get(ctx, "/api/categories/slug/"+url.PathEscape(slug), nil, &dto); err != nil {
		return shopstate.Category{}, err
	}
	return mapCategory(dto), nil
}

// Brands returns every brand.
func (s *HTTPSource) Brands(ctx context.Context) ([]shopstate.Brand, error) {
	var dtos []brandDTO
	if err := s.get(ctx, "/api/brands", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]shopstate.Brand, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, mapBrand(dto))
	}
	return out, nil
}

// get fetches path, which must already be escaped. Concurrent calls for the
// same URL share one request; it is detached from the first caller's
// cancellation and bounded by the client timeout instead.
func (s *HTTPSource) get(ctx context.Context, path string, params url.Values, into any) error {
	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("catalog: invalid path %q: %w", path, err)
	}
	ref.RawQuery = params.Encode()
	key := s.baseURL.ResolveReference(ref).String()

	ch := s.group.DoChan(key, func() (any, error) {
		return s.fetch(context.WithoutCancel(ctx), key)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		s.logger.Warn("Catalog request failed", "url", key, "error", res.Err)
		return res.Err
	}
	data, _ := res.Val.([]byte)
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("catalog: decode %s: %w", path, err)
	}
	return nil
}

func (s *HTTPSource) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: request %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("catalog: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: "An error occurred"}
		if isJSON(resp.Header.Get("Content-Type")) {
			var dto apiErrorDTO
			if json.Unmarshal(body, &dto) == nil {
				if dto.Message != "" {
					apiErr.Message = dto.Message
				}
				apiErr.Code = dto.Code
			}
		}
		return nil, apiErr
	}

	if !isJSON(resp.Header.Get("Content-Type")) {
		return nil, nil
	}
	return body, nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, "application/json")
	}
	return mediaType == "application/json"
}

func toProductPage(page paginatedDTO[productDTO]) ProductPage {
	return ProductPage{
		Products:   mapProducts(page.Data),
		Page:       page.Meta.Page,
		Limit:      page.Meta.Limit,
		Total:      page.Meta.Total,
		TotalPages: page.Meta.TotalPages,
	}
}

func setInt(v url.Values, key string, n int) {
	if n > 0 {
		v.Set(key, strconv.Itoa(n))
	}
}

func setInt64(v url.Values, key string, n int64) {
	if n > 0 {
		v.Set(key, strconv.FormatInt(n, 10))
	}
}

var _ Source = (*HTTPSource)(nil)

// IsNotFound reports whether err means the requested catalog entry does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/CreativeUnicorns/shopstate"
)

const productJSON = `{
	"id": 5,
	"name": "Antep Fıstığı",
	"slug": "antep-fistigi",
	"description": null,
	"parentCategoryId": 12,
	"brandId": 3,
	"variants": [
		{
			"id": 51, "price": 250, "stock": 4, "barcode": "869", "sku": "AF-500",
			"options": [{"title": "Weight", "value": "500g"}],
			"thumbnails": [{"id": 1, "url": "https://cdn/1.jpg"}, {"id": 2, "url": "https://cdn/2.jpg", "altText": "Side"}]
		},
		{"id": 52, "price": 480, "stock": 0, "barcode": "870", "sku": "AF-1000"}
	]
}`

type quietLogger struct{}

func (quietLogger) Debug(string, ...any) {}
func (quietLogger) Info(string, ...any) {}
func (quietLogger) Warn(string, ...any) {}
func (quietLogger) Error(string, ...any) {}
func (quietLogger) SetLevel(shopstate.LogLevel) {}

func newTestServer(t *testing.T, handler http.HandlerFunc) *HTTPSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := NewHTTPSource(srv.URL, WithHTTPClient(srv.Client()), WithLogger(quietLogger{}))
	require.NoError(t, err)
	return s
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestNewHTTPSource(t *testing.T) {
	s, err := NewHTTPSource("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, s.baseURL.String())

	_, err = NewHTTPSource("not a url")
	assert.ErrorIs(t, err, shopstate.ErrInvalidInput)
}

func TestHTTPSource_DefaultClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"id":1,"name":"Koska","slug":"koska"}]`)
	}))
	t.Cleanup(srv.Close)

	s, err := NewHTTPSource(srv.URL, WithLogger(quietLogger{}))
	require.NoError(t, err)
	assert.IsType(t, &otelhttp.Transport{}, s.client.Transport)
	assert.Equal(t, defaultHTTPTimeout, s.client.Timeout)

	brands, err := s.Brands(context.Background())
	require.NoError(t, err)
	assert.Len(t, brands, 1)
}

func TestHTTPSource_Product(t *testing.T) {
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	orig := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = orig })

	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/5", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, productJSON)
	})

	p, err := s.Product(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, int64(5), p.ID)
	assert.Equal(t, "", p.Description)
	assert.Equal(t, int64(12), p.CategoryID)
	require.NotNil(t, p.BrandID)
	assert.Equal(t, int64(3), *p.BrandID)
	require.Len(t, p.Variants, 2)
	assert.Equal(t, int64(5), p.Variants[1].ProductID)
	assert.Equal(t, 250.0, p.Price())
	assert.Equal(t, []shopstate.ProductImage{
		{ID: 1, URL: "https://cdn/1.jpg", Alt: "Antep Fıstığı"},
		{ID: 2, URL: "https://cdn/2.jpg", Alt: "Side"},
	}, p.Images)
	assert.Equal(t, "2025-01-02T03:04:05Z", p.CreatedAt)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
}

func TestHTTPSource_ProductsQuery(t *testing.T) {
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "10", q.Get("limit"))
		assert.Equal(t, "12", q.Get("categoryId"))
		assert.Equal(t, "priceLowToHigh", q.Get("sortBy"))
		assert.False(t, q.Has("brandId"))
		writeJSON(w, http.StatusOK, `{"data":[`+productJSON+`],"meta":{"page":2,"limit":10,"total":11,"totalPages":2}}`)
	})

	page, err := s.Products(context.Background(), ProductQuery{Page: 2, Limit: 10, CategoryID: 12, SortBy: SortPriceLowToHigh})
	require.NoError(t, err)
	assert.Len(t, page.Products, 1)
	assert.Equal(t, ProductPage{Products: page.Products, Page: 2, Limit: 10, Total: 11, TotalPages: 2}, page)
}

func TestHTTPSource_Search(t *testing.T) {
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/search", r.URL.Path)
		assert.Equal(t, "bal kaymak", r.URL.Query().Get("q"))
		writeJSON(w, http.StatusOK, `{"data":[],"meta":{"page":1,"limit":20,"total":0,"totalPages":0}}`)
	})

	page, err := s.Search(context.Background(), "bal kaymak", SearchQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Products)
	assert.Equal(t, 1, page.Page)
}

func TestHTTPSource_Categories(t *testing.T) {
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/categories":
			assert.Equal(t, "true", r.URL.Query().Get("hasTree"))
			writeJSON(w, http.StatusOK, `[{"id":1,"name":"Gıda","slug":"gida","parentCategoryId":null,
				"children":[{"id":12,"name":"Kuruyemiş","slug":"kuruyemis","parentCategoryId":1}]}]`)
		case "/api/categories/slug/kuruyemis":
			writeJSON(w, http.StatusOK, `{"id":12,"name":"Kuruyemiş","slug":"kuruyemis","parentCategoryId":1}`)
		default:
			writeJSON(w, http.StatusNotFound, `{"message":"Category not found"}`)
		}
	})
	ctx := context.Background()

	tree, err := s.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Nil(t, tree[0].ParentID)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, int64(1), *tree[0].Children[0].ParentID)

	c, err := s.CategoryBySlug(ctx, "kuruyemis")
	require.NoError(t, err)
	assert.Equal(t, int64(12), c.ID)

	_, err = s.Category(ctx, 99)
	assert.True(t, IsNotFound(err))
}

func TestHTTPSource_Brands(t *testing.T) {
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"id":3,"name":"Koska","slug":"koska","websiteUrl":"https://koska.com"}]`)
	})

	brands, err := s.Brands(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []shopstate.Brand{{ID: 3, Name: "Koska", Slug: "koska", WebsiteURL: "https://koska.com"}}, brands)
}

func TestHTTPSource_AuthToken(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		writeJSON(w, http.StatusOK, `[]`)
	})
	ctx := context.Background()

	s.SetAuthToken("tok")
	_, err := s.Brands(ctx)
	require.NoError(t, err)

	s.ClearAuthToken()
	_, err = s.Brands(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer tok", ""}, seen)
}

func TestHTTPSource_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		json     bool
		expected APIError
	}{
		{
			name:     "json_error",
			status:   http.StatusBadRequest,
			body:     `{"message":"Invalid page","code":"BAD_PAGE"}`,
			json:     true,
			expected: APIError{Status: 400, Message: "Invalid page", Code: "BAD_PAGE"},
		},
		{
			name:     "plain_error",
			status:   http.StatusBadGateway,
			body:     "upstream down",
			expected: APIError{Status: 502, Message: "An error occurred"},
		},
		{
			name:     "json_without_message",
			status:   http.StatusInternalServerError,
			body:     `{}`,
			json:     true,
			expected: APIError{Status: 500, Message: "An error occurred"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.json {
					writeJSON(w, tt.status, tt.body)
					return
				}
				w.Header().Set("Content-Type", "text/plain")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := s.Product(context.Background(), 1)
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.expected, *apiErr)
			assert.False(t, IsNotFound(err))
		})
	}
}

func TestHTTPSource_NotFound(t *testing.T) {
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"message":"Product not found"}`)
	})

	_, err := s.ProductBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "Product not found")
}

func TestHTTPSource_NonJSONSuccessIsEmpty(t *testing.T) {
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	})

	brands, err := s.Brands(context.Background())
	require.NoError(t, err)
	assert.Empty(t, brands)
}

func TestHTTPSource_SharesConcurrentRequests(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		writeJSON(w, http.StatusOK, productJSON)
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := s.Product(context.Background(), 5)
			assert.NoError(t, err)
			assert.Equal(t, int64(5), p.ID)
		}()
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(5))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestHTTPSource_CancelledCallerDoesNotFailSharedRequest(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(started) })
		<-release
		writeJSON(w, http.StatusOK, productJSON)
	})

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Product(ctx, 5)
		firstErr <- err
	}()
	<-started

	type result struct {
		p   shopstate.Product
		err error
	}
	second := make(chan result, 1)
	go func() {
		p, err := s.Product(context.Background(), 5)
		second <- result{p, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, int64(5), res.p.ID)
}

func TestHTTPSource_SlugsArePathEscaped(t *testing.T) {
	var paths []string
	var mu sync.Mutex
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.EscapedPath())
		mu.Unlock()
		if strings.HasPrefix(r.URL.Path, "/api/categories/") {
			writeJSON(w, http.StatusOK, `{"id": 7, "name": "Kuruyemiş", "slug": "a/b"}`)
			return
		}
		writeJSON(w, http.StatusOK, productJSON)
	})

	_, err := s.ProductBySlug(context.Background(), "a/b?c")
	require.NoError(t, err)
	_, err = s.CategoryBySlug(context.Background(), "a/b")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/api/products/slug/a%2Fb%3Fc",
		"/api/categories/slug/a%2Fb",
	}, paths)
}

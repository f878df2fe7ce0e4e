package shopstate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// openSession returns a loaded session over storage. Its persister is stopped
// at cleanup without closing the shared storage.
func openSession(t *testing.T, storage *MockStorage, opts ...Option) *Session {
	t.Helper()
	base := []Option{WithStorage(storage), WithLogger(&MockLogger{}), WithProfile("u1")}
	s := New(append(base, opts...)...)
	t.Cleanup(func() { _ = s.persister.Close() })
	require.NoError(t, s.Load(context.Background()))
	return s
}

func TestSession_MemoryOnly(t *testing.T) {
	logger := &MockLogger{}
	s := New(WithLogger(logger))

	require.NoError(t, s.Load(context.Background()))
	s.Cart().AddToCart(testProduct(1, variant(11, 100)), 1)
	assert.Equal(t, 1, s.Cart().ItemCount())
	assert.NoError(t, s.Flush(context.Background()))
	assert.NoError(t, s.Reset(context.Background()))
	assert.Equal(t, 0, s.Cart().ItemCount())
	assert.NoError(t, s.Close())
	assert.True(t, logger.Contains("No storage configured"))
	assert.Equal(t, DefaultProfileID, s.ProfileID())
}

func TestSession_RehydratesAllStores(t *testing.T) {
	ctx := context.Background()
	storage := NewMockStorage()

	first := openSession(t, storage)
	first.Cart().AddToCart(testProduct(1, variant(11, 100), variant(12, 150)), 2)
	first.Cart().AddToCart(testProduct(1, variant(11, 100), variant(12, 150)), 1, 12)
	first.Favorites().AddToFavorites(testProduct(7))
	first.Favorites().AddToFavorites(testProduct(3))
	first.UI().SetTheme(ThemeDark)
	first.UI().SetMobileMenuOpen(true)
	first.UI().SetLoading(true)
	require.NoError(t, first.Flush(ctx))

	applier := &recordingApplier{}
	second := openSession(t, storage, WithThemeApplier(applier))

	assert.Equal(t, 3, second.Cart().ItemCount())
	assert.InDelta(t, 350.0, second.Cart().Subtotal(), 1e-9)
	assert.Equal(t, []int64{7, 3}, favoriteIDs(second.Favorites()))
	assert.True(t, second.Favorites().IsFavoriteID(7))

	// only the theme survives; flags start from their defaults
	assert.Equal(t, UIState{Theme: ThemeDark}, second.UI().State())
	assert.Equal(t, ThemeDark, applier.last())
}

func TestSession_UIBlobHoldsOnlyTheme(t *testing.T) {
	storage := NewMockStorage()
	s := openSession(t, storage)

	s.UI().ToggleTheme()
	s.UI().SetSearchOpen(true)
	require.NoError(t, s.Flush(context.Background()))

	assert.JSONEq(t, `{"state":{"theme":"dark"},"version":0}`, storage.blob("u1", DefaultUINamespace))
}

func TestSession_NoOpsDoNotWrite(t *testing.T) {
	storage := NewMockStorage()
	s := openSession(t, storage)

	s.Cart().RemoveFromCart("1-1")
	s.Cart().UpdateQuantity("1-1", 4)
	s.Favorites().RemoveFromFavorites("9")
	s.UI().ToggleMobileMenu()
	require.NoError(t, s.Flush(context.Background()))

	assert.Equal(t, 0, storage.saveCount(DefaultCartNamespace))
	assert.Equal(t, 0, storage.saveCount(DefaultFavoritesNamespace))
	assert.Equal(t, 0, storage.saveCount(DefaultUINamespace))
}

func TestSession_ClearAndSetThemeAlwaysWrite(t *testing.T) {
	storage := NewMockStorage()
	s := openSession(t, storage)

	var notified int
	s.UI().Subscribe(func(UIState) { notified++ })

	s.Cart().ClearCart()
	s.Favorites().ClearFavorites()
	s.UI().SetTheme(ThemeSystem)
	require.NoError(t, s.Flush(context.Background()))

	assert.Equal(t, 1, storage.saveCount(DefaultCartNamespace))
	assert.Equal(t, 1, storage.saveCount(DefaultFavoritesNamespace))
	assert.Equal(t, 1, storage.saveCount(DefaultUINamespace))
	assert.Equal(t, 1, notified)
}

func TestSession_CorruptStateFallsBack(t *testing.T) {
	storage := NewMockStorage()
	storage.put("u1", DefaultCartNamespace, "not json")
	storage.put("u1", DefaultFavoritesNamespace, `{"state":{"items":{"7":{"id":7}},"ids":["7"]},"version":0}`)
	storage.put("u1", DefaultUINamespace, `{"state":{"theme":"purple"},"version":0}`)

	s := openSession(t, storage)

	assert.Equal(t, 0, s.Cart().Len())
	assert.True(t, s.Favorites().IsFavoriteID(7))
	assert.Equal(t, ThemeSystem, s.UI().Theme())
}

func TestSession_ProfilesAreIsolated(t *testing.T) {
	storage := NewMockStorage()

	alice := openSession(t, storage, WithProfile("alice"))
	alice.Favorites().AddToFavorites(testProduct(1))
	require.NoError(t, alice.Flush(context.Background()))

	bob := openSession(t, storage, WithProfile("bob"))
	assert.Equal(t, 0, bob.Favorites().Count())
	assert.Equal(t, "bob", bob.ProfileID())
}

func TestSession_CustomNamespaces(t *testing.T) {
	storage := NewMockStorage()
	s := openSession(t, storage, WithNamespaces(Namespaces{Cart: "shop-cart"}))

	s.Cart().AddToCart(testProduct(1, variant(11, 10)), 1)
	s.Favorites().AddToFavorites(testProduct(1))
	require.NoError(t, s.Flush(context.Background()))

	assert.NotEmpty(t, storage.blob("u1", "shop-cart"))
	assert.Empty(t, storage.blob("u1", DefaultCartNamespace))
	assert.NotEmpty(t, storage.blob("u1", DefaultFavoritesNamespace))
}

func TestSession_DefaultNamespaces(t *testing.T) {
	storage := NewMockStorage()
	s := openSession(t, storage)

	s.Cart().AddToCart(testProduct(1, variant(11, 10)), 1)
	s.Favorites().AddToFavorites(testProduct(1))
	s.UI().SetTheme(ThemeDark)
	require.NoError(t, s.Flush(context.Background()))

	assert.NotEmpty(t, storage.blob("u1", "pazaryeri-cart"))
	assert.NotEmpty(t, storage.blob("u1", "favorites-storage"))
	assert.NotEmpty(t, storage.blob("u1", "ui-storage"))
}

func TestSession_Reset(t *testing.T) {
	ctx := context.Background()
	storage := NewMockStorage()
	cache := NewMockCache()

	s := openSession(t, storage, WithCache(cache))
	s.Cart().AddToCart(testProduct(1, variant(11, 10)), 1)
	s.Favorites().AddToFavorites(testProduct(1))
	s.UI().SetTheme(ThemeLight)
	require.NoError(t, s.Flush(ctx))

	require.NoError(t, s.Reset(ctx))

	assert.Equal(t, 0, s.Cart().Len())
	assert.Equal(t, 0, s.Favorites().Count())
	assert.Equal(t, ThemeSystem, s.UI().Theme())
	for _, ns := range []string{DefaultCartNamespace, DefaultFavoritesNamespace, DefaultUINamespace} {
		assert.Empty(t, storage.blob("u1", ns), ns)
		assert.False(t, cache.has("state:u1:"+ns), ns)
	}

	fresh := openSession(t, storage)
	assert.Equal(t, 0, fresh.Cart().Len())
	assert.Equal(t, ThemeSystem, fresh.UI().Theme())
}

func TestSession_Close(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	storage := NewMockStorage()
	cache := NewMockCache()
	s := New(WithStorage(storage), WithCache(cache), WithLogger(&MockLogger{}), WithProfile("u1"))
	require.NoError(t, s.Load(context.Background()))

	s.Cart().AddToCart(testProduct(1, variant(11, 10)), 3)
	require.NoError(t, s.Close())

	assert.True(t, storage.isClosed())
	assert.True(t, cache.isClosed())
	assert.Contains(t, storage.blob("u1", DefaultCartNamespace), `"quantity":3`)
}

func TestSession_CloseWithoutStorage(t *testing.T) {
	cache := NewMockCache()
	s := New(WithCache(cache), WithLogger(&MockLogger{}))
	require.NoError(t, s.Load(context.Background()))

	require.NoError(t, s.Close())
	assert.True(t, cache.isClosed())
}

func TestSession_Metrics(t *testing.T) {
	m := newTestMetrics(t)
	storage := NewMockStorage()
	s := openSession(t, storage, WithMetrics(m))

	s.Cart().AddToCart(testProduct(1, variant(11, 10)), 1)
	s.Favorites().ToggleFavorite(testProduct(1))
	s.UI().ToggleTheme()
	require.NoError(t, s.Flush(context.Background()))

	assert.Equal(t, 1.0, counterValue(t, m.mutations, "cart", "add"))
	assert.Equal(t, 1.0, counterValue(t, m.mutations, "favorites", "add"))
	assert.Equal(t, 1.0, counterValue(t, m.mutations, "ui", "toggle_theme"))
	assert.Equal(t, 1.0, counterValue(t, m.persistWrites, DefaultCartNamespace, "ok"))
	assert.Equal(t, 1.0, counterValue(t, m.rehydrations, DefaultUINamespace, "empty"))
}

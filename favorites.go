// favorites.go
package shopstate

import (
	"sort"
	"sync"
)

// FavoritesSnapshot is the persisted and observed state of a FavoritesStore:
// products keyed by id plus the ids in insertion order.
type FavoritesSnapshot struct {
	Items map[string]Product `json:"items"`
	IDs   []string           `json:"ids"`
}

// FavoritesStore holds a deduplicated, insertion-ordered set of liked products.
// Membership checks are O(1).
type FavoritesStore struct {
	mu        sync.Mutex
	items     map[string]Product
	ids       []string
	hooks     storeHooks
	listeners listeners[FavoritesSnapshot]
}

// NewFavoritesStore returns an empty favorites list that is not persisted.
// Only WithLogger and WithMetrics apply; use a Session for persistence.
func NewFavoritesStore(opts ...Option) *FavoritesStore {
	cfg := newConfig(opts)
	return &FavoritesStore{
		items: make(map[string]Product),
		hooks: storeHooks{logger: cfg.logger, metrics: cfg.metrics},
	}
}

// AddToFavorites adds product unless its id is already present.
func (f *FavoritesStore) AddToFavorites(product Product) {
	f.mu.Lock()
	if !f.addLocked(product) {
		f.mu.Unlock()
		return
	}
	snap := f.commitLocked()
	f.mu.Unlock()

	f.changed("add", snap)
}

// RemoveFromFavorites removes the product with the given string id.
func (f *FavoritesStore) RemoveFromFavorites(productID string) {
	f.mu.Lock()
	if !f.removeLocked(productID) {
		f.mu.Unlock()
		return
	}
	snap := f.commitLocked()
	f.mu.Unlock()

	f.changed("remove", snap)
}

// RemoveFromFavoritesID removes the product with the given numeric id.
func (f *FavoritesStore) RemoveFromFavoritesID(productID int64) {
	f.RemoveFromFavorites(FavoriteKey(productID))
}

// ToggleFavorite removes product if it is a favorite and adds it otherwise.
// It returns whether product is a favorite afterwards.
func (f *FavoritesStore) ToggleFavorite(product Product) bool {
	f.mu.Lock()
	key := product.Key()
	var (
		action string
		now    bool
	)
	if _, ok := f.items[key]; ok {
		f.removeLocked(key)
		action = "remove"
	} else {
		f.addLocked(product)
		action, now = "add", true
	}
	snap := f.commitLocked()
	f.mu.Unlock()

	f.changed(action, snap)
	return now
}

// IsFavorite reports whether the product with the given string id is a favorite.
func (f *FavoritesStore) IsFavorite(productID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.items[productID]
	return ok
}

// IsFavoriteID reports whether the product with the given numeric id is a favorite.
func (f *FavoritesStore) IsFavoriteID(productID int64) bool {
	return f.IsFavorite(FavoriteKey(productID))
}

// Favorites returns the favorite products in the order they were first added.
func (f *FavoritesStore) Favorites() []Product {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Product, 0, len(f.ids))
	for _, id := range f.ids {
		out = append(out, f.items[id].clone())
	}
	return out
}

// Count is the number of favorites.
func (f *FavoritesStore) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ids)
}

// ClearFavorites removes every favorite.
func (f *FavoritesStore) ClearFavorites() {
	f.mu.Lock()
	f.items = make(map[string]Product)
	f.ids = nil
	snap := f.commitLocked()
	f.mu.Unlock()

	f.changed("clear", snap)
}

// Subscribe registers fn to be called with the new state after every change.
func (f *FavoritesStore) Subscribe(fn func(FavoritesSnapshot)) (unsubscribe func()) {
	return f.listeners.add(fn)
}

// restore replaces the state with a rehydrated snapshot without persisting it.
// It repairs the items/ids pairing: duplicate ids and ids without an item are
// dropped, items missing from ids are appended in key order.
func (f *FavoritesStore) restore(snap FavoritesSnapshot) {
	items := make(map[string]Product, len(snap.Items))
	ids := make([]string, 0, len(snap.IDs))
	for _, id := range snap.IDs {
		p, ok := snap.Items[id]
		if _, dup := items[id]; !ok || dup {
			continue
		}
		items[id] = p
		ids = append(ids, id)
	}

	var orphans []string
	for id := range snap.Items {
		if _, ok := items[id]; !ok {
			orphans = append(orphans, id)
		}
	}
	sort.Strings(orphans)
	for _, id := range orphans {
		items[id] = snap.Items[id]
		ids = append(ids, id)
	}

	f.mu.Lock()
	f.items = items
	f.ids = ids
	out := f.snapshotLocked()
	f.mu.Unlock()

	f.listeners.notify(out)
}

func (f *FavoritesStore) addLocked(product Product) bool {
	key := product.Key()
	if _, ok := f.items[key]; ok {
		return false
	}
	f.items[key] = product.clone()
	f.ids = append(f.ids, key)
	return true
}

func (f *FavoritesStore) removeLocked(key string) bool {
	if _, ok := f.items[key]; !ok {
		return false
	}
	delete(f.items, key)
	for i, id := range f.ids {
		if id == key {
			f.ids = append(f.ids[:i], f.ids[i+1:]...)
			break
		}
	}
	return true
}

func (f *FavoritesStore) snapshotLocked() FavoritesSnapshot {
	snap := FavoritesSnapshot{
		Items: make(map[string]Product, len(f.items)),
		IDs:   append([]string{}, f.ids...),
	}
	for id, p := range f.items {
		snap.Items[id] = p.clone()
	}
	return snap
}

func (f *FavoritesStore) commitLocked() FavoritesSnapshot {
	if f.hooks.persist != nil {
		ids := f.ids
		if ids == nil {
			ids = []string{}
		}
		f.hooks.persist(FavoritesSnapshot{Items: f.items, IDs: ids})
	}
	return f.snapshotLocked()
}

func (f *FavoritesStore) changed(action string, snap FavoritesSnapshot) {
	f.hooks.metrics.mutated("favorites", action)
	f.listeners.notify(snap)
}

// cart.go
package shopstate

import "sync"

// CartSnapshot is the persisted and observed state of a CartStore.
type CartSnapshot struct {
	Items []CartLineItem `json:"items"`
}

// storeHooks connects a store to logging, metrics and persistence.
type storeHooks struct {
	logger  Logger
	metrics *Metrics
	// persist receives the store's persistable state while the store lock is
	// held, so snapshots reach the Persister in mutation order. Nil disables persistence.
	persist func(state any)
}

// CartStore holds the shopping cart. Invalid actions (unknown line id,
// unresolvable variant) are silent no-ops.
type CartStore struct {
	mu        sync.Mutex
	items     []CartLineItem
	hooks     storeHooks
	listeners listeners[CartSnapshot]
}

// NewCartStore returns an empty cart that is not persisted.
// Only WithLogger and WithMetrics apply; use a Session for persistence.
func NewCartStore(opts ...Option) *CartStore {
	cfg := newConfig(opts)
	return &CartStore{
		hooks: storeHooks{logger: cfg.logger, metrics: cfg.metrics},
	}
}

// AddToCart adds quantity units of product. The variant is the one with
// variantID when given, otherwise the product's first variant; if none
// resolves the call does nothing. A zero variantID counts as not given.
// Adding to an existing product/variant line increases its quantity.
// A quantity below 1 is treated as 1.
func (c *CartStore) AddToCart(product Product, quantity int, variantID ...int64) {
	var (
		variant ProductVariant
		ok      bool
	)
	if len(variantID) > 0 && variantID[0] != 0 {
		variant, ok = product.Variant(variantID[0])
	} else {
		variant, ok = product.DefaultVariant()
	}
	if !ok {
		c.hooks.logger.Debug("No variant resolved, ignoring add to cart", "product_id", product.ID)
		return
	}
	if quantity < 1 {
		quantity = 1
	}

	id := LineItemID(product.ID, variant.ID)

	c.mu.Lock()
	if i := c.indexLocked(id); i >= 0 {
		c.items[i].Quantity += quantity
	} else {
		c.items = append(c.items, CartLineItem{
			ID:       id,
			Product:  product.clone(),
			Variant:  variant.clone(),
			Quantity: quantity,
		})
	}
	snap := c.commitLocked()
	c.mu.Unlock()

	c.changed("add", snap)
}

// RemoveFromCart deletes the line with itemID.
func (c *CartStore) RemoveFromCart(itemID string) {
	c.mu.Lock()
	i := c.indexLocked(itemID)
	if i < 0 {
		c.mu.Unlock()
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	snap := c.commitLocked()
	c.mu.Unlock()

	c.changed("remove", snap)
}

// UpdateQuantity sets the quantity of the line with itemID. A quantity
// below 1 removes the line.
func (c *CartStore) UpdateQuantity(itemID string, quantity int) {
	if quantity < 1 {
		c.RemoveFromCart(itemID)
		return
	}

	c.mu.Lock()
	i := c.indexLocked(itemID)
	if i < 0 {
		c.mu.Unlock()
		return
	}
	c.items[i].Quantity = quantity
	snap := c.commitLocked()
	c.mu.Unlock()

	c.changed("update", snap)
}

// ClearCart removes every line.
func (c *CartStore) ClearCart() {
	c.mu.Lock()
	c.items = nil
	snap := c.commitLocked()
	c.mu.Unlock()

	c.changed("clear", snap)
}

// ItemCount is the sum of all line quantities.
func (c *CartStore) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}

// Subtotal is the sum of variant price times quantity over all lines,
// using the price captured when the line was added.
func (c *CartStore) Subtotal() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total float64
	for _, item := range c.items {
		total += item.LineTotal()
	}
	return total
}

// Item returns the line with itemID.
func (c *CartStore) Item(itemID string) (CartLineItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexLocked(itemID); i >= 0 {
		return c.items[i].clone(), true
	}
	return CartLineItem{}, false
}

// Items returns a copy of the lines in the order they were added.
func (c *CartStore) Items() []CartLineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyItemsLocked()
}

// Len is the number of distinct lines.
func (c *CartStore) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Subscribe registers fn to be called with the new state after every change.
func (c *CartStore) Subscribe(fn func(CartSnapshot)) (unsubscribe func()) {
	return c.listeners.add(fn)
}

// restore replaces the state with a rehydrated snapshot without persisting it.
// Lines with a quantity below 1 or a repeated id are dropped.
func (c *CartStore) restore(snap CartSnapshot) {
	items := make([]CartLineItem, 0, len(snap.Items))
	seen := make(map[string]bool, len(snap.Items))
	for _, item := range snap.Items {
		item.ID = LineItemID(item.Product.ID, item.Variant.ID)
		if item.Quantity < 1 || seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		items = append(items, item)
	}

	c.mu.Lock()
	c.items = items
	out := CartSnapshot{Items: c.copyItemsLocked()}
	c.mu.Unlock()

	c.listeners.notify(out)
}

func (c *CartStore) indexLocked(id string) int {
	for i, item := range c.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (c *CartStore) copyItemsLocked() []CartLineItem {
	out := make([]CartLineItem, len(c.items))
	for i, item := range c.items {
		out[i] = item.clone()
	}
	return out
}

// commitLocked persists the current state and returns a snapshot for listeners.
func (c *CartStore) commitLocked() CartSnapshot {
	if c.hooks.persist != nil {
		c.hooks.persist(CartSnapshot{Items: c.nonNilItemsLocked()})
	}
	return CartSnapshot{Items: c.copyItemsLocked()}
}

// nonNilItemsLocked keeps the persisted form as "items": [] rather than null.
func (c *CartStore) nonNilItemsLocked() []CartLineItem {
	if c.items == nil {
		return []CartLineItem{}
	}
	return c.items
}

func (c *CartStore) changed(action string, snap CartSnapshot) {
	c.hooks.metrics.mutated("cart", action)
	c.listeners.notify(snap)
}

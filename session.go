// session.go
package shopstate

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Session owns the cart, favorites and UI stores of one profile and wires
// them to the configured persistence. Construct one per profile (and per test)
// with New, call Load once, and Close when done.
type Session struct {
	config    *Config
	persister *Persister

	cart      *CartStore
	favorites *FavoritesStore
	ui        *UIStore
}

// New creates a Session with empty stores. Without WithStorage the stores
// are kept in memory only.
func New(opts ...Option) *Session {
	cfg := newConfig(opts)
	hooks := storeHooks{logger: cfg.logger, metrics: cfg.metrics}

	s := &Session{
		config:    cfg,
		cart:      &CartStore{hooks: hooks},
		favorites: &FavoritesStore{items: make(map[string]Product), hooks: hooks},
		ui: &UIStore{
			state:    UIState{Theme: ThemeSystem},
			applier:  cfg.themeApplier,
			detector: cfg.detector,
			hooks:    hooks,
		},
	}

	if cfg.storage == nil {
		cfg.logger.Info("No storage configured, state will not be persisted", "profile", cfg.profileID)
		if cfg.cache != nil {
			cfg.logger.Warn("Cache configured without storage is unused until Close", "profile", cfg.profileID)
		}
		return s
	}

	s.persister = newPersister(cfg)

	s.cart.hooks.persist = s.persistTo(cfg.namespaces.Cart)
	s.favorites.hooks.persist = s.persistTo(cfg.namespaces.Favorites)
	s.ui.hooks.persist = s.persistTo(cfg.namespaces.UI)
	return s
}

// Load rehydrates the three stores from storage concurrently. Missing or
// unreadable state leaves a store empty; only context errors are returned.
func (s *Session) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	ns := s.config.namespaces
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var snap CartSnapshot
		ok, err := s.persister.Load(ctx, ns.Cart, &snap)
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}
		if ok {
			s.cart.restore(snap)
		}
		return nil
	})
	g.Go(func() error {
		var snap FavoritesSnapshot
		ok, err := s.persister.Load(ctx, ns.Favorites, &snap)
		if err != nil {
			return fmt.Errorf("load favorites: %w", err)
		}
		if ok {
			s.favorites.restore(snap)
		}
		return nil
	})
	g.Go(func() error {
		var prefs UIPreferences
		ok, err := s.persister.Load(ctx, ns.UI, &prefs)
		if err != nil {
			return fmt.Errorf("load ui: %w", err)
		}
		if ok {
			s.ui.restore(prefs)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	s.config.logger.Debug("Session loaded", "profile", s.config.profileID,
		"cart_lines", s.cart.Len(), "favorites", s.favorites.Count(), "theme", string(s.ui.Theme()))
	return nil
}

// Cart returns the cart store.
func (s *Session) Cart() *CartStore { return s.cart }

// Favorites returns the favorites store.
func (s *Session) Favorites() *FavoritesStore { return s.favorites }

// UI returns the UI preference store.
func (s *Session) UI() *UIStore { return s.ui }

// ProfileID returns the profile the session persists under.
func (s *Session) ProfileID() string { return s.config.profileID }

// Flush waits until all pending snapshots have been written.
func (s *Session) Flush(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	return s.persister.Flush(ctx)
}

// Reset removes the profile's persisted state and empties the stores.
// The UI theme returns to ThemeSystem.
func (s *Session) Reset(ctx context.Context) error {
	s.cart.ClearCart()
	s.favorites.ClearFavorites()
	s.ui.SetTheme(ThemeSystem)

	if s.persister == nil {
		return nil
	}
	if err := s.persister.Flush(ctx); err != nil {
		return err
	}

	ns := s.config.namespaces
	var errs []error
	for _, namespace := range []string{ns.Cart, ns.Favorites, ns.UI} {
		if err := s.config.storage.Delete(ctx, s.config.profileID, namespace); err != nil && !errors.Is(err, ErrNotFound) {
			errs = append(errs, fmt.Errorf("delete %s: %w", namespace, err))
		}
		if s.config.cache != nil {
			if err := s.config.cache.Delete(ctx, s.persister.cacheKey(namespace)); err != nil && !errors.Is(err, ErrNotFound) {
				s.config.logger.Error("Failed to delete state from cache", "namespace", namespace, "error", err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close writes pending snapshots, then closes the cache and storage the
// session was configured with, including a cache given without storage.
func (s *Session) Close() error {
	var errs []error
	if s.persister != nil {
		if err := s.persister.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.config.cache != nil {
		if err := s.config.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if s.config.storage != nil {
		if err := s.config.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (s *Session) persistTo(namespace string) func(state any) {
	return func(state any) {
		s.persister.Enqueue(namespace, state)
	}
}

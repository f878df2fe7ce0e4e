// ui.go
package shopstate

import "sync"

// ThemeApplier applies a concrete theme (light or dark) to the active document,
// e.g. by toggling a root-level class.
type ThemeApplier interface {
	ApplyTheme(theme Theme)
}

// ThemeApplierFunc adapts a function to ThemeApplier.
type ThemeApplierFunc func(theme Theme)

// ApplyTheme calls fn(theme).
func (fn ThemeApplierFunc) ApplyTheme(theme Theme) { fn(theme) }

// ColorSchemeDetector reports the operating system's colour-scheme preference.
type ColorSchemeDetector interface {
	PrefersDark() bool
}

// ColorSchemeFunc adapts a function to ColorSchemeDetector.
type ColorSchemeFunc func() bool

// PrefersDark calls fn.
func (fn ColorSchemeFunc) PrefersDark() bool { return fn() }

// ResolveTheme maps theme to the concrete theme to apply; ThemeSystem is
// resolved through d at call time. A nil detector resolves to light.
func ResolveTheme(theme Theme, d ColorSchemeDetector) Theme {
	if theme != ThemeSystem {
		return theme
	}
	if d != nil && d.PrefersDark() {
		return ThemeDark
	}
	return ThemeLight
}

// UIPreferences is the persisted part of the UI state.
type UIPreferences struct {
	Theme Theme `json:"theme"`
}

// UIState is the full UI state delivered to subscribers. Only Theme is
// persisted; the flags reset with every session.
type UIState struct {
	Theme          Theme
	MobileMenuOpen bool
	SearchOpen     bool
	Loading        bool
}

// UIStore holds the theme preference and transient UI flags.
type UIStore struct {
	mu        sync.Mutex
	state     UIState
	applier   ThemeApplier
	detector  ColorSchemeDetector
	hooks     storeHooks
	listeners listeners[UIState]
}

// NewUIStore returns a UI store with the system theme that is not persisted.
// WithLogger, WithMetrics, WithThemeApplier and WithColorSchemeDetector apply.
func NewUIStore(opts ...Option) *UIStore {
	cfg := newConfig(opts)
	return &UIStore{
		state:    UIState{Theme: ThemeSystem},
		applier:  cfg.themeApplier,
		detector: cfg.detector,
		hooks:    storeHooks{logger: cfg.logger, metrics: cfg.metrics},
	}
}

// SetTheme stores theme and applies it immediately. Unknown themes are ignored.
func (u *UIStore) SetTheme(theme Theme) {
	if !isValidTheme(theme) {
		u.hooks.logger.Debug("Ignoring invalid theme", "theme", string(theme))
		return
	}
	u.setTheme("set_theme", func(Theme) Theme { return theme })
}

// ToggleTheme switches dark to light and anything else to dark.
// It never selects the system theme.
func (u *UIStore) ToggleTheme() {
	u.setTheme("toggle_theme", func(current Theme) Theme {
		if current == ThemeDark {
			return ThemeLight
		}
		return ThemeDark
	})
}

// Theme returns the stored theme preference, which may be ThemeSystem.
func (u *UIStore) Theme() Theme {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state.Theme
}

// ResolvedTheme returns the concrete theme currently in effect.
func (u *UIStore) ResolvedTheme() Theme {
	return ResolveTheme(u.Theme(), u.detector)
}

// State returns the full UI state.
func (u *UIStore) State() UIState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// SetMobileMenuOpen sets the mobile menu flag.
func (u *UIStore) SetMobileMenuOpen(open bool) {
	u.setFlag("set_mobile_menu", func(s *UIState) { s.MobileMenuOpen = open })
}

// ToggleMobileMenu flips the mobile menu flag.
func (u *UIStore) ToggleMobileMenu() {
	u.setFlag("toggle_mobile_menu", func(s *UIState) { s.MobileMenuOpen = !s.MobileMenuOpen })
}

// SetSearchOpen sets the search flag.
func (u *UIStore) SetSearchOpen(open bool) {
	u.setFlag("set_search", func(s *UIState) { s.SearchOpen = open })
}

// ToggleSearch flips the search flag.
func (u *UIStore) ToggleSearch() {
	u.setFlag("toggle_search", func(s *UIState) { s.SearchOpen = !s.SearchOpen })
}

// SetLoading sets the loading flag.
func (u *UIStore) SetLoading(loading bool) {
	u.setFlag("set_loading", func(s *UIState) { s.Loading = loading })
}

// Subscribe registers fn to be called with the new state after every change.
func (u *UIStore) Subscribe(fn func(UIState)) (unsubscribe func()) {
	return u.listeners.add(fn)
}

// restore applies rehydrated preferences without persisting them.
// Transient flags are left at their defaults.
func (u *UIStore) restore(prefs UIPreferences) {
	if !isValidTheme(prefs.Theme) {
		u.hooks.logger.Warn("Ignoring persisted theme", "theme", string(prefs.Theme))
		return
	}

	u.mu.Lock()
	u.state.Theme = prefs.Theme
	state := u.state
	u.mu.Unlock()

	u.apply(prefs.Theme)
	u.listeners.notify(state)
}

// setTheme computes the next theme from the current one under the lock.
func (u *UIStore) setTheme(action string, next func(current Theme) Theme) {
	u.mu.Lock()
	theme := next(u.state.Theme)
	u.state.Theme = theme
	if u.hooks.persist != nil {
		u.hooks.persist(UIPreferences{Theme: theme})
	}
	state := u.state
	u.mu.Unlock()

	u.apply(theme)
	u.hooks.metrics.mutated("ui", action)
	u.listeners.notify(state)
}

func (u *UIStore) setFlag(action string, mutate func(*UIState)) {
	u.mu.Lock()
	mutate(&u.state)
	state := u.state
	u.mu.Unlock()

	u.hooks.metrics.mutated("ui", action)
	u.listeners.notify(state)
}

func (u *UIStore) apply(theme Theme) {
	if u.applier == nil {
		return
	}
	u.applier.ApplyTheme(ResolveTheme(theme, u.detector))
}

package shopstate

import "time"

// Default namespaces the three stores persist under.
const (
	DefaultCartNamespace      = "pazaryeri-cart"
	DefaultFavoritesNamespace = "favorites-storage"
	DefaultUINamespace        = "ui-storage"

	// DefaultProfileID scopes storage keys when no profile is configured.
	DefaultProfileID = "default"
)

// Namespaces names the storage namespace of each store.
type Namespaces struct {
	Cart      string
	Favorites string
	UI        string
}

// DefaultNamespaces returns the namespaces used when none are configured.
func DefaultNamespaces() Namespaces {
	return Namespaces{
		Cart:      DefaultCartNamespace,
		Favorites: DefaultFavoritesNamespace,
		UI:        DefaultUINamespace,
	}
}

// Config holds the internal configuration for a Session.
// It is populated by applying functional Options passed to New.
type Config struct {
	storage      Storage
	cache        Cache
	logger       Logger
	encryptor    Encryptor
	metrics      *Metrics
	profileID    string
	namespaces   Namespaces
	themeApplier ThemeApplier
	detector     ColorSchemeDetector
	writeTimeout time.Duration
	cacheTTL     time.Duration
}

// Option configures a Session (or a standalone Persister).
type Option func(*Config)

func newConfig(opts []Option) *Config {
	cfg := &Config{
		logger:       NewDefaultLogger(),
		profileID:    DefaultProfileID,
		namespaces:   DefaultNamespaces(),
		writeTimeout: defaultWriteTimeout,
		cacheTTL:     defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithStorage sets the durable Storage backend. Without it the stores live
// in memory only.
func WithStorage(s Storage) Option {
	return func(c *Config) {
		c.storage = s
	}
}

// WithCache sets an optional read-through Cache in front of the Storage.
func WithCache(cache Cache) Option {
	return func(c *Config) {
		c.cache = cache
	}
}

// WithLogger sets the Logger. The default writes JSON to os.Stderr.
func WithLogger(l Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithEncryption encrypts persisted blobs at rest with e.
func WithEncryption(e Encryptor) Option {
	return func(c *Config) {
		c.encryptor = e
	}
}

// WithMetrics records store and persistence metrics on m.
func WithMetrics(m *Metrics) Option {
	return func(c *Config) {
		c.metrics = m
	}
}

// WithProfile scopes all storage keys to profileID, the equivalent of a browser profile.
func WithProfile(profileID string) Option {
	return func(c *Config) {
		if profileID != "" {
			c.profileID = profileID
		}
	}
}

// WithNamespaces overrides the storage namespaces. Empty fields keep their defaults.
func WithNamespaces(ns Namespaces) Option {
	return func(c *Config) {
		if ns.Cart != "" {
			c.namespaces.Cart = ns.Cart
		}
		if ns.Favorites != "" {
			c.namespaces.Favorites = ns.Favorites
		}
		if ns.UI != "" {
			c.namespaces.UI = ns.UI
		}
	}
}

// WithThemeApplier sets the collaborator that applies the resolved theme to the active document.
func WithThemeApplier(a ThemeApplier) Option {
	return func(c *Config) {
		c.themeApplier = a
	}
}

// WithColorSchemeDetector sets how the "system" theme is resolved.
func WithColorSchemeDetector(d ColorSchemeDetector) Option {
	return func(c *Config) {
		c.detector = d
	}
}

// WithWriteTimeout bounds each storage write.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.writeTimeout = d
		}
	}
}

// WithCacheTTL sets how long cached blobs live.
func WithCacheTTL(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.cacheTTL = d
		}
	}
}

package main

import (
	"fmt"

	"github.com/CreativeUnicorns/shopstate"
	"github.com/CreativeUnicorns/shopstate/cache"
	"github.com/CreativeUnicorns/shopstate/catalog"
	"github.com/CreativeUnicorns/shopstate/storage"
)

// openSession builds a session over the configured storage, cache and
// encryption. The session owns and closes the backends.
func openSession(s settings, logger shopstate.Logger) (*shopstate.Session, error) {
	opts := []shopstate.Option{
		shopstate.WithLogger(logger),
		shopstate.WithWriteTimeout(s.WriteTimeout),
		shopstate.WithCacheTTL(s.CacheTTL),
	}
	if s.ProfileID != "" {
		opts = append(opts, shopstate.WithProfile(s.ProfileID))
	}
	if s.PrefersDark {
		opts = append(opts, shopstate.WithColorSchemeDetector(shopstate.ColorSchemeFunc(func() bool { return true })))
	}

	store, err := openStorage(s)
	if err != nil {
		return nil, err
	}
	if store != nil {
		opts = append(opts, shopstate.WithStorage(store))
	}

	c, err := openCache(s)
	if err != nil {
		closeQuietly(store)
		return nil, err
	}
	if c != nil {
		opts = append(opts, shopstate.WithCache(c))
	}

	if s.Encryption {
		enc, err := shopstate.NewEncryptionAdapter()
		if err != nil {
			closeQuietly(store, c)
			return nil, fmt.Errorf("encryption: %w", err)
		}
		opts = append(opts, shopstate.WithEncryption(enc))
	}

	return shopstate.New(opts...), nil
}

// openStorage returns nil for the memory backend so that the session keeps
// state in memory only.
func openStorage(s settings) (shopstate.Storage, error) {
	switch s.Storage {
	case "", "memory":
		return nil, nil
	case "sqlite":
		st, err := storage.NewSQLiteStorage(s.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		return st, nil
	case "postgres":
		if s.PostgresDSN == "" {
			return nil, fmt.Errorf("%w: storage.postgres_dsn is required", shopstate.ErrInvalidInput)
		}
		st, err := storage.NewPostgresStorage(s.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres storage: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q (valid: memory, sqlite, postgres)", shopstate.ErrInvalidInput, s.Storage)
	}
}

func openCache(s settings) (shopstate.Cache, error) {
	switch s.Cache {
	case "", "none":
		return nil, nil
	case "memory":
		return cache.NewMemoryCache(), nil
	case "redis":
		c, err := cache.NewRedisCache(s.RedisAddr, s.RedisPassword, s.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: unknown cache backend %q (valid: none, memory, redis)", shopstate.ErrInvalidInput, s.Cache)
	}
}

// openCatalog prefers a local catalog file over the API.
func openCatalog(s settings, logger shopstate.Logger) (catalog.Source, error) {
	if s.CatalogFile != "" {
		return catalog.NewFileSource(s.CatalogFile)
	}
	return catalog.NewHTTPSource(s.CatalogURL, catalog.WithLogger(logger))
}

type closer interface{ Close() error }

func closeQuietly(cs ...closer) {
	for _, c := range cs {
		if c != nil {
			_ = c.Close()
		}
	}
}

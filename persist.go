package shopstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// stateVersion is written into every persisted envelope. Blobs carrying a
// different version are discarded on load.
const stateVersion = 0

const (
	defaultWriteTimeout = 5 * time.Second
	defaultCacheTTL     = 24 * time.Hour
)

// envelope is the on-storage shape of a namespace blob.
type envelope struct {
	State   json.RawMessage `json:"state"`
	Version int             `json:"version"`
}

// Persister is the serialize/deserialize boundary between the stores and a
// Storage backend. Snapshots are encoded when enqueued and written by a single
// background goroutine, latest snapshot per namespace wins. Write failures are
// logged and counted, never returned.
type Persister struct {
	storage      Storage
	cache        Cache
	encryptor    Encryptor
	logger       Logger
	metrics      *Metrics
	profileID    string
	writeTimeout time.Duration
	cacheTTL     time.Duration

	mu      sync.Mutex
	pending map[string][]byte
	idle    chan struct{} // non-nil while writes are outstanding; closed when drained
	closed  bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

// NewPersister starts a Persister writing to storage for profileID.
// WithCache, WithEncryption, WithLogger, WithMetrics, WithWriteTimeout and
// WithCacheTTL apply.
func NewPersister(storage Storage, profileID string, opts ...Option) *Persister {
	cfg := newConfig(opts)
	cfg.storage = storage
	if profileID != "" {
		cfg.profileID = profileID
	}
	return newPersister(cfg)
}

func newPersister(cfg *Config) *Persister {
	p := &Persister{
		storage:      cfg.storage,
		cache:        cfg.cache,
		encryptor:    cfg.encryptor,
		logger:       cfg.logger,
		metrics:      cfg.metrics,
		profileID:    cfg.profileID,
		writeTimeout: cfg.writeTimeout,
		cacheTTL:     cfg.cacheTTL,
		pending:      make(map[string][]byte),
		wake:         make(chan struct{}, 1),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	go p.run()
	return p
}

// Enqueue encodes state and schedules it to be written under namespace.
// It never blocks on I/O.
func (p *Persister) Enqueue(namespace string, state any) {
	data, err := p.encode(state)
	if err != nil {
		p.logger.Error("Failed to encode state", "namespace", namespace, "error", err)
		p.metrics.persistResult(namespace, "encode_error")
		return
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.logger.Warn("Persister closed, dropping snapshot", "namespace", namespace)
		p.metrics.persistResult(namespace, "dropped")
		return
	}
	p.pending[namespace] = data
	if p.idle == nil {
		p.idle = make(chan struct{})
	}
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until every snapshot enqueued before the call has been written
// or ctx is done.
func (p *Persister) Flush(ctx context.Context) error {
	p.mu.Lock()
	idle := p.idle
	p.mu.Unlock()

	if idle == nil {
		return nil
	}
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes outstanding snapshots and stops the writer goroutine.
// It does not close the underlying storage or cache.
func (p *Persister) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	close(p.stop)
	<-p.done
	return nil
}

// Load rehydrates namespace into into. It reports whether a stored snapshot
// was applied. Missing, unreadable or undecodable blobs yield (false, nil) so
// the caller falls back to its empty default; only ctx errors are returned.
func (p *Persister) Load(ctx context.Context, namespace string, into any) (bool, error) {
	data, err := p.read(ctx, namespace)
	if errors.Is(err, ErrNotFound) {
		p.metrics.rehydrated(namespace, "empty")
		return false, nil
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		p.logger.Warn("Failed to load state, using defaults", "namespace", namespace, "error", err)
		p.metrics.rehydrated(namespace, "error")
		return false, nil
	}

	if err := p.decode(data, into); err != nil {
		p.logger.Warn("Discarding unreadable state", "namespace", namespace, "error", err)
		p.metrics.rehydrated(namespace, "invalid")
		return false, nil
	}

	p.metrics.rehydrated(namespace, "ok")
	return true, nil
}

func (p *Persister) run() {
	defer close(p.done)
	for {
		select {
		case <-p.wake:
			p.drain()
		case <-p.stop:
			p.drain()
			return
		}
	}
}

func (p *Persister) drain() {
	for {
		p.mu.Lock()
		if len(p.pending) == 0 {
			if p.idle != nil {
				close(p.idle)
				p.idle = nil
			}
			p.mu.Unlock()
			return
		}
		batch := p.pending
		p.pending = make(map[string][]byte)
		p.mu.Unlock()

		for namespace, data := range batch {
			p.write(namespace, data)
		}
	}
}

func (p *Persister) write(namespace string, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
	defer cancel()

	start := time.Now()
	err := p.storage.Save(ctx, p.profileID, namespace, data)
	p.metrics.observeWrite(namespace, time.Since(start), err)
	if err != nil {
		p.logger.Error("Failed to persist state", "namespace", namespace, "profile", p.profileID, "error", err)
		return
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, p.cacheKey(namespace), data, p.cacheTTL); err != nil {
			p.logger.Error("Failed to cache state", "namespace", namespace, "error", err)
		}
	}
}

func (p *Persister) read(ctx context.Context, namespace string) ([]byte, error) {
	if p.cache != nil {
		data, err := p.cache.Get(ctx, p.cacheKey(namespace))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrNotFound) {
			p.logger.Debug("Cache read failed, falling back to storage", "namespace", namespace, "error", err)
		}
	}

	data, err := p.storage.Load(ctx, p.profileID, namespace)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, p.cacheKey(namespace), data, p.cacheTTL); err != nil {
			p.logger.Error("Failed to cache state", "namespace", namespace, "error", err)
		}
	}
	return data, nil
}

func (p *Persister) cacheKey(namespace string) string {
	return fmt.Sprintf("state:%s:%s", p.profileID, namespace)
}

func (p *Persister) encode(state any) ([]byte, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	data, err := json.Marshal(envelope{State: raw, Version: stateVersion})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if p.encryptor == nil {
		return data, nil
	}
	enc, err := p.encryptor.Encrypt(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return []byte(enc), nil
}

func (p *Persister) decode(data []byte, into any) error {
	if p.encryptor != nil {
		plain, err := p.encryptor.Decrypt(string(data))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSerialization, err)
		}
		data = []byte(plain)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if env.Version != stateVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrSerialization, env.Version)
	}
	if len(env.State) == 0 {
		return fmt.Errorf("%w: empty state", ErrSerialization)
	}
	if err := json.Unmarshal(env.State, into); err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return nil
}

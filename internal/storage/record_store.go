package storage

import (
	"context"
	"errors"

	"memeverse/internal/models"
	"memeverse/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// DefaultMaxWriteAttempts bounds the re-read and re-apply loop of Mutate.
const DefaultMaxWriteAttempts = 3

// ChangePublisher is notified after every durable write.
type ChangePublisher interface {
	PublishChange(ctx context.Context, key string, version int64) error
}

// MutateFunc derives the next raw value from the current one.
// Returning ErrUnchanged skips the write.
type MutateFunc func(current []byte, exists bool) ([]byte, error)

// ErrUnchanged tells Mutate that the value needs no write.
var ErrUnchanged = errors.New("storage: unchanged")

// RecordStore is the keyed record store shared by all services.
type RecordStore struct {
	backend     Backend
	publisher   ChangePublisher
	maxAttempts int
	logger      *observability.StoreLogger
}

// Option configures a RecordStore.
type Option func(*RecordStore)

// WithPublisher sets the change publisher.
func WithPublisher(p ChangePublisher) Option {
	return func(s *RecordStore) {
		s.publisher = p
	}
}

// WithMaxWriteAttempts overrides DefaultMaxWriteAttempts. Values below 1 are ignored.
func WithMaxWriteAttempts(n int) Option {
	return func(s *RecordStore) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// NewRecordStore wraps backend.
func NewRecordStore(backend Backend, opts ...Option) *RecordStore {
	s := &RecordStore{
		backend:     backend,
		maxAttempts: DefaultMaxWriteAttempts,
		logger:      observability.NewStoreLogger(backend.Name()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetPublisher attaches a publisher after construction, once the transport is up.
func (s *RecordStore) SetPublisher(p ChangePublisher) {
	s.publisher = p
}

// Logger exposes the store logger to typed views.
func (s *RecordStore) Logger() *observability.StoreLogger {
	return s.logger
}

// BackendName reports the configured backend.
func (s *RecordStore) BackendName() string {
	return s.backend.Name()
}

// Get reads the raw value of key.
func (s *RecordStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	span, ctx := observability.NewSpan(ctx, "store.get", attribute.String("store.key", key))
	defer span.End()
	defer observability.TrackStore("get", key)()

	entry, ok, err := s.backend.Load(ctx, key)
	if err != nil {
		span.SetError(err)
		s.logger.LogError(ctx, err, "get", key)
		return Entry{}, false, err
	}
	return entry, ok, nil
}

// Mutate applies fn to the current value of key and writes the result with a
// versioned compare-and-set. A lost race reloads and applies fn again, up to the
// configured number of attempts.
func (s *RecordStore) Mutate(ctx context.Context, key string, fn MutateFunc) (int64, error) {
	span, ctx := observability.NewSpan(ctx, "store.mutate", attribute.String("store.key", key))
	defer span.End()
	defer observability.TrackStore("mutate", key)()

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		entry, ok, err := s.backend.Load(ctx, key)
		if err != nil {
			span.SetError(err)
			s.logger.LogError(ctx, err, "load", key)
			return 0, err
		}

		next, err := fn(entry.Value, ok)
		if errors.Is(err, ErrUnchanged) {
			return entry.Version, nil
		}
		if err != nil {
			return 0, err
		}

		version, err := s.backend.Store(ctx, key, next, entry.Version)
		if errors.Is(err, ErrVersionConflict) {
			observability.StoreWriteConflicts.WithLabelValues(observability.KeyFamily(key)).Inc()
			s.logger.LogConflict(ctx, key, attempt)
			continue
		}
		if err != nil {
			span.SetError(err)
			s.logger.LogError(ctx, err, "store", key)
			return 0, err
		}

		span.AddAttributes(attribute.Int64("store.version", version), attribute.Int("store.attempts", attempt))
		s.logger.LogWrite(ctx, key, version)
		s.publish(ctx, key, version)
		return version, nil
	}

	err := models.NewConflictError(key, s.maxAttempts)
	span.SetError(err)
	return 0, err
}

// Keys lists stored keys starting with prefix.
func (s *RecordStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	defer observability.TrackStore("keys", prefix)()
	return s.backend.Keys(ctx, prefix)
}

// Ping checks the backend.
func (s *RecordStore) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// Close releases the backend.
func (s *RecordStore) Close() error {
	return s.backend.Close()
}

func (s *RecordStore) publish(ctx context.Context, key string, version int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishChange(ctx, key, version); err != nil {
		s.logger.LogError(ctx, err, "publish", key)
	}
}

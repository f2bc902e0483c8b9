package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"memeverse/internal/models"

	"gorm.io/gorm"
)

// GormBackend keeps every key as one row of the records table.
type GormBackend struct {
	db *gorm.DB
}

// NewGormBackend creates a Backend over an already migrated database.
func NewGormBackend(db *gorm.DB) *GormBackend {
	return &GormBackend{db: db}
}

func (b *GormBackend) Name() string {
	return "gorm:" + b.db.Dialector.Name()
}

func (b *GormBackend) Load(ctx context.Context, key string) (Entry, bool, error) {
	var rec models.Record
	err := b.db.WithContext(ctx).Where("record_key = ?", key).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Entry{Key: key}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("load %q: %w", key, err)
	}
	return Entry{Key: rec.Key, Value: []byte(rec.Value), Version: rec.Version}, true, nil
}

func (b *GormBackend) Store(ctx context.Context, key string, value []byte, expectVersion int64) (int64, error) {
	now := time.Now().UTC()

	if expectVersion == 0 {
		rec := models.Record{Key: key, Value: string(value), Version: 1, UpdatedAt: now}
		err := b.db.WithContext(ctx).Create(&rec).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, ErrVersionConflict
		}
		if err != nil {
			if _, exists, lerr := b.Load(ctx, key); lerr == nil && exists {
				return 0, ErrVersionConflict
			}
			return 0, fmt.Errorf("insert %q: %w", key, err)
		}
		return 1, nil
	}

	next := expectVersion + 1
	res := b.db.WithContext(ctx).
		Model(&models.Record{}).
		Where("record_key = ? AND version = ?", key, expectVersion).
		Updates(map[string]interface{}{
			"value":      string(value),
			"version":    next,
			"updated_at": now,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("update %q: %w", key, res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, ErrVersionConflict
	}
	return next, nil
}

func (b *GormBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	q := b.db.WithContext(ctx).Model(&models.Record{}).Order("record_key")
	if prefix != "" {
		q = q.Where("record_key LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%")
	}
	if err := q.Pluck("record_key", &keys).Error; err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	return keys, nil
}

func (b *GormBackend) Ping(ctx context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (b *GormBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

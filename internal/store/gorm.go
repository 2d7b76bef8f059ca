package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVEntry is the single table backing the gorm Store.
type KVEntry struct {
	Key       string `gorm:"primaryKey"`
	Value     []byte `gorm:"type:blob"`
	UpdatedAt time.Time
}

func (KVEntry) TableName() string {
	return "kv_entries"
}

// GormStore persists keys in a relational database (SQLite or Postgres).
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&KVEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv table: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry KVEntry
	err := s.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

func (s *GormStore) Set(ctx context.Context, key string, value []byte) error {
	entry := KVEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Delete(&KVEntry{}, "key = ?", key).Error
}

func (s *GormStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys := []string{}
	err := s.db.WithContext(ctx).
		Model(&KVEntry{}).
		Where("key LIKE ?", prefix+"%").
		Pluck("key", &keys).Error
	return keys, err
}

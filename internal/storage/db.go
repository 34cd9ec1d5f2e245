package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/storefront/internal/models"
)

// DB keeps keys in the storage_entries table, scoped by namespace. Writes
// made through this handle are published immediately; writes by other
// processes are only visible to readers, so consumers keep a poll running.
type DB struct {
	db        *gorm.DB
	namespace string
	origin    string
	bus       *bus
}

// NewDB returns a storage handle over an already migrated database.
func NewDB(db *gorm.DB, namespace string) *DB {
	return &DB{
		db:        db,
		namespace: namespace,
		origin:    uuid.NewString(),
		bus:       newBus(),
	}
}

func (s *DB) Get(ctx context.Context, key string) (string, bool, error) {
	if err := validKey(key); err != nil {
		return "", false, err
	}
	var entry models.StorageEntry
	err := s.db.WithContext(ctx).
		Where("namespace = ? AND key = ?", s.namespace, key).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("storage: get %s: %w", key, err)
	}
	return entry.Value, true, nil
}

func (s *DB) Set(ctx context.Context, key, value string) error {
	if err := validKey(key); err != nil {
		return err
	}
	entry := models.StorageEntry{
		Namespace: s.namespace,
		Key:       key,
		Value:     value,
		Origin:    s.origin,
		UpdatedAt: time.Now(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "origin", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("storage: set %s: %w", key, err)
	}

	s.bus.publish(Event{Key: key, Value: value, Origin: s.origin})
	return nil
}

func (s *DB) Remove(ctx context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Where("namespace = ? AND key = ?", s.namespace, key).
		Delete(&models.StorageEntry{})
	if res.Error != nil {
		return fmt.Errorf("storage: remove %s: %w", key, res.Error)
	}
	if res.RowsAffected > 0 {
		s.bus.publish(Event{Key: key, Removed: true, Origin: s.origin})
	}
	return nil
}

func (s *DB) Subscribe(fn func(Event)) func() {
	return s.bus.subscribe(fn)
}

// Close leaves the shared connection pool open.
func (s *DB) Close() error {
	return nil
}

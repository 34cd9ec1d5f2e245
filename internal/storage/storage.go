// Package storage is the durable key-value store that backs the client
// session. Keys are individually readable, writable and removable, and every
// driver reports changes to subscribers.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/database"
)

// Well-known keys.
const (
	KeyToken         = "token"
	KeyUserID        = "user_id"
	KeyPlanID        = "plan_id"
	KeyName          = "name"
	KeyUserData      = "userData"
	KeyUserSession   = "userSession"
	KeyConversations = "conversations"
)

// ErrInvalidKey is returned for keys that are empty or contain path separators.
var ErrInvalidKey = errors.New("storage: invalid key")

// Event describes a change to one key.
type Event struct {
	Key     string
	Value   string
	Removed bool
	// Origin identifies the writer when the driver knows it.
	Origin string
}

// Storage is the narrow interface the session layer depends on.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	// Subscribe registers fn for change events. The returned func deregisters
	// it and is safe to call more than once.
	Subscribe(fn func(Event)) (unsubscribe func())
	Close() error
}

// Open builds the driver selected by cfg.StorageDriver.
func Open(cfg *config.Config, logger *zap.Logger) (Storage, error) {
	switch cfg.StorageDriver {
	case "memory":
		return NewMemory(), nil
	case "file":
		return NewFile(cfg.StorageDir, logger)
	case "postgres":
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return NewDB(db, cfg.StorageNamespace), nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.StorageDriver)
	}
}

func validKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

type bus struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(Event)
}

func newBus() *bus {
	return &bus{subs: make(map[int]func(Event))}
}

func (b *bus) subscribe(fn func(Event)) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

func (b *bus) publish(ev Event) {
	b.mu.RLock()
	fns := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (b *bus) len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/storefront/internal/storage"
)

// DefaultReconcileInterval is the poll period when none is configured.
const DefaultReconcileInterval = time.Second

var watchedKeys = map[string]bool{
	storage.KeyToken:    true,
	storage.KeyUserID:   true,
	storage.KeyPlanID:   true,
	storage.KeyName:     true,
	storage.KeyUserData: true,
}

// ReconcilerOptions configures a Reconciler.
type ReconcilerOptions struct {
	Interval    time.Duration
	AdminPlanID string
	Logger      *zap.Logger
}

// Reconciler keeps the in-memory session in line with durable storage, which
// other writers (login callbacks, other shells) may change at any time.
// Storage change events trigger an immediate pass; the poll covers drivers
// and writers that produce no event.
type Reconciler struct {
	// mu makes each pass's read of storage and dispatch one step.
	mu sync.Mutex

	store       *Store
	storage     storage.Storage
	interval    time.Duration
	adminPlanID string
	logger      *zap.Logger
}

// NewReconciler returns a reconciler for s backed by st.
func NewReconciler(s *Store, st storage.Storage, opts ReconcilerOptions) *Reconciler {
	if opts.Interval <= 0 {
		opts.Interval = DefaultReconcileInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Reconciler{
		store:       s,
		storage:     st,
		interval:    opts.Interval,
		adminPlanID: opts.AdminPlanID,
		logger:      opts.Logger.Named("reconciler"),
	}
}

// Reconcile runs one pass: the most recent read wins. Passes never overlap.
func (r *Reconciler) Reconcile(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := LoadSession(ctx, r.storage)
	if err != nil {
		return err
	}

	current := r.store.State()
	var actions []Action
	session := current.Session

	switch {
	case stored == nil && current.Session != nil:
		r.logger.Info("session removed from storage", zap.String("user_id", current.Session.UserID))
		actions = append(actions, ClearSession{})
		session = nil
	case stored != nil && (current.Session == nil || *current.Session != *stored):
		r.logger.Info("session loaded from storage", zap.String("user_id", stored.UserID), zap.String("plan_id", stored.PlanID))
		actions = append(actions, SetSession{Session: *stored})
		session = stored
	}

	planID, ok := ResolvePlanID(ctx, session, r.storage)
	if view := LandingFor(planID, ok, r.adminPlanID); view != current.Landing {
		r.logger.Debug("landing view changed", zap.String("view", string(view)))
		actions = append(actions, SetLanding{View: view})
	}

	if len(actions) > 0 {
		r.store.Dispatch(actions...)
	}
	return nil
}

// Run reconciles once, then on every storage event for a session key and on
// every tick, until ctx is done. The storage listener and the ticker are
// released before Run returns.
func (r *Reconciler) Run(ctx context.Context) error {
	trigger := make(chan struct{}, 1)
	unsubscribe := r.storage.Subscribe(func(ev storage.Event) {
		if !watchedKeys[ev.Key] {
			return
		}
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.pass(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-trigger:
		}
		r.pass(ctx)
	}
}

func (r *Reconciler) pass(ctx context.Context) {
	if err := r.Reconcile(ctx); err != nil && ctx.Err() == nil {
		r.logger.Warn("reconcile failed", zap.Error(err))
	}
}

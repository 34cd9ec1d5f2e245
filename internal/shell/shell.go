// Package shell is a line-oriented storefront client. It drives the session
// and cart store, runs the phone verification flow and keeps the session in
// durable storage.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/storefront/internal/client"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/storage"
	"github.com/example/storefront/internal/store"
	"github.com/example/storefront/internal/verification"
)

// Backend is what the shell needs from the proxy.
type Backend interface {
	verification.Verifier
	Products(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	Categories(ctx context.Context) ([]models.Category, error)
	Session(ctx context.Context, token string) (*client.SessionInfo, error)
}

// Options configures a Shell.
type Options struct {
	Backend           Backend
	Storage           storage.Storage
	AdminPlanID       string
	ReconcileInterval time.Duration
	CountdownInterval time.Duration
	Logger            *zap.Logger
}

// Shell is one interactive session.
type Shell struct {
	backend    Backend
	storage    storage.Storage
	store      *store.Store
	flow       *verification.Flow
	reconciler *store.Reconciler
	countdown  time.Duration
	logger     *zap.Logger

	outMu sync.Mutex
	out   io.Writer

	landingMu sync.Mutex
	landing   store.View
}

// New builds a shell with an empty store.
func New(opts Options) *Shell {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.CountdownInterval <= 0 {
		opts.CountdownInterval = time.Second
	}

	s := &Shell{
		backend:   opts.Backend,
		storage:   opts.Storage,
		store:     store.New(store.State{}),
		countdown: opts.CountdownInterval,
		logger:    opts.Logger,
		out:       io.Discard,
		landing:   store.ViewStorefront,
	}
	s.reconciler = store.NewReconciler(s.store, opts.Storage, store.ReconcilerOptions{
		Interval:    opts.ReconcileInterval,
		AdminPlanID: opts.AdminPlanID,
		Logger:      opts.Logger,
	})
	s.flow = verification.NewFlow(opts.Backend, verification.FlowOptions{
		OnVerified: s.establishSession,
	})
	return s
}

// Store exposes the shell's store.
func (s *Shell) Store() *store.Store {
	return s.store
}

// Run reads commands from in until it is exhausted, the user quits or ctx
// is done. The reconciler and the countdown run for the lifetime of Run.
func (s *Shell) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	s.outMu.Lock()
	s.out = out
	s.outMu.Unlock()

	unsubscribe := s.store.Subscribe(s.onState)
	defer unsubscribe()

	if err := s.reconciler.Reconcile(ctx); err != nil {
		s.logger.Warn("restore session", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.reconciler.Run(gctx)
	})
	g.Go(func() error {
		s.flow.RunCountdown(gctx, s.countdown)
		return nil
	})

	// The reader is not part of the group: a terminal read cannot be
	// interrupted, so Run must not wait for it.
	done := make(chan struct{})
	defer close(done)
	lines, readErr := readLines(in, done)

	s.printf("storefront shell. Type \"help\" for commands.\n")

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			if quit := s.exec(ctx, line); quit {
				break loop
			}
		}
	}

	cancel()
	if err := g.Wait(); err != nil {
		return err
	}
	select {
	case err := <-readErr:
		return err
	default:
		return nil
	}
}

func readLines(in io.Reader, done <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errc <- err
		}
	}()
	return lines, errc
}

func (s *Shell) onState(st store.State) {
	s.landingMu.Lock()
	changed := st.Landing != s.landing
	s.landing = st.Landing
	s.landingMu.Unlock()

	if changed {
		s.printf("landing: %s\n", st.Landing)
	}
}

// establishSession persists the session handed out by a successful
// verification and reconciles right away.
func (s *Shell) establishSession(ctx context.Context, res *verification.VerifyCodeResult) error {
	if res.Session == nil {
		return errors.New("la verificación no devolvió una sesión")
	}
	if err := store.SaveSession(ctx, s.storage, res.Session.UserSession()); err != nil {
		return err
	}
	return s.reconciler.Reconcile(ctx)
}

func (s *Shell) printf(format string, args ...any) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) exec(ctx context.Context, line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	if name == "quit" || name == "exit" {
		return true
	}

	cmd, ok := commands[name]
	if !ok {
		s.printf("unknown command %q\n", name)
		return false
	}
	if err := cmd.run(s, ctx, args); err != nil {
		s.logger.Debug("command failed", zap.String("command", name), zap.Error(err))
		s.printf("error: %s\n", describe(err))
	}
	return false
}

// describe renders err for the user. Verification errors carry their own
// user-facing message.
func describe(err error) string {
	var verr *verification.Error
	if errors.As(err, &verr) {
		return verification.Message(err)
	}
	return err.Error()
}

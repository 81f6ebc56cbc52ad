package sightings

import (
	"context"
	"sync"
	"time"

	"github.com/valkaylee/wildlifetracker/internal/tracker/storage"
	"github.com/valkaylee/wildlifetracker/internal/tracker/system"
	"github.com/valkaylee/wildlifetracker/pkg/logger"
)

var _ system.Service = (*Reconciler)(nil)

// Reconciler periodically re-runs the statistics recomputation for every
// user so counters drifted by out-of-band edits converge back to the
// sighting source of truth.
type Reconciler struct {
	service  *Service
	users    storage.UserStore
	log      *logger.Logger
	interval time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewReconciler creates a lifecycle-managed statistics reconciler.
func NewReconciler(service *Service, users storage.UserStore, log *logger.Logger) *Reconciler {
	if log == nil {
		log = logger.NewDefault("stats-reconciler")
	}
	return &Reconciler{
		service:  service,
		users:    users,
		log:      log,
		interval: time.Minute,
	}
}

// WithInterval overrides the sweep cadence. Call before Start.
func (r *Reconciler) WithInterval(d time.Duration) {
	if d > 0 {
		r.interval = d
	}
}

func (r *Reconciler) Name() string { return "stats-reconciler" }

func (r *Reconciler) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				r.tick(runCtx)
			}
		}
	}()

	r.log.Info("stats reconciler started")
	return nil
}

func (r *Reconciler) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	cancel := r.cancel
	r.running = false
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.wg.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	r.log.Info("stats reconciler stopped")
	return nil
}

func (r *Reconciler) tick(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	users, err := r.users.ListUsersRanked(ctx)
	if err != nil {
		r.log.WithError(err).Warn("stats reconciler sweep failed")
		return
	}

	for _, u := range users {
		if err := r.service.recompute(ctx, u.ID, false); err != nil {
			r.log.WithError(err).WithField("user_id", u.ID).Warn("stats reconciliation failed")
		}
	}
}

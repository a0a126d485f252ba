package atrest

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Rewrapper lists and rewraps the at-rest blobs sealed under a given
// KEK. SealedBackend implements this over its own blob store so the
// sweeper never needs to know about records, only blob identities.
type Rewrapper interface {
	// BlobsSealedUnder returns the identities of every blob still
	// sealed under kekID.
	BlobsSealedUnder(ctx context.Context, kekID string) ([]string, error)

	// Rewrap opens the blob under its current KEK and reseals it under
	// the manager's current KEK, persisting the result in place.
	Rewrap(ctx context.Context, blobID string) error
}

// Sweeper periodically rewraps at-rest blobs off of grace-period KEKs
// and retires KEKs whose grace period has fully elapsed, grounded on
// the teacher's KEK sweeper.
type Sweeper struct {
	manager *Manager
	store   Rewrapper
	policy  RotationPolicy
	logger  *slog.Logger

	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSweeper builds a Sweeper. A non-positive interval defaults to
// one hour.
func NewSweeper(manager *Manager, store Rewrapper, policy RotationPolicy, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		manager:  manager,
		store:    store,
		policy:   policy,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (s *Sweeper) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.run(ctx)
}

// Stop gracefully stops the sweeper and waits for the in-flight sweep,
// if any, to finish.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
	})
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if s.manager.ShouldRotate() {
		if _, err := s.manager.RotateKEK(); err != nil {
			s.logger.Error("atrest sweep: KEK rotation failed", "err", err)
			return
		}
	}

	graceKEKs := s.manager.GraceKEKIDs()
	total := 0
	for _, kekID := range graceKEKs {
		n, err := s.rewrapOffOf(ctx, kekID)
		if err != nil {
			s.logger.Error("atrest sweep: rewrap failed", "kek_id", kekID, "err", err)
			continue
		}
		total += n
	}
	if total > 0 {
		s.logger.Info("atrest sweep: rewrapped blobs off grace-period KEKs", "count", total)
	}

	s.manager.CleanupGracePeriodKEKs()
}

func (s *Sweeper) rewrapOffOf(ctx context.Context, kekID string) (int, error) {
	blobIDs, err := s.store.BlobsSealedUnder(ctx, kekID)
	if err != nil {
		return 0, err
	}

	rewrapped := 0
	for _, blobID := range blobIDs {
		select {
		case <-ctx.Done():
			return rewrapped, ctx.Err()
		case <-s.stopCh:
			return rewrapped, nil
		default:
		}

		if err := s.store.Rewrap(ctx, blobID); err != nil {
			s.logger.Error("atrest sweep: failed to rewrap blob", "blob_id", blobID, "err", err)
			continue
		}
		rewrapped++
	}
	return rewrapped, nil
}

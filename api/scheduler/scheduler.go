package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron"
	"go.uber.org/zap"

	"legend/api/metrics"
	"legend/api/types"
)

var ErrStopped = errors.New("scheduler stopped")

type Runner interface {
	Run(ctx context.Context, group types.WalletGroup) (*types.ScanReport, error)
}

type Locker interface {
	Acquire(ctx context.Context) (func(), error)
}

// Scheduler scans every registered group, in registration order, once at start
// and then on each tick of a single cron entry. At most one scan runs at a
// time; a tick that arrives while one is in flight is skipped.
type Scheduler struct {
	cron     *cron.Cron
	runner   Runner
	locker   Locker
	metrics  *metrics.Metrics
	log      *zap.Logger
	interval time.Duration
	groups   []types.WalletGroup

	running atomic.Bool
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
	stopped bool
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(runner Runner, locker Locker, interval time.Duration, m *metrics.Metrics, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:     cron.New(),
		runner:   runner,
		locker:   locker,
		metrics:  m,
		log:      log,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Scheduler) AddGroup(group types.WalletGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = append(s.groups, group)
}

// Start runs the startup scan and registers the periodic one.
func (s *Scheduler) Start() error {
	if s.interval < time.Second {
		return fmt.Errorf("scan interval must be at least 1s, got %v", s.interval)
	}

	s.mu.Lock()
	if s.stopped || s.started {
		s.mu.Unlock()
		return ErrStopped
	}
	s.started = true
	s.mu.Unlock()

	err := s.cron.AddFunc("@every "+s.interval.String(), func() {
		_ = s.RunAll(s.ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule scans: %w", err)
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		_ = s.RunAll(s.ctx)
	}()

	s.cron.Start()
	s.log.Info("scheduler started", zap.Int("groups", len(s.groups)), zap.Duration("interval", s.interval))
	return nil
}

// RunAll scans every group in order inside one guarded run. A group whose scan
// aborts is logged and the next group still runs.
func (s *Scheduler) RunAll(ctx context.Context) error {
	s.mu.Lock()
	groups := append([]types.WalletGroup(nil), s.groups...)
	s.mu.Unlock()

	return s.guarded(ctx, groups, func() error {
		var errs []error
		for _, group := range groups {
			if ctx.Err() != nil {
				errs = append(errs, ctx.Err())
				break
			}
			if err := s.scan(ctx, group); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

// RunNow scans a single group under the same guard as RunAll. A skipped
// trigger returns types.ErrScanInProgress.
func (s *Scheduler) RunNow(ctx context.Context, group types.WalletGroup) error {
	return s.guarded(ctx, []types.WalletGroup{group}, func() error {
		return s.scan(ctx, group)
	})
}

// Stop cancels in-flight scans between addresses and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	s.cron.Stop()
	s.cancel()
	s.wg.Wait()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) guarded(ctx context.Context, groups []types.WalletGroup, fn func() error) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	if !s.running.CompareAndSwap(false, true) {
		s.skipped(groups, "scan in progress in this process")
		return types.ErrScanInProgress
	}
	defer s.running.Store(false)

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx)
		if errors.Is(err, types.ErrScanInProgress) {
			s.skipped(groups, "scan lock held by another process")
			return err
		}
		if err != nil {
			s.log.Error("scan lock unavailable", zap.Error(err))
			return err
		}
		defer release()
	}

	return fn()
}

func (s *Scheduler) scan(ctx context.Context, group types.WalletGroup) error {
	log := s.log.With(zap.String("group", group.Name))

	report, err := s.runner.Run(ctx, group)
	if err != nil {
		log.Error("scan aborted", zap.Error(err))
		return err
	}
	if len(report.Failed) > 0 {
		log.Warn("scan finished with failures", zap.Strings("failed", report.Failed))
	}
	return nil
}

func (s *Scheduler) skipped(groups []types.WalletGroup, reason string) {
	for _, group := range groups {
		s.log.Warn("scan skipped", zap.String("group", group.Name), zap.String("reason", reason))
		if s.metrics != nil {
			s.metrics.ScanSkipped(group.Name)
		}
	}
}

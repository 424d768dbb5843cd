package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"legend/api/metrics"
	"legend/api/types"
)

// BalanceFetcher returns one entry per address, in order. A failed address
// carries its error in WalletBalance.Error.
type BalanceFetcher interface {
	FetchBalances(ctx context.Context, addresses []string) []types.WalletBalance
}

type WalletStore interface {
	Upsert(ctx context.Context, record types.WalletRecord) error
}

type ScanRecorder interface {
	MarkScanned(ctx context.Context, group string, at time.Time) error
}

// Scanner walks a wallet group in order and writes one snapshot per address.
// Consecutive addresses are spaced by the throttle, across runs as well.
type Scanner struct {
	fetcher  BalanceFetcher
	store    WalletStore
	recorder ScanRecorder
	limiter  *rate.Limiter
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time
}

func NewScanner(fetcher BalanceFetcher, store WalletStore, recorder ScanRecorder, throttle time.Duration, m *metrics.Metrics, log *zap.Logger) *Scanner {
	limit := rate.Inf
	if throttle > 0 {
		limit = rate.Every(throttle)
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Scanner{
		fetcher:  fetcher,
		store:    store,
		recorder: recorder,
		limiter:  rate.NewLimiter(limit, 1),
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

// Run fetches and upserts every address of group. Fetch failures are logged and
// listed in the report; a store failure ends the scan and is returned.
func (s *Scanner) Run(ctx context.Context, group types.WalletGroup) (*types.ScanReport, error) {
	report := &types.ScanReport{
		Group:     group.Name,
		StartedAt: s.now(),
	}
	log := s.log.With(zap.String("group", group.Name))
	log.Info("scan started", zap.Int("wallets", len(group.Addresses)))

	for _, address := range group.Addresses {
		if err := s.limiter.Wait(ctx); err != nil {
			return s.finish(report), fmt.Errorf("scan %s interrupted: %w", group.Name, err)
		}

		balances := s.fetcher.FetchBalances(ctx, []string{address})
		if len(balances) != 1 || balances[0].Error != "" {
			log.Debug("skipping wallet", zap.String("address", address))
			report.Failed = append(report.Failed, address)
			continue
		}
		balance := balances[0]

		record := types.WalletRecord{
			Address:       balance.Address,
			NativeBalance: balance.NativeBalance,
			TokenBalance:  balance.TokenBalance,
			Primary:       group.Primary,
			UpdatedAt:     s.now(),
		}
		if err := s.store.Upsert(ctx, record); err != nil {
			return s.finish(report), fmt.Errorf("failed to store wallet %s: %w", address, err)
		}
		report.Scanned++
	}

	report = s.finish(report)
	if s.recorder != nil {
		if err := s.recorder.MarkScanned(ctx, group.Name, report.FinishedAt); err != nil {
			log.Warn("failed to record scan time", zap.Error(err))
		}
	}

	log.Info("scan finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("failed", len(report.Failed)),
		zap.Duration("took", report.FinishedAt.Sub(report.StartedAt)),
	)

	return report, nil
}

func (s *Scanner) finish(report *types.ScanReport) *types.ScanReport {
	report.FinishedAt = s.now()
	if s.metrics != nil {
		s.metrics.ObserveScan(report.Group, report.Scanned, len(report.Failed), report.FinishedAt.Sub(report.StartedAt))
	}
	return report
}

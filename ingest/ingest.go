// Package ingest drives refresh cycles: it schedules periodic
// aggregations, serves manual refresh triggers, and persists each
// completed cycle as an atomically-swapped snapshot.
package ingest

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/sig-0/iq"

	"github.com/casafx/madrates/storage"
	"github.com/casafx/madrates/storage/types"
)

var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Aggregator runs one full fetch + extraction cycle across all
// configured sources
type Aggregator interface {
	Refresh(ctx context.Context) ([]*types.SourceRateSet, error)
}

// scheduledRefresh is a single scheduled refresh cycle
type scheduledRefresh struct {
	at time.Time
}

// Less is utilized to sort scheduled refreshes by their due-time
func (a scheduledRefresh) Less(b scheduledRefresh) bool {
	return a.at.Before(b.at)
}

// triggerRequest is a manual refresh demand, answered once the cycle
// settles
type triggerRequest struct {
	respCh chan triggerResponse
}

type triggerResponse struct {
	snapshot *types.Snapshot
	err      error
}

// Service is the refresh cycle scheduler
type Service struct {
	aggregator Aggregator
	storage    storage.Storage
	logger     *slog.Logger

	interval      time.Duration // delay between successful cycles
	retryDelay    time.Duration // delay after a failed cycle
	queryInterval time.Duration // schedule poll interval

	q    iq.Queue[scheduledRefresh]
	qMux sync.Mutex

	triggerCh chan triggerRequest
}

// New creates a new refresh service
func New(aggregator Aggregator, st storage.Storage, opts ...Option) *Service {
	s := &Service{
		aggregator:    aggregator,
		storage:       st,
		logger:        noopLogger,
		interval:      time.Minute * 10,
		retryDelay:    time.Second * 30,
		queryInterval: time.Second,
		q:             iq.NewQueue[scheduledRefresh](),
		triggerCh:     make(chan triggerRequest),
	}

	// Apply the options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// TriggerRefresh demands an immediate refresh cycle and waits for its
// outcome. The cycle runs on the service loop, so triggered and scheduled
// cycles never interleave and stale results can't cross into a newer
// snapshot
func (s *Service) TriggerRefresh(ctx context.Context) (*types.Snapshot, error) {
	req := triggerRequest{
		respCh: make(chan triggerResponse, 1),
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case s.triggerCh <- req:
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case resp := <-req.respCh:
		return resp.snapshot, resp.err
	}
}

// Start starts the refresh service loop [BLOCKING]
func (s *Service) Start(ctx context.Context) error {
	// First cycle runs on boot
	s.schedule(time.Now().UTC())

	ticker := time.NewTicker(s.queryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("refresh service shut down")

			return nil
		case <-ticker.C:
			if !s.due() {
				continue
			}

			_, err := s.runCycle(ctx)

			s.schedule(s.nextAt(err))
		case req := <-s.triggerCh:
			snapshot, err := s.runCycle(ctx)

			req.respCh <- triggerResponse{
				snapshot: snapshot,
				err:      err,
			}

			// A manual cycle resets the schedule
			s.clearSchedule()
			s.schedule(s.nextAt(err))
		}
	}
}

// runCycle executes one aggregation cycle and persists the result
func (s *Service) runCycle(ctx context.Context) (*types.Snapshot, error) {
	s.logger.Info("starting refresh cycle")

	sets, err := s.aggregator.Refresh(ctx)
	if err != nil {
		s.logger.Error(
			"refresh cycle failed",
			"err", err,
		)

		return nil, err
	}

	snapshot := &types.Snapshot{
		ID:          xid.New(),
		Sets:        sets,
		RefreshedAt: time.Now().UTC(),
	}

	s.applyChanges(ctx, snapshot)

	saveCtx, cancelFn := context.WithTimeout(ctx, time.Second*10)
	defer cancelFn()

	if err := s.storage.SaveSnapshot(saveCtx, snapshot); err != nil {
		s.logger.Error(
			"unable to save snapshot",
			"id", snapshot.ID.String(),
			"err", err,
		)
	}

	s.logger.Info(
		"refresh cycle complete",
		"id", snapshot.ID.String(),
		"sources", len(snapshot.Sets),
	)

	return snapshot, nil
}

// applyChanges annotates the snapshot's quotes with buy-rate movement
// against the previous snapshot, when one exists
func (s *Service) applyChanges(ctx context.Context, snapshot *types.Snapshot) {
	prev, err := s.storage.LatestSnapshot(ctx)
	if err != nil {
		s.logger.Warn(
			"unable to load previous snapshot",
			"err", err,
		)

		return
	}

	if prev == nil {
		return
	}

	for _, set := range snapshot.Sets {
		prevSet := prev.Set(set.SourceName)
		if prevSet == nil {
			continue
		}

		for _, quote := range set.Quotes {
			prevQuote := prevSet.Quote(quote.Currency)
			if prevQuote == nil || prevQuote.Buy <= 0 {
				continue
			}

			var (
				abs = quote.Buy - prevQuote.Buy
				pct = abs / prevQuote.Buy * 100
			)

			quote.ChangeAbs = &abs
			quote.ChangePct = &pct
		}
	}
}

// nextAt picks the next cycle due-time based on the last outcome
func (s *Service) nextAt(err error) time.Time {
	now := time.Now().UTC()

	if err != nil {
		return now.Add(s.retryDelay)
	}

	return now.Add(s.interval)
}

// schedule queues a refresh cycle at the given time
func (s *Service) schedule(at time.Time) {
	s.qMux.Lock()
	defer s.qMux.Unlock()

	s.q.Push(scheduledRefresh{at: at})
}

// due reports whether a scheduled refresh is due, consuming it
func (s *Service) due() bool {
	s.qMux.Lock()
	defer s.qMux.Unlock()

	if s.q.Len() == 0 {
		return false
	}

	if s.q.Index(0).at.After(time.Now().UTC()) {
		return false
	}

	s.q.PopFront()

	return true
}

// clearSchedule drops all pending scheduled refreshes
func (s *Service) clearSchedule() {
	s.qMux.Lock()
	defer s.qMux.Unlock()

	for s.q.Len() > 0 {
		s.q.PopFront()
	}
}

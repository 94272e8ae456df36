package ingest

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casafx/madrates/aggregate"
	"github.com/casafx/madrates/storage/mock"
	"github.com/casafx/madrates/storage/types"
)

func testRateSets(buy float64) []*types.SourceRateSet {
	return []*types.SourceRateSet{
		{
			SourceName: "Banque Populaire",
			Quotes: []*types.RateQuote{
				{
					Currency: types.CurrencyUSD,
					Buy:      buy,
					Sell:     buy + 0.27,
				},
			},
			RetrievedAt: time.Now().UTC(),
		},
	}
}

func TestService_New(t *testing.T) {
	t.Parallel()

	s := New(&mockAggregator{}, &mock.Storage{})

	require.NotNil(t, s)

	assert.NotNil(t, s.logger)
	assert.Equal(t, time.Minute*10, s.interval)
	assert.Equal(t, time.Second*30, s.retryDelay)
	assert.Equal(t, time.Second, s.queryInterval)
}

func TestService_Start(t *testing.T) {
	t.Parallel()

	t.Run("ctx canceled", func(t *testing.T) {
		t.Parallel()

		var (
			s     = New(&mockAggregator{}, &mock.Storage{})
			errCh = make(chan error, 1)
		)

		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			errCh <- s.Start(ctx)
		}()

		cancel()

		select {
		case err := <-errCh:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("service did not shut down in time")
		}
	})

	t.Run("boot cycle saves a snapshot", func(t *testing.T) {
		t.Parallel()

		var (
			saved    *types.Snapshot
			saveDone = make(chan struct{})

			st = &mock.Storage{
				SaveSnapshotFn: func(_ context.Context, snapshot *types.Snapshot) error {
					saved = snapshot

					close(saveDone)

					return nil
				},
			}

			agg = &mockAggregator{
				refreshFn: func(_ context.Context) ([]*types.SourceRateSet, error) {
					return testRateSets(9.85), nil
				},
			}

			s     = New(agg, st, WithQueryInterval(time.Millisecond*10))
			errCh = make(chan error, 1)
		)

		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			errCh <- s.Start(ctx)
		}()

		select {
		case <-saveDone:
			// Success
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for snapshot save")
		}

		cancel()
		require.NoError(t, <-errCh)

		require.NotNil(t, saved)
		require.Len(t, saved.Sets, 1)

		assert.False(t, saved.ID.IsNil())
		assert.False(t, saved.RefreshedAt.IsZero())
		assert.Equal(t, "Banque Populaire", saved.Sets[0].SourceName)
	})

	t.Run("failed cycle retried sooner", func(t *testing.T) {
		t.Parallel()

		var (
			refreshCount atomic.Int32
			retryDone    = make(chan struct{})

			agg = &mockAggregator{
				refreshFn: func(_ context.Context) ([]*types.SourceRateSet, error) {
					if refreshCount.Add(1) == 2 {
						close(retryDone)
					}

					return nil, &aggregate.AggregationError{Attempted: 2}
				},
			}

			s = New(
				agg,
				&mock.Storage{},
				WithQueryInterval(time.Millisecond*10),
				WithRetryDelay(time.Millisecond*50),
			)

			errCh = make(chan error, 1)
		)

		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			errCh <- s.Start(ctx)
		}()

		select {
		case <-retryDone:
			// Success
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for retry")
		}

		cancel()
		require.NoError(t, <-errCh)

		assert.GreaterOrEqual(t, refreshCount.Load(), int32(2))
	})
}

func TestService_TriggerRefresh(t *testing.T) {
	t.Parallel()

	t.Run("manual trigger returns the new snapshot", func(t *testing.T) {
		t.Parallel()

		var (
			st = &mock.Storage{}

			agg = &mockAggregator{
				refreshFn: func(_ context.Context) ([]*types.SourceRateSet, error) {
					return testRateSets(9.85), nil
				},
			}

			// Long query interval, so only the trigger can start a cycle
			s = New(
				agg,
				st,
				WithQueryInterval(time.Minute),
			)

			errCh = make(chan error, 1)
		)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go func() {
			errCh <- s.Start(ctx)
		}()

		snapshot, err := s.TriggerRefresh(ctx)
		require.NoError(t, err)

		require.NotNil(t, snapshot)
		require.Len(t, snapshot.Sets, 1)

		cancel()
		require.NoError(t, <-errCh)
	})

	t.Run("manual trigger surfaces aggregation failure", func(t *testing.T) {
		t.Parallel()

		var (
			agg = &mockAggregator{
				refreshFn: func(_ context.Context) ([]*types.SourceRateSet, error) {
					return nil, &aggregate.AggregationError{Attempted: 3}
				},
			}

			s     = New(agg, &mock.Storage{}, WithQueryInterval(time.Minute))
			errCh = make(chan error, 1)
		)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go func() {
			errCh <- s.Start(ctx)
		}()

		snapshot, err := s.TriggerRefresh(ctx)

		assert.Nil(t, snapshot)

		var aggErr *aggregate.AggregationError

		require.ErrorAs(t, err, &aggErr)
		assert.Equal(t, 3, aggErr.Attempted)

		cancel()
		require.NoError(t, <-errCh)
	})
}

func TestService_ApplyChanges(t *testing.T) {
	t.Parallel()

	t.Run("movement against previous snapshot", func(t *testing.T) {
		t.Parallel()

		var (
			prev = &types.Snapshot{
				Sets:        testRateSets(9.80),
				RefreshedAt: time.Now().UTC().Add(-time.Hour),
			}

			st = &mock.Storage{
				LatestSnapshotFn: func(_ context.Context) (*types.Snapshot, error) {
					return prev, nil
				},
			}

			s = New(&mockAggregator{}, st)

			next = &types.Snapshot{
				Sets: testRateSets(9.85),
			}
		)

		s.applyChanges(context.Background(), next)

		quote := next.Sets[0].Quotes[0]

		require.NotNil(t, quote.ChangeAbs)
		require.NotNil(t, quote.ChangePct)

		assert.InDelta(t, 0.05, *quote.ChangeAbs, 1e-9)
		assert.InDelta(t, 0.05/9.80*100, *quote.ChangePct, 1e-9)
	})

	t.Run("no previous snapshot leaves quotes untouched", func(t *testing.T) {
		t.Parallel()

		var (
			s    = New(&mockAggregator{}, &mock.Storage{})
			next = &types.Snapshot{
				Sets: testRateSets(9.85),
			}
		)

		s.applyChanges(context.Background(), next)

		quote := next.Sets[0].Quotes[0]

		assert.Nil(t, quote.ChangeAbs)
		assert.Nil(t, quote.ChangePct)
	})
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casafx/madrates/aggregate"
	"github.com/casafx/madrates/storage/mock"
	"github.com/casafx/madrates/storage/types"
)

type triggerDelegate func(context.Context) (*types.Snapshot, error)

type mockRefresher struct {
	triggerFn triggerDelegate
}

func (m *mockRefresher) TriggerRefresh(ctx context.Context) (*types.Snapshot, error) {
	if m.triggerFn != nil {
		return m.triggerFn(ctx)
	}

	return nil, nil
}

func testSnapshot() *types.Snapshot {
	retrievedAt := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)

	return &types.Snapshot{
		ID: xid.New(),
		Sets: []*types.SourceRateSet{
			{
				SourceName: "Banque Populaire",
				Quotes: []*types.RateQuote{
					{
						Currency: types.CurrencyUSD,
						Buy:      9.85,
						Sell:     10.12,
					},
					{
						Currency: types.CurrencyEUR,
						Buy:      10.68,
						Sell:     10.95,
					},
				},
				RetrievedAt: retrievedAt,
			},
			{
				SourceName: "Attijariwafa Bank",
				Quotes: []*types.RateQuote{
					{
						Currency: types.CurrencyUSD,
						Buy:      9.86,
						Sell:     10.11,
					},
				},
				RetrievedAt: retrievedAt,
			},
		},
		RefreshedAt: retrievedAt,
	}
}

func TestHandlers_Rates(t *testing.T) {
	t.Parallel()

	t.Run("storage error", func(t *testing.T) {
		t.Parallel()

		storage := &mock.Storage{
			LatestSnapshotFn: func(_ context.Context) (*types.Snapshot, error) {
				return nil, errors.New("boom")
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		w := httptest.NewRecorder()
		s.Rates(w, httptest.NewRequest(http.MethodGet, "/v1/rates", http.NoBody))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("no completed cycle", func(t *testing.T) {
		t.Parallel()

		s := &Server{
			storage: &mock.Storage{},
			logger:  noopLogger,
		}

		w := httptest.NewRecorder()
		s.Rates(w, httptest.NewRequest(http.MethodGet, "/v1/rates", http.NoBody))

		assert.Equal(t, http.StatusNotFound, w.Code)

		var resp ErrorResponse

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, errNoRatesAvailable.Error(), resp.Error)
	})

	t.Run("latest snapshot returned", func(t *testing.T) {
		t.Parallel()

		snapshot := testSnapshot()

		storage := &mock.Storage{
			LatestSnapshotFn: func(_ context.Context) (*types.Snapshot, error) {
				return snapshot, nil
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		w := httptest.NewRecorder()
		s.Rates(w, httptest.NewRequest(http.MethodGet, "/v1/rates", http.NoBody))

		require.Equal(t, http.StatusOK, w.Code)

		var resp RatesResponse

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

		require.Len(t, resp.Results, 2)
		assert.Equal(t, "Banque Populaire", resp.Results[0].SourceName)
		assert.Equal(t, snapshot.RefreshedAt, resp.RefreshedAt)
	})
}

func TestHandlers_CompareRates(t *testing.T) {
	t.Parallel()

	newCompareRequest := func(a, b string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/v1/rates/compare", http.NoBody)

		q := req.URL.Query()
		q.Set("a", a)
		q.Set("b", b)
		req.URL.RawQuery = q.Encode()

		return req
	}

	t.Run("missing subjects", func(t *testing.T) {
		t.Parallel()

		s := &Server{
			storage: &mock.Storage{},
			logger:  noopLogger,
		}

		w := httptest.NewRecorder()
		s.CompareRates(w, newCompareRequest("Banque Populaire", ""))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("entries for both subjects", func(t *testing.T) {
		t.Parallel()

		storage := &mock.Storage{
			LatestSnapshotFn: func(_ context.Context) (*types.Snapshot, error) {
				return testSnapshot(), nil
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		w := httptest.NewRecorder()
		s.CompareRates(w, newCompareRequest("Banque Populaire", "Attijariwafa Bank"))

		require.Equal(t, http.StatusOK, w.Code)

		var resp ComparisonResponse

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

		// Only USD is quoted by both subjects
		require.Len(t, resp.Results, 1)
		assert.Equal(t, types.CurrencyUSD, resp.Results[0].Currency)

		best, tie := resp.Results[0].BestBuy()

		assert.Equal(t, "Attijariwafa Bank", best)
		assert.False(t, tie)
	})

	t.Run("unknown subject yields empty result", func(t *testing.T) {
		t.Parallel()

		storage := &mock.Storage{
			LatestSnapshotFn: func(_ context.Context) (*types.Snapshot, error) {
				return testSnapshot(), nil
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		w := httptest.NewRecorder()
		s.CompareRates(w, newCompareRequest("Banque Populaire", "Unknown Bank"))

		require.Equal(t, http.StatusOK, w.Code)

		var resp ComparisonResponse

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Empty(t, resp.Results)
	})
}

func TestHandlers_Sources(t *testing.T) {
	t.Parallel()

	t.Run("storage error", func(t *testing.T) {
		t.Parallel()

		storage := &mock.Storage{
			ListSourcesFn: func(_ context.Context) ([]string, error) {
				return nil, errors.New("boom")
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		w := httptest.NewRecorder()
		s.Sources(w, httptest.NewRequest(http.MethodGet, "/v1/sources", http.NoBody))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("source names returned", func(t *testing.T) {
		t.Parallel()

		storage := &mock.Storage{
			ListSourcesFn: func(_ context.Context) ([]string, error) {
				return []string{"Attijariwafa Bank", "Banque Populaire"}, nil
			},
		}

		s := &Server{
			storage: storage,
			logger:  noopLogger,
		}

		w := httptest.NewRecorder()
		s.Sources(w, httptest.NewRequest(http.MethodGet, "/v1/sources", http.NoBody))

		require.Equal(t, http.StatusOK, w.Code)

		var resp SourcesResponse

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, []string{"Attijariwafa Bank", "Banque Populaire"}, resp.Results)
	})
}

func TestHandlers_Refresh(t *testing.T) {
	t.Parallel()

	t.Run("no refresher wired", func(t *testing.T) {
		t.Parallel()

		s := &Server{
			storage: &mock.Storage{},
			logger:  noopLogger,
		}

		w := httptest.NewRecorder()
		s.Refresh(w, httptest.NewRequest(http.MethodPost, "/v1/refresh", http.NoBody))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("aggregation failure surfaced", func(t *testing.T) {
		t.Parallel()

		s := &Server{
			storage: &mock.Storage{},
			logger:  noopLogger,
			refresher: &mockRefresher{
				triggerFn: func(_ context.Context) (*types.Snapshot, error) {
					return nil, &aggregate.AggregationError{Attempted: 3}
				},
			},
		}

		w := httptest.NewRecorder()
		s.Refresh(w, httptest.NewRequest(http.MethodPost, "/v1/refresh", http.NoBody))

		assert.Equal(t, http.StatusBadGateway, w.Code)

		var resp ErrorResponse

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Contains(t, resp.Error, "3 attempted sources")
	})

	t.Run("fresh snapshot returned", func(t *testing.T) {
		t.Parallel()

		snapshot := testSnapshot()

		s := &Server{
			storage: &mock.Storage{},
			logger:  noopLogger,
			refresher: &mockRefresher{
				triggerFn: func(_ context.Context) (*types.Snapshot, error) {
					return snapshot, nil
				},
			},
		}

		w := httptest.NewRecorder()
		s.Refresh(w, httptest.NewRequest(http.MethodPost, "/v1/refresh", http.NoBody))

		require.Equal(t, http.StatusOK, w.Code)

		var resp RatesResponse

		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

		require.Len(t, resp.Results, 2)
		assert.Equal(t, snapshot.RefreshedAt, resp.RefreshedAt)
	})
}

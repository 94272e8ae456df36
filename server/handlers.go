package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/casafx/madrates/aggregate"
	"github.com/casafx/madrates/storage/types"
)

var (
	errNoRatesAvailable = errors.New("no rates available yet")

	errUnableToFetchRates   = errors.New("unable to fetch rates")
	errUnableToFetchSources = errors.New("unable to fetch sources")

	errMissingSubjects    = errors.New("missing comparison subjects (a, b)")
	errRefreshUnavailable = errors.New("refresh is not available")
	errRefreshFailed      = errors.New("unable to refresh rates")
)

// Rates returns the latest refresh snapshot
func (s *Server) Rates(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.storage.LatestSnapshot(r.Context())
	if err != nil {
		s.logger.Debug(
			"unable to fetch snapshot",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchRates,
		)

		return
	}

	if snapshot == nil {
		// No completed cycle; an explicit miss, never fabricated data
		writeError(w, http.StatusNotFound, errNoRatesAvailable)

		return
	}

	resp := &RatesResponse{
		Results:     snapshot.Sets,
		RefreshedAt: snapshot.RefreshedAt,
	}

	writeJSON(w, http.StatusOK, resp)
}

// CompareRates returns the cross-source comparison of two named subjects,
// derived on demand from the latest snapshot
func (s *Server) CompareRates(w http.ResponseWriter, r *http.Request) {
	var (
		subjectA = strings.TrimSpace(r.URL.Query().Get("a"))
		subjectB = strings.TrimSpace(r.URL.Query().Get("b"))
	)

	if subjectA == "" || subjectB == "" {
		writeError(w, http.StatusBadRequest, errMissingSubjects)

		return
	}

	snapshot, err := s.storage.LatestSnapshot(r.Context())
	if err != nil {
		s.logger.Debug(
			"unable to fetch snapshot",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchRates,
		)

		return
	}

	var sets []*types.SourceRateSet
	if snapshot != nil {
		sets = snapshot.Sets
	}

	// A missing subject yields an empty comparison, not an error
	entries := aggregate.Compare(sets, subjectA, subjectB)
	if entries == nil {
		entries = []types.ComparisonEntry{}
	}

	resp := &ComparisonResponse{
		Results: entries,
	}

	writeJSON(w, http.StatusOK, resp)
}

// Sources returns the source names present in the stored rate data
func (s *Server) Sources(w http.ResponseWriter, r *http.Request) {
	items, err := s.storage.ListSources(r.Context())
	if err != nil {
		s.logger.Debug(
			"unable to fetch sources",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchSources,
		)

		return
	}

	resp := &SourcesResponse{
		Results: items,
	}

	writeJSON(w, http.StatusOK, resp)
}

// Refresh triggers an immediate refresh cycle
func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	if s.refresher == nil {
		writeError(w, http.StatusServiceUnavailable, errRefreshUnavailable)

		return
	}

	snapshot, err := s.refresher.TriggerRefresh(r.Context())
	if err != nil {
		var aggErr *aggregate.AggregationError

		if errors.As(err, &aggErr) {
			// Every source failed; surface the condition explicitly
			writeError(w, http.StatusBadGateway, aggErr)

			return
		}

		s.logger.Debug(
			"unable to trigger refresh",
			"err", err,
		)

		writeError(w, http.StatusInternalServerError, errRefreshFailed)

		return
	}

	resp := &RatesResponse{
		Results:     snapshot.Sets,
		RefreshedAt: snapshot.RefreshedAt,
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // Fine to ignore
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := &ErrorResponse{
		Error: err.Error(),
	}

	writeJSON(w, status, resp)
}

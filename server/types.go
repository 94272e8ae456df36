package server

import (
	"time"

	"github.com/casafx/madrates/storage/types"
)

// RatesResponse is the current normalized rate set, one entry per source
// that yielded usable data in the last successful cycle
type RatesResponse struct {
	Results     []*types.SourceRateSet `json:"results"`
	RefreshedAt time.Time              `json:"refreshed_at"`
}

// ComparisonResponse is the derived cross-source comparison view
type ComparisonResponse struct {
	Results []types.ComparisonEntry `json:"results"`
}

type SourcesResponse struct {
	Results []string `json:"results"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

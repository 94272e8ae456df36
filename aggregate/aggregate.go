// Package aggregate orchestrates one refresh cycle: fetch every configured
// source concurrently, run its extractor per currency, and assemble the
// per-source rate sets. Individual source failures are isolated; only a
// cycle where every source comes up empty is an error.
package aggregate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/casafx/madrates/extract"
	"github.com/casafx/madrates/storage/types"
)

var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const defaultSourceTimeout = time.Second * 10

// Fetcher retrieves raw page text for a source URL. Empty text means the
// source is unavailable
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) string
}

// Source is a single configured institution: where to fetch, which
// currencies to look for, and the extraction strategy for its markup.
// Adding an institution means adding one Source entry
type Source struct {
	Name       string
	URL        string
	Currencies []types.Currency
	Extractor  extract.Extractor
}

// AggregationError is raised when a refresh cycle yields zero quotes
// across all configured sources
type AggregationError struct {
	Attempted int // number of sources attempted in the cycle
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("no usable rates from any of %d attempted sources", e.Attempted)
}

// Aggregator runs fetch + extraction across the configured sources
type Aggregator struct {
	fetcher Fetcher
	logger  *slog.Logger

	sources       []Source
	sourceTimeout time.Duration
}

// New creates a new rate aggregator over the given sources
func New(fetcher Fetcher, sources []Source, opts ...Option) *Aggregator {
	a := &Aggregator{
		fetcher:       fetcher,
		logger:        noopLogger,
		sources:       sources,
		sourceTimeout: defaultSourceTimeout,
	}

	// Apply the options
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Sources returns the names of the configured sources, in order
func (a *Aggregator) Sources() []string {
	names := make([]string, 0, len(a.sources))
	for _, src := range a.sources {
		names = append(names, src.Name)
	}

	return names
}

// Refresh runs one full aggregation cycle. All sources are fetched
// concurrently; the cycle completes once every fetch settles. Sources that
// fail or yield nothing are omitted from the result. The only error case
// is a cycle where no source produced a single quote -- fabricated data is
// never substituted
func (a *Aggregator) Refresh(ctx context.Context) ([]*types.SourceRateSet, error) {
	var (
		retrievedAt = time.Now().UTC()
		results     = make([]*types.SourceRateSet, len(a.sources))
	)

	group, gCtx := errgroup.WithContext(ctx)

	for i, src := range a.sources {
		group.Go(func() error {
			results[i] = a.collect(gCtx, src, retrievedAt)

			return nil
		})
	}

	// Source failures surface as nil results, never as group errors
	_ = group.Wait() //nolint:errcheck // Fine to ignore

	sets := make([]*types.SourceRateSet, 0, len(results))

	for _, set := range results {
		if set != nil {
			sets = append(sets, set)
		}
	}

	if len(sets) == 0 {
		return nil, &AggregationError{
			Attempted: len(a.sources),
		}
	}

	return sets, nil
}

// collect fetches and extracts a single source's quotes. A nil return
// means the source is skipped for this cycle
func (a *Aggregator) collect(
	ctx context.Context,
	src Source,
	retrievedAt time.Time,
) *types.SourceRateSet {
	// A slow source is treated as failed, not allowed to stall the cycle
	fetchCtx, cancelFn := context.WithTimeout(ctx, a.sourceTimeout)
	defer cancelFn()

	raw := a.fetcher.Fetch(fetchCtx, src.URL)
	if raw == "" {
		a.logger.Warn(
			"source unavailable",
			"source", src.Name,
		)

		return nil
	}

	text := extract.Flatten(raw)

	quotes := make([]*types.RateQuote, 0, len(src.Currencies))

	for _, currency := range src.Currencies {
		quote, ok := src.Extractor.Extract(text, currency)
		if !ok {
			// Not an error: the page simply doesn't report this currency
			a.logger.Debug(
				"currency not extracted",
				"source", src.Name,
				"currency", currency,
			)

			continue
		}

		quotes = append(quotes, quote)
	}

	if len(quotes) == 0 {
		a.logger.Warn(
			"no quotes extracted",
			"source", src.Name,
		)

		return nil
	}

	return &types.SourceRateSet{
		SourceName:  src.Name,
		Quotes:      quotes,
		RetrievedAt: retrievedAt,
	}
}

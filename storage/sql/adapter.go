package sql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/xid"

	"github.com/casafx/madrates/storage/types"
)

// Storage is the Postgres-backed snapshot store, keeping the full refresh
// history (the latest snapshot doubles as a fallback dataset when a later
// cycle fails)
type Storage struct {
	conn *pgx.Conn
}

func NewStorage(conn *pgx.Conn) *Storage {
	return &Storage{
		conn: conn,
	}
}

func (s *Storage) SaveSnapshot(ctx context.Context, snapshot *types.Snapshot) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("unable to begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx) //nolint:errcheck // Fine to ignore
	}()

	_, err = tx.Exec(
		ctx,
		`INSERT INTO snapshots (id, refreshed_at) VALUES ($1, $2)`,
		snapshot.ID.String(),
		snapshot.RefreshedAt,
	)
	if err != nil {
		return fmt.Errorf("unable to save snapshot: %w", err)
	}

	for setPos, set := range snapshot.Sets {
		for quotePos, quote := range set.Quotes {
			_, err = tx.Exec(
				ctx,
				`INSERT INTO quotes (
					snapshot_id, set_pos, quote_pos, source_name,
					currency, buy_rate, sell_rate,
					change_abs, change_pct, retrieved_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				snapshot.ID.String(),
				setPos,
				quotePos,
				set.SourceName,
				quote.Currency.String(),
				quote.Buy,
				quote.Sell,
				quote.ChangeAbs,
				quote.ChangePct,
				set.RetrievedAt,
			)
			if err != nil {
				return fmt.Errorf("unable to save quote: %w", err)
			}
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("unable to commit tx: %w", err)
	}

	return nil
}

func (s *Storage) LatestSnapshot(ctx context.Context) (*types.Snapshot, error) {
	var (
		rawID       string
		refreshedAt time.Time
	)

	err := s.conn.QueryRow(
		ctx,
		`SELECT id, refreshed_at FROM snapshots ORDER BY refreshed_at DESC LIMIT 1`,
	).Scan(&rawID, &refreshedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil //nolint:nilnil // valid case
		}

		return nil, fmt.Errorf("unable to fetch latest snapshot: %w", err)
	}

	id, err := xid.FromString(rawID)
	if err != nil {
		return nil, fmt.Errorf("unable to parse snapshot ID: %w", err)
	}

	rows, err := s.conn.Query(
		ctx,
		`SELECT source_name, currency, buy_rate, sell_rate,
			change_abs, change_pct, retrieved_at
		FROM quotes
		WHERE snapshot_id = $1
		ORDER BY set_pos, quote_pos`,
		rawID,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch snapshot quotes: %w", err)
	}
	defer rows.Close()

	snapshot := &types.Snapshot{
		ID:          id,
		RefreshedAt: refreshedAt.UTC(),
	}

	var current *types.SourceRateSet

	for rows.Next() {
		var (
			sourceName           string
			currency             string
			buy, sell            float64
			changeAbs, changePct *float64
			retrievedAt          time.Time
		)

		err = rows.Scan(
			&sourceName,
			&currency,
			&buy,
			&sell,
			&changeAbs,
			&changePct,
			&retrievedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("unable to scan quote: %w", err)
		}

		if current == nil || current.SourceName != sourceName {
			current = &types.SourceRateSet{
				SourceName:  sourceName,
				RetrievedAt: retrievedAt.UTC(),
			}

			snapshot.Sets = append(snapshot.Sets, current)
		}

		current.Quotes = append(current.Quotes, &types.RateQuote{
			Currency:  types.Currency(currency),
			Buy:       buy,
			Sell:      sell,
			ChangeAbs: changeAbs,
			ChangePct: changePct,
		})
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to read snapshot quotes: %w", err)
	}

	return snapshot, nil
}

func (s *Storage) ListSources(ctx context.Context) ([]string, error) {
	rows, err := s.conn.Query(
		ctx,
		`SELECT DISTINCT source_name FROM quotes ORDER BY source_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch sources: %w", err)
	}
	defer rows.Close()

	var out []string

	for rows.Next() {
		var name string

		if err = rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("unable to scan source: %w", err)
		}

		out = append(out, name)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to read sources: %w", err)
	}

	return out, nil
}

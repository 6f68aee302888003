// Package stats runs SQL summaries over decision archives with DuckDB.
package stats

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/brensch/snekgreedy/store"
)

// OutcomeCount aggregates archived decisions that ended the same way.
type OutcomeCount struct {
	Outcome          string
	Decisions        int64
	AvgRounds        float64
	MaxRounds        int64
	FallbackSafe     int64
	AvgElapsedMicros float64
}

type Archive struct {
	db    *sql.DB
	files int
}

// Open exposes every finished batch file under the given paths as the view
// decisions. A path may be a single parquet file or an archive directory.
func Open(paths ...string) (*Archive, error) {
	var files []string
	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !st.IsDir() {
			files = append(files, p)
			continue
		}
		found, err := store.ListArchive(p)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, err
	}
	_, _ = db.Exec("PRAGMA threads=4")

	query := `CREATE OR REPLACE VIEW decisions AS
		SELECT * FROM (SELECT NULL::VARCHAR AS outcome, NULL::INTEGER AS rounds,
			NULL::BOOLEAN AS fallback_safe, NULL::BIGINT AS elapsed_us) WHERE 1=0`
	if len(files) > 0 {
		quoted := make([]string, len(files))
		for i, f := range files {
			quoted[i] = "'" + strings.ReplaceAll(f, "'", "''") + "'"
		}
		query = `CREATE OR REPLACE VIEW decisions AS
			SELECT * FROM read_parquet([` + strings.Join(quoted, ",") + `], union_by_name=true)`
	}
	if _, err := db.Exec(query); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create decisions view: %w", err)
	}
	return &Archive{db: db, files: len(files)}, nil
}

func (a *Archive) Files() int { return a.files }

func (a *Archive) Close() error { return a.db.Close() }

// Outcomes groups decisions by outcome, most frequent first.
func (a *Archive) Outcomes(ctx context.Context) ([]OutcomeCount, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT
			outcome,
			COUNT(*) AS decisions,
			AVG(rounds)::DOUBLE AS avg_rounds,
			MAX(rounds)::BIGINT AS max_rounds,
			COUNT(*) FILTER (WHERE fallback_safe) AS fallback_safe,
			AVG(elapsed_us)::DOUBLE AS avg_elapsed_us
		FROM decisions
		GROUP BY outcome
		ORDER BY decisions DESC, outcome`)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var out []OutcomeCount
	for rows.Next() {
		var oc OutcomeCount
		if err := rows.Scan(&oc.Outcome, &oc.Decisions, &oc.AvgRounds, &oc.MaxRounds, &oc.FallbackSafe, &oc.AvgElapsedMicros); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		out = append(out, oc)
	}
	return out, rows.Err()
}

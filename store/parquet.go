// Package store archives decisions as Parquet files.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/brensch/snekgreedy/alloc"
	"github.com/brensch/snekgreedy/game"
)

const schemaName = "decision_row_v1"

// DecisionRow is one decision call: the full input snapshot and what the
// engine answered. Bodies are stored as parallel x/y columns, head first.
//
// Move uses the wire codes: 0=up, 1=left, 2=down, 3=right, -1=error.
type DecisionRow struct {
	ID        string `parquet:"id"`
	CreatedAt int64  `parquet:"created_at_us"`
	BoardSize int32  `parquet:"board_size"`

	BodyX []int32 `parquet:"body_x"`
	BodyY []int32 `parquet:"body_y"`

	Rivals []RivalRow `parquet:"rivals"`

	FoodX []int32 `parquet:"food_x"`
	FoodY []int32 `parquet:"food_y"`

	RemainingRounds int32 `parquet:"remaining_rounds"`

	Move          int32  `parquet:"move"`
	Outcome       string `parquet:"outcome,dict"`
	Rounds        int32  `parquet:"rounds"`
	FallbackSafe  bool   `parquet:"fallback_safe"`
	LastResort    string `parquet:"last_resort,dict,optional"`
	ElapsedMicros int64  `parquet:"elapsed_us"`
}

type RivalRow struct {
	BodyX []int32 `parquet:"body_x"`
	BodyY []int32 `parquet:"body_y"`
}

func splitPoints(ps []game.Point) (xs, ys []int32) {
	xs = make([]int32, len(ps))
	ys = make([]int32, len(ps))
	for i, p := range ps {
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}

func joinBody(xs, ys []int32) (game.Body, error) {
	var b game.Body
	if len(xs) != game.BodyLen || len(ys) != game.BodyLen {
		return b, fmt.Errorf("body has %d/%d coordinates, want %d", len(xs), len(ys), game.BodyLen)
	}
	for i := range b {
		b[i] = game.Point{X: xs[i], Y: ys[i]}
	}
	return b, nil
}

// RowFromDecision flattens a snapshot and its decision into a row.
func RowFromDecision(id string, s *game.Snapshot, d *alloc.Decision, elapsed time.Duration) DecisionRow {
	row := DecisionRow{
		ID:              id,
		CreatedAt:       time.Now().UnixMicro(),
		BoardSize:       s.BoardSize,
		RemainingRounds: s.RemainingRounds,
		Move:            int32(d.Move),
		Outcome:         d.Outcome.String(),
		Rounds:          int32(len(d.Rounds)),
		FallbackSafe:    d.SafeFallback,
		LastResort:      d.LastResort,
		ElapsedMicros:   elapsed.Microseconds(),
	}
	row.BodyX, row.BodyY = splitPoints(s.You[:])
	row.FoodX, row.FoodY = splitPoints(s.Food)
	for _, r := range s.Rivals {
		var rr RivalRow
		rr.BodyX, rr.BodyY = splitPoints(r[:])
		row.Rivals = append(row.Rivals, rr)
	}
	return row
}

// Snapshot rebuilds the decision input stored in the row.
func (r *DecisionRow) Snapshot() (*game.Snapshot, error) {
	you, err := joinBody(r.BodyX, r.BodyY)
	if err != nil {
		return nil, fmt.Errorf("row %s: snake: %w", r.ID, err)
	}
	s := &game.Snapshot{
		BoardSize:       r.BoardSize,
		You:             you,
		RemainingRounds: r.RemainingRounds,
	}
	for i, rr := range r.Rivals {
		b, err := joinBody(rr.BodyX, rr.BodyY)
		if err != nil {
			return nil, fmt.Errorf("row %s: rival %d: %w", r.ID, i, err)
		}
		s.Rivals = append(s.Rivals, b)
	}
	if len(r.FoodX) != len(r.FoodY) {
		return nil, fmt.Errorf("row %s: %d food x but %d food y", r.ID, len(r.FoodX), len(r.FoodY))
	}
	for i := range r.FoodX {
		s.Food = append(s.Food, game.Point{X: r.FoodX[i], Y: r.FoodY[i]})
	}
	return s, nil
}

func writerOptions() []parquet.WriterOption {
	return []parquet.WriterOption{
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", schemaName),
	}
}

// WriteDecisionsParquet writes rows to outPath through a temp file and a
// rename, so readers never see a partial file.
func WriteDecisionsParquet(outPath string, rows []DecisionRow) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows, writerOptions()...); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write parquet: %w", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

func ReadDecisionsParquet(path string) ([]DecisionRow, error) {
	rows, err := parquet.ReadFile[DecisionRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	return rows, nil
}

// ListArchive returns the finished batch files in dir, oldest first.
func ListArchive(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "batch_*.parquet"))
	if err != nil {
		return nil, err
	}
	return matches, nil
}

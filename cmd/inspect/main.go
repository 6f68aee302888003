// Command inspect is a terminal UI that steps through the allocation rounds
// of one decision.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/brensch/snekgreedy/alloc"
	"github.com/brensch/snekgreedy/api"
	"github.com/brensch/snekgreedy/game"
	"github.com/brensch/snekgreedy/store"
)

func loadRequest(path string, stdin io.Reader) (*game.Snapshot, error) {
	in := stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}
	var req api.DecideRequest
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	return req.ToSnapshot()
}

func loadArchived(path string, row int) (*game.Snapshot, error) {
	rows, err := store.ReadDecisionsParquet(path)
	if err != nil {
		return nil, err
	}
	if row < 0 || row >= len(rows) {
		return nil, fmt.Errorf("row %d out of range, archive has %d rows", row, len(rows))
	}
	return rows[row].Snapshot()
}

func run() error {
	file := flag.String("file", "", "Request JSON file (default stdin)")
	archive := flag.String("archive", "", "Parquet decision archive to read instead of a request")
	row := flag.Int("row", 0, "Row of -archive to inspect")
	flag.Parse()

	var snap *game.Snapshot
	var err error
	if *archive != "" {
		snap, err = loadArchived(*archive, *row)
	} else {
		snap, err = loadRequest(*file, os.Stdin)
	}
	if err != nil {
		return err
	}

	d := alloc.New(alloc.DefaultConfig()).Trace(snap)
	_, err = tea.NewProgram(newModel(snap, d), tea.WithAltScreen()).Run()
	return err
}

func main() {
	if err := run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		log.Fatal("inspect", "err", err)
	}
}

// Command decide answers a single decision request from a file or stdin. It
// can also replay a decision archive, reporting rows whose move no longer
// matches, or summarize an archive by outcome.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/brensch/snekgreedy/alloc"
	"github.com/brensch/snekgreedy/api"
	"github.com/brensch/snekgreedy/config"
	"github.com/brensch/snekgreedy/policy"
	"github.com/brensch/snekgreedy/render"
	"github.com/brensch/snekgreedy/stats"
	"github.com/brensch/snekgreedy/store"
)

var errMismatch = errors.New("replayed moves differ from the archive")

func decideOne(in io.Reader, out io.Writer, engine *alloc.Engine, trace, asJSON bool) error {
	var req api.DecideRequest
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	snap, err := req.ToSnapshot()
	if err != nil {
		return err
	}

	d := engine.Trace(snap)
	if trace {
		fmt.Fprint(out, render.Decision(snap, d))
		if rep := d.RepeatedClaims(); len(rep) > 0 {
			fmt.Fprintf(out, "repeated claims: %v\n", rep)
		}
	}
	if asJSON {
		return json.NewEncoder(out).Encode(api.NewDecideResponse(d))
	}
	fmt.Fprintln(out, d.Move)
	return nil
}

// archiveFiles expands a replay argument: a directory means every finished
// batch file inside it.
func archiveFiles(path string) ([]string, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return []string{path}, nil
	}
	return store.ListArchive(path)
}

func replay(path string, out io.Writer, engine *alloc.Engine, logger *log.Logger) (checked, mismatched int, err error) {
	files, err := archiveFiles(path)
	if err != nil {
		return 0, 0, err
	}
	for _, f := range files {
		rows, err := store.ReadDecisionsParquet(f)
		if err != nil {
			return checked, mismatched, err
		}
		for i := range rows {
			row := &rows[i]
			snap, err := row.Snapshot()
			if err != nil {
				logger.Warn("skipping row", "file", f, "err", err)
				continue
			}
			checked++
			got := engine.Decide(snap)
			if int32(got) != row.Move {
				mismatched++
				fmt.Fprintf(out, "%s: archived %d, replayed %s (%d)\n", row.ID, row.Move, got, got)
			}
		}
		logger.Debug("replayed file", "file", f, "rows", len(rows))
	}
	return checked, mismatched, nil
}

func summarize(ctx context.Context, path string, out io.Writer) error {
	a, err := stats.Open(path)
	if err != nil {
		return err
	}
	defer a.Close()

	outcomes, err := a.Outcomes(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d files\n", a.Files())
	fmt.Fprintf(out, "%-12s %9s %10s %10s %9s %12s\n", "outcome", "decisions", "avg_rounds", "max_rounds", "safe", "avg_elapsed")
	for _, oc := range outcomes {
		fmt.Fprintf(out, "%-12s %9d %10.2f %10d %9d %10.0fus\n",
			oc.Outcome, oc.Decisions, oc.AvgRounds, oc.MaxRounds, oc.FallbackSafe, oc.AvgElapsedMicros)
	}
	return nil
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("decide", flag.ContinueOnError)
	file := fs.String("file", "", "Request JSON file (default stdin)")
	trace := fs.Bool("trace", false, "Print the board, matrices and every allocation round")
	asJSON := fs.Bool("json", false, "Print the full response as JSON instead of the move name")
	replayPath := fs.String("replay", "", "Parquet archive file or directory to replay")
	statsPath := fs.String("stats", "", "Parquet archive file or directory to summarize by outcome")
	resort := fs.String("last-resort", config.EnvOrDefault("SNEKD_LAST_RESORT", "up"), "Move when no neighbouring cell is safe: up|left|down|right|none")
	logLevel := fs.String("log-level", config.EnvOrDefault("SNEKD_LOG_LEVEL", "warn"), "Log level: debug|info|warn|error")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger, err := config.NewLogger(os.Stderr, *logLevel)
	if err != nil {
		return err
	}
	lr, err := policy.Parse(*resort)
	if err != nil {
		return err
	}
	engine := alloc.New(alloc.Config{LastResort: lr, Logger: logger})

	if *statsPath != "" {
		return summarize(context.Background(), *statsPath, stdout)
	}
	if *replayPath != "" {
		checked, mismatched, err := replay(*replayPath, stdout, engine, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "replayed %d decisions, %d mismatched\n", checked, mismatched)
		if mismatched > 0 {
			return errMismatch
		}
		return nil
	}

	in := stdin
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	return decideOne(in, stdout, engine, *trace, *asJSON)
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatal("decide", "err", err)
	}
}

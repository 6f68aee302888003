// Command snekd serves food-race decisions over HTTP and WebSocket.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/brensch/snekgreedy/alloc"
	"github.com/brensch/snekgreedy/config"
	"github.com/brensch/snekgreedy/policy"
	"github.com/brensch/snekgreedy/store"
)

// lastResort resolves the flag pair into a policy. A script wins over the
// named policy, which becomes the script's fallback.
func lastResort(name, scriptPath string) (policy.LastResort, func(), error) {
	named, err := policy.Parse(name)
	if err != nil {
		return nil, nil, err
	}
	if scriptPath == "" {
		return named, func() {}, nil
	}
	s, err := policy.LoadScript(scriptPath)
	if err != nil {
		return nil, nil, err
	}
	s.Fallback = named
	return s, s.Close, nil
}

func run() error {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	listen := fs.String("listen", config.EnvOrDefault("SNEKD_LISTEN", ":8080"), "HTTP listen address")
	archiveDir := fs.String("archive-dir", config.EnvOrDefault("SNEKD_ARCHIVE_DIR", ""), "Directory for parquet decision archives (empty disables archiving)")
	flushEvery := fs.Duration("flush-every", config.EnvDurationOrDefault("SNEKD_FLUSH_EVERY", 30*time.Second), "Archive flush interval")
	flushRows := fs.Int("flush-rows", config.EnvIntOrDefault("SNEKD_FLUSH_ROWS", 500), "Archive rows per batch file")
	wsIdle := fs.Duration("ws-idle", config.EnvDurationOrDefault("SNEKD_WS_IDLE", 2*time.Minute), "Close websocket sessions idle this long (0 disables)")
	maxRounds := fs.Int("max-rounds", config.EnvIntOrDefault("SNEKD_MAX_ROUNDS", alloc.DefaultMaxRounds), "Allocation round cap")
	resort := fs.String("last-resort", config.EnvOrDefault("SNEKD_LAST_RESORT", "up"), "Move when no neighbouring cell is safe: up|left|down|right|none")
	resortScript := fs.String("last-resort-script", config.EnvOrDefault("SNEKD_LAST_RESORT_SCRIPT", ""), "Lua file defining last_resort(head_x, head_y, board_size, body)")
	logLevel := fs.String("log-level", config.EnvOrDefault("SNEKD_LOG_LEVEL", "info"), "Log level: debug|info|warn|error")
	release := fs.Bool("release", config.EnvBoolOrDefault("SNEKD_RELEASE", true), "Run gin in release mode")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	logger, err := config.NewLogger(os.Stderr, *logLevel)
	if err != nil {
		return err
	}
	if *release {
		gin.SetMode(gin.ReleaseMode)
	}

	lr, closeLR, err := lastResort(*resort, *resortScript)
	if err != nil {
		return fmt.Errorf("last resort: %w", err)
	}
	defer closeLR()
	if s, ok := lr.(*policy.Script); ok {
		s.Logger = logger
	}

	engine := alloc.New(alloc.Config{
		MaxRounds:  *maxRounds,
		LastResort: lr,
		Logger:     logger,
	})

	var recorder *store.Recorder
	if *archiveDir != "" {
		recorder, err = store.NewRecorder(store.RecorderConfig{
			Dir:        *archiveDir,
			FlushRows:  *flushRows,
			FlushEvery: *flushEvery,
			Logger:     logger,
		})
		if err != nil {
			return fmt.Errorf("archive: %w", err)
		}
		logger.Info("archiving decisions", "dir", *archiveDir, "flush_rows", *flushRows, "flush_every", *flushEvery)
	}

	server := NewServer(engine, recorder, logger, *wsIdle)
	srv := &http.Server{
		Addr:              *listen,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("snekd listening", "addr", *listen, "last_resort", lr.Name(), "max_rounds", engine.Config().MaxRounds)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", "err", err)
		}
	}

	if recorder != nil {
		if err := recorder.Close(); err != nil {
			return fmt.Errorf("final archive flush: %w", err)
		}
		logger.Info("archive closed", "files", len(recorder.Files()), "dropped", recorder.Dropped())
	}
	logger.Info("snekd stopped", "decisions", server.Decisions())
	return nil
}

func main() {
	if err := run(); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatal("snekd", "err", err)
	}
}

package store

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

type RecorderConfig struct {
	Dir        string
	FlushRows  int
	FlushEvery time.Duration
	Buffer     int
	Logger     *log.Logger
}

// Recorder archives rows in the background. Rows are flushed to a new batch
// file when FlushRows accumulate, on every FlushEvery tick, and on Close.
type Recorder struct {
	cfg    RecorderConfig
	logger *log.Logger

	mu     sync.RWMutex
	closed bool
	in     chan DecisionRow
	done   chan struct{}

	filesMu sync.Mutex
	files   []string
	lastErr error

	dropped atomic.Int64
}

func NewRecorder(cfg RecorderConfig) (*Recorder, error) {
	if cfg.FlushRows <= 0 {
		cfg.FlushRows = 500
	}
	if cfg.FlushEvery <= 0 {
		cfg.FlushEvery = 30 * time.Second
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 4 * cfg.FlushRows
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	// Fail on an unusable directory now rather than at the first flush.
	probe, err := NewBatchWriter(cfg.Dir)
	if err != nil {
		return nil, err
	}
	if _, _, err := probe.Finalize(); err != nil {
		return nil, err
	}

	r := &Recorder{
		cfg:    cfg,
		logger: logger.WithPrefix("archive"),
		in:     make(chan DecisionRow, cfg.Buffer),
		done:   make(chan struct{}),
	}
	go r.loop()
	return r, nil
}

// Record queues a row without blocking. A full buffer drops the row.
func (r *Recorder) Record(row DecisionRow) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrClosed
	}
	select {
	case r.in <- row:
	default:
		if n := r.dropped.Add(1); n == 1 || n%100 == 0 {
			r.logger.Warn("archive buffer full, dropping rows", "dropped", n)
		}
	}
	return nil
}

// Close flushes everything queued and returns the last flush error, if any.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.in)
	}
	r.mu.Unlock()
	<-r.done

	r.filesMu.Lock()
	defer r.filesMu.Unlock()
	return r.lastErr
}

// Files lists the batch files written so far.
func (r *Recorder) Files() []string {
	r.filesMu.Lock()
	defer r.filesMu.Unlock()
	return append([]string(nil), r.files...)
}

func (r *Recorder) Dropped() int64 { return r.dropped.Load() }

func (r *Recorder) loop() {
	defer close(r.done)

	ticker := time.NewTicker(r.cfg.FlushEvery)
	defer ticker.Stop()

	pending := make([]DecisionRow, 0, r.cfg.FlushRows)
	for {
		select {
		case row, ok := <-r.in:
			if !ok {
				r.flush(pending)
				return
			}
			pending = append(pending, row)
			if len(pending) >= r.cfg.FlushRows {
				r.flush(pending)
				pending = pending[:0]
			}
		case <-ticker.C:
			r.flush(pending)
			pending = pending[:0]
		}
	}
}

func (r *Recorder) flush(rows []DecisionRow) {
	if len(rows) == 0 {
		return
	}

	path, n, err := r.writeBatch(rows)
	r.filesMu.Lock()
	defer r.filesMu.Unlock()
	if err != nil {
		r.lastErr = err
		r.logger.Error("archive flush failed", "rows", len(rows), "err", err)
		return
	}
	r.files = append(r.files, path)
	r.logger.Info("archive flush ok", "path", path, "rows", n)
}

func (r *Recorder) writeBatch(rows []DecisionRow) (string, int, error) {
	bw, err := NewBatchWriter(r.cfg.Dir)
	if err != nil {
		return "", 0, err
	}
	if err := bw.WriteRows(rows); err != nil {
		_, _, _ = bw.Finalize()
		return "", 0, err
	}
	return bw.Finalize()
}

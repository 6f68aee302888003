package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
)

var ErrClosed = errors.New("store: writer closed")

// BatchWriter streams rows into outDir/tmp and moves the finished file into
// outDir on Finalize.
type BatchWriter struct {
	tmpPath string
	outPath string

	file   *os.File
	writer *parquet.GenericWriter[DecisionRow]

	bufferedRows int
}

func NewBatchWriter(outDir string) (*BatchWriter, error) {
	if outDir == "" {
		return nil, fmt.Errorf("outDir is required")
	}

	absOut, err := filepath.Abs(outDir)
	if err != nil {
		absOut = outDir
	}
	tmpDir := filepath.Join(absOut, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create tmp dir: %w", err)
	}

	name := fmt.Sprintf("batch_%d.parquet", time.Now().UnixNano())
	tmpPath := filepath.Join(tmpDir, name)

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open tmp parquet: %w", err)
	}

	return &BatchWriter{
		tmpPath: tmpPath,
		outPath: filepath.Join(absOut, name),
		file:    f,
		writer:  parquet.NewGenericWriter[DecisionRow](f, writerOptions()...),
	}, nil
}

func (b *BatchWriter) TmpPath() string   { return b.tmpPath }
func (b *BatchWriter) OutPath() string   { return b.outPath }
func (b *BatchWriter) BufferedRows() int { return b.bufferedRows }

func (b *BatchWriter) WriteRows(rows []DecisionRow) error {
	if b.writer == nil || b.file == nil {
		return ErrClosed
	}
	if len(rows) == 0 {
		return nil
	}
	if _, err := b.writer.Write(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	b.bufferedRows += len(rows)
	return nil
}

// Finalize closes the writer and moves the file out of tmp/. With no rows
// written the tmp file is removed and outPath is empty.
func (b *BatchWriter) Finalize() (outPath string, rows int, err error) {
	if b.writer == nil && b.file == nil {
		return "", 0, nil
	}
	rows = b.bufferedRows

	var closeErr error
	if b.writer != nil {
		closeErr = b.writer.Close()
		b.writer = nil
	}
	var fileErr error
	if b.file != nil {
		_ = b.file.Sync()
		fileErr = b.file.Close()
		b.file = nil
	}
	if closeErr != nil {
		return "", 0, fmt.Errorf("close parquet writer: %w", closeErr)
	}
	if fileErr != nil {
		return "", 0, fmt.Errorf("close parquet file: %w", fileErr)
	}

	if rows == 0 {
		_ = os.Remove(b.tmpPath)
		return "", 0, nil
	}
	if err := os.Rename(b.tmpPath, b.outPath); err != nil {
		return "", 0, fmt.Errorf("rename parquet: %w", err)
	}
	return b.outPath, rows, nil
}

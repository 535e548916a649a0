package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"housing-pipeline/models"
)

// CSVWriter writes one dataset to a CSV file. Files start with a UTF-8
// byte order mark so spreadsheet tools pick up the Chinese text correctly.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	enc    *transform.Writer
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path.
// Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	enc := transform.NewWriter(f, unicode.UTF8BOM.NewEncoder())
	return &CSVWriter{path: path, file: f, enc: enc, writer: csv.NewWriter(enc)}, nil
}

// WriteRaw writes the header and every raw listing, unmodified.
func (c *CSVWriter) WriteRaw(listings []*models.RawListing) error {
	rows := make([][]string, len(listings))
	for i, l := range listings {
		rows[i] = l.Row()
	}
	return c.write(models.RawColumns, rows)
}

// WriteFrame writes the frame's header and rows.
func (c *CSVWriter) WriteFrame(f models.Frame) error {
	rows := make([][]string, f.Rows())
	for i := range rows {
		rows[i] = f.Row(i)
	}
	return c.write(f.Header(), rows)
}

func (c *CSVWriter) write(header []string, rows [][]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.writer.Write(header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, row := range rows {
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		return fmt.Errorf("csv: flush %q: %w", c.path, err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	if err := c.enc.Close(); err != nil {
		_ = c.file.Close()
		return fmt.Errorf("csv: flush %q: %w", c.path, err)
	}
	return c.file.Close()
}

// WriteRawFile writes listings to path in one call.
func WriteRawFile(path string, listings []*models.RawListing) error {
	w, err := NewCSVWriter(path)
	if err != nil {
		return err
	}
	if err := w.WriteRaw(listings); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// WriteFrameFile writes a frame to path in one call.
func WriteFrameFile(path string, f models.Frame) error {
	w, err := NewCSVWriter(path)
	if err != nil {
		return err
	}
	if err := w.WriteFrame(f); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

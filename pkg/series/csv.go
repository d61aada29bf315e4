package series

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
)

// DefaultCSVPath is the series file location relative to the working
// directory.
const DefaultCSVPath = "./taxa-cdi.csv"

// Header is the literal first line of the series file.
const Header = "data,hora,taxa"

// CSVStore appends samples to a UTF-8 comma-separated flat file with a
// fixed header row. The file is created with the header on first open;
// subsequent opens append to the existing content indefinitely, so rows
// from previous runs are preserved.
//
// The store holds a single file handle for its lifetime and syncs after
// every appended line, so each row is durable even if the process is
// interrupted mid-run.
type CSVStore struct {
	path string
	mu   sync.Mutex
	f    *os.File
}

// NewCSVStore opens (or creates) the series file at path.
// An empty path uses DefaultCSVPath. A newly created file gets the
// header line before any samples are written.
func NewCSVStore(path string) (*CSVStore, error) {
	if path == "" {
		path = DefaultCSVPath
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open series file %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat series file %s: %w", path, err)
	}

	if info.Size() == 0 {
		if _, err := f.WriteString(Header + "\n"); err != nil {
			f.Close()
			return nil, fmt.Errorf("write series header: %w", err)
		}
		if err := f.Sync(); err != nil {
			f.Close()
			return nil, fmt.Errorf("sync series header: %w", err)
		}
	}

	return &CSVStore{path: path, f: f}, nil
}

// Path returns the location of the underlying series file.
func (c *CSVStore) Path() string { return c.path }

// Append writes one sample as a single line and syncs it to disk.
func (c *CSVStore) Append(ctx context.Context, s Sample) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.f == nil {
		return errors.New("series store is closed")
	}

	line := fmt.Sprintf("%s,%s,%s\n", s.Date, s.Time, FormatRate(s.Rate))
	if _, err := c.f.WriteString(line); err != nil {
		return fmt.Errorf("append sample: %w", err)
	}
	if err := c.f.Sync(); err != nil {
		return fmt.Errorf("sync sample: %w", err)
	}

	return nil
}

// Load re-reads the whole series file from the start and returns every
// row ever appended, oldest first. It fails on a missing file, a header
// other than "data,hora,taxa", a wrong field count, or an unparsable
// rate.
func (c *CSVStore) Load(ctx context.Context) ([]Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadCSV(c.path)
}

// Close releases the file handle. Safe to call multiple times.
func (c *CSVStore) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.f == nil {
		return nil
	}
	err := c.f.Close()
	c.f = nil
	return err
}

// LoadCSV reads a series file at path without holding a write handle.
func LoadCSV(path string) ([]Sample, error) {
	if path == "" {
		path = DefaultCSVPath
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open series file %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 3

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read series header: %w", err)
	}
	if fmt.Sprintf("%s,%s,%s", header[0], header[1], header[2]) != Header {
		return nil, fmt.Errorf("unexpected series header %q, want %q", header, Header)
	}

	var samples []Sample
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read series row: %w", err)
		}

		rate, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("parse rate %q: %w", record[2], err)
		}

		samples = append(samples, Sample{
			Date: record[0],
			Time: record[1],
			Rate: rate,
		})
	}

	return samples, nil
}

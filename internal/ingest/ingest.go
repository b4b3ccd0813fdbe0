// Package ingest loads crystallization condition tables (CSV, TSV or XLSX)
// from local files or S3 into validated condition records.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/crystaleda-cli/internal/analysis"
)

// ErrMissingProteinColumn is returned when no header maps to the protein id.
var ErrMissingProteinColumn = errors.New("missing Protein_ID column")

// Format is the tabular layout of a source.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Options tune parsing.
type Options struct {
	// Delimiter overrides detection for delimited text; 0 detects from the file name and header.
	Delimiter rune
	// Sheet selects an XLSX worksheet by name; empty picks the first sheet.
	Sheet string
	// Format forces the layout; empty detects from the file extension.
	Format Format
}

// Result is the outcome of reading one source.
type Result struct {
	Source   string
	Records  []analysis.ConditionRecord
	Rows     int
	Skipped  int
	Warnings []string
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// rowIterator yields rows until ok is false.
type rowIterator func() (row []string, ok bool, err error)

func collect(name string, next rowIterator) (Result, error) {
	res := Result{Source: name}
	header, ok, err := next()
	if err != nil {
		return res, fmt.Errorf("read header: %w", err)
	}
	if !ok {
		return res, fmt.Errorf("%s: empty table: %w", name, ErrMissingProteinColumn)
	}
	cols, err := mapHeader(header)
	if err != nil {
		return res, fmt.Errorf("%s: %w", name, err)
	}
	for line := 2; ; line++ {
		row, ok, err := next()
		if err != nil {
			return res, fmt.Errorf("read row %d: %w", line, err)
		}
		if !ok {
			break
		}
		if isBlank(row) {
			continue
		}
		res.Rows++
		rec, ok := cols.record(row)
		if !ok {
			res.Skipped++
			res.warnf("row %d has no protein id; skipped", line)
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// DetectFormat picks the layout from a file name.
func DetectFormat(name string) Format {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// Read parses one table from r. name is used for format detection and messages.
func Read(r io.Reader, name string, opt Options) (Result, error) {
	format := opt.Format
	if format == "" {
		format = DetectFormat(name)
	}
	switch format {
	case FormatXLSX:
		data, err := io.ReadAll(r)
		if err != nil {
			return Result{Source: name}, fmt.Errorf("read xlsx: %w", err)
		}
		return ReadXLSX(data, name, opt.Sheet)
	case FormatCSV:
		return ReadCSV(r, name, opt.Delimiter)
	default:
		return Result{Source: name}, fmt.Errorf("unsupported format %q", format)
	}
}

// Load reads a local path or an s3://bucket/key URI.
func Load(ctx context.Context, location string, opt Options, s3cfg S3Config) (Result, error) {
	if IsS3URI(location) {
		obj, err := ParseS3URI(location)
		if err != nil {
			return Result{Source: location}, err
		}
		body, err := FetchS3(ctx, s3cfg, obj)
		if err != nil {
			return Result{Source: location}, err
		}
		defer func() { _ = body.Close() }()
		res, err := Read(body, obj.Key, opt)
		res.Source = location
		return res, err
	}
	f, err := os.Open(location)
	if err != nil {
		return Result{Source: location}, fmt.Errorf("open %s: %w", location, err)
	}
	defer func() { _ = f.Close() }()
	res, err := Read(f, filepath.Base(location), opt)
	res.Source = location
	return res, err
}

// Package loader reads and writes delimited text files (CSV, TSV) and infers
// a cell kind for each column.
package loader

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zjrosen/tabula/internal/log"
	"github.com/zjrosen/tabula/internal/paths"
)

// Format is a delimited text dialect.
type Format string

const (
	FormatCSV Format = "csv"
	FormatTSV Format = "tsv"
)

// Comma returns the field delimiter of f.
func (f Format) Comma() rune {
	if f == FormatTSV {
		return '\t'
	}
	return ','
}

// ParseFormat accepts "csv" and "tsv" in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatTSV, "tab":
		return FormatTSV, nil
	}
	return "", fmt.Errorf("unknown format %q (want csv or tsv)", s)
}

// ErrNoHeader is returned for a file without a header row.
var ErrNoHeader = errors.New("file has no header row")

const bom = "\uFEFF"

// Raw is a file's text before any kind is applied.
type Raw struct {
	Format  Format
	Header  []string
	Records [][]string
}

// Width returns the number of columns, which is the header length.
func (r *Raw) Width() int { return len(r.Header) }

// Field returns record i's value in column col, or "" for short records.
func (r *Raw) Field(i, col int) string {
	rec := r.Records[i]
	if col < len(rec) {
		return rec[col]
	}
	return ""
}

// DetectFormat picks a format from path's extension, falling back to the
// delimiter that appears more often in firstLine.
func DetectFormat(path, firstLine string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".tsv", ".tab":
		return FormatTSV
	}
	if strings.Count(firstLine, "\t") > strings.Count(firstLine, ",") {
		return FormatTSV
	}
	return FormatCSV
}

// ReadFile loads path. The format comes from DetectFormat.
func ReadFile(path string) (*Raw, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	first, _, _ := bytes.Cut(data, []byte("\n"))
	raw, err := Read(bytes.NewReader(data), DetectFormat(path, string(first)))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	log.Debug(log.CatLoader, "loaded file", "path", path, "format", raw.Format,
		"columns", raw.Width(), "records", len(raw.Records))
	return raw, nil
}

// Read parses delimited text. Records may be ragged; short ones read as
// blank, extra fields are dropped. Blank and duplicate header names are
// replaced so every column has a unique name.
func Read(r io.Reader, f Format) (*Raw, error) {
	br := bufio.NewReader(r)
	if lead, err := br.Peek(len(bom)); err == nil && string(lead) == bom {
		_, _ = br.Discard(len(bom))
	}

	cr := csv.NewReader(br)
	cr.Comma = f.Comma()
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}

	raw := &Raw{Format: f, Header: uniqueHeader(header)}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) > raw.Width() {
			rec = rec[:raw.Width()]
		}
		raw.Records = append(raw.Records, rec)
	}
	return raw, nil
}

func uniqueHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "column " + strconv.Itoa(i+1)
		}
		name := h
		for n := 2; used[name]; n++ {
			name = h + " " + strconv.Itoa(n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// Write encodes header and records in format f.
func Write(w io.Writer, f Format, header []string, records [][]string) error {
	cw := csv.NewWriter(w)
	cw.Comma = f.Comma()
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("writing records: %w", err)
	}
	return nil
}

// WriteFile atomically replaces path with the encoded table.
func WriteFile(path string, f Format, header []string, records [][]string) error {
	var buf bytes.Buffer
	if err := Write(&buf, f, header, records); err != nil {
		return err
	}
	if err := paths.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("saving %s: %w", filepath.Base(path), err)
	}
	log.Info(log.CatLoader, "saved file", "path", path, "records", len(records))
	return nil
}

package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// ReadCSV parses delimited text. A zero delimiter is detected from the file
// extension (.tsv) and otherwise from the header line.
func ReadCSV(r io.Reader, name string, delimiter rune) (Result, error) {
	br := bufio.NewReader(r)
	if delimiter == 0 {
		delimiter = sniffDelimiter(br, name)
	}
	cr := csv.NewReader(br)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	return collect(name, func() ([]string, bool, error) {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		return row, true, nil
	})
}

// sniffDelimiter picks the most frequent of , ; and tab in the header line.
func sniffDelimiter(br *bufio.Reader, name string) rune {
	if strings.EqualFold(filepath.Ext(name), ".tsv") {
		return '\t'
	}
	peek, _ := br.Peek(4096)
	line := string(peek)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	best, bestN := ',', strings.Count(line, ",")
	for _, d := range []rune{';', '\t'} {
		if n := strings.Count(line, string(d)); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}

// ParseDelimiter accepts ",", ";", "tab" or "\t"; empty means detect.
func ParseDelimiter(s string) (rune, bool) {
	switch strings.ToLower(s) {
	case "":
		return 0, true
	case ",", "comma":
		return ',', true
	case ";", "semicolon":
		return ';', true
	case "tab", `\t`, "\t":
		return '\t', true
	default:
		return 0, false
	}
}

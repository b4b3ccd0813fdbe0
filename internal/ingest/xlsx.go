package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
)

type workbookXML struct {
	Sheets []struct {
		Name    string `xml:"name,attr"`
		SheetID int    `xml:"sheetId,attr"`
		RelID   string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sheets>sheet"`
}

type relationshipsXML struct {
	Items []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

type sharedStringsXML struct {
	Items []struct {
		Text string `xml:"t"`
		Runs []struct {
			Text string `xml:"t"`
		} `xml:"r"`
	} `xml:"si"`
}

// ReadXLSX reads the named worksheet (first sheet when empty) of an xlsx workbook.
func ReadXLSX(data []byte, name, sheet string) (Result, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Result{Source: name}, fmt.Errorf("open xlsx: %w", err)
	}
	target, err := worksheetPath(zr, sheet)
	if err != nil {
		return Result{Source: name}, fmt.Errorf("%s: %w", name, err)
	}
	sheetData, err := zipEntry(zr, target)
	if err != nil {
		return Result{Source: name}, fmt.Errorf("%s: %w", name, err)
	}
	var shared []string
	if raw, err := zipEntry(zr, "xl/sharedStrings.xml"); err == nil {
		shared = decodeSharedStrings(raw)
	}
	rows := &worksheetRows{dec: xml.NewDecoder(bytes.NewReader(sheetData)), shared: shared}
	return collect(name, rows.next)
}

func worksheetPath(zr *zip.Reader, sheet string) (string, error) {
	var wb workbookXML
	if raw, err := zipEntry(zr, "xl/workbook.xml"); err == nil {
		if err := xml.Unmarshal(raw, &wb); err != nil {
			return "", fmt.Errorf("parse workbook: %w", err)
		}
	}
	rels := map[string]string{}
	if raw, err := zipEntry(zr, "xl/_rels/workbook.xml.rels"); err == nil {
		var rx relationshipsXML
		if err := xml.Unmarshal(raw, &rx); err != nil {
			return "", fmt.Errorf("parse relationships: %w", err)
		}
		for _, r := range rx.Items {
			rels[r.ID] = r.Target
		}
	}
	if sheet != "" {
		names := make([]string, 0, len(wb.Sheets))
		for _, s := range wb.Sheets {
			if strings.EqualFold(s.Name, sheet) {
				if t, ok := rels[s.RelID]; ok {
					return relTarget(t), nil
				}
			}
			names = append(names, s.Name)
		}
		return "", fmt.Errorf("sheet %q not found (available: %s)", sheet, strings.Join(names, ", "))
	}
	if len(wb.Sheets) > 0 {
		if t, ok := rels[wb.Sheets[0].RelID]; ok {
			return relTarget(t), nil
		}
	}
	return "xl/worksheets/sheet1.xml", nil
}

// relTarget turns a workbook relationship target into a zip entry name.
func relTarget(t string) string {
	t = strings.TrimPrefix(t, "/")
	if strings.HasPrefix(t, "xl/") {
		return t
	}
	return path.Join("xl", t)
}

var errEntryNotFound = errors.New("entry not found")

func zipEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer func() { _ = rc.Close() }()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s: %w", name, errEntryNotFound)
}

func decodeSharedStrings(raw []byte) []string {
	var sx sharedStringsXML
	if err := xml.Unmarshal(raw, &sx); err != nil {
		return nil
	}
	out := make([]string, len(sx.Items))
	for i, si := range sx.Items {
		if len(si.Runs) == 0 {
			out[i] = si.Text
			continue
		}
		var b strings.Builder
		for _, r := range si.Runs {
			b.WriteString(r.Text)
		}
		out[i] = b.String()
	}
	return out
}

// worksheetRows streams <row> elements, placing each cell by its reference.
type worksheetRows struct {
	dec    *xml.Decoder
	shared []string
}

func (w *worksheetRows) next() ([]string, bool, error) {
	var row []string
	inRow := false
	for {
		tok, err := w.dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, fmt.Errorf("parse worksheet: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "row":
				inRow, row = true, nil
			case "c":
				if !inRow {
					continue
				}
				ref, kind := "", ""
				for _, a := range el.Attr {
					switch a.Name.Local {
					case "r":
						ref = a.Value
					case "t":
						kind = a.Value
					}
				}
				value, err := w.cellValue(kind)
				if err != nil {
					return nil, false, err
				}
				col := columnIndex(ref)
				if col < 0 {
					col = len(row)
				}
				for len(row) <= col {
					row = append(row, "")
				}
				row[col] = value
			}
		case xml.EndElement:
			if el.Name.Local == "row" && inRow {
				return row, true, nil
			}
		}
	}
}

// cellValue consumes a <c> element and resolves shared strings.
func (w *worksheetRows) cellValue(kind string) (string, error) {
	var b strings.Builder
	depth, capture := 1, false
	for depth > 0 {
		tok, err := w.dec.Token()
		if err != nil {
			return "", fmt.Errorf("parse cell: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			depth++
			capture = el.Name.Local == "v" || el.Name.Local == "t"
		case xml.EndElement:
			depth--
			capture = false
		case xml.CharData:
			if capture {
				b.Write(el)
			}
		}
	}
	v := b.String()
	if kind == "s" {
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || i < 0 || i >= len(w.shared) {
			return "", nil
		}
		return w.shared[i], nil
	}
	return v, nil
}

// columnIndex converts the letters of a cell reference ("AB12") to a 0-based column.
func columnIndex(ref string) int {
	idx := 0
	n := 0
	for _, c := range strings.ToUpper(ref) {
		if c < 'A' || c > 'Z' {
			break
		}
		idx = idx*26 + int(c-'A'+1)
		n++
	}
	if n == 0 {
		return -1
	}
	return idx - 1
}

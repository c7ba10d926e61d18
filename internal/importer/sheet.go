package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/doorlist/doorlist/internal/guest"
	"github.com/doorlist/doorlist/internal/logging"
)

// Sheet is one tab of tabular input: a header row followed by data rows.
type Sheet struct {
	Name string
	Rows [][]string
}

// zipMagic marks an OOXML (xlsx) container; anything else is parsed as CSV.
var zipMagic = []byte{'P', 'K', 0x03, 0x04}

// ParseSheets turns uploaded file bytes into sheets of row arrays.
func ParseSheets(data []byte) ([]Sheet, error) {
	if bytes.HasPrefix(data, zipMagic) {
		return parseWorkbook(data)
	}
	return parseCSV(data)
}

func parseWorkbook(data []byte) ([]Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		sheets = append(sheets, Sheet{Name: name, Rows: rows})
	}
	return sheets, nil
}

func parseCSV(data []byte) ([]Sheet, error) {
	r := csv.NewReader(bytes.NewReader(sanitizeUTF8(data)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return []Sheet{{Name: "csv", Rows: rows}}, nil
}

// phoneHints are matched by substring against lowercased headers; the
// first matching column wins. The rule is deliberately loose ("Contact
// Person" and "Contact Number" both match "contact") because existing
// guest-list files depend on it.
var phoneHints = []string{"phone", "mobile", "number", "contact"}

// ExtractGuests normalizes sheets into guest-creation payloads.
//
// Row 0 of each sheet is the header row, matched case-insensitively after
// trimming. A sheet without an exact "name" header is skipped with a
// warning; remaining sheets still process. Data rows with an empty name
// cell are dropped.
func ExtractGuests(ctx context.Context, sheets []Sheet) []*guest.Guest {
	logger := logging.FromContext(ctx)

	var out []*guest.Guest
	for _, sheet := range sheets {
		if len(sheet.Rows) == 0 {
			continue
		}

		headers := make([]string, len(sheet.Rows[0]))
		for i, h := range sheet.Rows[0] {
			headers[i] = strings.ToLower(strings.TrimSpace(h))
		}

		nameIdx := indexOf(headers, "name")
		if nameIdx < 0 {
			logger.Warn("sheet has no name column, skipping", "sheet", sheet.Name)
			continue
		}
		phoneIdx := phoneColumn(headers)
		remarksIdx := indexOf(headers, "remarks")
		areaIdx := indexOf(headers, "area")

		for _, row := range sheet.Rows[1:] {
			name := cell(row, nameIdx)
			if name == "" {
				continue
			}
			out = append(out, guest.New(name, cell(row, phoneIdx), cell(row, remarksIdx), cell(row, areaIdx)))
		}
	}
	return out
}

func phoneColumn(headers []string) int {
	for i, h := range headers {
		if h == "" {
			continue
		}
		for _, hint := range phoneHints {
			if strings.Contains(h, hint) {
				return i
			}
		}
	}
	return -1
}

func indexOf(headers []string, want string) int {
	for i, h := range headers {
		if h == want {
			return i
		}
	}
	return -1
}

// cell returns the trimmed value at idx, or "" when the column is absent
// or the row is short.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// sanitizeUTF8 replaces invalid byte sequences with U+FFFD so the csv
// reader never chokes on Latin-1 or Windows-1252 exports.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}
	return buf.Bytes()
}

package contacts

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Options tunes a parse.
type Options struct {
	// DefaultCountry is an ISO code or calling code used for numbers that
	// carry no country prefix. Empty means DefaultCountry.
	DefaultCountry string
}

// DuplicateReport describes rows dropped because their phone number was
// already seen.
type DuplicateReport struct {
	Count   int      `json:"count"`
	Numbers []string `json:"numbers"`
}

// InvalidReport describes rows dropped because their phone number could not
// be normalized.
type InvalidReport struct {
	Count int   `json:"count"`
	Lines []int `json:"lines"`
}

// ParseResult is the outcome of parsing one contact file.
//
// TotalRows == TotalContacts + Duplicates.Count + Invalid.Count.
type ParseResult struct {
	Contacts          []Contact       `json:"contacts"`
	FieldNames        []string        `json:"fieldNames"`
	PhoneColumnName   string          `json:"phoneColumnName"`
	SourcePhoneColumn string          `json:"sourcePhoneColumn"`
	TotalRows         int             `json:"totalRows"`
	TotalContacts     int             `json:"totalContacts"`
	Duplicates        DuplicateReport `json:"duplicates"`
	Invalid           InvalidReport   `json:"invalid"`
}

// Parse parses CSV text. See ParseReader.
func Parse(content string, opts Options) (*ParseResult, error) {
	return ParseReader(strings.NewReader(content), opts)
}

// ParseReader reads a contact CSV, normalizes every phone number and drops
// duplicates. The first non-blank record is the header. Rows whose phone
// cannot be normalized are skipped and reported in Invalid.
func ParseReader(r io.Reader, opts Options) (*ParseResult, error) {
	records, err := readRecords(SanitizeReader(r))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &ParseError{Err: ErrEmptyFile}
	}

	headerAt := -1
	for i, rec := range records {
		if !isBlankRecord(rec.fields) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, &ParseError{Err: ErrNoHeader}
	}

	headers := records[headerAt].fields
	phoneIdx, err := detectPhoneColumnIndex(headers)
	if err != nil {
		return nil, err
	}
	fieldNames := fieldNamesFor(headers, phoneIdx)

	country := opts.DefaultCountry
	if country == "" {
		country = DefaultCountry
	}

	result := &ParseResult{
		FieldNames:        fieldNames,
		PhoneColumnName:   PhoneNumberKey,
		SourcePhoneColumn: headers[phoneIdx],
		Invalid:           InvalidReport{Lines: []int{}},
	}

	normalized := make([]Contact, 0, len(records)-headerAt-1)
	for _, rec := range records[headerAt+1:] {
		if isBlankRecord(rec.fields) {
			continue
		}
		result.TotalRows++

		row := NewRow(fieldNames, rec.fields)
		phone, err := NormalizePhone(row.Value(PhoneNumberKey), country)
		if err != nil {
			result.Invalid.Count++
			result.Invalid.Lines = append(result.Invalid.Lines, rec.line)
			continue
		}
		row.Set(PhoneNumberKey, phone)
		normalized = append(normalized, Contact{Row: row, Line: rec.line})
	}

	deduped := Dedupe(normalized)
	result.Contacts = deduped.Unique
	result.Duplicates = deduped.Duplicates
	result.TotalContacts = len(deduped.Unique)
	return result, nil
}

type record struct {
	line   int
	fields []string
}

// readRecords splits r into records. Quoted fields may span lines, but a
// quote left open is treated as a typo and only costs its own row.
func readRecords(r io.Reader) ([]record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("read input: %w", err)}
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var out []record
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				return nil, &ParseError{
					Line: csvErr.StartLine,
					Err:  fmt.Errorf("%w: %v", ErrInvalidCSV, csvErr.Err),
				}
			}
			return nil, &ParseError{Err: fmt.Errorf("read input: %w", err)}
		}
		line, _ := cr.FieldPos(0)
		for i := range fields {
			fields[i] = cleanCell(fields[i])
		}
		out = append(out, record{line: line, fields: fields})
	}

	return resplitUnbalanced(out, strings.Split(string(data), "\n")), nil
}

// resplitUnbalanced replaces every record that spans several lines with an
// odd number of quotes by one record per line. Such a record only exists
// because a quote was left open, and reading on would swallow the rows
// after it.
func resplitUnbalanced(records []record, lines []string) []record {
	out := make([]record, 0, len(records))
	for i, rec := range records {
		end := len(lines)
		if i+1 < len(records) {
			end = records[i+1].line - 1
		}
		span := lines[rec.line-1 : end]
		if !unbalanced(span) {
			out = append(out, rec)
			continue
		}
		for j, l := range span {
			fields := splitLine(strings.TrimSuffix(l, "\r"))
			for k := range fields {
				fields[k] = cleanCell(fields[k])
			}
			out = append(out, record{line: rec.line + j, fields: fields})
		}
	}
	return out
}

func unbalanced(span []string) bool {
	multiline := false
	for _, l := range span[1:] {
		if strings.TrimSpace(l) != "" {
			multiline = true
			break
		}
	}
	if !multiline {
		return false
	}
	quotes := 0
	for _, l := range span {
		quotes += strings.Count(l, `"`)
	}
	return quotes%2 == 1
}

// splitLine splits a single line on commas outside double quotes. A doubled
// quote inside quotes is a literal quote; an unterminated quote runs to the
// end of the line.
func splitLine(line string) []string {
	var (
		fields   []string
		b        strings.Builder
		inQuotes bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"' && inQuotes && i+1 < len(line) && line[i+1] == '"':
			b.WriteByte('"')
			i++
		case c == '"':
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			fields = append(fields, b.String())
			b.Reset()
		default:
			b.WriteByte(c)
		}
	}
	return append(fields, b.String())
}

// cleanCell trims whitespace and unwraps Excel's ="..." text guard, which
// spreadsheets use to keep leading zeros on phone numbers.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 3 && strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		s = strings.TrimSpace(s[2 : len(s)-1])
	}
	return s
}

func isBlankRecord(fields []string) bool {
	for _, f := range fields {
		if f != "" {
			return false
		}
	}
	return true
}

// fieldNamesFor renames the phone column to PhoneNumberKey and makes every
// other name unique. Empty headers become column_<n>.
func fieldNamesFor(headers []string, phoneIdx int) []string {
	names := make([]string, len(headers))
	seen := map[string]bool{PhoneNumberKey: true}
	for i, h := range headers {
		if i == phoneIdx {
			names[i] = PhoneNumberKey
			continue
		}
		base := h
		if base == "" {
			base = "column_" + strconv.Itoa(i+1)
		}
		name := base
		for n := 2; seen[name]; n++ {
			name = base + "_" + strconv.Itoa(n)
		}
		seen[name] = true
		names[i] = name
	}
	return names
}

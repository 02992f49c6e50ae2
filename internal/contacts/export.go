package contacts

import (
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"
)

// WriteCSV writes a header row of fieldNames followed by one row per contact.
// Missing fields are written as "". When fieldNames is empty the first
// contact's keys are used; with no contacts either, nothing is written.
func WriteCSV(w io.Writer, contacts []Contact, fieldNames []string) error {
	if len(fieldNames) == 0 {
		if len(contacts) == 0 {
			return nil
		}
		fieldNames = contacts[0].Keys()
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(fieldNames); err != nil {
		return err
	}
	rec := make([]string, len(fieldNames))
	for _, c := range contacts {
		for i, name := range fieldNames {
			rec[i] = c.Value(name)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ToCSV is WriteCSV into a string.
func ToCSV(contacts []Contact, fieldNames []string) (string, error) {
	var b strings.Builder
	if err := WriteCSV(&b, contacts, fieldNames); err != nil {
		return "", err
	}
	return b.String(), nil
}

// DedupedFileName turns "leads.csv" into "leads_deduped.csv".
func DedupedFileName(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "contacts.csv"
	}
	ext := filepath.Ext(base)
	if !strings.EqualFold(ext, ".csv") {
		return base + "_deduped.csv"
	}
	return strings.TrimSuffix(base, ext) + "_deduped.csv"
}

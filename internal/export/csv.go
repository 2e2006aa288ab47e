package export

import (
	"encoding/csv"
	"io"

	"smartstore-backend/internal/models"
)

const (
	ContentTypeCSV = "text/csv; charset=utf-8"
	bom            = "\uFEFF"
)

// asText wraps a value as ="value" so spreadsheets keep leading zeros and
// dashes of phone numbers.
func asText(v string) string {
	return `="` + v + `"`
}

// WriteCSV writes a BOM-prefixed CSV of records to w.
func WriteCSV(w io.Writer, records []models.ApplicationRecord) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(row(r, asText)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

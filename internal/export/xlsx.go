package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"smartstore-backend/internal/models"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	SheetName       = "신청현황"
)

func plain(v string) string { return v }

// WriteXLSX writes records as a one-sheet workbook. Every cell is stored as
// text, so phone numbers need no wrapping.
func WriteXLSX(w io.Writer, records []models.ApplicationRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	if err := setRow(f, 1, Header); err != nil {
		return err
	}
	for i, r := range records {
		if err := setRow(f, i+2, row(r, plain)); err != nil {
			return err
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx 쓰기 실패: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, n int, values []string) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, n)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(SheetName, cell, v); err != nil {
			return err
		}
	}
	return nil
}

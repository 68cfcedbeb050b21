package api

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/fieldworks/outreach/internal/store"
)

// rosterExportHeader is the column order of the roster workbook.
var rosterExportHeader = []string{
	"First Name",
	"Middle",
	"Last Name",
	"AKA",
	"Gender",
	"Race",
	"Ethnicity",
	"Age",
	"Age Range",
	"Description",
	"Contacts",
	"Last Contact",
	"Date Created",
}

// rosterWorkbook renders the roster as an .xlsx workbook.
func rosterWorkbook(clients []store.Client) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo needs the file open, so no deferred Close on the happy path.

	sheetName := "Roster"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, h := range rosterExportHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			f.Close()
			return nil, fmt.Errorf("set header: %w", err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("style header: %w", err)
		}
	}

	for rowIdx, c := range clients {
		values := []any{
			c.FirstName, c.Middle, c.LastName, c.AKA, c.Gender, c.Race,
			c.Ethnicity, c.Age, c.AgeRange, c.Description, c.Contacts,
			c.LastContact.Format("2006-01-02"), c.DateCreated,
		}
		for colIdx, v := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("data cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("set cell: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close workbook: %w", err)
	}
	return buf.Bytes(), nil
}

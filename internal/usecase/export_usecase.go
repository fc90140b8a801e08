package usecase

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"alumni-prep-backend/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	ExportXLSX = "xlsx"
	ExportCSV  = "csv"
)

var exportColumns = []struct {
	header string
	value  func(domain.CandidateProfile) string
}{
	{"NAME", func(p domain.CandidateProfile) string { return p.Name }},
	{"COMPANY", func(p domain.CandidateProfile) string { return p.Company }},
	{"EMAIL", func(p domain.CandidateProfile) string { return p.Email }},
	{"LINKEDIN", func(p domain.CandidateProfile) string { return p.LinkedinLink }},
	{"CALENDLY", func(p domain.CandidateProfile) string { return p.CalendlyLink }},
	{"ADVICE", func(p domain.CandidateProfile) string { return p.Advice }},
	{"PICTURE", func(p domain.CandidateProfile) string {
		if p.PictureURL == nil {
			return ""
		}
		return *p.PictureURL
	}},
	{"JOINED", func(p domain.CandidateProfile) string {
		if p.CreatedAt.IsZero() {
			return ""
		}
		return p.CreatedAt.Format(time.DateOnly)
	}},
}

// ExportDirectory renders the public view of profiles as a spreadsheet.
// format is "xlsx" (default) or "csv". Returns file bytes and a filename.
func ExportDirectory(profiles []domain.CandidateProfile, format string, now time.Time) ([]byte, string, error) {
	public := domain.PublicProfiles(profiles)
	stamp := now.Format("20060102_150405")

	switch format {
	case ExportXLSX, "":
		data, err := exportExcel(public)
		if err != nil {
			return nil, "", err
		}
		return data, fmt.Sprintf("alumni_%s.xlsx", stamp), nil
	case ExportCSV:
		data, err := exportCSV(public)
		if err != nil {
			return nil, "", err
		}
		return data, fmt.Sprintf("alumni_%s.csv", stamp), nil
	default:
		return nil, "", fmt.Errorf("unsupported export format: %s", format)
	}
}

func exportExcel(profiles []domain.CandidateProfile) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Alumni"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, col.header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
	f.SetCellStyle(sheet, "A1", endCell, headerStyle)

	for row, p := range profiles {
		for i, col := range exportColumns {
			cell, _ := excelize.CoordinatesToCellName(i+1, row+2)
			f.SetCellValue(sheet, cell, col.value(p))
		}
	}

	for i := range exportColumns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, name, name, 24)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func exportCSV(profiles []domain.CandidateProfile) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(exportColumns))
	for i, col := range exportColumns {
		header[i] = col.header
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, p := range profiles {
		record := make([]string, len(exportColumns))
		for i, col := range exportColumns {
			record[i] = col.value(p)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}
	return buf.Bytes(), nil
}

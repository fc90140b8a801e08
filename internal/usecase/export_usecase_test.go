package usecase_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"alumni-prep-backend/internal/domain"
	"alumni-prep-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func exportFixture() []domain.CandidateProfile {
	pic := "https://cdn.example.com/alumni/pictures/a.png"
	return []domain.CandidateProfile{
		{ID: 1, Name: "Ana", Email: "ana@u.edu", ShowEmail: true, Company: "Acme", CalendlyLink: "https://calendly.com/ana", ShowCalendly: true, PictureURL: &pic},
		{ID: 2, Name: "Bo", Email: "bo@u.edu", ShowEmail: false, Company: "Initech, Inc", CalendlyLink: "https://calendly.com/bo", ShowCalendly: false},
	}
}

func TestExportDirectory_CSV(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	data, name, err := usecase.ExportDirectory(exportFixture(), usecase.ExportCSV, now)
	require.NoError(t, err)
	assert.Equal(t, "alumni_20240301_093000.csv", name)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "NAME", rows[0][0])
	assert.Equal(t, "ana@u.edu", rows[1][2])
	assert.Equal(t, "Initech, Inc", rows[2][1])
	assert.Empty(t, rows[2][2], "hidden email is not exported")
	assert.Empty(t, rows[2][4], "hidden calendly link is not exported")
}

func TestExportDirectory_XLSX(t *testing.T) {
	data, name, err := usecase.ExportDirectory(exportFixture(), "", time.Now())
	require.NoError(t, err)
	assert.Contains(t, name, ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Alumni", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Ana", v)

	v, err = f.GetCellValue("Alumni", "C3")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestExportDirectory_UnknownFormat(t *testing.T) {
	_, _, err := usecase.ExportDirectory(nil, "pdf", time.Now())
	assert.Error(t, err)
}

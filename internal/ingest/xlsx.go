package ingest

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/atlasjobs/jobdex/internal/models"
)

// ReadXLSX parses the first sheet of an Excel workbook into job records,
// using the same header matching as ReadCSV. Some upstream scrapers export
// spreadsheets instead of CSV; the first row is the header.
func ReadXLSX(path string) ([]models.JobRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, nil
	}
	return recordsFromRows(rows[0], rows[1:]), nil
}

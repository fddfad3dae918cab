package infrastructure

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// readXLSXTable читает первый лист книги .xlsx
func readXLSXTable(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть книгу Excel: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать лист %q: %w", sheetName, err)
	}
	return rows, nil
}

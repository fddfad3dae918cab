package infrastructure

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/extrame/xls"
)

// XLSParser читает таблицы расписания из книг Excel 97-2003 (.xls).
// Используется первый лист; первая непустая строка считается заголовком.
type XLSParser struct {
	charset string
}

// NewXLSParser создаёт парсер с кодировкой строк книги
func NewXLSParser(charset string) *XLSParser {
	if charset == "" {
		charset = "utf-8"
	}
	return &XLSParser{charset: charset}
}

// ReadTable читает первый лист книги как строки ячеек.
// extrame/xls требует io.ReadSeeker, поэтому поток читается в память целиком.
func (p *XLSParser) ReadTable(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	book, err := xls.OpenReader(bytes.NewReader(data), p.charset)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть книгу XLS: %w", err)
	}

	sheet := book.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("в книге нет листов")
	}

	var rows [][]string
	headerFound := false
	for rowIndex := 0; rowIndex <= int(sheet.MaxRow); rowIndex++ {
		cells := p.extractRow(sheet, rowIndex)
		if !headerFound {
			if isBlank(cells) {
				continue
			}
			headerFound = true
		}
		rows = append(rows, cells)
	}

	return rows, nil
}

// extractRow возвращает значения ячеек строки; отсутствующая строка даёт nil.
// WorkSheet.Row паникует на номере строки без записей в листе.
func (p *XLSParser) extractRow(sheet *xls.WorkSheet, rowIndex int) (cells []string) {
	defer func() {
		if recover() != nil {
			cells = nil
		}
	}()

	row := sheet.Row(rowIndex)
	last := row.LastCol()
	cells = make([]string, 0, last)
	for col := 0; col < last; col++ {
		cells = append(cells, strings.TrimSpace(row.Col(col)))
	}
	return cells
}

package infrastructure

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// readHTMLTable читает первую таблицу HTML-страницы (выгрузки "salvar como página").
// Заголовок берётся из ячеек <th>, а если их нет — из первой строки.
func readHTMLTable(r io.Reader) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("ошибка разбора HTML: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("на странице нет таблицы")
	}

	var rows [][]string
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(j int, cell *goquery.Selection) {
			cells = append(cells, strings.Join(strings.Fields(cell.Text()), " "))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})

	return rows, nil
}

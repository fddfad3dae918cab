package infrastructure

// Пакет infrastructure читает таблицы расписания из файлов разных форматов
// и превращает их строки в domain.Session.
//
// Формат выбирается по расширению имени файла:
//   - .csv, .txt   — текст с разделителем "," или ";"
//   - .xls         — github.com/extrame/xls
//   - .xlsx        — github.com/xuri/excelize/v2
//   - .html, .htm  — первая таблица страницы, github.com/PuerkitoBio/goquery
//
// Первая строка таблицы — заголовок с именами колонок исходной системы
// (COD_DISCIPLINA, NOME_DOCENTE, ...). Порядок колонок не важен.

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Vaflel/class-hours/domain"
)

var (
	ErrUnsupportedFormat = errors.New("формат файла не поддерживается")
	ErrMissingColumns    = errors.New("в заголовке таблицы нет обязательных колонок")
	ErrEmptyTable        = errors.New("в таблице нет строк с данными")
)

// Колонки таблицы исходной системы
const (
	colCourse     = "COD_DISCIPLINA"
	colSection    = "COD_TURMA"
	colInstructor = "NOME_DOCENTE"
	colRoom       = "NUM_SALA"
	colProgram    = "COD_CURSO"
	colWeekday    = "ITEM_TABELA"
	colStart      = "HR_INICIO"
	colEnd        = "HR_FIM"
	colCourseName = "NOME_DISCIPLINA"
	colEnrollment = "VAGAS_OCUPADAS"
)

var requiredColumns = []string{colCourse, colInstructor, colRoom, colWeekday, colStart, colEnd}

var allColumns = []string{
	colCourse, colSection, colInstructor, colRoom, colProgram,
	colWeekday, colStart, colEnd, colCourseName, colEnrollment,
}

// tableReader читает таблицу целиком как строки ячеек, первая строка является заголовком
type tableReader func(r io.Reader) ([][]string, error)

// SessionReader выбирает читатель по расширению файла и собирает занятия
type SessionReader struct {
	readers map[string]tableReader
	logger  *zap.Logger
}

// NewSessionReader создаёт SessionReader со всеми поддерживаемыми форматами
func NewSessionReader(xlsCharset string, logger *zap.Logger) *SessionReader {
	readers := map[string]tableReader{
		".csv":  readCSVTable,
		".txt":  readCSVTable,
		".xls":  NewXLSParser(xlsCharset).ReadTable,
		".xlsx": readXLSXTable,
		".html": readHTMLTable,
		".htm":  readHTMLTable,
	}
	return &SessionReader{readers: readers, logger: logger}
}

// Supported возвращает поддерживаемые расширения
func (r *SessionReader) Supported() []string {
	out := make([]string, 0, len(r.readers))
	for ext := range r.readers {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Read разбирает файл name из потока in
func (r *SessionReader) Read(name string, in io.Reader) ([]domain.Session, error) {
	ext := strings.ToLower(filepath.Ext(name))
	read, ok := r.readers[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	rows, err := read(in)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать %s: %w", name, err)
	}

	sessions, err := r.sessionsFromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	r.logger.Info("таблица расписания прочитана",
		zap.String("file", name),
		zap.Int("rows", len(sessions)),
	)
	return sessions, nil
}

// sessionsFromRows сопоставляет колонки по заголовку и строит занятия.
// Отсутствующие ячейки становятся пустыми строками, пробелы по краям обрезаются.
func (r *SessionReader) sessionsFromRows(rows [][]string) ([]domain.Session, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}

	index := headerIndex(rows[0])
	var missing []string
	for _, col := range requiredColumns {
		if index[col] < 0 {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var sessions []domain.Session
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}

		cell := func(col string) string {
			idx := index[col]
			if idx < 0 || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		code, ok := parseWeekdayCode(cell(colWeekday))
		if !ok {
			r.logger.Debug("нераспознанный код дня недели",
				zap.Int("row", i+2),
				zap.String("value", cell(colWeekday)),
			)
		}

		sessions = append(sessions, domain.Session{
			CourseCode:     cell(colCourse),
			SectionCode:    cell(colSection),
			InstructorName: cell(colInstructor),
			RoomID:         cell(colRoom),
			ProgramCode:    cell(colProgram),
			WeekdayCode:    code,
			StartTime:      normalizeClock(cell(colStart)),
			EndTime:        normalizeClock(cell(colEnd)),
			CourseName:     cell(colCourseName),
			Enrollment:     cell(colEnrollment),
		})
	}

	if len(sessions) == 0 {
		return nil, ErrEmptyTable
	}
	return sessions, nil
}

// headerIndex возвращает номер колонки для каждого известного имени или -1
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(allColumns))
	for _, col := range allColumns {
		idx[col] = -1
	}
	for i, name := range header {
		name = strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if cur, ok := idx[name]; ok && cur < 0 {
			idx[name] = i
		}
	}
	return idx
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseWeekdayCode разбирает код дня; электронные таблицы часто дают "2.0".
// Нераспознанный код даёт 0: такая строка уходит в субботнюю ячейку сетки
// и в список занятий без времени.
func parseWeekdayCode(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// normalizeClock переводит дробную долю суток из Excel (0.3333...) в "HH:MM:SS".
// Остальные значения возвращаются как есть: формат проверяет domain.SlotOf.
func normalizeClock(s string) string {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f >= 1 || strings.Contains(s, ":") {
		return s
	}
	total := int(math.Round(f * 24 * 60 * 60))
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}

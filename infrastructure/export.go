package infrastructure

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/Vaflel/class-hours/domain"
)

// ── YAML ──

// hoursDocument описывает YAML-выгрузку нагрузки
type hoursDocument struct {
	Kind     string                  `yaml:"kind"`
	Entities []domain.AggregateHours `yaml:"entities"`
}

// WriteHoursYAML выгружает нагрузку сущностей в YAML
func WriteHoursYAML(w io.Writer, kind domain.EntityKind, hours []domain.AggregateHours) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(hoursDocument{Kind: kind.String(), Entities: hours}); err != nil {
		return fmt.Errorf("не удалось сериализовать YAML: %w", err)
	}
	return enc.Close()
}

// ── Excel ──

// HoursWorkbook содержит данные для книги Excel с нагрузкой
type HoursWorkbook struct {
	Instructors   []domain.AggregateHours
	Rooms         []domain.AggregateHours
	Grid          domain.WeeklyGrid // сетка по преподавателям
	PeriodMinutes int
}

var gridDayNames = [domain.DaysPerWeek]string{"Seg", "Ter", "Qua", "Qui", "Sex", "Sab"}

// WriteHoursXLSX строит книгу: листы нагрузки преподавателей и аудиторий
// и лист занятости по дням и пятиминутным слотам.
func WriteHoursXLSX(w io.Writer, book HoursWorkbook) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#C6EFCE"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("не удалось создать стиль: %w", err)
	}

	if err := writeHoursSheet(f, "Docentes", book.Instructors, book.PeriodMinutes, headerStyle); err != nil {
		return err
	}
	if err := writeHoursSheet(f, "Salas", book.Rooms, book.PeriodMinutes, headerStyle); err != nil {
		return err
	}
	if err := writeGridSheet(f, "Ocupação", book.Grid, headerStyle); err != nil {
		return err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("не удалось удалить лист по умолчанию: %w", err)
	}
	if idx, err := f.GetSheetIndex("Docentes"); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("не удалось записать книгу Excel: %w", err)
	}
	return nil
}

func writeHoursSheet(f *excelize.File, sheet string, hours []domain.AggregateHours, periodMinutes, headerStyle int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("не удалось создать лист %q: %w", sheet, err)
	}
	f.SetColWidth(sheet, "A", "A", 40)
	f.SetColWidth(sheet, "B", "D", 14)

	header := []interface{}{"Nome", "Horas", "Minutos", "Tempos"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	f.SetCellStyle(sheet, "A1", "D1", headerStyle)

	for i, h := range hours {
		row := []interface{}{h.Entity, h.Formatted, h.TotalMinutes, periods(h.TotalMinutes, periodMinutes)}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeGridSheet(f *excelize.File, sheet string, grid domain.WeeklyGrid, headerStyle int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("не удалось создать лист %q: %w", sheet, err)
	}

	header := []interface{}{"Horário"}
	for _, d := range gridDayNames {
		header = append(header, d)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	last, _ := excelize.ColumnNumberToName(len(header))
	f.SetCellStyle(sheet, "A1", last+"1", headerStyle)

	for slot := 0; slot < domain.SlotsPerDay; slot++ {
		row := []interface{}{SlotLabel(domain.SlotIndex(slot))}
		for day := 0; day < domain.DaysPerWeek; day++ {
			row = append(row, grid[day][slot])
		}
		cell, _ := excelize.CoordinatesToCellName(1, slot+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// SlotLabel возвращает время начала слота "HH:MM"
func SlotLabel(s domain.SlotIndex) string {
	minutes := int(s) * domain.SlotMinutes
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func periods(minutes, periodMinutes int) float64 {
	if periodMinutes <= 0 {
		return 0
	}
	return float64(minutes) / float64(periodMinutes)
}

// ── iCalendar ──

// ICSOptions задаёт, к какой реальной неделе привязать недельное расписание
type ICSOptions struct {
	WeekStart time.Time // понедельник первой недели
	Weeks     int       // число еженедельных повторений
	Location  *time.Location
}

// WriteCalendarICS выгружает события расписания как еженедельно повторяющиеся VEVENT.
// Событие с днём вне пн-вс или с неразбираемым временем отклоняет всю выгрузку.
func WriteCalendarICS(w io.Writer, view domain.View, opts ICSOptions) error {
	if len(view.Events) == 0 {
		return domain.ErrNoEvents
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	monday := time.Date(opts.WeekStart.Year(), opts.WeekStart.Month(), opts.WeekStart.Day(), 0, 0, 0, 0, loc)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Vaflel//class-hours//PT")
	cal.SetName(view.Entity)

	for i, ev := range view.Events {
		if ev.Day < 0 || ev.Day > 6 {
			return fmt.Errorf("%w: %s в день %d", domain.ErrInvalidEvent, ev.Title, ev.Day)
		}
		start, err := clockOn(monday, ev.Day, ev.Start)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrInvalidEvent, ev.Title, err)
		}
		end, err := clockOn(monday, ev.Day, ev.End)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrInvalidEvent, ev.Title, err)
		}
		if !end.After(start) {
			return fmt.Errorf("%w: %s заканчивается раньше начала", domain.ErrInvalidEvent, ev.Title)
		}

		uid := fmt.Sprintf("%s-%d-%d-%s@class-hours", slug(view.Entity), i, ev.Day, strings.ReplaceAll(ev.Start, ":", ""))
		vevent := cal.AddEvent(uid)
		vevent.SetCreatedTime(monday)
		vevent.SetDtStampTime(monday)
		vevent.SetStartAt(start)
		vevent.SetEndAt(end)
		vevent.SetSummary(ev.Title)
		vevent.SetDescription(ev.Notes)
		if opts.Weeks > 1 {
			vevent.AddRrule(fmt.Sprintf("FREQ=WEEKLY;COUNT=%d", opts.Weeks))
		}
	}

	_, err := io.WriteString(w, cal.Serialize())
	return err
}

func clockOn(monday time.Time, day int, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	d := monday.AddDate(0, 0, day)
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, d.Location()), nil
}

func slug(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, s)
}

// Package web предоставляет веб-интерфейс отчётов и рендерер недельного календаря
package web

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/Vaflel/class-hours/config"
	"github.com/Vaflel/class-hours/domain"
)

// dayNames сопоставляет сокращения дней недели (pt и en) с индексами 0-6
var dayNames = map[string]int{
	"seg": 0, "ter": 1, "qua": 2, "qui": 3, "sex": 4, "sab": 5, "sáb": 5, "dom": 6,
	"mon": 0, "tue": 1, "wed": 2, "thu": 3, "fri": 4, "sat": 5, "sun": 6,
}

var columnTitles = map[string][7]string{
	"pt": {"Segunda", "Terça", "Quarta", "Quinta", "Sexta", "Sábado", "Domingo"},
	"en": {"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"},
}

// CalendarWindow — проверенное окно календаря: дни и часы
type CalendarWindow struct {
	firstDay, lastDay int
	fromHour, toHour  int
}

// ValidateConfig проверяет конфигурацию календаря и возвращает окно отображения
func ValidateConfig(cfg domain.DisplayConfig) (CalendarWindow, error) {
	var w CalendarWindow

	if _, ok := columnTitles[cfg.Lang]; !ok {
		return w, fmt.Errorf("%w: язык %q", domain.ErrInvalidConfig, cfg.Lang)
	}
	switch cfg.TitleVerticalAlign {
	case "top", "center", "bottom":
	default:
		return w, fmt.Errorf("%w: выравнивание заголовка %q", domain.ErrInvalidConfig, cfg.TitleVerticalAlign)
	}

	parts := strings.Split(cfg.Dates, "-")
	if len(parts) != 2 {
		return w, fmt.Errorf("%w: диапазон дней %q", domain.ErrInvalidConfig, cfg.Dates)
	}
	first, ok1 := dayNames[strings.ToLower(strings.TrimSpace(parts[0]))]
	last, ok2 := dayNames[strings.ToLower(strings.TrimSpace(parts[1]))]
	if !ok1 || !ok2 || first > last {
		return w, fmt.Errorf("%w: диапазон дней %q", domain.ErrInvalidConfig, cfg.Dates)
	}

	from, to, err := config.ParseHourRange(cfg.Hours)
	if err != nil {
		return w, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}

	return CalendarWindow{firstDay: first, lastDay: last, fromHour: from, toHour: to}, nil
}

// ValidateEvents проверяет, что все события лежат внутри окна календаря.
// События не исправляются: первое же нарушение отклоняет весь список.
func ValidateEvents(events []domain.CalendarEvent, w CalendarWindow) error {
	for _, ev := range events {
		if ev.Day < w.firstDay || ev.Day > w.lastDay {
			return fmt.Errorf("%w: %s в день %d, окно %d-%d", domain.ErrInvalidEvent, ev.Title, ev.Day, w.firstDay, w.lastDay)
		}
		start, err := minutesOf(ev.Start)
		if err != nil {
			return fmt.Errorf("%w: %s: начало %q", domain.ErrInvalidEvent, ev.Title, ev.Start)
		}
		end, err := minutesOf(ev.End)
		if err != nil {
			return fmt.Errorf("%w: %s: конец %q", domain.ErrInvalidEvent, ev.Title, ev.End)
		}
		if start >= end {
			return fmt.Errorf("%w: %s: начало %s не раньше конца %s", domain.ErrInvalidEvent, ev.Title, ev.Start, ev.End)
		}
		if start < w.fromHour*60 || end > w.toHour*60 {
			return fmt.Errorf("%w: %s %s-%s вне часов %d-%d", domain.ErrInvalidEvent, ev.Title, ev.Start, ev.End, w.fromHour, w.toHour)
		}
	}
	return nil
}

func minutesOf(clock string) (int, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// CalendarRenderer строит HTML-сетку недельного календаря
type CalendarRenderer struct {
	tmpl *template.Template
}

// NewCalendarRenderer создаёт рендерер календаря
func NewCalendarRenderer() *CalendarRenderer {
	return &CalendarRenderer{
		tmpl: template.Must(template.New("calendar").Parse(calendarTemplate)),
	}
}

// calendarBlock описывает событие с позицией в колонке дня (в процентах)
type calendarBlock struct {
	Top, Height float64
	Title       string
	Time        string
	Notes       string
	Style       string
}

type calendarColumn struct {
	Name   string
	Blocks []calendarBlock
}

type calendarData struct {
	Title      string
	Align      string
	HourLabels []string
	HourHeight float64
	Columns    []calendarColumn
}

// Render проверяет конфигурацию и события и возвращает HTML календаря
func (r *CalendarRenderer) Render(cfg domain.DisplayConfig, events []domain.CalendarEvent) (string, error) {
	w, err := ValidateConfig(cfg)
	if err != nil {
		return "", err
	}
	if err := ValidateEvents(events, w); err != nil {
		return "", err
	}

	span := float64((w.toHour - w.fromHour) * 60)
	titles := columnTitles[cfg.Lang]

	data := calendarData{
		Title:      cfg.Title,
		Align:      cfg.TitleVerticalAlign,
		HourHeight: 100 / float64(w.toHour-w.fromHour),
	}
	for h := w.fromHour; h < w.toHour; h++ {
		data.HourLabels = append(data.HourLabels, fmt.Sprintf("%02d:00", h))
	}
	for d := w.firstDay; d <= w.lastDay; d++ {
		data.Columns = append(data.Columns, calendarColumn{Name: titles[d]})
	}

	for _, ev := range events {
		start, _ := minutesOf(ev.Start)
		end, _ := minutesOf(ev.End)
		col := &data.Columns[ev.Day-w.firstDay]
		col.Blocks = append(col.Blocks, calendarBlock{
			Top:    float64(start-w.fromHour*60) / span * 100,
			Height: float64(end-start) / span * 100,
			Title:  ev.Title,
			Time:   ev.Start + " - " + ev.End,
			Notes:  ev.Notes,
			Style:  string(ev.Style),
		})
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// calendarTemplate: колонка часов и колонки дней
// с абсолютно позиционированными блоками событий
const calendarTemplate = `
<div class="calendar">
	<h3 class="calendar-title calendar-title-{{.Align}}">{{.Title}}</h3>
	<div class="calendar-grid">
		<div class="calendar-hours">
			<div class="calendar-head"></div>
			<div class="calendar-body">
			{{range .HourLabels}}<div class="calendar-hour" style="height: {{printf "%.4f" $.HourHeight}}%;">{{.}}</div>{{end}}
			</div>
		</div>
		{{range .Columns}}
		<div class="calendar-day">
			<div class="calendar-head">{{.Name}}</div>
			<div class="calendar-body">
			{{range .Blocks}}
				<div class="calendar-event calendar-event-{{.Style}}" style="top: {{printf "%.4f" .Top}}%; height: {{printf "%.4f" .Height}}%;" title="{{.Notes}}">
					<strong>{{.Title}}</strong><br><small>{{.Time}}</small><br><small>{{.Notes}}</small>
				</div>
			{{end}}
			</div>
		</div>
		{{end}}
	</div>
</div>
`

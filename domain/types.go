package domain

import "fmt"

// Session содержит одну строку расписания, то есть одно занятие группы
type Session struct {
	CourseCode     string // COD_DISCIPLINA
	SectionCode    string // COD_TURMA
	InstructorName string // NOME_DOCENTE
	RoomID         string // NUM_SALA
	ProgramCode    string // COD_CURSO
	WeekdayCode    int    // ITEM_TABELA, код дня недели из исходной системы
	StartTime      string // HR_INICIO, "HH:MM:SS"
	EndTime        string // HR_FIM, "HH:MM:SS"
	CourseName     string // NOME_DISCIPLINA
	Enrollment     string // VAGAS_OCUPADAS
}

// Title возвращает заголовок события календаря в формате "дисциплина-группа"
func (s Session) Title() string {
	return fmt.Sprintf("%s-%s", s.CourseCode, s.SectionCode)
}

// ShortStart возвращает время начала без секунд
func (s Session) ShortStart() string {
	return clip(s.StartTime, 5)
}

// ShortEnd возвращает время конца без секунд
func (s Session) ShortEnd() string {
	return clip(s.EndTime, 5)
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// EntityKind определяет, по какому ключу группируются занятия
type EntityKind int

const (
	Instructor EntityKind = iota
	Room
)

// String возвращает имя вида сущности для логов и URL
func (k EntityKind) String() string {
	switch k {
	case Instructor:
		return "instructor"
	case Room:
		return "room"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseEntityKind разбирает имя вида сущности
func ParseEntityKind(s string) (EntityKind, error) {
	switch s {
	case "instructor", "professor", "":
		return Instructor, nil
	case "room", "sala":
		return Room, nil
	}
	return 0, fmt.Errorf("неизвестный вид сущности %q", s)
}

// Key возвращает ключ группировки занятия для данного вида сущности
func (k EntityKind) Key(s Session) string {
	if k == Room {
		return s.RoomID
	}
	return s.InstructorName
}

// AggregateHours содержит суммарную аудиторную нагрузку сущности
type AggregateHours struct {
	Entity       string `json:"entity" yaml:"entity"`
	Formatted    string `json:"formatted" yaml:"formatted"`         // "ЧЧ: ММ"
	TotalMinutes int    `json:"total_minutes" yaml:"total_minutes"` // 5 * число занятых слотов
}

// NewAggregateHours создает AggregateHours из числа минут
func NewAggregateHours(entity string, minutes int) AggregateHours {
	return AggregateHours{
		Entity:       entity,
		Formatted:    FormatHours(minutes),
		TotalMinutes: minutes,
	}
}

// FormatHours форматирует минуты как "ЧЧ: ММ", оба поля шириной 2 с нулями; 100 минут дают "01: 40"
func FormatHours(minutes int) string {
	return fmt.Sprintf("%02d: %02d", minutes/60, minutes%60)
}

// EventStyle задаёт цветовую метку события календаря
type EventStyle string

const (
	StyleGreen EventStyle = "green"
	StyleBlue  EventStyle = "blue"
	StyleRed   EventStyle = "red"
)

// CalendarEvent описывает одно событие недельного календаря
type CalendarEvent struct {
	Day   int        `json:"day"`   // скорректированный день недели, 0 - понедельник
	Start string     `json:"start"` // "HH:MM"
	End   string     `json:"end"`   // "HH:MM"
	Title string     `json:"title"`
	Notes string     `json:"notes"`
	Style EventStyle `json:"style"`
}

// DisplayConfig описывает отображение календаря для рендерера
type DisplayConfig struct {
	Lang               string `json:"lang"`
	Title              string `json:"title"`
	Dates              string `json:"dates"` // "Seg - Sex" или "Seg - Sab"
	Hours              string `json:"hours"` // "6 - 22"
	ShowDate           bool   `json:"show_date"`
	Legend             bool   `json:"legend"`
	TitleVerticalAlign string `json:"title_vertical_align"`
}

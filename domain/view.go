package domain

import "fmt"

// saturdayMarker — скорректированный день, при котором окно календаря расширяется до субботы
const saturdayMarker = 6

// View содержит недельное расписание одной сущности, готовое для рендерера
type View struct {
	Kind          EntityKind
	Entity        string
	Events        []CalendarEvent
	Unscheduled   []string // занятия без фиксированного времени
	NeedsSaturday bool
}

// Select отбирает строки сущности с сохранением порядка
func Select(sessions []Session, kind EntityKind, entity string) []Session {
	var out []Session
	for _, s := range sessions {
		if kind.Key(s) == entity {
			out = append(out, s)
		}
	}
	return out
}

// BuildView строит календарь сущности: сначала стратегия дедупликации вида,
// затем события для строк с неотрицательным скорректированным днём и
// текстовые заметки для остальных.
func BuildView(sessions []Session, kind EntityKind, entity string) View {
	view := View{Kind: kind, Entity: entity}

	for _, s := range StrategyFor(kind)(sessions) {
		day := AdjustedWeekday(s.WeekdayCode)
		if day < 0 {
			view.Unscheduled = append(view.Unscheduled, unscheduledNote(s))
			continue
		}

		view.Events = append(view.Events, CalendarEvent{
			Day:   day,
			Start: s.ShortStart(),
			End:   s.ShortEnd(),
			Title: s.Title(),
			Notes: annotation(kind, s),
			Style: StyleGreen,
		})
		if day == saturdayMarker {
			view.NeedsSaturday = true
		}
	}

	return view
}

// annotation формирует подпись события: для преподавателя — аудитория и
// число записанных, для аудитории — преподаватель и полное время.
func annotation(kind EntityKind, s Session) string {
	if kind == Room {
		return fmt.Sprintf("%s, %s, %s-%s", s.CourseName, s.InstructorName, s.StartTime, s.EndTime)
	}
	return fmt.Sprintf("%s, %s, %s inscritos", s.CourseName, s.RoomID, s.Enrollment)
}

func unscheduledNote(s Session) string {
	return fmt.Sprintf("%s: %s : %s - %s - %s", s.CourseCode, s.SectionCode, s.CourseName, s.RoomID, s.Enrollment)
}

// DisplayDefaults содержит постоянную часть конфигурации календаря
type DisplayDefaults struct {
	Lang  string
	Hours string
}

// DisplayConfigFor формирует конфигурацию рендерера для расписания
func DisplayConfigFor(view View, title string, defaults DisplayDefaults) DisplayConfig {
	dates := "Seg - Sex"
	if view.NeedsSaturday {
		dates = "Seg - Sab"
	}
	return DisplayConfig{
		Lang:               defaults.Lang,
		Title:              title,
		Dates:              dates,
		Hours:              defaults.Hours,
		ShowDate:           false,
		Legend:             false,
		TitleVerticalAlign: "top",
	}
}

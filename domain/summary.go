package domain

import "sort"

// Summary содержит сводку по выборке строк одной сущности
type Summary struct {
	Programs      []string // уникальные COD_CURSO в порядке появления
	CourseCount   int      // число разных дисциплин
	SectionCount  int      // число разных групп
	Instructors   []string // преподаватели, отсортированные
	DisplayEntity string   // имя сущности из первой строки выборки
}

// Summarize считает сводку по строкам выборки
func Summarize(sessions []Session, kind EntityKind) Summary {
	var sum Summary
	if len(sessions) > 0 {
		sum.DisplayEntity = kind.Key(sessions[0])
	}

	programs := make(map[string]struct{})
	courses := make(map[string]struct{})
	sections := make(map[string]struct{})
	instructors := make(map[string]struct{})

	for _, s := range sessions {
		if _, ok := programs[s.ProgramCode]; !ok {
			programs[s.ProgramCode] = struct{}{}
			sum.Programs = append(sum.Programs, s.ProgramCode)
		}
		courses[s.CourseCode] = struct{}{}
		sections[s.SectionCode] = struct{}{}
		instructors[s.InstructorName] = struct{}{}
	}

	sum.CourseCount = len(courses)
	sum.SectionCount = len(sections)
	for name := range instructors {
		sum.Instructors = append(sum.Instructors, name)
	}
	sort.Strings(sum.Instructors)
	return sum
}

// Entities возвращает отсортированный список уникальных ключей сущностей
func Entities(sessions []Session, kind EntityKind) []string {
	set := make(map[string]struct{})
	for _, s := range sessions {
		set[kind.Key(s)] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for e := range set {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

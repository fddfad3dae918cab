package domain

// DedupStrategy отбирает занятия, которые попадут в календарь
type DedupStrategy func(sessions []Session) []Session

// DedupKey определяет "одно и то же еженедельное занятие": дисциплина и точное время
type DedupKey struct {
	CourseCode string
	StartTime  string
	EndTime    string
}

// KeyOf возвращает ключ дедупликации занятия
func KeyOf(s Session) DedupKey {
	return DedupKey{CourseCode: s.CourseCode, StartTime: s.StartTime, EndTime: s.EndTime}
}

// NoDedup оставляет все строки как есть, по событию на строку
func NoDedup(sessions []Session) []Session {
	out := make([]Session, len(sessions))
	copy(out, sessions)
	return out
}

// DedupByCourseAndTime оставляет первое занятие для каждого ключа (дисциплина, начало, конец),
// сохраняя порядок. День недели в ключ не входит: занятие три раза в неделю
// в одно и то же время даёт одно событие.
func DedupByCourseAndTime(sessions []Session) []Session {
	seen := make(map[DedupKey]struct{}, len(sessions))
	out := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		k := KeyOf(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}

// StrategyFor возвращает стратегию для вида календаря:
// аудитории дедуплицируются, преподаватели нет.
func StrategyFor(kind EntityKind) DedupStrategy {
	if kind == Room {
		return DedupByCourseAndTime
	}
	return NoDedup
}

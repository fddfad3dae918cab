package domain

import "sort"

// OccupancyRow — занятые слоты одной сущности в один день (по сырому коду дня)
type OccupancyRow struct {
	Entity      string
	WeekdayCode int
	Slots       SlotSet
}

type occupancyKey struct {
	entity  string
	weekday int
}

// OccupancyTable хранит строки {сущность, день, слоты} в одном массиве
// с индексом по ключу, без вложенных map'ов.
type OccupancyTable struct {
	rows     []OccupancyRow
	index    map[occupancyKey]int
	entities map[string]struct{}
}

// NewOccupancyTable создаёт пустую таблицу занятости
func NewOccupancyTable() *OccupancyTable {
	return &OccupancyTable{
		index:    make(map[occupancyKey]int),
		entities: make(map[string]struct{}),
	}
}

// Touch регистрирует сущность даже без единого слота
func (t *OccupancyTable) Touch(entity string) {
	t.entities[entity] = struct{}{}
}

// Add добавляет слоты в множество сущности для указанного дня
func (t *OccupancyTable) Add(entity string, weekdayCode int, slots []SlotIndex) {
	t.Touch(entity)
	if len(slots) == 0 {
		return
	}

	key := occupancyKey{entity: entity, weekday: weekdayCode}
	i, ok := t.index[key]
	if !ok {
		i = len(t.rows)
		t.rows = append(t.rows, OccupancyRow{Entity: entity, WeekdayCode: weekdayCode})
		t.index[key] = i
	}
	for _, s := range slots {
		t.rows[i].Slots.Add(s)
	}
}

// Slots возвращает множество слотов сущности за день
func (t *OccupancyTable) Slots(entity string, weekdayCode int) SlotSet {
	if i, ok := t.index[occupancyKey{entity: entity, weekday: weekdayCode}]; ok {
		return t.rows[i].Slots
	}
	return SlotSet{}
}

// Entities возвращает отсортированный список сущностей
func (t *OccupancyTable) Entities() []string {
	out := make([]string, 0, len(t.entities))
	for e := range t.entities {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// Rows возвращает строки таблицы, упорядоченные по сущности и коду дня
func (t *OccupancyTable) Rows() []OccupancyRow {
	out := make([]OccupancyRow, len(t.rows))
	copy(out, t.rows)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Entity != out[j].Entity {
			return out[i].Entity < out[j].Entity
		}
		return out[i].WeekdayCode < out[j].WeekdayCode
	})
	return out
}

// WeeklyGrid содержит сетку нагрузки день × слот
type WeeklyGrid [DaysPerWeek][SlotsPerDay]int

// Aggregation содержит результат одного прохода агрегации
type Aggregation struct {
	Kind      EntityKind
	Hours     map[string]AggregateHours
	Occupancy *OccupancyTable
	Grid      WeeklyGrid
}

// Sorted возвращает нагрузку сущностей в алфавитном порядке
func (a Aggregation) Sorted() []AggregateHours {
	out := make([]AggregateHours, 0, len(a.Hours))
	for _, h := range a.Hours {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Entity < out[j].Entity
	})
	return out
}

// Aggregator считает аудиторную нагрузку по таблице занятий
type Aggregator struct {
	sessions []Session
	policy   WeekdayPolicy
}

// NewAggregator создаёт Aggregator с политикой дней по умолчанию
func NewAggregator(sessions []Session) *Aggregator {
	return &Aggregator{
		sessions: sessions,
		policy:   SaturdayFallback,
	}
}

// WithWeekdayPolicy заменяет политику сопоставления кодов дней
func (a *Aggregator) WithWeekdayPolicy(p WeekdayPolicy) *Aggregator {
	a.policy = p
	return a
}

// Aggregate выполняет полный проход по занятиям для указанного вида сущности.
// Каждый вызов строит состояние заново, результат от порядка строк не зависит.
func (a *Aggregator) Aggregate(kind EntityKind) Aggregation {
	table := a.collectOccupancy(kind)

	result := Aggregation{
		Kind:      kind,
		Hours:     make(map[string]AggregateHours),
		Occupancy: table,
	}

	totals := make(map[string]int)
	for _, e := range table.Entities() {
		totals[e] = 0
	}
	for _, row := range table.rows {
		totals[row.Entity] += row.Slots.Len()

		day := a.policy(row.WeekdayCode)
		if day < 0 || int(day) >= DaysPerWeek {
			continue
		}
		for _, s := range row.Slots.Slots() {
			result.Grid[day][s]++
		}
	}

	for entity, slots := range totals {
		result.Hours[entity] = NewAggregateHours(entity, slots*SlotMinutes)
	}
	return result
}

// collectOccupancy раскладывает слоты занятий по сущностям и сырым кодам дней
func (a *Aggregator) collectOccupancy(kind EntityKind) *OccupancyTable {
	table := NewOccupancyTable()
	for _, s := range a.sessions {
		table.Add(kind.Key(s), s.WeekdayCode, SlotsFor(s.StartTime, s.EndTime))
	}
	return table
}

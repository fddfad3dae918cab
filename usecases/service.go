package usecases

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Vaflel/class-hours/domain"
	"github.com/Vaflel/class-hours/infrastructure"
)

var (
	ErrTableNotFound  = errors.New("таблица не найдена или срок её хранения истёк")
	ErrEntityNotFound = errors.New("в таблице нет строк для выбранной сущности")
)

// ReportOptions задаёт параметры отчётов и календарей
type ReportOptions struct {
	Lang          string
	Hours         string // окно часов календаря, "6 - 22"
	TitlePrefix   string
	PeriodMinutes int // длительность одного "tempo"
	WeekStart     time.Time
	Weeks         int
	Location      *time.Location
}

// ReportService управляет загрузкой таблиц, агрегацией нагрузки и построением календарей
type ReportService struct {
	source   SessionSource
	renderer CalendarRenderer
	store    TableStore
	opts     ReportOptions
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportService создаёт сервис отчётов
func NewReportService(source SessionSource, renderer CalendarRenderer, store TableStore, opts ReportOptions, logger *zap.Logger) *ReportService {
	if opts.PeriodMinutes <= 0 {
		opts.PeriodMinutes = 50
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &ReportService{
		source:   source,
		renderer: renderer,
		store:    store,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// TableSummary содержит краткие сведения о загруженной таблице
type TableSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Rows        int      `json:"rows"`
	Instructors []string `json:"instructors"`
	Rooms       []string `json:"rooms"`
}

// Load разбирает файл и сохраняет таблицу с результатами агрегации.
// Повторная загрузка того же содержимого берётся из кэша.
func (s *ReportService) Load(name string, content []byte) (TableSummary, error) {
	id := infrastructure.ContentID(content)
	if table, ok := s.store.Get(id); ok {
		s.logger.Debug("таблица взята из кэша", zap.String("id", id))
		return summarize(table), nil
	}

	sessions, err := s.source.Read(name, bytes.NewReader(content))
	if err != nil {
		return TableSummary{}, err
	}

	aggregator := domain.NewAggregator(sessions)
	table := &infrastructure.CachedTable{
		ID:          id,
		Name:        name,
		Sessions:    sessions,
		Instructors: aggregator.Aggregate(domain.Instructor),
		Rooms:       aggregator.Aggregate(domain.Room),
		LoadedAt:    s.now(),
	}
	s.store.Set(table)

	s.logger.Info("таблица загружена",
		zap.String("id", id),
		zap.String("file", name),
		zap.Int("rows", len(sessions)),
		zap.Int("instructors", len(table.Instructors.Hours)),
		zap.Int("rooms", len(table.Rooms.Hours)),
	)
	return summarize(table), nil
}

func summarize(t *infrastructure.CachedTable) TableSummary {
	return TableSummary{
		ID:          t.ID,
		Name:        t.Name,
		Rows:        len(t.Sessions),
		Instructors: domain.Entities(t.Sessions, domain.Instructor),
		Rooms:       domain.Entities(t.Sessions, domain.Room),
	}
}

func (s *ReportService) table(id string) (*infrastructure.CachedTable, error) {
	t, ok := s.store.Get(id)
	if !ok {
		return nil, ErrTableNotFound
	}
	return t, nil
}

// Summary возвращает сведения о загруженной таблице
func (s *ReportService) Summary(id string) (TableSummary, error) {
	t, err := s.table(id)
	if err != nil {
		return TableSummary{}, err
	}
	return summarize(t), nil
}

// Hours возвращает нагрузку всех сущностей вида в алфавитном порядке
func (s *ReportService) Hours(id string, kind domain.EntityKind) ([]domain.AggregateHours, error) {
	t, err := s.table(id)
	if err != nil {
		return nil, err
	}
	return t.Aggregation(kind).Sorted(), nil
}

// Grid возвращает сетку занятости день × слот
func (s *ReportService) Grid(id string, kind domain.EntityKind) (domain.WeeklyGrid, error) {
	t, err := s.table(id)
	if err != nil {
		return domain.WeeklyGrid{}, err
	}
	return t.Aggregation(kind).Grid, nil
}

// EntityReport описывает отчёт по одному преподавателю или аудитории
type EntityReport struct {
	Kind      domain.EntityKind
	Entity    string
	Summary   domain.Summary
	Hours     *domain.AggregateHours // nil, если сущность не попала в агрегацию
	Periods   float64                // минуты / длительность "tempo"
	View      domain.View
	Config    domain.DisplayConfig
	Calendar  string // HTML календаря; пусто, если событий нет или рендерер отказал
	RenderErr error  // отказ рендерера
	Rows      []domain.Session
}

// HasCalendar сообщает, что календарь построен
func (r EntityReport) HasCalendar() bool {
	return r.Calendar != ""
}

// HoursText возвращает строку нагрузки для отчёта
func (r EntityReport) HoursText() string {
	if r.Hours == nil {
		return "Horas em sala: sem informação"
	}
	return fmt.Sprintf("Horas em sala: %sh (%g tempos)", r.Hours.Formatted, r.Periods)
}

// Report строит отчёт сущности: сводку, нагрузку и календарь.
// Расписание без событий даёт отчёт только с заметками; отказ рендерера
// возвращается в RenderErr, события при этом не подгоняются под окно.
func (s *ReportService) Report(id string, kind domain.EntityKind, entity string) (EntityReport, error) {
	t, err := s.table(id)
	if err != nil {
		return EntityReport{}, err
	}

	rows := domain.Select(t.Sessions, kind, entity)
	if len(rows) == 0 {
		return EntityReport{}, fmt.Errorf("%w: %s %q", ErrEntityNotFound, kind, entity)
	}

	report := EntityReport{
		Kind:    kind,
		Entity:  entity,
		Summary: domain.Summarize(rows, kind),
		View:    domain.BuildView(rows, kind, entity),
		Rows:    rows,
	}

	if h, ok := t.Aggregation(kind).Hours[entity]; ok {
		report.Hours = &h
		report.Periods = float64(h.TotalMinutes) / float64(s.opts.PeriodMinutes)
	}

	report.Config = domain.DisplayConfigFor(report.View, s.title(kind, entity), domain.DisplayDefaults{
		Lang:  s.opts.Lang,
		Hours: s.opts.Hours,
	})

	if len(report.View.Events) == 0 {
		return report, nil
	}

	calendar, err := s.renderer.Render(report.Config, report.View.Events)
	if err != nil {
		s.logger.Warn("рендерер отклонил календарь",
			zap.String("kind", kind.String()),
			zap.String("entity", entity),
			zap.Error(err),
		)
		report.RenderErr = err
		return report, nil
	}
	report.Calendar = calendar
	return report, nil
}

func (s *ReportService) title(kind domain.EntityKind, entity string) string {
	if kind == domain.Room {
		return fmt.Sprintf("%s de %s", s.opts.TitlePrefix, entity)
	}
	return fmt.Sprintf("%s - %s", s.opts.TitlePrefix, entity)
}

// CalendarICS выгружает недельное расписание сущности в iCalendar
func (s *ReportService) CalendarICS(id string, kind domain.EntityKind, entity string) ([]byte, string, error) {
	t, err := s.table(id)
	if err != nil {
		return nil, "", err
	}
	rows := domain.Select(t.Sessions, kind, entity)
	if len(rows) == 0 {
		return nil, "", fmt.Errorf("%w: %s %q", ErrEntityNotFound, kind, entity)
	}

	weekStart := s.opts.WeekStart
	if weekStart.IsZero() {
		weekStart = mondayOf(s.now().In(s.opts.Location))
	}

	var buf bytes.Buffer
	err = infrastructure.WriteCalendarICS(&buf, domain.BuildView(rows, kind, entity), infrastructure.ICSOptions{
		WeekStart: weekStart,
		Weeks:     s.opts.Weeks,
		Location:  s.opts.Location,
	})
	if err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("%s-%s.ics", kind, entity), nil
}

// HoursXLSX выгружает нагрузку преподавателей и аудиторий в книгу Excel
func (s *ReportService) HoursXLSX(id string) ([]byte, string, error) {
	t, err := s.table(id)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	err = infrastructure.WriteHoursXLSX(&buf, infrastructure.HoursWorkbook{
		Instructors:   t.Instructors.Sorted(),
		Rooms:         t.Rooms.Sorted(),
		Grid:          t.Instructors.Grid,
		PeriodMinutes: s.opts.PeriodMinutes,
	})
	if err != nil {
		s.logger.Error("не удалось построить книгу Excel", zap.Error(err))
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("horas-%s.xlsx", t.ID), nil
}

// HoursYAML выгружает нагрузку сущностей вида в YAML
func (s *ReportService) HoursYAML(id string, kind domain.EntityKind) ([]byte, string, error) {
	t, err := s.table(id)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	if err := infrastructure.WriteHoursYAML(&buf, kind, t.Aggregation(kind).Sorted()); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("horas-%s-%s.yaml", kind, t.ID), nil
}

// ClearCache удаляет все загруженные таблицы
func (s *ReportService) ClearCache() int {
	n := s.store.Clear()
	s.logger.Info("кэш таблиц очищен", zap.Int("tables", n))
	return n
}

// mondayOf возвращает полночь понедельника недели t
func mondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start.AddDate(0, 0, -offset)
}

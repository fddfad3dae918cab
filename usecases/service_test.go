package usecases

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Vaflel/class-hours/domain"
	"github.com/Vaflel/class-hours/infrastructure"
)

const scheduleCSV = "COD_CURSO;COD_DISCIPLINA;COD_TURMA;NOME_DISCIPLINA;NOME_DOCENTE;NUM_SALA;ITEM_TABELA;HR_INICIO;HR_FIM;VAGAS_OCUPADAS\n" +
	"BCC;MAT101;T1;Cálculo I;Ana Souza;E-201;2;08:00:00;09:40:00;35\n" +
	"BCC;MAT101;T1;Cálculo I;Ana Souza;E-201;4;08:00:00;09:40:00;35\n" +
	"ECA;FIS201;T2;Física II;Bruno Lima;E-201;3;10:00:00;11:40:00;28\n" +
	"BCC;EST300;T1;Estágio;Ana Souza;EXT;1;;;10\n"

type countingSource struct {
	inner SessionSource
	calls int
}

func (s *countingSource) Read(name string, r io.Reader) ([]domain.Session, error) {
	s.calls++
	return s.inner.Read(name, r)
}

type fakeRenderer struct {
	calls  int
	cfg    domain.DisplayConfig
	events []domain.CalendarEvent
	err    error
}

func (r *fakeRenderer) Render(cfg domain.DisplayConfig, events []domain.CalendarEvent) (string, error) {
	r.calls++
	r.cfg = cfg
	r.events = events
	if r.err != nil {
		return "", r.err
	}
	return "<div>calendar</div>", nil
}

type fixture struct {
	service  *ReportService
	source   *countingSource
	renderer *fakeRenderer
	id       string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := zap.NewNop()
	source := &countingSource{inner: infrastructure.NewSessionReader("utf-8", logger)}
	renderer := &fakeRenderer{}
	service := NewReportService(source, renderer, infrastructure.NewTableCache(time.Hour), ReportOptions{
		Lang:          "pt",
		Hours:         "6 - 22",
		TitlePrefix:   "Grade Horária",
		PeriodMinutes: 50,
		WeekStart:     time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		Weeks:         4,
	}, logger)

	summary, err := service.Load("horarios.csv", []byte(scheduleCSV))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return &fixture{service: service, source: source, renderer: renderer, id: summary.ID}
}

func TestLoad(t *testing.T) {
	f := newFixture(t)

	summary, err := f.service.Load("copia.csv", []byte(scheduleCSV))
	if err != nil {
		t.Fatalf("повторный Load: %v", err)
	}
	if summary.ID != f.id {
		t.Errorf("одинаковое содержимое дало разные ID: %s и %s", summary.ID, f.id)
	}
	if f.source.calls != 1 {
		t.Errorf("повторная загрузка прочитала файл заново, вызовов: %d", f.source.calls)
	}
	if summary.Rows != 4 {
		t.Errorf("Rows = %d, ожидалось 4", summary.Rows)
	}
	if strings.Join(summary.Instructors, "|") != "Ana Souza|Bruno Lima" {
		t.Errorf("Instructors = %v", summary.Instructors)
	}
	if strings.Join(summary.Rooms, "|") != "E-201|EXT" {
		t.Errorf("Rooms = %v", summary.Rooms)
	}
}

func TestLoadUnsupported(t *testing.T) {
	f := newFixture(t)
	if _, err := f.service.Load("horarios.parquet", []byte("PAR1")); !errors.Is(err, infrastructure.ErrUnsupportedFormat) {
		t.Errorf("ожидалась ErrUnsupportedFormat, получено %v", err)
	}
}

func TestHours(t *testing.T) {
	f := newFixture(t)

	instructors, err := f.service.Hours(f.id, domain.Instructor)
	if err != nil {
		t.Fatalf("Hours: %v", err)
	}
	want := []domain.AggregateHours{
		domain.NewAggregateHours("Ana Souza", 200),
		domain.NewAggregateHours("Bruno Lima", 100),
	}
	if len(instructors) != len(want) {
		t.Fatalf("Hours = %+v", instructors)
	}
	for i := range want {
		if instructors[i] != want[i] {
			t.Errorf("Hours[%d] = %+v, ожидалось %+v", i, instructors[i], want[i])
		}
	}

	rooms, err := f.service.Hours(f.id, domain.Room)
	if err != nil {
		t.Fatalf("Hours: %v", err)
	}
	if len(rooms) != 2 || rooms[0].Formatted != "05: 00" || rooms[1].Entity != "EXT" || rooms[1].TotalMinutes != 0 {
		t.Errorf("нагрузка аудиторий: %+v", rooms)
	}
}

func TestGrid(t *testing.T) {
	f := newFixture(t)

	grid, err := f.service.Grid(f.id, domain.Room)
	if err != nil {
		t.Fatalf("Grid: %v", err)
	}
	// 08:00 = слот 96
	if grid[0][96] != 1 || grid[2][96] != 1 || grid[1][120] != 1 {
		t.Errorf("неверная занятость: пн %d, ср %d, вт 10:00 %d", grid[0][96], grid[2][96], grid[1][120])
	}
	if grid[0][95] != 0 || grid[0][116] != 0 {
		t.Error("занятость вне интервала занятия")
	}
}

func TestInstructorReport(t *testing.T) {
	f := newFixture(t)

	report, err := f.service.Report(f.id, domain.Instructor, "Ana Souza")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}

	if len(report.Rows) != 3 {
		t.Errorf("строк %d, ожидалось 3", len(report.Rows))
	}
	if report.Summary.CourseCount != 2 || report.Summary.SectionCount != 1 {
		t.Errorf("сводка: %+v", report.Summary)
	}
	if strings.Join(report.Summary.Programs, ",") != "BCC" {
		t.Errorf("Programs = %v", report.Summary.Programs)
	}
	if report.Hours == nil || report.Hours.Formatted != "03: 20" || report.Periods != 4 {
		t.Errorf("нагрузка: %+v, tempos %g", report.Hours, report.Periods)
	}
	if report.HoursText() != "Horas em sala: 03: 20h (4 tempos)" {
		t.Errorf("HoursText() = %q", report.HoursText())
	}

	if len(report.View.Events) != 2 || len(report.View.Unscheduled) != 1 {
		t.Errorf("событий %d, заметок %d", len(report.View.Events), len(report.View.Unscheduled))
	}
	if report.Config.Title != "Grade Horária - Ana Souza" || report.Config.Dates != "Seg - Sex" {
		t.Errorf("конфигурация: %+v", report.Config)
	}
	if f.renderer.calls != 1 || len(f.renderer.events) != 2 {
		t.Errorf("рендерер: вызовов %d, событий %d", f.renderer.calls, len(f.renderer.events))
	}
	if !report.HasCalendar() || report.RenderErr != nil {
		t.Errorf("календарь не построен: %v", report.RenderErr)
	}
}

func TestRoomReportDeduplicates(t *testing.T) {
	f := newFixture(t)

	report, err := f.service.Report(f.id, domain.Room, "E-201")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if len(report.View.Events) != 2 {
		t.Fatalf("событий %d, ожидалось 2", len(report.View.Events))
	}
	if report.View.Events[0].Day != 0 || report.View.Events[0].Notes != "Cálculo I, Ana Souza, 08:00:00-09:40:00" {
		t.Errorf("первое событие: %+v", report.View.Events[0])
	}
	if strings.Join(report.Summary.Instructors, "|") != "Ana Souza|Bruno Lima" {
		t.Errorf("преподаватели аудитории: %v", report.Summary.Instructors)
	}
	if report.Config.Title != "Grade Horária de E-201" {
		t.Errorf("Title = %q", report.Config.Title)
	}
}

func TestReportWithoutEventsSkipsRenderer(t *testing.T) {
	f := newFixture(t)

	report, err := f.service.Report(f.id, domain.Room, "EXT")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if f.renderer.calls != 0 {
		t.Error("рендерер вызван для расписания без событий")
	}
	if report.HasCalendar() || len(report.View.Unscheduled) != 1 {
		t.Errorf("ожидались только заметки: %+v", report.View)
	}
	if report.View.Unscheduled[0] != "EST300: T1 : Estágio - EXT - 10" {
		t.Errorf("заметка: %q", report.View.Unscheduled[0])
	}
}

func TestReportRendererRejection(t *testing.T) {
	f := newFixture(t)
	f.renderer.err = domain.ErrInvalidEvent

	report, err := f.service.Report(f.id, domain.Instructor, "Bruno Lima")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if !errors.Is(report.RenderErr, domain.ErrInvalidEvent) {
		t.Errorf("RenderErr = %v", report.RenderErr)
	}
	if report.HasCalendar() {
		t.Error("календарь построен несмотря на отказ рендерера")
	}
}

func TestReportNotFound(t *testing.T) {
	f := newFixture(t)

	if _, err := f.service.Report(f.id, domain.Instructor, "Ana"); !errors.Is(err, ErrEntityNotFound) {
		t.Errorf("частичное имя: ожидалась ErrEntityNotFound, получено %v", err)
	}
	if _, err := f.service.Report("nope", domain.Instructor, "Ana Souza"); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("ожидалась ErrTableNotFound, получено %v", err)
	}
}

func TestCalendarICS(t *testing.T) {
	f := newFixture(t)

	data, name, err := f.service.CalendarICS(f.id, domain.Instructor, "Ana Souza")
	if err != nil {
		t.Fatalf("CalendarICS: %v", err)
	}
	if name != "instructor-Ana Souza.ics" {
		t.Errorf("name = %q", name)
	}
	out := string(data)
	if !strings.HasPrefix(out, "BEGIN:VCALENDAR") || strings.Count(out, "BEGIN:VEVENT") != 2 {
		t.Errorf("неверный календарь:\n%s", out)
	}
	if !strings.Contains(out, "FREQ=WEEKLY;COUNT=4") {
		t.Error("нет правила повторения")
	}

	if _, _, err := f.service.CalendarICS(f.id, domain.Room, "EXT"); !errors.Is(err, domain.ErrNoEvents) {
		t.Errorf("ожидалась ErrNoEvents, получено %v", err)
	}
}

func TestExports(t *testing.T) {
	f := newFixture(t)

	xlsx, name, err := f.service.HoursXLSX(f.id)
	if err != nil {
		t.Fatalf("HoursXLSX: %v", err)
	}
	if !bytes.HasPrefix(xlsx, []byte("PK")) || !strings.HasSuffix(name, ".xlsx") {
		t.Errorf("книга Excel: %q, %d байт", name, len(xlsx))
	}

	yml, _, err := f.service.HoursYAML(f.id, domain.Room)
	if err != nil {
		t.Fatalf("HoursYAML: %v", err)
	}
	if !strings.Contains(string(yml), "entity: E-201") || !strings.Contains(string(yml), "kind: room") {
		t.Errorf("YAML:\n%s", yml)
	}
}

func TestClearCache(t *testing.T) {
	f := newFixture(t)

	if n := f.service.ClearCache(); n != 1 {
		t.Errorf("ClearCache() = %d, ожидалось 1", n)
	}
	if _, err := f.service.Summary(f.id); !errors.Is(err, ErrTableNotFound) {
		t.Errorf("ожидалась ErrTableNotFound, получено %v", err)
	}
}

func TestMondayOf(t *testing.T) {
	monday := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	for _, d := range []time.Time{
		time.Date(2024, 3, 4, 15, 30, 0, 0, time.UTC),
		time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC),
	} {
		if got := mondayOf(d); !got.Equal(monday) {
			t.Errorf("mondayOf(%v) = %v", d, got)
		}
	}
}

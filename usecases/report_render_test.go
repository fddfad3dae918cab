package usecases_test

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Vaflel/class-hours/domain"
	"github.com/Vaflel/class-hours/infrastructure"
	"github.com/Vaflel/class-hours/usecases"
	"github.com/Vaflel/class-hours/web"
)

// Код дня 99 даёт событие на дне 97, которое настоящий рендерер отклоняет
func TestReportOutOfWeekDayRejectedByRenderer(t *testing.T) {
	csv := "COD_CURSO;COD_DISCIPLINA;COD_TURMA;NOME_DISCIPLINA;NOME_DOCENTE;NUM_SALA;ITEM_TABELA;HR_INICIO;HR_FIM;VAGAS_OCUPADAS\n" +
		"BCC;MAT101;T1;Cálculo I;Ana Souza;E-201;99;08:00:00;09:40:00;35\n"

	logger := zap.NewNop()
	service := usecases.NewReportService(
		infrastructure.NewSessionReader("utf-8", logger),
		web.NewCalendarRenderer(),
		infrastructure.NewTableCache(time.Hour),
		usecases.ReportOptions{Lang: "pt", Hours: "6 - 22", TitlePrefix: "Grade Horária"},
		logger,
	)

	summary, err := service.Load("horarios.csv", []byte(csv))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	report, err := service.Report(summary.ID, domain.Instructor, "Ana Souza")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if len(report.View.Events) != 1 || report.View.Events[0].Day != 97 {
		t.Fatalf("события: %+v", report.View.Events)
	}
	if !errors.Is(report.RenderErr, domain.ErrInvalidEvent) {
		t.Errorf("RenderErr = %v, ожидалась ErrInvalidEvent", report.RenderErr)
	}
	if report.HasCalendar() {
		t.Error("календарь построен несмотря на отказ рендерера")
	}
	if report.Hours == nil || report.Hours.Formatted != "01: 40" {
		t.Errorf("нагрузка: %+v", report.Hours)
	}
}

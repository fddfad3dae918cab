package infrastructure

import (
	"bytes"
	"os"
	"testing"
)

// testdata/horarios.xls: лист "Horarios", строки 0 и 3 пустые, заголовок в строке 1.
// Коды дней и часы второго занятия записаны числами, как их сохраняет Excel.
func TestXLSParserReadTable(t *testing.T) {
	data, err := os.ReadFile("testdata/horarios.xls")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	rows, err := NewXLSParser("utf-8").ReadTable(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("прочитано %d строк, ожидалось 4: %q", len(rows), rows)
	}
	if rows[0][0] != "COD_CURSO" || rows[0][9] != "VAGAS_OCUPADAS" {
		t.Errorf("заголовок: %q", rows[0])
	}
	if rows[1][3] != "Cálculo I" || rows[1][6] != "2" || rows[1][7] != "08:00:00" {
		t.Errorf("первая строка: %q", rows[1])
	}
	if rows[2] != nil {
		t.Errorf("пропущенная строка листа: %q", rows[2])
	}
	if rows[3][7] != "0.4166666666666667" {
		t.Errorf("числовое время: %q", rows[3][7])
	}
}

func TestReadXLS(t *testing.T) {
	f, err := os.Open("testdata/horarios.xls")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	sessions, err := newTestReader().Read("horarios.xls", f)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("прочитано %d строк, ожидалось 2", len(sessions))
	}

	first := sessions[0]
	if first.CourseCode != "MAT101" || first.InstructorName != "Ana Souza" || first.WeekdayCode != 2 || first.Enrollment != "35" {
		t.Errorf("первая строка: %+v", first)
	}

	second := sessions[1]
	if second.CourseName != "Física II" || second.StartTime != "10:00:00" || second.EndTime != "11:40:00" || second.WeekdayCode != 3 {
		t.Errorf("вторая строка: %+v", second)
	}
}

func TestXLSParserRejectsGarbage(t *testing.T) {
	if _, err := NewXLSParser("").ReadTable(bytes.NewReader([]byte("COD_CURSO;NOME_DOCENTE\n"))); err == nil {
		t.Error("ожидалась ошибка для файла не в формате XLS")
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("явно указанный отсутствующий файл должен давать ошибку, получено %+v", cfg)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8060 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Level = %q", cfg.Log.Level)
	}
	if cfg.Cache.TTL != 30*time.Minute {
		t.Errorf("TTL = %v", cfg.Cache.TTL)
	}
	if cfg.Calendar.Hours != "6 - 22" || cfg.Calendar.Lang != "pt" {
		t.Errorf("Calendar = %+v", cfg.Calendar)
	}
	if cfg.Report.PeriodMinutes != 50 {
		t.Errorf("PeriodMinutes = %d", cfg.Report.PeriodMinutes)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CLASSHOURS_SERVER_PORT", "9100")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("переменная окружения должна иметь приоритет, Port = %d", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		Server:   ServerConfig{Port: 8060},
		Calendar: CalendarConfig{Hours: "6 - 22"},
		Report:   ReportConfig{PeriodMinutes: 50},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	bad := base
	bad.Server.Port = 0
	if bad.Validate() == nil {
		t.Error("порт 0 должен отклоняться")
	}

	bad = base
	bad.Calendar.Hours = "22 - 6"
	if bad.Validate() == nil {
		t.Error("перевёрнутое окно часов должно отклоняться")
	}

	bad = base
	bad.Calendar.WeekStart = "03/03/2025"
	if bad.Validate() == nil {
		t.Error("неверная дата недели должна отклоняться")
	}
}

func TestParseHourRange(t *testing.T) {
	from, to, err := ParseHourRange("6 - 22")
	if err != nil || from != 6 || to != 22 {
		t.Errorf("ParseHourRange = %d, %d, %v", from, to, err)
	}
	for _, s := range []string{"", "6", "a - 2", "0 - 25", "10 - 10"} {
		if _, _, err := ParseHourRange(s); err == nil {
			t.Errorf("ParseHourRange(%q) должен вернуть ошибку", s)
		}
	}
}

func TestCalendarLocation(t *testing.T) {
	loc, err := CalendarConfig{}.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("пустой пояс: %v, %v", loc, err)
	}
	if _, err := (CalendarConfig{Timezone: "Mars/Olympus"}).Location(); err == nil {
		t.Error("неизвестный пояс должен давать ошибку")
	}

	start, err := CalendarConfig{WeekStart: "2025-03-03"}.WeekStartIn(time.UTC)
	if err != nil || !start.Equal(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("WeekStartIn = %v, %v", start, err)
	}
	if start, _ := (CalendarConfig{}).WeekStartIn(time.UTC); !start.IsZero() {
		t.Errorf("без даты ожидалось нулевое время, получено %v", start)
	}
}

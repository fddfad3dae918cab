package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config содержит конфигурацию приложения
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Report   ReportConfig   `mapstructure:"report"`
}

// ServerConfig содержит настройки веб-сервера
type ServerConfig struct {
	Port        int  `mapstructure:"port"`
	OpenBrowser bool `mapstructure:"open_browser"`
	MaxUploadMB int  `mapstructure:"max_upload_mb"`
}

// LogConfig содержит настройки журнала
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json | console
}

// CacheConfig задаёт время жизни загруженных таблиц в памяти
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// IngestConfig содержит параметры чтения файлов расписания
type IngestConfig struct {
	XLSCharset string `mapstructure:"xls_charset"`
}

// CalendarConfig — постоянная часть конфигурации календаря
type CalendarConfig struct {
	Lang        string `mapstructure:"lang"`
	Hours       string `mapstructure:"hours"`        // окно часов, "6 - 22"
	TitlePrefix string `mapstructure:"title_prefix"` // "Grade Horária"
	WeekStart   string `mapstructure:"week_start"`   // понедельник недели для ICS, "2006-01-02"
	Weeks       int    `mapstructure:"weeks"`        // число повторений события в ICS
	Timezone    string `mapstructure:"timezone"`
}

// ReportConfig содержит тексты и параметры отчёта
type ReportConfig struct {
	PeriodMinutes int    `mapstructure:"period_minutes"` // длительность "tempo"
	Header        string `mapstructure:"header"`
	Subheader     string `mapstructure:"subheader"`
}

// Load читает конфигурацию: значения по умолчанию, затем файл, затем переменные окружения
// с префиксом CLASSHOURS_. Файл .env подхватывается, если он есть.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("не удалось прочитать .env: %w", err)
		}
	}

	v := viper.New()

	v.SetDefault("server.port", 8060)
	v.SetDefault("server.open_browser", false)
	v.SetDefault("server.max_upload_mb", 32)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("cache.ttl", "30m")

	v.SetDefault("ingest.xls_charset", "utf-8")

	v.SetDefault("calendar.lang", "pt")
	v.SetDefault("calendar.hours", "6 - 22")
	v.SetDefault("calendar.title_prefix", "Grade Horária")
	v.SetDefault("calendar.week_start", "")
	v.SetDefault("calendar.weeks", 16)
	v.SetDefault("calendar.timezone", "America/Sao_Paulo")

	v.SetDefault("report.period_minutes", 50)
	v.SetDefault("report.header", "Relatório de Horários")
	v.SetDefault("report.subheader", "Departamento de Educação Superior - Cefet/RJ")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("CLASSHOURS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("не удалось прочитать конфигурацию: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("не удалось разобрать конфигурацию: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет ключевые параметры
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port должен быть в диапазоне 1-65535, получено %d", c.Server.Port)
	}
	if c.Report.PeriodMinutes <= 0 {
		return fmt.Errorf("report.period_minutes должен быть положительным")
	}
	if _, _, err := ParseHourRange(c.Calendar.Hours); err != nil {
		return fmt.Errorf("calendar.hours: %w", err)
	}
	if c.Calendar.WeekStart != "" {
		if _, err := time.Parse("2006-01-02", c.Calendar.WeekStart); err != nil {
			return fmt.Errorf("calendar.week_start: %w", err)
		}
	}
	return nil
}

// ParseHourRange разбирает окно часов вида "6 - 22"
func ParseHourRange(s string) (int, int, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("ожидался формат \"начало - конец\", получено %q", s)
	}
	from, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("неверный час начала %q", parts[0])
	}
	to, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("неверный час конца %q", parts[1])
	}
	if from < 0 || to > 24 || from >= to {
		return 0, 0, fmt.Errorf("окно часов %d-%d вне суток", from, to)
	}
	return from, to, nil
}

// Location возвращает часовой пояс календаря; по умолчанию UTC
func (c CalendarConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("calendar.timezone: %w", err)
	}
	return loc, nil
}

// WeekStartIn возвращает понедельник первой недели ICS или нулевое время, если он не задан
func (c CalendarConfig) WeekStartIn(loc *time.Location) (time.Time, error) {
	if c.WeekStart == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation("2006-01-02", c.WeekStart, loc)
}

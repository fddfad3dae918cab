package usecases

import (
	"io"

	"github.com/Vaflel/class-hours/domain"
	"github.com/Vaflel/class-hours/infrastructure"
)

// SessionSource читает таблицу расписания из загруженного файла
type SessionSource interface {
	Read(name string, r io.Reader) ([]domain.Session, error)
}

// CalendarRenderer строит календарь по конфигурации и событиям.
// Неверные события отклоняются ошибкой, а не исправляются.
type CalendarRenderer interface {
	Render(cfg domain.DisplayConfig, events []domain.CalendarEvent) (string, error)
}

// TableStore хранит разобранные таблицы между запросами
type TableStore interface {
	Get(id string) (*infrastructure.CachedTable, bool)
	Set(table *infrastructure.CachedTable)
	Clear() int
}

package infrastructure

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/Vaflel/class-hours/domain"
)

// CachedTable содержит разобранную таблицу расписания вместе с результатами агрегации
type CachedTable struct {
	ID          string
	Name        string
	Sessions    []domain.Session
	Instructors domain.Aggregation
	Rooms       domain.Aggregation
	LoadedAt    time.Time
}

// Aggregation возвращает агрегацию для вида сущности
func (t *CachedTable) Aggregation(kind domain.EntityKind) domain.Aggregation {
	if kind == domain.Room {
		return t.Rooms
	}
	return t.Instructors
}

type cacheEntry struct {
	table  *CachedTable
	expiry time.Time
}

// TableCache хранит разобранные таблицы в памяти по хешу содержимого файла.
// Записи живут ttl; доступ синхронизирован мьютексом.
type TableCache struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	data map[string]cacheEntry
}

// NewTableCache создаёт кэш с указанным временем жизни записей
func NewTableCache(ttl time.Duration) *TableCache {
	return &TableCache{
		ttl:  ttl,
		now:  time.Now,
		data: make(map[string]cacheEntry),
	}
}

// ContentID возвращает ключ кэша для содержимого файла
func ContentID(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])[:16]
}

// Get возвращает таблицу, если запись существует и не истекла.
// Истёкшая запись удаляется.
func (c *TableCache) Get(id string) (*CachedTable, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.data[id]
	if !ok {
		return nil, false
	}

	if c.now().After(entry.expiry) {
		delete(c.data, id)
		return nil, false
	}

	return entry.table, true
}

// Set сохраняет таблицу и продлевает срок жизни записи.
// Заодно удаляются все истёкшие записи.
func (c *TableCache) Set(table *CachedTable) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for id, entry := range c.data {
		if now.After(entry.expiry) {
			delete(c.data, id)
		}
	}

	c.data[table.ID] = cacheEntry{
		table:  table,
		expiry: now.Add(c.ttl),
	}
}

// Clear удаляет все записи
func (c *TableCache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.data)
	c.data = make(map[string]cacheEntry)
	return n
}

// Len возвращает число записей, включая истёкшие, которые ещё не удалены
func (c *TableCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

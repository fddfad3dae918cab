package domain

import (
	"errors"
	"math/bits"
	"strconv"
)

const (
	// SlotMinutes — ширина одного слота в минутах
	SlotMinutes = 5
	// SlotsPerDay — число слотов в сутках
	SlotsPerDay = 24 * 60 / SlotMinutes
)

// ErrMalformedTime возвращается для времени, не совпадающего с сеткой "HH:MM:SS" по 5 минут
var ErrMalformedTime = errors.New("время не соответствует формату HH:MM:SS с шагом 5 минут")

// SlotIndex — номер пятиминутного слота внутри суток, 0..287
type SlotIndex int

// SlotOf переводит строку времени "HH:MM:SS" в номер слота (hour*12 + minute/5).
// Принимаются только точные значения сетки: секунды "00", минуты кратны 5.
func SlotOf(clock string) (SlotIndex, error) {
	if len(clock) != 8 || clock[2] != ':' || clock[5] != ':' {
		return 0, ErrMalformedTime
	}
	hour, err := twoDigits(clock[0:2])
	if err != nil || hour > 23 {
		return 0, ErrMalformedTime
	}
	minute, err := twoDigits(clock[3:5])
	if err != nil || minute > 59 || minute%SlotMinutes != 0 {
		return 0, ErrMalformedTime
	}
	if clock[6:8] != "00" {
		return 0, ErrMalformedTime
	}
	return SlotIndex(hour*(60/SlotMinutes) + minute/SlotMinutes), nil
}

func twoDigits(s string) (int, error) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, strconv.ErrSyntax
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), nil
}

// SlotsFor возвращает упорядоченные слоты занятия в полуинтервале [start, end).
// Некорректное или перевёрнутое время даёт пустой результат, а не ошибку:
// такие строки просто не попадают в нагрузку.
func SlotsFor(start, end string) []SlotIndex {
	from, err := SlotOf(start)
	if err != nil {
		return nil
	}
	to, err := SlotOf(end)
	if err != nil || to <= from {
		return nil
	}

	slots := make([]SlotIndex, 0, int(to-from))
	for s := from; s < to; s++ {
		slots = append(slots, s)
	}
	return slots
}

// SlotSet — битовое множество слотов одних суток
type SlotSet [(SlotsPerDay + 63) / 64]uint64

// Add добавляет слот; слоты вне суток игнорируются
func (s *SlotSet) Add(slot SlotIndex) {
	if slot < 0 || int(slot) >= SlotsPerDay {
		return
	}
	s[slot/64] |= 1 << (uint(slot) % 64)
}

// Contains проверяет, занят ли слот
func (s *SlotSet) Contains(slot SlotIndex) bool {
	if slot < 0 || int(slot) >= SlotsPerDay {
		return false
	}
	return s[slot/64]&(1<<(uint(slot)%64)) != 0
}

// Len возвращает число занятых слотов
func (s *SlotSet) Len() int {
	n := 0
	for _, w := range s {
		n += bits.OnesCount64(w)
	}
	return n
}

// Slots возвращает занятые слоты по возрастанию
func (s *SlotSet) Slots() []SlotIndex {
	out := make([]SlotIndex, 0, s.Len())
	for i, w := range s {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			out = append(out, SlotIndex(i*64+b))
			w &= w - 1
		}
	}
	return out
}

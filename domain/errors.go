package domain

import "errors"

// Ошибки на границе с рендерерами календаря. Рендерер не исправляет события,
// а отклоняет весь вызов.
var (
	ErrInvalidConfig = errors.New("неверная конфигурация календаря")
	ErrInvalidEvent  = errors.New("событие вне окна календаря")
	ErrNoEvents      = errors.New("нет событий для календаря")
)
